/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package mailer

import "github.com/humaidq/medcenter/logging"

var logger = logging.Logger(logging.SourceMail)
