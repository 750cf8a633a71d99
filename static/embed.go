/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package static

import "embed"

// Static holds the stylesheet shared by the web pages.
//
//go:embed *.css
var Static embed.FS
