/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package report

import "errors"

var (
	// ErrUnsupportedFormat is returned for an unknown export format.
	ErrUnsupportedFormat = errors.New("unsupported export format")
	// ErrNilDocument is returned when a renderer is given no document.
	ErrNilDocument = errors.New("document is nil")
	// ErrNoDataPoints is returned when a trend chart has nothing to plot.
	ErrNoDataPoints = errors.New("no numeric data points")
)
