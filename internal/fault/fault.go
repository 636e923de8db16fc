// SPDX-License-Identifier: MIT

// Package fault defines the error kinds shared by the spectrogram pipeline.
// Callers wrap them with fmt.Errorf("...: %w", ...) and test with errors.Is.
package fault

import "errors"

var (
	// ErrInvalidArgument reports a caller contract violation, such as fewer
	// samples than the analysis window or unsorted gradient points. The
	// operation performs no partial work.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrResourceExhausted reports a buffer or transform plan that could not
	// be created. It is only returned during setup and is fatal there.
	ErrResourceExhausted = errors.New("resource exhausted")

	// ErrSingularSystem reports a linear system with no admissible pivot.
	ErrSingularSystem = errors.New("singular system")

	// ErrCancelled is returned by blocking waits that observed shutdown.
	// It is the expected outcome during teardown, not a failure.
	ErrCancelled = errors.New("cancelled")
)
