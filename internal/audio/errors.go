// SPDX-License-Identifier: MIT
package audio

import "errors"

var (
	// ErrNotReady is returned when no committed transfer half is
	// available for the requested direction.
	ErrNotReady = errors.New("no committed transfer half ready")

	// ErrAlreadyRunning is returned by Start when the pipeline is not
	// idle.
	ErrAlreadyRunning = errors.New("pipeline already running")

	// ErrNotRunning is returned by Stop when the pipeline is idle.
	ErrNotRunning = errors.New("pipeline not running")

	// ErrInvalidChannel is returned by setters and getters handed a
	// channel index outside the fixed topology.
	ErrInvalidChannel = errors.New("invalid channel index")

	// ErrRecorderStopped is returned by the recorder after too many
	// consecutive write failures.
	ErrRecorderStopped = errors.New("recorder stopped after repeated write failures")
)
