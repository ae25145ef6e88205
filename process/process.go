// Package process provides the process snapshot collector and the Source
// interface that platform packages implement.
package process

import "errors"

// MinPIDSlots is the smallest PID buffer a Source lists into. PIDs beyond the
// buffer are silently not listed.
const MinPIDSlots = 4096

var (
	// ErrProcessGone is returned by a Source when the PID no longer exists.
	ErrProcessGone = errors.New("process gone")

	// ErrNoParent marks a kernel-owned or unattributable process (PID 0 or
	// parent PID 0). Such processes are never exported.
	ErrNoParent = errors.New("process has no parent")

	// ErrNoExecutable is returned when the executable path cannot be resolved.
	ErrNoExecutable = errors.New("executable path unavailable")

	// ErrInvalidTimebase is returned for a tick ratio with a zero denominator.
	ErrInvalidTimebase = errors.New("invalid timebase")
)
