package attendance

import "errors"

// Attendance domain errors
var (
	// Clock-out preconditions
	ErrNotClockedIn      = errors.New("no clock-in recorded for today")
	ErrAlreadyClockedOut = errors.New("already clocked out for today")

	// Store lookups
	ErrRecordNotFound = errors.New("attendance record not found")
)
