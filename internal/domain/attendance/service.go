package attendance

import (
	"context"
)

// AttendanceService defines the day-record state machine exposed to the UI.
// Every mutating operation persists locally before the relay attempt, and
// a relay failure never reverses the local write.
type AttendanceService interface {
	// ClockIn records the start of today's work session. Always permitted;
	// a re-clock-in overwrites the existing record with a fresh one.
	ClockIn(ctx context.Context) (ActionResponse, error)

	// ClockOut records the end of today's session and computes work hours.
	// Fails with ErrNotClockedIn when no clock-in exists, and with
	// ErrAlreadyClockedOut when the day is already complete.
	ClockOut(ctx context.Context) (ActionResponse, error)

	// SubmitTask relays a task-completion report. Nothing is persisted
	// locally, so a relay failure here is surfaced as an error.
	SubmitTask(ctx context.Context, req SubmitTaskRequest) (ActionResponse, error)

	// Today returns today's record; state is "absent" when none exists.
	Today(ctx context.Context) (RecordResponse, error)

	// Me returns the device profile, bootstrapping it on first access.
	Me(ctx context.Context) (IdentityResponse, error)
}
