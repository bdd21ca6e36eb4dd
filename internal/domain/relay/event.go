package relay

import (
	"context"
	"time"
)

// Action tags a relayed attendance event.
type Action string

const (
	ActionClockIn    Action = "clockIn"
	ActionClockOut   Action = "clockOut"
	ActionSubmitTask Action = "submitTask"
)

// Event is the wire payload delivered to the remote logging endpoint.
// Timestamps marshal as ISO-8601.
type Event struct {
	Action    Action    `json:"action"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	Timestamp time.Time `json:"timestamp"`
	WorkHours *float64  `json:"workHours,omitempty"`
	AppURL    string    `json:"appUrl,omitempty"`
}

// Outcome describes what is known about a dispatch attempt. The transport
// forfeits response visibility, so "dispatched" only means the request
// completed, not that the remote sink accepted it.
type Outcome string

const (
	// OutcomeSkipped means no endpoint is configured; local-only success.
	OutcomeSkipped Outcome = "skipped"

	// OutcomeDispatched means the request completed. The response body is
	// unreadable by contract, so acceptance cannot be confirmed.
	OutcomeDispatched Outcome = "dispatched"

	// OutcomeFailed means a network-level failure. Soft: the caller's
	// already-committed local state stands.
	OutcomeFailed Outcome = "failed"
)

// Dispatcher delivers events best-effort. Send never blocks local state:
// callers persist first and treat a failed outcome as degraded success.
type Dispatcher interface {
	Send(ctx context.Context, event Event) (Outcome, error)
}
