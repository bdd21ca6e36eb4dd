package relay

import "errors"

var (
	// ErrDispatchFailed wraps network-level delivery failures. Callers with
	// committed local state treat this as a degraded-success status.
	ErrDispatchFailed = errors.New("relay dispatch failed")
)
