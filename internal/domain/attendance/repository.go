package attendance

import (
	"context"
)

// RecordRepository defines data access for the day-keyed record store.
// At most one record exists per date key; Put overwrites in place.
type RecordRepository interface {
	// GetByDate retrieves the record for a calendar-day key (YYYY-MM-DD).
	// Returns ErrRecordNotFound when no record exists for that day.
	GetByDate(ctx context.Context, dateKey string) (Record, error)

	// Put persists the record under its date key, replacing any prior value.
	Put(ctx context.Context, record Record) error
}
