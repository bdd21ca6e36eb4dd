package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dakoku-app/dakoku-backend-go/internal/domain/attendance"
	"github.com/dakoku-app/dakoku-backend-go/internal/pkg/database"
)

const recordKeyPrefix = "attendance_"

// recordRow is the persisted JSON shape, one entry per calendar day
// under the key "attendance_<YYYY-MM-DD>".
type recordRow struct {
	Date      string     `json:"date"`
	ClockIn   *time.Time `json:"clockIn,omitempty"`
	ClockOut  *time.Time `json:"clockOut,omitempty"`
	UserID    string     `json:"userId"`
	UserName  string     `json:"userName"`
	WorkHours *float64   `json:"workHours,omitempty"`
}

type RecordRepository struct {
	kv *KV
}

func NewRecordRepository(db *database.DB) attendance.RecordRepository {
	return &RecordRepository{kv: NewKV(db)}
}

// GetByDate implements attendance.RecordRepository.
func (r *RecordRepository) GetByDate(ctx context.Context, dateKey string) (attendance.Record, error) {
	raw, err := r.kv.Get(ctx, recordKeyPrefix+dateKey)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return attendance.Record{}, attendance.ErrRecordNotFound
		}
		return attendance.Record{}, fmt.Errorf("failed to load attendance record: %w", err)
	}

	var row recordRow
	if err := json.Unmarshal(raw, &row); err != nil {
		return attendance.Record{}, fmt.Errorf("failed to decode attendance record %q: %w", dateKey, err)
	}

	return attendance.Record{
		Date:      row.Date,
		UserID:    row.UserID,
		UserName:  row.UserName,
		ClockIn:   row.ClockIn,
		ClockOut:  row.ClockOut,
		WorkHours: row.WorkHours,
	}, nil
}

// Put implements attendance.RecordRepository.
func (r *RecordRepository) Put(ctx context.Context, record attendance.Record) error {
	row := recordRow{
		Date:      record.Date,
		ClockIn:   record.ClockIn,
		ClockOut:  record.ClockOut,
		UserID:    record.UserID,
		UserName:  record.UserName,
		WorkHours: record.WorkHours,
	}

	raw, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("failed to encode attendance record %q: %w", record.Date, err)
	}

	if err := r.kv.Put(ctx, recordKeyPrefix+record.Date, raw); err != nil {
		return fmt.Errorf("failed to store attendance record: %w", err)
	}
	return nil
}
