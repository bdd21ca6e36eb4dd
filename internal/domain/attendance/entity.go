package attendance

import (
	"fmt"
	"math"
	"time"
)

// DateKeyLayout is the calendar-day key format for stored records.
const DateKeyLayout = "2006-01-02"

// State is the lifecycle state of a day's record.
type State string

const (
	StateAbsent     State = "absent"
	StateClockedIn  State = "clocked_in"
	StateClockedOut State = "clocked_out"
)

// Record is one attendance record per calendar date.
// ClockOut and WorkHours are set together or not at all.
type Record struct {
	Date      string
	UserID    string
	UserName  string
	ClockIn   *time.Time
	ClockOut  *time.Time
	WorkHours *float64
}

// State derives the lifecycle state from the populated fields.
func (r Record) State() State {
	switch {
	case r.ClockIn == nil:
		return StateAbsent
	case r.ClockOut == nil:
		return StateClockedIn
	default:
		return StateClockedOut
	}
}

// DateKey formats t as a calendar-day key using the local clock.
func DateKey(t time.Time) string {
	return t.Format(DateKeyLayout)
}

// FormatTime formats a clock time for display (HH:mm).
func FormatTime(t time.Time) string {
	return t.Format("15:04")
}

// FormatWorkHours renders fractional hours as "N時間M分".
// Minutes are rounded; a roundup to 60 carries into the hour component,
// so 1.999 hours formats as 2時間0分 rather than 1時間60分.
func FormatWorkHours(hours float64) string {
	h := int(math.Floor(hours))
	m := int(math.Round((hours - math.Floor(hours)) * 60))
	if m == 60 {
		h++
		m = 0
	}
	return fmt.Sprintf("%d時間%d分", h, m)
}
