package attendance

import (
	"github.com/dakoku-app/dakoku-backend-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

// StatusKind classifies a user-facing status update.
type StatusKind string

const (
	StatusInfo       StatusKind = "info"
	StatusSuccess    StatusKind = "success"
	StatusError      StatusKind = "error"
	StatusProcessing StatusKind = "processing"
)

// Status is the display text the UI renders after an action.
type Status struct {
	Kind    StatusKind `json:"kind"`
	Message string     `json:"message"`
}

type SubmitTaskRequest struct {
	AppURL string `json:"app_url"`
}

func (r *SubmitTaskRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.AppURL) {
		errs = append(errs, validator.ValidationError{
			Field:   "app_url",
			Message: "app_url is required",
		})
	} else if !validator.IsValidURL(r.AppURL) {
		errs = append(errs, validator.ValidationError{
			Field:   "app_url",
			Message: "app_url must be a valid http(s) URL",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type RecordResponse struct {
	Date          string   `json:"date"`
	State         string   `json:"state"`
	UserID        string   `json:"user_id"`
	UserName      string   `json:"user_name"`
	ClockInTime   *string  `json:"clock_in_time,omitempty"`
	ClockOutTime  *string  `json:"clock_out_time,omitempty"`
	WorkHours     *float64 `json:"work_hours,omitempty"`
	WorkHoursText *string  `json:"work_hours_text,omitempty"`
}

// ActionResponse reports the outcome of a clock-in/clock-out/task action.
// Relay is the dispatch outcome ("skipped"/"dispatched"/"failed"); a failed
// relay is still a success for local data integrity.
type ActionResponse struct {
	Status Status          `json:"status"`
	Relay  string          `json:"relay"`
	Record *RecordResponse `json:"record,omitempty"`
}

type IdentityResponse struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
}
