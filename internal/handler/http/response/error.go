package response

import (
	"errors"
	"net/http"

	"github.com/dakoku-app/dakoku-backend-go/internal/domain/attendance"
	"github.com/dakoku-app/dakoku-backend-go/internal/domain/relay"
	"github.com/dakoku-app/dakoku-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Attendance precondition errors: reported, no state change
	case errors.Is(err, attendance.ErrNotClockedIn):
		Conflict(w, "出勤打刻が記録されていません")
	case errors.Is(err, attendance.ErrAlreadyClockedOut):
		Conflict(w, "本日はすでに退勤済みです")
	case errors.Is(err, attendance.ErrRecordNotFound):
		NotFound(w, "打刻データが見つかりません")

	// Relay failures only reach here when nothing was stored locally
	// (task submission); committed clock actions never surface them.
	case errors.Is(err, relay.ErrDispatchFailed):
		ServiceUnavailable(w, "報告に失敗しました ※ローカルには保存されません")

	// Default: local persistence or unexpected failures
	default:
		InternalServerError(w, "予期しないエラーが発生しました")
	}
}
