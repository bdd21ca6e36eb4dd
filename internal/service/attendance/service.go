package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dakoku-app/dakoku-backend-go/internal/domain/attendance"
	"github.com/dakoku-app/dakoku-backend-go/internal/domain/identity"
	"github.com/dakoku-app/dakoku-backend-go/internal/domain/relay"
)

type AttendanceServiceImpl struct {
	records    attendance.RecordRepository
	identities identity.Repository
	dispatcher relay.Dispatcher
	defaults   identity.UserIdentity

	// now is injected so the state machine stays deterministic under test.
	now func() time.Time
}

func NewAttendanceService(
	records attendance.RecordRepository,
	identities identity.Repository,
	dispatcher relay.Dispatcher,
	defaults identity.UserIdentity,
) *AttendanceServiceImpl {
	return &AttendanceServiceImpl{
		records:    records,
		identities: identities,
		dispatcher: dispatcher,
		defaults:   defaults,
		now:        time.Now,
	}
}

// ClockIn implements attendance.AttendanceService.
// The local write is sequenced strictly before the relay attempt, and the
// relay outcome only affects the status text.
func (s *AttendanceServiceImpl) ClockIn(ctx context.Context) (attendance.ActionResponse, error) {
	slog.Debug("attendance action started", "action", "clockIn",
		"status", attendance.StatusProcessing, "message", "出勤を記録中...")

	now := s.now()
	ident, err := s.loadIdentity(ctx)
	if err != nil {
		return attendance.ActionResponse{}, err
	}

	dateKey := attendance.DateKey(now)
	existing, err := s.records.GetByDate(ctx, dateKey)
	if err != nil && !errors.Is(err, attendance.ErrRecordNotFound) {
		return attendance.ActionResponse{}, fmt.Errorf("failed to read today's record: %w", err)
	}
	if err == nil && existing.State() == attendance.StateClockedOut {
		// Re-clock-in policy: the completed record is replaced with no
		// history kept.
		slog.Warn("overwriting completed attendance record", "date", dateKey)
	}

	record := attendance.Record{
		Date:     dateKey,
		UserID:   ident.UserID,
		UserName: ident.UserName,
		ClockIn:  &now,
	}

	if err := s.records.Put(ctx, record); err != nil {
		return attendance.ActionResponse{}, fmt.Errorf("failed to persist attendance record: %w", err)
	}

	outcome, relayErr := s.dispatcher.Send(ctx, relay.Event{
		Action:    relay.ActionClockIn,
		UserID:    ident.UserID,
		UserName:  ident.UserName,
		Timestamp: now,
	})

	clockInText := attendance.FormatTime(now)
	message := fmt.Sprintf("出勤を記録しました (%s)", clockInText)
	if relayErr != nil {
		message += " ※オンライン送信待機中"
	}

	return attendance.ActionResponse{
		Status: attendance.Status{Kind: attendance.StatusSuccess, Message: message},
		Relay:  string(outcome),
		Record: toRecordResponse(record),
	}, nil
}

// ClockOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ClockOut(ctx context.Context) (attendance.ActionResponse, error) {
	slog.Debug("attendance action started", "action", "clockOut",
		"status", attendance.StatusProcessing, "message", "退勤を記録中...")

	now := s.now()
	dateKey := attendance.DateKey(now)

	record, err := s.records.GetByDate(ctx, dateKey)
	if err != nil {
		if errors.Is(err, attendance.ErrRecordNotFound) {
			return attendance.ActionResponse{}, attendance.ErrNotClockedIn
		}
		return attendance.ActionResponse{}, fmt.Errorf("failed to read today's record: %w", err)
	}

	switch record.State() {
	case attendance.StateAbsent:
		return attendance.ActionResponse{}, attendance.ErrNotClockedIn
	case attendance.StateClockedOut:
		return attendance.ActionResponse{}, attendance.ErrAlreadyClockedOut
	}

	workHours := now.Sub(*record.ClockIn).Hours()
	record.ClockOut = &now
	record.WorkHours = &workHours

	if err := s.records.Put(ctx, record); err != nil {
		return attendance.ActionResponse{}, fmt.Errorf("failed to persist attendance record: %w", err)
	}

	outcome, relayErr := s.dispatcher.Send(ctx, relay.Event{
		Action:    relay.ActionClockOut,
		UserID:    record.UserID,
		UserName:  record.UserName,
		Timestamp: now,
		WorkHours: &workHours,
	})

	message := fmt.Sprintf("退勤を記録しました (%s) - 勤務時間: %s",
		attendance.FormatTime(now), attendance.FormatWorkHours(workHours))
	if relayErr != nil {
		message += " ※オンライン送信待機中"
	}

	return attendance.ActionResponse{
		Status: attendance.Status{Kind: attendance.StatusSuccess, Message: message},
		Relay:  string(outcome),
		Record: toRecordResponse(record),
	}, nil
}

// SubmitTask implements attendance.AttendanceService. Unlike the clock
// actions nothing is persisted locally, so a failed dispatch surfaces as
// an error to the caller.
func (s *AttendanceServiceImpl) SubmitTask(ctx context.Context, req attendance.SubmitTaskRequest) (attendance.ActionResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.ActionResponse{}, err
	}

	ident, err := s.loadIdentity(ctx)
	if err != nil {
		return attendance.ActionResponse{}, err
	}

	outcome, relayErr := s.dispatcher.Send(ctx, relay.Event{
		Action:    relay.ActionSubmitTask,
		UserID:    ident.UserID,
		UserName:  ident.UserName,
		Timestamp: s.now(),
		AppURL:    req.AppURL,
	})
	if relayErr != nil {
		return attendance.ActionResponse{}, relayErr
	}

	return attendance.ActionResponse{
		Status: attendance.Status{Kind: attendance.StatusSuccess, Message: "課題完了を報告しました 🎉"},
		Relay:  string(outcome),
	}, nil
}

// Today implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Today(ctx context.Context) (attendance.RecordResponse, error) {
	dateKey := attendance.DateKey(s.now())

	record, err := s.records.GetByDate(ctx, dateKey)
	if err != nil {
		if errors.Is(err, attendance.ErrRecordNotFound) {
			return attendance.RecordResponse{
				Date:  dateKey,
				State: string(attendance.StateAbsent),
			}, nil
		}
		return attendance.RecordResponse{}, fmt.Errorf("failed to read today's record: %w", err)
	}

	return *toRecordResponse(record), nil
}

// Me implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Me(ctx context.Context) (attendance.IdentityResponse, error) {
	ident, err := s.loadIdentity(ctx)
	if err != nil {
		return attendance.IdentityResponse{}, err
	}
	return attendance.IdentityResponse{UserID: ident.UserID, UserName: ident.UserName}, nil
}

// loadIdentity returns the device profile, bootstrapping it with the
// configured defaults on first access.
func (s *AttendanceServiceImpl) loadIdentity(ctx context.Context) (identity.UserIdentity, error) {
	ident, err := s.identities.Get(ctx)
	if err == nil {
		return ident, nil
	}
	if !errors.Is(err, identity.ErrIdentityNotFound) {
		return identity.UserIdentity{}, fmt.Errorf("failed to load user identity: %w", err)
	}

	if err := s.identities.Put(ctx, s.defaults); err != nil {
		return identity.UserIdentity{}, fmt.Errorf("failed to bootstrap user identity: %w", err)
	}
	slog.Info("bootstrapped default user identity", "user_id", s.defaults.UserID)
	return s.defaults, nil
}

func toRecordResponse(record attendance.Record) *attendance.RecordResponse {
	resp := &attendance.RecordResponse{
		Date:     record.Date,
		State:    string(record.State()),
		UserID:   record.UserID,
		UserName: record.UserName,
	}
	if record.ClockIn != nil {
		t := attendance.FormatTime(*record.ClockIn)
		resp.ClockInTime = &t
	}
	if record.ClockOut != nil {
		t := attendance.FormatTime(*record.ClockOut)
		resp.ClockOutTime = &t
	}
	if record.WorkHours != nil {
		resp.WorkHours = record.WorkHours
		text := attendance.FormatWorkHours(*record.WorkHours)
		resp.WorkHoursText = &text
	}
	return resp
}
