package attendance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dakoku-app/dakoku-backend-go/internal/domain/attendance"
	"github.com/dakoku-app/dakoku-backend-go/internal/domain/identity"
	"github.com/dakoku-app/dakoku-backend-go/internal/domain/relay"
	"github.com/dakoku-app/dakoku-backend-go/internal/pkg/database"
	"github.com/dakoku-app/dakoku-backend-go/internal/pkg/validator"
	"github.com/dakoku-app/dakoku-backend-go/internal/repository/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDefaults = identity.UserIdentity{UserID: "user01", UserName: "あなたの名前"}

// fakeDispatcher records sent events and returns a scripted outcome.
type fakeDispatcher struct {
	events  []relay.Event
	outcome relay.Outcome
	err     error
}

func (d *fakeDispatcher) Send(ctx context.Context, event relay.Event) (relay.Outcome, error) {
	d.events = append(d.events, event)
	if d.err != nil {
		return relay.OutcomeFailed, d.err
	}
	if d.outcome == "" {
		return relay.OutcomeDispatched, nil
	}
	return d.outcome, nil
}

func newTestService(t *testing.T, dispatcher relay.Dispatcher) (*AttendanceServiceImpl, attendance.RecordRepository) {
	t.Helper()
	db, err := database.NewSQLiteDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	records := sqlite.NewRecordRepository(db)
	identities := sqlite.NewIdentityRepository(db)
	return NewAttendanceService(records, identities, dispatcher, testDefaults), records
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestClockIn_CreatesRecordAndRelays(t *testing.T) {
	ctx := context.Background()
	dispatcher := &fakeDispatcher{}
	svc, records := newTestService(t, dispatcher)

	at := time.Date(2025, 6, 2, 9, 0, 0, 0, time.Local)
	svc.now = fixedClock(at)

	result, err := svc.ClockIn(ctx)
	require.NoError(t, err)

	assert.Equal(t, attendance.StatusSuccess, result.Status.Kind)
	assert.Equal(t, "出勤を記録しました (09:00)", result.Status.Message)
	assert.Equal(t, string(relay.OutcomeDispatched), result.Relay)

	stored, err := records.GetByDate(ctx, "2025-06-02")
	require.NoError(t, err)
	assert.Equal(t, attendance.StateClockedIn, stored.State())
	assert.Equal(t, "user01", stored.UserID)
	assert.True(t, at.Equal(*stored.ClockIn))

	require.Len(t, dispatcher.events, 1)
	assert.Equal(t, relay.ActionClockIn, dispatcher.events[0].Action)
	assert.Equal(t, "user01", dispatcher.events[0].UserID)
}

func TestClockOut_ComputesWorkHours(t *testing.T) {
	ctx := context.Background()
	dispatcher := &fakeDispatcher{}
	svc, records := newTestService(t, dispatcher)

	svc.now = fixedClock(time.Date(2025, 6, 2, 9, 0, 0, 0, time.Local))
	_, err := svc.ClockIn(ctx)
	require.NoError(t, err)

	svc.now = fixedClock(time.Date(2025, 6, 2, 17, 30, 0, 0, time.Local))
	result, err := svc.ClockOut(ctx)
	require.NoError(t, err)

	assert.Equal(t, "退勤を記録しました (17:30) - 勤務時間: 8時間30分", result.Status.Message)

	stored, err := records.GetByDate(ctx, "2025-06-02")
	require.NoError(t, err)
	assert.Equal(t, attendance.StateClockedOut, stored.State())
	require.NotNil(t, stored.WorkHours)
	assert.Equal(t, 8.5, *stored.WorkHours)

	require.Len(t, dispatcher.events, 2)
	out := dispatcher.events[1]
	assert.Equal(t, relay.ActionClockOut, out.Action)
	require.NotNil(t, out.WorkHours)
	assert.Equal(t, 8.5, *out.WorkHours)
}

func TestClockOut_WithoutClockIn(t *testing.T) {
	ctx := context.Background()
	dispatcher := &fakeDispatcher{}
	svc, records := newTestService(t, dispatcher)

	svc.now = fixedClock(time.Date(2025, 6, 2, 17, 30, 0, 0, time.Local))
	_, err := svc.ClockOut(ctx)
	assert.ErrorIs(t, err, attendance.ErrNotClockedIn)

	// No record is created and nothing is relayed.
	_, err = records.GetByDate(ctx, "2025-06-02")
	assert.ErrorIs(t, err, attendance.ErrRecordNotFound)
	assert.Empty(t, dispatcher.events)
}

func TestClockOut_Twice(t *testing.T) {
	ctx := context.Background()
	dispatcher := &fakeDispatcher{}
	svc, records := newTestService(t, dispatcher)

	svc.now = fixedClock(time.Date(2025, 6, 2, 9, 0, 0, 0, time.Local))
	_, err := svc.ClockIn(ctx)
	require.NoError(t, err)

	svc.now = fixedClock(time.Date(2025, 6, 2, 17, 30, 0, 0, time.Local))
	_, err = svc.ClockOut(ctx)
	require.NoError(t, err)

	before, err := records.GetByDate(ctx, "2025-06-02")
	require.NoError(t, err)

	svc.now = fixedClock(time.Date(2025, 6, 2, 18, 0, 0, 0, time.Local))
	_, err = svc.ClockOut(ctx)
	assert.ErrorIs(t, err, attendance.ErrAlreadyClockedOut)

	after, err := records.GetByDate(ctx, "2025-06-02")
	require.NoError(t, err)
	assert.True(t, before.ClockOut.Equal(*after.ClockOut))
	assert.Equal(t, *before.WorkHours, *after.WorkHours)
}

func TestClockIn_OverwritesCompletedDay(t *testing.T) {
	ctx := context.Background()
	dispatcher := &fakeDispatcher{}
	svc, records := newTestService(t, dispatcher)

	svc.now = fixedClock(time.Date(2025, 6, 2, 9, 0, 0, 0, time.Local))
	_, err := svc.ClockIn(ctx)
	require.NoError(t, err)
	svc.now = fixedClock(time.Date(2025, 6, 2, 12, 0, 0, 0, time.Local))
	_, err = svc.ClockOut(ctx)
	require.NoError(t, err)

	// Re-clock-in replaces the completed record with a fresh one; no
	// history of the prior session survives.
	reIn := time.Date(2025, 6, 2, 13, 0, 0, 0, time.Local)
	svc.now = fixedClock(reIn)
	_, err = svc.ClockIn(ctx)
	require.NoError(t, err)

	stored, err := records.GetByDate(ctx, "2025-06-02")
	require.NoError(t, err)
	assert.Equal(t, attendance.StateClockedIn, stored.State())
	assert.True(t, reIn.Equal(*stored.ClockIn))
	assert.Nil(t, stored.ClockOut)
	assert.Nil(t, stored.WorkHours)
}

func TestClockActions_RelayFailureKeepsLocalState(t *testing.T) {
	ctx := context.Background()
	dispatcher := &fakeDispatcher{err: relay.ErrDispatchFailed}
	svc, records := newTestService(t, dispatcher)

	svc.now = fixedClock(time.Date(2025, 6, 2, 9, 0, 0, 0, time.Local))
	result, err := svc.ClockIn(ctx)
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusSuccess, result.Status.Kind)
	assert.Equal(t, "出勤を記録しました (09:00) ※オンライン送信待機中", result.Status.Message)
	assert.Equal(t, string(relay.OutcomeFailed), result.Relay)

	svc.now = fixedClock(time.Date(2025, 6, 2, 17, 30, 0, 0, time.Local))
	result, err = svc.ClockOut(ctx)
	require.NoError(t, err)
	assert.Contains(t, result.Status.Message, "※オンライン送信待機中")

	// The committed record is untouched by the failed relay.
	stored, err := records.GetByDate(ctx, "2025-06-02")
	require.NoError(t, err)
	assert.Equal(t, attendance.StateClockedOut, stored.State())
	assert.Equal(t, 8.5, *stored.WorkHours)
}

func TestClockIn_Deterministic(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2025, 6, 2, 9, 0, 0, 0, time.Local)

	svcA, recordsA := newTestService(t, &fakeDispatcher{})
	svcB, recordsB := newTestService(t, &fakeDispatcher{})
	svcA.now = fixedClock(at)
	svcB.now = fixedClock(at)

	_, err := svcA.ClockIn(ctx)
	require.NoError(t, err)
	_, err = svcB.ClockIn(ctx)
	require.NoError(t, err)

	a, err := recordsA.GetByDate(ctx, "2025-06-02")
	require.NoError(t, err)
	b, err := recordsB.GetByDate(ctx, "2025-06-02")
	require.NoError(t, err)

	assert.Equal(t, a.Date, b.Date)
	assert.Equal(t, a.UserID, b.UserID)
	assert.True(t, a.ClockIn.Equal(*b.ClockIn))
}

func TestSubmitTask(t *testing.T) {
	ctx := context.Background()
	dispatcher := &fakeDispatcher{}
	svc, _ := newTestService(t, dispatcher)
	svc.now = fixedClock(time.Date(2025, 6, 2, 15, 0, 0, 0, time.Local))

	result, err := svc.SubmitTask(ctx, attendance.SubmitTaskRequest{AppURL: "https://example.com/app"})
	require.NoError(t, err)
	assert.Equal(t, "課題完了を報告しました 🎉", result.Status.Message)

	require.Len(t, dispatcher.events, 1)
	assert.Equal(t, relay.ActionSubmitTask, dispatcher.events[0].Action)
	assert.Equal(t, "https://example.com/app", dispatcher.events[0].AppURL)
}

func TestSubmitTask_EmptyURL(t *testing.T) {
	ctx := context.Background()
	dispatcher := &fakeDispatcher{}
	svc, _ := newTestService(t, dispatcher)

	_, err := svc.SubmitTask(ctx, attendance.SubmitTaskRequest{AppURL: "  "})

	var errs validator.ValidationErrors
	require.True(t, errors.As(err, &errs))
	// Nothing is relayed when validation fails.
	assert.Empty(t, dispatcher.events)
}

func TestSubmitTask_RelayFailure(t *testing.T) {
	ctx := context.Background()
	dispatcher := &fakeDispatcher{err: relay.ErrDispatchFailed}
	svc, _ := newTestService(t, dispatcher)

	_, err := svc.SubmitTask(ctx, attendance.SubmitTaskRequest{AppURL: "https://example.com/app"})
	assert.ErrorIs(t, err, relay.ErrDispatchFailed)
}

func TestToday(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, &fakeDispatcher{})
	svc.now = fixedClock(time.Date(2025, 6, 2, 10, 0, 0, 0, time.Local))

	result, err := svc.Today(ctx)
	require.NoError(t, err)
	assert.Equal(t, string(attendance.StateAbsent), result.State)
	assert.Equal(t, "2025-06-02", result.Date)

	_, err = svc.ClockIn(ctx)
	require.NoError(t, err)

	result, err = svc.Today(ctx)
	require.NoError(t, err)
	assert.Equal(t, string(attendance.StateClockedIn), result.State)
	require.NotNil(t, result.ClockInTime)
	assert.Equal(t, "10:00", *result.ClockInTime)
}

func TestMe_BootstrapsDefaultIdentity(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, &fakeDispatcher{})

	first, err := svc.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "user01", first.UserID)
	assert.Equal(t, "あなたの名前", first.UserName)

	// Second read comes from the store, not the defaults.
	second, err := svc.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
