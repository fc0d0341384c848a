package booking

import (
	"context"
	"testing"
	"time"

	"github.com/Hohokz/sting-hive-muay-thai-api/internal/apperr"
	"github.com/Hohokz/sting-hive-muay-thai-api/internal/schedule"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// fixed clock for every guard test
var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

type stubLister struct {
	schedules []schedule.ScheduleWithCapacity
}

func (s *stubLister) ListSchedules(_ context.Context, _ schedule.ListFilters) ([]schedule.ScheduleWithCapacity, error) {
	return s.schedules, nil
}

// setupGuard wires the service to the in-memory repository; sqlmock only
// supplies the transaction boundary.
func setupGuard(t *testing.T, repo *stubRepo) (*Service, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	svc := NewService(sqlxDB, repo, &stubLister{}, bangkok)
	svc.now = func() time.Time { return testNow.In(bangkok) }

	closer := func() {
		sqlxDB.Close()
	}

	return svc, mock, closer
}

func expectTxCommit(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectCommit()
}

func expectTxRollback(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectRollback()
}

func createReq(scheduleID string, seats int, date string) CreateBookingRequest {
	return CreateBookingRequest{
		ScheduleID:  scheduleID,
		Name:        "Somsak J.",
		Email:       "somsak@example.com",
		Capacity:    seats,
		DateBooking: date,
	}
}

func TestCreateFillsScheduleExactly(t *testing.T) {
	repo := newStubRepo()
	repo.addSchedule("s-1", 1, false, 5)
	svc, mock, done := setupGuard(t, repo)
	defer done()

	expectTxCommit(mock)

	created, events, err := svc.Create(context.Background(), createReq("s-1", 5, "2026-03-16"), Actor{UserName: "admin"})
	require.NoError(t, err)
	require.Equal(t, StatusSucceed, created.Status)
	require.Equal(t, 5, created.Capacity)
	require.Len(t, events, 1)
	require.Equal(t, EventCreated, events[0].Type)
	require.Contains(t, repo.lockedIDs, "s-1")

	avail, err := svc.CheckAvailability(context.Background(), "s-1", day(2026, 3, 16))
	require.NoError(t, err)
	require.Equal(t, 0, avail.AvailableSeats)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateConflictReportsRemainingSeats(t *testing.T) {
	repo := newStubRepo()
	repo.addSchedule("s-1", 1, false, 5)
	repo.addBooking(Booking{ScheduleID: "s-1", Email: "other@example.com", Capacity: 4, DateBooking: checkpoint(2026, 3, 16), Status: StatusSucceed})
	svc, mock, done := setupGuard(t, repo)
	defer done()

	expectTxRollback(mock)

	_, _, err := svc.Create(context.Background(), createReq("s-1", 2, "2026-03-16"), Actor{})
	ae, ok := apperr.As(err)
	require.True(t, ok)
	require.Equal(t, apperr.KindConflict, ae.Kind)
	require.NotNil(t, ae.RemainingSeats)
	require.Equal(t, 1, *ae.RemainingSeats)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRejectedWhenGymClosed(t *testing.T) {
	repo := newStubRepo()
	repo.addSchedule("s-1", 1, false, 5)
	repo.configs = []schedule.AdvanceConfig{{
		ID: "cfg-1", GymID: 1, IsCloseGym: true, IsActive: true,
		StartDate: checkpoint(2026, 3, 16), EndDate: checkpoint(2026, 3, 16),
		CreatedAt: time.Now(),
	}}
	svc, mock, done := setupGuard(t, repo)
	defer done()

	expectTxRollback(mock)

	_, _, err := svc.Create(context.Background(), createReq("s-1", 1, "2026-03-16"), Actor{})
	ae, ok := apperr.As(err)
	require.True(t, ok)
	require.Equal(t, apperr.KindConflict, ae.Kind)
	require.Equal(t, "Gym Closed", ae.Message)
}

func TestCreateRejectsPastDate(t *testing.T) {
	repo := newStubRepo()
	repo.addSchedule("s-1", 1, false, 5)
	svc, _, done := setupGuard(t, repo)
	defer done()

	// no transaction expectations: the past-date check is pre-tx
	_, _, err := svc.Create(context.Background(), createReq("s-1", 1, "2026-03-14"), Actor{})
	require.True(t, apperr.IsKind(err, apperr.KindBadRequest))
}

func TestCreateAcceptsToday(t *testing.T) {
	repo := newStubRepo()
	repo.addSchedule("s-1", 1, false, 5)
	svc, mock, done := setupGuard(t, repo)
	defer done()

	expectTxCommit(mock)

	_, _, err := svc.Create(context.Background(), createReq("s-1", 1, "2026-03-15"), Actor{})
	require.NoError(t, err)
}

func TestCreateRejectsDuplicateEmail(t *testing.T) {
	repo := newStubRepo()
	repo.addSchedule("s-1", 1, false, 5)
	repo.addBooking(Booking{ScheduleID: "s-1", Email: "somsak@example.com", Capacity: 1, DateBooking: checkpoint(2026, 3, 16), Status: StatusSucceed})
	svc, mock, done := setupGuard(t, repo)
	defer done()

	expectTxRollback(mock)

	_, _, err := svc.Create(context.Background(), createReq("s-1", 1, "2026-03-16"), Actor{})
	require.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestCreateRejectsTrainerOnGroupClass(t *testing.T) {
	repo := newStubRepo()
	repo.addSchedule("s-1", 1, false, 5)
	svc, mock, done := setupGuard(t, repo)
	defer done()

	expectTxRollback(mock)

	req := createReq("s-1", 1, "2026-03-16")
	req.TrainerUserID = strPtr("trainer-1")
	_, _, err := svc.Create(context.Background(), req, Actor{})
	require.True(t, apperr.IsKind(err, apperr.KindBadRequest))
}

func TestCreateAllowsTrainerOnPrivateClass(t *testing.T) {
	repo := newStubRepo()
	repo.addSchedule("s-1", 1, true, 2)
	svc, mock, done := setupGuard(t, repo)
	defer done()

	expectTxCommit(mock)

	req := createReq("s-1", 1, "2026-03-16")
	req.TrainerUserID = strPtr("trainer-1")
	created, _, err := svc.Create(context.Background(), req, Actor{})
	require.NoError(t, err)
	require.True(t, created.IsPrivate)
	require.Equal(t, "trainer-1", *created.TrainerUserID)
}

func TestCancelRoundTripRestoresSeats(t *testing.T) {
	repo := newStubRepo()
	repo.addSchedule("s-1", 1, false, 5)
	svc, mock, done := setupGuard(t, repo)
	defer done()

	before, err := svc.CheckAvailability(context.Background(), "s-1", day(2026, 3, 16))
	require.NoError(t, err)

	expectTxCommit(mock)
	created, _, err := svc.Create(context.Background(), createReq("s-1", 2, "2026-03-16"), Actor{})
	require.NoError(t, err)

	during, err := svc.CheckAvailability(context.Background(), "s-1", day(2026, 3, 16))
	require.NoError(t, err)
	require.Equal(t, before.AvailableSeats-2, during.AvailableSeats)

	// freeing transition: no capacity check, no lock
	canceled, events, err := svc.Cancel(context.Background(), created.ID, Actor{})
	require.NoError(t, err)
	require.Equal(t, StatusCanceled, canceled.Status)
	require.Len(t, events, 1)
	require.Equal(t, EventCanceled, events[0].Type)

	after, err := svc.CheckAvailability(context.Background(), "s-1", day(2026, 3, 16))
	require.NoError(t, err)
	require.Equal(t, before.AvailableSeats, after.AvailableSeats)
}

func TestUpdateSameSlotSwapsInPlace(t *testing.T) {
	repo := newStubRepo()
	repo.addSchedule("s-1", 1, false, 5)
	existing := repo.addBooking(Booking{ScheduleID: "s-1", Email: "somsak@example.com", Capacity: 4, DateBooking: checkpoint(2026, 3, 16), Status: StatusSucceed})
	svc, mock, done := setupGuard(t, repo)
	defer done()

	expectTxCommit(mock)

	// growing 4 -> 5 in the same slot must count its own 4 as free
	updated, _, err := svc.Update(context.Background(), existing.ID, UpdateBookingRequest{Capacity: intPtr(5)}, Actor{})
	require.NoError(t, err)
	require.Equal(t, 5, updated.Capacity)
	require.Equal(t, StatusSucceed, updated.Status)
}

func TestUpdateSameSlotOvergrowConflicts(t *testing.T) {
	repo := newStubRepo()
	repo.addSchedule("s-1", 1, false, 5)
	existing := repo.addBooking(Booking{ScheduleID: "s-1", Email: "somsak@example.com", Capacity: 2, DateBooking: checkpoint(2026, 3, 16), Status: StatusSucceed})
	repo.addBooking(Booking{ScheduleID: "s-1", Email: "other@example.com", Capacity: 2, DateBooking: checkpoint(2026, 3, 16), Status: StatusSucceed})
	svc, mock, done := setupGuard(t, repo)
	defer done()

	expectTxRollback(mock)

	_, _, err := svc.Update(context.Background(), existing.ID, UpdateBookingRequest{Capacity: intPtr(4)}, Actor{})
	ae, ok := apperr.As(err)
	require.True(t, ok)
	require.Equal(t, apperr.KindConflict, ae.Kind)
	// others hold 2 of 5, so 3 remain for this booking
	require.Equal(t, 3, *ae.RemainingSeats)
}

func TestUpdateMovedSlotFreesSourceAndFillsTarget(t *testing.T) {
	repo := newStubRepo()
	repo.addSchedule("s-1", 1, false, 5)
	repo.addSchedule("s-2", 1, false, 5)
	existing := repo.addBooking(Booking{ScheduleID: "s-1", Email: "somsak@example.com", Capacity: 2, DateBooking: checkpoint(2026, 3, 16), Status: StatusSucceed})
	svc, mock, done := setupGuard(t, repo)
	defer done()

	expectTxCommit(mock)

	moved, events, err := svc.Update(context.Background(), existing.ID, UpdateBookingRequest{ScheduleID: strPtr("s-2")}, Actor{})
	require.NoError(t, err)
	require.Equal(t, "s-2", moved.ScheduleID)
	require.Equal(t, StatusRescheduled, moved.Status)
	require.Len(t, events, 1)
	require.Equal(t, EventRescheduled, events[0].Type)

	source, err := svc.CheckAvailability(context.Background(), "s-1", day(2026, 3, 16))
	require.NoError(t, err)
	require.Equal(t, 5, source.AvailableSeats)

	target, err := svc.CheckAvailability(context.Background(), "s-2", day(2026, 3, 16))
	require.NoError(t, err)
	require.Equal(t, 3, target.AvailableSeats)
}

func TestUpdateMovedSlotDoesNotOffsetByOwnSeats(t *testing.T) {
	// the historical undercounting bug: a moved booking's old seats must
	// not be subtracted from the destination count
	repo := newStubRepo()
	repo.addSchedule("s-1", 1, false, 5)
	repo.addSchedule("s-2", 1, false, 5)
	existing := repo.addBooking(Booking{ScheduleID: "s-1", Email: "somsak@example.com", Capacity: 3, DateBooking: checkpoint(2026, 3, 16), Status: StatusSucceed})
	repo.addBooking(Booking{ScheduleID: "s-2", Email: "other@example.com", Capacity: 4, DateBooking: checkpoint(2026, 3, 16), Status: StatusSucceed})
	svc, mock, done := setupGuard(t, repo)
	defer done()

	expectTxRollback(mock)

	_, _, err := svc.Update(context.Background(), existing.ID, UpdateBookingRequest{ScheduleID: strPtr("s-2")}, Actor{})
	ae, ok := apperr.As(err)
	require.True(t, ok)
	require.Equal(t, apperr.KindConflict, ae.Kind)
	require.Equal(t, 1, *ae.RemainingSeats)
}

func TestUpdateDateChangeIsAMove(t *testing.T) {
	repo := newStubRepo()
	repo.addSchedule("s-1", 1, false, 5)
	existing := repo.addBooking(Booking{ScheduleID: "s-1", Email: "somsak@example.com", Capacity: 2, DateBooking: checkpoint(2026, 3, 16), Status: StatusSucceed})
	svc, mock, done := setupGuard(t, repo)
	defer done()

	expectTxCommit(mock)

	moved, _, err := svc.Update(context.Background(), existing.ID, UpdateBookingRequest{DateBooking: strPtr("2026-03-17")}, Actor{})
	require.NoError(t, err)
	require.Equal(t, StatusRescheduled, moved.Status)

	source, err := svc.CheckAvailability(context.Background(), "s-1", day(2026, 3, 16))
	require.NoError(t, err)
	require.Equal(t, 5, source.AvailableSeats)
}

func TestUpdateRejectsPastTargetDate(t *testing.T) {
	repo := newStubRepo()
	repo.addSchedule("s-1", 1, false, 5)
	existing := repo.addBooking(Booking{ScheduleID: "s-1", Email: "somsak@example.com", Capacity: 2, DateBooking: checkpoint(2026, 3, 16), Status: StatusSucceed})
	svc, _, done := setupGuard(t, repo)
	defer done()

	_, _, err := svc.Update(context.Background(), existing.ID, UpdateBookingRequest{DateBooking: strPtr("2026-03-10")}, Actor{})
	require.True(t, apperr.IsKind(err, apperr.KindBadRequest))
}

func TestSetStatusRestoreReChecksCapacity(t *testing.T) {
	repo := newStubRepo()
	repo.addSchedule("s-1", 1, false, 5)
	canceled := repo.addBooking(Booking{ScheduleID: "s-1", Email: "somsak@example.com", Capacity: 3, DateBooking: checkpoint(2026, 3, 16), Status: StatusCanceled})
	// someone took the seats in the meantime
	repo.addBooking(Booking{ScheduleID: "s-1", Email: "other@example.com", Capacity: 4, DateBooking: checkpoint(2026, 3, 16), Status: StatusSucceed})
	svc, mock, done := setupGuard(t, repo)
	defer done()

	expectTxRollback(mock)

	_, _, err := svc.SetStatus(context.Background(), canceled.ID, StatusSucceed, Actor{})
	ae, ok := apperr.As(err)
	require.True(t, ok)
	require.Equal(t, apperr.KindConflict, ae.Kind)
	require.Equal(t, 1, *ae.RemainingSeats)
}

func TestSetStatusRestoreSucceedsWhenRoomRemains(t *testing.T) {
	repo := newStubRepo()
	repo.addSchedule("s-1", 1, false, 5)
	canceled := repo.addBooking(Booking{ScheduleID: "s-1", Email: "somsak@example.com", Capacity: 3, DateBooking: checkpoint(2026, 3, 16), Status: StatusCanceled})
	svc, mock, done := setupGuard(t, repo)
	defer done()

	expectTxCommit(mock)

	restored, _, err := svc.SetStatus(context.Background(), canceled.ID, StatusSucceed, Actor{})
	require.NoError(t, err)
	require.Equal(t, StatusSucceed, restored.Status)
	require.Contains(t, repo.lockedIDs, "s-1")
}

func TestSetStatusHoldingToHoldingSkipsCheck(t *testing.T) {
	repo := newStubRepo()
	repo.addSchedule("s-1", 1, false, 5)
	pending := repo.addBooking(Booking{ScheduleID: "s-1", Email: "somsak@example.com", Capacity: 5, DateBooking: checkpoint(2026, 3, 16), Status: StatusPending})
	svc, _, done := setupGuard(t, repo)
	defer done()

	// seat count is unchanged, so no transaction and no lock
	updated, _, err := svc.SetStatus(context.Background(), pending.ID, StatusPaymented, Actor{})
	require.NoError(t, err)
	require.Equal(t, StatusPaymented, updated.Status)
	require.Empty(t, repo.lockedIDs)
}

func TestSetStatusUnknownStatus(t *testing.T) {
	svc, _, done := setupGuard(t, newStubRepo())
	defer done()

	_, _, err := svc.SetStatus(context.Background(), "b-1", "VANISHED", Actor{})
	require.True(t, apperr.IsKind(err, apperr.KindBadRequest))
}

func TestSetTrainerOnGroupBookingRejected(t *testing.T) {
	repo := newStubRepo()
	repo.addSchedule("s-1", 1, false, 5)
	b := repo.addBooking(Booking{ScheduleID: "s-1", Email: "somsak@example.com", Capacity: 1, DateBooking: checkpoint(2026, 3, 16), Status: StatusSucceed, IsPrivate: false})
	svc, _, done := setupGuard(t, repo)
	defer done()

	_, _, err := svc.SetTrainer(context.Background(), b.ID, strPtr("trainer-1"), Actor{})
	require.True(t, apperr.IsKind(err, apperr.KindBadRequest))
}

func TestListAvailableUsesSharedCalculator(t *testing.T) {
	repo := newStubRepo()
	repo.addSchedule("s-1", 1, false, 5)
	repo.addSchedule("s-2", 1, false, 8)
	repo.addBooking(Booking{ScheduleID: "s-2", Email: "x@example.com", Capacity: 3, DateBooking: checkpoint(2026, 3, 16), Status: StatusSucceed})

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	_ = mock

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	lister := &stubLister{schedules: []schedule.ScheduleWithCapacity{
		{ClassSchedule: *repo.schedules["s-1"]},
		{ClassSchedule: *repo.schedules["s-2"]},
	}}
	svc := NewService(sqlxDB, repo, lister, bangkok)
	svc.now = func() time.Time { return testNow.In(bangkok) }

	results, err := svc.ListAvailable(context.Background(), day(2026, 3, 16), 1, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, 5, results[0].AvailableSeats)
	require.Equal(t, 5, results[1].AvailableSeats)
	// the read path never locks
	require.Empty(t, repo.lockedIDs)
}
