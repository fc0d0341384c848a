package booking

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func setupRepoMock(t *testing.T) (Repository, *sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() {
		sqlxDB.Close()
	}

	return repo, sqlxDB, mock, closer
}

func scheduleRowColumns() []string {
	return []string{"id", "start_time", "end_time", "gyms_id", "description", "is_private", "is_active", "created_at", "updated_at"}
}

func TestGetScheduleRowLocksInsideTx(t *testing.T) {
	repo, sqlxDB, mock, done := setupRepoMock(t)
	defer done()

	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1 FOR UPDATE")).
		WithArgs("s-1").
		WillReturnRows(sqlmock.NewRows(scheduleRowColumns()).
			AddRow("s-1", "18:00", "19:30", 1, "Evening clinch", false, true, now, now))
	mock.ExpectRollback()

	tx, err := sqlxDB.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	defer tx.Rollback()

	s, err := repo.GetScheduleRow(context.Background(), tx, "s-1", true)
	require.NoError(t, err)
	require.Equal(t, "18:00", s.StartTime)
}

func TestGetScheduleRowReadOnlySkipsLock(t *testing.T) {
	repo, _, mock, done := setupRepoMock(t)
	defer done()

	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM classes_schedules WHERE id = $1")).
		WithArgs("s-1").
		WillReturnRows(sqlmock.NewRows(scheduleRowColumns()).
			AddRow("s-1", "18:00", "19:30", 1, "", false, true, now, now))

	_, err := repo.GetScheduleRow(context.Background(), nil, "s-1", false)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleOverrideAtNoRowsMeansNoOverride(t *testing.T) {
	repo, _, mock, done := setupRepoMock(t)
	defer done()

	at := time.Date(2026, 3, 16, 7, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE is_active = TRUE AND classes_schedules_id = $1")).
		WithArgs("s-1", at).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	cfg, err := repo.ScheduleOverrideAt(context.Background(), nil, "s-1", at)
	require.NoError(t, err)
	require.Nil(t, cfg)
}

func TestGymClosureAtPicksNewest(t *testing.T) {
	repo, _, mock, done := setupRepoMock(t)
	defer done()

	at := time.Date(2026, 3, 16, 7, 0, 0, 0, time.UTC)
	created := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("is_close_gym = TRUE AND classes_schedules_id IS NULL AND gyms_id = $1 AND start_date <= $2 AND end_date >= $2 ORDER BY created_at DESC LIMIT 1")).
		WithArgs(1, at).
		WillReturnRows(sqlmock.NewRows([]string{"id", "classes_schedules_id", "gyms_id", "start_date", "end_date", "is_close_gym", "capacity", "old_capacity", "description", "is_active", "created_at", "updated_at"}).
			AddRow("cfg-2", nil, 1, at.AddDate(0, 0, -1), at.AddDate(0, 0, 3), true, 0, 0, "Songkran break", true, created, created))

	cfg, err := repo.GymClosureAt(context.Background(), nil, 1, at)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	require.Equal(t, "cfg-2", cfg.ID)
	require.True(t, cfg.IsCloseGym)
}

func TestCountSeatsCoalescesEmptyDay(t *testing.T) {
	repo, _, mock, done := setupRepoMock(t)
	defer done()

	dayStart := time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(SUM(capacity), 0) FROM classes_bookings")).
		WithArgs("s-1", dayStart, dayEnd).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(0))

	used, err := repo.CountSeats(context.Background(), nil, "s-1", dayStart, dayEnd)
	require.NoError(t, err)
	require.Zero(t, used)
}

func TestDuplicateExistsExcludesOwnBooking(t *testing.T) {
	repo, _, mock, done := setupRepoMock(t)
	defer done()

	dayStart := time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	mock.ExpectQuery(regexp.QuoteMeta("AND ($5 = '' OR id <> $5::uuid)")).
		WithArgs("s-1", "somsak@example.com", dayStart, dayEnd, "b-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	exists, err := repo.DuplicateExists(context.Background(), nil, "s-1", "somsak@example.com", dayStart, dayEnd, "b-1")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestListAppliesFiltersAndPaging(t *testing.T) {
	repo, _, mock, done := setupRepoMock(t)
	defer done()

	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("s-1", "SUCCEED").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY b.date_booking DESC, b.created_at DESC LIMIT $3 OFFSET $4")).
		WithArgs("s-1", "SUCCEED", 2, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "classes_schedules_id", "name", "email", "phone", "capacity", "date_booking", "status", "is_private", "trainer_user_id", "note", "created_at", "updated_at"}).
			AddRow("b-1", "s-1", "Somsak", "somsak@example.com", "0812345678", 2, now, "SUCCEED", false, nil, "", now, now).
			AddRow("b-2", "s-1", "Malee", "malee@example.com", "0899999999", 1, now, "SUCCEED", false, nil, "", now, now))

	result, err := repo.List(context.Background(), ListFilters{ScheduleID: "s-1", Status: "SUCCEED", Limit: 2})
	require.NoError(t, err)
	require.EqualValues(t, 3, result.Total)
	require.Len(t, result.Bookings, 2)
	require.Nil(t, result.Bookings[0].TrainerUserID)
}

func TestUpdateStatusReturnsUpdatedRow(t *testing.T) {
	repo, _, mock, done := setupRepoMock(t)
	defer done()

	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("SET status = $2, updated_at = NOW() WHERE id = $1")).
		WithArgs("b-1", StatusCanceled).
		WillReturnRows(sqlmock.NewRows([]string{"id", "classes_schedules_id", "name", "email", "phone", "capacity", "date_booking", "status", "is_private", "trainer_user_id", "note", "created_at", "updated_at"}).
			AddRow("b-1", "s-1", "Somsak", "somsak@example.com", "", 2, now, StatusCanceled, false, nil, "", now, now))

	updated, err := repo.UpdateStatus(context.Background(), nil, "b-1", StatusCanceled)
	require.NoError(t, err)
	require.Equal(t, StatusCanceled, updated.Status)
}
