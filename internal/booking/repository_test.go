package booking

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"fitslot/internal/scheduling"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bookingRowColumns = []string{
	"id", "member_id", "trainer_id", "service_id", "booking_date", "start_minute", "end_minute",
	"price_cents", "status", "notes", "created_at", "updated_at",
}

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func bookingRow(rows *sqlmock.Rows, id, member int, start, end scheduling.TimeOfDay, status Status) *sqlmock.Rows {
	ts := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)
	return rows.AddRow(id, member, 1, personalTraining,
		time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), int64(start), int64(end),
		4000, string(status), nil, ts, ts)
}

func pendingBooking(start scheduling.TimeOfDay) *Booking {
	return &Booking{
		MemberID: 5, TrainerID: 1, ServiceID: personalTraining, Date: monday,
		StartMinute: start, EndMinute: start.Add(time.Hour), PriceCents: 4000, Status: StatusPending,
	}
}

func expectTrainerDay(mock sqlmock.Sqlmock, rows *sqlmock.Rows) {
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock($1, $2)")).
		WithArgs(1, scheduling.DayNumber(monday)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`FROM bookings\s+WHERE trainer_id = \$1 AND booking_date = \$2 AND status NOT IN \('cancelled', 'rejected'\)`).
		WithArgs(1, "2026-10-19").
		WillReturnRows(rows)
}

func TestCreateIfFree_Inserts(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	expectTrainerDay(mock, bookingRow(sqlmock.NewRows(bookingRowColumns), 7, 99, at(10, 0), at(11, 0), StatusApproved))
	mock.ExpectQuery(`INSERT INTO bookings`).
		WithArgs(5, 1, personalTraining, "2026-10-19", int64(at(11, 0)), int64(at(12, 0)), int64(4000), "pending", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(8, created, created))
	mock.ExpectCommit()

	var seen []Booking
	b, err := repo.CreateIfFree(context.Background(), pendingBooking(at(11, 0)), func(existing []Booking) error {
		seen = existing
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, 8, b.ID)
	assert.Equal(t, created, b.CreatedAt)
	require.Len(t, seen, 1)
	assert.Equal(t, at(10, 0), seen[0].StartMinute)
	assert.Equal(t, monday, seen[0].Date)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateIfFree_CheckRejectionRollsBack(t *testing.T) {
	repo, mock := newMockRepo(t)

	expectTrainerDay(mock, bookingRow(sqlmock.NewRows(bookingRowColumns), 7, 99, at(10, 0), at(11, 0), StatusApproved))
	mock.ExpectRollback()

	_, err := repo.CreateIfFree(context.Background(), pendingBooking(at(10, 30)), func(existing []Booking) error {
		return scheduling.Validate(
			[]scheduling.Interval{{Start: at(9, 0), End: at(17, 0)}},
			busyIntervals(existing),
			scheduling.Interval{Start: at(10, 30), End: at(11, 30)},
		)
	})
	assert.ErrorIs(t, err, scheduling.ErrTrainerBusy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateIfFree_ExclusionViolationIsBusy(t *testing.T) {
	repo, mock := newMockRepo(t)

	expectTrainerDay(mock, sqlmock.NewRows(bookingRowColumns))
	mock.ExpectQuery(`INSERT INTO bookings`).
		WillReturnError(&pq.Error{Code: "23P01", Constraint: "bookings_no_overlap"})
	mock.ExpectRollback()

	_, err := repo.CreateIfFree(context.Background(), pendingBooking(at(10, 0)), func([]Booking) error { return nil })
	assert.ErrorIs(t, err, scheduling.ErrTrainerBusy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateIfFree_OtherErrorsPassThrough(t *testing.T) {
	repo, mock := newMockRepo(t)
	boom := errors.New("connection reset")

	mock.ExpectBegin()
	mock.ExpectExec(`pg_advisory_xact_lock`).WillReturnError(boom)
	mock.ExpectRollback()

	_, err := repo.CreateIfFree(context.Background(), pendingBooking(at(10, 0)), func([]Booking) error { return nil })
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, scheduling.ErrTrainerBusy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`FROM bookings WHERE id = \$1`).
		WithArgs(404).
		WillReturnRows(sqlmock.NewRows(bookingRowColumns))

	_, err := repo.GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestTransition_Updates(t *testing.T) {
	repo, mock := newMockRepo(t)
	updated := time.Date(2026, 10, 18, 12, 5, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM bookings WHERE id = \$1 FOR UPDATE`).
		WithArgs(7).
		WillReturnRows(bookingRow(sqlmock.NewRows(bookingRowColumns), 7, 5, at(10, 0), at(11, 0), StatusPending))
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE bookings SET status = $1, updated_at = NOW() WHERE id = $2 RETURNING updated_at")).
		WithArgs("approved", 7).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(updated))
	mock.ExpectCommit()

	b, err := repo.Transition(context.Background(), 7, func(current *Booking) (Status, error) {
		return Decide(current.Status, StatusApproved, RoleStaff)
	})
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, b.Status)
	assert.Equal(t, updated, b.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransition_NoChangeSkipsUpdate(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(7).
		WillReturnRows(bookingRow(sqlmock.NewRows(bookingRowColumns), 7, 5, at(10, 0), at(11, 0), StatusCompleted))
	mock.ExpectCommit()

	b, err := repo.Transition(context.Background(), 7, func(current *Booking) (Status, error) {
		return Decide(current.Status, StatusCompleted, RoleSystem)
	})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, b.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransition_DecisionErrorRollsBack(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(7).
		WillReturnRows(bookingRow(sqlmock.NewRows(bookingRowColumns), 7, 5, at(10, 0), at(11, 0), StatusCancelled))
	mock.ExpectRollback()

	_, err := repo.Transition(context.Background(), 7, func(current *Booking) (Status, error) {
		return Decide(current.Status, StatusApproved, RoleStaff)
	})
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransition_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WithArgs(404).WillReturnRows(sqlmock.NewRows(bookingRowColumns))
	mock.ExpectRollback()

	_, err := repo.Transition(context.Background(), 404, func(*Booking) (Status, error) {
		t.Fatal("decide must not run for a missing booking")
		return "", nil
	})
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestCompleteElapsed(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Date(2026, 10, 18, 12, 30, 45, 0, time.Local)

	mock.ExpectExec(`UPDATE bookings\s+SET status = 'completed'.*WHERE member_id = \$1 AND status = 'approved'`).
		WithArgs(5, "2026-10-18", int64(at(12, 30))).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repo.CompleteElapsed(context.Background(), 5, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteAllElapsed(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE bookings\s+SET status = 'completed'.*WHERE status = 'approved'`).
		WithArgs("2026-10-18", int64(at(12, 0))).
		WillReturnResult(sqlmock.NewResult(0, 0))

	n, err := repo.CompleteAllElapsed(context.Background(), noon)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListDetails_BuildsFilter(t *testing.T) {
	repo, mock := newMockRepo(t)
	date := monday

	columns := append(append([]string{}, bookingRowColumns...), "member_name", "member_email", "trainer_name", "service_name")
	ts := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`JOIN services s ON b.service_id = s.id\s+WHERE b.trainer_id = \$1 AND b.booking_date = \$2 AND b.status = \$3\s+ORDER BY`).
		WithArgs(1, "2026-10-19", "approved").
		WillReturnRows(sqlmock.NewRows(columns).AddRow(
			7, 5, 1, personalTraining, time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), int64(at(10, 0)), int64(at(11, 0)),
			4000, "approved", "bring water", ts, ts,
			"Mia", "mia@example.com", "Ana Kovac", "Personal training",
		))

	rows, err := repo.ListDetails(context.Background(), Filter{TrainerID: 1, Date: &date, Status: StatusApproved})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Ana Kovac", rows[0].TrainerName)
	assert.Equal(t, monday, rows[0].Date)
	require.NotNil(t, rows[0].Notes)
	assert.Equal(t, "bring water", *rows[0].Notes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListDetails_DateRange(t *testing.T) {
	repo, mock := newMockRepo(t)
	from, to := saturday, tuesday

	mock.ExpectQuery(`WHERE b.booking_date >= \$1 AND b.booking_date <= \$2 AND b.status = \$3\s+ORDER BY b.booking_date DESC`).
		WithArgs("2026-10-17", "2026-10-20", "pending").
		WillReturnRows(sqlmock.NewRows(bookingRowColumns))

	rows, err := repo.ListDetails(context.Background(), Filter{From: &from, To: &to, Status: StatusPending})
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListDetails_NoFilter(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`JOIN services s ON b.service_id = s.id\s+ORDER BY b.booking_date DESC, b.start_minute DESC, b.id DESC`).
		WithArgs().
		WillReturnRows(sqlmock.NewRows(bookingRowColumns))

	rows, err := repo.ListDetails(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
