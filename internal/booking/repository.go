package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"fitslot/internal/db"
	"fitslot/internal/scheduling"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var ErrBookingNotFound = errors.New("booking not found")

// exclusionViolation is raised by the bookings_no_overlap constraint.
const exclusionViolation = "23P01"

const bookingColumns = `id, member_id, trainer_id, service_id, booking_date, start_minute, end_minute,
	price_cents, status, notes, created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func dateArg(t time.Time) string {
	return t.Format(scheduling.DateLayout)
}

func normalize(bookings []Booking) {
	for i := range bookings {
		bookings[i].Date = scheduling.Day(bookings[i].Date)
	}
}

func isExclusionViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == exclusionViolation
}

func (r *repository) CreateIfFree(ctx context.Context, b *Booking, check CheckFunc) (*Booking, error) {
	created := *b

	err := db.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1, $2)`,
			created.TrainerID, scheduling.DayNumber(created.Date)); err != nil {
			return fmt.Errorf("lock trainer day: %w", err)
		}

		var existing []Booking
		query := `SELECT ` + bookingColumns + `
			FROM bookings
			WHERE trainer_id = $1 AND booking_date = $2 AND status NOT IN ('cancelled', 'rejected')
			ORDER BY start_minute`
		if err := tx.SelectContext(ctx, &existing, query, created.TrainerID, dateArg(created.Date)); err != nil {
			return fmt.Errorf("load trainer day: %w", err)
		}
		normalize(existing)

		if err := check(existing); err != nil {
			return err
		}

		insert := `
			INSERT INTO bookings (member_id, trainer_id, service_id, booking_date, start_minute, end_minute, price_cents, status, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id, created_at, updated_at
		`
		return tx.QueryRowxContext(ctx, insert,
			created.MemberID, created.TrainerID, created.ServiceID, dateArg(created.Date),
			created.StartMinute, created.EndMinute, created.PriceCents, created.Status, created.Notes,
		).Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
	})
	if err != nil {
		if isExclusionViolation(err) {
			return nil, scheduling.ErrTrainerBusy
		}
		return nil, err
	}

	return &created, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	var b Booking
	err := r.db.GetContext(ctx, &b, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	b.Date = scheduling.Day(b.Date)
	return &b, nil
}

func (r *repository) ListByTrainerAndDate(ctx context.Context, trainerID int, date time.Time) ([]Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE trainer_id = $1 AND booking_date = $2
		ORDER BY start_minute`

	var bookings []Booking
	if err := r.db.SelectContext(ctx, &bookings, query, trainerID, dateArg(date)); err != nil {
		return nil, err
	}
	normalize(bookings)
	return bookings, nil
}

func (r *repository) ListByMember(ctx context.Context, memberID int) ([]Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE member_id = $1
		ORDER BY booking_date DESC, start_minute DESC`

	var bookings []Booking
	if err := r.db.SelectContext(ctx, &bookings, query, memberID); err != nil {
		return nil, err
	}
	normalize(bookings)
	return bookings, nil
}

func (r *repository) ListDetails(ctx context.Context, f Filter) ([]BookingWithDetails, error) {
	var (
		conds []string
		args  []interface{}
	)
	if f.TrainerID > 0 {
		args = append(args, f.TrainerID)
		conds = append(conds, fmt.Sprintf("b.trainer_id = $%d", len(args)))
	}
	if f.Date != nil {
		args = append(args, dateArg(*f.Date))
		conds = append(conds, fmt.Sprintf("b.booking_date = $%d", len(args)))
	}
	if f.From != nil {
		args = append(args, dateArg(*f.From))
		conds = append(conds, fmt.Sprintf("b.booking_date >= $%d", len(args)))
	}
	if f.To != nil {
		args = append(args, dateArg(*f.To))
		conds = append(conds, fmt.Sprintf("b.booking_date <= $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("b.status = $%d", len(args)))
	}

	query := `
		SELECT
			b.id, b.member_id, b.trainer_id, b.service_id, b.booking_date, b.start_minute, b.end_minute,
			b.price_cents, b.status, b.notes, b.created_at, b.updated_at,
			u.name AS member_name,
			u.email AS member_email,
			t.first_name || ' ' || t.last_name AS trainer_name,
			s.name AS service_name
		FROM bookings b
		JOIN users u ON b.member_id = u.id
		JOIN trainers t ON b.trainer_id = t.id
		JOIN services s ON b.service_id = s.id`
	if len(conds) > 0 {
		query += "\n\t\tWHERE " + strings.Join(conds, " AND ")
	}
	query += "\n\t\tORDER BY b.booking_date DESC, b.start_minute DESC, b.id DESC"

	var rows []BookingWithDetails
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Date = scheduling.Day(rows[i].Date)
	}
	return rows, nil
}

func (r *repository) Transition(ctx context.Context, id int, decide DecideFunc) (*Booking, error) {
	var result Booking

	err := db.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 FOR UPDATE`
		if err := tx.GetContext(ctx, &result, query, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrBookingNotFound
			}
			return err
		}
		result.Date = scheduling.Day(result.Date)

		next, err := decide(&result)
		if err != nil {
			return err
		}
		if next == result.Status {
			return nil
		}

		update := `UPDATE bookings SET status = $1, updated_at = NOW() WHERE id = $2 RETURNING updated_at`
		if err := tx.GetContext(ctx, &result.UpdatedAt, update, next, id); err != nil {
			return err
		}
		result.Status = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// CompleteElapsed completes the member's approved bookings whose end has passed.
// Running it again at the same instant changes nothing.
func (r *repository) CompleteElapsed(ctx context.Context, memberID int, now time.Time) (int64, error) {
	query := `
		UPDATE bookings
		SET status = 'completed', updated_at = NOW()
		WHERE member_id = $1 AND status = 'approved'
		  AND (booking_date < $2 OR (booking_date = $2 AND end_minute <= $3))
	`
	return r.execCount(ctx, query, memberID, dateArg(now), scheduling.TimeOfDayOf(now))
}

func (r *repository) CompleteAllElapsed(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE bookings
		SET status = 'completed', updated_at = NOW()
		WHERE status = 'approved'
		  AND (booking_date < $1 OR (booking_date = $1 AND end_minute <= $2))
	`
	return r.execCount(ctx, query, dateArg(now), scheduling.TimeOfDayOf(now))
}

func (r *repository) execCount(ctx context.Context, query string, args ...interface{}) (int64, error) {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
