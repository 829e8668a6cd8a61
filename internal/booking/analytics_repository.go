package booking

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

type StatusSummary struct {
	Total             int     `db:"total" json:"total"`
	Pending           int     `db:"pending" json:"pending"`
	Approved          int     `db:"approved" json:"approved"`
	Rejected          int     `db:"rejected" json:"rejected"`
	Completed         int     `db:"completed" json:"completed"`
	Cancelled         int     `db:"cancelled" json:"cancelled"`
	RevenueCents      int64   `db:"revenue_cents" json:"revenue_cents"`
	AveragePriceCents float64 `db:"average_price_cents" json:"average_price_cents"`
}

type BookingStatsByDay struct {
	Day       time.Time `db:"bucket" json:"day"`
	Booked    int       `db:"booked" json:"booked"`
	Cancelled int       `db:"cancelled" json:"cancelled"`
	Completed int       `db:"completed" json:"completed"`
}

type BookingStatsByTrainer struct {
	TrainerID    int    `db:"trainer_id" json:"trainer_id"`
	TrainerName  string `db:"trainer_name" json:"trainer_name"`
	Completed    int    `db:"completed" json:"completed"`
	Cancelled    int    `db:"cancelled" json:"cancelled"`
	RevenueCents int64  `db:"revenue_cents" json:"revenue_cents"`
}

type AnalyticsRepository interface {
	Summary(ctx context.Context, from, to time.Time) (*StatusSummary, error)
	ByDay(ctx context.Context, from, to time.Time) ([]BookingStatsByDay, error)
	ByTrainer(ctx context.Context, from, to time.Time) ([]BookingStatsByTrainer, error)
}

type analyticsRepository struct {
	db *sqlx.DB
}

func NewAnalyticsRepository(db *sqlx.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

// Summary counts bookings whose date falls in [from, to].
func (r *analyticsRepository) Summary(ctx context.Context, from, to time.Time) (*StatusSummary, error) {
	query := `
SELECT
  COUNT(*)                                        AS total,
  COUNT(*) FILTER (WHERE status = 'pending')      AS pending,
  COUNT(*) FILTER (WHERE status = 'approved')     AS approved,
  COUNT(*) FILTER (WHERE status = 'rejected')     AS rejected,
  COUNT(*) FILTER (WHERE status = 'completed')    AS completed,
  COUNT(*) FILTER (WHERE status = 'cancelled')    AS cancelled,
  COALESCE(SUM(price_cents) FILTER (WHERE status = 'completed'), 0)::bigint AS revenue_cents,
  COALESCE(AVG(price_cents), 0)::float8           AS average_price_cents
FROM bookings
WHERE booking_date BETWEEN $1 AND $2;
`
	var s StatusSummary
	if err := r.db.GetContext(ctx, &s, query, dateArg(from), dateArg(to)); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *analyticsRepository) ByDay(ctx context.Context, from, to time.Time) ([]BookingStatsByDay, error) {
	query := `
SELECT
  booking_date AS bucket,
  COUNT(*) FILTER (WHERE status NOT IN ('cancelled', 'rejected')) AS booked,
  COUNT(*) FILTER (WHERE status = 'cancelled')                    AS cancelled,
  COUNT(*) FILTER (WHERE status = 'completed')                    AS completed
FROM bookings
WHERE booking_date BETWEEN $1 AND $2
GROUP BY booking_date
ORDER BY bucket;
`
	var stats []BookingStatsByDay
	if err := r.db.SelectContext(ctx, &stats, query, dateArg(from), dateArg(to)); err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *analyticsRepository) ByTrainer(ctx context.Context, from, to time.Time) ([]BookingStatsByTrainer, error) {
	query := `
SELECT
  t.id                             AS trainer_id,
  t.first_name || ' ' || t.last_name AS trainer_name,
  COUNT(b.id) FILTER (WHERE b.status = 'completed') AS completed,
  COUNT(b.id) FILTER (WHERE b.status = 'cancelled') AS cancelled,
  COALESCE(SUM(b.price_cents) FILTER (WHERE b.status = 'completed'), 0)::bigint AS revenue_cents
FROM trainers t
JOIN bookings b ON b.trainer_id = t.id
WHERE b.booking_date BETWEEN $1 AND $2
GROUP BY t.id, t.first_name, t.last_name
ORDER BY t.id;
`
	var stats []BookingStatsByTrainer
	if err := r.db.SelectContext(ctx, &stats, query, dateArg(from), dateArg(to)); err != nil {
		return nil, err
	}
	return stats, nil
}
