package availability

import (
	"context"
	"fmt"
	"time"

	"fitslot/internal/scheduling"

	"github.com/jmoiron/sqlx"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WindowsFor(ctx context.Context, trainerID int, day time.Weekday) ([]scheduling.Interval, error) {
	query := `
		SELECT id, trainer_id, day_of_week, start_minute, end_minute, is_active
		FROM trainer_availability
		WHERE trainer_id = $1 AND day_of_week = $2 AND is_active = TRUE
		ORDER BY start_minute
	`

	var rows []TrainerAvailability
	if err := r.db.SelectContext(ctx, &rows, query, trainerID, int(day)); err != nil {
		return nil, fmt.Errorf("load availability windows: %w", err)
	}

	windows := make([]scheduling.Interval, 0, len(rows))
	for _, row := range rows {
		windows = append(windows, row.Window())
	}
	return windows, nil
}

func (r *repository) ListByTrainer(ctx context.Context, trainerID int) ([]TrainerAvailability, error) {
	query := `
		SELECT id, trainer_id, day_of_week, start_minute, end_minute, is_active
		FROM trainer_availability
		WHERE trainer_id = $1 AND is_active = TRUE
		ORDER BY day_of_week, start_minute
	`

	var rows []TrainerAvailability
	if err := r.db.SelectContext(ctx, &rows, query, trainerID); err != nil {
		return nil, fmt.Errorf("list availability: %w", err)
	}
	return rows, nil
}

func (r *repository) AvailableTrainers(ctx context.Context, day time.Weekday, serviceID int) ([]AvailableTrainer, error) {
	query := `
		SELECT t.id, t.gym_id, t.first_name, t.last_name, t.email, t.is_active, t.created_at,
			a.start_minute, a.end_minute
		FROM trainers t
		JOIN trainer_availability a ON a.trainer_id = t.id AND a.day_of_week = $1 AND a.is_active = TRUE
		WHERE t.is_active = TRUE`
	args := []interface{}{int(day)}
	if serviceID > 0 {
		args = append(args, serviceID)
		query += `
			AND EXISTS (SELECT 1 FROM trainer_services ts WHERE ts.trainer_id = t.id AND ts.service_id = $2)`
	}
	query += `
		ORDER BY t.last_name, t.first_name, t.id, a.start_minute`

	var rows []trainerWindowRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list available trainers: %w", err)
	}
	return groupByTrainer(rows), nil
}
