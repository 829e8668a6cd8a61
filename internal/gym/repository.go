package gym

import (
	"context"
	"database/sql"
	"errors"

	"fitslot/internal/db"

	"github.com/jmoiron/sqlx"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetAllGyms(ctx context.Context) ([]Gym, error) {
	query := `
		SELECT id, name, address, opening_time, closing_time, is_active, created_at
		FROM gyms
		WHERE is_active = TRUE
		ORDER BY name
	`

	var gyms []Gym
	if err := r.db.SelectContext(ctx, &gyms, query); err != nil {
		return nil, err
	}
	return gyms, nil
}

func (r *repository) GetTrainerByID(ctx context.Context, id int) (*Trainer, error) {
	query := `
		SELECT id, gym_id, first_name, last_name, email, is_active, created_at
		FROM trainers
		WHERE id = $1
	`

	var trainer Trainer
	err := r.db.GetContext(ctx, &trainer, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTrainerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &trainer, nil
}

func (r *repository) ListTrainersByGym(ctx context.Context, gymID int) ([]Trainer, error) {
	query := `
		SELECT id, gym_id, first_name, last_name, email, is_active, created_at
		FROM trainers
		WHERE gym_id = $1 AND is_active = TRUE
		ORDER BY last_name, first_name
	`

	var trainers []Trainer
	if err := r.db.SelectContext(ctx, &trainers, query, gymID); err != nil {
		return nil, err
	}
	return trainers, nil
}

func (r *repository) GetServiceByID(ctx context.Context, id int) (*Offering, error) {
	query := `
		SELECT id, gym_id, name, description, duration_minutes, price_cents, is_active, created_at
		FROM services
		WHERE id = $1
	`

	var svc Offering
	err := r.db.GetContext(ctx, &svc, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &svc, nil
}

func (r *repository) ListServicesByTrainer(ctx context.Context, trainerID int) ([]Offering, error) {
	query := `
		SELECT s.id, s.gym_id, s.name, s.description, s.duration_minutes, s.price_cents, s.is_active, s.created_at
		FROM services s
		JOIN trainer_services ts ON ts.service_id = s.id
		WHERE ts.trainer_id = $1 AND s.is_active = TRUE
		ORDER BY s.name
	`

	var services []Offering
	if err := r.db.SelectContext(ctx, &services, query, trainerID); err != nil {
		return nil, err
	}
	return services, nil
}

func (r *repository) TrainerOffersService(ctx context.Context, trainerID, serviceID int) (bool, error) {
	return db.Exists(ctx, r.db,
		`SELECT EXISTS(SELECT 1 FROM trainer_services WHERE trainer_id = $1 AND service_id = $2)`,
		trainerID, serviceID)
}
