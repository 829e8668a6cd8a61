package availability

import (
	"context"
	"time"

	"fitslot/internal/gym"
	"fitslot/internal/scheduling"
)

// TrainerLookup resolves active trainers.
type TrainerLookup interface {
	GetTrainer(ctx context.Context, id int) (*gym.Trainer, error)
}

type Service interface {
	// WindowsFor returns every active window the trainer has on the weekday of date.
	WindowsFor(ctx context.Context, trainerID int, date time.Time) ([]scheduling.Interval, error)
	ListTrainerWindows(ctx context.Context, trainerID int) ([]WindowView, error)
	AvailableTrainers(ctx context.Context, date time.Time, serviceID int) ([]AvailableTrainer, error)
}

type service struct {
	repo     Repository
	trainers TrainerLookup
}

func NewService(repo Repository, trainers TrainerLookup) Service {
	return &service{
		repo:     repo,
		trainers: trainers,
	}
}

func (s *service) WindowsFor(ctx context.Context, trainerID int, date time.Time) ([]scheduling.Interval, error) {
	return s.repo.WindowsFor(ctx, trainerID, date.Weekday())
}

func (s *service) ListTrainerWindows(ctx context.Context, trainerID int) ([]WindowView, error) {
	if _, err := s.trainers.GetTrainer(ctx, trainerID); err != nil {
		return nil, err
	}

	rows, err := s.repo.ListByTrainer(ctx, trainerID)
	if err != nil {
		return nil, err
	}

	views := make([]WindowView, 0, len(rows))
	for _, row := range rows {
		views = append(views, viewOf(row))
	}
	return views, nil
}

func (s *service) AvailableTrainers(ctx context.Context, date time.Time, serviceID int) ([]AvailableTrainer, error) {
	return s.repo.AvailableTrainers(ctx, date.Weekday(), serviceID)
}
