package gym

import (
	"context"
	"errors"
)

var (
	ErrGymNotFound     = errors.New("gym not found")
	ErrTrainerNotFound = errors.New("trainer not found")
	ErrServiceNotFound = errors.New("service not found")
)

type Service interface {
	GetAllGyms(ctx context.Context) ([]Gym, error)
	GetTrainer(ctx context.Context, id int) (*Trainer, error)
	ListTrainers(ctx context.Context, gymID int) ([]Trainer, error)
	// GetTrainerService returns the service only if it is active and offered by the trainer.
	GetTrainerService(ctx context.Context, trainerID, serviceID int) (*Offering, error)
	ListTrainerServices(ctx context.Context, trainerID int) ([]Offering, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{
		repo: repo,
	}
}

func (s *service) GetAllGyms(ctx context.Context) ([]Gym, error) {
	return s.repo.GetAllGyms(ctx)
}

// GetTrainer treats an inactive trainer as missing.
func (s *service) GetTrainer(ctx context.Context, id int) (*Trainer, error) {
	trainer, err := s.repo.GetTrainerByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !trainer.IsActive {
		return nil, ErrTrainerNotFound
	}
	return trainer, nil
}

func (s *service) ListTrainers(ctx context.Context, gymID int) ([]Trainer, error) {
	return s.repo.ListTrainersByGym(ctx, gymID)
}

func (s *service) GetTrainerService(ctx context.Context, trainerID, serviceID int) (*Offering, error) {
	svc, err := s.repo.GetServiceByID(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if !svc.IsActive {
		return nil, ErrServiceNotFound
	}

	offered, err := s.repo.TrainerOffersService(ctx, trainerID, serviceID)
	if err != nil {
		return nil, err
	}
	if !offered {
		return nil, ErrServiceNotFound
	}
	return svc, nil
}

func (s *service) ListTrainerServices(ctx context.Context, trainerID int) ([]Offering, error) {
	if _, err := s.GetTrainer(ctx, trainerID); err != nil {
		return nil, err
	}
	return s.repo.ListServicesByTrainer(ctx, trainerID)
}
