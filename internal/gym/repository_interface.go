package gym

import "context"

type Repository interface {
	GetAllGyms(ctx context.Context) ([]Gym, error)
	GetTrainerByID(ctx context.Context, id int) (*Trainer, error)
	ListTrainersByGym(ctx context.Context, gymID int) ([]Trainer, error)
	GetServiceByID(ctx context.Context, id int) (*Offering, error)
	ListServicesByTrainer(ctx context.Context, trainerID int) ([]Offering, error)
	TrainerOffersService(ctx context.Context, trainerID, serviceID int) (bool, error)
}
