package availability

import (
	"context"
	"time"

	"fitslot/internal/scheduling"
)

type Repository interface {
	WindowsFor(ctx context.Context, trainerID int, day time.Weekday) ([]scheduling.Interval, error)
	ListByTrainer(ctx context.Context, trainerID int) ([]TrainerAvailability, error)
	// AvailableTrainers lists active trainers with an active window on day. A positive
	// serviceID keeps only trainers offering that service.
	AvailableTrainers(ctx context.Context, day time.Weekday, serviceID int) ([]AvailableTrainer, error)
}
