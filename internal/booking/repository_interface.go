package booking

import (
	"context"
	"time"
)

// CheckFunc inspects the bookings that occupy a (trainer, date) partition and
// returns an error to abort the insert.
type CheckFunc func(existing []Booking) error

// DecideFunc receives the locked booking and returns its next status.
type DecideFunc func(current *Booking) (Status, error)

type Repository interface {
	// CreateIfFree serializes on the booking's (trainer, date) partition, runs check
	// against the partition's occupying bookings and inserts b only if check passes.
	CreateIfFree(ctx context.Context, b *Booking, check CheckFunc) (*Booking, error)
	GetByID(ctx context.Context, id int) (*Booking, error)
	ListByTrainerAndDate(ctx context.Context, trainerID int, date time.Time) ([]Booking, error)
	ListByMember(ctx context.Context, memberID int) ([]Booking, error)
	ListDetails(ctx context.Context, f Filter) ([]BookingWithDetails, error)
	// Transition locks the booking row and applies the status decide returns.
	// Returning the current status leaves the row untouched.
	Transition(ctx context.Context, id int, decide DecideFunc) (*Booking, error)
	CompleteElapsed(ctx context.Context, memberID int, now time.Time) (int64, error)
	CompleteAllElapsed(ctx context.Context, now time.Time) (int64, error)
}
