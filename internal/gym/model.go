package gym

import (
	"fmt"
	"time"

	"fitslot/internal/scheduling"
)

type Gym struct {
	ID          int                  `db:"id" json:"id"`
	Name        string               `db:"name" json:"name"`
	Address     string               `db:"address" json:"address"`
	OpeningTime scheduling.TimeOfDay `db:"opening_time" json:"opening_time"`
	ClosingTime scheduling.TimeOfDay `db:"closing_time" json:"closing_time"`
	IsActive    bool                 `db:"is_active" json:"is_active"`
	CreatedAt   time.Time            `db:"created_at" json:"created_at"`
}

type Trainer struct {
	ID        int       `db:"id" json:"id"`
	GymID     int       `db:"gym_id" json:"gym_id"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	Email     *string   `db:"email" json:"email,omitempty"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

func (t Trainer) FullName() string {
	return fmt.Sprintf("%s %s", t.FirstName, t.LastName)
}

// Offering is a bookable service (a row of the services table). Its duration fixes the
// length of every booking made for it.
type Offering struct {
	ID              int       `db:"id" json:"id"`
	GymID           int       `db:"gym_id" json:"gym_id"`
	Name            string    `db:"name" json:"name"`
	Description     string    `db:"description" json:"description"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	PriceCents      int64     `db:"price_cents" json:"price_cents"`
	IsActive        bool      `db:"is_active" json:"is_active"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

func (s Offering) Duration() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}
