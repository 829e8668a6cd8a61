package booking

import (
	"encoding/json"
	"errors"
	"time"

	"fitslot/internal/scheduling"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

var ErrUnknownStatus = errors.New("unknown booking status")

func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusApproved, StatusRejected, StatusCompleted, StatusCancelled:
		return st, nil
	}
	return "", ErrUnknownStatus
}

// Terminal statuses accept no further change.
func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusCompleted || s == StatusCancelled
}

// Occupies reports whether a booking in this status blocks its interval.
func (s Status) Occupies() bool {
	return s != StatusCancelled && s != StatusRejected
}

type Role string

const (
	RoleMember Role = "member"
	RoleStaff  Role = "staff"
	RoleSystem Role = "system"
)

// Actor is whoever requests a status change.
type Actor struct {
	ID   int
	Role Role
}

func SystemActor() Actor {
	return Actor{Role: RoleSystem}
}

type Booking struct {
	ID          int                  `db:"id" json:"id"`
	MemberID    int                  `db:"member_id" json:"member_id"`
	TrainerID   int                  `db:"trainer_id" json:"trainer_id"`
	ServiceID   int                  `db:"service_id" json:"service_id"`
	Date        time.Time            `db:"booking_date" json:"date"`
	StartMinute scheduling.TimeOfDay `db:"start_minute" json:"start"`
	EndMinute   scheduling.TimeOfDay `db:"end_minute" json:"end"`
	PriceCents  int64                `db:"price_cents" json:"price_cents"`
	Status      Status               `db:"status" json:"status"`
	Notes       *string              `db:"notes" json:"notes,omitempty"`
	CreatedAt   time.Time            `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time            `db:"updated_at" json:"updated_at"`
}

func (b Booking) Interval() scheduling.Interval {
	return scheduling.Interval{Start: b.StartMinute, End: b.EndMinute}
}

func (b Booking) StartsAt() time.Time {
	return b.StartMinute.On(b.Date)
}

func (b Booking) EndsAt() time.Time {
	return b.EndMinute.On(b.Date)
}

type plainBooking Booking

type bookingJSON struct {
	plainBooking
	Date    string       `json:"date"`
	Display Presentation `json:"display"`
}

func (b Booking) view() bookingJSON {
	return bookingJSON{
		plainBooking: plainBooking(b),
		Date:         b.Date.Format(scheduling.DateLayout),
		Display:      PresentationOf(b.Status),
	}
}

// MarshalJSON renders the date as YYYY-MM-DD and attaches the status presentation.
func (b Booking) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.view())
}

// BookingWithDetails is a booking joined with the names staff need to read it.
type BookingWithDetails struct {
	Booking
	MemberName  string `db:"member_name" json:"member_name"`
	MemberEmail string `db:"member_email" json:"member_email"`
	TrainerName string `db:"trainer_name" json:"trainer_name"`
	ServiceName string `db:"service_name" json:"service_name"`
}

func (d BookingWithDetails) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		bookingJSON
		MemberName  string `json:"member_name"`
		MemberEmail string `json:"member_email"`
		TrainerName string `json:"trainer_name"`
		ServiceName string `json:"service_name"`
	}{d.Booking.view(), d.MemberName, d.MemberEmail, d.TrainerName, d.ServiceName})
}

// Filter narrows staff listings; zero fields are ignored. From and To bound the
// booking date inclusively.
type Filter struct {
	TrainerID int
	Date      *time.Time
	From      *time.Time
	To        *time.Time
	Status    Status
}

// busyIntervals returns the intervals occupied by bookings that still hold their time.
func busyIntervals(bookings []Booking) []scheduling.Interval {
	busy := make([]scheduling.Interval, 0, len(bookings))
	for _, b := range bookings {
		if b.Status.Occupies() {
			busy = append(busy, b.Interval())
		}
	}
	return busy
}

type SlotsResponse struct {
	TrainerID   int                    `json:"trainer_id"`
	Date        string                 `json:"date" example:"2026-10-19"`
	SpanMinutes int                    `json:"span_minutes" example:"60"`
	Slots       []scheduling.TimeOfDay `json:"slots" swaggertype:"array,string" example:"09:00,09:30"`
}

type CreateBookingRequest struct {
	TrainerID int     `json:"trainer_id" validate:"required,gt=0" example:"1"`
	ServiceID int     `json:"service_id" validate:"required,gt=0" example:"2"`
	Date      string  `json:"date" validate:"required,datetime=2006-01-02" example:"2026-10-19"`
	StartTime string  `json:"start_time" validate:"required,datetime=15:04" example:"10:30"`
	Notes     *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved rejected completed cancelled" example:"approved"`
}
