package booking

import (
	"errors"
	"time"
)

var (
	ErrAlreadyCompleted  = errors.New("booking already completed")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotPermitted      = errors.New("not permitted to change this booking")
)

var transitions = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusRejected, StatusCancelled},
	StatusApproved: {StatusCompleted, StatusCancelled},
}

func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Decide returns the status a booking moves to when actor asks for target.
// A returned status equal to current means nothing changes.
func Decide(current, target Status, actor Role) (Status, error) {
	if _, err := ParseStatus(string(target)); err != nil {
		return current, ErrInvalidTransition
	}

	switch actor {
	case RoleStaff:
	case RoleMember:
		if target != StatusCancelled {
			return current, ErrNotPermitted
		}
	case RoleSystem:
		if target != StatusCompleted {
			return current, ErrNotPermitted
		}
	default:
		return current, ErrNotPermitted
	}

	if current == StatusCompleted {
		switch {
		case target == StatusCompleted && actor == RoleSystem:
			return current, nil
		case target == StatusCancelled:
			return current, ErrAlreadyCompleted
		}
	}

	if !CanTransition(current, target) {
		return current, ErrInvalidTransition
	}
	return target, nil
}

// Elapsed reports whether an approved booking's end has passed and it is due for completion.
func Elapsed(b Booking, now time.Time) bool {
	return b.Status == StatusApproved && !now.Before(b.EndsAt())
}
