package scheduling

import "errors"

// Rejection reasons returned by Validate.
var (
	ErrInvalidInterval     = errors.New("invalid interval: end must be after start")
	ErrOutsideAvailability = errors.New("requested time is outside the trainer's availability")
	ErrTrainerBusy         = errors.New("trainer already has a booking in this time range")
)

// Validate decides whether proposed can be booked given the day's availability windows and
// the intervals already occupied by active bookings. Checks run in a fixed order and the
// first failing one is reported. A nil result means accept.
func Validate(windows []Interval, busy []Interval, proposed Interval) error {
	// An end past midnight is well-formed; no window can contain it.
	if !proposed.Start.Valid() || proposed.End <= proposed.Start {
		return ErrInvalidInterval
	}

	inside := false
	for _, w := range windows {
		if w.Valid() && w.Contains(proposed) {
			inside = true
			break
		}
	}
	if !inside {
		return ErrOutsideAvailability
	}

	if overlapsAny(proposed, busy) {
		return ErrTrainerBusy
	}
	return nil
}

// IsRejection reports whether err is one of Validate's reasons.
func IsRejection(err error) bool {
	return errors.Is(err, ErrInvalidInterval) ||
		errors.Is(err, ErrOutsideAvailability) ||
		errors.Is(err, ErrTrainerBusy)
}
