package scheduling

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var ErrInvalidTimeOfDay = errors.New("invalid time of day")

// TimeOfDay is an offset from local midnight, in minutes.
type TimeOfDay int

const (
	Midnight  TimeOfDay = 0
	EndOfDay  TimeOfDay = 24 * 60
	clockForm           = "15:04"
)

// At builds a TimeOfDay from an hour and minute.
func At(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

// ParseTimeOfDay accepts "HH:MM".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse(clockForm, s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	return At(t.Hour(), t.Minute()), nil
}

// TimeOfDayOf returns the wall-clock offset of t, truncated to the minute.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return At(t.Hour(), t.Minute())
}

// Add shifts the offset by d, truncated to whole minutes.
func (t TimeOfDay) Add(d time.Duration) TimeOfDay {
	return t + TimeOfDay(d/time.Minute)
}

func (t TimeOfDay) Duration() time.Duration {
	return time.Duration(t) * time.Minute
}

// On places the offset on the calendar day of date.
func (t TimeOfDay) On(date time.Time) time.Time {
	return Day(date).Add(t.Duration())
}

func (t TimeOfDay) Valid() bool {
	return t >= Midnight && t <= EndOfDay
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
