package scheduling

import "time"

const DateLayout = "2006-01-02"

// Day strips the time of day from t, keeping its calendar date in the local zone.
// Dates read back from the database come in UTC; only their y/m/d matter.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.Local)
}

// CompareDays orders two instants by calendar date only.
func CompareDays(a, b time.Time) int {
	da, db := Day(a), Day(b)
	switch {
	case da.Before(db):
		return -1
	case da.After(db):
		return 1
	default:
		return 0
	}
}

// DayNumber identifies a calendar date as days since 1970-01-01, used as a lock key.
func DayNumber(t time.Time) int32 {
	y, m, d := t.Date()
	return int32(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}
