package scheduling

// Interval is a half-open range [Start, End) within a single day.
type Interval struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

func (i Interval) Valid() bool {
	return i.Start.Valid() && i.End.Valid() && i.End > i.Start
}

// Contains reports whether other lies inside i. Boundaries are inclusive.
func (i Interval) Contains(other Interval) bool {
	return i.Start <= other.Start && i.End >= other.End
}

// Overlaps is the single overlap predicate shared by slot generation and validation.
// Touching intervals do not overlap.
func Overlaps(a, b Interval) bool {
	return a.Start < b.End && b.Start < a.End
}

func overlapsAny(candidate Interval, busy []Interval) bool {
	for _, b := range busy {
		if Overlaps(candidate, b) {
			return true
		}
	}
	return false
}
