package scheduling

import (
	"sort"
	"time"
)

const (
	DefaultGranularity = 30 * time.Minute
	DefaultSpan        = 60 * time.Minute
)

// SlotQuery carries everything OpenSlots needs; it is rebuilt from storage on every call.
type SlotQuery struct {
	Date    time.Time
	Now     time.Time
	Windows []Interval
	Busy    []Interval
	// Span is the length each candidate must keep free. Zero means DefaultSpan.
	Span time.Duration
	// Step is the distance between candidate starts. Zero means DefaultGranularity.
	Step time.Duration
}

// OpenSlots returns the ordered, de-duplicated start times on q.Date at which an interval
// of q.Span fits inside one of q.Windows without overlapping q.Busy.
// Past dates yield nothing; on the current date only starts strictly after now qualify.
func OpenSlots(q SlotQuery) []TimeOfDay {
	span, step := q.Span, q.Step
	if span <= 0 {
		span = DefaultSpan
	}
	if step <= 0 {
		step = DefaultGranularity
	}
	if span < time.Minute || step < time.Minute {
		return nil
	}

	cutoff := TimeOfDay(-1)
	switch CompareDays(q.Date, q.Now) {
	case -1:
		return nil
	case 0:
		cutoff = TimeOfDayOf(q.Now)
	}

	seen := make(map[TimeOfDay]struct{})
	var slots []TimeOfDay
	for _, w := range q.Windows {
		if !w.Valid() {
			continue
		}
		last := w.End.Add(-span)
		for c := w.Start; c <= last; c = c.Add(step) {
			if c <= cutoff {
				continue
			}
			candidate := Interval{Start: c, End: c.Add(span)}
			if overlapsAny(candidate, q.Busy) {
				continue
			}
			if _, dup := seen[c]; dup {
				continue
			}
			seen[c] = struct{}{}
			slots = append(slots, c)
		}
	}

	sort.Slice(slots, func(i, j int) bool { return slots[i] < slots[j] })
	return slots
}
