package booking

import (
	"context"
	"sort"
	"sync"
	"time"

	"fitslot/internal/gym"
	"fitslot/internal/scheduling"
)

// memoryRepository is a Repository over a map. A single mutex stands in for the
// per-partition lock of the SQL implementation.
type memoryRepository struct {
	mu       sync.Mutex
	nextID   int
	bookings map[int]*Booking
	now      func() time.Time
}

func newMemoryRepository(now func() time.Time) *memoryRepository {
	return &memoryRepository{bookings: make(map[int]*Booking), now: now}
}

// seed stores b as-is and returns its id.
func (r *memoryRepository) seed(b Booking) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	b.ID = r.nextID
	b.Date = scheduling.Day(b.Date)
	if b.CreatedAt.IsZero() {
		b.CreatedAt = r.now()
		b.UpdatedAt = b.CreatedAt
	}
	r.bookings[b.ID] = &b
	return b.ID
}

func (r *memoryRepository) get(id int) Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.bookings[id]
}

func (r *memoryRepository) sorted() []Booking {
	out := make([]Booking, 0, len(r.bookings))
	for _, b := range r.bookings {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *memoryRepository) CreateIfFree(ctx context.Context, b *Booking, check CheckFunc) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var existing []Booking
	for _, other := range r.sorted() {
		if other.TrainerID == b.TrainerID && scheduling.CompareDays(other.Date, b.Date) == 0 && other.Status.Occupies() {
			existing = append(existing, other)
		}
	}
	if err := check(existing); err != nil {
		return nil, err
	}

	created := *b
	r.nextID++
	created.ID = r.nextID
	created.CreatedAt = r.now()
	created.UpdatedAt = created.CreatedAt
	r.bookings[created.ID] = &created
	out := created
	return &out, nil
}

func (r *memoryRepository) GetByID(ctx context.Context, id int) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	out := *b
	return &out, nil
}

func (r *memoryRepository) ListByTrainerAndDate(ctx context.Context, trainerID int, date time.Time) ([]Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Booking
	for _, b := range r.sorted() {
		if b.TrainerID == trainerID && scheduling.CompareDays(b.Date, date) == 0 {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *memoryRepository) ListByMember(ctx context.Context, memberID int) ([]Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Booking
	for _, b := range r.sorted() {
		if b.MemberID == memberID {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := scheduling.CompareDays(out[i].Date, out[j].Date); c != 0 {
			return c > 0
		}
		return out[i].StartMinute > out[j].StartMinute
	})
	return out, nil
}

func (r *memoryRepository) ListDetails(ctx context.Context, f Filter) ([]BookingWithDetails, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []BookingWithDetails
	for _, b := range r.sorted() {
		if f.TrainerID > 0 && b.TrainerID != f.TrainerID {
			continue
		}
		if f.Date != nil && scheduling.CompareDays(b.Date, *f.Date) != 0 {
			continue
		}
		if f.From != nil && scheduling.CompareDays(b.Date, *f.From) < 0 {
			continue
		}
		if f.To != nil && scheduling.CompareDays(b.Date, *f.To) > 0 {
			continue
		}
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		out = append(out, BookingWithDetails{Booking: b})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := scheduling.CompareDays(out[i].Date, out[j].Date); c != 0 {
			return c > 0
		}
		return out[i].StartMinute > out[j].StartMinute
	})
	return out, nil
}

func (r *memoryRepository) Transition(ctx context.Context, id int, decide DecideFunc) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	current := *b
	next, err := decide(&current)
	if err != nil {
		return nil, err
	}
	if next != b.Status {
		b.Status = next
		b.UpdatedAt = r.now()
	}
	out := *b
	return &out, nil
}

func (r *memoryRepository) complete(now time.Time, match func(*Booking) bool) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, b := range r.bookings {
		if match(b) && Elapsed(*b, now) {
			b.Status = StatusCompleted
			b.UpdatedAt = r.now()
			n++
		}
	}
	return n
}

func (r *memoryRepository) CompleteElapsed(ctx context.Context, memberID int, now time.Time) (int64, error) {
	return r.complete(now, func(b *Booking) bool { return b.MemberID == memberID }), nil
}

func (r *memoryRepository) CompleteAllElapsed(ctx context.Context, now time.Time) (int64, error) {
	return r.complete(now, func(*Booking) bool { return true }), nil
}

type stubCalendar map[time.Weekday][]scheduling.Interval

func (c stubCalendar) WindowsFor(ctx context.Context, trainerID int, date time.Time) ([]scheduling.Interval, error) {
	return c[date.Weekday()], nil
}

type stubCatalog struct {
	trainers  map[int]*gym.Trainer
	offerings map[int]*gym.Offering
}

func (c stubCatalog) GetTrainer(ctx context.Context, id int) (*gym.Trainer, error) {
	t, ok := c.trainers[id]
	if !ok || !t.IsActive {
		return nil, gym.ErrTrainerNotFound
	}
	return t, nil
}

func (c stubCatalog) GetTrainerService(ctx context.Context, trainerID, serviceID int) (*gym.Offering, error) {
	o, ok := c.offerings[serviceID]
	if !ok || !o.IsActive {
		return nil, gym.ErrServiceNotFound
	}
	return o, nil
}
