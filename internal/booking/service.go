package booking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"fitslot/internal/gym"
	"fitslot/internal/logger"
	"fitslot/internal/metrics"
	"fitslot/internal/scheduling"
	"fitslot/internal/user"
)

var ErrSlotInPast = errors.New("cannot book a slot in the past")

// Calendar yields a trainer's availability windows for the weekday of a date.
type Calendar interface {
	WindowsFor(ctx context.Context, trainerID int, date time.Time) ([]scheduling.Interval, error)
}

// Catalog resolves active trainers and the services they offer.
type Catalog interface {
	GetTrainer(ctx context.Context, id int) (*gym.Trainer, error)
	GetTrainerService(ctx context.Context, trainerID, serviceID int) (*gym.Offering, error)
}

type MemberDirectory interface {
	FindByID(ctx context.Context, id int) (*user.User, error)
}

type Notifier interface {
	SendBookingRequested(ctx context.Context, email, name, trainer, service string, when time.Time) error
	SendStatusChanged(ctx context.Context, email, name, status string, when time.Time) error
}

type Options struct {
	Granularity time.Duration
	DefaultSpan time.Duration
	Now         func() time.Time
}

type NewBooking struct {
	MemberID  int
	TrainerID int
	ServiceID int
	Date      time.Time
	Start     scheduling.TimeOfDay
	Notes     *string
}

type StatsReport struct {
	From      string                  `json:"from"`
	To        string                  `json:"to"`
	Summary   StatusSummary           `json:"summary"`
	ByDay     []BookingStatsByDay     `json:"by_day"`
	ByTrainer []BookingStatsByTrainer `json:"by_trainer"`
}

type Service interface {
	// GetAvailableSlots lists open start times; serviceID 0 uses the default span.
	GetAvailableSlots(ctx context.Context, trainerID int, date time.Time, serviceID int) (*SlotsResponse, error)
	CreateBooking(ctx context.Context, in NewBooking) (*Booking, error)
	ChangeBookingStatus(ctx context.Context, bookingID int, target Status, actor Actor) (*Booking, error)
	GetBooking(ctx context.Context, bookingID int, actor Actor) (*Booking, error)
	ListMemberBookings(ctx context.Context, memberID int) ([]Booking, error)
	ListBookings(ctx context.Context, f Filter) ([]BookingWithDetails, error)
	ListToday(ctx context.Context) ([]BookingWithDetails, error)
	Stats(ctx context.Context, from, to time.Time) (*StatsReport, error)
	SweepElapsed(ctx context.Context) (int64, error)
}

type service struct {
	repo      Repository
	analytics AnalyticsRepository
	calendar  Calendar
	catalog   Catalog
	members   MemberDirectory
	notifier  Notifier
	opts      Options
}

func NewService(
	repo Repository,
	analytics AnalyticsRepository,
	calendar Calendar,
	catalog Catalog,
	members MemberDirectory,
	notifier Notifier,
	opts Options,
) Service {
	if opts.Granularity <= 0 {
		opts.Granularity = scheduling.DefaultGranularity
	}
	if opts.DefaultSpan <= 0 {
		opts.DefaultSpan = scheduling.DefaultSpan
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &service{
		repo:      repo,
		analytics: analytics,
		calendar:  calendar,
		catalog:   catalog,
		members:   members,
		notifier:  notifier,
		opts:      opts,
	}
}

func (s *service) GetAvailableSlots(ctx context.Context, trainerID int, date time.Time, serviceID int) (*SlotsResponse, error) {
	if _, err := s.catalog.GetTrainer(ctx, trainerID); err != nil {
		return nil, err
	}

	span := s.opts.DefaultSpan
	if serviceID > 0 {
		offering, err := s.catalog.GetTrainerService(ctx, trainerID, serviceID)
		if err != nil {
			return nil, err
		}
		span = offering.Duration()
	}

	date = scheduling.Day(date)
	windows, err := s.calendar.WindowsFor(ctx, trainerID, date)
	if err != nil {
		return nil, fmt.Errorf("load availability: %w", err)
	}
	existing, err := s.repo.ListByTrainerAndDate(ctx, trainerID, date)
	if err != nil {
		return nil, fmt.Errorf("load bookings: %w", err)
	}

	slots := scheduling.OpenSlots(scheduling.SlotQuery{
		Date:    date,
		Now:     s.opts.Now(),
		Windows: windows,
		Busy:    busyIntervals(existing),
		Span:    span,
		Step:    s.opts.Granularity,
	})
	if slots == nil {
		slots = []scheduling.TimeOfDay{}
	}
	metrics.RecordOpenSlots(len(slots))

	return &SlotsResponse{
		TrainerID:   trainerID,
		Date:        date.Format(scheduling.DateLayout),
		SpanMinutes: int(span / time.Minute),
		Slots:       slots,
	}, nil
}

func (s *service) CreateBooking(ctx context.Context, in NewBooking) (*Booking, error) {
	b, err := s.createBooking(ctx, in)
	if err != nil {
		if reason := Reason(err); reason != "" {
			metrics.RecordBookingDecision("rejected", reason)
			logger.Info("booking rejected",
				"member_id", in.MemberID, "trainer_id", in.TrainerID, "reason", reason)
		} else {
			metrics.RecordBookingDecision("error", "")
		}
		return nil, err
	}

	metrics.RecordBookingDecision("accepted", "")
	logger.Info("booking created",
		"booking_id", b.ID, "member_id", b.MemberID, "trainer_id", b.TrainerID,
		"date", b.Date.Format(scheduling.DateLayout), "start", b.StartMinute.String())
	return b, nil
}

func (s *service) createBooking(ctx context.Context, in NewBooking) (*Booking, error) {
	trainer, err := s.catalog.GetTrainer(ctx, in.TrainerID)
	if err != nil {
		return nil, err
	}
	offering, err := s.catalog.GetTrainerService(ctx, in.TrainerID, in.ServiceID)
	if err != nil {
		return nil, err
	}

	date := scheduling.Day(in.Date)
	proposed := scheduling.Interval{Start: in.Start, End: in.Start.Add(offering.Duration())}
	if inPast(date, proposed.Start, s.opts.Now()) {
		return nil, ErrSlotInPast
	}

	windows, err := s.calendar.WindowsFor(ctx, trainer.ID, date)
	if err != nil {
		return nil, fmt.Errorf("load availability: %w", err)
	}

	created, err := s.repo.CreateIfFree(ctx, &Booking{
		MemberID:    in.MemberID,
		TrainerID:   trainer.ID,
		ServiceID:   offering.ID,
		Date:        date,
		StartMinute: proposed.Start,
		EndMinute:   proposed.End,
		PriceCents:  offering.PriceCents,
		Status:      StatusPending,
		Notes:       in.Notes,
	}, func(existing []Booking) error {
		return scheduling.Validate(windows, busyIntervals(existing), proposed)
	})
	if err != nil {
		return nil, err
	}

	s.notifyRequested(ctx, created, trainer, offering)
	return created, nil
}

func inPast(date time.Time, start scheduling.TimeOfDay, now time.Time) bool {
	switch scheduling.CompareDays(date, now) {
	case -1:
		return true
	case 0:
		return start <= scheduling.TimeOfDayOf(now)
	}
	return false
}

func (s *service) ChangeBookingStatus(ctx context.Context, bookingID int, target Status, actor Actor) (*Booking, error) {
	var from Status
	updated, err := s.repo.Transition(ctx, bookingID, func(current *Booking) (Status, error) {
		from = current.Status
		if actor.Role == RoleMember && current.MemberID != actor.ID {
			return current.Status, ErrNotPermitted
		}
		return Decide(current.Status, target, actor.Role)
	})
	if err != nil {
		return nil, err
	}

	if updated.Status != from {
		metrics.RecordTransition(string(from), string(updated.Status), string(actor.Role))
		logger.Info("booking status changed",
			"booking_id", updated.ID, "from", from, "to", updated.Status, "actor", actor.Role)
		s.notifyStatusChanged(ctx, updated)
	}
	return updated, nil
}

func (s *service) GetBooking(ctx context.Context, bookingID int, actor Actor) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if actor.Role == RoleMember && b.MemberID != actor.ID {
		return nil, ErrNotPermitted
	}
	return b, nil
}

// ListMemberBookings completes the member's elapsed approved bookings before reading them.
func (s *service) ListMemberBookings(ctx context.Context, memberID int) ([]Booking, error) {
	n, err := s.repo.CompleteElapsed(ctx, memberID, s.opts.Now())
	if err != nil {
		return nil, fmt.Errorf("complete elapsed bookings: %w", err)
	}
	if n > 0 {
		metrics.RecordAutoCompleted("lazy", n)
		logger.Debug("bookings auto-completed", "member_id", memberID, "count", n)
	}

	bookings, err := s.repo.ListByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if bookings == nil {
		bookings = []Booking{}
	}
	return bookings, nil
}

func (s *service) ListBookings(ctx context.Context, f Filter) ([]BookingWithDetails, error) {
	f.Date = dayPtr(f.Date)
	f.From = dayPtr(f.From)
	f.To = dayPtr(f.To)

	rows, err := s.repo.ListDetails(ctx, f)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []BookingWithDetails{}
	}
	return rows, nil
}

// ListToday returns today's bookings in the order they happen.
func (s *service) ListToday(ctx context.Context) ([]BookingWithDetails, error) {
	today := s.opts.Now()
	rows, err := s.ListBookings(ctx, Filter{Date: &today})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].StartMinute < rows[j].StartMinute })
	return rows, nil
}

func dayPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	day := scheduling.Day(*t)
	return &day
}

// Stats defaults to the current calendar month when from or to is zero.
func (s *service) Stats(ctx context.Context, from, to time.Time) (*StatsReport, error) {
	now := s.opts.Now()
	if from.IsZero() {
		from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)
	}
	if to.IsZero() {
		to = time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, time.Local)
	}
	from, to = scheduling.Day(from), scheduling.Day(to)

	summary, err := s.analytics.Summary(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("booking summary: %w", err)
	}
	byDay, err := s.analytics.ByDay(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("booking stats by day: %w", err)
	}
	byTrainer, err := s.analytics.ByTrainer(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("booking stats by trainer: %w", err)
	}

	return &StatsReport{
		From:      from.Format(scheduling.DateLayout),
		To:        to.Format(scheduling.DateLayout),
		Summary:   *summary,
		ByDay:     byDay,
		ByTrainer: byTrainer,
	}, nil
}

// SweepElapsed completes every approved booking whose end has passed.
func (s *service) SweepElapsed(ctx context.Context) (int64, error) {
	n, err := s.repo.CompleteAllElapsed(ctx, s.opts.Now())
	if err != nil {
		return 0, err
	}
	metrics.RecordAutoCompleted("periodic", n)
	return n, nil
}

func (s *service) member(ctx context.Context, id int) *user.User {
	if s.notifier == nil || s.members == nil {
		return nil
	}
	m, err := s.members.FindByID(ctx, id)
	if err != nil {
		logger.Warn("member lookup for notification failed", "member_id", id, "error", err)
		return nil
	}
	return m
}

func (s *service) notifyRequested(ctx context.Context, b *Booking, trainer *gym.Trainer, offering *gym.Offering) {
	m := s.member(ctx, b.MemberID)
	if m == nil {
		return
	}
	if err := s.notifier.SendBookingRequested(ctx, m.Email, m.Name, trainer.FullName(), offering.Name, b.StartsAt()); err != nil {
		logger.Warn("booking request notification failed", "booking_id", b.ID, "error", err)
	}
}

func (s *service) notifyStatusChanged(ctx context.Context, b *Booking) {
	m := s.member(ctx, b.MemberID)
	if m == nil {
		return
	}
	label := PresentationOf(b.Status).Label
	if err := s.notifier.SendStatusChanged(ctx, m.Email, m.Name, label, b.StartsAt()); err != nil {
		logger.Warn("status notification failed", "booking_id", b.ID, "error", err)
	}
}

// Reason is the stable code of a booking rejection or lifecycle error, empty for anything else.
func Reason(err error) string {
	switch {
	case errors.Is(err, scheduling.ErrInvalidInterval):
		return "invalid_interval"
	case errors.Is(err, scheduling.ErrOutsideAvailability):
		return "outside_availability"
	case errors.Is(err, scheduling.ErrTrainerBusy):
		return "trainer_busy"
	case errors.Is(err, ErrSlotInPast):
		return "slot_in_past"
	case errors.Is(err, gym.ErrTrainerNotFound):
		return "trainer_not_found"
	case errors.Is(err, gym.ErrServiceNotFound):
		return "service_not_found"
	case errors.Is(err, ErrBookingNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyCompleted):
		return "already_completed"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ErrNotPermitted):
		return "not_permitted"
	}
	return ""
}
