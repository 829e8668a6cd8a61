package booking

import (
	"context"
	"time"

	"fitslot/internal/logger"
)

// Sweeper periodically completes elapsed approved bookings, in addition to the
// per-member completion done when a member lists their bookings.
type Sweeper struct {
	service  Service
	interval time.Duration
}

func NewSweeper(service Service, interval time.Duration) *Sweeper {
	return &Sweeper{service: service, interval: interval}
}

// Start blocks until ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	logger.Info("booking sweeper started", "interval", s.interval.String())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("booking sweeper stopped")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

func (s *Sweeper) RunOnce(ctx context.Context) int64 {
	n, err := s.service.SweepElapsed(ctx)
	if err != nil {
		logger.Error("booking sweep failed", "error", err)
		return 0
	}
	if n > 0 {
		logger.Info("bookings auto-completed", "count", n)
	}
	return n
}
