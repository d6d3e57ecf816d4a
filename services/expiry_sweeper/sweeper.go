package expiry_sweeper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/joy095/parlour/logger"
	"github.com/joy095/parlour/models/booking_models"
	"github.com/joy095/parlour/store"
)

const runTimeout = 30 * time.Second

// Sweeper deletes PENDING bookings older than the retention window so their
// slots become bookable again.
type Sweeper struct {
	store     store.BookingStore
	interval  time.Duration
	retention time.Duration
	now       func() time.Time

	cancel    context.CancelFunc
	done      chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once
}

func NewSweeper(s store.BookingStore, interval, retention time.Duration) *Sweeper {
	return &Sweeper{
		store:     s,
		interval:  interval,
		retention: retention,
		now:       time.Now,
		done:      make(chan struct{}),
	}
}

// RunOnce performs a single sweep and returns how many bookings were removed.
func (s *Sweeper) RunOnce(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	cutoff := s.now().Add(-s.retention)
	deleted, err := s.store.DeleteExpired(ctx, booking_models.StatusPending, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete expired bookings: %w", err)
	}

	if deleted > 0 {
		logger.InfoLogger.Infof("Deleted %d expired pending booking(s) created before %s", deleted, cutoff.Format(time.RFC3339))
	}
	return deleted, nil
}

// Start sweeps once immediately, then every interval until Stop is called or
// ctx is cancelled. Failures are logged and the loop continues. Only the first
// call starts a loop.
func (s *Sweeper) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		ctx, s.cancel = context.WithCancel(ctx)
		go s.loop(ctx)

		logger.InfoLogger.Infof("Expiry sweeper started (every %s, retention %s)", s.interval, s.retention)
	})
}

func (s *Sweeper) loop(ctx context.Context) {
	defer close(s.done)

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			logger.ErrorLogger.Errorf("Recovered from panic in expiry sweeper: %v", r)
		}
	}()

	if _, err := s.RunOnce(ctx); err != nil {
		logger.ErrorLogger.Errorf("Expiry sweep failed: %v", err)
	}
}

// Stop cancels the loop and waits for an in-flight sweep to finish.
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() {
		if s.cancel == nil {
			return
		}
		s.cancel()
		<-s.done
		logger.InfoLogger.Info("Expiry sweeper stopped")
	})
}
