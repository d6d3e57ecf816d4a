package expiry_sweeper

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/joy095/parlour/logger"
	"github.com/joy095/parlour/models/booking_models"
	"github.com/joy095/parlour/store"
	"github.com/joy095/parlour/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Silence()
	os.Exit(m.Run())
}

func seed(t *testing.T, s *store.MemoryStore, id, tm string, age time.Duration, status booking_models.PaymentStatus) {
	t.Helper()
	b, err := booking_models.NewBooking(id, "Jane", "1", "", "Facial", "2024-06-01", tm, 100)
	require.NoError(t, err)
	b.CreatedAt = time.Now().Add(-age)
	require.NoError(t, s.InsertBooking(context.Background(), b))
	if status != booking_models.StatusPending {
		_, err = s.UpdateStatus(context.Background(), id, status)
		require.NoError(t, err)
	}
}

func TestRunOnceDeletesOnlyExpiredPending(t *testing.T) {
	s := store.NewMemoryStore()
	seed(t, s, "old", "10:00", 25*time.Hour, booking_models.StatusPending)
	seed(t, s, "fresh", "11:00", time.Hour, booking_models.StatusPending)
	seed(t, s, "paid", "12:00", 72*time.Hour, booking_models.StatusPaid)

	sw := NewSweeper(s, time.Hour, 24*time.Hour)
	deleted, err := sw.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	ctx := context.Background()
	_, err = s.GetBooking(ctx, "old")
	assert.ErrorIs(t, err, utils.ErrNotFound)
	_, err = s.GetBooking(ctx, "fresh")
	assert.NoError(t, err)
	_, err = s.GetBooking(ctx, "paid")
	assert.NoError(t, err)
}

func TestRunOnceUsesClock(t *testing.T) {
	s := store.NewMemoryStore()
	seed(t, s, "fresh", "11:00", time.Hour, booking_models.StatusPending)

	sw := NewSweeper(s, time.Hour, 24*time.Hour)
	sw.now = func() time.Time { return time.Now().Add(24 * time.Hour) }

	deleted, err := sw.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

func TestStartSweepsImmediately(t *testing.T) {
	s := store.NewMemoryStore()
	seed(t, s, "old", "10:00", 25*time.Hour, booking_models.StatusPending)

	sw := NewSweeper(s, time.Hour, 24*time.Hour)
	sw.Start(context.Background())
	defer sw.Stop()

	assert.Eventually(t, func() bool {
		_, err := s.GetBooking(context.Background(), "old")
		return errors.Is(err, utils.ErrNotFound)
	}, 2*time.Second, 10*time.Millisecond)
}

type countingStore struct {
	store.BookingStore
	calls atomic.Int32
}

func (c *countingStore) DeleteExpired(context.Context, booking_models.PaymentStatus, time.Time) (int64, error) {
	c.calls.Add(1)
	return 0, errors.New("database unavailable")
}

func TestStartKeepsRunningAfterFailures(t *testing.T) {
	cs := &countingStore{BookingStore: store.NewMemoryStore()}

	sw := NewSweeper(cs, 10*time.Millisecond, 24*time.Hour)
	sw.Start(context.Background())

	assert.Eventually(t, func() bool { return cs.calls.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)

	sw.Stop()
	sw.Stop()
	after := cs.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, cs.calls.Load())
}

func TestStartTwiceRunsOneLoop(t *testing.T) {
	cs := &countingStore{BookingStore: store.NewMemoryStore()}

	sw := NewSweeper(cs, time.Hour, 24*time.Hour)
	require.NotPanics(t, func() {
		sw.Start(context.Background())
		sw.Start(context.Background())
	})

	assert.Eventually(t, func() bool { return cs.calls.Load() >= 1 }, 2*time.Second, 5*time.Millisecond)
	sw.Stop()

	// Only the first Start swept on startup.
	assert.Equal(t, int32(1), cs.calls.Load())
}
