package booking_service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/joy095/parlour/events"
	"github.com/joy095/parlour/logger"
	"github.com/joy095/parlour/models/booking_models"
	"github.com/joy095/parlour/store"
	"github.com/joy095/parlour/utils"
)

// notifyTimeout bounds the detached work that follows a state change.
const notifyTimeout = 30 * time.Second

// Notifier delivers the "booking paid" messages to the customer and the operator.
type Notifier interface {
	NotifyBookingPaid(ctx context.Context, b booking_models.Booking) error
}

type CreateBookingInput struct {
	BookingID     string
	CustomerName  string
	Phone         string
	Email         string
	Service       string
	BookingDate   string
	PreferredTime string
}

type BookingService struct {
	store     store.BookingStore
	notifier  Notifier
	publisher events.Publisher
	fee       float64
	now       func() time.Time

	wg sync.WaitGroup
}

func NewBookingService(s store.BookingStore, notifier Notifier, publisher events.Publisher, fee float64) *BookingService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &BookingService{
		store:     s,
		notifier:  notifier,
		publisher: publisher,
		fee:       fee,
		now:       time.Now,
	}
}

// CreateBooking reserves the requested slot as a PENDING booking at the fixed fee.
func (s *BookingService) CreateBooking(ctx context.Context, in CreateBookingInput) (*booking_models.Booking, error) {
	b, err := booking_models.NewBooking(in.BookingID, in.CustomerName, in.Phone, in.Email,
		in.Service, in.BookingDate, in.PreferredTime, s.fee)
	if err != nil {
		return nil, err
	}

	_, err = s.store.FindConflictingSlot(ctx, b.BookingDate, b.PreferredTime)
	switch {
	case err == nil:
		return nil, utils.ErrSlotConflict
	case !errors.Is(err, utils.ErrNotFound):
		return nil, fmt.Errorf("check slot: %w", err)
	}

	// The store enforces the slot constraint too; a concurrent insert that wins
	// the race surfaces here as ErrSlotConflict.
	if err := s.store.InsertBooking(ctx, b); err != nil {
		if errors.Is(err, utils.ErrSlotConflict) || errors.Is(err, utils.ErrDuplicateBooking) {
			return nil, err
		}
		return nil, fmt.Errorf("insert booking: %w", err)
	}

	logger.InfoLogger.Infof("Booking %s created for %s %s", b.BookingID, b.BookingDate, b.PreferredTime)
	s.dispatch(func(ctx context.Context) {
		s.publish(ctx, events.BookingCreated, *b)
	})
	return b, nil
}

// MarkPaid sets the booking to PAID. It is idempotent; notifications run after
// the update and never affect the result.
func (s *BookingService) MarkPaid(ctx context.Context, bookingID string) (*booking_models.Booking, error) {
	if bookingID == "" {
		return nil, utils.NewValidationError("booking_id", "Booking ID is required")
	}

	b, err := s.store.UpdateStatus(ctx, bookingID, booking_models.StatusPaid)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update booking: %w", err)
	}

	logger.InfoLogger.Infof("Booking %s marked as PAID", b.BookingID)
	paid := *b
	s.dispatch(func(ctx context.Context) {
		if s.notifier != nil {
			if err := s.notifier.NotifyBookingPaid(ctx, paid); err != nil {
				logger.ErrorLogger.Errorf("Failed to send notifications for booking %s: %v", paid.BookingID, err)
			}
		}
		s.publish(ctx, events.BookingPaid, paid)
	})
	return b, nil
}

func (s *BookingService) GetBooking(ctx context.Context, bookingID string) (*booking_models.Booking, error) {
	return s.store.GetBooking(ctx, bookingID)
}

func (s *BookingService) ListPending(ctx context.Context) ([]booking_models.Booking, error) {
	return s.store.ListByStatus(ctx, booking_models.StatusPending)
}

func (s *BookingService) ListAll(ctx context.Context) ([]booking_models.Booking, error) {
	return s.store.ListAll(ctx)
}

// Wait blocks until all detached notification work has finished.
func (s *BookingService) Wait() {
	s.wg.Wait()
}

// dispatch runs fn on its own goroutine with a context detached from the request.
func (s *BookingService) dispatch(fn func(ctx context.Context)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				logger.ErrorLogger.Errorf("Recovered from panic in booking notification: %v", r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		fn(ctx)
	}()
}

func (s *BookingService) publish(ctx context.Context, t events.Type, b booking_models.Booking) {
	if err := s.publisher.Publish(ctx, events.NewBookingEvent(t, b, s.now())); err != nil {
		logger.WarnLogger.Warnf("Failed to publish %s for booking %s: %v", t, b.BookingID, err)
	}
}
