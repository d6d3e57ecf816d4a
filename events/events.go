// Package events publishes booking lifecycle events for downstream consumers.
package events

import (
	"context"
	"time"

	"github.com/joy095/parlour/models/booking_models"
)

type Type string

const (
	BookingCreated Type = "booking.created"
	BookingPaid    Type = "booking.paid"
)

// Event is the payload written to the bus. BookingID is also the message key.
type Event struct {
	Type          Type                         `json:"type"`
	BookingID     string                       `json:"booking_id"`
	BookingDate   string                       `json:"booking_date"`
	PreferredTime string                       `json:"preferred_time"`
	Service       string                       `json:"service"`
	Amount        float64                      `json:"amount"`
	PaymentStatus booking_models.PaymentStatus `json:"payment_status"`
	OccurredAt    time.Time                    `json:"occurred_at"`
}

func NewBookingEvent(t Type, b booking_models.Booking, at time.Time) Event {
	return Event{
		Type:          t,
		BookingID:     b.BookingID,
		BookingDate:   b.BookingDate,
		PreferredTime: b.PreferredTime,
		Service:       b.Service,
		Amount:        b.Amount,
		PaymentStatus: b.PaymentStatus,
		OccurredAt:    at.UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }
