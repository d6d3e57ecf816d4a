package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/joy095/parlour/models/booking_models"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisherKeysByBookingID(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w, topic: "bookings"}

	b := booking_models.Booking{
		BookingID:     "abc",
		BookingDate:   "2024-06-01",
		PreferredTime: "10:00",
		Service:       "Facial",
		Amount:        100,
		PaymentStatus: booking_models.StatusPaid,
	}
	require.NoError(t, p.Publish(context.Background(), NewBookingEvent(BookingPaid, b, time.Now())))

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "abc", string(w.msgs[0].Key))
	assert.Equal(t, "event_type", w.msgs[0].Headers[0].Key)
	assert.Equal(t, "booking.paid", string(w.msgs[0].Headers[0].Value))

	var decoded Event
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
	assert.Equal(t, BookingPaid, decoded.Type)
	assert.Equal(t, booking_models.StatusPaid, decoded.PaymentStatus)
}

func TestKafkaPublisherClosed(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w, topic: "bookings"}

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.True(t, w.closed)

	err := p.Publish(context.Background(), Event{BookingID: "abc"})
	assert.ErrorIs(t, err, ErrPublisherClosed)
}

func TestNewKafkaPublisherValidates(t *testing.T) {
	_, err := NewKafkaPublisher(nil, "bookings")
	assert.Error(t, err)

	_, err = NewKafkaPublisher([]string{"localhost:9092"}, "")
	assert.Error(t, err)
}
