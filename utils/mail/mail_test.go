package mail

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/joy095/parlour/logger"
	"github.com/joy095/parlour/models/booking_models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomail "gopkg.in/gomail.v2"
)

func TestMain(m *testing.M) {
	logger.Silence()
	os.Exit(m.Run())
}

type sentMail struct {
	to      []string
	subject []string
	body    string
}

type captureSender struct {
	sent []sentMail
	fail map[string]bool
}

func (c *captureSender) send(msg *gomail.Message) error {
	to := msg.GetHeader("To")
	if len(to) > 0 && c.fail[to[0]] {
		return errors.New("mailbox unavailable")
	}

	var body bytes.Buffer
	if _, err := msg.WriteTo(&body); err != nil {
		return err
	}
	c.sent = append(c.sent, sentMail{to: to, subject: msg.GetHeader("Subject"), body: body.String()})
	return nil
}

func paidBooking() booking_models.Booking {
	return booking_models.Booking{
		BookingID:     "abc123",
		CustomerName:  "Jane",
		Phone:         "0123456789",
		Email:         "jane@example.com",
		Service:       "Facial",
		BookingDate:   "2024-06-01",
		PreferredTime: "10:00",
		Amount:        100,
		PaymentStatus: booking_models.StatusPaid,
	}
}

func newTestMailer(c *captureSender) *Mailer {
	return &Mailer{
		cfg: SMTPConfig{
			FromEmail:     "bookings@parlour.test",
			FromName:      "Orchid Beauty Parlour",
			BusinessEmail: "owner@parlour.test",
		},
		send: c.send,
	}
}

func TestNotifyBookingPaidSendsBothEmails(t *testing.T) {
	c := &captureSender{}
	m := newTestMailer(c)

	require.NoError(t, m.NotifyBookingPaid(context.Background(), paidBooking()))
	require.Len(t, c.sent, 2)

	assert.Equal(t, []string{"jane@example.com"}, c.sent[0].to)
	assert.Equal(t, []string{"Booking Confirmed: abc123"}, c.sent[0].subject)
	assert.Contains(t, c.sent[0].body, "Booking Confirmed!")

	assert.Equal(t, []string{"owner@parlour.test"}, c.sent[1].to)
	assert.Equal(t, []string{"Booking Paid & Confirmed: abc123"}, c.sent[1].subject)
	assert.Contains(t, c.sent[1].body, "0123456789")
}

func TestNotifyBookingPaidWithoutCustomerEmail(t *testing.T) {
	c := &captureSender{}
	m := newTestMailer(c)

	b := paidBooking()
	b.Email = ""
	require.NoError(t, m.NotifyBookingPaid(context.Background(), b))

	require.Len(t, c.sent, 1)
	assert.Equal(t, []string{"owner@parlour.test"}, c.sent[0].to)
}

func TestNotifyBookingPaidReportsFailures(t *testing.T) {
	c := &captureSender{fail: map[string]bool{"jane@example.com": true}}
	m := newTestMailer(c)

	err := m.NotifyBookingPaid(context.Background(), paidBooking())
	assert.Error(t, err)

	// The operator mail still goes out.
	require.Len(t, c.sent, 1)
	assert.Equal(t, []string{"owner@parlour.test"}, c.sent[0].to)
}

func TestNewMailerWithoutSMTPOnlyLogs(t *testing.T) {
	m := NewMailer(SMTPConfig{BusinessEmail: "owner@parlour.test"})
	assert.NoError(t, m.NotifyBookingPaid(context.Background(), paidBooking()))
}

func TestNewMailerWithSMTPHost(t *testing.T) {
	m := NewMailer(SMTPConfig{Host: "smtp.parlour.test", Port: 587, FromEmail: "bookings@parlour.test"})
	require.NotNil(t, m.send)
	require.NotNil(t, m.dialer)
	assert.Equal(t, "smtp.parlour.test", m.dialer.Host)
	assert.False(t, m.dialer.SSL)
	assert.Equal(t, "smtp.parlour.test", m.dialer.TLSConfig.ServerName)

	m = NewMailer(SMTPConfig{Host: "smtp.parlour.test", Port: 465})
	require.NotNil(t, m.send)
	assert.True(t, m.dialer.SSL)
}

func TestNotifyBookingPaidGivesUpOnStalledServer(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	m := newTestMailer(&captureSender{})
	m.send = func(*gomail.Message) error {
		<-release
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := m.NotifyBookingPaid(ctx, paidBooking())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}
