package booking_models

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joy095/parlour/utils"
)

var validate = validator.New()

// PaymentStatus is the lifecycle state of a booking.
type PaymentStatus string

const (
	StatusPending PaymentStatus = "PENDING"
	StatusPaid    PaymentStatus = "PAID"
)

// ActiveStatuses are the statuses that hold a slot.
var ActiveStatuses = []PaymentStatus{StatusPending, StatusPaid}

const (
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04"
	TimeLayoutSecs = "15:04:05"

	MaxBookingIDLength = 36
)

// Booking is a customer's reservation of a single (date, time) slot.
type Booking struct {
	BookingID     string        `json:"booking_id"`
	CustomerName  string        `json:"customer_name"`
	Phone         string        `json:"phone"`
	Email         string        `json:"email"`
	Service       string        `json:"service"`
	BookingDate   string        `json:"booking_date"`
	PreferredTime string        `json:"preferred_time"`
	Amount        float64       `json:"amount"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	CreatedAt     time.Time     `json:"created_at"`
}

// NewBooking builds a PENDING booking with normalized slot fields.
func NewBooking(bookingID, customerName, phone, email, service, bookingDate, preferredTime string, amount float64) (*Booking, error) {
	b := &Booking{
		BookingID:     strings.TrimSpace(bookingID),
		CustomerName:  strings.TrimSpace(customerName),
		Phone:         strings.TrimSpace(phone),
		Email:         strings.TrimSpace(email),
		Service:       strings.TrimSpace(service),
		Amount:        amount,
		PaymentStatus: StatusPending,
	}

	required := []struct{ field, value string }{
		{"booking_id", b.BookingID},
		{"customer_name", b.CustomerName},
		{"phone", b.Phone},
		{"service", b.Service},
	}
	for _, r := range required {
		if r.value == "" {
			return nil, utils.NewValidationError(r.field, r.field+" is required")
		}
	}
	if len(b.BookingID) > MaxBookingIDLength {
		return nil, utils.NewValidationError("booking_id", "booking_id must be at most 36 characters")
	}
	if b.Email != "" {
		if err := validate.Var(b.Email, "email"); err != nil {
			return nil, utils.NewValidationError("email", "email must be a valid email address")
		}
	}

	date, err := NormalizeDate(bookingDate)
	if err != nil {
		return nil, err
	}
	tm, err := NormalizeTime(preferredTime)
	if err != nil {
		return nil, err
	}
	b.BookingDate = date
	b.PreferredTime = tm

	return b, nil
}

// NormalizeDate validates a YYYY-MM-DD date and returns it in canonical form.
func NormalizeDate(s string) (string, error) {
	d, err := ParseDate(s)
	if err != nil {
		return "", err
	}
	return d.Format(DateLayout), nil
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, utils.NewValidationError("booking_date", "booking_date must be a date in YYYY-MM-DD format")
	}
	return d, nil
}

// NormalizeTime validates an HH:MM or HH:MM:SS time of day. Whole minutes are
// rendered as HH:MM so that "10:00" and "10:00:00" name the same slot.
func NormalizeTime(s string) (string, error) {
	t, err := ParseTime(s)
	if err != nil {
		return "", err
	}
	return FormatTime(t), nil
}

// ParseTime parses an HH:MM or HH:MM:SS time of day.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{TimeLayout, TimeLayoutSecs} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, utils.NewValidationError("preferred_time", "preferred_time must be a time in HH:MM format")
}

func FormatTime(t time.Time) string {
	if t.Second() != 0 {
		return t.Format(TimeLayoutSecs)
	}
	return t.Format(TimeLayout)
}

// HoldsSlot reports whether the booking occupies its slot.
func (b *Booking) HoldsSlot() bool {
	for _, s := range ActiveStatuses {
		if b.PaymentStatus == s {
			return true
		}
	}
	return false
}

// SameSlot reports whether two bookings name the same (date, time) pair.
func (b *Booking) SameSlot(date, preferredTime string) bool {
	return b.BookingDate == date && b.PreferredTime == preferredTime
}

// ExpiredAt reports whether the booking is in status and was created strictly
// before cutoff.
func (b *Booking) ExpiredAt(status PaymentStatus, cutoff time.Time) bool {
	return b.PaymentStatus == status && b.CreatedAt.Before(cutoff)
}
