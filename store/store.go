// Package store defines the persistence port shared by the booking, auth and
// expiry services, and the engines that implement it.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/joy095/parlour/models/admin_models"
	"github.com/joy095/parlour/models/booking_models"
)

// Store is the storage port. InsertBooking must be atomic with respect to slot
// uniqueness: at most one booking in an active status per
// (booking_date, preferred_time), even across processes.
//
// Errors: utils.ErrNotFound for missing rows, utils.ErrSlotConflict when an
// insert would take an occupied slot, utils.ErrDuplicateBooking for a reused
// booking_id. Anything else is a storage failure.
type Store interface {
	BookingStore
	CredentialStore

	Ping(ctx context.Context) error
	Close()
}

type BookingStore interface {
	// FindConflictingSlot returns the active booking holding the slot, or utils.ErrNotFound.
	FindConflictingSlot(ctx context.Context, bookingDate, preferredTime string) (*booking_models.Booking, error)
	// InsertBooking stores b and fills in CreatedAt when it is zero.
	InsertBooking(ctx context.Context, b *booking_models.Booking) error
	UpdateStatus(ctx context.Context, bookingID string, status booking_models.PaymentStatus) (*booking_models.Booking, error)
	GetBooking(ctx context.Context, bookingID string) (*booking_models.Booking, error)
	ListByStatus(ctx context.Context, status booking_models.PaymentStatus) ([]booking_models.Booking, error)
	// ListAll orders by booking_date descending, then preferred_time ascending.
	ListAll(ctx context.Context) ([]booking_models.Booking, error)
	// DeleteExpired removes bookings in status created strictly before cutoff.
	DeleteExpired(ctx context.Context, status booking_models.PaymentStatus, cutoff time.Time) (int64, error)
}

type CredentialStore interface {
	FindAdminByUsername(ctx context.Context, username string) (*admin_models.AdminUser, error)
	FindAdminByID(ctx context.Context, id uuid.UUID) (*admin_models.AdminUser, error)
	// UpsertAdmin creates the admin or replaces the password hash of an existing one.
	UpsertAdmin(ctx context.Context, admin *admin_models.AdminUser) (created bool, err error)
	UpdateAdminPassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}
