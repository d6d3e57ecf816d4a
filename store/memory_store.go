package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/joy095/parlour/models/admin_models"
	"github.com/joy095/parlour/models/booking_models"
	"github.com/joy095/parlour/utils"
)

// MemoryStore is an embedded single-process engine. Every statement runs under
// one store-wide lock, which gives InsertBooking the same check-and-insert
// atomicity the Postgres partial unique index provides.
type MemoryStore struct {
	mu       sync.RWMutex
	bookings map[string]booking_models.Booking
	admins   map[uuid.UUID]admin_models.AdminUser
	now      func() time.Time
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		bookings: make(map[string]booking_models.Booking),
		admins:   make(map[uuid.UUID]admin_models.AdminUser),
		now:      time.Now,
	}
}

func (s *MemoryStore) Ping(ctx context.Context) error { return ctx.Err() }

func (s *MemoryStore) Close() {}

func (s *MemoryStore) findActiveLocked(bookingDate, preferredTime string) (booking_models.Booking, bool) {
	for _, b := range s.bookings {
		if b.SameSlot(bookingDate, preferredTime) && b.HoldsSlot() {
			return b, true
		}
	}
	return booking_models.Booking{}, false
}

func (s *MemoryStore) FindConflictingSlot(ctx context.Context, bookingDate, preferredTime string) (*booking_models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.findActiveLocked(bookingDate, preferredTime)
	if !ok {
		return nil, utils.ErrNotFound
	}
	return &b, nil
}

func (s *MemoryStore) InsertBooking(ctx context.Context, b *booking_models.Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.bookings[b.BookingID]; exists {
		return utils.ErrDuplicateBooking
	}
	if b.HoldsSlot() {
		if _, taken := s.findActiveLocked(b.BookingDate, b.PreferredTime); taken {
			return utils.ErrSlotConflict
		}
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = s.now()
	}
	s.bookings[b.BookingID] = *b
	return nil
}

func (s *MemoryStore) UpdateStatus(ctx context.Context, bookingID string, status booking_models.PaymentStatus) (*booking_models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[bookingID]
	if !ok {
		return nil, utils.ErrNotFound
	}
	b.PaymentStatus = status
	s.bookings[bookingID] = b
	return &b, nil
}

func (s *MemoryStore) GetBooking(ctx context.Context, bookingID string) (*booking_models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bookings[bookingID]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return &b, nil
}

func (s *MemoryStore) ListByStatus(ctx context.Context, status booking_models.PaymentStatus) ([]booking_models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]booking_models.Booking, 0)
	for _, b := range s.bookings {
		if b.PaymentStatus == status {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *MemoryStore) ListAll(ctx context.Context) ([]booking_models.Booking, error) {
	s.mu.RLock()
	out := make([]booking_models.Booking, 0, len(s.bookings))
	for _, b := range s.bookings {
		out = append(out, b)
	}
	s.mu.RUnlock()

	// Canonical YYYY-MM-DD and HH:MM strings sort chronologically.
	sort.Slice(out, func(i, j int) bool {
		if out[i].BookingDate != out[j].BookingDate {
			return out[i].BookingDate > out[j].BookingDate
		}
		if out[i].PreferredTime != out[j].PreferredTime {
			return out[i].PreferredTime < out[j].PreferredTime
		}
		return out[i].BookingID < out[j].BookingID
	})
	return out, nil
}

func (s *MemoryStore) DeleteExpired(ctx context.Context, status booking_models.PaymentStatus, cutoff time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, b := range s.bookings {
		if b.ExpiredAt(status, cutoff) {
			delete(s.bookings, id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *MemoryStore) FindAdminByUsername(ctx context.Context, username string) (*admin_models.AdminUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.admins {
		if a.Username == username {
			return &a, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (s *MemoryStore) FindAdminByID(ctx context.Context, id uuid.UUID) (*admin_models.AdminUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.admins[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return &a, nil
}

func (s *MemoryStore) UpsertAdmin(ctx context.Context, admin *admin_models.AdminUser) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, a := range s.admins {
		if a.Username == admin.Username {
			a.PasswordHash = admin.PasswordHash
			s.admins[id] = a
			*admin = a
			return false, nil
		}
	}
	if admin.CreatedAt.IsZero() {
		admin.CreatedAt = s.now()
	}
	s.admins[admin.ID] = *admin
	return true, nil
}

func (s *MemoryStore) UpdateAdminPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.admins[id]
	if !ok {
		return utils.ErrNotFound
	}
	a.PasswordHash = passwordHash
	s.admins[id] = a
	return nil
}

func (s *MemoryStore) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.admins[id]
	if !ok {
		return utils.ErrNotFound
	}
	a.LastLogin = &at
	s.admins[id] = a
	return nil
}
