package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joy095/parlour/config/db"
	"github.com/joy095/parlour/logger"
	"github.com/joy095/parlour/models/admin_models"
	"github.com/joy095/parlour/models/booking_models"
	"github.com/joy095/parlour/utils"
)

const (
	activeSlotIndex  = "bookings_active_slot_idx"
	bookingIDUnique  = "bookings_booking_id_key"
	uniqueViolation  = "23505"
	bookingColumns   = "booking_id, customer_name, phone, COALESCE(email, ''), service, booking_date, preferred_time, amount, payment_status, created_at"
	adminUserColumns = "id, username, password_hash, created_at, last_login"
)

// schema is applied statement by statement by Migrate. Every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS bookings (
		id             BIGSERIAL PRIMARY KEY,
		booking_id     VARCHAR(36) NOT NULL,
		customer_name  TEXT NOT NULL,
		phone          TEXT NOT NULL,
		email          TEXT,
		service        TEXT NOT NULL,
		booking_date   DATE NOT NULL,
		preferred_time TIME NOT NULL,
		amount         NUMERIC(10, 2) NOT NULL,
		payment_status TEXT NOT NULL DEFAULT 'PENDING',
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT bookings_booking_id_key UNIQUE (booking_id),
		CONSTRAINT bookings_payment_status_check CHECK (payment_status IN ('PENDING', 'PAID'))
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS bookings_active_slot_idx
		ON bookings (booking_date, preferred_time)
		WHERE payment_status IN ('PENDING', 'PAID')`,
	`CREATE INDEX IF NOT EXISTS bookings_status_created_idx
		ON bookings (payment_status, created_at)`,
	`CREATE TABLE IF NOT EXISTS admin_users (
		id            UUID PRIMARY KEY,
		username      TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		last_login    TIMESTAMPTZ
	)`,
}

// PostgresStore is the production engine. Slot uniqueness is enforced by the
// partial unique index bookings_active_slot_idx, so concurrent inserts from any
// number of processes resolve to a single winner.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the tables and indexes if they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	logger.InfoLogger.Info("Database schema is up to date")
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() {
	db.Close(s.pool)
}

func encodeTime(preferredTime string) (pgtype.Time, error) {
	t, err := booking_models.ParseTime(preferredTime)
	if err != nil {
		return pgtype.Time{}, err
	}
	secs := int64(t.Hour()*3600 + t.Minute()*60 + t.Second())
	return pgtype.Time{Microseconds: secs * int64(time.Second/time.Microsecond), Valid: true}, nil
}

func decodeTime(t pgtype.Time) string {
	midnight := time.Date(0, 1, 1, 0, 0, 0, 0, time.UTC)
	return booking_models.FormatTime(midnight.Add(time.Duration(t.Microseconds) * time.Microsecond))
}

func encodeSlot(bookingDate, preferredTime string) (time.Time, pgtype.Time, error) {
	d, err := booking_models.ParseDate(bookingDate)
	if err != nil {
		return time.Time{}, pgtype.Time{}, err
	}
	t, err := encodeTime(preferredTime)
	if err != nil {
		return time.Time{}, pgtype.Time{}, err
	}
	return d, t, nil
}

func scanBooking(row pgx.Row) (*booking_models.Booking, error) {
	var (
		b      booking_models.Booking
		date   time.Time
		tm     pgtype.Time
		amount pgtype.Numeric
		status string
	)
	err := row.Scan(&b.BookingID, &b.CustomerName, &b.Phone, &b.Email, &b.Service,
		&date, &tm, &amount, &status, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, utils.ErrNotFound
		}
		return nil, err
	}

	f, err := amount.Float64Value()
	if err != nil {
		return nil, fmt.Errorf("decode amount: %w", err)
	}
	b.Amount = f.Float64
	b.BookingDate = date.Format(booking_models.DateLayout)
	b.PreferredTime = decodeTime(tm)
	b.PaymentStatus = booking_models.PaymentStatus(status)
	return &b, nil
}

func collectBookings(rows pgx.Rows) ([]booking_models.Booking, error) {
	defer rows.Close()

	out := make([]booking_models.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func activeStatusStrings() []string {
	out := make([]string, len(booking_models.ActiveStatuses))
	for i, s := range booking_models.ActiveStatuses {
		out[i] = string(s)
	}
	return out
}

func (s *PostgresStore) FindConflictingSlot(ctx context.Context, bookingDate, preferredTime string) (*booking_models.Booking, error) {
	d, t, err := encodeSlot(bookingDate, preferredTime)
	if err != nil {
		return nil, err
	}

	row := s.pool.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings
		 WHERE booking_date = $1 AND preferred_time = $2 AND payment_status = ANY($3)
		 LIMIT 1`,
		d, t, activeStatusStrings())
	return scanBooking(row)
}

func (s *PostgresStore) InsertBooking(ctx context.Context, b *booking_models.Booking) error {
	d, t, err := encodeSlot(b.BookingDate, b.PreferredTime)
	if err != nil {
		return err
	}

	var createdAt *time.Time
	if !b.CreatedAt.IsZero() {
		createdAt = &b.CreatedAt
	}

	err = s.pool.QueryRow(ctx,
		`INSERT INTO bookings (booking_id, customer_name, phone, email, service,
			booking_date, preferred_time, amount, payment_status, created_at)
		 VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9, COALESCE($10, NOW()))
		 RETURNING created_at`,
		b.BookingID, b.CustomerName, b.Phone, b.Email, b.Service,
		d, t, b.Amount, string(b.PaymentStatus), createdAt,
	).Scan(&b.CreatedAt)
	if err != nil {
		return mapInsertError(err)
	}
	return nil
}

func mapInsertError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch pgErr.ConstraintName {
		case activeSlotIndex:
			return utils.ErrSlotConflict
		case bookingIDUnique:
			return utils.ErrDuplicateBooking
		}
	}
	return err
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, bookingID string, status booking_models.PaymentStatus) (*booking_models.Booking, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE bookings SET payment_status = $2 WHERE booking_id = $1
		 RETURNING `+bookingColumns,
		bookingID, string(status))
	return scanBooking(row)
}

func (s *PostgresStore) GetBooking(ctx context.Context, bookingID string) (*booking_models.Booking, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE booking_id = $1`, bookingID)
	return scanBooking(row)
}

func (s *PostgresStore) ListByStatus(ctx context.Context, status booking_models.PaymentStatus) ([]booking_models.Booking, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE payment_status = $1
		 ORDER BY booking_date, preferred_time`,
		string(status))
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func (s *PostgresStore) ListAll(ctx context.Context) ([]booking_models.Booking, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+bookingColumns+` FROM bookings
		 ORDER BY booking_date DESC, preferred_time ASC, booking_id`)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func (s *PostgresStore) DeleteExpired(ctx context.Context, status booking_models.PaymentStatus, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM bookings WHERE payment_status = $1 AND created_at < $2`,
		string(status), cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanAdmin(row pgx.Row) (*admin_models.AdminUser, error) {
	var a admin_models.AdminUser
	if err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &a.CreatedAt, &a.LastLogin); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, utils.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (s *PostgresStore) FindAdminByUsername(ctx context.Context, username string) (*admin_models.AdminUser, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+adminUserColumns+` FROM admin_users WHERE username = $1`, username)
	return scanAdmin(row)
}

func (s *PostgresStore) FindAdminByID(ctx context.Context, id uuid.UUID) (*admin_models.AdminUser, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+adminUserColumns+` FROM admin_users WHERE id = $1`, id)
	return scanAdmin(row)
}

func (s *PostgresStore) UpsertAdmin(ctx context.Context, admin *admin_models.AdminUser) (bool, error) {
	var created bool
	err := s.pool.QueryRow(ctx,
		`INSERT INTO admin_users (id, username, password_hash, created_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (username) DO UPDATE SET password_hash = EXCLUDED.password_hash
		 RETURNING id, created_at, last_login, (xmax = 0)`,
		admin.ID, admin.Username, admin.PasswordHash,
	).Scan(&admin.ID, &admin.CreatedAt, &admin.LastLogin, &created)
	if err != nil {
		return false, err
	}
	return created, nil
}

func (s *PostgresStore) UpdateAdminPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE admin_users SET password_hash = $2 WHERE id = $1`, id, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE admin_users SET last_login = $2 WHERE id = $1`, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return utils.ErrNotFound
	}
	return nil
}
