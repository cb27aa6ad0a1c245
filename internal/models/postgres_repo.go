package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

const createBookingsTableSQL = `
CREATE TABLE IF NOT EXISTS bookings (
    id UUID PRIMARY KEY,
    serial_number TEXT NOT NULL,
    payment_id TEXT NOT NULL,
    order_id TEXT NOT NULL DEFAULT '',
    full_name TEXT NOT NULL,
    email TEXT NOT NULL,
    phone TEXT NOT NULL,
    ticket_type TEXT NOT NULL,
    quantity INTEGER NOT NULL CHECK (quantity > 0),
    total_amount DOUBLE PRECISION NOT NULL CHECK (total_amount > 0),
    created_at TIMESTAMP WITH TIME ZONE NOT NULL,
    used_at TIMESTAMP WITH TIME ZONE,
    CONSTRAINT ` + serialIndexName + ` UNIQUE (serial_number),
    CONSTRAINT ` + paymentIndexName + ` UNIQUE (payment_id)
);`

const createPricingTableSQL = `
CREATE TABLE IF NOT EXISTS pricing (
    id SMALLINT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
    day_pass DOUBLE PRECISION NOT NULL CHECK (day_pass > 0),
    season_pass DOUBLE PRECISION NOT NULL CHECK (season_pass > 0),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL
);`

const createSequencesTableSQL = `
CREATE TABLE IF NOT EXISTS sequences (
    name TEXT PRIMARY KEY,
    value BIGINT NOT NULL
);`

const bookingColumns = `id, serial_number, payment_id, order_id, full_name, email, phone,
	ticket_type, quantity, total_amount, created_at, used_at`

// PgxQuerier is the part of *pgxpool.Pool the repository uses.
type PgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepo is the Store backed by PostgreSQL (STORE_DRIVER=postgres).
type PostgresRepo struct {
	pool PgxQuerier
}

func PostgresNewRepo(pool PgxQuerier) *PostgresRepo {
	return &PostgresRepo{pool: pool}
}

// Migrate creates the tables and unique constraints if they do not exist.
func (pg *PostgresRepo) Migrate(ctx context.Context) error {
	for name, stmt := range map[string]string{
		"bookings":  createBookingsTableSQL,
		"pricing":   createPricingTableSQL,
		"sequences": createSequencesTableSQL,
	} {
		if _, err := pg.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("error running %s table migration: %w", name, err)
		}
	}
	return nil
}

func (pg *PostgresRepo) CreateBooking(ctx context.Context, booking *Booking) (*Booking, error) {
	booking.BeforeCreate(time.Now())
	if err := Validate.Struct(booking); err != nil {
		return nil, fmt.Errorf("invalid booking: %w", err)
	}

	const insertSQL = `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NULL)`

	_, err := pg.pool.Exec(ctx, insertSQL,
		booking.ID,
		booking.SerialNumber,
		booking.PaymentID,
		booking.OrderID,
		booking.FullName,
		booking.Email,
		booking.Phone,
		booking.TicketType,
		booking.Quantity,
		booking.TotalAmount,
		booking.Timestamp,
	)
	if err != nil {
		return nil, mapPgError(err)
	}
	return booking, nil
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch pgErr.ConstraintName {
		case serialIndexName:
			return fmt.Errorf("%w: %v", ErrDuplicateSerial, err)
		case paymentIndexName:
			return fmt.Errorf("%w: %v", ErrDuplicatePayment, err)
		}
	}
	return fmt.Errorf("error inserting booking: %w", err)
}

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	err := row.Scan(
		&b.ID, &b.SerialNumber, &b.PaymentID, &b.OrderID, &b.FullName, &b.Email, &b.Phone,
		&b.TicketType, &b.Quantity, &b.TotalAmount, &b.Timestamp, &b.UsedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error scanning booking: %w", err)
	}
	return &b, nil
}

func (pg *PostgresRepo) GetBookingBySerial(ctx context.Context, serial string) (*Booking, error) {
	row := pg.pool.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE serial_number = $1`, serial)
	return scanBooking(row)
}

func (pg *PostgresRepo) GetBookingByPaymentID(ctx context.Context, paymentID string) (*Booking, error) {
	row := pg.pool.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE payment_id = $1`, paymentID)
	return scanBooking(row)
}

func (pg *PostgresRepo) ListBookings(ctx context.Context) ([]*Booking, error) {
	rows, err := pg.pool.Query(ctx, `SELECT `+bookingColumns+` FROM bookings ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("error listing bookings: %w", err)
	}
	defer rows.Close()

	bookings := []*Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bookings: %w", err)
	}
	return bookings, nil
}

func (pg *PostgresRepo) MarkBookingUsed(ctx context.Context, serial string, at time.Time) (*Booking, error) {
	row := pg.pool.QueryRow(ctx, `
		UPDATE bookings SET used_at = $2
		WHERE serial_number = $1 AND used_at IS NULL
		RETURNING `+bookingColumns, serial, at.UTC())

	b, err := scanBooking(row)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	existing, err := pg.GetBookingBySerial(ctx, serial)
	if err != nil {
		return nil, err
	}
	return existing, ErrAlreadyUsed
}

func (pg *PostgresRepo) DeleteAllBookings(ctx context.Context) (int64, error) {
	tag, err := pg.pool.Exec(ctx, `DELETE FROM bookings`)
	if err != nil {
		return 0, fmt.Errorf("error deleting bookings: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (pg *PostgresRepo) GetPricing(ctx context.Context) (*Pricing, error) {
	var p Pricing
	err := pg.pool.QueryRow(ctx, `SELECT day_pass, season_pass, updated_at FROM pricing WHERE id = 1`).
		Scan(&p.DayPass, &p.SeasonPass, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error finding pricing: %w", err)
	}
	return &p, nil
}

func (pg *PostgresRepo) UpsertPricing(ctx context.Context, dayPass, seasonPass float64) (*Pricing, error) {
	var p Pricing
	err := pg.pool.QueryRow(ctx, `
		INSERT INTO pricing (id, day_pass, season_pass, updated_at) VALUES (1, $1, $2, now())
		ON CONFLICT (id) DO UPDATE SET day_pass = EXCLUDED.day_pass,
			season_pass = EXCLUDED.season_pass, updated_at = EXCLUDED.updated_at
		RETURNING day_pass, season_pass, updated_at`, dayPass, seasonPass).
		Scan(&p.DayPass, &p.SeasonPass, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("error upserting pricing: %w", err)
	}
	return &p, nil
}

func (pg *PostgresRepo) NextSequence(ctx context.Context, name string) (int64, error) {
	var value int64
	err := pg.pool.QueryRow(ctx, `
		INSERT INTO sequences (name, value) VALUES ($1, 1)
		ON CONFLICT (name) DO UPDATE SET value = sequences.value + 1
		RETURNING value`, name).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("error advancing sequence %s: %w", name, err)
	}
	return value, nil
}
