package models

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is a process-local Store used for development runs
// (STORE_DRIVER=memory) and tests. It enforces the same unique keys as the
// database-backed stores.
type MemoryRepo struct {
	mu        sync.Mutex
	bookings  map[string]*Booking // keyed by serial number
	byPayment map[string]string   // payment id -> serial number
	pricing   *Pricing
	sequences map[string]int64
	now       func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		bookings:  make(map[string]*Booking),
		byPayment: make(map[string]string),
		sequences: make(map[string]int64),
		now:       time.Now,
	}
}

func (m *MemoryRepo) CreateBooking(ctx context.Context, booking *Booking) (*Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	booking.BeforeCreate(m.now())
	if err := Validate.Struct(booking); err != nil {
		return nil, fmt.Errorf("invalid booking: %w", err)
	}
	if _, ok := m.bookings[booking.SerialNumber]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateSerial, booking.SerialNumber)
	}
	if _, ok := m.byPayment[booking.PaymentID]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicatePayment, booking.PaymentID)
	}

	m.bookings[booking.SerialNumber] = booking.clone()
	m.byPayment[booking.PaymentID] = booking.SerialNumber
	return booking.clone(), nil
}

func (m *MemoryRepo) GetBookingBySerial(ctx context.Context, serial string) (*Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bookings[serial]
	if !ok {
		return nil, ErrNotFound
	}
	return b.clone(), nil
}

func (m *MemoryRepo) GetBookingByPaymentID(ctx context.Context, paymentID string) (*Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	serial, ok := m.byPayment[paymentID]
	if !ok {
		return nil, ErrNotFound
	}
	return m.bookings[serial].clone(), nil
}

func (m *MemoryRepo) ListBookings(ctx context.Context) ([]*Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*Booking, 0, len(m.bookings))
	for _, b := range m.bookings {
		out = append(out, b.clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].SerialNumber > out[j].SerialNumber
		}
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

func (m *MemoryRepo) MarkBookingUsed(ctx context.Context, serial string, at time.Time) (*Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bookings[serial]
	if !ok {
		return nil, ErrNotFound
	}
	if b.UsedAt != nil {
		return b.clone(), ErrAlreadyUsed
	}
	used := at.UTC().Truncate(time.Millisecond)
	b.UsedAt = &used
	return b.clone(), nil
}

func (m *MemoryRepo) DeleteAllBookings(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := int64(len(m.bookings))
	m.bookings = make(map[string]*Booking)
	m.byPayment = make(map[string]string)
	return n, nil
}

func (m *MemoryRepo) GetPricing(ctx context.Context) (*Pricing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pricing == nil {
		return nil, ErrNotFound
	}
	p := *m.pricing
	return &p, nil
}

func (m *MemoryRepo) UpsertPricing(ctx context.Context, dayPass, seasonPass float64) (*Pricing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pricing = &Pricing{
		DayPass:    dayPass,
		SeasonPass: seasonPass,
		UpdatedAt:  m.now().UTC(),
	}
	p := *m.pricing
	return &p, nil
}

func (m *MemoryRepo) NextSequence(ctx context.Context, name string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sequences[name]++
	return m.sequences[name], nil
}
