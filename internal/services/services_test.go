package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/joshua-takyi/gatepass/internal/models"
	"github.com/joshua-takyi/gatepass/internal/payment"
	"github.com/joshua-takyi/gatepass/internal/tickets"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testGatewaySecret = "gateway-secret"

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) SendConfirmation(ctx context.Context, b *models.Booking, pdf []byte, ticketURL string) error {
	args := m.Called(ctx, b, pdf, ticketURL)
	return args.Error(0)
}

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) CreateOrder(ctx context.Context, amount float64) (*payment.Order, error) {
	args := m.Called(ctx, amount)
	order, _ := args.Get(0).(*payment.Order)
	return order, args.Error(1)
}

type stubRenderer struct {
	err error
}

func (r stubRenderer) Render(b *models.Booking) ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	return []byte("%PDF-" + b.SerialNumber), nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testEnv struct {
	store    *models.MemoryRepo
	verifier *payment.Verifier
	notifier *mockNotifier
	gateway  *mockGateway
	pricing  *PricingService
	tickets  *TicketService
	bookings *BookingService
}

func newTestEnv(t *testing.T, store models.Store, renderer TicketRenderer) *testEnv {
	t.Helper()

	verifier, err := payment.NewVerifier(testGatewaySecret)
	require.NoError(t, err)

	env := &testEnv{
		verifier: verifier,
		notifier: &mockNotifier{},
		gateway:  &mockGateway{},
	}
	if mem, ok := store.(*models.MemoryRepo); ok {
		env.store = mem
	}
	if renderer == nil {
		renderer = stubRenderer{}
	}
	env.tickets = NewTicketService(store, renderer, tickets.NewLinkSigner(""), "https://tickets.example")
	env.pricing = NewPricingService(store, discardLogger())
	env.bookings = NewBookingService(store, verifier, env.gateway, env.pricing, env.tickets, env.notifier, discardLogger())
	return env
}

func (env *testEnv) confirmRequest(orderID, paymentID string) ConfirmPaymentRequest {
	return ConfirmPaymentRequest{
		OrderID:     orderID,
		PaymentID:   paymentID,
		Signature:   env.verifier.Sign(orderID, paymentID),
		FullName:    "Asha Rao",
		Email:       "asha@example.com",
		Phone:       "9999999999",
		TicketType:  "day-pass",
		Quantity:    2,
		TotalAmount: 398,
	}
}

func (env *testEnv) expectMail() {
	env.notifier.On("SendConfirmation", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
}

// collidingStore reports a serial collision for the first failures inserts.
type collidingStore struct {
	*models.MemoryRepo
	failures int
	calls    int
}

func (s *collidingStore) CreateBooking(ctx context.Context, b *models.Booking) (*models.Booking, error) {
	s.calls++
	if s.calls <= s.failures {
		return nil, models.ErrDuplicateSerial
	}
	return s.MemoryRepo.CreateBooking(ctx, b)
}

// racingStore hides an existing payment from the first lookup, as if a
// concurrent request inserted it in between.
type racingStore struct {
	*models.MemoryRepo
	hidden bool
}

func (s *racingStore) GetBookingByPaymentID(ctx context.Context, paymentID string) (*models.Booking, error) {
	if !s.hidden {
		s.hidden = true
		return nil, models.ErrNotFound
	}
	return s.MemoryRepo.GetBookingByPaymentID(ctx, paymentID)
}

var errBoom = errors.New("boom")
