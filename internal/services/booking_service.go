package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/joshua-takyi/gatepass/internal/models"
	"github.com/joshua-takyi/gatepass/internal/payment"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	maxSerialAttempts = 3
	notifyTimeout     = 30 * time.Second
	amountTolerance   = 0.005
)

type PaymentVerifier interface {
	Verify(orderID, paymentID, signature string) bool
}

type OrderCreator interface {
	CreateOrder(ctx context.Context, amount float64) (*payment.Order, error)
}

type Notifier interface {
	SendConfirmation(ctx context.Context, b *models.Booking, pdf []byte, ticketURL string) error
}

// ConfirmPaymentRequest is what the checkout page posts after the gateway
// reports a successful payment.
type ConfirmPaymentRequest struct {
	OrderID     string  `json:"order_id" validate:"required"`
	PaymentID   string  `json:"payment_id" validate:"required"`
	Signature   string  `json:"signature" validate:"required"`
	FullName    string  `json:"fullName" validate:"required"`
	Email       string  `json:"email" validate:"required,email"`
	Phone       string  `json:"phone" validate:"required"`
	TicketType  string  `json:"selectedTicketType" validate:"required"`
	Quantity    int     `json:"quantity" validate:"gt=0"`
	TotalAmount float64 `json:"totalAmount" validate:"gt=0"`
}

func (r *ConfirmPaymentRequest) normalize() {
	r.OrderID = strings.TrimSpace(r.OrderID)
	r.PaymentID = strings.TrimSpace(r.PaymentID)
	r.Signature = strings.TrimSpace(r.Signature)
	r.FullName = strings.TrimSpace(r.FullName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Phone = strings.TrimSpace(r.Phone)
	r.TicketType = strings.TrimSpace(r.TicketType)
}

type BookingResult struct {
	Booking   *models.Booking `json:"booking"`
	TicketURL string          `json:"ticketUrl"`
	Replayed  bool            `json:"replayed"`
}

type BookingService struct {
	store    models.Store
	serials  *SerialAllocator
	verifier PaymentVerifier
	gateway  OrderCreator
	pricing  *PricingService
	tickets  *TicketService
	notifier Notifier
	logger   *slog.Logger

	created  metric.Int64Counter
	rejected metric.Int64Counter
	replayed metric.Int64Counter
}

func NewBookingService(
	store models.Store,
	verifier PaymentVerifier,
	gateway OrderCreator,
	pricing *PricingService,
	tickets *TicketService,
	notifier Notifier,
	logger *slog.Logger,
) *BookingService {
	return &BookingService{
		store:    store,
		serials:  NewSerialAllocator(store),
		verifier: verifier,
		gateway:  gateway,
		pricing:  pricing,
		tickets:  tickets,
		notifier: notifier,
		logger:   logger,
		created:  counter("bookings.created", "Bookings persisted after a verified payment"),
		rejected: counter("bookings.rejected", "Payment confirmations rejected"),
		replayed: counter("bookings.replayed", "Confirmations answered from an existing booking"),
	}
}

// CreateOrder registers a checkout with the payment gateway. amount is in the
// major currency unit.
func (bs *BookingService) CreateOrder(ctx context.Context, amount float64) (*payment.Order, error) {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, validationError("amount must be a positive number")
	}
	order, err := bs.gateway.CreateOrder(ctx, amount)
	if err != nil {
		return nil, fmt.Errorf("error creating payment order: %w", err)
	}
	bs.logger.Info("payment order created",
		"order_id", order.ID,
		"amount", payment.FromMinorUnits(order.Amount),
		"currency", order.Currency,
	)
	return order, nil
}

// ConfirmPayment verifies a gateway confirmation and records the booking.
// Resubmitting the same confirmation returns the stored booking instead of
// issuing a second ticket.
func (bs *BookingService) ConfirmPayment(ctx context.Context, req ConfirmPaymentRequest) (*BookingResult, error) {
	ctx, span := tracer.Start(ctx, "BookingService.ConfirmPayment")
	defer span.End()

	req.normalize()
	if err := models.Validate.Struct(req); err != nil {
		bs.reject(ctx, span, "invalid_request")
		return nil, validationError("%v", err)
	}
	tier, ok := models.ParseTicketTier(req.TicketType)
	if !ok {
		bs.reject(ctx, span, "invalid_request")
		return nil, validationError("unknown ticket type %q", req.TicketType)
	}
	span.SetAttributes(
		attribute.String("booking.payment_id", req.PaymentID),
		attribute.String("booking.tier", tier.Key),
		attribute.Int("booking.quantity", req.Quantity),
	)

	if !bs.verifier.Verify(req.OrderID, req.PaymentID, req.Signature) {
		bs.reject(ctx, span, "signature_mismatch")
		bs.logger.Warn("payment signature mismatch", "order_id", req.OrderID, "payment_id", req.PaymentID)
		return nil, ErrSignatureMismatch
	}

	existing, err := bs.store.GetBookingByPaymentID(ctx, req.PaymentID)
	switch {
	case err == nil:
		return bs.replay(ctx, span, existing, req, tier)
	case !errors.Is(err, models.ErrNotFound):
		span.RecordError(err)
		span.SetStatus(codes.Error, "ledger lookup failed")
		return nil, fmt.Errorf("error looking up payment: %w", err)
	}

	if err := bs.checkAmount(ctx, req, tier); err != nil {
		bs.reject(ctx, span, "amount_mismatch")
		bs.logger.Warn("payment amount does not match tier price",
			"payment_id", req.PaymentID,
			"ticket_type", tier.Label,
			"quantity", req.Quantity,
			"total_amount", req.TotalAmount,
		)
		return nil, err
	}

	booking, err := bs.persist(ctx, req, tier)
	if err != nil {
		if errors.Is(err, models.ErrDuplicatePayment) {
			// a concurrent submission of the same payment won the insert
			existing, lookupErr := bs.store.GetBookingByPaymentID(ctx, req.PaymentID)
			if lookupErr != nil {
				return nil, fmt.Errorf("error reading concurrent booking: %w", lookupErr)
			}
			return bs.replay(ctx, span, existing, req, tier)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "booking not persisted")
		return nil, err
	}

	span.SetAttributes(attribute.String("booking.serial", booking.SerialNumber))
	bs.created.Add(ctx, 1, metric.WithAttributes(attribute.String("tier", tier.Key)))
	bs.logger.Info("booking created",
		"serial", booking.SerialNumber,
		"payment_id", booking.PaymentID,
		"ticket_type", booking.TicketType,
		"quantity", booking.Quantity,
	)

	ticketURL := bs.tickets.URL(booking.SerialNumber)
	bs.deliver(ctx, booking, ticketURL)

	return &BookingResult{Booking: booking, TicketURL: ticketURL}, nil
}

// checkAmount requires the submitted total to equal the current unit price of
// the tier times the quantity.
func (bs *BookingService) checkAmount(ctx context.Context, req ConfirmPaymentRequest, tier models.TicketTier) error {
	prices := bs.pricing.GetPrices(ctx)
	expected := prices.PriceFor(tier) * float64(req.Quantity)
	if math.Abs(req.TotalAmount-expected) >= amountTolerance {
		return validationError("totalAmount %.2f does not match %d x %s at %.2f",
			req.TotalAmount, req.Quantity, tier.Label, prices.PriceFor(tier))
	}
	return nil
}

// persist allocates a serial and inserts the booking, retrying with a fresh
// serial when the ledger reports a collision.
func (bs *BookingService) persist(ctx context.Context, req ConfirmPaymentRequest, tier models.TicketTier) (*models.Booking, error) {
	for attempt := 1; attempt <= maxSerialAttempts; attempt++ {
		serial, err := bs.serials.Next(ctx, tier)
		if err != nil {
			return nil, err
		}

		booking, err := bs.store.CreateBooking(ctx, &models.Booking{
			SerialNumber: serial,
			PaymentID:    req.PaymentID,
			OrderID:      req.OrderID,
			FullName:     req.FullName,
			Email:        req.Email,
			Phone:        req.Phone,
			TicketType:   tier.Label,
			Quantity:     req.Quantity,
			TotalAmount:  req.TotalAmount,
		})
		if err == nil {
			return booking, nil
		}
		if !errors.Is(err, models.ErrDuplicateSerial) {
			return nil, err
		}
		bs.logger.Warn("serial collision, retrying", "serial", serial, "attempt", attempt)
	}
	return nil, ErrSerialAllocation
}

func (bs *BookingService) replay(ctx context.Context, span trace.Span, existing *models.Booking, req ConfirmPaymentRequest, tier models.TicketTier) (*BookingResult, error) {
	if !sameBooking(existing, req, tier) {
		bs.reject(ctx, span, "conflict")
		bs.logger.Warn("payment resubmitted with different details",
			"payment_id", req.PaymentID,
			"serial", existing.SerialNumber,
		)
		return nil, ErrConflict
	}

	span.SetAttributes(attribute.Bool("booking.replayed", true))
	bs.replayed.Add(ctx, 1, metric.WithAttributes(attribute.String("tier", tier.Key)))
	bs.logger.Info("booking replayed", "serial", existing.SerialNumber, "payment_id", existing.PaymentID)

	return &BookingResult{
		Booking:   existing,
		TicketURL: bs.tickets.URL(existing.SerialNumber),
		Replayed:  true,
	}, nil
}

func sameBooking(b *models.Booking, req ConfirmPaymentRequest, tier models.TicketTier) bool {
	return b.TicketType == tier.Label &&
		b.Quantity == req.Quantity &&
		math.Abs(b.TotalAmount-req.TotalAmount) < amountTolerance &&
		strings.EqualFold(b.Email, req.Email)
}

func (bs *BookingService) reject(ctx context.Context, span trace.Span, reason string) {
	span.SetAttributes(attribute.String("booking.rejected", reason))
	bs.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

// deliver renders the ticket and mails it. The booking is already committed,
// so failures are logged and never returned.
func (bs *BookingService) deliver(ctx context.Context, b *models.Booking, ticketURL string) {
	ctx, span := tracer.Start(context.WithoutCancel(ctx), "BookingService.deliver")
	defer span.End()

	pdf, err := bs.tickets.Render(b)
	if err != nil {
		span.RecordError(err)
		bs.logger.Error("ticket render failed", "serial", b.SerialNumber, "error", err)
	}

	ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()
	if err := bs.notifier.SendConfirmation(ctx, b, pdf, ticketURL); err != nil {
		span.RecordError(err)
		bs.logger.Error("confirmation mail failed", "serial", b.SerialNumber, "email", b.Email, "error", err)
	}
}
