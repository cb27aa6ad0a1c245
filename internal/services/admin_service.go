package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joshua-takyi/gatepass/internal/models"
	"github.com/joshua-takyi/gatepass/internal/tickets"
	"golang.org/x/crypto/bcrypt"
)

type TokenIssuer interface {
	Issue(subject string) (string, time.Time, error)
}

// AdminCredentials is the single staff account. PasswordHash (bcrypt) takes
// precedence over Password when both are set.
type AdminCredentials struct {
	Username     string
	Password     string
	PasswordHash string
}

type AdminService struct {
	store     models.BookingRepo
	pricing   *PricingService
	tokens    TokenIssuer
	creds     AdminCredentials
	singleUse bool
	logger    *slog.Logger
	now       func() time.Time
}

func NewAdminService(
	store models.BookingRepo,
	pricing *PricingService,
	tokens TokenIssuer,
	creds AdminCredentials,
	singleUse bool,
	logger *slog.Logger,
) *AdminService {
	return &AdminService{
		store:     store,
		pricing:   pricing,
		tokens:    tokens,
		creds:     creds,
		singleUse: singleUse,
		logger:    logger,
		now:       time.Now,
	}
}

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (as *AdminService) Login(username, password string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, validationError("username and password are required")
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(as.creds.Username)) == 1
	passOK := as.checkPassword(password)
	if !userOK || !passOK {
		as.logger.Warn("admin login rejected", "username", username)
		return nil, ErrUnauthorized
	}

	token, exp, err := as.tokens.Issue(username)
	if err != nil {
		return nil, fmt.Errorf("error issuing admin token: %w", err)
	}
	as.logger.Info("admin logged in", "username", username)
	return &LoginResult{Token: token, ExpiresAt: exp}, nil
}

func (as *AdminService) checkPassword(password string) bool {
	if as.creds.PasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(as.creds.PasswordHash), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(as.creds.Password)) == 1
}

type TierSummary struct {
	Label    string  `json:"label"`
	Bookings int     `json:"bookings"`
	Tickets  int     `json:"tickets"`
	Revenue  float64 `json:"revenue"`
}

type Dashboard struct {
	TotalRevenue      float64                `json:"totalRevenue"`
	TotalTickets      int                    `json:"totalTickets"`
	TotalBookings     int                    `json:"totalBookings"`
	DayPassRevenue    float64                `json:"dayPassRevenue"`
	SeasonPassRevenue float64                `json:"seasonPassRevenue"`
	Tiers             map[string]TierSummary `json:"tiers"`
	Prices            models.Pricing         `json:"prices"`
	Bookings          []*models.Booking      `json:"bookings"`
}

// Dashboard lists every booking, newest first, with per-tier totals.
func (as *AdminService) Dashboard(ctx context.Context) (*Dashboard, error) {
	bookings, err := as.store.ListBookings(ctx)
	if err != nil {
		return nil, fmt.Errorf("error loading bookings: %w", err)
	}

	d := &Dashboard{
		TotalBookings: len(bookings),
		Tiers:         make(map[string]TierSummary, len(models.Tiers)),
		Prices:        as.pricing.GetPrices(ctx),
		Bookings:      bookings,
	}
	for _, t := range models.Tiers {
		d.Tiers[t.Key] = TierSummary{Label: t.Label}
	}

	for _, b := range bookings {
		d.TotalRevenue += b.TotalAmount
		d.TotalTickets += b.Quantity

		tier, ok := models.ParseTicketTier(b.TicketType)
		if !ok {
			continue
		}
		s := d.Tiers[tier.Key]
		s.Bookings++
		s.Tickets += b.Quantity
		s.Revenue += b.TotalAmount
		d.Tiers[tier.Key] = s
	}
	d.DayPassRevenue = d.Tiers[models.DayPass.Key].Revenue
	d.SeasonPassRevenue = d.Tiers[models.SeasonPass.Key].Revenue
	return d, nil
}

// Scan reasons.
const (
	ReasonNotFound = "not_found"
	ReasonMismatch = "mismatch"
)

type ScanResult struct {
	Status  string          `json:"status"`
	Reason  string          `json:"reason,omitempty"`
	Booking *models.Booking `json:"booking,omitempty"`
	UsedAt  *time.Time      `json:"usedAt,omitempty"`
}

// VerifyScan checks a scanned QR payload against the ledger. With single-use
// enforcement the first valid scan marks the ticket used.
func (as *AdminService) VerifyScan(ctx context.Context, raw string) (*ScanResult, error) {
	payload, err := tickets.ParsePayload(raw)
	if err != nil {
		return nil, validationError("%v", err)
	}

	b, err := as.store.GetBookingBySerial(ctx, payload.SerialNumber)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return &ScanResult{Status: models.StatusInvalid, Reason: ReasonNotFound}, nil
		}
		return nil, fmt.Errorf("error loading booking: %w", err)
	}

	if payload.PaymentID != "" && payload.PaymentID != b.PaymentID {
		as.logger.Warn("scan payload does not match ledger", "serial", b.SerialNumber)
		return &ScanResult{Status: models.StatusInvalid, Reason: ReasonMismatch}, nil
	}

	if !as.singleUse {
		return &ScanResult{Status: models.StatusValid, Booking: b}, nil
	}

	marked, err := as.store.MarkBookingUsed(ctx, b.SerialNumber, as.now())
	switch {
	case errors.Is(err, models.ErrAlreadyUsed):
		return &ScanResult{Status: models.StatusAlreadyUsed, Booking: marked, UsedAt: marked.UsedAt}, nil
	case err != nil:
		return nil, fmt.Errorf("error marking ticket used: %w", err)
	}
	as.logger.Info("ticket admitted", "serial", marked.SerialNumber)
	return &ScanResult{Status: models.StatusValid, Booking: marked, UsedAt: marked.UsedAt}, nil
}

// PurgeBookings deletes the whole ledger.
func (as *AdminService) PurgeBookings(ctx context.Context) (int64, error) {
	n, err := as.store.DeleteAllBookings(ctx)
	if err != nil {
		return 0, fmt.Errorf("error deleting bookings: %w", err)
	}
	as.logger.Warn("booking ledger purged", "deleted", n)
	return n, nil
}
