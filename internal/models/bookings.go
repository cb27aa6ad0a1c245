package models

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	BookingsColName = "bookings"
)

// Booking is an issued ticket. Apart from UsedAt (gate state, only written
// when single-use scanning is enabled) a booking is never modified.
type Booking struct {
	ID           string     `bson:"_id" json:"id"`
	SerialNumber string     `bson:"serialNumber" json:"serialNumber" validate:"required"`
	PaymentID    string     `bson:"paymentId" json:"paymentId" validate:"required"`
	OrderID      string     `bson:"orderId,omitempty" json:"orderId,omitempty"`
	FullName     string     `bson:"fullName" json:"fullName" validate:"required"`
	Email        string     `bson:"email" json:"email" validate:"required,email"`
	Phone        string     `bson:"phone" json:"phone" validate:"required"`
	TicketType   string     `bson:"ticketType" json:"ticketType" validate:"required"`
	Quantity     int        `bson:"quantity" json:"quantity" validate:"gt=0"`
	TotalAmount  float64    `bson:"totalAmount" json:"totalAmount" validate:"gt=0"`
	Timestamp    time.Time  `bson:"timestamp" json:"timestamp"`
	UsedAt       *time.Time `bson:"usedAt,omitempty" json:"usedAt,omitempty"`
}

type BookingRepo interface {
	CreateBooking(ctx context.Context, booking *Booking) (*Booking, error)
	GetBookingBySerial(ctx context.Context, serial string) (*Booking, error)
	GetBookingByPaymentID(ctx context.Context, paymentID string) (*Booking, error)
	ListBookings(ctx context.Context) ([]*Booking, error)
	// MarkBookingUsed sets UsedAt on the first call for a serial. Later calls
	// return the stored booking together with ErrAlreadyUsed.
	MarkBookingUsed(ctx context.Context, serial string, at time.Time) (*Booking, error)
	DeleteAllBookings(ctx context.Context) (int64, error)
}

// BeforeCreate assigns the record key and insert timestamp.
func (b *Booking) BeforeCreate(now time.Time) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	b.Timestamp = now.UTC().Truncate(time.Millisecond)
	b.UsedAt = nil
}

func (b *Booking) clone() *Booking {
	cp := *b
	if b.UsedAt != nil {
		at := *b.UsedAt
		cp.UsedAt = &at
	}
	return &cp
}

// TicketTier is one of the sellable ticket kinds.
type TicketTier struct {
	Key    string `json:"key"`
	Label  string `json:"label"`
	Prefix string `json:"prefix"`
}

var (
	DayPass    = TicketTier{Key: "day-pass", Label: "Day Pass", Prefix: "DP"}
	SeasonPass = TicketTier{Key: "season-pass", Label: "Season Pass", Prefix: "SP"}

	Tiers = []TicketTier{DayPass, SeasonPass}
)

// ParseTicketTier accepts a tier key ("day-pass"), its label ("Day Pass") or
// any casing/spacing variant of either.
func ParseTicketTier(s string) (TicketTier, bool) {
	norm := normalizeTier(s)
	if norm == "" {
		return TicketTier{}, false
	}
	for _, t := range Tiers {
		if norm == normalizeTier(t.Key) || norm == normalizeTier(t.Label) {
			return t, true
		}
	}
	return TicketTier{}, false
}

func normalizeTier(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	r := strings.NewReplacer("-", "", "_", "", " ", "")
	return r.Replace(s)
}
