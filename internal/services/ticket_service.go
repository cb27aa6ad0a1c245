package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/joshua-takyi/gatepass/internal/models"
	"github.com/joshua-takyi/gatepass/internal/tickets"
)

type TicketRenderer interface {
	Render(b *models.Booking) ([]byte, error)
}

// TicketService serves ticket PDFs. Tickets are regenerated from the ledger
// on every request.
type TicketService struct {
	bookings models.BookingRepo
	renderer TicketRenderer
	links    *tickets.LinkSigner
	baseURL  string
}

func NewTicketService(bookings models.BookingRepo, renderer TicketRenderer, links *tickets.LinkSigner, baseURL string) *TicketService {
	return &TicketService{
		bookings: bookings,
		renderer: renderer,
		links:    links,
		baseURL:  baseURL,
	}
}

// URL is the public download link for a serial, signed when link signing is
// enabled.
func (ts *TicketService) URL(serial string) string {
	u := fmt.Sprintf("%s/api/v1/tickets/%s/download", ts.baseURL, url.PathEscape(serial))
	if ts.links.Enabled() {
		u += "?token=" + url.QueryEscape(ts.links.Token(serial))
	}
	return u
}

func (ts *TicketService) Render(b *models.Booking) ([]byte, error) {
	return ts.renderer.Render(b)
}

// PublicTicket renders a ticket for an unauthenticated download.
func (ts *TicketService) PublicTicket(ctx context.Context, serial, token string) ([]byte, *models.Booking, error) {
	if serial == "" {
		return nil, nil, validationError("serial number is required")
	}
	if !ts.links.Valid(serial, token) {
		return nil, nil, ErrUnauthorized
	}
	return ts.AdminTicket(ctx, serial)
}

func (ts *TicketService) AdminTicket(ctx context.Context, serial string) ([]byte, *models.Booking, error) {
	if serial == "" {
		return nil, nil, validationError("serial number is required")
	}
	b, err := ts.bookings.GetBookingBySerial(ctx, serial)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("error loading booking: %w", err)
	}
	pdf, err := ts.renderer.Render(b)
	if err != nil {
		return nil, nil, fmt.Errorf("error rendering ticket: %w", err)
	}
	return pdf, b, nil
}
