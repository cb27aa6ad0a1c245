package tickets

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/joshua-takyi/gatepass/internal/models"
)

var ErrInvalidPayload = errors.New("invalid ticket payload")

// Payload is the content of the QR code printed on a ticket.
type Payload struct {
	SerialNumber string `json:"serialNumber"`
	PaymentID    string `json:"paymentId,omitempty"`
	TicketType   string `json:"ticketType,omitempty"`
	Quantity     int    `json:"quantity,omitempty"`
}

func PayloadFor(b *models.Booking) Payload {
	return Payload{
		SerialNumber: b.SerialNumber,
		PaymentID:    b.PaymentID,
		TicketType:   b.TicketType,
		Quantity:     b.Quantity,
	}
}

func EncodePayload(p Payload) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("error encoding ticket payload: %w", err)
	}
	return string(data), nil
}

// ParsePayload decodes a scanned QR string. Besides the JSON object printed
// on tickets it accepts a bare serial ("DP-0001") typed in by gate staff.
func ParsePayload(raw string) (Payload, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Payload{}, fmt.Errorf("%w: empty", ErrInvalidPayload)
	}

	if !strings.HasPrefix(raw, "{") {
		if strings.ContainsAny(raw, " \t\r\n\"") {
			return Payload{}, fmt.Errorf("%w: not a serial number", ErrInvalidPayload)
		}
		return Payload{SerialNumber: raw}, nil
	}

	var p Payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	p.SerialNumber = strings.TrimSpace(p.SerialNumber)
	if p.SerialNumber == "" {
		return Payload{}, fmt.Errorf("%w: missing serialNumber", ErrInvalidPayload)
	}
	return p, nil
}
