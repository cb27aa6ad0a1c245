package notify

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/joshua-takyi/gatepass/internal/models"
	"github.com/joshua-takyi/gatepass/internal/tickets"
)

const resendBaseURL = "https://api.resend.com"

type attachment struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

type resendEmail struct {
	From        string       `json:"from"`
	To          []string     `json:"to"`
	Subject     string       `json:"subject"`
	HTML        string       `json:"html"`
	Attachments []attachment `json:"attachments,omitempty"`
}

var confirmationTemplate = template.Must(template.New("confirmation").Parse(`
<h2>Your {{.EventName}} ticket</h2>
<p>Hi {{.Booking.FullName}}, thank you for your booking.</p>
<ul>
  <li><b>Serial Number:</b> {{.Booking.SerialNumber}}</li>
  <li><b>Ticket Type:</b> {{.Booking.TicketType}}</li>
  <li><b>Quantity:</b> {{.Booking.Quantity}}</li>
  <li><b>Payment ID:</b> {{.Booking.PaymentID}}</li>
</ul>
{{if .TicketURL}}<p>You can also <a href="{{.TicketURL}}">download your ticket</a>.</p>{{end}}
<p>Please present the attached ticket at the venue.</p>
`))

// Mailer sends booking confirmations through the Resend HTTP API. Without an
// API key it only logs what it would have sent.
type Mailer struct {
	http      *resty.Client
	apiKey    string
	from      string
	eventName string
	logger    *slog.Logger
}

func NewMailer(apiKey, from, eventName string, logger *slog.Logger) *Mailer {
	return newMailer(resendBaseURL, apiKey, from, eventName, logger)
}

func newMailer(baseURL, apiKey, from, eventName string, logger *slog.Logger) *Mailer {
	http := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(apiKey).
		SetTimeout(20 * time.Second)

	return &Mailer{
		http:      http,
		apiKey:    apiKey,
		from:      from,
		eventName: eventName,
		logger:    logger,
	}
}

// SendConfirmation mails the ticket to the booking's address. pdf may be nil
// when rendering failed; the mail then carries only the download link.
func (m *Mailer) SendConfirmation(ctx context.Context, b *models.Booking, pdf []byte, ticketURL string) error {
	var body bytes.Buffer
	err := confirmationTemplate.Execute(&body, struct {
		EventName string
		Booking   *models.Booking
		TicketURL string
	}{m.eventName, b, ticketURL})
	if err != nil {
		return fmt.Errorf("error rendering confirmation mail: %w", err)
	}

	email := resendEmail{
		From:    m.from,
		To:      []string{b.Email},
		Subject: fmt.Sprintf("Your %s ticket %s", m.eventName, b.SerialNumber),
		HTML:    body.String(),
	}
	if len(pdf) > 0 {
		email.Attachments = []attachment{{
			Filename: tickets.FileName(b.SerialNumber),
			Content:  base64.StdEncoding.EncodeToString(pdf),
		}}
	}

	if m.apiKey == "" {
		m.logger.Warn("mail transport not configured, confirmation not sent",
			"to", b.Email,
			"subject", email.Subject,
			"attachments", len(email.Attachments),
		)
		return nil
	}

	resp, err := m.http.R().
		SetContext(ctx).
		SetBody(email).
		Post("/emails")
	if err != nil {
		return fmt.Errorf("failed to send email via Resend: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("resend API error: %s", resp.Status())
	}

	m.logger.Info("confirmation mail sent", "to", b.Email, "serial", b.SerialNumber)
	return nil
}
