package container

import (
	"fmt"
	"log/slog"

	"github.com/joshua-takyi/gatepass/internal/config"
	"github.com/joshua-takyi/gatepass/internal/helpers"
	"github.com/joshua-takyi/gatepass/internal/models"
	"github.com/joshua-takyi/gatepass/internal/notify"
	"github.com/joshua-takyi/gatepass/internal/payment"
	"github.com/joshua-takyi/gatepass/internal/services"
	"github.com/joshua-takyi/gatepass/internal/tickets"
)

// Container holds all application dependencies
type Container struct {
	Logger *slog.Logger
	Config *config.Config
	Store  models.Store
	Tokens *helpers.TokenIssuer

	BookingService *services.BookingService
	PricingService *services.PricingService
	AdminService   *services.AdminService
	TicketService  *services.TicketService
}

// NewContainer wires services over an already-connected store.
func NewContainer(cfg *config.Config, logger *slog.Logger, store models.Store) (*Container, error) {
	verifier, err := payment.NewVerifier(cfg.PaymentKeySecret)
	if err != nil {
		return nil, err
	}

	var previous *helpers.SigningKey
	if cfg.JWTPreviousSecret != "" {
		previous = &helpers.SigningKey{ID: cfg.JWTPreviousKeyID, Secret: cfg.JWTPreviousSecret}
	}
	tokens, err := helpers.NewTokenIssuer(
		helpers.SigningKey{ID: cfg.JWTKeyID, Secret: cfg.JWTSecret},
		previous,
		cfg.AdminTokenTTL,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to configure admin tokens: %w", err)
	}

	gateway := payment.NewClient(cfg.PaymentBaseURL, cfg.PaymentKeyID, cfg.PaymentKeySecret, cfg.Currency)
	mailer := notify.NewMailer(cfg.ResendAPIKey, cfg.MailFrom, cfg.EventName, logger)
	generator := tickets.NewGenerator(cfg.EventName)
	links := tickets.NewLinkSigner(cfg.TicketLinkSecret)

	ticketService := services.NewTicketService(store, generator, links, cfg.PublicBaseURL)
	pricingService := services.NewPricingService(store, logger)
	bookingService := services.NewBookingService(store, verifier, gateway, pricingService, ticketService, mailer, logger)
	adminService := services.NewAdminService(
		store,
		pricingService,
		tokens,
		services.AdminCredentials{
			Username:     cfg.AdminUsername,
			Password:     cfg.AdminPassword,
			PasswordHash: cfg.AdminPasswordHash,
		},
		cfg.TicketSingleUse,
		logger,
	)

	return &Container{
		Logger:         logger,
		Config:         cfg,
		Store:          store,
		Tokens:         tokens,
		BookingService: bookingService,
		PricingService: pricingService,
		AdminService:   adminService,
		TicketService:  ticketService,
	}, nil
}
