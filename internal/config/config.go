package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string

	StoreDriver     string
	MongoDBURI      string
	MongoDBPassword string
	MongoDBName     string
	PostgresDSN     string

	PaymentKeyID     string
	PaymentKeySecret string
	PaymentBaseURL   string
	Currency         string

	JWTSecret         string
	JWTKeyID          string
	JWTPreviousSecret string
	JWTPreviousKeyID  string
	AdminUsername     string
	AdminPassword     string
	AdminPasswordHash string
	AdminTokenTTL     time.Duration

	ResendAPIKey string
	MailFrom     string
	EventName    string

	PublicBaseURL    string
	TicketLinkSecret string
	TicketSingleUse  bool

	CORSAllowedOrigins []string
	OTLPEndpoint       string
	ServiceName        string
}

func LoadConfig() (*Config, error) {
	ttl, err := getEnvDuration("ADMIN_TOKEN_TTL", 2*time.Hour)
	if err != nil {
		return nil, err
	}
	singleUse, err := getEnvBool("TICKET_SINGLE_USE", false)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:        getEnvWithDefault("PORT", "8080"),
		Environment: getEnvWithDefault("ENVIRONMENT", "development"),
		LogLevel:    getEnvWithDefault("LOG_LEVEL", "info"),

		StoreDriver:     strings.ToLower(getEnvWithDefault("STORE_DRIVER", StoreMongo)),
		MongoDBURI:      os.Getenv("MONGODB_URI"),
		MongoDBPassword: os.Getenv("MONGODB_PASSWORD"),
		MongoDBName:     getEnvWithDefault("MONGODB_DATABASE", "gatepass"),
		PostgresDSN:     os.Getenv("POSTGRES_DSN"),

		PaymentKeyID:     os.Getenv("PAYMENT_KEY_ID"),
		PaymentKeySecret: os.Getenv("PAYMENT_KEY_SECRET"),
		PaymentBaseURL:   getEnvWithDefault("PAYMENT_BASE_URL", "https://api.razorpay.com/v1"),
		Currency:         getEnvWithDefault("PAYMENT_CURRENCY", "INR"),

		JWTSecret:         os.Getenv("JWT_SECRET"),
		JWTKeyID:          getEnvWithDefault("JWT_KEY_ID", "admin-1"),
		JWTPreviousSecret: os.Getenv("JWT_PREVIOUS_SECRET"),
		JWTPreviousKeyID:  os.Getenv("JWT_PREVIOUS_KEY_ID"),
		AdminUsername:     os.Getenv("ADMIN_USERNAME"),
		AdminPassword:     os.Getenv("ADMIN_PASSWORD"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		AdminTokenTTL:     ttl,

		ResendAPIKey: os.Getenv("RESEND_API_KEY"),
		MailFrom:     getEnvWithDefault("MAIL_FROM", "Gatepass Tickets <tickets@example.com>"),
		EventName:    getEnvWithDefault("EVENT_NAME", "Gatepass Live"),

		PublicBaseURL:    strings.TrimRight(getEnvWithDefault("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		TicketLinkSecret: os.Getenv("TICKET_LINK_SECRET"),
		TicketSingleUse:  singleUse,

		CORSAllowedOrigins: splitList(getEnvWithDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		OTLPEndpoint:       os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		ServiceName:        getEnvWithDefault("SERVICE_NAME", "gatepass-api"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case StoreMongo:
		if c.MongoDBURI == "" {
			return fmt.Errorf("MONGODB_URI is required")
		}
	case StorePostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q (expected mongo, postgres or memory)", c.StoreDriver)
	}

	if c.PaymentKeySecret == "" {
		return fmt.Errorf("PAYMENT_KEY_SECRET is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.JWTPreviousSecret != "" && c.JWTPreviousKeyID == "" {
		return fmt.Errorf("JWT_PREVIOUS_KEY_ID is required when JWT_PREVIOUS_SECRET is set")
	}
	if c.AdminUsername == "" {
		return fmt.Errorf("ADMIN_USERNAME is required")
	}
	if c.AdminPassword == "" && c.AdminPasswordHash == "" {
		return fmt.Errorf("ADMIN_PASSWORD or ADMIN_PASSWORD_HASH is required")
	}
	if c.AdminTokenTTL <= 0 {
		return fmt.Errorf("ADMIN_TOKEN_TTL must be positive")
	}
	if len(c.CORSAllowedOrigins) == 0 {
		return fmt.Errorf("CORS_ALLOWED_ORIGINS must list at least one origin")
	}
	return nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return b, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration like 2h: %w", key, err)
	}
	return d, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
