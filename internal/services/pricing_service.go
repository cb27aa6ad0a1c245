package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/joshua-takyi/gatepass/internal/models"
)

type PricingService struct {
	pricing models.PricingRepo
	logger  *slog.Logger
}

func NewPricingService(pricing models.PricingRepo, logger *slog.Logger) *PricingService {
	return &PricingService{pricing: pricing, logger: logger}
}

// GetPrices never fails: a missing or unreadable record yields the defaults.
func (ps *PricingService) GetPrices(ctx context.Context) models.Pricing {
	p, err := ps.pricing.GetPricing(ctx)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			ps.logger.Warn("pricing lookup failed, serving defaults", "error", err)
		}
		return models.DefaultPricing()
	}
	return *p
}

// UpdatePrices validates both prices before writing either.
func (ps *PricingService) UpdatePrices(ctx context.Context, dayPass, seasonPass any) (*models.Pricing, error) {
	day, err := ParsePrice(dayPass)
	if err != nil {
		return nil, validationError("dayPass: %v", err)
	}
	season, err := ParsePrice(seasonPass)
	if err != nil {
		return nil, validationError("seasonPass: %v", err)
	}

	p, err := ps.pricing.UpsertPricing(ctx, day, season)
	if err != nil {
		return nil, fmt.Errorf("error updating prices: %w", err)
	}
	ps.logger.Info("prices updated", "day_pass", day, "season_pass", season)
	return p, nil
}

// ParsePrice accepts a JSON number or a numeric string and requires a finite
// value greater than zero.
func ParsePrice(v any) (float64, error) {
	var f float64
	switch x := v.(type) {
	case nil:
		return 0, errors.New("is required")
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return 0, fmt.Errorf("must be numeric")
		}
		f = parsed
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, errors.New("is required")
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("must be numeric")
		}
		f = parsed
	default:
		return 0, fmt.Errorf("must be numeric")
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("must be numeric")
	}
	if f <= 0 {
		return 0, fmt.Errorf("must be greater than zero")
	}
	return f, nil
}
