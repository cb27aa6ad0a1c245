package models

import (
	"context"
	"time"
)

const (
	PricingColName = "pricing"
	pricingDocID   = "current"

	DefaultDayPassPrice    = 199
	DefaultSeasonPassPrice = 699
)

type Pricing struct {
	DayPass    float64   `bson:"dayPass" json:"dayPass"`
	SeasonPass float64   `bson:"seasonPass" json:"seasonPass"`
	UpdatedAt  time.Time `bson:"updatedAt,omitempty" json:"updatedAt,omitzero"`
}

type PricingRepo interface {
	// GetPricing returns ErrNotFound when no pricing record has been saved.
	GetPricing(ctx context.Context) (*Pricing, error)
	UpsertPricing(ctx context.Context, dayPass, seasonPass float64) (*Pricing, error)
}

func DefaultPricing() Pricing {
	return Pricing{DayPass: DefaultDayPassPrice, SeasonPass: DefaultSeasonPassPrice}
}

// PriceFor returns the unit price of a tier.
func (p Pricing) PriceFor(tier TicketTier) float64 {
	if tier.Key == SeasonPass.Key {
		return p.SeasonPass
	}
	return p.DayPass
}
