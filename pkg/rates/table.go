// Package rates holds the static commission rate card. The lookups are pure,
// carry default fallbacks, and never fail; the calculator in pkg/commission
// is their only consumer besides the public rate-card endpoint.
package rates

import (
	"github.com/shopspring/decimal"

	"github.com/cartbridge/partnerhub/pkg/domain"
)

var (
	// Base revenue-share rates per partner kind. Service partners are paid
	// a fixed incentive per integration instead of a rate.
	baseRates = map[domain.PartnerKind]decimal.Decimal{
		domain.KindReferral: decimal.RequireFromString("0.03"),
		domain.KindReseller: decimal.RequireFromString("0.05"),
	}

	// ServiceIncentive is the flat amount a service partner earns per deal,
	// independent of GMV, product, and vertical.
	ServiceIncentive = decimal.NewFromInt(10000)

	productMultipliers = map[domain.Product]decimal.Decimal{
		domain.ProductCheckout:          decimal.RequireFromString("1.2"),
		domain.ProductReturnsManagement: decimal.RequireFromString("1.1"),
		domain.ProductEngagement:        decimal.RequireFromString("1.1"),
		domain.ProductAllProducts:       decimal.RequireFromString("1.4"),
	}

	verticalBonuses = map[domain.Vertical]decimal.Decimal{
		domain.VerticalFashion:     decimal.RequireFromString("0.01"),
		domain.VerticalElectronics: decimal.RequireFromString("0.005"),
		domain.VerticalBeauty:      decimal.RequireFromString("0.005"),
		domain.VerticalHome:        decimal.RequireFromString("0.0025"),
		domain.VerticalFood:        decimal.RequireFromString("0.0025"),
		domain.VerticalOther:       decimal.Zero,
	}
)

// BaseRate returns the revenue-share rate for a partner kind. Service
// partners have no rate; callers must check IsFixedIncentive first. Unknown
// kinds fall back to zero.
func BaseRate(kind domain.PartnerKind) decimal.Decimal {
	if rate, ok := baseRates[kind]; ok {
		return rate
	}
	return decimal.Zero
}

// IsFixedIncentive reports whether the kind is paid a flat amount per deal
// rather than a share of GMV.
func IsFixedIncentive(kind domain.PartnerKind) bool {
	return kind == domain.KindService
}

// ProductMultiplier returns the multiplier applied to the base rate for a
// product. Unrecognized products fall back to 1.0.
func ProductMultiplier(product domain.Product) decimal.Decimal {
	if m, ok := productMultipliers[product]; ok {
		return m
	}
	return decimal.NewFromInt(1)
}

// VerticalBonus returns the additive rate bonus for a vertical.
// Unrecognized verticals fall back to 0.0.
func VerticalBonus(vertical domain.Vertical) decimal.Decimal {
	if b, ok := verticalBonuses[vertical]; ok {
		return b
	}
	return decimal.Zero
}

// RateCard is the full rate table in a serializable shape for the public
// rate-card endpoint.
type RateCard struct {
	BaseRates          map[domain.PartnerKind]decimal.Decimal `json:"base_rates"`
	ServiceIncentive   decimal.Decimal                        `json:"service_incentive"`
	ProductMultipliers map[domain.Product]decimal.Decimal     `json:"product_multipliers"`
	VerticalBonuses    map[domain.Vertical]decimal.Decimal    `json:"vertical_bonuses"`
}

// Card returns a copy of the current rate table.
func Card() RateCard {
	card := RateCard{
		BaseRates:          make(map[domain.PartnerKind]decimal.Decimal, len(baseRates)),
		ServiceIncentive:   ServiceIncentive,
		ProductMultipliers: make(map[domain.Product]decimal.Decimal, len(productMultipliers)),
		VerticalBonuses:    make(map[domain.Vertical]decimal.Decimal, len(verticalBonuses)),
	}
	for k, v := range baseRates {
		card.BaseRates[k] = v
	}
	for k, v := range productMultipliers {
		card.ProductMultipliers[k] = v
	}
	for k, v := range verticalBonuses {
		card.VerticalBonuses[k] = v
	}
	return card
}
