// Package commission computes partner commission for a single deal and keeps
// the bookkeeping of earned and pending amounts as deals move through the
// pipeline. Calculate is a pure function over the rate table; it assumes
// non-negative GMV, which the API boundary enforces.
package commission

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cartbridge/partnerhub/pkg/domain"
	"github.com/cartbridge/partnerhub/pkg/rates"
)

// Factor is one inspectable line of a commission breakdown.
type Factor struct {
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value"`
}

// Result is the outcome of a commission computation. The breakdown is
// ordered so the portal can render the audit trail exactly as computed.
type Result struct {
	Amount    decimal.Decimal `json:"amount"`
	Breakdown []Factor        `json:"breakdown"`
	Formula   string          `json:"formula"`
}

// Calculate computes commission for one deal.
//
// Service partners are paid per integration, not per revenue share: they
// receive the fixed incentive regardless of GMV, product, and vertical.
// Everyone else earns gmv * (baseRate*multiplier + bonus). A GMV of zero
// yields zero, not an error.
func Calculate(kind domain.PartnerKind, gmv decimal.Decimal, product domain.Product, vertical domain.Vertical) Result {
	if rates.IsFixedIncentive(kind) {
		return Result{
			Amount: rates.ServiceIncentive,
			Breakdown: []Factor{
				{Label: "fixed incentive", Value: rates.ServiceIncentive},
			},
			Formula: fmt.Sprintf("fixed incentive = %s", rates.ServiceIncentive),
		}
	}

	baseRate := rates.BaseRate(kind)
	multiplier := rates.ProductMultiplier(product)
	bonus := rates.VerticalBonus(vertical)

	effectiveRate := baseRate.Mul(multiplier).Add(bonus)

	amount := decimal.Zero
	if gmv.IsPositive() {
		amount = gmv.Mul(effectiveRate)
	}

	return Result{
		Amount: amount,
		Breakdown: []Factor{
			{Label: "monthly gmv", Value: gmv},
			{Label: "base rate", Value: baseRate},
			{Label: "product multiplier", Value: multiplier},
			{Label: "vertical bonus", Value: bonus},
			{Label: "effective rate", Value: effectiveRate},
		},
		Formula: fmt.Sprintf("%s * (%s * %s + %s) = %s", gmv, baseRate, multiplier, bonus, amount),
	}
}

// EffectiveRate computes the combined rate without applying it to a GMV.
// Only meaningful for revenue-share kinds; service partners have no rate.
func EffectiveRate(kind domain.PartnerKind, product domain.Product, vertical domain.Vertical) decimal.Decimal {
	return rates.BaseRate(kind).Mul(rates.ProductMultiplier(product)).Add(rates.VerticalBonus(vertical))
}
