package rates

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/cartbridge/partnerhub/pkg/domain"
)

func TestBaseRate(t *testing.T) {
	t.Run("Success - Referral rate", func(t *testing.T) {
		assert.True(t, BaseRate(domain.KindReferral).Equal(decimal.RequireFromString("0.03")))
	})

	t.Run("Success - Reseller rate", func(t *testing.T) {
		assert.True(t, BaseRate(domain.KindReseller).Equal(decimal.RequireFromString("0.05")))
	})

	t.Run("Success - Service has no rate, only fixed incentive", func(t *testing.T) {
		assert.True(t, IsFixedIncentive(domain.KindService))
		assert.True(t, BaseRate(domain.KindService).IsZero())
	})
}

func TestProductMultiplier(t *testing.T) {
	t.Run("Success - Checkout multiplier", func(t *testing.T) {
		assert.True(t, ProductMultiplier(domain.ProductCheckout).Equal(decimal.RequireFromString("1.2")))
	})

	t.Run("Success - Unknown product falls back to 1.0", func(t *testing.T) {
		assert.True(t, ProductMultiplier(domain.Product("hologram")).Equal(decimal.NewFromInt(1)))
	})
}

func TestVerticalBonus(t *testing.T) {
	t.Run("Success - Fashion bonus", func(t *testing.T) {
		assert.True(t, VerticalBonus(domain.VerticalFashion).Equal(decimal.RequireFromString("0.01")))
	})

	t.Run("Success - Other vertical has no bonus", func(t *testing.T) {
		assert.True(t, VerticalBonus(domain.VerticalOther).IsZero())
	})

	t.Run("Success - Unknown vertical falls back to 0.0", func(t *testing.T) {
		assert.True(t, VerticalBonus(domain.Vertical("aerospace")).IsZero())
	})
}

func TestCard(t *testing.T) {
	t.Run("Success - Card covers every enum value", func(t *testing.T) {
		card := Card()

		assert.Len(t, card.BaseRates, 2)
		assert.Len(t, card.ProductMultipliers, 4)
		assert.Len(t, card.VerticalBonuses, 6)
		assert.True(t, card.ServiceIncentive.Equal(decimal.NewFromInt(10000)))
	})

	t.Run("Success - Card is a copy, not the live table", func(t *testing.T) {
		card := Card()
		card.BaseRates[domain.KindReferral] = decimal.NewFromInt(99)

		assert.True(t, BaseRate(domain.KindReferral).Equal(decimal.RequireFromString("0.03")))
	})
}
