package export

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/cartbridge/partnerhub/pkg/database"
	"github.com/cartbridge/partnerhub/pkg/domain"
)

func TestDealsExport(t *testing.T) {
	t.Run("Success - Produces a readable spreadsheet with one row per deal", func(t *testing.T) {
		db := database.OpenTest(t)
		svc := NewService(db)

		partner := &domain.Partner{Name: "P", Email: "p@example.com", PasswordHash: "x", Kind: domain.KindReferral, Role: domain.RolePartner}
		require.NoError(t, db.Create(partner).Error)

		deal := &domain.Deal{
			PartnerID:      partner.ID,
			BrandName:      "Meadow Threads",
			MonthlyGMV:     decimal.NewFromInt(500000),
			Product:        domain.ProductCheckout,
			Vertical:       domain.VerticalFashion,
			Stage:          domain.StageSigned,
			StageUpdatedAt: time.Now().UTC(),
		}
		require.NoError(t, db.Create(deal).Error)

		data, filename, err := svc.Deals(context.Background())
		require.NoError(t, err)
		assert.Contains(t, filename, "deals_")
		assert.Contains(t, filename, ".xlsx")

		f, err := excelize.OpenReader(bytes.NewReader(data))
		require.NoError(t, err)
		defer f.Close()

		rows, err := f.GetRows("Deals")
		require.NoError(t, err)
		require.Len(t, rows, 2, "header plus one deal")
		assert.Equal(t, "Brand", rows[0][2])
		assert.Equal(t, "Meadow Threads", rows[1][2])
		assert.Equal(t, "p@example.com", rows[1][1])
	})
}

func TestCommissionsExport(t *testing.T) {
	t.Run("Success - Ledger rows carry amount, status and formula", func(t *testing.T) {
		db := database.OpenTest(t)
		svc := NewService(db)

		partner := &domain.Partner{Name: "P", Email: "p@example.com", PasswordHash: "x", Kind: domain.KindReseller, Role: domain.RolePartner}
		require.NoError(t, db.Create(partner).Error)

		record := &domain.CommissionRecord{
			DealID:    1,
			PartnerID: partner.ID,
			Amount:    decimal.NewFromInt(14000),
			Formula:   "200000 x 0.07 = 14000",
			Status:    domain.CommissionStatusEarned,
		}
		require.NoError(t, db.Create(record).Error)

		data, _, err := svc.Commissions(context.Background())
		require.NoError(t, err)

		f, err := excelize.OpenReader(bytes.NewReader(data))
		require.NoError(t, err)
		defer f.Close()

		rows, err := f.GetRows("Commissions")
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "earned", rows[1][4])
		assert.Equal(t, "200000 x 0.07 = 14000", rows[1][5])
	})
}
