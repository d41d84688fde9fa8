package payouts

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cartbridge/partnerhub/pkg/database"
	"github.com/cartbridge/partnerhub/pkg/domain"
	"github.com/cartbridge/partnerhub/pkg/logger"
)

type capturedEmail struct {
	to     string
	amount string
}

type fakeEmailSender struct {
	sent []capturedEmail
}

func (f *fakeEmailSender) SendPayoutEmail(toEmail, toName, amount string) error {
	f.sent = append(f.sent, capturedEmail{to: toEmail, amount: amount})
	return nil
}

func seedPartnerWithRecords(t *testing.T, db *gorm.DB, email string, amounts []int64, status string) *domain.Partner {
	t.Helper()
	partner := &domain.Partner{Name: "Partner", Email: email, PasswordHash: "x", Kind: domain.KindReferral, Role: domain.RolePartner}
	require.NoError(t, db.Create(partner).Error)

	deal := &domain.Deal{
		PartnerID:      partner.ID,
		BrandName:      "Brand",
		Product:        domain.ProductCheckout,
		Vertical:       domain.VerticalFashion,
		Stage:          domain.StageGoLive,
		StageUpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, db.Create(deal).Error)

	for _, amount := range amounts {
		record := &domain.CommissionRecord{
			DealID:    deal.ID,
			PartnerID: partner.ID,
			Amount:    decimal.NewFromInt(amount),
			Status:    status,
		}
		require.NoError(t, db.Create(record).Error)
	}

	return partner
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - Dry run settles earned records and notifies partners", func(t *testing.T) {
		db := database.OpenTest(t)
		svc := NewService(db, &Config{Enabled: false}, logger.Default())
		sender := &fakeEmailSender{}
		svc.SetEmailSender(sender)

		partner := seedPartnerWithRecords(t, db, "a@example.com", []int64{23000, 7000}, domain.CommissionStatusEarned)
		seedPartnerWithRecords(t, db, "b@example.com", []int64{5000}, domain.CommissionStatusPending)

		result, err := svc.Run(ctx)
		require.NoError(t, err)

		assert.NotEmpty(t, result.RunID)
		require.Len(t, result.Partners, 1)
		assert.Equal(t, partner.ID, result.Partners[0].PartnerID)
		assert.Equal(t, 2, result.Partners[0].Records)
		assert.True(t, result.Total.Equal(decimal.NewFromInt(30000)), "total %s", result.Total)

		var paid int64
		require.NoError(t, db.Model(&domain.CommissionRecord{}).
			Where("partner_id = ? AND status = ?", partner.ID, domain.CommissionStatusPaid).
			Count(&paid).Error)
		assert.Equal(t, int64(2), paid)

		var record domain.CommissionRecord
		require.NoError(t, db.Where("partner_id = ?", partner.ID).First(&record).Error)
		assert.NotNil(t, record.PaidAt)

		require.Len(t, sender.sent, 1)
		assert.Equal(t, "a@example.com", sender.sent[0].to)
		assert.Equal(t, "30000.00", sender.sent[0].amount)
	})

	t.Run("Success - Pending records are untouched", func(t *testing.T) {
		db := database.OpenTest(t)
		svc := NewService(db, &Config{Enabled: false}, logger.Default())

		partner := seedPartnerWithRecords(t, db, "c@example.com", []int64{5000}, domain.CommissionStatusPending)

		result, err := svc.Run(ctx)
		require.NoError(t, err)
		assert.Empty(t, result.Partners)

		var count int64
		require.NoError(t, db.Model(&domain.CommissionRecord{}).
			Where("partner_id = ? AND status = ?", partner.ID, domain.CommissionStatusPending).
			Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("Success - Rerun finds nothing left to pay", func(t *testing.T) {
		db := database.OpenTest(t)
		svc := NewService(db, &Config{Enabled: false}, logger.Default())

		seedPartnerWithRecords(t, db, "d@example.com", []int64{9000}, domain.CommissionStatusEarned)

		first, err := svc.Run(ctx)
		require.NoError(t, err)
		require.Len(t, first.Partners, 1)

		second, err := svc.Run(ctx)
		require.NoError(t, err)
		assert.Empty(t, second.Partners)
		assert.True(t, second.Total.IsZero())
	})
}
