package deals

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cartbridge/partnerhub/pkg/database"
	"github.com/cartbridge/partnerhub/pkg/documents"
	"github.com/cartbridge/partnerhub/pkg/domain"
	"github.com/cartbridge/partnerhub/pkg/models"
	"github.com/cartbridge/partnerhub/pkg/pipeline"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := database.OpenTest(t)
	docs := documents.NewService(db)
	svc := NewService(db, nil, pipeline.New(false), docs, nil)
	return svc, db
}

func createTestPartner(t *testing.T, db *gorm.DB, kind domain.PartnerKind) *domain.Partner {
	t.Helper()
	partner := &domain.Partner{
		Name:         "Asha Mehta",
		Email:        string(kind) + "@example.com",
		PasswordHash: "x",
		Kind:         kind,
		Role:         domain.RolePartner,
	}
	require.NoError(t, db.Create(partner).Error)
	return partner
}

func createTestDeal(t *testing.T, svc *Service, partnerID uint, gmv string) *domain.Deal {
	t.Helper()
	deal, err := svc.Create(context.Background(), partnerID, "test@example.com", models.CreateDealRequest{
		BrandName:  "Meadow Threads",
		MonthlyGMV: gmv,
		Product:    "checkout",
		Vertical:   "fashion",
	})
	require.NoError(t, err)
	return deal
}

func transition(t *testing.T, svc *Service, partnerID, dealID uint, stage domain.Stage) *models.StageTransitionResponse {
	t.Helper()
	resp, err := svc.TransitionStage(context.Background(), partnerID, dealID, "test@example.com", models.StageTransitionRequest{Stage: string(stage)})
	require.NoError(t, err)
	return resp
}

func TestCreateDeal(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	t.Run("Success - New lead starts in prospecting with an activity entry", func(t *testing.T) {
		svc2, db := newTestService(t)
		partner := createTestPartner(t, db, domain.KindReferral)

		deal := createTestDeal(t, svc2, partner.ID, "500000")

		assert.Equal(t, domain.StageProspecting, deal.Stage)
		assert.True(t, deal.CommissionEarned.IsZero())
		assert.True(t, deal.CommissionPending.IsZero())
		assert.False(t, deal.StageUpdatedAt.IsZero())

		entries, err := svc2.ListActivity(ctx, partner.ID, deal.ID)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Contains(t, entries[0].Action, "Lead submitted")
	})

	t.Run("Failure - Negative GMV is rejected at the boundary", func(t *testing.T) {
		_, err := svc.Create(ctx, 1, "x", models.CreateDealRequest{
			BrandName:  "Bad Brand",
			MonthlyGMV: "-100",
			Product:    "checkout",
			Vertical:   "fashion",
		})
		assert.ErrorIs(t, err, ErrInvalidGMV)
	})

	t.Run("Failure - Malformed GMV is rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, 1, "x", models.CreateDealRequest{
			BrandName:  "Bad Brand",
			MonthlyGMV: "lots",
			Product:    "checkout",
			Vertical:   "fashion",
		})
		assert.ErrorIs(t, err, ErrInvalidGMV)
	})

	t.Run("Failure - Unknown product reports an enum error, not a GMV error", func(t *testing.T) {
		_, err := svc.Create(ctx, 1, "x", models.CreateDealRequest{
			BrandName:  "Bad Brand",
			MonthlyGMV: "100",
			Product:    "crypto",
			Vertical:   "fashion",
		})
		assert.ErrorIs(t, err, ErrInvalidEnum)
		assert.NotErrorIs(t, err, ErrInvalidGMV)
	})

	t.Run("Failure - Unknown vertical is rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, 1, "x", models.CreateDealRequest{
			BrandName:  "Bad Brand",
			MonthlyGMV: "100",
			Product:    "checkout",
			Vertical:   "aerospace",
		})
		assert.ErrorIs(t, err, ErrInvalidEnum)
	})
}

func TestTransitionStage(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - Signing books pending commission", func(t *testing.T) {
		svc, db := newTestService(t)
		partner := createTestPartner(t, db, domain.KindReferral)
		deal := createTestDeal(t, svc, partner.ID, "500000")

		for _, stage := range []domain.Stage{domain.StagePitch, domain.StageObjection, domain.StageBusinessAgreementShared} {
			transition(t, svc, partner.ID, deal.ID, stage)
		}
		resp := transition(t, svc, partner.ID, deal.ID, domain.StageSigned)

		// 500,000 * (0.03 * 1.2 + 0.01) = 23,000
		assert.True(t, resp.Deal.CommissionPending.Equal(decimal.NewFromInt(23000)), "got %s", resp.Deal.CommissionPending)
		assert.True(t, resp.Deal.CommissionEarned.IsZero())

		var record domain.CommissionRecord
		require.NoError(t, db.Where("deal_id = ?", deal.ID).First(&record).Error)
		assert.Equal(t, domain.CommissionStatusPending, record.Status)
		assert.True(t, record.Amount.Equal(decimal.NewFromInt(23000)))
		assert.NotEmpty(t, record.Formula)
	})

	t.Run("Success - Go-live converts pending to earned", func(t *testing.T) {
		svc, db := newTestService(t)
		partner := createTestPartner(t, db, domain.KindReseller)
		deal := createTestDeal(t, svc, partner.ID, "200000")

		for _, stage := range []domain.Stage{domain.StagePitch, domain.StageObjection, domain.StageBusinessAgreementShared, domain.StageSigned} {
			transition(t, svc, partner.ID, deal.ID, stage)
		}
		resp := transition(t, svc, partner.ID, deal.ID, domain.StageGoLive)

		assert.True(t, resp.Deal.CommissionPending.IsZero())
		assert.False(t, resp.Deal.CommissionEarned.IsZero())

		var record domain.CommissionRecord
		require.NoError(t, db.Where("deal_id = ?", deal.ID).First(&record).Error)
		assert.Equal(t, domain.CommissionStatusEarned, record.Status)
	})

	t.Run("Success - Losing a deal voids pending commission", func(t *testing.T) {
		svc, db := newTestService(t)
		partner := createTestPartner(t, db, domain.KindReferral)
		deal := createTestDeal(t, svc, partner.ID, "500000")

		for _, stage := range []domain.Stage{domain.StagePitch, domain.StageObjection, domain.StageBusinessAgreementShared, domain.StageSigned} {
			transition(t, svc, partner.ID, deal.ID, stage)
		}
		resp := transition(t, svc, partner.ID, deal.ID, domain.StageLost)

		assert.True(t, resp.Deal.CommissionPending.IsZero())
		assert.True(t, resp.Deal.CommissionEarned.IsZero())

		var record domain.CommissionRecord
		require.NoError(t, db.Where("deal_id = ?", deal.ID).First(&record).Error)
		assert.Equal(t, domain.CommissionStatusVoid, record.Status)
	})

	t.Run("Success - Agreement stage emits KYC nudge and seeds checklist", func(t *testing.T) {
		svc, db := newTestService(t)
		partner := createTestPartner(t, db, domain.KindReferral)
		deal := createTestDeal(t, svc, partner.ID, "500000")

		transition(t, svc, partner.ID, deal.ID, domain.StagePitch)
		transition(t, svc, partner.ID, deal.ID, domain.StageObjection)
		resp := transition(t, svc, partner.ID, deal.ID, domain.StageBusinessAgreementShared)

		require.NotNil(t, resp.Nudge)
		assert.Equal(t, domain.PriorityHigh, resp.Nudge.Priority)
		assert.Equal(t, "Collect KYC", resp.Nudge.ActionLabel)
		assert.Contains(t, resp.Nudge.Message, "Meadow Threads")

		var docs []domain.KYCDocument
		require.NoError(t, db.Where("deal_id = ?", deal.ID).Find(&docs).Error)
		assert.Len(t, docs, len(documents.Checklist))
		for _, doc := range docs {
			assert.Equal(t, domain.DocStatusPending, doc.Status)
		}
	})

	t.Run("Success - Re-applying the current stage does not double-count commission", func(t *testing.T) {
		svc, db := newTestService(t)
		partner := createTestPartner(t, db, domain.KindReferral)
		deal := createTestDeal(t, svc, partner.ID, "500000")

		for _, stage := range []domain.Stage{domain.StagePitch, domain.StageObjection, domain.StageBusinessAgreementShared, domain.StageSigned} {
			transition(t, svc, partner.ID, deal.ID, stage)
		}
		first := transition(t, svc, partner.ID, deal.ID, domain.StageSigned)
		second := transition(t, svc, partner.ID, deal.ID, domain.StageSigned)

		assert.True(t, first.Deal.CommissionPending.Equal(second.Deal.CommissionPending))

		var count int64
		require.NoError(t, db.Model(&domain.CommissionRecord{}).Where("deal_id = ?", deal.ID).Count(&count).Error)
		assert.Equal(t, int64(1), count)

		// Each re-application still gets its own activity entry
		entries, err := svc.ListActivity(context.Background(), partner.ID, deal.ID)
		require.NoError(t, err)
		assert.Len(t, entries, 7)
	})

	t.Run("Failure - Transition on another partner's deal is not found", func(t *testing.T) {
		svc, db := newTestService(t)
		owner := createTestPartner(t, db, domain.KindReferral)
		other := createTestPartner(t, db, domain.KindReseller)
		deal := createTestDeal(t, svc, owner.ID, "100000")

		_, err := svc.TransitionStage(ctx, other.ID, deal.ID, "x", models.StageTransitionRequest{Stage: "pitch"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Failure - Terminal deal rejects further transitions", func(t *testing.T) {
		svc, db := newTestService(t)
		partner := createTestPartner(t, db, domain.KindReferral)
		deal := createTestDeal(t, svc, partner.ID, "100000")

		transition(t, svc, partner.ID, deal.ID, domain.StageLost)

		_, err := svc.TransitionStage(ctx, partner.ID, deal.ID, "x", models.StageTransitionRequest{Stage: "pitch"})
		assert.ErrorIs(t, err, pipeline.ErrTerminalStage)
	})
}

func TestListDeals(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - Filters by stage and searches by brand", func(t *testing.T) {
		svc, db := newTestService(t)
		partner := createTestPartner(t, db, domain.KindReferral)

		a := createTestDeal(t, svc, partner.ID, "100000")
		b, err := svc.Create(ctx, partner.ID, "x", models.CreateDealRequest{
			BrandName:  "Volt Electronics",
			MonthlyGMV: "300000",
			Product:    "engagement",
			Vertical:   "electronics",
		})
		require.NoError(t, err)
		transition(t, svc, partner.ID, b.ID, domain.StagePitch)

		resp, err := svc.List(ctx, partner.ID, models.DealSearchRequest{Stage: "pitch"})
		require.NoError(t, err)
		require.Len(t, resp.Data, 1)
		assert.Equal(t, b.ID, resp.Data[0].ID)

		resp, err = svc.List(ctx, partner.ID, models.DealSearchRequest{Search: "Meadow"})
		require.NoError(t, err)
		require.Len(t, resp.Data, 1)
		assert.Equal(t, a.ID, resp.Data[0].ID)
	})

	t.Run("Success - Pagination metadata is consistent", func(t *testing.T) {
		svc, db := newTestService(t)
		partner := createTestPartner(t, db, domain.KindReferral)
		for i := 0; i < 5; i++ {
			createTestDeal(t, svc, partner.ID, "100000")
		}

		resp, err := svc.List(ctx, partner.ID, models.DealSearchRequest{Page: 1, Limit: 2})
		require.NoError(t, err)
		assert.Len(t, resp.Data, 2)
		assert.Equal(t, int64(5), resp.Pagination.Total)
		assert.Equal(t, 3, resp.Pagination.TotalPages)
		assert.True(t, resp.Pagination.HasNext)
		assert.False(t, resp.Pagination.HasPrev)
	})

	t.Run("Success - Deals are scoped to their owner", func(t *testing.T) {
		svc, db := newTestService(t)
		owner := createTestPartner(t, db, domain.KindReferral)
		other := createTestPartner(t, db, domain.KindReseller)
		createTestDeal(t, svc, owner.ID, "100000")

		resp, err := svc.List(ctx, other.ID, models.DealSearchRequest{})
		require.NoError(t, err)
		assert.Empty(t, resp.Data)
	})
}

func TestCommissionSummary(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - Aggregates earned, pending and paid", func(t *testing.T) {
		svc, db := newTestService(t)
		partner := createTestPartner(t, db, domain.KindReferral)

		signed := createTestDeal(t, svc, partner.ID, "500000")
		for _, stage := range []domain.Stage{domain.StagePitch, domain.StageObjection, domain.StageBusinessAgreementShared, domain.StageSigned} {
			transition(t, svc, partner.ID, signed.ID, stage)
		}

		live := createTestDeal(t, svc, partner.ID, "500000")
		for _, stage := range []domain.Stage{domain.StagePitch, domain.StageObjection, domain.StageBusinessAgreementShared, domain.StageSigned, domain.StageGoLive} {
			transition(t, svc, partner.ID, live.ID, stage)
		}

		// Mark the live deal's record paid, as a payout run would
		now := time.Now().UTC()
		require.NoError(t, db.Model(&domain.CommissionRecord{}).
			Where("deal_id = ?", live.ID).
			Updates(map[string]interface{}{"status": domain.CommissionStatusPaid, "paid_at": now}).Error)

		summary, err := svc.CommissionSummary(ctx, partner.ID)
		require.NoError(t, err)
		assert.True(t, summary.Pending.Equal(decimal.NewFromInt(23000)), "pending %s", summary.Pending)
		assert.True(t, summary.Earned.Equal(decimal.NewFromInt(23000)), "earned %s", summary.Earned)
		assert.True(t, summary.Paid.Equal(decimal.NewFromInt(23000)), "paid %s", summary.Paid)
		assert.Equal(t, int64(2), summary.Deals)
	})
}

func TestStageCounts(t *testing.T) {
	t.Run("Success - Every stage appears with a count", func(t *testing.T) {
		svc, db := newTestService(t)
		partner := createTestPartner(t, db, domain.KindReferral)

		createTestDeal(t, svc, partner.ID, "100000")
		moved := createTestDeal(t, svc, partner.ID, "100000")
		transition(t, svc, partner.ID, moved.ID, domain.StagePitch)

		counts, err := svc.StageCounts(context.Background(), partner.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), counts["prospecting"])
		assert.Equal(t, int64(1), counts["pitch"])
		assert.Equal(t, int64(0), counts["lost"])
		assert.Len(t, counts, 7)
	})
}
