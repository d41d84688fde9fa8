package nudge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartbridge/partnerhub/pkg/domain"
)

func TestOnStageEntered(t *testing.T) {
	deal := &domain.Deal{ID: 11, PartnerID: 3, BrandName: "Acme Apparel"}

	t.Run("Success - Business agreement shared triggers KYC nudge", func(t *testing.T) {
		n := OnStageEntered(deal, domain.StageBusinessAgreementShared)

		require.NotNil(t, n)
		assert.Equal(t, "Collect KYC documents for Acme Apparel", n.Message)
		assert.Equal(t, domain.PriorityHigh, n.Priority)
		assert.Equal(t, "Collect KYC", n.ActionLabel)
		require.NotNil(t, n.DealID)
		assert.Equal(t, deal.ID, *n.DealID)
		assert.Equal(t, deal.PartnerID, n.PartnerID)
	})

	t.Run("Success - Every other stage emits nothing", func(t *testing.T) {
		others := []domain.Stage{
			domain.StageProspecting,
			domain.StagePitch,
			domain.StageObjection,
			domain.StageSigned,
			domain.StageGoLive,
			domain.StageLost,
		}
		for _, stage := range others {
			assert.Nil(t, OnStageEntered(deal, stage), "stage %s", stage)
		}
	})

	t.Run("Success - Missing brand name degrades to generic message", func(t *testing.T) {
		anon := &domain.Deal{ID: 12, PartnerID: 3}

		n := OnStageEntered(anon, domain.StageBusinessAgreementShared)

		require.NotNil(t, n)
		assert.Equal(t, "Collect KYC documents for this deal", n.Message)
	})
}

func TestStaleDealNudge(t *testing.T) {
	t.Run("Success - Idle deal gets a medium follow-up", func(t *testing.T) {
		deal := &domain.Deal{ID: 5, PartnerID: 2, BrandName: "Glowtique", Stage: domain.StagePitch}

		n := StaleDealNudge(deal, 9*24*time.Hour)

		require.NotNil(t, n)
		assert.Equal(t, domain.PriorityMedium, n.Priority)
		assert.Contains(t, n.Message, "Glowtique")
		assert.Contains(t, n.Message, "9 days")
	})

	t.Run("Success - Terminal stages are left alone", func(t *testing.T) {
		for _, stage := range []domain.Stage{domain.StageGoLive, domain.StageLost} {
			deal := &domain.Deal{ID: 6, PartnerID: 2, Stage: stage}
			assert.Nil(t, StaleDealNudge(deal, 30*24*time.Hour), "stage %s", stage)
		}
	})
}
