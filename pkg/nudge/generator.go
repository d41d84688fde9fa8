package nudge

import (
	"fmt"
	"time"

	"github.com/cartbridge/partnerhub/pkg/domain"
)

// OnStageEntered derives a follow-up reminder from a stage-transition event.
// Only entering BusinessAgreementShared produces one: a High-priority KYC
// collection reminder linked to the deal. Every other stage returns nil.
// Generation never fails; a missing brand name degrades to a generic message.
func OnStageEntered(deal *domain.Deal, newStage domain.Stage) *domain.Nudge {
	if newStage != domain.StageBusinessAgreementShared {
		return nil
	}

	message := "Collect KYC documents for this deal"
	if deal.BrandName != "" {
		message = fmt.Sprintf("Collect KYC documents for %s", deal.BrandName)
	}

	dealID := deal.ID
	return &domain.Nudge{
		PartnerID:   deal.PartnerID,
		Message:     message,
		Priority:    domain.PriorityHigh,
		ActionLabel: "Collect KYC",
		Source:      domain.SourceStageEntry,
		DealID:      &dealID,
		CreatedAt:   time.Now().UTC(),
	}
}

// StaleDealNudge builds the reminder emitted by the daily sweep for a deal
// that has sat untouched in a non-terminal stage. Returns nil for terminal
// stages.
func StaleDealNudge(deal *domain.Deal, idleFor time.Duration) *domain.Nudge {
	if deal.Stage.Terminal() {
		return nil
	}

	days := int(idleFor.Hours() / 24)
	message := fmt.Sprintf("Follow up with %s: no movement in %d days", deal.BrandName, days)
	if deal.BrandName == "" {
		message = fmt.Sprintf("Follow up on this deal: no movement in %d days", days)
	}

	dealID := deal.ID
	return &domain.Nudge{
		PartnerID:   deal.PartnerID,
		Message:     message,
		Priority:    domain.PriorityMedium,
		ActionLabel: "Log a call",
		Source:      domain.SourceStaleSweep,
		DealID:      &dealID,
		CreatedAt:   time.Now().UTC(),
	}
}
