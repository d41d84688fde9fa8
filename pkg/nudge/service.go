package nudge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/cartbridge/partnerhub/pkg/domain"
	"github.com/cartbridge/partnerhub/pkg/logger"
	"github.com/cartbridge/partnerhub/pkg/metrics"
	"github.com/cartbridge/partnerhub/pkg/models"
)

var ErrNotFound = errors.New("nudge not found")

// Service stores and lists nudges. Automatic generation lives in the pure
// functions of this package; the service persists their output and runs the
// daily stale-deal sweep.
type Service struct {
	db      *gorm.DB
	logger  logger.Logger
	metrics *metrics.Metrics
}

func NewService(db *gorm.DB, log logger.Logger, m *metrics.Metrics) *Service {
	return &Service{db: db, logger: log, metrics: m}
}

// List returns the partner's open nudges, highest priority first and newest
// first within a priority.
func (s *Service) List(ctx context.Context, partnerID uint) ([]domain.Nudge, error) {
	var nudges []domain.Nudge
	err := s.db.WithContext(ctx).
		Where("partner_id = ?", partnerID).
		Order("CASE priority WHEN 'high' THEN 0 WHEN 'medium' THEN 1 ELSE 2 END, created_at DESC").
		Find(&nudges).Error
	if err != nil {
		return nil, fmt.Errorf("failed listing nudges: %w", err)
	}
	return nudges, nil
}

// Create stores a manually written reminder for the partner
func (s *Service) Create(ctx context.Context, partnerID uint, req models.NudgeCreateRequest) (*domain.Nudge, error) {
	n := &domain.Nudge{
		PartnerID:   partnerID,
		Message:     req.Message,
		Priority:    domain.NudgePriority(req.Priority),
		ActionLabel: req.ActionLabel,
		Source:      domain.SourcePartner,
		DealID:      req.DealID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return nil, fmt.Errorf("failed creating nudge: %w", err)
	}
	return n, nil
}

// Dismiss deletes a nudge owned by the partner
func (s *Service) Dismiss(ctx context.Context, partnerID, nudgeID uint) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND partner_id = ?", nudgeID, partnerID).
		Delete(&domain.Nudge{})
	if result.Error != nil {
		return fmt.Errorf("failed dismissing nudge: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SweepStaleDeals generates follow-up reminders for deals that have sat in a
// non-terminal stage for at least staleDays. A deal that already carries an
// open follow-up reminder is skipped, so the daily run never piles up
// duplicates. Returns the number of nudges created.
func (s *Service) SweepStaleDeals(ctx context.Context, staleDays int) (int, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -staleDays)

	var stale []domain.Deal
	err := s.db.WithContext(ctx).
		Where("stage NOT IN ? AND stage_updated_at < ?",
			[]domain.Stage{domain.StageGoLive, domain.StageLost}, cutoff).
		Find(&stale).Error
	if err != nil {
		return 0, fmt.Errorf("failed finding stale deals: %w", err)
	}

	created := 0
	for i := range stale {
		deal := &stale[i]

		// Dedupe on the source column, not the display label, so a
		// partner-written "Log a call" never suppresses the automatic one.
		var existing int64
		err := s.db.WithContext(ctx).
			Model(&domain.Nudge{}).
			Where("deal_id = ? AND source = ?", deal.ID, domain.SourceStaleSweep).
			Count(&existing).Error
		if err != nil {
			return created, fmt.Errorf("failed checking existing nudges: %w", err)
		}
		if existing > 0 {
			continue
		}

		n := StaleDealNudge(deal, time.Since(deal.StageUpdatedAt))
		if n == nil {
			continue
		}
		if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
			return created, fmt.Errorf("failed creating stale nudge: %w", err)
		}
		created++
		if s.metrics != nil {
			s.metrics.RecordNudgeGenerated()
		}
	}

	if s.logger != nil {
		s.logger.Info("stale deal sweep finished",
			"stale_deals", len(stale),
			"nudges_created", created)
	}

	return created, nil
}
