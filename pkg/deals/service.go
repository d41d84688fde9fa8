package deals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cartbridge/partnerhub/pkg/cache"
	"github.com/cartbridge/partnerhub/pkg/commission"
	"github.com/cartbridge/partnerhub/pkg/documents"
	"github.com/cartbridge/partnerhub/pkg/domain"
	"github.com/cartbridge/partnerhub/pkg/metrics"
	"github.com/cartbridge/partnerhub/pkg/models"
	"github.com/cartbridge/partnerhub/pkg/nudge"
	"github.com/cartbridge/partnerhub/pkg/pipeline"
)

// Service errors surfaced to the handler layer
var (
	ErrNotFound    = errors.New("deal not found")
	ErrInvalidGMV  = errors.New("monthly GMV must be a non-negative amount")
	ErrInvalidEnum = errors.New("unknown product or vertical")
)

const listCacheTTL = 2 * time.Minute

// Service owns deal CRUD and orchestrates the rules engine: every stage
// transition runs through the stage machine, the commission bookkeeping, and
// the nudge generator in that order.
type Service struct {
	db      *gorm.DB
	cache   *cache.Client
	machine *pipeline.Machine
	docs    *documents.Service
	metrics *metrics.Metrics
}

// NewService creates a new deal service. cache and m may be nil in tests.
func NewService(db *gorm.DB, cacheClient *cache.Client, machine *pipeline.Machine, docs *documents.Service, m *metrics.Metrics) *Service {
	return &Service{
		db:      db,
		cache:   cacheClient,
		machine: machine,
		docs:    docs,
		metrics: m,
	}
}

// ParseGMV validates a submitted GMV amount. Negative and malformed values
// are rejected here, at the boundary, so the calculator never sees them.
func ParseGMV(raw string) (decimal.Decimal, error) {
	gmv, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, ErrInvalidGMV
	}
	if gmv.IsNegative() {
		return decimal.Zero, ErrInvalidGMV
	}
	return gmv, nil
}

// Create records a new lead for a partner. Every deal starts in Prospecting
// with an initial activity entry.
func (s *Service) Create(ctx context.Context, partnerID uint, actor string, req models.CreateDealRequest) (*domain.Deal, error) {
	gmv, err := ParseGMV(req.MonthlyGMV)
	if err != nil {
		return nil, err
	}

	product := domain.Product(req.Product)
	vertical := domain.Vertical(req.Vertical)
	if !product.Valid() || !vertical.Valid() {
		return nil, ErrInvalidEnum
	}

	now := time.Now().UTC()
	deal := &domain.Deal{
		PartnerID:         partnerID,
		BrandName:         req.BrandName,
		MonthlyGMV:        gmv,
		Product:           product,
		Vertical:          vertical,
		Stage:             pipeline.InitialStage(),
		StageUpdatedAt:    now,
		CommissionEarned:  decimal.Zero,
		CommissionPending: decimal.Zero,
		Notes:             req.Notes,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(deal).Error; err != nil {
			return fmt.Errorf("failed creating deal: %w", err)
		}

		entry := &domain.ActivityEntry{
			DealID:    deal.ID,
			Action:    fmt.Sprintf("Lead submitted for %s", deal.BrandName),
			Actor:     actor,
			CreatedAt: now,
		}
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("failed creating activity entry: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateListCache(ctx, partnerID)

	return deal, nil
}

// GetByID fetches a deal owned by the partner
func (s *Service) GetByID(ctx context.Context, partnerID, dealID uint) (*domain.Deal, error) {
	var deal domain.Deal
	err := s.db.WithContext(ctx).
		Where("id = ? AND partner_id = ?", dealID, partnerID).
		First(&deal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed fetching deal: %w", err)
	}
	return &deal, nil
}

// List returns the partner's deals matching the filters, paginated and
// newest-first. Results are cached briefly per partner and filter set.
func (s *Service) List(ctx context.Context, partnerID uint, req models.DealSearchRequest) (*models.DealListResponse, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 20
	}

	cacheKey := fmt.Sprintf("deals:partner:%d:stage=%s:product=%s:vertical=%s:q=%s:page=%d:limit=%d",
		partnerID, req.Stage, req.Product, req.Vertical, req.Search, req.Page, req.Limit)

	if s.cache != nil {
		var cached models.DealListResponse
		if found, err := s.cache.GetJSON(ctx, cacheKey, &cached); err == nil && found {
			return &cached, nil
		}
	}

	query := s.db.WithContext(ctx).Model(&domain.Deal{}).Where("partner_id = ?", partnerID)
	if req.Stage != "" {
		query = query.Where("stage = ?", req.Stage)
	}
	if req.Product != "" {
		query = query.Where("product = ?", req.Product)
	}
	if req.Vertical != "" {
		query = query.Where("vertical = ?", req.Vertical)
	}
	if req.Search != "" {
		query = query.Where("brand_name LIKE ?", "%"+req.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed counting deals: %w", err)
	}

	var found []domain.Deal
	err := query.
		Order("created_at DESC").
		Limit(req.Limit).
		Offset((req.Page - 1) * req.Limit).
		Find(&found).Error
	if err != nil {
		return nil, fmt.Errorf("failed listing deals: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	resp := &models.DealListResponse{
		Data: make([]models.DealResponse, len(found)),
		Pagination: models.PaginationInfo{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    req.Page < totalPages,
			HasPrev:    req.Page > 1,
		},
	}
	for i := range found {
		resp.Data[i] = ToResponse(&found[i])
	}

	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, cacheKey, resp, listCacheTTL)
	}

	return resp, nil
}

// TransitionStage moves a deal to a new stage. In one transaction it runs
// the stage machine, applies the commission bookkeeping, appends the
// activity entry, and stores any nudge the generator produced.
//
// Commission policy: entering Signed computes the deal's commission and adds
// it to pending; entering GoLive converts pending to earned; entering Lost
// voids pending. Re-applying the current stage appends an activity entry but
// does not touch commission, so the books never double-count.
func (s *Service) TransitionStage(ctx context.Context, partnerID, dealID uint, actor string, req models.StageTransitionRequest) (*models.StageTransitionResponse, error) {
	newStage := domain.Stage(req.Stage)

	var (
		deal     *domain.Deal
		entry    domain.ActivityEntry
		newNudge *domain.Nudge
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var d domain.Deal
		err := tx.Where("id = ? AND partner_id = ?", dealID, partnerID).First(&d).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed fetching deal: %w", err)
		}

		fromStage := d.Stage

		entry, err = s.machine.Transition(&d, newStage, actor)
		if err != nil {
			return err
		}
		if req.Note != "" {
			entry.Action = entry.Action + ": " + req.Note
		}

		if fromStage != newStage {
			if err := s.applyCommissionBookkeeping(tx, &d, newStage); err != nil {
				return err
			}
		}

		if err := tx.Save(&d).Error; err != nil {
			return fmt.Errorf("failed saving deal: %w", err)
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("failed creating activity entry: %w", err)
		}

		if fromStage != newStage {
			newNudge = nudge.OnStageEntered(&d, newStage)
			if newNudge != nil {
				if err := tx.Create(newNudge).Error; err != nil {
					return fmt.Errorf("failed creating nudge: %w", err)
				}
			}

			// Entering the agreement stage also seeds the KYC checklist
			if newStage == domain.StageBusinessAgreementShared && s.docs != nil {
				if err := s.docs.SeedChecklist(tx, d.ID); err != nil {
					return err
				}
			}
		}

		deal = &d
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordStageTransition(string(newStage))
		if newNudge != nil {
			s.metrics.RecordNudgeGenerated()
		}
	}

	s.invalidateListCache(ctx, partnerID)

	resp := &models.StageTransitionResponse{
		Deal:     ToResponse(deal),
		Activity: &entry,
		Nudge:    newNudge,
	}
	return resp, nil
}

// applyCommissionBookkeeping adjusts the deal's earned/pending amounts and
// the commission audit records for a stage entry.
func (s *Service) applyCommissionBookkeeping(tx *gorm.DB, deal *domain.Deal, newStage domain.Stage) error {
	switch newStage {
	case domain.StageSigned:
		kind, err := s.partnerKind(tx, deal.PartnerID)
		if err != nil {
			return err
		}

		result := commission.Calculate(kind, deal.MonthlyGMV, deal.Product, deal.Vertical)
		deal.CommissionPending = deal.CommissionPending.Add(result.Amount)

		record := &domain.CommissionRecord{
			DealID:    deal.ID,
			PartnerID: deal.PartnerID,
			Amount:    result.Amount,
			Formula:   result.Formula,
			Status:    domain.CommissionStatusPending,
		}
		if err := tx.Create(record).Error; err != nil {
			return fmt.Errorf("failed creating commission record: %w", err)
		}

	case domain.StageGoLive:
		deal.CommissionEarned = deal.CommissionEarned.Add(deal.CommissionPending)
		deal.CommissionPending = decimal.Zero

		err := tx.Model(&domain.CommissionRecord{}).
			Where("deal_id = ? AND status = ?", deal.ID, domain.CommissionStatusPending).
			Update("status", domain.CommissionStatusEarned).Error
		if err != nil {
			return fmt.Errorf("failed marking commissions earned: %w", err)
		}

	case domain.StageLost:
		deal.CommissionPending = decimal.Zero

		err := tx.Model(&domain.CommissionRecord{}).
			Where("deal_id = ? AND status = ?", deal.ID, domain.CommissionStatusPending).
			Update("status", domain.CommissionStatusVoid).Error
		if err != nil {
			return fmt.Errorf("failed voiding commissions: %w", err)
		}
	}

	return nil
}

func (s *Service) partnerKind(tx *gorm.DB, partnerID uint) (domain.PartnerKind, error) {
	var partner domain.Partner
	if err := tx.First(&partner, partnerID).Error; err != nil {
		return "", fmt.Errorf("failed fetching partner for commission: %w", err)
	}
	return partner.Kind, nil
}

// ListActivity returns a deal's activity log in append order
func (s *Service) ListActivity(ctx context.Context, partnerID, dealID uint) ([]domain.ActivityEntry, error) {
	if _, err := s.GetByID(ctx, partnerID, dealID); err != nil {
		return nil, err
	}

	var entries []domain.ActivityEntry
	err := s.db.WithContext(ctx).
		Where("deal_id = ?", dealID).
		Order("created_at ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed listing activity: %w", err)
	}

	return entries, nil
}

// StageCounts returns the number of the partner's deals in each stage
func (s *Service) StageCounts(ctx context.Context, partnerID uint) (map[string]int64, error) {
	type row struct {
		Stage string
		Count int64
	}

	var rows []row
	err := s.db.WithContext(ctx).
		Model(&domain.Deal{}).
		Select("stage, COUNT(*) as count").
		Where("partner_id = ?", partnerID).
		Group("stage").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed counting stages: %w", err)
	}

	counts := make(map[string]int64, len(domain.StageOrder)+1)
	for _, stage := range domain.StageOrder {
		counts[string(stage)] = 0
	}
	counts[string(domain.StageLost)] = 0
	for _, r := range rows {
		counts[r.Stage] = r.Count
	}

	return counts, nil
}

// CommissionSummary aggregates the partner's commission position across all
// of their deals.
func (s *Service) CommissionSummary(ctx context.Context, partnerID uint) (*models.CommissionSummaryResponse, error) {
	type sums struct {
		Earned  decimal.Decimal
		Pending decimal.Decimal
		Deals   int64
	}

	var agg sums
	err := s.db.WithContext(ctx).
		Model(&domain.Deal{}).
		Select("COALESCE(SUM(commission_earned), 0) as earned, COALESCE(SUM(commission_pending), 0) as pending, COUNT(*) as deals").
		Where("partner_id = ?", partnerID).
		Scan(&agg).Error
	if err != nil {
		return nil, fmt.Errorf("failed aggregating commissions: %w", err)
	}

	var paid decimal.Decimal
	err = s.db.WithContext(ctx).
		Model(&domain.CommissionRecord{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("partner_id = ? AND status = ?", partnerID, domain.CommissionStatusPaid).
		Scan(&paid).Error
	if err != nil {
		return nil, fmt.Errorf("failed aggregating paid commissions: %w", err)
	}

	return &models.CommissionSummaryResponse{
		Earned:  agg.Earned,
		Pending: agg.Pending,
		Paid:    paid,
		Deals:   agg.Deals,
	}, nil
}

// ToResponse converts a deal to its API representation
func ToResponse(d *domain.Deal) models.DealResponse {
	return models.DealResponse{
		ID:                d.ID,
		BrandName:         d.BrandName,
		MonthlyGMV:        d.MonthlyGMV,
		Product:           string(d.Product),
		Vertical:          string(d.Vertical),
		Stage:             string(d.Stage),
		StageUpdatedAt:    d.StageUpdatedAt,
		CommissionEarned:  d.CommissionEarned,
		CommissionPending: d.CommissionPending,
		Notes:             d.Notes,
		CreatedAt:         d.CreatedAt,
	}
}

func (s *Service) invalidateListCache(ctx context.Context, partnerID uint) {
	if s.cache == nil {
		return
	}
	_ = s.cache.DeletePattern(ctx, fmt.Sprintf("deals:partner:%d:*", partnerID))
}
