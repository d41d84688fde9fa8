package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cartbridge/partnerhub/pkg/cache"
	"github.com/cartbridge/partnerhub/pkg/domain"
)

const dashboardCacheKey = "analytics:dashboard"
const dashboardCacheTTL = 10 * time.Minute

// FunnelStage is one step of the pipeline funnel with conversion into the
// next stage. Conversion and dropoff are fractions in [0,1]; the last stage
// has no next stage and reports zero for both.
type FunnelStage struct {
	Stage      string  `json:"stage"`
	Count      int64   `json:"count"`
	Conversion float64 `json:"conversion"`
	Dropoff    float64 `json:"dropoff"`
}

// FunnelResponse is the pipeline funnel plus the lost bucket
type FunnelResponse struct {
	Stages []FunnelStage `json:"stages"`
	Lost   int64         `json:"lost"`
	Total  int64         `json:"total"`
}

// DashboardResponse aggregates the portal-wide numbers for the admin view
type DashboardResponse struct {
	PartnersByKind    map[string]int64 `json:"partners_by_kind"`
	TotalDeals        int64            `json:"total_deals"`
	ActiveDeals       int64            `json:"active_deals"`
	TotalGMV          decimal.Decimal  `json:"total_gmv"`
	CommissionEarned  decimal.Decimal  `json:"commission_earned"`
	CommissionPending decimal.Decimal  `json:"commission_pending"`
	CommissionPaid    decimal.Decimal  `json:"commission_paid"`
	GeneratedAt       time.Time        `json:"generated_at"`
}

// Service computes funnel and dashboard aggregates over the deal book
type Service struct {
	db    *gorm.DB
	cache *cache.Client
}

func NewService(db *gorm.DB, cacheClient *cache.Client) *Service {
	return &Service{db: db, cache: cacheClient}
}

// Funnel returns stage occupancy and adjacent-stage conversion. When
// partnerID is non-zero the funnel is scoped to that partner's deals.
//
// Conversion at stage i is deals-at-or-past-stage(i+1) divided by
// deals-at-or-past-stage(i): a deal in Signed has necessarily passed
// through Pitch, so it counts toward Pitch conversion even though it no
// longer sits there.
func (s *Service) Funnel(ctx context.Context, partnerID uint) (*FunnelResponse, error) {
	query := s.db.WithContext(ctx).Model(&domain.Deal{})
	if partnerID != 0 {
		query = query.Where("partner_id = ?", partnerID)
	}

	type row struct {
		Stage string
		Count int64
	}
	var rows []row
	err := query.Select("stage, COUNT(*) as count").Group("stage").Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed counting funnel stages: %w", err)
	}

	byStage := make(map[domain.Stage]int64, len(rows))
	var total int64
	for _, r := range rows {
		byStage[domain.Stage(r.Stage)] = r.Count
		total += r.Count
	}

	// reached[i] = deals currently at stage i or any later forward stage
	reached := make([]int64, len(domain.StageOrder))
	for i := len(domain.StageOrder) - 1; i >= 0; i-- {
		reached[i] = byStage[domain.StageOrder[i]]
		if i < len(domain.StageOrder)-1 {
			reached[i] += reached[i+1]
		}
	}

	stages := make([]FunnelStage, len(domain.StageOrder))
	for i, stage := range domain.StageOrder {
		fs := FunnelStage{Stage: string(stage), Count: byStage[stage]}
		if i < len(domain.StageOrder)-1 && reached[i] > 0 {
			fs.Conversion = float64(reached[i+1]) / float64(reached[i])
			fs.Dropoff = 1 - fs.Conversion
		}
		stages[i] = fs
	}

	return &FunnelResponse{
		Stages: stages,
		Lost:   byStage[domain.StageLost],
		Total:  total,
	}, nil
}

// Dashboard returns the cached portal-wide aggregates, recomputing on miss
func (s *Service) Dashboard(ctx context.Context) (*DashboardResponse, error) {
	if s.cache != nil {
		var cached DashboardResponse
		if found, err := s.cache.GetJSON(ctx, dashboardCacheKey, &cached); err == nil && found {
			return &cached, nil
		}
	}

	resp, err := s.computeDashboard(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, dashboardCacheKey, resp, dashboardCacheTTL)
	}

	return resp, nil
}

// WarmDashboardCache recomputes the dashboard and refreshes the cache. Run
// by the scheduler so the first admin request of the day is served warm.
func (s *Service) WarmDashboardCache(ctx context.Context) error {
	resp, err := s.computeDashboard(ctx)
	if err != nil {
		return err
	}
	if s.cache != nil {
		return s.cache.SetJSON(ctx, dashboardCacheKey, resp, dashboardCacheTTL)
	}
	return nil
}

func (s *Service) computeDashboard(ctx context.Context) (*DashboardResponse, error) {
	type kindRow struct {
		Kind  string
		Count int64
	}
	var kinds []kindRow
	err := s.db.WithContext(ctx).
		Model(&domain.Partner{}).
		Select("kind, COUNT(*) as count").
		Group("kind").
		Scan(&kinds).Error
	if err != nil {
		return nil, fmt.Errorf("failed counting partners: %w", err)
	}

	partnersByKind := make(map[string]int64, len(kinds))
	for _, r := range kinds {
		partnersByKind[r.Kind] = r.Count
	}

	type dealAgg struct {
		Total   int64
		Active  int64
		GMV     decimal.Decimal
		Earned  decimal.Decimal
		Pending decimal.Decimal
	}
	var agg dealAgg
	err = s.db.WithContext(ctx).
		Model(&domain.Deal{}).
		Select(`COUNT(*) as total,
			COALESCE(SUM(CASE WHEN stage NOT IN ('go_live', 'lost') THEN 1 ELSE 0 END), 0) as active,
			COALESCE(SUM(monthly_gmv), 0) as gmv,
			COALESCE(SUM(commission_earned), 0) as earned,
			COALESCE(SUM(commission_pending), 0) as pending`).
		Scan(&agg).Error
	if err != nil {
		return nil, fmt.Errorf("failed aggregating deals: %w", err)
	}

	var paid decimal.Decimal
	err = s.db.WithContext(ctx).
		Model(&domain.CommissionRecord{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("status = ?", domain.CommissionStatusPaid).
		Scan(&paid).Error
	if err != nil {
		return nil, fmt.Errorf("failed aggregating paid commissions: %w", err)
	}

	return &DashboardResponse{
		PartnersByKind:    partnersByKind,
		TotalDeals:        agg.Total,
		ActiveDeals:       agg.Active,
		TotalGMV:          agg.GMV,
		CommissionEarned:  agg.Earned,
		CommissionPending: agg.Pending,
		CommissionPaid:    paid,
		GeneratedAt:       time.Now().UTC(),
	}, nil
}
