package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cartbridge/partnerhub/pkg/commission"
	"github.com/cartbridge/partnerhub/pkg/domain"
)

// CreateDealRequest represents a new lead submission. MonthlyGMV is a string
// so the boundary can reject malformed or negative amounts before any
// decimal arithmetic runs.
type CreateDealRequest struct {
	BrandName  string `json:"brand_name" validate:"required,min=2,max=255"`
	MonthlyGMV string `json:"monthly_gmv" validate:"required"`
	Product    string `json:"product" validate:"required,oneof=checkout returns_management engagement all_products"`
	Vertical   string `json:"vertical" validate:"required,oneof=fashion electronics beauty home food other"`
	Notes      string `json:"notes" validate:"omitempty,max=4000"`
}

// DealSearchRequest represents list filters for a partner's deals
type DealSearchRequest struct {
	Stage    string `query:"stage" validate:"omitempty,oneof=prospecting pitch objection business_agreement_shared signed go_live lost"`
	Product  string `query:"product" validate:"omitempty,oneof=checkout returns_management engagement all_products"`
	Vertical string `query:"vertical" validate:"omitempty,oneof=fashion electronics beauty home food other"`
	Search   string `query:"search"`
	Page     int    `query:"page" validate:"omitempty,min=1"`
	Limit    int    `query:"limit" validate:"omitempty,min=1,max=100"`
}

// StageTransitionRequest represents a request to move a deal to a new stage
type StageTransitionRequest struct {
	Stage string `json:"stage" validate:"required,oneof=prospecting pitch objection business_agreement_shared signed go_live lost"`
	Note  string `json:"note" validate:"omitempty,max=512"`
}

// DealResponse represents a single deal in API responses
type DealResponse struct {
	ID                uint            `json:"id"`
	BrandName         string          `json:"brand_name"`
	MonthlyGMV        decimal.Decimal `json:"monthly_gmv"`
	Product           string          `json:"product"`
	Vertical          string          `json:"vertical"`
	Stage             string          `json:"stage"`
	StageUpdatedAt    time.Time       `json:"stage_updated_at"`
	CommissionEarned  decimal.Decimal `json:"commission_earned"`
	CommissionPending decimal.Decimal `json:"commission_pending"`
	Notes             string          `json:"notes,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

// PaginationInfo contains pagination metadata
type PaginationInfo struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// DealListResponse represents a paginated list of deals
type DealListResponse struct {
	Data       []DealResponse `json:"data"`
	Pagination PaginationInfo `json:"pagination"`
}

// StageTransitionResponse carries the updated deal, the activity entry the
// transition produced, and the nudge it may have generated.
type StageTransitionResponse struct {
	Deal     DealResponse          `json:"deal"`
	Activity *domain.ActivityEntry `json:"activity_entry"`
	Nudge    *domain.Nudge         `json:"nudge,omitempty"`
}

// CommissionCalcRequest represents a what-if calculator request. It is not
// tied to a stored deal; partners use it to preview earnings.
type CommissionCalcRequest struct {
	Kind       string `json:"kind" validate:"required,oneof=referral reseller service"`
	MonthlyGMV string `json:"monthly_gmv" validate:"required"`
	Product    string `json:"product" validate:"required,oneof=checkout returns_management engagement all_products"`
	Vertical   string `json:"vertical" validate:"required,oneof=fashion electronics beauty home food other"`
}

// CommissionCalcResponse wraps a calculator result
type CommissionCalcResponse struct {
	Amount    decimal.Decimal     `json:"amount"`
	Breakdown []commission.Factor `json:"breakdown"`
	Formula   string              `json:"formula"`
}

// CommissionSummaryResponse aggregates a partner's commission position
type CommissionSummaryResponse struct {
	Earned  decimal.Decimal `json:"earned"`
	Pending decimal.Decimal `json:"pending"`
	Paid    decimal.Decimal `json:"paid"`
	Deals   int64           `json:"deals"`
}

// NudgeCreateRequest represents a manually created reminder
type NudgeCreateRequest struct {
	Message     string `json:"message" validate:"required,min=3,max=512"`
	Priority    string `json:"priority" validate:"required,oneof=high medium low"`
	ActionLabel string `json:"action_label" validate:"omitempty,max=128"`
	DealID      *uint  `json:"deal_id"`
}

// DocumentStatusRequest represents a KYC document status update
type DocumentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending uploaded verified rejected"`
	Remark string `json:"remark" validate:"omitempty,max=512"`
}
