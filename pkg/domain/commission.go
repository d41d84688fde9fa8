package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Commission record statuses. Pending records become earned when the deal
// goes live, void when it is lost, and paid after a payout run.
const (
	CommissionStatusPending = "pending"
	CommissionStatusEarned  = "earned"
	CommissionStatusPaid    = "paid"
	CommissionStatusVoid    = "void"
)

// CommissionRecord is the audit trail of one commission computation for a
// deal. The formula string preserves exactly how the amount was derived so
// the portal can show it to the partner later.
type CommissionRecord struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	DealID    uint            `gorm:"index;not null" json:"deal_id"`
	PartnerID uint            `gorm:"index;not null" json:"partner_id"`
	Amount    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	Formula   string          `gorm:"size:512" json:"formula"`
	Status    string          `gorm:"size:16;not null;default:pending" json:"status"`
	PaidAt    *time.Time      `json:"paid_at,omitempty"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}
