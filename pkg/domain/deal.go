package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Deal is a lead submitted by a partner and worked through the pipeline.
// Deals are exclusively owned by the partner who created them and are never
// hard-deleted, only filtered from views via the soft-delete marker.
type Deal struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	PartnerID         uint            `gorm:"index;not null" json:"partner_id"`
	BrandName         string          `gorm:"size:255;not null" json:"brand_name"`
	MonthlyGMV        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"monthly_gmv"`
	Product           Product         `gorm:"size:32;not null" json:"product"`
	Vertical          Vertical        `gorm:"size:32;not null" json:"vertical"`
	Stage             Stage           `gorm:"size:32;not null;index" json:"stage"`
	StageUpdatedAt    time.Time       `gorm:"not null" json:"stage_updated_at"`
	CommissionEarned  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"commission_earned"`
	CommissionPending decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"commission_pending"`
	Notes             string          `gorm:"type:text" json:"notes,omitempty"`
	Activity          []ActivityEntry `gorm:"foreignKey:DealID" json:"activity,omitempty"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt         gorm.DeletedAt  `gorm:"index" json:"-"`
}

// ActivityEntry is one line of a deal's ordered activity log. Entries are
// append-only; every stage transition produces exactly one.
type ActivityEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	DealID    uint      `gorm:"index;not null" json:"deal_id"`
	Action    string    `gorm:"size:512;not null" json:"action"`
	Actor     string    `gorm:"size:255;not null" json:"actor"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
