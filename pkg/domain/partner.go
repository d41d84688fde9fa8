package domain

import "time"

// Partner roles. Admins reach the analytics console and payout operations.
const (
	RolePartner = "partner"
	RoleAdmin   = "admin"
)

// Partner is a registered portal account. Kind is fixed at registration;
// nothing in the service layer updates it.
type Partner struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	Name         string      `gorm:"size:255;not null" json:"name"`
	CompanyName  string      `gorm:"size:255" json:"company_name,omitempty"`
	Email        string      `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Phone        string      `gorm:"size:32" json:"phone,omitempty"`
	PasswordHash string      `gorm:"size:255;not null" json:"-"`
	Kind         PartnerKind `gorm:"size:16;not null" json:"kind"`
	Role         string      `gorm:"size:16;not null;default:partner" json:"role"`
	CreatedAt    time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}
