package domain

import "time"

// KYC document types collected before a brand can go live.
const (
	DocTypePAN            = "pan"
	DocTypeGST            = "gst"
	DocTypeBankProof      = "bank_proof"
	DocTypeSignedContract = "signed_contract"
)

// KYC document statuses.
const (
	DocStatusPending  = "pending"
	DocStatusUploaded = "uploaded"
	DocStatusVerified = "verified"
	DocStatusRejected = "rejected"
)

// KYCDocument tracks the collection status of one compliance document for a
// deal. Only metadata is tracked here; file storage lives outside the portal.
type KYCDocument struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	DealID    uint      `gorm:"index;not null" json:"deal_id"`
	Type      string    `gorm:"size:32;not null" json:"type"`
	Status    string    `gorm:"size:16;not null;default:pending" json:"status"`
	Remark    string    `gorm:"size:512" json:"remark,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
