package domain

import "time"

// NudgeSource records where a nudge came from, so automated generators can
// tell their own output apart from partner-written reminders.
type NudgeSource string

const (
	SourcePartner    NudgeSource = "partner"
	SourceStageEntry NudgeSource = "stage_entry"
	SourceStaleSweep NudgeSource = "stale_sweep"
)

// Nudge is a system- or user-generated reminder surfaced to a partner.
// DealID is a weak reference: the nudge must tolerate the deal being absent.
// Dismissing a nudge deletes it; there is no archive.
type Nudge struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	PartnerID   uint          `gorm:"index;not null" json:"partner_id"`
	Message     string        `gorm:"size:512;not null" json:"message"`
	Priority    NudgePriority `gorm:"size:16;not null" json:"priority"`
	ActionLabel string        `gorm:"size:128" json:"action_label,omitempty"`
	Source      NudgeSource   `gorm:"size:32;not null;default:partner" json:"source"`
	DealID      *uint         `gorm:"index" json:"deal_id,omitempty"`
	CreatedAt   time.Time     `gorm:"autoCreateTime" json:"created_at"`
}
