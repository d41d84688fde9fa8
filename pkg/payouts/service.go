package payouts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/transfer"
	"gorm.io/gorm"

	"github.com/cartbridge/partnerhub/pkg/domain"
	"github.com/cartbridge/partnerhub/pkg/logger"
)

var ErrDisabled = errors.New("payouts are disabled")

// EmailSender abstracts email sending for payout notifications
type EmailSender interface {
	SendPayoutEmail(toEmail, toName, amount string) error
}

// Config holds Stripe payout configuration
type Config struct {
	SecretKey string
	Enabled   bool
	Currency  string
}

// PartnerResult is the outcome of a payout run for one partner
type PartnerResult struct {
	PartnerID  uint            `json:"partner_id"`
	Email      string          `json:"email"`
	Amount     decimal.Decimal `json:"amount"`
	Records    int             `json:"records"`
	TransferID string          `json:"transfer_id,omitempty"`
}

// RunResult summarizes a payout run. RunID is the reference quoted to
// finance and in partner emails.
type RunResult struct {
	RunID    string          `json:"run_id"`
	Partners []PartnerResult `json:"partners"`
	Total    decimal.Decimal `json:"total"`
	RanAt    time.Time       `json:"ran_at"`
}

// Service pays out earned commissions via Stripe transfers. When payouts
// are disabled the run still marks records paid so staging environments can
// exercise the flow without a Stripe account.
type Service struct {
	db     *gorm.DB
	config *Config
	email  EmailSender
	logger logger.Logger
}

// NewService creates a new payout service
func NewService(db *gorm.DB, config *Config, log logger.Logger) *Service {
	if config.Enabled {
		stripe.Key = config.SecretKey
	}
	if config.Currency == "" {
		config.Currency = "inr"
	}

	return &Service{db: db, config: config, logger: log}
}

// SetEmailSender sets the email sender for payout notifications
func (s *Service) SetEmailSender(e EmailSender) {
	s.email = e
}

// Run pays every partner's earned, unpaid commission records. One Stripe
// transfer per partner covers all of their records.
func (s *Service) Run(ctx context.Context) (*RunResult, error) {
	var records []domain.CommissionRecord
	err := s.db.WithContext(ctx).
		Where("status = ?", domain.CommissionStatusEarned).
		Order("partner_id ASC, id ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed loading earned commissions: %w", err)
	}

	byPartner := make(map[uint][]domain.CommissionRecord)
	for _, r := range records {
		byPartner[r.PartnerID] = append(byPartner[r.PartnerID], r)
	}

	result := &RunResult{
		RunID: uuid.NewString(),
		Total: decimal.Zero,
		RanAt: time.Now().UTC(),
	}

	for partnerID, partnerRecords := range byPartner {
		var partner domain.Partner
		if err := s.db.WithContext(ctx).First(&partner, partnerID).Error; err != nil {
			s.logger.Error("payout skipped, partner missing", "partner_id", partnerID, "error", err)
			continue
		}

		amount := decimal.Zero
		ids := make([]uint, 0, len(partnerRecords))
		for _, r := range partnerRecords {
			amount = amount.Add(r.Amount)
			ids = append(ids, r.ID)
		}

		transferID, err := s.transfer(partner, amount)
		if err != nil {
			s.logger.Error("payout transfer failed", "partner_id", partnerID, "error", err)
			continue
		}

		now := time.Now().UTC()
		err = s.db.WithContext(ctx).
			Model(&domain.CommissionRecord{}).
			Where("id IN ?", ids).
			Updates(map[string]interface{}{
				"status":  domain.CommissionStatusPaid,
				"paid_at": now,
			}).Error
		if err != nil {
			return result, fmt.Errorf("failed marking commissions paid: %w", err)
		}

		if s.email != nil {
			if err := s.email.SendPayoutEmail(partner.Email, partner.Name, amount.StringFixed(2)); err != nil {
				s.logger.Warn("payout email failed", "partner_id", partnerID, "error", err)
			}
		}

		result.Partners = append(result.Partners, PartnerResult{
			PartnerID:  partnerID,
			Email:      partner.Email,
			Amount:     amount,
			Records:    len(ids),
			TransferID: transferID,
		})
		result.Total = result.Total.Add(amount)
	}

	s.logger.Info("payout run finished",
		"run_id", result.RunID,
		"partners", len(result.Partners),
		"total", result.Total.StringFixed(2))

	return result, nil
}

// transfer moves money to the partner's connected account. In disabled mode
// it returns an empty transfer ID and the run proceeds as a dry settlement.
func (s *Service) transfer(partner domain.Partner, amount decimal.Decimal) (string, error) {
	if !s.config.Enabled {
		s.logger.Info("payout dry run, stripe disabled",
			"partner", partner.Email,
			"amount", amount.StringFixed(2))
		return "", nil
	}

	// Stripe amounts are in the smallest currency unit
	params := &stripe.TransferParams{
		Amount:      stripe.Int64(amount.Mul(decimal.NewFromInt(100)).IntPart()),
		Currency:    stripe.String(s.config.Currency),
		Destination: stripe.String(fmt.Sprintf("partner_%d", partner.ID)),
		Description: stripe.String(fmt.Sprintf("Commission payout for %s", partner.Email)),
	}

	t, err := transfer.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe transfer failed: %w", err)
	}

	return t.ID, nil
}
