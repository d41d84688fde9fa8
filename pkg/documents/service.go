package documents

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/cartbridge/partnerhub/pkg/domain"
	"github.com/cartbridge/partnerhub/pkg/models"
)

var (
	ErrDealNotFound = errors.New("deal not found")
	ErrNotFound     = errors.New("document not found")
)

// Checklist is the set of documents collected for every deal that reaches
// the business agreement stage.
var Checklist = []string{
	domain.DocTypePAN,
	domain.DocTypeGST,
	domain.DocTypeBankProof,
	domain.DocTypeSignedContract,
}

// Service manages the KYC document checklist attached to deals
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// SeedChecklist creates the pending checklist for a deal. It runs inside the
// caller's transaction and is idempotent: an existing checklist is left as is.
func (s *Service) SeedChecklist(tx *gorm.DB, dealID uint) error {
	var existing int64
	err := tx.Model(&domain.KYCDocument{}).Where("deal_id = ?", dealID).Count(&existing).Error
	if err != nil {
		return fmt.Errorf("failed checking document checklist: %w", err)
	}
	if existing > 0 {
		return nil
	}

	docs := make([]domain.KYCDocument, len(Checklist))
	for i, docType := range Checklist {
		docs[i] = domain.KYCDocument{
			DealID: dealID,
			Type:   docType,
			Status: domain.DocStatusPending,
		}
	}
	if err := tx.Create(&docs).Error; err != nil {
		return fmt.Errorf("failed seeding document checklist: %w", err)
	}

	return nil
}

// ListByDeal returns the document checklist for a deal owned by the partner
func (s *Service) ListByDeal(ctx context.Context, partnerID, dealID uint) ([]domain.KYCDocument, error) {
	if err := s.checkOwnership(ctx, partnerID, dealID); err != nil {
		return nil, err
	}

	var docs []domain.KYCDocument
	err := s.db.WithContext(ctx).
		Where("deal_id = ?", dealID).
		Order("id ASC").
		Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("failed listing documents: %w", err)
	}

	return docs, nil
}

// UpdateStatus moves a document through its collection lifecycle
func (s *Service) UpdateStatus(ctx context.Context, partnerID, dealID, docID uint, req models.DocumentStatusRequest) (*domain.KYCDocument, error) {
	if err := s.checkOwnership(ctx, partnerID, dealID); err != nil {
		return nil, err
	}

	var doc domain.KYCDocument
	err := s.db.WithContext(ctx).
		Where("id = ? AND deal_id = ?", docID, dealID).
		First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed fetching document: %w", err)
	}

	doc.Status = req.Status
	doc.Remark = req.Remark
	if err := s.db.WithContext(ctx).Save(&doc).Error; err != nil {
		return nil, fmt.Errorf("failed updating document: %w", err)
	}

	return &doc, nil
}

// Complete reports whether every document in a deal's checklist is verified.
// A deal with no checklist is not complete.
func (s *Service) Complete(ctx context.Context, dealID uint) (bool, error) {
	var total, verified int64
	err := s.db.WithContext(ctx).
		Model(&domain.KYCDocument{}).
		Where("deal_id = ?", dealID).
		Count(&total).Error
	if err != nil {
		return false, fmt.Errorf("failed counting documents: %w", err)
	}
	if total == 0 {
		return false, nil
	}

	err = s.db.WithContext(ctx).
		Model(&domain.KYCDocument{}).
		Where("deal_id = ? AND status = ?", dealID, domain.DocStatusVerified).
		Count(&verified).Error
	if err != nil {
		return false, fmt.Errorf("failed counting verified documents: %w", err)
	}

	return verified == total, nil
}

func (s *Service) checkOwnership(ctx context.Context, partnerID, dealID uint) error {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&domain.Deal{}).
		Where("id = ? AND partner_id = ?", dealID, partnerID).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed checking deal ownership: %w", err)
	}
	if count == 0 {
		return ErrDealNotFound
	}
	return nil
}
