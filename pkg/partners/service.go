package partners

import (
	"context"
	"errors"
	"fmt"

	"github.com/nyaruka/phonenumbers"
	"gorm.io/gorm"

	"github.com/cartbridge/partnerhub/pkg/auth"
	"github.com/cartbridge/partnerhub/pkg/domain"
	"github.com/cartbridge/partnerhub/pkg/models"
)

// Service errors surfaced to the handler layer
var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidPhone       = errors.New("invalid phone number")
	ErrNotFound           = errors.New("partner not found")
)

// defaultPhoneRegion is assumed for numbers submitted without a country code.
const defaultPhoneRegion = "IN"

// Service handles partner account operations
type Service struct {
	db *gorm.DB
}

// NewService creates a new partner service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Register creates a new partner account. Kind is fixed here for the life of
// the account; there is no update path for it.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*domain.Partner, error) {
	kind := domain.PartnerKind(req.Kind)
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown partner kind %q", req.Kind)
	}

	phone, err := normalizePhone(req.Phone)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&domain.Partner{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed checking email: %w", err)
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed hashing password: %w", err)
	}

	partner := &domain.Partner{
		Name:         req.Name,
		CompanyName:  req.CompanyName,
		Email:        req.Email,
		Phone:        phone,
		PasswordHash: hash,
		Kind:         kind,
		Role:         domain.RolePartner,
	}

	if err := s.db.WithContext(ctx).Create(partner).Error; err != nil {
		return nil, fmt.Errorf("failed creating partner: %w", err)
	}

	return partner, nil
}

// Authenticate verifies credentials and returns the partner
func (s *Service) Authenticate(ctx context.Context, email, password string) (*domain.Partner, error) {
	var partner domain.Partner
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&partner).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed fetching partner: %w", err)
	}

	if !auth.CheckPassword(password, partner.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return &partner, nil
}

// GetByID fetches a partner by id
func (s *Service) GetByID(ctx context.Context, id uint) (*domain.Partner, error) {
	var partner domain.Partner
	err := s.db.WithContext(ctx).First(&partner, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed fetching partner: %w", err)
	}
	return &partner, nil
}

// List returns all partners ordered by signup date, newest first. Admin only.
func (s *Service) List(ctx context.Context, limit, offset int) ([]domain.Partner, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&domain.Partner{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed counting partners: %w", err)
	}

	var partners []domain.Partner
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&partners).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed listing partners: %w", err)
	}

	return partners, total, nil
}

// Info converts a partner to its API representation
func Info(p *domain.Partner) *models.PartnerInfo {
	return &models.PartnerInfo{
		ID:          p.ID,
		Name:        p.Name,
		CompanyName: p.CompanyName,
		Email:       p.Email,
		Phone:       p.Phone,
		Kind:        string(p.Kind),
		Role:        p.Role,
	}
}

// normalizePhone validates and formats a phone number in E.164. An empty
// phone is allowed; a malformed one is rejected at this boundary.
func normalizePhone(raw string) (string, error) {
	if raw == "" {
		return "", nil
	}

	parsed, err := phonenumbers.Parse(raw, defaultPhoneRegion)
	if err != nil {
		return "", ErrInvalidPhone
	}
	if !phonenumbers.IsValidNumber(parsed) {
		return "", ErrInvalidPhone
	}

	return phonenumbers.Format(parsed, phonenumbers.E164), nil
}
