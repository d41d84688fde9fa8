package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/cartbridge/partnerhub/config"
	apierrors "github.com/cartbridge/partnerhub/pkg/api/errors"
	"github.com/cartbridge/partnerhub/pkg/auth"
	"github.com/cartbridge/partnerhub/pkg/email"
	"github.com/cartbridge/partnerhub/pkg/middleware"
	"github.com/cartbridge/partnerhub/pkg/models"
	"github.com/cartbridge/partnerhub/pkg/partners"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	partners     *partners.Service
	config       *config.Config
	blacklist    *auth.TokenBlacklist
	emailService *email.Service
	validator    *validator.Validate
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(partnersSvc *partners.Service, cfg *config.Config, blacklist *auth.TokenBlacklist, emailService *email.Service) *AuthHandler {
	return &AuthHandler{
		partners:     partnersSvc,
		config:       cfg,
		blacklist:    blacklist,
		emailService: emailService,
		validator:    validator.New(),
	}
}

// Register godoc
// @Summary Register a new partner
// @Description Create a partner account. The partner kind chosen here is permanent.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Registration data"
// @Success 200 {object} models.AuthResponse "Partner registered successfully"
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Failure 409 {object} models.ErrorResponse "Email already registered"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}

	if err := h.validator.Struct(req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	partner, err := h.partners.Register(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, partners.ErrEmailTaken):
			return apierrors.ConflictError(c, "A partner with this email already exists")
		case errors.Is(err, partners.ErrInvalidPhone):
			return apierrors.InvalidInputError(c, "Phone number could not be parsed")
		default:
			return apierrors.InternalError(c, err)
		}
	}

	if h.emailService != nil {
		// Best effort; registration succeeds even if the email bounces
		go h.emailService.SendWelcomeEmail(partner.Email, partner.Name, string(partner.Kind))
	}

	token, err := auth.GenerateJWT(partner, h.config.JWTSecret, h.config.JWTExpirationHours)
	if err != nil {
		return apierrors.InternalError(c, err)
	}

	return c.JSON(http.StatusOK, models.AuthResponse{
		Token:   token,
		Partner: partners.Info(partner),
	})
}

// Login godoc
// @Summary Log in a partner
// @Description Authenticate with email and password, returns a JWT
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Credentials"
// @Success 200 {object} models.AuthResponse "Authenticated"
// @Failure 401 {object} models.ErrorResponse "Invalid credentials"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}

	if err := h.validator.Struct(req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	partner, err := h.partners.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, partners.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "invalid_credentials",
				Message: "Invalid email or password",
			})
		}
		return apierrors.InternalError(c, err)
	}

	token, err := auth.GenerateJWT(partner, h.config.JWTSecret, h.config.JWTExpirationHours)
	if err != nil {
		return apierrors.InternalError(c, err)
	}

	return c.JSON(http.StatusOK, models.AuthResponse{
		Token:   token,
		Partner: partners.Info(partner),
	})
}

// Logout godoc
// @Summary Log out
// @Description Revoke the current JWT by blacklisting it until expiry
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.SuccessResponse "Logged out"
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	token, _ := c.Get(middleware.ContextToken).(string)
	if token == "" {
		return apierrors.UnauthorizedError(c)
	}

	claims, err := auth.ValidateJWT(token, h.config.JWTSecret)
	if err != nil {
		return apierrors.UnauthorizedError(c)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if h.blacklist != nil {
		if err := h.blacklist.Revoke(ctx, token, claims.ExpiresAt.Time); err != nil {
			return apierrors.InternalError(c, err)
		}
	}

	return c.JSON(http.StatusOK, models.SuccessResponse{Message: "Logged out successfully"})
}

// Me godoc
// @Summary Current partner profile
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.PartnerInfo "Profile"
// @Router /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	partnerID := middleware.PartnerID(c)
	if partnerID == 0 {
		return apierrors.UnauthorizedError(c)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	partner, err := h.partners.GetByID(ctx, partnerID)
	if err != nil {
		if errors.Is(err, partners.ErrNotFound) {
			return apierrors.NotFoundError(c, "partner")
		}
		return apierrors.InternalError(c, err)
	}

	return c.JSON(http.StatusOK, partners.Info(partner))
}
