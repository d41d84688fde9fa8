package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	apierrors "github.com/cartbridge/partnerhub/pkg/api/errors"
	"github.com/cartbridge/partnerhub/pkg/deals"
	"github.com/cartbridge/partnerhub/pkg/domain"
	"github.com/cartbridge/partnerhub/pkg/email"
	"github.com/cartbridge/partnerhub/pkg/middleware"
	"github.com/cartbridge/partnerhub/pkg/models"
	"github.com/cartbridge/partnerhub/pkg/partners"
	"github.com/cartbridge/partnerhub/pkg/pipeline"
)

// DealHandler handles deal and pipeline endpoints
type DealHandler struct {
	deals        *deals.Service
	partners     *partners.Service
	emailService *email.Service
	validator    *validator.Validate
}

// NewDealHandler creates a new deal handler
func NewDealHandler(dealsSvc *deals.Service, partnersSvc *partners.Service, emailService *email.Service) *DealHandler {
	return &DealHandler{
		deals:        dealsSvc,
		partners:     partnersSvc,
		emailService: emailService,
		validator:    validator.New(),
	}
}

// Create godoc
// @Summary Submit a new lead
// @Description Record a brand lead. The deal starts in the prospecting stage.
// @Tags Deals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateDealRequest true "Lead details"
// @Success 201 {object} models.DealResponse "Deal created"
// @Failure 400 {object} models.ErrorResponse "Invalid input"
// @Router /deals [post]
func (h *DealHandler) Create(c echo.Context) error {
	var req models.CreateDealRequest
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

	partnerID := middleware.PartnerID(c)
	actor := middleware.PartnerEmail(c)

	deal, err := h.deals.Create(ctx, partnerID, actor, req)
	if err != nil {
		if errors.Is(err, deals.ErrInvalidGMV) {
			return apierrors.InvalidInputError(c, "Monthly GMV must be a non-negative amount")
		}
		if errors.Is(err, deals.ErrInvalidEnum) {
			return apierrors.InvalidInputError(c, "Unknown product or vertical")
		}
		return apierrors.DatabaseError(c, err)
	}

	return c.JSON(http.StatusCreated, deals.ToResponse(deal))
}

// List godoc
// @Summary List the partner's deals
// @Description Paginated deals with optional stage, product, vertical and search filters
// @Tags Deals
// @Produce json
// @Security BearerAuth
// @Param stage query string false "Filter by stage"
// @Param product query string false "Filter by product"
// @Param vertical query string false "Filter by vertical"
// @Param search query string false "Brand name search"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} models.DealListResponse "Deals"
// @Router /deals [get]
func (h *DealHandler) List(c echo.Context) error {
	var req models.DealSearchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid query parameters",
		})
	}

	if err := h.validator.Struct(req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	resp, err := h.deals.List(ctx, middleware.PartnerID(c), req)
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}

	return c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary Fetch one deal
// @Tags Deals
// @Produce json
// @Security BearerAuth
// @Param id path int true "Deal ID"
// @Success 200 {object} models.DealResponse "Deal"
// @Failure 404 {object} models.ErrorResponse "Not found"
// @Router /deals/{id} [get]
func (h *DealHandler) Get(c echo.Context) error {
	dealID, err := parseIDParam(c, "id")
	if err != nil {
		return apierrors.InvalidInputError(c, "Invalid deal ID")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	deal, err := h.deals.GetByID(ctx, middleware.PartnerID(c), dealID)
	if err != nil {
		if errors.Is(err, deals.ErrNotFound) {
			return apierrors.NotFoundError(c, "deal")
		}
		return apierrors.DatabaseError(c, err)
	}

	return c.JSON(http.StatusOK, deals.ToResponse(deal))
}

// Transition godoc
// @Summary Move a deal to a new stage
// @Description Runs the stage machine, commission bookkeeping and nudge generation
// @Tags Deals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Deal ID"
// @Param request body models.StageTransitionRequest true "Target stage"
// @Success 200 {object} models.StageTransitionResponse "Transition applied"
// @Failure 400 {object} models.ErrorResponse "Transition rejected"
// @Failure 404 {object} models.ErrorResponse "Not found"
// @Router /deals/{id}/stage [put]
func (h *DealHandler) Transition(c echo.Context) error {
	dealID, err := parseIDParam(c, "id")
	if err != nil {
		return apierrors.InvalidInputError(c, "Invalid deal ID")
	}

	var req models.StageTransitionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}

	if err := h.validator.Struct(req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	partnerID := middleware.PartnerID(c)
	actor := middleware.PartnerEmail(c)

	resp, err := h.deals.TransitionStage(ctx, partnerID, dealID, actor, req)
	if err != nil {
		switch {
		case errors.Is(err, deals.ErrNotFound):
			return apierrors.NotFoundError(c, "deal")
		case errors.Is(err, pipeline.ErrUnknownStage),
			errors.Is(err, pipeline.ErrTerminalStage),
			errors.Is(err, pipeline.ErrBackwardTransition):
			return apierrors.InvalidInputError(c, err.Error())
		default:
			return apierrors.DatabaseError(c, err)
		}
	}

	if resp.Deal.Stage == string(domain.StageGoLive) && h.emailService != nil {
		go h.sendGoLiveEmail(partnerID, resp)
	}

	return c.JSON(http.StatusOK, resp)
}

// Activity godoc
// @Summary Deal activity log
// @Description The ordered, append-only activity entries for a deal
// @Tags Deals
// @Produce json
// @Security BearerAuth
// @Param id path int true "Deal ID"
// @Success 200 {array} domain.ActivityEntry "Activity entries"
// @Failure 404 {object} models.ErrorResponse "Not found"
// @Router /deals/{id}/activity [get]
func (h *DealHandler) Activity(c echo.Context) error {
	dealID, err := parseIDParam(c, "id")
	if err != nil {
		return apierrors.InvalidInputError(c, "Invalid deal ID")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	entries, err := h.deals.ListActivity(ctx, middleware.PartnerID(c), dealID)
	if err != nil {
		if errors.Is(err, deals.ErrNotFound) {
			return apierrors.NotFoundError(c, "deal")
		}
		return apierrors.DatabaseError(c, err)
	}

	return c.JSON(http.StatusOK, entries)
}

// StageCounts godoc
// @Summary Deals per stage
// @Tags Deals
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]int64 "Counts by stage"
// @Router /deals/stage-counts [get]
func (h *DealHandler) StageCounts(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	counts, err := h.deals.StageCounts(ctx, middleware.PartnerID(c))
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}

	return c.JSON(http.StatusOK, counts)
}

func (h *DealHandler) sendGoLiveEmail(partnerID uint, resp *models.StageTransitionResponse) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	partner, err := h.partners.GetByID(ctx, partnerID)
	if err != nil {
		return
	}

	_ = h.emailService.SendGoLiveEmail(
		partner.Email,
		partner.Name,
		resp.Deal.BrandName,
		resp.Deal.CommissionEarned.StringFixed(2),
	)
}

func parseIDParam(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}
