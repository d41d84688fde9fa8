package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	apierrors "github.com/cartbridge/partnerhub/pkg/api/errors"
	"github.com/cartbridge/partnerhub/pkg/commission"
	"github.com/cartbridge/partnerhub/pkg/deals"
	"github.com/cartbridge/partnerhub/pkg/domain"
	"github.com/cartbridge/partnerhub/pkg/middleware"
	"github.com/cartbridge/partnerhub/pkg/models"
	"github.com/cartbridge/partnerhub/pkg/rates"
)

// CommissionHandler handles the calculator and earnings endpoints
type CommissionHandler struct {
	deals     *deals.Service
	validator *validator.Validate
}

// NewCommissionHandler creates a new commission handler
func NewCommissionHandler(dealsSvc *deals.Service) *CommissionHandler {
	return &CommissionHandler{
		deals:     dealsSvc,
		validator: validator.New(),
	}
}

// Calculate godoc
// @Summary What-if commission calculator
// @Description Preview the commission for a hypothetical deal. Nothing is stored.
// @Tags Commission
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CommissionCalcRequest true "Scenario"
// @Success 200 {object} models.CommissionCalcResponse "Commission breakdown"
// @Failure 400 {object} models.ErrorResponse "Invalid input"
// @Router /commission/calculate [post]
func (h *CommissionHandler) Calculate(c echo.Context) error {
	var req models.CommissionCalcRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}

	if err := h.validator.Struct(req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	gmv, err := deals.ParseGMV(req.MonthlyGMV)
	if err != nil {
		return apierrors.InvalidInputError(c, "Monthly GMV must be a non-negative amount")
	}

	result := commission.Calculate(
		domain.PartnerKind(req.Kind),
		gmv,
		domain.Product(req.Product),
		domain.Vertical(req.Vertical),
	)

	return c.JSON(http.StatusOK, models.CommissionCalcResponse{
		Amount:    result.Amount,
		Breakdown: result.Breakdown,
		Formula:   result.Formula,
	})
}

// Summary godoc
// @Summary Partner earnings summary
// @Description Earned, pending and paid commission across all of the partner's deals
// @Tags Commission
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.CommissionSummaryResponse "Summary"
// @Router /commission/summary [get]
func (h *CommissionHandler) Summary(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	resp, err := h.deals.CommissionSummary(ctx, middleware.PartnerID(c))
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}

	return c.JSON(http.StatusOK, resp)
}

// RateCard godoc
// @Summary Published rate card
// @Description The base rates, product multipliers and vertical bonuses in force
// @Tags Commission
// @Produce json
// @Success 200 {object} rates.RateCard "Rate card"
// @Router /rates [get]
func (h *CommissionHandler) RateCard(c echo.Context) error {
	return c.JSON(http.StatusOK, rates.Card())
}
