package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	apierrors "github.com/cartbridge/partnerhub/pkg/api/errors"
	"github.com/cartbridge/partnerhub/pkg/middleware"
	"github.com/cartbridge/partnerhub/pkg/models"
	"github.com/cartbridge/partnerhub/pkg/nudge"
)

// NudgeHandler handles reminder endpoints
type NudgeHandler struct {
	nudges    *nudge.Service
	validator *validator.Validate
}

// NewNudgeHandler creates a new nudge handler
func NewNudgeHandler(nudgesSvc *nudge.Service) *NudgeHandler {
	return &NudgeHandler{
		nudges:    nudgesSvc,
		validator: validator.New(),
	}
}

// List godoc
// @Summary List open nudges
// @Description The partner's reminders, highest priority first
// @Tags Nudges
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Nudge "Nudges"
// @Router /nudges [get]
func (h *NudgeHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	nudges, err := h.nudges.List(ctx, middleware.PartnerID(c))
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}

	return c.JSON(http.StatusOK, nudges)
}

// Create godoc
// @Summary Create a manual reminder
// @Tags Nudges
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.NudgeCreateRequest true "Reminder"
// @Success 201 {object} domain.Nudge "Created"
// @Router /nudges [post]
func (h *NudgeHandler) Create(c echo.Context) error {
	var req models.NudgeCreateRequest
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

	created, err := h.nudges.Create(ctx, middleware.PartnerID(c), req)
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}

	return c.JSON(http.StatusCreated, created)
}

// Dismiss godoc
// @Summary Dismiss a nudge
// @Description Deletes the reminder; there is no archive
// @Tags Nudges
// @Produce json
// @Security BearerAuth
// @Param id path int true "Nudge ID"
// @Success 200 {object} models.SuccessResponse "Dismissed"
// @Failure 404 {object} models.ErrorResponse "Not found"
// @Router /nudges/{id} [delete]
func (h *NudgeHandler) Dismiss(c echo.Context) error {
	nudgeID, err := parseIDParam(c, "id")
	if err != nil {
		return apierrors.InvalidInputError(c, "Invalid nudge ID")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.nudges.Dismiss(ctx, middleware.PartnerID(c), nudgeID); err != nil {
		if errors.Is(err, nudge.ErrNotFound) {
			return apierrors.NotFoundError(c, "nudge")
		}
		return apierrors.DatabaseError(c, err)
	}

	return c.JSON(http.StatusOK, models.SuccessResponse{Message: "Nudge dismissed"})
}
