package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cartbridge/partnerhub/pkg/analytics"
	apierrors "github.com/cartbridge/partnerhub/pkg/api/errors"
	"github.com/cartbridge/partnerhub/pkg/export"
	"github.com/cartbridge/partnerhub/pkg/middleware"
	"github.com/cartbridge/partnerhub/pkg/models"
	"github.com/cartbridge/partnerhub/pkg/partners"
	"github.com/cartbridge/partnerhub/pkg/payouts"
)

// AdminHandler handles the back-office endpoints
type AdminHandler struct {
	analytics *analytics.Service
	export    *export.Service
	payouts   *payouts.Service
	partners  *partners.Service
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(analyticsSvc *analytics.Service, exportSvc *export.Service, payoutsSvc *payouts.Service, partnersSvc *partners.Service) *AdminHandler {
	return &AdminHandler{
		analytics: analyticsSvc,
		export:    exportSvc,
		payouts:   payoutsSvc,
		partners:  partnersSvc,
	}
}

// Dashboard godoc
// @Summary Portal-wide dashboard
// @Description Partner counts, deal totals, GMV and commission aggregates
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} analytics.DashboardResponse "Dashboard"
// @Router /admin/dashboard [get]
func (h *AdminHandler) Dashboard(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	resp, err := h.analytics.Dashboard(ctx)
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}

	return c.JSON(http.StatusOK, resp)
}

// Funnel godoc
// @Summary Pipeline funnel
// @Description Stage occupancy with adjacent-stage conversion and dropoff
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param partner_id query int false "Scope to one partner"
// @Success 200 {object} analytics.FunnelResponse "Funnel"
// @Router /admin/funnel [get]
func (h *AdminHandler) Funnel(c echo.Context) error {
	var partnerID uint
	if raw := c.QueryParam("partner_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return apierrors.InvalidInputError(c, "Invalid partner_id")
		}
		partnerID = uint(id)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	resp, err := h.analytics.Funnel(ctx, partnerID)
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}

	return c.JSON(http.StatusOK, resp)
}

// Partners godoc
// @Summary List all partners
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} map[string]interface{} "Partners"
// @Router /admin/partners [get]
func (h *AdminHandler) Partners(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page <= 0 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, total, err := h.partners.List(ctx, limit, (page-1)*limit)
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}

	infos := make([]*models.PartnerInfo, len(list))
	for i := range list {
		infos[i] = partners.Info(&list[i])
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":  infos,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// ExportDeals godoc
// @Summary Export the deal book as XLSX
// @Tags Admin
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Success 200 {file} binary "Spreadsheet"
// @Router /admin/export/deals [get]
func (h *AdminHandler) ExportDeals(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	data, filename, err := h.export.Deals(ctx)
	if err != nil {
		return apierrors.InternalError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// ExportCommissions godoc
// @Summary Export the commission ledger as XLSX
// @Tags Admin
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Success 200 {file} binary "Spreadsheet"
// @Router /admin/export/commissions [get]
func (h *AdminHandler) ExportCommissions(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	data, filename, err := h.export.Commissions(ctx)
	if err != nil {
		return apierrors.InternalError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// RunPayouts godoc
// @Summary Pay out earned commissions
// @Description One transfer per partner covering all earned, unpaid records
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} payouts.RunResult "Run summary"
// @Router /admin/payouts/run [post]
func (h *AdminHandler) RunPayouts(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 60*time.Second)
	defer cancel()

	result, err := h.payouts.Run(ctx)
	if err != nil {
		return apierrors.InternalError(c, err)
	}

	return c.JSON(http.StatusOK, result)
}

// PartnerFunnel godoc
// @Summary The requesting partner's own funnel
// @Tags Analytics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} analytics.FunnelResponse "Funnel"
// @Router /analytics/funnel [get]
func (h *AdminHandler) PartnerFunnel(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	resp, err := h.analytics.Funnel(ctx, middleware.PartnerID(c))
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}

	return c.JSON(http.StatusOK, resp)
}
