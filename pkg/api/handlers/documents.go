package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	apierrors "github.com/cartbridge/partnerhub/pkg/api/errors"
	"github.com/cartbridge/partnerhub/pkg/documents"
	"github.com/cartbridge/partnerhub/pkg/middleware"
	"github.com/cartbridge/partnerhub/pkg/models"
)

// DocumentHandler handles the KYC checklist endpoints
type DocumentHandler struct {
	documents *documents.Service
	validator *validator.Validate
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(documentsSvc *documents.Service) *DocumentHandler {
	return &DocumentHandler{
		documents: documentsSvc,
		validator: validator.New(),
	}
}

// List godoc
// @Summary KYC checklist for a deal
// @Description The checklist is seeded when the deal reaches the agreement stage
// @Tags Documents
// @Produce json
// @Security BearerAuth
// @Param id path int true "Deal ID"
// @Success 200 {array} domain.KYCDocument "Checklist"
// @Failure 404 {object} models.ErrorResponse "Not found"
// @Router /deals/{id}/documents [get]
func (h *DocumentHandler) List(c echo.Context) error {
	dealID, err := parseIDParam(c, "id")
	if err != nil {
		return apierrors.InvalidInputError(c, "Invalid deal ID")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	docs, err := h.documents.ListByDeal(ctx, middleware.PartnerID(c), dealID)
	if err != nil {
		if errors.Is(err, documents.ErrDealNotFound) {
			return apierrors.NotFoundError(c, "deal")
		}
		return apierrors.DatabaseError(c, err)
	}

	return c.JSON(http.StatusOK, docs)
}

// UpdateStatus godoc
// @Summary Update a KYC document's status
// @Tags Documents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Deal ID"
// @Param docId path int true "Document ID"
// @Param request body models.DocumentStatusRequest true "New status"
// @Success 200 {object} domain.KYCDocument "Updated"
// @Failure 404 {object} models.ErrorResponse "Not found"
// @Router /deals/{id}/documents/{docId} [put]
func (h *DocumentHandler) UpdateStatus(c echo.Context) error {
	dealID, err := parseIDParam(c, "id")
	if err != nil {
		return apierrors.InvalidInputError(c, "Invalid deal ID")
	}
	docID, err := parseIDParam(c, "docId")
	if err != nil {
		return apierrors.InvalidInputError(c, "Invalid document ID")
	}

	var req models.DocumentStatusRequest
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

	doc, err := h.documents.UpdateStatus(ctx, middleware.PartnerID(c), dealID, docID, req)
	if err != nil {
		switch {
		case errors.Is(err, documents.ErrDealNotFound):
			return apierrors.NotFoundError(c, "deal")
		case errors.Is(err, documents.ErrNotFound):
			return apierrors.NotFoundError(c, "document")
		default:
			return apierrors.DatabaseError(c, err)
		}
	}

	return c.JSON(http.StatusOK, doc)
}
