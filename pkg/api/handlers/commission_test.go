package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartbridge/partnerhub/pkg/database"
	"github.com/cartbridge/partnerhub/pkg/deals"
	"github.com/cartbridge/partnerhub/pkg/documents"
	"github.com/cartbridge/partnerhub/pkg/models"
	"github.com/cartbridge/partnerhub/pkg/pipeline"
)

func setupCommissionHandler(t *testing.T) *CommissionHandler {
	t.Helper()
	db := database.OpenTest(t)
	dealsSvc := deals.NewService(db, nil, pipeline.New(false), documents.NewService(db), nil)
	return NewCommissionHandler(dealsSvc)
}

func postJSON(e *echo.Echo, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestCalculate_Success(t *testing.T) {
	handler := setupCommissionHandler(t)
	e := echo.New()

	body := `{"kind":"referral","monthly_gmv":"500000","product":"checkout","vertical":"fashion"}`
	c, rec := postJSON(e, "/api/v1/commission/calculate", body)

	err := handler.Calculate(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp models.CommissionCalcResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "23000", resp.Amount.String())
	assert.NotEmpty(t, resp.Formula)
	assert.NotEmpty(t, resp.Breakdown)
}

func TestCalculate_ServiceKindIgnoresGMV(t *testing.T) {
	handler := setupCommissionHandler(t)
	e := echo.New()

	body := `{"kind":"service","monthly_gmv":"123","product":"all_products","vertical":"other"}`
	c, rec := postJSON(e, "/api/v1/commission/calculate", body)

	err := handler.Calculate(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp models.CommissionCalcResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "10000", resp.Amount.String())
}

func TestCalculate_NegativeGMV(t *testing.T) {
	handler := setupCommissionHandler(t)
	e := echo.New()

	body := `{"kind":"referral","monthly_gmv":"-1","product":"checkout","vertical":"fashion"}`
	c, rec := postJSON(e, "/api/v1/commission/calculate", body)

	err := handler.Calculate(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "invalid_input", resp.Error)
}

func TestCalculate_UnknownKind(t *testing.T) {
	handler := setupCommissionHandler(t)
	e := echo.New()

	body := `{"kind":"affiliate","monthly_gmv":"1000","product":"checkout","vertical":"fashion"}`
	c, rec := postJSON(e, "/api/v1/commission/calculate", body)

	err := handler.Calculate(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRateCard(t *testing.T) {
	handler := setupCommissionHandler(t)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rates", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.RateCard(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "referral")
	assert.Contains(t, rec.Body.String(), "checkout")
}
