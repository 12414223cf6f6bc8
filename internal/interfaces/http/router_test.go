package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/retail-analytics/internal/application/analytics"
	"github.com/tu-usuario/retail-analytics/internal/application/importer"
	"github.com/tu-usuario/retail-analytics/internal/domain/entity"
	"github.com/tu-usuario/retail-analytics/internal/infrastructure/memory"
	apphttp "github.com/tu-usuario/retail-analytics/internal/interfaces/http"
	"github.com/tu-usuario/retail-analytics/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// buildTestApp arma la API completa sobre el backend en memoria.
func buildTestApp(store *memory.Store) *fiber.App {
	log := logger.Nop()
	importUC := importer.NewImportUseCase(
		importer.NewExistenceValidator(store, log),
		importer.NewReconcileEngine(store, log),
		importer.NewDemandAggregator(store, log),
		importer.NewRecalcScheduler(store, log),
		importer.NewBatchTracker(store),
		importer.CostInputs{HoldingCost: 50, OrderingCost: 100, UnitCost: 25, LeadTimeDays: 7, ConfidenceLevel: 0.95},
		log,
	)
	analyticsUC := analytics.NewUseCase(store, store, store, log)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{ImportUC: importUC, AnalyticsUC: analyticsUC})
	return app
}

// uploadCSV lanza POST /api/imports con el CSV como multipart.
func uploadCSV(t *testing.T, app *fiber.App, csv string) *http.Response {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", "ventas.csv")
	require.NoError(t, err)
	_, err = io.Copy(part, strings.NewReader(csv))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/imports", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

const csvHeader = "product_id,branch_id,quantity,transaction_date,unit_price\n"

// ──────────────────────────────────────────────────────────────────────────────
// POST /api/imports
// ──────────────────────────────────────────────────────────────────────────────

func TestImportEndpoint_LoteConfirmado(t *testing.T) {
	store := memory.NewStore()
	store.SeedProduct(entity.ProductBranchKey{ProductID: 1001, BranchID: 1}, 50)
	app := buildTestApp(store)

	resp := uploadCSV(t, app, csvHeader+
		"1001,1,10,2024-03-10,12.50\n"+
		"1001,1,20,2024-03-11,12.50\n")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	decodeJSON(t, resp, &body)
	assert.Equal(t, float64(2), body["committed"])
	assert.NotEmpty(t, body["batch_id"])
	assert.Equal(t, int64(20), store.StockQuantity(entity.ProductBranchKey{ProductID: 1001, BranchID: 1}))
}

func TestImportEndpoint_StockInsuficienteDevuelve409(t *testing.T) {
	store := memory.NewStore()
	store.SeedProduct(entity.ProductBranchKey{ProductID: 1001, BranchID: 1}, 5)
	app := buildTestApp(store)

	resp := uploadCSV(t, app, csvHeader+"1001,1,8,2024-03-10,12.50\n")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var body map[string]interface{}
	decodeJSON(t, resp, &body)
	assert.Equal(t, "INSUFFICIENT_STOCK", body["code"])
	violations := body["violations"].([]interface{})
	require.Len(t, violations, 1)
	v := violations[0].(map[string]interface{})
	assert.Equal(t, float64(5), v["current_stock"])
	assert.Equal(t, float64(-3), v["projected"])

	// Atomicidad visible desde fuera: nada cambió
	assert.Equal(t, int64(5), store.StockQuantity(entity.ProductBranchKey{ProductID: 1001, BranchID: 1}))
}

// Una fecha ilegible en el archivo descarta la fila; el resto del lote se
// confirma con métricas limpias.
func TestImportEndpoint_FilaSinFechaDescartada(t *testing.T) {
	store := memory.NewStore()
	store.SeedProduct(entity.ProductBranchKey{ProductID: 1001, BranchID: 1}, 50)
	app := buildTestApp(store)

	resp := uploadCSV(t, app, csvHeader+
		"1001,1,10,2024-03-10,12.50\n"+
		"1001,1,20,not-a-date,12.50\n")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	decodeJSON(t, resp, &body)
	assert.Equal(t, float64(1), body["committed"])
	assert.Equal(t, float64(1), body["dropped_invalid_date"])
	assert.Equal(t, int64(40), store.StockQuantity(entity.ProductBranchKey{ProductID: 1001, BranchID: 1}))

	metrics := body["metrics"].(map[string]interface{})
	assert.Equal(t, float64(1), metrics["days_of_data"])
	assert.InDelta(t, 3650, metrics["annual_demand"].(float64), 0.001)
}

func TestImportEndpoint_SinArchivoDevuelve400(t *testing.T) {
	app := buildTestApp(memory.NewStore())

	req := httptest.NewRequest(http.MethodPost, "/api/imports", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestImportEndpoint_EncabezadoInvalidoDevuelve400(t *testing.T) {
	app := buildTestApp(memory.NewStore())

	resp := uploadCSV(t, app, "columna_rara\n1\n")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// GET /api/imports/:batch_id/deductions
// ──────────────────────────────────────────────────────────────────────────────

func TestBatchDeductionsEndpoint(t *testing.T) {
	store := memory.NewStore()
	store.SeedProduct(entity.ProductBranchKey{ProductID: 1001, BranchID: 1}, 50)
	app := buildTestApp(store)

	resp := uploadCSV(t, app, csvHeader+"1001,1,10,2024-03-10,12.50\n")
	var imported map[string]interface{}
	decodeJSON(t, resp, &imported)
	batchID := imported["batch_id"].(string)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/imports/%s/deductions", batchID), nil)
	lookup, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, lookup.StatusCode)

	var body map[string]interface{}
	decodeJSON(t, lookup, &body)
	assert.Equal(t, batchID, body["batch_id"])
	deds := body["deductions"].([]interface{})
	require.Len(t, deds, 1)
	d := deds[0].(map[string]interface{})
	assert.Equal(t, float64(10), d["quantity_deducted"])
	assert.Equal(t, float64(50), d["previous_quantity"])
	assert.Equal(t, float64(40), d["updated_quantity"])
}

func TestBatchDeductionsEndpoint_NoExisteDevuelve404(t *testing.T) {
	app := buildTestApp(memory.NewStore())

	req := httptest.NewRequest(http.MethodGet, "/api/imports/no-existe/deductions", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Analítica
// ──────────────────────────────────────────────────────────────────────────────

func postJSON(t *testing.T, app *fiber.App, path string, payload string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestEOQEndpoint_VectorReferencia(t *testing.T) {
	app := buildTestApp(memory.NewStore())

	resp := postJSON(t, app, "/api/analytics/eoq", `{
		"annual_demand": 1000,
		"holding_cost": 50,
		"ordering_cost": 100,
		"unit_cost": 25,
		"lead_time_days": 7,
		"confidence_level": 0.95
	}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	decodeJSON(t, resp, &body)
	assert.InDelta(t, 63.25, body["eoq_quantity"].(float64), 0.01)
	assert.Equal(t, "valid", body["status"])
}

func TestEOQEndpoint_CostoInvalidoDevuelve400(t *testing.T) {
	app := buildTestApp(memory.NewStore())

	resp := postJSON(t, app, "/api/analytics/eoq", `{"annual_demand": 1000, "holding_cost": 0, "ordering_cost": 100}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestForecastEndpoint_SeriePropia(t *testing.T) {
	app := buildTestApp(memory.NewStore())

	resp := postJSON(t, app, "/api/analytics/forecast", `{
		"history": [10, 12, 11, 13],
		"periods_ahead": 2,
		"method": "exponential"
	}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	decodeJSON(t, resp, &body)
	forecasts := body["forecasts"].([]interface{})
	require.Len(t, forecasts, 2)
	assert.InDelta(t, 11.47, forecasts[0].(float64), 0.01)
}

// Sin method explícito el pronóstico usa suavizado exponencial.
func TestForecastEndpoint_MetodoPorDefecto(t *testing.T) {
	app := buildTestApp(memory.NewStore())

	resp := postJSON(t, app, "/api/analytics/forecast", `{
		"history": [10, 12, 11, 13],
		"periods_ahead": 1
	}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	decodeJSON(t, resp, &body)
	assert.Equal(t, "exponential", body["method"])
	forecasts := body["forecasts"].([]interface{})
	require.Len(t, forecasts, 1)
	assert.InDelta(t, 11.47, forecasts[0].(float64), 0.01)
}

func TestForecastEndpoint_HistoriaInsuficienteDevuelve422(t *testing.T) {
	app := buildTestApp(memory.NewStore())

	resp := postJSON(t, app, "/api/analytics/forecast", `{
		"product_id": 1, "branch_id": 1, "periods_ahead": 2, "method": "exponential"
	}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestABCEndpoint(t *testing.T) {
	app := buildTestApp(memory.NewStore())

	resp := postJSON(t, app, "/api/analytics/abc", `{
		"items": [
			{"product_id": 1, "branch_id": 1, "annual_demand": 1000, "unit_cost": 80},
			{"product_id": 2, "branch_id": 1, "annual_demand": 1000, "unit_cost": 15},
			{"product_id": 3, "branch_id": 1, "annual_demand": 1000, "unit_cost": 5}
		]
	}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	decodeJSON(t, resp, &body)
	assert.Len(t, body["a_items"].([]interface{}), 1)
	assert.Len(t, body["b_items"].([]interface{}), 1)
	assert.Len(t, body["c_items"].([]interface{}), 1)
}

func TestHoldingCostEndpoint(t *testing.T) {
	app := buildTestApp(memory.NewStore())

	resp := postJSON(t, app, "/api/analytics/holding-cost", `{
		"unit_cost": 100,
		"holding_cost_pct": 0.25
	}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	decodeJSON(t, resp, &body)
	assert.Equal(t, float64(25), body["holding_cost"])

	resp = postJSON(t, app, "/api/analytics/holding-cost", `{
		"unit_cost": 100,
		"holding_cost_pct": 1.5
	}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestOrderingCostEndpoint(t *testing.T) {
	app := buildTestApp(memory.NewStore())

	resp := postJSON(t, app, "/api/analytics/ordering-cost", `{
		"products_per_order": 10,
		"fixed_cost": 50,
		"variable_cost_per_item": 0.5
	}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	decodeJSON(t, resp, &body)
	assert.Equal(t, float64(55), body["ordering_cost"])
}

// La salud de inventario expone la rotación calculada sobre el resultado EOQ
// vivo de la llave.
func TestInventoryHealthEndpoint_IncluyeRotacion(t *testing.T) {
	store := memory.NewStore()
	store.SeedProduct(entity.ProductBranchKey{ProductID: 1001, BranchID: 1}, 50)
	app := buildTestApp(store)

	resp := uploadCSV(t, app, csvHeader+"1001,1,8,2024-03-10,12.50\n")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/inventory-health?product_id=1001&branch_id=1", nil)
	hresp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, hresp.StatusCode)

	var body map[string]interface{}
	decodeJSON(t, hresp, &body)
	// Demanda anual 8*365=2920, EOQ 108.07, stock de seguridad 8.30:
	// rotación = 2920 / (108.07/2 + 8.30)
	assert.InDelta(t, 46.84, body["turnover_ratio"].(float64), 0.05)
	assert.NotEmpty(t, body["status"])
}

func TestEOQResultsEndpoint_PobladoPorImportacion(t *testing.T) {
	store := memory.NewStore()
	store.SeedProduct(entity.ProductBranchKey{ProductID: 1001, BranchID: 1}, 500)
	app := buildTestApp(store)

	uploadCSV(t, app, csvHeader+"1001,1,10,2024-03-10,12.50\n1001,1,15,2024-03-14,12.50\n")

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/eoq-results?branch_id=1", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	decodeJSON(t, resp, &body)
	items := body["items"].([]interface{})
	require.Len(t, items, 1)
	item := items[0].(map[string]interface{})
	assert.Equal(t, "valid", item["status"])
	assert.Equal(t, float64(1001), item["product_id"])
}

func TestHealthEndpoint(t *testing.T) {
	app := buildTestApp(memory.NewStore())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	decodeJSON(t, resp, &body)
	assert.Equal(t, "ok", body["status"])
}
