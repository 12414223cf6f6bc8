package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/retail-analytics/internal/application/analytics"
	"github.com/tu-usuario/retail-analytics/internal/application/dto"
	"github.com/tu-usuario/retail-analytics/internal/domain"
	"github.com/tu-usuario/retail-analytics/internal/domain/entity"
)

// AnalyticsHandler maneja las peticiones de analítica de inventario.
type AnalyticsHandler struct {
	uc *analytics.UseCase
}

// NewAnalyticsHandler construye el handler.
func NewAnalyticsHandler(uc *analytics.UseCase) *AnalyticsHandler {
	return &AnalyticsHandler{uc: uc}
}

// CalculateEOQ godoc
// @Summary      Cálculo EOQ ad-hoc (what-if, no persiste)
// @Tags         analytics
// @Accept       json
// @Produce      json
// @Param        body  body  dto.EOQRequest  true  "Parámetros EOQ"
// @Success      200   {object}  dto.EOQResultDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/analytics/eoq [post]
func (h *AnalyticsHandler) CalculateEOQ(c *fiber.Ctx) error {
	var in dto.EOQRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.uc.CalculateEOQ(c.Context(), in.ToParams())
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.FromEOQResult(result))
}

// ListEOQResults godoc
// @Summary      Listar resultados EOQ persistidos
// @Tags         analytics
// @Produce      json
// @Param        branch_id  query  int  false  "Filtrar por sucursal"
// @Param        limit      query  int  false  "Máximo de resultados (default 100)"
// @Success      200  {object}  dto.EOQResultListResponse
// @Router       /api/analytics/eoq-results [get]
func (h *AnalyticsHandler) ListEOQResults(c *fiber.Ctx) error {
	var q dto.ListQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "query inválida"})
	}
	q.DefaultLimit()

	results, err := h.uc.ListEOQResults(c.Context(), q.BranchID, q.Limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	items := make([]dto.EOQResultDTO, 0, len(results))
	for _, r := range results {
		items = append(items, dto.FromEOQResult(r))
	}
	return c.JSON(dto.EOQResultListResponse{Items: items})
}

// Forecast godoc
// @Summary      Pronóstico de demanda
// @Description  Proyecta la demanda a N períodos. Si history viene en el
//               cuerpo se usa tal cual; si no, la serie se lee del historial
//               persistido de la llave (product_id, branch_id). Sin method
//               explícito se usa suavizado exponencial.
// @Tags         analytics
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ForecastRequest  true  "Llave o serie, períodos y método"
// @Success      200   {object}  dto.ForecastResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/analytics/forecast [post]
func (h *AnalyticsHandler) Forecast(c *fiber.Ctx) error {
	var in dto.ForecastRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Method == "" {
		in.Method = entity.ForecastMethodExponential
	}

	var (
		forecast *entity.DemandForecast
		err      error
	)
	if len(in.History) > 0 {
		forecast, err = h.uc.ForecastSeries(c.Context(), in.History, in.PeriodsAhead, in.Method)
	} else {
		var from, to time.Time
		if in.DateFrom != nil {
			from = *in.DateFrom
		}
		if in.DateTo != nil {
			to = *in.DateTo
		}
		key := entity.ProductBranchKey{ProductID: in.ProductID, BranchID: in.BranchID}
		forecast, err = h.uc.Forecast(c.Context(), key, from, to, in.PeriodsAhead, in.Method)
	}
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientData) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_DATA", Message: err.Error()})
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.FromForecast(forecast))
}

// HoldingCost godoc
// @Summary      Estimar el costo anual de mantener una unidad
// @Tags         analytics
// @Accept       json
// @Produce      json
// @Param        body  body  dto.HoldingCostRequest  true  "Costo unitario y porcentaje de mantenimiento"
// @Success      200   {object}  dto.HoldingCostResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/analytics/holding-cost [post]
func (h *AnalyticsHandler) HoldingCost(c *fiber.Ctx) error {
	var in dto.HoldingCostRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	cost, err := h.uc.EstimateHoldingCost(c.Context(), in.UnitCost, in.HoldingCostPct)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.HoldingCostResponse{HoldingCost: cost})
}

// OrderingCost godoc
// @Summary      Estimar el costo por orden
// @Tags         analytics
// @Accept       json
// @Produce      json
// @Param        body  body  dto.OrderingCostRequest  true  "Costo fijo y variable por ítem"
// @Success      200   {object}  dto.OrderingCostResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/analytics/ordering-cost [post]
func (h *AnalyticsHandler) OrderingCost(c *fiber.Ctx) error {
	var in dto.OrderingCostRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	cost, err := h.uc.EstimateOrderingCost(c.Context(), in.ProductsPerOrder, in.FixedCost, in.VariableCostPerItem)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.OrderingCostResponse{OrderingCost: cost})
}

// ClassifyABC godoc
// @Summary      Clasificación ABC por valor anual
// @Tags         analytics
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ABCRequest  true  "Llaves con demanda anual y costo unitario"
// @Success      200   {object}  dto.ABCResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/analytics/abc [post]
func (h *AnalyticsHandler) ClassifyABC(c *fiber.Ctx) error {
	var in dto.ABCRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if len(in.Items) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "items no puede estar vacío"})
	}
	cls := h.uc.ClassifyABC(c.Context(), in.ToProducts())
	return c.JSON(dto.FromABC(cls))
}

// InventoryHealth godoc
// @Summary      Salud de inventario de una llave
// @Tags         analytics
// @Produce      json
// @Param        product_id  query  int  true  "Producto"
// @Param        branch_id   query  int  true  "Sucursal"
// @Success      200  {object}  dto.HealthResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/analytics/inventory-health [get]
func (h *AnalyticsHandler) InventoryHealth(c *fiber.Ctx) error {
	key := entity.ProductBranchKey{
		ProductID: int64(c.QueryInt("product_id")),
		BranchID:  int64(c.QueryInt("branch_id")),
	}
	if key.ProductID == 0 || key.BranchID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "product_id y branch_id son obligatorios"})
	}

	health, err := h.uc.Health(c.Context(), key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "la llave no tiene resultado EOQ calculado"})
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "INVALID_STATE", Message: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.HealthResponse{
		ProductID:       key.ProductID,
		BranchID:        key.BranchID,
		Status:          health.Status,
		RiskLevel:       health.RiskLevel,
		DaysOfStock:     health.DaysOfStock,
		StockoutRiskPct: health.StockoutRiskPct,
		TurnoverRatio:   health.TurnoverRatio,
		Recommendation:  health.Recommendation,
	})
}
