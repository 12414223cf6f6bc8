package dto

import (
	"time"

	"github.com/tu-usuario/retail-analytics/internal/domain/entity"
	"github.com/tu-usuario/retail-analytics/internal/domain/eoq"
)

// EOQRequest entrada del cálculo EOQ ad-hoc (what-if, no persiste).
type EOQRequest struct {
	AnnualDemand    float64 `json:"annual_demand" validate:"min=0"`
	HoldingCost     float64 `json:"holding_cost" validate:"required,gt=0"`
	OrderingCost    float64 `json:"ordering_cost" validate:"required,gt=0"`
	UnitCost        float64 `json:"unit_cost" validate:"min=0"`
	LeadTimeDays    float64 `json:"lead_time_days" validate:"min=0"`
	ConfidenceLevel float64 `json:"confidence_level"`
}

// ToParams convierte la petición a parámetros de dominio.
func (r EOQRequest) ToParams() entity.EOQParameters {
	return entity.EOQParameters{
		AnnualDemand:    r.AnnualDemand,
		HoldingCost:     r.HoldingCost,
		OrderingCost:    r.OrderingCost,
		UnitCost:        r.UnitCost,
		LeadTimeDays:    r.LeadTimeDays,
		ConfidenceLevel: r.ConfidenceLevel,
	}
}

// EOQResultDTO resultado EOQ serializable.
type EOQResultDTO struct {
	ProductID          int64     `json:"product_id,omitempty"`
	BranchID           int64     `json:"branch_id,omitempty"`
	AnnualDemand       float64   `json:"annual_demand"`
	EOQQuantity        float64   `json:"eoq_quantity"`
	ReorderPoint       float64   `json:"reorder_point"`
	SafetyStock        float64   `json:"safety_stock"`
	AnnualHoldingCost  float64   `json:"annual_holding_cost"`
	AnnualOrderingCost float64   `json:"annual_ordering_cost"`
	TotalAnnualCost    float64   `json:"total_annual_cost"`
	MaxStockLevel      float64   `json:"max_stock_level"`
	MinStockLevel      float64   `json:"min_stock_level"`
	AverageInventory   float64   `json:"average_inventory"`
	Status             string    `json:"status"`
	Reason             string    `json:"reason,omitempty"`
	CalculatedAt       time.Time `json:"calculated_at"`
}

// FromEOQResult mapea un resultado de dominio al DTO.
func FromEOQResult(r *entity.EOQResult) EOQResultDTO {
	return EOQResultDTO{
		ProductID:          r.ProductID,
		BranchID:           r.BranchID,
		AnnualDemand:       r.Params.AnnualDemand,
		EOQQuantity:        r.EOQQuantity,
		ReorderPoint:       r.ReorderPoint,
		SafetyStock:        r.SafetyStock,
		AnnualHoldingCost:  r.AnnualHoldingCost,
		AnnualOrderingCost: r.AnnualOrderingCost,
		TotalAnnualCost:    r.TotalAnnualCost,
		MaxStockLevel:      r.MaxStockLevel,
		MinStockLevel:      r.MinStockLevel,
		AverageInventory:   r.AverageInventory,
		Status:             r.Status,
		Reason:             r.Reason,
		CalculatedAt:       r.CalculatedAt,
	}
}

func fromEOQResults(results []*entity.EOQResult) []EOQResultDTO {
	out := make([]EOQResultDTO, 0, len(results))
	for _, r := range results {
		out = append(out, FromEOQResult(r))
	}
	return out
}

// EOQResultListResponse listado de resultados EOQ persistidos.
type EOQResultListResponse struct {
	Items []EOQResultDTO `json:"items"`
}

// ForecastRequest entrada del pronóstico de demanda. Si History viene vacía,
// la serie se lee del historial persistido de la llave. Method vacío usa
// suavizado exponencial.
type ForecastRequest struct {
	ProductID    int64      `json:"product_id"`
	BranchID     int64      `json:"branch_id"`
	History      []float64  `json:"history,omitempty"`
	PeriodsAhead int        `json:"periods_ahead" validate:"required,gt=0"`
	Method       string     `json:"method" validate:"omitempty,oneof=moving_average exponential"`
	DateFrom     *time.Time `json:"date_from,omitempty"`
	DateTo       *time.Time `json:"date_to,omitempty"`
}

// ForecastResponse proyección con bandas de confianza.
type ForecastResponse struct {
	Forecasts    []float64 `json:"forecasts"`
	LowerBounds  []float64 `json:"lower_bounds"`
	UpperBounds  []float64 `json:"upper_bounds"`
	Trend        float64   `json:"trend"`
	BaseForecast float64   `json:"base_forecast"`
	Method       string    `json:"method"`
}

// FromForecast mapea la proyección de dominio al DTO.
func FromForecast(f *entity.DemandForecast) ForecastResponse {
	return ForecastResponse{
		Forecasts:    f.Forecasts,
		LowerBounds:  f.LowerBounds,
		UpperBounds:  f.UpperBounds,
		Trend:        f.Trend,
		BaseForecast: f.BaseForecast,
		Method:       f.Method,
	}
}

// HoldingCostRequest entrada del estimador de costo de mantener.
type HoldingCostRequest struct {
	UnitCost       float64 `json:"unit_cost" validate:"min=0"`
	HoldingCostPct float64 `json:"holding_cost_pct" validate:"min=0,max=1"`
}

// HoldingCostResponse costo anual de mantener una unidad.
type HoldingCostResponse struct {
	HoldingCost float64 `json:"holding_cost"`
}

// OrderingCostRequest entrada del estimador de costo por orden.
type OrderingCostRequest struct {
	ProductsPerOrder    int     `json:"products_per_order" validate:"min=0"`
	FixedCost           float64 `json:"fixed_cost" validate:"min=0"`
	VariableCostPerItem float64 `json:"variable_cost_per_item" validate:"min=0"`
}

// OrderingCostResponse costo estimado por orden.
type OrderingCostResponse struct {
	OrderingCost float64 `json:"ordering_cost"`
}

// ABCItemRequest una llave con su valor anual para clasificar.
type ABCItemRequest struct {
	ProductID    int64   `json:"product_id" validate:"required"`
	BranchID     int64   `json:"branch_id" validate:"required"`
	AnnualDemand float64 `json:"annual_demand" validate:"min=0"`
	UnitCost     float64 `json:"unit_cost" validate:"min=0"`
}

// ABCRequest entrada del análisis ABC.
type ABCRequest struct {
	Items []ABCItemRequest `json:"items" validate:"required,min=1"`
}

// ToProducts convierte la petición a entradas de dominio.
func (r ABCRequest) ToProducts() []eoq.ABCProduct {
	out := make([]eoq.ABCProduct, 0, len(r.Items))
	for _, it := range r.Items {
		out = append(out, eoq.ABCProduct{
			Key:          entity.ProductBranchKey{ProductID: it.ProductID, BranchID: it.BranchID},
			AnnualDemand: it.AnnualDemand,
			UnitCost:     it.UnitCost,
		})
	}
	return out
}

// ABCKeyDTO llave serializable.
type ABCKeyDTO struct {
	ProductID int64 `json:"product_id"`
	BranchID  int64 `json:"branch_id"`
}

// ABCResponse clasificación resultante.
type ABCResponse struct {
	AItems []ABCKeyDTO `json:"a_items"`
	BItems []ABCKeyDTO `json:"b_items"`
	CItems []ABCKeyDTO `json:"c_items"`
}

// FromABC mapea la clasificación de dominio al DTO.
func FromABC(c entity.ABCClassification) ABCResponse {
	conv := func(keys []entity.ProductBranchKey) []ABCKeyDTO {
		out := make([]ABCKeyDTO, 0, len(keys))
		for _, k := range keys {
			out = append(out, ABCKeyDTO{ProductID: k.ProductID, BranchID: k.BranchID})
		}
		return out
	}
	return ABCResponse{AItems: conv(c.AItems), BItems: conv(c.BItems), CItems: conv(c.CItems)}
}

// HealthResponse salud de inventario de una llave.
type HealthResponse struct {
	ProductID       int64   `json:"product_id"`
	BranchID        int64   `json:"branch_id"`
	Status          string  `json:"status"`
	RiskLevel       string  `json:"risk_level"`
	DaysOfStock     float64 `json:"days_of_stock"`
	StockoutRiskPct float64 `json:"stockout_risk_pct"`
	TurnoverRatio   float64 `json:"turnover_ratio"`
	Recommendation  string  `json:"recommendation"`
}
