package entity

import "time"

// Estados de un resultado EOQ persistido. Se upserta siempre, válido o no,
// para que el caller distinga "sin datos aún" de "calculado y no viable".
const (
	EOQStatusValid         = "valid"
	EOQStatusInvalidInputs = "invalid_inputs"
)

// EOQParameters parámetros de entrada del cálculo EOQ. Entrada transitoria.
type EOQParameters struct {
	AnnualDemand    float64 // >= 0
	HoldingCost     float64 // > 0, costo anual de mantener una unidad
	OrderingCost    float64 // > 0, costo fijo por orden
	UnitCost        float64 // >= 0
	LeadTimeDays    float64 // >= 0
	ConfidenceLevel float64 // en (0, 1)
}

// EOQResult resultado del cálculo EOQ para una llave (producto, sucursal).
// A lo más un resultado vivo por llave: recalcular sobreescribe, nunca apila.
type EOQResult struct {
	ProductID int64
	BranchID  int64

	Params EOQParameters

	EOQQuantity        float64
	ReorderPoint       float64
	SafetyStock        float64
	AnnualHoldingCost  float64
	AnnualOrderingCost float64
	TotalAnnualCost    float64
	MaxStockLevel      float64
	MinStockLevel      float64
	AverageInventory   float64

	Status       string // valid | invalid_inputs
	Reason       string // vacío si Status == valid
	CalculatedAt time.Time
}

// Key devuelve la llave (producto, sucursal) del resultado.
func (r EOQResult) Key() ProductBranchKey {
	return ProductBranchKey{ProductID: r.ProductID, BranchID: r.BranchID}
}

// DemandForecast proyección de demanda a N períodos con bandas de confianza.
type DemandForecast struct {
	Forecasts    []float64
	LowerBounds  []float64
	UpperBounds  []float64
	Trend        float64
	BaseForecast float64
	Method       string
}

// Métodos de pronóstico soportados.
const (
	ForecastMethodMovingAverage = "moving_average"
	ForecastMethodExponential   = "exponential"
)

// ABCClassification resultado del análisis ABC: llaves clasificadas por
// porcentaje acumulado de valor (80% / 95% / 100%).
type ABCClassification struct {
	AItems []ProductBranchKey
	BItems []ProductBranchKey
	CItems []ProductBranchKey
}

// InventoryHealth evaluación del estado actual de inventario de una llave.
type InventoryHealth struct {
	Status          string // CRITICAL, LOW, NORMAL, HIGH
	RiskLevel       string // HIGH, MEDIUM, LOW
	DaysOfStock     float64
	StockoutRiskPct float64
	TurnoverRatio   float64
	Recommendation  string
}
