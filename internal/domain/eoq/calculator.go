// Package eoq implementa el cálculo de cantidad económica de pedido (EOQ),
// stock de seguridad, punto de reorden, pronóstico de demanda y análisis ABC.
// Funciones puras, sin I/O: el resto del sistema las consume con datos ya
// conciliados.
package eoq

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/tu-usuario/retail-analytics/internal/domain"
	"github.com/tu-usuario/retail-analytics/internal/domain/entity"
)

// Supuestos del modelo. El coeficiente de variación de la demanda diaria se
// asume fijo en 20% (elección de modelado, no un valor medido: la fuente de
// datos no trae dispersión histórica).
const (
	demandCV        = 0.20
	daysPerYear     = 365
	smoothingAlpha  = 0.3
	movingAvgWindow = 3
	confidenceZ95   = 1.96
)

// Calculate computa EOQ y métricas derivadas para los parámetros dados.
//
//	EOQ = sqrt(2·D·S / H)   D = demanda anual, S = costo por orden, H = costo de mantener
//
// El redondeo a 2 decimales se aplica solo en la frontera de salida para no
// acumular error intermedio.
func Calculate(p entity.EOQParameters) (*entity.EOQResult, error) {
	if p.AnnualDemand <= 0 {
		return nil, fmt.Errorf("%w: la demanda anual debe ser mayor a 0", domain.ErrInvalidInput)
	}
	if p.HoldingCost <= 0 {
		return nil, fmt.Errorf("%w: el costo de mantener debe ser mayor a 0", domain.ErrInvalidInput)
	}
	if p.OrderingCost < 0 {
		return nil, fmt.Errorf("%w: el costo por orden no puede ser negativo", domain.ErrInvalidInput)
	}
	if p.UnitCost < 0 {
		return nil, fmt.Errorf("%w: el costo unitario no puede ser negativo", domain.ErrInvalidInput)
	}

	eoqQty := math.Sqrt(2 * p.AnnualDemand * p.OrderingCost / p.HoldingCost)

	avgDailyDemand := p.AnnualDemand / daysPerYear
	stdDev := avgDailyDemand * demandCV

	z, err := zScore(p.ConfidenceLevel)
	if err != nil {
		return nil, err
	}

	// Stock de seguridad: Z · σ · sqrt(L), con L = lead time en días
	safetyStock := z * stdDev * math.Sqrt(p.LeadTimeDays)
	reorderPoint := avgDailyDemand*p.LeadTimeDays + safetyStock

	annualHolding := (eoqQty / 2) * p.HoldingCost
	annualOrdering := (p.AnnualDemand / eoqQty) * p.OrderingCost

	return &entity.EOQResult{
		Params:             p,
		EOQQuantity:        round2(eoqQty),
		ReorderPoint:       round2(reorderPoint),
		SafetyStock:        round2(safetyStock),
		AnnualHoldingCost:  round2(annualHolding),
		AnnualOrderingCost: round2(annualOrdering),
		TotalAnnualCost:    round2(annualHolding + annualOrdering),
		MaxStockLevel:      round2(reorderPoint + eoqQty),
		MinStockLevel:      round2(safetyStock),
		AverageInventory:   round2(eoqQty/2 + safetyStock),
		Status:             entity.EOQStatusValid,
		CalculatedAt:       time.Now().UTC(),
	}, nil
}

// zScore devuelve el valor Z de la normal estándar para el nivel de confianza
// dado: inversa de la CDF evaluada en (1+c)/2, vía math.Erfinv.
func zScore(confidence float64) (float64, error) {
	if confidence <= 0 || confidence >= 1 {
		return 0, fmt.Errorf("%w: el nivel de confianza debe estar en (0, 1)", domain.ErrInvalidInput)
	}
	p := (1 + confidence) / 2
	return math.Sqrt2 * math.Erfinv(2*p-1), nil
}

// HoldingCost estima el costo anual de mantener una unidad como porcentaje del
// costo unitario (típicamente 20-30%).
func HoldingCost(unitCost, holdingCostPct float64) (float64, error) {
	if holdingCostPct < 0 || holdingCostPct > 1 {
		return 0, fmt.Errorf("%w: el porcentaje de costo de mantener debe estar en [0, 1]", domain.ErrInvalidInput)
	}
	return unitCost * holdingCostPct, nil
}

// OrderingCost estima el costo por orden: fijo + variable por ítem.
func OrderingCost(productsPerOrder int, fixedCost, variableCostPerItem float64) (float64, error) {
	if productsPerOrder < 0 {
		return 0, fmt.Errorf("%w: los productos por orden no pueden ser negativos", domain.ErrInvalidInput)
	}
	return fixedCost + float64(productsPerOrder)*variableCostPerItem, nil
}

// MovingAverage devuelve la serie de promedios móviles con la ventana dada.
// Si la serie es más corta que la ventana, se devuelve tal cual.
func MovingAverage(data []float64, window int) []float64 {
	if len(data) < window {
		return data
	}
	out := make([]float64, 0, len(data)-window+1)
	for i := 0; i+window <= len(data); i++ {
		var sum float64
		for _, v := range data[i : i+window] {
			sum += v
		}
		out = append(out, sum/float64(window))
	}
	return out
}

// ExponentialSmoothing devuelve la serie suavizada:
// s[0] = data[0]; s[i] = α·data[i-1] + (1-α)·s[i-1].
func ExponentialSmoothing(data []float64, alpha float64) ([]float64, error) {
	if alpha < 0 || alpha > 1 {
		return nil, fmt.Errorf("%w: alpha debe estar en [0, 1]", domain.ErrInvalidInput)
	}
	if len(data) == 0 {
		return nil, nil
	}
	out := make([]float64, len(data))
	out[0] = data[0]
	for i := 1; i < len(data); i++ {
		out[i] = alpha*data[i-1] + (1-alpha)*out[i-1]
	}
	return out, nil
}

// Forecast proyecta la demanda periodsAhead períodos hacia adelante con el
// método indicado (moving_average o exponential, α = 0.3 fijo). La tendencia
// lineal (last-first)/len se suma por período futuro, con piso en 0. Las
// bandas de confianza son forecast ± 1.96·σ de la serie histórica, con piso 0
// en la banda inferior.
func Forecast(history []float64, periodsAhead int, method string) (*entity.DemandForecast, error) {
	if len(history) < 2 {
		return nil, fmt.Errorf("%w: se requieren al menos 2 períodos de historia", domain.ErrInsufficientData)
	}
	if periodsAhead <= 0 {
		return nil, fmt.Errorf("%w: los períodos a proyectar deben ser mayores a 0", domain.ErrInvalidInput)
	}

	var base float64
	switch method {
	case entity.ForecastMethodMovingAverage:
		if len(history) >= movingAvgWindow {
			ma := MovingAverage(history, movingAvgWindow)
			base = ma[len(ma)-1]
		} else {
			base = history[len(history)-1]
		}
	case entity.ForecastMethodExponential:
		smoothed, err := ExponentialSmoothing(history, smoothingAlpha)
		if err != nil {
			return nil, err
		}
		base = smoothed[len(smoothed)-1]
	default:
		return nil, fmt.Errorf("%w: método de pronóstico desconocido %q", domain.ErrInvalidInput, method)
	}

	trend := (history[len(history)-1] - history[0]) / float64(len(history))

	sigma := stdDev(history)
	forecasts := make([]float64, periodsAhead)
	lower := make([]float64, periodsAhead)
	upper := make([]float64, periodsAhead)
	for i := 0; i < periodsAhead; i++ {
		f := math.Max(0, base+trend*float64(i+1))
		forecasts[i] = f
		lower[i] = math.Max(0, f-confidenceZ95*sigma)
		upper[i] = f + confidenceZ95*sigma
	}

	return &entity.DemandForecast{
		Forecasts:    forecasts,
		LowerBounds:  lower,
		UpperBounds:  upper,
		Trend:        trend,
		BaseForecast: base,
		Method:       method,
	}, nil
}

// ABCProduct entrada del análisis ABC: una llave con su demanda anual y costo
// unitario.
type ABCProduct struct {
	Key          entity.ProductBranchKey
	AnnualDemand float64
	UnitCost     float64
}

// ABCAnalysis clasifica productos por valor anual (demanda · costo unitario):
// A hasta el 80% del valor acumulado, B hasta el 95%, C el resto. Si el valor
// total es 0, todo se clasifica C.
func ABCAnalysis(products []ABCProduct) entity.ABCClassification {
	out := entity.ABCClassification{
		AItems: []entity.ProductBranchKey{},
		BItems: []entity.ProductBranchKey{},
		CItems: []entity.ProductBranchKey{},
	}
	if len(products) == 0 {
		return out
	}

	ranked := make([]ABCProduct, len(products))
	copy(ranked, products)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].AnnualDemand*ranked[i].UnitCost > ranked[j].AnnualDemand*ranked[j].UnitCost
	})

	var total float64
	for _, p := range ranked {
		total += p.AnnualDemand * p.UnitCost
	}
	if total == 0 {
		for _, p := range ranked {
			out.CItems = append(out.CItems, p.Key)
		}
		return out
	}

	var cumulative float64
	for _, p := range ranked {
		pct := cumulative / total * 100
		switch {
		case pct < 80:
			out.AItems = append(out.AItems, p.Key)
		case pct < 95:
			out.BItems = append(out.BItems, p.Key)
		default:
			out.CItems = append(out.CItems, p.Key)
		}
		cumulative += p.AnnualDemand * p.UnitCost
	}
	return out
}

// TurnoverRatio calcula la rotación de inventario (demanda anual / inventario
// promedio). Devuelve 0 si el inventario promedio no es positivo.
func TurnoverRatio(annualDemand, averageInventory float64) float64 {
	if averageInventory <= 0 {
		return 0
	}
	return round2(annualDemand / averageInventory)
}

// AnalyzeHealth evalúa el estado del inventario de una llave contra sus
// parámetros EOQ vigentes.
func AnalyzeHealth(currentStock, dailyUsage, reorderPoint, safetyStock, eoqQty float64) (*entity.InventoryHealth, error) {
	if dailyUsage < 0 {
		return nil, fmt.Errorf("%w: el uso diario no puede ser negativo", domain.ErrInvalidInput)
	}
	if currentStock < 0 {
		return nil, fmt.Errorf("%w: el stock actual no puede ser negativo", domain.ErrInvalidInput)
	}

	daysOfStock := math.Inf(1)
	if dailyUsage > 0 {
		daysOfStock = currentStock / dailyUsage
	}

	var status, risk string
	switch {
	case currentStock <= safetyStock:
		status, risk = "CRITICAL", "HIGH"
	case currentStock <= reorderPoint:
		status, risk = "LOW", "MEDIUM"
	case currentStock >= reorderPoint+eoqQty:
		status, risk = "HIGH", "LOW"
	default:
		status, risk = "NORMAL", "LOW"
	}

	var stockoutRisk float64
	if currentStock <= 0 {
		stockoutRisk = 100
	} else if capacity := reorderPoint + eoqQty; capacity > 0 {
		stockoutRisk = math.Max(0, (1-currentStock/capacity)*100)
	}

	return &entity.InventoryHealth{
		Status:          status,
		RiskLevel:       risk,
		DaysOfStock:     round2(daysOfStock),
		StockoutRiskPct: round2(stockoutRisk),
		TurnoverRatio:   TurnoverRatio(dailyUsage*daysPerYear, eoqQty/2+safetyStock),
		Recommendation:  healthRecommendation(status, reorderPoint, eoqQty),
	}, nil
}

func healthRecommendation(status string, reorderPoint, eoqQty float64) string {
	switch status {
	case "CRITICAL":
		return fmt.Sprintf("URGENTE: ordenar %d unidades de inmediato para alcanzar el nivel óptimo", int(eoqQty))
	case "LOW":
		return fmt.Sprintf("PRECAUCIÓN: colocar orden por %d unidades; stock bajo el punto de reorden (%d)", int(eoqQty), int(reorderPoint))
	case "HIGH":
		return "Exceso de inventario: considerar reducir cantidad o frecuencia de pedido"
	default:
		return fmt.Sprintf("Mantener stock actual; próxima orden al llegar a %d", int(reorderPoint))
	}
}

// stdDev desviación estándar poblacional de la serie.
func stdDev(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	var mean float64
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	var sumSq float64
	for _, v := range data {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(data)))
}

func round2(v float64) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return v
	}
	return math.Round(v*100) / 100
}
