// Package analytics contiene los casos de uso de analítica de inventario:
// cálculo EOQ ad-hoc, pronóstico de demanda sobre el historial, clasificación
// ABC y salud de inventario por llave.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/tu-usuario/retail-analytics/internal/domain"
	"github.com/tu-usuario/retail-analytics/internal/domain/entity"
	"github.com/tu-usuario/retail-analytics/internal/domain/eoq"
	"github.com/tu-usuario/retail-analytics/internal/domain/repository"
	"github.com/tu-usuario/retail-analytics/pkg/logger"
)

const defaultHistoryDays = 180 // ventana de historial cuando el caller no acota fechas

// UseCase expone la analítica de solo lectura. No muta stock ni historial;
// la única escritura del sistema pasa por el pipeline de importación.
type UseCase struct {
	demandRepo repository.DemandRepository
	eoqRepo    repository.EOQResultRepository
	catalog    repository.CatalogRepository
	log        *logger.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	demandRepo repository.DemandRepository,
	eoqRepo repository.EOQResultRepository,
	catalog repository.CatalogRepository,
	log *logger.Logger,
) *UseCase {
	return &UseCase{demandRepo: demandRepo, eoqRepo: eoqRepo, catalog: catalog, log: log}
}

// CalculateEOQ ejecuta el cálculo EOQ puro sobre los parámetros dados, sin
// persistir. Pensado para análisis what-if desde la API.
func (uc *UseCase) CalculateEOQ(_ context.Context, params entity.EOQParameters) (*entity.EOQResult, error) {
	return eoq.Calculate(params)
}

// EstimateHoldingCost estima el costo anual de mantener una unidad como
// porcentaje del costo unitario.
func (uc *UseCase) EstimateHoldingCost(_ context.Context, unitCost, holdingCostPct float64) (float64, error) {
	return eoq.HoldingCost(unitCost, holdingCostPct)
}

// EstimateOrderingCost estima el costo por orden: fijo + variable por ítem.
func (uc *UseCase) EstimateOrderingCost(_ context.Context, productsPerOrder int, fixedCost, variablePerItem float64) (float64, error) {
	return eoq.OrderingCost(productsPerOrder, fixedCost, variablePerItem)
}

// Forecast proyecta la demanda de una llave a periodsAhead períodos usando su
// historial de buckets diarios. Un rango vacío usa los últimos
// defaultHistoryDays días. Devuelve ErrInsufficientData con menos de dos
// buckets de historia.
func (uc *UseCase) Forecast(
	ctx context.Context,
	key entity.ProductBranchKey,
	from, to time.Time,
	periodsAhead int,
	method string,
) (*entity.DemandForecast, error) {
	if to.IsZero() {
		to = time.Now().UTC()
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -defaultHistoryDays)
	}

	buckets, err := uc.demandRepo.ListByKey(ctx, key, from, to)
	if err != nil {
		return nil, fmt.Errorf("leer historial de demanda %d/%d: %w", key.ProductID, key.BranchID, err)
	}

	history := make([]float64, 0, len(buckets))
	for _, b := range buckets {
		history = append(history, float64(b.QuantitySold))
	}
	forecast, err := eoq.Forecast(history, periodsAhead, method)
	if err != nil {
		return nil, err
	}

	uc.log.Debug().
		Int64("product_id", key.ProductID).
		Int64("branch_id", key.BranchID).
		Int("history", len(history)).
		Str("method", forecast.Method).
		Msg("pronóstico de demanda generado")
	return forecast, nil
}

// ForecastSeries proyecta sobre una serie provista por el caller, sin tocar
// el historial persistido.
func (uc *UseCase) ForecastSeries(_ context.Context, history []float64, periodsAhead int, method string) (*entity.DemandForecast, error) {
	return eoq.Forecast(history, periodsAhead, method)
}

// ClassifyABC clasifica las llaves dadas por valor anual acumulado.
func (uc *UseCase) ClassifyABC(_ context.Context, products []eoq.ABCProduct) entity.ABCClassification {
	return eoq.ABCAnalysis(products)
}

// ListEOQResults lista los resultados EOQ persistidos, opcionalmente
// filtrados por sucursal.
func (uc *UseCase) ListEOQResults(ctx context.Context, branchID *int64, limit int) ([]*entity.EOQResult, error) {
	results, err := uc.eoqRepo.List(ctx, branchID, limit)
	if err != nil {
		return nil, fmt.Errorf("listar resultados EOQ: %w", err)
	}
	return results, nil
}

// GetEOQResult devuelve el resultado vivo de una llave, o ErrNotFound si
// nunca se ha calculado.
func (uc *UseCase) GetEOQResult(ctx context.Context, key entity.ProductBranchKey) (*entity.EOQResult, error) {
	result, err := uc.eoqRepo.GetByKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("leer resultado EOQ %d/%d: %w", key.ProductID, key.BranchID, err)
	}
	if result == nil {
		return nil, fmt.Errorf("resultado EOQ %d/%d: %w", key.ProductID, key.BranchID, domain.ErrNotFound)
	}
	return result, nil
}

// Health evalúa la salud de inventario de una llave cruzando su stock actual
// con su último resultado EOQ válido.
func (uc *UseCase) Health(ctx context.Context, key entity.ProductBranchKey) (*entity.InventoryHealth, error) {
	result, err := uc.GetEOQResult(ctx, key)
	if err != nil {
		return nil, err
	}
	if result.Status != entity.EOQStatusValid {
		return nil, fmt.Errorf("resultado EOQ %d/%d en estado %s: %w",
			key.ProductID, key.BranchID, result.Status, domain.ErrInvalidInput)
	}

	stocks, err := uc.catalog.CurrentStock(ctx, []entity.ProductBranchKey{key})
	if err != nil {
		return nil, fmt.Errorf("leer stock actual %d/%d: %w", key.ProductID, key.BranchID, err)
	}
	current := float64(stocks[key])
	dailyUsage := result.Params.AnnualDemand / 365

	return eoq.AnalyzeHealth(current, dailyUsage, result.ReorderPoint, result.SafetyStock, result.EOQQuantity)
}
