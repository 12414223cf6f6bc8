package importer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tu-usuario/retail-analytics/internal/domain"
	"github.com/tu-usuario/retail-analytics/internal/domain/entity"
	"github.com/tu-usuario/retail-analytics/internal/domain/eoq"
	"github.com/tu-usuario/retail-analytics/internal/domain/repository"
	"github.com/tu-usuario/retail-analytics/pkg/logger"
)

// CostInputs costos para el cálculo EOQ. El caller puede sobreescribir los
// defaults de configuración por importación.
type CostInputs struct {
	HoldingCost     float64
	OrderingCost    float64
	UnitCost        float64
	LeadTimeDays    float64
	ConfidenceLevel float64
}

// RecalcScheduler recalcula parámetros EOQ solo para las llaves (producto,
// sucursal) tocadas por el lote actual: costo O(llaves del lote), no
// O(catálogo). La señal de demanda anual es la del propio lote, anualizada
// sobre su rango de fechas.
//
// El resultado se upserta siempre, sea válido o invalid_inputs, para que el
// caller distinga "sin datos aún" de "calculado y actualmente no viable".
type RecalcScheduler struct {
	eoqRepo repository.EOQResultRepository
	log     *logger.Logger
}

// NewRecalcScheduler construye el planificador.
func NewRecalcScheduler(eoqRepo repository.EOQResultRepository, log *logger.Logger) *RecalcScheduler {
	return &RecalcScheduler{eoqRepo: eoqRepo, log: log}
}

// Recalculate re-ejecuta el cálculo EOQ para cada llave del lote. Las líneas
// confirmadas aportan la señal de demanda; costs aporta los costos. Devuelve
// los resultados upsertados (uno por llave, válidos o no). Es re-entrante e
// idempotente: repetir la llamada con el mismo lote deja el mismo estado.
func (s *RecalcScheduler) Recalculate(ctx context.Context, keys []entity.ProductBranchKey, committed []entity.SaleLine, costs CostInputs) ([]*entity.EOQResult, error) {
	if len(keys) == 0 {
		return []*entity.EOQResult{}, nil
	}

	days := spanDays(committed)
	qtyByKey := make(map[entity.ProductBranchKey]int64, len(keys))
	for _, line := range committed {
		qtyByKey[line.Key()] += line.Quantity
	}

	results := make([]*entity.EOQResult, 0, len(keys))
	for _, k := range keys {
		annualDemand := 0.0
		if days > 0 {
			annualDemand = float64(qtyByKey[k]) / float64(days) * 365
		}
		params := entity.EOQParameters{
			AnnualDemand:    annualDemand,
			HoldingCost:     costs.HoldingCost,
			OrderingCost:    costs.OrderingCost,
			UnitCost:        costs.UnitCost,
			LeadTimeDays:    costs.LeadTimeDays,
			ConfidenceLevel: costs.ConfidenceLevel,
		}

		result, err := eoq.Calculate(params)
		switch {
		case err == nil:
			result.ProductID = k.ProductID
			result.BranchID = k.BranchID
		case errors.Is(err, domain.ErrInvalidInput):
			// Estado explícito en vez de fallo silencioso
			result = &entity.EOQResult{
				ProductID:    k.ProductID,
				BranchID:     k.BranchID,
				Params:       params,
				Status:       entity.EOQStatusInvalidInputs,
				Reason:       err.Error(),
				CalculatedAt: time.Now().UTC(),
			}
		default:
			return nil, fmt.Errorf("calcular EOQ %d/%d: %w", k.ProductID, k.BranchID, err)
		}

		if err := s.eoqRepo.UpsertResult(ctx, result); err != nil {
			return nil, fmt.Errorf("upsert de resultado EOQ %d/%d: %w", k.ProductID, k.BranchID, err)
		}
		results = append(results, result)

		s.log.Debug().
			Int64("product_id", k.ProductID).
			Int64("branch_id", k.BranchID).
			Str("status", result.Status).
			Float64("annual_demand", annualDemand).
			Msg("parámetros EOQ recalculados")
	}
	return results, nil
}

// spanDays devuelve el rango en días cubierto por las líneas (ambos extremos
// inclusive). 0 si no hay líneas.
func spanDays(lines []entity.SaleLine) int {
	if len(lines) == 0 {
		return 0
	}
	minT, maxT := lines[0].TransactionTime, lines[0].TransactionTime
	for _, l := range lines[1:] {
		if l.TransactionTime.Before(minT) {
			minT = l.TransactionTime
		}
		if l.TransactionTime.After(maxT) {
			maxT = l.TransactionTime
		}
	}
	return int(truncateToDay(maxT).Sub(truncateToDay(minT)).Hours()/24) + 1
}
