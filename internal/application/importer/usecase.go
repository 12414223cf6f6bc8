package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/tu-usuario/retail-analytics/internal/domain/entity"
	"github.com/tu-usuario/retail-analytics/pkg/logger"
)

// RowResult estado final de una fila del lote. Una fila descartada nunca
// escala a fallo de lote; se agrega al reporte con su razón.
type RowResult struct {
	Index  int
	Status string
	Line   entity.SaleLine
	Reason string
}

// ImportMetrics métricas agregadas del lote confirmado.
type ImportMetrics struct {
	TotalQuantity int64
	AverageDaily  float64
	AnnualDemand  float64
	DaysOfData    int
	DateFrom      time.Time
	DateTo        time.Time
}

// ImportReport reporte a nivel de lote: qué se confirmó, qué se descartó y por
// qué, qué stock cambió y qué parámetros EOQ se recalcularon. Un resultado con
// cero confirmadas siempre viene acompañado de la razón (filas descartadas).
type ImportReport struct {
	BatchID                string
	Committed              int
	DroppedUnknownProduct  int
	DroppedInvalidQuantity int
	DroppedInvalidDate     int
	Rows                   []RowResult
	Deductions             []entity.StockDeductionRecord
	Metrics                ImportMetrics
	EOQResults             []*entity.EOQResult
}

// ImportUseCase orquesta el pipeline de importación de ventas POS:
// validación de existencia → conciliación de stock (todo-o-nada) →
// agregación de demanda → recalculación EOQ dirigida. Procesamiento síncrono
// por lote, dentro del alcance de la petición.
type ImportUseCase struct {
	validator  *ExistenceValidator
	engine     *ReconcileEngine
	aggregator *DemandAggregator
	scheduler  *RecalcScheduler
	tracker    *BatchTracker
	costs      CostInputs
	log        *logger.Logger
}

// NewImportUseCase construye el caso de uso. defaultCosts son los costos EOQ
// usados cuando el caller no los sobreescribe.
func NewImportUseCase(
	validator *ExistenceValidator,
	engine *ReconcileEngine,
	aggregator *DemandAggregator,
	scheduler *RecalcScheduler,
	tracker *BatchTracker,
	defaultCosts CostInputs,
	log *logger.Logger,
) *ImportUseCase {
	return &ImportUseCase{
		validator:  validator,
		engine:     engine,
		aggregator: aggregator,
		scheduler:  scheduler,
		tracker:    tracker,
		costs:      defaultCosts,
		log:        log,
	}
}

// Import procesa un lote completo. costs nil usa los defaults de
// configuración. Devuelve error solo cuando el lote entero se rechaza
// (violación de stock o fallo de persistencia); las filas descartadas por
// producto desconocido, cantidad inválida o fecha ilegible se reportan, no
// abortan.
func (uc *ImportUseCase) Import(ctx context.Context, lines []entity.SaleLine, costs *CostInputs) (*ImportReport, error) {
	effective := uc.costs
	if costs != nil {
		effective = *costs
	}

	rows := make([]RowResult, len(lines))
	candidates := make([]entity.SaleLine, 0, len(lines))
	candidateIdx := make([]int, 0, len(lines))
	invalidQty, invalidDate := 0, 0
	for i, line := range lines {
		rows[i] = RowResult{Index: i, Line: line}
		switch {
		case line.Quantity <= 0:
			rows[i].Status = entity.RowStatusDroppedInvalidQuantity
			if line.ProductID <= 0 || line.BranchID <= 0 {
				rows[i].Reason = fmt.Sprintf("identificador de producto o sucursal ilegible (producto %d, sucursal %d)",
					line.ProductID, line.BranchID)
			} else {
				rows[i].Reason = fmt.Sprintf("cantidad %d fuera de rango", line.Quantity)
			}
			invalidQty++
			continue
		case line.TransactionTime.IsZero():
			// Una fecha ilegible contaminaría los buckets de demanda y el
			// rango de fechas del lote; la fila se descarta, no se corrige.
			rows[i].Status = entity.RowStatusDroppedInvalidDate
			rows[i].Reason = "fecha de transacción ilegible o ausente"
			invalidDate++
			continue
		}
		candidates = append(candidates, line)
		candidateIdx = append(candidateIdx, i)
	}

	keys := make([]entity.ProductBranchKey, 0, len(candidates))
	for _, line := range candidates {
		keys = append(keys, line.Key())
	}
	valid, missing := uc.validator.Validate(ctx, keys)

	accepted := make([]entity.SaleLine, 0, len(candidates))
	unknown := 0
	for j, line := range candidates {
		i := candidateIdx[j]
		if _, ok := valid[line.Key()]; !ok {
			rows[i].Status = entity.RowStatusDroppedUnknownProduct
			rows[i].Reason = fmt.Sprintf("producto %d no existe en la sucursal %d", line.ProductID, line.BranchID)
			unknown++
			continue
		}
		rows[i].Status = entity.RowStatusAccepted
		accepted = append(accepted, line)
	}
	if unknown > 0 {
		uc.log.Warn().Int("dropped", unknown).Int("missing_keys", len(missing)).
			Msg("filas descartadas por producto desconocido")
	}

	outcome, err := uc.engine.Reconcile(ctx, accepted)
	if err != nil {
		return nil, err
	}

	if _, err := uc.aggregator.Aggregate(ctx, accepted); err != nil {
		return nil, err
	}

	eoqResults, err := uc.scheduler.Recalculate(ctx, outcome.Keys, accepted, effective)
	if err != nil {
		return nil, err
	}

	report := &ImportReport{
		BatchID:                outcome.BatchID,
		Committed:              outcome.Committed,
		DroppedUnknownProduct:  unknown,
		DroppedInvalidQuantity: invalidQty,
		DroppedInvalidDate:     invalidDate,
		Rows:                   rows,
		Deductions:             outcome.Deductions,
		Metrics:                buildMetrics(accepted),
		EOQResults:             eoqResults,
	}

	uc.log.Info().
		Str("batch_id", report.BatchID).
		Int("committed", report.Committed).
		Int("dropped_unknown", unknown).
		Int("dropped_invalid", invalidQty).
		Int("dropped_undated", invalidDate).
		Msg("importación de ventas completada")
	return report, nil
}

// LookupBatch delega en el tracker la consulta de auditoría por lote.
func (uc *ImportUseCase) LookupBatch(ctx context.Context, batchID string) ([]entity.StockDeductionRecord, error) {
	return uc.tracker.LookupBatch(ctx, batchID)
}

func buildMetrics(accepted []entity.SaleLine) ImportMetrics {
	if len(accepted) == 0 {
		return ImportMetrics{}
	}
	var total int64
	minT, maxT := accepted[0].TransactionTime, accepted[0].TransactionTime
	for _, l := range accepted {
		total += l.Quantity
		if l.TransactionTime.Before(minT) {
			minT = l.TransactionTime
		}
		if l.TransactionTime.After(maxT) {
			maxT = l.TransactionTime
		}
	}
	days := spanDays(accepted)
	m := ImportMetrics{
		TotalQuantity: total,
		DaysOfData:    days,
		DateFrom:      minT,
		DateTo:        maxT,
	}
	if days > 0 {
		m.AverageDaily = float64(total) / float64(days)
		m.AnnualDemand = m.AverageDaily * 365
	}
	return m
}
