package importer

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/retail-analytics/internal/domain"
	"github.com/tu-usuario/retail-analytics/internal/domain/entity"
	"github.com/tu-usuario/retail-analytics/internal/domain/repository"
	"github.com/tu-usuario/retail-analytics/pkg/logger"
)

// ReconcileOutcome resultado de una conciliación confirmada.
type ReconcileOutcome struct {
	BatchID    string
	Committed  int
	Deductions []entity.StockDeductionRecord
	Keys       []entity.ProductBranchKey
}

// ReconcileEngine aplica un lote de ventas contra el ledger de stock con
// semántica todo-o-nada por lote:
//
//  1. Agrupa el lote por llave (producto, sucursal) sumando cantidades.
//  2. Dentro de una transacción, bloquea cada fila (SELECT FOR UPDATE) y
//     proyecta la cantidad resultante.
//  3. Si alguna proyección queda negativa, aborta el lote completo con el
//     detalle por llave; ninguna fila se muta.
//  4. Solo con cero violaciones aplica todos los decrementos y persiste las
//     líneas de venta y el registro del lote.
//
// Una deducción fila a fila podría dejar stock inconsistente si la fila N
// falla con las filas 1..N-1 ya aplicadas; este diseño hace el fallo parcial
// imposible por construcción.
type ReconcileEngine struct {
	txRunner TxRunner
	log      *logger.Logger
}

// NewReconcileEngine construye el motor.
func NewReconcileEngine(txRunner TxRunner, log *logger.Logger) *ReconcileEngine {
	return &ReconcileEngine{txRunner: txRunner, log: log}
}

// Reconcile valida y aplica el lote. Las líneas deben venir ya filtradas por
// el validador de existencia; las llaves desconocidas que aun así lleguen se
// tratan como violación (current = 0, projected = -Δ). Un lote sin llaves
// válidas confirma trivialmente con Committed = 0.
func (e *ReconcileEngine) Reconcile(ctx context.Context, batch []entity.SaleLine) (*ReconcileOutcome, error) {
	batchID := uuid.New().String()
	now := time.Now().UTC()

	deltas := make(map[entity.ProductBranchKey]int64)
	keys := make([]entity.ProductBranchKey, 0)
	for _, line := range batch {
		k := line.Key()
		if _, ok := deltas[k]; !ok {
			keys = append(keys, k)
		}
		deltas[k] += line.Quantity
	}
	// Orden determinista de bloqueo: evita deadlocks entre lotes concurrentes
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].ProductID != keys[j].ProductID {
			return keys[i].ProductID < keys[j].ProductID
		}
		return keys[i].BranchID < keys[j].BranchID
	})

	outcome := &ReconcileOutcome{BatchID: batchID, Keys: keys}

	err := e.txRunner.Run(ctx, func(
		stockRepo repository.StockRepository,
		salesRepo repository.SalesRepository,
		batchRepo repository.ImportBatchRepository,
	) error {
		var violations []domain.StockViolation
		current := make(map[entity.ProductBranchKey]int64, len(keys))

		for _, k := range keys {
			stock, err := stockRepo.GetForUpdate(ctx, k)
			if err != nil {
				return fmt.Errorf("leer stock %d/%d: %w", k.ProductID, k.BranchID, err)
			}
			qty := int64(0)
			if stock != nil {
				qty = stock.Quantity
			}
			current[k] = qty
			if projected := qty - deltas[k]; projected < 0 {
				violations = append(violations, domain.StockViolation{
					ProductID: k.ProductID,
					BranchID:  k.BranchID,
					Current:   qty,
					Requested: deltas[k],
					Projected: projected,
				})
			}
		}

		// Decisión a nivel de lote: una sola violación rechaza todo
		if len(violations) > 0 {
			return &domain.StockViolationError{Violations: violations}
		}

		deductions := make([]entity.StockDeductionRecord, 0, len(keys))
		for _, k := range keys {
			ok, err := stockRepo.CompareAndDecrement(ctx, k, current[k], deltas[k])
			if err != nil {
				return fmt.Errorf("decrementar stock %d/%d: %w", k.ProductID, k.BranchID, err)
			}
			if !ok {
				// Bajo FOR UPDATE no debería ocurrir; en backend CAS significa
				// que otro lote tocó la llave entre lectura y escritura
				return fmt.Errorf("conflicto concurrente en %d/%d: %w", k.ProductID, k.BranchID, domain.ErrPersistenceUnavailable)
			}
			deductions = append(deductions, entity.StockDeductionRecord{
				ProductID:        k.ProductID,
				BranchID:         k.BranchID,
				QuantityDeducted: deltas[k],
				PreviousQuantity: current[k],
				UpdatedQuantity:  current[k] - deltas[k],
			})
		}

		if len(batch) > 0 {
			if _, err := salesRepo.InsertLines(ctx, stampBatchID(batch, batchID)); err != nil {
				return fmt.Errorf("insertar líneas de venta: %w", err)
			}
		}
		if err := batchRepo.Save(ctx, &entity.ImportBatch{
			BatchID:    batchID,
			Deductions: deductions,
			CreatedAt:  now,
		}); err != nil {
			return fmt.Errorf("guardar lote: %w", err)
		}

		outcome.Committed = len(batch)
		outcome.Deductions = deductions
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.Info().
		Str("batch_id", batchID).
		Int("committed", outcome.Committed).
		Int("keys", len(keys)).
		Msg("lote conciliado")
	return outcome, nil
}

// stampBatchID devuelve una copia de las líneas con el BatchID asignado; la
// entrada nunca se muta.
func stampBatchID(lines []entity.SaleLine, batchID string) []entity.SaleLine {
	out := make([]entity.SaleLine, len(lines))
	copy(out, lines)
	for i := range out {
		out[i].BatchID = batchID
	}
	return out
}
