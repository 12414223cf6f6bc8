package importer

import (
	"context"
	"fmt"

	"github.com/tu-usuario/retail-analytics/internal/domain"
	"github.com/tu-usuario/retail-analytics/internal/domain/entity"
	"github.com/tu-usuario/retail-analytics/internal/domain/repository"
)

// BatchTracker expone la superficie de auditoría: para un identificador de
// lote, reconstruye qué stock cambió y en cuánto. Solo lectura; los lotes son
// append-only y seguros para lecturas concurrentes una vez confirmados.
type BatchTracker struct {
	batchRepo repository.ImportBatchRepository
}

// NewBatchTracker construye el tracker.
func NewBatchTracker(batchRepo repository.ImportBatchRepository) *BatchTracker {
	return &BatchTracker{batchRepo: batchRepo}
}

// LookupBatch devuelve las deducciones de stock registradas para el lote:
// por llave, cantidad deducida y cantidades antes/después.
func (t *BatchTracker) LookupBatch(ctx context.Context, batchID string) ([]entity.StockDeductionRecord, error) {
	batch, err := t.batchRepo.GetByID(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("buscar lote %s: %w", batchID, err)
	}
	if batch == nil {
		return nil, fmt.Errorf("lote %s: %w", batchID, domain.ErrNotFound)
	}
	return batch.Deductions, nil
}
