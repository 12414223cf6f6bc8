package repository

import (
	"context"

	"github.com/tu-usuario/retail-analytics/internal/domain/entity"
)

// ImportBatchRepository define el puerto del registro de lotes importados.
// Append-only: un lote se guarda una vez al confirmarse y es de solo lectura
// después (superficie de auditoría).
type ImportBatchRepository interface {
	Save(ctx context.Context, batch *entity.ImportBatch) error
	GetByID(ctx context.Context, batchID string) (*entity.ImportBatch, error)
}
