package repository

import (
	"context"

	"github.com/tu-usuario/retail-analytics/internal/domain/entity"
)

// EOQResultRepository define el puerto de persistencia de resultados EOQ.
// A lo más un resultado vivo por llave (producto, sucursal): upsert siempre,
// sea el resultado válido o invalid_inputs.
type EOQResultRepository interface {
	UpsertResult(ctx context.Context, result *entity.EOQResult) error
	GetByKey(ctx context.Context, key entity.ProductBranchKey) (*entity.EOQResult, error)

	// List devuelve resultados recientes; branchID nil = todas las sucursales.
	List(ctx context.Context, branchID *int64, limit int) ([]*entity.EOQResult, error)
}
