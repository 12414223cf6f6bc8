package importer

import (
	"context"

	"github.com/tu-usuario/retail-analytics/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza la atomicidad del motor de
// conciliación: o todas las deducciones del lote quedan aplicadas, o ninguna.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		stockRepo repository.StockRepository,
		salesRepo repository.SalesRepository,
		batchRepo repository.ImportBatchRepository,
	) error) error
}
