package repository

import (
	"context"

	"github.com/tu-usuario/retail-analytics/internal/domain/entity"
)

// SalesRepository define el puerto de persistencia de líneas de venta crudas.
type SalesRepository interface {
	// InsertLines inserta las líneas del lote y devuelve cuántas quedaron
	// persistidas.
	InsertLines(ctx context.Context, lines []entity.SaleLine) (int, error)
}
