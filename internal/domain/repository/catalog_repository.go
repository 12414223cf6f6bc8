package repository

import (
	"context"

	"github.com/tu-usuario/retail-analytics/internal/domain/entity"
)

// CatalogRepository define el puerto de consulta contra el catálogo maestro de
// productos (colaborador externo). Solo lectura: el motor de conciliación nunca
// crea ni elimina productos.
type CatalogRepository interface {
	// Exists resuelve cuáles de las llaves (producto, sucursal) existen en el
	// catálogo. Devuelve el subconjunto existente como set.
	Exists(ctx context.Context, keys []entity.ProductBranchKey) (map[entity.ProductBranchKey]struct{}, error)

	// CurrentStock devuelve la cantidad disponible actual por llave. Las llaves
	// no encontradas se omiten del mapa.
	CurrentStock(ctx context.Context, keys []entity.ProductBranchKey) (map[entity.ProductBranchKey]int64, error)
}
