package importer

import (
	"context"

	"github.com/tu-usuario/retail-analytics/internal/domain/entity"
	"github.com/tu-usuario/retail-analytics/internal/domain/repository"
	"github.com/tu-usuario/retail-analytics/pkg/logger"
)

// ExistenceValidator resuelve qué llaves (producto, sucursal) de un lote
// existen en el catálogo maestro. Consulta pura, sin efectos.
//
// Política de fallo: un error del catálogo se trata como "llave no encontrada"
// (fail-closed). Una caída transitoria del catálogo degrada a descartar filas
// con advertencia, nunca a corromper stock ni a abortar el lote.
type ExistenceValidator struct {
	catalog repository.CatalogRepository
	log     *logger.Logger
}

// NewExistenceValidator construye el validador.
func NewExistenceValidator(catalog repository.CatalogRepository, log *logger.Logger) *ExistenceValidator {
	return &ExistenceValidator{catalog: catalog, log: log}
}

// Validate devuelve el set de llaves existentes y la lista de faltantes, en el
// orden de primera aparición. El caller debe descartar (con advertencia) toda
// SaleLine cuya llave no esté en el set válido.
func (v *ExistenceValidator) Validate(ctx context.Context, keys []entity.ProductBranchKey) (map[entity.ProductBranchKey]struct{}, []entity.ProductBranchKey) {
	if len(keys) == 0 {
		return map[entity.ProductBranchKey]struct{}{}, nil
	}

	valid, err := v.catalog.Exists(ctx, keys)
	if err != nil {
		// Fail-closed: sin catálogo, ninguna llave se da por existente
		v.log.Warn().Err(err).Int("keys", len(keys)).
			Msg("consulta al catálogo falló; todas las llaves del lote se tratan como no encontradas")
		valid = map[entity.ProductBranchKey]struct{}{}
	}

	var missing []entity.ProductBranchKey
	seen := make(map[entity.ProductBranchKey]struct{}, len(keys))
	for _, k := range keys {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		if _, ok := valid[k]; !ok {
			missing = append(missing, k)
		}
	}
	return valid, missing
}
