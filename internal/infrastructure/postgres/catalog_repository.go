package postgres

import (
	"context"
	"fmt"

	"github.com/tu-usuario/retail-analytics/internal/domain/entity"
	"github.com/tu-usuario/retail-analytics/internal/domain/repository"
)

var _ repository.CatalogRepository = (*CatalogRepo)(nil)

// CatalogRepo consulta de solo lectura contra el catálogo maestro de
// productos por sucursal.
type CatalogRepo struct {
	q Querier
}

// NewCatalogRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCatalogRepository(q Querier) *CatalogRepo {
	return &CatalogRepo{q: q}
}

// Exists resuelve en una sola consulta cuáles llaves del lote existen en el
// catálogo, usando arrays paralelos con unnest.
func (r *CatalogRepo) Exists(ctx context.Context, keys []entity.ProductBranchKey) (map[entity.ProductBranchKey]struct{}, error) {
	if len(keys) == 0 {
		return map[entity.ProductBranchKey]struct{}{}, nil
	}
	productIDs, branchIDs := splitKeys(keys)

	query := `
		SELECT c.product_id, c.branch_id
		FROM product_catalog c
		JOIN unnest($1::bigint[], $2::bigint[]) AS k(product_id, branch_id)
		  ON c.product_id = k.product_id AND c.branch_id = k.branch_id`
	rows, err := r.q.Query(ctx, query, productIDs, branchIDs)
	if err != nil {
		return nil, fmt.Errorf("exists catalog: %w", err)
	}
	defer rows.Close()

	out := make(map[entity.ProductBranchKey]struct{}, len(keys))
	for rows.Next() {
		var k entity.ProductBranchKey
		if err := rows.Scan(&k.ProductID, &k.BranchID); err != nil {
			return nil, fmt.Errorf("scan catalog key: %w", err)
		}
		out[k] = struct{}{}
	}
	return out, rows.Err()
}

// CurrentStock devuelve la cantidad disponible por llave. Llaves sin fila de
// stock se omiten del mapa.
func (r *CatalogRepo) CurrentStock(ctx context.Context, keys []entity.ProductBranchKey) (map[entity.ProductBranchKey]int64, error) {
	if len(keys) == 0 {
		return map[entity.ProductBranchKey]int64{}, nil
	}
	productIDs, branchIDs := splitKeys(keys)

	query := `
		SELECT s.product_id, s.branch_id, s.quantity
		FROM stock s
		JOIN unnest($1::bigint[], $2::bigint[]) AS k(product_id, branch_id)
		  ON s.product_id = k.product_id AND s.branch_id = k.branch_id`
	rows, err := r.q.Query(ctx, query, productIDs, branchIDs)
	if err != nil {
		return nil, fmt.Errorf("current stock: %w", err)
	}
	defer rows.Close()

	out := make(map[entity.ProductBranchKey]int64, len(keys))
	for rows.Next() {
		var k entity.ProductBranchKey
		var qty int64
		if err := rows.Scan(&k.ProductID, &k.BranchID, &qty); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		out[k] = qty
	}
	return out, rows.Err()
}

func splitKeys(keys []entity.ProductBranchKey) (productIDs, branchIDs []int64) {
	productIDs = make([]int64, len(keys))
	branchIDs = make([]int64, len(keys))
	for i, k := range keys {
		productIDs[i] = k.ProductID
		branchIDs[i] = k.BranchID
	}
	return productIDs, branchIDs
}
