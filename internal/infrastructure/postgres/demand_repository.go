package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/tu-usuario/retail-analytics/internal/domain/entity"
	"github.com/tu-usuario/retail-analytics/internal/domain/repository"
)

var _ repository.DemandRepository = (*DemandRepo)(nil)

// DemandRepo persistencia del historial de demanda agregada por
// (producto, sucursal, día).
type DemandRepo struct {
	q Querier
}

// NewDemandRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDemandRepository(q Querier) *DemandRepo {
	return &DemandRepo{q: q}
}

// UpsertBuckets inserta o reemplaza los buckets por su llave natural.
// Re-importar el mismo período sobreescribe, nunca duplica.
func (r *DemandRepo) UpsertBuckets(ctx context.Context, buckets []entity.DemandHistoryBucket) error {
	query := `
		INSERT INTO demand_history (product_id, branch_id, period_date, quantity_sold, revenue, avg_price, source, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (product_id, branch_id, period_date)
		DO UPDATE SET quantity_sold = EXCLUDED.quantity_sold,
		              revenue = EXCLUDED.revenue,
		              avg_price = EXCLUDED.avg_price,
		              source = EXCLUDED.source`
	for _, b := range buckets {
		_, err := r.q.Exec(ctx, query,
			b.ProductID, b.BranchID, b.PeriodDate, b.QuantitySold,
			b.Revenue, b.AvgPrice, b.Source, b.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("upsert demand bucket: %w", err)
		}
	}
	return nil
}

// ListByKey devuelve los buckets de una llave en [from, to], ordenados por
// período ascendente.
func (r *DemandRepo) ListByKey(ctx context.Context, key entity.ProductBranchKey, from, to time.Time) ([]entity.DemandHistoryBucket, error) {
	query := `
		SELECT product_id, branch_id, period_date, quantity_sold, revenue, avg_price, source, created_at
		FROM demand_history
		WHERE product_id = $1 AND branch_id = $2 AND period_date BETWEEN $3 AND $4
		ORDER BY period_date`
	rows, err := r.q.Query(ctx, query, key.ProductID, key.BranchID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list demand history: %w", err)
	}
	defer rows.Close()

	var out []entity.DemandHistoryBucket
	for rows.Next() {
		var b entity.DemandHistoryBucket
		if err := rows.Scan(
			&b.ProductID, &b.BranchID, &b.PeriodDate, &b.QuantitySold,
			&b.Revenue, &b.AvgPrice, &b.Source, &b.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan demand bucket: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
