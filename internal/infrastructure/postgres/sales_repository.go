package postgres

import (
	"context"
	"fmt"

	"github.com/tu-usuario/retail-analytics/internal/domain/entity"
	"github.com/tu-usuario/retail-analytics/internal/domain/repository"
)

var _ repository.SalesRepository = (*SalesRepo)(nil)

// SalesRepo persistencia de líneas de venta crudas. Append-only.
type SalesRepo struct {
	q Querier
}

// NewSalesRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSalesRepository(q Querier) *SalesRepo {
	return &SalesRepo{q: q}
}

// InsertLines inserta las líneas del lote y devuelve cuántas quedaron
// persistidas.
func (r *SalesRepo) InsertLines(ctx context.Context, lines []entity.SaleLine) (int, error) {
	query := `
		INSERT INTO sale_lines (batch_id, product_id, branch_id, quantity, transaction_time, unit_price, total_amount, payment_method)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	inserted := 0
	for _, l := range lines {
		_, err := r.q.Exec(ctx, query,
			l.BatchID, l.ProductID, l.BranchID, l.Quantity,
			l.TransactionTime, l.UnitPrice, l.TotalAmount, l.PaymentMethod,
		)
		if err != nil {
			return inserted, fmt.Errorf("insert sale line: %w", err)
		}
		inserted++
	}
	return inserted, nil
}
