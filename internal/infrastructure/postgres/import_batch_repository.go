package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tu-usuario/retail-analytics/internal/domain"
	"github.com/tu-usuario/retail-analytics/internal/domain/entity"
	"github.com/tu-usuario/retail-analytics/internal/domain/repository"
)

var _ repository.ImportBatchRepository = (*ImportBatchRepo)(nil)

// ImportBatchRepo registro append-only de lotes importados con sus
// deducciones de stock.
type ImportBatchRepo struct {
	q Querier
}

// NewImportBatchRepository construye el adaptador. Pasar pool o tx (Querier).
func NewImportBatchRepository(q Querier) *ImportBatchRepo {
	return &ImportBatchRepo{q: q}
}

// Save persiste el lote y sus deducciones. Un batch_id repetido es ErrDuplicate.
func (r *ImportBatchRepo) Save(ctx context.Context, batch *entity.ImportBatch) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO import_batches (batch_id, created_at) VALUES ($1, $2)`,
		batch.BatchID, batch.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("lote %s: %w", batch.BatchID, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert import batch: %w", err)
	}

	dedQuery := `
		INSERT INTO stock_deductions (batch_id, product_id, branch_id, quantity_deducted, previous_quantity, updated_quantity)
		VALUES ($1, $2, $3, $4, $5, $6)`
	for _, d := range batch.Deductions {
		_, err := r.q.Exec(ctx, dedQuery,
			batch.BatchID, d.ProductID, d.BranchID,
			d.QuantityDeducted, d.PreviousQuantity, d.UpdatedQuantity,
		)
		if err != nil {
			return fmt.Errorf("insert stock deduction: %w", err)
		}
	}
	return nil
}

// GetByID devuelve el lote con sus deducciones, o nil si no existe.
func (r *ImportBatchRepo) GetByID(ctx context.Context, batchID string) (*entity.ImportBatch, error) {
	batch := &entity.ImportBatch{BatchID: batchID}
	err := r.q.QueryRow(ctx,
		`SELECT created_at FROM import_batches WHERE batch_id = $1`, batchID,
	).Scan(&batch.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get import batch: %w", err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT product_id, branch_id, quantity_deducted, previous_quantity, updated_quantity
		FROM stock_deductions
		WHERE batch_id = $1
		ORDER BY product_id, branch_id`, batchID)
	if err != nil {
		return nil, fmt.Errorf("list stock deductions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d entity.StockDeductionRecord
		if err := rows.Scan(&d.ProductID, &d.BranchID, &d.QuantityDeducted, &d.PreviousQuantity, &d.UpdatedQuantity); err != nil {
			return nil, fmt.Errorf("scan stock deduction: %w", err)
		}
		batch.Deductions = append(batch.Deductions, d)
	}
	return batch, rows.Err()
}
