package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tu-usuario/retail-analytics/internal/domain/entity"
	"github.com/tu-usuario/retail-analytics/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get obtiene el stock actual de una llave (producto, sucursal). Llave
// ausente se reporta con cantidad 0, igual que el resto de backends.
func (r *StockRepo) Get(ctx context.Context, key entity.ProductBranchKey) (*entity.Stock, error) {
	query := `
		SELECT product_id, branch_id, quantity, updated_at
		FROM stock WHERE product_id = $1 AND branch_id = $2`
	return r.scanOne(ctx, query, key)
}

// GetForUpdate obtiene el stock y bloquea la fila (SELECT FOR UPDATE). Los
// bloqueos deben tomarse en orden determinista de llave para evitar deadlocks
// entre lotes concurrentes.
func (r *StockRepo) GetForUpdate(ctx context.Context, key entity.ProductBranchKey) (*entity.Stock, error) {
	query := `
		SELECT product_id, branch_id, quantity, updated_at
		FROM stock WHERE product_id = $1 AND branch_id = $2
		FOR UPDATE`
	return r.scanOne(ctx, query, key)
}

// CompareAndDecrement resta delta solo si la cantidad actual coincide con
// expected. El WHERE garantiza que un decremento sobre una lectura
// desactualizada no afecte filas.
func (r *StockRepo) CompareAndDecrement(ctx context.Context, key entity.ProductBranchKey, expected, delta int64) (bool, error) {
	query := `
		UPDATE stock
		SET quantity = quantity - $4, updated_at = now()
		WHERE product_id = $1 AND branch_id = $2 AND quantity = $3`
	tag, err := r.q.Exec(ctx, query, key.ProductID, key.BranchID, expected, delta)
	if err != nil {
		return false, fmt.Errorf("decrement stock: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *StockRepo) scanOne(ctx context.Context, query string, key entity.ProductBranchKey) (*entity.Stock, error) {
	var s entity.Stock
	err := r.q.QueryRow(ctx, query, key.ProductID, key.BranchID).Scan(
		&s.ProductID, &s.BranchID, &s.Quantity, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.Stock{ProductID: key.ProductID, BranchID: key.BranchID}, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return &s, nil
}
