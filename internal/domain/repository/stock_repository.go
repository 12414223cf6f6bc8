package repository

import (
	"context"

	"github.com/tu-usuario/retail-analytics/internal/domain/entity"
)

// StockRepository define el puerto sobre el ledger de stock (producto+sucursal).
// La fila es propiedad del subsistema de catálogo: aquí solo se lee y se
// decrementa condicionalmente, nunca se crea ni se elimina.
type StockRepository interface {
	Get(ctx context.Context, key entity.ProductBranchKey) (*entity.Stock, error)

	// GetForUpdate bloquea la fila para update (SELECT FOR UPDATE en Postgres).
	// Usado dentro de la transacción de conciliación para serializar el acceso
	// por llave.
	GetForUpdate(ctx context.Context, key entity.ProductBranchKey) (*entity.Stock, error)

	// CompareAndDecrement resta delta solo si la cantidad actual coincide con
	// expected. Devuelve false sin mutar cuando la comparación falla.
	CompareAndDecrement(ctx context.Context, key entity.ProductBranchKey, expected, delta int64) (bool, error)
}
