package repository

import (
	"context"
	"time"

	"github.com/tu-usuario/retail-analytics/internal/domain/entity"
)

// DemandRepository define el puerto sobre el historial de demanda agregada.
// Llave: (producto, sucursal, período). Upsert: re-importar reemplaza, nunca
// duplica.
type DemandRepository interface {
	UpsertBuckets(ctx context.Context, buckets []entity.DemandHistoryBucket) error

	// ListByKey devuelve los buckets de una llave en [from, to], ordenados por
	// período ascendente.
	ListByKey(ctx context.Context, key entity.ProductBranchKey, from, to time.Time) ([]entity.DemandHistoryBucket, error)
}
