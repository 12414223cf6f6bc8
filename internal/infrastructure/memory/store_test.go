package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/retail-analytics/internal/domain/entity"
	"github.com/tu-usuario/retail-analytics/internal/domain/repository"
	"github.com/tu-usuario/retail-analytics/internal/infrastructure/memory"
)

func TestStore_CompareAndDecrement(t *testing.T) {
	store := memory.NewStore()
	key := entity.ProductBranchKey{ProductID: 1, BranchID: 1}
	store.SeedProduct(key, 10)
	ctx := context.Background()

	ok, err := store.CompareAndDecrement(ctx, key, 10, 4)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(6), store.StockQuantity(key))

	// Expected desactualizado: el CAS rechaza sin mutar
	ok, err = store.CompareAndDecrement(ctx, key, 10, 4)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int64(6), store.StockQuantity(key))

	// Llave inexistente
	ok, err = store.CompareAndDecrement(ctx, entity.ProductBranchKey{ProductID: 99, BranchID: 1}, 0, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_RunRollback(t *testing.T) {
	store := memory.NewStore()
	key := entity.ProductBranchKey{ProductID: 1, BranchID: 1}
	store.SeedProduct(key, 10)
	ctx := context.Background()

	boom := errors.New("boom")
	err := store.Run(ctx, func(
		stockRepo repository.StockRepository,
		salesRepo repository.SalesRepository,
		batchRepo repository.ImportBatchRepository,
	) error {
		ok, err := stockRepo.CompareAndDecrement(ctx, key, 10, 3)
		require.NoError(t, err)
		require.True(t, ok)
		_, err = salesRepo.InsertLines(ctx, []entity.SaleLine{{ProductID: 1, BranchID: 1, Quantity: 3}})
		require.NoError(t, err)
		require.NoError(t, batchRepo.Save(ctx, &entity.ImportBatch{BatchID: "b1"}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	// Todo revertido
	assert.Equal(t, int64(10), store.StockQuantity(key))
	batch, err := store.GetByID(ctx, "b1")
	require.NoError(t, err)
	assert.Nil(t, batch)
}

func TestStore_ListByKeyOrdenaPorPeriodo(t *testing.T) {
	store := memory.NewStore()
	key := entity.ProductBranchKey{ProductID: 7, BranchID: 2}
	ctx := context.Background()

	d := func(day int) time.Time { return time.Date(2024, 5, day, 0, 0, 0, 0, time.UTC) }
	require.NoError(t, store.UpsertBuckets(ctx, []entity.DemandHistoryBucket{
		{ProductID: 7, BranchID: 2, PeriodDate: d(20), QuantitySold: 3},
		{ProductID: 7, BranchID: 2, PeriodDate: d(10), QuantitySold: 1},
		{ProductID: 7, BranchID: 2, PeriodDate: d(15), QuantitySold: 2},
		{ProductID: 8, BranchID: 2, PeriodDate: d(12), QuantitySold: 9}, // otra llave
	}))

	got, err := store.ListByKey(ctx, key, d(1), d(31))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, int64(1), got[0].QuantitySold)
	assert.Equal(t, int64(2), got[1].QuantitySold)
	assert.Equal(t, int64(3), got[2].QuantitySold)
}
