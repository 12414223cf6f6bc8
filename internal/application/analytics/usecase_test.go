package analytics_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/retail-analytics/internal/application/analytics"
	"github.com/tu-usuario/retail-analytics/internal/domain"
	"github.com/tu-usuario/retail-analytics/internal/domain/entity"
	"github.com/tu-usuario/retail-analytics/internal/domain/eoq"
	"github.com/tu-usuario/retail-analytics/internal/infrastructure/memory"
	"github.com/tu-usuario/retail-analytics/pkg/logger"
)

func buildUseCase(store *memory.Store) *analytics.UseCase {
	return analytics.NewUseCase(store, store, store, logger.Nop())
}

func day(d int) time.Time {
	return time.Date(2024, 6, d, 0, 0, 0, 0, time.UTC)
}

// ──────────────────────────────────────────────────────────────────────────────
// Forecast sobre historial persistido
// ──────────────────────────────────────────────────────────────────────────────

func TestForecast_SobreHistorial(t *testing.T) {
	store := memory.NewStore()
	uc := buildUseCase(store)
	key := entity.ProductBranchKey{ProductID: 1001, BranchID: 1}
	ctx := context.Background()

	require.NoError(t, store.UpsertBuckets(ctx, []entity.DemandHistoryBucket{
		{ProductID: 1001, BranchID: 1, PeriodDate: day(1), QuantitySold: 10},
		{ProductID: 1001, BranchID: 1, PeriodDate: day(2), QuantitySold: 20},
		{ProductID: 1001, BranchID: 1, PeriodDate: day(3), QuantitySold: 30},
		{ProductID: 1001, BranchID: 1, PeriodDate: day(4), QuantitySold: 40},
	}))

	f, err := uc.Forecast(ctx, key, day(1), day(30), 2, entity.ForecastMethodMovingAverage)
	require.NoError(t, err)
	require.Len(t, f.Forecasts, 2)
	// Historia [10,20,30,40]: base = media móvil(3) final = 30, tendencia 7.5
	assert.InDelta(t, 30.0, f.BaseForecast, 1e-9)
	assert.InDelta(t, 7.5, f.Trend, 1e-9)
	assert.InDelta(t, 37.5, f.Forecasts[0], 1e-9)
}

func TestForecast_HistoriaInsuficiente(t *testing.T) {
	store := memory.NewStore()
	uc := buildUseCase(store)
	key := entity.ProductBranchKey{ProductID: 1001, BranchID: 1}
	ctx := context.Background()

	require.NoError(t, store.UpsertBuckets(ctx, []entity.DemandHistoryBucket{
		{ProductID: 1001, BranchID: 1, PeriodDate: day(1), QuantitySold: 10},
	}))

	_, err := uc.Forecast(ctx, key, day(1), day(30), 3, entity.ForecastMethodExponential)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientData))
}

// El rango de fechas acota el historial: buckets fuera de rango no cuentan.
func TestForecast_RespetaRango(t *testing.T) {
	store := memory.NewStore()
	uc := buildUseCase(store)
	key := entity.ProductBranchKey{ProductID: 1001, BranchID: 1}
	ctx := context.Background()

	require.NoError(t, store.UpsertBuckets(ctx, []entity.DemandHistoryBucket{
		{ProductID: 1001, BranchID: 1, PeriodDate: day(1), QuantitySold: 999},
		{ProductID: 1001, BranchID: 1, PeriodDate: day(10), QuantitySold: 10},
		{ProductID: 1001, BranchID: 1, PeriodDate: day(11), QuantitySold: 10},
	}))

	f, err := uc.Forecast(ctx, key, day(10), day(30), 1, entity.ForecastMethodExponential)
	require.NoError(t, err)
	// Serie plana [10,10]: la proyección se queda en 10
	assert.InDelta(t, 10.0, f.Forecasts[0], 1e-9)
}

// ──────────────────────────────────────────────────────────────────────────────
// Resultados EOQ persistidos y salud
// ──────────────────────────────────────────────────────────────────────────────

func TestListEOQResults_FiltraPorSucursal(t *testing.T) {
	store := memory.NewStore()
	uc := buildUseCase(store)
	ctx := context.Background()

	require.NoError(t, store.UpsertResult(ctx, &entity.EOQResult{ProductID: 1, BranchID: 1, Status: entity.EOQStatusValid}))
	require.NoError(t, store.UpsertResult(ctx, &entity.EOQResult{ProductID: 2, BranchID: 2, Status: entity.EOQStatusValid}))

	branch := int64(1)
	results, err := uc.ListEOQResults(ctx, &branch, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, int64(1), results[0].ProductID)

	all, err := uc.ListEOQResults(ctx, nil, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestGetEOQResult_NoExiste(t *testing.T) {
	store := memory.NewStore()
	uc := buildUseCase(store)

	_, err := uc.GetEOQResult(context.Background(), entity.ProductBranchKey{ProductID: 1, BranchID: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestHealth_EstadoCritico(t *testing.T) {
	store := memory.NewStore()
	uc := buildUseCase(store)
	ctx := context.Background()
	key := entity.ProductBranchKey{ProductID: 1001, BranchID: 1}

	store.SeedProduct(key, 3)
	require.NoError(t, store.UpsertResult(ctx, &entity.EOQResult{
		ProductID:    1001,
		BranchID:     1,
		Params:       entity.EOQParameters{AnnualDemand: 3650}, // 10/día
		EOQQuantity:  80,
		ReorderPoint: 20,
		SafetyStock:  5,
		Status:       entity.EOQStatusValid,
	}))

	h, err := uc.Health(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "CRITICAL", h.Status)
	assert.Equal(t, "HIGH", h.RiskLevel)
	assert.InDelta(t, 0.3, h.DaysOfStock, 1e-9)
	assert.InDelta(t, 81.11, h.TurnoverRatio, 0.001, "3650 / (80/2 + 5)")
}

func TestHealth_ResultadoInvalidoNoEvalua(t *testing.T) {
	store := memory.NewStore()
	uc := buildUseCase(store)
	ctx := context.Background()
	key := entity.ProductBranchKey{ProductID: 1001, BranchID: 1}

	require.NoError(t, store.UpsertResult(ctx, &entity.EOQResult{
		ProductID: 1001,
		BranchID:  1,
		Status:    entity.EOQStatusInvalidInputs,
		Reason:    "costo de mantenimiento debe ser mayor a 0",
	}))

	_, err := uc.Health(ctx, key)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

// ──────────────────────────────────────────────────────────────────────────────
// ABC y EOQ ad-hoc
// ──────────────────────────────────────────────────────────────────────────────

func TestClassifyABC(t *testing.T) {
	store := memory.NewStore()
	uc := buildUseCase(store)

	cls := uc.ClassifyABC(context.Background(), []eoq.ABCProduct{
		{Key: entity.ProductBranchKey{ProductID: 1, BranchID: 1}, AnnualDemand: 1000, UnitCost: 80},
		{Key: entity.ProductBranchKey{ProductID: 2, BranchID: 1}, AnnualDemand: 1000, UnitCost: 15},
		{Key: entity.ProductBranchKey{ProductID: 3, BranchID: 1}, AnnualDemand: 1000, UnitCost: 5},
	})
	assert.Len(t, cls.AItems, 1)
	assert.Equal(t, int64(1), cls.AItems[0].ProductID)
	assert.Len(t, cls.BItems, 1)
	assert.Len(t, cls.CItems, 1)
}

func TestCalculateEOQ_WhatIf(t *testing.T) {
	store := memory.NewStore()
	uc := buildUseCase(store)

	res, err := uc.CalculateEOQ(context.Background(), entity.EOQParameters{
		AnnualDemand:    1000,
		HoldingCost:     50,
		OrderingCost:    100,
		UnitCost:        25,
		LeadTimeDays:    7,
		ConfidenceLevel: 0.95,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.EOQStatusValid, res.Status)
	assert.InDelta(t, 63.25, res.EOQQuantity, 0.01)

	// Nada se persistió: es análisis what-if
	stored, err := store.GetByKey(context.Background(), entity.ProductBranchKey{})
	require.NoError(t, err)
	assert.Nil(t, stored)
}
