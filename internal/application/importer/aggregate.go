package importer

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/retail-analytics/internal/domain/entity"
	"github.com/tu-usuario/retail-analytics/internal/domain/repository"
	"github.com/tu-usuario/retail-analytics/pkg/logger"
)

// DemandAggregator vuelca líneas de venta confirmadas al historial de demanda
// por (producto, sucursal, día). Persistencia por upsert sobre esa llave:
// re-importar el mismo período reemplaza el bucket almacenado, nunca lo
// duplica — la idempotencia es obligatoria porque el mismo archivo fuente
// puede re-importarse para conciliación o pruebas.
type DemandAggregator struct {
	demandRepo repository.DemandRepository
	log        *logger.Logger
}

// NewDemandAggregator construye el agregador.
func NewDemandAggregator(demandRepo repository.DemandRepository, log *logger.Logger) *DemandAggregator {
	return &DemandAggregator{demandRepo: demandRepo, log: log}
}

// Aggregate agrupa las líneas confirmadas por (producto, sucursal, día),
// sumando cantidad e ingreso y promediando el precio unitario, y persiste los
// buckets. Montos ausentes se normalizan a 0 antes de almacenar, nunca se
// propagan como nulos.
func (a *DemandAggregator) Aggregate(ctx context.Context, committed []entity.SaleLine) ([]entity.DemandHistoryBucket, error) {
	if len(committed) == 0 {
		return []entity.DemandHistoryBucket{}, nil
	}

	type bucketKey struct {
		key    entity.ProductBranchKey
		period time.Time
	}
	type accum struct {
		qty      int64
		revenue  decimal.Decimal
		priceSum decimal.Decimal
		lines    int64
	}

	groups := make(map[bucketKey]*accum)
	order := make([]bucketKey, 0)
	for _, line := range committed {
		bk := bucketKey{key: line.Key(), period: truncateToDay(line.TransactionTime)}
		g, ok := groups[bk]
		if !ok {
			g = &accum{revenue: decimal.Zero, priceSum: decimal.Zero}
			groups[bk] = g
			order = append(order, bk)
		}
		g.qty += line.Quantity
		g.revenue = g.revenue.Add(line.TotalAmount)
		g.priceSum = g.priceSum.Add(line.UnitPrice)
		g.lines++
	}

	sort.Slice(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if a.key.ProductID != b.key.ProductID {
			return a.key.ProductID < b.key.ProductID
		}
		if a.key.BranchID != b.key.BranchID {
			return a.key.BranchID < b.key.BranchID
		}
		return a.period.Before(b.period)
	})

	now := time.Now().UTC()
	buckets := make([]entity.DemandHistoryBucket, 0, len(order))
	for _, bk := range order {
		g := groups[bk]
		avgPrice := decimal.Zero
		if g.lines > 0 {
			avgPrice = g.priceSum.Div(decimal.NewFromInt(g.lines)).Round(2)
		}
		buckets = append(buckets, entity.DemandHistoryBucket{
			ProductID:    bk.key.ProductID,
			BranchID:     bk.key.BranchID,
			PeriodDate:   bk.period,
			QuantitySold: g.qty,
			Revenue:      g.revenue,
			AvgPrice:     avgPrice,
			Source:       entity.DemandSourcePOSImport,
			CreatedAt:    now,
		})
	}

	if err := a.demandRepo.UpsertBuckets(ctx, buckets); err != nil {
		return nil, fmt.Errorf("upsert de historial de demanda: %w", err)
	}

	a.log.Debug().Int("buckets", len(buckets)).Int("lines", len(committed)).
		Msg("historial de demanda actualizado")
	return buckets, nil
}

// truncateToDay normaliza un instante al inicio de su día en UTC.
func truncateToDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
