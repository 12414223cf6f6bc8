package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tu-usuario/retail-analytics/internal/domain/entity"
	"github.com/tu-usuario/retail-analytics/internal/domain/repository"
)

var _ repository.EOQResultRepository = (*EOQRepo)(nil)

// EOQRepo persistencia de resultados EOQ: a lo más un resultado vivo por
// llave (producto, sucursal).
type EOQRepo struct {
	q Querier
}

// NewEOQRepository construye el adaptador. Pasar pool o tx (Querier).
func NewEOQRepository(q Querier) *EOQRepo {
	return &EOQRepo{q: q}
}

const eoqColumns = `product_id, branch_id,
	annual_demand, holding_cost, ordering_cost, unit_cost, lead_time_days, confidence_level,
	eoq_quantity, reorder_point, safety_stock,
	annual_holding_cost, annual_ordering_cost, total_annual_cost,
	max_stock_level, min_stock_level, average_inventory,
	status, reason, calculated_at`

// UpsertResult inserta o reemplaza el resultado de una llave. Se upserta
// siempre, válido o invalid_inputs.
func (r *EOQRepo) UpsertResult(ctx context.Context, result *entity.EOQResult) error {
	query := `
		INSERT INTO eoq_results (` + eoqColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		ON CONFLICT (product_id, branch_id)
		DO UPDATE SET
			annual_demand = EXCLUDED.annual_demand,
			holding_cost = EXCLUDED.holding_cost,
			ordering_cost = EXCLUDED.ordering_cost,
			unit_cost = EXCLUDED.unit_cost,
			lead_time_days = EXCLUDED.lead_time_days,
			confidence_level = EXCLUDED.confidence_level,
			eoq_quantity = EXCLUDED.eoq_quantity,
			reorder_point = EXCLUDED.reorder_point,
			safety_stock = EXCLUDED.safety_stock,
			annual_holding_cost = EXCLUDED.annual_holding_cost,
			annual_ordering_cost = EXCLUDED.annual_ordering_cost,
			total_annual_cost = EXCLUDED.total_annual_cost,
			max_stock_level = EXCLUDED.max_stock_level,
			min_stock_level = EXCLUDED.min_stock_level,
			average_inventory = EXCLUDED.average_inventory,
			status = EXCLUDED.status,
			reason = EXCLUDED.reason,
			calculated_at = EXCLUDED.calculated_at`
	_, err := r.q.Exec(ctx, query,
		result.ProductID, result.BranchID,
		result.Params.AnnualDemand, result.Params.HoldingCost, result.Params.OrderingCost,
		result.Params.UnitCost, result.Params.LeadTimeDays, result.Params.ConfidenceLevel,
		result.EOQQuantity, result.ReorderPoint, result.SafetyStock,
		result.AnnualHoldingCost, result.AnnualOrderingCost, result.TotalAnnualCost,
		result.MaxStockLevel, result.MinStockLevel, result.AverageInventory,
		result.Status, result.Reason, result.CalculatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert eoq result: %w", err)
	}
	return nil
}

// GetByKey devuelve el resultado vivo de una llave, o nil si no existe.
func (r *EOQRepo) GetByKey(ctx context.Context, key entity.ProductBranchKey) (*entity.EOQResult, error) {
	query := `SELECT ` + eoqColumns + ` FROM eoq_results WHERE product_id = $1 AND branch_id = $2`
	result, err := scanEOQ(r.q.QueryRow(ctx, query, key.ProductID, key.BranchID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get eoq result: %w", err)
	}
	return result, nil
}

// List devuelve resultados ordenados por recálculo descendente; branchID nil
// = todas las sucursales.
func (r *EOQRepo) List(ctx context.Context, branchID *int64, limit int) ([]*entity.EOQResult, error) {
	query := `SELECT ` + eoqColumns + ` FROM eoq_results
		WHERE ($1::bigint IS NULL OR branch_id = $1)
		ORDER BY calculated_at DESC
		LIMIT $2`
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.q.Query(ctx, query, branchID, limit)
	if err != nil {
		return nil, fmt.Errorf("list eoq results: %w", err)
	}
	defer rows.Close()

	out := make([]*entity.EOQResult, 0)
	for rows.Next() {
		result, err := scanEOQ(rows)
		if err != nil {
			return nil, fmt.Errorf("scan eoq result: %w", err)
		}
		out = append(out, result)
	}
	return out, rows.Err()
}

func scanEOQ(row pgx.Row) (*entity.EOQResult, error) {
	var r entity.EOQResult
	err := row.Scan(
		&r.ProductID, &r.BranchID,
		&r.Params.AnnualDemand, &r.Params.HoldingCost, &r.Params.OrderingCost,
		&r.Params.UnitCost, &r.Params.LeadTimeDays, &r.Params.ConfidenceLevel,
		&r.EOQQuantity, &r.ReorderPoint, &r.SafetyStock,
		&r.AnnualHoldingCost, &r.AnnualOrderingCost, &r.TotalAnnualCost,
		&r.MaxStockLevel, &r.MinStockLevel, &r.AverageInventory,
		&r.Status, &r.Reason, &r.CalculatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
