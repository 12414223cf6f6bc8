package dto

import (
	"time"

	"github.com/tu-usuario/retail-analytics/internal/application/importer"
	"github.com/tu-usuario/retail-analytics/internal/domain/entity"
)

// ImportCostsRequest costos EOQ opcionales enviados junto al archivo. Los
// campos en cero usan los defaults de configuración.
type ImportCostsRequest struct {
	HoldingCost     float64 `json:"holding_cost" form:"holding_cost"`
	OrderingCost    float64 `json:"ordering_cost" form:"ordering_cost"`
	UnitCost        float64 `json:"unit_cost" form:"unit_cost"`
	LeadTimeDays    float64 `json:"lead_time_days" form:"lead_time_days"`
	ConfidenceLevel float64 `json:"confidence_level" form:"confidence_level"`
}

// RowResultDTO estado final de una fila del archivo importado.
type RowResultDTO struct {
	Index     int    `json:"index"`
	Status    string `json:"status"`
	ProductID int64  `json:"product_id"`
	BranchID  int64  `json:"branch_id"`
	Quantity  int64  `json:"quantity"`
	Reason    string `json:"reason,omitempty"`
}

// DeductionDTO una deducción de stock confirmada.
type DeductionDTO struct {
	ProductID        int64 `json:"product_id"`
	BranchID         int64 `json:"branch_id"`
	QuantityDeducted int64 `json:"quantity_deducted"`
	PreviousQuantity int64 `json:"previous_quantity"`
	UpdatedQuantity  int64 `json:"updated_quantity"`
}

// ImportMetricsDTO métricas agregadas del lote confirmado.
type ImportMetricsDTO struct {
	TotalQuantity int64      `json:"total_quantity"`
	AverageDaily  float64    `json:"average_daily"`
	AnnualDemand  float64    `json:"annual_demand"`
	DaysOfData    int        `json:"days_of_data"`
	DateFrom      *time.Time `json:"date_from,omitempty"`
	DateTo        *time.Time `json:"date_to,omitempty"`
}

// ImportResponse reporte completo de una importación confirmada.
type ImportResponse struct {
	BatchID                string           `json:"batch_id"`
	Committed              int              `json:"committed"`
	DroppedUnknownProduct  int              `json:"dropped_unknown_product"`
	DroppedInvalidQuantity int              `json:"dropped_invalid_quantity"`
	DroppedInvalidDate     int              `json:"dropped_invalid_date"`
	Rows                   []RowResultDTO   `json:"rows"`
	Deductions             []DeductionDTO   `json:"deductions"`
	Metrics                ImportMetricsDTO `json:"metrics"`
	EOQResults             []EOQResultDTO   `json:"eoq_results"`
}

// BatchDeductionsResponse respuesta de la consulta de auditoría por lote.
type BatchDeductionsResponse struct {
	BatchID    string         `json:"batch_id"`
	Deductions []DeductionDTO `json:"deductions"`
}

// FromImportReport mapea el reporte del caso de uso a la respuesta HTTP.
func FromImportReport(r *importer.ImportReport) ImportResponse {
	rows := make([]RowResultDTO, 0, len(r.Rows))
	for _, row := range r.Rows {
		rows = append(rows, RowResultDTO{
			Index:     row.Index,
			Status:    row.Status,
			ProductID: row.Line.ProductID,
			BranchID:  row.Line.BranchID,
			Quantity:  row.Line.Quantity,
			Reason:    row.Reason,
		})
	}

	resp := ImportResponse{
		BatchID:                r.BatchID,
		Committed:              r.Committed,
		DroppedUnknownProduct:  r.DroppedUnknownProduct,
		DroppedInvalidQuantity: r.DroppedInvalidQuantity,
		DroppedInvalidDate:     r.DroppedInvalidDate,
		Rows:                   rows,
		Deductions:             FromDeductions(r.Deductions),
		EOQResults:             fromEOQResults(r.EOQResults),
		Metrics: ImportMetricsDTO{
			TotalQuantity: r.Metrics.TotalQuantity,
			AverageDaily:  r.Metrics.AverageDaily,
			AnnualDemand:  r.Metrics.AnnualDemand,
			DaysOfData:    r.Metrics.DaysOfData,
		},
	}
	if !r.Metrics.DateFrom.IsZero() {
		from, to := r.Metrics.DateFrom, r.Metrics.DateTo
		resp.Metrics.DateFrom = &from
		resp.Metrics.DateTo = &to
	}
	return resp
}

// FromDeductions mapea registros de deducción a DTOs.
func FromDeductions(deds []entity.StockDeductionRecord) []DeductionDTO {
	out := make([]DeductionDTO, 0, len(deds))
	for _, d := range deds {
		out = append(out, DeductionDTO{
			ProductID:        d.ProductID,
			BranchID:         d.BranchID,
			QuantityDeducted: d.QuantityDeducted,
			PreviousQuantity: d.PreviousQuantity,
			UpdatedQuantity:  d.UpdatedQuantity,
		})
	}
	return out
}
