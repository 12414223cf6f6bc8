package entity

import "time"

// Estados por fila de un lote importado. Una fila descartada nunca escala a
// fallo de lote por sí sola; se reporta en el resumen.
const (
	RowStatusAccepted               = "accepted"
	RowStatusDroppedUnknownProduct  = "dropped_unknown_product"
	RowStatusDroppedInvalidQuantity = "dropped_invalid_quantity"
	RowStatusDroppedInvalidDate     = "dropped_invalid_date"
)

// StockDeductionRecord registra qué cambió en el ledger para una llave dentro
// de un lote: cuánto se dedujo y las cantidades antes/después.
type StockDeductionRecord struct {
	ProductID        int64
	BranchID         int64
	QuantityDeducted int64
	PreviousQuantity int64
	UpdatedQuantity  int64
}

// ImportBatch identifica una llamada de ingestión y su efecto sobre el stock.
// Se crea una vez por importación y es de solo lectura después: superficie de
// auditoría, nunca se usa para re-validar.
type ImportBatch struct {
	BatchID    string
	Deductions []StockDeductionRecord
	CreatedAt  time.Time
}
