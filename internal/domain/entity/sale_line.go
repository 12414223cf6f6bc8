package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductBranchKey identifica una fila del ledger de inventario: un producto
// en una sucursal. Es la llave de agrupación de todo el motor de conciliación.
type ProductBranchKey struct {
	ProductID int64
	BranchID  int64
}

// SaleLine representa una línea de venta POS ya parseada. Es entrada efímera:
// nunca se muta después del parseo y se descarta una vez volcada al ledger
// y al historial de demanda.
type SaleLine struct {
	ProductID       int64
	BranchID        int64
	Quantity        int64 // > 0
	TransactionTime time.Time
	UnitPrice       decimal.Decimal // >= 0
	TotalAmount     decimal.Decimal // >= 0
	PaymentMethod   string
	BatchID         string
}

// Key devuelve la llave (producto, sucursal) de la línea.
func (s SaleLine) Key() ProductBranchKey {
	return ProductBranchKey{ProductID: s.ProductID, BranchID: s.BranchID}
}
