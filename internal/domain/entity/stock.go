package entity

import "time"

// Stock representa la cantidad disponible de un producto en una sucursal
// (fila del ledger de inventario). Invariante: Quantity >= 0 en todo momento;
// solo el motor de conciliación puede decrementarla, y solo tras validar el
// lote completo.
type Stock struct {
	ProductID int64
	BranchID  int64
	Quantity  int64
	UpdatedAt time.Time
}

// Key devuelve la llave (producto, sucursal) de la fila.
func (s Stock) Key() ProductBranchKey {
	return ProductBranchKey{ProductID: s.ProductID, BranchID: s.BranchID}
}
