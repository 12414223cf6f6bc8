package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DemandSourcePOSImport etiqueta de procedencia por defecto para los buckets
// generados por el pipeline de importación de ventas.
const DemandSourcePOSImport = "pos_import"

// DemandHistoryBucket acumula la demanda de un producto en una sucursal para
// un período (día). Llave: (ProductID, BranchID, PeriodDate). Semántica de
// upsert: re-importar el mismo período reemplaza el bucket, nunca duplica.
type DemandHistoryBucket struct {
	ProductID    int64
	BranchID     int64
	PeriodDate   time.Time // truncada a día (UTC)
	QuantitySold int64
	Revenue      decimal.Decimal
	AvgPrice     decimal.Decimal
	Source       string
	CreatedAt    time.Time
}

// Key devuelve la llave (producto, sucursal) del bucket.
func (b DemandHistoryBucket) Key() ProductBranchKey {
	return ProductBranchKey{ProductID: b.ProductID, BranchID: b.BranchID}
}
