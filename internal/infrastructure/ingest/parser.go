// Package ingest convierte archivos de ventas POS (CSV o Excel) en líneas de
// venta normalizadas. Los encabezados se resuelven por nombre, con alias para
// los formatos de exportación más comunes de los POS.
package ingest

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/retail-analytics/internal/domain"
	"github.com/tu-usuario/retail-analytics/internal/domain/entity"
)

// Alias de encabezado aceptados por columna lógica.
var (
	productIDCols = []string{"product_id", "producto_id", "sku_id"}
	branchIDCols  = []string{"branch_id", "sucursal_id", "store_id"}
	quantityCols  = []string{"quantity", "qty", "cantidad"}
	dateCols      = []string{"transaction_date", "date", "sale_date", "timestamp", "created_at", "fecha"}
	unitPriceCols = []string{"unit_price", "price", "precio_unitario"}
	amountCols    = []string{"total_amount", "amount", "total"}
	paymentCols   = []string{"payment_method", "metodo_pago"}
)

// Layouts de fecha probados en orden.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006",
}

// Parse despacha por extensión de archivo. Soporta .csv y .xlsx.
func Parse(r io.Reader, filename string) ([]entity.SaleLine, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return ParseCSV(r)
	case ".xlsx":
		return ParseExcel(r)
	default:
		return nil, fmt.Errorf("%w: formato de archivo no soportado %q (se acepta .csv o .xlsx)",
			domain.ErrInvalidInput, filepath.Ext(filename))
	}
}

// columnMap índices de columna resueltos desde la fila de encabezado.
type columnMap struct {
	productID int
	branchID  int
	quantity  int
	date      int
	unitPrice int // -1 si ausente
	amount    int // -1 si ausente
	payment   int // -1 si ausente
}

// resolveColumns localiza cada columna lógica en el encabezado. Las columnas
// de identidad (producto, sucursal, cantidad, fecha) son obligatorias; los
// montos y el método de pago son opcionales.
func resolveColumns(header []string) (*columnMap, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	find := func(candidates []string) int {
		for _, c := range candidates {
			if i, ok := idx[c]; ok {
				return i
			}
		}
		return -1
	}

	cm := &columnMap{
		productID: find(productIDCols),
		branchID:  find(branchIDCols),
		quantity:  find(quantityCols),
		date:      find(dateCols),
		unitPrice: find(unitPriceCols),
		amount:    find(amountCols),
		payment:   find(paymentCols),
	}
	var missing []string
	if cm.productID < 0 {
		missing = append(missing, "product_id")
	}
	if cm.branchID < 0 {
		missing = append(missing, "branch_id")
	}
	if cm.quantity < 0 {
		missing = append(missing, "quantity")
	}
	if cm.date < 0 {
		missing = append(missing, "transaction_date")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: columnas obligatorias ausentes: %s",
			domain.ErrInvalidInput, strings.Join(missing, ", "))
	}
	return cm, nil
}

// parseLine convierte una fila de datos en SaleLine. Los errores de formato
// en una fila no abortan el archivo: la cantidad queda en 0 (o la fecha en
// cero) y el pipeline la descarta con su razón.
func parseLine(cm *columnMap, row []string) entity.SaleLine {
	get := func(i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	productID, errP := strconv.ParseInt(get(cm.productID), 10, 64)
	branchID, errB := strconv.ParseInt(get(cm.branchID), 10, 64)
	quantity, errQ := strconv.ParseInt(get(cm.quantity), 10, 64)
	if errP != nil || errB != nil || errQ != nil {
		quantity = 0
	}

	line := entity.SaleLine{
		ProductID:       productID,
		BranchID:        branchID,
		Quantity:        quantity,
		TransactionTime: parseDate(get(cm.date)),
		UnitPrice:       parseAmount(get(cm.unitPrice)),
		TotalAmount:     parseAmount(get(cm.amount)),
		PaymentMethod:   get(cm.payment),
	}
	// Monto ausente: derivarlo del precio unitario
	if line.TotalAmount.IsZero() && !line.UnitPrice.IsZero() && quantity > 0 {
		line.TotalAmount = line.UnitPrice.Mul(decimal.NewFromInt(quantity))
	}
	return line
}

func parseDate(s string) time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func parseAmount(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
