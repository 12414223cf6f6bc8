package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound               = errors.New("recurso no encontrado")
	ErrInvalidInput           = errors.New("entrada inválida")
	ErrDuplicate              = errors.New("recurso duplicado")
	ErrInsufficientStock      = errors.New("stock insuficiente")
	ErrInsufficientData       = errors.New("datos históricos insuficientes")
	ErrPersistenceUnavailable = errors.New("almacenamiento no disponible")
)

// StockViolation detalla una llave (producto, sucursal) cuya deducción dejaría
// el stock en negativo: cantidad actual, solicitada y proyectada.
type StockViolation struct {
	ProductID int64
	BranchID  int64
	Current   int64
	Requested int64
	Projected int64
}

func (v StockViolation) String() string {
	return fmt.Sprintf("producto %d (sucursal %d): %d - %d = %d",
		v.ProductID, v.BranchID, v.Current, v.Requested, v.Projected)
}

// StockViolationError rechaza un lote completo: enumera todas las llaves cuya
// proyección quedaría negativa. Ninguna fila del ledger se muta cuando se retorna.
type StockViolationError struct {
	Violations []StockViolation
}

func (e *StockViolationError) Error() string {
	details := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		details[i] = v.String()
	}
	return fmt.Sprintf("la deducción dejaría stock negativo en %d producto(s): %s",
		len(e.Violations), strings.Join(details, "; "))
}

// Unwrap permite a los callers usar errors.Is(err, ErrInsufficientStock).
func (e *StockViolationError) Unwrap() error { return ErrInsufficientStock }
