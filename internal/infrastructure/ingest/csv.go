package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/tu-usuario/retail-analytics/internal/domain"
	"github.com/tu-usuario/retail-analytics/internal/domain/entity"
)

// ParseCSV lee un archivo CSV con fila de encabezado y devuelve las líneas de
// venta en orden de archivo.
func ParseCSV(r io.Reader) ([]entity.SaleLine, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1 // filas cortas se toleran, campo ausente = vacío

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: archivo CSV vacío", domain.ErrInvalidInput)
		}
		return nil, fmt.Errorf("leer encabezado CSV: %w", err)
	}
	cm, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	var lines []entity.SaleLine
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("leer fila CSV: %w", err)
		}
		lines = append(lines, parseLine(cm, row))
	}
	return lines, nil
}
