package ingest

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/tu-usuario/retail-analytics/internal/domain"
	"github.com/tu-usuario/retail-analytics/internal/domain/entity"
)

// ParseExcel lee la primera hoja de un archivo .xlsx con fila de encabezado.
func ParseExcel(r io.Reader) ([]entity.SaleLine, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: abrir archivo Excel: %v", domain.ErrInvalidInput, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: el archivo Excel no tiene hojas", domain.ErrInvalidInput)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("leer hoja %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: archivo Excel vacío", domain.ErrInvalidInput)
	}

	cm, err := resolveColumns(rows[0])
	if err != nil {
		return nil, err
	}

	lines := make([]entity.SaleLine, 0, len(rows)-1)
	for _, row := range rows[1:] {
		lines = append(lines, parseLine(cm, row))
	}
	return lines, nil
}
