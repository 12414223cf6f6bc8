package ingest_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/tu-usuario/retail-analytics/internal/domain"
	"github.com/tu-usuario/retail-analytics/internal/infrastructure/ingest"
)

// ──────────────────────────────────────────────────────────────────────────────
// CSV
// ──────────────────────────────────────────────────────────────────────────────

func TestParseCSV_ArchivoCompleto(t *testing.T) {
	csv := strings.Join([]string{
		"product_id,branch_id,quantity,transaction_date,unit_price,total_amount,payment_method",
		"1001,1,3,2024-03-10 09:30:00,12.50,37.50,cash",
		"1002,2,1,2024-03-10,4.00,4.00,card",
	}, "\n")

	lines, err := ingest.ParseCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, lines, 2)

	l := lines[0]
	assert.Equal(t, int64(1001), l.ProductID)
	assert.Equal(t, int64(1), l.BranchID)
	assert.Equal(t, int64(3), l.Quantity)
	assert.Equal(t, time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC), l.TransactionTime)
	assert.Equal(t, "12.5", l.UnitPrice.String())
	assert.Equal(t, "37.5", l.TotalAmount.String())
	assert.Equal(t, "cash", l.PaymentMethod)
}

// Alias de encabezado: date en vez de transaction_date, price, amount.
func TestParseCSV_Alias(t *testing.T) {
	csv := strings.Join([]string{
		"product_id,branch_id,qty,date,price",
		"1001,1,2,2024-03-10,10.00",
	}, "\n")

	lines, err := ingest.ParseCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, int64(2), lines[0].Quantity)
	// total_amount ausente: se deriva de unit_price * quantity
	assert.Equal(t, "20", lines[0].TotalAmount.String())
}

// Una fila con formato roto no aborta el archivo: queda con cantidad 0 y el
// pipeline la descarta después con razón.
func TestParseCSV_FilaRotaNoAborta(t *testing.T) {
	csv := strings.Join([]string{
		"product_id,branch_id,quantity,transaction_date",
		"1001,1,3,2024-03-10",
		"no-numerico,1,5,2024-03-10",
	}, "\n")

	lines, err := ingest.ParseCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, int64(3), lines[0].Quantity)
	assert.Equal(t, int64(0), lines[1].Quantity, "fila rota degrada a cantidad 0")
}

func TestParseCSV_FechaIlegibleQuedaEnCero(t *testing.T) {
	csv := strings.Join([]string{
		"product_id,branch_id,quantity,transaction_date",
		"1001,1,3,2024-03-10",
		"1001,1,5,not-a-date",
	}, "\n")

	lines, err := ingest.ParseCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.False(t, lines[0].TransactionTime.IsZero())
	assert.True(t, lines[1].TransactionTime.IsZero(), "fecha ilegible degrada a tiempo cero")
}

func TestParseCSV_EncabezadoIncompleto(t *testing.T) {
	_, err := ingest.ParseCSV(strings.NewReader("product_id,quantity\n1,2\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.Contains(t, err.Error(), "branch_id")
}

func TestParseCSV_ArchivoVacio(t *testing.T) {
	_, err := ingest.ParseCSV(strings.NewReader(""))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

// ──────────────────────────────────────────────────────────────────────────────
// Excel
// ──────────────────────────────────────────────────────────────────────────────

func buildXLSX(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestParseExcel_ArchivoCompleto(t *testing.T) {
	buf := buildXLSX(t, [][]interface{}{
		{"product_id", "branch_id", "quantity", "transaction_date", "unit_price"},
		{"1001", "1", "5", "2024-03-10", "9.99"},
	})

	lines, err := ingest.ParseExcel(buf)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, int64(1001), lines[0].ProductID)
	assert.Equal(t, int64(5), lines[0].Quantity)
	assert.Equal(t, "9.99", lines[0].UnitPrice.String())
}

func TestParse_DespachoPorExtension(t *testing.T) {
	csv := "product_id,branch_id,quantity,date\n1,1,1,2024-03-10\n"
	lines, err := ingest.Parse(strings.NewReader(csv), "ventas.csv")
	require.NoError(t, err)
	assert.Len(t, lines, 1)

	_, err = ingest.Parse(strings.NewReader(""), "ventas.pdf")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}
