package dataquality_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Reposicion-api/internal/application/dataquality"
	"github.com/jhoicas/Reposicion-api/internal/domain"
)

// tabla de ventas mínima y válida para los casos base.
func salesTable(rows ...[]string) *dataquality.Table {
	return &dataquality.Table{
		Columns: []string{"date", "product_id", "quantity", "unit_price"},
		Rows:    rows,
	}
}

func TestGenerateAuditReport_CampoRequeridoAusente(t *testing.T) {
	table := &dataquality.Table{
		Columns: []string{"date", "product_id", "quantity"}, // falta unit_price
		Rows:    [][]string{{"2024-01-01", "P1", "3"}},
	}

	report, err := dataquality.GenerateAuditReport(table, dataquality.ImportSales)
	require.NoError(t, err)

	assert.Equal(t, []string{"unit_price"}, report.Completeness.MissingFields,
		"debe listar exactamente el campo ausente y nada más")
	assert.GreaterOrEqual(t, report.Summary.CriticalIssues, 1)
}

func TestGenerateAuditReport_ValoresNegativos(t *testing.T) {
	table := salesTable(
		[]string{"2024-01-01", "P1", "-5", "10.0"},
		[]string{"2024-01-02", "P1", "-5", "10.0"},
		[]string{"2024-01-03", "P1", "4", "10.0"},
	)

	report, err := dataquality.GenerateAuditReport(table, dataquality.ImportSales)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Consistency.NegativeValues["quantity"])
	assert.Equal(t, 0, report.Consistency.NegativeValues["unit_price"])
	assert.GreaterOrEqual(t, report.Summary.CriticalIssues, 2,
		"cada valor negativo cuenta como problema crítico")
}

func TestGenerateAuditReport_DuplicadosCuentanTodasLasFilas(t *testing.T) {
	table := salesTable(
		[]string{"2024-01-01", "P1", "3", "10"},
		[]string{"2024-01-01", "P1", "4", "10"},
		[]string{"2024-01-01", "P1", "5", "10"},
		[]string{"2024-01-02", "P2", "1", "10"},
	)

	report, err := dataquality.GenerateAuditReport(table, dataquality.ImportSales)
	require.NoError(t, err)

	// 3 filas comparten la clave (2024-01-01, P1): cuentan 3, no 2.
	assert.Equal(t, 3, report.Consistency.DuplicateRecords)
}

func TestGenerateAuditReport_FechasNoParseablesSonDatoNoError(t *testing.T) {
	table := salesTable(
		[]string{"no-es-fecha", "P1", "3", "10"},
		[]string{"2024-01-02", "P1", "4", "10"},
	)

	report, err := dataquality.GenerateAuditReport(table, dataquality.ImportSales)
	require.NoError(t, err, "el error de formato se reporta como dato, no como fallo")
	assert.Contains(t, report.Consistency.FormatErrors, "date")
	assert.Contains(t, report.Consistency.FormatErrors["date"], "no-es-fecha")
}

func TestGenerateAuditReport_NulosSeveridadPorPorcentaje(t *testing.T) {
	// 1 nulo sobre 40 filas = 2.5% → warning, no critical.
	rows := make([][]string, 0, 40)
	rows = append(rows, []string{"2024-01-01", "P1", "", "10"})
	for i := 1; i < 40; i++ {
		rows = append(rows, []string{"2024-02-01", "P" + string(rune('A'+i%20)), "3", "10"})
	}
	report, err := dataquality.GenerateAuditReport(salesTable(rows...), dataquality.ImportSales)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Completeness.NullCounts["quantity"])
	found := false
	for _, sug := range report.Summary.Suggestions {
		if sug.Field == "quantity" && strings.Contains(sug.Message, "nulos") {
			found = true
			assert.Equal(t, dataquality.SeverityWarning, sug.Severity)
		}
	}
	assert.True(t, found, "debe existir una sugerencia por los nulos de quantity")
}

func TestGenerateAuditReport_OutliersIQR(t *testing.T) {
	rows := make([][]string, 0, 21)
	for i := 0; i < 20; i++ {
		rows = append(rows, []string{"2024-01-01", "P1", "10", "5"})
	}
	rows = append(rows, []string{"2024-01-02", "P2", "500", "5"}) // fuera de 1.5·IQR

	report, err := dataquality.GenerateAuditReport(salesTable(rows...), dataquality.ImportSales)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Accuracy.Outliers["quantity"])
	summary := report.Accuracy.StatisticalSummary["quantity"]
	assert.Equal(t, float64(10), summary.Min)
	assert.Equal(t, float64(500), summary.Max)
	assert.GreaterOrEqual(t, report.Summary.Warnings, 1)
}

func TestGenerateAuditReport_InventarioYProducto(t *testing.T) {
	inv := &dataquality.Table{
		Columns: []string{"product_id", "quantity", "warehouse_id"},
		Rows:    [][]string{{"P1", "-2", "W1"}, {"P2", "7", "W1"}},
	}
	report, err := dataquality.GenerateAuditReport(inv, dataquality.ImportInventory)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Consistency.NegativeValues["quantity"])

	prod := &dataquality.Table{
		Columns: []string{"product_id", "name", "category", "unit_cost"},
		Rows:    [][]string{{"P1", "Café", "bebidas", "0"}, {"P2", "Té", "bebidas", "3.5"}},
	}
	report, err = dataquality.GenerateAuditReport(prod, dataquality.ImportProduct)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Consistency.NegativeValues["unit_cost"],
		"un costo unitario en cero viola la positividad")
}

func TestGenerateAuditReport_EntradasInvalidas(t *testing.T) {
	_, err := dataquality.GenerateAuditReport(nil, dataquality.ImportSales)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = dataquality.GenerateAuditReport(salesTable(), "otra-cosa")
	assert.ErrorIs(t, err, domain.ErrInvalidParam)
}

func TestGenerateAuditReport_Determinista(t *testing.T) {
	table := salesTable(
		[]string{"2024-01-01", "P1", "3", "10"},
		[]string{"2024-01-01", "P1", "3", "10"},
	)
	r1, err1 := dataquality.GenerateAuditReport(table, dataquality.ImportSales)
	r2, err2 := dataquality.GenerateAuditReport(table, dataquality.ImportSales)
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, r1, r2, "mismo input, mismo reporte")
}

func TestFromCSV(t *testing.T) {
	csv := "date,product_id,quantity,unit_price\n2024-01-01,P1,3,10.5\n2024-01-02,P2,1,2\n"
	table, err := dataquality.FromCSV(strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, []string{"date", "product_id", "quantity", "unit_price"}, table.Columns)
	assert.Equal(t, 2, table.NumRows())

	_, err = dataquality.FromCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "CSV sin cabecera no es interpretable")
}
