package dataquality_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Reposicion-api/internal/application/dataquality"
	"github.com/jhoicas/Reposicion-api/internal/domain"
)

var requiredSalesColumns = []string{"date", "product_id", "quantity"}

func TestClean_FlujoCompleto(t *testing.T) {
	table := salesTable(
		[]string{"2024-01-03", "P1", "2", "10"},
		[]string{"fecha-mala", "P1", "5", "10"},  // fecha no parseable → fuera
		[]string{"2024-01-01", "P1", "abc", "10"}, // cantidad no numérica → fuera
		[]string{"2024-01-02", "P1", "0", "10"},   // cantidad no positiva → fuera
		[]string{"2024-01-01", "P1", "4", "10"},
		[]string{"2024-01-01", "P1", "4", "10"}, // duplicado exacto → fuera
	)

	cleaned, stats, err := dataquality.Clean(table, requiredSalesColumns)
	require.NoError(t, err)

	assert.Equal(t, 6, stats.OriginalRows)
	assert.Equal(t, 2, stats.CleanedRows)
	assert.Equal(t, 4, stats.RemovedRows)

	// Ordenada por fecha ascendente.
	assert.Equal(t, "2024-01-01", cleaned.Rows[0][0])
	assert.Equal(t, "2024-01-03", cleaned.Rows[1][0])
}

func TestClean_Idempotente(t *testing.T) {
	table := salesTable(
		[]string{"2024/01/03", "P1", "2.50", "10.00"},
		[]string{"2024-01-01", "P1", "4", "10"},
		[]string{"2024-01-01", "P1", "4", "10"},
	)

	once, statsOnce, err := dataquality.Clean(table, requiredSalesColumns)
	require.NoError(t, err)
	twice, statsTwice, err := dataquality.Clean(once, requiredSalesColumns)
	require.NoError(t, err)

	assert.Equal(t, once, twice, "clean(clean(T)) == clean(T)")
	assert.Equal(t, statsOnce.CleanedRows, statsTwice.OriginalRows)
	assert.Zero(t, statsTwice.RemovedRows)
}

func TestClean_ColumnaRequeridaAusente(t *testing.T) {
	table := &dataquality.Table{
		Columns: []string{"date", "quantity"},
		Rows:    [][]string{{"2024-01-01", "3"}},
	}

	_, _, err := dataquality.Clean(table, requiredSalesColumns)

	var schemaErr *domain.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, []string{"product_id"}, schemaErr.Missing)
}

func TestClean_NoMutaLaEntrada(t *testing.T) {
	table := salesTable([]string{"2024-01-01", "P1", "0", "10"})
	_, _, err := dataquality.Clean(table, requiredSalesColumns)
	require.NoError(t, err)
	assert.Equal(t, 1, table.NumRows(), "la tabla original queda intacta")
}

func TestDetectOutliers_ZScoreSinVarianza(t *testing.T) {
	table := salesTable(
		[]string{"2024-01-01", "P1", "7", "10"},
		[]string{"2024-01-02", "P1", "7", "10"},
		[]string{"2024-01-03", "P1", "7", "10"},
	)

	out, err := dataquality.DetectOutliers(table, "quantity", dataquality.OutlierMethodZScore, 3)
	require.NoError(t, err)

	isOutlierIdx := len(out.Columns) - 2
	for _, row := range out.Rows {
		assert.Equal(t, "false", row[isOutlierIdx],
			"con varianza cero no puede haber outliers")
	}
}

func TestDetectOutliers_ZScoreMarcaExtremos(t *testing.T) {
	rows := make([][]string, 0, 12)
	for i := 0; i < 11; i++ {
		rows = append(rows, []string{"2024-01-01", "P1", "10", "5"})
	}
	rows = append(rows, []string{"2024-01-02", "P1", "1000", "5"})

	out, err := dataquality.DetectOutliers(salesTable(rows...), "quantity", dataquality.OutlierMethodZScore, 3)
	require.NoError(t, err)

	isOutlierIdx := len(out.Columns) - 2
	assert.Equal(t, "true", out.Rows[11][isOutlierIdx])
	assert.Equal(t, "false", out.Rows[0][isOutlierIdx])
}

func TestDetectOutliers_IQR(t *testing.T) {
	rows := [][]string{
		{"2024-01-01", "P1", "1", "5"},
		{"2024-01-02", "P1", "2", "5"},
		{"2024-01-03", "P1", "3", "5"},
		{"2024-01-04", "P1", "4", "5"},
		{"2024-01-05", "P1", "100", "5"},
	}
	out, err := dataquality.DetectOutliers(salesTable(rows...), "quantity", dataquality.OutlierMethodIQR, 1.5)
	require.NoError(t, err)

	isOutlierIdx := len(out.Columns) - 2
	assert.Equal(t, "true", out.Rows[4][isOutlierIdx])
	assert.Equal(t, "false", out.Rows[1][isOutlierIdx])
}

func TestDetectOutliers_MetodoNoSoportado(t *testing.T) {
	_, err := dataquality.DetectOutliers(salesTable([]string{"2024-01-01", "P1", "3", "5"}), "quantity", "mad", 3)
	assert.ErrorIs(t, err, domain.ErrInvalidParam)
}

func TestHandleMissingValues(t *testing.T) {
	table := salesTable(
		[]string{"2024-01-01", "P1", "2", "10"},
		[]string{"2024-01-02", "P1", "", "10"},
		[]string{"2024-01-03", "P1", "4", ""},
	)

	out, err := dataquality.HandleMissingValues(table, map[string]string{
		"quantity":   dataquality.MissingMean,
		"unit_price": dataquality.MissingZero,
	})
	require.NoError(t, err)

	assert.Equal(t, "3", out.Rows[1][2], "media de {2,4} = 3")
	assert.Equal(t, "0", out.Rows[2][3])

	_, err = dataquality.HandleMissingValues(table, map[string]string{"quantity": "interpolate"})
	assert.ErrorIs(t, err, domain.ErrInvalidParam)
}
