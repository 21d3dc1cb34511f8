// Package dataquality implementa la puerta de calidad de datos para cargas
// tabulares: auditoría (completitud, consistencia, exactitud) y limpieza
// (coerción de tipos, deduplicación, outliers) antes de que los datos lleguen
// al análisis y al pronóstico.
package dataquality

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/Reposicion-api/internal/domain"
)

// Table es un dataset tabular en memoria: filas de columnas nombradas.
// El valor vacío ("") representa un nulo.
type Table struct {
	Columns []string
	Rows    [][]string
}

// FromCSV lee un CSV con cabecera y lo convierte en Table.
// Un CSV no parseable señala domain.ErrInvalidInput.
func FromCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: cabecera CSV no legible: %v", domain.ErrInvalidInput, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	t := &Table{Columns: header}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: fila CSV no parseable: %v", domain.ErrInvalidInput, err)
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

// NumRows devuelve el número de filas de datos.
func (t *Table) NumRows() int { return len(t.Rows) }

// HasColumn indica si la columna existe.
func (t *Table) HasColumn(name string) bool { return t.columnIndex(name) >= 0 }

// clone copia profunda de la tabla (las transformaciones nunca mutan la entrada).
func (t *Table) clone() *Table {
	out := &Table{Columns: append([]string(nil), t.Columns...)}
	out.Rows = make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		out.Rows[i] = append([]string(nil), row...)
	}
	return out
}

func (t *Table) columnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// cell devuelve el valor (recortado) de la columna col en la fila row;
// filas cortas devuelven "".
func (t *Table) cell(row int, col int) string {
	if col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return strings.TrimSpace(t.Rows[row][col])
}

// isNull: el vacío es el único marcador de nulo en cargas CSV.
func isNull(v string) bool { return strings.TrimSpace(v) == "" }

// ── Parsing ───────────────────────────────────────────────────────────────────

// Formatos de fecha aceptados en cargas (los más comunes en plantillas Excel).
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

func parseDate(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseFloat(v string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// numericColumn devuelve los valores parseables de una columna.
func (t *Table) numericColumn(name string) []float64 {
	idx := t.columnIndex(name)
	if idx < 0 {
		return nil
	}
	out := make([]float64, 0, len(t.Rows))
	for i := range t.Rows {
		if f, ok := parseFloat(t.cell(i, idx)); ok {
			out = append(out, f)
		}
	}
	return out
}

// ── Estadística básica ────────────────────────────────────────────────────────

// quantile con interpolación lineal sobre datos ordenados, la misma semántica
// que usa el resto del pipeline de auditoría. Distinta de gonum stat.Quantile,
// que interpola sobre la CDF empírica.
func quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

func sortedCopy(xs []float64) []float64 {
	out := append([]float64(nil), xs...)
	sort.Float64s(out)
	return out
}
