package dataquality

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/jhoicas/Reposicion-api/internal/domain"
)

// Columnas que la limpieza coerciona a numérico cuando están presentes.
var numericCleanColumns = []string{"quantity", "unit_price"}

// CleanStats resumen de una pasada de limpieza.
type CleanStats struct {
	OriginalRows int `json:"original_rows"`
	CleanedRows  int `json:"cleaned_rows"`
	RemovedRows  int `json:"removed_rows"`
}

// Clean normaliza una tabla de ventas cruda a una tabla lista para análisis.
// Pasos, en orden e idempotentes si se reaplican:
//  1. coercionar la columna date a fecha calendario, descartando filas no parseables
//  2. coercionar columnas numéricas, descartando filas no parseables
//  3. descartar filas con quantity <= 0
//  4. descartar filas exactamente duplicadas (se conserva la primera)
//  5. ordenar por fecha ascendente (orden estable)
//
// Devuelve *domain.SchemaError si falta alguna columna requerida.
func Clean(t *Table, requiredColumns []string) (*Table, CleanStats, error) {
	if t == nil {
		return nil, CleanStats{}, fmt.Errorf("%w: tabla nil", domain.ErrInvalidInput)
	}
	var missing []string
	for _, c := range requiredColumns {
		if !t.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, CleanStats{}, &domain.SchemaError{Missing: missing}
	}

	out := t.clone()
	stats := CleanStats{OriginalRows: t.NumRows()}

	// 1. Fechas: parsear, descartar inválidas y normalizar a YYYY-MM-DD.
	if dateIdx := out.columnIndex("date"); dateIdx >= 0 {
		out.filterRows(func(row []string) bool {
			d, ok := parseDate(valueAt(row, dateIdx))
			if !ok {
				return false
			}
			row[dateIdx] = d.Format("2006-01-02")
			return true
		})
	}

	// 2. Numéricos: parsear, descartar inválidos y normalizar la representación.
	for _, col := range numericCleanColumns {
		idx := out.columnIndex(col)
		if idx < 0 {
			continue
		}
		out.filterRows(func(row []string) bool {
			f, ok := parseFloat(valueAt(row, idx))
			if !ok {
				return false
			}
			row[idx] = formatFloat(f)
			return true
		})
	}

	// 3. Una venta válida tiene cantidad estrictamente positiva.
	if qtyIdx := out.columnIndex("quantity"); qtyIdx >= 0 {
		out.filterRows(func(row []string) bool {
			f, ok := parseFloat(valueAt(row, qtyIdx))
			return ok && f > 0
		})
	}

	// 4. Duplicados exactos: misma fila completa.
	seen := make(map[string]bool, out.NumRows())
	out.filterRows(func(row []string) bool {
		key := strings.Join(row, "\x1f")
		if seen[key] {
			return false
		}
		seen[key] = true
		return true
	})

	// 5. Orden estable por fecha ascendente (las fechas ya están normalizadas,
	// así que el orden lexicográfico es el cronológico).
	if dateIdx := out.columnIndex("date"); dateIdx >= 0 {
		sort.SliceStable(out.Rows, func(i, j int) bool {
			return valueAt(out.Rows[i], dateIdx) < valueAt(out.Rows[j], dateIdx)
		})
	}

	stats.CleanedRows = out.NumRows()
	stats.RemovedRows = stats.OriginalRows - stats.CleanedRows
	return out, stats, nil
}

// Métodos soportados por DetectOutliers.
const (
	OutlierMethodZScore = "zscore"
	OutlierMethodIQR    = "iqr"
)

// DetectOutliers marca outliers en una columna numérica y devuelve la tabla
// con dos columnas adicionales: is_outlier (true/false) y outlier_score.
//
//	zscore: score = |x−media|/desviación, marcado si score > threshold
//	iqr:    límites = Q1−threshold·IQR y Q3+threshold·IQR;
//	        score = max(|x−inferior|, |x−superior|)/IQR, marcado si x queda fuera
//
// Los valores no parseables no se marcan y su score es 0. Un método no
// soportado señala domain.ErrInvalidParam.
func DetectOutliers(t *Table, column, method string, threshold float64) (*Table, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: tabla nil", domain.ErrInvalidInput)
	}
	idx := t.columnIndex(column)
	if idx < 0 {
		return nil, &domain.SchemaError{Missing: []string{column}}
	}

	values := t.numericColumn(column)
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: la columna %q no tiene valores numéricos", domain.ErrInvalidInput, column)
	}

	var score func(x float64) (float64, bool)
	switch method {
	case OutlierMethodZScore:
		mean := stat.Mean(values, nil)
		std := 0.0
		if len(values) > 1 {
			std = stat.StdDev(values, nil)
		}
		score = func(x float64) (float64, bool) {
			if std == 0 {
				// Sin varianza no hay outliers posibles.
				return 0, false
			}
			z := math.Abs(x-mean) / std
			return z, z > threshold
		}
	case OutlierMethodIQR:
		sorted := sortedCopy(values)
		q1 := quantile(sorted, 0.25)
		q3 := quantile(sorted, 0.75)
		iqr := q3 - q1
		lower := q1 - threshold*iqr
		upper := q3 + threshold*iqr
		score = func(x float64) (float64, bool) {
			flagged := x < lower || x > upper
			if iqr == 0 {
				return 0, flagged
			}
			s := math.Max(math.Abs(x-lower), math.Abs(x-upper)) / iqr
			return s, flagged
		}
	default:
		return nil, fmt.Errorf("%w: método de detección no soportado %q", domain.ErrInvalidParam, method)
	}

	out := t.clone()
	out.Columns = append(out.Columns, "is_outlier", "outlier_score")
	for i := range out.Rows {
		flagged, s := false, 0.0
		if x, ok := parseFloat(t.cell(i, idx)); ok {
			s, flagged = score(x)
		}
		out.Rows[i] = append(out.Rows[i], boolString(flagged), formatFloat(s))
	}
	return out, nil
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// Métodos soportados por HandleMissingValues.
const (
	MissingMean   = "mean"
	MissingMedian = "median"
	MissingMode   = "mode"
	MissingFFill  = "ffill"
	MissingBFill  = "bfill"
	MissingZero   = "zero"
	MissingDrop   = "drop"
)

// HandleMissingValues rellena o descarta nulos por columna según el método
// indicado. Columnas inexistentes se ignoran; un método no soportado señala
// domain.ErrInvalidParam.
func HandleMissingValues(t *Table, methods map[string]string) (*Table, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: tabla nil", domain.ErrInvalidInput)
	}
	out := t.clone()

	for column, method := range methods {
		idx := out.columnIndex(column)
		if idx < 0 {
			continue
		}
		switch method {
		case MissingMean, MissingMedian, MissingMode:
			fill := columnFillValue(out, column, method)
			if fill == "" {
				continue // columna sin valores de referencia
			}
			for i := range out.Rows {
				if isNull(out.cell(i, idx)) {
					setValue(out, i, idx, fill)
				}
			}
		case MissingFFill:
			last := ""
			for i := range out.Rows {
				if isNull(out.cell(i, idx)) {
					if last != "" {
						setValue(out, i, idx, last)
					}
				} else {
					last = out.cell(i, idx)
				}
			}
		case MissingBFill:
			next := ""
			for i := out.NumRows() - 1; i >= 0; i-- {
				if isNull(out.cell(i, idx)) {
					if next != "" {
						setValue(out, i, idx, next)
					}
				} else {
					next = out.cell(i, idx)
				}
			}
		case MissingZero:
			for i := range out.Rows {
				if isNull(out.cell(i, idx)) {
					setValue(out, i, idx, "0")
				}
			}
		case MissingDrop:
			out.filterRows(func(row []string) bool {
				return !isNull(valueAt(row, idx))
			})
		default:
			return nil, fmt.Errorf("%w: método de imputación no soportado %q", domain.ErrInvalidParam, method)
		}
	}
	return out, nil
}

// columnFillValue calcula el valor de relleno estadístico de una columna.
func columnFillValue(t *Table, column, method string) string {
	switch method {
	case MissingMean:
		values := t.numericColumn(column)
		if len(values) == 0 {
			return ""
		}
		return formatFloat(stat.Mean(values, nil))
	case MissingMedian:
		values := t.numericColumn(column)
		if len(values) == 0 {
			return ""
		}
		return formatFloat(quantile(sortedCopy(values), 0.5))
	case MissingMode:
		idx := t.columnIndex(column)
		counts := make(map[string]int)
		best, bestCount := "", 0
		for i := range t.Rows {
			v := t.cell(i, idx)
			if isNull(v) {
				continue
			}
			counts[v]++
			if counts[v] > bestCount {
				best, bestCount = v, counts[v]
			}
		}
		return best
	}
	return ""
}

// filterRows conserva las filas que cumplen keep (que puede normalizarlas in place).
func (t *Table) filterRows(keep func(row []string) bool) {
	kept := t.Rows[:0]
	for _, row := range t.Rows {
		if keep(row) {
			kept = append(kept, row)
		}
	}
	t.Rows = kept
}

func valueAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func setValue(t *Table, row, col int, v string) {
	for len(t.Rows[row]) <= col {
		t.Rows[row] = append(t.Rows[row], "")
	}
	t.Rows[row][col] = v
}
