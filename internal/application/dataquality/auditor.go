package dataquality

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/jhoicas/Reposicion-api/internal/domain"
)

// ImportType identifica el tipo de carga que se audita.
type ImportType string

// Tipos de carga soportados.
const (
	ImportSales     ImportType = "sales"
	ImportInventory ImportType = "inventory"
	ImportProduct   ImportType = "product"
)

// Campos requeridos por tipo de carga.
var requiredFields = map[ImportType][]string{
	ImportSales:     {"date", "product_id", "quantity", "unit_price"},
	ImportInventory: {"product_id", "quantity", "warehouse_id"},
	ImportProduct:   {"product_id", "name", "category", "unit_cost"},
}

// Columnas numéricas auditadas por tipo de carga.
var numericFields = map[ImportType][]string{
	ImportSales:     {"quantity", "unit_price"},
	ImportInventory: {"quantity"},
	ImportProduct:   {"unit_cost"},
}

// Umbral de nulos sobre el total de filas a partir del cual un campo pasa de
// warning a critical.
const nullCriticalRatio = 0.05

// CompletenessReport resultado de la verificación de completitud.
type CompletenessReport struct {
	MissingFields []string       `json:"missing_fields"`
	NullCounts    map[string]int `json:"null_counts"`
	TotalRows     int            `json:"total_rows"`
	CompleteRows  int            `json:"complete_rows"`
}

// ConsistencyReport resultado de la verificación de consistencia.
type ConsistencyReport struct {
	NegativeValues   map[string]int    `json:"negative_values"`
	DuplicateRecords int               `json:"duplicate_records"`
	FormatErrors     map[string]string `json:"format_errors"`
}

// FieldSummary estadísticas descriptivas de un campo numérico.
type FieldSummary struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// AccuracyReport resultado de la verificación de exactitud.
type AccuracyReport struct {
	Outliers           map[string]int          `json:"outliers"`
	StatisticalSummary map[string]FieldSummary `json:"statistical_summary"`
}

// Severidades de las sugerencias.
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
)

// Suggestion es una acción correctiva sugerida por la auditoría.
type Suggestion struct {
	Severity string `json:"severity"`
	Field    string `json:"field,omitempty"`
	Message  string `json:"message"`
}

// AuditSummary totales de la auditoría.
type AuditSummary struct {
	TotalIssues    int          `json:"total_issues"`
	CriticalIssues int          `json:"critical_issues"`
	Warnings       int          `json:"warnings"`
	Suggestions    []Suggestion `json:"suggestions"`
}

// AuditReport es el reporte completo de auditoría de una carga.
// Es función pura de (tabla, tipo de carga): nunca se persiste como estado.
type AuditReport struct {
	Completeness CompletenessReport `json:"completeness"`
	Consistency  ConsistencyReport  `json:"consistency"`
	Accuracy     AccuracyReport     `json:"accuracy"`
	Summary      AuditSummary       `json:"summary"`
}

// GenerateAuditReport audita una tabla para el tipo de carga dado.
// Los problemas estructurales se reportan como datos dentro del reporte; solo
// una tabla imposible de interpretar (nil o sin columnas) señala
// domain.ErrInvalidInput, y un tipo de carga desconocido domain.ErrInvalidParam.
func GenerateAuditReport(t *Table, importType ImportType) (*AuditReport, error) {
	if t == nil || len(t.Columns) == 0 {
		return nil, fmt.Errorf("%w: tabla vacía o sin columnas", domain.ErrInvalidInput)
	}
	required, ok := requiredFields[importType]
	if !ok {
		return nil, fmt.Errorf("%w: tipo de carga desconocido %q", domain.ErrInvalidParam, importType)
	}

	report := &AuditReport{
		Completeness: auditCompleteness(t, required),
		Consistency:  auditConsistency(t, importType),
		Accuracy:     auditAccuracy(t, importType),
	}
	report.Summary = summarize(report)
	return report, nil
}

// auditCompleteness reporta columnas requeridas ausentes y nulos por campo.
func auditCompleteness(t *Table, required []string) CompletenessReport {
	rep := CompletenessReport{
		MissingFields: []string{},
		NullCounts:    make(map[string]int, len(required)),
		TotalRows:     t.NumRows(),
	}
	for _, field := range required {
		idx := t.columnIndex(field)
		if idx < 0 {
			rep.MissingFields = append(rep.MissingFields, field)
			continue
		}
		nulls := 0
		for i := range t.Rows {
			if isNull(t.cell(i, idx)) {
				nulls++
			}
		}
		rep.NullCounts[field] = nulls
	}

	// Filas completas: sin nulos en ninguna columna presente.
	for i := range t.Rows {
		complete := true
		for c := range t.Columns {
			if isNull(t.cell(i, c)) {
				complete = false
				break
			}
		}
		if complete {
			rep.CompleteRows++
		}
	}
	return rep
}

// auditConsistency aplica las verificaciones específicas del tipo de carga.
func auditConsistency(t *Table, importType ImportType) ConsistencyReport {
	rep := ConsistencyReport{
		NegativeValues: make(map[string]int),
		FormatErrors:   make(map[string]string),
	}

	switch importType {
	case ImportSales:
		rep.NegativeValues["quantity"] = countNegatives(t, "quantity")
		rep.NegativeValues["unit_price"] = countNegatives(t, "unit_price")
		rep.DuplicateRecords = countDuplicateKeys(t, "date", "product_id")
		if msg := checkDateColumn(t, "date"); msg != "" {
			rep.FormatErrors["date"] = msg
		}
	case ImportInventory:
		rep.NegativeValues["quantity"] = countNegatives(t, "quantity")
	case ImportProduct:
		// Positividad del costo unitario: cero o negativo es inconsistente.
		rep.NegativeValues["unit_cost"] = countNonPositives(t, "unit_cost")
	}
	return rep
}

// auditAccuracy detecta outliers por rango intercuartílico y resume cada campo numérico.
func auditAccuracy(t *Table, importType ImportType) AccuracyReport {
	rep := AccuracyReport{
		Outliers:           make(map[string]int),
		StatisticalSummary: make(map[string]FieldSummary),
	}
	for _, field := range numericFields[importType] {
		values := t.numericColumn(field)
		if len(values) == 0 {
			continue
		}
		sorted := sortedCopy(values)
		q1 := quantile(sorted, 0.25)
		q3 := quantile(sorted, 0.75)
		iqr := q3 - q1
		lower := q1 - 1.5*iqr
		upper := q3 + 1.5*iqr

		outliers := 0
		for _, v := range values {
			if v < lower || v > upper {
				outliers++
			}
		}
		rep.Outliers[field] = outliers

		std := 0.0
		if len(values) > 1 {
			std = stat.StdDev(values, nil)
		}
		rep.StatisticalSummary[field] = FieldSummary{
			Mean: stat.Mean(values, nil),
			Std:  std,
			Min:  sorted[0],
			Max:  sorted[len(sorted)-1],
		}
	}
	return rep
}

// summarize aplica la política de severidad y genera las sugerencias.
//
//	campo requerido ausente  → critical
//	nulos                    → critical si superan el 5% de las filas, si no warning
//	valores negativos        → critical
//	duplicados               → warning
//	outliers                 → warning
//	error de formato         → warning
func summarize(r *AuditReport) AuditSummary {
	s := AuditSummary{Suggestions: []Suggestion{}}

	for _, field := range r.Completeness.MissingFields {
		s.CriticalIssues++
		s.Suggestions = append(s.Suggestions, Suggestion{
			Severity: SeverityCritical, Field: field,
			Message: fmt.Sprintf("la columna requerida %q no existe en el archivo; agréguela antes de importar", field),
		})
	}

	total := r.Completeness.TotalRows
	for field, nulls := range r.Completeness.NullCounts {
		if nulls == 0 {
			continue
		}
		severity := SeverityWarning
		if total > 0 && float64(nulls) > nullCriticalRatio*float64(total) {
			severity = SeverityCritical
		}
		if severity == SeverityCritical {
			s.CriticalIssues += nulls
		} else {
			s.Warnings += nulls
		}
		s.Suggestions = append(s.Suggestions, Suggestion{
			Severity: severity, Field: field,
			Message: fmt.Sprintf("%d valores nulos en %q; complete o elimine esas filas", nulls, field),
		})
	}

	for field, negatives := range r.Consistency.NegativeValues {
		if negatives == 0 {
			continue
		}
		s.CriticalIssues += negatives
		s.Suggestions = append(s.Suggestions, Suggestion{
			Severity: SeverityCritical, Field: field,
			Message: fmt.Sprintf("%d valores inválidos en %q; corrija los valores negativos o en cero", negatives, field),
		})
	}

	if d := r.Consistency.DuplicateRecords; d > 0 {
		s.Warnings += d
		s.Suggestions = append(s.Suggestions, Suggestion{
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("%d filas comparten (date, product_id); revise si son cargas repetidas", d),
		})
	}

	for field, msg := range r.Consistency.FormatErrors {
		s.Warnings++
		s.Suggestions = append(s.Suggestions, Suggestion{
			Severity: SeverityWarning, Field: field,
			Message: fmt.Sprintf("formato inválido en %q: %s", field, msg),
		})
	}

	for field, outliers := range r.Accuracy.Outliers {
		if outliers == 0 {
			continue
		}
		s.Warnings += outliers
		s.Suggestions = append(s.Suggestions, Suggestion{
			Severity: SeverityWarning, Field: field,
			Message: fmt.Sprintf("%d posibles outliers en %q; considere una limpieza antes de importar", outliers, field),
		})
	}

	s.TotalIssues = s.CriticalIssues + s.Warnings
	return s
}

// countNegatives cuenta valores parseables estrictamente negativos.
func countNegatives(t *Table, column string) int {
	n := 0
	for _, v := range t.numericColumn(column) {
		if v < 0 {
			n++
		}
	}
	return n
}

// countNonPositives cuenta valores parseables menores o iguales a cero.
func countNonPositives(t *Table, column string) int {
	n := 0
	for _, v := range t.numericColumn(column) {
		if v <= 0 {
			n++
		}
	}
	return n
}

// checkDateColumn devuelve un mensaje de error de formato si alguna fecha no
// es parseable; cadena vacía si todas lo son. Nunca lanza: el error es dato.
func checkDateColumn(t *Table, column string) string {
	idx := t.columnIndex(column)
	if idx < 0 {
		return ""
	}
	bad := 0
	var firstBad string
	for i := range t.Rows {
		v := t.cell(i, idx)
		if isNull(v) {
			continue
		}
		if _, ok := parseDate(v); !ok {
			bad++
			if firstBad == "" {
				firstBad = v
			}
		}
	}
	if bad == 0 {
		return ""
	}
	return fmt.Sprintf("%d fechas no parseables (primera: %q)", bad, firstBad)
}

// countDuplicateKeys cuenta TODAS las filas cuya clave compuesta aparece 2 o
// más veces (3 filas repetidas cuentan 3, no 2).
func countDuplicateKeys(t *Table, keyColumns ...string) int {
	idxs := make([]int, 0, len(keyColumns))
	for _, c := range keyColumns {
		idx := t.columnIndex(c)
		if idx < 0 {
			return 0
		}
		idxs = append(idxs, idx)
	}

	counts := make(map[string]int, t.NumRows())
	for i := range t.Rows {
		counts[t.rowKey(i, idxs)]++
	}
	dup := 0
	for _, c := range counts {
		if c >= 2 {
			dup += c
		}
	}
	return dup
}

func (t *Table) rowKey(row int, idxs []int) string {
	key := ""
	for _, idx := range idxs {
		key += t.cell(row, idx) + "\x1f"
	}
	return key
}
