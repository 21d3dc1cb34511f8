package http

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Reposicion-api/internal/application/dataquality"
	"github.com/jhoicas/Reposicion-api/internal/application/dto"
	"github.com/jhoicas/Reposicion-api/internal/domain"
)

// DataQualityHandler maneja la auditoría y limpieza de cargas CSV.
type DataQualityHandler struct{}

// NewDataQualityHandler construye el handler. Las operaciones de calidad de
// datos son funciones puras sobre la tabla subida; no llevan dependencias.
func NewDataQualityHandler() *DataQualityHandler { return &DataQualityHandler{} }

// Audit godoc
// @Summary      Auditar un CSV antes de importarlo
// @Tags         data-quality
// @Accept       multipart/form-data
// @Produce      json
// @Param        file         formData  file    true   "Archivo CSV con cabecera"
// @Param        import_type  formData  string  false  "sales|inventory|product"  default(sales)
// @Success      200  {object}  dataquality.AuditReport
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/data-quality/audit [post]
func (h *DataQualityHandler) Audit(c *fiber.Ctx) error {
	t, err := tableFromUpload(c)
	if err != nil {
		return respondError(c, err)
	}
	importType := dataquality.ImportType(c.FormValue("import_type", string(dataquality.ImportSales)))

	report, err := dataquality.GenerateAuditReport(t, importType)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}

// Clean godoc
// @Summary      Limpiar un CSV de ventas
// @Tags         data-quality
// @Accept       multipart/form-data
// @Produce      json
// @Param        file              formData  file    true   "Archivo CSV con cabecera"
// @Param        required_columns  formData  string  false  "Columnas requeridas separadas por coma"
// @Success      200  {object}  dto.CleanResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/data-quality/clean [post]
func (h *DataQualityHandler) Clean(c *fiber.Ctx) error {
	t, err := tableFromUpload(c)
	if err != nil {
		return respondError(c, err)
	}
	required := splitColumns(c.FormValue("required_columns", "date,product_id,quantity"))

	cleaned, stats, err := dataquality.Clean(t, required)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.CleanResponse{
		Stats: dto.CleanStatsResponse{
			OriginalRows: stats.OriginalRows,
			CleanedRows:  stats.CleanedRows,
			RemovedRows:  stats.RemovedRows,
		},
		Table: tableResponse(cleaned),
	})
}

// DetectOutliers godoc
// @Summary      Marcar outliers en una columna numérica
// @Tags         data-quality
// @Accept       multipart/form-data
// @Produce      json
// @Param        file       formData  file    true   "Archivo CSV con cabecera"
// @Param        column     formData  string  true   "Columna numérica"
// @Param        method     formData  string  false  "zscore|iqr"  default(zscore)
// @Param        threshold  formData  number  false  "Umbral; 0 usa el default del método"
// @Success      200  {object}  dto.TableResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/data-quality/outliers [post]
func (h *DataQualityHandler) DetectOutliers(c *fiber.Ctx) error {
	t, err := tableFromUpload(c)
	if err != nil {
		return respondError(c, err)
	}
	column := c.FormValue("column")
	if column == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "column es requerida"})
	}
	method := c.FormValue("method", "zscore")
	threshold, _ := strconv.ParseFloat(c.FormValue("threshold", "0"), 64)
	if threshold <= 0 {
		// Umbrales habituales: 3 desvíos para zscore, 1.5·IQR para iqr.
		if method == "iqr" {
			threshold = 1.5
		} else {
			threshold = 3
		}
	}

	marked, err := dataquality.DetectOutliers(t, column, method, threshold)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tableResponse(marked))
}

// HandleMissingValues godoc
// @Summary      Imputar valores faltantes por columna
// @Tags         data-quality
// @Accept       multipart/form-data
// @Produce      json
// @Param        file     formData  file    true  "Archivo CSV con cabecera"
// @Param        methods  formData  string  true  "Pares columna=método separados por coma (mean|median|mode|ffill|bfill|zero|drop)"
// @Success      200  {object}  dto.TableResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/data-quality/missing-values [post]
func (h *DataQualityHandler) HandleMissingValues(c *fiber.Ctx) error {
	t, err := tableFromUpload(c)
	if err != nil {
		return respondError(c, err)
	}
	methods, err := parseMethods(c.FormValue("methods"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}

	filled, err := dataquality.HandleMissingValues(t, methods)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tableResponse(filled))
}

// ── helpers ───────────────────────────────────────────────────────────────────

// tableFromUpload lee el archivo "file" del multipart y lo parsea como CSV.
func tableFromUpload(c *fiber.Ctx) (*dataquality.Table, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("%w: archivo 'file' requerido", domain.ErrInvalidInput)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("abrir archivo subido: %w", err)
	}
	defer f.Close()
	return dataquality.FromCSV(f)
}

func tableResponse(t *dataquality.Table) dto.TableResponse {
	return dto.TableResponse{Columns: t.Columns, Rows: t.Rows}
}

func splitColumns(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseMethods interpreta "quantity=mean,unit_price=median".
func parseMethods(s string) (map[string]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("methods es requerido (ej: quantity=mean)")
	}
	out := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		col, method, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || col == "" || method == "" {
			return nil, fmt.Errorf("par inválido %q; se espera columna=método", pair)
		}
		out[col] = method
	}
	return out, nil
}
