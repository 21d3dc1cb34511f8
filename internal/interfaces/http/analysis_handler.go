package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Reposicion-api/internal/application/analysis"
	"github.com/jhoicas/Reposicion-api/internal/application/dto"
	"github.com/jhoicas/Reposicion-api/internal/domain/series"
)

// AnalysisHandler expone el análisis de patrones de venta.
type AnalysisHandler struct {
	analyzer *analysis.Analyzer
}

// NewAnalysisHandler construye el handler.
func NewAnalysisHandler(analyzer *analysis.Analyzer) *AnalysisHandler {
	return &AnalysisHandler{analyzer: analyzer}
}

// Patterns godoc
// @Summary      Analizar patrones de venta de un producto
// @Tags         analysis
// @Produce      json
// @Param        id    path   string  true   "ID del producto"
// @Param        days  query  int     false  "Ventana de análisis en días"  default(90)
// @Success      200  {object}  analysis.PatternReport
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/analysis/products/{id}/patterns [get]
func (h *AnalysisHandler) Patterns(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	days := c.QueryInt("days", 90)

	report, err := h.analyzer.Analyze(c.Context(), id, days)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}

// Seasonality godoc
// @Summary      Detectar estacionalidad semanal de un producto
// @Tags         analysis
// @Produce      json
// @Param        id    path   string  true   "ID del producto"
// @Param        days  query  int     false  "Ventana de análisis en días"  default(90)
// @Success      200  {object}  analysis.SeasonalityInfo
// @Router       /api/analysis/products/{id}/seasonality [get]
func (h *AnalysisHandler) Seasonality(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	days := c.QueryInt("days", 90)

	info, err := h.analyzer.DetectSeasonality(c.Context(), id, days)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(info)
}

// History godoc
// @Summary      Historial de ventas crudas de un producto
// @Tags         analysis
// @Produce      json
// @Param        id    path   string  true   "ID del producto"
// @Param        from  query  string  false  "Desde (YYYY-MM-DD); vacío = 90 días atrás"
// @Param        to    query  string  false  "Hasta (YYYY-MM-DD); vacío = hoy"
// @Success      200  {object}  dto.SalesHistoryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/analysis/products/{id}/history [get]
func (h *AnalysisHandler) History(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	to, err := parseDateQuery(c, "to", series.Truncate(time.Now()))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to inválido; se espera YYYY-MM-DD"})
	}
	from, err := parseDateQuery(c, "from", to.AddDate(0, 0, -90))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from inválido; se espera YYYY-MM-DD"})
	}

	records, err := h.analyzer.SalesHistory(c.Context(), id, from, to)
	if err != nil {
		return respondError(c, err)
	}
	items := make([]dto.SaleRecordResponse, 0, len(records))
	for _, r := range records {
		items = append(items, dto.SaleRecordResponse{
			ID:        r.ID,
			ProductID: r.ProductID,
			Date:      r.Date.Format("2006-01-02"),
			Quantity:  r.Quantity,
			UnitPrice: r.UnitPrice.String(),
		})
	}
	return c.JSON(dto.SalesHistoryResponse{
		ProductID: id,
		From:      from.Format("2006-01-02"),
		To:        to.Format("2006-01-02"),
		Total:     len(items),
		Items:     items,
	})
}

// DailyDemand godoc
// @Summary      Serie diaria de demanda de un producto (ventana fija, ceros incluidos)
// @Tags         analysis
// @Produce      json
// @Param        id    path   string  true   "ID del producto"
// @Param        days  query  int     false  "Ventana en días"  default(90)
// @Success      200  {object}  dto.DailyDemandResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/analysis/products/{id}/daily-demand [get]
func (h *AnalysisHandler) DailyDemand(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	days := c.QueryInt("days", 90)

	s, err := h.analyzer.DailyDemand(c.Context(), id, days)
	if err != nil {
		return respondError(c, err)
	}
	points := make([]dto.DailyDemandPointResponse, s.Len())
	for i, v := range s.Values {
		points[i] = dto.DailyDemandPointResponse{
			Date:     s.Date(i).Format("2006-01-02"),
			Quantity: v,
		}
	}
	return c.JSON(dto.DailyDemandResponse{ProductID: id, Days: days, Series: points})
}

func parseDateQuery(c *fiber.Ctx, name string, fallback time.Time) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	return time.Parse("2006-01-02", raw)
}
