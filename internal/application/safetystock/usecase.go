// Package safetystock calcula niveles de stock de seguridad por producto a
// partir de la variabilidad de la demanda diaria y el nivel de servicio
// objetivo, con ajuste opcional por estacionalidad semanal.
package safetystock

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/jhoicas/Reposicion-api/internal/application/analysis"
	"github.com/jhoicas/Reposicion-api/internal/domain"
	"github.com/jhoicas/Reposicion-api/internal/domain/entity"
	"github.com/jhoicas/Reposicion-api/internal/domain/repository"
)

// Observaciones diarias mínimas para un cálculo confiable. Por debajo se
// devuelve el valor vigente con confianza fija de 0.5: es una rama de baja
// confianza explícita, no un error.
const minObservations = 30

// Params son los parámetros del cálculo.
type Params struct {
	ServiceLevel        float64 // nivel de servicio objetivo, en (0, 1)
	HistoryMonths       int     // meses de histórico (30 días por mes)
	LeadTimeDays        int     // lead time de reposición
	ConsiderSeasonality bool    // ajustar por estacionalidad semanal
}

// DefaultParams son los valores operativos habituales.
func DefaultParams() Params {
	return Params{ServiceLevel: 0.95, HistoryMonths: 6, LeadTimeDays: 7, ConsiderSeasonality: true}
}

// withDefaults completa los campos en cero con los parámetros base d.
func (p Params) withDefaults(d Params) Params {
	if p.ServiceLevel == 0 {
		p.ServiceLevel = d.ServiceLevel
	}
	if p.HistoryMonths <= 0 {
		p.HistoryMonths = d.HistoryMonths
	}
	if p.LeadTimeDays <= 0 {
		p.LeadTimeDays = d.LeadTimeDays
	}
	return p
}

// Result es el resultado del cálculo para un producto.
type Result struct {
	ProductID            string  `json:"product_id"`
	ProductSKU           string  `json:"product_sku"`
	ProductName          string  `json:"product_name"`
	CurrentSafetyStock   int     `json:"current_safety_stock"`
	SuggestedSafetyStock int     `json:"suggested_safety_stock"`
	ChangePercentage     float64 `json:"change_percentage"`
	ConfidenceLevel      float64 `json:"confidence_level"`
	Reason               string  `json:"reason"`
}

// AutoUpdateSummary resume una corrida de actualización masiva.
type AutoUpdateSummary struct {
	TotalProducts int `json:"total_products"`
	UpdatedCount  int `json:"updated_count"`
	SkippedCount  int `json:"skipped_count"`
}

// seasonalityDetector abstrae al analizador de patrones; en producción es
// *analysis.Analyzer.
type seasonalityDetector interface {
	DetectSeasonality(ctx context.Context, productID string, windowDays int) (analysis.SeasonalityInfo, error)
}

// Calculator calcula y actualiza stocks de seguridad.
type Calculator struct {
	products    repository.ProductRepository
	sales       repository.SaleRepository
	seasonality seasonalityDetector
	defaults    Params
	now         func() time.Time
}

// NewCalculator construye el caso de uso. defaults son los parámetros que se
// aplican cuando la petición no los trae; los campos en cero se completan con
// DefaultParams. now inyectable para tests; nil usa time.Now.
func NewCalculator(
	products repository.ProductRepository,
	sales repository.SaleRepository,
	seasonality seasonalityDetector,
	defaults Params,
	now func() time.Time,
) *Calculator {
	if now == nil {
		now = time.Now
	}
	return &Calculator{
		products:    products,
		sales:       sales,
		seasonality: seasonality,
		defaults:    defaults.withDefaults(DefaultParams()),
		now:         now,
	}
}

// Calculate calcula el stock de seguridad sugerido de un producto:
// base = z(nivel de servicio) · desvío de la demanda diaria · √(lead time),
// ajustada por el factor de estacionalidad si corresponde.
func (c *Calculator) Calculate(ctx context.Context, productID string, params Params) (*Result, error) {
	params = params.withDefaults(c.defaults)
	if params.ServiceLevel <= 0 || params.ServiceLevel >= 1 {
		return nil, fmt.Errorf("%w: el nivel de servicio debe estar en (0, 1)", domain.ErrInvalidParam)
	}

	product, err := c.requireProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return c.calculateFor(ctx, product, params)
}

func (c *Calculator) calculateFor(ctx context.Context, product *entity.Product, params Params) (*Result, error) {
	result := &Result{
		ProductID:   product.ID,
		ProductSKU:  product.SKU,
		ProductName: product.Name,
	}

	windowDays := params.HistoryMonths * 30
	to := c.now()
	from := to.AddDate(0, 0, -windowDays)
	points, err := c.sales.DailyTotals(ctx, product.ID, from, to)
	if err != nil {
		return nil, fmt.Errorf("demanda diaria del producto %s: %w", product.ID, err)
	}

	// Solo cuentan los días con ventas: la variabilidad se mide sobre la
	// demanda observada, no sobre el calendario relleno en cero.
	if len(points) < minObservations {
		result.CurrentSafetyStock = product.SafetyStock
		result.SuggestedSafetyStock = product.SafetyStock
		result.ConfidenceLevel = 0.5
		result.Reason = "el histórico de ventas es insuficiente para calcular un stock de seguridad confiable."
		return result, nil
	}

	daily := make([]float64, len(points))
	for i, p := range points {
		daily[i] = p.Quantity
	}
	mean := stat.Mean(daily, nil)
	std := stat.PopStdDev(daily, nil)

	z := distuv.Normal{Mu: 0, Sigma: 1}.Quantile(params.ServiceLevel)
	base := z * std * math.Sqrt(float64(params.LeadTimeDays))

	// Factor de estacionalidad; si la detección falla se sigue sin ajuste.
	factor := 1.0
	if params.ConsiderSeasonality {
		if info, err := c.seasonality.DetectSeasonality(ctx, product.ID, windowDays); err == nil && info.HasSeasonality {
			factor = 1 + math.Min(info.Strength*0.5, 0.5)
			if info.IsPeakPeriod {
				factor *= 1.2
			}
		}
	}

	suggested := int(math.Round(base * factor))
	if suggested < 1 {
		suggested = 1
	}

	current := product.SafetyStock
	if current < 1 {
		current = 1
	}
	change := float64(suggested-current) / float64(current)

	cv := 1.0
	if mean > 0 {
		cv = std / mean
	}
	confidence := math.Min(float64(len(points))/180, 1) * math.Max(1-cv, 0.3)

	result.CurrentSafetyStock = current
	result.SuggestedSafetyStock = suggested
	result.ChangePercentage = change
	result.ConfidenceLevel = confidence
	result.Reason = adjustmentReason(change, params.ServiceLevel, factor, cv)
	return result, nil
}

// BatchCalculate aplica el cálculo a un conjunto filtrado y paginado de
// productos activos. Devuelve también el total de productos que cumplen el
// filtro, para que el cliente pueda paginar.
func (c *Calculator) BatchCalculate(ctx context.Context, params Params, category string, limit, offset int) ([]*Result, int, error) {
	filter := repository.ProductFilter{
		Category:   category,
		OnlyActive: true,
		Limit:      limit,
		Offset:     offset,
	}
	products, total, err := c.products.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("listando productos: %w", err)
	}

	results := make([]*Result, 0, len(products))
	for _, p := range products {
		r, err := c.calculateFor(ctx, p, params.withDefaults(c.defaults))
		if err != nil {
			return nil, 0, err
		}
		results = append(results, r)
	}
	return results, total, nil
}

// AutoUpdate recalcula el stock de seguridad de todos los productos activos
// y escribe solo los resultados con confianza mayor o igual al umbral.
func (c *Calculator) AutoUpdate(ctx context.Context, params Params, confidenceThreshold float64) (*AutoUpdateSummary, error) {
	if confidenceThreshold <= 0 {
		confidenceThreshold = 0.7
	}
	products, err := c.products.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("listando productos activos: %w", err)
	}

	summary := &AutoUpdateSummary{TotalProducts: len(products)}
	for _, p := range products {
		r, err := c.calculateFor(ctx, p, params.withDefaults(c.defaults))
		if err != nil {
			return nil, err
		}
		if r.ConfidenceLevel < confidenceThreshold {
			summary.SkippedCount++
			continue
		}
		// El flag de reposición solo se enciende acá; apagarlo es decisión
		// del planificador al despachar la orden.
		needs := p.NeedsReplenishment || p.StockQuantity < r.SuggestedSafetyStock
		if err := c.products.UpdateSafetyStock(ctx, p.ID, r.SuggestedSafetyStock, needs); err != nil {
			return nil, fmt.Errorf("actualizando stock de seguridad de %s: %w", p.ID, err)
		}
		summary.UpdatedCount++
	}
	return summary, nil
}

// Update fija manualmente el stock de seguridad de un producto.
func (c *Calculator) Update(ctx context.Context, productID string, safetyStock int) error {
	if safetyStock < 0 {
		return fmt.Errorf("%w: el stock de seguridad no puede ser negativo", domain.ErrInvalidParam)
	}
	product, err := c.requireProduct(ctx, productID)
	if err != nil {
		return err
	}
	needs := product.NeedsReplenishment || product.StockQuantity < safetyStock
	if err := c.products.UpdateSafetyStock(ctx, productID, safetyStock, needs); err != nil {
		return fmt.Errorf("actualizando stock de seguridad de %s: %w", productID, err)
	}
	return nil
}

func (c *Calculator) requireProduct(ctx context.Context, productID string) (*entity.Product, error) {
	p, err := c.products.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("buscando producto %s: %w", productID, err)
	}
	if p == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, productID)
	}
	return p, nil
}

// adjustmentReason arma el texto de la recomendación a partir del signo y la
// magnitud del cambio y del coeficiente de variación.
func adjustmentReason(change, serviceLevel, factor, cv float64) string {
	var reasons []string
	switch {
	case change > 0.2:
		reasons = append(reasons, fmt.Sprintf("conviene aumentar el stock de seguridad para sostener un nivel de servicio del %.0f%%", serviceLevel*100))
		if cv > 0.5 {
			reasons = append(reasons, "la demanda es volátil")
		}
		if factor > 1.1 {
			reasons = append(reasons, "se ponderó la estacionalidad detectada")
		}
	case change < -0.2:
		reasons = append(reasons, fmt.Sprintf("el stock de seguridad actual es excesivo y puede reducirse manteniendo el nivel de servicio del %.0f%%", serviceLevel*100))
		if cv < 0.3 {
			reasons = append(reasons, "la demanda es relativamente estable")
		}
	default:
		reasons = append(reasons, "el stock de seguridad actual es razonable")
	}
	if cv > 0.8 {
		reasons = append(reasons, "conviene apoyarse en el pronóstico de demanda para reducir la incertidumbre")
	}
	return strings.Join(reasons, "; ") + "."
}
