// Package analysis implementa el análisis de patrones de venta sobre la serie
// diaria de demanda: estadísticas descriptivas, estacionalidad semanal y
// mensual, y dirección de la tendencia.
package analysis

import (
	"context"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/jhoicas/Reposicion-api/internal/domain"
	"github.com/jhoicas/Reposicion-api/internal/domain/entity"
	"github.com/jhoicas/Reposicion-api/internal/domain/repository"
	"github.com/jhoicas/Reposicion-api/internal/domain/series"
)

// Umbral de autocorrelación lag-7 para declarar estacionalidad semanal.
const seasonalityThreshold = 0.3

// Días mínimos para que el flag de estacionalidad sea computable.
const seasonalityMinDays = 14

// Nombres de día con índice lunes=0, igual que las plantillas de carga.
var weekdayNames = [7]string{
	"lunes", "martes", "miércoles", "jueves", "viernes", "sábado", "domingo",
}

// BasicStats estadísticas descriptivas de la serie diaria.
type BasicStats struct {
	TotalSales       float64 `json:"total_sales"`
	AvgDailySales    float64 `json:"avg_daily_sales"`
	MaxDailySales    float64 `json:"max_daily_sales"`
	DaysWithSales    int     `json:"days_with_sales"`
	DaysWithoutSales int     `json:"days_without_sales"`
}

// PatternReport es el resultado completo del análisis de patrones.
type PatternReport struct {
	ProductID            string             `json:"product_id"`
	AnalysisPeriodDays   int                `json:"analysis_period_days"`
	Stats                BasicStats         `json:"basic_stats"`
	BestSellingDay       string             `json:"best_selling_day"`
	WeekdayAverages      [7]float64         `json:"weekday_averages"` // lunes=0
	MonthlyAverages      map[string]float64 `json:"monthly_averages"` // "1".."12"
	MovingAverage7       []float64          `json:"moving_average_7"` // desde el día 7
	Trend                string             `json:"trend"`            // increasing|decreasing|stable
	TrendStrength        float64            `json:"trend_strength"`
	HasWeeklySeasonality bool               `json:"has_weekly_seasonality"`
	Recommendations      []string           `json:"recommendations"`
}

// SeasonalityInfo es el resumen de estacionalidad que consume el cálculo de
// stock de seguridad.
type SeasonalityInfo struct {
	HasSeasonality bool    `json:"has_seasonality"`
	Strength       float64 `json:"seasonality_strength"` // |autocorrelación lag-7|
	IsPeakPeriod   bool    `json:"is_peak_period"`
}

// Analyzer analiza patrones de venta de un producto.
type Analyzer struct {
	sales repository.SaleRepository
	now   func() time.Time
}

// NewAnalyzer construye el analizador. now inyectable para tests; nil usa time.Now.
func NewAnalyzer(sales repository.SaleRepository, now func() time.Time) *Analyzer {
	if now == nil {
		now = time.Now
	}
	return &Analyzer{sales: sales, now: now}
}

// Analyze calcula el reporte de patrones sobre los últimos windowDays días.
// Devuelve domain.ErrNotFound si el producto no tiene ventas en la ventana.
func (a *Analyzer) Analyze(ctx context.Context, productID string, windowDays int) (*PatternReport, error) {
	s, err := a.loadSeries(ctx, productID, windowDays)
	if err != nil {
		return nil, err
	}

	report := &PatternReport{
		ProductID:          productID,
		AnalysisPeriodDays: windowDays,
		MonthlyAverages:    make(map[string]float64),
	}

	// Estadísticas básicas sobre la serie rellenada en cero.
	var max float64
	withSales := 0
	for _, v := range s.Values {
		if v > 0 {
			withSales++
		}
		if v > max {
			max = v
		}
	}
	report.Stats = BasicStats{
		TotalSales:       s.Total(),
		AvgDailySales:    s.Total() / float64(s.Len()),
		MaxDailySales:    max,
		DaysWithSales:    withSales,
		DaysWithoutSales: s.Len() - withSales,
	}

	// Promedios por día de semana (lunes=0) y por mes.
	var weekdaySum, weekdayCount [7]float64
	monthSum := make(map[string]float64)
	monthCount := make(map[string]float64)
	for i, v := range s.Values {
		d := s.Date(i)
		w := mondayIndex(d.Weekday())
		weekdaySum[w] += v
		weekdayCount[w]++
		m := fmt.Sprintf("%d", int(d.Month()))
		monthSum[m] += v
		monthCount[m]++
	}
	best := 0
	for w := 0; w < 7; w++ {
		if weekdayCount[w] > 0 {
			report.WeekdayAverages[w] = weekdaySum[w] / weekdayCount[w]
		}
		// Empate exacto: gana el índice de día menor.
		if report.WeekdayAverages[w] > report.WeekdayAverages[best] {
			best = w
		}
	}
	report.BestSellingDay = weekdayNames[best]
	for m := range monthSum {
		report.MonthlyAverages[m] = monthSum[m] / monthCount[m]
	}

	// Media móvil de 7 días (solo ventanas completas).
	report.MovingAverage7 = trailingMovingAverage(s.Values, 7)

	// Tendencia por mínimos cuadrados sobre el índice temporal.
	x := make([]float64, s.Len())
	for i := range x {
		x[i] = float64(i)
	}
	_, slope := stat.LinearRegression(x, s.Values, nil, false)
	switch {
	case slope > 0:
		report.Trend = "increasing"
	case slope < 0:
		report.Trend = "decreasing"
	default:
		report.Trend = "stable"
	}
	report.TrendStrength = math.Abs(slope)

	if r7 := weeklyAutocorrelation(s.Values); r7 != nil {
		report.HasWeeklySeasonality = math.Abs(*r7) > seasonalityThreshold
	}

	report.Recommendations = buildRecommendations(report)
	return report, nil
}

// DetectSeasonality resume la estacionalidad semanal para el cálculo de stock
// de seguridad: fuerza = |autocorrelación lag-7|, y si el día de hoy pertenece
// a un período pico (su promedio supera en 20% al promedio general).
func (a *Analyzer) DetectSeasonality(ctx context.Context, productID string, windowDays int) (SeasonalityInfo, error) {
	s, err := a.loadSeries(ctx, productID, windowDays)
	if err != nil {
		return SeasonalityInfo{}, err
	}

	info := SeasonalityInfo{}
	r7 := weeklyAutocorrelation(s.Values)
	if r7 == nil {
		return info, nil
	}
	info.Strength = math.Abs(*r7)
	info.HasSeasonality = info.Strength > seasonalityThreshold
	if !info.HasSeasonality {
		return info, nil
	}

	// Pico: el promedio del día de semana actual supera en 20% al general.
	var sum, count float64
	today := mondayIndex(a.now().Weekday())
	for i, v := range s.Values {
		if mondayIndex(s.Date(i).Weekday()) == today {
			sum += v
			count++
		}
	}
	overall := s.Total() / float64(s.Len())
	if count > 0 && overall > 0 {
		info.IsPeakPeriod = sum/count >= 1.2*overall
	}
	return info, nil
}

// SalesHistory devuelve las ventas crudas del producto en el rango [from, to],
// ordenadas por fecha. Es la vista sin agregar que alimenta los reportes.
func (a *Analyzer) SalesHistory(ctx context.Context, productID string, from, to time.Time) ([]*entity.SaleRecord, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: el rango de fechas está invertido", domain.ErrInvalidParam)
	}
	records, err := a.sales.ListByProductAndRange(ctx, productID, from, to)
	if err != nil {
		return nil, fmt.Errorf("historial de ventas del producto %s: %w", productID, err)
	}
	return records, nil
}

// DailyDemand devuelve la demanda diaria de los últimos windowDays días como
// serie de calendario fijo: arranca exactamente windowDays atrás y los días
// sin ventas valen 0. Sin ventas en la ventana → domain.ErrNotFound.
func (a *Analyzer) DailyDemand(ctx context.Context, productID string, windowDays int) (series.Daily, error) {
	if windowDays <= 0 {
		return series.Daily{}, fmt.Errorf("%w: windowDays debe ser positivo", domain.ErrInvalidParam)
	}
	to := series.Truncate(a.now())
	from := to.AddDate(0, 0, -(windowDays - 1))
	points, err := a.sales.DailyTotals(ctx, productID, from, to)
	if err != nil {
		return series.Daily{}, fmt.Errorf("demanda diaria del producto %s: %w", productID, err)
	}
	if len(points) == 0 {
		return series.Daily{}, fmt.Errorf("%w: sin ventas del producto %s en la ventana", domain.ErrNotFound, productID)
	}
	return series.BuildRange(points, from, to)
}

// loadSeries trae la demanda diaria de la ventana y la convierte en serie
// contigua. Sin ventas en la ventana → domain.ErrNotFound.
func (a *Analyzer) loadSeries(ctx context.Context, productID string, windowDays int) (series.Daily, error) {
	if windowDays <= 0 {
		return series.Daily{}, fmt.Errorf("%w: windowDays debe ser positivo", domain.ErrInvalidParam)
	}
	to := a.now()
	from := to.AddDate(0, 0, -windowDays)
	points, err := a.sales.DailyTotals(ctx, productID, from, to)
	if err != nil {
		return series.Daily{}, fmt.Errorf("demanda diaria del producto %s: %w", productID, err)
	}
	if len(points) == 0 {
		return series.Daily{}, fmt.Errorf("%w: sin ventas del producto %s en la ventana", domain.ErrNotFound, productID)
	}
	return series.Build(points)
}

// mondayIndex convierte time.Weekday (domingo=0) al índice lunes=0.
func mondayIndex(w time.Weekday) int { return (int(w) + 6) % 7 }

// trailingMovingAverage devuelve la media móvil de ventana w; solo ventanas completas.
func trailingMovingAverage(values []float64, w int) []float64 {
	if len(values) < w {
		return []float64{}
	}
	out := make([]float64, 0, len(values)-w+1)
	var sum float64
	for i, v := range values {
		sum += v
		if i >= w {
			sum -= values[i-w]
		}
		if i >= w-1 {
			out = append(out, sum/float64(w))
		}
	}
	return out
}

// weeklyAutocorrelation calcula la autocorrelación de Pearson con lag 7.
// Devuelve nil si hay menos de 14 días o la correlación no es computable
// (varianza cero en alguno de los tramos).
func weeklyAutocorrelation(values []float64) *float64 {
	if len(values) < seasonalityMinDays {
		return nil
	}
	lag := 7
	a := values[lag:]
	b := values[:len(values)-lag]
	r := stat.Correlation(a, b, nil)
	if math.IsNaN(r) {
		return nil
	}
	return &r
}

// buildRecommendations genera las sugerencias de texto del reporte.
func buildRecommendations(r *PatternReport) []string {
	recs := []string{
		fmt.Sprintf("el mejor día de venta es %s; considere aumentar inventario ese día", r.BestSellingDay),
	}
	if r.HasWeeklySeasonality {
		recs = append(recs, "se detectó estacionalidad semanal clara")
	} else {
		recs = append(recs, "no se detectó estacionalidad semanal clara")
	}
	recs = append(recs, fmt.Sprintf("la tendencia general es %s; ajuste la política de inventario en consecuencia", r.Trend))
	return recs
}
