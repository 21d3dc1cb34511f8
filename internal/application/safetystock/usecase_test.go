package safetystock_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Reposicion-api/internal/application/analysis"
	"github.com/jhoicas/Reposicion-api/internal/application/safetystock"
	"github.com/jhoicas/Reposicion-api/internal/domain"
	"github.com/jhoicas/Reposicion-api/internal/domain/entity"
	"github.com/jhoicas/Reposicion-api/internal/domain/repository"
	"github.com/jhoicas/Reposicion-api/internal/domain/series"
)

type safetyUpdate struct {
	productID   string
	safetyStock int
	needs       bool
}

type fakeProductRepo struct {
	products map[string]*entity.Product
	updates  []safetyUpdate
}

func (f *fakeProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	return f.products[id], nil
}

func (f *fakeProductRepo) List(_ context.Context, filter repository.ProductFilter) ([]*entity.Product, int, error) {
	all, _ := f.ListActive(context.Background())
	return all, len(all), nil
}

func (f *fakeProductRepo) ListActive(context.Context) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, id := range sortedKeys(f.products) {
		if f.products[id].IsActive {
			out = append(out, f.products[id])
		}
	}
	return out, nil
}

func (f *fakeProductRepo) UpdateSafetyStock(_ context.Context, id string, safetyStock int, needs bool) error {
	f.updates = append(f.updates, safetyUpdate{id, safetyStock, needs})
	return nil
}

func (f *fakeProductRepo) AdjustStock(context.Context, string, int) error { return nil }
func (f *fakeProductRepo) SetNeedsReplenishment(context.Context, string, bool) error {
	return nil
}

func sortedKeys(m map[string]*entity.Product) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := range keys {
		for j := i + 1; j < len(keys); j++ {
			if keys[j] < keys[i] {
				keys[i], keys[j] = keys[j], keys[i]
			}
		}
	}
	return keys
}

type fakeSaleRepo struct {
	points map[string][]series.DailyPoint
}

func (f *fakeSaleRepo) ListByProductAndRange(context.Context, string, time.Time, time.Time) ([]*entity.SaleRecord, error) {
	return nil, nil
}

func (f *fakeSaleRepo) DailyTotals(_ context.Context, productID string, from, to time.Time) ([]series.DailyPoint, error) {
	var out []series.DailyPoint
	for _, p := range f.points[productID] {
		if !p.Date.Before(from) && !p.Date.After(to) {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeSeasonality struct {
	info analysis.SeasonalityInfo
}

func (f *fakeSeasonality) DetectSeasonality(context.Context, string, int) (analysis.SeasonalityInfo, error) {
	return f.info, nil
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func fixedNow() time.Time { return day("2024-04-01") }

// alternatingHistory genera n días consecutivos alternando dos cantidades.
func alternatingHistory(n int, a, b float64) []series.DailyPoint {
	start := day("2024-03-31").AddDate(0, 0, -(n - 1))
	points := make([]series.DailyPoint, n)
	for i := range points {
		q := a
		if i%2 == 1 {
			q = b
		}
		points[i] = series.DailyPoint{Date: start.AddDate(0, 0, i), Quantity: q}
	}
	return points
}

func newCalculator(products map[string]*entity.Product, points map[string][]series.DailyPoint, info analysis.SeasonalityInfo) (*safetystock.Calculator, *fakeProductRepo) {
	repo := &fakeProductRepo{products: products}
	sales := &fakeSaleRepo{points: points}
	return safetystock.NewCalculator(repo, sales, &fakeSeasonality{info: info}, safetystock.DefaultParams(), fixedNow), repo
}

func TestCalculate_ProductoInexistente(t *testing.T) {
	calc, _ := newCalculator(map[string]*entity.Product{}, nil, analysis.SeasonalityInfo{})

	_, err := calc.Calculate(context.Background(), "NOPE", safetystock.DefaultParams())
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestCalculate_NivelDeServicioInvalido(t *testing.T) {
	products := map[string]*entity.Product{"P1": {ID: "P1"}}
	calc, _ := newCalculator(products, nil, analysis.SeasonalityInfo{})

	params := safetystock.DefaultParams()
	params.ServiceLevel = 1.5
	_, err := calc.Calculate(context.Background(), "P1", params)
	assert.ErrorIs(t, err, domain.ErrInvalidParam)
}

func TestCalculate_HistoricoInsuficienteConservaElValorActual(t *testing.T) {
	products := map[string]*entity.Product{"P1": {ID: "P1", SafetyStock: 12}}
	points := map[string][]series.DailyPoint{"P1": alternatingHistory(29, 5, 15)}
	calc, _ := newCalculator(products, points, analysis.SeasonalityInfo{})

	r, err := calc.Calculate(context.Background(), "P1", safetystock.DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, 12, r.CurrentSafetyStock)
	assert.Equal(t, 12, r.SuggestedSafetyStock)
	assert.Zero(t, r.ChangePercentage)
	assert.Equal(t, 0.5, r.ConfidenceLevel)
	assert.NotEmpty(t, r.Reason)
}

func TestCalculate_DemandaConstante(t *testing.T) {
	// Sin variabilidad el término base es cero y rige el piso de 1 unidad.
	products := map[string]*entity.Product{"P1": {ID: "P1", SafetyStock: 8}}
	points := map[string][]series.DailyPoint{"P1": alternatingHistory(180, 10, 10)}
	calc, _ := newCalculator(products, points, analysis.SeasonalityInfo{})

	r, err := calc.Calculate(context.Background(), "P1", safetystock.DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, 1, r.SuggestedSafetyStock)
	assert.Equal(t, 1.0, r.ConfidenceLevel, "180 días y CV cero dan confianza máxima")
	assert.InDelta(t, -0.875, r.ChangePercentage, 1e-9)
	assert.Contains(t, r.Reason, "excesivo")
	assert.Contains(t, r.Reason, "estable")
}

func TestCalculate_DemandaVolatil(t *testing.T) {
	// Demanda 4/16 alternada: media 10, desvío 6, CV 0.6.
	// base = z(0.95)·6·√7 ≈ 26.11 → sugerido 26.
	products := map[string]*entity.Product{"P1": {ID: "P1", SafetyStock: 10}}
	points := map[string][]series.DailyPoint{"P1": alternatingHistory(180, 4, 16)}
	calc, _ := newCalculator(products, points, analysis.SeasonalityInfo{})

	r, err := calc.Calculate(context.Background(), "P1", safetystock.DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, 26, r.SuggestedSafetyStock)
	assert.InDelta(t, 1.6, r.ChangePercentage, 1e-9)
	assert.InDelta(t, 0.4, r.ConfidenceLevel, 1e-9, "min(180/180,1)·max(1-0.6,0.3)")
	assert.Contains(t, r.Reason, "aumentar")
	assert.Contains(t, r.Reason, "volátil")
}

func TestCalculate_FactorDeEstacionalidad(t *testing.T) {
	products := map[string]*entity.Product{"P1": {ID: "P1", SafetyStock: 10}}
	points := map[string][]series.DailyPoint{"P1": alternatingHistory(180, 4, 16)}

	// Estacionalidad fuerte sin pico: factor 1.5 → 26.11·1.5 ≈ 39.17 → 39.
	calc, _ := newCalculator(products, points, analysis.SeasonalityInfo{
		HasSeasonality: true, Strength: 1.0,
	})
	r, err := calc.Calculate(context.Background(), "P1", safetystock.DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, 39, r.SuggestedSafetyStock)

	// En período pico el factor se multiplica además por 1.2.
	calc, _ = newCalculator(products, points, analysis.SeasonalityInfo{
		HasSeasonality: true, Strength: 1.0, IsPeakPeriod: true,
	})
	r, err = calc.Calculate(context.Background(), "P1", safetystock.DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, 47, r.SuggestedSafetyStock)

	// Con el ajuste apagado la estacionalidad detectada no influye.
	params := safetystock.DefaultParams()
	params.ConsiderSeasonality = false
	r, err = calc.Calculate(context.Background(), "P1", params)
	require.NoError(t, err)
	assert.Equal(t, 26, r.SuggestedSafetyStock)
}

func TestCalculate_UsaLosDefaultsInyectados(t *testing.T) {
	products := map[string]*entity.Product{"P1": {ID: "P1", SafetyStock: 10}}
	points := map[string][]series.DailyPoint{"P1": alternatingHistory(180, 4, 16)}
	repo := &fakeProductRepo{products: products}
	sales := &fakeSaleRepo{points: points}
	defaults := safetystock.Params{ServiceLevel: 0.90, LeadTimeDays: 28}
	calc := safetystock.NewCalculator(repo, sales, &fakeSeasonality{}, defaults, fixedNow)

	// Sin parámetros en la petición rigen los defaults del calculador:
	// base = z(0.90)·6·√28 ≈ 40.69 → sugerido 41.
	r, err := calc.Calculate(context.Background(), "P1", safetystock.Params{})
	require.NoError(t, err)
	assert.Equal(t, 41, r.SuggestedSafetyStock)

	// Los parámetros explícitos de la petición siguen teniendo prioridad.
	r, err = calc.Calculate(context.Background(), "P1", safetystock.DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, 26, r.SuggestedSafetyStock)
}

func TestBatchCalculate_SinProductosActivos(t *testing.T) {
	products := map[string]*entity.Product{
		"P1": {ID: "P1", IsActive: false},
	}
	calc, _ := newCalculator(products, nil, analysis.SeasonalityInfo{})

	results, total, err := calc.BatchCalculate(context.Background(), safetystock.DefaultParams(), "", 100, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
	require.NotNil(t, results, "sin productos la lista es vacía, no nula")
	assert.Empty(t, results)
}

func TestBatchCalculate_DevuelveTotalYResultados(t *testing.T) {
	products := map[string]*entity.Product{
		"P1": {ID: "P1", SKU: "SKU-1", Name: "Yerba 1kg", IsActive: true, SafetyStock: 10},
		"P2": {ID: "P2", SKU: "SKU-2", Name: "Azúcar 1kg", IsActive: true, SafetyStock: 3},
	}
	points := map[string][]series.DailyPoint{
		"P1": alternatingHistory(180, 4, 16),
		"P2": alternatingHistory(10, 5, 5), // insuficiente
	}
	calc, _ := newCalculator(products, points, analysis.SeasonalityInfo{})

	results, total, err := calc.BatchCalculate(context.Background(), safetystock.DefaultParams(), "", 100, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, results, 2)
	assert.Equal(t, "SKU-1", results[0].ProductSKU)
	assert.Equal(t, 0.5, results[1].ConfidenceLevel, "P2 cae en la rama de baja confianza")
}

func TestAutoUpdate_SoloEscribeConConfianzaSuficiente(t *testing.T) {
	products := map[string]*entity.Product{
		// P1: 180 días de demanda 9/11 alternada → CV 0.1, confianza 0.9.
		"P1": {ID: "P1", IsActive: true, SafetyStock: 2, StockQuantity: 1},
		// P2: histórico corto → confianza 0.5, queda salteado.
		"P2": {ID: "P2", IsActive: true, SafetyStock: 5, StockQuantity: 50},
		// P3 inactivo: ni se considera.
		"P3": {ID: "P3", IsActive: false, SafetyStock: 5},
	}
	points := map[string][]series.DailyPoint{
		"P1": alternatingHistory(180, 9, 11),
		"P2": alternatingHistory(5, 10, 10),
	}
	calc, repo := newCalculator(products, points, analysis.SeasonalityInfo{})

	summary, err := calc.AutoUpdate(context.Background(), safetystock.DefaultParams(), 0.7)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalProducts)
	assert.Equal(t, 1, summary.UpdatedCount)
	assert.Equal(t, 1, summary.SkippedCount)

	require.Len(t, repo.updates, 1)
	assert.Equal(t, "P1", repo.updates[0].productID)
	assert.True(t, repo.updates[0].needs, "stock disponible por debajo del sugerido")
	assert.Greater(t, repo.updates[0].safetyStock, 1)
}

func TestUpdate_EnciendeElFlagDeReposicion(t *testing.T) {
	products := map[string]*entity.Product{
		"P1": {ID: "P1", StockQuantity: 3},
	}
	calc, repo := newCalculator(products, nil, analysis.SeasonalityInfo{})

	require.NoError(t, calc.Update(context.Background(), "P1", 10))
	require.Len(t, repo.updates, 1)
	assert.Equal(t, safetyUpdate{"P1", 10, true}, repo.updates[0])

	err := calc.Update(context.Background(), "P1", -1)
	assert.ErrorIs(t, err, domain.ErrInvalidParam)
}
