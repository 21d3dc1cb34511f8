package forecast_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Reposicion-api/internal/application/forecast"
	"github.com/jhoicas/Reposicion-api/internal/domain"
	"github.com/jhoicas/Reposicion-api/internal/domain/entity"
	"github.com/jhoicas/Reposicion-api/internal/domain/repository"
	"github.com/jhoicas/Reposicion-api/internal/domain/series"
)

type fakeProductRepo struct {
	products map[string]*entity.Product
}

func (f *fakeProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	return f.products[id], nil
}
func (f *fakeProductRepo) List(context.Context, repository.ProductFilter) ([]*entity.Product, int, error) {
	return nil, 0, nil
}
func (f *fakeProductRepo) ListActive(context.Context) ([]*entity.Product, error) { return nil, nil }
func (f *fakeProductRepo) UpdateSafetyStock(context.Context, string, int, bool) error {
	return nil
}
func (f *fakeProductRepo) AdjustStock(context.Context, string, int) error        { return nil }
func (f *fakeProductRepo) SetNeedsReplenishment(context.Context, string, bool) error { return nil }

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

// memStore implementa ArtifactStore en memoria y cuenta los Save para
// verificar cuándo hubo reentrenamiento.
type memStore struct {
	data  map[string][]byte
	saves int
}

func newMemStore() *memStore { return &memStore{data: map[string][]byte{}} }

func (s *memStore) Save(_ context.Context, key string, data []byte) error {
	s.data[key] = append([]byte(nil), data...)
	s.saves++
	return nil
}

func (s *memStore) Load(_ context.Context, key string) ([]byte, error) {
	d, ok := s.data[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, key)
	}
	return d, nil
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func fixedNow() time.Time { return day("2024-04-01") }

// historia de días consecutivos terminando el día previo a fixedNow.
func constantHistory(days int, quantity float64) []series.DailyPoint {
	start := day("2024-03-31").AddDate(0, 0, -(days - 1))
	points := make([]series.DailyPoint, days)
	for i := range points {
		points[i] = series.DailyPoint{Date: start.AddDate(0, 0, i), Quantity: quantity}
	}
	return points
}

func newForecaster(points []series.DailyPoint) (*forecast.Forecaster, *memStore) {
	products := &fakeProductRepo{products: map[string]*entity.Product{
		"P1": {ID: "P1", SKU: "SKU-1", Name: "Café molido 500g"},
	}}
	sales := &fakeSaleRepo{points: map[string][]series.DailyPoint{"P1": points}}
	store := newMemStore()
	return forecast.NewForecaster(products, sales, store, forecast.Config{}, fixedNow), store
}

func TestTrain_ProductoInexistente(t *testing.T) {
	f, _ := newForecaster(constantHistory(60, 10))

	_, err := f.Train(context.Background(), "NOPE", forecast.ModelRandomForest)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestTrain_TipoDeModeloInvalido(t *testing.T) {
	f, _ := newForecaster(constantHistory(60, 10))

	_, err := f.Train(context.Background(), "P1", "Prophet")
	assert.ErrorIs(t, err, domain.ErrInvalidParam)
}

func TestTrain_HistoricoInsuficiente(t *testing.T) {
	f, _ := newForecaster(constantHistory(29, 10))

	_, err := f.Train(context.Background(), "P1", forecast.ModelRandomForest)
	assert.ErrorIs(t, err, domain.ErrInsufficientData)

	_, err = f.Train(context.Background(), "P1", forecast.ModelSARIMA)
	assert.ErrorIs(t, err, domain.ErrInsufficientData)
}

func TestTrain_TreintaDiasAlcanzan(t *testing.T) {
	f, store := newForecaster(constantHistory(30, 10))

	result, err := f.Train(context.Background(), "P1", forecast.ModelRandomForest)
	require.NoError(t, err)
	assert.Equal(t, 30, result.DataPoints)
	assert.Equal(t, forecast.ModelRandomForest, result.ModelType)
	assert.Len(t, result.TopFeatures, 5)
	require.NotNil(t, result.Metrics.R2)
	assert.Equal(t, 1, store.saves, "el artefacto queda persistido")
}

func TestTrain_SARIMAReportaMetricas(t *testing.T) {
	f, store := newForecaster(constantHistory(60, 10))

	result, err := f.Train(context.Background(), "P1", forecast.ModelSARIMA)
	require.NoError(t, err)
	assert.Equal(t, forecast.ModelSARIMA, result.ModelType)
	assert.Nil(t, result.Metrics.R2, "SARIMA no evalúa sobre un tramo de test")
	assert.Empty(t, result.TopFeatures)
	assert.Equal(t, 1, store.saves)
}

func TestPredict_DemandaConstante(t *testing.T) {
	f, _ := newForecaster(constantHistory(90, 10))

	result, err := f.Predict(context.Background(), "P1", forecast.ModelRandomForest, 14)
	require.NoError(t, err)

	assert.Equal(t, "Café molido 500g", result.ProductName)
	assert.Equal(t, 14, result.ForecastDays)
	require.Len(t, result.Points, 14)

	// El primer día pronosticado sigue al último día con ventas.
	assert.Equal(t, "2024-04-01", result.Points[0].Date)

	// Con 90 días constantes en 10 el pronóstico debe quedar cerca de 10.
	assert.InDelta(t, 10, result.AvgDaily, 1)
	for _, p := range result.Points {
		assert.GreaterOrEqual(t, p.Predicted, 0.0)
		assert.InDelta(t, p.Predicted*0.8, p.Lower, 0.01)
		assert.InDelta(t, p.Predicted*1.2, p.Upper, 0.01)
	}
}

func TestPredict_NuncaNegativo(t *testing.T) {
	// Demanda en caída fuerte: sin el recorte, la extrapolación da negativos.
	points := make([]series.DailyPoint, 60)
	start := day("2024-02-01")
	for i := range points {
		q := 60 - i
		points[i] = series.DailyPoint{Date: start.AddDate(0, 0, i), Quantity: float64(q)}
	}
	f, _ := newForecaster(points)

	for _, modelType := range []string{forecast.ModelSARIMA, forecast.ModelRandomForest} {
		result, err := f.Predict(context.Background(), "P1", modelType, 30)
		require.NoError(t, err, modelType)
		for _, p := range result.Points {
			assert.GreaterOrEqual(t, p.Predicted, 0.0, modelType)
		}
	}
}

func TestPredict_ReentrenaSoloSiFaltaElArtefacto(t *testing.T) {
	f, store := newForecaster(constantHistory(60, 10))

	// Sin artefacto: Predict entrena implícitamente.
	_, err := f.Predict(context.Background(), "P1", forecast.ModelRandomForest, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, store.saves)

	// Con artefacto: Predict lo reutiliza sin reentrenar.
	_, err = f.Predict(context.Background(), "P1", forecast.ModelRandomForest, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, store.saves, "el segundo Predict no debe reentrenar")
}

func TestPredict_ArtefactoSobreviveLaSerializacion(t *testing.T) {
	f, store := newForecaster(constantHistory(60, 10))

	first, err := f.Predict(context.Background(), "P1", forecast.ModelSARIMA, 7)
	require.NoError(t, err)
	require.Equal(t, 1, store.saves)

	// El segundo Predict decodifica el artefacto guardado; mismo resultado.
	second, err := f.Predict(context.Background(), "P1", forecast.ModelSARIMA, 7)
	require.NoError(t, err)
	assert.Equal(t, first.Points, second.Points)
	assert.Equal(t, 1, store.saves)
}

func TestPredict_HorizonteCeroUsaElDefault(t *testing.T) {
	f, _ := newForecaster(constantHistory(60, 10))

	result, err := f.Predict(context.Background(), "P1", forecast.ModelRandomForest, 0)
	require.NoError(t, err)
	assert.Equal(t, 30, result.ForecastDays)
	assert.Len(t, result.Points, 30)
}
