// Package forecast implementa el pronóstico de demanda con dos estrategias
// intercambiables: un SARIMA estacional de período semanal y un ensamble de
// árboles de regresión con bagging. Los artefactos entrenados se persisten
// por (producto, tipo de modelo) y se reutilizan hasta reentrenar.
package forecast

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jhoicas/Reposicion-api/internal/domain"
	"github.com/jhoicas/Reposicion-api/internal/domain/entity"
	"github.com/jhoicas/Reposicion-api/internal/domain/repository"
	"github.com/jhoicas/Reposicion-api/internal/domain/series"
)

// Tipos de modelo soportados.
const (
	ModelSARIMA       = "SARIMA"
	ModelRandomForest = "RandomForest"
)

// ArtifactStore persiste artefactos de modelo serializados por clave.
type ArtifactStore interface {
	// Save guarda el artefacto, reemplazando el existente bajo la misma clave.
	Save(ctx context.Context, key string, data []byte) error
	// Load devuelve el artefacto o domain.ErrNotFound si la clave no existe.
	Load(ctx context.Context, key string) ([]byte, error)
}

// Config son los parámetros operativos del pronóstico.
type Config struct {
	WindowDays     int // ventana de histórico a consultar
	MinHistoryDays int // días mínimos para entrenar
	HorizonDays    int // horizonte por defecto de Predict
}

func (c Config) withDefaults() Config {
	if c.WindowDays <= 0 {
		c.WindowDays = 90
	}
	if c.MinHistoryDays <= 0 {
		c.MinHistoryDays = 30
	}
	if c.HorizonDays <= 0 {
		c.HorizonDays = 30
	}
	return c
}

// Metrics son las métricas de ajuste reportadas al entrenar. R2 solo aplica
// al ensamble, que evalúa sobre un tramo de test.
type Metrics struct {
	MAE  float64  `json:"mae"`
	RMSE float64  `json:"rmse"`
	R2   *float64 `json:"r2,omitempty"`
}

// TrainResult es el resumen del entrenamiento de un modelo.
type TrainResult struct {
	ProductID   string          `json:"product_id"`
	ModelType   string          `json:"model_type"`
	DataPoints  int             `json:"data_points"`
	Metrics     Metrics         `json:"metrics"`
	TopFeatures []FeatureWeight `json:"top_features,omitempty"`
	TrainedAt   time.Time       `json:"trained_at"`
}

// ForecastPoint es la predicción de un día con su banda de ±20%.
type ForecastPoint struct {
	Date      string  `json:"date"`
	Predicted float64 `json:"predicted_quantity"`
	Lower     float64 `json:"lower_bound"`
	Upper     float64 `json:"upper_bound"`
}

// ForecastResult es el pronóstico completo de un producto.
type ForecastResult struct {
	ProductID      string          `json:"product_id"`
	ProductName    string          `json:"product_name"`
	ProductSKU     string          `json:"product_sku"`
	ModelType      string          `json:"model_type"`
	ForecastDays   int             `json:"forecast_days"`
	TotalPredicted float64         `json:"total_predicted_quantity"`
	AvgDaily       float64         `json:"average_daily_quantity"`
	Points         []ForecastPoint `json:"forecast_data"`
}

// trainedModel es lo que ambas estrategias saben hacer una vez entrenadas.
type trainedModel interface {
	forecast(h int) []float64
	end() time.Time
}

// Forecaster entrena modelos de demanda y pronostica con ellos.
type Forecaster struct {
	products repository.ProductRepository
	sales    repository.SaleRepository
	store    ArtifactStore
	cfg      Config
	now      func() time.Time
}

// NewForecaster construye el caso de uso. now inyectable para tests; nil usa time.Now.
func NewForecaster(
	products repository.ProductRepository,
	sales repository.SaleRepository,
	store ArtifactStore,
	cfg Config,
	now func() time.Time,
) *Forecaster {
	if now == nil {
		now = time.Now
	}
	return &Forecaster{products: products, sales: sales, store: store, cfg: cfg.withDefaults(), now: now}
}

// Train entrena el modelo indicado con el histórico reciente del producto y
// persiste el artefacto. Fallos numéricos del ajuste salen envueltos en
// domain.TrainingError con la causa original.
func (f *Forecaster) Train(ctx context.Context, productID, modelType string) (*TrainResult, error) {
	if _, err := f.requireProduct(ctx, productID); err != nil {
		return nil, err
	}
	_, result, err := f.trainAndStore(ctx, productID, modelType)
	return result, err
}

// Predict pronostica horizon días de demanda. Si no hay artefacto para
// (producto, modelo) entrena implícitamente antes de pronosticar.
func (f *Forecaster) Predict(ctx context.Context, productID, modelType string, horizon int) (*ForecastResult, error) {
	if horizon <= 0 {
		horizon = f.cfg.HorizonDays
	}
	product, err := f.requireProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := validateModelType(modelType); err != nil {
		return nil, err
	}

	var model trainedModel
	data, err := f.store.Load(ctx, artifactKey(productID, modelType))
	switch {
	case err == nil:
		model, err = decodeModel(modelType, data)
		if err != nil {
			return nil, fmt.Errorf("artefacto de %s/%s corrupto: %w", productID, modelType, err)
		}
	case errors.Is(err, domain.ErrNotFound):
		model, _, err = f.trainAndStore(ctx, productID, modelType)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("cargando artefacto de %s/%s: %w", productID, modelType, err)
	}

	predictions := model.forecast(horizon)

	result := &ForecastResult{
		ProductID:    productID,
		ProductName:  product.Name,
		ProductSKU:   product.SKU,
		ModelType:    modelType,
		ForecastDays: horizon,
		Points:       make([]ForecastPoint, 0, horizon),
	}
	var total float64
	for i, p := range predictions {
		total += p
		date := model.end().AddDate(0, 0, i+1)
		result.Points = append(result.Points, ForecastPoint{
			Date:      date.Format("2006-01-02"),
			Predicted: round2(p),
			Lower:     round2(p * 0.8),
			Upper:     round2(p * 1.2),
		})
	}
	result.TotalPredicted = round2(total)
	result.AvgDaily = round2(total / float64(horizon))
	return result, nil
}

// trainAndStore entrena, serializa y persiste; devuelve también el modelo en
// memoria para que Predict no tenga que recargarlo.
func (f *Forecaster) trainAndStore(ctx context.Context, productID, modelType string) (trainedModel, *TrainResult, error) {
	if err := validateModelType(modelType); err != nil {
		return nil, nil, err
	}
	s, err := f.loadSeries(ctx, productID)
	if err != nil {
		return nil, nil, err
	}

	trainedAt := f.now()
	result := &TrainResult{
		ProductID:  productID,
		ModelType:  modelType,
		DataPoints: s.Len(),
		TrainedAt:  trainedAt,
	}

	var model trainedModel
	switch modelType {
	case ModelSARIMA:
		m, err := fitSARIMA(s.Values, s.Start, trainedAt)
		if err != nil {
			return nil, nil, &domain.TrainingError{ModelType: modelType, Cause: err}
		}
		result.Metrics = Metrics{MAE: round2(m.MAE), RMSE: round2(m.RMSE)}
		model = m
	case ModelRandomForest:
		m := fitForest(s.Values, s.Start, trainedAt)
		r2 := round2(m.R2)
		result.Metrics = Metrics{MAE: round2(m.MAE), RMSE: round2(m.RMSE), R2: &r2}
		result.TopFeatures = m.TopFeatures
		model = m
	}

	data, err := encodeModel(model)
	if err != nil {
		return nil, nil, fmt.Errorf("serializando artefacto de %s/%s: %w", productID, modelType, err)
	}
	if err := f.store.Save(ctx, artifactKey(productID, modelType), data); err != nil {
		return nil, nil, fmt.Errorf("guardando artefacto de %s/%s: %w", productID, modelType, err)
	}
	return model, result, nil
}

// loadSeries trae la demanda diaria de la ventana de entrenamiento.
// Menos de MinHistoryDays días de serie → domain.ErrInsufficientData.
func (f *Forecaster) loadSeries(ctx context.Context, productID string) (series.Daily, error) {
	to := f.now()
	from := to.AddDate(0, 0, -f.cfg.WindowDays)
	points, err := f.sales.DailyTotals(ctx, productID, from, to)
	if err != nil {
		return series.Daily{}, fmt.Errorf("demanda diaria del producto %s: %w", productID, err)
	}
	if len(points) == 0 {
		return series.Daily{}, fmt.Errorf("%w: el producto %s no tiene ventas en la ventana de %d días",
			domain.ErrInsufficientData, productID, f.cfg.WindowDays)
	}
	s, err := series.Build(points)
	if err != nil {
		return series.Daily{}, err
	}
	if s.Len() < f.cfg.MinHistoryDays {
		return series.Daily{}, fmt.Errorf("%w: se requieren al menos %d días de histórico y hay %d",
			domain.ErrInsufficientData, f.cfg.MinHistoryDays, s.Len())
	}
	return s, nil
}

func (f *Forecaster) requireProduct(ctx context.Context, productID string) (*entity.Product, error) {
	p, err := f.products.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("buscando producto %s: %w", productID, err)
	}
	if p == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, productID)
	}
	return p, nil
}

func validateModelType(modelType string) error {
	switch modelType {
	case ModelSARIMA, ModelRandomForest:
		return nil
	}
	return fmt.Errorf("%w: tipo de modelo %q no soportado", domain.ErrInvalidParam, modelType)
}

func artifactKey(productID, modelType string) string {
	return fmt.Sprintf("forecast/%s/%s", productID, modelType)
}

func encodeModel(m trainedModel) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeModel(modelType string, data []byte) (trainedModel, error) {
	dec := gob.NewDecoder(bytes.NewReader(data))
	switch modelType {
	case ModelSARIMA:
		var m sarimaModel
		if err := dec.Decode(&m); err != nil {
			return nil, err
		}
		return &m, nil
	default:
		var m forestModel
		if err := dec.Decode(&m); err != nil {
			return nil, err
		}
		return &m, nil
	}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
