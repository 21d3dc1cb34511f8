// Package replenishment arma recomendaciones de reposición a partir del
// pronóstico de demanda y administra el ciclo de vida de las órdenes:
// pending → received | cancelled.
package replenishment

import (
	"context"
	"fmt"
	"math"

	"github.com/jhoicas/Reposicion-api/internal/application/forecast"
	"github.com/jhoicas/Reposicion-api/internal/domain"
	"github.com/jhoicas/Reposicion-api/internal/domain/repository"
)

// PlannerConfig son las constantes económicas del EOQ. Son parámetros
// operativos ajustables por configuración, no reglas de negocio fijas.
type PlannerConfig struct {
	OrderingCost    float64 // costo fijo de emitir una orden
	HoldingCostRate float64 // fracción anual del costo unitario por mantener inventario
	HorizonDays     int     // horizonte de pronóstico por defecto
}

func (c PlannerConfig) withDefaults() PlannerConfig {
	if c.OrderingCost <= 0 {
		c.OrderingCost = 100
	}
	if c.HoldingCostRate <= 0 {
		c.HoldingCostRate = 0.2
	}
	if c.HorizonDays <= 0 {
		c.HorizonDays = 30
	}
	return c
}

// Recommendation es la sugerencia de reposición de un producto. Todas las
// cantidades se redondean al entero más cercano recién en la salida; el
// cálculo interno queda en punto flotante.
type Recommendation struct {
	ProductID             string  `json:"product_id"`
	ProductName           string  `json:"product_name"`
	ProductSKU            string  `json:"product_sku"`
	CurrentStock          int     `json:"current_stock"`
	SafetyStock           int     `json:"safety_stock"`
	LeadTimeDays          int     `json:"lead_time_days"`
	PredictedDemand       float64 `json:"predicted_demand"`
	ReplenishmentQuantity int     `json:"replenishment_quantity"`
	EconomicOrderQuantity int     `json:"economic_order_quantity"`
	ReorderPoint          int     `json:"reorder_point"`
	SuggestedQuantity     int     `json:"suggested_quantity"`
	ForecastPeriodDays    int     `json:"forecast_period_days"`
	ModelType             string  `json:"model_type"`
	NeedsReplenishment    bool    `json:"needs_replenishment"`
}

// demandForecaster abstrae al pronosticador; en producción es *forecast.Forecaster.
type demandForecaster interface {
	Predict(ctx context.Context, productID, modelType string, horizon int) (*forecast.ForecastResult, error)
}

// Planner calcula recomendaciones de reposición.
type Planner struct {
	products   repository.ProductRepository
	forecaster demandForecaster
	cfg        PlannerConfig
}

// NewPlanner construye el planificador.
func NewPlanner(products repository.ProductRepository, forecaster demandForecaster, cfg PlannerConfig) *Planner {
	return &Planner{products: products, forecaster: forecaster, cfg: cfg.withDefaults()}
}

// Recommend pronostica la demanda del horizonte y deriva cantidad de
// reposición, punto de reorden y lote económico:
//
//	reposición = max(0, demanda pronosticada + stock de seguridad - stock actual)
//	ROP        = demanda diaria promedio · lead time + stock de seguridad
//	EOQ        = √(2 · demanda anual · costo de orden / (tasa de mantenimiento · costo unitario))
//
// La cantidad sugerida es el máximo entre la reposición y el EOQ.
func (p *Planner) Recommend(ctx context.Context, productID, modelType string, horizonDays int) (*Recommendation, error) {
	if horizonDays <= 0 {
		horizonDays = p.cfg.HorizonDays
	}

	product, err := p.products.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("buscando producto %s: %w", productID, err)
	}
	if product == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, productID)
	}

	forecastResult, err := p.forecaster.Predict(ctx, productID, modelType, horizonDays)
	if err != nil {
		return nil, err
	}

	leadTime := product.LeadTimeDays
	if leadTime <= 0 {
		leadTime = 7
	}

	predicted := forecastResult.TotalPredicted
	avgDaily := forecastResult.AvgDaily
	safety := float64(product.SafetyStock)
	current := float64(product.StockQuantity)

	replenishment := math.Max(0, predicted+safety-current)
	reorderPoint := avgDaily*float64(leadTime) + safety

	// Sin costo unitario no hay EOQ computable; queda en cero y manda la
	// cantidad de reposición.
	var eoq float64
	if unitCost := product.Cost.InexactFloat64(); unitCost > 0 {
		annualDemand := avgDaily * 365
		eoq = math.Sqrt((2 * annualDemand * p.cfg.OrderingCost) / (p.cfg.HoldingCostRate * unitCost))
	}

	return &Recommendation{
		ProductID:             product.ID,
		ProductName:           product.Name,
		ProductSKU:            product.SKU,
		CurrentStock:          product.StockQuantity,
		SafetyStock:           product.SafetyStock,
		LeadTimeDays:          leadTime,
		PredictedDemand:       round2(predicted),
		ReplenishmentQuantity: int(math.Round(replenishment)),
		EconomicOrderQuantity: int(math.Round(eoq)),
		ReorderPoint:          int(math.Round(reorderPoint)),
		SuggestedQuantity:     int(math.Round(math.Max(replenishment, eoq))),
		ForecastPeriodDays:    horizonDays,
		ModelType:             modelType,
		NeedsReplenishment:    current <= reorderPoint,
	}, nil
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
