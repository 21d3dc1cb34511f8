package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Reposicion-api/internal/application/analysis"
	"github.com/jhoicas/Reposicion-api/internal/application/forecast"
	"github.com/jhoicas/Reposicion-api/internal/application/replenishment"
	"github.com/jhoicas/Reposicion-api/internal/application/safetystock"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Analyzer    *analysis.Analyzer
	Forecaster  *forecast.Forecaster
	SafetyStock *safetystock.Calculator
	Planner     *replenishment.Planner
	Orders      *replenishment.Orders
	Reports     replenishmentReportGenerator
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Calidad de datos (cargas CSV)
	dq := api.Group("/data-quality")
	dqHandler := NewDataQualityHandler()
	dq.Post("/audit", dqHandler.Audit)
	dq.Post("/clean", dqHandler.Clean)
	dq.Post("/outliers", dqHandler.DetectOutliers)
	dq.Post("/missing-values", dqHandler.HandleMissingValues)

	// Análisis de patrones de venta
	analysisGroup := api.Group("/analysis")
	analysisHandler := NewAnalysisHandler(deps.Analyzer)
	analysisGroup.Get("/products/:id/patterns", analysisHandler.Patterns)
	analysisGroup.Get("/products/:id/seasonality", analysisHandler.Seasonality)
	analysisGroup.Get("/products/:id/history", analysisHandler.History)
	analysisGroup.Get("/products/:id/daily-demand", analysisHandler.DailyDemand)

	// Pronóstico de demanda
	forecastGroup := api.Group("/forecast")
	forecastHandler := NewForecastHandler(deps.Forecaster)
	forecastGroup.Post("/train", forecastHandler.Train)
	forecastGroup.Get("/products/:id", forecastHandler.Predict)

	// Stock de seguridad
	ss := api.Group("/safety-stock")
	ssHandler := NewSafetyStockHandler(deps.SafetyStock)
	ss.Post("/products/:id/calculate", ssHandler.Calculate)
	ss.Post("/calculate-batch", ssHandler.BatchCalculate)
	ss.Post("/auto-update", ssHandler.AutoUpdate)
	ss.Put("/products/:id", ssHandler.Update)

	// Reposición: recomendaciones y órdenes
	rep := api.Group("/replenishment")
	repHandler := NewReplenishmentHandler(deps.Planner, deps.Orders, deps.Reports)
	rep.Get("/products/:id/recommendation", repHandler.Recommend)
	rep.Get("/needing", repHandler.NeedingProducts)
	rep.Get("/needing/report", repHandler.NeedingReport)
	rep.Get("/analytics", repHandler.Analytics)
	rep.Post("/orders", repHandler.CreateOrder)
	rep.Get("/orders", repHandler.ListOrders)
	rep.Get("/orders/:id", repHandler.GetOrder)
	rep.Post("/orders/:id/confirm", repHandler.ConfirmOrder)
	rep.Post("/orders/:id/cancel", repHandler.CancelOrder)
}
