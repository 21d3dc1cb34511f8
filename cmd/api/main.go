package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Reposicion-api/internal/application/analysis"
	"github.com/jhoicas/Reposicion-api/internal/application/forecast"
	"github.com/jhoicas/Reposicion-api/internal/application/replenishment"
	"github.com/jhoicas/Reposicion-api/internal/application/safetystock"
	"github.com/jhoicas/Reposicion-api/internal/infrastructure/artifacts"
	infrapdf "github.com/jhoicas/Reposicion-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Reposicion-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Reposicion-api/internal/interfaces/http"
	"github.com/jhoicas/Reposicion-api/pkg/config"
	"github.com/jhoicas/Reposicion-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   "info",
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	artifactStore, err := artifacts.NewPebbleStore(cfg.Forecast.ArtifactDir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.Forecast.ArtifactDir).Msg("abrir almacén de artefactos")
	}
	defer artifactStore.Close()

	productRepo := postgres.NewProductRepository(pool)
	saleRepo := postgres.NewSaleRepository(pool)
	replenishmentRepo := postgres.NewReplenishmentRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	analyzer := analysis.NewAnalyzer(saleRepo, nil)
	forecaster := forecast.NewForecaster(productRepo, saleRepo, artifactStore, forecast.Config{
		WindowDays:     cfg.Forecast.WindowDays,
		MinHistoryDays: cfg.Forecast.MinHistoryDays,
		HorizonDays:    cfg.Forecast.HorizonDays,
	}, nil)
	safetyCalc := safetystock.NewCalculator(productRepo, saleRepo, analyzer, safetystock.Params{
		ServiceLevel:        cfg.Inventory.DefaultServiceLevel,
		LeadTimeDays:        cfg.Inventory.DefaultLeadTimeDays,
		ConsiderSeasonality: true,
	}, nil)
	planner := replenishment.NewPlanner(productRepo, forecaster, replenishment.PlannerConfig{
		OrderingCost:    cfg.Inventory.OrderingCost,
		HoldingCostRate: cfg.Inventory.HoldingCostRate,
		HorizonDays:     cfg.Forecast.HorizonDays,
	})
	orders := replenishment.NewOrders(replenishmentRepo, productRepo, txRunner, nil)
	pdfGenerator := infrapdf.NewMarotoPDFGenerator()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Analyzer:    analyzer,
		Forecaster:  forecaster,
		SafetyStock: safetyCalc,
		Planner:     planner,
		Orders:      orders,
		Reports:     pdfGenerator,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
