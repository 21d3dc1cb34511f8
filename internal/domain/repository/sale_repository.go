package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Reposicion-api/internal/domain/entity"
	"github.com/jhoicas/Reposicion-api/internal/domain/series"
)

// SaleRepository define el puerto de lectura sobre el histórico de ventas.
// Las implementaciones son read-only.
type SaleRepository interface {
	// ListByProductAndRange devuelve las ventas del producto en [from, to], orden ascendente por fecha.
	ListByProductAndRange(ctx context.Context, productID string, from, to time.Time) ([]*entity.SaleRecord, error)
	// DailyTotals devuelve la demanda agregada por día calendario en [from, to].
	// Solo incluye días con ventas; el relleno en cero lo hace series.Build.
	DailyTotals(ctx context.Context, productID string, from, to time.Time) ([]series.DailyPoint, error)
}
