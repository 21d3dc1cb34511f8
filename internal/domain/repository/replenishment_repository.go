package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Reposicion-api/internal/domain/entity"
)

// ReplenishmentFilter filtro para listados de órdenes de reposición.
type ReplenishmentFilter struct {
	ProductID string     // vacío = todos
	Status    string     // vacío = todos
	From, To  *time.Time // sobre CreatedAt
	Limit     int
	Offset    int
}

// ReplenishmentRepository define el puerto de persistencia de órdenes de reposición.
type ReplenishmentRepository interface {
	Create(ctx context.Context, r *entity.Replenishment) error
	// GetByID devuelve la orden o (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.Replenishment, error)
	Update(ctx context.Context, r *entity.Replenishment) error
	List(ctx context.Context, filter ReplenishmentFilter) ([]*entity.Replenishment, error)
	// PendingQuantityByProduct suma las cantidades de órdenes pending del producto.
	PendingQuantityByProduct(ctx context.Context, productID string) (int, error)
}
