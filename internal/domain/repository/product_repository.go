package repository

import (
	"context"

	"github.com/jhoicas/Reposicion-api/internal/domain/entity"
)

// ProductFilter filtro para listados de productos.
type ProductFilter struct {
	Category    string // vacío = todas
	OnlyActive  bool
	OnlyNeeding bool // solo productos con el flag de reposición encendido
	Limit       int
	Offset      int
}

// ProductRepository define el puerto de acceso a Product (DIP).
// El motor de reposición solo escribe StockQuantity, SafetyStock y
// NeedsReplenishment; el resto del registro pertenece a la capa CRUD externa.
type ProductRepository interface {
	// GetByID devuelve el producto o (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// List devuelve la página filtrada y el total de productos que cumplen el filtro.
	// Con OnlyNeeding ordena por stock_quantity/safety_stock ascendente (más urgente primero).
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, int, error)
	// ListActive devuelve todos los productos activos (sin paginar; para auto-update).
	ListActive(ctx context.Context) ([]*entity.Product, error)
	// UpdateSafetyStock escribe el stock de seguridad y el flag de reposición.
	UpdateSafetyStock(ctx context.Context, id string, safetyStock int, needsReplenishment bool) error
	// AdjustStock suma delta (puede ser negativo) al inventario disponible.
	AdjustStock(ctx context.Context, id string, delta int) error
	// SetNeedsReplenishment actualiza solo el flag de reposición.
	SetNeedsReplenishment(ctx context.Context, id string, needs bool) error
}
