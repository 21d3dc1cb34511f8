package replenishment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Reposicion-api/internal/domain"
	"github.com/jhoicas/Reposicion-api/internal/domain/entity"
	"github.com/jhoicas/Reposicion-api/internal/domain/repository"
)

// CreateOrder es la entrada para registrar una orden de reposición.
type CreateOrder struct {
	ProductID       string     `json:"product_id"`
	Quantity        int        `json:"quantity"`
	ExpectedArrival *time.Time `json:"expected_arrival,omitempty"`
	SupplierInfo    string     `json:"supplier_info,omitempty"`
	Notes           string     `json:"notes,omitempty"`
}

// Analytics resume las órdenes de un rango de fechas.
type Analytics struct {
	StatusCounts     map[string]int `json:"status_counts"`
	TotalQuantity    int            `json:"total_quantity"`
	AvgLeadTimeHours float64        `json:"avg_lead_time_hours"`
}

// NeedingProduct es un producto con el flag de reposición encendido, con su
// contexto de inventario y las órdenes pendientes que ya lo cubren.
type NeedingProduct struct {
	ProductID         string  `json:"product_id"`
	Name              string  `json:"name"`
	SKU               string  `json:"sku"`
	Category          string  `json:"category"`
	CurrentStock      int     `json:"current_stock"`
	SafetyStock       int     `json:"safety_stock"`
	TargetStock       int     `json:"target_stock"`
	SuggestedQuantity int     `json:"suggested_quantity"`
	PendingQuantity   int     `json:"pending_quantity"`
	StockRatio        float64 `json:"stock_ratio"`
}

// Orders administra el ciclo de vida de las órdenes de reposición.
type Orders struct {
	orders   repository.ReplenishmentRepository
	products repository.ProductRepository
	tx       TxRunner
	now      func() time.Time
}

// NewOrders construye el caso de uso. now inyectable para tests; nil usa time.Now.
func NewOrders(orders repository.ReplenishmentRepository, products repository.ProductRepository, tx TxRunner, now func() time.Time) *Orders {
	if now == nil {
		now = time.Now
	}
	return &Orders{orders: orders, products: products, tx: tx, now: now}
}

// Create registra una orden en estado pending.
func (o *Orders) Create(ctx context.Context, req CreateOrder) (*entity.Replenishment, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: la cantidad debe ser positiva", domain.ErrInvalidInput)
	}
	if _, err := o.requireProduct(ctx, req.ProductID); err != nil {
		return nil, err
	}

	now := o.now()
	order := &entity.Replenishment{
		ID:              uuid.NewString(),
		ProductID:       req.ProductID,
		Quantity:        req.Quantity,
		Status:          entity.ReplenishmentPending,
		ExpectedArrival: req.ExpectedArrival,
		SupplierInfo:    req.SupplierInfo,
		Notes:           req.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := o.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("creando orden de reposición: %w", err)
	}
	return order, nil
}

// Get devuelve una orden por id.
func (o *Orders) Get(ctx context.Context, id string) (*entity.Replenishment, error) {
	return o.requireOrder(ctx, id)
}

// List devuelve las órdenes que cumplen el filtro, más recientes primero.
func (o *Orders) List(ctx context.Context, filter repository.ReplenishmentFilter) ([]*entity.Replenishment, error) {
	orders, err := o.orders.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listando órdenes de reposición: %w", err)
	}
	return orders, nil
}

// Confirm marca la llegada de una orden pending y suma la cantidad recibida
// al inventario. Si actualQuantity es nil se asume que llegó lo pedido.
// Una orden que no está pending devuelve domain.ErrConflict.
func (o *Orders) Confirm(ctx context.Context, id string, actualQuantity *int) (*entity.Replenishment, error) {
	order, err := o.requireOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status != entity.ReplenishmentPending {
		return nil, fmt.Errorf("%w: la orden está %s y no puede confirmarse", domain.ErrConflict, order.Status)
	}

	final := order.Quantity
	if actualQuantity != nil {
		if *actualQuantity <= 0 {
			return nil, fmt.Errorf("%w: la cantidad recibida debe ser positiva", domain.ErrInvalidInput)
		}
		final = *actualQuantity
	}

	product, err := o.requireProduct(ctx, order.ProductID)
	if err != nil {
		return nil, err
	}

	now := o.now()
	order.Status = entity.ReplenishmentReceived
	order.ActualQuantity = final
	order.ReceivedAt = &now
	order.UpdatedAt = now

	// La orden y el stock se mueven juntos o no se mueve nada.
	err = o.tx.Run(ctx, func(orders repository.ReplenishmentRepository, products repository.ProductRepository) error {
		if err := orders.Update(ctx, order); err != nil {
			return fmt.Errorf("confirmando orden %s: %w", id, err)
		}
		if err := products.AdjustStock(ctx, order.ProductID, final); err != nil {
			return fmt.Errorf("sumando stock del producto %s: %w", order.ProductID, err)
		}
		// Con la mercadería adentro, si el inventario quedó por encima del
		// stock de seguridad la necesidad de reposición se apaga.
		if product.StockQuantity+final > product.SafetyStock {
			if err := products.SetNeedsReplenishment(ctx, order.ProductID, false); err != nil {
				return fmt.Errorf("apagando flag de reposición de %s: %w", order.ProductID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Cancel cancela una orden pending. Si se da un motivo, reemplaza las notas.
func (o *Orders) Cancel(ctx context.Context, id, reason string) (*entity.Replenishment, error) {
	order, err := o.requireOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status != entity.ReplenishmentPending {
		return nil, fmt.Errorf("%w: la orden está %s y no puede cancelarse", domain.ErrConflict, order.Status)
	}

	order.Status = entity.ReplenishmentCancelled
	if reason != "" {
		order.Notes = reason
	}
	order.UpdatedAt = o.now()
	if err := o.orders.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("cancelando orden %s: %w", id, err)
	}
	return order, nil
}

// GetAnalytics resume las órdenes creadas en [from, to]; sin rango usa los
// últimos 30 días. El lead time promedio sale de las órdenes recibidas.
func (o *Orders) GetAnalytics(ctx context.Context, from, to *time.Time) (*Analytics, error) {
	end := o.now()
	if to != nil {
		end = *to
	}
	start := end.AddDate(0, 0, -30)
	if from != nil {
		start = *from
	}

	orders, err := o.orders.List(ctx, repository.ReplenishmentFilter{From: &start, To: &end})
	if err != nil {
		return nil, fmt.Errorf("listando órdenes para analítica: %w", err)
	}

	analytics := &Analytics{
		StatusCounts: map[string]int{
			entity.ReplenishmentPending:   0,
			entity.ReplenishmentReceived:  0,
			entity.ReplenishmentCancelled: 0,
		},
	}
	var leadSum float64
	var received int
	for _, order := range orders {
		analytics.StatusCounts[order.Status]++
		if order.Status != entity.ReplenishmentReceived {
			continue
		}
		analytics.TotalQuantity += order.Quantity
		if order.ReceivedAt != nil {
			leadSum += order.ReceivedAt.Sub(order.CreatedAt).Hours()
			received++
		}
	}
	if received > 0 {
		analytics.AvgLeadTimeHours = leadSum / float64(received)
	}
	return analytics, nil
}

// ProductsNeedingReplenishment lista los productos activos con el flag de
// reposición encendido, los más urgentes primero (menor ratio stock/seguridad).
func (o *Orders) ProductsNeedingReplenishment(ctx context.Context, limit, offset int) ([]*NeedingProduct, error) {
	products, _, err := o.products.List(ctx, repository.ProductFilter{
		OnlyActive:  true,
		OnlyNeeding: true,
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		return nil, fmt.Errorf("listando productos con necesidad de reposición: %w", err)
	}

	result := make([]*NeedingProduct, 0, len(products))
	for _, p := range products {
		pending, err := o.orders.PendingQuantityByProduct(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("órdenes pendientes de %s: %w", p.ID, err)
		}
		suggested := p.TargetStock - p.StockQuantity
		if suggested < 0 {
			suggested = 0
		}
		var ratio float64
		if p.SafetyStock > 0 {
			ratio = round2(float64(p.StockQuantity) / float64(p.SafetyStock))
		}
		result = append(result, &NeedingProduct{
			ProductID:         p.ID,
			Name:              p.Name,
			SKU:               p.SKU,
			Category:          p.Category,
			CurrentStock:      p.StockQuantity,
			SafetyStock:       p.SafetyStock,
			TargetStock:       p.TargetStock,
			SuggestedQuantity: suggested,
			PendingQuantity:   pending,
			StockRatio:        ratio,
		})
	}
	return result, nil
}

func (o *Orders) requireOrder(ctx context.Context, id string) (*entity.Replenishment, error) {
	order, err := o.orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("buscando orden %s: %w", id, err)
	}
	if order == nil {
		return nil, fmt.Errorf("%w: orden %s", domain.ErrNotFound, id)
	}
	return order, nil
}

func (o *Orders) requireProduct(ctx context.Context, productID string) (*entity.Product, error) {
	p, err := o.products.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("buscando producto %s: %w", productID, err)
	}
	if p == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, productID)
	}
	return p, nil
}
