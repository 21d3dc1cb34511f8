package replenishment_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Reposicion-api/internal/application/replenishment"
	"github.com/jhoicas/Reposicion-api/internal/domain"
	"github.com/jhoicas/Reposicion-api/internal/domain/entity"
	"github.com/jhoicas/Reposicion-api/internal/domain/repository"
)

type fakeOrderRepo struct {
	orders map[string]*entity.Replenishment
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[string]*entity.Replenishment{}}
}

func (f *fakeOrderRepo) Create(_ context.Context, r *entity.Replenishment) error {
	cp := *r
	f.orders[r.ID] = &cp
	return nil
}

func (f *fakeOrderRepo) GetByID(_ context.Context, id string) (*entity.Replenishment, error) {
	r, ok := f.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (f *fakeOrderRepo) Update(_ context.Context, r *entity.Replenishment) error {
	cp := *r
	f.orders[r.ID] = &cp
	return nil
}

func (f *fakeOrderRepo) List(_ context.Context, filter repository.ReplenishmentFilter) ([]*entity.Replenishment, error) {
	var out []*entity.Replenishment
	for _, r := range f.orders {
		if filter.ProductID != "" && r.ProductID != filter.ProductID {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		if filter.From != nil && r.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && r.CreatedAt.After(*filter.To) {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeOrderRepo) PendingQuantityByProduct(_ context.Context, productID string) (int, error) {
	total := 0
	for _, r := range f.orders {
		if r.ProductID == productID && r.Status == entity.ReplenishmentPending {
			total += r.Quantity
		}
	}
	return total, nil
}

// fakeTxRunner ejecuta el callback directo sobre los fakes, sin transacción.
type fakeTxRunner struct {
	orders   repository.ReplenishmentRepository
	products repository.ProductRepository
}

func (f *fakeTxRunner) Run(_ context.Context, fn func(
	orders repository.ReplenishmentRepository,
	products repository.ProductRepository,
) error) error {
	return fn(f.orders, f.products)
}

func newOrders(repo *fakeOrderRepo, products *fakeProductRepo) *replenishment.Orders {
	tx := &fakeTxRunner{orders: repo, products: products}
	return replenishment.NewOrders(repo, products, tx, fixedNow)
}

func fixedNow() time.Time { return day("2024-04-01") }

func TestCreate_ArrancaPendiente(t *testing.T) {
	products := newFakeProductRepo(&entity.Product{ID: "P1"})
	orders := newOrders(newFakeOrderRepo(), products)

	order, err := orders.Create(context.Background(), replenishment.CreateOrder{
		ProductID: "P1", Quantity: 50, SupplierInfo: "Proveedor Sur",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, order.ID)
	assert.Equal(t, entity.ReplenishmentPending, order.Status)
	assert.Equal(t, 50, order.Quantity)
	assert.Zero(t, order.ActualQuantity)
	assert.Equal(t, fixedNow(), order.CreatedAt)
}

func TestCreate_Validaciones(t *testing.T) {
	products := newFakeProductRepo(&entity.Product{ID: "P1"})
	orders := newOrders(newFakeOrderRepo(), products)

	_, err := orders.Create(context.Background(), replenishment.CreateOrder{ProductID: "P1", Quantity: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = orders.Create(context.Background(), replenishment.CreateOrder{ProductID: "NOPE", Quantity: 5})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestConfirm_SumaStockYApagaElFlag(t *testing.T) {
	products := newFakeProductRepo(&entity.Product{
		ID: "P1", StockQuantity: 3, SafetyStock: 10, NeedsReplenishment: true,
	})
	repo := newFakeOrderRepo()
	orders := newOrders(repo, products)

	order, err := orders.Create(context.Background(), replenishment.CreateOrder{ProductID: "P1", Quantity: 20})
	require.NoError(t, err)

	confirmed, err := orders.Confirm(context.Background(), order.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, entity.ReplenishmentReceived, confirmed.Status)
	assert.Equal(t, 20, confirmed.ActualQuantity, "sin cantidad real se asume lo pedido")
	require.NotNil(t, confirmed.ReceivedAt)

	assert.Equal(t, 20, products.adjusts["P1"])
	needs, ok := products.flags["P1"]
	require.True(t, ok, "3+20 > 10: el flag debe apagarse")
	assert.False(t, needs)
}

func TestConfirm_CantidadParcialNoApagaElFlag(t *testing.T) {
	products := newFakeProductRepo(&entity.Product{
		ID: "P1", StockQuantity: 3, SafetyStock: 10, NeedsReplenishment: true,
	})
	repo := newFakeOrderRepo()
	orders := newOrders(repo, products)

	order, err := orders.Create(context.Background(), replenishment.CreateOrder{ProductID: "P1", Quantity: 20})
	require.NoError(t, err)

	actual := 4 // 3+4 = 7 ≤ 10: sigue por debajo del stock de seguridad
	confirmed, err := orders.Confirm(context.Background(), order.ID, &actual)
	require.NoError(t, err)
	assert.Equal(t, 4, confirmed.ActualQuantity)
	assert.Equal(t, 4, products.adjusts["P1"])
	_, touched := products.flags["P1"]
	assert.False(t, touched, "el flag no se toca si el stock sigue bajo")
}

func TestConfirm_SoloOrdenesPendientes(t *testing.T) {
	products := newFakeProductRepo(&entity.Product{ID: "P1", SafetyStock: 1})
	orders := newOrders(newFakeOrderRepo(), products)

	order, err := orders.Create(context.Background(), replenishment.CreateOrder{ProductID: "P1", Quantity: 5})
	require.NoError(t, err)
	_, err = orders.Confirm(context.Background(), order.ID, nil)
	require.NoError(t, err)

	_, err = orders.Confirm(context.Background(), order.ID, nil)
	assert.ErrorIs(t, err, domain.ErrConflict, "una orden recibida no se confirma dos veces")

	_, err = orders.Confirm(context.Background(), "inexistente", nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCancel_ReemplazaNotasConElMotivo(t *testing.T) {
	products := newFakeProductRepo(&entity.Product{ID: "P1"})
	orders := newOrders(newFakeOrderRepo(), products)

	order, err := orders.Create(context.Background(), replenishment.CreateOrder{
		ProductID: "P1", Quantity: 5, Notes: "pedido original",
	})
	require.NoError(t, err)

	cancelled, err := orders.Cancel(context.Background(), order.ID, "el proveedor no tiene stock")
	require.NoError(t, err)
	assert.Equal(t, entity.ReplenishmentCancelled, cancelled.Status)
	assert.Equal(t, "el proveedor no tiene stock", cancelled.Notes)

	_, err = orders.Cancel(context.Background(), order.ID, "")
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestGetAnalytics_ResumePorEstado(t *testing.T) {
	products := newFakeProductRepo(&entity.Product{ID: "P1", SafetyStock: 1})
	repo := newFakeOrderRepo()
	orders := newOrders(repo, products)

	first, err := orders.Create(context.Background(), replenishment.CreateOrder{ProductID: "P1", Quantity: 10})
	require.NoError(t, err)
	_, err = orders.Confirm(context.Background(), first.ID, nil)
	require.NoError(t, err)

	second, err := orders.Create(context.Background(), replenishment.CreateOrder{ProductID: "P1", Quantity: 7})
	require.NoError(t, err)
	_, err = orders.Cancel(context.Background(), second.ID, "")
	require.NoError(t, err)

	_, err = orders.Create(context.Background(), replenishment.CreateOrder{ProductID: "P1", Quantity: 3})
	require.NoError(t, err)

	analytics, err := orders.GetAnalytics(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, analytics.StatusCounts[entity.ReplenishmentPending])
	assert.Equal(t, 1, analytics.StatusCounts[entity.ReplenishmentReceived])
	assert.Equal(t, 1, analytics.StatusCounts[entity.ReplenishmentCancelled])
	assert.Equal(t, 10, analytics.TotalQuantity, "solo cuentan las órdenes recibidas")
	assert.Zero(t, analytics.AvgLeadTimeHours, "creación y recepción en el mismo instante")
}

func TestProductsNeedingReplenishment(t *testing.T) {
	products := newFakeProductRepo(
		&entity.Product{
			ID: "P1", Name: "Yerba 1kg", SKU: "SKU-1", Category: "almacén",
			StockQuantity: 2, SafetyStock: 10, TargetStock: 50,
			IsActive: true, NeedsReplenishment: true,
		},
		&entity.Product{
			ID: "P2", StockQuantity: 80, SafetyStock: 10, TargetStock: 50,
			IsActive: true, NeedsReplenishment: false,
		},
	)
	repo := newFakeOrderRepo()
	orders := newOrders(repo, products)

	_, err := orders.Create(context.Background(), replenishment.CreateOrder{ProductID: "P1", Quantity: 15})
	require.NoError(t, err)

	list, err := orders.ProductsNeedingReplenishment(context.Background(), 100, 0)
	require.NoError(t, err)
	require.Len(t, list, 1, "solo productos con el flag encendido")

	p := list[0]
	assert.Equal(t, "P1", p.ProductID)
	assert.Equal(t, 48, p.SuggestedQuantity, "target 50 - stock 2")
	assert.Equal(t, 15, p.PendingQuantity)
	assert.InDelta(t, 0.2, p.StockRatio, 1e-9)
}
