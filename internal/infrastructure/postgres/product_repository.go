package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Reposicion-api/internal/domain/entity"
	"github.com/jhoicas/Reposicion-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, sku, name, category, price, cost, stock_quantity, safety_stock,
	target_stock, lead_time_days, is_active, needs_replenishment, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// GetByID obtiene un producto por ID. Devuelve (nil, nil) si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p, err := scanProduct(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// List devuelve la página filtrada y el total que cumple el filtro.
// Con OnlyNeeding ordena por urgencia: menor ratio stock/seguridad primero.
func (r *ProductRepo) List(ctx context.Context, filter repository.ProductFilter) ([]*entity.Product, int, error) {
	var conds []string
	var args []any
	if filter.Category != "" {
		args = append(args, filter.Category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.OnlyActive {
		conds = append(conds, "is_active")
	}
	if filter.OnlyNeeding {
		conds = append(conds, "needs_replenishment")
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	orderBy := " ORDER BY created_at DESC"
	if filter.OnlyNeeding {
		orderBy = " ORDER BY stock_quantity::float / greatest(safety_stock, 1) ASC"
	}
	query := `SELECT ` + productColumns + ` FROM products` + where + orderBy
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	return products, total, nil
}

// ListActive devuelve todos los productos activos sin paginar.
func (r *ProductRepo) ListActive(ctx context.Context) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE is_active ORDER BY created_at`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active products: %w", err)
	}
	defer rows.Close()

	var products []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list active products: %w", err)
	}
	return products, nil
}

// UpdateSafetyStock escribe el stock de seguridad calculado y el flag de reposición.
func (r *ProductRepo) UpdateSafetyStock(ctx context.Context, id string, safetyStock int, needsReplenishment bool) error {
	_, err := r.q.Exec(ctx,
		`UPDATE products SET safety_stock = $2, needs_replenishment = $3, updated_at = now() WHERE id = $1`,
		id, safetyStock, needsReplenishment,
	)
	if err != nil {
		return fmt.Errorf("update safety stock: %w", err)
	}
	return nil
}

// AdjustStock suma delta (puede ser negativo) al inventario disponible.
func (r *ProductRepo) AdjustStock(ctx context.Context, id string, delta int) error {
	_, err := r.q.Exec(ctx,
		`UPDATE products SET stock_quantity = stock_quantity + $2, updated_at = now() WHERE id = $1`,
		id, delta,
	)
	if err != nil {
		return fmt.Errorf("adjust stock: %w", err)
	}
	return nil
}

// SetNeedsReplenishment actualiza solo el flag de reposición.
func (r *ProductRepo) SetNeedsReplenishment(ctx context.Context, id string, needs bool) error {
	_, err := r.q.Exec(ctx,
		`UPDATE products SET needs_replenishment = $2, updated_at = now() WHERE id = $1`,
		id, needs,
	)
	if err != nil {
		return fmt.Errorf("set needs_replenishment: %w", err)
	}
	return nil
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.ID, &p.SKU, &p.Name, &p.Category, &p.Price, &p.Cost,
		&p.StockQuantity, &p.SafetyStock, &p.TargetStock, &p.LeadTimeDays,
		&p.IsActive, &p.NeedsReplenishment, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
