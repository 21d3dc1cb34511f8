package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Reposicion-api/internal/domain"
	"github.com/jhoicas/Reposicion-api/internal/domain/entity"
	"github.com/jhoicas/Reposicion-api/internal/domain/repository"
)

var _ repository.ReplenishmentRepository = (*ReplenishmentRepo)(nil)

const replenishmentColumns = `id, product_id, quantity, actual_quantity, status,
	expected_arrival, received_at, supplier_info, notes, created_at, updated_at`

// ReplenishmentRepo implementación del puerto ReplenishmentRepository sobre PostgreSQL.
type ReplenishmentRepo struct {
	q Querier
}

// NewReplenishmentRepository construye el adaptador de órdenes de reposición. Pasar pool o tx (Querier).
func NewReplenishmentRepository(q Querier) *ReplenishmentRepo {
	return &ReplenishmentRepo{q: q}
}

// Create persiste una orden nueva.
func (r *ReplenishmentRepo) Create(ctx context.Context, o *entity.Replenishment) error {
	query := `
		INSERT INTO replenishments (` + replenishmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		o.ID, o.ProductID, o.Quantity, o.ActualQuantity, o.Status,
		o.ExpectedArrival, o.ReceivedAt, o.SupplierInfo, o.Notes, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: orden %s ya existe", domain.ErrConflict, o.ID)
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: %s", domain.ErrProductNotFound, o.ProductID)
		}
		return fmt.Errorf("insert replenishment: %w", err)
	}
	return nil
}

// GetByID obtiene una orden por ID. Devuelve (nil, nil) si no existe.
func (r *ReplenishmentRepo) GetByID(ctx context.Context, id string) (*entity.Replenishment, error) {
	query := `SELECT ` + replenishmentColumns + ` FROM replenishments WHERE id = $1`
	o, err := scanReplenishment(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get replenishment: %w", err)
	}
	return o, nil
}

// Update reescribe la orden completa.
func (r *ReplenishmentRepo) Update(ctx context.Context, o *entity.Replenishment) error {
	query := `
		UPDATE replenishments
		SET quantity = $2, actual_quantity = $3, status = $4, expected_arrival = $5,
			received_at = $6, supplier_info = $7, notes = $8, updated_at = $9
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		o.ID, o.Quantity, o.ActualQuantity, o.Status, o.ExpectedArrival,
		o.ReceivedAt, o.SupplierInfo, o.Notes, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update replenishment: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: orden %s", domain.ErrNotFound, o.ID)
	}
	return nil
}

// List devuelve las órdenes que cumplen el filtro, más recientes primero.
func (r *ReplenishmentRepo) List(ctx context.Context, filter repository.ReplenishmentFilter) ([]*entity.Replenishment, error) {
	var conds []string
	var args []any
	if filter.ProductID != "" {
		args = append(args, filter.ProductID)
		conds = append(conds, fmt.Sprintf("product_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conds = append(conds, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conds = append(conds, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	query := `SELECT ` + replenishmentColumns + ` FROM replenishments`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"
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
		return nil, fmt.Errorf("list replenishments: %w", err)
	}
	defer rows.Close()

	var orders []*entity.Replenishment
	for rows.Next() {
		o, err := scanReplenishment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan replenishment: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list replenishments: %w", err)
	}
	return orders, nil
}

// PendingQuantityByProduct suma las cantidades de las órdenes pending del producto.
func (r *ReplenishmentRepo) PendingQuantityByProduct(ctx context.Context, productID string) (int, error) {
	var total int
	err := r.q.QueryRow(ctx,
		`SELECT coalesce(sum(quantity), 0) FROM replenishments WHERE product_id = $1 AND status = $2`,
		productID, entity.ReplenishmentPending,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("pending quantity: %w", err)
	}
	return total, nil
}

func scanReplenishment(row pgx.Row) (*entity.Replenishment, error) {
	var o entity.Replenishment
	err := row.Scan(
		&o.ID, &o.ProductID, &o.Quantity, &o.ActualQuantity, &o.Status,
		&o.ExpectedArrival, &o.ReceivedAt, &o.SupplierInfo, &o.Notes,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
