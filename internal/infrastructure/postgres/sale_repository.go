package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Reposicion-api/internal/domain/entity"
	"github.com/jhoicas/Reposicion-api/internal/domain/repository"
	"github.com/jhoicas/Reposicion-api/internal/domain/series"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementación read-only del puerto SaleRepository sobre PostgreSQL.
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador de lectura de ventas. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// ListByProductAndRange devuelve las ventas del producto en [from, to], ascendente por fecha.
func (r *SaleRepo) ListByProductAndRange(ctx context.Context, productID string, from, to time.Time) ([]*entity.SaleRecord, error) {
	query := `
		SELECT id, product_id, sale_date, quantity, unit_price, created_at
		FROM sales
		WHERE product_id = $1 AND sale_date >= $2 AND sale_date <= $3
		ORDER BY sale_date`
	rows, err := r.q.Query(ctx, query, productID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	var sales []*entity.SaleRecord
	for rows.Next() {
		var s entity.SaleRecord
		if err := rows.Scan(&s.ID, &s.ProductID, &s.Date, &s.Quantity, &s.UnitPrice, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		sales = append(sales, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	return sales, nil
}

// DailyTotals agrega la demanda por día calendario en [from, to]. Solo
// devuelve días con ventas; el relleno en cero lo hace series.Build.
func (r *SaleRepo) DailyTotals(ctx context.Context, productID string, from, to time.Time) ([]series.DailyPoint, error) {
	query := `
		SELECT sale_date::date AS day, sum(quantity)::float8 AS total
		FROM sales
		WHERE product_id = $1 AND sale_date >= $2 AND sale_date <= $3
		GROUP BY day
		ORDER BY day`
	rows, err := r.q.Query(ctx, query, productID, from, to)
	if err != nil {
		return nil, fmt.Errorf("daily totals: %w", err)
	}
	defer rows.Close()

	var points []series.DailyPoint
	for rows.Next() {
		var p series.DailyPoint
		if err := rows.Scan(&p.Date, &p.Quantity); err != nil {
			return nil, fmt.Errorf("scan daily total: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("daily totals: %w", err)
	}
	return points, nil
}
