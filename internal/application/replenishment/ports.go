package replenishment

import (
	"context"

	"github.com/jhoicas/Reposicion-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza que confirmar una orden y sumar el
// stock recibido sea atómico.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		orders repository.ReplenishmentRepository,
		products repository.ProductRepository,
	) error) error
}
