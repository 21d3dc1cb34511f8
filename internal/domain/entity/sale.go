package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleRecord representa una venta registrada de un producto en una fecha.
// Invariante: Quantity > 0 en una venta válida. Se espera un registro lógico
// por (Date, ProductID); los duplicados se detectan en la auditoría, nunca
// se fusionan en silencio.
type SaleRecord struct {
	ID        string
	ProductID string
	Date      time.Time // fecha calendario, sin componente horario
	Quantity  int
	UnitPrice decimal.Decimal
	CreatedAt time.Time
}
