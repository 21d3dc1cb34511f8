package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o SKU de la tienda (una sola bodega).
// StockQuantity y SafetyStock son los únicos campos que el motor de
// reposición escribe; el resto lo administra la capa CRUD externa.
type Product struct {
	ID                 string
	SKU                string // código único
	Name               string
	Category           string
	Price              decimal.Decimal // precio de venta
	Cost               decimal.Decimal // costo unitario (usado por el EOQ)
	StockQuantity      int             // inventario disponible
	SafetyStock        int             // stock de seguridad vigente
	TargetStock        int             // nivel objetivo de inventario
	LeadTimeDays       int             // días entre pedido y recepción
	IsActive           bool
	NeedsReplenishment bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
