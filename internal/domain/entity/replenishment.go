package entity

import "time"

// Estados de una orden de reposición.
const (
	ReplenishmentPending   = "pending"
	ReplenishmentReceived  = "received"
	ReplenishmentCancelled = "cancelled"
)

// Replenishment representa una orden de reposición de inventario.
// Nace en estado pending; al confirmar la llegada se suma ActualQuantity
// al stock del producto.
type Replenishment struct {
	ID              string
	ProductID       string
	Quantity        int // cantidad pedida
	ActualQuantity  int // cantidad recibida (0 hasta confirmar)
	Status          string
	ExpectedArrival *time.Time
	ReceivedAt      *time.Time
	SupplierInfo    string
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
