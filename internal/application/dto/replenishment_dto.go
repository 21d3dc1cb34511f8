package dto

import "time"

// CreateReplenishmentRequest entrada para crear una orden de reposición.
type CreateReplenishmentRequest struct {
	ProductID       string     `json:"product_id" validate:"required"`
	Quantity        int        `json:"quantity" validate:"required,min=1"`
	ExpectedArrival *time.Time `json:"expected_arrival"`
	SupplierInfo    string     `json:"supplier_info"`
	Notes           string     `json:"notes"`
}

// ConfirmReplenishmentRequest confirma la llegada de una orden. ActualQuantity
// nulo usa la cantidad pedida.
type ConfirmReplenishmentRequest struct {
	ActualQuantity *int `json:"actual_quantity" validate:"omitempty,min=1"`
}

// CancelReplenishmentRequest cancela una orden pendiente.
type CancelReplenishmentRequest struct {
	Reason string `json:"reason"`
}

// ReplenishmentResponse salida de una orden de reposición.
type ReplenishmentResponse struct {
	ID              string     `json:"id"`
	ProductID       string     `json:"product_id"`
	Quantity        int        `json:"quantity"`
	ActualQuantity  int        `json:"actual_quantity"`
	Status          string     `json:"status"`
	ExpectedArrival *time.Time `json:"expected_arrival,omitempty"`
	ReceivedAt      *time.Time `json:"received_at,omitempty"`
	SupplierInfo    string     `json:"supplier_info,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// ReplenishmentListResponse lista de órdenes de reposición.
type ReplenishmentListResponse struct {
	Items []ReplenishmentResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}
