package dto

// SaleRecordResponse es una venta cruda del historial de un producto.
type SaleRecordResponse struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Date      string `json:"date"` // YYYY-MM-DD
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

// SalesHistoryResponse es el historial de ventas de un producto en un rango.
type SalesHistoryResponse struct {
	ProductID string               `json:"product_id"`
	From      string               `json:"from"`
	To        string               `json:"to"`
	Total     int                  `json:"total"`
	Items     []SaleRecordResponse `json:"items"`
}

// DailyDemandPointResponse es un día de la serie de demanda.
type DailyDemandPointResponse struct {
	Date     string  `json:"date"`
	Quantity float64 `json:"quantity"`
}

// DailyDemandResponse es la serie diaria de demanda de una ventana fija,
// con los días sin ventas en cero.
type DailyDemandResponse struct {
	ProductID string                     `json:"product_id"`
	Days      int                        `json:"days"`
	Series    []DailyDemandPointResponse `json:"series"`
}
