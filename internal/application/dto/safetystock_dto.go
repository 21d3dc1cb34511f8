package dto

// SafetyStockParamsRequest parámetros del cálculo de stock de seguridad.
// Los campos en cero toman los valores operativos por defecto; la
// estacionalidad se considera salvo indicación explícita en contrario.
type SafetyStockParamsRequest struct {
	ServiceLevel        float64 `json:"service_level" validate:"omitempty,gt=0,lt=1"`
	HistoryMonths       int     `json:"history_months" validate:"omitempty,min=1"`
	LeadTimeDays        int     `json:"lead_time_days" validate:"omitempty,min=1"`
	ConsiderSeasonality *bool   `json:"consider_seasonality"`
}

// AutoUpdateSafetyStockRequest entrada de la actualización masiva.
type AutoUpdateSafetyStockRequest struct {
	SafetyStockParamsRequest
	ConfidenceThreshold float64 `json:"confidence_threshold" validate:"omitempty,gt=0,lte=1"`
}

// UpdateSafetyStockRequest fijación manual del stock de seguridad.
type UpdateSafetyStockRequest struct {
	SafetyStock int `json:"safety_stock" validate:"min=0"`
}
