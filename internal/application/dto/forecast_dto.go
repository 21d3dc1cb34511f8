package dto

// TrainForecastRequest entrada para entrenar un modelo de pronóstico.
type TrainForecastRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	ModelType string `json:"model_type" validate:"required,oneof=SARIMA RandomForest"`
}
