package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Reposicion-api/internal/application/dto"
	"github.com/jhoicas/Reposicion-api/internal/application/forecast"
)

// ForecastHandler expone el entrenamiento y la predicción de demanda.
type ForecastHandler struct {
	forecaster *forecast.Forecaster
}

// NewForecastHandler construye el handler.
func NewForecastHandler(forecaster *forecast.Forecaster) *ForecastHandler {
	return &ForecastHandler{forecaster: forecaster}
}

// Train godoc
// @Summary      Entrenar un modelo de pronóstico para un producto
// @Tags         forecast
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TrainForecastRequest  true  "Producto y tipo de modelo"
// @Success      200   {object}  forecast.TrainResult
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/forecast/train [post]
func (h *ForecastHandler) Train(c *fiber.Ctx) error {
	var in dto.TrainForecastRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.ProductID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "product_id es requerido"})
	}

	result, err := h.forecaster.Train(c.Context(), in.ProductID, in.ModelType)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// Predict godoc
// @Summary      Predecir la demanda diaria de un producto
// @Tags         forecast
// @Produce      json
// @Param        id          path   string  true   "ID del producto"
// @Param        model_type  query  string  false  "SARIMA|RandomForest"  default(SARIMA)
// @Param        days        query  int     false  "Horizonte en días"    default(30)
// @Success      200  {object}  forecast.ForecastResult
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/forecast/products/{id} [get]
func (h *ForecastHandler) Predict(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	modelType := c.Query("model_type", forecast.ModelSARIMA)
	days := c.QueryInt("days", 0)

	result, err := h.forecaster.Predict(c.Context(), id, modelType, days)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}
