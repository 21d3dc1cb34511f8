package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Reposicion-api/internal/application/dto"
	"github.com/jhoicas/Reposicion-api/internal/application/safetystock"
)

// SafetyStockHandler expone el cálculo y la actualización del stock de seguridad.
type SafetyStockHandler struct {
	calc *safetystock.Calculator
}

// NewSafetyStockHandler construye el handler.
func NewSafetyStockHandler(calc *safetystock.Calculator) *SafetyStockHandler {
	return &SafetyStockHandler{calc: calc}
}

// Calculate godoc
// @Summary      Calcular el stock de seguridad sugerido de un producto
// @Tags         safety-stock
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del producto"
// @Param        body  body  dto.SafetyStockParamsRequest  false  "Parámetros; vacío usa defaults"
// @Success      200   {object}  safetystock.Result
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/safety-stock/products/{id}/calculate [post]
func (h *SafetyStockHandler) Calculate(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	var in dto.SafetyStockParamsRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}

	result, err := h.calc.Calculate(c.Context(), id, toParams(in))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// BatchCalculate godoc
// @Summary      Calcular el stock de seguridad de un conjunto de productos
// @Tags         safety-stock
// @Accept       json
// @Produce      json
// @Param        category  query  string  false  "Filtrar por categoría"
// @Param        limit     query  int     false  "Límite"   default(20)
// @Param        offset    query  int     false  "Offset"   default(0)
// @Param        body      body   dto.SafetyStockParamsRequest  false  "Parámetros; vacío usa defaults"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/safety-stock/calculate-batch [post]
func (h *SafetyStockHandler) BatchCalculate(c *fiber.Ctx) error {
	var in dto.SafetyStockParamsRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}
	category := c.Query("category")
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()

	results, total, err := h.calc.BatchCalculate(c.Context(), toParams(in), category, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"items": results,
		"page":  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	})
}

// AutoUpdate godoc
// @Summary      Actualizar masivamente los stocks de seguridad confiables
// @Tags         safety-stock
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AutoUpdateSafetyStockRequest  false  "Parámetros y umbral de confianza"
// @Success      200   {object}  safetystock.AutoUpdateSummary
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/safety-stock/auto-update [post]
func (h *SafetyStockHandler) AutoUpdate(c *fiber.Ctx) error {
	var in dto.AutoUpdateSafetyStockRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}

	summary, err := h.calc.AutoUpdate(c.Context(), toParams(in.SafetyStockParamsRequest), in.ConfidenceThreshold)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summary)
}

// Update godoc
// @Summary      Fijar manualmente el stock de seguridad de un producto
// @Tags         safety-stock
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del producto"
// @Param        body  body  dto.UpdateSafetyStockRequest  true  "Nuevo stock de seguridad"
// @Success      204   "Actualizado"
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/safety-stock/products/{id} [put]
func (h *SafetyStockHandler) Update(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	var in dto.UpdateSafetyStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	if err := h.calc.Update(c.Context(), id, in.SafetyStock); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// toParams traduce el DTO a los parámetros del caso de uso; la estacionalidad
// se considera salvo que el cliente la desactive explícitamente.
func toParams(in dto.SafetyStockParamsRequest) safetystock.Params {
	p := safetystock.Params{
		ServiceLevel:        in.ServiceLevel,
		HistoryMonths:       in.HistoryMonths,
		LeadTimeDays:        in.LeadTimeDays,
		ConsiderSeasonality: true,
	}
	if in.ConsiderSeasonality != nil {
		p.ConsiderSeasonality = *in.ConsiderSeasonality
	}
	return p
}
