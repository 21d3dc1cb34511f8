package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Reposicion-api/internal/application/dto"
	"github.com/jhoicas/Reposicion-api/internal/domain"
)

// respondError traduce errores de dominio a respuestas HTTP. El mapeo vive
// solo acá: los casos de uso nunca conocen códigos de estado.
func respondError(c *fiber.Ctx, err error) error {
	var schemaErr *domain.SchemaError
	var trainingErr *domain.TrainingError

	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "PRODUCT_NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrInsufficientData):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_DATA", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidParam):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	case errors.As(err, &schemaErr):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "SCHEMA", Message: schemaErr.Error()})
	case errors.As(err, &trainingErr):
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "TRAINING_FAILED", Message: trainingErr.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
