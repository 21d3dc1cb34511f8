package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound         = errors.New("recurso no encontrado")
	ErrProductNotFound  = errors.New("producto no encontrado")
	ErrInvalidInput     = errors.New("datos de entrada inválidos")
	ErrInvalidParam     = errors.New("parámetro inválido")
	ErrInsufficientData = errors.New("datos históricos insuficientes")
	ErrConflict         = errors.New("conflicto con el estado actual")
)

// SchemaError indica que faltan columnas requeridas en un dataset tabular.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("faltan columnas requeridas: %s", strings.Join(e.Missing, ", "))
}

// TrainingError envuelve un fallo numérico durante el entrenamiento de un modelo.
// El mensaje de la causa se conserva; nunca se descarta silenciosamente.
type TrainingError struct {
	ModelType string
	Cause     error
}

func (e *TrainingError) Error() string {
	return fmt.Sprintf("entrenamiento del modelo %s falló: %v", e.ModelType, e.Cause)
}

func (e *TrainingError) Unwrap() error { return e.Cause }
