package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Códigos de error de PostgreSQL que los repositorios traducen a errores de dominio.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func pgErrCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation: el registro ya existe.
func isUniqueViolation(err error) bool { return pgErrCode(err) == pgUniqueViolation }

// isForeignKeyViolation: la fila referencia un registro inexistente, típicamente
// una orden sobre un producto borrado.
func isForeignKeyViolation(err error) bool { return pgErrCode(err) == pgForeignKeyViolation }
