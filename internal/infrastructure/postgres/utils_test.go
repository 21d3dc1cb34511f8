package postgres

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestTraduccionDeCodigosDeError(t *testing.T) {
	unique := &pgconn.PgError{Code: pgUniqueViolation}
	fk := &pgconn.PgError{Code: pgForeignKeyViolation}

	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", unique)), "detecta el código aun envuelto")
	assert.False(t, isUniqueViolation(fk))
	assert.True(t, isForeignKeyViolation(fmt.Errorf("insert: %w", fk)))
	assert.False(t, isForeignKeyViolation(assert.AnError), "un error ajeno a PostgreSQL no se traduce")
}
