// Package artifacts persiste artefactos de modelos entrenados en un
// key-value store embebido (Pebble). Los artefactos son blobs serializados;
// este paquete no sabe nada de su contenido.
package artifacts

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/cockroachdb/pebble"

	"github.com/jhoicas/Reposicion-api/internal/application/forecast"
	"github.com/jhoicas/Reposicion-api/internal/domain"
)

var _ forecast.ArtifactStore = (*PebbleStore)(nil)

// PebbleStore implementa forecast.ArtifactStore sobre PebbleDB.
type PebbleStore struct {
	db *pebble.DB
}

// NewPebbleStore abre (o crea) la base en dir.
func NewPebbleStore(dir string) (*PebbleStore, error) {
	db, err := pebble.Open(filepath.Clean(dir), &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("pebble open: %w", err)
	}
	return &PebbleStore{db: db}, nil
}

// Close cierra la base.
func (s *PebbleStore) Close() error { return s.db.Close() }

// Save guarda el artefacto. Escritura con sync: los artefactos se escriben
// solo al entrenar.
func (s *PebbleStore) Save(_ context.Context, key string, data []byte) error {
	if err := s.db.Set([]byte(key), data, pebble.Sync); err != nil {
		return fmt.Errorf("pebble set %s: %w", key, err)
	}
	return nil
}

// Load devuelve el artefacto o domain.ErrNotFound si la clave no existe.
func (s *PebbleStore) Load(_ context.Context, key string) ([]byte, error) {
	value, closer, err := s.db.Get([]byte(key))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, fmt.Errorf("%w: artefacto %s", domain.ErrNotFound, key)
		}
		return nil, fmt.Errorf("pebble get %s: %w", key, err)
	}
	out := append([]byte(nil), value...)
	if err := closer.Close(); err != nil {
		return nil, fmt.Errorf("pebble close %s: %w", key, err)
	}
	return out, nil
}
