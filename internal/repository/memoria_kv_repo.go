package repository

import (
	"context"
	"sync"
)

type memoriaKVRepo struct {
	mu    sync.RWMutex
	datos map[string][]byte
}

// NewMemoriaKVRepository keeps everything in process memory. Nothing
// survives a restart.
func NewMemoriaKVRepository() KVRepository {
	return &memoriaKVRepo{datos: make(map[string][]byte)}
}

func (r *memoriaKVRepo) Cargar(_ context.Context, clave string) ([]byte, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.datos[clave]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), b...), true, nil
}

func (r *memoriaKVRepo) GuardarLote(_ context.Context, lote Lote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, v := range lote {
		r.datos[k] = append([]byte(nil), v...)
	}
	return nil
}

func (r *memoriaKVRepo) Ping(context.Context) error { return nil }
