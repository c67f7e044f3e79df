package memory

import (
	"context"
	"sync"

	"github.com/DeVincenzoNicole/ElectroStoreInventory/internal/domain/entity"
	"github.com/DeVincenzoNicole/ElectroStoreInventory/internal/domain/repository"
)

var _ repository.StoreRepository = (*StoreRepository)(nil)

// StoreRepository sucursales en memoria.
type StoreRepository struct {
	mu     sync.RWMutex
	stores map[int64]entity.Store
}

// NewStoreRepository construye el repositorio con las sucursales dadas.
func NewStoreRepository(stores ...entity.Store) *StoreRepository {
	r := &StoreRepository{stores: make(map[int64]entity.Store, len(stores))}
	for _, s := range stores {
		r.stores[s.ID] = s
	}
	return r
}

func (r *StoreRepository) GetByID(_ context.Context, id int64) (*entity.Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.stores[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

// Add registra o reemplaza una sucursal.
func (r *StoreRepository) Add(s entity.Store) {
	r.mu.Lock()
	r.stores[s.ID] = s
	r.mu.Unlock()
}
