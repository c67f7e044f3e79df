// Package memory implementa los repositorios en memoria (driver "memory"), usados en desarrollo y tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/DeVincenzoNicole/ElectroStoreInventory/internal/domain/entity"
	"github.com/DeVincenzoNicole/ElectroStoreInventory/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepository)(nil)

// ProductRepository almacén de stock en memoria. Devuelve y guarda copias.
type ProductRepository struct {
	mu       sync.RWMutex
	products map[entity.ProductKey]entity.Product
}

// NewProductRepository construye el repositorio con los productos iniciales.
func NewProductRepository(seed ...entity.Product) *ProductRepository {
	r := &ProductRepository{products: make(map[entity.ProductKey]entity.Product, len(seed))}
	for _, p := range seed {
		r.products[p.Key] = p
	}
	return r
}

func (r *ProductRepository) Get(_ context.Context, key entity.ProductKey) (*entity.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[key]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// GetForUpdate equivale a Get; la exclusión la da el TxRunner.
func (r *ProductRepository) GetForUpdate(ctx context.Context, key entity.ProductKey) (*entity.Product, error) {
	return r.Get(ctx, key)
}

func (r *ProductRepository) ListByProduct(_ context.Context, productID int64) ([]*entity.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*entity.Product
	for k, p := range r.products {
		if k.ProductID == productID {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key.StoreID < out[j].Key.StoreID })
	return out, nil
}

func (r *ProductRepository) ListByStore(_ context.Context, storeID int64) ([]*entity.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*entity.Product
	for k, p := range r.products {
		if k.StoreID == storeID {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key.ProductID < out[j].Key.ProductID })
	return out, nil
}

func (r *ProductRepository) Save(_ context.Context, p *entity.Product) error {
	r.mu.Lock()
	r.products[p.Key] = *p
	r.mu.Unlock()
	return nil
}

func (r *ProductRepository) Delete(_ context.Context, key entity.ProductKey) error {
	r.mu.Lock()
	delete(r.products, key)
	r.mu.Unlock()
	return nil
}
