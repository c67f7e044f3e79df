package memory

import (
	"context"
	"sync"

	"github.com/DeVincenzoNicole/ElectroStoreInventory/internal/domain/entity"
	"github.com/DeVincenzoNicole/ElectroStoreInventory/internal/domain/repository"
)

// TxRunner transacciones en memoria: las escrituras se acumulan y se aplican al repositorio
// solo si fn devuelve nil. Las transacciones se ejecutan de a una.
type TxRunner struct {
	mu       sync.Mutex
	products *ProductRepository
}

// NewTxRunner construye el runner sobre el repositorio de productos.
func NewTxRunner(products *ProductRepository) *TxRunner {
	return &TxRunner{products: products}
}

// Run ejecuta fn con un repositorio transaccional; Commit si fn devuelve nil, Rollback si no.
func (r *TxRunner) Run(ctx context.Context, fn func(products repository.ProductRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx := &txProductRepository{base: r.products, pending: make(map[entity.ProductKey]*entity.Product)}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	for key, p := range tx.pending {
		if p == nil {
			_ = r.products.Delete(ctx, key)
			continue
		}
		_ = r.products.Save(ctx, p)
	}
	return nil
}

// txProductRepository superpone las escrituras pendientes (nil = borrado) sobre el repositorio base.
type txProductRepository struct {
	base    *ProductRepository
	pending map[entity.ProductKey]*entity.Product
}

func (t *txProductRepository) Get(ctx context.Context, key entity.ProductKey) (*entity.Product, error) {
	if p, ok := t.pending[key]; ok {
		if p == nil {
			return nil, nil
		}
		cp := *p
		return &cp, nil
	}
	return t.base.Get(ctx, key)
}

func (t *txProductRepository) GetForUpdate(ctx context.Context, key entity.ProductKey) (*entity.Product, error) {
	return t.Get(ctx, key)
}

func (t *txProductRepository) ListByProduct(ctx context.Context, productID int64) ([]*entity.Product, error) {
	list, err := t.base.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return t.overlay(list, func(k entity.ProductKey) bool { return k.ProductID == productID }), nil
}

func (t *txProductRepository) ListByStore(ctx context.Context, storeID int64) ([]*entity.Product, error) {
	list, err := t.base.ListByStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	return t.overlay(list, func(k entity.ProductKey) bool { return k.StoreID == storeID }), nil
}

func (t *txProductRepository) Save(_ context.Context, p *entity.Product) error {
	cp := *p
	t.pending[p.Key] = &cp
	return nil
}

func (t *txProductRepository) Delete(_ context.Context, key entity.ProductKey) error {
	t.pending[key] = nil
	return nil
}

func (t *txProductRepository) overlay(list []*entity.Product, match func(entity.ProductKey) bool) []*entity.Product {
	out := make([]*entity.Product, 0, len(list))
	seen := make(map[entity.ProductKey]bool, len(list))
	for _, p := range list {
		seen[p.Key] = true
		if pending, ok := t.pending[p.Key]; ok {
			if pending != nil {
				cp := *pending
				out = append(out, &cp)
			}
			continue
		}
		out = append(out, p)
	}
	for key, p := range t.pending {
		if p != nil && !seen[key] && match(key) {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out
}
