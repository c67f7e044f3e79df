package repository

import (
	"context"

	"github.com/DeVincenzoNicole/ElectroStoreInventory/internal/domain/entity"
)

// ProductRepository puerto del almacén de stock (registros por producto y sucursal).
// Get y GetForUpdate devuelven (nil, nil) si el registro no existe.
// Los fallos transitorios se envuelven con domain.ErrTransientStorage.
type ProductRepository interface {
	Get(ctx context.Context, key entity.ProductKey) (*entity.Product, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción (SELECT ... FOR UPDATE).
	GetForUpdate(ctx context.Context, key entity.ProductKey) (*entity.Product, error)
	// ListByProduct registros del producto en todas las sucursales.
	ListByProduct(ctx context.Context, productID int64) ([]*entity.Product, error)
	// ListByStore registros de la sucursal ordenados por ProductID.
	ListByStore(ctx context.Context, storeID int64) ([]*entity.Product, error)
	// Save inserta o reemplaza el registro de la clave.
	Save(ctx context.Context, p *entity.Product) error
	Delete(ctx context.Context, key entity.ProductKey) error
}
