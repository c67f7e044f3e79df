package repository

import (
	"context"

	"github.com/DeVincenzoNicole/ElectroStoreInventory/internal/domain/entity"
)

// StoreRepository consulta de sucursales. GetByID devuelve (nil, nil) si no existe.
type StoreRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Store, error)
}
