package repository

import (
	"context"

	"github.com/DeVincenzoNicole/ElectroStoreInventory/internal/domain/entity"
)

// UserRepository puerto de persistencia para User. GetByUsername devuelve (nil, nil) si no existe.
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
}
