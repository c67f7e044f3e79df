package inventory

import (
	"context"
	"time"

	"github.com/DeVincenzoNicole/ElectroStoreInventory/internal/application/dto"
	"github.com/DeVincenzoNicole/ElectroStoreInventory/internal/domain/entity"
	"github.com/DeVincenzoNicole/ElectroStoreInventory/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando el repositorio de stock atado a esa tx.
// Commit si fn devuelve nil, Rollback en cualquier otro caso.
type TxRunner interface {
	Run(ctx context.Context, fn func(products repository.ProductRepository) error) error
}

// InventoryCache caché de listados de inventario por sucursal. Las entradas solo expiran por TTL.
// Las implementaciones en proceso guardan y devuelven el slice tal cual: quien llama no debe
// modificar lo que entrega Get ni lo que pasó a Put.
type InventoryCache interface {
	Get(ctx context.Context, key string) ([]dto.ProductResponse, bool, error)
	Put(ctx context.Context, key string, value []dto.ProductResponse, ttl time.Duration) error
}

// EventPublisher entrega eventos de inventario de forma asíncrona. Publish no bloquea ni falla.
type EventPublisher interface {
	Publish(ctx context.Context, ev entity.InventoryChangeEvent)
}

// MetricsSink registra contadores de negocio.
type MetricsSink interface {
	IncrementCounter(name string)
}
