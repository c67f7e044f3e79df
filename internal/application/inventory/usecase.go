package inventory

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/DeVincenzoNicole/ElectroStoreInventory/internal/application/dto"
	"github.com/DeVincenzoNicole/ElectroStoreInventory/internal/domain"
	"github.com/DeVincenzoNicole/ElectroStoreInventory/internal/domain/entity"
	"github.com/DeVincenzoNicole/ElectroStoreInventory/internal/domain/repository"
	"github.com/DeVincenzoNicole/ElectroStoreInventory/pkg/keylock"
	"github.com/DeVincenzoNicole/ElectroStoreInventory/pkg/resilience"
	"github.com/DeVincenzoNicole/ElectroStoreInventory/pkg/retryqueue"
)

// MetricStockUpdates contador de solicitudes de actualización de stock.
const MetricStockUpdates = "inventory.stock.updates"

// DefaultFaultSentinel cantidad que simula un fallo de almacenamiento cuando FaultInjection está activo.
const DefaultFaultSentinel = 9999

const cacheKeyPrefix = "inventoryByStore::"

// CacheKey clave del listado de una sucursal en la caché.
func CacheKey(storeID int64) string {
	return cacheKeyPrefix + strconv.FormatInt(storeID, 10)
}

// Options parámetros del caso de uso.
type Options struct {
	CacheTTL       time.Duration
	FaultInjection bool
	FaultSentinel  int
}

// UseCase núcleo del inventario por sucursal: lecturas con caché, escrituras serializadas por
// producto y protegidas con reintentos + circuit breaker, cola de operaciones fallidas y
// publicación de eventos de cambio.
type UseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	storeRepo   repository.StoreRepository
	cache       InventoryCache
	guard       *resilience.Guard
	publisher   EventPublisher
	metrics     MetricsSink
	log         zerolog.Logger
	opts        Options

	locks  *keylock.Registry[int64]
	failed *retryqueue.Queue[FailedStockUpdate]
	now    func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	storeRepo repository.StoreRepository,
	cache InventoryCache,
	guard *resilience.Guard,
	publisher EventPublisher,
	metrics MetricsSink,
	log zerolog.Logger,
	opts Options,
) *UseCase {
	if opts.FaultSentinel == 0 {
		opts.FaultSentinel = DefaultFaultSentinel
	}
	return &UseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		storeRepo:   storeRepo,
		cache:       cache,
		guard:       guard,
		publisher:   publisher,
		metrics:     metrics,
		log:         log.With().Str("component", "inventory").Logger(),
		opts:        opts,
		locks:       keylock.New[int64](),
		failed:      retryqueue.New[FailedStockUpdate](),
		now:         time.Now,
	}
}

// GetInventoryByStore devuelve los productos de la sucursal, primero desde la caché.
// Una sucursal inexistente o sin productos devuelve una lista vacía. Las escrituras no
// invalidan la caché: el listado puede tener hasta un TTL de antigüedad.
// Cada llamada devuelve una copia propia; modificarla no altera la entrada cacheada.
func (uc *UseCase) GetInventoryByStore(ctx context.Context, storeID int64) ([]dto.ProductResponse, error) {
	key := CacheKey(storeID)
	cached, found, err := uc.cache.Get(ctx, key)
	if err != nil {
		uc.log.Warn().Err(err).Str("key", key).Msg("caché no disponible, se consulta el almacén")
	} else if found {
		return cloneListing(cached), nil
	}

	uc.log.Info().Int64("store_id", storeID).Msg("cache miss, consultando inventario en base de datos")
	products, err := uc.productRepo.ListByStore(ctx, storeID)
	if err != nil {
		return nil, err
	}

	var store *entity.Store
	if len(products) > 0 {
		if store, err = uc.storeRepo.GetByID(ctx, storeID); err != nil {
			return nil, err
		}
	}
	out := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p, store))
	}

	if err := uc.cache.Put(ctx, key, cloneListing(out), uc.opts.CacheTTL); err != nil {
		uc.log.Warn().Err(err).Str("key", key).Msg("no se pudo guardar el listado en caché")
	}
	return out, nil
}

// UpdateProductStock fija la cantidad de un producto en una sucursal.
// Devuelve true si se aplicó. Devuelve false sin error si la cantidad es negativa o si la
// escritura quedó degradada (circuito abierto o reintentos agotados); en ese caso la
// operación queda en la cola de fallidas. Sucursal o producto inexistentes se devuelven
// como error (ErrStoreNotFound, ErrProductNotInStore).
func (uc *UseCase) UpdateProductStock(ctx context.Context, storeID, productID int64, quantity int) (bool, error) {
	defer uc.locks.Lock(productID)()

	uc.log.Info().
		Int64("store_id", storeID).
		Int64("product_id", productID).
		Int("quantity", quantity).
		Msg("actualizando stock")
	uc.metrics.IncrementCounter(MetricStockUpdates)
	uc.publish(ctx, entity.ActionStockUpdateRequested, productID, storeID, quantity)

	var applied bool
	err := uc.guard.Execute(ctx, func(ctx context.Context) error {
		ok, err := uc.applyStockUpdate(ctx, storeID, productID, quantity)
		applied = ok
		return err
	})
	switch {
	case err == nil:
		return applied, nil
	case resilience.IsDegraded(err), errors.Is(err, domain.ErrTransientStorage):
		uc.enqueueFailed(storeID, productID, quantity, err)
		return false, nil
	default:
		return false, err
	}
}

// applyStockUpdate es la escritura sin protección; el llamador debe tener el lock del producto.
func (uc *UseCase) applyStockUpdate(ctx context.Context, storeID, productID int64, quantity int) (bool, error) {
	if uc.opts.FaultInjection && quantity == uc.opts.FaultSentinel {
		uc.log.Error().Int("quantity", quantity).Msg("simulación de fallo de base de datos")
		return false, fmt.Errorf("%w: fallo simulado", domain.ErrTransientStorage)
	}

	store, err := uc.storeRepo.GetByID(ctx, storeID)
	if err != nil {
		return false, err
	}
	if store == nil {
		return false, fmt.Errorf("%w: sucursal %d", domain.ErrStoreNotFound, storeID)
	}

	key := entity.ProductKey{ProductID: productID, StoreID: storeID}
	applied := false
	err = uc.txRunner.Run(ctx, func(products repository.ProductRepository) error {
		p, err := products.GetForUpdate(ctx, key)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("%w: producto %d, sucursal %d", domain.ErrProductNotInStore, productID, storeID)
		}
		if quantity < 0 {
			return nil
		}
		p.Quantity = quantity
		p.UpdatedAt = uc.now()
		if err := products.Save(ctx, p); err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if applied {
		uc.publish(ctx, entity.ActionUpdateStock, productID, storeID, quantity)
	}
	return applied, nil
}

// GetCentralStock suma la cantidad del producto en todas las sucursales (0 si no existe en ninguna).
func (uc *UseCase) GetCentralStock(ctx context.Context, productID int64) (int, error) {
	uc.log.Info().Int64("product_id", productID).Msg("consultando stock central")
	products, err := uc.productRepo.ListByProduct(ctx, productID)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, p := range products {
		total += p.Quantity
	}
	return total, nil
}

// CreateProduct crea el producto en la sucursal. Si la clave ya existe el registro se reemplaza.
func (uc *UseCase) CreateProduct(ctx context.Context, storeID int64, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if in.ID <= 0 {
		return nil, fmt.Errorf("%w: id de producto requerido", domain.ErrInvalidInput)
	}
	if in.Name == "" {
		return nil, fmt.Errorf("%w: nombre requerido", domain.ErrInvalidInput)
	}
	if in.Quantity < 0 {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, domain.ErrNegativeQuantity)
	}

	defer uc.locks.Lock(in.ID)()
	uc.log.Info().Int64("store_id", storeID).Int64("product_id", in.ID).Msg("creando producto")

	store, err := uc.storeRepo.GetByID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, fmt.Errorf("%w: sucursal %d", domain.ErrStoreNotFound, storeID)
	}

	product := &entity.Product{
		Key:       entity.ProductKey{ProductID: in.ID, StoreID: storeID},
		Name:      in.Name,
		Category:  in.Category,
		Quantity:  in.Quantity,
		UpdatedAt: uc.now(),
	}
	if err := uc.txRunner.Run(ctx, func(products repository.ProductRepository) error {
		return products.Save(ctx, product)
	}); err != nil {
		return nil, err
	}
	uc.publish(ctx, entity.ActionCreateProduct, in.ID, storeID, in.Quantity)

	out := toProductResponse(product, store)
	return &out, nil
}

// DeleteProductFromStore elimina el producto de la sucursal. ErrProductNotInStore si no existe.
func (uc *UseCase) DeleteProductFromStore(ctx context.Context, storeID, productID int64) error {
	defer uc.locks.Lock(productID)()
	uc.log.Info().Int64("store_id", storeID).Int64("product_id", productID).Msg("eliminando producto")

	key := entity.ProductKey{ProductID: productID, StoreID: storeID}
	if err := uc.txRunner.Run(ctx, func(products repository.ProductRepository) error {
		p, err := products.GetForUpdate(ctx, key)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("%w: producto %d, sucursal %d", domain.ErrProductNotInStore, productID, storeID)
		}
		return products.Delete(ctx, key)
	}); err != nil {
		return err
	}
	uc.publish(ctx, entity.ActionDeleteProduct, productID, storeID, 0)
	return nil
}

// BreakerStates estado de los circuit breakers de escritura.
func (uc *UseCase) BreakerStates() []dto.CircuitBreakerResponse {
	return []dto.CircuitBreakerResponse{{Name: uc.guard.Name(), State: uc.guard.State()}}
}

func (uc *UseCase) publish(ctx context.Context, action string, productID, storeID int64, quantity int) {
	uc.publisher.Publish(ctx, entity.InventoryChangeEvent{
		ID:         uuid.New().String(),
		ProductID:  productID,
		StoreID:    storeID,
		Action:     action,
		Quantity:   quantity,
		OccurredAt: uc.now(),
	})
}

// cloneListing copia el listado incluida la sucursal apuntada por cada producto.
func cloneListing(in []dto.ProductResponse) []dto.ProductResponse {
	out := make([]dto.ProductResponse, len(in))
	for i, p := range in {
		if p.Store != nil {
			st := *p.Store
			p.Store = &st
		}
		out[i] = p
	}
	return out
}

func toProductResponse(p *entity.Product, s *entity.Store) dto.ProductResponse {
	out := dto.ProductResponse{
		ID:       p.Key.ProductID,
		Name:     p.Name,
		Category: p.Category,
		Quantity: p.Quantity,
	}
	if s != nil {
		out.Store = &dto.StoreResponse{ID: s.ID, Name: s.Name, Location: s.Location}
	}
	return out
}
