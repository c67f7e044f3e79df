package main

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/DeVincenzoNicole/ElectroStoreInventory/internal/application/dto"
	"github.com/DeVincenzoNicole/ElectroStoreInventory/internal/application/inventory"
	"github.com/DeVincenzoNicole/ElectroStoreInventory/internal/domain/entity"
	"github.com/DeVincenzoNicole/ElectroStoreInventory/internal/domain/repository"
	"github.com/DeVincenzoNicole/ElectroStoreInventory/internal/infrastructure/cache"
	"github.com/DeVincenzoNicole/ElectroStoreInventory/internal/infrastructure/memory"
	"github.com/DeVincenzoNicole/ElectroStoreInventory/internal/infrastructure/postgres"
	"github.com/DeVincenzoNicole/ElectroStoreInventory/pkg/config"
)

// storage repositorios del driver elegido.
type storage struct {
	Products repository.ProductRepository
	Stores   repository.StoreRepository
	Users    repository.UserRepository
	TxRunner inventory.TxRunner
	close    func()
}

func (s *storage) Close() {
	if s.close != nil {
		s.close()
	}
}

func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage, error) {
	users, err := memory.DefaultUsers()
	if err != nil {
		return nil, err
	}

	if cfg.Storage.Driver == "memory" {
		products := memory.NewProductRepository(demoProducts(time.Now())...)
		userRepo := memory.NewUserRepository()
		for _, u := range users {
			userRepo.Add(u)
		}
		log.Info().Int("stores", len(demoStores)).Msg("almacén en memoria con datos de demostración")
		return &storage{
			Products: products,
			Stores:   memory.NewStoreRepository(demoStores...),
			Users:    userRepo,
			TxRunner: memory.NewTxRunner(products),
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
	}
	userRepo := postgres.NewUserRepository(pool)
	for _, u := range users {
		if err := userRepo.CreateIfMissing(ctx, u); err != nil {
			pool.Close()
			return nil, err
		}
	}
	return &storage{
		Products: postgres.NewProductRepository(pool),
		Stores:   postgres.NewStoreRepository(pool),
		Users:    userRepo,
		TxRunner: postgres.NewTxRunner(pool),
		close:    pool.Close,
	}, nil
}

func openCache(ctx context.Context, cfg *config.Config) (inventory.InventoryCache, func(), error) {
	if cfg.Cache.Driver == "redis" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("ping Redis %s: %w", cfg.Redis.Addr, err)
		}
		return cache.NewRedisCache[[]dto.ProductResponse](client, cfg.App.Name+":"),
			func() { _ = client.Close() }, nil
	}

	c, err := cache.NewMemoryCache[[]dto.ProductResponse](cfg.Cache.MaxEntries)
	if err != nil {
		return nil, nil, err
	}
	return c, func() {}, nil
}

var demoStores = []entity.Store{
	{ID: 1, Name: "Sucursal Centro", Location: "Av. Corrientes 1234"},
	{ID: 2, Name: "Sucursal Norte", Location: "Av. Cabildo 2500"},
	{ID: 3, Name: "Sucursal Sur", Location: "Av. Mitre 800"},
}

func demoProducts(now time.Time) []entity.Product {
	p := func(productID, storeID int64, name, category string, qty int) entity.Product {
		return entity.Product{
			Key:       entity.ProductKey{ProductID: productID, StoreID: storeID},
			Name:      name,
			Category:  category,
			Quantity:  qty,
			UpdatedAt: now,
		}
	}
	return []entity.Product{
		p(1, 1, "Smart TV Samsung 55\"", "Televisor", 12),
		p(1, 2, "Smart TV Samsung 55\"", "Televisor", 5),
		p(2, 1, "Notebook Lenovo Thinkpad", "Computadora", 8),
		p(2, 3, "Notebook Lenovo Thinkpad", "Computadora", 3),
		p(3, 2, "Heladera Whirlpool No Frost", "Electrodoméstico", 4),
		p(4, 3, "Auriculares Sony WH-1000XM5", "Audio", 20),
	}
}
