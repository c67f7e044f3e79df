package http

import (
	nethttp "net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/DeVincenzoNicole/ElectroStoreInventory/internal/application/auth"
	"github.com/DeVincenzoNicole/ElectroStoreInventory/internal/application/inventory"
	"github.com/DeVincenzoNicole/ElectroStoreInventory/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	InventoryUC *inventory.UseCase
	AuthUC      *auth.AuthUseCase
	JWTSecret   string
	Metrics     nethttp.Handler // opcional: se monta en /metrics
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics))
	}

	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	requireAuth := AuthMiddleware(deps.JWTSecret)
	anyRole := RequireRole(entity.RoleAdmin, entity.RoleUser)
	adminOnly := RequireRole(entity.RoleAdmin)

	inv := api.Group("/inventory", requireAuth)
	inventoryHandler := NewInventoryHandler(deps.InventoryUC)
	inv.Get("/central/:productId", anyRole, inventoryHandler.GetCentralStock)
	inv.Get("/:storeId", anyRole, inventoryHandler.GetByStore)
	inv.Post("/:storeId/products", adminOnly, inventoryHandler.CreateProduct)
	inv.Patch("/:storeId/products/:productId/stock", adminOnly, inventoryHandler.UpdateStock)
	inv.Delete("/:storeId/products/:productId", adminOnly, inventoryHandler.DeleteProduct)

	admin := api.Group("/admin", requireAuth, adminOnly)
	adminHandler := NewAdminHandler(deps.InventoryUC)
	admin.Get("/failed-operations", adminHandler.ListFailedOperations)
	admin.Post("/failed-operations/drain", adminHandler.DrainFailedOperations)
	admin.Get("/circuit-breakers", adminHandler.CircuitBreakers)
}
