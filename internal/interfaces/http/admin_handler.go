package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/DeVincenzoNicole/ElectroStoreInventory/internal/application/inventory"
)

// AdminHandler operaciones de soporte: cola de fallidas y estado de circuit breakers (solo ADMIN).
type AdminHandler struct {
	uc *inventory.UseCase
}

// NewAdminHandler construye el handler.
func NewAdminHandler(uc *inventory.UseCase) *AdminHandler {
	return &AdminHandler{uc: uc}
}

// ListFailedOperations godoc
// @Summary      Operaciones de stock pendientes de reproceso
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.FailedOperationResponse
// @Router       /api/admin/failed-operations [get]
func (h *AdminHandler) ListFailedOperations(c *fiber.Ctx) error {
	return c.JSON(h.uc.PendingFailedOperations())
}

// DrainFailedOperations godoc
// @Summary      Reprocesar operaciones fallidas
// @Description  Ejecuta la cola en orden de llegada; las que vuelven a fallar se descartan.
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  retryqueue.DrainReport
// @Router       /api/admin/failed-operations/drain [post]
func (h *AdminHandler) DrainFailedOperations(c *fiber.Ctx) error {
	return c.JSON(h.uc.DrainFailedOperations(c.Context()))
}

// CircuitBreakers godoc
// @Summary      Estado de los circuit breakers
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.CircuitBreakerResponse
// @Router       /api/admin/circuit-breakers [get]
func (h *AdminHandler) CircuitBreakers(c *fiber.Ctx) error {
	return c.JSON(h.uc.BreakerStates())
}
