package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/DeVincenzoNicole/ElectroStoreInventory/internal/application/dto"
	"github.com/DeVincenzoNicole/ElectroStoreInventory/internal/application/inventory"
)

// Mensajes de respuesta de inventario.
const (
	MsgQuantityRequired = "El campo 'quantity' es requerido."
	MsgStockUpdated     = "Stock actualizado correctamente."
	MsgStockNotUpdated  = "No se pudo actualizar el stock. Verifique disponibilidad o datos."
	MsgProductDeleted   = "Producto eliminado correctamente."
)

// InventoryHandler maneja consultas y cambios de inventario por sucursal (protegido).
type InventoryHandler struct {
	uc *inventory.UseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.UseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// GetByStore godoc
// @Summary      Consultar inventario de una sucursal
// @Description  Lista los productos de la sucursal. Usa caché con TTL; puede no reflejar escrituras recientes.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        storeId  path  int  true  "ID de la sucursal"
// @Success      200  {array}   dto.ProductResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/inventory/{storeId} [get]
func (h *InventoryHandler) GetByStore(c *fiber.Ctx) error {
	storeID, ok, err := paramID(c, "storeId")
	if !ok {
		return err
	}
	out, err := h.uc.GetInventoryByStore(c.Context(), storeID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetCentralStock godoc
// @Summary      Consultar stock central de un producto
// @Description  Suma el stock del producto en todas las sucursales.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        productId  path  int  true  "ID del producto"
// @Success      200  {integer}  int
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/central/{productId} [get]
func (h *InventoryHandler) GetCentralStock(c *fiber.Ctx) error {
	productID, ok, err := paramID(c, "productId")
	if !ok {
		return err
	}
	total, err := h.uc.GetCentralStock(c.Context(), productID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(total)
}

// UpdateStock godoc
// @Summary      Actualizar stock de un producto
// @Description  Reemplaza la cantidad del producto en la sucursal. Si el almacenamiento falla de forma
// @Description  persistente la operación queda encolada para reproceso y se responde 400.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        storeId    path  int                     true  "ID de la sucursal"
// @Param        productId  path  int                     true  "ID del producto"
// @Param        body       body  dto.UpdateStockRequest  true  "quantity"
// @Success      200  {object}  dto.MessageResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/{storeId}/products/{productId}/stock [patch]
func (h *InventoryHandler) UpdateStock(c *fiber.Ctx) error {
	storeID, ok, err := paramID(c, "storeId")
	if !ok {
		return err
	}
	productID, ok, err := paramID(c, "productId")
	if !ok {
		return err
	}
	var in dto.UpdateStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Quantity == nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: MsgQuantityRequired})
	}
	if *in.Quantity < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "NEGATIVE_QUANTITY", Message: "la cantidad no puede ser negativa"})
	}
	updated, err := h.uc.UpdateProductStock(c.Context(), storeID, productID, *in.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	if !updated {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "STOCK_NOT_UPDATED", Message: MsgStockNotUpdated})
	}
	return c.JSON(dto.MessageResponse{Message: MsgStockUpdated})
}

// CreateProduct godoc
// @Summary      Crear producto en una sucursal
// @Description  Si el producto ya existe en la sucursal se reemplaza.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        storeId  path  int                       true  "ID de la sucursal"
// @Param        body     body  dto.CreateProductRequest  true  "id, name, category, quantity"
// @Success      201  {object}  dto.ProductResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/{storeId}/products [post]
func (h *InventoryHandler) CreateProduct(c *fiber.Ctx) error {
	storeID, ok, err := paramID(c, "storeId")
	if !ok {
		return err
	}
	var in dto.CreateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.CreateProduct(c.Context(), storeID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// DeleteProduct godoc
// @Summary      Eliminar producto de una sucursal
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        storeId    path  int  true  "ID de la sucursal"
// @Param        productId  path  int  true  "ID del producto"
// @Success      200  {object}  dto.MessageResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/{storeId}/products/{productId} [delete]
func (h *InventoryHandler) DeleteProduct(c *fiber.Ctx) error {
	storeID, ok, err := paramID(c, "storeId")
	if !ok {
		return err
	}
	productID, ok, err := paramID(c, "productId")
	if !ok {
		return err
	}
	if err := h.uc.DeleteProductFromStore(c.Context(), storeID, productID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: MsgProductDeleted})
}
