package entity

import "time"

// Acciones de InventoryChangeEvent.
const (
	ActionCreateProduct        = "CREATE_PRODUCT"
	ActionUpdateStock          = "UPDATE_STOCK"
	ActionDeleteProduct        = "DELETE_PRODUCT"
	ActionStockUpdateRequested = "STOCK_UPDATE_REQUESTED" // aviso previo a la escritura, puede no aplicarse
)

// InventoryChangeEvent notificación de un cambio de inventario.
// Las acciones de mutación se emiten una sola vez y solo si el cambio quedó persistido.
type InventoryChangeEvent struct {
	ID         string    `json:"id"`
	ProductID  int64     `json:"productId"`
	StoreID    int64     `json:"storeId"`
	Action     string    `json:"action"`
	Quantity   int       `json:"quantity"`
	OccurredAt time.Time `json:"occurredAt"`
}

// IsMutation indica si el evento refleja un cambio aplicado (y no un aviso previo).
func (e InventoryChangeEvent) IsMutation() bool {
	switch e.Action {
	case ActionCreateProduct, ActionUpdateStock, ActionDeleteProduct:
		return true
	}
	return false
}
