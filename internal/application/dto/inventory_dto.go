package dto

import "time"

// UpdateStockRequest body de PATCH .../stock. Quantity es puntero para distinguir ausente de 0.
type UpdateStockRequest struct {
	Quantity *int `json:"quantity"`
}

// FailedOperationResponse operación de stock pendiente de reproceso.
type FailedOperationResponse struct {
	ID         string    `json:"id"`
	StoreID    int64     `json:"storeId"`
	ProductID  int64     `json:"productId"`
	Quantity   int       `json:"quantity"`
	Cause      string    `json:"cause"`
	EnqueuedAt time.Time `json:"enqueuedAt"`
}

// CircuitBreakerResponse estado de un circuit breaker.
type CircuitBreakerResponse struct {
	Name  string `json:"name"`
	State string `json:"state"`
}
