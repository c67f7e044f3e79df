package dto

// StoreResponse datos de la sucursal embebidos en cada producto.
type StoreResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

// ProductResponse producto con su stock en una sucursal.
type ProductResponse struct {
	ID       int64          `json:"id"`
	Name     string         `json:"name"`
	Category string         `json:"category"`
	Quantity int            `json:"quantity"`
	Store    *StoreResponse `json:"store,omitempty"`
}

// CreateProductRequest entrada para crear (o reemplazar) un producto en una sucursal.
type CreateProductRequest struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Quantity int    `json:"quantity"`
}
