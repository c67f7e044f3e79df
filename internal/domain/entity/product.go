package entity

import "time"

// ProductKey identifica un producto dentro de una sucursal. El mismo ProductID puede
// existir en varias sucursales con cantidades independientes.
type ProductKey struct {
	ProductID int64
	StoreID   int64
}

// Product registro de stock de un producto en una sucursal.
type Product struct {
	Key       ProductKey
	Name      string
	Category  string
	Quantity  int // nunca negativo
	UpdatedAt time.Time
}
