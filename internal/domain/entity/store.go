package entity

// Store sucursal física. Solo lectura para el inventario.
type Store struct {
	ID       int64
	Name     string
	Location string
}
