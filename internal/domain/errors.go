package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrStoreNotFound     = errors.New("sucursal no encontrada")
	ErrProductNotInStore = errors.New("producto no encontrado en la sucursal")
	ErrUserNotFound      = errors.New("usuario no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrNegativeQuantity  = errors.New("la cantidad no puede ser negativa")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")

	// ErrTransientStorage fallo transitorio del almacenamiento (conexión, timeout, deadlock).
	// Es el único error que la capa de resiliencia reintenta.
	ErrTransientStorage = errors.New("fallo transitorio de almacenamiento")
)

// IsTransient indica si err es (o envuelve) un fallo transitorio de almacenamiento.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransientStorage)
}
