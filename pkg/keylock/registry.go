// Package keylock provee exclusión mutua por clave (un mutex por producto).
package keylock

import "sync"

// Registry mantiene un mutex por clave creado bajo demanda.
// Cada entrada lleva un contador de referencias (dueño + esperando); cuando llega a cero se
// elimina del mapa, así el tamaño queda acotado por las claves en uso y no por todas las
// claves vistas desde el arranque.
// No hay timeout de adquisición: Lock bloquea hasta que la clave quede libre.
type Registry[K comparable] struct {
	mu      sync.Mutex
	entries map[K]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

// New construye un registro vacío.
func New[K comparable]() *Registry[K] {
	return &Registry[K]{entries: make(map[K]*entry)}
}

// Lock bloquea la clave y devuelve la función que la libera.
// Uso: defer r.Lock(id)() para garantizar la liberación en todas las salidas.
func (r *Registry[K]) Lock(key K) (unlock func()) {
	r.mu.Lock()
	e, ok := r.entries[key]
	if !ok {
		e = &entry{}
		r.entries[key] = e
	}
	e.refs++
	r.mu.Unlock()

	e.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Unlock()
			r.mu.Lock()
			e.refs--
			if e.refs == 0 {
				delete(r.entries, key)
			}
			r.mu.Unlock()
		})
	}
}

// Len devuelve cuántas claves tienen dueño o esperan en este momento.
func (r *Registry[K]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
