// Package retryqueue implementa una cola FIFO en memoria para operaciones que deben
// reintentarse más tarde. No es durable: un reinicio del proceso pierde su contenido.
package retryqueue

import (
	"context"
	"sync"
)

// Queue es una FIFO concurrente y sin límite. Enqueue nunca bloquea.
type Queue[T any] struct {
	mu    sync.Mutex
	items []T
}

// DrainReport resume una pasada de Drain.
type DrainReport struct {
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
}

// New construye una cola vacía.
func New[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Enqueue agrega un elemento al final.
func (q *Queue[T]) Enqueue(item T) {
	q.mu.Lock()
	q.items = append(q.items, item)
	q.mu.Unlock()
}

// Len devuelve la cantidad de elementos pendientes.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Snapshot devuelve una copia de los pendientes en orden de inserción.
func (q *Queue[T]) Snapshot() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]T, len(q.items))
	copy(out, q.items)
	return out
}

// Drain saca y ejecuta los elementos de uno en uno, en orden de inserción, hasta vaciar la cola.
// Un elemento cuyo handler falla se descarta (no vuelve a la cola).
// Si ctx se cancela, Drain se detiene antes del siguiente elemento y deja el resto en la cola.
func (q *Queue[T]) Drain(ctx context.Context, handler func(context.Context, T) error) DrainReport {
	var report DrainReport
	for {
		if ctx.Err() != nil {
			return report
		}
		item, ok := q.pop()
		if !ok {
			return report
		}
		report.Processed++
		if err := handler(ctx, item); err != nil {
			report.Failed++
		}
	}
}

func (q *Queue[T]) pop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var zero T
	if len(q.items) == 0 {
		return zero, false
	}
	item := q.items[0]
	q.items[0] = zero
	q.items = q.items[1:]
	return item, true
}
