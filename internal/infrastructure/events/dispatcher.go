// Package events entrega los InventoryChangeEvent de forma asíncrona a uno o más sinks
// (log, Kafka) mediante un canal con buffer y una goroutine consumidora.
package events

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/DeVincenzoNicole/ElectroStoreInventory/internal/application/inventory"
	"github.com/DeVincenzoNicole/ElectroStoreInventory/internal/domain/entity"
)

var _ inventory.EventPublisher = (*Dispatcher)(nil)

// Sink destino de eventos. Handle se invoca desde la goroutine del Dispatcher, de a un evento.
type Sink interface {
	Name() string
	Handle(ctx context.Context, ev entity.InventoryChangeEvent) error
}

// Dispatcher publicador asíncrono. Publish nunca bloquea: con el buffer lleno el evento se
// descarta y se registra una advertencia.
type Dispatcher struct {
	events chan entity.InventoryChangeEvent
	sinks  []Sink
	log    zerolog.Logger

	mu      sync.RWMutex
	closed  bool
	started bool
	done    chan struct{}
}

// NewDispatcher construye el dispatcher con un buffer de bufferSize eventos.
func NewDispatcher(bufferSize int, log zerolog.Logger, sinks ...Sink) *Dispatcher {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Dispatcher{
		events: make(chan entity.InventoryChangeEvent, bufferSize),
		sinks:  sinks,
		log:    log.With().Str("component", "events").Logger(),
		done:   make(chan struct{}),
	}
}

// Start lanza la goroutine que entrega los eventos. Los sinks reciben los valores de ctx pero
// no su cancelación: la entrega termina con Close, después de vaciar el buffer.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	if d.started || d.closed {
		d.mu.Unlock()
		return
	}
	d.started = true
	d.mu.Unlock()

	go d.run(context.WithoutCancel(ctx))
}

// Publish encola el evento sin bloquear.
func (d *Dispatcher) Publish(_ context.Context, ev entity.InventoryChangeEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.log.Warn().Str("action", ev.Action).Int64("product_id", ev.ProductID).Msg("dispatcher cerrado, evento descartado")
		return
	}
	select {
	case d.events <- ev:
	default:
		d.log.Warn().Str("action", ev.Action).Int64("product_id", ev.ProductID).Msg("buffer de eventos lleno, evento descartado")
	}
}

// Close deja de aceptar eventos y espera a que se entreguen los pendientes.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	started := d.started
	close(d.events)
	d.mu.Unlock()

	if started {
		<-d.done
	}
}

func (d *Dispatcher) run(ctx context.Context) {
	defer close(d.done)
	for ev := range d.events {
		for _, s := range d.sinks {
			if err := s.Handle(ctx, ev); err != nil {
				d.log.Warn().Err(err).
					Str("sink", s.Name()).
					Str("event_id", ev.ID).
					Str("action", ev.Action).
					Msg("no se pudo entregar el evento")
			}
		}
	}
}
