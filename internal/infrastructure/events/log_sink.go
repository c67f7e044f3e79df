package events

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/DeVincenzoNicole/ElectroStoreInventory/internal/domain/entity"
)

// LogSink registra en el log cada cambio de inventario aplicado. Los avisos previos se ignoran.
type LogSink struct {
	log zerolog.Logger
}

// NewLogSink construye el sink.
func NewLogSink(log zerolog.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Handle(_ context.Context, ev entity.InventoryChangeEvent) error {
	if !ev.IsMutation() {
		return nil
	}
	s.log.Info().
		Str("event_id", ev.ID).
		Msgf("[EVENT] Accion: %s | Producto: %d | Sucursal: %d | Cantidad: %d",
			ev.Action, ev.ProductID, ev.StoreID, ev.Quantity)
	return nil
}
