// Package metrics expone los contadores de negocio en Prometheus.
package metrics

import (
	"errors"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/DeVincenzoNicole/ElectroStoreInventory/internal/application/inventory"
)

var _ inventory.MetricsSink = (*PrometheusSink)(nil)

// PrometheusSink registra contadores bajo demanda en el registry dado.
// "inventory.stock.updates" se expone como inventory_stock_updates_total.
type PrometheusSink struct {
	reg      prometheus.Registerer
	log      zerolog.Logger
	mu       sync.Mutex
	counters map[string]prometheus.Counter
}

// NewPrometheusSink construye el sink.
func NewPrometheusSink(reg prometheus.Registerer, log zerolog.Logger) *PrometheusSink {
	return &PrometheusSink{reg: reg, log: log, counters: make(map[string]prometheus.Counter)}
}

// IncrementCounter incrementa en 1 el contador name, creándolo si no existe.
func (s *PrometheusSink) IncrementCounter(name string) {
	if c := s.counter(name); c != nil {
		c.Inc()
	}
}

func (s *PrometheusSink) counter(name string) prometheus.Counter {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.counters[name]; ok {
		return c
	}
	c := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricName(name),
		Help: "Contador " + name,
	})
	if err := s.reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			s.log.Warn().Err(err).Str("metric", name).Msg("no se pudo registrar la métrica")
			return nil
		}
		existing, ok := already.ExistingCollector.(prometheus.Counter)
		if !ok {
			s.log.Warn().Str("metric", name).Msg("métrica registrada con otro tipo")
			return nil
		}
		c = existing
	}
	s.counters[name] = c
	return c
}

// MetricName convierte un nombre con puntos o guiones al formato Prometheus con sufijo _total.
func MetricName(name string) string {
	n := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == ':':
			return r
		default:
			return '_'
		}
	}, name)
	if !strings.HasSuffix(n, "_total") {
		n += "_total"
	}
	return n
}
