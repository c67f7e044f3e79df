// Package resilience envuelve operaciones de escritura con reintentos y circuit breaker.
//
// Composición por intento: Retry( Breaker( op ) ). Un fallo transitorio se reintenta con
// backoff exponencial; un fallo de dominio (no encontrado, validación) se propaga sin
// reintentar. Con el breaker abierto o los reintentos agotados la llamada termina en un
// resultado degradado (ErrCircuitOpen / ErrRetriesExhausted) que el llamador resuelve con
// su propio fallback.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

var (
	// ErrCircuitOpen la llamada fue cortocircuitada por el breaker (OPEN o HALF_OPEN saturado).
	ErrCircuitOpen = errors.New("circuit breaker abierto")
	// ErrRetriesExhausted se agotaron los intentos ante fallos transitorios.
	ErrRetriesExhausted = errors.New("reintentos agotados")
)

// Estados expuestos del breaker.
const (
	StateClosed   = "CLOSED"
	StateOpen     = "OPEN"
	StateHalfOpen = "HALF_OPEN"
)

// RetryPolicy política de reintentos con backoff exponencial.
type RetryPolicy struct {
	MaxAttempts    int // intentos totales, incluido el primero
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Multiplier     float64
}

// BreakerSettings configuración del circuit breaker de una operación.
type BreakerSettings struct {
	Name             string
	FailureThreshold uint32        // fallos transitorios en la ventana que abren el circuito
	Cooldown         time.Duration // tiempo en OPEN antes de pasar a HALF_OPEN
	HalfOpenMaxCalls uint32        // llamadas de prueba permitidas en HALF_OPEN
	RollingWindow    time.Duration // en CLOSED los contadores se reinician con este periodo
}

// Classifier indica si un error es un fallo transitorio de almacenamiento (reintentable).
type Classifier func(err error) bool

// Guard aplica RetryPolicy + circuit breaker a una operación con nombre.
type Guard struct {
	name      string
	policy    RetryPolicy
	breaker   *gobreaker.CircuitBreaker
	transient Classifier
	log       zerolog.Logger
}

// NewGuard construye el guard. Solo los errores transitorios cuentan como fallos del breaker.
func NewGuard(policy RetryPolicy, settings BreakerSettings, transient Classifier, log zerolog.Logger) *Guard {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	if policy.Multiplier < 1 {
		policy.Multiplier = 2
	}
	if settings.FailureThreshold == 0 {
		settings.FailureThreshold = 5
	}
	if settings.HalfOpenMaxCalls == 0 {
		settings.HalfOpenMaxCalls = 1
	}

	g := &Guard{
		name:      settings.Name,
		policy:    policy,
		transient: transient,
		log:       log.With().Str("operation", settings.Name).Logger(),
	}
	g.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: settings.HalfOpenMaxCalls,
		Interval:    settings.RollingWindow,
		Timeout:     settings.Cooldown,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.TotalFailures >= settings.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !transient(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			g.log.Warn().
				Str("from", stateName(from)).
				Str("to", stateName(to)).
				Msg("cambio de estado del circuit breaker")
		},
	})
	return g
}

// Name devuelve el nombre lógico de la operación protegida.
func (g *Guard) Name() string { return g.name }

// State devuelve CLOSED, OPEN o HALF_OPEN.
func (g *Guard) State() string { return stateName(g.breaker.State()) }

// Execute ejecuta op con reintentos y breaker.
// Devuelve nil si op tuvo éxito, el error de op si no es transitorio, o un error que envuelve
// ErrCircuitOpen / ErrRetriesExhausted (ver IsDegraded) junto con la causa.
func (g *Guard) Execute(ctx context.Context, op func(context.Context) error) error {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = g.policy.InitialBackoff
	if g.policy.MaxBackoff > 0 {
		exp.MaxInterval = g.policy.MaxBackoff
	}
	exp.Multiplier = g.policy.Multiplier
	exp.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(g.policy.MaxAttempts-1)), ctx)

	attempts := 0
	err := backoff.RetryNotify(func() error {
		attempts++
		_, err := g.breaker.Execute(func() (interface{}, error) {
			return nil, op(ctx)
		})
		switch {
		case err == nil:
			return nil
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			return backoff.Permanent(fmt.Errorf("%w: %w", ErrCircuitOpen, err))
		case g.transient(err):
			return err
		default:
			return backoff.Permanent(err)
		}
	}, policy, func(err error, wait time.Duration) {
		g.log.Warn().Err(err).
			Int("attempt", attempts).
			Dur("backoff", wait).
			Msg("fallo transitorio, reintentando")
	})

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrCircuitOpen):
		return err
	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		return err
	case g.transient(err):
		return fmt.Errorf("%w tras %d intentos: %w", ErrRetriesExhausted, attempts, err)
	default:
		return err
	}
}

// IsDegraded indica si el error proviene del breaker abierto o de reintentos agotados,
// es decir, si corresponde ejecutar el fallback.
func IsDegraded(err error) bool {
	return errors.Is(err, ErrCircuitOpen) || errors.Is(err, ErrRetriesExhausted)
}

func stateName(s gobreaker.State) string {
	switch s {
	case gobreaker.StateOpen:
		return StateOpen
	case gobreaker.StateHalfOpen:
		return StateHalfOpen
	default:
		return StateClosed
	}
}
