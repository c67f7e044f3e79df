// @title                       ElectroStore Inventory API
// @version                     1.0
// @description                 Inventario por sucursal con stock central, caché de lectura y escrituras resilientes.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/DeVincenzoNicole/ElectroStoreInventory/docs"
	"github.com/DeVincenzoNicole/ElectroStoreInventory/internal/application/auth"
	"github.com/DeVincenzoNicole/ElectroStoreInventory/internal/application/inventory"
	"github.com/DeVincenzoNicole/ElectroStoreInventory/internal/domain"
	"github.com/DeVincenzoNicole/ElectroStoreInventory/internal/infrastructure/events"
	"github.com/DeVincenzoNicole/ElectroStoreInventory/internal/infrastructure/metrics"
	httpRouter "github.com/DeVincenzoNicole/ElectroStoreInventory/internal/interfaces/http"
	"github.com/DeVincenzoNicole/ElectroStoreInventory/pkg/config"
	"github.com/DeVincenzoNicole/ElectroStoreInventory/pkg/logger"
	"github.com/DeVincenzoNicole/ElectroStoreInventory/pkg/resilience"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Driver).
		Str("cache", cfg.Cache.Driver).
		Msg("iniciando aplicación")
	zl := log.Zerolog()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	store, err := openStorage(ctx, cfg, zl)
	if err != nil {
		log.Fatal().Err(err).Msg("almacén de stock")
	}
	defer store.Close()

	invCache, closeCache, err := openCache(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("caché de inventario")
	}
	defer closeCache()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Eventos: log siempre, Kafka si está habilitado.
	sinks := []events.Sink{events.NewLogSink(zl)}
	var kafkaSink *events.KafkaSink
	if cfg.Kafka.Enabled {
		kafkaSink = events.NewKafkaSink(events.NewKafkaWriter(events.WriterConfig{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.Topic,
			BatchTimeout: cfg.Kafka.BatchTimeout,
			BatchSize:    cfg.Kafka.BatchSize,
		}))
		sinks = append(sinks, kafkaSink)
	}
	dispatcher := events.NewDispatcher(cfg.Events.BufferSize, zl, sinks...)
	dispatcher.Start(ctx)

	guard := resilience.NewGuard(
		resilience.RetryPolicy{
			MaxAttempts:    cfg.Resilience.MaxAttempts,
			InitialBackoff: cfg.Resilience.InitialBackoff,
			MaxBackoff:     cfg.Resilience.MaxBackoff,
			Multiplier:     cfg.Resilience.Multiplier,
		},
		resilience.BreakerSettings{
			Name:             "updateProductStock",
			FailureThreshold: uint32(cfg.Resilience.FailureThreshold),
			Cooldown:         cfg.Resilience.Cooldown,
			HalfOpenMaxCalls: uint32(cfg.Resilience.HalfOpenMaxCalls),
			RollingWindow:    cfg.Resilience.RollingWindow,
		},
		domain.IsTransient,
		zl,
	)

	inventoryUC := inventory.NewUseCase(
		store.TxRunner, store.Products, store.Stores, invCache, guard, dispatcher,
		metrics.NewPrometheusSink(reg, zl), zl,
		inventory.Options{
			CacheTTL:       cfg.Cache.TTL,
			FaultInjection: cfg.Inventory.FaultInjection,
			FaultSentinel:  cfg.Inventory.FaultSentinel,
		},
	)
	authUC := auth.NewAuthUseCase(store.Users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	var listener *events.Listener
	if cfg.Kafka.Enabled && cfg.Kafka.ListenerEnabled {
		listener = events.NewListener(events.NewKafkaReader(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID), zl)
		go func() {
			if err := listener.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("listener de Kafka finalizado")
			}
		}()
	}

	if cfg.Inventory.DrainInterval > 0 {
		go inventoryUC.RunDrainLoop(ctx, cfg.Inventory.DrainInterval)
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(zl))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "ElectroStore Inventory API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":          "ok",
			"service":         cfg.App.Name,
			"circuitBreakers": inventoryUC.BreakerStates(),
		})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		InventoryUC: inventoryUC,
		AuthUC:      authUC,
		JWTSecret:   cfg.JWT.Secret,
		Metrics:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	// Se detienen los productores (drain loop, listener) y luego se vacía el buffer de eventos;
	// los sinks no dependen de ctx, así que los pendientes llegan a Kafka antes de cerrar el writer.
	stop()
	dispatcher.Close()
	if kafkaSink != nil {
		if err := kafkaSink.Close(); err != nil {
			log.Error().Err(err).Msg("cerrar writer de Kafka")
		}
	}
	if listener != nil {
		if err := listener.Close(); err != nil {
			log.Error().Err(err).Msg("cerrar reader de Kafka")
		}
	}

	log.Info().
		Int("failed_operations_pending", len(inventoryUC.PendingFailedOperations())).
		Msg("aplicación detenida")
}
