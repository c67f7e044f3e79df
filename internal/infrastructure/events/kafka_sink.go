package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/DeVincenzoNicole/ElectroStoreInventory/internal/domain/entity"
)

// DefaultTopic tópico de eventos de inventario.
const DefaultTopic = "inventory-events"

// MessageWriter subconjunto de *kafka.Writer usado por KafkaSink.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink publica cada evento (avisos incluidos) como JSON, con el productId como clave
// para conservar el orden por producto dentro de la partición.
type KafkaSink struct {
	writer MessageWriter
}

// NewKafkaSink construye el sink sobre un writer ya configurado con el tópico.
func NewKafkaSink(writer MessageWriter) *KafkaSink {
	return &KafkaSink{writer: writer}
}

// Valores por defecto del lote del writer. WriteMessages es síncrono y espera hasta
// BatchTimeout antes de enviar un lote incompleto.
const (
	DefaultBatchTimeout = 10 * time.Millisecond
	DefaultBatchSize    = 100
)

// WriterConfig parámetros del writer de kafka-go.
type WriterConfig struct {
	Brokers      []string
	Topic        string
	BatchTimeout time.Duration // <= 0 usa DefaultBatchTimeout
	BatchSize    int           // <= 0 usa DefaultBatchSize
}

// NewKafkaWriter crea el writer de kafka-go.
func NewKafkaWriter(cfg WriterConfig) *kafka.Writer {
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = DefaultBatchTimeout
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           cfg.BatchTimeout,
		BatchSize:              cfg.BatchSize,
	}
}

func (s *KafkaSink) Name() string { return "kafka" }

func (s *KafkaSink) Handle(ctx context.Context, ev entity.InventoryChangeEvent) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("kafka encode: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(ev.ProductID, 10)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "action", Value: []byte(ev.Action)},
		},
		Time: ev.OccurredAt,
	}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	return nil
}

// Close cierra el writer.
func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
