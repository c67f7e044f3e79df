package events

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// DefaultGroupID grupo de consumo del listener.
const DefaultGroupID = "inventory-group"

// MessageReader subconjunto de *kafka.Reader usado por Listener.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Listener consume el tópico de eventos y registra cada mensaje recibido.
type Listener struct {
	reader     MessageReader
	log        zerolog.Logger
	retryDelay time.Duration
}

// NewListener construye el listener.
func NewListener(reader MessageReader, log zerolog.Logger) *Listener {
	return &Listener{
		reader:     reader,
		log:        log.With().Str("component", "kafka-listener").Logger(),
		retryDelay: time.Second,
	}
}

// NewKafkaReader crea el reader de kafka-go con grupo de consumo.
func NewKafkaReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: groupID,
	})
}

// Run lee mensajes hasta que ctx se cancele o el reader se cierre.
func (l *Listener) Run(ctx context.Context) error {
	for {
		msg, err := l.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return nil
			}
			l.log.Warn().Err(err).Msg("error leyendo de kafka")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(l.retryDelay):
			}
			continue
		}
		l.log.Info().
			Str("topic", msg.Topic).
			Int("partition", msg.Partition).
			Int64("offset", msg.Offset).
			Msgf("[KAFKA EVENT] Recibido: %s", msg.Value)
	}
}

// Close cierra el reader.
func (l *Listener) Close() error {
	return l.reader.Close()
}
