package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jhoicas/papeleria-api/internal/application/ports"
	"github.com/jhoicas/papeleria-api/internal/domain/entity"
	"github.com/jhoicas/papeleria-api/pkg/config"
	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"
)

var (
	_ ports.StockEventPublisher = (*StockEventPublisher)(nil)
	_ ports.StockEventPublisher = (*LogPublisher)(nil)
)

// MessageWriter subconjunto de *kafka.Writer que usa el publicador (permite tests sin broker).
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// StockEventPublisher publica cada StockEvent como JSON en el tópico de stock.
// La clave es el product_id: los eventos de un mismo producto quedan ordenados en su partición.
type StockEventPublisher struct {
	writer MessageWriter
}

// NewWriter construye el *kafka.Writer para el tópico configurado.
func NewWriter(cfg config.KafkaConfig) *kafkago.Writer {
	return &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Topic:        cfg.StockTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
	}
}

// NewStockEventPublisher construye el adaptador sobre un writer.
func NewStockEventPublisher(writer MessageWriter) *StockEventPublisher {
	return &StockEventPublisher{writer: writer}
}

// Publish envía todos los eventos en una sola llamada.
func (p *StockEventPublisher) Publish(ctx context.Context, events ...entity.StockEvent) error {
	if len(events) == 0 {
		return nil
	}
	msgs, err := EncodeMessages(events)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("kafka write stock events: %w", err)
	}
	return nil
}

// Close cierra el writer subyacente.
func (p *StockEventPublisher) Close() error {
	return p.writer.Close()
}

// EncodeMessages serializa los eventos; el header "cause" permite filtrar sin decodificar.
func EncodeMessages(events []entity.StockEvent) ([]kafkago.Message, error) {
	msgs := make([]kafkago.Message, 0, len(events))
	for _, ev := range events {
		value, err := json.Marshal(ev)
		if err != nil {
			return nil, fmt.Errorf("marshal stock event: %w", err)
		}
		msgs = append(msgs, kafkago.Message{
			Key:     []byte(ev.ProductID),
			Value:   value,
			Time:    ev.OccurredAt,
			Headers: []kafkago.Header{{Key: "cause", Value: []byte(ev.Cause)}},
		})
	}
	return msgs, nil
}

// LogPublisher alternativa sin broker: registra cada evento en el log.
type LogPublisher struct {
	log zerolog.Logger
}

// NewLogPublisher construye el publicador de log.
func NewLogPublisher(log zerolog.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

// Publish registra los eventos a nivel info.
func (p *LogPublisher) Publish(_ context.Context, events ...entity.StockEvent) error {
	for _, ev := range events {
		p.log.Info().
			Str("product_id", ev.ProductID).
			Int("delta", ev.Delta).
			Int("new_stock", ev.NewStock).
			Str("cause", ev.Cause).
			Str("reference", ev.Reference).
			Msg("stock event")
	}
	return nil
}
