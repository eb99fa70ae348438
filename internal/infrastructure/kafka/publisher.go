package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/estoque-api/internal/application/inventory"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/pkg/logger"
)

var _ inventory.MovementObserver = (*MovementPublisher)(nil)

// EventTypeMovementCommitted tipo de evento publicado por cada movimiento confirmado.
const EventTypeMovementCommitted = "stock.movement.committed"

// MovementEvent es el mensaje publicado en KAFKA_TOPIC. La clave del mensaje es product_id,
// así todos los movimientos de un producto caen en la misma partición y en orden.
type MovementEvent struct {
	EventType    string          `json:"event_type"`
	MovementID   string          `json:"movement_id"`
	ProductID    string          `json:"product_id"`
	MovementType string          `json:"movement_type"`
	Quantity     decimal.Decimal `json:"quantity"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	ActorID      string          `json:"actor_id"`
	Reference    string          `json:"reference,omitempty"`
	OccurredAt   time.Time       `json:"occurred_at"`
}

// NewProducer crea un SyncProducer con acks de todas las réplicas.
func NewProducer(brokers []string) (sarama.SyncProducer, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5
	cfg.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("crear productor Kafka: %w", err)
	}
	return producer, nil
}

// MovementPublisher publica los movimientos confirmados. Un fallo de envío se registra en el log;
// el movimiento ya está confirmado en la base y no se revierte.
type MovementPublisher struct {
	producer sarama.SyncProducer
	topic    string
	log      *logger.Logger
}

// NewMovementPublisher construye el publisher.
func NewMovementPublisher(producer sarama.SyncProducer, topic string, log *logger.Logger) *MovementPublisher {
	return &MovementPublisher{producer: producer, topic: topic, log: log}
}

// MovementCommitted publica el evento del movimiento.
func (p *MovementPublisher) MovementCommitted(_ context.Context, mov entity.StockMovement) {
	if err := p.publish(mov); err != nil {
		p.log.Error().Err(err).
			Str("movement_id", mov.ID).
			Str("product_id", mov.ProductID).
			Msg("no se pudo publicar el movimiento")
	}
}

// MovementRejected no publica nada: solo los movimientos aplicados son eventos.
func (p *MovementPublisher) MovementRejected(context.Context, string, error) {}

func (p *MovementPublisher) publish(mov entity.StockMovement) error {
	payload, err := json.Marshal(MovementEvent{
		EventType:    EventTypeMovementCommitted,
		MovementID:   mov.ID,
		ProductID:    mov.ProductID,
		MovementType: mov.Type,
		Quantity:     mov.Quantity,
		BalanceAfter: mov.BalanceAfter,
		ActorID:      mov.ActorID,
		Reference:    mov.Reference,
		OccurredAt:   mov.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("serializar evento: %w", err)
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(mov.ProductID),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(EventTypeMovementCommitted)},
		},
	})
	if err != nil {
		return fmt.Errorf("enviar mensaje: %w", err)
	}

	p.log.Debug().
		Str("topic", p.topic).
		Int32("partition", partition).
		Int64("offset", offset).
		Str("movement_id", mov.ID).
		Msg("movimiento publicado")
	return nil
}

// Close cierra el productor.
func (p *MovementPublisher) Close() error {
	return p.producer.Close()
}
