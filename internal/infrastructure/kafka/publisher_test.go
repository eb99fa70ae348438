package kafka_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/infrastructure/kafka"
	"github.com/jhoicas/estoque-api/pkg/logger"
)

func sampleMovement() entity.StockMovement {
	return entity.StockMovement{
		ID:           "mov-1",
		ProductID:    "prod-1",
		Type:         entity.MovementTypeOUT,
		Quantity:     decimal.NewFromInt(3),
		BalanceAfter: decimal.NewFromInt(7),
		ActorID:      "user-1",
		Reference:    "item-9",
		CreatedAt:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestMovementPublisher_PublishesCommittedMovement(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "stock-movements" {
			return errors.New("topic inesperado: " + msg.Topic)
		}
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if !bytes.Equal(key, []byte("prod-1")) {
			return errors.New("clave inesperada: " + string(key))
		}
		return nil
	})

	var sent []byte
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		sent = val
		return nil
	})

	pub := kafka.NewMovementPublisher(producer, "stock-movements", logger.NewNop())
	pub.MovementCommitted(context.Background(), sampleMovement())

	second := sampleMovement()
	second.ID = "mov-2"
	pub.MovementCommitted(context.Background(), second)
	require.NoError(t, pub.Close())

	var event kafka.MovementEvent
	require.NoError(t, json.Unmarshal(sent, &event))
	assert.Equal(t, kafka.EventTypeMovementCommitted, event.EventType)
	assert.Equal(t, "mov-2", event.MovementID)
	assert.Equal(t, entity.MovementTypeOUT, event.MovementType)
	assert.True(t, event.BalanceAfter.Equal(decimal.NewFromInt(7)))
	assert.Equal(t, "item-9", event.Reference)
}

func TestMovementPublisher_SendFailureIsSwallowed(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	pub := kafka.NewMovementPublisher(producer, "stock-movements", logger.NewNop())
	assert.NotPanics(t, func() {
		pub.MovementCommitted(context.Background(), sampleMovement())
	})
	require.NoError(t, pub.Close())
}

func TestMovementPublisher_IgnoresRejections(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	pub := kafka.NewMovementPublisher(producer, "stock-movements", logger.NewNop())

	pub.MovementRejected(context.Background(), entity.MovementTypeOUT, domain.ErrInsufficientStock)
	require.NoError(t, pub.Close())
}
