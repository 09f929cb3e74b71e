package messaging

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/optionstrategy/internal/strategy/domain"
	"github.com/wyfcoding/optionstrategy/pkg/mq"
)

type captureWriter struct {
	msgs []kafka.Message
}

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *captureWriter) Close() error { return nil }

func TestPublishStrategyEvaluated(t *testing.T) {
	w := &captureWriter{}
	pub := NewKafkaEventPublisher(mq.NewProducerWithWriter(w), "strategy.evaluated")

	ev := domain.StrategyEvaluatedEvent{
		EvaluationID: "4f1c6d0e-0000-4000-8000-000000000001",
		Ticker:       "SX5E",
		Code:         "ECS",
		Display:      "SX5E MAR25 4300/4400 ECS REF 4321.5 35.1/38.2",
		NetPrice:     36.4,
		LegCount:     2,
		OccurredOn:   time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, pub.PublishStrategyEvaluated(context.Background(), ev))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "SX5E", string(w.msgs[0].Key))

	var got struct {
		EventType string                        `json:"event_type"`
		EventID   string                        `json:"event_id"`
		Payload   domain.StrategyEvaluatedEvent `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, domain.StrategyEvaluatedEventType, got.EventType)
	assert.Equal(t, ev.EvaluationID, got.EventID)
	assert.Equal(t, ev, got.Payload)
}
