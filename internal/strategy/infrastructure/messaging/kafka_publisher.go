// Package messaging 把领域事件发布到 Kafka
package messaging

import (
	"context"

	"github.com/wyfcoding/optionstrategy/internal/strategy/domain"
)

// MessageSender 由 pkg/mq.KafkaProducer 实现
type MessageSender interface {
	SendMessage(ctx context.Context, topic string, key string, value any) error
}

// envelope 事件外层结构
type envelope struct {
	EventType string `json:"event_type"`
	EventID   string `json:"event_id"`
	Payload   any    `json:"payload"`
}

// KafkaEventPublisher 实现 domain.EventPublisher
type KafkaEventPublisher struct {
	sender MessageSender
	topic  string
}

// NewKafkaEventPublisher 创建发布者
func NewKafkaEventPublisher(sender MessageSender, topic string) *KafkaEventPublisher {
	return &KafkaEventPublisher{sender: sender, topic: topic}
}

// PublishStrategyEvaluated 以标的代码为 key，保证同一标的的事件有序
func (p *KafkaEventPublisher) PublishStrategyEvaluated(ctx context.Context, event domain.StrategyEvaluatedEvent) error {
	return p.sender.SendMessage(ctx, p.topic, event.Ticker, envelope{
		EventType: domain.StrategyEvaluatedEventType,
		EventID:   event.EvaluationID,
		Payload:   event,
	})
}
