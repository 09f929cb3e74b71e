package domain

import (
	"context"
	"time"
)

const (
	StrategyEvaluatedEventType = "StrategyEvaluated"
)

// StrategyEvaluatedEvent 策略估值完成事件
type StrategyEvaluatedEvent struct {
	EvaluationID string    `json:"evaluation_id"`
	Ticker       string    `json:"ticker"`
	Code         string    `json:"code"`
	Display      string    `json:"display"`
	NetPrice     float64   `json:"net_price"`
	NetBid       float64   `json:"net_bid"`
	NetAsk       float64   `json:"net_ask"`
	LegCount     int       `json:"leg_count"`
	OccurredOn   time.Time `json:"occurred_on"`
}

// EventPublisher 事件发布者接口
type EventPublisher interface {
	// PublishStrategyEvaluated 发布策略估值完成事件
	PublishStrategyEvaluated(ctx context.Context, event StrategyEvaluatedEvent) error
}
