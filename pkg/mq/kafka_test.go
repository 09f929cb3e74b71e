package mq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestSendMessageEncodesJSON(t *testing.T) {
	w := &recordingWriter{}
	p := NewProducerWithWriter(w)

	err := p.SendMessage(context.Background(), "strategy.evaluated", "SX5E", map[string]any{"code": "ECS"})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "strategy.evaluated", msg.Topic)
	assert.Equal(t, "SX5E", string(msg.Key))

	var payload map[string]string
	require.NoError(t, json.Unmarshal(msg.Value, &payload))
	assert.Equal(t, "ECS", payload["code"])

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestSendMessageErrors(t *testing.T) {
	w := &recordingWriter{err: errors.New("broker down")}
	p := NewProducerWithWriter(w)

	err := p.SendMessage(context.Background(), "t", "k", struct{}{})
	assert.EqualError(t, err, "broker down")

	err = p.SendMessage(context.Background(), "t", "k", func() {})
	assert.ErrorContains(t, err, "failed to marshal message")
}

func TestNewProducerRequiresBrokers(t *testing.T) {
	_, err := NewProducer(KafkaConfig{})
	assert.Error(t, err)
}
