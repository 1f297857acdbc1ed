package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *memWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *memWriter) Close() error {
	w.closed = true
	return nil
}

func TestNewProducerRequiresBrokers(t *testing.T) {
	_, err := NewProducer()
	assert.Error(t, err)
}

func TestPublishEncodesJSON(t *testing.T) {
	w := &memWriter{}
	p := NewProducerWithWriter(w, "gzip")

	require.NoError(t, p.Publish(context.Background(), "screens", []byte("k"), map[string]float64{"score": 1.5}))
	require.NoError(t, p.PublishMessage(context.Background(), "logs", "raw"))
	require.Len(t, w.msgs, 2)

	var got map[string]float64
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, 1.5, got["score"])
	assert.Equal(t, "screens", w.msgs[0].Topic)
	assert.Equal(t, []byte("k"), w.msgs[0].Key)
	assert.Equal(t, []byte("raw"), w.msgs[1].Value)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestPublishBatchErrors(t *testing.T) {
	w := &memWriter{err: errors.New("broker down")}
	p := NewProducerWithWriter(w, "gzip")

	assert.NoError(t, p.PublishBatch(context.Background(), "t", nil))
	assert.Error(t, p.PublishBatch(context.Background(), "t", []Message{{Value: "x"}}))
	assert.Error(t, p.Publish(context.Background(), "t", nil, func() {}))
}
