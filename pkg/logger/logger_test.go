package logger

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	mu      sync.Mutex
	topic   string
	entries []AggregatedLogEntry
}

func (p *capturePublisher) PublishMessage(_ context.Context, topic string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topic = topic
	p.entries = append(p.entries, payload.([]AggregatedLogEntry)...)
	return nil
}

func (p *capturePublisher) snapshot() []AggregatedLogEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]AggregatedLogEntry(nil), p.entries...)
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(&Config{Level: "loud", Output: "discard"})
	assert.Error(t, err)
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l, err := New(&Config{Level: "debug", Format: "json", Output: path})
	require.NoError(t, err)
	l.Info("hello", String("k", "v"), Int("n", 1), Float64("f", 0.5), Bool("b", true))
	assert.FileExists(t, path)
}

func TestCollectorAggregatesDuplicates(t *testing.T) {
	pub := &capturePublisher{}
	l := Nop()
	l.AddCollector(&CollectionConfig{TimeInterval: time.Hour, CountThreshold: 100, Topic: "halcon.logs", Publisher: pub})

	for i := 0; i < 3; i++ {
		l.Error("fetch failed", String("symbol", "GC=F"), Error(errors.New("timeout")))
	}
	l.Warn("slow", Duration("took_ms", 1500*time.Millisecond))
	l.Info("not collected")
	l.RemoveCollector()

	require.Eventually(t, func() bool { return len(pub.snapshot()) == 2 }, time.Second, 10*time.Millisecond)

	counts := map[string]int{}
	for _, e := range pub.snapshot() {
		counts[e.Message] = e.Count
	}
	assert.Equal(t, 3, counts["fetch failed"])
	assert.Equal(t, 1, counts["slow"])
	assert.Equal(t, "halcon.logs", pub.topic)
}

func TestCollectorFlushesOnThreshold(t *testing.T) {
	pub := &capturePublisher{}
	c := NewLogCollector(&CollectionConfig{TimeInterval: time.Hour, CountThreshold: 2, Publisher: pub})
	defer c.Close()

	c.AddLog("error", "a", nil, "x.go:1")
	c.AddLog("error", "b", nil, "x.go:2")

	require.Eventually(t, func() bool { return len(pub.snapshot()) == 2 }, time.Second, 10*time.Millisecond)
}
