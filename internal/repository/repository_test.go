package repository

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Halcon/internal/domain/models"
	pkgkafka "Halcon/pkg/kafka"
)

type recordingWriter struct {
	msgs []kafka.Message
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func TestKafkaScreenPublisher_OneMessagePerResult(t *testing.T) {
	w := &recordingWriter{}
	pub := NewKafkaScreenPublisher(pkgkafka.NewProducerWithWriter(w, "gzip"), "halcon.screens")

	screen := &models.Screen{
		ID:          uuid.New(),
		GeneratedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Results: []models.FeatureVector{
			{Symbol: "GC=F", Score: 2.1},
			{Symbol: "EURUSD=X", Score: 0.4},
		},
	}
	require.NoError(t, pub.PublishScreen(context.Background(), screen))
	require.Len(t, w.msgs, 2)

	assert.Equal(t, "halcon.screens", w.msgs[0].Topic)
	assert.Equal(t, []byte("GC=F"), w.msgs[0].Key)

	var entry screenEntry
	require.NoError(t, json.Unmarshal(w.msgs[1].Value, &entry))
	assert.Equal(t, screen.ID.String(), entry.ScreenID)
	assert.Equal(t, 2, entry.Rank)
	assert.Equal(t, "EURUSD=X", entry.Features.Symbol)
}

func TestKafkaScreenPublisher_EmptyScreenIsNoop(t *testing.T) {
	w := &recordingWriter{}
	pub := NewKafkaScreenPublisher(pkgkafka.NewProducerWithWriter(w, "gzip"), "t")
	require.NoError(t, pub.PublishScreen(context.Background(), &models.Screen{}))
	assert.Empty(t, w.msgs)
}

func TestInsertBarsQuery(t *testing.T) {
	q := insertBarsQuery("halcon.daily_bars", 3)
	assert.True(t, strings.HasPrefix(q, "INSERT INTO halcon.daily_bars (date, symbol, interval"))
	assert.Equal(t, 3, strings.Count(q, "(?, ?, ?, ?, ?, ?, ?, ?, ?)"))
}

func TestLatestBarsQuery(t *testing.T) {
	q := latestBarsQuery("halcon.daily_bars")
	assert.Contains(t, q, "FROM halcon.daily_bars FINAL")
	assert.Contains(t, q, "ORDER BY date DESC")
}

func TestQualifiedTableAndReverse(t *testing.T) {
	assert.Equal(t, "halcon.daily_bars", qualifiedTable("halcon", "daily_bars"))
	assert.Equal(t, "other.bars", qualifiedTable("halcon", "other.bars"))

	bars := []models.Bar{{Close: 3}, {Close: 2}, {Close: 1}}
	reverseBars(bars)
	assert.Equal(t, []float64{1, 2, 3}, []float64{bars[0].Close, bars[1].Close, bars[2].Close})
}
