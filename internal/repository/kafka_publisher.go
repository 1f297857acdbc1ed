package repository

import (
	"context"
	"time"

	"Halcon/internal/domain/models"
	domrepo "Halcon/internal/domain/repository"
	pkgkafka "Halcon/pkg/kafka"
)

// KafkaScreenPublisher writes one message per ranked instrument, keyed by
// symbol so a partition sees every screen of that symbol in order.
type KafkaScreenPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

var _ domrepo.ScreenPublisher = (*KafkaScreenPublisher)(nil)

func NewKafkaScreenPublisher(producer *pkgkafka.Producer, topic string) *KafkaScreenPublisher {
	return &KafkaScreenPublisher{producer: producer, topic: topic}
}

type screenEntry struct {
	ScreenID    string               `json:"screen_id"`
	Rank        int                  `json:"rank"`
	GeneratedAt time.Time            `json:"generated_at"`
	Features    models.FeatureVector `json:"features"`
}

func (p *KafkaScreenPublisher) PublishScreen(ctx context.Context, screen *models.Screen) error {
	if screen == nil || len(screen.Results) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(screen.Results))
	for i, fv := range screen.Results {
		msgs[i] = pkgkafka.Message{
			Key: []byte(fv.Symbol),
			Value: screenEntry{
				ScreenID:    screen.ID.String(),
				Rank:        i + 1,
				GeneratedAt: screen.GeneratedAt,
				Features:    fv,
			},
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaScreenPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
