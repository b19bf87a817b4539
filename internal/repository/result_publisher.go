package repository

import (
	"context"
	"fmt"
	"strconv"

	"PriceSim/internal/domain/models"
	"PriceSim/internal/domain/repository"
	pkgkafka "PriceSim/pkg/kafka"
)

// DefaultResultChunk is the number of row results per Kafka message.
const DefaultResultChunk = 5000

type batchPublisher interface {
	PublishBatch(ctx context.Context, topic string, messages []pkgkafka.Message) error
	Close() error
}

// KafkaResultPublisher implements ResultPublisher for Kafka. Every part of a
// result is keyed by the request id so parts stay ordered on one partition.
type KafkaResultPublisher struct {
	producer batchPublisher
	topic    string
	chunk    int
}

// NewKafkaResultPublisher creates a Kafka result publisher.
func NewKafkaResultPublisher(producer *pkgkafka.Producer, topic string) repository.ResultPublisher {
	return newKafkaResultPublisher(producer, topic, DefaultResultChunk)
}

func newKafkaResultPublisher(producer batchPublisher, topic string, chunk int) *KafkaResultPublisher {
	if chunk <= 0 {
		chunk = DefaultResultChunk
	}
	return &KafkaResultPublisher{producer: producer, topic: topic, chunk: chunk}
}

func (p *KafkaResultPublisher) PublishResult(ctx context.Context, requestID string, res *models.BatchResult) error {
	msgs := SplitResult(requestID, res, p.chunk)
	batch := make([]pkgkafka.Message, len(msgs))
	for i := range msgs {
		batch[i] = pkgkafka.Message{
			Key:   []byte(requestID),
			Value: msgs[i],
			Headers: map[string]string{
				"part":  strconv.Itoa(msgs[i].Part),
				"parts": strconv.Itoa(msgs[i].Parts),
			},
		}
	}
	if err := p.producer.PublishBatch(ctx, p.topic, batch); err != nil {
		return fmt.Errorf("publish result %s: %w", requestID, err)
	}
	return nil
}

func (p *KafkaResultPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// SplitResult cuts a batch result into messages of at most chunk rows. The
// settings summary travels with the first part only.
func SplitResult(requestID string, res *models.BatchResult, chunk int) []models.RecomputeResultMessage {
	if chunk <= 0 {
		chunk = DefaultResultChunk
	}
	parts := (len(res.Results) + chunk - 1) / chunk
	if parts == 0 {
		parts = 1
	}
	out := make([]models.RecomputeResultMessage, 0, parts)
	for p := 0; p < parts; p++ {
		lo := p * chunk
		hi := lo + chunk
		if hi > len(res.Results) {
			hi = len(res.Results)
		}
		msg := models.RecomputeResultMessage{
			RequestID: requestID,
			Part:      p + 1,
			Parts:     parts,
			Offset:    lo,
			Failed:    res.Failed,
			Results:   res.Results[lo:hi],
		}
		if p == 0 {
			msg.Summary = res.Summary
		}
		out = append(out, msg)
	}
	return out
}
