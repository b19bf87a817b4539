package repository

import (
	"context"
	"errors"

	"PriceSim/internal/domain/models"
)

// ErrSessionNotFound is returned when a session expired or never existed.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore keeps the settings template between the interactive and the
// batch phase. Entries expire; nothing is kept beyond a session.
type SessionStore interface {
	Save(ctx context.Context, s models.Session) error
	Load(ctx context.Context, id string) (models.Session, error)
}

// ResultPublisher ships batch recomputation results to an external sink.
type ResultPublisher interface {
	PublishResult(ctx context.Context, requestID string, res *models.BatchResult) error
	Close() error
}

type Metrics interface {
	RecordProjection(source string)
	RecordError(kind string)
	RecordBatchRows(outcome string, n int)
	RecordFinalPrice(source string, price float64)
	RecordLatency(op string, seconds float64)
}
