package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/segmentio/kafka-go"

	"PriceSim/internal/domain/models"
	domrepo "PriceSim/internal/domain/repository"
	xhttp "PriceSim/pkg/http"
	pkgkafka "PriceSim/pkg/kafka"
	applogger "PriceSim/pkg/logger"
)

// KafkaRecomputeHandler consumes recomputation requests and publishes the
// per-row results. Malformed requests fail permanently; publish failures are
// retried by the consumer.
type KafkaRecomputeHandler struct {
	topic     string
	recompute *Recomputer
	publisher domrepo.ResultPublisher
	metrics   domrepo.Metrics
	log       *applogger.Logger
	validate  *validator.Validate
}

func NewKafkaRecomputeHandler(topic string, recompute *Recomputer, publisher domrepo.ResultPublisher, metrics domrepo.Metrics, log *applogger.Logger) *KafkaRecomputeHandler {
	if log == nil {
		log = applogger.NewNop()
	}
	return &KafkaRecomputeHandler{
		topic:     topic,
		recompute: recompute,
		publisher: publisher,
		metrics:   metrics,
		log:       log,
		validate:  xhttp.Validator(),
	}
}

func (h *KafkaRecomputeHandler) Topic() string { return h.topic }

// incoming message schema: {request_id, template, rows}
func (h *KafkaRecomputeHandler) Handle(ctx context.Context, b []byte) error {
	var req models.RecomputeRequestMessage
	if err := json.Unmarshal(b, &req); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return pkgkafka.Permanent(fmt.Errorf("decode recompute request: %w", err))
	}
	if err := defaults.Set(&req); err != nil {
		return pkgkafka.Permanent(fmt.Errorf("apply defaults: %w", err))
	}
	if err := h.validate.StructCtx(ctx, &req); err != nil {
		h.metrics.RecordError("consumer_validate")
		return pkgkafka.Permanent(fmt.Errorf("invalid recompute request: %w", err))
	}

	res, err := h.recompute.Recompute(ctx, req.Template.Model(), req.Rows)
	if err != nil {
		return pkgkafka.Permanent(err)
	}

	start := time.Now()
	if err := h.publisher.PublishResult(ctx, req.RequestID, res); err != nil {
		h.metrics.RecordError("result_publish")
		return err
	}
	h.metrics.RecordLatency("result_publish", time.Since(start).Seconds())

	h.log.Info("recompute request processed",
		applogger.String("request_id", req.RequestID),
		applogger.Int("rows", len(req.Rows)),
		applogger.Int("failed", res.Failed),
	)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaRecomputeHandler)(nil)

// NewRecomputeHooks builds the consumer hook chain for the recompute topic:
// the request key becomes the trace id, and handling time and failures are
// recorded.
func NewRecomputeHooks(metrics domrepo.Metrics, log *applogger.Logger) pkgkafka.ConsumerHook {
	if log == nil {
		log = applogger.NewNop()
	}
	trace := pkgkafka.HookFuncs{
		Before: func(ctx context.Context, _ string, km kafka.Message, data []byte) (context.Context, kafka.Message, []byte, error) {
			if len(data) == 0 {
				return ctx, km, data, &pkgkafka.HookError{Code: "ERR_EMPTY_PAYLOAD", Err: pkgkafka.ErrPermanent}
			}
			ctx = pkgkafka.WithStartTime(ctx, time.Now())
			return pkgkafka.WithTraceID(ctx, pkgkafka.ExtractTraceID(km)), km, data, nil
		},
	}
	observe := pkgkafka.HookFuncs{
		After: func(ctx context.Context, topic string, _ kafka.Message, _ []byte, err error) {
			if t, ok := pkgkafka.StartTime(ctx); ok {
				metrics.RecordLatency("kafka_handle", time.Since(t).Seconds())
			}
		},
		Err: func(ctx context.Context, topic string, _ kafka.Message, _ []byte, err error) {
			metrics.RecordError("kafka_handle")
			log.Warn("recompute message failed",
				applogger.String("topic", topic),
				applogger.String("trace_id", pkgkafka.TraceID(ctx)),
				applogger.Error(err),
			)
		},
	}
	return pkgkafka.NewHookChain(trace, observe)
}
