package middleware

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"

	"LoadLedger/internal/domain/repository"
	pkgkafka "LoadLedger/pkg/kafka"
)

// ConsumeMetricsHook times request-topic message handling and feeds the
// duration into the pipeline metrics as the "consume" stage.
type ConsumeMetricsHook struct {
	metrics repository.Metrics
}

// NewConsumeMetricsHook creates a consumer hook backed by the given recorder.
func NewConsumeMetricsHook(m repository.Metrics) *ConsumeMetricsHook {
	return &ConsumeMetricsHook{metrics: m}
}

// BeforeHandle stamps the start time and carries any trace id from the
// message headers into the handler context.
func (h *ConsumeMetricsHook) BeforeHandle(ctx context.Context, topic string, km kafka.Message, data []byte) (context.Context, kafka.Message, []byte, error) {
	ctx = pkgkafka.WithTraceID(ctx, pkgkafka.ExtractTraceID(km))
	return pkgkafka.WithStartTime(ctx, time.Now()), km, data, nil
}

// AfterHandle records how long the handler took, success or not.
func (h *ConsumeMetricsHook) AfterHandle(ctx context.Context, topic string, km kafka.Message, data []byte, err error) {
	if start, ok := ctx.Value(pkgkafka.CtxStartTime).(time.Time); ok {
		h.metrics.RecordStageDuration("consume", time.Since(start).Seconds())
	}
}

// OnError is a no-op; per-attempt failures are already logged and counted
// by the consumer itself.
func (h *ConsumeMetricsHook) OnError(ctx context.Context, topic string, km kafka.Message, data []byte, err error) {
}
