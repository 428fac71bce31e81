package broadcast

import (
	"context"
	"time"

	"github.com/grouptick/grouptick/go/internal/events"
)

// MetricsCollector defines the interface for collecting publish metrics
type MetricsCollector interface {
	RecordPublish(eventType string, success bool, duration time.Duration)
}

// NoOpMetricsCollector is a no-op implementation for when metrics aren't needed
type NoOpMetricsCollector struct{}

func (n *NoOpMetricsCollector) RecordPublish(eventType string, success bool, duration time.Duration) {
}

// MetricPublisher wraps a Publisher with metrics collection
type MetricPublisher struct {
	publisher Publisher
	metrics   MetricsCollector
}

func NewMetricPublisher(publisher Publisher, metrics MetricsCollector) *MetricPublisher {
	return &MetricPublisher{
		publisher: publisher,
		metrics:   metrics,
	}
}

func (p *MetricPublisher) Publish(ctx context.Context, groupID string, eventType events.EventType, payload interface{}) error {
	start := time.Now()

	err := p.publisher.Publish(ctx, groupID, eventType, payload)

	p.metrics.RecordPublish(string(eventType), err == nil, time.Since(start))
	return err
}
