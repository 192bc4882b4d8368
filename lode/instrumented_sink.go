package lode

import (
	"context"

	"github.com/pithecene-io/modelforge/metrics"
)

// InstrumentedSink wraps a Sink and records write metrics. Each
// WriteFixtures call counts one store write success (with its record
// count) or one failure.
type InstrumentedSink struct {
	inner     Sink
	collector *metrics.Collector
}

// NewInstrumentedSink wraps a sink with metrics instrumentation.
func NewInstrumentedSink(inner Sink, collector *metrics.Collector) *InstrumentedSink {
	return &InstrumentedSink{inner: inner, collector: collector}
}

// WriteFixtures delegates to the inner sink and records success or failure.
func (s *InstrumentedSink) WriteFixtures(ctx context.Context, batch Batch) error {
	if len(batch.Values) == 0 {
		return s.inner.WriteFixtures(ctx, batch)
	}
	err := s.inner.WriteFixtures(ctx, batch)
	if err != nil {
		s.collector.IncStoreWriteFailure()
	} else {
		s.collector.IncStoreWriteSuccess(len(batch.Values))
	}
	return err
}

// Close delegates to the inner sink.
func (s *InstrumentedSink) Close() error {
	return s.inner.Close()
}

var _ Sink = (*InstrumentedSink)(nil)
