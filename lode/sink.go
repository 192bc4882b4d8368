// Package lode persists generated fixtures to a Lode dataset.
//
// Records are JSONL-encoded and Hive-partitioned by type, day and session so
// that one generate invocation lands in its own partition per fixture type.
package lode

import (
	"context"
	"errors"
	"time"

	"github.com/pithecene-io/modelforge/types"
)

// DefaultDataset is the dataset ID used when none is configured.
const DefaultDataset = "fixtures"

// DeriveDay computes the partition day from the session start time.
// Format: YYYY-MM-DD in UTC.
func DeriveDay(startTime time.Time) string {
	return startTime.UTC().Format("2006-01-02")
}

// Config holds dataset writer configuration.
type Config struct {
	// Dataset is the Lode dataset ID.
	Dataset string
	// SessionID is the partition key for the build session.
	SessionID string
	// Day is the partition key derived from the session start (YYYY-MM-DD UTC).
	Day string
	// Seed is recorded on every fixture when the session is seeded.
	Seed *uint64
}

// ConfigFor derives a Config from session metadata.
// An empty dataset falls back to DefaultDataset.
func ConfigFor(dataset string, session *types.SessionMeta) Config {
	if dataset == "" {
		dataset = DefaultDataset
	}
	return Config{
		Dataset:   dataset,
		SessionID: session.SessionID,
		Day:       session.Day(),
		Seed:      session.Seed,
	}
}

// Validate checks that every partition key is present.
func (c Config) Validate() error {
	switch {
	case c.Dataset == "":
		return errors.New("dataset is required")
	case c.SessionID == "":
		return errors.New("session id is required")
	case c.Day == "":
		return errors.New("day is required")
	}
	return nil
}

// Batch is a set of fixtures of one type written together.
type Batch struct {
	// Type is the registered type name (e.g. "Person").
	Type string
	// Values are the generated instances, in generation order.
	Values []any
}

// Sink receives generated fixtures.
type Sink interface {
	// WriteFixtures persists one batch. Ordering within the batch is preserved.
	WriteFixtures(ctx context.Context, batch Batch) error

	// Close releases sink resources.
	Close() error
}

// StubSink is a test sink that records batches without persisting.
type StubSink struct {
	Batches []Batch
	Err     error
	Closed  bool
}

// WriteFixtures implements Sink.
func (s *StubSink) WriteFixtures(_ context.Context, batch Batch) error {
	if s.Err != nil {
		return s.Err
	}
	s.Batches = append(s.Batches, batch)
	return nil
}

// Close implements Sink.
func (s *StubSink) Close() error {
	s.Closed = true
	return nil
}

var _ Sink = (*StubSink)(nil)
