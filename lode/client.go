package lode

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/justapithecus/lode/lode"

	"github.com/pithecene-io/modelforge/metrics"
)

// partitionKeys is the Hive layout shared by the write and read paths.
var partitionKeys = []string{"type", "day", "session"}

// Client is a Lode-backed implementation of Sink.
type Client struct {
	dataset      lode.Dataset
	config       Config
	storeFactory lode.StoreFactory
	now          func() time.Time

	mu      sync.Mutex     // guards indexes
	indexes map[string]int // next fixture index per type within the session

	storeOnce sync.Once
	store     lode.Store
	storeErr  error
}

// NewClient creates a dataset writer over the given store factory.
// Use lode.NewMemoryFactory() for testing.
func NewClient(cfg Config, factory lode.StoreFactory) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dataset config: %w", err)
	}
	ds, err := NewReadDataset(cfg.Dataset, factory)
	if err != nil {
		return nil, WrapInitError(err, cfg.Dataset)
	}
	return &Client{
		dataset:      ds,
		config:       cfg,
		storeFactory: factory,
		now:          time.Now,
		indexes:      make(map[string]int),
	}, nil
}

// NewFSClient creates a dataset writer rooted at a local directory.
func NewFSClient(cfg Config, root string) (*Client, error) {
	return NewClient(cfg, lode.NewFSFactory(root))
}

// NewMemoryClient creates a dataset writer backed by process memory.
func NewMemoryClient(cfg Config) (*Client, error) {
	return NewClient(cfg, lode.NewMemoryFactory())
}

// Config returns the writer configuration.
func (c *Client) Config() Config {
	return c.config
}

// WriteFixtures writes one batch of fixtures as a single dataset snapshot.
// Indexes continue across batches of the same type and only advance after a
// successful write.
func (c *Client) WriteFixtures(ctx context.Context, batch Batch) error {
	if len(batch.Values) == 0 {
		return nil
	}
	if batch.Type == "" {
		return fmt.Errorf("fixture batch has no type")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	start := c.indexes[batch.Type]
	createdAt := c.now()
	records := make([]any, 0, len(batch.Values))
	for i, v := range batch.Values {
		records = append(records, toFixtureRecordMap(batch.Type, start+i, v, c.config, createdAt))
	}

	if _, err := c.dataset.Write(ctx, records, lode.Metadata{}); err != nil {
		return WrapWriteError(err, c.partitionPath(batch.Type))
	}
	c.indexes[batch.Type] = start + len(batch.Values)
	return nil
}

// WriteSummary writes the session metrics snapshot as a summary record.
func (c *Client) WriteSummary(ctx context.Context, snap metrics.Snapshot, completedAt time.Time) error {
	record := toSummaryRecordMap(snap, c.config, completedAt)
	if _, err := c.dataset.Write(ctx, []any{record}, lode.Metadata{}); err != nil {
		return WrapWriteError(err, c.partitionPath(summaryType))
	}
	return nil
}

// Close releases client resources.
func (c *Client) Close() error {
	return nil
}

// partitionPath renders the Hive partition for typeName, for error context.
func (c *Client) partitionPath(typeName string) string {
	return fmt.Sprintf("%s/type=%s/day=%s/session=%s", c.config.Dataset, typeName, c.config.Day, c.config.SessionID)
}

var _ Sink = (*Client)(nil)
