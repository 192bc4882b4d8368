// Package metrics provides per-session build metrics collection.
//
// The Collector accumulates counters during a single build session. It is a
// leaf package with no internal dependencies. All increment methods are
// nil-receiver safe so the engine can record unconditionally.
package metrics

import "sync"

// Snapshot is an immutable point-in-time view of all build metrics.
// Returned by Collector.Snapshot(). Safe to read concurrently after creation.
type Snapshot struct {
	// Build requests
	BuildsStarted   int64
	BuildsSucceeded int64
	BuildsFailed    int64

	// Resolution
	InstancesCreated  int64
	ValuesGenerated   int64
	CreatorHits       int64
	CreationRuleHits  int64
	MappingsApplied   int64
	AncestorsReused   int64
	GeneratedBySource map[string]int64

	// Population
	PropertiesPopulated int64
	PropertiesIgnored   int64
	PostBuildActions    int64
	MaxDepth            int64

	// Storage
	RecordsWritten    int64
	StoreWriteSuccess int64
	StoreWriteFailure int64

	// Dimensions (informational, set at construction)
	SessionID      string
	StorageBackend string
}

// Collector accumulates metrics during a single session.
// Thread-safe via sync.Mutex. All increment methods are nil-receiver safe.
type Collector struct {
	mu sync.Mutex

	buildsStarted   int64
	buildsSucceeded int64
	buildsFailed    int64

	instancesCreated  int64
	valuesGenerated   int64
	creatorHits       int64
	creationRuleHits  int64
	mappingsApplied   int64
	ancestorsReused   int64
	generatedBySource map[string]int64

	propertiesPopulated int64
	propertiesIgnored   int64
	postBuildActions    int64
	maxDepth            int64

	recordsWritten    int64
	storeWriteSuccess int64
	storeWriteFailure int64

	sessionID      string
	storageBackend string
}

// NewCollector creates a Collector with dimension labels.
// storageBackend is empty when fixtures are not persisted.
func NewCollector(sessionID, storageBackend string) *Collector {
	return &Collector{
		generatedBySource: make(map[string]int64),
		sessionID:         sessionID,
		storageBackend:    storageBackend,
	}
}

func (c *Collector) inc(field *int64) {
	c.mu.Lock()
	*field++
	c.mu.Unlock()
}

// --- Build requests ---

// IncBuildStarted records a top-level Create or Populate call.
func (c *Collector) IncBuildStarted() {
	if c == nil {
		return
	}
	c.inc(&c.buildsStarted)
}

// IncBuildSucceeded records a top-level call that returned a value.
func (c *Collector) IncBuildSucceeded() {
	if c == nil {
		return
	}
	c.inc(&c.buildsSucceeded)
}

// IncBuildFailed records a top-level call that returned an error.
func (c *Collector) IncBuildFailed() {
	if c == nil {
		return
	}
	c.inc(&c.buildsFailed)
}

// --- Resolution ---

// IncInstanceCreated records a composite value built through a constructor.
func (c *Collector) IncInstanceCreated() {
	if c == nil {
		return
	}
	c.inc(&c.instancesCreated)
}

// IncValueGenerated records a value produced by the named generator.
func (c *Collector) IncValueGenerated(source string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.valuesGenerated++
	c.generatedBySource[source]++
	c.mu.Unlock()
}

// IncCreatorHit records a value produced by a type creator.
func (c *Collector) IncCreatorHit() {
	if c == nil {
		return
	}
	c.inc(&c.creatorHits)
}

// IncCreationRuleHit records a value produced by a creation rule.
func (c *Collector) IncCreationRuleHit() {
	if c == nil {
		return
	}
	c.inc(&c.creationRuleHits)
}

// IncMappingApplied records a type-mapping substitution.
func (c *Collector) IncMappingApplied() {
	if c == nil {
		return
	}
	c.inc(&c.mappingsApplied)
}

// IncAncestorReused records an ancestor assigned in place of a new value.
func (c *Collector) IncAncestorReused() {
	if c == nil {
		return
	}
	c.inc(&c.ancestorsReused)
}

// --- Population ---

// IncPropertyPopulated records an assigned property.
func (c *Collector) IncPropertyPopulated() {
	if c == nil {
		return
	}
	c.inc(&c.propertiesPopulated)
}

// IncPropertyIgnored records a property skipped by an ignore rule.
func (c *Collector) IncPropertyIgnored() {
	if c == nil {
		return
	}
	c.inc(&c.propertiesIgnored)
}

// IncPostBuildAction records an executed post-build action.
func (c *Collector) IncPostBuildAction() {
	if c == nil {
		return
	}
	c.inc(&c.postBuildActions)
}

// ObserveDepth records a build history depth, keeping the maximum.
func (c *Collector) ObserveDepth(depth int) {
	if c == nil {
		return
	}
	c.mu.Lock()
	if int64(depth) > c.maxDepth {
		c.maxDepth = int64(depth)
	}
	c.mu.Unlock()
}

// --- Storage ---
// Store counters are per-call, not per-record. A single write of N records
// counts as 1 success and N records written.

// IncStoreWriteSuccess records a successful dataset write of n records.
func (c *Collector) IncStoreWriteSuccess(n int) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.storeWriteSuccess++
	c.recordsWritten += int64(n)
	c.mu.Unlock()
}

// IncStoreWriteFailure records a failed dataset write.
func (c *Collector) IncStoreWriteFailure() {
	if c == nil {
		return
	}
	c.inc(&c.storeWriteFailure)
}

// --- Snapshot ---

// Snapshot returns an immutable point-in-time view of all metrics.
// The returned Snapshot is safe to read concurrently; the Collector can
// continue to be mutated independently.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	bySource := make(map[string]int64, len(c.generatedBySource))
	for k, v := range c.generatedBySource {
		bySource[k] = v
	}

	return Snapshot{
		BuildsStarted:   c.buildsStarted,
		BuildsSucceeded: c.buildsSucceeded,
		BuildsFailed:    c.buildsFailed,

		InstancesCreated:  c.instancesCreated,
		ValuesGenerated:   c.valuesGenerated,
		CreatorHits:       c.creatorHits,
		CreationRuleHits:  c.creationRuleHits,
		MappingsApplied:   c.mappingsApplied,
		AncestorsReused:   c.ancestorsReused,
		GeneratedBySource: bySource,

		PropertiesPopulated: c.propertiesPopulated,
		PropertiesIgnored:   c.propertiesIgnored,
		PostBuildActions:    c.postBuildActions,
		MaxDepth:            c.maxDepth,

		RecordsWritten:    c.recordsWritten,
		StoreWriteSuccess: c.storeWriteSuccess,
		StoreWriteFailure: c.storeWriteFailure,

		SessionID:      c.sessionID,
		StorageBackend: c.storageBackend,
	}
}
