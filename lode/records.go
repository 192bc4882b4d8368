package lode

import (
	"time"

	"github.com/pithecene-io/modelforge/metrics"
	"github.com/pithecene-io/modelforge/types"
)

// Record discriminator values.
const (
	RecordKindFixture = "fixture"
	RecordKindSummary = "summary"
)

// summaryType is the type partition used for session summary records.
const summaryType = "_session"

// FixtureRecord is the storage format for one generated fixture.
// Documented for readers of the dataset; writes use the map form below.
type FixtureRecord struct {
	RecordKind string  `json:"record_kind"`
	Version    string  `json:"record_version"`
	Index      int     `json:"index"`
	Seed       *uint64 `json:"seed,omitempty"`
	CreatedAt  string  `json:"created_at"`
	Data       any     `json:"data"`

	// Partition keys (used by Lode HiveLayout)
	Type    string `json:"type"`
	Day     string `json:"day"`
	Session string `json:"session"`
}

// toFixtureRecordMap converts a fixture to a map for Lode storage.
// Lode HiveLayout reads partition values from map keys.
func toFixtureRecordMap(typeName string, index int, value any, cfg Config, createdAt time.Time) map[string]any {
	m := map[string]any{
		"record_kind":    RecordKindFixture,
		"record_version": types.RecordVersion,
		"index":          index,
		"created_at":     createdAt.UTC().Format(time.RFC3339Nano),
		"data":           value,
		"type":           typeName,
		"day":            cfg.Day,
		"session":        cfg.SessionID,
	}
	if cfg.Seed != nil {
		m["seed"] = *cfg.Seed
	}
	return m
}

// toSummaryRecordMap converts a metrics snapshot to a session summary record.
func toSummaryRecordMap(snap metrics.Snapshot, cfg Config, completedAt time.Time) map[string]any {
	bySource := make(map[string]any, len(snap.GeneratedBySource))
	for k, v := range snap.GeneratedBySource {
		bySource[k] = v
	}
	m := map[string]any{
		"record_kind":          RecordKindSummary,
		"completed_at":         completedAt.UTC().Format(time.RFC3339Nano),
		"builds_started":       snap.BuildsStarted,
		"builds_succeeded":     snap.BuildsSucceeded,
		"builds_failed":        snap.BuildsFailed,
		"instances_created":    snap.InstancesCreated,
		"values_generated":     snap.ValuesGenerated,
		"generated_by_source":  bySource,
		"creator_hits":         snap.CreatorHits,
		"creation_rule_hits":   snap.CreationRuleHits,
		"mappings_applied":     snap.MappingsApplied,
		"ancestors_reused":     snap.AncestorsReused,
		"properties_populated": snap.PropertiesPopulated,
		"properties_ignored":   snap.PropertiesIgnored,
		"post_build_actions":   snap.PostBuildActions,
		"max_depth":            snap.MaxDepth,
		"records_written":      snap.RecordsWritten,
		"storage_backend":      snap.StorageBackend,
		"type":                 summaryType,
		"day":                  cfg.Day,
		"session":              cfg.SessionID,
	}
	if cfg.Seed != nil {
		m["seed"] = *cfg.Seed
	}
	return m
}
