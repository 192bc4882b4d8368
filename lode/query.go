package lode

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/justapithecus/lode/lode"
)

// ErrNoFixturesFound is returned when a query matches no records.
var ErrNoFixturesFound = errors.New("no fixtures found")

// QueryFixtures returns the fixtures written for typeName in a session,
// ordered by index. Partition paths pre-filter snapshots; record fields
// are authoritative.
func QueryFixtures(ctx context.Context, ds lode.Dataset, sessionID, typeName string) ([]FixtureRecord, error) {
	var out []FixtureRecord
	err := eachRecord(ctx, ds, sessionID, typeName, func(record map[string]any) bool {
		if record["record_kind"] != RecordKindFixture {
			return true
		}
		out = append(out, fixtureFromMap(record))
		return true
	})
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNoFixturesFound
	}
	sortByIndex(out)
	return out, nil
}

// QuerySummary returns the latest summary record written for a session.
func QuerySummary(ctx context.Context, ds lode.Dataset, sessionID string) (map[string]any, error) {
	var latest map[string]any
	err := eachRecord(ctx, ds, sessionID, summaryType, func(record map[string]any) bool {
		if record["record_kind"] == RecordKindSummary {
			latest = record
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return nil, ErrNoFixturesFound
	}
	return latest, nil
}

// eachRecord visits records of matching snapshots oldest first.
func eachRecord(ctx context.Context, ds lode.Dataset, sessionID, typeName string, fn func(map[string]any) bool) error {
	snapshots, err := ds.Snapshots(ctx)
	if err != nil {
		return WrapReadError(err, fmt.Sprintf("%s/snapshots", ds.ID()))
	}
	for _, snap := range snapshots {
		if !snapshotMatchesFilter(snap, "session", sessionID) || !snapshotMatchesFilter(snap, "type", typeName) {
			continue
		}
		data, err := ds.Read(ctx, snap.ID)
		if err != nil {
			return WrapReadError(err, fmt.Sprintf("%s/snapshot/%s", ds.ID(), snap.ID))
		}
		for _, item := range data {
			record, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if sessionID != "" && toString(record["session"]) != sessionID {
				continue
			}
			if typeName != "" && toString(record["type"]) != typeName {
				continue
			}
			if !fn(record) {
				return nil
			}
		}
	}
	return nil
}

func fixtureFromMap(m map[string]any) FixtureRecord {
	r := FixtureRecord{
		RecordKind: toString(m["record_kind"]),
		Version:    toString(m["record_version"]),
		Index:      int(toFloat(m["index"])),
		CreatedAt:  toString(m["created_at"]),
		Data:       m["data"],
		Type:       toString(m["type"]),
		Day:        toString(m["day"]),
		Session:    toString(m["session"]),
	}
	if s, ok := m["seed"]; ok && s != nil {
		seed := uint64(toFloat(s))
		r.Seed = &seed
	}
	return r
}

func sortByIndex(records []FixtureRecord) {
	slices.SortStableFunc(records, func(a, b FixtureRecord) int {
		return cmp.Compare(a.Index, b.Index)
	})
}

// toString converts a value to string, returning empty string for nil/non-string.
func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// toFloat accepts the numeric forms a JSON decode or in-memory record may hold.
func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case uint64:
		return float64(n)
	case json.Number:
		f, _ := n.Float64()
		return f
	}
	return 0
}
