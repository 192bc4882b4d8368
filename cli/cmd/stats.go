package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/modelforge/lode"
	"github.com/pithecene-io/modelforge/metrics"
)

// StatsResponse is the rendered form of session metrics.
type StatsResponse struct {
	SessionID           string           `json:"session_id" yaml:"session_id"`
	StorageBackend      string           `json:"storage_backend,omitempty" yaml:"storage_backend,omitempty"`
	BuildsStarted       int64            `json:"builds_started" yaml:"builds_started"`
	BuildsSucceeded     int64            `json:"builds_succeeded" yaml:"builds_succeeded"`
	BuildsFailed        int64            `json:"builds_failed" yaml:"builds_failed"`
	InstancesCreated    int64            `json:"instances_created" yaml:"instances_created"`
	ValuesGenerated     int64            `json:"values_generated" yaml:"values_generated"`
	GeneratedBySource   map[string]int64 `json:"generated_by_source,omitempty" yaml:"generated_by_source,omitempty"`
	CreatorHits         int64            `json:"creator_hits" yaml:"creator_hits"`
	CreationRuleHits    int64            `json:"creation_rule_hits" yaml:"creation_rule_hits"`
	MappingsApplied     int64            `json:"mappings_applied" yaml:"mappings_applied"`
	AncestorsReused     int64            `json:"ancestors_reused" yaml:"ancestors_reused"`
	PropertiesPopulated int64            `json:"properties_populated" yaml:"properties_populated"`
	PropertiesIgnored   int64            `json:"properties_ignored" yaml:"properties_ignored"`
	PostBuildActions    int64            `json:"post_build_actions" yaml:"post_build_actions"`
	MaxDepth            int64            `json:"max_depth" yaml:"max_depth"`
	RecordsWritten      int64            `json:"records_written" yaml:"records_written"`
}

// statsFromSnapshot converts a live collector snapshot.
func statsFromSnapshot(s metrics.Snapshot) StatsResponse {
	return StatsResponse{
		SessionID:           s.SessionID,
		StorageBackend:      s.StorageBackend,
		BuildsStarted:       s.BuildsStarted,
		BuildsSucceeded:     s.BuildsSucceeded,
		BuildsFailed:        s.BuildsFailed,
		InstancesCreated:    s.InstancesCreated,
		ValuesGenerated:     s.ValuesGenerated,
		GeneratedBySource:   s.GeneratedBySource,
		CreatorHits:         s.CreatorHits,
		CreationRuleHits:    s.CreationRuleHits,
		MappingsApplied:     s.MappingsApplied,
		AncestorsReused:     s.AncestorsReused,
		PropertiesPopulated: s.PropertiesPopulated,
		PropertiesIgnored:   s.PropertiesIgnored,
		PostBuildActions:    s.PostBuildActions,
		MaxDepth:            s.MaxDepth,
		RecordsWritten:      s.RecordsWritten,
	}
}

// statsFromRecord converts a persisted summary record.
func statsFromRecord(record map[string]any) StatsResponse {
	n := func(key string) int64 { return toInt64(record[key]) }
	resp := StatsResponse{
		SessionID:           str(record["session"]),
		StorageBackend:      str(record["storage_backend"]),
		BuildsStarted:       n("builds_started"),
		BuildsSucceeded:     n("builds_succeeded"),
		BuildsFailed:        n("builds_failed"),
		InstancesCreated:    n("instances_created"),
		ValuesGenerated:     n("values_generated"),
		CreatorHits:         n("creator_hits"),
		CreationRuleHits:    n("creation_rule_hits"),
		MappingsApplied:     n("mappings_applied"),
		AncestorsReused:     n("ancestors_reused"),
		PropertiesPopulated: n("properties_populated"),
		PropertiesIgnored:   n("properties_ignored"),
		PostBuildActions:    n("post_build_actions"),
		MaxDepth:            n("max_depth"),
		RecordsWritten:      n("records_written"),
	}
	if by, ok := record["generated_by_source"].(map[string]any); ok && len(by) > 0 {
		resp.GeneratedBySource = make(map[string]int64, len(by))
		for k, v := range by {
			resp.GeneratedBySource[k] = toInt64(v)
		}
	}
	return resp
}

// renderStats writes the session metrics to stderr.
func renderStats(c *cli.Context, format string, s metrics.Snapshot) error {
	r, err := newRenderer(c, format, stderr(c))
	if err != nil {
		return err
	}
	return r.Render(statsFromSnapshot(s))
}

// StatsCommand returns the stats command, which reads the summary a
// generate session persisted.
func StatsCommand() *cli.Command {
	return &cli.Command{
		Name:      "stats",
		Usage:     "Show metrics of a persisted generate session",
		ArgsUsage: "<session-id>",
		Flags:     append(OutputFlags(), StorageFlags()...),
		Action:    statsAction,
	}
}

func statsAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("session-id required", exitConfigError)
	}
	sessionID := c.Args().First()

	o := storeOptionsFrom(c, nil)
	ctx, cancel := context.WithTimeout(c.Context, 30*time.Second)
	defer cancel()

	ds, err := openReadDataset(ctx, o)
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to initialize storage reader: %v", err), exitCodeFor(err))
	}
	record, err := lode.QuerySummary(ctx, ds, sessionID)
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to read session %s: %v", sessionID, err), exitBuildFailure)
	}

	r, err := newRenderer(c, c.String("format"), stdout(c))
	if err != nil {
		return cli.Exit(err.Error(), exitConfigError)
	}
	return r.Render(statsFromRecord(record))
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case float64:
		return int64(n)
	case int:
		return int64(n)
	default:
		return 0
	}
}

func str(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
