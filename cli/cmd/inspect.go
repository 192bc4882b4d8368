package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/modelforge/lode"
)

// InspectCommand returns the inspect command, which lists the fixtures a
// generate session persisted for one type.
func InspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "List persisted fixtures of a session",
		ArgsUsage: "<session-id>",
		Flags: append(append(OutputFlags(), StorageFlags()...),
			&cli.StringFlag{
				Name:     "type",
				Aliases:  []string{"t"},
				Usage:    "Fixture type to list",
				Required: true,
			},
		),
		Action: inspectAction,
	}
}

// FixtureRow is one persisted fixture as rendered by inspect.
type FixtureRow struct {
	Index     int     `json:"index" yaml:"index"`
	Type      string  `json:"type" yaml:"type"`
	Seed      *uint64 `json:"seed,omitempty" yaml:"seed,omitempty"`
	CreatedAt string  `json:"created_at" yaml:"created_at"`
	Data      any     `json:"data" yaml:"data"`
}

func inspectAction(c *cli.Context) error {
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
	records, err := lode.QueryFixtures(ctx, ds, sessionID, c.String("type"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to read session %s: %v", sessionID, err), exitBuildFailure)
	}

	rows := make([]FixtureRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, FixtureRow{
			Index:     rec.Index,
			Type:      rec.Type,
			Seed:      rec.Seed,
			CreatedAt: rec.CreatedAt,
			Data:      rec.Data,
		})
	}

	r, err := newRenderer(c, c.String("format"), stdout(c))
	if err != nil {
		return cli.Exit(err.Error(), exitConfigError)
	}
	return r.Render(rows)
}
