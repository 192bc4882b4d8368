package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/modelforge/types"
)

// VersionResponse is the response for the version command.
type VersionResponse struct {
	Version       string `json:"version" yaml:"version"`
	RecordVersion string `json:"record_version" yaml:"record_version"`
	Commit        string `json:"commit" yaml:"commit"`
}

// VersionCommand returns the version command.
func VersionCommand(commit string) *cli.Command {
	return &cli.Command{
		Name:   "version",
		Usage:  "Show version information",
		Flags:  OutputFlags(),
		Action: versionAction(commit),
	}
}

func versionAction(commit string) cli.ActionFunc {
	return func(c *cli.Context) error {
		r, err := newRenderer(c, c.String("format"), stdout(c))
		if err != nil {
			return cli.Exit(err.Error(), exitConfigError)
		}
		return r.Render(VersionResponse{
			Version:       types.Version,
			RecordVersion: types.RecordVersion,
			Commit:        commit,
		})
	}
}
