// Package cmd provides CLI commands for the modelforge binary.
package cmd

import (
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/modelforge/cli/render"
)

// Shared output flags.
var (
	// FormatFlag selects output format: json, table, yaml, msgpack.
	FormatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: json, table, yaml, msgpack",
	}

	// NoColorFlag disables colored output.
	NoColorFlag = &cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable colored output",
	}
)

// OutputFlags returns the shared flags for every command that renders.
func OutputFlags() []cli.Flag {
	return []cli.Flag{
		FormatFlag,
		NoColorFlag,
	}
}

// StorageFlags returns the dataset location flags shared by generate,
// inspect and stats.
func StorageFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "store-dataset", Usage: "Lode dataset ID (default: \"fixtures\")"},
		&cli.StringFlag{Name: "store-backend", Usage: "Storage backend: fs, s3 or memory"},
		&cli.StringFlag{Name: "store-path", Usage: "Storage path (fs: directory, s3: bucket/prefix)"},
		&cli.StringFlag{Name: "store-region", Usage: "AWS region for S3 backend"},
		&cli.StringFlag{Name: "store-endpoint", Usage: "Custom S3 endpoint (MinIO, R2)"},
		&cli.BoolFlag{Name: "s3-path-style", Usage: "Force path-style S3 addressing"},
	}
}

// newRenderer creates a renderer writing to w. Only terminals get the TTY
// format default; other writers default to json.
func newRenderer(c *cli.Context, format string, w io.Writer) (*render.Renderer, error) {
	if f, ok := w.(*os.File); ok {
		return render.NewRendererFor(format, c.Bool("no-color"), f)
	}
	parsed, err := render.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	if parsed == "" {
		parsed = render.FormatJSON
	}
	return render.NewRendererWithWriter(parsed, c.Bool("no-color"), w), nil
}

// stdout returns the app writer, falling back to os.Stdout.
func stdout(c *cli.Context) io.Writer {
	if c.App != nil && c.App.Writer != nil {
		return c.App.Writer
	}
	return os.Stdout
}

// stderr returns the app error writer, falling back to os.Stderr.
func stderr(c *cli.Context) io.Writer {
	if c.App != nil && c.App.ErrWriter != nil {
		return c.App.ErrWriter
	}
	return os.Stderr
}
