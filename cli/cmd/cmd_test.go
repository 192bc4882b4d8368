package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/modelforge/types"
)

// runApp runs the CLI in-process with captured output. The exit handler is
// replaced so cli.Exit errors are returned instead of exiting.
func runApp(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := &cli.App{
		Name:           "modelforge",
		Writer:         &out,
		ErrWriter:      &errOut,
		ExitErrHandler: func(*cli.Context, error) {},
		Commands: []*cli.Command{
			GenerateCommand(),
			TypesCommand(),
			CatalogCommand(),
			InspectCommand(),
			StatsCommand(),
			VersionCommand("abc123"),
		},
	}
	err := app.Run(append([]string{"modelforge"}, args...))
	return out.String(), errOut.String(), err
}

// mustRun runs the CLI and fails the test on error.
func mustRun(t *testing.T, args ...string) (string, string) {
	t.Helper()
	out, errOut, err := runApp(t, args...)
	if err != nil {
		t.Fatalf("modelforge %s: %v\nstderr: %s", strings.Join(args, " "), err, errOut)
	}
	return out, errOut
}

// decodeJSON unmarshals out into v and fails the test on error.
func decodeJSON(t *testing.T, out string, v any) {
	t.Helper()
	if err := json.Unmarshal([]byte(out), v); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, out)
	}
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	var coder cli.ExitCoder
	if !errors.As(err, &coder) {
		t.Fatalf("expected cli.ExitCoder, got %T: %v", err, err)
	}
	return coder.ExitCode()
}

func TestOutputFlags(t *testing.T) {
	names := map[string]bool{}
	for _, f := range OutputFlags() {
		names[f.Names()[0]] = true
	}
	for _, want := range []string{"format", "no-color"} {
		if !names[want] {
			t.Errorf("missing --%s flag", want)
		}
	}
}

func TestStorageFlags(t *testing.T) {
	var names []string
	for _, f := range StorageFlags() {
		names = append(names, f.Names()[0])
	}
	slices.Sort(names)
	want := []string{"s3-path-style", "store-backend", "store-dataset", "store-endpoint", "store-path", "store-region"}
	if !slices.Equal(names, want) {
		t.Errorf("storage flags = %v, want %v", names, want)
	}
}

func TestVersionCommand(t *testing.T) {
	out, _ := mustRun(t, "version", "--format", "json")

	var resp VersionResponse
	decodeJSON(t, out, &resp)
	if resp.Version != types.Version {
		t.Errorf("Version = %q, want %q", resp.Version, types.Version)
	}
	if resp.RecordVersion != types.RecordVersion {
		t.Errorf("RecordVersion = %q, want %q", resp.RecordVersion, types.RecordVersion)
	}
	if resp.Commit != "abc123" {
		t.Errorf("Commit = %q, want abc123", resp.Commit)
	}
}

func TestVersionCommand_InvalidFormat(t *testing.T) {
	_, _, err := runApp(t, "version", "--format", "xml")
	if got := exitCode(t, err); got != exitConfigError {
		t.Errorf("exit code = %d, want %d", got, exitConfigError)
	}
}

func TestTypesCommand(t *testing.T) {
	out, _ := mustRun(t, "types", "-f", "json")

	var got []TypeInfo
	decodeJSON(t, out, &got)

	byName := map[string]TypeInfo{}
	var names []string
	for _, ti := range got {
		byName[ti.Name] = ti
		names = append(names, ti.Name)
	}
	if !slices.IsSorted(names) {
		t.Errorf("types not sorted: %v", names)
	}

	tests := []struct {
		name, field, got, want string
	}{
		{"Person", "Kind", byName["Person"].Kind, "struct"},
		{"Order", "GoType", byName["Order"].GoType, "*sample.Order"},
		{"Shape", "Kind", byName["Shape"].Kind, "interface"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s.%s = %q, want %q", tt.name, tt.field, tt.got, tt.want)
		}
	}
	if got := byName["Person"].Fields; got != 10 {
		t.Errorf("Person.Fields = %d, want 10", got)
	}
}

func TestCatalogCommand(t *testing.T) {
	out, _ := mustRun(t, "catalog", "-f", "json")

	var entries []CatalogEntry
	decodeJSON(t, out, &entries)

	kinds := map[string]int{}
	var mappings []string
	for _, e := range entries {
		kinds[e.Kind]++
		if e.Kind == kindMapping {
			mappings = append(mappings, e.Name)
		}
	}
	for _, k := range []string{kindGenerator, kindCreator, kindCreationRule, kindOrderRule, kindMapping, kindPostBuild} {
		if kinds[k] == 0 {
			t.Errorf("expected %s entries", k)
		}
	}
	if !strings.Contains(strings.Join(mappings, ","), "sample.Shape") {
		t.Errorf("mappings %v do not mention sample.Shape", mappings)
	}
}

func TestCatalogCommand_KindFilter(t *testing.T) {
	out, _ := mustRun(t, "catalog", "-f", "json", "--kind", kindGenerator)

	var entries []CatalogEntry
	decodeJSON(t, out, &entries)
	if len(entries) == 0 {
		t.Fatal("expected generator entries")
	}
	for _, e := range entries {
		if e.Kind != kindGenerator {
			t.Errorf("entry %q has kind %q, want %q", e.Name, e.Kind, kindGenerator)
		}
	}
}

func TestCatalogCommand_WithConfig(t *testing.T) {
	path := writeConfig(t, `
ignore:
  - type: Person
    property: Email
`)
	out, _ := mustRun(t, "catalog", "-f", "json", "--kind", kindIgnoreRule, "--config", path)

	var entries []CatalogEntry
	decodeJSON(t, out, &entries)
	if len(entries) != 1 {
		t.Fatalf("got %d ignore rules, want 1", len(entries))
	}
	if !strings.Contains(entries[0].Name, "Email") {
		t.Errorf("ignore rule = %q, want mention of Email", entries[0].Name)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "modelforge.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitSuccess},
		{"configuration error", types.ConfigurationError("bad"), exitConfigError},
		{"wrapped configuration error", fmt.Errorf("wrapped: %w", types.ErrConfiguration), exitConfigError},
		{"build failure", types.NewBuildError(types.ErrBuildFailed, nil, "x", errors.New("boom")), exitBuildFailure},
		{"storage failure", errors.New("storage down"), exitBuildFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
