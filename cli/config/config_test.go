package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/pithecene-io/modelforge/build"
	"github.com/pithecene-io/modelforge/creators"
	"github.com/pithecene-io/modelforge/engine"
	"github.com/pithecene-io/modelforge/types"
)

type pet interface{ Sound() string }

type dog struct {
	Name string
}

func (d *dog) Sound() string { return "woof" }

type owner struct {
	Name     string
	Nickname string
	Age      int
	Tags     []string
	Pet      pet
}

var registry = map[string]reflect.Type{
	"Owner": reflect.TypeFor[owner](),
	"Pet":   reflect.TypeFor[pet](),
	"Dog":   reflect.TypeFor[dog](),
}

func TestLoad_FullConfig(t *testing.T) {
	yaml := `seed: 42
count: 5
collection_count: 3
reuse_ancestors: true
format: yaml

ignore:
  - type: Owner
    property: Nickname

order:
  - type: Owner
    property: Age
    priority: 100

mappings:
  - from: Pet
    to: "*Dog"

values:
  - type: Owner
    property: Tags
    value: [a, b]

storage:
  dataset: fixtures
  backend: s3
  path: my-bucket/prefix
  region: us-east-1
  endpoint: https://example.com
  s3_path_style: true
`
	path := writeTemp(t, yaml)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Seed == nil || *cfg.Seed != 42 {
		t.Errorf("expected seed=42, got %v", cfg.Seed)
	}
	if cfg.Count != 5 {
		t.Errorf("expected count=5, got %d", cfg.Count)
	}
	if cfg.CollectionCount == nil || *cfg.CollectionCount != 3 {
		t.Errorf("expected collection_count=3, got %v", cfg.CollectionCount)
	}
	if !cfg.ReuseAncestors {
		t.Error("expected reuse_ancestors=true")
	}
	assertEqual(t, "format", cfg.Format, "yaml")

	if len(cfg.Ignore) != 1 || cfg.Ignore[0] != (PropertyRef{Type: "Owner", Property: "Nickname"}) {
		t.Errorf("unexpected ignore rules: %+v", cfg.Ignore)
	}
	if len(cfg.Order) != 1 || cfg.Order[0].Priority != 100 {
		t.Errorf("unexpected order rules: %+v", cfg.Order)
	}
	if len(cfg.Mappings) != 1 || cfg.Mappings[0].To != "*Dog" {
		t.Errorf("unexpected mappings: %+v", cfg.Mappings)
	}
	if len(cfg.Values) != 1 || cfg.Values[0].Property != "Tags" {
		t.Errorf("unexpected values: %+v", cfg.Values)
	}

	// Storage
	assertEqual(t, "storage.dataset", cfg.Storage.Dataset, "fixtures")
	assertEqual(t, "storage.backend", cfg.Storage.Backend, "s3")
	assertEqual(t, "storage.path", cfg.Storage.Path, "my-bucket/prefix")
	assertEqual(t, "storage.region", cfg.Storage.Region, "us-east-1")
	assertEqual(t, "storage.endpoint", cfg.Storage.Endpoint, "https://example.com")
	if !cfg.Storage.S3PathStyle {
		t.Error("expected storage.s3_path_style=true")
	}
}

func TestLoad_EmptyConfig(t *testing.T) {
	path := writeTemp(t, "")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Seed != nil {
		t.Errorf("expected nil seed, got %v", *cfg.Seed)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/modelforge.yaml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeTemp(t, "{{invalid yaml")
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_FORMAT", "msgpack")

	path := writeTemp(t, `format: ${TEST_FORMAT}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	assertEqual(t, "format", cfg.Format, "msgpack")
}

func TestLoad_UnknownKeyRejected(t *testing.T) {
	yaml := `count: 2
bogus_key: should_fail
`
	path := writeTemp(t, yaml)
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for unknown key, got nil")
	}
	if !strings.Contains(err.Error(), "bogus_key") {
		t.Errorf("error should mention the unknown key, got: %v", err)
	}
}

func TestLoad_UnknownNestedKeyRejected(t *testing.T) {
	yaml := `storage:
  backend: fs
  path: ./data
  unknown_field: bad
`
	path := writeTemp(t, yaml)
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for unknown nested key, got nil")
	}
	if !strings.Contains(err.Error(), "unknown_field") {
		t.Errorf("error should mention the unknown key, got: %v", err)
	}
}

func TestLoad_CommentsOnlyConfig(t *testing.T) {
	path := writeTemp(t, "# This is a comment\n# Another comment\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed for comments-only config: %v", err)
	}
	if cfg.Count != 0 {
		t.Errorf("expected zero count, got %d", cfg.Count)
	}
}

func TestApply_BuildsWithConfiguredRules(t *testing.T) {
	restore := creators.AutoPopulateCount.Override(creators.AutoPopulateCount.Get())
	defer restore()

	yaml := `collection_count: 2
ignore:
  - type: Owner
    property: Nickname
mappings:
  - from: Pet
    to: "*Dog"
values:
  - type: Owner
    property: Name
    value: ${OWNER_NAME:-ann}
  - type: Owner
    property: Age
    value: 37
`
	cfg, err := Load(writeTemp(t, yaml))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	c := build.DefaultCompiler()
	if err := cfg.Apply(c, registry); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	compiled, err := c.Compile()
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	s, err := engine.New(compiled)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	o, err := engine.Create[owner](s)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	assertEqual(t, "name", o.Name, "ann")
	assertEqual(t, "nickname", o.Nickname, "")
	if o.Age != 37 {
		t.Errorf("expected age=37, got %d", o.Age)
	}
	if len(o.Tags) != 2 {
		t.Errorf("expected 2 tags, got %d", len(o.Tags))
	}
	if _, ok := o.Pet.(*dog); !ok {
		t.Errorf("expected *dog pet, got %T", o.Pet)
	}
}

func TestApply_ReportsEveryProblem(t *testing.T) {
	yaml := `ignore:
  - type: Nope
    property: X
mappings:
  - from: Pet
    to: Missing
values:
  - type: Owner
    property: Age
    value: not-a-number
  - type: Owner
    property: Ghost
    value: 1
`
	cfg, err := Load(writeTemp(t, yaml))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	err = cfg.Apply(build.DefaultCompiler(), registry)
	if !errors.Is(err, types.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	for _, want := range []string{`"Nope"`, `"Missing"`, "values[0]", "Ghost"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %s, got: %v", want, err)
		}
	}
}

func TestApply_NegativeCollectionCount(t *testing.T) {
	n := -1
	cfg := &Config{CollectionCount: &n}
	if err := cfg.Apply(build.DefaultCompiler(), registry); !errors.Is(err, types.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

// writeTemp writes content to a temp file and returns the path.
func writeTemp(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFile)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func assertEqual(t *testing.T, field, got, want string) {
	t.Helper()
	if got != want {
		t.Errorf("%s: got %q, want %q", field, got, want)
	}
}
