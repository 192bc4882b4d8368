package config

import (
	"fmt"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pithecene-io/modelforge/build"
	"github.com/pithecene-io/modelforge/creators"
	"github.com/pithecene-io/modelforge/rules"
	"github.com/pithecene-io/modelforge/typeinfo"
	"github.com/pithecene-io/modelforge/types"
)

// Config represents a modelforge.yaml configuration file.
// All values are optional and act as defaults for modelforge generate flags.
// CLI flags always override config values.
type Config struct {
	Seed            *uint64       `yaml:"seed"`
	Count           int           `yaml:"count"`
	CollectionCount *int          `yaml:"collection_count,omitempty"`
	ReuseAncestors  bool          `yaml:"reuse_ancestors"`
	Format          string        `yaml:"format"`
	Ignore          []PropertyRef `yaml:"ignore"`
	Order           []OrderRule   `yaml:"order"`
	Mappings        []TypeMapping `yaml:"mappings"`
	Values          []FixedValue  `yaml:"values"`
	Storage         StorageConfig `yaml:"storage"`
}

// PropertyRef names a property of a registered type.
type PropertyRef struct {
	Type     string `yaml:"type"`
	Property string `yaml:"property"`
}

// OrderRule sets the population priority of a property.
type OrderRule struct {
	Type     string `yaml:"type"`
	Property string `yaml:"property"`
	Priority int    `yaml:"priority"`
}

// TypeMapping maps a registered type to another. A leading "*" selects the
// pointer type.
type TypeMapping struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// FixedValue assigns the same value to a property on every build. Value is
// decoded into the property's Go type when the configuration is applied.
type FixedValue struct {
	Type     string    `yaml:"type"`
	Property string    `yaml:"property"`
	Value    yaml.Node `yaml:"value"`
}

// StorageConfig holds storage defaults from the config file.
type StorageConfig struct {
	Dataset     string `yaml:"dataset"`
	Backend     string `yaml:"backend"`
	Path        string `yaml:"path"`
	Region      string `yaml:"region"`
	Endpoint    string `yaml:"endpoint"`
	S3PathStyle bool   `yaml:"s3_path_style"`
}

// Apply adds the configured rules to c. Type names are resolved against
// registry. Every invalid entry is reported, not only the first.
func (cfg *Config) Apply(c *build.Compiler, registry map[string]reflect.Type) error {
	var problems []string
	fail := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if cfg.CollectionCount != nil {
		if err := creators.AutoPopulateCount.Set(*cfg.CollectionCount); err != nil {
			fail("collection_count: %v", err)
		}
	}
	if cfg.ReuseAncestors {
		c.SetReuseAncestors(true)
	}

	for i, ig := range cfg.Ignore {
		t, ok := lookup(registry, ig.Type)
		if !ok {
			fail("ignore[%d]: unknown type %q", i, ig.Type)
			continue
		}
		c.AddIgnoreRule(t, ig.Property)
	}

	for i, o := range cfg.Order {
		t, ok := lookup(registry, o.Type)
		if !ok {
			fail("order[%d]: unknown type %q", i, o.Type)
			continue
		}
		c.AddExecuteOrderRule(t, o.Property, o.Priority)
	}

	for i, m := range cfg.Mappings {
		from, ok := lookup(registry, m.From)
		if !ok {
			fail("mappings[%d]: unknown type %q", i, m.From)
			continue
		}
		to, ok := lookup(registry, m.To)
		if !ok {
			fail("mappings[%d]: unknown type %q", i, m.To)
			continue
		}
		c.AddTypeMapping(from, to)
	}

	for i, v := range cfg.Values {
		t, ok := lookup(registry, v.Type)
		if !ok {
			fail("values[%d]: unknown type %q", i, v.Type)
			continue
		}
		value, err := v.decode(t)
		if err != nil {
			fail("values[%d]: %v", i, err)
			continue
		}
		c.AddRule(rules.NewPropertyCreationRule(t, v.Property, value, 0))
	}

	if len(problems) > 0 {
		return types.ConfigurationError("%s", strings.Join(problems, "; "))
	}
	return nil
}

// decode converts the YAML value into the type of the property.
func (v *FixedValue) decode(t reflect.Type) (any, error) {
	st := typeinfo.StructType(t)
	if st == nil {
		return nil, fmt.Errorf("%s is not a struct type", t)
	}
	f, ok := st.FieldByName(v.Property)
	if !ok {
		return nil, fmt.Errorf("%s has no property %q", st, v.Property)
	}
	target := reflect.New(f.Type)
	if err := v.Value.Decode(target.Interface()); err != nil {
		return nil, fmt.Errorf("%s.%s: %w", st.Name(), v.Property, err)
	}
	return target.Elem().Interface(), nil
}

func lookup(registry map[string]reflect.Type, name string) (reflect.Type, bool) {
	pointer := strings.HasPrefix(name, "*")
	t, ok := registry[strings.TrimPrefix(name, "*")]
	if !ok {
		return nil, false
	}
	if pointer && t.Kind() != reflect.Pointer {
		return reflect.PointerTo(t), true
	}
	return t, true
}
