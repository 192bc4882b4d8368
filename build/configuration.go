// Package build assembles the immutable configuration consumed by the
// engine.
//
// A Compiler collects rules, generators, creators and resolvers, validating
// each as it is added, and Compile freezes them into a Configuration. Rule
// collections are ordered: the first matching type mapping, ignore or
// execute-order rule wins, and generators, creators, creation rules and
// post-build actions are searched by descending priority.
package build

import (
	"reflect"
	"slices"

	"github.com/pithecene-io/modelforge/creators"
	"github.com/pithecene-io/modelforge/generate"
	"github.com/pithecene-io/modelforge/resolve"
	"github.com/pithecene-io/modelforge/rules"
	"github.com/pithecene-io/modelforge/typeinfo"
)

// Settings are engine switches that are not rules.
type Settings struct {
	// ReuseAncestors assigns the nearest ancestor of the same type to a
	// pointer property instead of building a new value. Off by default;
	// without it, or a rule covering the property, a self-referential type
	// recurses without bound.
	ReuseAncestors bool
}

// Configuration is the compiled, read-only build configuration. It is safe
// to share across goroutines and strategies.
type Configuration struct {
	catalog      *typeinfo.Catalog
	rules        ruleSet
	ctorResolver resolve.ConstructorResolver
	propResolver resolve.PropertyResolver
	settings     Settings
}

// Catalog returns the type descriptor catalog.
func (c *Configuration) Catalog() *typeinfo.Catalog { return c.catalog }

// TypeMappings returns the type-mapping rules in match order.
func (c *Configuration) TypeMappings() []*rules.TypeMappingRule {
	return slices.Clone(c.rules.mappings)
}

// IgnoreRules returns the ignore rules in match order.
func (c *Configuration) IgnoreRules() []*rules.IgnoreRule {
	return slices.Clone(c.rules.ignores)
}

// CreationRules returns the creation rules by descending priority.
func (c *Configuration) CreationRules() []*rules.CreationRule {
	return slices.Clone(c.rules.creation)
}

// ExecuteOrderRules returns the execute-order rules in match order.
func (c *Configuration) ExecuteOrderRules() []*rules.ExecuteOrderRule {
	return slices.Clone(c.rules.order)
}

// TypeCreators returns the type creators by descending priority.
func (c *Configuration) TypeCreators() []creators.TypeCreator {
	return slices.Clone(c.rules.creators)
}

// ValueGenerators returns the value generators by descending priority.
func (c *Configuration) ValueGenerators() []generate.ValueGenerator {
	return slices.Clone(c.rules.generators)
}

// PostBuildActions returns the post-build actions by descending priority.
func (c *Configuration) PostBuildActions() []rules.PostBuildAction {
	return slices.Clone(c.rules.postBuild)
}

// ConstructorResolver returns the constructor resolver.
func (c *Configuration) ConstructorResolver() resolve.ConstructorResolver { return c.ctorResolver }

// PropertyResolver returns the property resolver.
func (c *Configuration) PropertyResolver() resolve.PropertyResolver { return c.propResolver }

// Settings returns the engine settings.
func (c *Configuration) Settings() Settings { return c.settings }

// MappedType returns the target of the first mapping rule for t.
func (c *Configuration) MappedType(t reflect.Type) (reflect.Type, bool) {
	for _, m := range c.rules.mappings {
		if m.IsMatch(t) {
			return m.Target, true
		}
	}
	return nil, false
}

// CanBuild reports whether some rule, creator, generator or constructor can
// produce t. It does not check that the whole graph below t is buildable.
func (c *Configuration) CanBuild(t reflect.Type) bool {
	if t == nil {
		return false
	}
	if _, ok := c.MappedType(t); ok {
		return true
	}
	for _, r := range c.rules.creation {
		if r.IsMatch(t, nil) {
			return true
		}
	}
	for _, tc := range c.rules.creators {
		if tc.IsSupported(t, "", nil) {
			return true
		}
	}
	for _, g := range c.rules.generators {
		if g.IsSupported(t, "", nil) {
			return true
		}
	}
	if typeinfo.StructType(t) != nil || c.catalog.HasConstructors(t) {
		return true
	}
	if t.Kind() == reflect.Pointer {
		return c.CanBuild(t.Elem())
	}
	return false
}
