package build

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/pithecene-io/modelforge/creators"
	"github.com/pithecene-io/modelforge/generate"
	"github.com/pithecene-io/modelforge/resolve"
	"github.com/pithecene-io/modelforge/rules"
	"github.com/pithecene-io/modelforge/typeinfo"
	"github.com/pithecene-io/modelforge/types"
)

type ruleSet struct {
	mappings   []*rules.TypeMappingRule
	ignores    []*rules.IgnoreRule
	creation   []*rules.CreationRule
	order      []*rules.ExecuteOrderRule
	creators   []creators.TypeCreator
	generators []generate.ValueGenerator
	postBuild  []rules.PostBuildAction
}

func (s *ruleSet) add(r any) error {
	switch v := r.(type) {
	case *rules.TypeMappingRule:
		s.mappings = append(s.mappings, v)
	case *rules.IgnoreRule:
		s.ignores = append(s.ignores, v)
	case *rules.CreationRule:
		s.creation = append(s.creation, v)
	case *rules.ExecuteOrderRule:
		s.order = append(s.order, v)
	case creators.TypeCreator:
		s.creators = append(s.creators, v)
	case generate.ValueGenerator:
		s.generators = append(s.generators, v)
	case rules.PostBuildAction:
		s.postBuild = append(s.postBuild, v)
	default:
		return types.ConfigurationError("unsupported rule %T", r)
	}
	return nil
}

// merge returns s followed by fallback.
func (s ruleSet) merge(fallback ruleSet) ruleSet {
	return ruleSet{
		mappings:   append(append([]*rules.TypeMappingRule(nil), s.mappings...), fallback.mappings...),
		ignores:    append(append([]*rules.IgnoreRule(nil), s.ignores...), fallback.ignores...),
		creation:   append(append([]*rules.CreationRule(nil), s.creation...), fallback.creation...),
		order:      append(append([]*rules.ExecuteOrderRule(nil), s.order...), fallback.order...),
		creators:   append(append([]creators.TypeCreator(nil), s.creators...), fallback.creators...),
		generators: append(append([]generate.ValueGenerator(nil), s.generators...), fallback.generators...),
		postBuild:  append(append([]rules.PostBuildAction(nil), s.postBuild...), fallback.postBuild...),
	}
}

// Compiler assembles a Configuration. Methods chain; errors from invalid
// rules are collected and reported by Compile. A Compiler is not safe for
// concurrent use.
type Compiler struct {
	catalog      *typeinfo.Catalog
	user         ruleSet
	defaults     ruleSet
	ctorResolver resolve.ConstructorResolver
	propResolver resolve.PropertyResolver
	settings     Settings
	random       *generate.Random
	errs         []error
}

// NewCompiler creates an empty compiler. Most callers want DefaultCompiler.
func NewCompiler() *Compiler {
	return &Compiler{catalog: typeinfo.NewCatalog()}
}

// DefaultCompiler creates a compiler with DefaultModule applied.
func DefaultCompiler() *Compiler {
	return NewCompiler().AddModule(DefaultModule{})
}

// AddModule applies m.
func (c *Compiler) AddModule(m Module) *Compiler {
	if m == nil {
		c.errs = append(c.errs, types.ArgumentError("module"))
		return c
	}
	m.Configure(c)
	return c
}

// AddRule adds a rule, creator, generator or post-build action. It accepts
// the result of a rules constructor directly:
//
//	c.AddRule(rules.NewIgnoreRule(t, "Secret"))
func (c *Compiler) AddRule(r any, err error) *Compiler {
	c.addTo(&c.user, r, err)
	return c
}

// AddDefaultRule adds a rule that user rules of the same kind take
// precedence over. Modules providing built-in behavior use it.
func (c *Compiler) AddDefaultRule(r any, err error) *Compiler {
	c.addTo(&c.defaults, r, err)
	return c
}

func (c *Compiler) addTo(s *ruleSet, r any, err error) {
	if err != nil {
		c.errs = append(c.errs, err)
		return
	}
	if r == nil || (reflect.ValueOf(r).Kind() == reflect.Pointer && reflect.ValueOf(r).IsNil()) {
		c.errs = append(c.errs, types.ArgumentError("rule"))
		return
	}
	if err := s.add(r); err != nil {
		c.errs = append(c.errs, err)
	}
}

// AddTypeMapping maps source to target.
func (c *Compiler) AddTypeMapping(source, target reflect.Type) *Compiler {
	return c.AddRule(rules.NewTypeMappingRule(source, target))
}

// AddIgnoreRule ignores the property name of t.
func (c *Compiler) AddIgnoreRule(t reflect.Type, name string) *Compiler {
	return c.AddRule(rules.NewIgnoreRule(t, name))
}

// AddExecuteOrderRule sets the population priority of the member name of t.
func (c *Compiler) AddExecuteOrderRule(t reflect.Type, name string, priority int) *Compiler {
	return c.AddRule(rules.NewExecuteOrderRule(t, name, priority))
}

// AddValueGenerator adds a value generator.
func (c *Compiler) AddValueGenerator(g generate.ValueGenerator) *Compiler {
	return c.AddRule(g, nil)
}

// AddTypeCreator adds a type creator.
func (c *Compiler) AddTypeCreator(tc creators.TypeCreator) *Compiler {
	return c.AddRule(tc, nil)
}

// AddPostBuildAction adds a post-build action.
func (c *Compiler) AddPostBuildAction(a rules.PostBuildAction) *Compiler {
	return c.AddRule(a, nil)
}

// RegisterConstructor registers fn as a constructor of the type it returns.
func (c *Compiler) RegisterConstructor(fn any, opts ...typeinfo.ConstructorOption) *Compiler {
	if _, err := c.catalog.RegisterConstructor(fn, opts...); err != nil {
		c.errs = append(c.errs, err)
	}
	return c
}

// SetConstructorResolver replaces the constructor resolver.
func (c *Compiler) SetConstructorResolver(r resolve.ConstructorResolver) *Compiler {
	c.ctorResolver = r
	return c
}

// SetPropertyResolver replaces the property resolver.
func (c *Compiler) SetPropertyResolver(r resolve.PropertyResolver) *Compiler {
	c.propResolver = r
	return c
}

// SetReuseAncestors toggles Settings.ReuseAncestors.
func (c *Compiler) SetReuseAncestors(on bool) *Compiler {
	c.settings.ReuseAncestors = on
	return c
}

// WithRandom sets the source modules hand to the generators they add. It
// must be called before those modules are added.
func (c *Compiler) WithRandom(r *generate.Random) *Compiler {
	c.random = r
	return c
}

// Random returns the source set by WithRandom, nil meaning the shared one.
func (c *Compiler) Random() *generate.Random {
	return c.random
}

// Compile validates the collected configuration and freezes it.
func (c *Compiler) Compile() (*Configuration, error) {
	errs := append([]error(nil), c.errs...)
	if c.ctorResolver == nil {
		errs = append(errs, types.ConfigurationError("constructor resolver is required"))
	}
	if c.propResolver == nil {
		errs = append(errs, types.ConfigurationError("property resolver is required"))
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("compile configuration: %w", errors.Join(errs...))
	}

	set := c.user.merge(c.defaults)
	rules.SortByPriority(set.creation)
	rules.SortByPriority(set.creators)
	rules.SortByPriority(set.generators)
	rules.SortByPriority(set.postBuild)

	cfg := &Configuration{
		catalog:      c.catalog,
		rules:        set,
		ctorResolver: c.ctorResolver,
		propResolver: c.propResolver,
		settings:     c.settings,
	}

	if dr, ok := c.ctorResolver.(*resolve.DefaultConstructorResolver); ok && dr.CanBuild == nil {
		cfg.ctorResolver = &resolve.DefaultConstructorResolver{CanBuild: cfg.CanBuild}
	}
	return cfg, nil
}

// Ignore ignores the property name of T.
func Ignore[T any](c *Compiler, name string) *Compiler {
	return c.AddIgnoreRule(reflect.TypeFor[T](), name)
}

// Map builds T whenever S is requested.
func Map[S, T any](c *Compiler) *Compiler {
	return c.AddTypeMapping(reflect.TypeFor[S](), reflect.TypeFor[T]())
}

// Order sets the population priority of the property name of T.
func Order[T any](c *Compiler, name string, priority int) *Compiler {
	return c.AddExecuteOrderRule(reflect.TypeFor[T](), name, priority)
}

// Fixed assigns value to the property name of T on every build.
func Fixed[T any](c *Compiler, name string, value any) *Compiler {
	return c.AddRule(rules.NewPropertyCreationRule(reflect.TypeFor[T](), name, value, 0))
}
