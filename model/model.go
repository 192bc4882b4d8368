// Package model is the convenience entry point for building test fixtures
// with the default configuration:
//
//	p, err := model.Create[*Person]()
//	o, err := model.Ignoring[Order]("Notes").Create(reflect.TypeFor[Order]())
//
// The default configuration is compiled once, on first use. Every call gets
// a fresh engine.Strategy, so the helpers are safe for concurrent use.
package model

import (
	"reflect"
	"sync"

	"github.com/pithecene-io/modelforge/build"
	"github.com/pithecene-io/modelforge/engine"
)

var (
	defaultOnce sync.Once
	defaultCfg  *build.Configuration
	defaultErr  error
)

// Default returns the shared default configuration.
func Default() (*build.Configuration, error) {
	defaultOnce.Do(func() {
		defaultCfg, defaultErr = build.DefaultCompiler().Compile()
	})
	return defaultCfg, defaultErr
}

func newStrategy() (*engine.Strategy, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}
	return engine.New(cfg)
}

// Create builds a T with the default configuration.
func Create[T any](args ...any) (T, error) {
	s, err := newStrategy()
	if err != nil {
		var zero T
		return zero, err
	}
	return engine.Create[T](s, args...)
}

// Populate populates instance with the default configuration.
func Populate[T any](instance T) (T, error) {
	s, err := newStrategy()
	if err != nil {
		var zero T
		return zero, err
	}
	return engine.Populate(s, instance)
}

// Builder accumulates configuration on top of the defaults. The
// configuration is compiled on the first build and reused afterwards.
type Builder struct {
	mu       sync.Mutex
	compiler *build.Compiler
	cfg      *build.Configuration
	err      error
}

// New starts a Builder from the default module.
func New() *Builder {
	return &Builder{compiler: build.DefaultCompiler()}
}

// Ignoring starts a Builder that never populates the property name of T.
func Ignoring[T any](name string) *Builder {
	return New().Ignore(reflect.TypeFor[T](), name)
}

// Ignore adds an ignore rule for the property name of t.
func (b *Builder) Ignore(t reflect.Type, name string) *Builder {
	return b.Configure(func(c *build.Compiler) {
		c.AddIgnoreRule(t, name)
	})
}

// Configure applies fn to the underlying compiler. It has no effect once
// the Builder has built a value.
func (b *Builder) Configure(fn func(c *build.Compiler)) *Builder {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cfg == nil && b.err == nil {
		fn(b.compiler)
	}
	return b
}

// Strategy returns a fresh strategy over the builder's configuration.
func (b *Builder) Strategy() (*engine.Strategy, error) {
	b.mu.Lock()
	if b.cfg == nil && b.err == nil {
		b.cfg, b.err = b.compiler.Compile()
	}
	cfg, err := b.cfg, b.err
	b.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return engine.New(cfg)
}

// Create builds a value of t.
func (b *Builder) Create(t reflect.Type, args ...any) (any, error) {
	s, err := b.Strategy()
	if err != nil {
		return nil, err
	}
	return s.Create(t, args...)
}

// Populate populates instance.
func (b *Builder) Populate(instance any) (any, error) {
	s, err := b.Strategy()
	if err != nil {
		return nil, err
	}
	return s.Populate(instance)
}

// CreateWith builds a T with b.
func CreateWith[T any](b *Builder, args ...any) (T, error) {
	s, err := b.Strategy()
	if err != nil {
		var zero T
		return zero, err
	}
	return engine.Create[T](s, args...)
}
