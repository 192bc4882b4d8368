// Package creators provides the type creators: producers of composite values
// (arrays, slices, maps) whose elements are built by recursing into the
// engine through an Executor.
package creators

import (
	"reflect"
	"sync/atomic"

	"github.com/pithecene-io/modelforge/history"
	"github.com/pithecene-io/modelforge/types"
)

// DefaultAutoPopulateCount is the initial element count of collections.
const DefaultAutoPopulateCount = 10

// Executor is the engine callback used to build child values.
type Executor interface {
	// CreateChild builds a value of t for reference using the full
	// resolution pipeline and the live build history.
	CreateChild(t reflect.Type, reference string) (any, error)
	// BuildChain returns the live build history.
	BuildChain() *history.BuildHistory
}

// TypeCreator produces composite values.
type TypeCreator interface {
	// IsSupported reports whether the creator handles t. It is false for a
	// nil type.
	IsSupported(t reflect.Type, reference string, chain *history.BuildHistory) bool
	// Create builds a new value of t. It fails with types.ErrArgument for a
	// nil type and types.ErrNotSupported when IsSupported is false.
	Create(exec Executor, t reflect.Type, reference string) (any, error)
	// Populate refills an existing value, replacing its contents.
	Populate(exec Executor, instance any) (any, error)
	// AutoPopulate reports whether the engine should populate properties of
	// created values. Collection creators fill their elements themselves.
	AutoPopulate() bool
	// Priority orders creators; higher is consulted first.
	Priority() int
}

// ChildItemFunc builds the element at index. previous is the element built
// just before, nil for the first one.
type ChildItemFunc func(exec Executor, t reflect.Type, reference string, previous any, index int) (any, error)

// DefaultChildItem builds every element independently through the engine.
func DefaultChildItem(exec Executor, t reflect.Type, reference string, _ any, _ int) (any, error) {
	return exec.CreateChild(t, reference)
}

// CountSetting is a process-wide element count. Changes affect every
// subsequent build in the process until changed again.
type CountSetting struct {
	v atomic.Int64
}

func newCountSetting(n int) *CountSetting {
	s := &CountSetting{}
	s.v.Store(int64(n))
	return s
}

// AutoPopulateCount is the number of elements collection creators build when
// they have no Count of their own.
var AutoPopulateCount = newCountSetting(DefaultAutoPopulateCount)

// Get returns the current count.
func (s *CountSetting) Get() int {
	return int(s.v.Load())
}

// Set replaces the count. Negative counts are rejected.
func (s *CountSetting) Set(n int) error {
	if n < 0 {
		return types.ConfigurationError("auto-populate count must not be negative, got %d", n)
	}
	s.v.Store(int64(n))
	return nil
}

// Override sets the count and returns a func restoring the previous value.
//
//	defer creators.AutoPopulateCount.Override(3)()
func (s *CountSetting) Override(n int) (restore func()) {
	prev := s.v.Swap(int64(max(n, 0)))
	return func() {
		s.v.Store(prev)
	}
}

// Defaults returns the built-in collection creators.
func Defaults() []TypeCreator {
	return []TypeCreator{
		&ArrayCreator{},
		&EnumerableCreator{},
		&MapCreator{},
	}
}

func check(name string, supported bool, t reflect.Type, reference string) error {
	if t == nil {
		return types.ArgumentError("type")
	}
	if !supported {
		return types.NotSupportedError(name+" creator", t, reference)
	}
	return nil
}

func count(own int) int {
	if own > 0 {
		return own
	}
	return AutoPopulateCount.Get()
}

func childFunc(f ChildItemFunc) ChildItemFunc {
	if f == nil {
		return DefaultChildItem
	}
	return f
}
