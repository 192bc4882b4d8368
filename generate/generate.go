// Package generate provides the value generators: producers of leaf values
// such as booleans, numbers, strings, identifiers, times and the semantic
// strings (names, places, companies) that make fixtures read like real data.
//
// Generators are searched in descending priority order and the first one
// supporting a (type, reference name) pair wins. The generic String
// generator has the lowest priority so any semantic generator that matches
// the same pair takes precedence.
//
// A pointer to a supported type is its nullable form: generators return nil
// for it roughly one time in NullOneIn.
package generate

import (
	"reflect"

	"github.com/pithecene-io/modelforge/history"
	"github.com/pithecene-io/modelforge/types"
)

// Generator priorities.
const (
	StringPriority    = -100
	PrimitivePriority = 0
	SemanticPriority  = 1000
)

// NullOneIn is the inverse probability of nil for nullable values.
const NullOneIn = 10

// Capability keys set on build history items.
const (
	CapabilityGender  = "gender"
	CapabilityCountry = "country"
	CapabilityState   = "state"
)

// ValueGenerator produces leaf values. chain may be nil when a value is
// requested outside of a build.
type ValueGenerator interface {
	// IsSupported reports whether the generator can produce a value of t for
	// the named reference. It is false for a nil type.
	IsSupported(t reflect.Type, reference string, chain *history.BuildHistory) bool
	// Generate produces the value. It fails with types.ErrArgument for a nil
	// type and types.ErrNotSupported when IsSupported is false.
	Generate(t reflect.Type, reference string, chain *history.BuildHistory) (any, error)
	// Priority orders generators; higher is consulted first.
	Priority() int
}

// nullable splits t into the base type and whether t is its nullable form.
func nullable(t reflect.Type) (reflect.Type, bool) {
	if t.Kind() == reflect.Pointer {
		return t.Elem(), true
	}
	return t, false
}

// baseMatches reports whether t or its nullable form satisfies ok.
func baseMatches(t reflect.Type, ok func(reflect.Type) bool) bool {
	if t == nil {
		return false
	}
	base, _ := nullable(t)
	return ok(base)
}

// check validates a Generate call against IsSupported.
func check(name string, supported bool, t reflect.Type, reference string) error {
	if t == nil {
		return types.ArgumentError("type")
	}
	if !supported {
		return types.NotSupportedError(name+" generator", t, reference)
	}
	return nil
}

// finish converts v to the base type of t and wraps it for nullable types.
func finish(r *Random, t reflect.Type, v any) any {
	base, isNullable := nullable(t)
	if isNullable && r.OneIn(NullOneIn) {
		return reflect.Zero(t).Interface()
	}

	rv := reflect.ValueOf(v)
	if rv.Type() != base {
		rv = rv.Convert(base)
	}
	if !isNullable {
		return rv.Interface()
	}
	p := reflect.New(base)
	p.Elem().Set(rv)
	return p.Interface()
}

var (
	_ ValueGenerator = (*BooleanGenerator)(nil)
	_ ValueGenerator = (*NumericGenerator)(nil)
	_ ValueGenerator = (*StringGenerator)(nil)
	_ ValueGenerator = (*UUIDGenerator)(nil)
	_ ValueGenerator = (*TimeGenerator)(nil)
	_ ValueGenerator = (*SemanticGenerator)(nil)
)
