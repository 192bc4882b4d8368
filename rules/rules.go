// Package rules holds the user-facing customization rules consumed by the
// build engine: ignore, execute-order, type-mapping and creation rules, and
// post-build actions.
//
// Every rule is validated when it is created. A malformed rule is a
// configuration error (types.ErrConfiguration) at that point, never at build
// time.
package rules

import (
	"cmp"
	"reflect"
	"slices"

	"github.com/pithecene-io/modelforge/typeinfo"
)

// Prioritized is implemented by everything the engine searches in priority
// order.
type Prioritized interface {
	Priority() int
}

// SortByPriority orders items by descending priority. Equal priorities keep
// their relative order.
func SortByPriority[T Prioritized](items []T) {
	slices.SortStableFunc(items, func(a, b T) int {
		return cmp.Compare(b.Priority(), a.Priority())
	})
}

// ownerMatches reports whether a member declared on owner belongs to t.
// t may name the struct, a pointer to it, or an interface the struct (or its
// pointer) implements.
func ownerMatches(t, owner reflect.Type) bool {
	if t == nil || owner == nil {
		return false
	}
	if t == owner || typeinfo.Indirect(t) == owner || typeinfo.Indirect(owner) == t {
		return true
	}
	if t.Kind() == reflect.Interface {
		return owner.Implements(t) || reflect.PointerTo(owner).Implements(t)
	}
	return false
}
