// Package history records the instances currently under construction.
//
// A BuildHistory is a stack: the engine pushes an Item when it starts building
// a composite value and pops it when the value is finished, on every exit
// path. Generators, creators and post-build actions read the stack to learn
// where in the object graph they are and to share context through
// capabilities.
package history

import (
	"fmt"
	"reflect"

	"github.com/pithecene-io/modelforge/types"
)

// Item is one in-progress construction.
type Item struct {
	// Value is the instance being built. Struct values are recorded by
	// pointer so their fields can be read while they are populated.
	Value any
	// Type is the build type of Value.
	Type reflect.Type
	// Reference is the property or parameter name the value is built for,
	// empty at the root.
	Reference string

	capabilities map[string]any
}

// SetCapability attaches a context tag to the item.
func (i *Item) SetCapability(key string, value any) {
	if i.capabilities == nil {
		i.capabilities = make(map[string]any)
	}
	i.capabilities[key] = value
}

// Capability returns the tag stored under key.
func (i *Item) Capability(key string) (any, bool) {
	v, ok := i.capabilities[key]
	return v, ok
}

// Capabilities returns a copy of all tags on the item.
func (i *Item) Capabilities() map[string]any {
	out := make(map[string]any, len(i.capabilities))
	for k, v := range i.capabilities {
		out[k] = v
	}
	return out
}

// BuildHistory is the LIFO stack of in-progress constructions. It is owned by
// a single build session and is not safe for concurrent use.
type BuildHistory struct {
	items []*Item
}

// New creates an empty history.
func New() *BuildHistory {
	return &BuildHistory{}
}

// Push adds an item for value and returns it.
func (h *BuildHistory) Push(value any, t reflect.Type, reference string) *Item {
	item := &Item{Value: value, Type: t, Reference: reference}
	h.items = append(h.items, item)
	return item
}

// Pop removes and returns the top item, or nil when empty.
func (h *BuildHistory) Pop() *Item {
	if len(h.items) == 0 {
		return nil
	}
	top := h.items[len(h.items)-1]
	h.items[len(h.items)-1] = nil
	h.items = h.items[:len(h.items)-1]
	return top
}

// Enter pushes value and returns the release func that pops it again.
// Callers defer release immediately so the item is removed on every path.
// Release is idempotent and also drops anything pushed above the item and
// left behind.
//
// Entering a pointer that is already on the stack is rejected: the same
// instance cannot be under construction twice.
func (h *BuildHistory) Enter(value any, t reflect.Type, reference string) (func(), error) {
	if t == nil {
		return nil, types.ArgumentError("type")
	}
	if h.Contains(value) {
		return nil, types.NewBuildError(types.ErrBuildFailed, t, reference,
			fmt.Errorf("instance is already under construction"))
	}

	depth := len(h.items)
	h.Push(value, t, reference)

	released := false
	return func() {
		if released {
			return
		}
		released = true
		for len(h.items) > depth {
			h.Pop()
		}
	}, nil
}

// Len returns the current depth.
func (h *BuildHistory) Len() int {
	return len(h.items)
}

// Current returns the innermost item, or nil when empty.
func (h *BuildHistory) Current() *Item {
	if len(h.items) == 0 {
		return nil
	}
	return h.items[len(h.items)-1]
}

// Parent returns the item directly below the innermost one, or nil.
func (h *BuildHistory) Parent() *Item {
	if len(h.items) < 2 {
		return nil
	}
	return h.items[len(h.items)-2]
}

// Root returns the outermost item, or nil when empty.
func (h *BuildHistory) Root() *Item {
	if len(h.items) == 0 {
		return nil
	}
	return h.items[0]
}

// Items returns a copy of the stack, root first.
func (h *BuildHistory) Items() []*Item {
	out := make([]*Item, len(h.items))
	copy(out, h.items)
	return out
}

// Find returns the nearest item whose type is t.
func (h *BuildHistory) Find(t reflect.Type) *Item {
	for i := len(h.items) - 1; i >= 0; i-- {
		if h.items[i].Type == t {
			return h.items[i]
		}
	}
	return nil
}

// Lookup returns the capability stored under key on the nearest item that
// carries it.
func (h *BuildHistory) Lookup(key string) (any, bool) {
	for i := len(h.items) - 1; i >= 0; i-- {
		if v, ok := h.items[i].Capability(key); ok {
			return v, true
		}
	}
	return nil, false
}

// Contains reports whether value is on the stack. Only pointer-like values
// have identity; other values are never reported.
func (h *BuildHistory) Contains(value any) bool {
	ptr, ok := identity(value)
	if !ok {
		return false
	}
	for _, item := range h.items {
		if p, ok := identity(item.Value); ok && p == ptr {
			return true
		}
	}
	return false
}

func identity(value any) (uintptr, bool) {
	if value == nil {
		return 0, false
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.UnsafePointer:
		if rv.IsNil() {
			return 0, false
		}
		return rv.Pointer(), true
	default:
		return 0, false
	}
}
