// Package resolve selects constructors and enumerates populatable
// properties.
package resolve

import (
	"fmt"
	"reflect"

	"github.com/pithecene-io/modelforge/typeinfo"
	"github.com/pithecene-io/modelforge/types"
)

// ConstructorResolver picks the constructor used to instantiate a type.
type ConstructorResolver interface {
	// Resolve returns the constructor of d to call with args. It fails with
	// types.ErrMissingMember when args fit no constructor and with
	// types.ErrBuildFailed when d has no usable constructor.
	Resolve(d *typeinfo.Descriptor, args []any) (*typeinfo.Constructor, error)
}

// DefaultConstructorResolver matches explicit arguments by arity and
// assignability. Without arguments it prefers the constructor with the most
// parameters the engine can satisfy, breaking ties by declaration order.
type DefaultConstructorResolver struct {
	// CanBuild reports whether the engine can produce a parameter type.
	// Every type is considered buildable when nil.
	CanBuild func(t reflect.Type) bool
}

func (r *DefaultConstructorResolver) Resolve(d *typeinfo.Descriptor, args []any) (*typeinfo.Constructor, error) {
	if d == nil {
		return nil, types.ArgumentError("descriptor")
	}
	if len(d.Constructors) == 0 {
		if d.Abstract {
			return nil, types.NewBuildError(types.ErrBuildFailed, d.Type, "",
				fmt.Errorf("abstract type has no mapping or registered constructor"))
		}
		return nil, types.NewBuildError(types.ErrBuildFailed, d.Type, "",
			fmt.Errorf("no accessible constructor"))
	}
	if len(args) > 0 {
		return r.matchArgs(d, args)
	}

	var best *typeinfo.Constructor
	for _, c := range d.Constructors {
		if !r.satisfiable(d.Type, c) {
			continue
		}
		if best == nil || c.Arity() > best.Arity() {
			best = c
		}
	}
	if best == nil {
		return nil, types.NewBuildError(types.ErrBuildFailed, d.Type, "",
			fmt.Errorf("no constructor has buildable parameters"))
	}
	return best, nil
}

// matchArgs prefers an exact arity match over one completed by defaults.
func (r *DefaultConstructorResolver) matchArgs(d *typeinfo.Descriptor, args []any) (*typeinfo.Constructor, error) {
	var defaulted *typeinfo.Constructor
	for _, c := range d.Constructors {
		if len(args) < c.Required() || len(args) > c.Arity() || !assignable(c, args) {
			continue
		}
		if len(args) == c.Arity() {
			return c, nil
		}
		if defaulted == nil {
			defaulted = c
		}
	}
	if defaulted != nil {
		return defaulted, nil
	}
	return nil, types.NewBuildError(types.ErrMissingMember, d.Type, "",
		fmt.Errorf("no constructor accepts %d arguments of types %s", len(args), argTypes(args)))
}

// satisfiable rejects constructors needing their own type, which could
// never be built, and constructors with parameters the engine cannot build.
func (r *DefaultConstructorResolver) satisfiable(self reflect.Type, c *typeinfo.Constructor) bool {
	for _, p := range c.Params {
		if p.Type == self || typeinfo.Indirect(p.Type) == typeinfo.Indirect(self) {
			return false
		}
		if p.HasDefault {
			continue
		}
		if r.CanBuild != nil && !r.CanBuild(p.Type) {
			return false
		}
	}
	return true
}

func assignable(c *typeinfo.Constructor, args []any) bool {
	for i, a := range args {
		if _, err := typeinfo.ValueFor(a, c.Params[i].Type); err != nil {
			return false
		}
	}
	return true
}

// Bind converts args to call values for c, completing trailing parameters
// from their defaults.
func Bind(c *typeinfo.Constructor, args []any) ([]reflect.Value, error) {
	if c == nil {
		return nil, types.ArgumentError("constructor")
	}
	if len(args) < c.Required() || len(args) > c.Arity() {
		return nil, types.NewBuildError(types.ErrMissingMember, c.Type, "",
			fmt.Errorf("constructor %s takes %d to %d arguments, got %d", c, c.Required(), c.Arity(), len(args)))
	}
	out := make([]reflect.Value, c.Arity())
	for i, p := range c.Params {
		v := p.Default
		if i < len(args) {
			v = args[i]
		}
		rv, err := typeinfo.ValueFor(v, p.Type)
		if err != nil {
			return nil, types.NewBuildError(types.ErrMissingMember, c.Type, p.Name, err)
		}
		out[i] = rv
	}
	return out, nil
}

func argTypes(args []any) string {
	out := "("
	for i, a := range args {
		if i > 0 {
			out += ", "
		}
		if a == nil {
			out += "nil"
			continue
		}
		out += reflect.TypeOf(a).String()
	}
	return out + ")"
}

var _ ConstructorResolver = (*DefaultConstructorResolver)(nil)
