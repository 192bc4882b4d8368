package rules

import (
	"fmt"
	"reflect"

	"github.com/pithecene-io/modelforge/history"
	"github.com/pithecene-io/modelforge/typeinfo"
	"github.com/pithecene-io/modelforge/types"
)

// CreationFunc produces the value for a matched creation rule. member is nil
// when the value is requested for a type rather than a property or parameter.
type CreationFunc func(t reflect.Type, member typeinfo.Member, chain *history.BuildHistory) (any, error)

// CreationRule replaces normal construction for the values it matches.
type CreationRule struct {
	desc     string
	priority int
	match    func(t reflect.Type, member typeinfo.Member) bool
	create   CreationFunc
}

// NewTypeCreationRule supplies value whenever t is built. Reference values
// (pointers, slices, maps) are shared by every build that matches.
func NewTypeCreationRule(t reflect.Type, value any, priority int) (*CreationRule, error) {
	if t == nil {
		return nil, types.ConfigurationError("creation rule: type is required")
	}
	if _, err := typeinfo.ValueFor(value, t); err != nil {
		return nil, types.ConfigurationError("creation rule for %s: %v", t, err)
	}
	return NewTypeCreationFunc(t, fixed(value), priority)
}

// NewTypeCreationFunc calls fn whenever t is built.
func NewTypeCreationFunc(t reflect.Type, fn CreationFunc, priority int) (*CreationRule, error) {
	if t == nil {
		return nil, types.ConfigurationError("creation rule: type is required")
	}
	if fn == nil {
		return nil, types.ConfigurationError("creation rule for %s: factory is required", t)
	}
	return &CreationRule{
		desc:     "type " + t.String(),
		priority: priority,
		match: func(bt reflect.Type, _ typeinfo.Member) bool {
			return bt == t
		},
		create: fn,
	}, nil
}

// NewPropertyCreationRule supplies value for the property name of declaring.
// The property must exist and accept value.
func NewPropertyCreationRule(declaring reflect.Type, name string, value any, priority int) (*CreationRule, error) {
	ft, err := fieldType(declaring, name)
	if err != nil {
		return nil, err
	}
	if _, err := typeinfo.ValueFor(value, ft); err != nil {
		return nil, types.ConfigurationError("creation rule for %s.%s: %v", typeinfo.Indirect(declaring), name, err)
	}
	return NewPropertyCreationFunc(declaring, name, fixed(value), priority)
}

// NewPropertyCreationFunc calls fn for the property name of declaring.
func NewPropertyCreationFunc(declaring reflect.Type, name string, fn CreationFunc, priority int) (*CreationRule, error) {
	if _, err := fieldType(declaring, name); err != nil {
		return nil, err
	}
	if fn == nil {
		return nil, types.ConfigurationError("creation rule for %s.%s: factory is required", typeinfo.Indirect(declaring), name)
	}
	return &CreationRule{
		desc:     fmt.Sprintf("property %s.%s", typeinfo.Indirect(declaring), name),
		priority: priority,
		match: func(_ reflect.Type, m typeinfo.Member) bool {
			p, ok := m.(*typeinfo.Property)
			return ok && p.Name == name && ownerMatches(declaring, p.Owner)
		},
		create: fn,
	}, nil
}

// NewParameterCreationRule supplies value for the constructor parameter name
// of constructors producing owner.
func NewParameterCreationRule(owner reflect.Type, name string, value any, priority int) (*CreationRule, error) {
	if owner == nil {
		return nil, types.ConfigurationError("creation rule: owner type is required")
	}
	return NewParameterCreationFunc(owner, name, fixed(value), priority)
}

// NewParameterCreationFunc calls fn for the constructor parameter name of
// constructors producing owner.
func NewParameterCreationFunc(owner reflect.Type, name string, fn CreationFunc, priority int) (*CreationRule, error) {
	switch {
	case owner == nil:
		return nil, types.ConfigurationError("creation rule: owner type is required")
	case name == "":
		return nil, types.ConfigurationError("creation rule for %s: parameter name is required", owner)
	case fn == nil:
		return nil, types.ConfigurationError("creation rule for %s(%s): factory is required", owner, name)
	}
	return &CreationRule{
		desc:     fmt.Sprintf("parameter %s(%s)", owner, name),
		priority: priority,
		match: func(_ reflect.Type, m typeinfo.Member) bool {
			p, ok := m.(*typeinfo.Parameter)
			return ok && p.Name == name && p.Owner == owner
		},
		create: fn,
	}, nil
}

// NewCreationFunc matches with an arbitrary predicate.
func NewCreationFunc(description string, match func(t reflect.Type, member typeinfo.Member) bool, fn CreationFunc, priority int) (*CreationRule, error) {
	if match == nil || fn == nil {
		return nil, types.ConfigurationError("creation rule %q: predicate and factory are required", description)
	}
	return &CreationRule{desc: description, priority: priority, match: match, create: fn}, nil
}

// IsMatch reports whether the rule owns the construction of t for member.
func (r *CreationRule) IsMatch(t reflect.Type, member typeinfo.Member) bool {
	if t == nil {
		return false
	}
	return r.match(t, member)
}

// Create produces the value.
func (r *CreationRule) Create(t reflect.Type, member typeinfo.Member, chain *history.BuildHistory) (any, error) {
	if t == nil {
		return nil, types.ArgumentError("type")
	}
	return r.create(t, member, chain)
}

// Priority returns the search priority.
func (r *CreationRule) Priority() int {
	return r.priority
}

func (r *CreationRule) String() string {
	return r.desc
}

func fixed(value any) CreationFunc {
	return func(reflect.Type, typeinfo.Member, *history.BuildHistory) (any, error) {
		return value, nil
	}
}

func fieldType(declaring reflect.Type, name string) (reflect.Type, error) {
	if declaring == nil {
		return nil, types.ConfigurationError("creation rule: declaring type is required")
	}
	if name == "" {
		return nil, types.ConfigurationError("creation rule for %s: property name is required", declaring)
	}
	st := typeinfo.StructType(declaring)
	if st == nil {
		return nil, types.ConfigurationError("creation rule for %s: not a struct type", declaring)
	}
	f, ok := st.FieldByName(name)
	if !ok || !f.IsExported() {
		return nil, types.ConfigurationError("creation rule for %s: no property %s", st, name)
	}
	return f.Type, nil
}
