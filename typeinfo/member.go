// Package typeinfo describes the types the build engine constructs.
//
// A Descriptor is derived once per reflect.Type and cached by a Catalog. It
// lists the constructors of the type (registered constructor functions plus the
// implicit zero-value constructor of struct types) and its properties
// (exported, settable struct fields in declaration order). The engine only
// ever enumerates constructors and properties through descriptors.
package typeinfo

import "reflect"

// Member is a named, typed slot the engine fills: a property or a constructor
// parameter. Rules match against members.
type Member interface {
	// MemberName is the property or parameter name.
	MemberName() string
	// MemberType is the declared type of the slot.
	MemberType() reflect.Type
	// DeclaringType is the type that owns the slot.
	DeclaringType() reflect.Type
}

// Parameter describes one constructor parameter.
type Parameter struct {
	// Position is the zero-based argument position.
	Position int
	// Name is the registered parameter name, or argN when none was given.
	Name string
	// Named reports whether Name was registered.
	Named bool
	// Type is the declared parameter type.
	Type reflect.Type
	// Owner is the type the constructor produces.
	Owner reflect.Type
	// Default is used when explicit arguments stop short of this parameter.
	Default any
	// HasDefault reports whether Default is set.
	HasDefault bool
}

func (p *Parameter) MemberName() string          { return p.Name }
func (p *Parameter) MemberType() reflect.Type    { return p.Type }
func (p *Parameter) DeclaringType() reflect.Type { return p.Owner }

// Property describes one populatable struct field.
type Property struct {
	// Name is the Go field name.
	Name string
	// Type is the field type.
	Type reflect.Type
	// Owner is the struct type the field was enumerated from. Promoted fields
	// of embedded structs report the embedding struct.
	Owner reflect.Type
	// Index is the field index path, as used by reflect.Value.FieldByIndex.
	Index []int
	// ReadOnly is set by the `modelforge:"readonly"` tag.
	ReadOnly bool
	// Tag is the raw struct tag.
	Tag reflect.StructTag
}

func (p *Property) MemberName() string          { return p.Name }
func (p *Property) MemberType() reflect.Type    { return p.Type }
func (p *Property) DeclaringType() reflect.Type { return p.Owner }

// CanRead reports whether the property value can be read. Exported fields
// always can.
func (p *Property) CanRead() bool { return true }

// CanWrite reports whether the property accepts assignment.
func (p *Property) CanWrite() bool { return !p.ReadOnly }

var (
	_ Member = (*Parameter)(nil)
	_ Member = (*Property)(nil)
)
