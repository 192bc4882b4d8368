package typeinfo

import (
	"fmt"
	"reflect"

	"github.com/pithecene-io/modelforge/types"
)

// StructType returns the struct type behind t: t itself for a struct, the
// element for a pointer to struct, nil otherwise.
func StructType(t reflect.Type) reflect.Type {
	if t == nil {
		return nil
	}
	switch {
	case t.Kind() == reflect.Struct:
		return t
	case t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct:
		return t.Elem()
	default:
		return nil
	}
}

// Indirect returns the element type of a pointer type, or t unchanged.
func Indirect(t reflect.Type) reflect.Type {
	if t != nil && t.Kind() == reflect.Pointer {
		return t.Elem()
	}
	return t
}

// CanBeNil reports whether a value of type t may be nil.
func CanBeNil(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface, reflect.Chan, reflect.Func, reflect.Map, reflect.Pointer, reflect.Slice:
		return true
	default:
		return false
	}
}

// ValueFor converts v into a reflect.Value assignable to t.
// A nil v yields the zero value of t when t is nillable.
func ValueFor(v any, t reflect.Type) (reflect.Value, error) {
	if t == nil {
		return reflect.Value{}, types.ArgumentError("type")
	}
	if v == nil {
		if CanBeNil(t) {
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, types.NewBuildError(types.ErrBuildFailed, t, "",
			fmt.Errorf("nil is not assignable to %s", t))
	}
	rv, ok := v.(reflect.Value)
	if !ok {
		rv = reflect.ValueOf(v)
	}
	if !rv.IsValid() {
		return ValueFor(nil, t)
	}
	if !rv.Type().AssignableTo(t) {
		return reflect.Value{}, types.NewBuildError(types.ErrBuildFailed, t, "",
			fmt.Errorf("value of type %s is not assignable to %s", rv.Type(), t))
	}
	return rv, nil
}

// Get returns the property value of target, which is a struct or a pointer
// to struct.
func (p *Property) Get(target reflect.Value) reflect.Value {
	return reflect.Indirect(target).FieldByIndex(p.Index)
}

// Set assigns value to the property of target, which must be a pointer to
// struct or an addressable struct.
func (p *Property) Set(target reflect.Value, value any) error {
	s := reflect.Indirect(target)
	if s.Kind() != reflect.Struct {
		return types.NewBuildError(types.ErrArgument, target.Type(), p.Name,
			fmt.Errorf("target is %s, want struct", s.Kind()))
	}
	field := s.FieldByIndex(p.Index)
	if !field.CanSet() {
		return types.NewBuildError(types.ErrBuildFailed, s.Type(), p.Name,
			fmt.Errorf("field is not settable"))
	}
	rv, err := ValueFor(value, p.Type)
	if err != nil {
		return fmt.Errorf("set %s.%s: %w", s.Type(), p.Name, err)
	}
	field.Set(rv)
	return nil
}
