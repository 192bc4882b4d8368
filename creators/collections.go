package creators

import (
	"fmt"
	"reflect"

	"github.com/pithecene-io/modelforge/generate"
	"github.com/pithecene-io/modelforge/history"
	"github.com/pithecene-io/modelforge/typeinfo"
	"github.com/pithecene-io/modelforge/types"
)

// ArrayCreator builds Go arrays, filling every index. The length comes from
// the array type. Arrays with their own text form, such as uuid.UUID, are
// left to the value generators.
type ArrayCreator struct {
	// ChildItem builds each element; DefaultChildItem when nil.
	ChildItem ChildItemFunc
	// Order is the creator priority.
	Order int
}

func (c *ArrayCreator) IsSupported(t reflect.Type, _ string, _ *history.BuildHistory) bool {
	return t != nil && t.Kind() == reflect.Array && !generate.IsTextValue(t)
}

func (c *ArrayCreator) Create(exec Executor, t reflect.Type, reference string) (any, error) {
	if err := check("array", c.IsSupported(t, reference, nil), t, reference); err != nil {
		return nil, err
	}
	v := reflect.New(t).Elem()
	if err := fillIndexed(exec, childFunc(c.ChildItem), v, reference); err != nil {
		return nil, err
	}
	return v.Interface(), nil
}

// Populate refills a pointer to an array in place. An array value is copied,
// refilled and returned.
func (c *ArrayCreator) Populate(exec Executor, instance any) (any, error) {
	if instance == nil {
		return nil, types.ArgumentError("instance")
	}
	rv := reflect.ValueOf(instance)
	if rv.Kind() == reflect.Pointer && !rv.IsNil() && rv.Elem().Kind() == reflect.Array {
		if err := fillIndexed(exec, childFunc(c.ChildItem), rv.Elem(), ""); err != nil {
			return nil, err
		}
		return instance, nil
	}
	if err := check("array", c.IsSupported(rv.Type(), "", nil), rv.Type(), ""); err != nil {
		return nil, err
	}
	v := reflect.New(rv.Type()).Elem()
	if err := fillIndexed(exec, childFunc(c.ChildItem), v, ""); err != nil {
		return nil, err
	}
	return v.Interface(), nil
}

func (c *ArrayCreator) AutoPopulate() bool { return false }
func (c *ArrayCreator) Priority() int      { return c.Order }

// EnumerableCreator builds slices of Count elements, or of
// AutoPopulateCount elements when Count is zero.
type EnumerableCreator struct {
	// Count overrides AutoPopulateCount when positive.
	Count int
	// ChildItem builds each element; DefaultChildItem when nil.
	ChildItem ChildItemFunc
	// Order is the creator priority.
	Order int
}

func (c *EnumerableCreator) IsSupported(t reflect.Type, _ string, _ *history.BuildHistory) bool {
	return t != nil && t.Kind() == reflect.Slice && !generate.IsTextValue(t)
}

func (c *EnumerableCreator) Create(exec Executor, t reflect.Type, reference string) (any, error) {
	if err := check("enumerable", c.IsSupported(t, reference, nil), t, reference); err != nil {
		return nil, err
	}
	s, err := c.build(exec, t, reference, count(c.Count))
	if err != nil {
		return nil, err
	}
	return s.Interface(), nil
}

// Populate replaces the elements of a slice, keeping its length, or builds
// a fresh one when it is empty. A pointer to a slice is updated in place.
// A non-empty slice passed by value is overwritten in its backing array, so
// the caller's slice sees the new elements; an empty one is left untouched
// and the fresh slice is returned. Elements are never appended to existing
// ones.
func (c *EnumerableCreator) Populate(exec Executor, instance any) (any, error) {
	if instance == nil {
		return nil, types.ArgumentError("instance")
	}
	rv := reflect.ValueOf(instance)
	target := rv
	if rv.Kind() == reflect.Pointer && !rv.IsNil() {
		target = rv.Elem()
	}
	if err := check("enumerable", c.IsSupported(target.Type(), "", nil), target.Type(), ""); err != nil {
		return nil, err
	}

	n := target.Len()
	if n == 0 {
		n = count(c.Count)
	}
	s, err := c.build(exec, target.Type(), "", n)
	if err != nil {
		return nil, err
	}

	if target.CanSet() {
		target.Set(s)
		return instance, nil
	}
	if target.Len() == s.Len() {
		reflect.Copy(target, s)
		return instance, nil
	}
	return s.Interface(), nil
}

func (c *EnumerableCreator) build(exec Executor, t reflect.Type, reference string, n int) (reflect.Value, error) {
	child := childFunc(c.ChildItem)
	s := reflect.MakeSlice(t, 0, n)

	var previous any
	for i := range n {
		item, err := child(exec, t.Elem(), reference, previous, i)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("element %d: %w", i, err)
		}
		ev, err := typeinfo.ValueFor(item, t.Elem())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("element %d: %w", i, err)
		}
		s = reflect.Append(s, ev)
		previous = item
	}
	return s, nil
}

func (c *EnumerableCreator) AutoPopulate() bool { return false }
func (c *EnumerableCreator) Priority() int      { return c.Order }

// MapCreator builds maps of Count entries, or of AutoPopulateCount entries
// when Count is zero. Key types with few distinct values (bool, small enums)
// may yield fewer entries.
type MapCreator struct {
	// Count overrides AutoPopulateCount when positive.
	Count int
	// ChildItem builds each key and value; DefaultChildItem when nil.
	ChildItem ChildItemFunc
	// Order is the creator priority.
	Order int
}

func (c *MapCreator) IsSupported(t reflect.Type, _ string, _ *history.BuildHistory) bool {
	return t != nil && t.Kind() == reflect.Map && !generate.IsTextValue(t)
}

func (c *MapCreator) Create(exec Executor, t reflect.Type, reference string) (any, error) {
	if err := check("map", c.IsSupported(t, reference, nil), t, reference); err != nil {
		return nil, err
	}
	m := reflect.MakeMap(t)
	if err := c.fill(exec, m, reference); err != nil {
		return nil, err
	}
	return m.Interface(), nil
}

// Populate clears the map and refills it. A nil map is replaced by a new
// one, stored through the pointer when a pointer to a map is given.
func (c *MapCreator) Populate(exec Executor, instance any) (any, error) {
	if instance == nil {
		return nil, types.ArgumentError("instance")
	}
	rv := reflect.ValueOf(instance)
	target := rv
	if rv.Kind() == reflect.Pointer && !rv.IsNil() {
		target = rv.Elem()
	}
	if err := check("map", c.IsSupported(target.Type(), "", nil), target.Type(), ""); err != nil {
		return nil, err
	}
	if target.IsNil() {
		m, err := c.Create(exec, target.Type(), "")
		if err != nil {
			return nil, err
		}
		if target.CanSet() {
			target.Set(reflect.ValueOf(m))
			return instance, nil
		}
		return m, nil
	}
	target.Clear()
	if err := c.fill(exec, target, ""); err != nil {
		return nil, err
	}
	return instance, nil
}

func (c *MapCreator) fill(exec Executor, m reflect.Value, reference string) error {
	child := childFunc(c.ChildItem)
	t := m.Type()
	n := count(c.Count)

	var prevKey, prevValue any
	for i := 0; m.Len() < n && i < 3*n; i++ {
		key, err := child(exec, t.Key(), reference, prevKey, i)
		if err != nil {
			return fmt.Errorf("key %d: %w", i, err)
		}
		kv, err := typeinfo.ValueFor(key, t.Key())
		if err != nil {
			return fmt.Errorf("key %d: %w", i, err)
		}
		value, err := child(exec, t.Elem(), reference, prevValue, i)
		if err != nil {
			return fmt.Errorf("value %d: %w", i, err)
		}
		vv, err := typeinfo.ValueFor(value, t.Elem())
		if err != nil {
			return fmt.Errorf("value %d: %w", i, err)
		}
		m.SetMapIndex(kv, vv)
		prevKey, prevValue = key, value
	}
	return nil
}

func (c *MapCreator) AutoPopulate() bool { return false }
func (c *MapCreator) Priority() int      { return c.Order }

func fillIndexed(exec Executor, child ChildItemFunc, v reflect.Value, reference string) error {
	et := v.Type().Elem()
	var previous any
	for i := range v.Len() {
		item, err := child(exec, et, reference, previous, i)
		if err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
		ev, err := typeinfo.ValueFor(item, et)
		if err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
		v.Index(i).Set(ev)
		previous = item
	}
	return nil
}

var (
	_ TypeCreator = (*ArrayCreator)(nil)
	_ TypeCreator = (*EnumerableCreator)(nil)
	_ TypeCreator = (*MapCreator)(nil)
)
