package creators

import (
	"reflect"
)

// IncrementingChildItem builds the first element through the engine and
// every following numeric element as the previous one plus one. Non-numeric
// elements are built independently.
func IncrementingChildItem(exec Executor, t reflect.Type, reference string, previous any, index int) (any, error) {
	if index == 0 || previous == nil {
		return exec.CreateChild(t, reference)
	}
	next, ok := increment(reflect.ValueOf(previous), t)
	if !ok {
		return exec.CreateChild(t, reference)
	}
	return next, nil
}

func increment(prev reflect.Value, t reflect.Type) (any, bool) {
	if prev.Type() != t {
		return nil, false
	}
	next := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		next.SetInt(prev.Int() + 1)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		next.SetUint(prev.Uint() + 1)
	case reflect.Float32, reflect.Float64:
		next.SetFloat(prev.Float() + 1)
	default:
		return nil, false
	}
	return next.Interface(), true
}

// NewIncrementingArrayCreator returns an array creator filling numeric
// arrays with consecutive values.
func NewIncrementingArrayCreator(priority int) *ArrayCreator {
	return &ArrayCreator{ChildItem: IncrementingChildItem, Order: priority}
}

// NewIncrementingEnumerableCreator returns a slice creator filling numeric
// slices with consecutive values.
func NewIncrementingEnumerableCreator(priority int) *EnumerableCreator {
	return &EnumerableCreator{ChildItem: IncrementingChildItem, Order: priority}
}
