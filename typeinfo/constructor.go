package typeinfo

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/pithecene-io/modelforge/types"
)

var errorType = reflect.TypeFor[error]()

// Constructor describes one way to obtain an instance of a type.
type Constructor struct {
	// Type is the produced type.
	Type reflect.Type
	// Params are the constructor parameters in argument order.
	Params []Parameter
	// Implicit marks the zero-value constructor of a struct type.
	Implicit bool
	// Index is the declaration order among the type's constructors.
	Index int

	fn         reflect.Value
	returnsErr bool
}

// Arity returns the parameter count.
func (c *Constructor) Arity() int {
	return len(c.Params)
}

// Required returns the number of leading parameters without a default.
// Explicit argument lists must supply at least this many values.
func (c *Constructor) Required() int {
	n := len(c.Params)
	for n > 0 && c.Params[n-1].HasDefault {
		n--
	}
	return n
}

// Invoke calls the constructor. args must hold exactly Arity values; an
// invalid reflect.Value stands for the zero value of that parameter.
func (c *Constructor) Invoke(args []reflect.Value) (reflect.Value, error) {
	if len(args) != len(c.Params) {
		return reflect.Value{}, types.NewBuildError(types.ErrMissingMember, c.Type, "",
			fmt.Errorf("constructor takes %d arguments, got %d", len(c.Params), len(args)))
	}

	if c.Implicit {
		if c.Type.Kind() == reflect.Pointer {
			return reflect.New(c.Type.Elem()), nil
		}
		return reflect.New(c.Type).Elem(), nil
	}

	in := make([]reflect.Value, len(args))
	for i, a := range args {
		if !a.IsValid() {
			a = reflect.Zero(c.Params[i].Type)
		}
		in[i] = a
	}

	out := c.fn.Call(in)
	if c.returnsErr && !out[1].IsNil() {
		err, _ := out[1].Interface().(error)
		return reflect.Value{}, types.NewBuildError(types.ErrBuildFailed, c.Type, "",
			fmt.Errorf("constructor %s: %w", c, err))
	}
	return out[0], nil
}

func (c *Constructor) String() string {
	if c.Implicit {
		return fmt.Sprintf("new(%s)", Indirect(c.Type))
	}
	names := make([]string, len(c.Params))
	for i, p := range c.Params {
		names[i] = p.Name + " " + p.Type.String()
	}
	return fmt.Sprintf("func(%s) %s", strings.Join(names, ", "), c.Type)
}

// ConstructorOption configures a constructor registration.
type ConstructorOption func(*registration)

// ParamNames names the constructor parameters in order. Names let rules and
// generators match parameters the same way they match properties.
func ParamNames(names ...string) ConstructorOption {
	return func(r *registration) {
		r.names = append([]string(nil), names...)
	}
}

// ParamDefault supplies a default for the parameter at position. Defaults
// must form a trailing run of parameters.
func ParamDefault(position int, value any) ConstructorOption {
	return func(r *registration) {
		if r.defaults == nil {
			r.defaults = make(map[int]any)
		}
		r.defaults[position] = value
	}
}

type registration struct {
	fn       reflect.Value
	names    []string
	defaults map[int]any
}

// newRegistration validates fn as a constructor: a non-variadic function
// returning T or (T, error).
func newRegistration(fn any, opts ...ConstructorOption) (registration, reflect.Type, error) {
	if fn == nil {
		return registration{}, nil, types.ArgumentError("constructor")
	}
	fv := reflect.ValueOf(fn)
	ft := fv.Type()
	if ft.Kind() != reflect.Func {
		return registration{}, nil, types.ConfigurationError("constructor must be a function, got %s", ft)
	}
	if ft.IsVariadic() {
		return registration{}, nil, types.ConfigurationError("constructor %s must not be variadic", ft)
	}
	switch ft.NumOut() {
	case 1:
	case 2:
		if ft.Out(1) != errorType {
			return registration{}, nil, types.ConfigurationError("constructor %s: second result must be error", ft)
		}
	default:
		return registration{}, nil, types.ConfigurationError("constructor %s must return T or (T, error)", ft)
	}
	if ft.Out(0) == errorType {
		return registration{}, nil, types.ConfigurationError("constructor %s must produce a value", ft)
	}

	reg := registration{fn: fv}
	for _, opt := range opts {
		opt(&reg)
	}

	if len(reg.names) > ft.NumIn() {
		return registration{}, nil, types.ConfigurationError("constructor %s: %d names for %d parameters", ft, len(reg.names), ft.NumIn())
	}
	firstDefault := ft.NumIn()
	for pos, v := range reg.defaults {
		if pos < 0 || pos >= ft.NumIn() {
			return registration{}, nil, types.ConfigurationError("constructor %s: default for missing parameter %d", ft, pos)
		}
		if _, err := ValueFor(v, ft.In(pos)); err != nil {
			return registration{}, nil, types.ConfigurationError("constructor %s: default for parameter %d: %v", ft, pos, err)
		}
		firstDefault = min(firstDefault, pos)
	}
	for pos := firstDefault; pos < ft.NumIn(); pos++ {
		if _, ok := reg.defaults[pos]; !ok {
			return registration{}, nil, types.ConfigurationError("constructor %s: parameter %d follows a defaulted parameter without a default", ft, pos)
		}
	}

	return reg, ft.Out(0), nil
}

func (r registration) constructor(index int) *Constructor {
	ft := r.fn.Type()
	out := ft.Out(0)
	params := make([]Parameter, ft.NumIn())
	for i := range params {
		name := fmt.Sprintf("arg%d", i)
		named := i < len(r.names) && r.names[i] != ""
		if named {
			name = r.names[i]
		}
		def, ok := r.defaults[i]
		params[i] = Parameter{
			Position:   i,
			Name:       name,
			Named:      named,
			Type:       ft.In(i),
			Owner:      out,
			Default:    def,
			HasDefault: ok,
		}
	}
	return &Constructor{
		Type:       out,
		Params:     params,
		Index:      index,
		fn:         r.fn,
		returnsErr: ft.NumOut() == 2,
	}
}

func implicitConstructor(t reflect.Type, index int) *Constructor {
	return &Constructor{Type: t, Implicit: true, Index: index}
}
