package resolve

import (
	"reflect"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pithecene-io/modelforge/typeinfo"
	"github.com/pithecene-io/modelforge/types"
)

type pet struct {
	Name  string
	Kind  string
	Age   int
	Owner *pet
	Notes string `modelforge:"readonly"`
}

type unbuildable interface{ Nope() }

func newPet(name string) *pet { return &pet{Name: name} }
func newPetWithKind(name, kind string) *pet { return &pet{Name: name, Kind: kind} }
func newPetFull(name, kind string, age int) *pet { return &pet{Name: name, Kind: kind, Age: age} }
func newPetAdopted(owner *pet) *pet { return &pet{Owner: owner} }
func newPetService(name string, u unbuildable) *pet { return &pet{Name: name} }

var petType = reflect.TypeFor[*pet]()

func describe(t *testing.T, register ...func(*typeinfo.Catalog)) *typeinfo.Descriptor {
	t.Helper()
	c := typeinfo.NewCatalog()
	for _, r := range register {
		r(c)
	}
	d, err := c.Describe(petType)
	require.NoError(t, err)
	return d
}

func reg(fn any, opts ...typeinfo.ConstructorOption) func(*typeinfo.Catalog) {
	return func(c *typeinfo.Catalog) {
		if _, err := c.RegisterConstructor(fn, opts...); err != nil {
			panic(err)
		}
	}
}

func canBuild(t reflect.Type) bool {
	return t.Kind() != reflect.Interface
}

func TestResolve_PrefersMostSatisfiableParameters(t *testing.T) {
	d := describe(t, reg(newPet), reg(newPetService), reg(newPetFull), reg(newPetAdopted), reg(newPetWithKind))
	r := &DefaultConstructorResolver{CanBuild: canBuild}

	c, err := r.Resolve(d, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Arity(), "newPetFull has the most buildable parameters")
	assert.Equal(t, 2, c.Index)
}

func TestResolve_TiesKeepDeclarationOrder(t *testing.T) {
	d := describe(t, reg(newPetWithKind), reg(func(a, b string) *pet { return &pet{} }))
	r := &DefaultConstructorResolver{}

	c, err := r.Resolve(d, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Index)
}

func TestResolve_ImplicitWhenNothingElseFits(t *testing.T) {
	d := describe(t, reg(newPetAdopted), reg(newPetService))
	r := &DefaultConstructorResolver{CanBuild: canBuild}

	c, err := r.Resolve(d, nil)
	require.NoError(t, err)
	assert.True(t, c.Implicit)
}

func TestResolve_ExplicitArgs(t *testing.T) {
	d := describe(t, reg(newPet), reg(newPetWithKind), reg(newPetFull))
	r := &DefaultConstructorResolver{}

	c, err := r.Resolve(d, []any{"Rex", "dog"})
	require.NoError(t, err)
	assert.Equal(t, 1, c.Index)

	c, err = r.Resolve(d, []any{"Rex", "dog", 3})
	require.NoError(t, err)
	assert.Equal(t, 2, c.Index)

	_, err = r.Resolve(d, []any{"Rex", 3})
	assert.ErrorIs(t, err, types.ErrMissingMember)

	_, err = r.Resolve(d, []any{1, 2, 3, 4})
	assert.ErrorIs(t, err, types.ErrMissingMember)
}

func TestResolve_ExplicitArgsWithDefaults(t *testing.T) {
	d := describe(t, reg(newPetFull, typeinfo.ParamNames("name", "kind", "age"), typeinfo.ParamDefault(2, 1)))
	r := &DefaultConstructorResolver{}

	c, err := r.Resolve(d, []any{"Rex", "dog"})
	require.NoError(t, err)

	args, err := Bind(c, []any{"Rex", "dog"})
	require.NoError(t, err)
	require.Len(t, args, 3)
	assert.Equal(t, 1, args[2].Interface())

	_, err = Bind(c, []any{"Rex"})
	assert.ErrorIs(t, err, types.ErrMissingMember)
}

func TestResolve_Failures(t *testing.T) {
	r := &DefaultConstructorResolver{}

	_, err := r.Resolve(nil, nil)
	assert.ErrorIs(t, err, types.ErrArgument)

	c := typeinfo.NewCatalog()
	d, err := c.Describe(reflect.TypeFor[unbuildable]())
	require.NoError(t, err)
	_, err = r.Resolve(d, nil)
	assert.ErrorIs(t, err, types.ErrBuildFailed)

	d, err = c.Describe(reflect.TypeFor[int]())
	require.NoError(t, err)
	_, err = r.Resolve(d, nil)
	assert.ErrorIs(t, err, types.ErrBuildFailed)
}

func TestProperties(t *testing.T) {
	d := describe(t)

	names := func(ps []*typeinfo.Property) []string {
		var out []string
		for _, p := range ps {
			out = append(out, p.Name)
		}
		return out
	}

	r := &DefaultPropertyResolver{}
	assert.Equal(t, []string{"Name", "Kind", "Age", "Owner"}, names(r.Properties(d, nil)))
	assert.Equal(t, []string{"Name", "Kind"}, names(r.Properties(d, regexp.MustCompile("^(Name|Kind)$"))))

	withReadOnly := &DefaultPropertyResolver{IncludeReadOnly: true}
	assert.Contains(t, names(withReadOnly.Properties(d, nil)), "Notes")

	assert.Nil(t, r.Properties(nil, nil))
}

func TestShouldPopulate(t *testing.T) {
	r := &DefaultPropertyResolver{}

	named := describe(t, reg(newPetWithKind, typeinfo.ParamNames("name", "kind")))
	ctor := named.Constructors[0]
	args := []reflect.Value{reflect.ValueOf("Rex"), reflect.ValueOf("dog")}
	instance, err := ctor.Invoke(args)
	require.NoError(t, err)

	props := map[string]*typeinfo.Property{}
	for _, p := range named.Properties {
		props[p.Name] = p
	}
	assert.False(t, r.ShouldPopulate(props["Name"], instance, ctor, args))
	assert.False(t, r.ShouldPopulate(props["Kind"], instance, ctor, args))
	assert.True(t, r.ShouldPopulate(props["Age"], instance, ctor, args))

	unnamed := describe(t, reg(newPet))
	ctor = unnamed.Constructors[0]
	args = []reflect.Value{reflect.ValueOf("Rex")}
	instance, err = ctor.Invoke(args)
	require.NoError(t, err)
	assert.False(t, r.ShouldPopulate(props["Name"], instance, ctor, args), "value equals the argument")
	assert.True(t, r.ShouldPopulate(props["Kind"], instance, ctor, args))

	implicit := unnamed.Constructors[1]
	assert.True(t, r.ShouldPopulate(props["Name"], instance, implicit, nil))
}
