package engine

import (
	"bytes"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pithecene-io/modelforge/build"
	"github.com/pithecene-io/modelforge/creators"
	"github.com/pithecene-io/modelforge/generate"
	"github.com/pithecene-io/modelforge/history"
	"github.com/pithecene-io/modelforge/log"
	"github.com/pithecene-io/modelforge/metrics"
	"github.com/pithecene-io/modelforge/rules"
	"github.com/pithecene-io/modelforge/typeinfo"
	"github.com/pithecene-io/modelforge/types"
)

type address struct {
	Street string
	City   string
}

type person struct {
	FirstName string
	LastName  string
	Email     string
	Age       int
	Tags      []string
	Home      *address
}

type point struct {
	X     int
	Y     int
	Label string
}

func newPoint(x, y int) point { return point{X: x, Y: y} }

func newLabeledPoint(label string, x, y int) point { return point{X: x, Y: y, Label: label} }

type ordered struct {
	Alpha string
	Beta  string
	Gamma string
}

type secretive struct {
	Name   string
	Secret string
}

type shape interface{ Area() float64 }

type circle struct{ Radius float64 }

func (c *circle) Area() float64 { return 3.14159 * c.Radius * c.Radius }

type unbuildable interface{ Nope() }

type broken struct {
	Name string
	Bad  unbuildable
}

type account struct {
	Owner   string
	Balance float64
}

type node struct {
	Name   string
	Parent *node
}

type basket struct {
	Items []string
}

// recordingGenerator produces strings for a fixed set of reference names and
// records the order it was asked in.
type recordingGenerator struct {
	refs  map[string]bool
	calls []string
}

func newRecorder(refs ...string) *recordingGenerator {
	g := &recordingGenerator{refs: make(map[string]bool)}
	for _, r := range refs {
		g.refs[r] = true
	}
	return g
}

func (g *recordingGenerator) IsSupported(t reflect.Type, reference string, _ *history.BuildHistory) bool {
	return t == reflect.TypeFor[string]() && g.refs[reference]
}

func (g *recordingGenerator) Generate(t reflect.Type, reference string, chain *history.BuildHistory) (any, error) {
	if t == nil {
		return nil, types.ArgumentError("type")
	}
	if !g.IsSupported(t, reference, chain) {
		return nil, types.NotSupportedError("recording generator", t, reference)
	}
	g.calls = append(g.calls, reference)
	return reference + "!", nil
}

func (g *recordingGenerator) Priority() int { return 5000 }

// constantGenerator returns the same string for every request.
type constantGenerator struct{ value string }

func (g constantGenerator) IsSupported(t reflect.Type, _ string, _ *history.BuildHistory) bool {
	return t == reflect.TypeFor[string]()
}

func (g constantGenerator) Generate(t reflect.Type, reference string, chain *history.BuildHistory) (any, error) {
	if t == nil {
		return nil, types.ArgumentError("type")
	}
	if !g.IsSupported(t, reference, chain) {
		return nil, types.NotSupportedError("constant generator", t, reference)
	}
	return g.value, nil
}

func (g constantGenerator) Priority() int { return 9999 }

func newStrategy(t *testing.T, configure func(c *build.Compiler), opts ...Option) *Strategy {
	t.Helper()
	c := build.NewCompiler().
		WithRandom(generate.NewRandom(7)).
		AddModule(build.DefaultModule{})
	if configure != nil {
		configure(c)
	}
	cfg, err := c.Compile()
	require.NoError(t, err)

	s, err := New(cfg, opts...)
	require.NoError(t, err)
	return s
}

func TestNew_NilConfiguration(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, types.ErrArgument)
}

func TestCreate_PrimitivesHaveExactType(t *testing.T) {
	s := newStrategy(t, nil)

	for _, typ := range []reflect.Type{
		reflect.TypeFor[bool](),
		reflect.TypeFor[int](),
		reflect.TypeFor[int8](),
		reflect.TypeFor[uint16](),
		reflect.TypeFor[float32](),
		reflect.TypeFor[float64](),
		reflect.TypeFor[string](),
		reflect.TypeFor[time.Time](),
		reflect.TypeFor[time.Duration](),
		reflect.TypeFor[uuid.UUID](),
	} {
		t.Run(typ.String(), func(t *testing.T) {
			v, err := s.Create(typ)
			require.NoError(t, err)
			assert.Equal(t, typ, reflect.TypeOf(v))
		})
	}
}

func TestCreate_BooleanObservesBothValues(t *testing.T) {
	s := newStrategy(t, nil)

	seen := map[bool]bool{}
	for range 1000 {
		v, err := Create[bool](s)
		require.NoError(t, err)
		seen[v] = true
	}
	assert.True(t, seen[true])
	assert.True(t, seen[false])
}

func TestCreate_NullableBool(t *testing.T) {
	s := newStrategy(t, nil)

	var sawNil, sawTrue, sawFalse bool
	for range 1000 {
		v, err := Create[*bool](s)
		require.NoError(t, err)
		switch {
		case v == nil:
			sawNil = true
		case *v:
			sawTrue = true
		default:
			sawFalse = true
		}
	}
	assert.True(t, sawNil, "nil")
	assert.True(t, sawTrue, "true")
	assert.True(t, sawFalse, "false")
}

func TestCreate_NilType(t *testing.T) {
	s := newStrategy(t, nil)

	_, err := s.Create(nil)
	assert.ErrorIs(t, err, types.ErrArgument)

	_, err = s.CreateChild(nil, "x")
	assert.ErrorIs(t, err, types.ErrArgument)
}

func TestCreate_PopulatesStructGraph(t *testing.T) {
	defer creators.AutoPopulateCount.Override(3)()
	s := newStrategy(t, nil)

	p, err := Create[*person](s)
	require.NoError(t, err)
	require.NotNil(t, p)

	assert.NotEmpty(t, p.FirstName)
	assert.NotEmpty(t, p.LastName)
	assert.Contains(t, p.Email, "@")
	assert.GreaterOrEqual(t, p.Age, 18)
	assert.Len(t, p.Tags, 3)
	require.NotNil(t, p.Home)
	assert.NotEmpty(t, p.Home.City)
	assert.NotEmpty(t, p.Home.Street)
	assert.Zero(t, s.BuildChain().Len())
}

func TestCreate_StructByValue(t *testing.T) {
	s := newStrategy(t, nil)

	a, err := Create[address](s)
	require.NoError(t, err)
	assert.NotEmpty(t, a.City)
}

func TestCreate_CollectionOfStructs(t *testing.T) {
	defer creators.AutoPopulateCount.Override(4)()
	s := newStrategy(t, nil)

	list, err := Create[[]address](s)
	require.NoError(t, err)
	require.Len(t, list, 4)
	for _, a := range list {
		assert.NotEmpty(t, a.City)
	}
}

func TestCreate_ExplicitArgumentsSelectConstructor(t *testing.T) {
	s := newStrategy(t, func(c *build.Compiler) {
		c.RegisterConstructor(newPoint, typeinfo.ParamNames("X", "Y"))
		c.RegisterConstructor(newLabeledPoint, typeinfo.ParamNames("Label", "X", "Y"))
	})

	p, err := Create[point](s, 3, 4)
	require.NoError(t, err)
	assert.Equal(t, 3, p.X)
	assert.Equal(t, 4, p.Y)
	assert.NotEmpty(t, p.Label, "properties not set by the constructor are populated")

	p, err = Create[point](s, "origin", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, point{Label: "origin"}, p)
}

func TestCreate_ArgumentsMatchingNoConstructor(t *testing.T) {
	s := newStrategy(t, func(c *build.Compiler) {
		c.RegisterConstructor(newPoint, typeinfo.ParamNames("X", "Y"))
	})

	_, err := Create[point](s, "only")
	assert.ErrorIs(t, err, types.ErrMissingMember)

	_, err = Create[point](s, "a", "b")
	assert.ErrorIs(t, err, types.ErrMissingMember)
	assert.Zero(t, s.BuildChain().Len())
}

func TestCreate_ExecuteOrder(t *testing.T) {
	rec := newRecorder("Alpha", "Beta", "Gamma")
	s := newStrategy(t, func(c *build.Compiler) {
		c.AddValueGenerator(rec)
		build.Order[ordered](c, "Gamma", 100)
		build.Order[ordered](c, "Alpha", 50)
	})

	o, err := Create[ordered](s)
	require.NoError(t, err)
	assert.Equal(t, []string{"Gamma", "Alpha", "Beta"}, rec.calls)
	assert.Equal(t, ordered{Alpha: "Alpha!", Beta: "Beta!", Gamma: "Gamma!"}, o)
}

func TestIgnoreRule_PropertyNeverAssigned(t *testing.T) {
	rec := newRecorder("Name", "Secret")
	s := newStrategy(t, func(c *build.Compiler) {
		c.AddValueGenerator(rec)
		build.Ignore[secretive](c, "Secret")
	})

	created, err := Create[secretive](s)
	require.NoError(t, err)
	assert.Empty(t, created.Secret)

	populated, err := Populate(s, &secretive{Secret: "keep"})
	require.NoError(t, err)
	assert.Equal(t, "keep", populated.Secret)
	assert.Equal(t, "Name!", populated.Name)

	assert.NotContains(t, rec.calls, "Secret")
}

func TestTypeMapping(t *testing.T) {
	s := newStrategy(t, func(c *build.Compiler) {
		build.Map[shape, *circle](c)
	})

	v, err := s.Create(reflect.TypeFor[shape]())
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeFor[*circle](), reflect.TypeOf(v))

	sh, err := Create[shape](s)
	require.NoError(t, err)
	_, ok := sh.(*circle)
	assert.True(t, ok)
}

func TestTypeMapping_UnmappedInterfaceFails(t *testing.T) {
	s := newStrategy(t, nil)

	_, err := Create[unbuildable](s)
	assert.ErrorIs(t, err, types.ErrBuildFailed)
}

func TestCreate_FailureUnwindsHistory(t *testing.T) {
	collector := metrics.NewCollector("sess", "")
	s := newStrategy(t, nil, WithCollector(collector))

	_, err := Create[*broken](s)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrBuildFailed)
	assert.Contains(t, err.Error(), "Bad")
	assert.Zero(t, s.BuildChain().Len())

	snap := collector.Snapshot()
	assert.Equal(t, int64(1), snap.BuildsFailed)
	assert.Zero(t, snap.BuildsSucceeded)

	// The strategy stays usable after a failure.
	_, err = Create[*address](s)
	require.NoError(t, err)
}

func TestPopulate_TwiceOverwrites(t *testing.T) {
	defer creators.AutoPopulateCount.Override(3)()
	s := newStrategy(t, func(c *build.Compiler) {
		c.AddValueGenerator(constantGenerator{value: "x"})
	})

	b := &basket{Items: []string{"old"}}
	_, err := Populate(s, b)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "x", "x"}, b.Items)

	_, err = Populate(s, b)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "x", "x"}, b.Items)
}

func TestPopulate_StructByValueReturnsCopy(t *testing.T) {
	s := newStrategy(t, func(c *build.Compiler) {
		c.AddValueGenerator(constantGenerator{value: "filled"})
	})

	in := address{}
	out, err := Populate(s, in)
	require.NoError(t, err)
	assert.Empty(t, in.City)
	assert.Equal(t, "filled", out.City)
}

func TestPopulate_InvalidInput(t *testing.T) {
	s := newStrategy(t, nil)

	_, err := s.Populate(nil)
	assert.ErrorIs(t, err, types.ErrArgument)

	_, err = s.Populate((*address)(nil))
	assert.ErrorIs(t, err, types.ErrArgument)

	_, err = s.Populate(42)
	assert.ErrorIs(t, err, types.ErrNotSupported)
}

func TestPopulate_Slice(t *testing.T) {
	defer creators.AutoPopulateCount.Override(2)()
	s := newStrategy(t, func(c *build.Compiler) {
		c.AddValueGenerator(constantGenerator{value: "y"})
	})

	items := &[]string{"a", "b", "c"}
	_, err := s.Populate(items)
	require.NoError(t, err)
	assert.Equal(t, []string{"y", "y", "y"}, *items, "existing length is kept")

	empty := &[]string{}
	_, err = s.Populate(empty)
	require.NoError(t, err)
	assert.Equal(t, []string{"y", "y"}, *empty)
}

func TestPopulate_PointerToMap(t *testing.T) {
	defer creators.AutoPopulateCount.Override(3)()
	s := newStrategy(t, func(c *build.Compiler) {
		c.AddValueGenerator(constantGenerator{value: "y"})
	})

	m := map[int]string{}
	out, err := s.Populate(&m)
	require.NoError(t, err)
	assert.Same(t, &m, out)
	assert.Len(t, m, 3)
	for _, v := range m {
		assert.Equal(t, "y", v)
	}

	var nilMap map[int]string
	_, err = s.Populate(&nilMap)
	require.NoError(t, err)
	assert.Len(t, nilMap, 3, "nil map is replaced through the pointer")
}

func TestPostBuildAction(t *testing.T) {
	var depth int
	s := newStrategy(t, func(c *build.Compiler) {
		c.AddRule(rules.NewPostBuildAction(reflect.TypeFor[account](), func(instance any, chain *history.BuildHistory) (any, error) {
			depth = chain.Len()
			a := instance.(account)
			a.Balance = 100
			return a, nil
		}, 0))
	})

	a, err := Create[*account](s)
	require.NoError(t, err)
	assert.Equal(t, 100.0, a.Balance)
	assert.Zero(t, depth, "post-build actions run after the instance leaves the history")
}

func TestPostBuildAction_ErrorAborts(t *testing.T) {
	s := newStrategy(t, func(c *build.Compiler) {
		c.AddRule(rules.NewPostBuildAction(reflect.TypeFor[*account](), func(any, *history.BuildHistory) (any, error) {
			return nil, errors.New("boom")
		}, 0))
	})

	_, err := Create[*account](s)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrBuildFailed)
	assert.Contains(t, err.Error(), "boom")
}

func TestCreationRules(t *testing.T) {
	t.Run("type", func(t *testing.T) {
		s := newStrategy(t, func(c *build.Compiler) {
			c.AddRule(rules.NewTypeCreationRule(reflect.TypeFor[address](), address{City: "Oslo"}, 0))
		})
		p, err := Create[*person](s)
		require.NoError(t, err)
		require.NotNil(t, p.Home)
		assert.Equal(t, address{City: "Oslo"}, *p.Home)
	})

	t.Run("property", func(t *testing.T) {
		s := newStrategy(t, func(c *build.Compiler) {
			build.Fixed[account](c, "Owner", "ann")
		})
		a, err := Create[account](s)
		require.NoError(t, err)
		assert.Equal(t, "ann", a.Owner)
	})

	t.Run("parameter", func(t *testing.T) {
		s := newStrategy(t, func(c *build.Compiler) {
			c.RegisterConstructor(newLabeledPoint, typeinfo.ParamNames("Label", "X", "Y"))
			c.AddRule(rules.NewParameterCreationRule(reflect.TypeFor[point](), "Y", 42, 0))
		})
		p, err := Create[point](s)
		require.NoError(t, err)
		assert.Equal(t, 42, p.Y)
	})

	t.Run("factory reads history", func(t *testing.T) {
		s := newStrategy(t, func(c *build.Compiler) {
			c.AddRule(rules.NewPropertyCreationFunc(reflect.TypeFor[address](), "Street",
				func(_ reflect.Type, _ typeinfo.Member, chain *history.BuildHistory) (any, error) {
					return chain.Current().Type.Name(), nil
				}, 0))
		})
		a, err := Create[address](s)
		require.NoError(t, err)
		assert.Equal(t, "address", a.Street)
	})
}

func TestReuseAncestors(t *testing.T) {
	collector := metrics.NewCollector("sess", "")
	s := newStrategy(t, func(c *build.Compiler) {
		c.SetReuseAncestors(true)
	}, WithCollector(collector))

	n, err := Create[*node](s)
	require.NoError(t, err)
	assert.Same(t, n, n.Parent)
	assert.Equal(t, int64(1), collector.Snapshot().AncestorsReused)
}

func TestCreate_RecordsMetricsAndLogs(t *testing.T) {
	var buf bytes.Buffer
	collector := metrics.NewCollector("sess", "")
	s := newStrategy(t, nil,
		WithCollector(collector),
		WithLogger(log.NewDebugLogger(&types.SessionMeta{SessionID: "sess"}, &buf)),
	)

	_, err := Create[*address](s)
	require.NoError(t, err)

	snap := collector.Snapshot()
	assert.Equal(t, int64(1), snap.BuildsStarted)
	assert.Equal(t, int64(1), snap.BuildsSucceeded)
	assert.Equal(t, int64(2), snap.PropertiesPopulated)
	assert.Equal(t, int64(1), snap.MaxDepth)
	assert.Positive(t, snap.ValuesGenerated)

	assert.Contains(t, buf.String(), "creating type")
	assert.Contains(t, buf.String(), "populating property")
}

func TestGenericHelpers_NilStrategy(t *testing.T) {
	_, err := Create[int](nil)
	assert.ErrorIs(t, err, types.ErrArgument)

	_, err = Populate[*address](nil, &address{})
	assert.ErrorIs(t, err, types.ErrArgument)
}
