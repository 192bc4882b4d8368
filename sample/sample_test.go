package sample

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pithecene-io/modelforge/build"
	"github.com/pithecene-io/modelforge/creators"
	"github.com/pithecene-io/modelforge/engine"
	"github.com/pithecene-io/modelforge/generate"
)

func newStrategy(t *testing.T) *engine.Strategy {
	t.Helper()
	cfg, err := build.NewCompiler().
		WithRandom(generate.NewRandom(42)).
		AddModule(build.DefaultModule{}).
		AddModule(Module).
		Compile()
	require.NoError(t, err)

	s, err := engine.New(cfg)
	require.NoError(t, err)
	return s
}

func TestEveryTypeBuilds(t *testing.T) {
	defer creators.AutoPopulateCount.Override(2)()
	s := newStrategy(t)

	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			v, err := s.Create(Types()[name])
			require.NoError(t, err)
			assert.NotNil(t, v)
		})
	}
}

func TestOrder_UsesConstructorAndRules(t *testing.T) {
	defer creators.AutoPopulateCount.Override(3)()
	s := newStrategy(t)

	o, err := engine.Create[*Order](s)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(o.Number, "ORD-"), o.Number)
	require.NotNil(t, o.Customer)
	assert.NotEmpty(t, o.Customer.LastName)
	assert.Contains(t, Statuses, o.Status)
	require.Len(t, o.Lines, 3)
	for _, l := range o.Lines {
		assert.True(t, strings.HasPrefix(l.SKU, "SKU-"), l.SKU)
		assert.GreaterOrEqual(t, l.Quantity, 1)
		assert.LessOrEqual(t, l.Quantity, 10)
		assert.GreaterOrEqual(t, l.UnitPrice, 1.0)
	}
	assert.Equal(t, o.LineTotal(), o.Total)
}

func TestDrawing_ShapesAreCircles(t *testing.T) {
	defer creators.AutoPopulateCount.Override(3)()
	s := newStrategy(t)

	d, err := engine.Create[Drawing](s)
	require.NoError(t, err)
	require.Len(t, d.Shapes, 3)
	for _, sh := range d.Shapes {
		c, ok := sh.(*Circle)
		require.True(t, ok, "%T", sh)
		assert.Positive(t, c.Area())
	}
}

func TestPerson_EmailDerivedFromName(t *testing.T) {
	s := newStrategy(t)

	p, err := engine.Create[Person](s)
	require.NoError(t, err)

	local, _, found := strings.Cut(p.Email, "@")
	require.True(t, found, p.Email)
	assert.Contains(t, local, strings.ToLower(p.FirstName))
	assert.GreaterOrEqual(t, p.Age, 18)
	assert.NotEmpty(t, p.Address.Country)
}

func TestNames_Sorted(t *testing.T) {
	names := Names()
	require.Len(t, names, len(Types()))
	assert.IsIncreasing(t, names)
}
