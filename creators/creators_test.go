package creators

import (
	"errors"
	"net"
	"reflect"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pithecene-io/modelforge/history"
	"github.com/pithecene-io/modelforge/types"
)

// stubExecutor returns consecutive ints (or their string form) and records
// requested references.
type stubExecutor struct {
	next  int
	refs  []string
	fail  bool
	chain *history.BuildHistory
}

func (s *stubExecutor) CreateChild(t reflect.Type, reference string) (any, error) {
	if s.fail {
		return nil, types.NewBuildError(types.ErrBuildFailed, t, reference, nil)
	}
	s.refs = append(s.refs, reference)
	s.next += 10
	switch t.Kind() {
	case reflect.String:
		return reflect.ValueOf(string(rune('a' + s.next/10 - 1))).Convert(t).Interface(), nil
	default:
		return reflect.ValueOf(s.next).Convert(t).Interface(), nil
	}
}

func (s *stubExecutor) BuildChain() *history.BuildHistory {
	if s.chain == nil {
		s.chain = history.New()
	}
	return s.chain
}

func TestAutoPopulateCount_Override(t *testing.T) {
	assert.Equal(t, DefaultAutoPopulateCount, AutoPopulateCount.Get())

	restore := AutoPopulateCount.Override(3)
	assert.Equal(t, 3, AutoPopulateCount.Get())
	restore()
	assert.Equal(t, DefaultAutoPopulateCount, AutoPopulateCount.Get())

	assert.ErrorIs(t, AutoPopulateCount.Set(-1), types.ErrConfiguration)
}

func TestEnumerableCreator_UsesGlobalCount(t *testing.T) {
	defer AutoPopulateCount.Override(4)()

	c := &EnumerableCreator{}
	v, err := c.Create(&stubExecutor{}, reflect.TypeFor[[]int](), "Scores")
	require.NoError(t, err)
	assert.Equal(t, []int{10, 20, 30, 40}, v)
	assert.False(t, c.AutoPopulate())
}

func TestEnumerableCreator_OwnCountWins(t *testing.T) {
	exec := &stubExecutor{}
	c := &EnumerableCreator{Count: 2}

	v, err := c.Create(exec, reflect.TypeFor[[]string](), "Tags")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, v)
	assert.Equal(t, []string{"Tags", "Tags"}, exec.refs)
}

func TestEnumerableCreator_PopulateReplaces(t *testing.T) {
	c := &EnumerableCreator{Count: 5}
	s := []int{1, 2, 3}

	out, err := c.Populate(&stubExecutor{}, s)
	require.NoError(t, err)
	assert.Equal(t, []int{10, 20, 30}, s, "elements are replaced in place")
	assert.Len(t, out, 3)

	p := &[]int{}
	_, err = c.Populate(&stubExecutor{}, p)
	require.NoError(t, err)
	assert.Equal(t, []int{10, 20, 30, 40, 50}, *p)

	_, err = c.Populate(&stubExecutor{}, p)
	require.NoError(t, err)
	assert.Len(t, *p, 5, "populating twice never appends")
}

func TestArrayCreator(t *testing.T) {
	c := &ArrayCreator{}
	v, err := c.Create(&stubExecutor{}, reflect.TypeFor[[3]int](), "")
	require.NoError(t, err)
	assert.Equal(t, [3]int{10, 20, 30}, v)

	arr := &[2]int{}
	_, err = c.Populate(&stubExecutor{}, arr)
	require.NoError(t, err)
	assert.Equal(t, [2]int{10, 20}, *arr)

	assert.False(t, c.IsSupported(reflect.TypeFor[uuid.UUID](), "", nil))
	assert.False(t, c.IsSupported(reflect.TypeFor[[]int](), "", nil))
}

func TestIncrementingCreators(t *testing.T) {
	ec := NewIncrementingEnumerableCreator(5)
	ec.Count = 4
	v, err := ec.Create(&stubExecutor{}, reflect.TypeFor[[]uint16](), "")
	require.NoError(t, err)
	assert.Equal(t, []uint16{10, 11, 12, 13}, v)
	assert.Equal(t, 5, ec.Priority())

	ac := NewIncrementingArrayCreator(5)
	v, err = ac.Create(&stubExecutor{}, reflect.TypeFor[[3]float64](), "")
	require.NoError(t, err)
	assert.Equal(t, [3]float64{10, 11, 12}, v)

	// Non-numeric elements fall back to independent creation.
	v, err = ec.Create(&stubExecutor{}, reflect.TypeFor[[]string](), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, v)
}

func TestMapCreator(t *testing.T) {
	c := &MapCreator{Count: 3}
	v, err := c.Create(&stubExecutor{}, reflect.TypeFor[map[string]int](), "")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 20, "c": 40, "e": 60}, v)

	m := map[int]int{1: 1, 2: 2, 3: 3, 4: 4}
	_, err = c.Populate(&stubExecutor{}, m)
	require.NoError(t, err)
	assert.Equal(t, map[int]int{10: 20, 30: 40, 50: 60}, m)

	var nilMap map[int]int
	out, err := c.Populate(&stubExecutor{}, nilMap)
	require.NoError(t, err)
	assert.Len(t, out, 3)
}

func TestMapCreator_PopulatePointer(t *testing.T) {
	c := &MapCreator{Count: 2}

	m := map[int]int{7: 7}
	out, err := c.Populate(&stubExecutor{}, &m)
	require.NoError(t, err)
	assert.Same(t, &m, out)
	assert.Equal(t, map[int]int{10: 20, 30: 40}, m)

	var nilMap map[int]int
	out, err = c.Populate(&stubExecutor{}, &nilMap)
	require.NoError(t, err)
	assert.Same(t, &nilMap, out)
	assert.Equal(t, map[int]int{10: 20, 30: 40}, nilMap)

	_, err = c.Populate(&stubExecutor{}, &[]int{})
	assert.ErrorIs(t, err, types.ErrNotSupported)
}

func TestEnumerableCreator_PopulateByValueSharesBackingArray(t *testing.T) {
	c := &EnumerableCreator{Count: 2}
	s := []int{1, 2}
	alias := s[:1]

	_, err := c.Populate(&stubExecutor{}, s)
	require.NoError(t, err)
	assert.Equal(t, []int{10}, alias)

	var empty []int
	out, err := c.Populate(&stubExecutor{}, empty)
	require.NoError(t, err)
	assert.Nil(t, empty)
	assert.Equal(t, []int{10, 20}, out)
}

func TestMapCreator_FewDistinctKeys(t *testing.T) {
	c := &MapCreator{
		Count: 5,
		ChildItem: func(exec Executor, t reflect.Type, ref string, prev any, i int) (any, error) {
			if t.Kind() == reflect.Bool {
				return i%2 == 0, nil
			}
			return i, nil
		},
	}
	v, err := c.Create(&stubExecutor{}, reflect.TypeFor[map[bool]int](), "")
	require.NoError(t, err)
	assert.Len(t, v, 2)
}

func TestCreators_Errors(t *testing.T) {
	for _, c := range Defaults() {
		assert.False(t, c.IsSupported(nil, "", nil))
		_, err := c.Create(&stubExecutor{}, nil, "")
		assert.ErrorIs(t, err, types.ErrArgument)
		_, err = c.Create(&stubExecutor{}, reflect.TypeFor[int](), "")
		assert.ErrorIs(t, err, types.ErrNotSupported)
		_, err = c.Populate(&stubExecutor{}, nil)
		assert.ErrorIs(t, err, types.ErrArgument)
	}

	assert.False(t, (&EnumerableCreator{}).IsSupported(reflect.TypeFor[net.IP](), "", nil))

	_, err := (&EnumerableCreator{Count: 2}).Create(&stubExecutor{fail: true}, reflect.TypeFor[[]int](), "")
	require.Error(t, err)
	var be *types.BuildError
	assert.True(t, errors.As(err, &be))
	assert.ErrorIs(t, err, types.ErrBuildFailed)
}
