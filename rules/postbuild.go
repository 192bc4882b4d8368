package rules

import (
	"reflect"

	"github.com/pithecene-io/modelforge/history"
	"github.com/pithecene-io/modelforge/typeinfo"
	"github.com/pithecene-io/modelforge/types"
)

// PostBuildAction runs after a value is fully built. member is nil for values
// built for a type rather than a property or parameter. Execute returns the
// value to hand on, which is usually instance itself.
type PostBuildAction interface {
	IsMatch(t reflect.Type, member typeinfo.Member, chain *history.BuildHistory) bool
	Execute(instance any, t reflect.Type, member typeinfo.Member, chain *history.BuildHistory) (any, error)
	Priority() int
}

// PostBuildFunc adapts plain functions to PostBuildAction.
type PostBuildFunc struct {
	Match  func(t reflect.Type, member typeinfo.Member, chain *history.BuildHistory) bool
	Action func(instance any, t reflect.Type, member typeinfo.Member, chain *history.BuildHistory) (any, error)
	Order  int
}

// NewPostBuildAction runs fn on every value of type t.
func NewPostBuildAction(t reflect.Type, fn func(instance any, chain *history.BuildHistory) (any, error), priority int) (*PostBuildFunc, error) {
	if t == nil {
		return nil, types.ConfigurationError("post-build action: type is required")
	}
	if fn == nil {
		return nil, types.ConfigurationError("post-build action for %s: action is required", t)
	}
	return &PostBuildFunc{
		Match: func(bt reflect.Type, _ typeinfo.Member, _ *history.BuildHistory) bool {
			return bt == t
		},
		Action: func(instance any, _ reflect.Type, _ typeinfo.Member, chain *history.BuildHistory) (any, error) {
			return fn(instance, chain)
		},
		Order: priority,
	}, nil
}

func (f *PostBuildFunc) IsMatch(t reflect.Type, member typeinfo.Member, chain *history.BuildHistory) bool {
	if t == nil || f.Match == nil {
		return false
	}
	return f.Match(t, member, chain)
}

func (f *PostBuildFunc) Execute(instance any, t reflect.Type, member typeinfo.Member, chain *history.BuildHistory) (any, error) {
	if t == nil {
		return nil, types.ArgumentError("type")
	}
	if f.Action == nil {
		return instance, nil
	}
	return f.Action(instance, t, member, chain)
}

func (f *PostBuildFunc) Priority() int {
	return f.Order
}

var _ PostBuildAction = (*PostBuildFunc)(nil)
