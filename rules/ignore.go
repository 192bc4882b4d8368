package rules

import (
	"fmt"
	"reflect"

	"github.com/pithecene-io/modelforge/typeinfo"
	"github.com/pithecene-io/modelforge/types"
)

// IgnoreRule excludes matching properties from population.
type IgnoreRule struct {
	desc  string
	match func(*typeinfo.Property) bool
}

// NewIgnoreRule ignores the property name declared on t.
func NewIgnoreRule(t reflect.Type, name string) (*IgnoreRule, error) {
	if t == nil {
		return nil, types.ConfigurationError("ignore rule: type is required")
	}
	if name == "" {
		return nil, types.ConfigurationError("ignore rule for %s: property name is required", t)
	}
	return &IgnoreRule{
		desc: fmt.Sprintf("ignore %s.%s", typeinfo.Indirect(t), name),
		match: func(p *typeinfo.Property) bool {
			return p.Name == name && ownerMatches(t, p.Owner)
		},
	}, nil
}

// NewIgnoreFunc ignores every property the predicate accepts.
func NewIgnoreFunc(description string, match func(*typeinfo.Property) bool) (*IgnoreRule, error) {
	if match == nil {
		return nil, types.ConfigurationError("ignore rule %q: predicate is required", description)
	}
	return &IgnoreRule{desc: description, match: match}, nil
}

// IsMatch reports whether p is ignored.
func (r *IgnoreRule) IsMatch(p *typeinfo.Property) bool {
	if p == nil {
		return false
	}
	return r.match(p)
}

func (r *IgnoreRule) String() string {
	return r.desc
}
