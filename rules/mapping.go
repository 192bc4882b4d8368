package rules

import (
	"fmt"
	"reflect"

	"github.com/pithecene-io/modelforge/types"
)

// TypeMappingRule substitutes Target whenever Source is requested.
type TypeMappingRule struct {
	Source reflect.Type
	Target reflect.Type
}

// NewTypeMappingRule validates that target is a concrete type assignable to
// source and distinct from it.
func NewTypeMappingRule(source, target reflect.Type) (*TypeMappingRule, error) {
	switch {
	case source == nil:
		return nil, types.ConfigurationError("type mapping: source type is required")
	case target == nil:
		return nil, types.ConfigurationError("type mapping for %s: target type is required", source)
	case source == target:
		return nil, types.ConfigurationError("type mapping for %s: target equals source", source)
	case target.Kind() == reflect.Interface:
		return nil, types.ConfigurationError("type mapping %s => %s: target must be concrete", source, target)
	case !target.AssignableTo(source):
		return nil, types.ConfigurationError("type mapping %s => %s: target is not assignable to source", source, target)
	}
	return &TypeMappingRule{Source: source, Target: target}, nil
}

// IsMatch reports whether t is the mapped source type.
func (r *TypeMappingRule) IsMatch(t reflect.Type) bool {
	return t == r.Source
}

func (r *TypeMappingRule) String() string {
	return fmt.Sprintf("%s => %s", r.Source, r.Target)
}
