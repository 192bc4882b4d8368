package resolve

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/pithecene-io/modelforge/typeinfo"
)

// PropertyResolver enumerates the properties the engine populates.
type PropertyResolver interface {
	// Properties returns the eligible properties of d in declaration order,
	// filtered by name when pattern is non-nil.
	Properties(d *typeinfo.Descriptor, pattern *regexp.Regexp) []*typeinfo.Property
	// ShouldPopulate reports whether p still needs a value after instance
	// was produced by ctor from args.
	ShouldPopulate(p *typeinfo.Property, instance reflect.Value, ctor *typeinfo.Constructor, args []reflect.Value) bool
}

// DefaultPropertyResolver selects readable and writable properties.
type DefaultPropertyResolver struct {
	// IncludeReadOnly also selects properties tagged readonly.
	IncludeReadOnly bool
}

func (r *DefaultPropertyResolver) Properties(d *typeinfo.Descriptor, pattern *regexp.Regexp) []*typeinfo.Property {
	if d == nil {
		return nil
	}
	var out []*typeinfo.Property
	for _, p := range d.Properties {
		if !p.CanRead() || (!p.CanWrite() && !r.IncludeReadOnly) {
			continue
		}
		if pattern != nil && !pattern.MatchString(p.Name) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// ShouldPopulate skips properties a constructor already set: a property
// named like a registered parameter, or an unnamed parameter whose argument
// equals the property value.
func (r *DefaultPropertyResolver) ShouldPopulate(p *typeinfo.Property, instance reflect.Value, ctor *typeinfo.Constructor, args []reflect.Value) bool {
	if p == nil {
		return false
	}
	if ctor == nil || ctor.Implicit || !instance.IsValid() {
		return true
	}

	var current reflect.Value
	for i, param := range ctor.Params {
		if i >= len(args) || !args[i].IsValid() {
			continue
		}
		if param.Named {
			if strings.EqualFold(param.Name, p.Name) {
				return false
			}
			continue
		}
		if param.Type != p.Type {
			continue
		}
		if !current.IsValid() {
			current = p.Get(instance)
		}
		if reflect.DeepEqual(current.Interface(), args[i].Interface()) {
			return false
		}
	}
	return true
}

var _ PropertyResolver = (*DefaultPropertyResolver)(nil)
