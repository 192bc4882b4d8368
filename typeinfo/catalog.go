package typeinfo

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/pithecene-io/modelforge/types"
)

// DefaultCacheSize is the descriptor cache capacity used by NewCatalog.
const DefaultCacheSize = 512

// tagName is the struct tag read for property options.
const tagName = "modelforge"

// Descriptor describes one type: its constructors and its properties.
// Descriptors are immutable once built.
type Descriptor struct {
	// Type is the described type.
	Type reflect.Type
	// Abstract is set for interface types, which have no implicit constructor.
	Abstract bool
	// Constructors are listed in declaration order: registered constructors
	// first, the implicit zero-value constructor (if any) last.
	Constructors []*Constructor
	// Properties are the exported fields of the struct behind Type, in
	// declaration order. Empty for non-struct types.
	Properties []*Property
}

// Catalog owns constructor registrations and caches descriptors.
// Safe for concurrent use.
type Catalog struct {
	mu            sync.RWMutex
	registrations map[reflect.Type][]registration
	cache         *lru.Cache[reflect.Type, *Descriptor]
}

// NewCatalog creates a catalog with the default cache size.
func NewCatalog() *Catalog {
	c, err := NewCatalogWithSize(DefaultCacheSize)
	if err != nil {
		// DefaultCacheSize is positive; lru.New only fails on size <= 0.
		panic(err)
	}
	return c
}

// NewCatalogWithSize creates a catalog caching up to size descriptors.
func NewCatalogWithSize(size int) (*Catalog, error) {
	cache, err := lru.New[reflect.Type, *Descriptor](size)
	if err != nil {
		return nil, types.ConfigurationError("descriptor cache: %v", err)
	}
	return &Catalog{
		registrations: make(map[reflect.Type][]registration),
		cache:         cache,
	}, nil
}

// RegisterConstructor registers fn as a constructor of the type it returns.
// fn must be a non-variadic function returning T or (T, error).
// Returns the produced type.
func (c *Catalog) RegisterConstructor(fn any, opts ...ConstructorOption) (reflect.Type, error) {
	reg, out, err := newRegistration(fn, opts...)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.registrations[out] = append(c.registrations[out], reg)
	c.mu.Unlock()

	c.cache.Remove(out)
	return out, nil
}

// Describe returns the descriptor of t, building and caching it on first use.
func (c *Catalog) Describe(t reflect.Type) (*Descriptor, error) {
	if t == nil {
		return nil, types.ArgumentError("type")
	}
	if d, ok := c.cache.Get(t); ok {
		return d, nil
	}

	c.mu.RLock()
	regs := c.registrations[t]
	c.mu.RUnlock()

	d := describe(t, regs)
	c.cache.Add(t, d)
	return d, nil
}

// HasConstructors reports whether any constructor was registered for t.
func (c *Catalog) HasConstructors(t reflect.Type) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.registrations[t]) > 0
}

// Registered returns the types with registered constructors.
func (c *Catalog) Registered() []reflect.Type {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]reflect.Type, 0, len(c.registrations))
	for t := range c.registrations {
		out = append(out, t)
	}
	return out
}

func describe(t reflect.Type, regs []registration) *Descriptor {
	d := &Descriptor{
		Type:     t,
		Abstract: t.Kind() == reflect.Interface,
	}

	for i, reg := range regs {
		d.Constructors = append(d.Constructors, reg.constructor(i))
	}

	if st := StructType(t); st != nil {
		d.Constructors = append(d.Constructors, implicitConstructor(t, len(d.Constructors)))
		d.Properties = properties(st)
	}

	return d
}

// properties lists the exported fields of st. Fields promoted through
// embedded pointers or unexported embedded structs are skipped since they
// cannot be assigned without allocating or bypassing visibility.
func properties(st reflect.Type) []*Property {
	var props []*Property

	for _, f := range reflect.VisibleFields(st) {
		if !f.IsExported() {
			continue
		}
		if f.Anonymous && StructType(f.Type) != nil {
			continue
		}
		if !reachable(st, f.Index) {
			continue
		}

		tag := f.Tag.Get(tagName)
		if tag == "-" {
			continue
		}

		props = append(props, &Property{
			Name:     f.Name,
			Type:     f.Type,
			Owner:    st,
			Index:    f.Index,
			ReadOnly: hasTagOption(tag, "readonly"),
			Tag:      f.Tag,
		})
	}

	return props
}

// reachable reports whether every embedded struct on the index path is an
// exported non-pointer field.
func reachable(st reflect.Type, index []int) bool {
	for i := 1; i < len(index); i++ {
		f := st.FieldByIndex(index[:i])
		if !f.IsExported() || f.Type.Kind() == reflect.Pointer {
			return false
		}
	}
	return true
}

func hasTagOption(tag, option string) bool {
	for _, part := range strings.Split(tag, ",") {
		if strings.TrimSpace(part) == option {
			return true
		}
	}
	return false
}

// String summarizes the descriptor for logs.
func (d *Descriptor) String() string {
	return fmt.Sprintf("%s (%d constructors, %d properties)", d.Type, len(d.Constructors), len(d.Properties))
}
