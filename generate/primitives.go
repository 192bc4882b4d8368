package generate

import (
	"encoding"
	"math"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pithecene-io/modelforge/history"
)

var (
	timeType = reflect.TypeFor[time.Time]()
	uuidType = reflect.TypeFor[uuid.UUID]()

	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
)

// IsTextValue reports whether t carries its own text form (net.IP,
// uuid.UUID, ...). Such types are leaf values even when their underlying
// kind is a slice or array.
func IsTextValue(t reflect.Type) bool {
	return t != nil && reflect.PointerTo(t).Implements(textUnmarshalerType)
}

// BooleanGenerator produces bool values.
type BooleanGenerator struct {
	Random *Random
}

func (g *BooleanGenerator) IsSupported(t reflect.Type, _ string, _ *history.BuildHistory) bool {
	return baseMatches(t, func(b reflect.Type) bool { return b.Kind() == reflect.Bool })
}

func (g *BooleanGenerator) Generate(t reflect.Type, reference string, chain *history.BuildHistory) (any, error) {
	if err := check("boolean", g.IsSupported(t, reference, chain), t, reference); err != nil {
		return nil, err
	}
	r := orShared(g.Random)
	return finish(r, t, r.Bool()), nil
}

func (g *BooleanGenerator) Priority() int { return PrimitivePriority }

// NumericGenerator produces integer and floating point values, including
// named numeric types such as time.Duration.
type NumericGenerator struct {
	Random *Random
}

func (g *NumericGenerator) IsSupported(t reflect.Type, _ string, _ *history.BuildHistory) bool {
	return baseMatches(t, isNumeric)
}

func isNumeric(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

func (g *NumericGenerator) Generate(t reflect.Type, reference string, chain *history.BuildHistory) (any, error) {
	if err := check("numeric", g.IsSupported(t, reference, chain), t, reference); err != nil {
		return nil, err
	}
	r := orShared(g.Random)
	base, _ := nullable(t)

	var v any
	switch base.Kind() {
	case reflect.Float32, reflect.Float64:
		v = math.Round(r.Float64()*100000) / 100
	case reflect.Int8:
		v = r.Int64N(math.MaxInt8)
	case reflect.Uint8:
		v = r.Int64N(math.MaxUint8)
	case reflect.Int16:
		v = r.Int64N(math.MaxInt16)
	case reflect.Uint16:
		v = r.Int64N(math.MaxUint16)
	default:
		v = r.Int64N(math.MaxInt32)
	}
	return finish(r, t, v), nil
}

func (g *NumericGenerator) Priority() int { return PrimitivePriority }

// StringGenerator is the fallback for string values. It produces the
// reference name followed by a random suffix.
type StringGenerator struct {
	Random *Random
}

func (g *StringGenerator) IsSupported(t reflect.Type, _ string, _ *history.BuildHistory) bool {
	return baseMatches(t, func(b reflect.Type) bool { return b.Kind() == reflect.String })
}

func (g *StringGenerator) Generate(t reflect.Type, reference string, chain *history.BuildHistory) (any, error) {
	if err := check("string", g.IsSupported(t, reference, chain), t, reference); err != nil {
		return nil, err
	}
	r := orShared(g.Random)
	id, err := uuid.NewRandomFromReader(r)
	if err != nil {
		return nil, err
	}
	suffix := strings.ReplaceAll(id.String(), "-", "")[:12]
	if reference == "" {
		return finish(r, t, suffix), nil
	}
	return finish(r, t, reference+suffix), nil
}

func (g *StringGenerator) Priority() int { return StringPriority }

// UUIDGenerator produces uuid.UUID values, and UUID strings for references
// named like identifiers (ID, UUID, GUID, OrderID, ...).
type UUIDGenerator struct {
	Random *Random
}

// Case sensitive so "Paid" or "Valid" are not taken for identifiers.
var identifierPattern = regexp.MustCompile(`^(?:ID|Id|UUID|Uuid|GUID|Guid|id|uuid|guid)$|[a-z0-9](?:ID|Id|UUID|Uuid|GUID|Guid)$|_(?:id|uuid|guid)$`)

func (g *UUIDGenerator) IsSupported(t reflect.Type, reference string, _ *history.BuildHistory) bool {
	return baseMatches(t, func(b reflect.Type) bool {
		if b == uuidType {
			return true
		}
		return b.Kind() == reflect.String && identifierPattern.MatchString(reference)
	})
}

func (g *UUIDGenerator) Generate(t reflect.Type, reference string, chain *history.BuildHistory) (any, error) {
	if err := check("uuid", g.IsSupported(t, reference, chain), t, reference); err != nil {
		return nil, err
	}
	r := orShared(g.Random)
	id, err := uuid.NewRandomFromReader(r)
	if err != nil {
		return nil, err
	}
	if base, _ := nullable(t); base == uuidType {
		return finish(r, t, id), nil
	}
	return finish(r, t, id.String()), nil
}

func (g *UUIDGenerator) Priority() int { return SemanticPriority }

// TimeGenerator produces time.Time values within ten years of 2020-01-01 UTC.
type TimeGenerator struct {
	Random *Random
}

var timeEpoch = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

func (g *TimeGenerator) IsSupported(t reflect.Type, _ string, _ *history.BuildHistory) bool {
	return baseMatches(t, func(b reflect.Type) bool { return b == timeType })
}

func (g *TimeGenerator) Generate(t reflect.Type, reference string, chain *history.BuildHistory) (any, error) {
	if err := check("time", g.IsSupported(t, reference, chain), t, reference); err != nil {
		return nil, err
	}
	r := orShared(g.Random)
	span := int64(10 * 365 * 24 * time.Hour / time.Second)
	v := timeEpoch.Add(time.Duration(r.Int64N(span)) * time.Second)
	return finish(r, t, v), nil
}

func (g *TimeGenerator) Priority() int { return PrimitivePriority }
