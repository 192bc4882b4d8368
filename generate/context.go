package generate

import (
	"reflect"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/pithecene-io/modelforge/history"
)

// current returns the instance under construction, or nil outside a build.
func current(chain *history.BuildHistory) *history.Item {
	if chain == nil {
		return nil
	}
	return chain.Current()
}

// contextValue resolves correlated state for the instance under
// construction: its own capability first, then a sibling field matching
// pattern, then the nearest ancestor carrying the capability.
func contextValue(chain *history.BuildHistory, key string, pattern *regexp.Regexp) string {
	item := current(chain)
	if item == nil {
		return ""
	}
	if v, ok := item.Capability(key); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	if s, ok := siblingString(chain, pattern); ok {
		return s
	}
	if v, ok := chain.Lookup(key); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// siblingString returns the first non-empty string field of the instance
// under construction whose name matches pattern.
func siblingString(chain *history.BuildHistory, pattern *regexp.Regexp) (string, bool) {
	var out string
	found := siblingField(chain, pattern, func(v reflect.Value) bool {
		if v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return false
			}
			v = v.Elem()
		}
		if v.Kind() != reflect.String || v.String() == "" {
			return false
		}
		out = v.String()
		return true
	})
	return out, found
}

// siblingTime returns the first non-zero time.Time field of the instance
// under construction whose name matches pattern.
func siblingTime(chain *history.BuildHistory, pattern *regexp.Regexp) (time.Time, bool) {
	var out time.Time
	found := siblingField(chain, pattern, func(v reflect.Value) bool {
		if v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return false
			}
			v = v.Elem()
		}
		t, ok := v.Interface().(time.Time)
		if !ok || t.IsZero() {
			return false
		}
		out = t
		return true
	})
	return out, found
}

func siblingField(chain *history.BuildHistory, pattern *regexp.Regexp, take func(reflect.Value) bool) bool {
	item := current(chain)
	if item == nil || item.Value == nil {
		return false
	}
	v := reflect.ValueOf(item.Value)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return false
	}
	for _, f := range reflect.VisibleFields(v.Type()) {
		if !f.IsExported() || f.Anonymous || !pattern.MatchString(f.Name) {
			continue
		}
		fv, err := v.FieldByIndexErr(f.Index)
		if err != nil {
			continue
		}
		if take(fv) {
			return true
		}
	}
	return false
}

// slug lower-cases s and keeps only letters and digits.
func slug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func today() time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour)
}

func yearsBetween(from, to time.Time) int {
	years := to.Year() - from.Year()
	if to.YearDay() < from.YearDay() {
		years--
	}
	return max(years, 0)
}
