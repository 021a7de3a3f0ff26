package registry

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Settings holds the evaluated attributes of a manifest's settings block.
type Settings map[string]cty.Value

// Keys returns the setting names in sorted order.
func (s Settings) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Has reports whether key is set to a non-null value.
func (s Settings) Has(key string) bool {
	v, ok := s[key]
	return ok && !v.IsNull()
}

// Decode converts the setting key into target, which must be a non-nil
// pointer. A missing or null setting leaves target untouched.
func (s Settings) Decode(key string, target any) error {
	ptr := reflect.ValueOf(target)
	if ptr.Kind() != reflect.Ptr || ptr.IsNil() {
		return fmt.Errorf("target for setting %q must be a non-nil pointer, got %T", key, target)
	}
	if !s.Has(key) {
		return nil
	}
	val := s[key]

	impliedType, err := gocty.ImpliedType(ptr.Elem().Interface())
	if err != nil {
		// Fall back to direct decoding for types cty cannot describe.
		return gocty.FromCtyValue(val, target)
	}

	converted, err := convert.Convert(val, impliedType)
	if err != nil {
		return fmt.Errorf("setting %q: cannot convert %s to %s: %w",
			key, val.Type().FriendlyName(), impliedType.FriendlyName(), err)
	}
	if err := gocty.FromCtyValue(converted, target); err != nil {
		return fmt.Errorf("setting %q: %w", key, err)
	}
	return nil
}
