package request

import (
	jsonlib "encoding/json"
	"fmt"
	"maps"
	"net/url"
	"reflect"

	"github.com/keboola/go-utils/pkg/orderedmap"
	"github.com/spf13/cast"
)

// ToFormBody converts a JSON like map to form body map, any type is mapped to string.
//
// Slices are flattened to "key[0]", "key[1]", ... and maps to "key[subKey]".
// Nil values are skipped.
func ToFormBody(in map[string]any) (out map[string]string) {
	out = make(map[string]string)
	for k, v := range in {
		flattenFormValue(k, v, out)
	}
	return out
}

func flattenFormValue(key string, v any, out map[string]string) {
	if v == nil {
		return
	}

	// Ordered map is encoded as a JSON string, see castToString
	if _, ok := v.(*orderedmap.OrderedMap); ok {
		out[key] = castToString(v)
		return
	}

	value := reflect.ValueOf(v)
	switch value.Kind() {
	case reflect.Slice, reflect.Array:
		if _, ok := v.([]byte); ok {
			out[key] = string(v.([]byte))
			return
		}
		for i := range value.Len() {
			flattenFormValue(fmt.Sprintf("%s[%d]", key, i), value.Index(i).Interface(), out)
		}
	case reflect.Map:
		if value.Type().Key().Kind() != reflect.String {
			panic(fmt.Errorf(`form value "%s": map key must be a string, found %s`, key, value.Type().Key()))
		}
		iter := value.MapRange()
		for iter.Next() {
			flattenFormValue(fmt.Sprintf("%s[%s]", key, iter.Key().String()), iter.Value().Interface(), out)
		}
	default:
		out[key] = castToString(v)
	}
}

func cloneParams(in map[string]string) (out map[string]string) {
	out = make(map[string]string, len(in))
	maps.Copy(out, in)
	return out
}

func cloneURLValues(in url.Values) (out url.Values) {
	out = make(url.Values)
	for k, values := range in {
		for _, v := range values {
			out.Add(k, v)
		}
	}
	return out
}

func castToString(v any) string {
	// Ordered map
	if orderedMap, ok := v.(*orderedmap.OrderedMap); ok {
		// Standard json encoding library is used.
		// JsonIter lib returns non-compact JSON,
		// if custom OrderedMap.MarshalJSON method is used.
		if v, err := jsonlib.Marshal(orderedMap); err != nil {
			panic(fmt.Errorf(`cannot cast %T to string %w`, v, err))
		} else {
			return string(v)
		}
	}

	// Other types
	if v, err := cast.ToStringE(v); err != nil {
		panic(fmt.Errorf(`cannot cast %T to string %w`, v, err))
	} else {
		return v
	}
}
