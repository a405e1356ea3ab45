package internal

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Number formatting constants
const (
	FloatFormatFlag    = 'f'
	FloatPrecisionAll  = -1
	FloatBitSize64     = 64
	PropertyNameLength = "length"
)

// isTruthy reports whether a value counts as true in a condition.
func isTruthy(v any) bool {
	if v == nil {
		return false
	}
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return len(val) > 0
	case int:
		return val != 0
	case int64:
		return val != 0
	case float64:
		return val != 0 && !math.IsNaN(val)
	case []any:
		return len(val) > 0
	case []string:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	default:
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Slice, reflect.Array, reflect.Map:
			return rv.Len() > 0
		case reflect.Ptr, reflect.Interface:
			return !rv.IsNil()
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return rv.Int() != 0
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return rv.Uint() != 0
		case reflect.Float32:
			return rv.Float() != 0
		default:
			return true
		}
	}
}

// IsTruthy is the exported form of isTruthy for directive handlers and tests.
func IsTruthy(v any) bool {
	return isTruthy(v)
}

// toNumber attempts to convert a value to float64
func toNumber(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case float32:
		return float64(val), true
	case nil, bool, string:
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}

// toString returns v as a string when it is a string or Stringer
func toString(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case fmt.Stringer:
		return val.String(), true
	default:
		return "", false
	}
}

// Stringify renders a value the way it appears in markup: nil is empty,
// integral numbers drop the fraction, arrays and maps become JSON.
func Stringify(v any) string {
	if v == nil {
		return StringValueEmpty
	}
	switch val := v.(type) {
	case string:
		return val
	case bool:
		if val {
			return StringValueTrue
		}
		return StringValueFalse
	case float64:
		return strconv.FormatFloat(val, FloatFormatFlag, FloatPrecisionAll, FloatBitSize64)
	case int:
		return strconv.Itoa(val)
	case fmt.Stringer:
		return val.String()
	}
	if IsStructured(v) {
		return StringifyJSON(v)
	}
	if n, ok := toNumber(v); ok {
		return strconv.FormatFloat(n, FloatFormatFlag, FloatPrecisionAll, FloatBitSize64)
	}
	return fmt.Sprintf("%v", v)
}

// StringifyJSON serializes structured values. Values that cannot be
// marshaled fall back to their %v form.
func StringifyJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

// IsStructured reports whether v is an array, slice, map or struct.
func IsStructured(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.Struct:
		return true
	default:
		return false
	}
}

// compareEqual checks loose equality. Numbers compare by value, a number
// and a numeric string compare numerically.
func compareEqual(a, b any) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}

	aNum, aIsNum := toNumber(a)
	bNum, bIsNum := toNumber(b)
	if aIsNum && bIsNum {
		return aNum == bNum
	}

	aStr, aIsStr := toString(a)
	bStr, bIsStr := toString(b)
	if aIsStr && bIsStr {
		return aStr == bStr
	}
	if aIsNum && bIsStr {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(bStr), FloatBitSize64); err == nil {
			return aNum == parsed
		}
		return false
	}
	if aIsStr && bIsNum {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(aStr), FloatBitSize64); err == nil {
			return parsed == bNum
		}
		return false
	}

	aBool, aIsBool := a.(bool)
	bBool, bIsBool := b.(bool)
	if aIsBool && bIsBool {
		return aBool == bBool
	}

	if IsStructured(a) || IsStructured(b) {
		return reflect.DeepEqual(a, b)
	}
	return a == b
}

// strictEqual is compareEqual without coercion between kinds: a number
// never equals a string and a bool never equals anything but a bool.
func strictEqual(a, b any) bool {
	if valueKind(a) != valueKind(b) {
		return false
	}
	return compareEqual(a, b)
}

// Kinds compared by strictEqual
const (
	kindNil = iota
	kindNumber
	kindString
	kindBool
	kindOther
)

func valueKind(v any) int {
	switch v.(type) {
	case nil:
		return kindNil
	case string:
		return kindString
	case bool:
		return kindBool
	}
	if _, ok := toNumber(v); ok {
		return kindNumber
	}
	return kindOther
}

// LooseEqual is the exported form of compareEqual.
func LooseEqual(a, b any) bool {
	return compareEqual(a, b)
}

// compareOrder returns -1, 0 or 1 for numbers or strings.
func compareOrder(a, b any) (int, error) {
	aNum, aIsNum := toNumber(a)
	bNum, bIsNum := toNumber(b)
	if aIsNum && bIsNum {
		switch {
		case aNum < bNum:
			return -1, nil
		case aNum > bNum:
			return 1, nil
		default:
			return 0, nil
		}
	}

	aStr, aIsStr := toString(a)
	bStr, bIsStr := toString(b)
	if aIsStr && bIsStr {
		return strings.Compare(aStr, bStr), nil
	}

	return 0, NewExprEvalError(ErrMsgExprTypeMismatch, fmt.Sprintf("cannot compare %T and %T", a, b))
}

// lookupMember reads a named property from a map, struct or slice.
// Missing properties yield nil.
func lookupMember(obj any, name string) any {
	if obj == nil {
		return nil
	}
	switch val := obj.(type) {
	case map[string]any:
		return val[name]
	case map[string]string:
		if s, ok := val[name]; ok {
			return s
		}
		return nil
	case string:
		if name == PropertyNameLength {
			return float64(len([]rune(val)))
		}
		return nil
	}

	rv := reflect.ValueOf(obj)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil
		}
		v := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if !v.IsValid() {
			if name == PropertyNameLength {
				return float64(rv.Len())
			}
			return nil
		}
		return v.Interface()
	case reflect.Slice, reflect.Array:
		if name == PropertyNameLength {
			return float64(rv.Len())
		}
		return nil
	case reflect.Struct:
		field := rv.FieldByName(name)
		if !field.IsValid() && name != "" {
			field = rv.FieldByName(strings.ToUpper(name[:1]) + name[1:])
		}
		if !field.IsValid() || !field.CanInterface() {
			return nil
		}
		return field.Interface()
	default:
		return nil
	}
}

// lookupIndex reads obj[index] for slices (numeric index) and maps (string key).
func lookupIndex(obj any, index any) any {
	if obj == nil {
		return nil
	}
	if key, ok := index.(string); ok {
		return lookupMember(obj, key)
	}
	n, ok := toNumber(index)
	if !ok || n != math.Trunc(n) {
		return nil
	}
	i := int(n)

	switch val := obj.(type) {
	case []any:
		if i < 0 || i >= len(val) {
			return nil
		}
		return val[i]
	case string:
		runes := []rune(val)
		if i < 0 || i >= len(runes) {
			return nil
		}
		return string(runes[i])
	}

	rv := reflect.ValueOf(obj)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if i < 0 || i >= rv.Len() {
			return nil
		}
		return rv.Index(i).Interface()
	case reflect.Map:
		return lookupMember(obj, strconv.Itoa(i))
	default:
		return nil
	}
}

// IterItem is one pass of an each loop.
type IterItem struct {
	Key   any
	Value any
}

// Iterate flattens arrays, slices and string-keyed maps into an ordered
// list. Map keys are sorted. The bool result is false for values that
// cannot be iterated.
func Iterate(v any) ([]IterItem, bool) {
	if v == nil {
		return nil, true
	}
	switch val := v.(type) {
	case []any:
		items := make([]IterItem, len(val))
		for i, item := range val {
			items[i] = IterItem{Key: float64(i), Value: item}
		}
		return items, true
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		items := make([]IterItem, len(keys))
		for i, k := range keys {
			items[i] = IterItem{Key: k, Value: val[k]}
		}
		return items, true
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, true
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		items := make([]IterItem, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			items[i] = IterItem{Key: float64(i), Value: rv.Index(i).Interface()}
		}
		return items, true
	case reflect.Map:
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool {
			return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
		})
		items := make([]IterItem, len(keys))
		for i, k := range keys {
			items[i] = IterItem{Key: k.Interface(), Value: rv.MapIndex(k).Interface()}
		}
		return items, true
	default:
		return nil, false
	}
}
