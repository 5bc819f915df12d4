package option

import (
	"reflect"
	"strconv"
	"strings"
)

// NoIndex marks a value without a matching option.
const NoIndex = -1

// PlaceholderToken is the control value carried by the UI-only "no
// selection" entry. It never maps to an option.
const PlaceholderToken = "None"

// IndexForValue returns the position of the first option equal to value, or
// NoIndex. Duplicated values resolve to their first occurrence.
func IndexForValue(value any, options []Option) int {
	for idx, opt := range options {
		if Equal(opt, value) {
			return idx
		}
	}
	return NoIndex
}

// IndicesForValues maps each value to its option position. The result keeps
// the order and length of values; unmatched entries hold NoIndex.
func IndicesForValues(values []any, options []Option) []int {
	out := make([]int, len(values))
	for idx, value := range values {
		out[idx] = IndexForValue(value, options)
	}
	return out
}

// IndexForValueMulti is the loosely typed lookup used by control bindings:
// an int for a single value, []int for multiple, and "" when a single value
// has no match.
func IndexForValueMulti(value any, options []Option, multiple bool) any {
	if multiple {
		return IndicesForValues(AsSlice(value), options)
	}
	idx := IndexForValue(value, options)
	if idx == NoIndex {
		return ""
	}
	return idx
}

// ValueForIndex returns the value at index, or empty when index is out of
// range.
func ValueForIndex(index int, options []Option, empty any) any {
	if index < 0 || index >= len(options) {
		return empty
	}
	return options[index].Value
}

// ValuesForIndices maps each index to its value, keeping order and length.
// Out-of-range indices yield empty.
func ValuesForIndices(indices []int, options []Option, empty any) []any {
	out := make([]any, len(indices))
	for idx, index := range indices {
		out[idx] = ValueForIndex(index, options, empty)
	}
	return out
}

// Resolve converts raw control output into domain values. Single outputs may
// be an int or a decimal string; multiple outputs are slices of those. The
// placeholder token, blanks, unparsable input and out-of-range positions
// resolve to empty.
func Resolve(raw any, options []Option, empty any) any {
	switch typed := raw.(type) {
	case nil:
		return empty
	case int:
		return ValueForIndex(typed, options, empty)
	case string:
		idx, ok := ParseIndex(typed)
		if !ok {
			return empty
		}
		return ValueForIndex(idx, options, empty)
	case []int:
		return ValuesForIndices(typed, options, empty)
	case []string:
		out := make([]any, len(typed))
		for idx, entry := range typed {
			out[idx] = Resolve(entry, options, empty)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for idx, entry := range typed {
			out[idx] = Resolve(entry, options, empty)
		}
		return out
	default:
		if n, ok := toFloat(raw); ok && n == float64(int(n)) {
			return ValueForIndex(int(n), options, empty)
		}
		return empty
	}
}

// ParseIndex parses a control value into an option position.
func ParseIndex(raw string) (int, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == PlaceholderToken {
		return NoIndex, false
	}
	idx, err := strconv.Atoi(trimmed)
	if err != nil || idx < 0 {
		return NoIndex, false
	}
	return idx, true
}

// FormatIndex renders an option position as a control value.
func FormatIndex(index int) string {
	if index < 0 {
		return ""
	}
	return strconv.Itoa(index)
}

// AsSlice widens a multiple-selection value into []any. Scalars become a
// single-element slice and nil becomes an empty slice.
func AsSlice(value any) []any {
	switch typed := value.(type) {
	case nil:
		return []any{}
	case []any:
		return typed
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = rv.Index(i).Interface()
		}
		return out
	}
	return []any{value}
}
