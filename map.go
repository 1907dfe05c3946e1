package recast

import (
	"bytes"
	"fmt"
	"iter"
	"reflect"
	"slices"
	"sort"
)

// Reserved keys of a Map.
const (
	// IdentifierKey holds the alias or fully-qualified type name of the
	// object that produced the map.
	IdentifierKey = "__recast"

	// EncodedValueKey holds the whole content of a node whose natural
	// representation is not a set of named fields (a root slice, a scalar).
	EncodedValueKey = "__encodedValue"
)

// Map is the generic value tree produced by ToMap and consumed by FromMap.
//
// It is an ordered string-keyed mapping: keys keep their insertion order and
// re-setting an existing key keeps its position. Values are nil, bool, int64,
// uint64, float64, complex128, string, []byte, *Map or []any of the same.
//
// Map performs no validation; it is plain data. A Map is not safe for
// concurrent mutation.
type Map struct {
	keys   []string
	values map[string]any
}

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{values: make(map[string]any)}
}

// Set stores v under key.
func (m *Map) Set(key string, v any) {
	if m.values == nil {
		m.values = make(map[string]any)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (any, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Delete removes key, keeping the order of the remaining keys.
func (m *Map) Delete(key string) {
	if m == nil {
		return
	}
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	m.keys = slices.DeleteFunc(m.keys, func(k string) bool { return k == key })
}

// Len returns the number of keys, reserved keys included.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	return slices.Clone(m.keys)
}

// All iterates key/value pairs in insertion order.
func (m *Map) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		if m == nil {
			return
		}
		for _, k := range m.keys {
			if !yield(k, m.values[k]) {
				return
			}
		}
	}
}

// SetIdentifier stores the type identifier. The identifier is always the first key.
func (m *Map) SetIdentifier(id string) {
	if _, ok := m.Get(IdentifierKey); ok {
		m.values[IdentifierKey] = id
		return
	}
	m.Set(IdentifierKey, id)
	if len(m.keys) > 1 {
		copy(m.keys[1:], m.keys[:len(m.keys)-1])
		m.keys[0] = IdentifierKey
	}
}

// Identifier returns the type identifier, or "" when absent or not a string.
func (m *Map) Identifier() string {
	v, _ := m.Get(IdentifierKey)
	s, _ := v.(string)
	return s
}

// HasIdentifier reports whether a non-empty identifier is present.
func (m *Map) HasIdentifier() bool {
	return m.Identifier() != ""
}

// SetEncodedValue stores a node's whole content in the encoded-value slot.
func (m *Map) SetEncodedValue(v any) {
	m.Set(EncodedValueKey, v)
}

// EncodedValue returns the content of the encoded-value slot.
func (m *Map) EncodedValue() any {
	v, _ := m.Get(EncodedValueKey)
	return v
}

// ContainsEncodedValue reports whether the node's content is held in the encoded-value slot.
func (m *Map) ContainsEncodedValue() bool {
	return m.Has(EncodedValueKey)
}

// Clone returns a deep copy; nested maps, sequences and byte slices are copied.
func (m *Map) Clone() *Map {
	if m == nil {
		return nil
	}
	out := &Map{
		keys:   slices.Clone(m.keys),
		values: make(map[string]any, len(m.values)),
	}
	for k, v := range m.values {
		out.values[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case *Map:
		return x.Clone()
	case []any:
		if x == nil {
			return x
		}
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = cloneValue(e)
		}
		return out
	case []byte:
		return bytes.Clone(x)
	}
	return v
}

// Equal reports whether two maps hold the same keys in the same order with
// deeply equal values.
func (m *Map) Equal(other *Map) bool {
	if m == nil || other == nil {
		return m == other
	}
	if !slices.Equal(m.keys, other.keys) {
		return false
	}
	for _, k := range m.keys {
		if !valueEqual(m.values[k], other.values[k]) {
			return false
		}
	}
	return true
}

func valueEqual(a, b any) bool {
	switch x := a.(type) {
	case *Map:
		y, ok := b.(*Map)
		return ok && x.Equal(y)
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) || (x == nil) != (y == nil) {
			return false
		}
		for i := range x {
			if !valueEqual(x[i], y[i]) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}

// ToGeneric converts the tree to plain map[string]any and []any values.
// Key order is lost.
func (m *Map) ToGeneric() map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m.keys))
	for _, k := range m.keys {
		out[k] = toGeneric(m.values[k])
	}
	return out
}

func toGeneric(v any) any {
	switch x := v.(type) {
	case *Map:
		return x.ToGeneric()
	case []any:
		if x == nil {
			return x
		}
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = toGeneric(e)
		}
		return out
	}
	return v
}

// FromGeneric converts a plain tree (map[string]any, []any, scalars) into a
// Map tree. Plain Go maps are unordered, so keys are sorted, except that the
// identifier is always placed first.
func FromGeneric(v map[string]any) (*Map, error) {
	out, err := fromGeneric(v)
	if err != nil {
		return nil, err
	}
	m, _ := out.(*Map)
	return m, nil
}

func fromGeneric(v any) (any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case *Map:
		return x, nil
	case map[string]any:
		if x == nil {
			return nil, nil
		}
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := NewMap()
		for _, k := range keys {
			child, err := fromGeneric(x[k])
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			if k == IdentifierKey {
				id, ok := child.(string)
				if !ok {
					return nil, fmt.Errorf("%w: identifier must be a string, got %T", ErrInvalidValue, child)
				}
				m.SetIdentifier(id)
				continue
			}
			m.Set(k, child)
		}
		return m, nil
	case []any:
		if x == nil {
			return x, nil
		}
		out := make([]any, len(x))
		for i, e := range x {
			child, err := fromGeneric(e)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out[i] = child
		}
		return out, nil
	}

	switch reflect.ValueOf(v).Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return v, nil
	case reflect.Slice:
		if b, ok := v.([]byte); ok {
			return b, nil
		}
	}
	return nil, fmt.Errorf("%w: %T is not a generic value", ErrInvalidValue, v)
}

// String renders the map for diagnostics.
func (m *Map) String() string {
	if m == nil {
		return "<nil>"
	}
	var b bytes.Buffer
	writeValue(&b, m)
	return b.String()
}

func writeValue(b *bytes.Buffer, v any) {
	switch x := v.(type) {
	case *Map:
		b.WriteByte('{')
		for i, k := range x.keys {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(b, "%s: ", k)
			writeValue(b, x.values[k])
		}
		b.WriteByte('}')
	case []any:
		b.WriteByte('[')
		for i, e := range x {
			if i > 0 {
				b.WriteString(", ")
			}
			writeValue(b, e)
		}
		b.WriteByte(']')
	case string:
		fmt.Fprintf(b, "%q", x)
	default:
		fmt.Fprintf(b, "%v", x)
	}
}
