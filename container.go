package recast

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"
	"strconv"
)

// encodeSequence encodes a slice or array element by element.
func (r *Recaster) encodeSequence(v reflect.Value) (any, error) {
	if v.Kind() == reflect.Slice && v.IsNil() {
		return nil, nil
	}
	out := make([]any, v.Len())
	for i := range out {
		data, err := r.encode(v.Index(i))
		if err != nil {
			return nil, newFieldError(ErrFieldConversion, v.Type(), indexSegment(i), err)
		}
		out[i] = data
	}
	return out, nil
}

// decodeSequence rebuilds a slice or array of type t. A Map holding an
// encoded value is unwrapped first.
func (r *Recaster) decodeSequence(data any, t reflect.Type) (reflect.Value, error) {
	items, ok, err := sequenceItems(data, t)
	if err != nil || !ok {
		return reflect.Zero(t), err
	}

	var out reflect.Value
	if t.Kind() == reflect.Array {
		if len(items) != t.Len() {
			return reflect.Value{}, fmt.Errorf("%w: %d elements for %s", ErrInvalidValue, len(items), t)
		}
		out = reflect.New(t).Elem()
	} else {
		out, err = r.factory.create(t, len(items))
		if err != nil {
			return reflect.Value{}, err
		}
		if out.Len() != len(items) {
			out.Set(reflect.MakeSlice(t, len(items), len(items)))
		}
	}

	for i, item := range items {
		elem, err := r.decode(item, t.Elem())
		if err != nil {
			return reflect.Value{}, newFieldError(ErrFieldConversion, t, indexSegment(i), err)
		}
		if err := assign(out.Index(i), elem); err != nil {
			return reflect.Value{}, newFieldError(ErrFieldConversion, t, indexSegment(i), err)
		}
	}
	return out, nil
}

// encodeSet encodes a map[K]struct{} as a sequence of its members, sorted.
func (r *Recaster) encodeSet(v reflect.Value) (any, error) {
	if v.IsNil() {
		return nil, nil
	}
	keys := sortedKeys(v)
	out := make([]any, len(keys))
	for i, k := range keys {
		data, err := r.encode(k)
		if err != nil {
			return nil, newFieldError(ErrFieldConversion, v.Type(), indexSegment(i), err)
		}
		out[i] = data
	}
	return out, nil
}

// decodeSet rebuilds a map[K]struct{} from a sequence of members.
func (r *Recaster) decodeSet(data any, t reflect.Type) (reflect.Value, error) {
	items, ok, err := sequenceItems(data, t)
	if err != nil || !ok {
		return reflect.Zero(t), err
	}
	out, err := r.factory.create(t, len(items))
	if err != nil {
		return reflect.Value{}, err
	}
	ensureMap(out, len(items))
	present := reflect.Zero(t.Elem())
	for i, item := range items {
		key, err := r.decode(item, t.Key())
		if err != nil {
			return reflect.Value{}, newFieldError(ErrFieldConversion, t, indexSegment(i), err)
		}
		out.SetMapIndex(key, present)
	}
	return out, nil
}

// encodeMapping encodes a map[K]V as a nested Map without an identifier.
// Keys are rendered as strings and written in sorted order.
func (r *Recaster) encodeMapping(v reflect.Value) (any, error) {
	if v.IsNil() {
		return nil, nil
	}
	m := NewMap()
	for _, k := range sortedKeys(v) {
		key, err := encodeKey(k)
		if err != nil {
			return nil, err
		}
		data, err := r.encode(v.MapIndex(k))
		if err != nil {
			return nil, newFieldError(ErrFieldConversion, v.Type(), "["+key+"]", err)
		}
		m.Set(key, data)
	}
	return m, nil
}

// decodeMapping rebuilds a map[K]V from a nested Map. Reserved keys are skipped.
func (r *Recaster) decodeMapping(data any, t reflect.Type) (reflect.Value, error) {
	if data == nil {
		return reflect.Zero(t), nil
	}
	src, ok := data.(*Map)
	if !ok {
		return reflect.Value{}, fmt.Errorf("%w: cannot decode %T into %s", ErrInvalidValue, data, t)
	}
	if src.ContainsEncodedValue() {
		return r.decodeMapping(src.EncodedValue(), t)
	}

	out, err := r.factory.create(t, src.Len())
	if err != nil {
		return reflect.Value{}, err
	}
	ensureMap(out, src.Len())
	for k, item := range src.All() {
		if k == IdentifierKey {
			continue
		}
		key, err := decodeKey(k, t.Key())
		if err != nil {
			return reflect.Value{}, err
		}
		val, err := r.decode(item, t.Elem())
		if err != nil {
			return reflect.Value{}, newFieldError(ErrFieldConversion, t, "["+k+"]", err)
		}
		elem := reflect.New(t.Elem()).Elem()
		if err := assign(elem, val); err != nil {
			return reflect.Value{}, newFieldError(ErrFieldConversion, t, "["+k+"]", err)
		}
		out.SetMapIndex(key, elem)
	}
	return out, nil
}

// ensureMap allocates v when an initializer left it nil. Entries an
// initializer added are kept; decoded entries overwrite them.
func ensureMap(v reflect.Value, size int) {
	if v.IsNil() {
		v.Set(reflect.MakeMapWithSize(v.Type(), size))
	}
}

// sequenceItems extracts the element list from sequence data. It reports
// false for nil data.
func sequenceItems(data any, t reflect.Type) ([]any, bool, error) {
	switch d := data.(type) {
	case nil:
		return nil, false, nil
	case []any:
		return d, true, nil
	case *Map:
		if d.ContainsEncodedValue() {
			return sequenceItems(d.EncodedValue(), t)
		}
	}
	return nil, false, fmt.Errorf("%w: cannot decode %T into %s", ErrInvalidValue, data, t)
}

// sortedKeys returns the keys of map v in a deterministic order.
func sortedKeys(v reflect.Value) []reflect.Value {
	keys := v.MapKeys()
	slices.SortFunc(keys, compareValues)
	return keys
}

// compareValues orders scalar values naturally and everything else by its
// printed form.
func compareValues(a, b reflect.Value) int {
	switch a.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return cmp.Compare(a.Int(), b.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return cmp.Compare(a.Uint(), b.Uint())
	case reflect.Float32, reflect.Float64:
		return cmp.Compare(a.Float(), b.Float())
	case reflect.String:
		return cmp.Compare(a.String(), b.String())
	case reflect.Bool:
		switch {
		case a.Bool() == b.Bool():
			return 0
		case !a.Bool():
			return -1
		}
		return 1
	}
	return cmp.Compare(fmt.Sprint(a.Interface()), fmt.Sprint(b.Interface()))
}

func indexSegment(i int) string {
	return "[" + strconv.Itoa(i) + "]"
}
