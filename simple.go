package recast

import (
	"encoding"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Canonical scalar forms written to a Map: every signed integer kind becomes
// int64, every unsigned kind uint64, floats float64 and complex numbers
// complex128. Decoding accepts any numeric form and checks range.

// encodeSimple converts a leaf scalar to its canonical form.
func encodeSimple(v reflect.Value) (any, error) {
	switch v.Kind() {
	case reflect.Bool:
		return v.Bool(), nil
	case reflect.String:
		return v.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint(), nil
	case reflect.Float32, reflect.Float64:
		return v.Float(), nil
	case reflect.Complex64, reflect.Complex128:
		return v.Complex(), nil
	}
	return nil, fmt.Errorf("%w: %s is not a scalar", ErrUnsupportedType, v.Type())
}

// decodeSimple converts canonical scalar data to a value of type t.
func decodeSimple(data any, t reflect.Type) (reflect.Value, error) {
	out := reflect.New(t).Elem()
	if data == nil {
		return out, nil
	}

	switch t.Kind() {
	case reflect.Bool:
		b, ok := data.(bool)
		if !ok {
			return reflect.Value{}, invalidScalar(data, t)
		}
		out.SetBool(b)
	case reflect.String:
		s, ok := data.(string)
		if !ok {
			return reflect.Value{}, invalidScalar(data, t)
		}
		out.SetString(s)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := toInt64(data)
		if err != nil {
			return reflect.Value{}, err
		}
		if out.OverflowInt(n) {
			return reflect.Value{}, fmt.Errorf("%w: %d overflows %s", ErrInvalidValue, n, t)
		}
		out.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, err := toUint64(data)
		if err != nil {
			return reflect.Value{}, err
		}
		if out.OverflowUint(n) {
			return reflect.Value{}, fmt.Errorf("%w: %d overflows %s", ErrInvalidValue, n, t)
		}
		out.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := toFloat64(data)
		if err != nil {
			return reflect.Value{}, err
		}
		if out.OverflowFloat(f) {
			return reflect.Value{}, fmt.Errorf("%w: %g overflows %s", ErrInvalidValue, f, t)
		}
		out.SetFloat(f)
	case reflect.Complex64, reflect.Complex128:
		c, err := toComplex128(data)
		if err != nil {
			return reflect.Value{}, err
		}
		if out.OverflowComplex(c) {
			return reflect.Value{}, fmt.Errorf("%w: %v overflows %s", ErrInvalidValue, c, t)
		}
		out.SetComplex(c)
	default:
		return reflect.Value{}, fmt.Errorf("%w: %s is not a scalar", ErrUnsupportedType, t)
	}
	return out, nil
}

func invalidScalar(data any, t reflect.Type) error {
	return fmt.Errorf("%w: cannot decode %T into %s", ErrInvalidValue, data, t)
}

func toInt64(data any) (int64, error) {
	v := reflect.ValueOf(data)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if v.Uint() > math.MaxInt64 {
			return 0, fmt.Errorf("%w: %d overflows int64", ErrInvalidValue, v.Uint())
		}
		return int64(v.Uint()), nil
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, fmt.Errorf("%w: %g is not an integer", ErrInvalidValue, f)
		}
		return int64(f), nil
	}
	return 0, fmt.Errorf("%w: %T is not an integer", ErrInvalidValue, data)
}

func toUint64(data any) (uint64, error) {
	v := reflect.ValueOf(data)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if v.Int() < 0 {
			return 0, fmt.Errorf("%w: %d is negative", ErrInvalidValue, v.Int())
		}
		return uint64(v.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint(), nil
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if f != math.Trunc(f) || f < 0 || f >= math.MaxUint64 {
			return 0, fmt.Errorf("%w: %g is not an unsigned integer", ErrInvalidValue, f)
		}
		return uint64(f), nil
	}
	return 0, fmt.Errorf("%w: %T is not an unsigned integer", ErrInvalidValue, data)
}

func toFloat64(data any) (float64, error) {
	v := reflect.ValueOf(data)
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return v.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(v.Uint()), nil
	}
	return 0, fmt.Errorf("%w: %T is not a number", ErrInvalidValue, data)
}

func toComplex128(data any) (complex128, error) {
	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Complex64 || v.Kind() == reflect.Complex128 {
		return v.Complex(), nil
	}
	f, err := toFloat64(data)
	if err != nil {
		return 0, err
	}
	return complex(f, 0), nil
}

// encodeText encodes a TextMarshaler as its text form.
func encodeText(v reflect.Value) (any, error) {
	m, ok := addressable(v).Interface().(encoding.TextMarshaler)
	if !ok {
		m, ok = addressable(v).Addr().Interface().(encoding.TextMarshaler)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a text marshaler", ErrUnsupportedType, v.Type())
	}
	text, err := m.MarshalText()
	if err != nil {
		return nil, err
	}
	return string(text), nil
}

// decodeText decodes a text form through the target's UnmarshalText.
func decodeText(data any, t reflect.Type) (reflect.Value, error) {
	var text []byte
	switch d := data.(type) {
	case nil:
		return reflect.Zero(t), nil
	case string:
		text = []byte(d)
	case []byte:
		text = d
	default:
		return reflect.Value{}, invalidScalar(data, t)
	}
	p := reflect.New(t)
	if err := p.Interface().(encoding.TextUnmarshaler).UnmarshalText(text); err != nil {
		return reflect.Value{}, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	return p.Elem(), nil
}

// encodeBytes copies a byte slice of any named type to []byte.
func encodeBytes(v reflect.Value) (any, error) {
	if v.IsNil() {
		return nil, nil
	}
	out := make([]byte, v.Len())
	copy(out, v.Bytes())
	return out, nil
}

// decodeBytes accepts []byte or string data.
func decodeBytes(data any, t reflect.Type) (reflect.Value, error) {
	var b []byte
	switch d := data.(type) {
	case nil:
		return reflect.Zero(t), nil
	case []byte:
		b = make([]byte, len(d))
		copy(b, d)
	case string:
		b = []byte(d)
	default:
		return reflect.Value{}, invalidScalar(data, t)
	}
	return reflect.ValueOf(b).Convert(t), nil
}

// addressable returns v, or an addressable copy of it.
func addressable(v reflect.Value) reflect.Value {
	if v.CanAddr() {
		return v
	}
	c := reflect.New(v.Type()).Elem()
	c.Set(v)
	return c
}

// builtinTransformers returns the simple codecs for standard value types.
func builtinTransformers() map[reflect.Type]Transformer {
	out := make(map[reflect.Type]Transformer)
	for _, t := range []Transformer{timeTransformer{}, durationTransformer{}, uuidTransformer{}} {
		for _, typ := range t.SupportedTypes() {
			out[typ] = t
		}
	}
	return out
}

var (
	timeType     = reflect.TypeFor[time.Time]()
	durationType = reflect.TypeFor[time.Duration]()
	uuidType     = reflect.TypeFor[uuid.UUID]()
)

// timeTransformer stores time.Time as an RFC 3339 string with nanoseconds.
type timeTransformer struct{}

func (timeTransformer) SupportedTypes() []reflect.Type { return []reflect.Type{timeType} }

func (timeTransformer) Encode(_ *Recaster, v reflect.Value) (any, error) {
	return v.Interface().(time.Time).Format(time.RFC3339Nano), nil
}

func (timeTransformer) Decode(_ *Recaster, _ reflect.Type, data any) (reflect.Value, error) {
	switch d := data.(type) {
	case nil:
		return reflect.ValueOf(time.Time{}), nil
	case time.Time:
		return reflect.ValueOf(d), nil
	case string:
		t, err := time.Parse(time.RFC3339Nano, d)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		return reflect.ValueOf(t), nil
	}
	return reflect.Value{}, invalidScalar(data, timeType)
}

// durationTransformer stores time.Duration in its String form.
type durationTransformer struct{}

func (durationTransformer) SupportedTypes() []reflect.Type { return []reflect.Type{durationType} }

func (durationTransformer) Encode(_ *Recaster, v reflect.Value) (any, error) {
	return time.Duration(v.Int()).String(), nil
}

func (durationTransformer) Decode(_ *Recaster, _ reflect.Type, data any) (reflect.Value, error) {
	switch d := data.(type) {
	case nil:
		return reflect.ValueOf(time.Duration(0)), nil
	case string:
		dur, err := time.ParseDuration(d)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		return reflect.ValueOf(dur), nil
	}
	n, err := toInt64(data)
	if err != nil {
		return reflect.Value{}, err
	}
	return reflect.ValueOf(time.Duration(n)), nil
}

// uuidTransformer stores uuid.UUID in its canonical string form.
type uuidTransformer struct{}

func (uuidTransformer) SupportedTypes() []reflect.Type { return []reflect.Type{uuidType} }

func (uuidTransformer) Encode(_ *Recaster, v reflect.Value) (any, error) {
	return v.Interface().(uuid.UUID).String(), nil
}

func (uuidTransformer) Decode(_ *Recaster, _ reflect.Type, data any) (reflect.Value, error) {
	switch d := data.(type) {
	case nil:
		return reflect.ValueOf(uuid.Nil), nil
	case string:
		id, err := uuid.Parse(d)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		return reflect.ValueOf(id), nil
	case []byte:
		id, err := uuid.FromBytes(d)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		return reflect.ValueOf(id), nil
	}
	return reflect.Value{}, invalidScalar(data, uuidType)
}

// encodeKey renders a mapping key as a string.
func encodeKey(k reflect.Value) (string, error) {
	if isTextType(k.Type()) {
		text, err := encodeText(k)
		if err != nil {
			return "", err
		}
		return text.(string), nil
	}
	switch k.Kind() {
	case reflect.String:
		return k.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(k.Uint(), 10), nil
	}
	return "", fmt.Errorf("%w: mapping key %s", ErrUnsupportedType, k.Type())
}

// decodeKey parses a string mapping key into a value of type t.
func decodeKey(s string, t reflect.Type) (reflect.Value, error) {
	if isTextType(t) {
		return decodeText(s, t)
	}
	out := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.String:
		out.SetString(s)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("%w: key %q: %v", ErrInvalidValue, s, err)
		}
		out.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, err := strconv.ParseUint(s, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("%w: key %q: %v", ErrInvalidValue, s, err)
		}
		out.SetUint(n)
	default:
		return reflect.Value{}, fmt.Errorf("%w: mapping key %s", ErrUnsupportedType, t)
	}
	return out, nil
}
