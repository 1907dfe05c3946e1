package recast

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRecaster(t *testing.T, opts ...Option) *Recaster {
	t.Helper()
	r, err := New(opts...)
	require.NoError(t, err)
	return r
}

func TestSequence_NilAndEmpty(t *testing.T) {
	r := newTestRecaster(t)

	data, err := r.encode(reflect.ValueOf([]int(nil)))
	require.NoError(t, err)
	assert.Nil(t, data)

	data, err = r.encode(reflect.ValueOf([]int{}))
	require.NoError(t, err)
	assert.Equal(t, []any{}, data)

	v, err := r.decode(nil, reflect.TypeFor[[]int]())
	require.NoError(t, err)
	assert.True(t, v.IsNil())

	v, err = r.decode([]any{}, reflect.TypeFor[[]int]())
	require.NoError(t, err)
	assert.False(t, v.IsNil())
	assert.Equal(t, 0, v.Len())
}

func TestSequence_Array(t *testing.T) {
	r := newTestRecaster(t)

	data, err := r.encode(reflect.ValueOf([3]uint8{1, 2, 3}))
	require.NoError(t, err)
	assert.Equal(t, []any{uint64(1), uint64(2), uint64(3)}, data)

	v, err := r.decode(data, reflect.TypeFor[[3]uint8]())
	require.NoError(t, err)
	assert.Equal(t, [3]uint8{1, 2, 3}, v.Interface())

	_, err = r.decode([]any{int64(1)}, reflect.TypeFor[[3]uint8]())
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestSequence_ElementErrorPath(t *testing.T) {
	r := newTestRecaster(t)

	_, err := r.decode([]any{int64(1), "two"}, reflect.TypeFor[[]int]())
	var fieldErr *FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "[1]", fieldErr.Field)
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestSequence_EncodedValueWrapper(t *testing.T) {
	r := newTestRecaster(t)

	m := NewMap()
	m.SetIdentifier("[]int")
	m.SetEncodedValue([]any{int64(4), int64(5)})

	v, err := r.decode(m, reflect.TypeFor[[]int]())
	require.NoError(t, err)
	assert.Equal(t, []int{4, 5}, v.Interface())
}

func TestSet_Sorted(t *testing.T) {
	r := newTestRecaster(t)

	data, err := r.encode(reflect.ValueOf(map[int]struct{}{10: {}, -2: {}, 3: {}}))
	require.NoError(t, err)
	assert.Equal(t, []any{int64(-2), int64(3), int64(10)}, data)

	v, err := r.decode(data, reflect.TypeFor[map[int]struct{}]())
	require.NoError(t, err)
	assert.Equal(t, map[int]struct{}{10: {}, -2: {}, 3: {}}, v.Interface())

	data, err = r.encode(reflect.ValueOf(map[string]struct{}(nil)))
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestMapping_SortedKeys(t *testing.T) {
	r := newTestRecaster(t)

	data, err := r.encode(reflect.ValueOf(map[int]string{10: "ten", 2: "two", -1: "neg"}))
	require.NoError(t, err)
	m, ok := data.(*Map)
	require.True(t, ok)
	assert.False(t, m.HasIdentifier(), "mappings carry no identifier")
	assert.Equal(t, []string{"-1", "2", "10"}, m.Keys())

	v, err := r.decode(m, reflect.TypeFor[map[int]string]())
	require.NoError(t, err)
	assert.Equal(t, map[int]string{10: "ten", 2: "two", -1: "neg"}, v.Interface())
}

func TestMapping_Errors(t *testing.T) {
	r := newTestRecaster(t)

	_, err := r.encode(reflect.ValueOf(map[float64]int{1.5: 1}))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	src := NewMap()
	src.Set("x", int64(1))
	_, err = r.decode(src, reflect.TypeFor[map[int]int]())
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = r.decode([]any{}, reflect.TypeFor[map[string]int]())
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestMapping_SkipsIdentifier(t *testing.T) {
	r := newTestRecaster(t)

	src := NewMap()
	src.SetIdentifier("ignored")
	src.Set("a", int64(1))

	v, err := r.decode(src, reflect.TypeFor[map[string]int]())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 1}, v.Interface())
}

func TestCompareValues(t *testing.T) {
	values := func(xs ...any) []reflect.Value {
		out := make([]reflect.Value, len(xs))
		for i, x := range xs {
			out[i] = reflect.ValueOf(x)
		}
		return out
	}
	tests := []struct {
		a, b any
		want int
	}{
		{int64(1), int64(2), -1},
		{uint8(9), uint8(3), 1},
		{2.5, 2.5, 0},
		{"b", "a", 1},
		{false, true, -1},
		{true, true, 0},
		{[2]int{1, 2}, [2]int{1, 3}, -1},
	}
	for _, tt := range tests {
		v := values(tt.a, tt.b)
		assert.Equal(t, tt.want, compareValues(v[0], v[1]), "%v vs %v", tt.a, tt.b)
	}
}
