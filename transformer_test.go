package recast

import (
	"net/netip"
	"reflect"
	"testing"
	"time"
	"unsafe"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type level int

func (l level) MarshalText() ([]byte, error) {
	return []byte([]string{"low", "high"}[l]), nil
}

func (l *level) UnmarshalText(text []byte) error {
	if string(text) == "high" {
		*l = 1
	} else {
		*l = 0
	}
	return nil
}

type onlyMarshals int

func (onlyMarshals) MarshalText() ([]byte, error) { return []byte("x"), nil }

type blob []byte

type celsius float32

type stubTransformer struct {
	types []reflect.Type
}

func (s stubTransformer) SupportedTypes() []reflect.Type { return s.types }

func (stubTransformer) Encode(_ *Recaster, _ reflect.Value) (any, error) {
	return "stub", nil
}

func (stubTransformer) Decode(_ *Recaster, target reflect.Type, _ any) (reflect.Value, error) {
	return reflect.Zero(target), nil
}

func TestCategorize(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	tests := []struct {
		typ  reflect.Type
		want category
	}{
		{reflect.TypeFor[time.Time](), categoryBuiltin},
		{reflect.TypeFor[time.Duration](), categoryBuiltin},
		{reflect.TypeFor[uuid.UUID](), categoryBuiltin},
		{reflect.TypeFor[level](), categoryText},
		{reflect.TypeFor[netip.Addr](), categoryText},
		{reflect.TypeFor[onlyMarshals](), categorySimple},
		{reflect.TypeFor[[]byte](), categoryBytes},
		{reflect.TypeFor[blob](), categoryBytes},
		{reflect.TypeFor[celsius](), categorySimple},
		{reflect.TypeFor[string](), categorySimple},
		{reflect.TypeFor[complex64](), categorySimple},
		{reflect.TypeFor[*int](), categoryPointer},
		{reflect.TypeFor[*level](), categoryPointer},
		{reflect.TypeFor[any](), categoryInterface},
		{reflect.TypeFor[[]int](), categorySequence},
		{reflect.TypeFor[[4]byte](), categorySequence},
		{reflect.TypeFor[map[int]struct{}](), categorySet},
		{reflect.TypeFor[map[string]int](), categoryMapping},
		{reflect.TypeFor[struct{ A int }](), categoryObject},
		{reflect.TypeFor[func()](), categoryUnsupported},
		{reflect.TypeFor[chan int](), categoryUnsupported},
		{reflect.TypeFor[unsafe.Pointer](), categoryUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			got, _ := r.categorize(tt.typ)
			assert.Equal(t, tt.want, got, "%s != %s", got, tt.want)
		})
	}
}

func TestCategorize_CustomShadowsBuiltin(t *testing.T) {
	r, err := New(WithTransformers(stubTransformer{types: []reflect.Type{timeType, reflect.TypeFor[level]()}}))
	require.NoError(t, err)

	cat, tr := r.categorize(timeType)
	assert.Equal(t, categoryCustom, cat)
	assert.IsType(t, stubTransformer{}, tr)

	cat, _ = r.categorize(reflect.TypeFor[level]())
	assert.Equal(t, categoryCustom, cat)

	cat, _ = r.categorize(reflect.TypeFor[*level]())
	assert.Equal(t, categoryPointer, cat, "exact type only")
}

func TestTransformerTable_Add(t *testing.T) {
	str := reflect.TypeFor[string]()
	num := reflect.TypeFor[int]()

	tests := []struct {
		name string
		tr   Transformer
		want error
	}{
		{"nil transformer", nil, ErrIllegalTransformer},
		{"no types", stubTransformer{}, ErrIllegalTransformer},
		{"nil type", stubTransformer{types: []reflect.Type{str, nil}}, ErrIllegalTransformer},
		{"repeated type", stubTransformer{types: []reflect.Type{num, num}}, ErrDuplicateTransformer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := newTransformerTable()
			assert.ErrorIs(t, table.add(tt.tr), tt.want)
			_, _, ok := table.lookup(str)
			assert.False(t, ok, "failed registration leaves the table unchanged")
		})
	}
}

func TestTransformerTable_Atomic(t *testing.T) {
	table := newTransformerTable()
	str := reflect.TypeFor[string]()
	num := reflect.TypeFor[int]()

	require.NoError(t, table.add(stubTransformer{types: []reflect.Type{str}}))

	err := table.add(stubTransformer{types: []reflect.Type{num, str}})
	assert.ErrorIs(t, err, ErrDuplicateTransformer)

	_, _, ok := table.lookup(num)
	assert.False(t, ok, "no type of a rejected transformer is registered")

	tr, cat, ok := table.lookup(str)
	assert.True(t, ok)
	assert.Equal(t, categoryCustom, cat)
	assert.NotNil(t, tr)
}

func TestCategoryString(t *testing.T) {
	assert.Equal(t, "custom", categoryCustom.String())
	assert.Equal(t, "object", categoryObject.String())
	assert.Equal(t, "unsupported", categoryUnsupported.String())
	assert.Equal(t, "unsupported", category(99).String())
}
