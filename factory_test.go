package recast

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type withDefaults struct {
	Retries int
	Tags    []string
}

func (w *withDefaults) Initialize() error {
	w.Retries = 3
	w.Tags = []string{"default"}
	return nil
}

type brokenInit struct{}

func (*brokenInit) Initialize() error { return errors.New("no config") }

type defaultList []int

func (d *defaultList) Initialize() error {
	*d = defaultList{7}
	return nil
}

func TestChooseStrategy(t *testing.T) {
	tests := []struct {
		typ  reflect.Type
		want strategy
	}{
		{reflect.TypeFor[withDefaults](), strategyInitializer},
		{reflect.TypeFor[defaultList](), strategyInitializer},
		{reflect.TypeFor[[]int](), strategyContainer},
		{reflect.TypeFor[map[string]int](), strategyContainer},
		{reflect.TypeFor[struct{ A int }](), strategyZero},
		{reflect.TypeFor[[2]int](), strategyZero},
		{reflect.TypeFor[int](), strategyZero},
		{reflect.TypeFor[any](), strategyNone},
		{reflect.TypeFor[func()](), strategyNone},
		{reflect.TypeFor[chan int](), strategyNone},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, chooseStrategy(tt.typ), tt.typ.String())
	}
}

func TestObjectFactory_Create(t *testing.T) {
	f := newObjectFactory()

	v, err := f.create(reflect.TypeFor[withDefaults](), 0)
	require.NoError(t, err)
	assert.True(t, v.CanAddr())
	assert.Equal(t, withDefaults{Retries: 3, Tags: []string{"default"}}, v.Interface())

	v, err = f.create(reflect.TypeFor[[]string](), 3)
	require.NoError(t, err)
	assert.Equal(t, 3, v.Len())
	assert.Equal(t, 3, v.Cap())

	v, err = f.create(reflect.TypeFor[map[string]int](), 4)
	require.NoError(t, err)
	assert.False(t, v.IsNil())
	assert.Equal(t, 0, v.Len())

	v, err = f.create(reflect.TypeFor[struct{ A int }](), 0)
	require.NoError(t, err)
	assert.True(t, v.CanSet())
	assert.True(t, v.IsZero())
}

func TestObjectFactory_Errors(t *testing.T) {
	f := newObjectFactory()

	_, err := f.create(reflect.TypeFor[any](), 0)
	assert.ErrorIs(t, err, ErrNoConstructor)

	_, err = f.create(reflect.TypeFor[brokenInit](), 0)
	assert.ErrorIs(t, err, ErrNoConstructor)
	assert.Contains(t, err.Error(), "no config")
}

func TestObjectFactory_CachesStrategy(t *testing.T) {
	f := newObjectFactory()
	typ := reflect.TypeFor[withDefaults]()

	_, err := f.create(typ, 0)
	require.NoError(t, err)

	f.mu.RLock()
	s, ok := f.strategies[typ]
	f.mu.RUnlock()
	assert.True(t, ok)
	assert.Equal(t, strategyInitializer, s)
}

func TestDefaultConcrete(t *testing.T) {
	tagged := NewMap()
	tagged.SetIdentifier("Pt")

	tests := []struct {
		name string
		data any
		want reflect.Type
		ok   bool
	}{
		{"nil", nil, nil, false},
		{"sequence", []any{int64(1)}, anySliceType, true},
		{"mapping", NewMap(), anyMapType, true},
		{"object", tagged, nil, false},
		{"scalar", int64(1), reflect.TypeFor[int64](), true},
		{"bytes", []byte("x"), reflect.TypeFor[[]byte](), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := defaultConcrete(tt.data)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecode_InitializerSlice(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	got, err := r.DecodeValue([]any{int64(1), int64(2)}, reflect.TypeFor[defaultList]())
	require.NoError(t, err)
	assert.Equal(t, defaultList{1, 2}, got.Interface(), "decoded elements replace the initialized ones")
}
