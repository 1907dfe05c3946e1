package recast

import (
	"fmt"
	"reflect"
	"sync"
)

// Initializer is implemented by types that need defaults applied before
// their fields are populated on decode. Initialize is called on a freshly
// allocated zero value; fields present in the map overwrite what it sets.
type Initializer interface {
	Initialize() error
}

var (
	initializerType = reflect.TypeFor[Initializer]()
	anySliceType    = reflect.TypeFor[[]any]()
	anyMapType      = reflect.TypeFor[map[string]any]()
)

// strategy is how the factory builds an empty instance of a type.
type strategy int

const (
	strategyNone strategy = iota
	strategyInitializer
	strategyContainer
	strategyZero
)

// objectFactory builds empty instances to populate during decode. The
// strategy for each type is chosen once and cached.
type objectFactory struct {
	mu         sync.RWMutex
	strategies map[reflect.Type]strategy
}

func newObjectFactory() *objectFactory {
	return &objectFactory{strategies: make(map[reflect.Type]strategy)}
}

// create returns an addressable empty value of type t. Containers are
// allocated with room for size elements; slices are created with that length.
func (f *objectFactory) create(t reflect.Type, size int) (reflect.Value, error) {
	switch f.strategyFor(t) {
	case strategyInitializer:
		p := reflect.New(t)
		if err := p.Interface().(Initializer).Initialize(); err != nil {
			return reflect.Value{}, fmt.Errorf("%w: initialize %s: %v", ErrNoConstructor, t, err)
		}
		return p.Elem(), nil
	case strategyContainer:
		out := reflect.New(t).Elem()
		switch t.Kind() {
		case reflect.Slice:
			out.Set(reflect.MakeSlice(t, size, size))
		case reflect.Map:
			out.Set(reflect.MakeMapWithSize(t, size))
		}
		return out, nil
	case strategyZero:
		return reflect.New(t).Elem(), nil
	}
	return reflect.Value{}, newTypeError(ErrNoConstructor, "", t)
}

func (f *objectFactory) strategyFor(t reflect.Type) strategy {
	f.mu.RLock()
	s, ok := f.strategies[t]
	f.mu.RUnlock()
	if ok {
		return s
	}

	s = chooseStrategy(t)
	f.mu.Lock()
	f.strategies[t] = s
	f.mu.Unlock()
	return s
}

func chooseStrategy(t reflect.Type) strategy {
	switch t.Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer, reflect.Interface, reflect.Invalid:
		return strategyNone
	}
	if reflect.PointerTo(t).Implements(initializerType) {
		return strategyInitializer
	}
	switch t.Kind() {
	case reflect.Slice, reflect.Map:
		return strategyContainer
	}
	return strategyZero
}

// defaultConcrete picks the concrete type an empty interface slot receives
// for data that carries no identifier: sequences become []any, mappings
// map[string]any and scalars keep their canonical type.
func defaultConcrete(data any) (reflect.Type, bool) {
	switch d := data.(type) {
	case nil:
		return nil, false
	case []any:
		return anySliceType, true
	case *Map:
		if d.HasIdentifier() {
			return nil, false
		}
		return anyMapType, true
	}
	return reflect.TypeOf(data), true
}
