package recast

import (
	"context"
	"reflect"
	"sync"
)

// classRegistry caches one CastedClass per struct type for the lifetime of
// its Recaster. It also remembers every type seen by fully-qualified name,
// which backs identifier resolution on decode.
type classRegistry struct {
	mu     sync.RWMutex
	byType map[reflect.Type]*CastedClass
	byName map[string]reflect.Type
}

func newClassRegistry() *classRegistry {
	return &classRegistry{
		byType: make(map[reflect.Type]*CastedClass),
		byName: make(map[string]reflect.Type),
	}
}

// get returns the cached class for t (pointers are dereferenced) or builds
// and caches it.
func (r *classRegistry) get(t reflect.Type) (*CastedClass, error) {
	t = indirectType(t)

	// Fast path: read-lock cache check
	r.mu.RLock()
	if cached, ok := r.byType[t]; ok {
		r.mu.RUnlock()
		return cached, nil
	}
	r.mu.RUnlock()

	// Slow path: build and cache with write-lock
	r.mu.Lock()

	// Double-check pattern
	if cached, ok := r.byType[t]; ok {
		r.mu.Unlock()
		return cached, nil
	}

	class, err := buildClass(t)
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}

	r.byType[t] = class
	if _, taken := r.byName[class.Name]; !taken {
		r.byName[class.Name] = t
	}
	r.mu.Unlock()

	emitClassCached(context.Background(), class.Name, len(class.fields))
	return class, nil
}

// isCasted reports whether t already has a cached class.
func (r *classRegistry) isCasted(t reflect.Type) bool {
	t = indirectType(t)
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byType[t]
	return ok
}

// remember records a type under its fully-qualified name, or its type string
// when it is unnamed.
func (r *classRegistry) remember(t reflect.Type) {
	if t == nil || t.Kind() == reflect.Interface {
		return
	}
	name := qualifiedName(t)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byName[name]; !taken {
		r.byName[name] = t
	}
}

// lookupName resolves a fully-qualified type name to a known type.
func (r *classRegistry) lookupName(name string) (reflect.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byName[name]
	return t, ok
}

// indirectType strips pointer levels.
func indirectType(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
