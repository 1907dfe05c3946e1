package recast

import (
	"context"
	"reflect"
	"sort"
	"strings"
	"sync"
)

// Aliaser is the alias marker implemented by a type that wants a short,
// stable identifier in place of its fully-qualified name.
//
//	func (Point) RecastAlias() string { return "Pt" }
type Aliaser interface {
	RecastAlias() string
}

// Alias is the alias marker as a blank field, for types that cannot carry a method:
//
//	type Point struct {
//	    _ recast.Alias `alias:"Pt"`
//	    X, Y int
//	}
type Alias struct{}

// AliasSource groups the marshallable types of a package so they can be
// registered as one search root:
//
//	type registry struct{}
//	func (registry) RecastTypes() []any { return []any{Circle{}, Square{}} }
type AliasSource interface {
	RecastTypes() []any
}

// AliasEntry is a single alias/type association in a registry snapshot.
type AliasEntry struct {
	Alias string
	Type  reflect.Type
}

const aliasTag = "alias"

var (
	aliaserType   = reflect.TypeFor[Aliaser]()
	aliasMarkType = reflect.TypeFor[Alias]()
)

// aliasRegistry maps aliases to types and back. It is additive: entries are
// never removed.
type aliasRegistry struct {
	mu     sync.RWMutex
	byName map[string]reflect.Type
	byType map[reflect.Type]string
}

func newAliasRegistry() *aliasRegistry {
	return &aliasRegistry{
		byName: make(map[string]reflect.Type),
		byType: make(map[reflect.Type]string),
	}
}

// bind records alias <-> t. Re-binding the same pair is a no-op.
func (a *aliasRegistry) bind(alias string, t reflect.Type) error {
	t = indirectType(t)
	if alias == "" || t == nil {
		return newConfigError(ErrAliasConflict, t, alias)
	}

	a.mu.Lock()
	if bound, ok := a.byName[alias]; ok {
		a.mu.Unlock()
		if bound == t {
			return nil
		}
		return newConfigError(ErrAliasConflict, t, alias)
	}
	if existing, ok := a.byType[t]; ok {
		a.mu.Unlock()
		return newConfigError(ErrAliasConflict, t, existing)
	}
	a.byName[alias] = t
	a.byType[t] = alias
	a.mu.Unlock()

	emitAliasRegistered(context.Background(), alias, qualifiedName(t))
	return nil
}

// register binds t under its marker alias. It reports false when t carries no marker.
func (a *aliasRegistry) register(t reflect.Type) (bool, error) {
	alias, ok := markerAlias(t)
	if !ok {
		return false, nil
	}
	return true, a.bind(alias, t)
}

// scan registers every marker carrier reachable from roots.
func (a *aliasRegistry) scan(roots ...any) error {
	seen := make(map[reflect.Type]bool)
	for _, root := range roots {
		if err := a.scanRoot(root, seen); err != nil {
			return err
		}
	}
	return nil
}

func (a *aliasRegistry) scanRoot(root any, seen map[reflect.Type]bool) error {
	switch r := root.(type) {
	case nil:
		return nil
	case reflect.Type:
		return a.walk(r, seen)
	case []any:
		for _, item := range r {
			if err := a.scanRoot(item, seen); err != nil {
				return err
			}
		}
		return nil
	case AliasSource:
		if err := a.walk(reflect.TypeOf(r), seen); err != nil {
			return err
		}
		for _, item := range r.RecastTypes() {
			if err := a.scanRoot(item, seen); err != nil {
				return err
			}
		}
		return nil
	}
	return a.walk(reflect.TypeOf(root), seen)
}

// walk registers t and every type reachable through its fields and elements.
func (a *aliasRegistry) walk(t reflect.Type, seen map[reflect.Type]bool) error {
	if t == nil || seen[t] {
		return nil
	}
	seen[t] = true

	if _, err := a.register(t); err != nil {
		return err
	}

	switch t.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Array:
		return a.walk(t.Elem(), seen)
	case reflect.Map:
		if err := a.walk(t.Key(), seen); err != nil {
			return err
		}
		return a.walk(t.Elem(), seen)
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if err := a.walk(t.Field(i).Type, seen); err != nil {
				return err
			}
		}
	}
	return nil
}

// resolve returns the type bound to alias.
func (a *aliasRegistry) resolve(alias string) (reflect.Type, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	t, ok := a.byName[alias]
	return t, ok
}

// aliasOf returns the alias bound to t.
func (a *aliasRegistry) aliasOf(t reflect.Type) (string, bool) {
	t = indirectType(t)
	a.mu.RLock()
	defer a.mu.RUnlock()
	alias, ok := a.byType[t]
	return alias, ok
}

// entries returns a snapshot sorted by alias.
func (a *aliasRegistry) entries() []AliasEntry {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]AliasEntry, 0, len(a.byName))
	for alias, t := range a.byName {
		out = append(out, AliasEntry{Alias: alias, Type: t})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Alias < out[j].Alias })
	return out
}

// markerAlias reads the alias a type declares through Aliaser or an Alias field.
func markerAlias(t reflect.Type) (string, bool) {
	if t == nil || t.Kind() == reflect.Interface {
		return "", false
	}
	t = indirectType(t)

	if t.Kind() == reflect.Struct {
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			if sf.Type != aliasMarkType {
				continue
			}
			if alias := strings.TrimSpace(sf.Tag.Get(aliasTag)); alias != "" {
				return alias, true
			}
		}
	}

	var v reflect.Value
	switch {
	case t.Implements(aliaserType):
		v = reflect.Zero(t)
	case reflect.PointerTo(t).Implements(aliaserType):
		v = reflect.New(t)
	default:
		return "", false
	}
	alias := strings.TrimSpace(v.Interface().(Aliaser).RecastAlias())
	return alias, alias != ""
}
