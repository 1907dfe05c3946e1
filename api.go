// Package recast converts Go values into ordered, string-keyed value trees
// and back, preserving enough type information to rebuild polymorphic object
// graphs.
//
// The output is a *Map: plain data a storage layer can persist however it
// likes. Every object map carries the identifier of the type that produced
// it under the reserved "__recast" key, so an interface field holding a
// Circle decodes back to a Circle.
//
// # Basic Usage
//
//	type Point struct {
//	    X int `recast:"x"`
//	    Y int `recast:"y"`
//	}
//
//	r, _ := recast.New(recast.WithTypes(Point{}))
//
//	m, _ := r.ToMap(Point{X: 3, Y: 4})
//	// {__recast: "example.com/geo.Point", x: 3, y: 4}
//
//	p, _ := recast.Decode[Point](r, m)
//
// # Tag Syntax
//
// Stored keys default to the Go field name. The recast tag renames or skips:
//
//	Name  string `recast:"name"`           - store under "name"
//	Notes string `recast:"notes,omitempty"` - skip when zero
//	Cache []byte `recast:"-"`               - never stored
//
// # Aliases
//
// Types can declare a short, stable identifier used in place of their
// fully-qualified name. Maps stored under an alias survive the type being
// renamed or moved:
//
//	func (Circle) RecastAlias() string { return "circle" }
//
// or, for types that cannot carry a method:
//
//	type Square struct {
//	    _    recast.Alias `alias:"square"`
//	    Side float64
//	}
//
// # Value Transformers
//
// Values are encoded by the first matching strategy:
//
//   - Custom Transformer registered for the exact type
//   - Built-in codec: time.Time, time.Duration, uuid.UUID (strings)
//   - encoding.TextMarshaler / TextUnmarshaler pairs (text)
//   - []byte (copied)
//   - Scalars: bool, ints (int64), uints (uint64), floats (float64), complex, string
//   - Pointers (followed), interfaces (identifier-bearing)
//   - Slices and arrays ([]any), sets map[K]struct{} (sorted []any)
//   - Maps (nested *Map with sorted keys, no identifier)
//   - Structs (nested *Map with identifier)
//
// # Override Interfaces
//
// Types can bypass reflection by implementing:
//
//   - FieldEncoder: write fields into the map directly
//   - FieldDecoder: populate fields from the map directly
//
// # Interface Slots
//
// An interface slot records the identifier of its dynamic type, not whether
// that value was a pointer. On decode the value is stored as is when it
// satisfies the interface and as a pointer otherwise: a *Circle held in a
// Shape slot decodes as Circle, while *Polygon, whose methods are on the
// pointer, decodes as *Polygon.
//
// Cyclic object graphs are not supported.
package recast

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/zoobzio/sentinel"
)

// Recaster owns a type registry, an alias registry, a transformer table and
// an object factory. It is safe for concurrent use; registration is expected
// at startup but may happen at any time.
type Recaster struct {
	classes      *classRegistry
	aliases      *aliasRegistry
	transformers *transformerTable
	factory      *objectFactory
}

// Option configures a Recaster.
type Option func(*config)

type config struct {
	types        []any
	aliases      []any
	transformers []Transformer
}

// WithTypes registers types eagerly, as Map does.
func WithTypes(types ...any) Option {
	return func(c *config) {
		c.types = append(c.types, types...)
	}
}

// WithAliases scans alias search roots, as RegisterAliases does.
func WithAliases(roots ...any) Option {
	return func(c *config) {
		c.aliases = append(c.aliases, roots...)
	}
}

// WithTransformers registers custom transformers, as AddTransformer does.
func WithTransformers(ts ...Transformer) Option {
	return func(c *config) {
		c.transformers = append(c.transformers, ts...)
	}
}

// New creates a Recaster. Transformers are registered first, then aliases,
// then types; the first failure is returned.
func New(opts ...Option) (*Recaster, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	r := &Recaster{
		classes:      newClassRegistry(),
		aliases:      newAliasRegistry(),
		transformers: newTransformerTable(),
		factory:      newObjectFactory(),
	}
	for _, t := range basicTypes {
		r.classes.remember(t)
	}

	for _, t := range cfg.transformers {
		if err := r.AddTransformer(t); err != nil {
			return nil, err
		}
	}
	if err := r.RegisterAliases(cfg.aliases...); err != nil {
		return nil, err
	}
	if err := r.Map(cfg.types...); err != nil {
		return nil, err
	}
	return r, nil
}

// basicTypes are resolvable by name without registration.
var basicTypes = []reflect.Type{
	reflect.TypeFor[bool](), reflect.TypeFor[string](),
	reflect.TypeFor[int](), reflect.TypeFor[int8](), reflect.TypeFor[int16](),
	reflect.TypeFor[int32](), reflect.TypeFor[int64](),
	reflect.TypeFor[uint](), reflect.TypeFor[uint8](), reflect.TypeFor[uint16](),
	reflect.TypeFor[uint32](), reflect.TypeFor[uint64](), reflect.TypeFor[uintptr](),
	reflect.TypeFor[float32](), reflect.TypeFor[float64](),
	reflect.TypeFor[complex64](), reflect.TypeFor[complex128](),
	reflect.TypeFor[[]byte](), anySliceType, anyMapType,
	timeType, durationType, uuidType,
}

// Map registers types eagerly: each struct type reachable from the given
// values or reflect.Types is inspected and cached, and marker aliases along
// the way are bound. Registering a type twice is a no-op.
func (r *Recaster) Map(types ...any) error {
	seen := make(map[reflect.Type]bool)
	for _, item := range types {
		t := typeOf(item)
		if t == nil {
			continue
		}
		if err := r.cast(t, seen); err != nil {
			emitRegistrationError(context.Background(), err)
			return err
		}
	}
	return nil
}

// cast registers t and every type reachable from it.
func (r *Recaster) cast(t reflect.Type, seen map[reflect.Type]bool) error {
	if seen[t] {
		return nil
	}
	seen[t] = true

	switch t.Kind() {
	case reflect.Interface:
		return nil
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return newConfigError(ErrUnsupportedType, t, "")
	case reflect.Pointer:
		return r.cast(t.Elem(), seen)
	}

	if _, err := r.identifierOf(t); err != nil {
		return err
	}
	cat, _ := r.categorize(t)
	switch cat {
	case categorySequence:
		return r.cast(t.Elem(), seen)
	case categorySet:
		return r.cast(t.Key(), seen)
	case categoryMapping:
		if err := r.cast(t.Key(), seen); err != nil {
			return err
		}
		return r.cast(t.Elem(), seen)
	case categoryObject:
		class, err := r.classes.get(t)
		if err != nil {
			return err
		}
		for _, f := range class.fields {
			if err := r.cast(f.Type, seen); err != nil {
				return err
			}
		}
	}
	return nil
}

// Register registers T, priming sentinel's metadata cache for struct types.
func Register[T any](r *Recaster) error {
	t := reflect.TypeFor[T]()
	if t.Kind() == reflect.Struct {
		sentinel.Scan[T]()
	}
	return r.Map(t)
}

// AddTransformer registers a custom transformer for each of its supported
// types. It fails without registering anything when the transformer
// declares no types or a type that already has a custom transformer.
func (r *Recaster) AddTransformer(t Transformer) error {
	if err := r.transformers.add(t); err != nil {
		emitRegistrationError(context.Background(), err)
		return err
	}
	return nil
}

// RegisterAliases binds the alias of every marker carrier reachable from
// roots. A root is a template value, a reflect.Type, a []any of roots or an
// AliasSource.
func (r *Recaster) RegisterAliases(roots ...any) error {
	if err := r.aliases.scan(roots...); err != nil {
		emitRegistrationError(context.Background(), err)
		return err
	}
	return nil
}

// RegisterAlias binds name to the type of template, which needs no marker.
func (r *Recaster) RegisterAlias(name string, template any) error {
	if err := r.aliases.bind(name, typeOf(template)); err != nil {
		emitRegistrationError(context.Background(), err)
		return err
	}
	return nil
}

// ToMap encodes entity. A nil entity, including a typed nil pointer,
// yields a nil map. Structs produce their fields; any other value is held
// in the encoded-value slot.
func (r *Recaster) ToMap(entity any) (m *Map, err error) {
	v := reflect.ValueOf(entity)
	for v.IsValid() && v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, nil
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return nil, nil
	}

	start := time.Now()
	defer func() {
		emitEncodeComplete(context.Background(), qualifiedName(v.Type()), m.Identifier(), time.Since(start), err)
	}()

	if cat, _ := r.categorize(v.Type()); cat == categoryObject {
		return r.encodeObject(v)
	}

	data, err := r.encode(v)
	if err != nil {
		return nil, err
	}
	id, err := r.identifierOf(v.Type())
	if err != nil {
		return nil, err
	}
	m = NewMap()
	m.SetIdentifier(id)
	m.SetEncodedValue(data)
	return m, nil
}

// FromMap decodes m. With a nil target the identifier alone decides the
// type; otherwise the identified type must be assignable to target, and a
// map without identifier is decoded structurally into target. A pointer
// target yields a pointer with the same number of levels, so **T yields
// **T. A nil map yields nil.
func (r *Recaster) FromMap(m *Map, target reflect.Type) (result any, err error) {
	if m == nil {
		return nil, nil
	}

	start := time.Now()
	var concrete reflect.Type
	defer func() {
		name := ""
		if concrete != nil {
			name = qualifiedName(concrete)
		}
		emitDecodeComplete(context.Background(), name, m.Identifier(), time.Since(start), err)
	}()

	base := indirectType(target)
	switch {
	case m.HasIdentifier():
		concrete, err = r.resolveIdentifier(m.Identifier(), base)
		if err != nil {
			return nil, err
		}
		if base != nil && !fits(concrete, base) {
			return nil, newTypeError(ErrTypeMismatch, m.Identifier(), target)
		}
	case base == nil:
		return nil, newTypeError(ErrMissingIdentifier, "", nil)
	case base.Kind() == reflect.Interface:
		val, err := r.decodePolymorphic(m, base)
		if err != nil {
			return nil, err
		}
		if val.IsNil() {
			return nil, nil
		}
		concrete = val.Elem().Type()
		return val.Interface(), nil
	default:
		concrete = base
	}

	var val reflect.Value
	if m.ContainsEncodedValue() {
		val, err = r.decode(m.EncodedValue(), concrete)
	} else {
		val, err = r.decode(m, concrete)
	}
	if err != nil {
		return nil, err
	}

	if target != nil && target.Kind() == reflect.Pointer && base == concrete {
		return pointerTo(val, target).Interface(), nil
	}
	if base != nil && base.Kind() == reflect.Interface {
		boxed, err := fitInterface(val, base, m.Identifier())
		if err != nil {
			return nil, err
		}
		return boxed.Interface(), nil
	}
	return val.Interface(), nil
}

// pointerTo boxes val in as many pointer levels as target has.
func pointerTo(val reflect.Value, target reflect.Type) reflect.Value {
	if target.Kind() != reflect.Pointer {
		return val
	}
	inner := pointerTo(val, target.Elem())
	p := reflect.New(inner.Type())
	p.Elem().Set(inner)
	return p
}

// Decode is FromMap for a static target type.
func Decode[T any](r *Recaster, m *Map) (T, error) {
	var zero T
	out, err := r.FromMap(m, reflect.TypeFor[T]())
	if err != nil || out == nil {
		return zero, err
	}
	typed, ok := out.(T)
	if !ok {
		return zero, newTypeError(ErrTypeMismatch, m.Identifier(), reflect.TypeFor[T]())
	}
	return typed, nil
}

// EncodeValue encodes v according to its static type. Transformers use it
// to encode nested values.
func (r *Recaster) EncodeValue(v reflect.Value) (any, error) {
	return r.encode(v)
}

// DecodeValue decodes data into a value of type t. Transformers use it to
// decode nested values.
func (r *Recaster) DecodeValue(data any, t reflect.Type) (reflect.Value, error) {
	if t == nil {
		return reflect.Value{}, newTypeError(ErrMissingIdentifier, "", nil)
	}
	return r.decode(data, t)
}

// IsCasted reports whether the type of objectOrType has a cached class.
func (r *Recaster) IsCasted(objectOrType any) bool {
	t := typeOf(objectOrType)
	return t != nil && r.classes.isCasted(t)
}

// CastedClass returns the cached class of a struct type, building it on
// first access.
func (r *Recaster) CastedClass(objectOrType any) (*CastedClass, error) {
	t := typeOf(objectOrType)
	if t == nil {
		return nil, newConfigError(ErrUnsupportedType, nil, "")
	}
	if _, err := r.identifierOf(t); err != nil {
		return nil, err
	}
	return r.classes.get(t)
}

// Aliases returns a snapshot of the alias registry, sorted by alias.
func (r *Recaster) Aliases() []AliasEntry {
	return r.aliases.entries()
}

// AliasOf returns the alias bound to the type of objectOrType.
func (r *Recaster) AliasOf(objectOrType any) (string, bool) {
	t := typeOf(objectOrType)
	if t == nil {
		return "", false
	}
	return r.aliases.aliasOf(t)
}

// Identifier returns the identifier written for the type of objectOrType.
func (r *Recaster) Identifier(objectOrType any) (string, error) {
	t := typeOf(objectOrType)
	if t == nil {
		return "", fmt.Errorf("%w: nil type", ErrUnsupportedType)
	}
	return r.identifierOf(t)
}

// typeOf accepts a reflect.Type or a template value.
func typeOf(item any) reflect.Type {
	if t, ok := item.(reflect.Type); ok {
		return t
	}
	return reflect.TypeOf(item)
}

// fits reports whether a value of type concrete can be returned for base.
func fits(concrete, base reflect.Type) bool {
	if base.Kind() == reflect.Interface {
		return concrete.Implements(base) || reflect.PointerTo(concrete).Implements(base)
	}
	return concrete == base || concrete.AssignableTo(base)
}
