package recast

import (
	"fmt"
	"reflect"
)

// encode converts v to Map data according to its static type.
func (r *Recaster) encode(v reflect.Value) (any, error) {
	if !v.IsValid() {
		return nil, nil
	}

	cat, tr := r.categorize(v.Type())
	switch cat {
	case categoryCustom, categoryBuiltin:
		return tr.Encode(r, v)
	case categoryText:
		return encodeText(v)
	case categoryBytes:
		return encodeBytes(v)
	case categorySimple:
		return encodeSimple(v)
	case categoryPointer:
		if v.IsNil() {
			return nil, nil
		}
		return r.encode(v.Elem())
	case categoryInterface:
		if v.IsNil() {
			return nil, nil
		}
		return r.encodePolymorphic(v.Elem())
	case categorySequence:
		return r.encodeSequence(v)
	case categorySet:
		return r.encodeSet(v)
	case categoryMapping:
		return r.encodeMapping(v)
	case categoryObject:
		return r.encodeObject(v)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, v.Type())
}

// decode converts Map data to a value of exactly type t.
func (r *Recaster) decode(data any, t reflect.Type) (reflect.Value, error) {
	cat, tr := r.categorize(t)

	var (
		out reflect.Value
		err error
	)
	switch cat {
	case categoryCustom, categoryBuiltin:
		out, err = tr.Decode(r, t, data)
	case categoryText:
		out, err = decodeText(data, t)
	case categoryBytes:
		out, err = decodeBytes(data, t)
	case categorySimple:
		out, err = decodeSimple(data, t)
	case categoryPointer:
		out, err = r.decodePointer(data, t)
	case categoryInterface:
		out, err = r.decodePolymorphic(data, t)
	case categorySequence:
		out, err = r.decodeSequence(data, t)
	case categorySet:
		out, err = r.decodeSet(data, t)
	case categoryMapping:
		out, err = r.decodeMapping(data, t)
	case categoryObject:
		out, err = r.decodeObject(data, t)
	default:
		return reflect.Value{}, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
	if err != nil {
		return reflect.Value{}, err
	}

	dst := reflect.New(t).Elem()
	if err := assign(dst, out); err != nil {
		return reflect.Value{}, err
	}
	return dst, nil
}

func (r *Recaster) decodePointer(data any, t reflect.Type) (reflect.Value, error) {
	if data == nil {
		return reflect.Zero(t), nil
	}
	elem, err := r.decode(data, t.Elem())
	if err != nil {
		return reflect.Value{}, err
	}
	p := reflect.New(t.Elem())
	p.Elem().Set(elem)
	return p, nil
}

// encodeObject encodes a struct as a Map carrying its identifier.
func (r *Recaster) encodeObject(v reflect.Value) (*Map, error) {
	t := v.Type()
	id, err := r.identifierOf(t)
	if err != nil {
		return nil, err
	}

	m := NewMap()
	m.SetIdentifier(id)

	if enc, ok := fieldEncoder(v); ok {
		if err := enc.EncodeFields(r, m); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrFieldConversion, typeLabel(t), err)
		}
		m.SetIdentifier(id)
		return m, nil
	}

	class, err := r.classes.get(t)
	if err != nil {
		return nil, err
	}
	for _, f := range class.fields {
		fv := f.Get(v)
		if f.OmitEmpty && fv.IsZero() {
			continue
		}
		data, err := r.encode(fv)
		if err != nil {
			return nil, newFieldError(ErrFieldConversion, t, f.Name, err)
		}
		m.Set(f.Key, data)
	}
	return m, nil
}

// decodeObject rebuilds a struct of type t from a Map. An identifier in the
// map must resolve to t.
func (r *Recaster) decodeObject(data any, t reflect.Type) (reflect.Value, error) {
	if data == nil {
		return reflect.Zero(t), nil
	}
	m, ok := data.(*Map)
	if !ok {
		return reflect.Value{}, fmt.Errorf("%w: cannot decode %T into %s", ErrInvalidValue, data, t)
	}

	if m.HasIdentifier() {
		resolved, err := r.resolveIdentifier(m.Identifier(), t)
		if err != nil {
			return reflect.Value{}, err
		}
		if resolved != t {
			return reflect.Value{}, newTypeError(ErrTypeMismatch, m.Identifier(), t)
		}
	}
	if m.ContainsEncodedValue() {
		return r.decode(m.EncodedValue(), t)
	}

	obj, err := r.factory.create(t, 0)
	if err != nil {
		return reflect.Value{}, err
	}
	if err := r.populate(obj, m); err != nil {
		return reflect.Value{}, err
	}
	return obj, nil
}

// populate writes the fields present in m onto the addressable struct obj.
// Fields absent from m keep the value the factory gave them.
func (r *Recaster) populate(obj reflect.Value, m *Map) error {
	t := obj.Type()
	if dec, ok := fieldDecoder(obj); ok {
		if err := dec.DecodeFields(r, m); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrFieldConversion, typeLabel(t), err)
		}
		return nil
	}

	class, err := r.classes.get(t)
	if err != nil {
		return err
	}
	for _, f := range class.fields {
		data, ok := m.Get(f.Key)
		if !ok {
			continue
		}
		val, err := r.decode(data, f.Type)
		if err != nil {
			return newFieldError(ErrFieldConversion, t, f.Name, err)
		}
		if err := f.Set(obj, val); err != nil {
			return newFieldError(ErrFieldConversion, t, f.Name, err)
		}
	}
	return nil
}

// encodePolymorphic encodes the dynamic value held by an interface slot.
// Objects carry their identifier; other values whose canonical form would
// decode back to a different type are wrapped with one.
func (r *Recaster) encodePolymorphic(v reflect.Value) (any, error) {
	t := v.Type()
	cat, _ := r.categorize(t)
	switch cat {
	case categoryObject:
		return r.encodeObject(v)
	case categoryPointer:
		if v.IsNil() {
			return nil, nil
		}
		return r.encodePolymorphic(v.Elem())
	}

	data, err := r.encode(v)
	if err != nil {
		return nil, err
	}
	if data == nil || selfDescribing(t) {
		return data, nil
	}

	id, err := r.identifierOf(t)
	if err != nil {
		return nil, err
	}
	m := NewMap()
	m.SetIdentifier(id)
	m.SetEncodedValue(data)
	return m, nil
}

// selfDescribing reports whether an empty interface slot decodes data of
// type t's canonical form back to t.
func selfDescribing(t reflect.Type) bool {
	switch t {
	case reflect.TypeFor[bool](), reflect.TypeFor[string](),
		reflect.TypeFor[int64](), reflect.TypeFor[uint64](),
		reflect.TypeFor[float64](), reflect.TypeFor[complex128](),
		reflect.TypeFor[[]byte](), anySliceType, anyMapType:
		return true
	}
	return false
}

// decodePolymorphic decodes data into interface type t, choosing the
// concrete type from the identifier or, for empty interfaces, the data shape.
func (r *Recaster) decodePolymorphic(data any, t reflect.Type) (reflect.Value, error) {
	if data == nil {
		return reflect.Zero(t), nil
	}

	m, isMap := data.(*Map)
	if !isMap || !m.HasIdentifier() {
		concrete, ok := defaultConcrete(data)
		if !ok || !(t.NumMethod() == 0 || concrete.Implements(t)) {
			return reflect.Value{}, newTypeError(ErrMissingIdentifier, "", t)
		}
		val, err := r.decode(data, concrete)
		if err != nil {
			return reflect.Value{}, err
		}
		return fitInterface(val, t, "")
	}

	concrete, err := r.resolveIdentifier(m.Identifier(), nil)
	if err != nil {
		return reflect.Value{}, err
	}
	var val reflect.Value
	if m.ContainsEncodedValue() {
		val, err = r.decode(m.EncodedValue(), concrete)
	} else {
		val, err = r.decode(m, concrete)
	}
	if err != nil {
		return reflect.Value{}, err
	}
	return fitInterface(val, t, m.Identifier())
}

// fitInterface stores val in a slot of interface type t: the value itself
// when it satisfies t, otherwise a pointer to it.
func fitInterface(val reflect.Value, t reflect.Type, id string) (reflect.Value, error) {
	out := reflect.New(t).Elem()
	switch {
	case val.Type().Implements(t):
		out.Set(val)
	case reflect.PointerTo(val.Type()).Implements(t):
		p := reflect.New(val.Type())
		p.Elem().Set(val)
		out.Set(p)
	default:
		return reflect.Value{}, newTypeError(ErrTypeMismatch, id, t)
	}
	return out, nil
}

// identifierOf returns the identifier written for t: its alias when it has
// one, its fully-qualified name otherwise. Marker aliases are bound on first use.
func (r *Recaster) identifierOf(t reflect.Type) (string, error) {
	t = indirectType(t)
	if alias, ok := r.aliases.aliasOf(t); ok {
		return alias, nil
	}
	if ok, err := r.aliases.register(t); err != nil {
		return "", err
	} else if ok {
		alias, _ := r.aliases.aliasOf(t)
		return alias, nil
	}
	r.classes.remember(t)
	return qualifiedName(t), nil
}

// resolveIdentifier maps an identifier to a type: alias, then a known
// fully-qualified name, then the target's own identifier.
func (r *Recaster) resolveIdentifier(id string, target reflect.Type) (reflect.Type, error) {
	if t, ok := r.aliases.resolve(id); ok {
		return t, nil
	}
	if t, ok := r.classes.lookupName(id); ok {
		return t, nil
	}
	if target != nil && target.Kind() != reflect.Interface {
		base := indirectType(target)
		if qualifiedName(base) == id {
			return base, nil
		}
		if alias, ok := markerAlias(base); ok && alias == id {
			return base, nil
		}
	}
	return nil, newTypeError(ErrUnknownType, id, target)
}

// assign stores v into dst, converting between types of the same kind.
func assign(dst, v reflect.Value) error {
	if !v.IsValid() {
		dst.SetZero()
		return nil
	}
	switch {
	case v.Type() == dst.Type() || v.Type().AssignableTo(dst.Type()):
		dst.Set(v)
	case v.Kind() == dst.Kind() && v.Type().ConvertibleTo(dst.Type()):
		dst.Set(v.Convert(dst.Type()))
	default:
		return fmt.Errorf("%w: cannot assign %s to %s", ErrInvalidValue, v.Type(), dst.Type())
	}
	return nil
}
