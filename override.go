package recast

import "reflect"

// Override interfaces allow types to bypass reflection-based field handling.
// When a struct type implements one of these interfaces, the Recaster calls
// the interface method instead of walking its CastedClass.
//
// This provides two benefits:
// 1. Performance: Avoid reflection overhead for hot paths
// 2. Custom logic: Layouts that can't be expressed via tags
//
// The identifier is written and checked by the Recaster either way; the
// methods only deal with the type's own keys.

// FieldEncoder bypasses reflection when encoding an object.
type FieldEncoder interface {
	// EncodeFields writes the receiver's fields into m. The identifier is
	// already set. Nested values can be encoded with r.EncodeValue.
	EncodeFields(r *Recaster, m *Map) error
}

// FieldDecoder bypasses reflection when decoding an object.
type FieldDecoder interface {
	// DecodeFields populates the receiver from m. The receiver is a fresh
	// instance from the object factory. Nested values can be decoded with
	// r.DecodeValue.
	DecodeFields(r *Recaster, m *Map) error
}

var (
	fieldEncoderType = reflect.TypeFor[FieldEncoder]()
	fieldDecoderType = reflect.TypeFor[FieldDecoder]()
)

// fieldEncoder returns v's FieldEncoder, checking value then pointer receivers.
func fieldEncoder(v reflect.Value) (FieldEncoder, bool) {
	t := v.Type()
	switch {
	case t.Implements(fieldEncoderType):
		return v.Interface().(FieldEncoder), true
	case reflect.PointerTo(t).Implements(fieldEncoderType):
		return addressable(v).Addr().Interface().(FieldEncoder), true
	}
	return nil, false
}

// fieldDecoder returns the FieldDecoder of an addressable struct value.
func fieldDecoder(v reflect.Value) (FieldDecoder, bool) {
	if !v.CanAddr() || !reflect.PointerTo(v.Type()).Implements(fieldDecoderType) {
		return nil, false
	}
	return v.Addr().Interface().(FieldDecoder), true
}
