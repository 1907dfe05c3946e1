package recast

import (
	"context"
	"encoding"
	"reflect"
	"sync"
)

// Transformer is a codec for an exact set of types. Custom transformers
// replace default field-by-field encoding for semantic types such as
// secrets or domain value objects.
//
// Encode receives a value whose type is one of SupportedTypes and returns
// Map-compatible data. Decode receives such data and the declared target type
// and returns a value assignable to it. Both must be pure functions of their
// input; they may recurse through Recaster.EncodeValue and DecodeValue.
type Transformer interface {
	// SupportedTypes lists every type the transformer handles. It must not be empty.
	SupportedTypes() []reflect.Type

	// Encode converts v to Map-compatible data.
	Encode(r *Recaster, v reflect.Value) (any, error)

	// Decode converts data back to a value of type target.
	Decode(r *Recaster, target reflect.Type, data any) (reflect.Value, error)
}

// category is the encoding strategy chosen for a type. Categories are
// evaluated in declaration order after the typed tables.
type category int

const (
	categoryCustom category = iota
	categoryBuiltin
	categoryText
	categoryBytes
	categorySimple
	categoryPointer
	categoryInterface
	categorySequence
	categorySet
	categoryMapping
	categoryObject
	categoryUnsupported
)

func (c category) String() string {
	switch c {
	case categoryCustom:
		return "custom"
	case categoryBuiltin:
		return "builtin"
	case categoryText:
		return "text"
	case categoryBytes:
		return "bytes"
	case categorySimple:
		return "simple"
	case categoryPointer:
		return "pointer"
	case categoryInterface:
		return "interface"
	case categorySequence:
		return "sequence"
	case categorySet:
		return "set"
	case categoryMapping:
		return "mapping"
	case categoryObject:
		return "object"
	}
	return "unsupported"
}

var (
	textMarshalerType   = reflect.TypeFor[encoding.TextMarshaler]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
)

// transformerTable is the typed dispatch table: custom transformers shadow
// the builtin simple codecs.
type transformerTable struct {
	mu       sync.RWMutex
	custom   map[reflect.Type]Transformer
	builtins map[reflect.Type]Transformer
}

func newTransformerTable() *transformerTable {
	return &transformerTable{
		custom:   make(map[reflect.Type]Transformer),
		builtins: builtinTransformers(),
	}
}

// add registers t for all of its supported types, or none of them.
func (tt *transformerTable) add(t Transformer) error {
	if t == nil {
		return newConfigError(ErrIllegalTransformer, nil, "")
	}
	types := t.SupportedTypes()
	if len(types) == 0 {
		return newConfigError(ErrIllegalTransformer, reflect.TypeOf(t), "")
	}

	tt.mu.Lock()
	defer tt.mu.Unlock()

	seen := make(map[reflect.Type]bool, len(types))
	for _, typ := range types {
		if typ == nil {
			return newConfigError(ErrIllegalTransformer, reflect.TypeOf(t), "")
		}
		if _, dup := tt.custom[typ]; dup || seen[typ] {
			return newConfigError(ErrDuplicateTransformer, typ, "")
		}
		seen[typ] = true
	}
	for _, typ := range types {
		tt.custom[typ] = t
	}

	emitTransformerAdded(context.Background(), len(types))
	return nil
}

// lookup returns the transformer registered for exactly t.
func (tt *transformerTable) lookup(t reflect.Type) (Transformer, category, bool) {
	tt.mu.RLock()
	defer tt.mu.RUnlock()
	if tr, ok := tt.custom[t]; ok {
		return tr, categoryCustom, true
	}
	if tr, ok := tt.builtins[t]; ok {
		return tr, categoryBuiltin, true
	}
	return nil, categoryUnsupported, false
}

// categorize picks the strategy for t: an exact typed match first, then the
// fixed category priority.
func (r *Recaster) categorize(t reflect.Type) (category, Transformer) {
	if tr, cat, ok := r.transformers.lookup(t); ok {
		return cat, tr
	}
	switch {
	case isTextType(t):
		return categoryText, nil
	case isBytesType(t):
		return categoryBytes, nil
	case isSimpleKind(t.Kind()):
		return categorySimple, nil
	}
	switch t.Kind() {
	case reflect.Pointer:
		return categoryPointer, nil
	case reflect.Interface:
		return categoryInterface, nil
	case reflect.Slice, reflect.Array:
		return categorySequence, nil
	case reflect.Map:
		if isSetType(t) {
			return categorySet, nil
		}
		return categoryMapping, nil
	case reflect.Struct:
		return categoryObject, nil
	}
	return categoryUnsupported, nil
}

// isTextType reports whether t round-trips through encoding.TextMarshaler
// and encoding.TextUnmarshaler.
func isTextType(t reflect.Type) bool {
	if t.Kind() == reflect.Interface || t.Kind() == reflect.Pointer {
		return false
	}
	ptr := reflect.PointerTo(t)
	return (t.Implements(textMarshalerType) || ptr.Implements(textMarshalerType)) &&
		ptr.Implements(textUnmarshalerType)
}

// isBytesType reports whether t is a byte slice.
func isBytesType(t reflect.Type) bool {
	return t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8
}

// isSimpleKind reports whether k is a leaf scalar kind.
func isSimpleKind(k reflect.Kind) bool {
	switch k {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	}
	return false
}
