package recast

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/zoobzio/sentinel"
)

// tagName is the struct tag read for stored key names and options.
const tagName = "recast"

func init() {
	sentinel.Tag(tagName)
}

// Shape describes whether a field holds one value or a container of values.
type Shape int

const (
	// ShapeSingle is a scalar, struct, pointer or interface field.
	ShapeSingle Shape = iota
	// ShapeSequence is a slice or array field ([]byte excluded).
	ShapeSequence
	// ShapeSet is a map[K]struct{} field.
	ShapeSet
	// ShapeMapping is a map[K]V field.
	ShapeMapping
)

func (s Shape) String() string {
	switch s {
	case ShapeSequence:
		return "sequence"
	case ShapeSet:
		return "set"
	case ShapeMapping:
		return "mapping"
	}
	return "single"
}

// CastedField describes one persistable field of a casted type.
// It is owned by its CastedClass and never mutated after construction.
type CastedField struct {
	Name      string       // Go field name
	Key       string       // Key the value is stored under
	Type      reflect.Type // Declared field type
	Shape     Shape        // Single value or container
	Elem      reflect.Type // Element type for sequences, sets and mappings
	KeyType   reflect.Type // Key type for mappings
	OmitEmpty bool         // Skip zero values on encode
	Index     []int        // reflect.Value.FieldByIndex access path

	// embedded marks a tagged unexported embedded struct. Go blocks setting
	// it as a whole, so it is read and written through its exported fields.
	embedded bool
}

// IsContainer reports whether the field holds a sequence, set or mapping.
func (f *CastedField) IsContainer() bool {
	return f.Shape != ShapeSingle
}

// Get returns the field's value on a struct value.
func (f *CastedField) Get(obj reflect.Value) reflect.Value {
	v := obj.FieldByIndex(f.Index)
	if !f.embedded {
		return v
	}
	out := reflect.New(v.Type()).Elem()
	copyExported(out, v)
	return out
}

// Set assigns v to the field on an addressable struct value.
func (f *CastedField) Set(obj reflect.Value, v reflect.Value) error {
	field := obj.FieldByIndex(f.Index)
	if f.embedded {
		return f.setEmbedded(field, v)
	}
	if !field.CanSet() {
		return fmt.Errorf("field %s is not settable", f.Name)
	}
	if !v.IsValid() {
		field.SetZero()
		return nil
	}
	switch {
	case v.Type().AssignableTo(field.Type()):
		field.Set(v)
	case v.Type().ConvertibleTo(field.Type()) && v.Kind() == field.Kind():
		field.Set(v.Convert(field.Type()))
	default:
		return fmt.Errorf("%w: cannot assign %s to %s", ErrInvalidValue, v.Type(), field.Type())
	}
	return nil
}

func (f *CastedField) setEmbedded(field, v reflect.Value) error {
	if !field.CanAddr() {
		return fmt.Errorf("field %s is not settable", f.Name)
	}
	if !v.IsValid() {
		v = reflect.Zero(field.Type())
	}
	if v.Type() != field.Type() {
		return fmt.Errorf("%w: cannot assign %s to %s", ErrInvalidValue, v.Type(), field.Type())
	}
	copyExported(field, v)
	return nil
}

// copyExported copies the exported fields of src into dst one by one, which
// reflection allows even when dst itself was reached through an unexported
// embedded field.
func copyExported(dst, src reflect.Value) {
	t := dst.Type()
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).IsExported() {
			dst.Field(i).Set(src.Field(i))
		}
	}
}

// CastedClass is the cached descriptor of a struct type: its ordered
// persistable fields. It is immutable and safe for concurrent reads.
type CastedClass struct {
	Type reflect.Type // Struct type described
	Name string       // Fully-qualified type name

	fields []*CastedField
	byKey  map[string]*CastedField
}

// Fields returns the persistable fields in encode/decode order.
func (c *CastedClass) Fields() []*CastedField {
	out := make([]*CastedField, len(c.fields))
	copy(out, c.fields)
	return out
}

// Field returns the field stored under key.
func (c *CastedClass) Field(key string) (*CastedField, bool) {
	f, ok := c.byKey[key]
	return f, ok
}

// NumField returns the number of persistable fields.
func (c *CastedClass) NumField() int {
	return len(c.fields)
}

// fieldCandidate is a field found while walking embedded structs.
type fieldCandidate struct {
	field *CastedField
	depth int
}

// buildClass creates the descriptor for struct type rt.
func buildClass(rt reflect.Type) (*CastedClass, error) {
	if rt.Kind() != reflect.Struct {
		return nil, newConfigError(ErrUnsupportedType, rt, "")
	}

	var candidates []fieldCandidate
	if err := collectFields(rt, nil, 0, map[reflect.Type]bool{rt: true}, &candidates); err != nil {
		return nil, err
	}

	// Shallowest field wins a key; ties at the same depth cancel each other.
	best := make(map[string]int)
	count := make(map[string]int)
	for _, c := range candidates {
		d, ok := best[c.field.Key]
		switch {
		case !ok || c.depth < d:
			best[c.field.Key] = c.depth
			count[c.field.Key] = 1
		case c.depth == d:
			count[c.field.Key]++
		}
	}

	class := &CastedClass{
		Type:  rt,
		Name:  qualifiedName(rt),
		byKey: make(map[string]*CastedField),
	}
	for _, c := range candidates {
		key := c.field.Key
		if best[key] != c.depth || count[key] != 1 {
			continue
		}
		if _, dup := class.byKey[key]; dup {
			continue
		}
		class.fields = append(class.fields, c.field)
		class.byKey[key] = c.field
	}
	return class, nil
}

// collectFields walks rt's fields, flattening untagged embedded structs.
func collectFields(rt reflect.Type, parentIndex []int, depth int, visited map[reflect.Type]bool, out *[]fieldCandidate) error {
	meta := metadataFor(rt)
	for _, fm := range meta.Fields {
		sf, ok := fieldAt(rt, fm.Index)
		if !ok {
			continue
		}
		tag, hasTag := fm.Tags[tagName]
		if tag == "-" {
			continue
		}
		fullIndex := append(append([]int{}, parentIndex...), fm.Index...)
		isStruct := fm.Kind == sentinel.KindStruct

		if sf.Anonymous && !hasTag && isStruct {
			if visited[sf.Type] {
				continue
			}
			visited[sf.Type] = true
			if err := collectFields(sf.Type, fullIndex, depth+1, visited, out); err != nil {
				return err
			}
			delete(visited, sf.Type)
			continue
		}

		embedded := false
		if !sf.IsExported() {
			if !sf.Anonymous {
				continue
			}
			// Promoted fields of an unexported embed can only be written
			// through a struct value.
			if !isStruct {
				return newConfigError(fmt.Errorf("%w: embedded field %s cannot be populated; tag it recast:\"-\" to skip it",
					ErrUnsupportedType, sf.Name), rt, "")
			}
			embedded = true
		}

		key, opts := parseTag(tag)
		if key == "" {
			key = sf.Name
		}
		if key == IdentifierKey || key == EncodedValueKey {
			return newConfigError(fmt.Errorf("%w: field %s uses reserved key %q", ErrUnsupportedType, sf.Name, key), rt, "")
		}

		f := &CastedField{
			Name:      sf.Name,
			Key:       key,
			Type:      sf.Type,
			Index:     fullIndex,
			OmitEmpty: opts["omitempty"],
			embedded:  embedded,
		}
		classifyField(f, fm.Kind == sentinel.KindSlice, fm.Kind == sentinel.KindMap)
		*out = append(*out, fieldCandidate{field: f, depth: depth})
	}
	return nil
}

// classifyField derives the container shape from the sentinel kind.
func classifyField(f *CastedField, isSlice, isMap bool) {
	t := f.Type
	switch {
	case isSlice:
		if t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8 {
			return
		}
		if t.Kind() == reflect.Slice || t.Kind() == reflect.Array {
			f.Shape = ShapeSequence
			f.Elem = t.Elem()
		}
	case isMap:
		if t.Kind() != reflect.Map {
			return
		}
		f.Elem = t.Elem()
		f.KeyType = t.Key()
		if isSetType(t) {
			f.Shape = ShapeSet
			f.Elem = t.Key()
			f.KeyType = nil
			return
		}
		f.Shape = ShapeMapping
	}
}

// parseTag splits `recast:"key,opt1,opt2"`.
func parseTag(tag string) (string, map[string]bool) {
	parts := strings.Split(tag, ",")
	opts := make(map[string]bool, len(parts))
	for _, p := range parts[1:] {
		if p = strings.TrimSpace(p); p != "" {
			opts[p] = true
		}
	}
	return strings.TrimSpace(parts[0]), opts
}

// metadataFor returns the field metadata of rt. Sentinel's metadata is used
// when Register or sentinel.Scan has seen the type; otherwise rt is scanned
// locally in the same shape.
func metadataFor(rt reflect.Type) sentinel.Metadata {
	if rt.Name() == "" {
		return scanType(rt)
	}
	meta, ok := sentinel.Lookup(rt.Name())
	if !ok || !describes(meta, rt) {
		return scanType(rt)
	}

	// Sentinel reports exported fields only, but unexported embedded
	// structs still promote theirs.
	fields := slices.Clone(meta.Fields)
	for i := 0; i < rt.NumField(); i++ {
		if sf := rt.Field(i); sf.Anonymous && !sf.IsExported() {
			fields = append(fields, fieldMetadata(sf))
		}
	}
	slices.SortFunc(fields, func(a, b sentinel.FieldMetadata) int {
		return cmp.Compare(a.Index[0], b.Index[0])
	})
	meta.Fields = fields
	return meta
}

// describes reports whether meta belongs to rt. Sentinel caches by bare type
// name, so same-named types in other packages or functions share an entry.
func describes(meta sentinel.Metadata, rt reflect.Type) bool {
	if meta.TypeName != rt.Name() || meta.PackageName != rt.PkgPath() {
		return false
	}
	exported := 0
	for i := 0; i < rt.NumField(); i++ {
		if rt.Field(i).IsExported() {
			exported++
		}
	}
	if len(meta.Fields) != exported {
		return false
	}
	for _, fm := range meta.Fields {
		sf, ok := fieldAt(rt, fm.Index)
		if !ok || sf.Name != fm.Name || sf.Type != fm.ReflectType {
			return false
		}
	}
	return true
}

// scanType builds sentinel-shaped metadata for rt with reflection. Like
// sentinel it skips unexported fields, except embedded ones.
func scanType(rt reflect.Type) sentinel.Metadata {
	meta := sentinel.Metadata{
		TypeName:    rt.Name(),
		PackageName: rt.PkgPath(),
		Fields:      make([]sentinel.FieldMetadata, 0, rt.NumField()),
	}

	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() && !sf.Anonymous {
			continue
		}
		meta.Fields = append(meta.Fields, fieldMetadata(sf))
	}

	return meta
}

// fieldMetadata describes one field the way sentinel does: registered tags
// with non-empty values only.
func fieldMetadata(sf reflect.StructField) sentinel.FieldMetadata {
	fm := sentinel.FieldMetadata{
		Name:        sf.Name,
		Type:        sf.Type.String(),
		ReflectType: sf.Type,
		Index:       sf.Index,
		Tags:        map[string]string{},
	}
	if val := sf.Tag.Get(tagName); val != "" {
		fm.Tags[tagName] = val
	}

	switch sf.Type.Kind() {
	case reflect.Struct:
		fm.Kind = sentinel.KindStruct
	case reflect.Ptr:
		fm.Kind = sentinel.KindPointer
	case reflect.Slice, reflect.Array:
		fm.Kind = sentinel.KindSlice
	case reflect.Map:
		fm.Kind = sentinel.KindMap
	case reflect.Interface:
		fm.Kind = sentinel.KindInterface
	default:
		fm.Kind = sentinel.KindScalar
	}
	return fm
}

// fieldAt resolves a field index path without panicking.
func fieldAt(rt reflect.Type, index []int) (reflect.StructField, bool) {
	if len(index) == 0 {
		return reflect.StructField{}, false
	}
	var sf reflect.StructField
	t := rt
	for _, i := range index {
		if t.Kind() != reflect.Struct || i < 0 || i >= t.NumField() {
			return reflect.StructField{}, false
		}
		sf = t.Field(i)
		t = sf.Type
	}
	return sf, true
}

// isSetType reports whether t is map[K]struct{}.
func isSetType(t reflect.Type) bool {
	return t.Kind() == reflect.Map && t.Elem().Kind() == reflect.Struct && t.Elem().NumField() == 0
}

// qualifiedName returns "pkg/path.Name" for named types and the type's
// string form otherwise.
func qualifiedName(t reflect.Type) string {
	if t.Name() != "" && t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}
