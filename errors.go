package recast

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ErrRecast is the root of every error returned by this package.
// Use errors.Is(err, ErrRecast) to tell a conversion failure from other errors.
var ErrRecast = errors.New("recast")

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrMissingIdentifier indicates a map carries no __recast identifier and
	// the caller supplied no target type.
	ErrMissingIdentifier = fmt.Errorf("%w: missing identifier", ErrRecast)

	// ErrUnknownType indicates an identifier resolves to no alias, casted type or target.
	ErrUnknownType = fmt.Errorf("%w: cannot determine entity type", ErrRecast)

	// ErrTypeMismatch indicates the resolved type is not assignable to the requested target.
	ErrTypeMismatch = fmt.Errorf("%w: type mismatch", ErrRecast)

	// ErrFieldConversion indicates a field could not be read, transformed or written.
	ErrFieldConversion = fmt.Errorf("%w: field conversion failed", ErrRecast)

	// ErrNoConstructor indicates the object factory has no way to build a type.
	ErrNoConstructor = fmt.Errorf("%w: no usable constructor", ErrRecast)

	// ErrDuplicateTransformer indicates a second transformer was registered for a type.
	ErrDuplicateTransformer = fmt.Errorf("%w: duplicate transformer", ErrRecast)

	// ErrIllegalTransformer indicates a transformer does not declare its supported types.
	ErrIllegalTransformer = fmt.Errorf("%w: illegal custom transformer", ErrRecast)

	// ErrAliasConflict indicates an alias is already bound to a different type.
	ErrAliasConflict = fmt.Errorf("%w: alias conflict", ErrRecast)

	// ErrUnsupportedType indicates a type has no encoding (func, chan, unsafe pointer).
	ErrUnsupportedType = fmt.Errorf("%w: unsupported type", ErrRecast)

	// ErrInvalidValue indicates map data has the wrong shape for the declared type.
	ErrInvalidValue = fmt.Errorf("%w: invalid value", ErrRecast)
)

// FieldError reports a failure converting one field of an entity.
// Nested failures chain through Cause, so the message reads as a path.
type FieldError struct {
	Err    error  // Underlying sentinel error (ErrFieldConversion, ErrInvalidValue, etc.)
	Entity string // Declared type of the entity owning the field
	Field  string // Field name, or element index for containers
	Cause  error  // Original error from the failed operation
}

func (e *FieldError) Error() string {
	return e.Entity + e.segment() + e.tail()
}

// segment renders the field as a path element: ".Name" or "[i]".
func (e *FieldError) segment() string {
	if strings.HasPrefix(e.Field, "[") {
		return e.Field
	}
	return "." + e.Field
}

// tail renders the rest of a nested path followed by the root cause.
func (e *FieldError) tail() string {
	if inner, ok := e.Cause.(*FieldError); ok {
		return inner.segment() + inner.tail()
	}
	if e.Cause != nil {
		return fmt.Sprintf(": %s: %v", e.Err.Error(), e.Cause)
	}
	return ": " + e.Err.Error()
}

// Unwrap exposes both the sentinel and the cause to errors.Is and errors.As.
func (e *FieldError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

// TypeError reports a failure resolving or matching an entity type.
type TypeError struct {
	Err        error  // Underlying sentinel error (ErrUnknownType, ErrTypeMismatch, etc.)
	Identifier string // Identifier found in the map, if any
	Target     string // Requested target type, if any
}

func (e *TypeError) Error() string {
	switch {
	case e.Identifier != "" && e.Target != "":
		return fmt.Sprintf("%s: %q is not assignable to %s", e.Err.Error(), e.Identifier, e.Target)
	case e.Identifier != "":
		return fmt.Sprintf("%s: %q", e.Err.Error(), e.Identifier)
	case e.Target != "":
		return fmt.Sprintf("%s (target %s)", e.Err.Error(), e.Target)
	}
	return e.Err.Error()
}

func (e *TypeError) Unwrap() error {
	return e.Err
}

// ConfigError reports a registration failure: transformers, aliases, classes.
type ConfigError struct {
	Err   error  // Underlying sentinel error (ErrDuplicateTransformer, ErrAliasConflict, etc.)
	Type  string // Type being registered
	Alias string // Alias involved, if any
}

func (e *ConfigError) Error() string {
	if e.Type != "" && e.Alias != "" {
		return fmt.Sprintf("%s for alias %q (type %s)", e.Err.Error(), e.Alias, e.Type)
	}
	if e.Alias != "" {
		return fmt.Sprintf("%s for alias %q", e.Err.Error(), e.Alias)
	}
	if e.Type != "" {
		return fmt.Sprintf("%s (type %s)", e.Err.Error(), e.Type)
	}
	return e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// newFieldError creates a FieldError for a failed field conversion.
func newFieldError(sentinel error, entity reflect.Type, field string, cause error) error {
	return &FieldError{
		Err:    sentinel,
		Entity: typeLabel(entity),
		Field:  field,
		Cause:  cause,
	}
}

// newTypeError creates a TypeError for identifier resolution failures.
func newTypeError(sentinel error, identifier string, target reflect.Type) error {
	e := &TypeError{Err: sentinel, Identifier: identifier}
	if target != nil {
		e.Target = target.String()
	}
	return e
}

// newConfigError creates a ConfigError for registration failures.
func newConfigError(sentinel error, typ reflect.Type, alias string) error {
	e := &ConfigError{Err: sentinel, Alias: alias}
	if typ != nil {
		e.Type = typ.String()
	}
	return e
}

// typeLabel is the short type name used in error paths.
func typeLabel(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}
