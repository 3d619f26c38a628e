// Package xtype implements the extprot type model: the primitive, composite
// and polymorphic type descriptors that the codec walks to encode and
// decode values, and the typed value containers those descriptors validate
// against.
package xtype

import (
	"errors"
	"fmt"
)

// Sentinel errors for the type-model error kinds. Callers match these with
// errors.Is; the concrete error returned from most operations is one of
// the wrapper types below, which carry context and unwrap to one of these.
var (
	// ErrTypeMismatch indicates a caller-supplied value failed convert()
	// for the declared type.
	ErrTypeMismatch = errors.New("extprot: type mismatch")

	// ErrNoDefault indicates a default value was required but the type
	// provides none (Unbound, Placeholder, or a composite whose subtype
	// has no default).
	ErrNoDefault = errors.New("extprot: no default value")

	// ErrUnexpectedWireType indicates the wire type read from the stream
	// does not match what the declared type can parse, and promotion did
	// not apply.
	ErrUnexpectedWireType = errors.New("extprot: unexpected wire type")

	// ErrUnpromotable indicates primitive-to-composite promotion was
	// attempted but the target's first subtype rejected the wire type.
	ErrUnpromotable = errors.New("extprot: value cannot be promoted to declared type")

	// ErrImmutableField indicates an attempt to reassign a non-mutable
	// message field after the message was initialized.
	ErrImmutableField = errors.New("extprot: field is immutable")

	// ErrParse is the catch-all for schema-compile or codec failures not
	// captured by a more specific sentinel.
	ErrParse = errors.New("extprot: parse error")
)

// TypeError carries context about which type and, where applicable, which
// field or element a type-model failure occurred against.
type TypeError struct {
	TypeName string
	Field    string
	Message  string
	Cause    error
}

func (e *TypeError) Error() string {
	switch {
	case e.TypeName != "" && e.Field != "":
		return fmt.Sprintf("extprot: %s.%s: %s", e.TypeName, e.Field, e.Message)
	case e.TypeName != "":
		return fmt.Sprintf("extprot: %s: %s", e.TypeName, e.Message)
	default:
		return fmt.Sprintf("extprot: %s", e.Message)
	}
}

func (e *TypeError) Unwrap() error {
	return e.Cause
}

func (e *TypeError) Is(target error) bool {
	return e.Cause != nil && errors.Is(e.Cause, target)
}

func newTypeError(typeName, message string, cause error) *TypeError {
	return &TypeError{TypeName: typeName, Message: message, Cause: cause}
}

func newFieldTypeError(typeName, field, message string, cause error) *TypeError {
	return &TypeError{TypeName: typeName, Field: field, Message: message, Cause: cause}
}
