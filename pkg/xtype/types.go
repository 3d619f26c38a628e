package xtype

import "github.com/blockberries/extprot/internal/wire"

// Kind identifies which type-model entity a Type value is, as a stable
// small enumeration. The codec, the schema compiler and the code
// generator dispatch with Go type switches on the concrete types, not on
// Kind.
type Kind uint8

const (
	KindBool Kind = iota
	KindByte
	KindInt
	KindLong
	KindFloat
	KindString
	KindTuple
	KindList
	KindArray
	KindAssoc
	KindUnion
	KindMessage
	KindUnbound
	KindPlaceholder
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindByte:
		return "byte"
	case KindInt:
		return "int"
	case KindLong:
		return "long"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindTuple:
		return "tuple"
	case KindList:
		return "list"
	case KindArray:
		return "array"
	case KindAssoc:
		return "assoc"
	case KindUnion:
		return "union"
	case KindMessage:
		return "message"
	case KindUnbound:
		return "unbound"
	case KindPlaceholder:
		return "placeholder"
	default:
		return "unknown"
	}
}

// Type is the capability set every type-model node exposes: coercion of
// caller values, defaulting, and enough self-description for the codec
// and schema compiler to work generically. Each concrete type additionally
// answers to one of PrimitiveType, CompositeType, UnionType or MessageType
// below, which the wire codec type-switches on to decide how to walk it.
type Type interface {
	// Kind reports which type-model entity this is.
	Kind() Kind

	// TypeName returns a name suitable for error messages. For named
	// declarations (messages, polymorphic type aliases) this is the
	// declared name; for structural types it is a rendering of their
	// shape (e.g. "(int*bool)").
	TypeName() string

	// Convert coerces and validates a caller-supplied Go value into this
	// type's canonical in-memory representation.
	Convert(raw any) (any, error)

	// Default produces this type's default value, or ErrNoDefault if it
	// has none.
	Default() (any, error)
}

// PrimitiveType is implemented by Bool, Byte, Int, Long, Float and String.
// Primitives parse and render directly to and from a flat byte payload
// under a single fixed wire type.
type PrimitiveType interface {
	Type
	WireType() wire.WireType
	ParseWire(body []byte) (any, error)
	RenderWire(v any) ([]byte, error)
}

// CompositeType is implemented by Tuple, List, Array and Assoc. All four
// are length-delimited on the wire and carry an ordered list of subtypes
// (one for Tuple/Message-like fixed arity, one repeated for List/Array,
// two alternating for Assoc).
type CompositeType interface {
	Type
	WireType() wire.WireType
	Subtypes() []Type
}

// Limits bounds resource consumption while decoding untrusted input. A
// zero value in any field means "no limit" for that dimension.
type Limits struct {
	// MaxDepth caps nested composite/union/message recursion.
	MaxDepth int

	// MaxElements caps the element/pair count of a single Tuple, List,
	// Array or Assoc value.
	MaxElements int

	// MaxBytesLength caps the byte length of a single String or Bytes
	// value, and the byte length field of any length-delimited value.
	MaxBytesLength int
}

// DefaultLimits are generous limits suitable for trusted input.
var DefaultLimits = Limits{
	MaxDepth:       100,
	MaxElements:    1_000_000,
	MaxBytesLength: 64 * 1024 * 1024,
}

// SecureLimits are conservative limits appropriate for untrusted input.
var SecureLimits = Limits{
	MaxDepth:       32,
	MaxElements:    10_000,
	MaxBytesLength: 1 * 1024 * 1024,
}

// NoLimits disables all resource limits. Use only for trusted input.
var NoLimits = Limits{}
