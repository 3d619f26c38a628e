package wire

import "errors"

// WireType identifies how a value's bytes are laid out on the wire.
//
// extprot packs the wire type into the low 4 bits of a prefix varint
// (a single byte while the tag is at most 7), leaving the high bits for the tag
// number. Codes with an odd value are length-delimited: the value they
// introduce is itself preceded by a byte-length varint, which is what
// lets an old decoder skip over a value of a type it has never heard
// of. Codes with an even value are fixed-width and need no length.
type WireType uint8

const (
	// Vint carries an Int as a single zigzag varint. Not
	// length-delimited.
	Vint WireType = 0

	// Tuple introduces a sequence of elements, byte-length prefixed.
	Tuple WireType = 1

	// Bits8 carries a single raw byte (the wire form of the Bool and
	// Byte primitives). Fixed width.
	Bits8 WireType = 2

	// Bytes introduces a raw byte string, byte-length prefixed.
	Bytes WireType = 3

	// Bits32 carries a 4-byte little-endian fixed value. Fixed width.
	Bits32 WireType = 4

	// Htuple introduces a homogeneous tuple (List or Array), byte-length
	// prefixed; the element count follows as a leading varint inside it.
	Htuple WireType = 5

	// Bits64Long carries an 8-byte little-endian Long. Fixed width.
	Bits64Long WireType = 6

	// Assoc introduces a list of (key, value) pairs, byte-length prefixed.
	Assoc WireType = 7

	// Bits64Float carries an 8-byte little-endian IEEE 754 double. Fixed width.
	Bits64Float WireType = 8

	// code 9 is intentionally unassigned.

	// Enum carries a constant Union variant as a bare tag with no payload.
	// Fixed width (zero bytes of value past the prefix).
	Enum WireType = 10
)

// String returns a human-readable name for the wire type.
func (w WireType) String() string {
	switch w {
	case Vint:
		return "vint"
	case Tuple:
		return "tuple"
	case Bits8:
		return "bits8"
	case Bytes:
		return "bytes"
	case Bits32:
		return "bits32"
	case Htuple:
		return "htuple"
	case Bits64Long:
		return "bits64-long"
	case Assoc:
		return "assoc"
	case Bits64Float:
		return "bits64-float"
	case Enum:
		return "enum"
	default:
		return "unknown"
	}
}

// IsValid reports whether w is one of the ten assigned wire type codes.
func (w WireType) IsValid() bool {
	switch w {
	case Vint, Tuple, Bits8, Bytes, Bits32, Htuple, Bits64Long, Assoc, Bits64Float, Enum:
		return true
	default:
		return false
	}
}

// IsLengthDelimited reports whether values of this wire type are preceded
// by a byte-length varint, i.e. whether the wire type code is odd.
func (w WireType) IsLengthDelimited() bool {
	return w&1 == 1
}

var (
	// ErrInvalidWireType indicates an unknown or reserved wire type code.
	ErrInvalidWireType = errors.New("extprot: invalid wire type")

	// ErrInvalidTag indicates a negative or otherwise unrepresentable tag number.
	ErrInvalidTag = errors.New("extprot: invalid tag")
)

// Prefix is the composite value written ahead of every encoded value:
// a tag number (the Option or Tuple-element index within its enclosing
// construct) combined with the wire type of the payload that follows.
//
// On the wire a Prefix is itself a varint: (tag << 4) | wireType.
type Prefix uint64

// MakePrefix combines a tag number and wire type into a Prefix.
func MakePrefix(tag int, wireType WireType) Prefix {
	return Prefix(uint64(tag)<<4 | uint64(wireType))
}

// Tag returns the tag number encoded in the prefix.
func (p Prefix) Tag() int {
	return int(p >> 4)
}

// WireType returns the wire type encoded in the prefix.
func (p Prefix) WireType() WireType {
	return WireType(p & 0xf)
}

// AppendPrefix appends a (tag, wireType) prefix to buf as a varint.
func AppendPrefix(buf []byte, tag int, wireType WireType) []byte {
	return AppendUvarint(buf, uint64(MakePrefix(tag, wireType)))
}

// DecodePrefix decodes a prefix from data, returning the tag number, wire
// type, number of bytes consumed, and any error.
//
// DecodePrefix does not reject unrecognized wire type codes by itself:
// callers that need to skip unknown values should check IsValid only
// after deciding they cannot otherwise interpret the wire type, since a
// well-formed stream from a newer encoder may use codes this decoder
// does not yet assign meaning to for in-place promotion.
func DecodePrefix(data []byte) (tag int, wireType WireType, n int, err error) {
	raw, n, err := DecodeUvarint(data)
	if err != nil {
		return 0, 0, 0, err
	}
	p := Prefix(raw)
	tag = p.Tag()
	wireType = p.WireType()
	if tag < 0 {
		return 0, 0, n, ErrInvalidTag
	}
	return tag, wireType, n, nil
}

// PrefixSize returns the number of bytes required to encode a
// (tag, wireType) prefix.
func PrefixSize(tag int, wireType WireType) int {
	return UvarintSize(uint64(MakePrefix(tag, wireType)))
}

// PutPrefix encodes a (tag, wireType) prefix into buf and returns the
// number of bytes written. The buffer must be large enough
// (see PrefixSize).
func PutPrefix(buf []byte, tag int, wireType WireType) int {
	return PutUvarint(buf, uint64(MakePrefix(tag, wireType)))
}

// MaxTag is the largest tag number ValidateTag accepts. AppendPrefix and
// DecodePrefix do not check it. Tag sequences are assigned densely
// starting at 0 by the schema compiler, so this bound exists only to
// catch corrupt input, not to limit legitimate schemas.
const MaxTag = 1<<28 - 1

// ValidateTag returns an error if tag is outside the representable range.
func ValidateTag(tag int) error {
	if tag < 0 || tag > MaxTag {
		return ErrInvalidTag
	}
	return nil
}
