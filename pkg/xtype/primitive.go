package xtype

import (
	"fmt"
	"math"

	"github.com/blockberries/extprot/internal/wire"
)

// Bool is the extprot Bool primitive: a single byte, 0 or any nonzero
// value, rendered as BITS8.
type Bool struct{}

func (Bool) Kind() Kind        { return KindBool }
func (Bool) TypeName() string  { return "bool" }
func (Bool) WireType() wire.WireType { return wire.Bits8 }

func (Bool) Convert(raw any) (any, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	default:
		return nil, newTypeError("bool", fmt.Sprintf("cannot convert %T to bool", raw), ErrTypeMismatch)
	}
}

func (Bool) Default() (any, error) { return false, nil }

func (Bool) ParseWire(body []byte) (any, error) {
	if len(body) != 1 {
		return nil, newTypeError("bool", "expected 1 byte", ErrParse)
	}
	return body[0] != 0, nil
}

func (Bool) RenderWire(v any) ([]byte, error) {
	b, ok := v.(bool)
	if !ok {
		return nil, newTypeError("bool", fmt.Sprintf("cannot render %T", v), ErrTypeMismatch)
	}
	if b {
		return []byte{1}, nil
	}
	return []byte{0}, nil
}

// Byte is the extprot Byte primitive: a single raw byte, rendered as BITS8.
type Byte struct{}

func (Byte) Kind() Kind        { return KindByte }
func (Byte) TypeName() string  { return "byte" }
func (Byte) WireType() wire.WireType { return wire.Bits8 }

func (Byte) Convert(raw any) (any, error) {
	switch v := raw.(type) {
	case byte:
		return v, nil
	case int:
		if v < 0 || v > 255 {
			return nil, newTypeError("byte", "value out of range", ErrTypeMismatch)
		}
		return byte(v), nil
	default:
		return nil, newTypeError("byte", fmt.Sprintf("cannot convert %T to byte", raw), ErrTypeMismatch)
	}
}

func (Byte) Default() (any, error) { return byte(0), nil }

func (Byte) ParseWire(body []byte) (any, error) {
	if len(body) != 1 {
		return nil, newTypeError("byte", "expected 1 byte", ErrParse)
	}
	return body[0], nil
}

func (Byte) RenderWire(v any) ([]byte, error) {
	b, ok := v.(byte)
	if !ok {
		return nil, newTypeError("byte", fmt.Sprintf("cannot render %T", v), ErrTypeMismatch)
	}
	return []byte{b}, nil
}

// Int is the extprot Int primitive: a signed integer, zigzag-encoded and
// rendered as VINT.
type Int struct{}

func (Int) Kind() Kind        { return KindInt }
func (Int) TypeName() string  { return "int" }
func (Int) WireType() wire.WireType { return wire.Vint }

func (Int) Convert(raw any) (any, error) {
	switch v := raw.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	default:
		return nil, newTypeError("int", fmt.Sprintf("cannot convert %T to int", raw), ErrTypeMismatch)
	}
}

func (Int) Default() (any, error) { return int64(0), nil }

func (Int) ParseWire(body []byte) (any, error) {
	uv, n, err := wire.DecodeUvarint(body)
	if err != nil || n != len(body) {
		return nil, newTypeError("int", "malformed zigzag varint", ErrParse)
	}
	return int64(uv>>1) ^ -int64(uv&1), nil
}

func (Int) RenderWire(v any) ([]byte, error) {
	n, ok := v.(int64)
	if !ok {
		return nil, newTypeError("int", fmt.Sprintf("cannot render %T", v), ErrTypeMismatch)
	}
	return wire.AppendSvarint(nil, n), nil
}

// Long is the extprot Long primitive: an unsigned 64-bit integer, rendered
// as BITS64_LONG.
//
// The source material is ambiguous about Long's signedness; this
// implementation treats it as unsigned in [0, 2^64), matching how it is
// decoded off the wire (see the design notes on the resolved open
// question).
type Long struct{}

func (Long) Kind() Kind        { return KindLong }
func (Long) TypeName() string  { return "long" }
func (Long) WireType() wire.WireType { return wire.Bits64Long }

func (Long) Convert(raw any) (any, error) {
	switch v := raw.(type) {
	case uint64:
		return v, nil
	case uint:
		return uint64(v), nil
	case int64:
		if v < 0 {
			return nil, newTypeError("long", "negative value for unsigned long", ErrTypeMismatch)
		}
		return uint64(v), nil
	default:
		return nil, newTypeError("long", fmt.Sprintf("cannot convert %T to long", raw), ErrTypeMismatch)
	}
}

func (Long) Default() (any, error) { return uint64(0), nil }

func (Long) ParseWire(body []byte) (any, error) {
	v, err := wire.DecodeFixed64(body)
	if err != nil {
		return nil, newTypeError("long", "expected 8 bytes", ErrParse)
	}
	return v, nil
}

func (Long) RenderWire(v any) ([]byte, error) {
	n, ok := v.(uint64)
	if !ok {
		return nil, newTypeError("long", fmt.Sprintf("cannot render %T", v), ErrTypeMismatch)
	}
	return wire.AppendFixed64(nil, n), nil
}

// Float is the extprot Float primitive: a 64-bit IEEE-754 double, rendered
// as BITS64_FLOAT.
type Float struct{}

func (Float) Kind() Kind        { return KindFloat }
func (Float) TypeName() string  { return "float" }
func (Float) WireType() wire.WireType { return wire.Bits64Float }

func (Float) Convert(raw any) (any, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	default:
		return nil, newTypeError("float", fmt.Sprintf("cannot convert %T to float", raw), ErrTypeMismatch)
	}
}

func (Float) Default() (any, error) { return float64(0), nil }

func (Float) ParseWire(body []byte) (any, error) {
	bits, err := wire.DecodeFixed64(body)
	if err != nil {
		return nil, newTypeError("float", "expected 8 bytes", ErrParse)
	}
	return math.Float64frombits(bits), nil
}

func (Float) RenderWire(v any) ([]byte, error) {
	f, ok := v.(float64)
	if !ok {
		return nil, newTypeError("float", fmt.Sprintf("cannot render %T", v), ErrTypeMismatch)
	}
	return wire.AppendFixed64(nil, math.Float64bits(f)), nil
}

// String is the extprot String primitive: an opaque byte string, rendered
// as BYTES. It carries no encoding assumption; callers that want UTF-8
// validation perform it themselves.
type String struct{}

func (String) Kind() Kind        { return KindString }
func (String) TypeName() string  { return "string" }
func (String) WireType() wire.WireType { return wire.Bytes }

func (String) Convert(raw any) (any, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return nil, newTypeError("string", fmt.Sprintf("cannot convert %T to string", raw), ErrTypeMismatch)
	}
}

func (String) Default() (any, error) { return "", nil }

func (String) ParseWire(body []byte) (any, error) {
	return string(body), nil
}

func (String) RenderWire(v any) ([]byte, error) {
	s, ok := v.(string)
	if !ok {
		return nil, newTypeError("string", fmt.Sprintf("cannot render %T", v), ErrTypeMismatch)
	}
	return []byte(s), nil
}

var (
	_ PrimitiveType = Bool{}
	_ PrimitiveType = Byte{}
	_ PrimitiveType = Int{}
	_ PrimitiveType = Long{}
	_ PrimitiveType = Float{}
	_ PrimitiveType = String{}
)
