package extprot

import (
	"github.com/blockberries/extprot/internal/wire"
	"github.com/blockberries/extprot/pkg/xtype"
)

// Encode renders v, which must already be a value of t's in-memory
// representation (e.g. a *xtype.TupleValue for a TupleType, a *xtype.Message
// for a MessageType, a Go bool for xtype.Bool), to its extprot wire form.
func Encode(t xtype.Type, v any) ([]byte, error) {
	w := wire.NewWriter(64)
	e := &encoder{}
	if err := e.writeValue(w, t, v); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// EncodeWithLimits is Encode with explicit resource limits; limits are
// currently only consulted on decode, but the parameter is accepted for
// API symmetry with DecodeWithLimits and to leave room for a future
// write-side budget (e.g. capping output size).
func EncodeWithLimits(t xtype.Type, v any, _ xtype.Limits) ([]byte, error) {
	return Encode(t, v)
}

// Decode parses data as a single top-level value of type t.
func Decode(t xtype.Type, data []byte) (any, error) {
	return DecodeWithLimits(t, data, xtype.DefaultLimits)
}

// DecodeWithLimits parses data as a single top-level value of type t,
// enforcing limits against untrusted input.
func DecodeWithLimits(t xtype.Type, data []byte, limits xtype.Limits) (any, error) {
	r := wire.NewReader(data)
	d := &decoder{limits: limits}
	v, err := d.readValue(r, t)
	if err != nil {
		return nil, newDecodeError(t.TypeName(), int64(r.Pos()), err)
	}
	return v, nil
}
