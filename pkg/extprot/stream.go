package extprot

import (
	"io"

	"github.com/blockberries/extprot/internal/wire"
	"github.com/blockberries/extprot/pkg/xtype"
)

// WriteTo writes v, a value of t's in-memory representation, as one
// top-level extprot value to sink.
func WriteTo(w io.Writer, t xtype.Type, v any) error {
	sw := wire.NewStreamWriter(w)
	e := &encoder{}
	return e.writeValue(sw, t, v)
}

// ReadFrom reads one top-level value of type t from source. A clean stop
// at a value boundary (nothing read yet) returns ErrEndOfStream so a
// caller looping over a stream of concatenated values can tell "no more
// values" from a corrupt stream; any other failure returns
// ErrTruncatedInput or a more specific decode error.
func ReadFrom(r io.Reader, t xtype.Type) (any, error) {
	return ReadFromWithLimits(r, t, xtype.DefaultLimits)
}

// ReadFromWithLimits is ReadFrom with explicit resource limits.
func ReadFromWithLimits(r io.Reader, t xtype.Type, limits xtype.Limits) (any, error) {
	sr := wire.NewStreamReader(r)
	tag, wt, err := sr.ReadPrefix()
	if err != nil {
		return nil, err
	}
	d := &decoder{limits: limits}
	v, err := d.readValueAfterPrefix(sr, tag, wt, t)
	if err != nil {
		return nil, newDecodeError(t.TypeName(), sr.Pos(), err)
	}
	return v, nil
}

// SkipOne consumes and discards one top-level value from source without
// decoding it. Returns ErrEndOfStream at a clean value boundary.
func SkipOne(r io.Reader) error {
	sr := wire.NewStreamReader(r)
	tag, wt, err := sr.ReadPrefix()
	if err != nil {
		return err
	}
	_ = tag
	d := &decoder{}
	return d.skipBody(sr, wt)
}
