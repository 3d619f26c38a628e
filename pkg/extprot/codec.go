package extprot

import (
	"fmt"

	"github.com/blockberries/extprot/internal/wire"
	"github.com/blockberries/extprot/pkg/xtype"
)

// source is the read-cursor capability the codec needs. Both wire.Reader
// (buffer-backed) and wire.StreamReader (io.Reader-backed) satisfy it,
// which lets readValue recurse identically over either: once a composite
// value's byte length is known, its payload is always read into memory and
// walked with a wire.Reader, so the only place the distinction matters is
// the very first prefix of a top-level read (see ReadFrom in stream.go).
type source interface {
	ReadByte() (byte, error)
	ReadExact(n int) ([]byte, error)
	Skip(n int) error
	ReadUvarint() (uint64, error)
	ReadSvarint() (int64, error)
	ReadFixed32() (uint32, error)
	ReadFixed64() (uint64, error)
	ReadFloat64() (float64, error)
	ReadPrefix() (tag int, wireType wire.WireType, err error)
}

// sink is the write-cursor capability the codec needs, mirroring source.
type sink interface {
	WriteByte(b byte) error
	WriteAll(b []byte) error
	WriteUvarint(v uint64) error
	WriteSvarint(v int64) error
	WriteFixed32(v uint32) error
	WriteFixed64(v uint64) error
	WriteFloat64(v float64) error
	WritePrefix(tag int, wireType wire.WireType) error
}

var (
	_ source = (*wire.Reader)(nil)
	_ source = (*wire.StreamReader)(nil)
	_ sink   = (*wire.Writer)(nil)
	_ sink   = (*wire.StreamWriter)(nil)
)

// decoder threads the active resource limits and current nesting depth
// through a recursive decode.
type decoder struct {
	limits xtype.Limits
	depth  int
}

func (d *decoder) enter(typeName string) error {
	if d.limits.MaxDepth > 0 && d.depth >= d.limits.MaxDepth {
		return newDecodeError(typeName, 0, fmt.Errorf("extprot: max nesting depth %d exceeded", d.limits.MaxDepth))
	}
	d.depth++
	return nil
}

func (d *decoder) exit() { d.depth-- }

func (d *decoder) checkElementCount(typeName string, n uint64) error {
	if d.limits.MaxElements > 0 && n > uint64(d.limits.MaxElements) {
		return newDecodeError(typeName, 0, fmt.Errorf("extprot: element count %d exceeds limit %d", n, d.limits.MaxElements))
	}
	return nil
}

func (d *decoder) checkByteLength(typeName string, n uint64) error {
	if d.limits.MaxBytesLength > 0 && n > uint64(d.limits.MaxBytesLength) {
		return newDecodeError(typeName, 0, fmt.Errorf("extprot: byte length %d exceeds limit %d", n, d.limits.MaxBytesLength))
	}
	return nil
}

// readBodyBytes reads the raw payload bytes for a value of the given fixed
// (non-composite) wire type, having already consumed its prefix.
func readBodyBytes(r source, wt wire.WireType, d *decoder, typeName string) ([]byte, error) {
	switch wt {
	case wire.Vint:
		v, err := r.ReadUvarint()
		if err != nil {
			return nil, err
		}
		return wire.AppendUvarint(nil, v), nil
	case wire.Bits8:
		return r.ReadExact(1)
	case wire.Bits32:
		return r.ReadExact(wire.Fixed32Size)
	case wire.Bits64Long, wire.Bits64Float:
		return r.ReadExact(wire.Fixed64Size)
	case wire.Bytes:
		n, err := r.ReadUvarint()
		if err != nil {
			return nil, err
		}
		if err := d.checkByteLength(typeName, n); err != nil {
			return nil, err
		}
		return r.ReadExact(int(n))
	case wire.Enum:
		return nil, nil
	default:
		return nil, fmt.Errorf("extprot: unreadable wire type %v", wt)
	}
}

// writeBodyBytes writes a pre-rendered body for the given fixed wire type.
func writeBodyBytes(w sink, wt wire.WireType, body []byte) error {
	switch wt {
	case wire.Vint, wire.Bits32, wire.Bits64Long, wire.Bits64Float:
		return w.WriteAll(body)
	case wire.Bits8:
		if len(body) != 1 {
			return fmt.Errorf("extprot: bits8 body must be 1 byte, got %d", len(body))
		}
		return w.WriteByte(body[0])
	case wire.Bytes:
		if err := w.WriteUvarint(uint64(len(body))); err != nil {
			return err
		}
		return w.WriteAll(body)
	case wire.Enum:
		return nil
	default:
		return fmt.Errorf("extprot: unwritable wire type %v", wt)
	}
}

// materialize reads a length-delimited composite's byte-length prefix and
// its full payload, returning a buffer reader positioned at the start of
// the payload. Every composite body is handled this way regardless of
// whether the outer source is buffer- or stream-backed (see source's doc
// comment); this is also the "slurp small values into memory" strategy the
// format is designed around.
func materialize(r source, d *decoder, typeName string) (*wire.Reader, error) {
	n, err := r.ReadUvarint()
	if err != nil {
		return nil, err
	}
	if err := d.checkByteLength(typeName, n); err != nil {
		return nil, err
	}
	payload, err := r.ReadExact(int(n))
	if err != nil {
		return nil, err
	}
	return wire.NewReader(payload), nil
}

// readFixedArity decodes the shared body shape of a Tuple and a Message:
// varint(elementCount) followed by that many individually prefixed
// elements, reconciled against the declared subtypes per the forward- and
// backward-compatibility rule: missing trailing elements are defaulted,
// extra trailing elements are skipped.
func (d *decoder) readFixedArity(sub *wire.Reader, subtypes []xtype.Type, typeName string) ([]any, error) {
	nitems, err := sub.ReadUvarint()
	if err != nil {
		return nil, err
	}
	if err := d.checkElementCount(typeName, nitems); err != nil {
		return nil, err
	}
	ntypes := len(subtypes)
	present := int(nitems)
	n := present
	if ntypes < n {
		n = ntypes
	}
	vals := make([]any, ntypes)
	for i := 0; i < n; i++ {
		v, err := d.readValue(sub, subtypes[i])
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	for i := n; i < ntypes; i++ {
		dflt, err := subtypes[i].Default()
		if err != nil {
			return nil, newDecodeError(typeName, 0, fmt.Errorf("%s: missing element %d has no default: %w", typeName, i, xtype.ErrNoDefault))
		}
		vals[i] = dflt
	}
	for i := n; i < present; i++ {
		if err := d.skipValue(sub); err != nil {
			return nil, err
		}
	}
	return vals, nil
}

// readValue reads one prefixed value of type t from r.
func (d *decoder) readValue(r source, t xtype.Type) (any, error) {
	tag, wt, err := r.ReadPrefix()
	if err != nil {
		return nil, err
	}
	return d.readValueAfterPrefix(r, tag, wt, t)
}

func (d *decoder) readValueAfterPrefix(r source, tag int, wt wire.WireType, t xtype.Type) (any, error) {
	if err := d.enter(t.TypeName()); err != nil {
		return nil, err
	}
	defer d.exit()

	switch vv := t.(type) {
	case xtype.PrimitiveType:
		if wt != vv.WireType() {
			return nil, newDecodeError(t.TypeName(), 0, fmt.Errorf("%w: expected %v, got %v", xtype.ErrUnexpectedWireType, vv.WireType(), wt))
		}
		body, err := readBodyBytes(r, wt, d, t.TypeName())
		if err != nil {
			return nil, err
		}
		return vv.ParseWire(body)

	case *xtype.TupleType:
		return d.readTupleLike(r, wt, vv.Subtypes(), t.TypeName(), func(vals []any) any { return vv.NewValue(vals) })

	case *xtype.MessageType:
		return d.readTupleLike(r, wt, vv.Subtypes(), t.TypeName(), func(vals []any) any { return vv.NewValue(vals) })

	case *xtype.ListType:
		if wt != wire.Htuple {
			return nil, newDecodeError(t.TypeName(), 0, fmt.Errorf("%w: expected htuple, got %v", xtype.ErrUnexpectedWireType, wt))
		}
		items, err := d.readSequence(r, vv.Elem(), t.TypeName())
		if err != nil {
			return nil, err
		}
		return vv.NewValue(items), nil

	case *xtype.ArrayType:
		if wt != wire.Htuple {
			return nil, newDecodeError(t.TypeName(), 0, fmt.Errorf("%w: expected htuple, got %v", xtype.ErrUnexpectedWireType, wt))
		}
		items, err := d.readSequence(r, vv.Elem(), t.TypeName())
		if err != nil {
			return nil, err
		}
		return vv.NewValue(items), nil

	case *xtype.AssocType:
		if wt != wire.Assoc {
			return nil, newDecodeError(t.TypeName(), 0, fmt.Errorf("%w: expected assoc, got %v", xtype.ErrUnexpectedWireType, wt))
		}
		sub, err := materialize(r, d, t.TypeName())
		if err != nil {
			return nil, err
		}
		npairs, err := sub.ReadUvarint()
		if err != nil {
			return nil, err
		}
		if err := d.checkElementCount(t.TypeName(), npairs); err != nil {
			return nil, err
		}
		keys := make([]any, npairs)
		values := make([]any, npairs)
		for i := range keys {
			k, err := d.readValue(sub, vv.Key())
			if err != nil {
				return nil, err
			}
			val, err := d.readValue(sub, vv.Value())
			if err != nil {
				return nil, err
			}
			keys[i] = k
			values[i] = val
		}
		return vv.NewValue(keys, values), nil

	case *xtype.UnionType:
		return d.readUnion(r, tag, wt, vv)

	default:
		return nil, newDecodeError(t.TypeName(), 0, fmt.Errorf("extprot: unsupported type %T", t))
	}
}

// readTupleLike implements the Tuple/Message shared read path, including
// primitive-to-composite promotion: if the wire data is a bare primitive
// value instead of a TUPLE, and the first subtype is a primitive type that
// accepts that wire type, the value is promoted into element 0 and every
// remaining element takes its default.
func (d *decoder) readTupleLike(r source, wt wire.WireType, subtypes []xtype.Type, typeName string, build func([]any) any) (any, error) {
	if wt == wire.Tuple {
		sub, err := materialize(r, d, typeName)
		if err != nil {
			return nil, err
		}
		vals, err := d.readFixedArity(sub, subtypes, typeName)
		if err != nil {
			return nil, err
		}
		return build(vals), nil
	}
	if len(subtypes) == 0 {
		return nil, newDecodeError(typeName, 0, fmt.Errorf("%w: expected tuple, got %v", xtype.ErrUnexpectedWireType, wt))
	}
	pt, ok := subtypes[0].(xtype.PrimitiveType)
	if !ok || pt.WireType() != wt {
		return nil, newDecodeError(typeName, 0, fmt.Errorf("%w: wire type %v does not match first element", xtype.ErrUnpromotable, wt))
	}
	body, err := readBodyBytes(r, wt, d, typeName)
	if err != nil {
		return nil, err
	}
	first, err := pt.ParseWire(body)
	if err != nil {
		return nil, err
	}
	vals := make([]any, len(subtypes))
	vals[0] = first
	for i := 1; i < len(subtypes); i++ {
		dflt, err := subtypes[i].Default()
		if err != nil {
			return nil, newDecodeError(typeName, 0, fmt.Errorf("%s: promoted element %d has no default: %w", typeName, i, xtype.ErrNoDefault))
		}
		vals[i] = dflt
	}
	return build(vals), nil
}

// readSequence decodes a List/Array body: varint(count) followed by that
// many individually prefixed elements of a single element type.
func (d *decoder) readSequence(r source, elem xtype.Type, typeName string) ([]any, error) {
	sub, err := materialize(r, d, typeName)
	if err != nil {
		return nil, err
	}
	count, err := sub.ReadUvarint()
	if err != nil {
		return nil, err
	}
	if err := d.checkElementCount(typeName, count); err != nil {
		return nil, err
	}
	items := make([]any, count)
	for i := range items {
		v, err := d.readValue(sub, elem)
		if err != nil {
			return nil, err
		}
		items[i] = v
	}
	return items, nil
}

// readUnion decodes a Union value. tag and wt come from the prefix already
// consumed by the caller, since a Union's prefix is the only place its
// variant identity is recorded.
func (d *decoder) readUnion(r source, tag int, wt wire.WireType, ut *xtype.UnionType) (any, error) {
	if variant, ok := ut.LookupByWire(wt, tag); ok {
		switch variant.Kind {
		case xtype.VariantConstantOption:
			return ut.NewValueFromWire(variant, nil, nil), nil
		case xtype.VariantMessage:
			sub, err := materialize(r, d, ut.TypeName())
			if err != nil {
				return nil, err
			}
			vals, err := d.readFixedArity(sub, variant.Message.Subtypes(), ut.TypeName())
			if err != nil {
				return nil, err
			}
			return ut.NewValueFromWire(variant, nil, variant.Message.NewValue(vals)), nil
		default: // VariantOption
			sub, err := materialize(r, d, ut.TypeName())
			if err != nil {
				return nil, err
			}
			vals, err := d.readFixedArity(sub, variant.Payload, ut.TypeName())
			if err != nil {
				return nil, err
			}
			return ut.NewValueFromWire(variant, vals, nil), nil
		}
	}

	// Promotion: the wire data is a bare primitive where a richer Union
	// variant is now declared. Only the first non-constant variant is a
	// valid promotion target, matching the Tuple promotion rule.
	target, ok := ut.FirstNonConstant()
	if !ok {
		return nil, newDecodeError(ut.TypeName(), 0, fmt.Errorf("%w: no matching variant for tag %d wire type %v", xtype.ErrUnexpectedWireType, tag, wt))
	}
	subtypes := target.Payload
	if target.Kind == xtype.VariantMessage {
		subtypes = target.Message.Subtypes()
	}
	if len(subtypes) == 0 {
		return nil, newDecodeError(ut.TypeName(), 0, fmt.Errorf("%w: tag %d wire type %v", xtype.ErrUnpromotable, tag, wt))
	}
	pt, ok := subtypes[0].(xtype.PrimitiveType)
	if !ok || pt.WireType() != wt {
		return nil, newDecodeError(ut.TypeName(), 0, fmt.Errorf("%w: tag %d wire type %v", xtype.ErrUnpromotable, tag, wt))
	}
	body, err := readBodyBytes(r, wt, d, ut.TypeName())
	if err != nil {
		return nil, err
	}
	first, err := pt.ParseWire(body)
	if err != nil {
		return nil, err
	}
	vals := make([]any, len(subtypes))
	vals[0] = first
	for i := 1; i < len(subtypes); i++ {
		dflt, err := subtypes[i].Default()
		if err != nil {
			return nil, newDecodeError(ut.TypeName(), 0, fmt.Errorf("promoted element %d has no default: %w", i, xtype.ErrNoDefault))
		}
		vals[i] = dflt
	}
	if target.Kind == xtype.VariantMessage {
		return ut.NewValueFromWire(target, nil, target.Message.NewValue(vals)), nil
	}
	return ut.NewValueFromWire(target, vals, nil), nil
}

// skipValue consumes and discards one prefixed value without decoding it,
// used to step over trailing tuple/message elements a reader doesn't
// recognize.
func (d *decoder) skipValue(r source) error {
	_, wt, err := r.ReadPrefix()
	if err != nil {
		return err
	}
	return d.skipBody(r, wt)
}

func (d *decoder) skipBody(r source, wt wire.WireType) error {
	switch wt {
	case wire.Vint:
		_, err := r.ReadUvarint()
		return err
	case wire.Bits8:
		return r.Skip(1)
	case wire.Bits32:
		return r.Skip(wire.Fixed32Size)
	case wire.Bits64Long, wire.Bits64Float:
		return r.Skip(wire.Fixed64Size)
	case wire.Enum:
		return nil
	case wire.Bytes, wire.Tuple, wire.Htuple, wire.Assoc:
		n, err := r.ReadUvarint()
		if err != nil {
			return err
		}
		return r.Skip(int(n))
	default:
		return fmt.Errorf("extprot: cannot skip unknown wire type %v", wt)
	}
}

// ---- encode side ----

type encoder struct{}

// writeValue writes one prefixed value of type t to w.
func (e *encoder) writeValue(w sink, t xtype.Type, v any) error {
	switch vv := t.(type) {
	case xtype.PrimitiveType:
		body, err := vv.RenderWire(v)
		if err != nil {
			return newEncodeError(t.TypeName(), err)
		}
		if err := w.WritePrefix(0, vv.WireType()); err != nil {
			return err
		}
		return writeBodyBytes(w, vv.WireType(), body)

	case *xtype.TupleType:
		tv := v.(*xtype.TupleValue)
		return e.writeFixedArity(w, 0, wire.Tuple, vv.Subtypes(), tv.Values())

	case *xtype.MessageType:
		msg := v.(*xtype.Message)
		return e.writeFixedArity(w, 0, wire.Tuple, vv.Subtypes(), msg.Values())

	case *xtype.ListType:
		seq := v.(*xtype.Sequence)
		return e.writeSequence(w, 0, vv.Elem(), seq.Items())

	case *xtype.ArrayType:
		seq := v.(*xtype.Sequence)
		return e.writeSequence(w, 0, vv.Elem(), seq.Items())

	case *xtype.AssocType:
		a := v.(*xtype.Assoc)
		return e.writeAssoc(w, vv, a)

	case *xtype.UnionType:
		uv := v.(*xtype.UnionValue)
		return e.writeUnion(w, uv)

	default:
		return newEncodeError(t.TypeName(), fmt.Errorf("extprot: unsupported type %T", t))
	}
}

// writeFixedArity writes the shared Tuple/Message body: a prefix of the
// given tag and wire type, then varint(elementCount) followed by each
// element individually prefixed in turn.
func (e *encoder) writeFixedArity(w sink, tag int, wt wire.WireType, subtypes []xtype.Type, vals []any) error {
	body, err := e.renderFixedArity(subtypes, vals)
	if err != nil {
		return err
	}
	if err := w.WritePrefix(tag, wt); err != nil {
		return err
	}
	if err := w.WriteUvarint(uint64(len(body))); err != nil {
		return err
	}
	return w.WriteAll(body)
}

// renderFixedArity renders element count plus every individually prefixed
// element into a pooled scratch buffer so the enclosing prefix can carry
// an exact byte length (the format's length-precomputation requirement).
// The scratch buffer is returned to the pool before this returns; the
// caller receives a freshly sized copy safe to retain.
func (e *encoder) renderFixedArity(subtypes []xtype.Type, vals []any) ([]byte, error) {
	scratch := wire.NewWriterWithBuffer(getBuffer(64))
	if err := scratch.WriteUvarint(uint64(len(vals))); err != nil {
		return nil, err
	}
	for i, st := range subtypes {
		if err := e.writeValue(scratch, st, vals[i]); err != nil {
			return nil, err
		}
	}
	out := append([]byte(nil), scratch.Bytes()...)
	putBuffer(scratch.Bytes())
	return out, nil
}

// writeSequence writes a List/Array body: a prefix, then varint(count)
// followed by each element individually prefixed.
func (e *encoder) writeSequence(w sink, tag int, elem xtype.Type, items []any) error {
	scratch := wire.NewWriterWithBuffer(getBuffer(64))
	if err := scratch.WriteUvarint(uint64(len(items))); err != nil {
		return err
	}
	for _, it := range items {
		if err := e.writeValue(scratch, elem, it); err != nil {
			return err
		}
	}
	if err := w.WritePrefix(tag, wire.Htuple); err != nil {
		return err
	}
	if err := w.WriteUvarint(uint64(len(scratch.Bytes()))); err != nil {
		return err
	}
	err := w.WriteAll(scratch.Bytes())
	putBuffer(scratch.Bytes())
	return err
}

// writeAssoc writes an Assoc body: a prefix, then varint(pairCount)
// followed by each key and value individually prefixed.
func (e *encoder) writeAssoc(w sink, t *xtype.AssocType, a *xtype.Assoc) error {
	keys, values := a.Entries()
	scratch := wire.NewWriterWithBuffer(getBuffer(64))
	if err := scratch.WriteUvarint(uint64(len(keys))); err != nil {
		return err
	}
	for i := range keys {
		if err := e.writeValue(scratch, t.Key(), keys[i]); err != nil {
			return err
		}
		if err := e.writeValue(scratch, t.Value(), values[i]); err != nil {
			return err
		}
	}
	if err := w.WritePrefix(0, wire.Assoc); err != nil {
		return err
	}
	if err := w.WriteUvarint(uint64(len(scratch.Bytes()))); err != nil {
		return err
	}
	err := w.WriteAll(scratch.Bytes())
	putBuffer(scratch.Bytes())
	return err
}

// writeUnion writes a Union value using its selected variant's tag and
// wire type: ENUM with no payload for a constant option, TUPLE-shaped
// otherwise.
func (e *encoder) writeUnion(w sink, uv *xtype.UnionValue) error {
	variant := uv.Variant()
	if variant.Kind == xtype.VariantConstantOption {
		return w.WritePrefix(variant.Tag, wire.Enum)
	}
	if variant.Kind == xtype.VariantMessage {
		return e.writeFixedArity(w, variant.Tag, wire.Tuple, variant.Message.Subtypes(), uv.Message().Values())
	}
	return e.writeFixedArity(w, variant.Tag, wire.Tuple, variant.Payload, uv.Payload())
}
