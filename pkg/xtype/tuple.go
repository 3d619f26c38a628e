package xtype

import (
	"fmt"

	"github.com/blockberries/extprot/internal/wire"
)

// TupleType is a fixed-arity heterogeneous record with positional fields,
// rendered as TUPLE.
type TupleType struct {
	subtypes []Type
}

// NewTupleType returns a Tuple type over the given subtypes in order.
func NewTupleType(subtypes ...Type) *TupleType {
	return &TupleType{subtypes: subtypes}
}

func (t *TupleType) Kind() Kind              { return KindTuple }
func (t *TupleType) WireType() wire.WireType { return wire.Tuple }
func (t *TupleType) Subtypes() []Type        { return t.subtypes }

func (t *TupleType) TypeName() string {
	s := "("
	for i, st := range t.subtypes {
		if i > 0 {
			s += "*"
		}
		s += st.TypeName()
	}
	return s + ")"
}

// TupleValue is the C4 value representation of a Tuple: an ordered,
// fixed-length sequence of elements, one per subtype. Every mutation
// funnels through the corresponding subtype's Convert.
type TupleValue struct {
	t    *TupleType
	vals []any
}

// Len returns the number of elements.
func (tv *TupleValue) Len() int { return len(tv.vals) }

// Get returns the element at i.
func (tv *TupleValue) Get(i int) any { return tv.vals[i] }

// Set validates and assigns the element at i.
func (tv *TupleValue) Set(i int, raw any) error {
	if i < 0 || i >= len(tv.vals) {
		return newTypeError(tv.t.TypeName(), "index out of range", ErrTypeMismatch)
	}
	v, err := tv.t.subtypes[i].Convert(raw)
	if err != nil {
		return err
	}
	tv.vals[i] = v
	return nil
}

// Values returns the underlying elements in order. The returned slice
// aliases the TupleValue's storage and must not be mutated directly.
func (tv *TupleValue) Values() []any { return tv.vals }

func (t *TupleType) Convert(raw any) (any, error) {
	switch v := raw.(type) {
	case *TupleValue:
		if v.t == t || len(v.vals) == len(t.subtypes) {
			return v, nil
		}
		return nil, newTypeError(t.TypeName(), "tuple arity mismatch", ErrTypeMismatch)
	case []any:
		if len(v) != len(t.subtypes) {
			return nil, newTypeError(t.TypeName(), fmt.Sprintf("expected %d elements, got %d", len(t.subtypes), len(v)), ErrTypeMismatch)
		}
		vals := make([]any, len(v))
		for i, st := range t.subtypes {
			cv, err := st.Convert(v[i])
			if err != nil {
				return nil, err
			}
			vals[i] = cv
		}
		return &TupleValue{t: t, vals: vals}, nil
	default:
		return nil, newTypeError(t.TypeName(), fmt.Sprintf("cannot convert %T to tuple", raw), ErrTypeMismatch)
	}
}

func (t *TupleType) Default() (any, error) {
	vals := make([]any, len(t.subtypes))
	for i, st := range t.subtypes {
		d, err := st.Default()
		if err != nil {
			return nil, newFieldTypeError(t.TypeName(), fmt.Sprintf("element %d", i), "subtype has no default", ErrNoDefault)
		}
		vals[i] = d
	}
	return &TupleValue{t: t, vals: vals}, nil
}

// NewValue constructs a TupleValue from already-converted element values
// without running them back through Convert. Used internally by the codec
// while decoding.
func (t *TupleType) NewValue(vals []any) *TupleValue {
	return &TupleValue{t: t, vals: vals}
}

var _ CompositeType = (*TupleType)(nil)
