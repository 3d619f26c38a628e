package xtype

import (
	"fmt"

	"github.com/blockberries/extprot/internal/wire"
)

// VariantKind distinguishes the three shapes a Union variant can take.
type VariantKind uint8

const (
	// VariantConstantOption is a payload-free Option, rendered as ENUM.
	VariantConstantOption VariantKind = iota
	// VariantOption is an Option carrying an ordered payload tuple,
	// rendered as TUPLE.
	VariantOption
	// VariantMessage is a named-record variant, rendered as TUPLE.
	VariantMessage
)

// VariantDecl describes one variant as given at union-construction time,
// before tags are assigned.
type VariantDecl struct {
	Name    string
	Kind    VariantKind
	Payload []Type       // for VariantOption
	Message *MessageType // for VariantMessage; its fields describe the record
}

// Variant is one tag-assigned member of a Union.
type Variant struct {
	Name    string
	Kind    VariantKind
	Tag     int
	Payload []Type
	Message *MessageType
}

func (v *Variant) wireType() wire.WireType {
	if v.Kind == VariantConstantOption {
		return wire.Enum
	}
	return wire.Tuple
}

// subtypes returns the ordered subtypes the codec walks when reading or
// writing this variant's payload (empty for a constant option).
func (v *Variant) subtypes() []Type {
	if v.Kind == VariantMessage {
		return v.Message.Subtypes()
	}
	return v.Payload
}

// UnionType is an ordered set of named variants, each either an Option
// (constant or payload-carrying) or a Message. All variants in a single
// Union share one shape: either every variant is some flavor of Option,
// or every variant is a Message.
type UnionType struct {
	name     string
	variants []Variant
}

// NewUnionType builds a Union from declaration-ordered variants, assigning
// tags per the two independent sequences (constant options vs.
// everything else). It rejects a union mixing Option and Message
// variants.
func NewUnionType(name string, decls []VariantDecl) (*UnionType, error) {
	variants, err := buildVariants(name, decls)
	if err != nil {
		return nil, err
	}
	return &UnionType{name: name, variants: variants}, nil
}

// NewUnionTypeStub returns an empty, named UnionType with no variants
// set yet, for the schema compiler to allocate before a self- or
// mutually-recursive variant payload can be resolved to this pointer.
// SetVariants fills in the body once every variant type is known.
func NewUnionTypeStub(name string) *UnionType {
	return &UnionType{name: name}
}

// SetVariants fills in a stub UnionType's variants, assigning tags the
// same way NewUnionType does. Intended for exactly one call, from the
// schema compiler, after every variant payload referencing this stub
// (including self-references) has been built.
func (t *UnionType) SetVariants(decls []VariantDecl) error {
	variants, err := buildVariants(t.name, decls)
	if err != nil {
		return err
	}
	t.variants = variants
	return nil
}

func buildVariants(name string, decls []VariantDecl) ([]Variant, error) {
	if len(decls) == 0 {
		return nil, newTypeError(name, "union must declare at least one variant", ErrParse)
	}
	sawMessage := false
	sawOption := false
	for _, d := range decls {
		if d.Kind == VariantMessage {
			sawMessage = true
		} else {
			sawOption = true
		}
	}
	if sawMessage && sawOption {
		return nil, newTypeError(name, "union variants must be all-Option or all-Message", ErrParse)
	}

	var enumSeq, tupleSeq int
	variants := make([]Variant, len(decls))
	for i, d := range decls {
		v := Variant{Name: d.Name, Kind: d.Kind, Payload: d.Payload, Message: d.Message}
		if d.Kind == VariantConstantOption {
			v.Tag = enumSeq
			enumSeq++
		} else {
			v.Tag = tupleSeq
			tupleSeq++
		}
		variants[i] = v
	}
	return variants, nil
}

func (t *UnionType) Kind() Kind       { return KindUnion }
func (t *UnionType) TypeName() string { return t.name }
func (t *UnionType) Variants() []Variant { return t.variants }

// ByName returns the variant with the given name.
func (t *UnionType) ByName(name string) (*Variant, bool) {
	for i := range t.variants {
		if t.variants[i].Name == name {
			return &t.variants[i], true
		}
	}
	return nil, false
}

// LookupByWire finds the variant matching an on-wire (wireType, tag)
// pair, as used when parsing.
func (t *UnionType) LookupByWire(wt wire.WireType, tag int) (*Variant, bool) {
	for i := range t.variants {
		v := &t.variants[i]
		if v.wireType() == wt && v.Tag == tag {
			return v, true
		}
	}
	return nil, false
}

// FirstNonConstant returns the first variant that is not a constant
// option, used as the promotion target when a primitive value is decoded
// against a Union type (see the promotion rule in the codec).
func (t *UnionType) FirstNonConstant() (*Variant, bool) {
	for i := range t.variants {
		if t.variants[i].Kind != VariantConstantOption {
			return &t.variants[i], true
		}
	}
	return nil, false
}

// UnionValue is the C4 instance of a Union value: the selected variant
// plus, for non-constant variants, its payload. A constant option's
// identity alone carries all the information; it needs no extra storage.
type UnionValue struct {
	t       *UnionType
	variant *Variant
	payload []any    // set when variant.Kind == VariantOption
	msg     *Message // set when variant.Kind == VariantMessage
}

// Variant returns the selected variant.
func (u *UnionValue) Variant() *Variant { return u.variant }

// Payload returns the payload values for a VariantOption value.
func (u *UnionValue) Payload() []any { return u.payload }

// Message returns the record for a VariantMessage value.
func (u *UnionValue) Message() *Message { return u.msg }

// NewConstant returns a UnionValue selecting the named constant option.
func (t *UnionType) NewConstant(name string) (*UnionValue, error) {
	v, ok := t.ByName(name)
	if !ok || v.Kind != VariantConstantOption {
		return nil, newTypeError(t.name, fmt.Sprintf("%q is not a constant option", name), ErrTypeMismatch)
	}
	return &UnionValue{t: t, variant: v}, nil
}

// NewOption returns a UnionValue selecting the named non-constant option,
// converting each payload element against its declared type.
func (t *UnionType) NewOption(name string, raws ...any) (*UnionValue, error) {
	v, ok := t.ByName(name)
	if !ok || v.Kind != VariantOption {
		return nil, newTypeError(t.name, fmt.Sprintf("%q is not a payload option", name), ErrTypeMismatch)
	}
	if len(raws) != len(v.Payload) {
		return nil, newTypeError(t.name, fmt.Sprintf("%s expects %d payload values, got %d", name, len(v.Payload), len(raws)), ErrTypeMismatch)
	}
	vals := make([]any, len(raws))
	for i, raw := range raws {
		cv, err := v.Payload[i].Convert(raw)
		if err != nil {
			return nil, err
		}
		vals[i] = cv
	}
	return &UnionValue{t: t, variant: v, payload: vals}, nil
}

// NewMessageVariant returns a UnionValue wrapping an already-built message
// matching one of the union's message variants.
func (t *UnionType) NewMessageVariant(msg *Message) (*UnionValue, error) {
	for i := range t.variants {
		v := &t.variants[i]
		if v.Kind == VariantMessage && v.Message == msg.t {
			return &UnionValue{t: t, variant: v, msg: msg}, nil
		}
	}
	return nil, newTypeError(t.name, "message does not belong to any variant of this union", ErrTypeMismatch)
}

// newUnionValueFromWire builds a UnionValue directly from decoded parts,
// skipping re-validation. Used internally by the codec.
func newUnionValueFromWire(t *UnionType, v *Variant, payload []any, msg *Message) *UnionValue {
	return &UnionValue{t: t, variant: v, payload: payload, msg: msg}
}

// NewValueFromWire builds a UnionValue directly from decoded parts, skipping
// re-validation. Exported for use by the wire codec in pkg/extprot, which
// has already validated the payload or message while decoding it.
func (t *UnionType) NewValueFromWire(v *Variant, payload []any, msg *Message) *UnionValue {
	return newUnionValueFromWire(t, v, payload, msg)
}

func (t *UnionType) Convert(raw any) (any, error) {
	uv, ok := raw.(*UnionValue)
	if !ok || uv.t != t {
		return nil, newTypeError(t.name, fmt.Sprintf("cannot convert %T to union %s", raw, t.name), ErrTypeMismatch)
	}
	return uv, nil
}

// Default implements the Union default rule: the first variant that is
// either a Message (its own default) or a constant Option.
func (t *UnionType) Default() (any, error) {
	for i := range t.variants {
		v := &t.variants[i]
		switch v.Kind {
		case VariantConstantOption:
			return &UnionValue{t: t, variant: v}, nil
		case VariantMessage:
			d, err := v.Message.Default()
			if err != nil {
				return nil, err
			}
			return &UnionValue{t: t, variant: v, msg: d.(*Message)}, nil
		}
	}
	return nil, newTypeError(t.name, "no constant option or message variant to default to", ErrNoDefault)
}

var _ Type = (*UnionType)(nil)
