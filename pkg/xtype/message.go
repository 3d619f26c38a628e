package xtype

import (
	"fmt"

	"github.com/blockberries/extprot/internal/wire"
)

// Field is one declared field of a Message: a name, a type, and whether
// it may be reassigned after the message is initialized.
type Field struct {
	Name    string
	Type    Type
	Mutable bool
}

// MessageType is an ordered sequence of named, typed fields, rendered as
// TUPLE (by position; field names exist only for the in-memory API and
// for diagnostics, never on the wire). Tag reports 0 for every
// MessageType built by this package; the tag a Message variant gets
// within a Union is held in that union's Variant.Tag.
type MessageType struct {
	name   string
	fields []Field
	tag    int
}

// NewMessageType returns a standalone (tag 0) Message type.
func NewMessageType(name string, fields ...Field) *MessageType {
	return &MessageType{name: name, fields: fields}
}

// NewMessageTypeStub returns an empty, named MessageType with no fields
// set yet. The schema compiler allocates a stub before it has finished
// building field types, so that a self- or mutually-recursive field
// reference can be resolved to this same pointer; SetFields then fills
// in the body once every field type is known.
func NewMessageTypeStub(name string) *MessageType {
	return &MessageType{name: name}
}

// SetFields fills in a stub MessageType's field list. Intended for
// exactly one call, from the schema compiler, after every field type
// referencing this stub (including self-references) has been built.
func (t *MessageType) SetFields(fields []Field) {
	t.fields = fields
}

func (t *MessageType) Kind() Kind              { return KindMessage }
func (t *MessageType) WireType() wire.WireType { return wire.Tuple }
func (t *MessageType) TypeName() string        { return t.name }
func (t *MessageType) Fields() []Field         { return t.fields }
func (t *MessageType) Tag() int                { return t.tag }

// Subtypes returns each field's type in declaration order, letting the
// codec treat a Message exactly like a Tuple for element parsing.
func (t *MessageType) Subtypes() []Type {
	ts := make([]Type, len(t.fields))
	for i, f := range t.fields {
		ts[i] = f.Type
	}
	return ts
}

func (t *MessageType) fieldIndex(name string) int {
	for i, f := range t.fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Message is the C4 value representation of a Message: a record with one
// slot per declared field. Once Build has filled every field it is
// initialized; after that, assigning a non-mutable field fails with
// ErrImmutableField.
type Message struct {
	t           *MessageType
	vals        []any
	initialized bool
}

// Type returns the message's type.
func (m *Message) Type() *MessageType { return m.t }

// Get returns the value of field i (by declaration order).
func (m *Message) Get(i int) any { return m.vals[i] }

// GetByName returns the value of the named field.
func (m *Message) GetByName(name string) (any, bool) {
	i := m.t.fieldIndex(name)
	if i < 0 {
		return nil, false
	}
	return m.vals[i], true
}

// Set validates and assigns field i. Once the message is initialized,
// this fails with ErrImmutableField unless the field is mutable.
func (m *Message) Set(i int, raw any) error {
	if i < 0 || i >= len(m.vals) {
		return newTypeError(m.t.name, "field index out of range", ErrTypeMismatch)
	}
	f := m.t.fields[i]
	if m.initialized && !f.Mutable {
		return newFieldTypeError(m.t.name, f.Name, "field is not mutable", ErrImmutableField)
	}
	v, err := f.Type.Convert(raw)
	if err != nil {
		return err
	}
	m.vals[i] = v
	return nil
}

// SetByName validates and assigns the named field.
func (m *Message) SetByName(name string, raw any) error {
	i := m.t.fieldIndex(name)
	if i < 0 {
		return newFieldTypeError(m.t.name, name, "unknown field", ErrTypeMismatch)
	}
	return m.Set(i, raw)
}

// Values returns the field values in declaration order. The returned
// slice aliases the Message's storage and must not be mutated directly.
func (m *Message) Values() []any { return m.vals }

// MessageBuilder constructs a Message, filling any field left unset at
// Build time with its type's default value.
type MessageBuilder struct {
	t    *MessageType
	vals []any
	set  []bool
}

// NewBuilder starts constructing a Message of type t.
func (t *MessageType) NewBuilder() *MessageBuilder {
	return &MessageBuilder{t: t, vals: make([]any, len(t.fields)), set: make([]bool, len(t.fields))}
}

// Set validates and stages a positional field value.
func (b *MessageBuilder) Set(i int, raw any) error {
	if i < 0 || i >= len(b.vals) {
		return newTypeError(b.t.name, "field index out of range", ErrTypeMismatch)
	}
	v, err := b.t.fields[i].Type.Convert(raw)
	if err != nil {
		return err
	}
	b.vals[i] = v
	b.set[i] = true
	return nil
}

// SetByName validates and stages a named field value.
func (b *MessageBuilder) SetByName(name string, raw any) error {
	i := b.t.fieldIndex(name)
	if i < 0 {
		return newFieldTypeError(b.t.name, name, "unknown field", ErrTypeMismatch)
	}
	return b.Set(i, raw)
}

// Build fills any unset field with its default and returns the
// initialized Message. Fails with ErrNoDefault if an unset field's type
// provides no default.
func (b *MessageBuilder) Build() (*Message, error) {
	for i, f := range b.t.fields {
		if b.set[i] {
			continue
		}
		d, err := f.Type.Default()
		if err != nil {
			return nil, newFieldTypeError(b.t.name, f.Name, "no value and no default", ErrNoDefault)
		}
		b.vals[i] = d
	}
	return &Message{t: b.t, vals: b.vals, initialized: true}, nil
}

// newMessageFromWire constructs an already-initialized Message directly
// from decoded field values, skipping Convert. Used internally by the
// codec, which has already validated each element through the field's
// type while parsing it off the wire.
func newMessageFromWire(t *MessageType, vals []any) *Message {
	return &Message{t: t, vals: vals, initialized: true}
}

// NewValue constructs an already-initialized Message from already-converted
// field values without running them back through Convert. Exported for use
// by the wire codec in pkg/extprot, which has already validated each
// element through the field's type while decoding it.
func (t *MessageType) NewValue(vals []any) *Message {
	return newMessageFromWire(t, vals)
}

func (t *MessageType) Convert(raw any) (any, error) {
	switch v := raw.(type) {
	case *Message:
		if v.t != t {
			return nil, newTypeError(t.name, "message type mismatch", ErrTypeMismatch)
		}
		return v, nil
	case map[string]any:
		b := t.NewBuilder()
		for name, val := range v {
			if err := b.SetByName(name, val); err != nil {
				return nil, err
			}
		}
		return b.Build()
	default:
		return nil, newTypeError(t.name, fmt.Sprintf("cannot convert %T to message %s", raw, t.name), ErrTypeMismatch)
	}
}

func (t *MessageType) Default() (any, error) {
	return t.NewBuilder().Build()
}

var _ CompositeType = (*MessageType)(nil)
