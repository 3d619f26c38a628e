package xtype

import (
	"fmt"

	"github.com/blockberries/extprot/internal/wire"
)

// Sequence is the shared C4 value representation behind both List and
// Array: an ordered, homogeneous collection whose mutating operations
// validate every inbound element against the element type. List and Array
// produce byte-identical wire output (both HTUPLE); the distinction
// between them exists only for the in-memory representation a caller
// chooses, which is why they share this one backing type.
type Sequence struct {
	elem  Type
	items []any
}

// Len returns the number of elements.
func (s *Sequence) Len() int { return len(s.items) }

// Get returns the element at i.
func (s *Sequence) Get(i int) any { return s.items[i] }

// Items returns the elements in order. The returned slice aliases the
// Sequence's storage and must not be mutated directly.
func (s *Sequence) Items() []any { return s.items }

// Push validates raw against the element type and appends it.
func (s *Sequence) Push(raw any) error {
	v, err := s.elem.Convert(raw)
	if err != nil {
		return err
	}
	s.items = append(s.items, v)
	return nil
}

// Insert validates raw and inserts it at position i.
func (s *Sequence) Insert(i int, raw any) error {
	if i < 0 || i > len(s.items) {
		return newTypeError(s.elem.TypeName(), "index out of range", ErrTypeMismatch)
	}
	v, err := s.elem.Convert(raw)
	if err != nil {
		return err
	}
	s.items = append(s.items, nil)
	copy(s.items[i+1:], s.items[i:])
	s.items[i] = v
	return nil
}

// Replace validates raw and assigns it at position i.
func (s *Sequence) Replace(i int, raw any) error {
	if i < 0 || i >= len(s.items) {
		return newTypeError(s.elem.TypeName(), "index out of range", ErrTypeMismatch)
	}
	v, err := s.elem.Convert(raw)
	if err != nil {
		return err
	}
	s.items[i] = v
	return nil
}

// RemoveAt removes the element at position i.
func (s *Sequence) RemoveAt(i int) error {
	if i < 0 || i >= len(s.items) {
		return newTypeError(s.elem.TypeName(), "index out of range", ErrTypeMismatch)
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return nil
}

// Extend validates and appends every element of raws, in order.
func (s *Sequence) Extend(raws []any) error {
	for _, raw := range raws {
		if err := s.Push(raw); err != nil {
			return err
		}
	}
	return nil
}

// Concat returns a new Sequence with other's elements appended after
// this one's. Both sequences must share the same element type.
func (s *Sequence) Concat(other *Sequence) (*Sequence, error) {
	if other.elem.TypeName() != s.elem.TypeName() {
		return nil, newTypeError(s.elem.TypeName(), "element type mismatch in concat", ErrTypeMismatch)
	}
	items := make([]any, 0, len(s.items)+len(other.items))
	items = append(items, s.items...)
	items = append(items, other.items...)
	return &Sequence{elem: s.elem, items: items}, nil
}

// Contains reports whether eq(element, needle) holds for any element.
// Comparison is left to the caller since element values may not be
// comparable with ==.
func (s *Sequence) Contains(needle any, eq func(a, b any) bool) bool {
	for _, it := range s.items {
		if eq(it, needle) {
			return true
		}
	}
	return false
}

func newSequence(elem Type, raws []any) (*Sequence, error) {
	items := make([]any, len(raws))
	for i, raw := range raws {
		v, err := elem.Convert(raw)
		if err != nil {
			return nil, err
		}
		items[i] = v
	}
	return &Sequence{elem: elem, items: items}, nil
}

// ListType is a homogeneous sequence hinting at a linked-list-like
// in-memory representation; it is identical to ArrayType on the wire.
type ListType struct {
	elem Type
}

// NewListType returns a List type over elem.
func NewListType(elem Type) *ListType { return &ListType{elem: elem} }

func (t *ListType) Kind() Kind              { return KindList }
func (t *ListType) WireType() wire.WireType { return wire.Htuple }
func (t *ListType) Subtypes() []Type        { return []Type{t.elem} }
func (t *ListType) Elem() Type              { return t.elem }
func (t *ListType) TypeName() string        { return fmt.Sprintf("[%s]", t.elem.TypeName()) }

func (t *ListType) Convert(raw any) (any, error) {
	switch v := raw.(type) {
	case *Sequence:
		return v, nil
	case []any:
		return newSequence(t.elem, v)
	default:
		return nil, newTypeError(t.TypeName(), fmt.Sprintf("cannot convert %T to list", raw), ErrTypeMismatch)
	}
}

func (t *ListType) Default() (any, error) {
	return &Sequence{elem: t.elem}, nil
}

// NewValue constructs a Sequence from already-converted elements without
// running them back through Convert. Used internally by the codec.
func (t *ListType) NewValue(items []any) *Sequence {
	return &Sequence{elem: t.elem, items: items}
}

// ArrayType is a homogeneous sequence hinting at a contiguous in-memory
// representation; it is identical to ListType on the wire.
type ArrayType struct {
	elem Type
}

// NewArrayType returns an Array type over elem.
func NewArrayType(elem Type) *ArrayType { return &ArrayType{elem: elem} }

func (t *ArrayType) Kind() Kind              { return KindArray }
func (t *ArrayType) WireType() wire.WireType { return wire.Htuple }
func (t *ArrayType) Subtypes() []Type        { return []Type{t.elem} }
func (t *ArrayType) Elem() Type              { return t.elem }
func (t *ArrayType) TypeName() string        { return fmt.Sprintf("[|%s|]", t.elem.TypeName()) }

func (t *ArrayType) Convert(raw any) (any, error) {
	switch v := raw.(type) {
	case *Sequence:
		return v, nil
	case []any:
		return newSequence(t.elem, v)
	default:
		return nil, newTypeError(t.TypeName(), fmt.Sprintf("cannot convert %T to array", raw), ErrTypeMismatch)
	}
}

func (t *ArrayType) Default() (any, error) {
	return &Sequence{elem: t.elem}, nil
}

// NewValue constructs a Sequence from already-converted elements without
// running them back through Convert. Used internally by the codec.
func (t *ArrayType) NewValue(items []any) *Sequence {
	return &Sequence{elem: t.elem, items: items}
}

var (
	_ CompositeType = (*ListType)(nil)
	_ CompositeType = (*ArrayType)(nil)
)
