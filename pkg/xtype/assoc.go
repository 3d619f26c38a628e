package xtype

import (
	"fmt"

	"github.com/blockberries/extprot/internal/wire"
)

// assocEntry is one (key, value) pair in an Assoc. Assoc preserves
// insertion order internally for deterministic iteration within a single
// encoder call, even though the format does not require it across
// round-trips.
type assocEntry struct {
	key   any
	value any
}

// Assoc is the C4 value representation of an Assoc(K,V): an
// insertion-validating mapping whose keys are unique. Both keys and
// values pass through their type's Convert on every mutation.
type Assoc struct {
	t       *AssocType
	entries []assocEntry
	index   map[any]int
}

// Len returns the number of pairs.
func (a *Assoc) Len() int { return len(a.entries) }

// Get returns the value for key and whether it was present.
func (a *Assoc) Get(key any) (any, bool) {
	i, ok := a.index[key]
	if !ok {
		return nil, false
	}
	return a.entries[i].value, true
}

// Put validates key and value and inserts or overwrites the pair.
func (a *Assoc) Put(rawKey, rawValue any) error {
	k, err := a.t.key.Convert(rawKey)
	if err != nil {
		return err
	}
	v, err := a.t.value.Convert(rawValue)
	if err != nil {
		return err
	}
	if a.index == nil {
		a.index = make(map[any]int)
	}
	if i, ok := a.index[k]; ok {
		a.entries[i].value = v
		return nil
	}
	a.index[k] = len(a.entries)
	a.entries = append(a.entries, assocEntry{key: k, value: v})
	return nil
}

// Delete removes the pair for key, if present.
func (a *Assoc) Delete(key any) {
	i, ok := a.index[key]
	if !ok {
		return
	}
	a.entries = append(a.entries[:i], a.entries[i+1:]...)
	delete(a.index, key)
	for k, idx := range a.index {
		if idx > i {
			a.index[k] = idx - 1
		}
	}
}

// Keys returns the keys in insertion order.
func (a *Assoc) Keys() []any {
	keys := make([]any, len(a.entries))
	for i, e := range a.entries {
		keys[i] = e.key
	}
	return keys
}

// Entries returns the (key, value) pairs in insertion order as parallel
// slices, suitable for wire iteration.
func (a *Assoc) Entries() (keys, values []any) {
	keys = make([]any, len(a.entries))
	values = make([]any, len(a.entries))
	for i, e := range a.entries {
		keys[i] = e.key
		values[i] = e.value
	}
	return keys, values
}

// AssocType is a mapping from keys of type K to values of type V,
// rendered as ASSOC.
type AssocType struct {
	key   Type
	value Type
}

// NewAssocType returns an Assoc type over the given key and value types.
func NewAssocType(key, value Type) *AssocType {
	return &AssocType{key: key, value: value}
}

func (t *AssocType) Kind() Kind              { return KindAssoc }
func (t *AssocType) WireType() wire.WireType { return wire.Assoc }
func (t *AssocType) Subtypes() []Type        { return []Type{t.key, t.value} }
func (t *AssocType) Key() Type               { return t.key }
func (t *AssocType) Value() Type             { return t.value }
func (t *AssocType) TypeName() string {
	return fmt.Sprintf("assoc<%s,%s>", t.key.TypeName(), t.value.TypeName())
}

func (t *AssocType) Convert(raw any) (any, error) {
	switch v := raw.(type) {
	case *Assoc:
		return v, nil
	case map[any]any:
		a := &Assoc{t: t}
		for k, val := range v {
			if err := a.Put(k, val); err != nil {
				return nil, err
			}
		}
		return a, nil
	default:
		return nil, newTypeError(t.TypeName(), fmt.Sprintf("cannot convert %T to assoc", raw), ErrTypeMismatch)
	}
}

func (t *AssocType) Default() (any, error) {
	return &Assoc{t: t}, nil
}

// NewValue constructs an Assoc from already-converted parallel key/value
// slices without running them back through Convert. Used internally by
// the codec.
func (t *AssocType) NewValue(keys, values []any) *Assoc {
	a := &Assoc{t: t, index: make(map[any]int, len(keys))}
	for i := range keys {
		a.index[keys[i]] = len(a.entries)
		a.entries = append(a.entries, assocEntry{key: keys[i], value: values[i]})
	}
	return a
}

var _ CompositeType = (*AssocType)(nil)
