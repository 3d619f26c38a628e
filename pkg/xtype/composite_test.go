package xtype

import (
	"errors"
	"testing"
)

func TestTupleDefaultAndConvert(t *testing.T) {
	tt := NewTupleType(Bool{}, Int{})
	d, err := tt.Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}
	tv := d.(*TupleValue)
	if tv.Get(0) != false || tv.Get(1) != int64(0) {
		t.Fatalf("default tuple values wrong: %v", tv.Values())
	}

	v, err := tt.Convert([]any{true, int64(5)})
	if err != nil {
		t.Fatalf("Convert() error: %v", err)
	}
	got := v.(*TupleValue)
	if got.Get(0) != true || got.Get(1) != int64(5) {
		t.Fatalf("converted values wrong: %v", got.Values())
	}

	if _, err := tt.Convert([]any{true}); !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("arity mismatch should fail with ErrTypeMismatch, got %v", err)
	}
}

func TestTupleSetRejectsWrongType(t *testing.T) {
	tt := NewTupleType(Bool{}, Int{})
	v, _ := tt.Default()
	tv := v.(*TupleValue)
	if err := tv.Set(0, "nope"); !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("Set() with wrong type error = %v, want ErrTypeMismatch", err)
	}
	if err := tv.Set(0, true); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
}

func TestListAndArrayShareWireShape(t *testing.T) {
	lt := NewListType(Int{})
	at := NewArrayType(Int{})
	if lt.WireType() != at.WireType() {
		t.Fatalf("List and Array must share a wire type")
	}
}

func TestSequenceMutation(t *testing.T) {
	lt := NewListType(Int{})
	v, _ := lt.Default()
	seq := v.(*Sequence)

	if err := seq.Push(int64(1)); err != nil {
		t.Fatalf("Push() error: %v", err)
	}
	if err := seq.Push(int64(2)); err != nil {
		t.Fatalf("Push() error: %v", err)
	}
	if err := seq.Insert(1, int64(9)); err != nil {
		t.Fatalf("Insert() error: %v", err)
	}
	if got := seq.Items(); len(got) != 3 || got[1] != int64(9) {
		t.Fatalf("after insert: %v", got)
	}
	if err := seq.Replace(0, int64(100)); err != nil {
		t.Fatalf("Replace() error: %v", err)
	}
	if seq.Get(0) != int64(100) {
		t.Fatalf("Replace() did not take effect")
	}
	if err := seq.RemoveAt(1); err != nil {
		t.Fatalf("RemoveAt() error: %v", err)
	}
	if seq.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", seq.Len())
	}
	if !seq.Contains(int64(2), func(a, b any) bool { return a == b }) {
		t.Fatalf("Contains() should find 2")
	}

	other, _ := lt.Default()
	otherSeq := other.(*Sequence)
	_ = otherSeq.Push(int64(42))
	merged, err := seq.Concat(otherSeq)
	if err != nil {
		t.Fatalf("Concat() error: %v", err)
	}
	if merged.Len() != 3 {
		t.Fatalf("Concat() length = %d, want 3", merged.Len())
	}
}

func TestAssocPutGetDelete(t *testing.T) {
	at := NewAssocType(String{}, Int{})
	v, _ := at.Default()
	a := v.(*Assoc)

	if err := a.Put("one", int64(1)); err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	if err := a.Put("two", int64(2)); err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	got, ok := a.Get("one")
	if !ok || got != int64(1) {
		t.Fatalf("Get(one) = %v, %v", got, ok)
	}
	// overwrite
	if err := a.Put("one", int64(11)); err != nil {
		t.Fatalf("Put() overwrite error: %v", err)
	}
	got, _ = a.Get("one")
	if got != int64(11) {
		t.Fatalf("overwrite did not take effect: %v", got)
	}
	a.Delete("two")
	if a.Len() != 1 {
		t.Fatalf("Len() after Delete = %d, want 1", a.Len())
	}
}

func TestMessageBuilderAndImmutability(t *testing.T) {
	mt := NewMessageType("point",
		Field{Name: "x", Type: Int{}, Mutable: false},
		Field{Name: "y", Type: Int{}, Mutable: true},
	)
	b := mt.NewBuilder()
	if err := b.SetByName("x", int64(1)); err != nil {
		t.Fatalf("SetByName(x) error: %v", err)
	}
	msg, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if v, _ := msg.GetByName("x"); v != int64(1) {
		t.Fatalf("x = %v, want 1", v)
	}
	if v, _ := msg.GetByName("y"); v != int64(0) {
		t.Fatalf("y default = %v, want 0", v)
	}

	if err := msg.SetByName("y", int64(5)); err != nil {
		t.Fatalf("mutable field reassignment failed: %v", err)
	}
	if err := msg.SetByName("x", int64(2)); !errors.Is(err, ErrImmutableField) {
		t.Fatalf("immutable field reassignment error = %v, want ErrImmutableField", err)
	}
}

func TestUnionTagAssignment(t *testing.T) {
	maybeInt, err := NewUnionType("maybe", []VariantDecl{
		{Name: "Unknown", Kind: VariantConstantOption},
		{Name: "Known", Kind: VariantOption, Payload: []Type{Int{}}},
	})
	if err != nil {
		t.Fatalf("NewUnionType() error: %v", err)
	}
	unknown, _ := maybeInt.ByName("Unknown")
	known, _ := maybeInt.ByName("Known")
	if unknown.Tag != 0 {
		t.Fatalf("Unknown tag = %d, want 0", unknown.Tag)
	}
	if known.Tag != 0 {
		t.Fatalf("Known tag = %d, want 0 (separate tag sequence)", known.Tag)
	}
}

func TestUnionRejectsMixedVariantShapes(t *testing.T) {
	msgType := NewMessageType("m", Field{Name: "a", Type: Int{}})
	_, err := NewUnionType("bad", []VariantDecl{
		{Name: "Opt", Kind: VariantConstantOption},
		{Name: "Msg", Kind: VariantMessage, Message: msgType},
	})
	if err == nil {
		t.Fatalf("expected error mixing Option and Message variants")
	}
}

func TestUnionDefaultPicksFirstConstantOrMessage(t *testing.T) {
	u, _ := NewUnionType("maybe", []VariantDecl{
		{Name: "Known", Kind: VariantOption, Payload: []Type{Int{}}},
		{Name: "Unknown", Kind: VariantConstantOption},
	})
	d, err := u.Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}
	uv := d.(*UnionValue)
	if uv.Variant().Name != "Unknown" {
		t.Fatalf("Default() picked %q, want Unknown", uv.Variant().Name)
	}
}

func TestBindSubstitutesUnbound(t *testing.T) {
	poly := &PolyType{
		Skeleton: NewListType(Unbound{Name: "a"}),
		Unbound:  []string{"a"},
	}
	bound, err := Bind(poly, Int{})
	if err != nil {
		t.Fatalf("Bind() error: %v", err)
	}
	lt, ok := bound.(*ListType)
	if !ok {
		t.Fatalf("Bind() result is %T, want *ListType", bound)
	}
	if lt.Elem().Kind() != KindInt {
		t.Fatalf("bound element kind = %v, want int", lt.Elem().Kind())
	}
}

func TestBindPartialApplicationLeavesPolyType(t *testing.T) {
	poly := &PolyType{
		Skeleton: NewAssocType(Unbound{Name: "k"}, Unbound{Name: "v"}),
		Unbound:  []string{"k", "v"},
	}
	partial, err := Bind(poly, String{})
	if err != nil {
		t.Fatalf("Bind() error: %v", err)
	}
	pt, ok := partial.(*PolyType)
	if !ok {
		t.Fatalf("partial Bind() result is %T, want *PolyType", partial)
	}
	if len(pt.Unbound) != 1 || pt.Unbound[0] != "v" {
		t.Fatalf("remaining unbound = %v, want [v]", pt.Unbound)
	}
	at := pt.Skeleton.(*AssocType)
	if at.Key().Kind() != KindString {
		t.Fatalf("bound key kind = %v, want string", at.Key().Kind())
	}
}
