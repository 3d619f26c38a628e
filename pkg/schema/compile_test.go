package schema

import (
	"errors"
	"testing"

	"github.com/blockberries/extprot/pkg/xtype"
)

func mustCompile(t *testing.T, src string) *Namespace {
	t.Helper()
	sch := mustParse(t, src)
	if errs := Validate(sch); len(errs) != 0 {
		t.Fatalf("unexpected validation errors: %v", errs)
	}
	ns, err := Compile(sch)
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	return ns
}

func TestCompileSimpleMessage(t *testing.T) {
	ns := mustCompile(t, `message point = { x: int; y: int }`)
	typ, ok := ns.Lookup("point")
	if !ok {
		t.Fatalf("expected point to be declared")
	}
	mt, ok := typ.(*xtype.MessageType)
	if !ok {
		t.Fatalf("expected *xtype.MessageType, got %T", typ)
	}
	fields := mt.Fields()
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}
	if fields[0].Name != "x" || fields[0].Type.Kind() != xtype.KindInt {
		t.Errorf("unexpected field 0: %+v", fields[0])
	}
	if fields[1].Name != "y" || fields[1].Type.Kind() != xtype.KindInt {
		t.Errorf("unexpected field 1: %+v", fields[1])
	}
}

func TestCompileUnionMessage(t *testing.T) {
	ns := mustCompile(t, `message shape = Circle { r: int } | Square { side: int }`)
	typ, ok := ns.Lookup("shape")
	if !ok {
		t.Fatalf("expected shape to be declared")
	}
	ut, ok := typ.(*xtype.UnionType)
	if !ok {
		t.Fatalf("expected *xtype.UnionType, got %T", typ)
	}
	circle, ok := ut.ByName("Circle")
	if !ok || circle.Kind != xtype.VariantMessage {
		t.Fatalf("expected a Circle message variant, got %+v", circle)
	}
	if len(circle.Message.Fields()) != 1 || circle.Message.Fields()[0].Name != "r" {
		t.Fatalf("unexpected Circle fields: %+v", circle.Message.Fields())
	}
}

func TestCompileSelfReferentialMessage(t *testing.T) {
	ns := mustCompile(t, `message tree = { value: int; children: [tree] }`)
	typ, ok := ns.Lookup("tree")
	if !ok {
		t.Fatalf("expected tree to be declared")
	}
	mt := typ.(*xtype.MessageType)
	fields := mt.Fields()
	lt, ok := fields[1].Type.(*xtype.ListType)
	if !ok {
		t.Fatalf("expected children to be a ListType, got %T", fields[1].Type)
	}
	elemMt, ok := lt.Elem().(*xtype.MessageType)
	if !ok {
		t.Fatalf("expected list element to be a MessageType, got %T", lt.Elem())
	}
	if elemMt != mt {
		t.Fatalf("expected the recursive reference to share tree's own pointer identity")
	}
}

func TestCompileMutuallyRecursiveMessages(t *testing.T) {
	ns := mustCompile(t, `
		message a = { next: b }
		message b = { next: a }
	`)
	ta, _ := ns.Lookup("a")
	tb, _ := ns.Lookup("b")
	amt := ta.(*xtype.MessageType)
	bmt := tb.(*xtype.MessageType)

	if amt.Fields()[0].Type.(*xtype.MessageType) != bmt {
		t.Errorf("expected a.next to point at the same b instance returned by Lookup")
	}
	if bmt.Fields()[0].Type.(*xtype.MessageType) != amt {
		t.Errorf("expected b.next to point at the same a instance returned by Lookup")
	}
}

func TestCompileGenericInstantiation(t *testing.T) {
	ns := mustCompile(t, `
		type maybe 'a = Unknown | Known 'a
		message wrapper = { m: maybe<int> }
	`)
	typ, _ := ns.Lookup("wrapper")
	mt := typ.(*xtype.MessageType)
	ut, ok := mt.Fields()[0].Type.(*xtype.UnionType)
	if !ok {
		t.Fatalf("expected m to be a UnionType, got %T", mt.Fields()[0].Type)
	}
	known, ok := ut.ByName("Known")
	if !ok {
		t.Fatalf("expected a Known variant")
	}
	if len(known.Payload) != 1 || known.Payload[0].Kind() != xtype.KindInt {
		t.Fatalf("expected Known to carry a bound int payload, got %+v", known.Payload)
	}
	if _, ok := ns.Lookup("maybe"); !ok {
		t.Fatalf("expected the generic declaration itself to remain in the namespace")
	}
}

func TestCompileGenericInstantiationIndependentPerUse(t *testing.T) {
	ns := mustCompile(t, `
		type maybe 'a = Unknown | Known 'a
		message ints = { m: maybe<int> }
		message bools = { m: maybe<bool> }
	`)
	intsM := ns.types["ints"].(*xtype.MessageType)
	boolsM := ns.types["bools"].(*xtype.MessageType)
	intKnown, _ := intsM.Fields()[0].Type.(*xtype.UnionType).ByName("Known")
	boolKnown, _ := boolsM.Fields()[0].Type.(*xtype.UnionType).ByName("Known")
	if intKnown.Payload[0].Kind() != xtype.KindInt {
		t.Errorf("expected ints.m's Known payload to be int")
	}
	if boolKnown.Payload[0].Kind() != xtype.KindBool {
		t.Errorf("expected bools.m's Known payload to be bool")
	}
}

func TestCompileUnresolvedNameFails(t *testing.T) {
	sch := mustParse(t, `message bad = { x: nonexistent }`)
	_, err := Compile(sch)
	if err == nil {
		t.Fatalf("expected an error for an unresolved name")
	}
	if !errors.Is(err, ErrUnresolvedName) {
		t.Fatalf("expected errors.Is(err, ErrUnresolvedName), got %v", err)
	}
}

func TestCompileTupleNesting(t *testing.T) {
	ns := mustCompile(t, `message pairish = { p: (int * bool) }`)
	mt := ns.types["pairish"].(*xtype.MessageType)
	tt, ok := mt.Fields()[0].Type.(*xtype.TupleType)
	if !ok {
		t.Fatalf("expected a TupleType, got %T", mt.Fields()[0].Type)
	}
	subs := tt.Subtypes()
	if len(subs) != 2 || subs[0].Kind() != xtype.KindInt || subs[1].Kind() != xtype.KindBool {
		t.Fatalf("unexpected tuple subtypes: %+v", subs)
	}
}
