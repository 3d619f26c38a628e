// Package schema provides lexing, parsing, and name resolution for
// extprot schema files: the text syntax that declares message and union
// types compiled into the xtype graph a codec runs against.
package schema

// Position represents a position in source code.
type Position struct {
	Filename string
	Line     int
	Column   int
	Offset   int
}

// Node is the interface implemented by all AST nodes.
type Node interface {
	Pos() Position
	End() Position
}

// Schema represents a complete parsed schema file: an ordered sequence
// of message and type definitions.
type Schema struct {
	Position Position
	Messages []*Message
	TypeDefs []*TypeDef
	Comments []*Comment
}

func (s *Schema) Pos() Position { return s.Position }
func (s *Schema) End() Position {
	if len(s.Messages) > 0 {
		return s.Messages[len(s.Messages)-1].End()
	}
	if len(s.TypeDefs) > 0 {
		return s.TypeDefs[len(s.TypeDefs)-1].End()
	}
	return s.Position
}

// TypeDef is a `type NAME 'param* = type_stmt` declaration: either a
// plain type alias (type_stmt is a type_expr) or a union declaration
// (type_stmt is a union_type).
type TypeDef struct {
	Position Position
	EndPos   Position
	Name     string
	Params   []string // PIDENT type parameters, without the leading apostrophe
	Union    *UnionDef // non-nil for a union_type; nil for a plain alias
	Alias    TypeExpr  // non-nil for a plain type_expr alias; nil for a union
	Comments []*Comment
}

func (t *TypeDef) Pos() Position { return t.Position }
func (t *TypeDef) End() Position { return t.EndPos }

// UnionDef is the right-hand side of a union type_def: an ordered list
// of named variants, each with zero or more type_expr payload slots.
type UnionDef struct {
	Position Position
	EndPos   Position
	Variants []*VariantRef
}

func (u *UnionDef) Pos() Position { return u.Position }
func (u *UnionDef) End() Position { return u.EndPos }

// VariantRef is one `IDENT type_expr*` alternative of a union_type.
type VariantRef struct {
	Position Position
	EndPos   Position
	Name     string
	Payload  []TypeExpr
}

func (v *VariantRef) Pos() Position { return v.Position }
func (v *VariantRef) End() Position { return v.EndPos }

// Message represents a message definition: either a simple_message (one
// implicit variant holding Fields directly) or a union_message (two or
// more named variants, each with its own field list).
type Message struct {
	Position Position
	EndPos   Position
	Name     string
	Fields   []*Field   // set for a simple_message
	Variants []*MessageVariant // set for a union_message
	Comments []*Comment
}

func (m *Message) Pos() Position { return m.Position }
func (m *Message) End() Position { return m.EndPos }

// IsUnion reports whether this message declares multiple named variants
// rather than one flat field list.
func (m *Message) IsUnion() bool { return len(m.Variants) > 0 }

// MessageVariant is one `IDENT "{" field_defs "}"` alternative of a
// union_message.
type MessageVariant struct {
	Position Position
	EndPos   Position
	Name     string
	Fields   []*Field
	Comments []*Comment
}

func (v *MessageVariant) Pos() Position { return v.Position }
func (v *MessageVariant) End() Position { return v.EndPos }

// Field represents a `mutable? IDENT ":" type_expr` field declaration.
type Field struct {
	Position Position
	EndPos   Position
	Name     string
	Type     TypeExpr
	Mutable  bool
	Comments []*Comment
}

func (f *Field) Pos() Position { return f.Position }
func (f *Field) End() Position { return f.EndPos }

// TypeExpr is a `type_expr` production: prim | named | tuple | list | array.
type TypeExpr interface {
	Node
	typeExprNode()
	String() string
}

// PrimType is one of the six built-in primitive type names.
type PrimType struct {
	Position Position
	EndPos   Position
	Name     string // bool, byte, int, long, float, string
}

func (t *PrimType) Pos() Position  { return t.Position }
func (t *PrimType) End() Position  { return t.EndPos }
func (t *PrimType) typeExprNode()  {}
func (t *PrimType) String() string { return t.Name }

// NamedRef is a `PIDENT ("<" type_expr ">")?` reference: either a bound
// type parameter (a PIDENT with a leading apostrophe and no arguments),
// or a reference to another type_def/message, optionally applied to one
// type argument.
type NamedRef struct {
	Position  Position
	EndPos    Position
	Name      string
	IsParam   bool // true if Name names a type parameter ('a) rather than a declared type
	TypeArg   TypeExpr // non-nil when the reference carries "<type_expr>"
}

func (t *NamedRef) Pos() Position { return t.Position }
func (t *NamedRef) End() Position { return t.EndPos }
func (t *NamedRef) typeExprNode() {}
func (t *NamedRef) String() string {
	if t.IsParam {
		return "'" + t.Name
	}
	if t.TypeArg != nil {
		return t.Name + "<" + t.TypeArg.String() + ">"
	}
	return t.Name
}

// TupleExpr is a `"(" type_expr ("*" type_expr)* ")"` production.
type TupleExpr struct {
	Position Position
	EndPos   Position
	Elems    []TypeExpr
}

func (t *TupleExpr) Pos() Position { return t.Position }
func (t *TupleExpr) End() Position { return t.EndPos }
func (t *TupleExpr) typeExprNode() {}
func (t *TupleExpr) String() string {
	s := "("
	for i, e := range t.Elems {
		if i > 0 {
			s += " * "
		}
		s += e.String()
	}
	return s + ")"
}

// ListExpr is a `"[" type_expr "]"` production: a variable-length,
// length-delimited sequence.
type ListExpr struct {
	Position Position
	EndPos   Position
	Elem     TypeExpr
}

func (t *ListExpr) Pos() Position  { return t.Position }
func (t *ListExpr) End() Position  { return t.EndPos }
func (t *ListExpr) typeExprNode()  {}
func (t *ListExpr) String() string { return "[" + t.Elem.String() + "]" }

// ArrayExpr is a `"[|" type_expr "|]"` production: wire-identical to
// ListExpr, distinguished only in the in-memory representation chosen
// for the generated code.
type ArrayExpr struct {
	Position Position
	EndPos   Position
	Elem     TypeExpr
}

func (t *ArrayExpr) Pos() Position  { return t.Position }
func (t *ArrayExpr) End() Position  { return t.EndPos }
func (t *ArrayExpr) typeExprNode()  {}
func (t *ArrayExpr) String() string { return "[|" + t.Elem.String() + "|]" }

// Comment represents a nesting `(* ... *)` comment.
type Comment struct {
	Position Position
	EndPos   Position
	Text     string
}

func (c *Comment) Pos() Position { return c.Position }
func (c *Comment) End() Position { return c.EndPos }

// PrimTypes defines the six built-in primitive type names.
var PrimTypes = map[string]bool{
	"bool":   true,
	"byte":   true,
	"int":    true,
	"long":   true,
	"float":  true,
	"string": true,
}

// IsPrim returns true if name is one of the six reserved primitive types.
func IsPrim(name string) bool {
	return PrimTypes[name]
}
