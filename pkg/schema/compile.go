package schema

import (
	"errors"
	"fmt"

	"github.com/blockberries/extprot/pkg/xtype"
)

// ErrUnresolvedName is returned (wrapped in a CompileError) when a named
// type reference has no matching message or type_def declaration.
var ErrUnresolvedName = errors.New("extprot/schema: unresolved name")

// CompileError reports a single failure encountered while compiling a
// Schema's declarations into the xtype graph.
type CompileError struct {
	Name  string
	Cause error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, e.Cause)
}

func (e *CompileError) Unwrap() error { return e.Cause }

// Namespace is the output of compiling a Schema: every message and
// type_def name bound to its fully resolved xtype.Type.
type Namespace struct {
	types map[string]xtype.Type
}

// Lookup returns the compiled type for a declared name.
func (n *Namespace) Lookup(name string) (xtype.Type, bool) {
	t, ok := n.types[name]
	return t, ok
}

// Names returns every declared name, in no particular order.
func (n *Namespace) Names() []string {
	out := make([]string, 0, len(n.types))
	for name := range n.types {
		out = append(out, name)
	}
	return out
}

// Compile runs the two-phase compilation described by the design notes:
// Parse has already produced sch; this builds a skeleton xtype graph for
// every declaration (Phase 1, with unresolved named references left as
// xtype.Placeholder) and then resolves every placeholder against the
// full declaration set (Phase 2). A name with no matching declaration
// anywhere in sch produces an UnresolvedName CompileError.
//
// Self- and mutually-recursive message types (a field, directly or
// through a Tuple/List/Array/Assoc, referring back to its own or an
// ancestor message) are fully supported: each named message/union
// declaration is allocated as a stub pointer before its body is built,
// so a recursive reference resolves to the same pointer instance.
// A polymorphic type_def that recursively instantiates itself with a
// bound type argument (as opposed to referencing itself unapplied) is
// not supported — Bind is eager, and a self-instantiating generic would
// need a lazy/thunked Bind to terminate, which this compiler does not
// implement. See DESIGN.md.
func Compile(sch *Schema) (*Namespace, error) {
	c := &compiler{
		schema: sch,
		stubs:  make(map[string]xtype.Type),
		isStub: make(map[any]bool),
	}
	c.allocateStubs()
	c.fillBodies()
	if len(c.errors) > 0 {
		return nil, c.errors[0]
	}
	c.resolveAll()
	if len(c.errors) > 0 {
		return nil, c.errors[0]
	}
	return &Namespace{types: c.stubs}, nil
}

type compiler struct {
	schema *Schema
	stubs  map[string]xtype.Type // declared name -> skeleton/resolved type
	isStub map[any]bool          // pointer identity -> "this is a named top-level declaration"
	errors []error
}

// allocateStubs is compile Phase 1 (part a): give every named
// declaration a pointer identity before any field or variant type is
// built, so recursive references have something to point at.
func (c *compiler) allocateStubs() {
	for _, msg := range c.schema.Messages {
		if msg.IsUnion() {
			u := xtype.NewUnionTypeStub(msg.Name)
			c.stubs[msg.Name] = u
			c.isStub[u] = true
		} else {
			m := xtype.NewMessageTypeStub(msg.Name)
			c.stubs[msg.Name] = m
			c.isStub[m] = true
		}
	}
	for _, td := range c.schema.TypeDefs {
		if td.Union == nil {
			continue // plain aliases get no stub; built directly in fillBodies
		}
		u := xtype.NewUnionTypeStub(td.Name)
		c.isStub[u] = true
		if len(td.Params) > 0 {
			c.stubs[td.Name] = &xtype.PolyType{Skeleton: u, Unbound: td.Params}
		} else {
			c.stubs[td.Name] = u
		}
	}
}

// fillBodies is compile Phase 1 (part b): build every field and variant
// type, leaving an xtype.Placeholder wherever a type_expr names another
// declaration, and fill each stub with the result.
func (c *compiler) fillBodies() {
	for _, msg := range c.schema.Messages {
		scope := map[string]xtype.Type{}
		if msg.IsUnion() {
			decls := make([]xtype.VariantDecl, len(msg.Variants))
			for i, variant := range msg.Variants {
				fields := c.buildFields(variant.Fields, scope)
				decls[i] = xtype.VariantDecl{
					Name:    variant.Name,
					Kind:    xtype.VariantMessage,
					Message: xtype.NewMessageType(variant.Name, fields...),
				}
			}
			u := c.stubs[msg.Name].(*xtype.UnionType)
			if err := u.SetVariants(decls); err != nil {
				c.errors = append(c.errors, &CompileError{Name: msg.Name, Cause: err})
			}
			continue
		}
		fields := c.buildFields(msg.Fields, scope)
		c.stubs[msg.Name].(*xtype.MessageType).SetFields(fields)
	}

	for _, td := range c.schema.TypeDefs {
		scope := make(map[string]xtype.Type, len(td.Params))
		for _, p := range td.Params {
			scope[p] = xtype.Unbound{Name: p}
		}

		if td.Union != nil {
			decls := make([]xtype.VariantDecl, len(td.Union.Variants))
			for i, v := range td.Union.Variants {
				payload := make([]xtype.Type, len(v.Payload))
				for j, p := range v.Payload {
					payload[j] = c.buildTypeExpr(p, scope)
				}
				kind := xtype.VariantOption
				if len(payload) == 0 {
					kind = xtype.VariantConstantOption
				}
				decls[i] = xtype.VariantDecl{Name: v.Name, Kind: kind, Payload: payload}
			}
			stub := c.stubs[td.Name]
			u, ok := stub.(*xtype.UnionType)
			if !ok {
				u = stub.(*xtype.PolyType).Skeleton.(*xtype.UnionType)
			}
			if err := u.SetVariants(decls); err != nil {
				c.errors = append(c.errors, &CompileError{Name: td.Name, Cause: err})
			}
			continue
		}

		result := c.buildTypeExpr(td.Alias, scope)
		if len(td.Params) > 0 {
			c.stubs[td.Name] = &xtype.PolyType{Skeleton: result, Unbound: td.Params}
		} else {
			c.stubs[td.Name] = result
		}
	}
}

func (c *compiler) buildFields(fields []*Field, scope map[string]xtype.Type) []xtype.Field {
	out := make([]xtype.Field, len(fields))
	for i, f := range fields {
		out[i] = xtype.Field{Name: f.Name, Type: c.buildTypeExpr(f.Type, scope), Mutable: f.Mutable}
	}
	return out
}

// buildTypeExpr builds the skeleton xtype.Type for one type_expr,
// resolving PIDENT references against scope and leaving every
// non-parameter named reference as an xtype.Placeholder for Phase 2.
func (c *compiler) buildTypeExpr(e TypeExpr, scope map[string]xtype.Type) xtype.Type {
	switch v := e.(type) {
	case *PrimType:
		return primitiveByName(v.Name)

	case *NamedRef:
		if v.IsParam {
			if t, ok := scope[v.Name]; ok {
				return t
			}
			c.errors = append(c.errors, &CompileError{
				Name:  v.Name,
				Cause: fmt.Errorf("type parameter '%s is not bound in an enclosing type declaration", v.Name),
			})
			return xtype.Unbound{Name: v.Name}
		}
		var args []xtype.Type
		if v.TypeArg != nil {
			args = []xtype.Type{c.buildTypeExpr(v.TypeArg, scope)}
		}
		return &xtype.Placeholder{Name: v.Name, Args: args}

	case *TupleExpr:
		elems := make([]xtype.Type, len(v.Elems))
		for i, el := range v.Elems {
			elems[i] = c.buildTypeExpr(el, scope)
		}
		return xtype.NewTupleType(elems...)

	case *ListExpr:
		return xtype.NewListType(c.buildTypeExpr(v.Elem, scope))

	case *ArrayExpr:
		return xtype.NewArrayType(c.buildTypeExpr(v.Elem, scope))

	default:
		c.errors = append(c.errors, &CompileError{Name: "<type_expr>", Cause: fmt.Errorf("unhandled type_expr %T", e)})
		return xtype.Unbound{Name: "?"}
	}
}

func primitiveByName(name string) xtype.Type {
	switch name {
	case "bool":
		return xtype.Bool{}
	case "byte":
		return xtype.Byte{}
	case "int":
		return xtype.Int{}
	case "long":
		return xtype.Long{}
	case "float":
		return xtype.Float{}
	case "string":
		return xtype.String{}
	default:
		return xtype.Unbound{Name: name}
	}
}

// resolveAll is compile Phase 2: replace every xtype.Placeholder left by
// fillBodies with the declaration it names, mutating named stubs'
// bodies in place (preserving pointer identity for recursive
// references) and rewriting anonymous composite types by rebuilding
// them.
func (c *compiler) resolveAll() {
	for name, t := range c.stubs {
		c.resolveNamed(name, t)
	}
}

// resolveNamed fixes up one top-level declaration's body in place.
func (c *compiler) resolveNamed(name string, t xtype.Type) {
	switch v := t.(type) {
	case *xtype.MessageType:
		c.resolveMessageBody(name, v)

	case *xtype.UnionType:
		c.resolveUnionBody(name, v)

	case *xtype.PolyType:
		// Resolve the skeleton in place, keeping v (and its Unbound
		// parameter list) as the value registered under name: a later
		// Placeholder naming this generic declaration still needs Bind,
		// which requires the PolyType wrapper, not its bare skeleton.
		switch sk := v.Skeleton.(type) {
		case *xtype.MessageType:
			c.resolveMessageBody(name, sk)
		case *xtype.UnionType:
			c.resolveUnionBody(name, sk)
		default:
			v.Skeleton = c.resolve(name, v.Skeleton)
		}

	default:
		c.stubs[name] = c.resolve(name, t)
	}
}

// resolveMessageBody rewrites v's fields in place, resolving every
// Placeholder they contain.
func (c *compiler) resolveMessageBody(owner string, v *xtype.MessageType) {
	newFields := make([]xtype.Field, len(v.Fields()))
	for i, f := range v.Fields() {
		newFields[i] = xtype.Field{Name: f.Name, Type: c.resolve(owner, f.Type), Mutable: f.Mutable}
	}
	v.SetFields(newFields)
}

// resolveUnionBody rewrites v's variants in place, resolving every
// Placeholder their payloads or message records contain.
func (c *compiler) resolveUnionBody(owner string, v *xtype.UnionType) {
	decls := make([]xtype.VariantDecl, len(v.Variants()))
	for i, variant := range v.Variants() {
		d := xtype.VariantDecl{Name: variant.Name, Kind: variant.Kind}
		if variant.Payload != nil {
			d.Payload = make([]xtype.Type, len(variant.Payload))
			for j, p := range variant.Payload {
				d.Payload[j] = c.resolve(owner, p)
			}
		}
		if variant.Message != nil {
			c.resolveMessageBody(owner, variant.Message) // anonymous, owned solely by this union
			d.Message = variant.Message
		}
		decls[i] = d
	}
	if err := v.SetVariants(decls); err != nil {
		c.errors = append(c.errors, &CompileError{Name: owner, Cause: err})
	}
}

// resolve recursively replaces Placeholders within t. Named top-level
// declarations (MessageType/UnionType stubs, tracked in c.isStub) are
// returned as-is without recursing: their own body is fixed up by the
// resolveAll loop's own pass over that name, which both avoids doing
// the work twice and avoids infinite recursion on a reference cycle.
func (c *compiler) resolve(owner string, t xtype.Type) xtype.Type {
	switch v := t.(type) {
	case *xtype.Placeholder:
		decl, ok := c.stubs[v.Name]
		if !ok {
			c.errors = append(c.errors, &CompileError{Name: owner, Cause: fmt.Errorf("%w: %q", ErrUnresolvedName, v.Name)})
			return t
		}
		args := make([]xtype.Type, len(v.Args))
		for i, a := range v.Args {
			args[i] = c.resolve(owner, a)
		}
		poly, ok := decl.(*xtype.PolyType)
		if !ok {
			if len(args) != 0 {
				c.errors = append(c.errors, &CompileError{Name: owner, Cause: fmt.Errorf("type %q takes no type arguments", v.Name)})
			}
			return decl
		}
		bound, err := xtype.Bind(poly, args...)
		if err != nil {
			c.errors = append(c.errors, &CompileError{Name: owner, Cause: err})
			return t
		}
		// Bind's substitution only fills in the poly's own type
		// parameters; a Placeholder naming a different declaration that
		// was nested inside the skeleton survives it and still needs a
		// pass through resolve.
		return c.resolve(owner, bound)

	case *xtype.TupleType:
		subs := v.Subtypes()
		resolved := make([]xtype.Type, len(subs))
		for i, s := range subs {
			resolved[i] = c.resolve(owner, s)
		}
		return xtype.NewTupleType(resolved...)

	case *xtype.ListType:
		return xtype.NewListType(c.resolve(owner, v.Elem()))

	case *xtype.ArrayType:
		return xtype.NewArrayType(c.resolve(owner, v.Elem()))

	case *xtype.AssocType:
		return xtype.NewAssocType(c.resolve(owner, v.Key()), c.resolve(owner, v.Value()))

	case *xtype.MessageType:
		if c.isStub[v] {
			return v // resolved by its own top-level pass
		}
		c.resolveMessageBody(owner, v)
		return v

	case *xtype.UnionType:
		if c.isStub[v] {
			return v // resolved by its own top-level pass
		}
		c.resolveUnionBody(owner, v)
		return v

	case *xtype.PolyType:
		// A partially-applied generic (fewer type arguments than
		// parameters) comes back from Bind still wrapped in a PolyType;
		// its skeleton can still hold Placeholders that need this pass.
		switch sk := v.Skeleton.(type) {
		case *xtype.MessageType:
			if !c.isStub[sk] {
				c.resolveMessageBody(owner, sk)
			}
		case *xtype.UnionType:
			if !c.isStub[sk] {
				c.resolveUnionBody(owner, sk)
			}
		default:
			v.Skeleton = c.resolve(owner, v.Skeleton)
		}
		return v

	default:
		return t
	}
}
