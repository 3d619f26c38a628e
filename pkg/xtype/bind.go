package xtype

import "fmt"

// PolyType pairs a type skeleton with the names of its still-unbound type
// parameters, in declaration order. A schema declaration like
// `type maybe 'a = Unknown | Known 'a` compiles to a PolyType whose
// Skeleton is the Union and whose Unbound is ["a"].
type PolyType struct {
	Skeleton Type
	Unbound  []string
}

func (p *PolyType) Kind() Kind       { return p.Skeleton.Kind() }
func (p *PolyType) TypeName() string { return p.Skeleton.TypeName() }

func (p *PolyType) Convert(raw any) (any, error) { return p.Skeleton.Convert(raw) }
func (p *PolyType) Default() (any, error)        { return p.Skeleton.Default() }

// Bind substitutes each of c1..ck for the corresponding unbound slot of
// ptype, in declaration order, recursively rewriting the skeleton. If
// fewer arguments than unbound slots are given, the result is itself a
// PolyType carrying the remaining, still-unbound slots (partial
// application).
func Bind(ptype *PolyType, cs ...Type) (Type, error) {
	if len(cs) > len(ptype.Unbound) {
		return nil, newTypeError(ptype.TypeName(), fmt.Sprintf("too many type arguments: expected at most %d, got %d", len(ptype.Unbound), len(cs)), ErrTypeMismatch)
	}
	subst := make(map[string]Type, len(cs))
	for i, c := range cs {
		subst[ptype.Unbound[i]] = c
	}
	bound := substitute(ptype.Skeleton, subst)
	if len(cs) == len(ptype.Unbound) {
		return bound, nil
	}
	return &PolyType{Skeleton: bound, Unbound: ptype.Unbound[len(cs):]}, nil
}

// substitute recursively rewrites t, replacing every Unbound leaf whose
// name is a key of subst with the corresponding type. Types with no
// substitutable children are returned unchanged.
func substitute(t Type, subst map[string]Type) Type {
	switch v := t.(type) {
	case Unbound:
		if c, ok := subst[v.Name]; ok {
			return c
		}
		return v
	case *Placeholder:
		args := make([]Type, len(v.Args))
		for i, a := range v.Args {
			args[i] = substitute(a, subst)
		}
		return &Placeholder{Name: v.Name, Args: args}
	case *TupleType:
		subs := make([]Type, len(v.subtypes))
		for i, st := range v.subtypes {
			subs[i] = substitute(st, subst)
		}
		return &TupleType{subtypes: subs}
	case *ListType:
		return &ListType{elem: substitute(v.elem, subst)}
	case *ArrayType:
		return &ArrayType{elem: substitute(v.elem, subst)}
	case *AssocType:
		return &AssocType{key: substitute(v.key, subst), value: substitute(v.value, subst)}
	case *MessageType:
		fields := make([]Field, len(v.fields))
		for i, f := range v.fields {
			fields[i] = Field{Name: f.Name, Type: substitute(f.Type, subst), Mutable: f.Mutable}
		}
		return &MessageType{name: v.name, fields: fields, tag: v.tag}
	case *UnionType:
		variants := make([]Variant, len(v.variants))
		for i, variant := range v.variants {
			nv := Variant{Name: variant.Name, Kind: variant.Kind, Tag: variant.Tag}
			if variant.Payload != nil {
				nv.Payload = make([]Type, len(variant.Payload))
				for j, p := range variant.Payload {
					nv.Payload[j] = substitute(p, subst)
				}
			}
			if variant.Message != nil {
				nv.Message = substitute(variant.Message, subst).(*MessageType)
			}
			variants[i] = nv
		}
		return &UnionType{name: v.name, variants: variants}
	case *PolyType:
		// A nested polymorphic type keeps its own unbound slots distinct;
		// only substitute names not shadowed by it.
		inner := make(map[string]Type, len(subst))
		for k, val := range subst {
			shadowed := false
			for _, u := range v.Unbound {
				if u == k {
					shadowed = true
					break
				}
			}
			if !shadowed {
				inner[k] = val
			}
		}
		return &PolyType{Skeleton: substitute(v.Skeleton, inner), Unbound: v.Unbound}
	default:
		// Primitives and anything else with no substitutable children.
		return t
	}
}
