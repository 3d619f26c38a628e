package xtype

import "fmt"

// Placeholder is a forward reference recorded during schema parsing for a
// name that has not yet been resolved to a declared type. The resolution
// pass (pkg/schema) replaces every Placeholder it finds with the type the
// name refers to, applying Bind if the reference carried type arguments.
// A Placeholder that survives resolution is a schema error
// (ErrUnresolvedName, raised by pkg/schema rather than here).
type Placeholder struct {
	Name string
	Args []Type
}

func (p *Placeholder) Kind() Kind { return KindPlaceholder }

func (p *Placeholder) TypeName() string {
	if len(p.Args) == 0 {
		return p.Name
	}
	s := p.Name + "<"
	for i, a := range p.Args {
		if i > 0 {
			s += ","
		}
		s += a.TypeName()
	}
	return s + ">"
}

func (p *Placeholder) Convert(any) (any, error) {
	return nil, newTypeError(p.TypeName(), "reference was never resolved to a declared type", ErrTypeMismatch)
}

func (p *Placeholder) Default() (any, error) {
	return nil, newTypeError(p.TypeName(), "unresolved placeholder has no default", ErrNoDefault)
}

func (p *Placeholder) String() string {
	return fmt.Sprintf("Placeholder(%s)", p.TypeName())
}

var _ Type = (*Placeholder)(nil)
