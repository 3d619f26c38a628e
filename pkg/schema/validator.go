package schema

import (
	"fmt"
	"sort"
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Position Position
	Message  string
	Severity Severity
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s: %s",
		e.Position.Filename, e.Position.Line, e.Position.Column,
		e.Severity, e.Message)
}

// Severity indicates the severity of a validation error.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// Validator performs structural checks on a parsed Schema: duplicate
// names, duplicate fields, duplicate variants, and empty tuples. The
// union shape invariant (all-Option or all-Message) is enforced later,
// when compile.go builds the union through pkg/xtype. Name resolution
// across declarations (undefined references) is the job of the resolve
// pass in compile.go.
type Validator struct {
	schema *Schema
	errors []ValidationError
	names  map[string]Position // declared message/type_def names, for duplicate detection
}

// NewValidator creates a new validator for the given schema.
func NewValidator(schema *Schema) *Validator {
	return &Validator{schema: schema, names: make(map[string]Position)}
}

// Validate performs validation and returns any errors, sorted by position.
func (v *Validator) Validate() []ValidationError {
	v.errors = nil
	v.collectNames()

	for _, msg := range v.schema.Messages {
		v.validateMessage(msg)
	}
	for _, td := range v.schema.TypeDefs {
		v.validateTypeDef(td)
	}

	sort.Slice(v.errors, func(i, j int) bool {
		if v.errors[i].Position.Line != v.errors[j].Position.Line {
			return v.errors[i].Position.Line < v.errors[j].Position.Line
		}
		return v.errors[i].Position.Column < v.errors[j].Position.Column
	})
	return v.errors
}

// collectNames gathers message and type_def names into one namespace
// (a message and a type_def may not share a name) and flags duplicates.
func (v *Validator) collectNames() {
	for _, msg := range v.schema.Messages {
		v.declare(msg.Name, msg.Position)
	}
	for _, td := range v.schema.TypeDefs {
		v.declare(td.Name, td.Position)
	}
}

func (v *Validator) declare(name string, pos Position) {
	if existing, ok := v.names[name]; ok {
		v.addError(pos, "duplicate type name %q (previously defined at %d:%d)",
			name, existing.Line, existing.Column)
		return
	}
	v.names[name] = pos
}

// validateMessage checks a simple_message's field list, or a
// union_message's variant list and each variant's field list.
func (v *Validator) validateMessage(msg *Message) {
	if msg.IsUnion() {
		seen := make(map[string]bool)
		for _, variant := range msg.Variants {
			if seen[variant.Name] {
				v.addError(variant.Position, "duplicate variant name %q in message %q", variant.Name, msg.Name)
			}
			seen[variant.Name] = true
			v.validateFields(variant.Fields, msg.Name+"."+variant.Name)
		}
		return
	}
	v.validateFields(msg.Fields, msg.Name)
}

// validateTypeDef checks a type_def's union_type variant list, if any,
// and recurses into every type_expr it carries.
func (v *Validator) validateTypeDef(td *TypeDef) {
	if td.Union != nil {
		seen := make(map[string]bool)
		for _, variant := range td.Union.Variants {
			if seen[variant.Name] {
				v.addError(variant.Position, "duplicate variant name %q in type %q", variant.Name, td.Name)
			}
			seen[variant.Name] = true
			for _, p := range variant.Payload {
				v.validateTypeExpr(p, td.Name)
			}
		}
		return
	}
	if td.Alias != nil {
		v.validateTypeExpr(td.Alias, td.Name)
	}
}

// validateFields checks a field_defs list for duplicate field names and
// recurses into each field's type_expr.
func (v *Validator) validateFields(fields []*Field, owner string) {
	seen := make(map[string]bool)
	for _, field := range fields {
		if seen[field.Name] {
			v.addError(field.Position, "duplicate field name %q in %s", field.Name, owner)
		}
		seen[field.Name] = true
		v.validateTypeExpr(field.Type, owner)
	}
}

// validateTypeExpr recurses into a type_expr's structure. Named-type
// existence and type-parameter binding are checked by the resolver,
// which has the full declaration set; this pass only catches shapes
// that are wrong regardless of what else is declared (e.g. an empty
// tuple).
func (v *Validator) validateTypeExpr(t TypeExpr, owner string) {
	switch e := t.(type) {
	case *PrimType, *NamedRef:
		if nr, ok := t.(*NamedRef); ok && nr.TypeArg != nil {
			v.validateTypeExpr(nr.TypeArg, owner)
		}
	case *TupleExpr:
		if len(e.Elems) == 0 {
			v.addError(e.Position, "tuple type in %s must have at least one element", owner)
		}
		for _, elem := range e.Elems {
			v.validateTypeExpr(elem, owner)
		}
	case *ListExpr:
		v.validateTypeExpr(e.Elem, owner)
	case *ArrayExpr:
		v.validateTypeExpr(e.Elem, owner)
	}
}

func (v *Validator) addError(pos Position, format string, args ...any) {
	v.errors = append(v.errors, ValidationError{Position: pos, Message: fmt.Sprintf(format, args...), Severity: SeverityError})
}

func (v *Validator) addWarning(pos Position, format string, args ...any) {
	v.errors = append(v.errors, ValidationError{Position: pos, Message: fmt.Sprintf(format, args...), Severity: SeverityWarning})
}

// HasErrors returns true if there are any error-severity issues.
func (v *Validator) HasErrors() bool {
	for _, err := range v.errors {
		if err.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Errors returns only the error-severity issues.
func (v *Validator) Errors() []ValidationError {
	var out []ValidationError
	for _, err := range v.errors {
		if err.Severity == SeverityError {
			out = append(out, err)
		}
	}
	return out
}

// Warnings returns only the warning-severity issues.
func (v *Validator) Warnings() []ValidationError {
	var out []ValidationError
	for _, err := range v.errors {
		if err.Severity == SeverityWarning {
			out = append(out, err)
		}
	}
	return out
}

// Validate is a convenience function that validates a schema.
func Validate(schema *Schema) []ValidationError {
	return NewValidator(schema).Validate()
}
