// Package codegen turns a compiled schema into generated Go source: one
// struct (or set of variant structs) per message, backed by the runtime
// xtype.Type graph the codec actually reads and writes against.
package codegen

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/blockberries/extprot/pkg/schema"
)

// Options configures code generation.
type Options struct {
	// Package is the generated file's package name.
	Package string

	// GenerateComments includes a doc comment derived from each
	// declaration's name above its generated type.
	GenerateComments bool

	// TypePrefix adds a prefix to all generated type names.
	TypePrefix string

	// TypeSuffix adds a suffix to all generated type names.
	TypeSuffix string
}

// DefaultOptions returns the default code generation options.
func DefaultOptions() Options {
	return Options{Package: "generated", GenerateComments: true}
}

// Generate writes Go source for every message in sch to w. A type_def gets
// no declaration of its own; its shape is rendered inline wherever a
// message field references it.
func Generate(w io.Writer, sch *schema.Schema, opts Options) error {
	return NewGoGenerator().Generate(w, sch, opts)
}

var titleCaser = cases.Title(language.English)

// ToPascalCase converts a schema identifier to a PascalCase Go name.
func ToPascalCase(s string) string {
	parts := splitName(s)
	for i, p := range parts {
		parts[i] = titleCaser.String(strings.ToLower(p))
	}
	return strings.Join(parts, "")
}

// ToCamelCase converts a schema identifier to a camelCase Go name.
func ToCamelCase(s string) string {
	pascal := ToPascalCase(s)
	if len(pascal) == 0 {
		return ""
	}
	return strings.ToLower(pascal[:1]) + pascal[1:]
}

func splitName(s string) []string {
	if s == "" {
		return nil
	}
	var parts []string
	var current strings.Builder
	for i, r := range s {
		if r == '_' || r == '-' {
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
			continue
		}
		if i > 0 && isUpper(r) && !isUpper(rune(s[i-1])) {
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
		}
		current.WriteRune(r)
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}

func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }

// Indent indents each non-empty line of s by the given number of tabs.
func Indent(s string, tabs int) string {
	indent := strings.Repeat("\t", tabs)
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = indent + line
		}
	}
	return strings.Join(lines, "\n")
}

// GeneratorError reports a code generation failure tied to a schema
// position.
type GeneratorError struct {
	Message  string
	Position schema.Position
}

func (e *GeneratorError) Error() string {
	if e.Position.Filename != "" {
		return fmt.Sprintf("%s:%d:%d: %s",
			e.Position.Filename, e.Position.Line, e.Position.Column, e.Message)
	}
	return e.Message
}
