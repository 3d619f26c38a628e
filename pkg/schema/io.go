package schema

import (
	"fmt"
	"io"
	"os"
)

// LoadFile reads, parses, and validates a single schema file. The
// grammar has no import production, so loading never needs to resolve
// a search path or detect import cycles — one file is one Schema.
func LoadFile(path string) (*Schema, []error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, []error{fmt.Errorf("failed to read file %s: %w", path, err)}
	}
	return Load(path, string(content))
}

// Load parses and validates schema source already read into memory,
// attributing diagnostics to name (typically a file path, or "<stdin>").
func Load(name, source string) (*Schema, []error) {
	sch, parseErrors := ParseFile(name, source)
	if len(parseErrors) > 0 {
		out := make([]error, len(parseErrors))
		for i, e := range parseErrors {
			out[i] = e
		}
		return sch, out
	}

	validationErrors := Validate(sch)
	var out []error
	for _, e := range validationErrors {
		if e.Severity == SeverityError {
			out = append(out, e)
		}
	}
	return sch, out
}

// LoadReader parses and validates schema source read from r.
func LoadReader(name string, r io.Reader) (*Schema, []error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, []error{fmt.Errorf("failed to read from %s: %w", name, err)}
	}
	return Load(name, string(content))
}
