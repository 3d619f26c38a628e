// Command extprotc compiles an extprot schema into Go source.
//
// Usage:
//
//	extprotc [options] < schema.prot > generated.go
//
// Options:
//
//	-package string   Generated package name (default "generated")
//	-prefix string    Add prefix to all generated type names
//	-suffix string    Add suffix to all generated type names
//
// The schema is read from stdin and the generated Go source is written
// to stdout. On a parse or name-resolution failure, extprotc prints a
// diagnostic to stderr and exits non-zero.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/blockberries/extprot/pkg/codegen"
	"github.com/blockberries/extprot/pkg/schema"
)

func main() {
	pkg := flag.String("package", "generated", "Generated package name")
	prefix := flag.String("prefix", "", "Add prefix to all generated type names")
	suffix := flag.String("suffix", "", "Add suffix to all generated type names")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: extprotc [options] < schema.prot > generated.go

Compile an extprot schema read from stdin into Go source on stdout.

Options:`)
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := run(os.Stdin, os.Stdout, *pkg, *prefix, *suffix); err != nil {
		fmt.Fprintf(os.Stderr, "extprotc: %v\n", err)
		os.Exit(1)
	}
}

func run(in io.Reader, out io.Writer, pkg, prefix, suffix string) error {
	sch, errs := schema.LoadReader("<stdin>", in)
	if len(errs) != 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "extprotc: %v\n", e)
		}
		return fmt.Errorf("%d schema error(s)", len(errs))
	}

	opts := codegen.DefaultOptions()
	opts.Package = pkg
	opts.TypePrefix = prefix
	opts.TypeSuffix = suffix

	if err := codegen.Generate(out, sch, opts); err != nil {
		return fmt.Errorf("generating code: %w", err)
	}
	return nil
}
