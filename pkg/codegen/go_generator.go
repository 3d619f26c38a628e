package codegen

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/tools/imports"

	"github.com/blockberries/extprot/pkg/schema"
	"github.com/blockberries/extprot/pkg/xtype"
)

// GoGenerator emits a Go source file declaring, for every top-level message
// and union-message in a schema, an exported wrapper type plus the
// xtype.MessageType/UnionType that backs it at runtime. Unlike a
// protobuf-style generator it does not hand-roll per-field marshal code:
// every wrapper simply drives the generic codec in pkg/extprot against the
// constructed xtype.Type graph.
//
// Output is built directly with a bytes.Buffer rather than text/template.
// The shape of what gets emitted per field varies with the field's resolved
// xtype.Kind (scalar vs. tuple vs. list vs. named message/union), which
// doesn't fit a single flat template the way one struct-per-message with a
// fixed field list did for the protobuf generator this replaced.
type GoGenerator struct{}

// NewGoGenerator creates a new Go code generator.
func NewGoGenerator() *GoGenerator {
	return &GoGenerator{}
}

// FileExtension returns the file extension for generated files.
func (g *GoGenerator) FileExtension() string {
	return ".go"
}

// Generate compiles s and writes the generated Go source to w.
func (g *GoGenerator) Generate(w io.Writer, s *schema.Schema, opts Options) error {
	ns, err := schema.Compile(s)
	if err != nil {
		return &GeneratorError{Message: fmt.Sprintf("resolving schema: %v", err), Position: s.Position}
	}

	gg := &goGen{ns: ns, opts: opts, topLevel: make(map[xtype.Type]string)}
	for _, m := range s.Messages {
		typ, ok := ns.Lookup(m.Name)
		if !ok {
			continue
		}
		gg.topLevel[typ] = ToPascalCase(m.Name)
	}

	var body bytes.Buffer
	usesMustUnion := false
	for _, m := range s.Messages {
		typ, ok := ns.Lookup(m.Name)
		if !ok {
			continue
		}
		switch t := typ.(type) {
		case *xtype.MessageType:
			gg.writeMessage(&body, m, t)
		case *xtype.UnionType:
			gg.writeUnionMessage(&body, m, t)
			usesMustUnion = true
		}
	}

	var out bytes.Buffer
	out.WriteString("// Code generated from an extprot schema. DO NOT EDIT.\n\n")
	fmt.Fprintf(&out, "package %s\n\n", gg.packageName())
	out.WriteString("import (\n\t\"github.com/blockberries/extprot/pkg/xtype\"\n)\n\n")
	if usesMustUnion {
		out.WriteString("func mustUnion(t *xtype.UnionType, err error) *xtype.UnionType {\n\tif err != nil {\n\t\tpanic(err)\n\t}\n\treturn t\n}\n\n")
	}
	out.Write(body.Bytes())

	formatted, err := imports.Process("generated.go", out.Bytes(), nil)
	if err != nil {
		return &GeneratorError{Message: fmt.Sprintf("formatting generated source: %v", err), Position: s.Position}
	}
	_, err = w.Write(formatted)
	return err
}

type goGen struct {
	ns       *schema.Namespace
	opts     Options
	topLevel map[xtype.Type]string // pointer identity -> Pascal name, for messages/unions declared as `message`
}

func (g *goGen) packageName() string {
	if g.opts.Package != "" {
		return g.opts.Package
	}
	return "generated"
}

func (g *goGen) pascalName(name string) string {
	return g.opts.TypePrefix + ToPascalCase(name) + g.opts.TypeSuffix
}

// renderType renders the Go source expression that constructs t, as used
// inside an init() func body. A t that is one of the schema's own top-level
// declarations renders as a reference to that declaration's package-level
// Type variable rather than being reconstructed inline.
func (g *goGen) renderType(t xtype.Type) string {
	if name, ok := g.topLevel[t]; ok {
		return name + "Type"
	}
	switch v := t.(type) {
	case xtype.Bool:
		return "xtype.Bool{}"
	case xtype.Byte:
		return "xtype.Byte{}"
	case xtype.Int:
		return "xtype.Int{}"
	case xtype.Long:
		return "xtype.Long{}"
	case xtype.Float:
		return "xtype.Float{}"
	case xtype.String:
		return "xtype.String{}"
	case *xtype.TupleType:
		parts := make([]string, len(v.Subtypes()))
		for i, st := range v.Subtypes() {
			parts[i] = g.renderType(st)
		}
		return "xtype.NewTupleType(" + strings.Join(parts, ", ") + ")"
	case *xtype.ListType:
		return "xtype.NewListType(" + g.renderType(v.Elem()) + ")"
	case *xtype.ArrayType:
		return "xtype.NewArrayType(" + g.renderType(v.Elem()) + ")"
	case *xtype.AssocType:
		return "xtype.NewAssocType(" + g.renderType(v.Key()) + ", " + g.renderType(v.Value()) + ")"
	case *xtype.MessageType:
		return g.renderInlineMessage(v)
	case *xtype.UnionType:
		return g.renderInlineUnion(v)
	default:
		return fmt.Sprintf("nil /* unsupported type %T */", t)
	}
}

func (g *goGen) renderInlineMessage(v *xtype.MessageType) string {
	var b strings.Builder
	fmt.Fprintf(&b, "xtype.NewMessageType(%q", v.TypeName())
	for _, f := range v.Fields() {
		fmt.Fprintf(&b, ", xtype.Field{Name: %q, Type: %s, Mutable: %t}", f.Name, g.renderType(f.Type), f.Mutable)
	}
	b.WriteString(")")
	return b.String()
}

func (g *goGen) renderInlineUnion(v *xtype.UnionType) string {
	var b strings.Builder
	fmt.Fprintf(&b, "mustUnion(xtype.NewUnionType(%q, []xtype.VariantDecl{", v.TypeName())
	for i, variant := range v.Variants() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(g.renderVariantDecl(variant))
	}
	b.WriteString("}))")
	return b.String()
}

func (g *goGen) renderVariantDecl(v xtype.Variant) string {
	switch v.Kind {
	case xtype.VariantConstantOption:
		return fmt.Sprintf("{Name: %q, Kind: xtype.VariantConstantOption}", v.Name)
	case xtype.VariantMessage:
		return fmt.Sprintf("{Name: %q, Kind: xtype.VariantMessage, Message: %s}", v.Name, g.renderInlineMessage(v.Message))
	default: // VariantOption
		parts := make([]string, len(v.Payload))
		for i, p := range v.Payload {
			parts[i] = g.renderType(p)
		}
		return fmt.Sprintf("{Name: %q, Kind: xtype.VariantOption, Payload: []xtype.Type{%s}}", v.Name, strings.Join(parts, ", "))
	}
}

// fieldGoType returns the exported Go type a wrapper exposes for t, and a
// function that turns a Go expression of that type into the raw value
// xtype.MessageBuilder.Set expects.
func (g *goGen) fieldGoType(t xtype.Type) (goType string, toRaw func(expr string) string) {
	identity := func(expr string) string { return expr }
	switch t.(type) {
	case xtype.Bool:
		return "bool", identity
	case xtype.Byte:
		return "byte", identity
	case xtype.Int:
		return "int64", identity
	case xtype.Long:
		return "uint64", identity
	case xtype.Float:
		return "float64", identity
	case xtype.String:
		return "string", identity
	case *xtype.TupleType:
		return "*xtype.TupleValue", identity
	case *xtype.ListType, *xtype.ArrayType:
		return "*xtype.Sequence", identity
	case *xtype.AssocType:
		return "*xtype.Assoc", identity
	case *xtype.MessageType:
		if name, ok := g.topLevel[t]; ok {
			return "*" + name, func(expr string) string { return expr + ".msg" }
		}
		return "*xtype.Message", identity
	case *xtype.UnionType:
		if name, ok := g.topLevel[t]; ok {
			return "*" + name, func(expr string) string { return expr + ".val" }
		}
		return "*xtype.UnionValue", identity
	default:
		return "any", identity
	}
}

// fieldGetterExpr turns rawExpr, a Go expression of static type `any`
// holding a value of type t, into an expression of t's exposed Go type.
func (g *goGen) fieldGetterExpr(t xtype.Type, rawExpr string) string {
	switch t.(type) {
	case xtype.Bool:
		return rawExpr + ".(bool)"
	case xtype.Byte:
		return rawExpr + ".(byte)"
	case xtype.Int:
		return rawExpr + ".(int64)"
	case xtype.Long:
		return rawExpr + ".(uint64)"
	case xtype.Float:
		return rawExpr + ".(float64)"
	case xtype.String:
		return rawExpr + ".(string)"
	case *xtype.TupleType:
		return rawExpr + ".(*xtype.TupleValue)"
	case *xtype.ListType, *xtype.ArrayType:
		return rawExpr + ".(*xtype.Sequence)"
	case *xtype.AssocType:
		return rawExpr + ".(*xtype.Assoc)"
	case *xtype.MessageType:
		if name, ok := g.topLevel[t]; ok {
			return "wrap" + name + "(" + rawExpr + ".(*xtype.Message))"
		}
		return rawExpr + ".(*xtype.Message)"
	case *xtype.UnionType:
		if name, ok := g.topLevel[t]; ok {
			return "wrap" + name + "(" + rawExpr + ".(*xtype.UnionValue))"
		}
		return rawExpr + ".(*xtype.UnionValue)"
	default:
		return rawExpr
	}
}

func (g *goGen) writeMessage(buf *bytes.Buffer, m *schema.Message, t *xtype.MessageType) {
	pascal := g.pascalName(m.Name)
	varName := pascal + "Type"

	if g.opts.GenerateComments {
		fmt.Fprintf(buf, "// %s wraps a message value of the %q extprot type.\n", pascal, m.Name)
	}
	fmt.Fprintf(buf, "type %s struct {\n\tmsg *xtype.Message\n}\n\n", pascal)
	fmt.Fprintf(buf, "var %s = xtype.NewMessageTypeStub(%q)\n\n", varName, m.Name)

	buf.WriteString("func init() {\n")
	fmt.Fprintf(buf, "\t%s.SetFields([]xtype.Field{\n", varName)
	for _, f := range t.Fields() {
		fmt.Fprintf(buf, "\t\t{Name: %q, Type: %s, Mutable: %t},\n", f.Name, g.renderType(f.Type), f.Mutable)
	}
	buf.WriteString("\t})\n}\n\n")

	fmt.Fprintf(buf, "func wrap%s(m *xtype.Message) *%s { return &%s{msg: m} }\n\n", pascal, pascal, pascal)

	builderName := pascal + "Builder"
	fmt.Fprintf(buf, "// %s builds a %s field by field, defaulting anything left unset.\n", builderName, pascal)
	fmt.Fprintf(buf, "type %s struct {\n\tb   *xtype.MessageBuilder\n\terr error\n}\n\n", builderName)
	fmt.Fprintf(buf, "func New%s() *%s { return &%s{b: %s.NewBuilder()} }\n\n", builderName, builderName, builderName, varName)

	for i, f := range t.Fields() {
		goType, toRaw := g.fieldGoType(f.Type)
		fieldPascal := ToPascalCase(f.Name)
		fmt.Fprintf(buf, "func (b *%s) Set%s(v %s) *%s {\n\tif b.err == nil {\n\t\tb.err = b.b.Set(%d, %s)\n\t}\n\treturn b\n}\n\n",
			builderName, fieldPascal, goType, builderName, i, toRaw("v"))
	}

	fmt.Fprintf(buf, "func (b *%s) Build() (*%s, error) {\n\tif b.err != nil {\n\t\treturn nil, b.err\n\t}\n\tm, err := b.b.Build()\n\tif err != nil {\n\t\treturn nil, err\n\t}\n\treturn wrap%s(m), nil\n}\n\n",
		builderName, pascal, pascal)

	for i, f := range t.Fields() {
		goType, _ := g.fieldGoType(f.Type)
		fieldPascal := ToPascalCase(f.Name)
		getExpr := g.fieldGetterExpr(f.Type, fmt.Sprintf("v.msg.Get(%d)", i))
		fmt.Fprintf(buf, "func (v *%s) %s() %s { return %s }\n\n", pascal, fieldPascal, goType, getExpr)
	}
}

func (g *goGen) writeUnionMessage(buf *bytes.Buffer, m *schema.Message, t *xtype.UnionType) {
	pascal := g.pascalName(m.Name)
	varName := pascal + "Type"

	if g.opts.GenerateComments {
		fmt.Fprintf(buf, "// %s wraps a value of the %q extprot union message.\n", pascal, m.Name)
	}
	fmt.Fprintf(buf, "type %s struct {\n\tval *xtype.UnionValue\n}\n\n", pascal)
	fmt.Fprintf(buf, "var %s = xtype.NewUnionTypeStub(%q)\n\n", varName, m.Name)

	buf.WriteString("func init() {\n")
	fmt.Fprintf(buf, "\tif err := %s.SetVariants([]xtype.VariantDecl{\n", varName)
	for _, variant := range t.Variants() {
		fmt.Fprintf(buf, "\t\t%s,\n", g.renderVariantDecl(variant))
	}
	buf.WriteString("\t}); err != nil {\n\t\tpanic(err)\n\t}\n}\n\n")

	fmt.Fprintf(buf, "func wrap%s(v *xtype.UnionValue) *%s { return &%s{val: v} }\n\n", pascal, pascal, pascal)
	fmt.Fprintf(buf, "// VariantName reports which of %s's variants v holds.\n", pascal)
	fmt.Fprintf(buf, "func (v *%s) VariantName() string { return v.val.Variant().Name }\n\n", pascal)

	for _, variant := range t.Variants() {
		g.writeVariantConstructor(buf, pascal, varName, variant)
		g.writeVariantAccessor(buf, pascal, variant)
	}
}

func (g *goGen) writeVariantConstructor(buf *bytes.Buffer, pascal, varName string, variant xtype.Variant) {
	variantPascal := ToPascalCase(variant.Name)
	ctorName := "New" + pascal + variantPascal

	switch variant.Kind {
	case xtype.VariantConstantOption:
		fmt.Fprintf(buf, "func %s() *%s {\n\tuv, _ := %s.NewConstant(%q)\n\treturn wrap%s(uv)\n}\n\n",
			ctorName, pascal, varName, variant.Name, pascal)

	case xtype.VariantMessage:
		builderName := pascal + variantPascal + "Builder"
		fmt.Fprintf(buf, "// %s builds the %s variant of %s.\n", builderName, variant.Name, pascal)
		fmt.Fprintf(buf, "type %s struct {\n\tb   *xtype.MessageBuilder\n\terr error\n}\n\n", builderName)
		fmt.Fprintf(buf, "func %s() *%s {\n\tvariant, _ := %s.ByName(%q)\n\treturn &%s{b: variant.Message.NewBuilder()}\n}\n\n",
			ctorName, builderName, varName, variant.Name, builderName)
		for i, f := range variant.Message.Fields() {
			goType, toRaw := g.fieldGoType(f.Type)
			fieldPascal := ToPascalCase(f.Name)
			fmt.Fprintf(buf, "func (b *%s) Set%s(v %s) *%s {\n\tif b.err == nil {\n\t\tb.err = b.b.Set(%d, %s)\n\t}\n\treturn b\n}\n\n",
				builderName, fieldPascal, goType, builderName, i, toRaw("v"))
		}
		fmt.Fprintf(buf, "func (b *%s) Build() (*%s, error) {\n\tif b.err != nil {\n\t\treturn nil, b.err\n\t}\n\tm, err := b.b.Build()\n\tif err != nil {\n\t\treturn nil, err\n\t}\n\tuv, err := %s.NewMessageVariant(m)\n\tif err != nil {\n\t\treturn nil, err\n\t}\n\treturn wrap%s(uv), nil\n}\n\n",
			builderName, pascal, varName, pascal)

	default: // VariantOption
		params := make([]string, len(variant.Payload))
		args := make([]string, len(variant.Payload))
		for i, p := range variant.Payload {
			goType, toRaw := g.fieldGoType(p)
			params[i] = fmt.Sprintf("p%d %s", i, goType)
			args[i] = toRaw(fmt.Sprintf("p%d", i))
		}
		fmt.Fprintf(buf, "func %s(%s) (*%s, error) {\n\tuv, err := %s.NewOption(%q, %s)\n\tif err != nil {\n\t\treturn nil, err\n\t}\n\treturn wrap%s(uv), nil\n}\n\n",
			ctorName, strings.Join(params, ", "), pascal, varName, variant.Name, strings.Join(args, ", "), pascal)
	}
}

func (g *goGen) writeVariantAccessor(buf *bytes.Buffer, pascal string, variant xtype.Variant) {
	variantPascal := ToPascalCase(variant.Name)

	switch variant.Kind {
	case xtype.VariantConstantOption:
		fmt.Fprintf(buf, "func (v *%s) Is%s() bool { return v.val.Variant().Name == %q }\n\n", pascal, variantPascal, variant.Name)

	case xtype.VariantMessage:
		for i, f := range variant.Message.Fields() {
			goType, _ := g.fieldGoType(f.Type)
			fieldPascal := ToPascalCase(f.Name)
			getExpr := g.fieldGetterExpr(f.Type, fmt.Sprintf("v.val.Message().Get(%d)", i))
			fmt.Fprintf(buf, "func (v *%s) %s%s() %s { return %s }\n\n", pascal, variantPascal, fieldPascal, goType, getExpr)
		}

	default: // VariantOption
		for i, p := range variant.Payload {
			goType, _ := g.fieldGoType(p)
			getExpr := g.fieldGetterExpr(p, fmt.Sprintf("v.val.Payload()[%d]", i))
			fmt.Fprintf(buf, "func (v *%s) %sPayload%d() %s { return %s }\n\n", pascal, variantPascal, i, goType, getExpr)
		}
	}
}
