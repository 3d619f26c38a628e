//go:build go1.18

package schema

import "testing"

// FuzzSchemaParser checks that the parser never panics on arbitrary input.
func FuzzSchemaParser(f *testing.F) {
	f.Add(`message point = { x: int; y: int }`)
	f.Add(`message shape = Circle { r: int } | Square { side: int }`)
	f.Add(`type maybe 'a = Unknown | Known 'a`)
	f.Add(`type pair 'a = ('a * 'a)`)
	f.Add(`message bag = { xs: [int]; ys: [|int|] }`)
	f.Add(`message wrapper = { m: maybe<int> }`)
	f.Add(`(* a comment *) message point = { x: int }`)

	f.Add(``)
	f.Add(`{`)
	f.Add(`}`)
	f.Add(`message`)
	f.Add(`message {`)
	f.Add(`message Foo`)
	f.Add(`message Foo {`)
	f.Add(`message Foo { bar }`)
	f.Add(`message Foo { bar: }`)
	f.Add(`type`)
	f.Add(`type Foo =`)
	f.Add(`type Foo 'a =`)
	f.Add(`[|`)
	f.Add(`|]`)
	f.Add(`'`)
	f.Add(`(* unterminated`)

	f.Fuzz(func(t *testing.T, input string) {
		p := NewParser("fuzz.prot", input)
		_, _ = p.Parse()
	})
}

// FuzzLexer checks that the lexer never panics on arbitrary input.
func FuzzLexer(f *testing.F) {
	f.Add(`message point = { x: int }`)
	f.Add(`'a`)
	f.Add(`'`)
	f.Add(`[|int|]`)
	f.Add(`(* nested (* comment *) here *)`)
	f.Add(`identifier`)
	f.Add(`@#$`)

	f.Fuzz(func(t *testing.T, input string) {
		l := NewLexer("fuzz.prot", input)
		for {
			tok := l.Next()
			if tok.Type == TokenEOF || tok.Type == TokenError {
				break
			}
		}
	})
}
