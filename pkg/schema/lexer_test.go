package schema

import "testing"

func TestLexerKeywords(t *testing.T) {
	input := "type message mutable bool byte int long float string"

	expected := []struct {
		typ   TokenType
		value string
	}{
		{TokenType_, "type"},
		{TokenMessage, "message"},
		{TokenMutable, "mutable"},
		{TokenBool, "bool"},
		{TokenByte, "byte"},
		{TokenInt, "int"},
		{TokenLong, "long"},
		{TokenFloat, "float"},
		{TokenString, "string"},
		{TokenEOF, ""},
	}

	lexer := NewLexer("test.prot", input)
	for i, exp := range expected {
		tok := lexer.Next()
		if tok.Type != exp.typ {
			t.Errorf("token %d: expected type %v, got %v", i, exp.typ, tok.Type)
		}
		if tok.Value != exp.value {
			t.Errorf("token %d: expected value %q, got %q", i, exp.value, tok.Value)
		}
	}
}

func TestLexerIdentifiers(t *testing.T) {
	input := "foo Bar _private camelCase snake_case PascalCase"
	expected := []string{"foo", "Bar", "_private", "camelCase", "snake_case", "PascalCase"}

	lexer := NewLexer("test.prot", input)
	for i, exp := range expected {
		tok := lexer.Next()
		if tok.Type != TokenIdent {
			t.Errorf("token %d: expected Ident, got %v", i, tok.Type)
		}
		if tok.Value != exp {
			t.Errorf("token %d: expected %q, got %q", i, exp, tok.Value)
		}
	}
}

func TestLexerPIdent(t *testing.T) {
	input := "'a 'elem 'key2"
	expected := []string{"a", "elem", "key2"}

	lexer := NewLexer("test.prot", input)
	for i, exp := range expected {
		tok := lexer.Next()
		if tok.Type != TokenPIdent {
			t.Errorf("token %d: expected PIdent, got %v", i, tok.Type)
		}
		if tok.Value != exp {
			t.Errorf("token %d: expected %q, got %q", i, exp, tok.Value)
		}
	}
}

func TestLexerPIdentRequiresName(t *testing.T) {
	lexer := NewLexer("test.prot", "'")
	tok := lexer.Next()
	if tok.Type != TokenError {
		t.Fatalf("expected Error, got %v", tok.Type)
	}
}

func TestLexerPunctuation(t *testing.T) {
	input := "{ } [ ] [| |] < > ( ) ; : = * |"
	expected := []TokenType{
		TokenLBrace, TokenRBrace,
		TokenLBracket, TokenRBracket,
		TokenLArrayOpen, TokenRArrayOpen,
		TokenLAngle, TokenRAngle,
		TokenLParen, TokenRParen,
		TokenSemicolon, TokenColon, TokenEquals, TokenStar, TokenPipe,
	}

	lexer := NewLexer("test.prot", input)
	for i, exp := range expected {
		tok := lexer.Next()
		if tok.Type != exp {
			t.Errorf("token %d: expected %v, got %v (%q)", i, exp, tok.Type, tok.Value)
		}
	}
}

func TestLexerBracketVsArrayOpen(t *testing.T) {
	// "[|" must lex as one token, not "[" followed by "|".
	lexer := NewLexer("test.prot", "[|int|]")
	if tok := lexer.Next(); tok.Type != TokenLArrayOpen {
		t.Fatalf("expected LArrayOpen, got %v", tok.Type)
	}
	if tok := lexer.Next(); tok.Type != TokenInt {
		t.Fatalf("expected Int, got %v", tok.Type)
	}
	if tok := lexer.Next(); tok.Type != TokenRArrayOpen {
		t.Fatalf("expected RArrayOpen, got %v", tok.Type)
	}
}

func TestLexerNestedComments(t *testing.T) {
	input := "(* outer (* inner *) still outer *) bool"
	lexer := NewLexer("test.prot", input)
	tok := lexer.Next()
	if tok.Type != TokenBool {
		t.Fatalf("expected comment to be skipped entirely, got %v (%q)", tok.Type, tok.Value)
	}
}

func TestLexerUnexpectedCharacter(t *testing.T) {
	lexer := NewLexer("test.prot", "@")
	tok := lexer.Next()
	if tok.Type != TokenError {
		t.Fatalf("expected Error, got %v", tok.Type)
	}
}

func TestTokenizeStopsAtEOF(t *testing.T) {
	tokens := Tokenize("test.prot", "bool byte")
	if len(tokens) != 3 { // Bool, Byte, EOF
		t.Fatalf("expected 3 tokens, got %d", len(tokens))
	}
	if tokens[len(tokens)-1].Type != TokenEOF {
		t.Fatalf("expected last token to be EOF, got %v", tokens[len(tokens)-1].Type)
	}
}
