package schema

import "fmt"

// Parser parses schema source code into an AST.
type Parser struct {
	lexer    *Lexer
	current  Token
	previous Token
	errors   []ParseError
}

// ParseError represents a parsing error.
type ParseError struct {
	Position Position
	Message  string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Position.Filename, e.Position.Line, e.Position.Column, e.Message)
}

// NewParser creates a new parser for the given input.
func NewParser(filename, input string) *Parser {
	p := &Parser{lexer: NewLexer(filename, input)}
	p.advance()
	return p
}

// Parse parses the entire schema file: protocol := (message | type_def)*
func (p *Parser) Parse() (*Schema, []ParseError) {
	schema := &Schema{Position: p.current.Position}

	for !p.check(TokenEOF) {
		switch {
		case p.check(TokenMessage):
			msg, err := p.parseMessage()
			if err != nil {
				p.errors = append(p.errors, *err)
				p.synchronize()
			} else {
				schema.Messages = append(schema.Messages, msg)
			}
		case p.check(TokenType_):
			td, err := p.parseTypeDef()
			if err != nil {
				p.errors = append(p.errors, *err)
				p.synchronize()
			} else {
				schema.TypeDefs = append(schema.TypeDefs, td)
			}
		default:
			p.errors = append(p.errors, ParseError{
				Position: p.current.Position,
				Message:  fmt.Sprintf("unexpected token: %s", p.current.Type),
			})
			p.advance()
		}
	}

	return schema, p.errors
}

// parseTypeDef parses: "type" IDENT PIDENT* "=" type_stmt
func (p *Parser) parseTypeDef() (*TypeDef, *ParseError) {
	startPos := p.current.Position
	p.advance() // consume 'type'

	if !p.check(TokenIdent) {
		return nil, p.error("expected type name")
	}
	name := p.current.Value
	p.advance()

	var params []string
	for p.check(TokenPIdent) {
		params = append(params, p.current.Value)
		p.advance()
	}

	if !p.consume(TokenEquals, "expected '=' in type definition") {
		return nil, p.error("expected '=' in type definition")
	}

	// A union_type is distinguished from a bare type_expr by a leading
	// "IDENT type_expr*" alternative list — look ahead for the pattern
	// of an identifier that isn't itself the start of a type_expr
	// followed eventually by a '|', by just trying union first when the
	// next token is a bare identifier (named types also start with an
	// identifier, so disambiguate on whether a '|' eventually appears
	// at this nesting level).
	if p.check(TokenIdent) && p.looksLikeUnionType() {
		union, err := p.parseUnionType()
		if err != nil {
			return nil, err
		}
		endPos := p.previous.Position
		return &TypeDef{Position: startPos, EndPos: endPos, Name: name, Params: params, Union: union}, nil
	}

	alias, err := p.parseTypeExpr()
	if err != nil {
		return nil, err
	}
	return &TypeDef{Position: startPos, EndPos: alias.End(), Name: name, Params: params, Alias: alias}, nil
}

// looksLikeUnionType peeks ahead, without consuming input, to tell a
// union_type's leading "IDENT type_expr*" variant apart from a bare
// named type_expr: a union variant name is followed by zero or more
// type_exprs and then either '|' or the type_def's end; a plain named
// type_expr is followed directly by '|' only if it is itself one
// variant's payload, which can't happen at the top of a type_stmt.
// The grammar makes this genuinely ambiguous only when the variant
// carries no payload and no further variant follows, in which case a
// single bare identifier is conservatively treated as a type alias
// (the common convention in practice: capitalized variant names).
func (p *Parser) looksLikeUnionType() bool {
	// A union variant name is conventionally capitalized; a type alias
	// referring to another declared type is as well, so this alone
	// can't disambiguate. The grammar distinguishes them structurally:
	// scan forward for a '|' before the next '\n'-insensitive stop
	// token ("type", "message", EOF) at depth 0.
	save := *p.lexer
	savedCur, savedPrev := p.current, p.previous
	defer func() {
		*p.lexer = save
		p.current, p.previous = savedCur, savedPrev
	}()

	depth := 0
	for {
		switch p.current.Type {
		case TokenPipe:
			if depth == 0 {
				return true
			}
		case TokenLParen, TokenLBracket, TokenLArrayOpen, TokenLAngle:
			depth++
		case TokenRParen, TokenRBracket, TokenRArrayOpen, TokenRAngle:
			depth--
		case TokenType_, TokenMessage, TokenEOF:
			return false
		}
		p.advance()
	}
}

// parseUnionType parses: (IDENT type_expr*) ("|" IDENT type_expr*)*
func (p *Parser) parseUnionType() (*UnionDef, *ParseError) {
	startPos := p.current.Position
	var variants []*VariantRef

	for {
		v, err := p.parseVariantRef()
		if err != nil {
			return nil, err
		}
		variants = append(variants, v)
		if !p.check(TokenPipe) {
			break
		}
		p.advance() // consume '|'
	}

	return &UnionDef{Position: startPos, EndPos: p.previous.Position, Variants: variants}, nil
}

// parseVariantRef parses: IDENT type_expr*
func (p *Parser) parseVariantRef() (*VariantRef, *ParseError) {
	startPos := p.current.Position
	if !p.check(TokenIdent) {
		return nil, p.error("expected variant name")
	}
	name := p.current.Value
	p.advance()

	var payload []TypeExpr
	for p.startsTypeExpr() {
		te, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		payload = append(payload, te)
	}

	return &VariantRef{Position: startPos, EndPos: p.previous.Position, Name: name, Payload: payload}, nil
}

func (p *Parser) startsTypeExpr() bool {
	switch p.current.Type {
	case TokenBool, TokenByte, TokenInt, TokenLong, TokenFloat, TokenString,
		TokenPIdent, TokenIdent, TokenLParen, TokenLBracket, TokenLArrayOpen:
		return true
	default:
		return false
	}
}

// parseMessage parses: simple_message | union_message
func (p *Parser) parseMessage() (*Message, *ParseError) {
	startPos := p.current.Position
	p.advance() // consume 'message'

	if !p.check(TokenIdent) {
		return nil, p.error("expected message name")
	}
	name := p.current.Value
	p.advance()

	if !p.consume(TokenEquals, "expected '=' after message name") {
		return nil, p.error("expected '=' after message name")
	}

	msg := &Message{Position: startPos, Name: name}

	// union_message: (IDENT "{" field_defs "}") ("|" IDENT "{" field_defs "}")*
	if p.check(TokenIdent) {
		for {
			variant, err := p.parseMessageVariant()
			if err != nil {
				return nil, err
			}
			msg.Variants = append(msg.Variants, variant)
			if !p.check(TokenPipe) {
				break
			}
			p.advance()
		}
		msg.EndPos = p.previous.Position
		return msg, nil
	}

	// simple_message: "{" field_defs "}"
	fields, err := p.parseFieldDefs()
	if err != nil {
		return nil, err
	}
	msg.Fields = fields
	msg.EndPos = p.previous.Position
	return msg, nil
}

// parseMessageVariant parses: IDENT "{" field_defs "}"
func (p *Parser) parseMessageVariant() (*MessageVariant, *ParseError) {
	startPos := p.current.Position
	if !p.check(TokenIdent) {
		return nil, p.error("expected variant name")
	}
	name := p.current.Value
	p.advance()

	fields, err := p.parseFieldDefs()
	if err != nil {
		return nil, err
	}
	return &MessageVariant{Position: startPos, EndPos: p.previous.Position, Name: name, Fields: fields}, nil
}

// parseFieldDefs parses: "{" (field_def ";")* field_def? ";"? "}"
func (p *Parser) parseFieldDefs() ([]*Field, *ParseError) {
	if !p.consume(TokenLBrace, "expected '{'") {
		return nil, p.error("expected '{'")
	}

	var fields []*Field
	for !p.check(TokenRBrace) && !p.check(TokenEOF) {
		field, err := p.parseField()
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
		if p.check(TokenSemicolon) {
			p.advance()
		} else {
			break
		}
	}

	if !p.consume(TokenRBrace, "expected '}'") {
		return nil, p.error("expected '}'")
	}
	return fields, nil
}

// parseField parses: "mutable"? IDENT ":" type_expr
func (p *Parser) parseField() (*Field, *ParseError) {
	startPos := p.current.Position
	var mutable bool
	if p.check(TokenMutable) {
		mutable = true
		p.advance()
	}

	if !p.check(TokenIdent) {
		return nil, p.error("expected field name")
	}
	name := p.current.Value
	p.advance()

	if !p.consume(TokenColon, "expected ':' after field name") {
		return nil, p.error("expected ':' after field name")
	}

	typeExpr, err := p.parseTypeExpr()
	if err != nil {
		return nil, err
	}

	return &Field{Position: startPos, EndPos: typeExpr.End(), Name: name, Type: typeExpr, Mutable: mutable}, nil
}

// parseTypeExpr parses: prim | named | tuple | list | array
func (p *Parser) parseTypeExpr() (TypeExpr, *ParseError) {
	startPos := p.current.Position

	switch p.current.Type {
	case TokenBool, TokenByte, TokenInt, TokenLong, TokenFloat, TokenString:
		name := p.current.Value
		endPos := p.current.Position
		p.advance()
		return &PrimType{Position: startPos, EndPos: endPos, Name: name}, nil

	case TokenPIdent:
		name := p.current.Value
		endPos := p.current.Position
		p.advance()
		return &NamedRef{Position: startPos, EndPos: endPos, Name: name, IsParam: true}, nil

	case TokenIdent:
		name := p.current.Value
		endPos := p.current.Position
		p.advance()
		named := &NamedRef{Position: startPos, EndPos: endPos, Name: name}
		if p.check(TokenLAngle) {
			p.advance()
			arg, err := p.parseTypeExpr()
			if err != nil {
				return nil, err
			}
			if !p.consume(TokenRAngle, "expected '>' after type argument") {
				return nil, p.error("expected '>' after type argument")
			}
			named.TypeArg = arg
			named.EndPos = p.previous.Position
		}
		return named, nil

	case TokenLParen:
		return p.parseTupleExpr()

	case TokenLArrayOpen:
		return p.parseArrayExpr()

	case TokenLBracket:
		return p.parseListExpr()

	default:
		return nil, p.error("expected type expression")
	}
}

// parseTupleExpr parses: "(" type_expr ("*" type_expr)* ")"
func (p *Parser) parseTupleExpr() (*TupleExpr, *ParseError) {
	startPos := p.current.Position
	p.advance() // consume '('

	var elems []TypeExpr
	for {
		e, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
		if !p.check(TokenStar) {
			break
		}
		p.advance()
	}

	if !p.consume(TokenRParen, "expected ')'") {
		return nil, p.error("expected ')'")
	}
	return &TupleExpr{Position: startPos, EndPos: p.previous.Position, Elems: elems}, nil
}

// parseListExpr parses: "[" type_expr "]"
func (p *Parser) parseListExpr() (*ListExpr, *ParseError) {
	startPos := p.current.Position
	p.advance() // consume '['

	elem, err := p.parseTypeExpr()
	if err != nil {
		return nil, err
	}
	if !p.consume(TokenRBracket, "expected ']'") {
		return nil, p.error("expected ']'")
	}
	return &ListExpr{Position: startPos, EndPos: p.previous.Position, Elem: elem}, nil
}

// parseArrayExpr parses: "[|" type_expr "|]"
func (p *Parser) parseArrayExpr() (*ArrayExpr, *ParseError) {
	startPos := p.current.Position
	p.advance() // consume '[|'

	elem, err := p.parseTypeExpr()
	if err != nil {
		return nil, err
	}
	if !p.consume(TokenRArrayOpen, "expected '|]'") {
		return nil, p.error("expected '|]'")
	}
	return &ArrayExpr{Position: startPos, EndPos: p.previous.Position, Elem: elem}, nil
}

// Helper methods

func (p *Parser) advance() {
	p.previous = p.current
	p.current = p.lexer.Next()
}

func (p *Parser) check(typ TokenType) bool {
	return p.current.Type == typ
}

func (p *Parser) consume(typ TokenType, msg string) bool {
	if p.check(typ) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) error(msg string) *ParseError {
	return &ParseError{Position: p.current.Position, Message: msg}
}

// synchronize skips tokens until a likely declaration boundary.
func (p *Parser) synchronize() {
	for !p.check(TokenEOF) {
		if p.previous.Type == TokenRBrace {
			return
		}
		switch p.current.Type {
		case TokenType_, TokenMessage:
			return
		}
		p.advance()
	}
}

// ParseFile is a convenience function that parses a schema file.
func ParseFile(filename, input string) (*Schema, []ParseError) {
	parser := NewParser(filename, input)
	return parser.Parse()
}
