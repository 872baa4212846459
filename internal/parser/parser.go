// Package parser implements a recursive descent parser turning Vertex
// surface syntax into an internal/ast.Context tree.
//
// The grammar has no binary expression operators: arithmetic and every
// other operation is a named call (internal or extern), so expression
// parsing never needs precedence climbing, only a single primary-expr
// production.
package parser

import (
	"fmt"
	"strconv"

	"github.com/vertexlang/vertex/internal/ast"
	"github.com/vertexlang/vertex/internal/lexer"
)

// Parser converts a token stream into an *ast.Context.
type Parser struct {
	lex *lexer.Lexer

	current  lexer.Token
	previous lexer.Token

	errors []error
}

// New creates a Parser over source.
func New(source string) *Parser {
	p := &Parser{lex: lexer.New(source)}
	p.advance()
	return p
}

// ParseContext parses a whole source file into a Context. It returns as
// much of the tree as it could build alongside any errors encountered;
// callers should treat a non-empty error slice as a failed compile (spec
// §7's compile-time error classification).
func (p *Parser) ParseContext() (*ast.Context, []error) {
	ctx := &ast.Context{Pos: ast.At(p.pos())}
	for !p.atEnd() {
		mod := p.parseModule()
		if mod != nil {
			ctx.Modules = append(ctx.Modules, mod)
		}
		if len(p.errors) > 0 && mod == nil {
			break
		}
	}
	return ctx, p.errors
}

func (p *Parser) parseModule() *ast.ModuleNode {
	pos := p.pos()
	name, ok := p.expectIdent("module name")
	if !ok {
		return nil
	}
	if !p.expect(lexer.Assign, "=") {
		return nil
	}
	export := p.match(lexer.Export)
	if !p.expect(lexer.Mod, "mod") {
		return nil
	}
	if !p.expect(lexer.LBrace, "{") {
		return nil
	}

	mod := &ast.ModuleNode{Pos: ast.At(pos), Name: name, Export: export}
	for !p.check(lexer.RBrace) && !p.atEnd() {
		switch p.current.Kind {
		case lexer.Ident:
			switch p.peekDecl() {
			case declModule:
				if m := p.parseModule(); m != nil {
					mod.Modules = append(mod.Modules, m)
				} else {
					return mod
				}
			case declFunction:
				if fn := p.parseFunction(); fn != nil {
					mod.Functions = append(mod.Functions, fn)
				} else {
					return mod
				}
			case declStruct:
				if st := p.parseStruct(); st != nil {
					mod.Structs = append(mod.Structs, st)
				} else {
					return mod
				}
			default:
				p.error("expected mod, function or struct declaration")
				return mod
			}
		default:
			p.error("expected mod, function or struct declaration")
			return mod
		}
	}
	p.expect(lexer.RBrace, "}")
	return mod
}

// declKind classifies which declaration an `Ident "=" ...` line starts,
// by looking past the "=" and any "export"/"serial" modifiers.
type declKind int

const (
	declUnknown declKind = iota
	declModule
	declFunction
	declStruct
)

// peekDecl looks ahead without consuming tokens (other than via a
// throwaway sub-lexer state snapshot) to classify the declaration that
// starts at the current identifier.
func (p *Parser) peekDecl() declKind {
	save := *p.lex
	savedCur, savedPrev, savedErrs := p.current, p.previous, len(p.errors)

	p.advance() // consume name
	kind := declUnknown
	if p.current.Kind == lexer.Assign {
		p.advance()
		for p.current.Kind == lexer.Export || p.current.Kind == lexer.Serial {
			p.advance()
		}
		switch p.current.Kind {
		case lexer.Mod:
			kind = declModule
		case lexer.Function:
			kind = declFunction
		case lexer.Struct:
			kind = declStruct
		}
	}

	*p.lex = save
	p.current, p.previous = savedCur, savedPrev
	p.errors = p.errors[:savedErrs]
	return kind
}

func (p *Parser) parseFunction() *ast.FunctionNode {
	pos := p.pos()
	name, ok := p.expectIdent("function name")
	if !ok {
		return nil
	}
	if !p.expect(lexer.Assign, "=") {
		return nil
	}
	export := p.match(lexer.Export)
	serial := p.match(lexer.Serial)
	if !p.expect(lexer.Function, "function") {
		return nil
	}
	if !p.expect(lexer.LBrace, "{") {
		return nil
	}

	if !p.expect(lexer.Params, "params") || !p.expect(lexer.Assign, "=") {
		return nil
	}
	params, ok := p.parseArgumentList()
	if !ok {
		return nil
	}

	if !p.expect(lexer.Return, "return") || !p.expect(lexer.Assign, "=") {
		return nil
	}
	returns, ok := p.parseArgumentList()
	if !ok {
		return nil
	}

	fn := &ast.FunctionNode{
		Pos: ast.At(pos), Name: name, Export: export, Serial: serial,
		Params: params, Returns: returns,
	}

	for !p.check(lexer.RBrace) && !p.atEnd() {
		switch p.current.Kind {
		case lexer.Ident:
			switch p.peekDecl() {
			case declFunction:
				if nested := p.parseFunction(); nested != nil {
					fn.Functions = append(fn.Functions, nested)
				} else {
					return fn
				}
			case declStruct:
				if st := p.parseStruct(); st != nil {
					fn.Structs = append(fn.Structs, st)
				} else {
					return fn
				}
			default:
				if a := p.parseAssignment(); a != nil {
					fn.Assignments = append(fn.Assignments, a)
				} else {
					return fn
				}
			}
		case lexer.Serial, lexer.Extern:
			if a := p.parseAssignment(); a != nil {
				fn.Assignments = append(fn.Assignments, a)
			} else {
				return fn
			}
		default:
			p.error("expected a nested declaration or statement")
			return fn
		}
	}
	p.expect(lexer.RBrace, "}")
	return fn
}

func (p *Parser) parseStruct() *ast.StructNode {
	pos := p.pos()
	name, ok := p.expectIdent("struct name")
	if !ok {
		return nil
	}
	if !p.expect(lexer.Assign, "=") {
		return nil
	}
	export := p.match(lexer.Export)
	if !p.expect(lexer.Struct, "struct") {
		return nil
	}
	if !p.expect(lexer.LBrace, "{") {
		return nil
	}

	st := &ast.StructNode{Pos: ast.At(pos), Name: name, Export: export}
	for !p.check(lexer.RBrace) && !p.atEnd() {
		field, ok := p.parseArgument()
		if !ok {
			return st
		}
		st.Fields = append(st.Fields, field)
		p.match(lexer.Comma)
	}
	p.expect(lexer.RBrace, "}")
	return st
}

// parseArgumentList parses a parenthesized, comma- or newline-separated
// (name: Type) list, e.g. the params/return/struct-field lists.
func (p *Parser) parseArgumentList() ([]*ast.ArgumentNode, bool) {
	if !p.expect(lexer.LParen, "(") {
		return nil, false
	}
	var args []*ast.ArgumentNode
	for !p.check(lexer.RParen) && !p.atEnd() {
		arg, ok := p.parseArgument()
		if !ok {
			return nil, false
		}
		args = append(args, arg)
		p.match(lexer.Comma)
	}
	if !p.expect(lexer.RParen, ")") {
		return nil, false
	}
	return args, true
}

func (p *Parser) parseArgument() (*ast.ArgumentNode, bool) {
	pos := p.pos()
	name, ok := p.expectIdent("argument name")
	if !ok {
		return nil, false
	}
	if !p.expect(lexer.Colon, ":") {
		return nil, false
	}
	typeName, ok := p.parseTypeName()
	if !ok {
		return nil, false
	}
	return &ast.ArgumentNode{Pos: ast.At(pos), Name: name, Type: typeName}, true
}

// parseTypeName consumes the raw text of a type-name expression (e.g.
// `Int`, `Int[]`, `(Int,String)`, `{String:Int}`) and hands it to
// internal/datatype.FromName verbatim; the parser does not interpret the
// suffix grammar itself.
func (p *Parser) parseTypeName() (string, bool) {
	text, ok := p.consumeBalancedTypeText()
	if !ok {
		p.error("expected a type name")
		return "", false
	}
	return text, true
}

func (p *Parser) consumeBalancedTypeText() (string, bool) {
	var out string
	depth := 0
	for {
		switch p.current.Kind {
		case lexer.Ident:
			out += p.current.Literal
			p.advance()
		case lexer.Dot:
			out += "."
			p.advance()
		case lexer.LBracket:
			out += "["
			depth++
			p.advance()
		case lexer.RBracket:
			out += "]"
			depth--
			p.advance()
		case lexer.Int:
			out += p.current.Literal
			p.advance()
		case lexer.Question:
			out += "?"
			p.advance()
		case lexer.Bang:
			out += "!"
			p.advance()
		case lexer.LParen:
			out += "("
			depth++
			p.advance()
		case lexer.RParen:
			out += ")"
			depth--
			p.advance()
		case lexer.LBrace:
			out += "{"
			depth++
			p.advance()
		case lexer.RBrace:
			out += "}"
			depth--
			p.advance()
		case lexer.Colon:
			out += ":"
			p.advance()
		case lexer.Comma:
			if depth == 0 {
				return out, out != ""
			}
			out += ","
			p.advance()
		default:
			return out, out != ""
		}
		if depth <= 0 && out != "" {
			// Composite closed or a bare identifier was consumed; a
			// following '[' ']' '?' '!' can still extend it, so only
			// stop once the next token can't continue a suffix.
			switch p.current.Kind {
			case lexer.LBracket, lexer.Question, lexer.Bang:
				continue
			default:
				return out, true
			}
		}
	}
}

func (p *Parser) parseAssignment() *ast.AssignmentNode {
	pos := p.pos()

	var variable *ast.Ident
	if p.current.Kind == lexer.Ident && p.peekIsAssign() {
		identPos := p.pos()
		name := p.current.Literal
		p.advance()
		p.advance() // consume '='
		variable = &ast.Ident{Pos: ast.At(identPos), Name: name}
	}

	expr, ok := p.parseExpr()
	if !ok {
		return nil
	}
	return &ast.AssignmentNode{Pos: ast.At(pos), Variable: variable, Expression: expr}
}

func (p *Parser) peekIsAssign() bool {
	save := *p.lex
	savedCur, savedPrev, savedErrs := p.current, p.previous, len(p.errors)

	p.advance()
	result := p.current.Kind == lexer.Assign

	*p.lex = save
	p.current, p.previous = savedCur, savedPrev
	p.errors = p.errors[:savedErrs]
	return result
}

func (p *Parser) parseExpr() (ast.Expr, bool) {
	serial := p.match(lexer.Serial)
	external := p.match(lexer.Extern)

	pos := p.pos()
	switch p.current.Kind {
	case lexer.Int:
		v, err := strconv.ParseInt(p.current.Literal, 10, 64)
		if err != nil {
			p.error(fmt.Sprintf("invalid integer literal %q", p.current.Literal))
			return nil, false
		}
		p.advance()
		return &ast.IntLiteral{Pos: ast.At(pos), Value: v}, true
	case lexer.Float:
		v, err := strconv.ParseFloat(p.current.Literal, 64)
		if err != nil {
			p.error(fmt.Sprintf("invalid float literal %q", p.current.Literal))
			return nil, false
		}
		p.advance()
		return &ast.FloatLiteral{Pos: ast.At(pos), Value: v}, true
	case lexer.String:
		v := p.current.Literal
		p.advance()
		return &ast.StringLiteral{Pos: ast.At(pos), Value: v}, true
	case lexer.Char:
		runes := []rune(p.current.Literal)
		if len(runes) == 0 {
			p.error("empty character literal")
			return nil, false
		}
		p.advance()
		return &ast.CharLiteral{Pos: ast.At(pos), Value: runes[0]}, true
	case lexer.True:
		p.advance()
		return &ast.BoolLiteral{Pos: ast.At(pos), Value: true}, true
	case lexer.False:
		p.advance()
		return &ast.BoolLiteral{Pos: ast.At(pos), Value: false}, true
	case lexer.Ident:
		return p.parseIdentExpr(pos, serial, external)
	default:
		p.error(fmt.Sprintf("unexpected token %s in expression", p.current.Kind))
		return nil, false
	}
}

func (p *Parser) parseIdentExpr(pos ast.Position, serial, external bool) (ast.Expr, bool) {
	name := p.current.Literal
	p.advance()

	if p.current.Kind == lexer.LParen {
		p.advance()
		var args []ast.Expr
		for !p.check(lexer.RParen) && !p.atEnd() {
			arg, ok := p.parseExpr()
			if !ok {
				return nil, false
			}
			args = append(args, arg)
			p.match(lexer.Comma)
		}
		if !p.expect(lexer.RParen, ")") {
			return nil, false
		}
		return &ast.FunctionCall{
			Pos: ast.At(pos), Name: name, External: external, Serial: serial, Args: args,
		}, true
	}

	if serial || external {
		p.error("'serial'/'extern' only precede a function call")
		return nil, false
	}

	if p.current.Kind == lexer.Dot {
		path := []string{name}
		for p.match(lexer.Dot) {
			part, ok := p.expectIdent("path segment")
			if !ok {
				return nil, false
			}
			path = append(path, part)
		}
		return &ast.InnerVariable{Pos: ast.At(pos), Path: path}, true
	}

	return &ast.Variable{Pos: ast.At(pos), Name: name}, true
}

// ----------------------------------------------------------------------------
// Token-stream plumbing

func (p *Parser) advance() {
	p.previous = p.current
	for {
		tok, err := p.lex.NextToken()
		if err != nil {
			p.errors = append(p.errors, err)
			continue
		}
		p.current = tok
		return
	}
}

func (p *Parser) check(k lexer.Kind) bool { return p.current.Kind == k }
func (p *Parser) atEnd() bool             { return p.current.Kind == lexer.EOF }

func (p *Parser) match(k lexer.Kind) bool {
	if p.current.Kind != k {
		return false
	}
	p.advance()
	return true
}

func (p *Parser) expect(k lexer.Kind, what string) bool {
	if p.current.Kind != k {
		p.error(fmt.Sprintf("expected %q, got %q", what, p.current.Literal))
		return false
	}
	p.advance()
	return true
}

func (p *Parser) expectIdent(what string) (string, bool) {
	if p.current.Kind != lexer.Ident {
		p.error(fmt.Sprintf("expected %s, got %q", what, p.current.Literal))
		return "", false
	}
	name := p.current.Literal
	p.advance()
	return name, true
}

func (p *Parser) pos() ast.Position {
	return ast.Position{Line: p.current.Line, Col: p.current.Col, Offset: p.current.Offset}
}

func (p *Parser) error(msg string) {
	p.errors = append(p.errors, fmt.Errorf("%d:%d: %s", p.current.Line, p.current.Col, msg))
}
