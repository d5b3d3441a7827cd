package lang

import "fmt"

// Parse tokenizes and parses src into a Tree. Parsing never panics and
// never stops at the first error: on a malformed construct the parser
// records a ParseError, synchronizes at the next statement/declaration
// boundary, and keeps going, so that one broken top-level declaration does
// not blank out analysis for the rest of the file (spec.md §4.6(e)).
func Parse(src []byte) *Tree {
	toks := newLexer(src).tokenize()
	p := &parser{
		tree: &Tree{Source: src, Tokens: toks},
	}
	p.pushNode(Node{Tag: NodeRoot}) // reserve index 0 for root
	decls := p.parseRootDecls()
	p.tree.Nodes[0].Data = NodeData{LHS: p.appendExtra(decls...), RHS: len(p.tree.ExtraData)}
	return p.tree
}

type parser struct {
	tree *Tree
	pos  int
}

func (p *parser) cur() Token {
	if p.pos >= len(p.tree.Tokens) {
		return p.tree.Tokens[len(p.tree.Tokens)-1] // EOF
	}
	return p.tree.Tokens[p.pos]
}

func (p *parser) at(tag TokenTag) bool { return p.cur().Tag == tag }

func (p *parser) advance() int {
	i := p.pos
	if p.pos < len(p.tree.Tokens)-1 {
		p.pos++
	}
	return i
}

func (p *parser) eat(tag TokenTag) (int, bool) {
	if p.at(tag) {
		return p.advance(), true
	}
	return 0, false
}

func (p *parser) expect(tag TokenTag, what string) int {
	if i, ok := p.eat(tag); ok {
		return i
	}
	p.errorf("expected %s", what)
	return p.pos
}

func (p *parser) errorf(format string, args ...any) {
	p.tree.Errors = append(p.tree.Errors, ParseError{
		Token:   p.pos,
		Message: fmt.Sprintf(format, args...),
	})
}

// skipTrivia advances over any run of doc/line comments preceding a
// declaration; doc comments immediately above a declaration are attached by
// internal/analysis by scanning tokens backward from the declaration's
// first token, per spec.md §4.6(d), so the parser itself does not need to
// record the association.
func (p *parser) skipTrivia() {
	for p.at(TokDocComment) || p.at(TokLineComment) {
		p.advance()
	}
}

func (p *parser) pushNode(n Node) int {
	p.tree.Nodes = append(p.tree.Nodes, n)
	return len(p.tree.Nodes) - 1
}

// appendExtra appends a slice of node indices to extraData and returns the
// start offset of the appended sub-range.
func (p *parser) appendExtra(indices ...int) int {
	start := len(p.tree.ExtraData)
	p.tree.ExtraData = append(p.tree.ExtraData, indices...)
	return start
}

func (p *parser) parseRootDecls() []int {
	var decls []int
	for {
		p.skipTrivia()
		if p.at(TokEOF) {
			return decls
		}
		before := p.pos
		if n, ok := p.parseDecl(); ok {
			decls = append(decls, n)
		}
		if p.pos == before {
			// Nothing consumed; avoid an infinite loop on unrecognized input.
			p.errorf("unexpected token at top level")
			p.advance()
		}
	}
}

// parseDecl parses one top-level or container-level declaration: an
// optional 'pub', then a fn declaration or a const/var declaration.
func (p *parser) parseDecl() (int, bool) {
	p.eat(TokKeywordPub)

	switch {
	case p.at(TokKeywordFn):
		return p.parseFnDecl(), true
	case p.at(TokKeywordConst), p.at(TokKeywordVar):
		return p.parseVarDecl(), true
	default:
		return 0, false
	}
}

func (p *parser) parseFnDecl() int {
	fnTok := p.expect(TokKeywordFn, "'fn'")
	proto := p.parseFnProto(fnTok)

	var body int
	if p.at(TokLBrace) {
		body = p.parseBlock()
	} else {
		p.expect(TokSemicolon, "';' after function prototype")
	}

	return p.pushNode(Node{Tag: NodeFnDecl, MainToken: fnTok, Data: NodeData{LHS: proto, RHS: body}})
}

func (p *parser) parseFnProto(fnTok int) int {
	p.eat(TokIdentifier) // function name
	p.expect(TokLParen, "'(' after function name")

	var params []int
	for !p.at(TokRParen) && !p.at(TokEOF) {
		params = append(params, p.parseParam())
		if _, ok := p.eat(TokComma); !ok {
			break
		}
	}
	p.expect(TokRParen, "')' to close parameter list")

	retType := p.parseTypeExpr()

	paramsStart := p.appendExtra(params...)
	paramsEnd := len(p.tree.ExtraData)
	return p.pushNode(Node{
		Tag:       NodeFnProto,
		MainToken: fnTok,
		Data:      NodeData{LHS: p.appendExtra(paramsStart, paramsEnd), RHS: retType},
	})
}

func (p *parser) parseParam() int {
	nameTok := p.pos
	if p.at(TokIdentifier) {
		nameTok = p.advance()
	} else {
		p.errorf("expected parameter name")
	}
	p.expect(TokColon, "':' after parameter name")
	typ := p.parseTypeExpr()
	return p.pushNode(Node{Tag: NodeParam, MainToken: nameTok, Data: NodeData{LHS: typ}})
}

func (p *parser) parseVarDecl() int {
	kwTok := p.advance() // 'const' or 'var'
	p.eat(TokIdentifier) // variable name

	var typ int
	if _, ok := p.eat(TokColon); ok {
		typ = p.parseTypeExpr()
	}

	var init int
	if _, ok := p.eat(TokEqual); ok {
		init = p.parseExpr()
	}
	p.expect(TokSemicolon, "';' after variable declaration")

	return p.pushNode(Node{Tag: NodeVarDecl, MainToken: kwTok, Data: NodeData{LHS: typ, RHS: init}})
}

// parseTypeExpr parses a type expression: optional '*'/'?'/error-union
// prefixes wrapped around a primary type (identifier, container decl, or
// parenthesized expr). Shares the expression grammar since Zen, like Zig,
// treats types as ordinary expressions.
func (p *parser) parseTypeExpr() int {
	switch {
	case p.at(TokStar):
		tok := p.advance()
		return p.pushNode(Node{Tag: NodePtrType, MainToken: tok, Data: NodeData{LHS: p.parseTypeExpr()}})
	case p.at(TokQuestion):
		tok := p.advance()
		return p.pushNode(Node{Tag: NodeOptionalType, MainToken: tok, Data: NodeData{LHS: p.parseTypeExpr()}})
	case p.at(TokKeywordError):
		return p.parseErrorUnionOrSet()
	default:
		return p.parseExpr()
	}
}

func (p *parser) parseErrorUnionOrSet() int {
	kwTok := p.advance() // 'error'
	if _, ok := p.eat(TokLBrace); ok {
		var members []int
		for !p.at(TokRBrace) && !p.at(TokEOF) {
			if tok, ok := p.eat(TokIdentifier); ok {
				members = append(members, p.pushNode(Node{Tag: NodeIdentifier, MainToken: tok}))
			}
			if _, ok := p.eat(TokComma); !ok {
				break
			}
		}
		p.expect(TokRBrace, "'}' to close error set")
		start := p.appendExtra(members...)
		set := p.pushNode(Node{Tag: NodeErrorSetDecl, MainToken: kwTok, Data: NodeData{LHS: start, RHS: len(p.tree.ExtraData)}})
		return p.maybeErrorUnion(set)
	}
	return p.maybeErrorUnion(0)
}

// maybeErrorUnion wraps errSet (0 for an inferred error set) around a '!'
// payload type, if one follows.
func (p *parser) maybeErrorUnion(errSet int) int {
	if bangTok, ok := p.eat(TokBang); ok {
		payload := p.parseTypeExpr()
		return p.pushNode(Node{Tag: NodeErrorUnionType, MainToken: bangTok, Data: NodeData{LHS: errSet, RHS: payload}})
	}
	if errSet != 0 {
		return errSet
	}
	return p.parsePrimaryExpr()
}

func (p *parser) parseBlock() int {
	lbrace := p.expect(TokLBrace, "'{'")
	var stmts []int
	for !p.at(TokRBrace) && !p.at(TokEOF) {
		before := p.pos
		stmts = append(stmts, p.parseStmt())
		if p.pos == before {
			p.advance()
		}
	}
	p.expect(TokRBrace, "'}' to close block")
	start := p.appendExtra(stmts...)
	return p.pushNode(Node{Tag: NodeBlock, MainToken: lbrace, Data: NodeData{LHS: start, RHS: len(p.tree.ExtraData)}})
}

func (p *parser) parseStmt() int {
	switch {
	case p.at(TokKeywordReturn):
		tok := p.advance()
		var value int
		if !p.at(TokSemicolon) {
			value = p.parseExpr()
		}
		p.expect(TokSemicolon, "';' after return statement")
		return p.pushNode(Node{Tag: NodeReturnStmt, MainToken: tok, Data: NodeData{LHS: value}})
	case p.at(TokKeywordConst), p.at(TokKeywordVar):
		return p.parseVarDecl()
	case p.at(TokLBrace):
		return p.parseBlock()
	default:
		expr := p.parseExpr()
		p.eat(TokSemicolon)
		return expr
	}
}

// parseExpr parses an expression with try/catch prefix/infix handling, then
// delegates to the postfix chain for field access and calls.
func (p *parser) parseExpr() int {
	var lhs int
	if tok, ok := p.eat(TokKeywordTry); ok {
		lhs = p.pushNode(Node{Tag: NodeTryExpr, MainToken: tok, Data: NodeData{LHS: p.parsePostfixExpr()}})
	} else {
		lhs = p.parsePostfixExpr()
	}

	if tok, ok := p.eat(TokKeywordCatch); ok {
		rhs := p.parseExpr()
		return p.pushNode(Node{Tag: NodeCatchExpr, MainToken: tok, Data: NodeData{LHS: lhs, RHS: rhs}})
	}
	if tok, ok := p.eat(TokKeywordOrelse); ok {
		rhs := p.parseExpr()
		return p.pushNode(Node{Tag: NodeOrelseExpr, MainToken: tok, Data: NodeData{LHS: lhs, RHS: rhs}})
	}
	return lhs
}

// parsePostfixExpr parses a primary expression followed by any chain of
// '.'-field-accesses and call-argument-lists, e.g. foo.bar.baz(1, 2).qux.
func (p *parser) parsePostfixExpr() int {
	expr := p.parsePrimaryExpr()
	for {
		switch {
		case p.at(TokDot):
			p.advance()
			nameTok := p.expect(TokIdentifier, "field name after '.'")
			expr = p.pushNode(Node{Tag: NodeFieldAccess, MainToken: nameTok, Data: NodeData{LHS: expr}})
		case p.at(TokLParen):
			lparen := p.advance()
			var args []int
			for !p.at(TokRParen) && !p.at(TokEOF) {
				args = append(args, p.parseExpr())
				if _, ok := p.eat(TokComma); !ok {
					break
				}
			}
			p.expect(TokRParen, "')' to close call arguments")
			start := p.appendExtra(args...)
			expr = p.pushNode(Node{Tag: NodeCall, MainToken: lparen, Data: NodeData{LHS: expr, RHS: p.appendExtra(start, len(p.tree.ExtraData))}})
		default:
			return expr
		}
	}
}

func (p *parser) parsePrimaryExpr() int {
	switch {
	case p.at(TokBuiltin):
		return p.parseBuiltinOrImport()
	case p.at(TokIdentifier):
		tok := p.advance()
		return p.pushNode(Node{Tag: NodeIdentifier, MainToken: tok})
	case p.at(TokStringLiteral):
		tok := p.advance()
		return p.pushNode(Node{Tag: NodeStringLiteral, MainToken: tok})
	case p.at(TokIntegerLiteral), p.at(TokFloatLiteral):
		tok := p.advance()
		return p.pushNode(Node{Tag: NodeIntegerLiteral, MainToken: tok})
	case p.at(TokKeywordUndefined):
		tok := p.advance()
		return p.pushNode(Node{Tag: NodeUndefined, MainToken: tok})
	case p.at(TokKeywordStruct), p.at(TokKeywordEnum), p.at(TokKeywordUnion), p.at(TokKeywordOpaque):
		return p.parseContainerDecl()
	case p.at(TokLParen):
		p.advance()
		inner := p.parseExpr()
		p.expect(TokRParen, "')' to close parenthesized expression")
		return inner
	default:
		p.errorf("expected an expression")
		tok := p.advance()
		return p.pushNode(Node{Tag: NodeIdentifier, MainToken: tok})
	}
}

func (p *parser) parseBuiltinOrImport() int {
	tok := p.advance()
	if string(p.tree.TokenSlice(tok)) == "@import" {
		p.expect(TokLParen, "'(' after @import")
		pathNode := 0
		if p.at(TokStringLiteral) {
			pathTok := p.advance()
			pathNode = p.pushNode(Node{Tag: NodeStringLiteral, MainToken: pathTok})
		} else {
			p.errorf("expected string literal import path")
		}
		p.expect(TokRParen, "')' after @import argument")
		return p.pushNode(Node{Tag: NodeImportCall, MainToken: tok, Data: NodeData{LHS: pathNode}})
	}

	var args []int
	if _, ok := p.eat(TokLParen); ok {
		for !p.at(TokRParen) && !p.at(TokEOF) {
			args = append(args, p.parseExpr())
			if _, ok := p.eat(TokComma); !ok {
				break
			}
		}
		p.expect(TokRParen, "')' to close builtin call arguments")
	}
	start := p.appendExtra(args...)
	return p.pushNode(Node{Tag: NodeBuiltinCall, MainToken: tok, Data: NodeData{LHS: start, RHS: len(p.tree.ExtraData)}})
}

func (p *parser) parseContainerDecl() int {
	kwTok := p.advance() // struct/enum/union/opaque
	p.expect(TokLBrace, "'{' after container keyword")

	var members []int
	for !p.at(TokRBrace) && !p.at(TokEOF) {
		p.skipTrivia()
		if p.at(TokRBrace) {
			break
		}
		before := p.pos
		if n, ok := p.parseDecl(); ok {
			members = append(members, n)
		} else if p.at(TokIdentifier) {
			members = append(members, p.parseContainerField())
		}
		if p.pos == before {
			p.advance()
		}
	}
	p.expect(TokRBrace, "'}' to close container")

	start := p.appendExtra(members...)
	return p.pushNode(Node{Tag: NodeContainerDecl, MainToken: kwTok, Data: NodeData{LHS: start, RHS: len(p.tree.ExtraData)}})
}

func (p *parser) parseContainerField() int {
	nameTok := p.advance()
	p.expect(TokColon, "':' after field name")
	typ := p.parseTypeExpr()

	var def int
	if _, ok := p.eat(TokEqual); ok {
		def = p.parseExpr()
	}
	p.eat(TokComma)
	return p.pushNode(Node{Tag: NodeContainerField, MainToken: nameTok, Data: NodeData{LHS: typ, RHS: def}})
}

// RenderParseError formats a ParseError as a one-line, human-readable
// diagnostic message, suitable for direct use as an LSP Diagnostic.Message.
// Precise line/column positions are derived separately by the caller via
// internal/offsets once the error's token is turned into a location.Span.
func (t *Tree) RenderParseError(e ParseError) string {
	tok := "end of file"
	if e.Token < len(t.Tokens) {
		start, end := t.TokenSource(e.Token)
		if end > start {
			tok = string(t.Source[start:end])
		}
	}
	return fmt.Sprintf("%s (near %q)", e.Message, tok)
}
