package parser

import (
	"strings"

	"plainclass/internal/ast"
	"plainclass/internal/diag"
	"plainclass/internal/source"
	"plainclass/internal/token"
)

// parseStarExprList разбирает 'a, *b, c' (кортеж без скобок) или одно выражение.
func (p *Parser) parseStarExprList() ast.ExprID {
	start := p.peek().Span
	first := p.parseStarOrNamed()
	if !p.at(token.Comma) {
		return first
	}
	elts := []ast.ExprID{first}
	for p.at(token.Comma) {
		p.advance()
		if !p.startsExpr() {
			break
		}
		elts = append(elts, p.parseStarOrNamed())
	}
	return p.arenas.Exprs.NewSeq(ast.ExprTuple, p.spanFrom(start), elts, false)
}

func (p *Parser) parseStarOrNamed() ast.ExprID {
	if p.atOr(token.Star, token.DoubleStar) {
		star := p.advance()
		x := p.parseBinary(precBitOr)
		return p.arenas.Exprs.NewStarred(p.spanFrom(star.Span), x, star.Kind == token.DoubleStar)
	}
	return p.parseNamedExpr()
}

// parseNamedExpr: test [':=' test]
func (p *Parser) parseNamedExpr() ast.ExprID {
	start := p.peek().Span
	x := p.parseTest()
	if !p.at(token.Walrus) {
		return x
	}
	p.advance()
	value := p.parseTest()
	return p.opaque(ast.OpaqueWalrus, start, x, value)
}

// parseTest: lambda | or_test ['if' or_test 'else' test]
func (p *Parser) parseTest() ast.ExprID {
	if p.at(token.KwLambda) {
		return p.parseLambda()
	}
	start := p.peek().Span
	x := p.parseBinary(precOr)
	if !p.at(token.KwIf) {
		return x
	}
	p.advance()
	cond := p.parseBinary(precOr)
	if _, ok := p.expect(token.KwElse, diag.SynUnexpectedToken, "expected 'else' in conditional expression"); !ok {
		return p.opaque(ast.OpaqueIfExp, start, x, cond)
	}
	orElse := p.parseTest()
	return p.opaque(ast.OpaqueIfExp, start, x, cond, orElse)
}

func (p *Parser) parseLambda() ast.ExprID {
	kw := p.advance()
	params := make(map[string]bool)
	var parts []ast.ExprID
	for !p.atOr(token.Colon, token.Newline, token.EOF) {
		switch {
		case p.at(token.Name):
			params[p.advance().Text] = true
		case p.at(token.Assign):
			p.advance()
			parts = append(parts, p.parseTest())
		default:
			p.advance() // ',', '*', '**', '/'
		}
	}
	if _, ok := p.expect(token.Colon, diag.SynExpectColon, "expected ':' in lambda"); !ok {
		return p.opaque(ast.OpaqueLambda, kw.Span, parts...)
	}
	body := p.parseTest()

	names := p.namesOf(parts...)
	for _, n := range p.arenas.FreeNames(body) {
		if !params[n] {
			names = append(names, p.arenas.Intern(n))
		}
	}
	return p.arenas.Exprs.NewOpaque(p.spanFrom(kw.Span), ast.OpaqueLambda, names)
}

func (p *Parser) parseYield() ast.ExprID {
	kw := p.advance()
	var parts []ast.ExprID
	if _, ok := p.eat(token.KwFrom); ok {
		parts = append(parts, p.parseTest())
	} else if p.startsExpr() {
		parts = append(parts, p.parseStarExprList())
	}
	return p.opaque(ast.OpaqueYield, kw.Span, parts...)
}

// opaque строит Opaque, сохраняя имена из разобранных частей.
func (p *Parser) opaque(what ast.OpaqueKind, start source.Span, parts ...ast.ExprID) ast.ExprID {
	return p.arenas.Exprs.NewOpaque(p.spanFrom(start), what, p.namesOf(parts...))
}

func (p *Parser) namesOf(parts ...ast.ExprID) []source.StringID {
	var names []source.StringID
	for _, part := range parts {
		for _, n := range p.arenas.FreeNames(part) {
			names = append(names, p.arenas.Intern(n))
		}
	}
	return names
}

func (p *Parser) internAll(raw []string) []source.StringID {
	out := make([]source.StringID, 0, len(raw))
	for _, n := range raw {
		if token.IsKeywordText(n) {
			continue
		}
		out = append(out, p.arenas.Intern(n))
	}
	return out
}

// Уровни приоритета бинарных операторов, от слабых к сильным.
const (
	precNone = iota
	precOr
	precAnd
	precNot
	precCompare
	precBitOr
	precBitXor
	precBitAnd
	precShift
	precArith
	precTerm
)

// binaryOp возвращает текст оператора, приоритет и число токенов.
func (p *Parser) binaryOp() (string, int, int) {
	tok := p.peek()
	switch tok.Kind {
	case token.KwOr:
		return "or", precOr, 1
	case token.KwAnd:
		return "and", precAnd, 1
	case token.Lt, token.Gt, token.EqEq, token.GtEq, token.LtEq, token.NotEq, token.KwIn:
		return tok.Text, precCompare, 1
	case token.KwIs:
		if p.peekN(1).Kind == token.KwNot {
			return "is not", precCompare, 2
		}
		return "is", precCompare, 1
	case token.KwNot:
		if p.peekN(1).Kind == token.KwIn {
			return "not in", precCompare, 2
		}
	case token.Pipe:
		return "|", precBitOr, 1
	case token.Caret:
		return "^", precBitXor, 1
	case token.Amp:
		return "&", precBitAnd, 1
	case token.Shl, token.Shr:
		return tok.Text, precShift, 1
	case token.Plus, token.Minus:
		return tok.Text, precArith, 1
	case token.Star, token.Slash, token.DoubleSlash, token.Percent, token.At:
		return tok.Text, precTerm, 1
	}
	return "", precNone, 0
}

// parseBinary - precedence climbing; все уровни левоассоциативны.
func (p *Parser) parseBinary(minPrec int) ast.ExprID {
	start := p.peek().Span
	var left ast.ExprID
	if p.at(token.KwNot) && minPrec <= precNot {
		p.advance()
		x := p.parseBinary(precNot)
		left = p.arenas.Exprs.NewUnary(p.spanFrom(start), token.KwNot, x)
	} else {
		left = p.parseFactor()
	}
	for {
		op, prec, n := p.binaryOp()
		if prec == precNone || prec < minPrec {
			return left
		}
		for range n {
			p.advance()
		}
		right := p.parseBinary(prec + 1)
		left = p.arenas.Exprs.NewBinary(p.spanFrom(start), op, left, right)
	}
}

// parseFactor: ('+'|'-'|'~') factor | power
func (p *Parser) parseFactor() ast.ExprID {
	if p.atOr(token.Plus, token.Minus, token.Tilde) {
		op := p.advance()
		x := p.parseFactor()
		return p.arenas.Exprs.NewUnary(p.spanFrom(op.Span), op.Kind, x)
	}
	start := p.peek().Span
	var base ast.ExprID
	if p.at(token.KwAwait) {
		p.advance()
		x := p.parsePrimary()
		base = p.opaque(ast.OpaqueAwait, start, x)
	} else {
		base = p.parsePrimary()
	}
	if _, ok := p.eat(token.DoubleStar); ok {
		exp := p.parseFactor()
		return p.arenas.Exprs.NewBinary(p.spanFrom(start), "**", base, exp)
	}
	return base
}

// parsePrimary: atom trailer*
func (p *Parser) parsePrimary() ast.ExprID {
	start := p.peek().Span
	x := p.parseAtom()
	for {
		switch {
		case p.at(token.Dot):
			p.advance()
			name, ok := p.expect(token.Name, diag.SynExpectIdentifier, "expected attribute name")
			if !ok {
				return x
			}
			x = p.arenas.Exprs.NewAttr(p.spanFrom(start), x, p.arenas.Intern(name.Text), name.Span)
		case p.at(token.LParen):
			call := p.parseArguments()
			call.Callee = x
			x = p.arenas.Exprs.NewCall(p.spanFrom(start), call)
		case p.at(token.LBracket):
			p.advance()
			index := p.parseSubscriptList()
			p.expect(token.RBracket, diag.SynUnclosedDelimiter, "expected ']'")
			x = p.arenas.Exprs.NewSubscript(p.spanFrom(start), x, index)
		default:
			return x
		}
	}
}

// parseArguments разбирает '(...)' вызова или списка баз класса.
func (p *Parser) parseArguments() ast.ExprCallData {
	open := p.advance()
	var call ast.ExprCallData
	for !p.atOr(token.RParen, token.EOF) {
		start := p.peek().Span
		switch {
		case p.at(token.DoubleStar):
			p.advance()
			v := p.parseTest()
			call.Keywords = append(call.Keywords, ast.Keyword{Value: v, Span: p.spanFrom(start)})
		case p.at(token.Name) && p.peekN(1).Kind == token.Assign:
			name := p.advance()
			p.advance() // '='
			v := p.parseTest()
			call.Keywords = append(call.Keywords, ast.Keyword{
				Name: p.arenas.Intern(name.Text), NameSpan: name.Span, Value: v, Span: p.spanFrom(start),
			})
		default:
			arg := p.parseStarOrNamed()
			if p.atOr(token.KwFor, token.KwAsync) {
				names := p.skipComprehension(token.RParen)
				arg = p.arenas.Exprs.NewOpaque(p.spanFrom(start), ast.OpaqueGenerator, append(p.namesOf(arg), p.internAll(names)...))
			}
			call.Args = append(call.Args, arg)
		}
		if _, ok := p.eat(token.Comma); !ok {
			break
		}
	}
	p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')'")
	call.ArgsSpan = p.spanFrom(open.Span)
	return call
}

func (p *Parser) parseSubscriptList() ast.ExprID {
	start := p.peek().Span
	first := p.parseSubscriptItem()
	if !p.at(token.Comma) {
		return first
	}
	elts := []ast.ExprID{first}
	for p.at(token.Comma) {
		p.advance()
		if p.at(token.RBracket) {
			break
		}
		elts = append(elts, p.parseSubscriptItem())
	}
	return p.arenas.Exprs.NewSeq(ast.ExprTuple, p.spanFrom(start), elts, false)
}

// parseSubscriptItem: выражение или срез 'a:b:c' (срез - Opaque).
func (p *Parser) parseSubscriptItem() ast.ExprID {
	start := p.peek().Span
	var parts []ast.ExprID
	if !p.at(token.Colon) {
		x := p.parseStarOrNamed()
		if !p.at(token.Colon) {
			return x
		}
		parts = append(parts, x)
	}
	for p.at(token.Colon) {
		p.advance()
		if !p.atOr(token.Colon, token.Comma, token.RBracket) {
			parts = append(parts, p.parseTest())
		}
	}
	if len(parts) == 0 {
		return p.arenas.Exprs.NewOpaque(p.spanFrom(start), ast.OpaqueSlice, nil)
	}
	return p.opaque(ast.OpaqueSlice, start, parts...)
}

// skipComprehension съедает 'for ... in ... if ...' до закрывающей скобки (не включая).
func (p *Parser) skipComprehension(closer token.Kind) []string {
	var names []string
	for !p.atOr(closer, token.EOF) {
		tok := p.peek()
		if tok.IsOpen() {
			names = append(names, p.skipBalanced()...)
			continue
		}
		if tok.IsClose() {
			return names
		}
		// атрибуты после '.' не являются свободными именами
		if tok.Kind == token.Name && (p.pos == 0 || p.toks[p.pos-1].Kind != token.Dot) {
			names = append(names, tok.Text)
		}
		p.advance()
	}
	return names
}

// comprehensionClauses keeps the names of the for/if clauses as an Opaque element.
func (p *Parser) comprehensionClauses(closer token.Kind) ast.ExprID {
	start := p.peek().Span
	names := p.skipComprehension(closer)
	return p.arenas.Exprs.NewOpaque(p.spanFrom(start), ast.OpaqueGenerator, p.internAll(names))
}

func (p *Parser) startsExpr() bool {
	switch p.peek().Kind {
	case token.Name, token.Number, token.String, token.KwNone, token.KwTrue, token.KwFalse,
		token.Ellipsis, token.LParen, token.LBracket, token.LBrace, token.Minus, token.Plus,
		token.Tilde, token.KwNot, token.KwLambda, token.KwAwait, token.Star, token.DoubleStar:
		return true
	}
	return false
}

func (p *Parser) parseAtom() ast.ExprID {
	tok := p.peek()
	switch tok.Kind {
	case token.Name:
		p.advance()
		return p.arenas.Exprs.NewName(tok.Span, p.arenas.Intern(tok.Text))
	case token.Number:
		p.advance()
		return p.arenas.Exprs.NewConst(tok.Span, ast.ConstNumber, 1)
	case token.String:
		return p.parseStrings()
	case token.KwNone:
		p.advance()
		return p.arenas.Exprs.NewConst(tok.Span, ast.ConstNone, 1)
	case token.KwTrue:
		p.advance()
		return p.arenas.Exprs.NewConst(tok.Span, ast.ConstTrue, 1)
	case token.KwFalse:
		p.advance()
		return p.arenas.Exprs.NewConst(tok.Span, ast.ConstFalse, 1)
	case token.Ellipsis:
		p.advance()
		return p.arenas.Exprs.NewConst(tok.Span, ast.ConstEllipsis, 1)
	case token.LParen:
		return p.parseParen()
	case token.LBracket:
		return p.parseListDisplay()
	case token.LBrace:
		return p.parseBraceDisplay()
	}
	p.err(diag.SynExpectExpression, "expected expression, got "+describe(tok))
	sp := p.diagnosticSpan()
	if !tok.IsLayout() && tok.Kind != token.EOF && !tok.IsClose() {
		p.advance()
	}
	return p.arenas.Exprs.NewOpaque(sp, ast.OpaqueIfExp, nil)
}

// parseStrings склеивает соседние строковые литералы в одну константу.
func (p *Parser) parseStrings() ast.ExprID {
	start := p.peek().Span
	kind := ast.ConstString
	parts := 0
	for p.at(token.String) {
		tok := p.advance()
		parts++
		q := strings.IndexAny(tok.Text, `"'`)
		if q < 0 {
			continue
		}
		prefix := strings.ToLower(tok.Text[:q])
		switch {
		case strings.ContainsAny(prefix, "ft"):
			kind = ast.ConstFString
		case strings.Contains(prefix, "b") && kind != ast.ConstFString:
			kind = ast.ConstBytes
		}
	}
	return p.arenas.Exprs.NewConst(p.spanFrom(start), kind, parts)
}

func (p *Parser) parseParen() ast.ExprID {
	open := p.advance()
	if _, ok := p.eat(token.RParen); ok {
		return p.arenas.Exprs.NewSeq(ast.ExprTuple, p.spanFrom(open.Span), nil, false)
	}
	if p.at(token.KwYield) {
		y := p.parseYield()
		p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')'")
		return p.arenas.Exprs.NewGroup(p.spanFrom(open.Span), y)
	}
	first := p.parseStarOrNamed()
	if p.atOr(token.KwFor, token.KwAsync) {
		names := p.skipComprehension(token.RParen)
		p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')'")
		return p.arenas.Exprs.NewOpaque(p.spanFrom(open.Span), ast.OpaqueGenerator, append(p.namesOf(first), p.internAll(names)...))
	}
	if !p.at(token.Comma) {
		p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')'")
		return p.arenas.Exprs.NewGroup(p.spanFrom(open.Span), first)
	}
	elts := []ast.ExprID{first}
	for p.at(token.Comma) {
		p.advance()
		if p.at(token.RParen) {
			break
		}
		elts = append(elts, p.parseStarOrNamed())
	}
	p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')'")
	return p.arenas.Exprs.NewSeq(ast.ExprTuple, p.spanFrom(open.Span), elts, false)
}

func (p *Parser) parseListDisplay() ast.ExprID {
	open := p.advance()
	var elts []ast.ExprID
	comp := false
	for !p.atOr(token.RBracket, token.EOF) {
		elts = append(elts, p.parseStarOrNamed())
		if p.atOr(token.KwFor, token.KwAsync) {
			elts = append(elts, p.comprehensionClauses(token.RBracket))
			comp = true
			break
		}
		if _, ok := p.eat(token.Comma); !ok {
			break
		}
	}
	p.expect(token.RBracket, diag.SynUnclosedDelimiter, "expected ']'")
	return p.arenas.Exprs.NewSeq(ast.ExprList, p.spanFrom(open.Span), elts, comp)
}

// parseBraceDisplay различает dict и set по первому элементу.
func (p *Parser) parseBraceDisplay() ast.ExprID {
	open := p.advance()
	if _, ok := p.eat(token.RBrace); ok {
		return p.arenas.Exprs.NewSeq(ast.ExprDict, p.spanFrom(open.Span), nil, false)
	}
	kind := ast.ExprSet
	var elts []ast.ExprID
	comp := false
	for !p.atOr(token.RBrace, token.EOF) {
		if p.at(token.DoubleStar) {
			kind = ast.ExprDict
			elts = append(elts, p.parseStarOrNamed())
		} else {
			x := p.parseStarOrNamed()
			elts = append(elts, x)
			if _, ok := p.eat(token.Colon); ok {
				kind = ast.ExprDict
				elts = append(elts, p.parseTest())
			}
		}
		if p.atOr(token.KwFor, token.KwAsync) {
			elts = append(elts, p.comprehensionClauses(token.RBrace))
			comp = true
			break
		}
		if _, ok := p.eat(token.Comma); !ok {
			break
		}
	}
	p.expect(token.RBrace, diag.SynUnclosedDelimiter, "expected '}'")
	return p.arenas.Exprs.NewSeq(kind, p.spanFrom(open.Span), elts, comp)
}
