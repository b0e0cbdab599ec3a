package parser

import (
	"plainclass/internal/ast"
	"plainclass/internal/diag"
	"plainclass/internal/token"
)

// parseBlock разбирает операторы до end (Dedent или EOF), сам end не съедает.
func (p *Parser) parseBlock(end token.Kind) []ast.StmtID {
	var out []ast.StmtID
	for !p.at(end) && !p.at(token.EOF) {
		if p.opts.Enough() {
			// дальше разбирать бессмысленно
			p.pos = len(p.toks) - 1
			break
		}
		before := p.pos
		out = append(out, p.parseStatement()...)
		if p.pos == before {
			p.err(diag.SynUnexpectedToken, "unexpected "+describe(p.peek()))
			p.advance()
		}
	}
	return out
}

func (p *Parser) parseStatement() []ast.StmtID {
	switch tok := p.peek(); tok.Kind {
	case token.Newline:
		p.advance()
		return nil
	case token.Indent:
		p.err(diag.SynUnexpectedToken, "unexpected indent")
		p.advance()
		body := p.parseBlock(token.Dedent)
		p.eat(token.Dedent)
		return body
	case token.Dedent:
		p.err(diag.SynUnexpectedToken, "unexpected dedent")
		p.advance()
		return nil
	case token.At:
		return p.one(p.parseDecorated())
	case token.KwClass:
		return p.one(p.parseClass(nil))
	case token.KwDef:
		return p.one(p.parseFunc(nil))
	case token.KwAsync:
		switch p.peekN(1).Kind {
		case token.KwDef:
			return p.one(p.parseFunc(nil))
		case token.KwFor, token.KwWith:
			return p.one(p.parseCompound())
		}
	case token.KwIf, token.KwWhile, token.KwFor, token.KwTry, token.KwWith:
		return p.one(p.parseCompound())
	case token.Name:
		if (tok.Text == "match" || tok.Text == "case") && p.isSoftCompound() {
			return p.one(p.parseCompound())
		}
	}
	return p.parseSimpleLine()
}

func (p *Parser) one(id ast.StmtID) []ast.StmtID {
	if !id.IsValid() {
		return nil
	}
	return []ast.StmtID{id}
}

// isSoftCompound отличает 'match x:' / 'case P:' от выражений с именем match.
// Признак: логическая строка заканчивается на ':' и на нулевой глубине нет '='.
func (p *Parser) isSoftCompound() bool {
	switch p.peekN(1).Kind {
	case token.Assign, token.Dot, token.Colon, token.Newline, token.AugAssign, token.Comma, token.RParen:
		return false
	}
	last := token.Invalid
	for i := p.pos; i < len(p.toks); i++ {
		k := p.toks[i].Kind
		if k == token.Newline || k == token.EOF {
			break
		}
		if k == token.Assign {
			return false
		}
		last = k
	}
	return last == token.Colon
}

func (p *Parser) parseDecorated() ast.StmtID {
	var decos []ast.Decorator
	for p.at(token.At) {
		at := p.advance()
		x := p.parseNamedExpr()
		decos = append(decos, ast.Decorator{Expr: x, Span: p.spanFrom(at.Span)})
		if _, ok := p.expect(token.Newline, diag.SynBadDecorator, "expected newline after decorator"); !ok {
			p.resyncLine()
		}
	}
	switch {
	case p.at(token.KwClass):
		return p.parseClass(decos)
	case p.at(token.KwDef), p.at(token.KwAsync) && p.peekN(1).Kind == token.KwDef:
		return p.parseFunc(decos)
	}
	p.err(diag.SynBadDecorator, "decorator must precede a class or function definition")
	return ast.NoStmtID
}

func (p *Parser) parseClass(decos []ast.Decorator) ast.StmtID {
	kw := p.advance() // 'class'
	data := ast.StmtClassData{Decorators: decos}

	name, ok := p.expect(token.Name, diag.SynExpectIdentifier, "expected class name")
	if !ok {
		p.resyncLine()
		return ast.NoStmtID
	}
	data.Name = p.arenas.Intern(name.Text)
	data.NameSpan = name.Span

	if p.at(token.LBracket) {
		p.skipBalanced()
	}
	if p.at(token.LParen) {
		call := p.parseArguments()
		data.Bases = call.Args
		data.Keywords = call.Keywords
	}
	data.Body = p.parseSuite()
	return p.arenas.Stmts.NewClass(p.spanFrom(kw.Span), data)
}

func (p *Parser) parseFunc(decos []ast.Decorator) ast.StmtID {
	start := p.peek().Span
	data := ast.StmtFuncData{Decorators: decos}
	if _, ok := p.eat(token.KwAsync); ok {
		data.Async = true
	}
	p.advance() // 'def'

	name, ok := p.expect(token.Name, diag.SynExpectIdentifier, "expected function name")
	if !ok {
		p.resyncLine()
		return ast.NoStmtID
	}
	data.Name = p.arenas.Intern(name.Text)
	data.NameSpan = name.Span

	if p.at(token.LBracket) {
		p.skipBalanced()
	}
	if !p.at(token.LParen) {
		p.err(diag.SynUnexpectedToken, "expected '(' after function name")
		p.resyncLine()
		return ast.NoStmtID
	}
	p.skipBalanced()
	if _, ok := p.eat(token.Arrow); ok {
		p.parseTest()
	}
	data.Body = p.parseSuite()
	return p.arenas.Stmts.NewFunc(p.spanFrom(start), data)
}

// parseCompound разбирает if/while/for/try/with/match/case и их продолжения
// (elif, else, except, finally). Заголовки не интерпретируются.
func (p *Parser) parseCompound() ast.StmtID {
	start := p.peek().Span
	kw := p.peek().Kind
	if kw == token.KwAsync {
		kw = p.peekN(1).Kind
	}
	var suites []ast.Suite
	for {
		p.skipHeader()
		suites = append(suites, p.parseSuite())
		if !p.atOr(token.KwElif, token.KwElse, token.KwExcept, token.KwFinally) {
			break
		}
	}
	return p.arenas.Stmts.NewCompound(p.spanFrom(start), kw, suites)
}

// skipHeader съедает токены заголовка до ':' на нулевой глубине (сам ':' остаётся).
func (p *Parser) skipHeader() {
	p.advance()
	for !p.atOr(token.Colon, token.Newline, token.EOF) {
		if p.peek().IsOpen() {
			p.skipBalanced()
			continue
		}
		if p.at(token.KwLambda) {
			// ':' лямбды не заканчивает заголовок
			p.parseTest()
			continue
		}
		p.advance()
	}
}

func (p *Parser) parseSuite() ast.Suite {
	colon, ok := p.expect(token.Colon, diag.SynExpectColon, "expected ':'")
	suite := ast.Suite{Colon: colon.Span}
	if !ok {
		p.resyncLine()
		return suite
	}
	if !p.at(token.Newline) {
		suite.Inline = true
		suite.Stmts = p.parseSimpleLine()
		return suite
	}
	p.advance()
	if _, ok := p.expect(token.Indent, diag.SynExpectIndent, "expected an indented block"); !ok {
		return suite
	}
	suite.Stmts = p.parseBlock(token.Dedent)
	p.eat(token.Dedent)
	return suite
}

// parseSimpleLine разбирает 'a; b; c' до Newline включительно.
func (p *Parser) parseSimpleLine() []ast.StmtID {
	var out []ast.StmtID
	for {
		if id := p.parseSimple(); id.IsValid() {
			out = append(out, id)
		}
		if _, ok := p.eat(token.Semicolon); !ok || p.atOr(token.Newline, token.EOF) {
			break
		}
	}
	if p.at(token.EOF) {
		return out
	}
	if _, ok := p.expect(token.Newline, diag.SynExpectNewline, "expected end of statement, got "+describe(p.peek())); !ok {
		p.resyncLine()
	}
	return out
}

func (p *Parser) parseSimple() ast.StmtID {
	start := p.peek().Span
	switch tok := p.peek(); tok.Kind {
	case token.KwPass:
		p.advance()
		return p.arenas.Stmts.NewPass(start)
	case token.KwImport:
		return p.parseImport()
	case token.KwFrom:
		return p.parseImportFrom()
	case token.KwReturn, token.KwRaise, token.KwDel, token.KwGlobal, token.KwNonlocal,
		token.KwAssert, token.KwBreak, token.KwContinue:
		p.advance()
		p.skipSimpleRest()
		return p.arenas.Stmts.NewSimple(p.spanFrom(start), tok.Kind)
	case token.Name:
		// 'type X = ...' (soft keyword)
		if tok.Text == "type" && p.peekN(1).Kind == token.Name &&
			(p.peekN(2).Kind == token.Assign || p.peekN(2).Kind == token.LBracket) {
			p.advance()
			p.skipSimpleRest()
			return p.arenas.Stmts.NewSimple(p.spanFrom(start), token.Name)
		}
	}

	first := p.parseStarExprList()
	switch {
	case p.at(token.Colon):
		p.advance()
		ann := p.parseTest()
		value := ast.NoExprID
		if _, ok := p.eat(token.Assign); ok {
			value = p.parseAssignValue()
		}
		return p.arenas.Stmts.NewAnnAssign(p.spanFrom(start), first, ann, value)
	case p.at(token.Assign):
		targets := []ast.ExprID{first}
		var value ast.ExprID
		for {
			p.advance() // '='
			value = p.parseAssignValue()
			if !p.at(token.Assign) {
				break
			}
			targets = append(targets, value)
		}
		return p.arenas.Stmts.NewAssign(p.spanFrom(start), targets, value)
	case p.at(token.AugAssign):
		p.advance()
		p.parseAssignValue()
		return p.arenas.Stmts.NewSimple(p.spanFrom(start), token.Invalid)
	}
	return p.arenas.Stmts.NewExprStmt(p.spanFrom(start), first)
}

func (p *Parser) parseAssignValue() ast.ExprID {
	if p.at(token.KwYield) {
		return p.parseYield()
	}
	return p.parseStarExprList()
}

// skipSimpleRest съедает остаток простого оператора до ';' или конца строки.
func (p *Parser) skipSimpleRest() {
	for !p.atOr(token.Semicolon, token.Newline, token.EOF) {
		if p.peek().IsOpen() {
			p.skipBalanced()
			continue
		}
		p.advance()
	}
}

// skipBalanced съедает скобочную группу целиком; текущий токен - открывающая скобка.
func (p *Parser) skipBalanced() []string {
	var names []string
	open := p.advance()
	want := closerOf(open.Kind)
	for !p.at(token.EOF) {
		tok := p.peek()
		switch {
		case tok.Kind == want:
			p.advance()
			return names
		case tok.IsOpen():
			names = append(names, p.skipBalanced()...)
			continue
		case tok.IsClose():
			p.report(diag.SynUnclosedDelimiter, open.Span, "unclosed '"+open.Text+"'")
			return names
		case tok.Kind == token.Name:
			names = append(names, tok.Text)
		}
		p.advance()
	}
	p.report(diag.SynUnclosedDelimiter, open.Span, "unclosed '"+open.Text+"'")
	return names
}

func closerOf(k token.Kind) token.Kind {
	switch k {
	case token.LParen:
		return token.RParen
	case token.LBracket:
		return token.RBracket
	case token.LBrace:
		return token.RBrace
	}
	return token.Invalid
}

func describe(tok token.Token) string {
	switch tok.Kind {
	case token.EOF:
		return "end of file"
	case token.Newline:
		return "end of line"
	case token.Indent:
		return "indent"
	case token.Dedent:
		return "dedent"
	}
	return "'" + tok.Text + "'"
}
