package parser

import (
	"strings"

	"plainclass/internal/ast"
	"plainclass/internal/diag"
	"plainclass/internal/lexer"
	"plainclass/internal/token"
)

// parseImport: 'import' dotted ['as' name] (',' dotted ['as' name])*
func (p *Parser) parseImport() ast.StmtID {
	kw := p.advance()
	var names []ast.Alias
	for {
		alias, ok := p.parseAlias(true)
		if !ok {
			p.skipSimpleRest()
			break
		}
		names = append(names, alias)
		if _, ok := p.eat(token.Comma); !ok {
			break
		}
	}
	return p.arenas.Stmts.NewImport(p.spanFrom(kw.Span), names)
}

// parseImportFrom: 'from' ('.'* dotted | '.'+) 'import' ('*' | '(' aliases ')' | aliases)
func (p *Parser) parseImportFrom() ast.StmtID {
	kw := p.advance()
	var data ast.StmtImportFromData
	for p.atOr(token.Dot, token.Ellipsis) {
		if p.advance().Kind == token.Ellipsis {
			data.Level += 3
		} else {
			data.Level++
		}
	}
	if p.at(token.Name) {
		data.Module = p.parseDotted()
	} else if data.Level == 0 {
		p.err(diag.SynExpectIdentifier, "expected module name")
		p.skipSimpleRest()
		return p.arenas.Stmts.NewImportFrom(p.spanFrom(kw.Span), data)
	}
	if _, ok := p.expect(token.KwImport, diag.SynUnexpectedToken, "expected 'import'"); !ok {
		p.skipSimpleRest()
		return p.arenas.Stmts.NewImportFrom(p.spanFrom(kw.Span), data)
	}

	if _, ok := p.eat(token.Star); ok {
		data.Star = true
		return p.arenas.Stmts.NewImportFrom(p.spanFrom(kw.Span), data)
	}
	if _, ok := p.eat(token.LParen); ok {
		data.Parens = true
	}
	for {
		if data.Parens && p.at(token.RParen) {
			break
		}
		alias, ok := p.parseAlias(false)
		if !ok {
			break
		}
		data.Names = append(data.Names, alias)
		if _, ok := p.eat(token.Comma); !ok {
			break
		}
	}
	if data.Parens {
		p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')'")
	}
	if len(data.Names) == 0 {
		p.report(diag.SynExpectIdentifier, p.diagnosticSpan(), "expected imported name")
	}
	return p.arenas.Stmts.NewImportFrom(p.spanFrom(kw.Span), data)
}

func (p *Parser) parseAlias(dotted bool) (ast.Alias, bool) {
	start := p.peek().Span
	if !p.at(token.Name) {
		p.err(diag.SynExpectIdentifier, "expected name to import, got "+describe(p.peek()))
		return ast.Alias{}, false
	}
	var alias ast.Alias
	if dotted {
		alias.Name = p.parseDotted()
	} else {
		alias.Name = lexer.NormalizeIdent(p.advance().Text)
	}
	if _, ok := p.eat(token.KwAs); ok {
		name, ok := p.expect(token.Name, diag.SynExpectIdentifier, "expected name after 'as'")
		if !ok {
			return ast.Alias{}, false
		}
		alias.AsName = p.arenas.Intern(name.Text)
	}
	alias.Span = p.spanFrom(start)
	return alias, true
}

func (p *Parser) parseDotted() string {
	var sb strings.Builder
	sb.WriteString(lexer.NormalizeIdent(p.advance().Text))
	for p.at(token.Dot) && p.peekN(1).Kind == token.Name {
		p.advance()
		sb.WriteByte('.')
		sb.WriteString(lexer.NormalizeIdent(p.advance().Text))
	}
	return sb.String()
}
