package parser

import (
	"slices"

	"plainclass/internal/ast"
	"plainclass/internal/diag"
	"plainclass/internal/lexer"
	"plainclass/internal/source"
	"plainclass/internal/token"
)

type Options struct {
	MaxErrors     uint
	CurrentErrors uint
	Reporter      diag.Reporter
}

// Enough - проверить, достигли ли мы максимального количества ошибок
func (o *Options) Enough() bool {
	if o.MaxErrors == 0 {
		return false
	}
	return o.CurrentErrors >= o.MaxErrors
}

type Result struct {
	Module *ast.Module
	// Errors counts lexical and syntax errors; the tree is unreliable when non-zero.
	Errors uint
}

// Parser - состояние парсера на один файл
type Parser struct {
	toks     []token.Token
	pos      int
	arenas   *ast.Builder
	file     *source.File
	opts     Options
	lastSpan source.Span // span последнего съеденного значимого токена
}

// ParseFile - входная точка для разбора одного файла.
func ParseFile(file *source.File, arenas *ast.Builder, opts Options) Result {
	lx := lexer.New(file, lexer.Options{Reporter: opts.Reporter})
	toks := make([]token.Token, 0, len(file.Content)/4+1)
	for {
		tok := lx.Next()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	opts.CurrentErrors += uint(lx.Errors()) //nolint:gosec // non-negative counter

	p := Parser{
		toks:     toks,
		arenas:   arenas,
		file:     file,
		opts:     opts,
		lastSpan: source.Span{File: file.ID},
	}
	body := p.parseBlock(token.EOF)
	return Result{
		Module: &ast.Module{File: file, Body: body, Tokens: toks},
		Errors: p.opts.CurrentErrors,
	}
}

func (p *Parser) peek() token.Token {
	return p.toks[p.pos]
}

// peekN looks n tokens ahead; past the end it keeps returning EOF.
func (p *Parser) peekN(n int) token.Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *Parser) at(k token.Kind) bool {
	return p.peek().Kind == k
}

func (p *Parser) atOr(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.peek().Kind)
}

// advance - съедает следующий токен и обновляет lastSpan
func (p *Parser) advance() token.Token {
	tok := p.toks[p.pos]
	if tok.Kind != token.EOF {
		p.pos++
	}
	if !tok.IsLayout() && tok.Kind != token.EOF {
		p.lastSpan = tok.Span
	}
	return tok
}

// eat съедает токен нужного вида, если он следующий.
func (p *Parser) eat(k token.Kind) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	return token.Token{}, false
}

// expect - ожидаем конкретный токен. Если нет - репортим и возвращаем (invalid,false).
func (p *Parser) expect(k token.Kind, code diag.Code, msg string) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	sp := p.diagnosticSpan()
	p.report(code, sp, msg)
	return token.Token{Kind: token.Invalid, Span: sp}, false
}

// diagnosticSpan - на EOF и синтетических токенах указываем сразу за последним значимым.
func (p *Parser) diagnosticSpan() source.Span {
	peek := p.peek()
	if peek.Span.Empty() && p.lastSpan.End > 0 {
		return p.lastSpan.Tail()
	}
	return peek.Span
}

// репортует ошибку и передает текущий спан
func (p *Parser) err(code diag.Code, msg string) {
	p.report(code, p.diagnosticSpan(), msg)
}

func (p *Parser) report(code diag.Code, sp source.Span, msg string) {
	if p.opts.Reporter != nil && !p.opts.Enough() {
		p.opts.Reporter.Report(code, diag.SevError, sp, msg, nil, nil)
	}
	p.opts.CurrentErrors++
}

// spanFrom covers start..последний съеденный значимый токен.
func (p *Parser) spanFrom(start source.Span) source.Span {
	if p.lastSpan.End < start.Start {
		return start
	}
	return source.Span{File: start.File, Start: start.Start, End: p.lastSpan.End}
}

// resyncLine пропускает токены до конца логической строки включительно.
func (p *Parser) resyncLine() {
	for !p.atOr(token.Newline, token.EOF) {
		p.advance()
	}
	p.eat(token.Newline)
}
