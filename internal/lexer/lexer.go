package lexer

import (
	"plainclass/internal/diag"
	"plainclass/internal/source"
	"plainclass/internal/token"
)

// Lexer turns a Python source file into significant tokens with leading trivia
// and synthesized Newline/Indent/Dedent tokens.
type Lexer struct {
	file    *source.File
	cursor  Cursor
	opts    Options
	look    *token.Token   // 1 элементный буфер для токена
	hold    []token.Trivia // накопленные leading trivia
	queue   []token.Token  // синтезированные токены раскладки, ждут выдачи
	indents []uint32       // стек отступов, всегда начинается с 0
	depth   int            // вложенность скобок: внутри переводы строк - trivia
	bol     bool           // начало логической строки
	last    token.Kind     // последний выданный токен
	eof     bool
	errors  int
}

func New(file *source.File, opts Options) *Lexer {
	return &Lexer{
		file:    file,
		cursor:  NewCursor(file),
		opts:    opts,
		indents: []uint32{0},
		bol:     true,
		last:    token.Newline,
	}
}

// Tokenize returns every token of the file, the trailing EOF included.
func Tokenize(file *source.File, opts Options) []token.Token {
	lx := New(file, opts)
	out := make([]token.Token, 0, len(file.Content)/4+1)
	for {
		tok := lx.Next()
		out = append(out, tok)
		if tok.Kind == token.EOF {
			return out
		}
	}
}

// Errors returns the number of lexical errors reported so far.
func (lx *Lexer) Errors() int { return lx.errors }

// Next возвращает следующий **значимый** токен с уже собранным Leading.
// После EOF всегда возвращает EOF.
func (lx *Lexer) Next() token.Token {
	if lx.look != nil {
		tok := *lx.look
		lx.look = nil
		return tok
	}
	tok := lx.next()
	lx.last = tok.Kind
	return tok
}

// Peek возвращает следующий токен, не потребляя его.
func (lx *Lexer) Peek() token.Token {
	if lx.look != nil {
		return *lx.look
	}
	t := lx.Next()
	lx.look = &t
	return t
}

func (lx *Lexer) next() token.Token {
	for {
		if len(lx.queue) > 0 {
			tok := lx.queue[0]
			lx.queue = lx.queue[1:]
			return tok
		}
		if lx.eof {
			return token.Token{Kind: token.EOF, Span: lx.emptySpan()}
		}

		if lx.bol && lx.depth == 0 {
			lx.bol = false
			if lx.scanIndentation() {
				continue
			}
		}

		lx.collectLeadingTrivia()

		if lx.cursor.EOF() {
			lx.finish()
			continue
		}

		// внутри скобок '\n' уже съеден как trivia
		if lx.cursor.Peek() == '\n' {
			start := lx.cursor.Mark()
			lx.cursor.Bump()
			tok := token.Token{Kind: token.Newline, Span: lx.cursor.SpanFrom(start), Text: "\n", Leading: lx.hold}
			lx.hold = nil
			lx.bol = true
			return tok
		}

		tok := lx.scanToken()
		tok.Leading = lx.hold
		lx.hold = nil
		return tok
	}
}

func (lx *Lexer) scanToken() token.Token {
	ch := lx.cursor.Peek()
	switch {
	case isIdentStartByte(ch) || ch >= utf8RuneSelf:
		return lx.scanIdentOrString()
	case isDec(ch), ch == '.' && lx.isNumberAfterDot():
		return lx.scanNumber()
	case ch == '"' || ch == '\'':
		return lx.scanString(lx.cursor.Mark(), "")
	default:
		return lx.scanOperatorOrPunct()
	}
}

// finish ставит в очередь финальный Newline, закрывающие Dedent и EOF.
func (lx *Lexer) finish() {
	lx.eof = true
	sp := lx.emptySpan()
	if lx.depth > 0 {
		lx.errLex(diag.LexUnbalancedBracket, sp, "unexpected end of file inside brackets")
	}
	if lx.last != token.Newline && lx.last != token.Dedent {
		lx.queue = append(lx.queue, token.Token{Kind: token.Newline, Span: sp})
	}
	for len(lx.indents) > 1 {
		lx.indents = lx.indents[:len(lx.indents)-1]
		lx.queue = append(lx.queue, token.Token{Kind: token.Dedent, Span: sp})
	}
	lx.queue = append(lx.queue, token.Token{Kind: token.EOF, Span: sp, Leading: lx.hold})
	lx.hold = nil
}

func (lx *Lexer) emptySpan() source.Span {
	return source.Span{File: lx.file.ID, Start: lx.cursor.Off, End: lx.cursor.Off}
}
