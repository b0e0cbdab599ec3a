package lexer

import (
	"plainclass/internal/diag"
	"plainclass/internal/token"
)

// collectLeadingTrivia собирает подряд идущие trivia перед значимым токеном.
// - ' ', '\t' и '\f' коалесцируются в один TriviaSpace
// - '#...' до '\n' -> TriviaComment ('\n' не включается)
// - '\' + '\n' -> TriviaContinuation
// - внутри скобок '\n' -> TriviaNewline
func (lx *Lexer) collectLeadingTrivia() {
	for !lx.cursor.EOF() {
		start := lx.cursor.Mark()
		b := lx.cursor.Peek()

		switch {
		case isSpace(b):
			for isSpace(lx.cursor.Peek()) {
				lx.cursor.Bump()
			}
			lx.pushTrivia(token.TriviaSpace, start)
		case b == '#':
			lx.skipComment()
			lx.pushTrivia(token.TriviaComment, start)
		case b == '\\':
			if lx.cursor.PeekAt(1) != '\n' {
				lx.cursor.Bump()
				lx.errLex(diag.LexBadContinuation, lx.cursor.SpanFrom(start), "unexpected character after line continuation character")
				continue
			}
			lx.cursor.Bump()
			lx.cursor.Bump()
			lx.pushTrivia(token.TriviaContinuation, start)
		case b == '\n' && lx.depth > 0:
			for lx.cursor.Peek() == '\n' {
				lx.cursor.Bump()
			}
			lx.pushTrivia(token.TriviaNewline, start)
		default:
			// нет больше trivia
			return
		}
	}
}

// scanIndentation меряет отступ очередной непустой строки и ставит в очередь
// Indent/Dedent. Пустые строки и строки из одного комментария - trivia.
// Возвращает true, если в очередь что-то добавлено.
func (lx *Lexer) scanIndentation() bool {
	for {
		start := lx.cursor.Mark()
		var col uint32
	measure:
		for {
			switch lx.cursor.Peek() {
			case ' ':
				col++
			case '\t':
				col = (col/8 + 1) * 8
			case '\f':
				col = 0
			default:
				break measure
			}
			lx.cursor.Bump()
		}
		if lx.cursor.Off > uint32(start) {
			lx.pushTrivia(token.TriviaSpace, start)
		}

		switch b := lx.cursor.Peek(); {
		case lx.cursor.EOF():
			return false
		case b == '\n':
			nl := lx.cursor.Mark()
			lx.cursor.Bump()
			lx.pushTrivia(token.TriviaNewline, nl)
			continue
		case b == '#':
			cm := lx.cursor.Mark()
			lx.skipComment()
			lx.pushTrivia(token.TriviaComment, cm)
			continue
		}
		return lx.applyIndent(col)
	}
}

func (lx *Lexer) applyIndent(col uint32) bool {
	top := lx.indents[len(lx.indents)-1]
	sp := lx.emptySpan()
	switch {
	case col > top:
		lx.indents = append(lx.indents, col)
		lx.queue = append(lx.queue, token.Token{Kind: token.Indent, Span: sp})
		return true
	case col < top:
		for len(lx.indents) > 1 && lx.indents[len(lx.indents)-1] > col {
			lx.indents = lx.indents[:len(lx.indents)-1]
			lx.queue = append(lx.queue, token.Token{Kind: token.Dedent, Span: sp})
		}
		if lx.indents[len(lx.indents)-1] != col {
			lx.errLex(diag.LexBadDedent, sp, "unindent does not match any outer indentation level")
		}
		return true
	}
	return false
}

func (lx *Lexer) skipComment() {
	for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
		lx.cursor.Bump()
	}
}

func (lx *Lexer) pushTrivia(kind token.TriviaKind, start Mark) {
	sp := lx.cursor.SpanFrom(start)
	lx.hold = append(lx.hold, token.Trivia{
		Kind: kind,
		Span: sp,
		Text: string(lx.file.Content[sp.Start:sp.End]),
	})
}
