package lexer

import (
	"plainclass/internal/diag"
	"plainclass/internal/token"
)

// scanOperatorOrPunct жадно сканирует операторы: сначала 3 байта, затем 2, затем 1.
// Скобки меняют depth: внутри них переводы строк перестают быть Newline.
func (lx *Lexer) scanOperatorOrPunct() token.Token {
	start := lx.cursor.Mark()
	kind := lx.matchOperator()
	sp := lx.cursor.SpanFrom(start)
	text := string(lx.file.Content[sp.Start:sp.End])

	switch kind {
	case token.LParen, token.LBracket, token.LBrace:
		lx.depth++
	case token.RParen, token.RBracket, token.RBrace:
		if lx.depth == 0 {
			lx.errLex(diag.LexUnbalancedBracket, sp, "unmatched '"+text+"'")
		} else {
			lx.depth--
		}
	case token.Invalid:
		lx.errLex(diag.LexUnknownChar, sp, "invalid character '"+text+"'")
	}
	return token.Token{Kind: kind, Span: sp, Text: text}
}

func (lx *Lexer) matchOperator() token.Kind {
	switch {
	case lx.try3('*', '*', '='), lx.try3('/', '/', '='), lx.try3('>', '>', '='), lx.try3('<', '<', '='):
		return token.AugAssign
	case lx.try3('.', '.', '.'):
		return token.Ellipsis
	case lx.try2('-', '>'):
		return token.Arrow
	case lx.try2(':', '='):
		return token.Walrus
	case lx.try2('*', '*'):
		return token.DoubleStar
	case lx.try2('/', '/'):
		return token.DoubleSlash
	case lx.try2('<', '<'):
		return token.Shl
	case lx.try2('>', '>'):
		return token.Shr
	case lx.try2('<', '='):
		return token.LtEq
	case lx.try2('>', '='):
		return token.GtEq
	case lx.try2('=', '='):
		return token.EqEq
	case lx.try2('!', '='):
		return token.NotEq
	}
	if b0, b1, ok := lx.cursor.Peek2(); ok && b1 == '=' {
		switch b0 {
		case '+', '-', '*', '/', '%', '&', '|', '^', '@':
			lx.cursor.Bump()
			lx.cursor.Bump()
			return token.AugAssign
		}
	}

	b := lx.cursor.Peek()
	if b >= utf8RuneSelf {
		lx.bumpRune()
		return token.Invalid
	}
	lx.cursor.Bump()
	switch b {
	case '(':
		return token.LParen
	case ')':
		return token.RParen
	case '[':
		return token.LBracket
	case ']':
		return token.RBracket
	case '{':
		return token.LBrace
	case '}':
		return token.RBrace
	case ',':
		return token.Comma
	case ':':
		return token.Colon
	case ';':
		return token.Semicolon
	case '.':
		return token.Dot
	case '@':
		return token.At
	case '=':
		return token.Assign
	case '+':
		return token.Plus
	case '-':
		return token.Minus
	case '*':
		return token.Star
	case '/':
		return token.Slash
	case '%':
		return token.Percent
	case '|':
		return token.Pipe
	case '&':
		return token.Amp
	case '^':
		return token.Caret
	case '~':
		return token.Tilde
	case '<':
		return token.Lt
	case '>':
		return token.Gt
	case '!':
		return token.Bang
	default:
		return token.Invalid
	}
}
