package lexer

import (
	"plainclass/internal/diag"
	"plainclass/internal/token"
)

// Поддержка: 0, 1_000, 0b..., 0o..., 0x..., 1.0, 1., .5, 1e-3, 1.0E+10, 3j.
// Неверные формы - репорт в opts.Reporter, токен по возможности завершаем.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()

	if lx.cursor.Peek() == '0' {
		switch lx.cursor.PeekAt(1) {
		case 'b', 'B':
			lx.cursor.Bump()
			lx.cursor.Bump()
			lx.eatDigits(func(b byte) bool { return b == '0' || b == '1' })
			return lx.finishNumber(start)
		case 'o', 'O':
			lx.cursor.Bump()
			lx.cursor.Bump()
			lx.eatDigits(func(b byte) bool { return b >= '0' && b <= '7' })
			return lx.finishNumber(start)
		case 'x', 'X':
			lx.cursor.Bump()
			lx.cursor.Bump()
			lx.eatDigits(isHex)
			return lx.finishNumber(start)
		}
	}

	// целая часть (может отсутствовать для ".5")
	lx.eatDigits(isDec)

	// дробная часть
	if lx.cursor.Peek() == '.' {
		lx.cursor.Bump()
		lx.eatDigits(isDec)
	}

	// экспонента
	if b := lx.cursor.Peek(); b == 'e' || b == 'E' {
		after := lx.cursor.PeekAt(1)
		if isDec(after) || ((after == '+' || after == '-') && isDec(lx.cursor.PeekAt(2))) {
			lx.cursor.Bump()
			if after == '+' || after == '-' {
				lx.cursor.Bump()
			}
			lx.eatDigits(isDec)
		}
	}

	// мнимая часть
	if b := lx.cursor.Peek(); b == 'j' || b == 'J' {
		lx.cursor.Bump()
	}
	return lx.finishNumber(start)
}

func (lx *Lexer) eatDigits(ok func(byte) bool) {
	for {
		b := lx.cursor.Peek()
		if !ok(b) && b != '_' {
			return
		}
		lx.cursor.Bump()
	}
}

// finishNumber ругается на хвост вида "12abc" и съедает его в один токен.
func (lx *Lexer) finishNumber(start Mark) token.Token {
	kind := token.Number
	if isIdentContinueByte(lx.cursor.Peek()) {
		for isIdentContinueByte(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
		lx.errLex(diag.LexBadNumber, lx.cursor.SpanFrom(start), "invalid number literal")
		kind = token.Invalid
	}
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: kind, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}
