package lexer

import (
	"strings"

	"plainclass/internal/diag"
	"plainclass/internal/token"
)

// scanString сканирует литерал, cursor стоит на открывающей кавычке, start - на
// начале префикса. f-строки разбираются с вложенными полями {...}, в которых
// допускаются любые строки, в том числе с теми же кавычками.
func (lx *Lexer) scanString(start Mark, prefix string) token.Token {
	formatted := strings.ContainsAny(prefix, "fFtT")
	raw := strings.ContainsAny(prefix, "rR")

	ok := lx.scanQuoted(formatted, raw)
	sp := lx.cursor.SpanFrom(start)
	text := string(lx.file.Content[sp.Start:sp.End])
	if !ok {
		lx.errLex(diag.LexUnterminatedString, sp, "unterminated string literal")
		return token.Token{Kind: token.Invalid, Span: sp, Text: text}
	}
	return token.Token{Kind: token.String, Span: sp, Text: text}
}

// scanQuoted съедает кавычки и тело строки, включая закрывающие кавычки.
func (lx *Lexer) scanQuoted(formatted, raw bool) bool {
	q := lx.cursor.Peek()
	triple := lx.try3(q, q, q)
	if !triple {
		lx.cursor.Bump()
	}

	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		switch {
		case b == '\\':
			lx.cursor.Bump()
			esc := lx.cursor.Bump()
			// \N{NAME} в обычной f-строке - не поле подстановки
			if formatted && !raw && esc == 'N' && lx.cursor.Peek() == '{' {
				for !lx.cursor.EOF() && lx.cursor.Peek() != '}' && lx.cursor.Peek() != '\n' {
					lx.cursor.Bump()
				}
				lx.cursor.Eat('}')
			}
		case b == q:
			if !triple {
				lx.cursor.Bump()
				return true
			}
			if lx.try3(q, q, q) {
				return true
			}
			lx.cursor.Bump()
		case b == '\n' && !triple:
			return false
		case formatted && b == '{':
			if lx.cursor.PeekAt(1) == '{' {
				lx.cursor.Bump()
				lx.cursor.Bump()
				continue
			}
			lx.cursor.Bump()
			if !lx.scanReplacementField(triple) {
				return false
			}
		default:
			lx.cursor.Bump()
		}
	}
	return false
}

// scanReplacementField съедает выражение поля f-строки до закрывающей '}'.
// Вложенные скобки считаются, чтобы '{width}' в спецификаторе формата и
// словари внутри выражения не закрывали поле раньше времени.
func (lx *Lexer) scanReplacementField(triple bool) bool {
	depth := 0
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		switch b {
		case '(', '[', '{':
			depth++
			lx.cursor.Bump()
		case ')', ']':
			if depth > 0 {
				depth--
			}
			lx.cursor.Bump()
		case '}':
			lx.cursor.Bump()
			if depth == 0 {
				return true
			}
			depth--
		case '\'', '"':
			nested := lx.prefixBefore(lx.cursor.Off)
			if !lx.scanQuoted(strings.ContainsAny(nested, "fFtT"), strings.ContainsAny(nested, "rR")) {
				return false
			}
		case '\n':
			if !triple {
				return false
			}
			lx.cursor.Bump()
		default:
			lx.cursor.Bump()
		}
	}
	return false
}

// prefixBefore возвращает буквенный префикс строки, заканчивающийся на off.
func (lx *Lexer) prefixBefore(off uint32) string {
	i := off
	for i > 0 && off-i < 2 {
		c := lx.file.Content[i-1]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			break
		}
		i--
	}
	p := string(lx.file.Content[i:off])
	if i > 0 && isIdentContinueByte(lx.file.Content[i-1]) {
		return ""
	}
	if !isStringPrefix(p) {
		return ""
	}
	return p
}
