package token

import (
	"plainclass/internal/source"
)

// Token represents a single source token with its location and trivia.
type Token struct {
	Kind    Kind
	Span    source.Span
	Text    string
	Leading []Trivia
}

// IsKeyword reports whether the token is a hard keyword.
func (t Token) IsKeyword() bool {
	return t.Kind >= KwFalse && t.Kind <= KwYield
}

// IsName reports whether the token is an identifier.
func (t Token) IsName() bool { return t.Kind == Name }

// IsOpen reports whether the token opens a bracket pair.
func (t Token) IsOpen() bool {
	return t.Kind == LParen || t.Kind == LBracket || t.Kind == LBrace
}

// IsClose reports whether the token closes a bracket pair.
func (t Token) IsClose() bool {
	return t.Kind == RParen || t.Kind == RBracket || t.Kind == RBrace
}

// IsLayout reports whether the token is synthesized by the indentation tracker.
func (t Token) IsLayout() bool {
	return t.Kind == Newline || t.Kind == Indent || t.Kind == Dedent
}

// HasComment reports whether a comment precedes the token.
func (t Token) HasComment() bool {
	for _, tr := range t.Leading {
		if tr.Kind == TriviaComment {
			return true
		}
	}
	return false
}
