package token

import "plainclass/internal/source"

type TriviaKind uint8

const (
	TriviaSpace TriviaKind = iota
	// TriviaNewline covers blank lines and line breaks inside brackets.
	TriviaNewline
	TriviaComment
	// TriviaContinuation is a backslash followed by a line break.
	TriviaContinuation
)

func (k TriviaKind) String() string {
	switch k {
	case TriviaSpace:
		return "Space"
	case TriviaNewline:
		return "Newline"
	case TriviaComment:
		return "Comment"
	case TriviaContinuation:
		return "Continuation"
	}
	return "TriviaKind(?)"
}

type Trivia struct {
	Kind TriviaKind
	Span source.Span
	Text string
}
