// Package token defines lexical token kinds and trivia for Python source units.
// Invariants:
//   - Token.Text is the exact source text covered by Token.Span.
//   - Newline, Indent and Dedent are synthesized by the lexer; Indent/Dedent
//     carry empty spans at the first byte of the logical line.
//   - Soft keywords (match, case, type, _) are lexed as Name.
//   - Comments, blank lines, backslash continuations and newlines inside
//     brackets are Trivia and never appear in the main token stream.
package token
