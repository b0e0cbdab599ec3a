package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"plainclass/internal/source"
	"plainclass/internal/token"
)

// TokenOutput is one token of the tokens command in JSON form.
type TokenOutput struct {
	Kind string      `json:"kind"`
	Text string      `json:"text,omitempty"`
	Span source.Span `json:"span"`
	// Line and Col are 1-based; zero when no FileSet was given.
	Line    uint32   `json:"line,omitempty"`
	Col     uint32   `json:"col,omitempty"`
	Leading []string `json:"leading,omitempty"`
	// Comments keeps the text of leading comments.
	Comments []string `json:"comments,omitempty"`
}

// FormatTokensPretty prints one token per line. Layout tokens are indented by
// the block depth they leave behind, so the INDENT/DEDENT structure is visible.
func FormatTokensPretty(w io.Writer, tokens []token.Token, fs *source.FileSet) error {
	var sb strings.Builder
	depth := 0
	for i, tok := range tokens {
		if tok.Kind == token.Dedent && depth > 0 {
			depth--
		}
		start, end := fs.Resolve(tok.Span)
		fmt.Fprintf(&sb, "%4d %4d:%-3d %s%-10s", i+1, start.Line, start.Col, strings.Repeat("  ", depth), tok.Kind.String())
		if tok.Text != "" && !tok.IsLayout() {
			fmt.Fprintf(&sb, " %q", tok.Text)
		}
		if end.Line != start.Line {
			fmt.Fprintf(&sb, " ..%d:%d", end.Line, end.Col)
		}
		if trivia := leadingSummary(tok.Leading); trivia != "" {
			sb.WriteString("  [" + trivia + "]")
		}
		sb.WriteByte('\n')
		if tok.Kind == token.Indent {
			depth++
		}
		if tok.Kind == token.EOF {
			break
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// leadingSummary collapses runs of the same trivia kind: "Space, Comment, Newline x2".
func leadingSummary(trivia []token.Trivia) string {
	var parts []string
	for i := 0; i < len(trivia); {
		j := i
		for j < len(trivia) && trivia[j].Kind == trivia[i].Kind {
			j++
		}
		part := trivia[i].Kind.String()
		if j-i > 1 {
			part += fmt.Sprintf(" x%d", j-i)
		}
		parts = append(parts, part)
		i = j
	}
	return strings.Join(parts, ", ")
}

// FormatTokensJSON writes the tokens as a JSON array. fs may be nil.
func FormatTokensJSON(w io.Writer, tokens []token.Token, fs *source.FileSet) error {
	out := make([]TokenOutput, 0, len(tokens))
	for _, tok := range tokens {
		item := TokenOutput{Kind: tok.Kind.String(), Text: tok.Text, Span: tok.Span}
		if fs != nil {
			pos, _ := fs.Resolve(tok.Span)
			item.Line, item.Col = pos.Line, pos.Col
		}
		for _, tr := range tok.Leading {
			item.Leading = append(item.Leading, tr.Kind.String())
			if tr.Kind == token.TriviaComment {
				item.Comments = append(item.Comments, tr.Text)
			}
		}
		out = append(out, item)
		if tok.Kind == token.EOF {
			break
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
