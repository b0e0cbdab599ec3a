package emit

import (
	"strings"

	"plainclass/internal/source"
)

// lines covers the full lines of [start, end), the final line break included.
func (e *emitter) lines(start, end uint32) source.Span {
	return e.span(e.file.LineStart(start), e.file.LineEnd(end))
}

// aloneOnLines reports whether only blanks precede start on its line and only
// blanks or a comment follow end on its line.
func (e *emitter) aloneOnLines(start, end uint32) bool {
	content := e.file.Content
	before := string(content[e.file.LineStart(start):start])
	if strings.TrimLeft(before, " \t\f") != "" {
		return false
	}
	after := strings.TrimLeft(string(content[end:e.file.LineEnd(end)]), " \t\f")
	return after == "" || after == "\n" || strings.HasPrefix(after, "#")
}

// lineInsert is text inserted at a line start as whole lines.
func (e *emitter) lineInsert(off uint32, text string) string {
	content := e.file.Content
	if int(off) == len(content) && len(content) > 0 && content[len(content)-1] != '\n' {
		return "\n" + text
	}
	return text
}

func (e *emitter) isRemoved(sp source.Span) bool {
	for _, r := range e.removed {
		if r.Start <= sp.Start && sp.End <= r.End && !r.Empty() {
			return true
		}
	}
	return false
}
