package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"plainclass/internal/diag"
	"plainclass/internal/source"
)

type palette struct {
	err, warn, info, code, note, gutter, caret *color.Color
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		err:    mk(color.FgRed, color.Bold),
		warn:   mk(color.FgYellow, color.Bold),
		info:   mk(color.FgCyan, color.Bold),
		code:   mk(color.Bold),
		note:   mk(color.FgBlue, color.Bold),
		gutter: mk(color.FgBlue),
		caret:  mk(color.FgRed, color.Bold),
	}
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	}
	return p.info
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes с аналогичным форматом.
// Цвет включается опцией.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	pal := newPalette(opts.Color)
	var sb strings.Builder
	for _, d := range bag.Items() {
		f := fileOf(fs, d.Primary)
		sev := pal.severity(d.Severity)
		if f == nil {
			fmt.Fprintf(&sb, "%s %s: %s\n", sev.Sprint(d.Severity.String()), pal.code.Sprint(d.Code.ID()), d.Message)
			continue
		}
		pos := f.Position(d.Primary.Start)
		fmt.Fprintf(&sb, "%s:%d:%d: %s %s: %s", f.FormatPath(opts.PathMode.format(), fs.BaseDir()), pos.Line, pos.Col,
			sev.Sprint(d.Severity.String()), pal.code.Sprint(d.Code.ID()), d.Message)
		if d.Class != "" {
			fmt.Fprintf(&sb, " (class %s)", d.Class)
		}
		if d.Code.Internal() {
			sb.WriteString(" [internal]")
		}
		sb.WriteString("\n")
		writeSnippet(&sb, f, d.Primary, opts, pal)

		if opts.ShowNotes {
			for _, n := range d.Notes {
				nf := fileOf(fs, n.Span)
				if nf == nil {
					fmt.Fprintf(&sb, "  %s %s\n", pal.note.Sprint("note:"), n.Msg)
					continue
				}
				np := nf.Position(n.Span.Start)
				fmt.Fprintf(&sb, "  %s %s:%d:%d: %s\n", pal.note.Sprint("note:"), nf.FormatPath(opts.PathMode.format(), fs.BaseDir()), np.Line, np.Col, n.Msg)
				writeSnippet(&sb, nf, n.Span, PrettyOpts{Width: opts.Width}, pal)
			}
		}
		if opts.ShowFixes {
			for _, fix := range d.Fixes {
				fmt.Fprintf(&sb, "  %s %s\n", pal.note.Sprint("fix:"), fix.Title)
				if !opts.ShowPreview {
					continue
				}
				for _, edit := range fix.Edits {
					preview, err := buildFixEditPreview(fs, edit)
					if err != nil {
						continue
					}
					for _, line := range preview.before {
						fmt.Fprintf(&sb, "    - %s\n", line)
					}
					for _, line := range preview.after {
						fmt.Fprintf(&sb, "    + %s\n", line)
					}
				}
			}
		}
	}
	_, _ = io.WriteString(w, sb.String())
}

func fileOf(fs *source.FileSet, sp source.Span) *source.File {
	if fs == nil || int(sp.File) >= fs.Len() {
		return nil
	}
	return fs.Get(sp.File)
}

// writeSnippet prints the primary line with Context lines around it and
// underlines the span on the primary line.
func writeSnippet(sb *strings.Builder, f *source.File, sp source.Span, opts PrettyOpts, pal palette) {
	start := f.Position(sp.Start)
	end := f.Position(sp.End)
	before := uint32(max(opts.Context, 0)) //nolint:gosec // non-negative int8
	first := uint32(1)
	if start.Line > before {
		first = start.Line - before
	}
	last := start.Line + before
	width := len(fmt.Sprint(last))

	for ln := first; ln <= last; ln++ {
		text, ok := lineText(f, ln)
		if !ok {
			break
		}
		text = clip(strings.TrimRight(text, "\r"), opts.Width)
		fmt.Fprintf(sb, "  %s %s\n", pal.gutter.Sprintf("%*d |", width, ln), text)
		if ln != start.Line {
			continue
		}
		col := int(start.Col) - 1
		n := 1
		if end.Line == start.Line && end.Col > start.Col {
			n = int(end.Col - start.Col)
		} else if end.Line > start.Line {
			n = max(len(text)-col, 1)
		}
		pad := runewidth.StringWidth(expandTabs(prefix(text, col)))
		marks := "^" + strings.Repeat("~", max(n-1, 0))
		fmt.Fprintf(sb, "  %s %s%s\n", pal.gutter.Sprintf("%*s |", width, ""), strings.Repeat(" ", pad), pal.caret.Sprint(marks))
	}
}

func lineText(f *source.File, ln uint32) (string, bool) {
	if ln == 0 || int(ln) > len(f.LineIdx)+1 {
		return "", false
	}
	if int(ln) == len(f.LineIdx)+1 {
		// последняя строка без '\n' существует только если непуста
		var start uint32
		if len(f.LineIdx) > 0 {
			start = f.LineIdx[len(f.LineIdx)-1] + 1
		}
		if int(start) >= len(f.Content) {
			return "", false
		}
	}
	return f.GetLine(ln), true
}

func prefix(text string, col int) string {
	if col <= 0 {
		return ""
	}
	if col > len(text) {
		return text
	}
	return text[:col]
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}

func clip(s string, width uint8) string {
	if width == 0 || runewidth.StringWidth(s) <= int(width) {
		return s
	}
	return runewidth.Truncate(s, int(width), "...")
}
