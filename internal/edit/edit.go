// Package edit applies byte-range edits to a source text.
package edit

import (
	"errors"
	"fmt"
	"sort"

	"plainclass/internal/source"
)

var (
	// ErrOverlap is returned when two edits touch the same bytes.
	ErrOverlap = errors.New("overlapping edits")
	// ErrOutOfRange is returned for spans outside the text.
	ErrOutOfRange = errors.New("edit span out of range")
	// ErrMismatch is returned when the text under an edit is not what the edit expects.
	ErrMismatch = errors.New("existing text does not match expected content")
)

// Edit replaces Span with NewText; an empty span inserts.
type Edit struct {
	Span    source.Span
	NewText string
	// OldText, when set, must equal the replaced bytes.
	OldText string
	// Label names the edit in errors.
	Label string

	order int
}

func (e Edit) String() string {
	if e.Label != "" {
		return fmt.Sprintf("%s %s", e.Label, e.Span)
	}
	return e.Span.String()
}

// Set collects edits in the order they are produced.
type Set struct {
	edits []Edit
}

func (s *Set) Add(e Edit) {
	e.order = len(s.edits)
	s.edits = append(s.edits, e)
}

// Insert adds text at off. Insertions at the same offset keep their order.
func (s *Set) Insert(file source.FileID, off uint32, text, label string) {
	s.Add(Edit{Span: source.Span{File: file, Start: off, End: off}, NewText: text, Label: label})
}

// Replace swaps the bytes of sp for text, checking they still read old when old is set.
func (s *Set) Replace(sp source.Span, old, text, label string) {
	s.Add(Edit{Span: sp, OldText: old, NewText: text, Label: label})
}

// Delete removes the bytes of sp.
func (s *Set) Delete(sp source.Span, old, label string) {
	s.Replace(sp, old, "", label)
}

func (s *Set) Len() int {
	return len(s.edits)
}

// Edits returns the edits sorted by position.
func (s *Set) Edits() []Edit {
	out := append([]Edit(nil), s.edits...)
	sortEdits(out)
	return out
}

// Apply applies the set to content.
func (s *Set) Apply(content []byte) ([]byte, error) {
	return Apply(content, s.edits)
}

// sortEdits orders by start offset; at one offset insertions come first and
// keep their relative order.
func sortEdits(edits []Edit) {
	sort.SliceStable(edits, func(i, j int) bool {
		a, b := edits[i], edits[j]
		if a.Span.Start != b.Span.Start {
			return a.Span.Start < b.Span.Start
		}
		if a.Span.Empty() != b.Span.Empty() {
			return a.Span.Empty()
		}
		return a.order < b.order
	})
}

// Apply returns content with every edit applied. Edits must not overlap; an
// insertion may sit at either end of a replaced range.
func Apply(content []byte, edits []Edit) ([]byte, error) {
	sorted := append([]Edit(nil), edits...)
	sortEdits(sorted)

	for i := range sorted {
		e := sorted[i]
		if e.Span.End < e.Span.Start || int(e.Span.End) > len(content) {
			return nil, fmt.Errorf("%w: %s", ErrOutOfRange, e)
		}
		if e.OldText != "" && string(content[e.Span.Start:e.Span.End]) != e.OldText {
			return nil, fmt.Errorf("%w: %s", ErrMismatch, e)
		}
		for j := i + 1; j < len(sorted) && sorted[j].Span.Start <= e.Span.End; j++ {
			if spansConflict(e, sorted[j]) {
				return nil, fmt.Errorf("%w: %s and %s", ErrOverlap, e, sorted[j])
			}
		}
	}

	out := make([]byte, 0, len(content)+growth(sorted))
	pos := uint32(0)
	for _, e := range sorted {
		out = append(out, content[pos:e.Span.Start]...)
		out = append(out, e.NewText...)
		pos = max(pos, e.Span.End)
	}
	out = append(out, content[pos:]...)
	return out, nil
}

func growth(edits []Edit) int {
	n := 0
	for _, e := range edits {
		if d := len(e.NewText) - int(e.Span.Len()); d > 0 {
			n += d
		}
	}
	return n
}

// spansConflict reports whether two edits touch the same bytes. Spans are
// half-open; an insertion conflicts only with a range strictly around it.
func spansConflict(a, b Edit) bool {
	aStart, aEnd := a.Span.Start, a.Span.End
	bStart, bEnd := b.Span.Start, b.Span.End

	if aStart == aEnd && bStart == bEnd {
		return false
	}
	if aStart == aEnd {
		return bStart < aStart && aStart < bEnd
	}
	if bStart == bEnd {
		return aStart < bStart && bStart < aEnd
	}
	return aStart < bEnd && bStart < aEnd
}
