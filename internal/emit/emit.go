// Package emit turns validated classes into byte-range edits over the original
// text: markers are removed, field() declarations are rewritten and the
// generated members are spliced into each class body.
package emit

import (
	"errors"

	"plainclass/internal/ast"
	"plainclass/internal/diag"
	"plainclass/internal/edit"
	"plainclass/internal/model"
	"plainclass/internal/scan"
	"plainclass/internal/source"
)

// Result is the rewritten unit. Output is normalized text: '\n' line endings, no BOM.
type Result struct {
	Output  []byte
	Changed bool
	// Classes are the qualnames of the rewritten classes in source order.
	Classes []string
	Edits   int
}

type emitter struct {
	b    *ast.Builder
	mod  *ast.Module
	file *source.File
	sr   *scan.Result

	edits edit.Set
	// removed are the original ranges that no longer appear in the output.
	removed []source.Span
	topOf   map[ast.StmtID]ast.StmtID

	// header is the earliest top-level statement holding a class that needs
	// the sentinel or a new FrozenInstanceError import.
	header         ast.StmtID
	needSentinel   bool
	needFrozenLine bool
	addFrozenName  bool
	// moduleAlias is the 'import dataclasses' alias the generated code uses.
	moduleAlias string

	classes []string
}

// Emit rewrites every marked class that passed validation. A class failing
// here is marked on its ClassSpec and left untouched; the returned diagnostic
// is a unit-level failure.
func Emit(b *ast.Builder, mod *ast.Module, sr *scan.Result) (Result, *diag.Diagnostic) {
	e := &emitter{
		b:     b,
		mod:   mod,
		file:  mod.File,
		sr:    sr,
		topOf: topLevel(b, mod),
	}
	for _, c := range sr.Unit.Classes {
		if !c.CarriesFields() || c.Failed() {
			continue
		}
		if base := c.FailedBase(); base != nil {
			c.FailWithBase(base)
			continue
		}
		if !c.Marked {
			continue
		}
		e.class(c)
	}
	if e.edits.Len() == 0 {
		return Result{Output: e.file.Content}, nil
	}
	e.unitEdits()

	out, err := e.edits.Apply(e.file.Content)
	if err != nil {
		code := diag.EmtOverlappingEdits
		if !errors.Is(err, edit.ErrOverlap) {
			code = diag.EmtBadAnchor
		}
		return Result{Output: e.file.Content}, diag.Errorf(code, source.Span{File: e.file.ID}, "cannot apply edits: %v", err)
	}
	if d := reparse(e.file, out); d != nil {
		return Result{Output: e.file.Content}, d
	}
	return Result{
		Output:  out,
		Changed: true,
		Classes: e.classes,
		Edits:   e.edits.Len(),
	}, nil
}

// topLevel maps every statement to the module-level statement containing it.
func topLevel(b *ast.Builder, mod *ast.Module) map[ast.StmtID]ast.StmtID {
	top := make(map[ast.StmtID]ast.StmtID)
	b.WalkStmts(mod.Body, func(id ast.StmtID, parents []ast.StmtID) bool {
		if len(parents) == 0 {
			top[id] = id
		} else {
			top[id] = parents[0]
		}
		return true
	})
	return top
}

// staged collects the edits of one class so a failing class leaves no trace.
type staged struct {
	edits   []edit.Edit
	removed []source.Span
}

func (s *staged) insert(e *emitter, off uint32, text, label string) {
	s.edits = append(s.edits, edit.Edit{Span: source.Span{File: e.file.ID, Start: off, End: off}, NewText: text, Label: label})
}

func (s *staged) replace(sp source.Span, text, label string) {
	s.edits = append(s.edits, edit.Edit{Span: sp, NewText: text, Label: label})
	s.removed = append(s.removed, sp)
}

func (s *staged) delete(sp source.Span, label string) {
	s.replace(sp, "", label)
}

func (e *emitter) commit(s *staged) {
	for _, ed := range s.edits {
		e.edits.Add(ed)
	}
	e.removed = append(e.removed, s.removed...)
}

func (e *emitter) span(start, end uint32) source.Span {
	return source.Span{File: e.file.ID, Start: start, End: end}
}

func (e *emitter) failClass(c *model.ClassSpec, err error) {
	c.Fail(diag.Errorf(diag.EmtMalformedNode, c.Span, "cannot generate members of %s: %v", c.Name, err))
}

// earlier keeps the first top-level statement of the two.
func (e *emitter) earlier(cur, cand ast.StmtID) ast.StmtID {
	if !cur.IsValid() {
		return cand
	}
	if e.b.Stmts.Get(cand).Span.Start < e.b.Stmts.Get(cur).Span.Start {
		return cand
	}
	return cur
}
