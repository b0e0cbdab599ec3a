package emit

import (
	"strings"

	"plainclass/internal/ast"
	"plainclass/internal/model"
	"plainclass/internal/scan"
	"plainclass/internal/token"
)

const dataclassesModule = "dataclasses"

// prunable names disappear from the import once nothing reads them.
var prunable = map[string]bool{
	scan.NameDataclass: true,
	scan.NameField:     true,
	scan.NameKwOnly:    true,
}

type frozenKind uint8

const (
	frozenBound frozenKind = iota
	frozenModule
	frozenAddName
	frozenStar
	frozenNewLine
)

// frozenRef is how generated code names FrozenInstanceError.
type frozenRef struct {
	expr  string
	kind  frozenKind
	alias string
}

func (e *emitter) frozenRef() frozenRef {
	im := e.sr.Imports
	if bound, ok := im.Bound(scan.NameFrozen); ok {
		return frozenRef{expr: bound, kind: frozenBound}
	}
	if alias := e.topModuleAlias(); alias != "" {
		return frozenRef{expr: alias + "." + scan.NameFrozen, kind: frozenModule, alias: alias}
	}
	star := false
	for _, id := range im.From {
		from, _ := e.b.Stmts.ImportFrom(id)
		if from.Star {
			star = true
			continue
		}
		return frozenRef{expr: scan.NameFrozen, kind: frozenAddName}
	}
	if star {
		return frozenRef{expr: scan.NameFrozen, kind: frozenStar}
	}
	return frozenRef{expr: scan.NameFrozen, kind: frozenNewLine}
}

func (e *emitter) topModuleAlias() string {
	for _, id := range e.sr.Imports.Plain {
		imp, _ := e.b.Stmts.Import(id)
		for _, a := range imp.Names {
			if a.Name == dataclassesModule {
				return e.b.BoundName(a)
			}
		}
	}
	return ""
}

func (e *emitter) useFrozen(ref frozenRef, c *model.ClassSpec) {
	switch ref.kind {
	case frozenModule:
		e.moduleAlias = ref.alias
	case frozenAddName:
		e.addFrozenName = true
	case frozenNewLine:
		e.needFrozenLine = true
		e.header = e.earlier(e.header, e.topOf[c.Stmt])
	}
}

// unitEdits adds the module-level edits once every class is staged.
func (e *emitter) unitEdits() {
	added := false
	for _, id := range e.sr.Imports.From {
		from, _ := e.b.Stmts.ImportFrom(id)
		if from.Star {
			continue
		}
		e.pruneFrom(id, from, e.addFrozenName && !added)
		added = true
	}
	for _, id := range e.sr.Imports.Plain {
		e.prunePlain(id)
	}
	e.headerLines()
}

func (e *emitter) pruneFrom(id ast.StmtID, from *ast.StmtImportFromData, addFrozen bool) {
	var kept []string
	dropped := false
	for _, a := range from.Names {
		if prunable[a.Name] && e.unused(e.b.BoundName(a)) {
			dropped = true
			continue
		}
		kept = append(kept, e.file.Slice(a.Span))
	}
	if addFrozen {
		kept = append(kept, scan.NameFrozen)
	}
	if !dropped && !addFrozen {
		return
	}
	if len(kept) == 0 {
		e.removeTopStmt(id, "import")
		return
	}
	st := e.b.Stmts.Get(id)
	e.edits.Replace(st.Span, "", "from dataclasses import "+strings.Join(kept, ", "), "import")
}

func (e *emitter) prunePlain(id ast.StmtID) {
	imp, _ := e.b.Stmts.Import(id)
	var kept []string
	dropped := false
	for _, a := range imp.Names {
		bound := e.b.BoundName(a)
		if a.Name == dataclassesModule && bound != e.moduleAlias && e.unused(bound) {
			dropped = true
			continue
		}
		kept = append(kept, e.file.Slice(a.Span))
	}
	if !dropped {
		return
	}
	if len(kept) == 0 {
		e.removeTopStmt(id, "import")
		return
	}
	st := e.b.Stmts.Get(id)
	e.edits.Replace(st.Span, "", "import "+strings.Join(kept, ", "), "import")
}

func (e *emitter) removeTopStmt(id ast.StmtID, label string) {
	st := e.b.Stmts.Get(id)
	if e.aloneOnLines(st.Span.Start, st.Span.End) {
		e.edits.Delete(e.lines(st.Span.Start, st.Span.End), "", label)
		return
	}
	e.edits.Replace(st.Span, "", "pass", label)
}

// unused reports a name that was read before the edits and is not read after them.
func (e *emitter) unused(name string) bool {
	before, after := 0, 0
	for i, tok := range e.mod.Tokens {
		if !tok.IsName() || tok.Text != name {
			continue
		}
		if i > 0 && e.mod.Tokens[i-1].Kind == token.Dot {
			continue
		}
		if e.inDataclassesImport(tok.Span.Start) {
			continue
		}
		before++
		if !e.isRemoved(tok.Span) {
			after++
		}
	}
	return before > 0 && after == 0
}

func (e *emitter) inDataclassesImport(off uint32) bool {
	for _, ids := range [][]ast.StmtID{e.sr.Imports.From, e.sr.Imports.Plain} {
		for _, id := range ids {
			sp := e.b.Stmts.Get(id).Span
			if sp.Start <= off && off < sp.End {
				return true
			}
		}
	}
	return false
}

// headerLines inserts the sentinel and a FrozenInstanceError import after the
// last module-level import preceding the first class that needs them, or right
// before that class's statement when no import precedes it.
func (e *emitter) headerLines() {
	var lines []string
	if e.needFrozenLine {
		lines = append(lines, "from dataclasses import "+scan.NameFrozen)
	}
	if e.needSentinel {
		lines = append(lines, e.sr.Sentinel+" = object()")
	}
	if len(lines) == 0 {
		return
	}
	block := strings.Join(lines, "\n") + "\n"
	limit := e.b.Stmts.Get(e.header).Span.Start
	last := ast.NoStmtID
	for _, id := range e.mod.Body {
		st := e.b.Stmts.Get(id)
		if st.Span.Start >= limit {
			break
		}
		if st.Kind == ast.StmtImport || st.Kind == ast.StmtImportFrom {
			last = id
		}
	}
	if last.IsValid() {
		off := e.file.LineEnd(e.b.Stmts.Get(last).Span.End)
		e.edits.Insert(e.file.ID, off, e.lineInsert(off, block), "header")
		return
	}
	off := e.file.LineStart(scan.StmtStart(e.b, e.header))
	e.edits.Insert(e.file.ID, off, block+"\n\n", "header")
}
