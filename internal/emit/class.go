package emit

import (
	"strings"

	"plainclass/internal/ast"
	"plainclass/internal/gen"
	"plainclass/internal/model"
	"plainclass/internal/scan"
	"plainclass/internal/source"
)

// class stages the edits of one marked class and commits them when every
// generated member printed.
func (e *emitter) class(c *model.ClassSpec) {
	cls, _ := e.b.Stmts.Class(c.Stmt)
	var s staged

	frozen := frozenRef{}
	if c.Options.Frozen {
		frozen = e.frozenRef()
	}
	members := gen.Class(c, gen.Context{Sentinel: e.sr.Sentinel, FrozenError: frozen.expr})
	placeholder := ast.NoStmtID
	if len(members) > 0 {
		placeholder = e.placeholderPass(cls)
	}
	text, err := e.membersText(c, members, placeholder)
	if err != nil {
		e.failClass(c, err)
		return
	}

	deco := cls.Decorators[c.Marker.Index]
	s.delete(e.lines(deco.Span.Start, deco.Span.End), "marker")

	for _, id := range cls.Body.Stmts {
		e.fieldCall(&s, id)
	}
	if placeholder.IsValid() {
		st := e.b.Stmts.Get(placeholder)
		s.delete(e.lines(st.Span.Start, st.Span.End), "pass")
	}
	if c.KwOnly.IsValid() {
		siblings := cls.Body.Stmts
		if text != "" {
			// сгенерированные члены не дадут телу опустеть
			siblings = nil
		}
		e.deleteStmt(&s, c.KwOnly, siblings, "KW_ONLY")
	}
	if m, ok := c.Members["__hash__"]; ok && generatesHashFunc(members) {
		// '__hash__ = None' after the anchor would shadow the generated method
		e.deleteStmt(&s, m.Stmt, e.siblings(cls, m.Stmt), "__hash__ = None")
	}
	if text != "" {
		s.insert(e, c.Anchor, text, "members of "+c.Name)
	}

	e.commit(&s)
	e.classes = append(e.classes, c.QualName)
	if usesSentinel(c) && !e.sr.SentinelDefined {
		e.needSentinel = true
		e.header = e.earlier(e.header, e.topOf[c.Stmt])
	}
	if c.Options.Frozen {
		e.useFrozen(frozen, c)
	}
}

// placeholderPass returns the only 'pass' of a body that holds nothing else
// besides a docstring and annotations, when it sits alone on its line.
func (e *emitter) placeholderPass(cls *ast.StmtClassData) ast.StmtID {
	found := ast.NoStmtID
	for i, id := range cls.Body.Stmts {
		st := e.b.Stmts.Get(id)
		switch {
		case st.Kind == ast.StmtAnnAssign:
		case i == 0 && scan.IsDocstring(e.b, id):
		case st.Kind == ast.StmtPass && !found.IsValid():
			found = id
		default:
			return ast.NoStmtID
		}
	}
	if !found.IsValid() {
		return found
	}
	sp := e.b.Stmts.Get(found).Span
	if strings.TrimSpace(string(e.file.Content[e.file.LineStart(sp.Start):e.file.LineEnd(sp.End)])) != "pass" {
		return ast.NoStmtID
	}
	return found
}

func generatesHashFunc(members []gen.Member) bool {
	for _, m := range members {
		if _, ok := m.Stmt.(*gen.FuncDef); ok && m.Name == "__hash__" {
			return true
		}
	}
	return false
}

func usesSentinel(c *model.ClassSpec) bool {
	if !c.Options.Init || c.Defines("__init__") {
		return false
	}
	for _, f := range c.Fields() {
		if f.Init && f.Default == model.DefaultFactory {
			return true
		}
	}
	return false
}

// membersText prints the members as lines inserted at the class anchor, each
// one separated from its neighbours by a blank line.
// A placeholder 'pass' removed by the caller is looked past when deciding on
// the trailing blank line.
func (e *emitter) membersText(c *model.ClassSpec, members []gen.Member, placeholder ast.StmtID) (string, error) {
	if len(members) == 0 {
		return "", nil
	}
	printed := make([]string, 0, len(members))
	for _, m := range members {
		out, err := gen.Print(m.Stmt, c.Indent, c.IndentUnit)
		if err != nil {
			return "", err
		}
		printed = append(printed, out)
	}

	var sb strings.Builder
	content := e.file.Content
	if c.AnchorAtTop {
		for _, p := range printed {
			sb.WriteString(p)
			sb.WriteString("\n")
		}
		return sb.String(), nil
	}
	if int(c.Anchor) == len(content) && len(content) > 0 && content[len(content)-1] != '\n' {
		sb.WriteString("\n")
	}
	for _, p := range printed {
		sb.WriteString("\n")
		sb.WriteString(p)
	}
	next := c.Anchor
	if placeholder.IsValid() {
		if sp := e.b.Stmts.Get(placeholder).Span; e.file.LineStart(sp.Start) == next {
			next = e.file.LineEnd(sp.End)
		}
	}
	if e.nextLineHasCode(next) {
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// nextLineHasCode reports whether the line starting at off holds anything but blanks.
func (e *emitter) nextLineHasCode(off uint32) bool {
	content := e.file.Content
	if int(off) >= len(content) {
		return false
	}
	end := e.file.LineEnd(off)
	return strings.TrimSpace(string(content[off:end])) != ""
}

// fieldCall rewrites 'name: T = field(...)' to 'name: T = <default>' or 'name: T'.
func (e *emitter) fieldCall(s *staged, id ast.StmtID) {
	a, ok := e.b.Stmts.AnnAssign(id)
	if !ok || !a.Value.IsValid() {
		return
	}
	if _, ok := e.b.Exprs.Name(a.Target); !ok {
		return
	}
	call, ok := e.b.Exprs.Call(a.Value)
	if !ok || !e.sr.Imports.IsField(e.b, call.Callee) {
		return
	}
	value := e.b.Exprs.Get(a.Value).Span
	for _, kw := range call.Keywords {
		if kw.Name != source.NoStringID && e.b.Text(kw.Name) == "default" {
			def := e.b.Exprs.Get(kw.Value).Span
			s.delete(e.span(value.Start, def.Start), "field() head")
			s.delete(e.span(def.End, value.End), "field() tail")
			return
		}
	}
	ann := e.b.Exprs.Get(a.Annotation).Span
	s.delete(e.span(ann.End, value.End), "field()")
}

// deleteStmt removes a statement with its line, or replaces it with 'pass'
// when it shares the line or is the only statement of siblings. Nil siblings
// means the suite keeps other content.
func (e *emitter) deleteStmt(s *staged, id ast.StmtID, siblings []ast.StmtID, label string) {
	st := e.b.Stmts.Get(id)
	start := scan.StmtStart(e.b, id)
	if (siblings == nil || len(siblings) > 1) && e.aloneOnLines(start, st.Span.End) {
		s.delete(e.lines(start, st.Span.End), label)
		return
	}
	s.replace(e.span(start, st.Span.End), "pass", label)
}

// siblings returns the suite of the class body that directly holds id.
func (e *emitter) siblings(cls *ast.StmtClassData, id ast.StmtID) []ast.StmtID {
	var found []ast.StmtID
	var search func(body []ast.StmtID) bool
	search = func(body []ast.StmtID) bool {
		for _, sid := range body {
			if sid == id {
				found = body
				return true
			}
			if e.b.Stmts.Get(sid).Kind != ast.StmtCompound {
				continue
			}
			for _, suite := range e.b.Suites(sid) {
				if search(suite.Stmts) {
					return true
				}
			}
		}
		return false
	}
	search(cls.Body.Stmts)
	return found
}
