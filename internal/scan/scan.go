package scan

import (
	"fmt"
	"strings"

	"plainclass/internal/ast"
	"plainclass/internal/diag"
	"plainclass/internal/model"
	"plainclass/internal/source"
)

// SentinelBase is the preferred name of the "no argument given" marker used by factory defaults.
const SentinelBase = "_MISSING"

// Result is the scanner output for one unit.
type Result struct {
	Imports *Imports
	Unit    *model.Unit
	// Sentinel is the name factory defaults compare against.
	Sentinel string
	// SentinelDefined is true when the unit already binds Sentinel = object() at top level.
	SentinelDefined bool
}

type scanner struct {
	b    *ast.Builder
	mod  *ast.Module
	file *source.File
	res  *Result
}

// Scan locates every class of the unit, recognises the marked ones and reads
// their options. Class-level problems are recorded on the ClassSpec.
func Scan(b *ast.Builder, mod *ast.Module) *Result {
	res := &Result{Imports: newImports(), Unit: model.NewUnit()}
	b.WalkStmts(mod.Body, func(id ast.StmtID, parents []ast.StmtID) bool {
		res.Imports.collect(b, id, len(parents) == 0)
		return true
	})

	s := scanner{b: b, mod: mod, file: mod.File, res: res}
	b.WalkStmts(mod.Body, func(id ast.StmtID, parents []ast.StmtID) bool {
		if cls, ok := b.Stmts.Class(id); ok {
			s.class(id, cls, parents)
		}
		return true
	})
	res.Sentinel, res.SentinelDefined = chooseSentinel(b, mod, firstMarked(res.Unit))
	return res
}

func (s *scanner) class(id ast.StmtID, cls *ast.StmtClassData, parents []ast.StmtID) {
	name := s.b.Text(cls.Name)
	qual, path, home, scope, lookups := s.naming(name, parents)

	spec := model.NewClassSpec(name, qual)
	spec.Path = path
	spec.Home = home
	spec.Scope = scope
	spec.LookupScopes = lookups
	spec.Stmt = id
	spec.Span = s.b.Stmts.Get(id).Span
	for _, base := range cls.Bases {
		dotted, ok := s.b.DottedName(base)
		if !ok {
			dotted = s.file.Slice(s.b.Exprs.Get(base).Span)
		}
		spec.BaseNames = append(spec.BaseNames, dotted)
	}
	s.members(spec, cls.Body.Stmts)
	spec.PostInit = spec.Defines("__post_init__")

	for i, d := range cls.Decorators {
		call, ok := s.isMarker(d.Expr)
		if !ok {
			continue
		}
		if spec.Marked {
			spec.Fail(diag.Errorf(diag.CfgDuplicateMarker, d.Span, "class %s has more than one dataclass decorator", name))
			continue
		}
		spec.Marked = true
		spec.Marker = model.Marker{Index: i, Span: d.Span, Call: call}
		if call {
			s.options(spec, d.Expr)
		}
	}

	if spec.Marked {
		if cls.Body.Inline {
			spec.Fail(diag.Errorf(diag.OptInlineBody, cls.Body.Colon,
				"dataclass %s must have an indented body", name))
		} else {
			s.layout(spec, id, cls)
		}
	}
	s.res.Unit.Add(spec)
}

// naming derives __qualname__, the path from the nearest function or module
// scope, that scope's prefix, the enclosing scope kind and the lookup prefixes for base names.
func (s *scanner) naming(name string, parents []ast.StmtID) (qual, path, home string, scope model.Scope, lookups []string) {
	var parts []string
	pathStart := 0
	var funcPrefixes []string
	scope = model.ScopeModule
	for _, pid := range parents {
		if c, ok := s.b.Stmts.Class(pid); ok {
			parts = append(parts, s.b.Text(c.Name))
			scope = model.ScopeClass
			continue
		}
		if f, ok := s.b.Stmts.Func(pid); ok {
			parts = append(parts, s.b.Text(f.Name), "<locals>")
			pathStart = len(parts)
			scope = model.ScopeFunction
			funcPrefixes = append(funcPrefixes, strings.Join(parts, ".")+".")
		}
	}
	immediate := ""
	if len(parts) > 0 {
		immediate = strings.Join(parts, ".") + "."
	}
	lookups = append(lookups, immediate)
	for i := len(funcPrefixes) - 1; i >= 0; i-- {
		if funcPrefixes[i] != immediate {
			lookups = append(lookups, funcPrefixes[i])
		}
	}
	if immediate != "" {
		lookups = append(lookups, "")
	}

	qual = strings.Join(append(parts[:len(parts):len(parts)], name), ".")
	path = strings.Join(append(parts[pathStart:len(parts):len(parts)], name), ".")
	if pathStart > 0 {
		home = strings.Join(parts[:pathStart], ".") + "."
	}
	return qual, path, home, scope, lookups
}

// members records names bound directly in the class body, compound suites included.
func (s *scanner) members(spec *model.ClassSpec, body []ast.StmtID) {
	for _, id := range body {
		st := s.b.Stmts.Get(id)
		switch st.Kind {
		case ast.StmtFunc:
			f, _ := s.b.Stmts.Func(id)
			spec.Members[s.b.Text(f.Name)] = model.Member{Kind: model.MemberFunc, Stmt: id, Span: st.Span}
		case ast.StmtClass:
			c, _ := s.b.Stmts.Class(id)
			spec.Members[s.b.Text(c.Name)] = model.Member{Kind: model.MemberClass, Stmt: id, Span: st.Span}
		case ast.StmtAssign:
			a, _ := s.b.Stmts.Assign(id)
			none := false
			if c, ok := s.b.Exprs.Const(s.b.Exprs.Unparen(a.Value)); ok && c.Kind == ast.ConstNone {
				none = true
			}
			for _, target := range a.Targets {
				for _, n := range s.targetNames(target) {
					spec.Members[n] = model.Member{Kind: model.MemberAssign, Stmt: id, Span: st.Span, NoneValue: none}
				}
			}
		case ast.StmtAnnAssign:
			a, _ := s.b.Stmts.AnnAssign(id)
			if !a.Value.IsValid() {
				continue
			}
			if n, ok := s.b.Exprs.Name(a.Target); ok {
				none := false
				if c, ok := s.b.Exprs.Const(s.b.Exprs.Unparen(a.Value)); ok && c.Kind == ast.ConstNone {
					none = true
				}
				spec.Members[s.b.Text(n.Name)] = model.Member{Kind: model.MemberAnnotated, Stmt: id, Span: st.Span, NoneValue: none}
			}
		case ast.StmtCompound:
			for _, suite := range s.b.Suites(id) {
				s.members(spec, suite.Stmts)
			}
		}
	}
}

func (s *scanner) targetNames(target ast.ExprID) []string {
	target = s.b.Exprs.Unparen(target)
	if n, ok := s.b.Exprs.Name(target); ok {
		return []string{s.b.Text(n.Name)}
	}
	var out []string
	if seq, ok := s.b.Exprs.Seq(target); ok {
		for _, e := range seq.Elts {
			out = append(out, s.targetNames(e)...)
		}
	}
	if st, ok := s.b.Exprs.Starred(target); ok {
		out = append(out, s.targetNames(st.X)...)
	}
	return out
}

func (s *scanner) isMarker(x ast.ExprID) (call, ok bool) {
	if c, isCall := s.b.Exprs.Call(x); isCall {
		x = c.Callee
		call = true
	}
	dotted, ok := s.b.DottedName(x)
	return call, ok && s.res.Imports.refersTo(dotted, NameDataclass)
}

// stmtStart is where a statement begins, decorators included.
func (s *scanner) stmtStart(id ast.StmtID) uint32 {
	return StmtStart(s.b, id)
}

// StmtStart returns the first byte of a statement, decorators included.
func StmtStart(b *ast.Builder, id ast.StmtID) uint32 {
	start := b.Stmts.Get(id).Span.Start
	var decos []ast.Decorator
	if c, ok := b.Stmts.Class(id); ok {
		decos = c.Decorators
	} else if f, ok := b.Stmts.Func(id); ok {
		decos = f.Decorators
	}
	if len(decos) > 0 && decos[0].Span.Start < start {
		start = decos[0].Span.Start
	}
	return start
}

// layout finds the body indentation and the insertion anchor.
func (s *scanner) layout(spec *model.ClassSpec, id ast.StmtID, cls *ast.StmtClassData) {
	body := cls.Body.Stmts
	if len(body) == 0 {
		spec.Fail(diag.Errorf(diag.EmtBadAnchor, spec.Span, "class %s has an empty body", spec.Name))
		return
	}
	content := s.file.Content
	firstStart := s.stmtStart(body[0])
	spec.Indent = string(content[s.file.LineStart(firstStart):firstStart])
	classStart := s.stmtStart(id)
	classIndent := string(content[s.file.LineStart(classStart):classStart])
	spec.IndentUnit = spec.Indent
	if strings.HasPrefix(spec.Indent, classIndent) && len(spec.Indent) > len(classIndent) {
		spec.IndentUnit = spec.Indent[len(classIndent):]
	}
	if strings.TrimLeft(spec.Indent, " \t") != "" {
		spec.Fail(diag.Errorf(diag.EmtBadAnchor, spec.Span, "cannot determine the body indentation of %s", spec.Name))
		return
	}

	last := ast.NoStmtID
	for _, sid := range body {
		if s.b.Stmts.Get(sid).Kind == ast.StmtAnnAssign {
			last = sid
		}
	}
	if !last.IsValid() && IsDocstring(s.b, body[0]) {
		last = body[0]
	}
	if last.IsValid() {
		spec.Anchor = s.file.LineEnd(s.b.Stmts.Get(last).Span.End)
		return
	}
	spec.Anchor = s.file.LineStart(firstStart)
	spec.AnchorAtTop = true
}

// IsDocstring reports whether the statement is a bare string literal.
func IsDocstring(b *ast.Builder, id ast.StmtID) bool {
	st, ok := b.Stmts.ExprStmt(id)
	if !ok {
		return false
	}
	c, ok := b.Exprs.Const(st.X)
	return ok && (c.Kind == ast.ConstString || c.Kind == ast.ConstBytes)
}

func firstMarked(u *model.Unit) uint32 {
	for _, c := range u.Classes {
		if c.Marked {
			return c.Span.Start
		}
	}
	return ^uint32(0)
}

// chooseSentinel reuses a top-level '<name> = object()' bound before the first
// marked class, or picks a name the unit never mentions.
func chooseSentinel(b *ast.Builder, mod *ast.Module, before uint32) (string, bool) {
	for _, id := range mod.Body {
		if b.Stmts.Get(id).Span.End > before {
			break
		}
		a, ok := b.Stmts.Assign(id)
		if !ok || len(a.Targets) != 1 {
			continue
		}
		n, ok := b.Exprs.Name(a.Targets[0])
		if !ok {
			continue
		}
		name := b.Text(n.Name)
		if name != SentinelBase && !strings.HasPrefix(name, SentinelBase+"_") {
			continue
		}
		call, ok := b.Exprs.Call(a.Value)
		if !ok || len(call.Args) != 0 || len(call.Keywords) != 0 {
			continue
		}
		if callee, ok := b.DottedName(call.Callee); ok && callee == "object" {
			return name, true
		}
	}

	used := make(map[string]bool)
	for _, tok := range mod.Tokens {
		if tok.IsName() {
			used[tok.Text] = true
		}
	}
	if !used[SentinelBase] {
		return SentinelBase, false
	}
	for n := 1; ; n++ {
		name := fmt.Sprintf("%s_%d", SentinelBase, n)
		if !used[name] {
			return name, false
		}
	}
}
