package ast

import (
	"strings"

	"plainclass/internal/source"
	"plainclass/internal/token"
)

// Module is one parsed source unit.
type Module struct {
	File   *source.File
	Body   []StmtID
	Tokens []token.Token
}

// Suites returns the nested blocks of a statement.
func (b *Builder) Suites(id StmtID) []Suite {
	st := b.Stmts.Get(id)
	if st == nil {
		return nil
	}
	switch st.Kind {
	case StmtClass:
		c, _ := b.Stmts.Class(id)
		return []Suite{c.Body}
	case StmtFunc:
		f, _ := b.Stmts.Func(id)
		return []Suite{f.Body}
	case StmtCompound:
		c, _ := b.Stmts.Compound(id)
		return c.Suites
	}
	return nil
}

// WalkStmts visits statements depth-first, nested suites included.
// Returning false from fn skips the statement's children.
func (b *Builder) WalkStmts(body []StmtID, fn func(id StmtID, parents []StmtID) bool) {
	var walk func(ids []StmtID, parents []StmtID)
	walk = func(ids []StmtID, parents []StmtID) {
		for _, id := range ids {
			if !fn(id, parents) {
				continue
			}
			suites := b.Suites(id)
			if len(suites) == 0 {
				continue
			}
			next := append(parents[:len(parents):len(parents)], id)
			for _, s := range suites {
				walk(s.Stmts, next)
			}
		}
	}
	walk(body, nil)
}

// WalkExpr visits id and its subexpressions in source order.
// Returning false from fn skips the children of that node.
func (b *Builder) WalkExpr(id ExprID, fn func(ExprID) bool) {
	e := b.Exprs.Get(id)
	if e == nil || !fn(id) {
		return
	}
	switch e.Kind {
	case ExprAttr:
		a, _ := b.Exprs.Attr(id)
		b.WalkExpr(a.Target, fn)
	case ExprCall:
		c, _ := b.Exprs.Call(id)
		b.WalkExpr(c.Callee, fn)
		for _, arg := range c.Args {
			b.WalkExpr(arg, fn)
		}
		for _, kw := range c.Keywords {
			b.WalkExpr(kw.Value, fn)
		}
	case ExprTuple, ExprList, ExprSet, ExprDict:
		s, _ := b.Exprs.Seq(id)
		for _, x := range s.Elts {
			b.WalkExpr(x, fn)
		}
	case ExprUnary:
		u, _ := b.Exprs.Unary(id)
		b.WalkExpr(u.X, fn)
	case ExprBinary:
		bin, _ := b.Exprs.Binary(id)
		b.WalkExpr(bin.Left, fn)
		b.WalkExpr(bin.Right, fn)
	case ExprSubscript:
		s, _ := b.Exprs.Subscript(id)
		b.WalkExpr(s.Target, fn)
		b.WalkExpr(s.Index, fn)
	case ExprStarred:
		s, _ := b.Exprs.Starred(id)
		b.WalkExpr(s.X, fn)
	case ExprGroup:
		g, _ := b.Exprs.Group(id)
		b.WalkExpr(g.X, fn)
	}
}

// FreeNames returns the distinct names an expression reads, in order of appearance.
func (b *Builder) FreeNames(id ExprID) []string {
	seen := make(map[source.StringID]bool)
	var out []string
	add := func(n source.StringID) {
		if n == source.NoStringID || seen[n] {
			return
		}
		seen[n] = true
		out = append(out, b.Text(n))
	}
	b.WalkExpr(id, func(x ExprID) bool {
		if n, ok := b.Exprs.Name(x); ok {
			add(n.Name)
		}
		if o, ok := b.Exprs.Opaque(x); ok {
			for _, n := range o.Names {
				add(n)
			}
		}
		return true
	})
	return out
}

// DottedName renders Name and Attr chains as "a.b.c"; ok is false for anything else.
func (b *Builder) DottedName(id ExprID) (string, bool) {
	id = b.Exprs.Unparen(id)
	if n, ok := b.Exprs.Name(id); ok {
		return b.Text(n.Name), true
	}
	if a, ok := b.Exprs.Attr(id); ok {
		head, ok := b.DottedName(a.Target)
		if !ok {
			return "", false
		}
		return head + "." + b.Text(a.Name), true
	}
	return "", false
}

// IsConstant reports whether the expression is a literal without side effects:
// numbers, non-formatted strings, None/True/False/..., signed numbers and tuples of those.
func (b *Builder) IsConstant(id ExprID) bool {
	id = b.Exprs.Unparen(id)
	e := b.Exprs.Get(id)
	if e == nil {
		return false
	}
	switch e.Kind {
	case ExprConst:
		c, _ := b.Exprs.Const(id)
		return c.Kind != ConstFString
	case ExprUnary:
		u, _ := b.Exprs.Unary(id)
		if u.Op == token.KwNot {
			return false
		}
		c, ok := b.Exprs.Const(b.Exprs.Unparen(u.X))
		return ok && c.Kind == ConstNumber
	case ExprTuple:
		s, _ := b.Exprs.Seq(id)
		for _, x := range s.Elts {
			if !b.IsConstant(x) {
				return false
			}
		}
		return true
	}
	return false
}

// IsMutableDisplay reports list, dict and set displays and comprehensions.
func (b *Builder) IsMutableDisplay(id ExprID) bool {
	e := b.Exprs.Get(b.Exprs.Unparen(id))
	if e == nil {
		return false
	}
	return e.Kind == ExprList || e.Kind == ExprDict || e.Kind == ExprSet
}

// BoundName is the name an import alias binds in the importing scope.
func (b *Builder) BoundName(a Alias) string {
	if a.AsName != source.NoStringID {
		return b.Text(a.AsName)
	}
	if i := strings.IndexByte(a.Name, '.'); i >= 0 {
		return a.Name[:i]
	}
	return a.Name
}
