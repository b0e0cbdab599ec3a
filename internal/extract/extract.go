// Package extract builds the effective field list of every marked class.
package extract

import (
	"slices"
	"strings"

	"plainclass/internal/ast"
	"plainclass/internal/diag"
	"plainclass/internal/model"
	"plainclass/internal/scan"
	"plainclass/internal/source"
)

type extractor struct {
	b    *ast.Builder
	file *source.File
	sr   *scan.Result
}

// Extract resolves bases, computes MROs and fills the effective field list of
// every class carrying dataclass fields. Classes are visited in source order,
// so a base is always complete before its subclasses.
func Extract(b *ast.Builder, mod *ast.Module, sr *scan.Result) {
	x := extractor{b: b, file: mod.File, sr: sr}
	for _, c := range sr.Unit.Classes {
		x.class(c)
	}
}

func (x *extractor) class(c *model.ClassSpec) {
	x.resolveBases(c)
	if !c.CarriesFields() {
		return
	}
	if base := c.FailedBase(); base != nil {
		c.FailWithBase(base)
	}
	if c.Marked && !c.Failed() {
		x.ownFields(c)
	}
	if c.Failed() {
		return
	}
	c.SetFields(x.merge(c))
	c.PostInit = x.postInitReachable(c)
}

// resolveBases binds base names to classes defined earlier in the unit and
// computes the MRO. Unknown bases are leaves.
func (x *extractor) resolveBases(c *model.ClassSpec) {
	var lins [][]string
	var order []string
	for _, name := range c.BaseNames {
		if base := x.lookup(c, name); base != nil {
			c.Bases = append(c.Bases, base)
			lins = append(lins, base.MRO)
			order = append(order, base.QualName)
			continue
		}
		if name == "object" {
			continue
		}
		lins = append(lins, []string{name})
		order = append(order, name)
	}
	mro, ok := linearize(c.QualName, lins, order)
	if !ok {
		c.MRO = append([]string{c.QualName}, order...)
		if c.Marked {
			c.Fail(diag.Errorf(diag.CfgInconsistentMRO, c.Span,
				"cannot create a consistent method resolution order for %s", c.Name))
		}
		return
	}
	c.MRO = mro
}

func (x *extractor) lookup(c *model.ClassSpec, name string) *model.ClassSpec {
	if name == "" {
		return nil
	}
	for _, prefix := range c.LookupScopes {
		if spec, ok := x.sr.Unit.Lookup(prefix + name); ok && spec.Index < c.Index {
			return spec
		}
	}
	return nil
}

// merge walks the MRO from the most distant ancestor: redeclared fields keep
// their first position and take the newest definition.
func (x *extractor) merge(c *model.ClassSpec) []model.FieldSpec {
	var out []model.FieldSpec
	index := make(map[string]int)
	add := func(f model.FieldSpec) {
		if i, ok := index[f.Name]; ok {
			out[i] = f
			return
		}
		index[f.Name] = len(out)
		out = append(out, f)
	}
	for i := len(c.MRO) - 1; i >= 1; i-- {
		anc, ok := x.sr.Unit.Lookup(c.MRO[i])
		if !ok || !anc.Marked || !anc.Resolved() {
			continue
		}
		for _, f := range anc.Fields() {
			add(f.Inherit())
		}
	}
	for _, f := range c.Own {
		add(f)
	}
	return out
}

func (x *extractor) postInitReachable(c *model.ClassSpec) bool {
	for _, name := range c.MRO {
		if spec, ok := x.sr.Unit.Lookup(name); ok && spec.Defines("__post_init__") {
			return true
		}
	}
	return false
}

// ownFields reads the annotated declarations of the class body.
func (x *extractor) ownFields(c *model.ClassSpec) {
	cls, _ := x.b.Stmts.Class(c.Stmt)
	kwOnly := false
	index := make(map[string]int)
	for _, id := range cls.Body.Stmts {
		switch x.b.Stmts.Get(id).Kind {
		case ast.StmtAnnAssign:
			f, marker, err := x.field(c, id, kwOnly)
			if err != nil {
				c.Fail(err)
				return
			}
			if marker {
				if c.KwOnly.IsValid() {
					c.Fail(diag.Errorf(diag.CfgDuplicateKwOnly, x.b.Stmts.Get(id).Span,
						"'KW_ONLY' used more than once in %s", c.Name))
					return
				}
				c.KwOnly = id
				kwOnly = true
				continue
			}
			if f == nil {
				continue
			}
			if i, ok := index[f.Name]; ok {
				c.Own[i] = *f
				continue
			}
			index[f.Name] = len(c.Own)
			c.Own = append(c.Own, *f)
		case ast.StmtAssign:
			if err := x.unannotatedField(id); err != nil {
				c.Fail(err)
				return
			}
		case ast.StmtCompound:
			if sp, ok := x.nestedAnnotation(id); ok {
				c.Fail(diag.Errorf(diag.OptNestedField, sp,
					"annotated declarations inside compound statements of %s are not supported", c.Name))
				return
			}
		}
	}
}

// field returns nil for annotations that are not fields; marker is true for '_: KW_ONLY'.
func (x *extractor) field(c *model.ClassSpec, id ast.StmtID, kwOnly bool) (*model.FieldSpec, bool, *diag.Diagnostic) {
	st := x.b.Stmts.Get(id)
	a, _ := x.b.Stmts.AnnAssign(id)
	n, ok := x.b.Exprs.Name(a.Target)
	if !ok {
		// 'self.x: int' и подобное не объявляет поле
		return nil, false, nil
	}
	name := x.b.Text(n.Name)
	annText := x.text(a.Annotation)

	var call *ast.ExprCallData
	if a.Value.IsValid() {
		if cd, ok := x.b.Exprs.Call(a.Value); ok && x.sr.Imports.IsField(x.b, cd.Callee) {
			call = cd
		}
	}

	switch x.sr.Imports.Classify(x.b, a.Annotation, annText) {
	case scan.AnnotationKwOnly:
		return nil, true, nil
	case scan.AnnotationClassVar:
		if call != nil {
			return nil, false, diag.Errorf(diag.CfgClassVarDefault, x.span(a.Value),
				"ClassVar %s cannot be declared with field()", name)
		}
		return nil, false, nil
	case scan.AnnotationInitVar:
		f := x.newField(c, name, annText, id, st.Span, kwOnly)
		f.Kind = model.FieldInitVar
		return x.fill(f, a.Value, call)
	}
	f := x.newField(c, name, annText, id, st.Span, kwOnly)
	return x.fill(f, a.Value, call)
}

func (x *extractor) newField(c *model.ClassSpec, name, ann string, id ast.StmtID, sp source.Span, kwOnly bool) *model.FieldSpec {
	f := model.NewField(name)
	f.Annotation = ann
	f.KwOnly = kwOnly || c.Options.KwOnly
	f.Owner = c
	f.Stmt = id
	f.Span = sp
	return &f
}

func (x *extractor) fill(f *model.FieldSpec, value ast.ExprID, call *ast.ExprCallData) (*model.FieldSpec, bool, *diag.Diagnostic) {
	if call != nil {
		f.FieldCall = x.span(value)
		if err := x.fieldCall(f, call); err != nil {
			return nil, false, err
		}
	} else if value.IsValid() {
		f.Default = model.DefaultLiteral
		f.Value = x.expr(value)
		f.Constant = x.b.IsConstant(value)
		value = x.b.Exprs.Unparen(value)
		if f.Kind == model.FieldRegular && x.b.IsMutableDisplay(value) {
			return nil, false, diag.Errorf(diag.CfgMutableDefault, x.span(value),
				"mutable default %s for field %s is not allowed: use default_factory", displayName(x.b, value), f.Name)
		}
	}
	if f.Kind == model.FieldInitVar && f.Default == model.DefaultFactory {
		return nil, false, diag.Errorf(diag.CfgInitVarFactory, f.FieldCall,
			"InitVar %s cannot have a default factory", f.Name)
	}
	return f, false, nil
}

var fieldKeys = []string{"default", "default_factory", "init", "repr", "hash", "compare", "kw_only", "metadata"}

// fieldCall reads 'field(...)'.
func (x *extractor) fieldCall(f *model.FieldSpec, call *ast.ExprCallData) *diag.Diagnostic {
	if len(call.Args) > 0 {
		return diag.Errorf(diag.OptFieldArgument, x.span(call.Args[0]),
			"field() of %s takes keyword arguments only", f.Name)
	}
	var def, factory ast.ExprID
	for _, kw := range call.Keywords {
		if kw.Name == source.NoStringID {
			return diag.Errorf(diag.OptFieldArgument, kw.Span, "'**' arguments to field() are not supported")
		}
		key := x.b.Text(kw.Name)
		if !slices.Contains(fieldKeys, key) {
			return diag.Errorf(diag.OptFieldArgument, kw.NameSpan, "unsupported field() argument '%s'", key)
		}
		switch key {
		case "default":
			def = kw.Value
		case "default_factory":
			factory = kw.Value
		case "metadata":
			// только для интроспекции, в сгенерированный код не попадает
		case "hash":
			if c, ok := x.b.Exprs.Const(x.b.Exprs.Unparen(kw.Value)); ok && c.Kind == ast.ConstNone {
				f.Hash = model.Unset
				continue
			}
			v, ok := x.boolArg(kw)
			if !ok {
				return diag.Errorf(diag.OptFieldArgument, x.span(kw.Value), "field() argument 'hash' must be None, True or False")
			}
			f.Hash = model.False
			if v {
				f.Hash = model.True
			}
		default:
			v, ok := x.boolArg(kw)
			if !ok {
				return diag.Errorf(diag.OptFieldArgument, x.span(kw.Value), "field() argument '%s' must be True or False", key)
			}
			switch key {
			case "init":
				f.Init = v
			case "repr":
				f.Repr = v
			case "compare":
				f.Compare = v
			case "kw_only":
				f.KwOnly = v
			}
		}
	}
	if def.IsValid() && factory.IsValid() {
		return diag.Errorf(diag.CfgDefaultAndFactory, x.span(factory),
			"cannot specify both default and default_factory for %s", f.Name)
	}
	switch {
	case def.IsValid():
		f.Default = model.DefaultLiteral
		f.Value = x.expr(def)
		f.Constant = x.b.IsConstant(def)
		if f.Kind == model.FieldRegular && x.b.IsMutableDisplay(def) {
			return diag.Errorf(diag.CfgMutableDefault, x.span(def),
				"mutable default %s for field %s is not allowed: use default_factory", displayName(x.b, def), f.Name)
		}
	case factory.IsValid():
		f.Default = model.DefaultFactory
		f.Value = x.expr(factory)
	}
	return nil
}

func (x *extractor) boolArg(kw ast.Keyword) (bool, bool) {
	c, ok := x.b.Exprs.Const(x.b.Exprs.Unparen(kw.Value))
	if !ok {
		return false, false
	}
	switch c.Kind {
	case ast.ConstTrue:
		return true, true
	case ast.ConstFalse:
		return false, true
	}
	return false, false
}

// unannotatedField rejects 'name = field(...)'.
func (x *extractor) unannotatedField(id ast.StmtID) *diag.Diagnostic {
	a, _ := x.b.Stmts.Assign(id)
	call, ok := x.b.Exprs.Call(a.Value)
	if !ok || !x.sr.Imports.IsField(x.b, call.Callee) {
		return nil
	}
	name := x.text(a.Targets[0])
	return diag.Errorf(diag.CfgFieldNoAnnotation, x.b.Stmts.Get(id).Span, "'%s' is a field but has no type annotation", name)
}

func (x *extractor) nestedAnnotation(id ast.StmtID) (source.Span, bool) {
	for _, suite := range x.b.Suites(id) {
		for _, sid := range suite.Stmts {
			if a, ok := x.b.Stmts.AnnAssign(sid); ok {
				if _, isName := x.b.Exprs.Name(a.Target); isName {
					return x.b.Stmts.Get(sid).Span, true
				}
			}
			if x.b.Stmts.Get(sid).Kind == ast.StmtCompound {
				if sp, ok := x.nestedAnnotation(sid); ok {
					return sp, true
				}
			}
		}
	}
	return source.Span{}, false
}

func (x *extractor) span(id ast.ExprID) source.Span {
	return x.b.Exprs.Get(id).Span
}

func (x *extractor) text(id ast.ExprID) string {
	return x.file.Slice(x.span(id))
}

func (x *extractor) expr(id ast.ExprID) model.Expr {
	e := model.Expr{
		Text:      x.text(id),
		Atomic:    x.atomic(id),
		FreeNames: x.b.FreeNames(id),
	}
	if x.b.Exprs.Get(id).Kind == ast.ExprTuple && !e.Atomic {
		// 'x: tuple = 1, 2' нельзя скопировать в сигнатуру как есть
		e.Text = "(" + e.Text + ")"
		e.Atomic = true
	}
	return e
}

// atomic reports whether the expression text can be followed by '()' as is.
func (x *extractor) atomic(id ast.ExprID) bool {
	e := x.b.Exprs.Get(id)
	switch e.Kind {
	case ast.ExprName, ast.ExprAttr, ast.ExprCall, ast.ExprSubscript, ast.ExprGroup,
		ast.ExprList, ast.ExprDict, ast.ExprSet:
		return true
	case ast.ExprConst:
		c, _ := x.b.Exprs.Const(id)
		return c.Parts == 1
	case ast.ExprTuple:
		return strings.HasPrefix(x.text(id), "(")
	}
	return false
}

func displayName(b *ast.Builder, id ast.ExprID) string {
	switch b.Exprs.Get(id).Kind {
	case ast.ExprList:
		return "<class 'list'>"
	case ast.ExprDict:
		return "<class 'dict'>"
	case ast.ExprSet:
		return "<class 'set'>"
	}
	return "value"
}
