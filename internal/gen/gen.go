package gen

import (
	"plainclass/internal/model"
)

// Context carries the unit-level names the generated code refers to.
type Context struct {
	// Sentinel marks "no argument" for parameters with a default factory.
	Sentinel string
	// FrozenError is the expression naming FrozenInstanceError in the unit.
	FrozenError string
}

// Member is one generated class attribute.
type Member struct {
	Name string
	Stmt Stmt
}

// Class synthesizes the members of a validated class in insertion order.
// Members the body already defines are skipped.
func Class(c *model.ClassSpec, ctx Context) []Member {
	g := generator{c: c, ctx: ctx}
	o := c.Options
	var out []Member
	add := func(name string, s Stmt) {
		out = append(out, Member{Name: name, Stmt: s})
	}
	if o.MatchArgs && !c.Defines("__match_args__") {
		add("__match_args__", g.matchArgs())
	}
	if o.Init && !c.Defines("__init__") {
		add("__init__", g.init())
	}
	if o.Eq && !c.Defines("__eq__") {
		add("__eq__", g.compare("__eq__", "=="))
	}
	if o.Order {
		for _, m := range []struct{ name, op string }{
			{"__lt__", "<"}, {"__le__", "<="}, {"__gt__", ">"}, {"__ge__", ">="},
		} {
			add(m.name, g.compare(m.name, m.op))
		}
	}
	if o.Repr && !c.Defines("__repr__") {
		add("__repr__", g.repr())
	}
	switch c.HashAction() {
	case model.HashAdd:
		add("__hash__", g.hash())
	case model.HashNone:
		if !c.Defines("__hash__") {
			add("__hash__", &Assign{Target: &Name{ID: "__hash__"}, Value: &Name{ID: "None"}})
		}
	}
	if o.Frozen {
		add("__setattr__", g.guard("__setattr__", "cannot assign to field", "value"))
		add("__delattr__", g.guard("__delattr__", "cannot delete field", ""))
	}
	return out
}

type generator struct {
	c   *model.ClassSpec
	ctx Context
}

func self() Expr { return &Name{ID: "self"} }

func selfAttr(name string) Expr {
	return &Attr{X: self(), Name: name}
}

func (g *generator) stored(keep func(*model.FieldSpec) bool) []*model.FieldSpec {
	return g.c.Select(func(f *model.FieldSpec) bool { return f.Stored() && keep(f) })
}

func (g *generator) matchArgs() Stmt {
	var names []Expr
	for _, f := range g.c.Select(func(f *model.FieldSpec) bool { return f.Init && !f.KwOnly }) {
		names = append(names, &Str{Value: f.Name})
	}
	return &Assign{Target: &Name{ID: "__match_args__"}, Value: &Tuple{Elts: names}}
}

func (g *generator) init() Stmt {
	fn := &FuncDef{Name: "__init__", Params: []Param{{Name: "self"}}, Returns: &Name{ID: "None"}}
	var initVars []Expr
	for _, f := range g.c.Select(func(f *model.FieldSpec) bool { return f.Init }) {
		param := Param{Name: f.Name, Annotation: f.Annotation, Default: g.paramDefault(f)}
		if f.KwOnly {
			fn.KwOnly = append(fn.KwOnly, param)
		} else {
			fn.Params = append(fn.Params, param)
		}
		if f.Kind == model.FieldInitVar {
			initVars = append(initVars, &Name{ID: f.Name})
		}
	}
	for _, f := range g.stored(func(*model.FieldSpec) bool { return true }) {
		value := g.initValue(f)
		if value == nil {
			continue
		}
		fn.Body = append(fn.Body, g.store(f.Name, value))
	}
	if g.c.PostInit {
		fn.Body = append(fn.Body, &ExprStmt{X: &Call{Func: selfAttr("__post_init__"), Args: initVars}})
	}
	if len(fn.Body) == 0 {
		fn.Body = []Stmt{&Pass{}}
	}
	return fn
}

// paramDefault names the default in the signature: constants are copied, other
// literals are read from the class attribute that holds them.
func (g *generator) paramDefault(f *model.FieldSpec) Expr {
	switch f.Default {
	case model.DefaultFactory:
		return &Name{ID: g.ctx.Sentinel}
	case model.DefaultLiteral:
		if f.Constant {
			return &Verbatim{Text: f.Value.Text, Atomic: f.Value.Atomic}
		}
		if f.Origin == model.OriginInherited {
			return &Verbatim{Text: f.Owner.Path + "." + f.Name, Atomic: true}
		}
		return &Name{ID: f.Name}
	}
	return nil
}

// initValue is nil for init=False fields without a factory: they keep the class attribute.
func (g *generator) initValue(f *model.FieldSpec) Expr {
	factory := func() Expr {
		return &Call{Func: &Verbatim{Text: f.Value.Text, Atomic: f.Value.Atomic}}
	}
	switch {
	case f.Init && f.Default == model.DefaultFactory:
		return &IfExp{
			Body: factory(),
			Test: &Compare{Left: &Name{ID: f.Name}, Op: "is", Right: &Name{ID: g.ctx.Sentinel}},
			Else: &Name{ID: f.Name},
		}
	case f.Init:
		return &Name{ID: f.Name}
	case f.Default == model.DefaultFactory:
		return factory()
	}
	return nil
}

func (g *generator) store(name string, value Expr) Stmt {
	if g.c.Options.Frozen {
		return &ExprStmt{X: &Call{
			Func: &Attr{X: &Name{ID: "object"}, Name: "__setattr__"},
			Args: []Expr{self(), &Str{Value: name}, value},
		}}
	}
	return &Assign{Target: selfAttr(name), Value: value}
}

func fieldTuple(of Expr, fields []*model.FieldSpec) *Tuple {
	t := &Tuple{}
	for _, f := range fields {
		t.Elts = append(t.Elts, &Attr{X: of, Name: f.Name})
	}
	return t
}

func (g *generator) compare(name, op string) Stmt {
	fields := g.stored(func(f *model.FieldSpec) bool { return f.Compare })
	other := &Name{ID: "other"}
	return &FuncDef{
		Name:   name,
		Params: []Param{{Name: "self"}, {Name: "other"}},
		Body: []Stmt{
			&If{
				Cond: &Compare{
					Left:  &Attr{X: other, Name: "__class__"},
					Op:    "is",
					Right: selfAttr("__class__"),
				},
				Body: []Stmt{&Return{Value: &Compare{
					Left:  fieldTuple(self(), fields),
					Op:    op,
					Right: fieldTuple(other, fields),
				}}},
			},
			&Return{Value: &Name{ID: "NotImplemented"}},
		},
	}
}

func (g *generator) repr() Stmt {
	fields := g.stored(func(f *model.FieldSpec) bool { return f.Repr })
	var body Expr = &Str{Value: "()"}
	if len(fields) > 0 {
		fs := &FString{}
		for i, f := range fields {
			lit := f.Name + "="
			if i == 0 {
				lit = "(" + lit
			} else {
				lit = ", " + lit
			}
			fs.Parts = append(fs.Parts, FPart{Lit: lit}, FPart{X: selfAttr(f.Name), Repr: true})
		}
		fs.Parts = append(fs.Parts, FPart{Lit: ")"})
		body = fs
	}
	qualname := &Attr{X: selfAttr("__class__"), Name: "__qualname__"}
	return &FuncDef{
		Name:   "__repr__",
		Params: []Param{{Name: "self"}},
		Body:   []Stmt{&Return{Value: &Concat{Left: qualname, Right: body}}},
	}
}

func (g *generator) hash() Stmt {
	fields := g.stored((*model.FieldSpec).InHash)
	return &FuncDef{
		Name:   "__hash__",
		Params: []Param{{Name: "self"}},
		Body:   []Stmt{&Return{Value: &Call{Func: &Name{ID: "hash"}, Args: []Expr{fieldTuple(self(), fields)}}}},
	}
}

// guard raises for the class itself and for any field name, delegating the rest
// to the next class in the MRO.
func (g *generator) guard(name, message, value string) Stmt {
	names := &Tuple{}
	for _, f := range g.stored(func(*model.FieldSpec) bool { return true }) {
		names.Elts = append(names.Elts, &Str{Value: f.Name})
	}
	params := []Param{{Name: "self"}, {Name: "name"}}
	args := []Expr{&Name{ID: "name"}}
	if value != "" {
		params = append(params, Param{Name: value})
		args = append(args, &Name{ID: value})
	}
	class := &Name{ID: "__class__"}
	cond := &Or{Values: []Expr{
		&Compare{Left: &Call{Func: &Name{ID: "type"}, Args: []Expr{self()}}, Op: "is", Right: class},
		&Compare{Left: &Name{ID: "name"}, Op: "in", Right: names},
	}}
	raise := &Raise{Value: &Call{
		Func: &Verbatim{Text: g.ctx.FrozenError, Atomic: true},
		Args: []Expr{&FString{Parts: []FPart{{Lit: message + " "}, {X: &Name{ID: "name"}, Repr: true}}}},
	}}
	super := &Call{Func: &Name{ID: "super"}, Args: []Expr{class, self()}}
	return &FuncDef{
		Name:   name,
		Params: params,
		Body: []Stmt{
			&If{Cond: cond, Body: []Stmt{raise}},
			&ExprStmt{X: &Call{Func: &Attr{X: super, Name: name}, Args: args}},
		},
	}
}
