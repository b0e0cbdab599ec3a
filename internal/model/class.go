package model

import (
	"slices"

	"plainclass/internal/ast"
	"plainclass/internal/diag"
	"plainclass/internal/source"
)

// Scope is what immediately encloses a class definition.
type Scope uint8

const (
	ScopeModule Scope = iota
	ScopeClass
	ScopeFunction
)

// Marker is the decorator that made a class a dataclass.
type Marker struct {
	// Index into the class decorators.
	Index int
	Span  source.Span
	// Call is true for '@dataclass(...)'.
	Call bool
}

// ClassSpec describes one class definition of the unit. Unmarked classes are
// kept too: they may sit between two marked classes in an inheritance chain.
type ClassSpec struct {
	Name string
	// QualName joins enclosing classes and functions the way __qualname__ does.
	QualName string
	// Path reaches the class from the nearest enclosing function or module scope;
	// Home is that scope's qualname prefix ("" for the module).
	Path  string
	Home  string
	Scope Scope
	// LookupScopes are the qualname prefixes searched, innermost first, when a
	// base name is resolved from where the class statement runs.
	LookupScopes []string
	// Index is the position in source order.
	Index int
	Stmt  ast.StmtID
	Span  source.Span

	Marked  bool
	Marker  Marker
	Options Options

	// BaseNames are the base expressions as written.
	BaseNames []string
	// Bases holds the bases defined earlier in the unit, in declaration order.
	Bases []*ClassSpec
	// MRO is the C3 linearization by name, the class itself first.
	MRO []string

	// Members are the names bound directly in the class body.
	Members map[string]Member
	// Own are the fields declared in this body, in declaration order.
	Own      []FieldSpec
	KwOnly   ast.StmtID // '_: KW_ONLY'
	PostInit bool

	// Anchor is the byte offset where generated members are inserted.
	Anchor uint32
	// AnchorAtTop is true when members go before the first body statement.
	AnchorAtTop bool
	// Indent is the body indentation; IndentUnit is one nesting level of it.
	Indent     string
	IndentUnit string

	// Failure is set once a stage rejects the class.
	Failure *diag.Diagnostic

	fields   []FieldSpec
	resolved bool
}

type MemberKind uint8

const (
	MemberFunc MemberKind = iota
	MemberAssign
	MemberAnnotated
	MemberClass
)

type Member struct {
	Kind MemberKind
	Stmt ast.StmtID
	Span source.Span
	// NoneValue is true for 'name = None'.
	NoneValue bool
}

func NewClassSpec(name, qualname string) *ClassSpec {
	return &ClassSpec{
		Name:     name,
		QualName: qualname,
		Path:     name,
		Options:  DefaultOptions(),
		Members:  make(map[string]Member),
	}
}

// Base returns the first dataclass-carrying base, nil for none.
func (c *ClassSpec) Base() *ClassSpec {
	for _, b := range c.Bases {
		if b.CarriesFields() {
			return b
		}
	}
	return nil
}

// CarriesFields reports whether the class has a __dataclass_fields__ at runtime:
// it is marked or inherits from a class that is.
func (c *ClassSpec) CarriesFields() bool {
	if c.Marked {
		return true
	}
	return slices.ContainsFunc(c.Bases, (*ClassSpec).CarriesFields)
}

// Params returns the options visible through __dataclass_params__: the class's own
// for marked classes, the nearest marked ancestor's otherwise.
func (c *ClassSpec) Params() (Options, bool) {
	if c.Marked {
		return c.Options, true
	}
	for _, b := range c.Bases {
		if o, ok := b.Params(); ok {
			return o, true
		}
	}
	return Options{}, false
}

// Defines reports whether the body binds name directly.
func (c *ClassSpec) Defines(name string) bool {
	_, ok := c.Members[name]
	return ok
}

// Fields returns the effective field list; nil until SetFields is called.
func (c *ClassSpec) Fields() []FieldSpec {
	return c.fields
}

// SetFields caches the effective field list. The list is computed once.
func (c *ClassSpec) SetFields(fields []FieldSpec) {
	if c.resolved {
		panic("model: effective fields of " + c.QualName + " computed twice")
	}
	c.fields = fields
	c.resolved = true
}

func (c *ClassSpec) Resolved() bool {
	return c.resolved
}

// Field looks a field up by name in the effective list.
func (c *ClassSpec) Field(name string) (*FieldSpec, bool) {
	for i := range c.fields {
		if c.fields[i].Name == name {
			return &c.fields[i], true
		}
	}
	return nil, false
}

// Fail records the first failure; later ones are ignored.
func (c *ClassSpec) Fail(d *diag.Diagnostic) {
	if c.Failure != nil || d == nil {
		return
	}
	if d.Class == "" {
		d.Class = c.QualName
	}
	c.Failure = d
}

func (c *ClassSpec) Failed() bool {
	return c.Failure != nil
}

// FailedBase returns the first field-carrying base whose transformation failed.
func (c *ClassSpec) FailedBase() *ClassSpec {
	for _, b := range c.Bases {
		if b.Failed() && b.CarriesFields() {
			return b
		}
	}
	return nil
}

// FailWithBase records the failure of base on c, keeping its code.
func (c *ClassSpec) FailWithBase(base *ClassSpec) {
	d := base.Failure.WithClass(c.QualName)
	d.Message = "base class " + base.QualName + " cannot be transformed: " + base.Failure.Message
	c.Fail(&d)
}

// Select filters the effective list.
func (c *ClassSpec) Select(keep func(*FieldSpec) bool) []*FieldSpec {
	var out []*FieldSpec
	for i := range c.fields {
		if keep(&c.fields[i]) {
			out = append(out, &c.fields[i])
		}
	}
	return out
}

// Unit is the model of one source unit.
type Unit struct {
	// Classes in source order, nested ones included.
	Classes []*ClassSpec
	byQual  map[string]*ClassSpec
}

func NewUnit() *Unit {
	return &Unit{byQual: make(map[string]*ClassSpec)}
}

func (u *Unit) Add(c *ClassSpec) {
	c.Index = len(u.Classes)
	u.Classes = append(u.Classes, c)
	u.byQual[c.QualName] = c
}

func (u *Unit) Lookup(qualname string) (*ClassSpec, bool) {
	c, ok := u.byQual[qualname]
	return c, ok
}

// Marked returns the marked classes in source order.
func (u *Unit) Marked() []*ClassSpec {
	var out []*ClassSpec
	for _, c := range u.Classes {
		if c.Marked {
			out = append(out, c)
		}
	}
	return out
}
