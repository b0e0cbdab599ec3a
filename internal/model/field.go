package model

import (
	"strings"

	"plainclass/internal/ast"
	"plainclass/internal/source"
)

type DefaultKind uint8

const (
	DefaultNone DefaultKind = iota
	DefaultLiteral
	DefaultFactory
)

func (k DefaultKind) String() string {
	switch k {
	case DefaultLiteral:
		return "literal"
	case DefaultFactory:
		return "factory"
	}
	return "none"
}

type Origin uint8

const (
	OriginLocal Origin = iota
	OriginInherited
)

func (o Origin) String() string {
	if o == OriginInherited {
		return "inherited"
	}
	return "local"
}

type FieldKind uint8

const (
	FieldRegular FieldKind = iota
	// FieldInitVar is a constructor-only parameter handed to __post_init__.
	FieldInitVar
)

func (k FieldKind) String() string {
	if k == FieldInitVar {
		return "initvar"
	}
	return "field"
}

// Tristate is the hash switch of field(): None, True or False.
type Tristate uint8

const (
	Unset Tristate = iota
	True
	False
)

func (t Tristate) String() string {
	switch t {
	case True:
		return "True"
	case False:
		return "False"
	}
	return "None"
}

// Expr is a piece of source text taken verbatim from the unit.
type Expr struct {
	Text string
	// Atomic is true when the text can be called or indexed without parentheses.
	Atomic bool
	// FreeNames are the names the expression reads.
	FreeNames []string
}

type FieldSpec struct {
	Name       string
	Annotation string
	Default    DefaultKind
	// Value is the literal default or the factory expression.
	Value Expr
	// Constant marks a literal default free of side effects; it is copied into
	// the constructor signature instead of being referenced by name.
	Constant bool
	KwOnly   bool
	Origin   Origin
	// Owner is the declaring class.
	Owner *ClassSpec
	Kind  FieldKind

	Init    bool
	Repr    bool
	Compare bool
	Hash    Tristate

	// Stmt is the declaration in the owner's body.
	Stmt ast.StmtID
	Span source.Span
	// FieldCall is the span of the field(...) call on the right-hand side, empty otherwise.
	FieldCall source.Span
}

// NewField returns a field with the switches field() defaults to.
func NewField(name string) FieldSpec {
	return FieldSpec{Name: name, Init: true, Repr: true, Compare: true}
}

func (f *FieldSpec) HasDefault() bool {
	return f.Default != DefaultNone
}

// Stored reports whether the constructor assigns the field to the instance.
func (f *FieldSpec) Stored() bool {
	return f.Kind == FieldRegular
}

// InHash follows field(hash=None): fall back to compare.
func (f *FieldSpec) InHash() bool {
	switch f.Hash {
	case True:
		return true
	case False:
		return false
	}
	return f.Compare
}

// Inherit copies the field as seen from a subclass.
func (f FieldSpec) Inherit() FieldSpec {
	f.Origin = OriginInherited
	return f
}

// String renders the field for the inspect listing, e.g.
// "y: int = 0 (local, kw_only, repr=False)".
func (f FieldSpec) String() string {
	var sb strings.Builder
	sb.WriteString(f.Name)
	if f.Annotation != "" {
		sb.WriteString(": " + f.Annotation)
	}
	switch f.Default {
	case DefaultLiteral:
		sb.WriteString(" = " + f.Value.Text)
	case DefaultFactory:
		sb.WriteString(" = <factory " + f.Value.Text + ">")
	}
	notes := []string{f.Origin.String()}
	if f.Origin == OriginInherited && f.Owner != nil {
		notes[0] += " from " + f.Owner.QualName
	}
	if f.Kind == FieldInitVar {
		notes = append(notes, "initvar")
	}
	if f.KwOnly {
		notes = append(notes, "kw_only")
	}
	if !f.Init {
		notes = append(notes, "init=False")
	}
	if !f.Repr {
		notes = append(notes, "repr=False")
	}
	if !f.Compare {
		notes = append(notes, "compare=False")
	}
	if f.Hash != Unset {
		notes = append(notes, "hash="+f.Hash.String())
	}
	sb.WriteString(" (" + strings.Join(notes, ", ") + ")")
	return sb.String()
}
