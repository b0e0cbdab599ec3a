package ast

import (
	"plainclass/internal/source"
	"plainclass/internal/token"
)

type StmtKind uint8

const (
	StmtClass StmtKind = iota
	StmtFunc
	StmtAnnAssign
	StmtAssign
	StmtImport
	StmtImportFrom
	StmtExpr
	StmtPass
	// StmtCompound is if/for/while/try/with/match; only its suites are kept.
	StmtCompound
	// StmtSimple is any other one-line statement (return, raise, del, augmented assignment, ...).
	StmtSimple
)

func (k StmtKind) String() string {
	switch k {
	case StmtClass:
		return "Class"
	case StmtFunc:
		return "Func"
	case StmtAnnAssign:
		return "AnnAssign"
	case StmtAssign:
		return "Assign"
	case StmtImport:
		return "Import"
	case StmtImportFrom:
		return "ImportFrom"
	case StmtExpr:
		return "Expr"
	case StmtPass:
		return "Pass"
	case StmtCompound:
		return "Compound"
	case StmtSimple:
		return "Simple"
	}
	return "Stmt(?)"
}

// Stmt spans run from the first token to the end of the last token, the line break excluded.
type Stmt struct {
	Kind    StmtKind
	Span    source.Span
	Payload PayloadID
}

// Decorator is one '@expr' line; Span starts at '@'.
type Decorator struct {
	Expr ExprID
	Span source.Span
}

// Suite is an indented block or a same-line simple statement list.
type Suite struct {
	Stmts []StmtID
	// Inline is true for 'class C: pass' style suites on the header line.
	Inline bool
	// Colon is the span of the ':' ending the header.
	Colon source.Span
}

type StmtClassData struct {
	Name       source.StringID
	NameSpan   source.Span
	Decorators []Decorator
	Bases      []ExprID
	Keywords   []Keyword
	Body       Suite
}

type StmtFuncData struct {
	Name       source.StringID
	NameSpan   source.Span
	Decorators []Decorator
	Async      bool
	Body       Suite
}

type StmtAnnAssignData struct {
	Target     ExprID
	Annotation ExprID
	Value      ExprID
}

type StmtAssignData struct {
	Targets []ExprID
	Value   ExprID
}

// Alias is one imported name: 'a.b as c'.
type Alias struct {
	Name   string          // dotted as written, normalized
	AsName source.StringID // NoStringID without 'as'
	Span   source.Span
}

type StmtImportData struct {
	Names []Alias
}

type StmtImportFromData struct {
	Module string // без ведущих точек
	Level  int    // количество ведущих точек
	Names  []Alias
	Star   bool
	Parens bool
}

type StmtExprData struct {
	X ExprID
}

type StmtCompoundData struct {
	Keyword token.Kind
	Suites  []Suite
}

type StmtSimpleData struct {
	Keyword token.Kind // Invalid for augmented assignment
}
