package ast

import (
	"plainclass/internal/lexer"
	"plainclass/internal/source"
)

type Hints struct{ Stmts, Exprs uint }

// Builder owns every arena of one parsed unit.
type Builder struct {
	Stmts   *Stmts
	Exprs   *Exprs
	Strings *source.Interner
}

func NewBuilder(hints Hints, strings *source.Interner) *Builder {
	if hints.Stmts == 0 {
		hints.Stmts = 1 << 7
	}
	if hints.Exprs == 0 {
		hints.Exprs = 1 << 8
	}
	if strings == nil {
		strings = source.NewInterner()
	}
	return &Builder{
		Stmts:   NewStmts(hints.Stmts),
		Exprs:   NewExprs(hints.Exprs),
		Strings: strings,
	}
}

// Intern stores an identifier in its NFKC form, the way Python compares names.
func (b *Builder) Intern(name string) source.StringID {
	return b.Strings.Intern(lexer.NormalizeIdent(name))
}

// Text returns the interned identifier, "" for NoStringID.
func (b *Builder) Text(id source.StringID) string {
	s, _ := b.Strings.Lookup(id)
	return s
}
