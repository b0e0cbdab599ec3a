package ast

import (
	"plainclass/internal/source"
	"plainclass/internal/token"
)

// Stmts manages allocation of statements.
type Stmts struct {
	Arena       *Arena[Stmt]
	Classes     *Arena[StmtClassData]
	Funcs       *Arena[StmtFuncData]
	AnnAssigns  *Arena[StmtAnnAssignData]
	Assigns     *Arena[StmtAssignData]
	Imports     *Arena[StmtImportData]
	ImportFroms *Arena[StmtImportFromData]
	ExprStmts   *Arena[StmtExprData]
	Compounds   *Arena[StmtCompoundData]
	Simples     *Arena[StmtSimpleData]
}

func NewStmts(capHint uint) *Stmts {
	if capHint == 0 {
		capHint = 1 << 7
	}
	small := capHint/4 + 1
	return &Stmts{
		Arena:       NewArena[Stmt](capHint),
		Classes:     NewArena[StmtClassData](small),
		Funcs:       NewArena[StmtFuncData](small),
		AnnAssigns:  NewArena[StmtAnnAssignData](small),
		Assigns:     NewArena[StmtAssignData](small),
		Imports:     NewArena[StmtImportData](small),
		ImportFroms: NewArena[StmtImportFromData](small),
		ExprStmts:   NewArena[StmtExprData](small),
		Compounds:   NewArena[StmtCompoundData](small),
		Simples:     NewArena[StmtSimpleData](small),
	}
}

func (s *Stmts) new(kind StmtKind, span source.Span, payload uint32) StmtID {
	return StmtID(s.Arena.Allocate(Stmt{
		Kind:    kind,
		Span:    span,
		Payload: PayloadID(payload),
	}))
}

func (s *Stmts) Get(id StmtID) *Stmt {
	return s.Arena.Get(uint32(id))
}

func (s *Stmts) payload(id StmtID, kind StmtKind) (uint32, bool) {
	st := s.Get(id)
	if st == nil || st.Kind != kind {
		return 0, false
	}
	return uint32(st.Payload), true
}

func (s *Stmts) NewClass(span source.Span, data StmtClassData) StmtID {
	return s.new(StmtClass, span, s.Classes.Allocate(data))
}

func (s *Stmts) Class(id StmtID) (*StmtClassData, bool) {
	p, ok := s.payload(id, StmtClass)
	if !ok {
		return nil, false
	}
	return s.Classes.Get(p), true
}

func (s *Stmts) NewFunc(span source.Span, data StmtFuncData) StmtID {
	return s.new(StmtFunc, span, s.Funcs.Allocate(data))
}

func (s *Stmts) Func(id StmtID) (*StmtFuncData, bool) {
	p, ok := s.payload(id, StmtFunc)
	if !ok {
		return nil, false
	}
	return s.Funcs.Get(p), true
}

func (s *Stmts) NewAnnAssign(span source.Span, target, annotation, value ExprID) StmtID {
	return s.new(StmtAnnAssign, span, s.AnnAssigns.Allocate(StmtAnnAssignData{Target: target, Annotation: annotation, Value: value}))
}

func (s *Stmts) AnnAssign(id StmtID) (*StmtAnnAssignData, bool) {
	p, ok := s.payload(id, StmtAnnAssign)
	if !ok {
		return nil, false
	}
	return s.AnnAssigns.Get(p), true
}

func (s *Stmts) NewAssign(span source.Span, targets []ExprID, value ExprID) StmtID {
	return s.new(StmtAssign, span, s.Assigns.Allocate(StmtAssignData{Targets: targets, Value: value}))
}

func (s *Stmts) Assign(id StmtID) (*StmtAssignData, bool) {
	p, ok := s.payload(id, StmtAssign)
	if !ok {
		return nil, false
	}
	return s.Assigns.Get(p), true
}

func (s *Stmts) NewImport(span source.Span, names []Alias) StmtID {
	return s.new(StmtImport, span, s.Imports.Allocate(StmtImportData{Names: names}))
}

func (s *Stmts) Import(id StmtID) (*StmtImportData, bool) {
	p, ok := s.payload(id, StmtImport)
	if !ok {
		return nil, false
	}
	return s.Imports.Get(p), true
}

func (s *Stmts) NewImportFrom(span source.Span, data StmtImportFromData) StmtID {
	return s.new(StmtImportFrom, span, s.ImportFroms.Allocate(data))
}

func (s *Stmts) ImportFrom(id StmtID) (*StmtImportFromData, bool) {
	p, ok := s.payload(id, StmtImportFrom)
	if !ok {
		return nil, false
	}
	return s.ImportFroms.Get(p), true
}

func (s *Stmts) NewExprStmt(span source.Span, x ExprID) StmtID {
	return s.new(StmtExpr, span, s.ExprStmts.Allocate(StmtExprData{X: x}))
}

func (s *Stmts) ExprStmt(id StmtID) (*StmtExprData, bool) {
	p, ok := s.payload(id, StmtExpr)
	if !ok {
		return nil, false
	}
	return s.ExprStmts.Get(p), true
}

func (s *Stmts) NewPass(span source.Span) StmtID {
	return s.new(StmtPass, span, 0)
}

func (s *Stmts) NewCompound(span source.Span, kw token.Kind, suites []Suite) StmtID {
	return s.new(StmtCompound, span, s.Compounds.Allocate(StmtCompoundData{Keyword: kw, Suites: suites}))
}

func (s *Stmts) Compound(id StmtID) (*StmtCompoundData, bool) {
	p, ok := s.payload(id, StmtCompound)
	if !ok {
		return nil, false
	}
	return s.Compounds.Get(p), true
}

func (s *Stmts) NewSimple(span source.Span, kw token.Kind) StmtID {
	return s.new(StmtSimple, span, s.Simples.Allocate(StmtSimpleData{Keyword: kw}))
}

func (s *Stmts) Simple(id StmtID) (*StmtSimpleData, bool) {
	p, ok := s.payload(id, StmtSimple)
	if !ok {
		return nil, false
	}
	return s.Simples.Get(p), true
}
