package ast

import (
	"plainclass/internal/source"
	"plainclass/internal/token"
)

// Exprs manages allocation of expressions.
type Exprs struct {
	Arena      *Arena[Expr]
	Names      *Arena[ExprNameData]
	Attrs      *Arena[ExprAttrData]
	Calls      *Arena[ExprCallData]
	Consts     *Arena[ExprConstData]
	Seqs       *Arena[ExprSeqData]
	Unaries    *Arena[ExprUnaryData]
	Binaries   *Arena[ExprBinaryData]
	Subscripts *Arena[ExprSubscriptData]
	Starreds   *Arena[ExprStarredData]
	Groups     *Arena[ExprGroupData]
	Opaques    *Arena[ExprOpaqueData]
}

// NewExprs creates a new Exprs with per-kind arenas preallocated using capHint as the initial capacity.
func NewExprs(capHint uint) *Exprs {
	if capHint == 0 {
		capHint = 1 << 8
	}
	small := capHint/4 + 1
	return &Exprs{
		Arena:      NewArena[Expr](capHint),
		Names:      NewArena[ExprNameData](capHint),
		Attrs:      NewArena[ExprAttrData](small),
		Calls:      NewArena[ExprCallData](small),
		Consts:     NewArena[ExprConstData](small),
		Seqs:       NewArena[ExprSeqData](small),
		Unaries:    NewArena[ExprUnaryData](small),
		Binaries:   NewArena[ExprBinaryData](small),
		Subscripts: NewArena[ExprSubscriptData](small),
		Starreds:   NewArena[ExprStarredData](small),
		Groups:     NewArena[ExprGroupData](small),
		Opaques:    NewArena[ExprOpaqueData](small),
	}
}

func (e *Exprs) new(kind ExprKind, span source.Span, payload uint32) ExprID {
	return ExprID(e.Arena.Allocate(Expr{
		Kind:    kind,
		Span:    span,
		Payload: PayloadID(payload),
	}))
}

// Get returns the expression with the given ID.
func (e *Exprs) Get(id ExprID) *Expr {
	return e.Arena.Get(uint32(id))
}

func (e *Exprs) payload(id ExprID, kind ExprKind) (uint32, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != kind {
		return 0, false
	}
	return uint32(expr.Payload), true
}

func (e *Exprs) NewName(span source.Span, name source.StringID) ExprID {
	return e.new(ExprName, span, e.Names.Allocate(ExprNameData{Name: name}))
}

// Name returns the identifier data for the given expression ID.
func (e *Exprs) Name(id ExprID) (*ExprNameData, bool) {
	p, ok := e.payload(id, ExprName)
	if !ok {
		return nil, false
	}
	return e.Names.Get(p), true
}

func (e *Exprs) NewAttr(span source.Span, target ExprID, name source.StringID, nameSpan source.Span) ExprID {
	return e.new(ExprAttr, span, e.Attrs.Allocate(ExprAttrData{Target: target, Name: name, NameSpan: nameSpan}))
}

func (e *Exprs) Attr(id ExprID) (*ExprAttrData, bool) {
	p, ok := e.payload(id, ExprAttr)
	if !ok {
		return nil, false
	}
	return e.Attrs.Get(p), true
}

func (e *Exprs) NewCall(span source.Span, data ExprCallData) ExprID {
	return e.new(ExprCall, span, e.Calls.Allocate(data))
}

func (e *Exprs) Call(id ExprID) (*ExprCallData, bool) {
	p, ok := e.payload(id, ExprCall)
	if !ok {
		return nil, false
	}
	return e.Calls.Get(p), true
}

func (e *Exprs) NewConst(span source.Span, kind ConstKind, parts int) ExprID {
	return e.new(ExprConst, span, e.Consts.Allocate(ExprConstData{Kind: kind, Parts: parts}))
}

func (e *Exprs) Const(id ExprID) (*ExprConstData, bool) {
	p, ok := e.payload(id, ExprConst)
	if !ok {
		return nil, false
	}
	return e.Consts.Get(p), true
}

// NewSeq creates a tuple, list, set or dict display. Dict displays keep keys
// and values interleaved in Elts.
func (e *Exprs) NewSeq(kind ExprKind, span source.Span, elts []ExprID, comprehension bool) ExprID {
	return e.new(kind, span, e.Seqs.Allocate(ExprSeqData{Elts: elts, Comprehension: comprehension}))
}

// Seq returns display data for tuple, list, set and dict expressions.
func (e *Exprs) Seq(id ExprID) (*ExprSeqData, bool) {
	expr := e.Get(id)
	if expr == nil {
		return nil, false
	}
	switch expr.Kind {
	case ExprTuple, ExprList, ExprSet, ExprDict:
		return e.Seqs.Get(uint32(expr.Payload)), true
	}
	return nil, false
}

func (e *Exprs) NewUnary(span source.Span, op token.Kind, x ExprID) ExprID {
	return e.new(ExprUnary, span, e.Unaries.Allocate(ExprUnaryData{Op: op, X: x}))
}

func (e *Exprs) Unary(id ExprID) (*ExprUnaryData, bool) {
	p, ok := e.payload(id, ExprUnary)
	if !ok {
		return nil, false
	}
	return e.Unaries.Get(p), true
}

func (e *Exprs) NewBinary(span source.Span, op string, left, right ExprID) ExprID {
	return e.new(ExprBinary, span, e.Binaries.Allocate(ExprBinaryData{Op: op, Left: left, Right: right}))
}

func (e *Exprs) Binary(id ExprID) (*ExprBinaryData, bool) {
	p, ok := e.payload(id, ExprBinary)
	if !ok {
		return nil, false
	}
	return e.Binaries.Get(p), true
}

func (e *Exprs) NewSubscript(span source.Span, target, index ExprID) ExprID {
	return e.new(ExprSubscript, span, e.Subscripts.Allocate(ExprSubscriptData{Target: target, Index: index}))
}

func (e *Exprs) Subscript(id ExprID) (*ExprSubscriptData, bool) {
	p, ok := e.payload(id, ExprSubscript)
	if !ok {
		return nil, false
	}
	return e.Subscripts.Get(p), true
}

func (e *Exprs) NewStarred(span source.Span, x ExprID, double bool) ExprID {
	return e.new(ExprStarred, span, e.Starreds.Allocate(ExprStarredData{X: x, Double: double}))
}

func (e *Exprs) Starred(id ExprID) (*ExprStarredData, bool) {
	p, ok := e.payload(id, ExprStarred)
	if !ok {
		return nil, false
	}
	return e.Starreds.Get(p), true
}

func (e *Exprs) NewGroup(span source.Span, x ExprID) ExprID {
	return e.new(ExprGroup, span, e.Groups.Allocate(ExprGroupData{X: x}))
}

func (e *Exprs) Group(id ExprID) (*ExprGroupData, bool) {
	p, ok := e.payload(id, ExprGroup)
	if !ok {
		return nil, false
	}
	return e.Groups.Get(p), true
}

func (e *Exprs) NewOpaque(span source.Span, what OpaqueKind, names []source.StringID) ExprID {
	return e.new(ExprOpaque, span, e.Opaques.Allocate(ExprOpaqueData{What: what, Names: names}))
}

func (e *Exprs) Opaque(id ExprID) (*ExprOpaqueData, bool) {
	p, ok := e.payload(id, ExprOpaque)
	if !ok {
		return nil, false
	}
	return e.Opaques.Get(p), true
}

// Unparen strips any number of enclosing parentheses.
func (e *Exprs) Unparen(id ExprID) ExprID {
	for {
		g, ok := e.Group(id)
		if !ok {
			return id
		}
		id = g.X
	}
}
