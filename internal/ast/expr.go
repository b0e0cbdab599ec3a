package ast

import (
	"plainclass/internal/source"
	"plainclass/internal/token"
)

type ExprKind uint8

const (
	ExprName ExprKind = iota
	ExprAttr
	ExprCall
	ExprConst
	ExprTuple
	ExprList
	ExprDict
	ExprSet
	ExprUnary
	ExprBinary
	ExprSubscript
	ExprStarred
	ExprGroup
	// ExprOpaque keeps only its span: lambda, conditional, walrus, await, yield,
	// generator expressions and slices.
	ExprOpaque
)

func (k ExprKind) String() string {
	switch k {
	case ExprName:
		return "Name"
	case ExprAttr:
		return "Attr"
	case ExprCall:
		return "Call"
	case ExprConst:
		return "Const"
	case ExprTuple:
		return "Tuple"
	case ExprList:
		return "List"
	case ExprDict:
		return "Dict"
	case ExprSet:
		return "Set"
	case ExprUnary:
		return "Unary"
	case ExprBinary:
		return "Binary"
	case ExprSubscript:
		return "Subscript"
	case ExprStarred:
		return "Starred"
	case ExprGroup:
		return "Group"
	case ExprOpaque:
		return "Opaque"
	}
	return "Expr(?)"
}

type Expr struct {
	Kind    ExprKind
	Span    source.Span
	Payload PayloadID
}

type ExprNameData struct {
	Name source.StringID
}

type ExprAttrData struct {
	Target   ExprID
	Name     source.StringID
	NameSpan source.Span
}

// Keyword is one name=value argument; Name is NoStringID for **mapping.
type Keyword struct {
	Name     source.StringID
	NameSpan source.Span
	Value    ExprID
	Span     source.Span
}

type ExprCallData struct {
	Callee   ExprID
	Args     []ExprID
	Keywords []Keyword
	// ArgsSpan covers the parentheses.
	ArgsSpan source.Span
}

type ConstKind uint8

const (
	ConstNumber ConstKind = iota
	ConstString
	ConstBytes
	ConstFString
	ConstNone
	ConstTrue
	ConstFalse
	ConstEllipsis
)

type ExprConstData struct {
	Kind ConstKind
	// Parts > 1 for implicitly concatenated string literals.
	Parts int
}

// For comprehensions the last element is an OpaqueGenerator holding the
// names of the for/if clauses.
type ExprSeqData struct {
	Elts          []ExprID
	Comprehension bool
}

type ExprUnaryData struct {
	Op token.Kind // Plus, Minus, Tilde, KwNot
	X  ExprID
}

// BinaryOp is the operator text ("+", "and", "not in", "is not", ...).
type ExprBinaryData struct {
	Op    string
	Left  ExprID
	Right ExprID
}

type ExprSubscriptData struct {
	Target ExprID
	Index  ExprID
}

type ExprStarredData struct {
	X      ExprID
	Double bool
}

type ExprGroupData struct {
	X ExprID
}

type OpaqueKind uint8

const (
	OpaqueLambda OpaqueKind = iota
	OpaqueIfExp
	OpaqueWalrus
	OpaqueAwait
	OpaqueYield
	OpaqueGenerator
	OpaqueSlice
)

type ExprOpaqueData struct {
	What OpaqueKind
	// Names are the identifiers mentioned inside, in order of appearance.
	Names []source.StringID
}
