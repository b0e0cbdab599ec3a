// Package gen synthesizes the special methods of a marked class as a small
// typed tree and prints it as Python source.
package gen

// Stmt is a generated statement. The set of implementations is closed.
type Stmt interface{ stmtNode() }

// Expr is a generated expression. The set of implementations is closed.
type Expr interface{ exprNode() }

type (
	// FuncDef is 'def Name(Params, *, KwOnly) -> Returns: Body'. A nil Returns
	// prints no annotation.
	FuncDef struct {
		Name    string
		Params  []Param
		KwOnly  []Param
		Returns Expr
		Body    []Stmt
	}

	// Assign is 'Target = Value'.
	Assign struct {
		Target Expr
		Value  Expr
	}

	Return struct {
		Value Expr
	}

	// If has no else branch: the generated methods fall through instead.
	If struct {
		Cond Expr
		Body []Stmt
	}

	Raise struct {
		Value Expr
	}

	ExprStmt struct {
		X Expr
	}

	Pass struct{}
)

// Param is one function parameter; Annotation and Default may be empty.
type Param struct {
	Name       string
	Annotation string
	Default    Expr
}

type (
	Name struct {
		ID string
	}

	// Verbatim is expression text copied from the unit.
	Verbatim struct {
		Text   string
		Atomic bool
	}

	Attr struct {
		X    Expr
		Name string
	}

	Call struct {
		Func Expr
		Args []Expr
	}

	// Tuple always prints in parentheses with a trailing comma after the last element.
	Tuple struct {
		Elts []Expr
	}

	// Str is a plain single-quoted string literal.
	Str struct {
		Value string
	}

	// Compare is a single comparison: 'is', 'in', '==', '<' and so on.
	Compare struct {
		Left  Expr
		Op    string
		Right Expr
	}

	// Or joins its operands with 'or'.
	Or struct {
		Values []Expr
	}

	// IfExp is 'Body if Test else Else'.
	IfExp struct {
		Body Expr
		Test Expr
		Else Expr
	}

	// Concat is 'Left + Right'.
	Concat struct {
		Left  Expr
		Right Expr
	}

	// FString is f"..." over literal text and '{X!r}' replacement fields.
	FString struct {
		Parts []FPart
	}
)

// FPart is literal text when X is nil, otherwise a replacement field.
type FPart struct {
	Lit  string
	X    Expr
	Repr bool
}

func (*FuncDef) stmtNode()  {}
func (*Assign) stmtNode()   {}
func (*Return) stmtNode()   {}
func (*If) stmtNode()       {}
func (*Raise) stmtNode()    {}
func (*ExprStmt) stmtNode() {}
func (*Pass) stmtNode()     {}

func (*Name) exprNode()     {}
func (*Verbatim) exprNode() {}
func (*Attr) exprNode()     {}
func (*Call) exprNode()     {}
func (*Tuple) exprNode()    {}
func (*Str) exprNode()      {}
func (*Compare) exprNode()  {}
func (*Or) exprNode()       {}
func (*IfExp) exprNode()    {}
func (*Concat) exprNode()   {}
func (*FString) exprNode()  {}
