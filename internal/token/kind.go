package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	// Newline ends a logical line.
	Newline
	// Indent opens a deeper block.
	Indent
	// Dedent closes a block.
	Dedent

	// Name represents an identifier (soft keywords included).
	Name
	// Number represents an int, float or imaginary literal.
	Number
	// String represents a string or bytes literal with any prefix, f-strings included.
	String

	LParen   // (
	RParen   // )
	LBracket // [
	RBracket // ]
	LBrace   // {
	RBrace   // }

	Comma     // ,
	Colon     // :
	Semicolon // ;
	Dot       // .
	Ellipsis  // ...
	At        // @
	Arrow     // ->
	Assign    // =
	Walrus    // :=
	// AugAssign covers every augmented assignment (+=, //=, **=, ...); Text holds the operator.
	AugAssign

	Plus        // +
	Minus       // -
	Star        // *
	DoubleStar  // **
	Slash       // /
	DoubleSlash // //
	Percent     // %
	Pipe        // |
	Amp         // &
	Caret       // ^
	Tilde       // ~
	Shl         // <<
	Shr         // >>
	Lt          // <
	Gt          // >
	LtEq        // <=
	GtEq        // >=
	EqEq        // ==
	NotEq       // !=
	Bang        // ! (only valid inside f-string replacement fields)

	KwFalse    // False
	KwNone     // None
	KwTrue     // True
	KwAnd      // and
	KwAs       // as
	KwAssert   // assert
	KwAsync    // async
	KwAwait    // await
	KwBreak    // break
	KwClass    // class
	KwContinue // continue
	KwDef      // def
	KwDel      // del
	KwElif     // elif
	KwElse     // else
	KwExcept   // except
	KwFinally  // finally
	KwFor      // for
	KwFrom     // from
	KwGlobal   // global
	KwIf       // if
	KwImport   // import
	KwIn       // in
	KwIs       // is
	KwLambda   // lambda
	KwNonlocal // nonlocal
	KwNot      // not
	KwOr       // or
	KwPass     // pass
	KwRaise    // raise
	KwReturn   // return
	KwTry      // try
	KwWhile    // while
	KwWith     // with
	KwYield    // yield

	kindCount
)

var kindNames = [...]string{
	Invalid: "Invalid", EOF: "EOF",
	Newline: "Newline", Indent: "Indent", Dedent: "Dedent",
	Name: "Name", Number: "Number", String: "String",
	LParen: "(", RParen: ")", LBracket: "[", RBracket: "]", LBrace: "{", RBrace: "}",
	Comma: ",", Colon: ":", Semicolon: ";", Dot: ".", Ellipsis: "...", At: "@",
	Arrow: "->", Assign: "=", Walrus: ":=", AugAssign: "AugAssign",
	Plus: "+", Minus: "-", Star: "*", DoubleStar: "**", Slash: "/", DoubleSlash: "//",
	Percent: "%", Pipe: "|", Amp: "&", Caret: "^", Tilde: "~", Shl: "<<", Shr: ">>",
	Lt: "<", Gt: ">", LtEq: "<=", GtEq: ">=", EqEq: "==", NotEq: "!=", Bang: "!",
	KwFalse: "False", KwNone: "None", KwTrue: "True", KwAnd: "and", KwAs: "as",
	KwAssert: "assert", KwAsync: "async", KwAwait: "await", KwBreak: "break",
	KwClass: "class", KwContinue: "continue", KwDef: "def", KwDel: "del",
	KwElif: "elif", KwElse: "else", KwExcept: "except", KwFinally: "finally",
	KwFor: "for", KwFrom: "from", KwGlobal: "global", KwIf: "if", KwImport: "import",
	KwIn: "in", KwIs: "is", KwLambda: "lambda", KwNonlocal: "nonlocal", KwNot: "not",
	KwOr: "or", KwPass: "pass", KwRaise: "raise", KwReturn: "return", KwTry: "try",
	KwWhile: "while", KwWith: "with", KwYield: "yield",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "Kind(?)"
}
