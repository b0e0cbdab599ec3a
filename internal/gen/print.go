package gen

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrMalformed wraps every error returned by Print.
var ErrMalformed = errors.New("malformed generated node")

const (
	precLowest = iota
	precTest
	precOr
	precCompare
	precAdd
	precAbove
	precAtom
)

var compareOps = map[string]bool{
	"is": true, "is not": true, "in": true, "not in": true,
	"==": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true,
}

type printer struct {
	w   *Writer
	err error
}

// Print renders one generated statement. Every line starts with indent, nested
// suites add unit per level, and the text ends with a newline.
func Print(s Stmt, indent, unit string) (string, error) {
	p := printer{w: NewWriter(indent, unit)}
	p.stmt(s)
	if p.err != nil {
		return "", p.err
	}
	return string(p.w.Bytes()), nil
}

func (p *printer) fail(format string, args ...any) {
	if p.err == nil {
		p.err = fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))
	}
}

func (p *printer) stmt(s Stmt) {
	switch s := s.(type) {
	case *FuncDef:
		p.ident(s.Name, "function name")
		p.w.WriteString("def " + s.Name + "(")
		for i, param := range s.Params {
			if i > 0 {
				p.w.WriteString(", ")
			}
			p.param(param)
		}
		if len(s.KwOnly) > 0 {
			if len(s.Params) > 0 {
				p.w.WriteString(", ")
			}
			p.w.WriteString("*")
			for _, param := range s.KwOnly {
				p.w.WriteString(", ")
				p.param(param)
			}
		}
		p.w.WriteString(")")
		if s.Returns != nil {
			p.w.WriteString(" -> ")
			p.expr(s.Returns, precLowest)
		}
		p.w.WriteString(":")
		p.suite(s.Body, "def "+s.Name)
	case *Assign:
		p.expr(s.Target, precOr)
		p.w.WriteString(" = ")
		p.expr(s.Value, precLowest)
		p.w.Newline()
	case *Return:
		p.w.WriteString("return")
		if s.Value != nil {
			p.w.WriteString(" ")
			p.expr(s.Value, precLowest)
		}
		p.w.Newline()
	case *If:
		p.w.WriteString("if ")
		p.expr(s.Cond, precLowest)
		p.w.WriteString(":")
		p.suite(s.Body, "if")
	case *Raise:
		p.w.WriteString("raise ")
		p.expr(s.Value, precLowest)
		p.w.Newline()
	case *ExprStmt:
		p.expr(s.X, precLowest)
		p.w.Newline()
	case *Pass:
		p.w.WriteString("pass")
		p.w.Newline()
	default:
		p.fail("unexpected statement %T", s)
	}
}

func (p *printer) suite(body []Stmt, owner string) {
	p.w.Newline()
	if len(body) == 0 {
		p.fail("empty body of %s", owner)
		return
	}
	p.w.IndentPush()
	for _, s := range body {
		p.stmt(s)
	}
	p.w.IndentPop()
}

func (p *printer) param(param Param) {
	p.ident(param.Name, "parameter")
	p.w.WriteString(param.Name)
	if param.Annotation != "" {
		p.w.WriteString(": " + param.Annotation)
	}
	if param.Default != nil {
		if param.Annotation != "" {
			p.w.WriteString(" = ")
		} else {
			p.w.WriteString("=")
		}
		p.expr(param.Default, precTest)
	}
}

func prec(e Expr) int {
	switch e := e.(type) {
	case *IfExp:
		return precTest
	case *Or:
		return precOr
	case *Compare:
		return precCompare
	case *Concat:
		return precAdd
	case *Verbatim:
		if e.Atomic {
			return precAtom
		}
		return precLowest
	}
	return precAtom
}

// expr prints e, parenthesized when it binds looser than the position requires.
func (p *printer) expr(e Expr, min int) {
	if e == nil {
		p.fail("missing expression")
		return
	}
	if prec(e) < min {
		p.w.WriteString("(")
		defer p.w.WriteString(")")
	}
	switch e := e.(type) {
	case *Name:
		p.ident(e.ID, "name")
		p.w.WriteString(e.ID)
	case *Verbatim:
		if strings.TrimSpace(e.Text) == "" {
			p.fail("empty verbatim expression")
		}
		p.w.WriteString(e.Text)
	case *Attr:
		p.expr(e.X, precAtom)
		p.ident(e.Name, "attribute")
		p.w.WriteString("." + e.Name)
	case *Call:
		p.expr(e.Func, precAtom)
		p.w.WriteString("(")
		for i, a := range e.Args {
			if i > 0 {
				p.w.WriteString(", ")
			}
			p.expr(a, precTest)
		}
		p.w.WriteString(")")
	case *Tuple:
		p.w.WriteString("(")
		for i, x := range e.Elts {
			if i > 0 {
				p.w.WriteString(" ")
			}
			p.expr(x, precTest)
			p.w.WriteString(",")
		}
		p.w.WriteString(")")
	case *Str:
		p.w.WriteString(quote(e.Value))
	case *Compare:
		if !compareOps[e.Op] {
			p.fail("unknown comparison %q", e.Op)
		}
		p.expr(e.Left, precAdd)
		p.w.WriteString(" " + e.Op + " ")
		p.expr(e.Right, precAdd)
	case *Or:
		if len(e.Values) < 2 {
			p.fail("'or' needs two operands")
		}
		for i, v := range e.Values {
			if i > 0 {
				p.w.WriteString(" or ")
			}
			p.expr(v, precCompare)
		}
	case *IfExp:
		p.expr(e.Body, precOr)
		p.w.WriteString(" if ")
		p.expr(e.Test, precOr)
		p.w.WriteString(" else ")
		p.expr(e.Else, precTest)
	case *Concat:
		p.expr(e.Left, precAdd)
		p.w.WriteString(" + ")
		p.expr(e.Right, precAbove)
	case *FString:
		p.w.WriteString(`f"`)
		for _, part := range e.Parts {
			if part.X == nil {
				p.w.WriteString(escapeFString(part.Lit))
				continue
			}
			p.w.WriteString("{")
			p.expr(part.X, precAtom)
			if part.Repr {
				p.w.WriteString("!r")
			}
			p.w.WriteString("}")
		}
		p.w.WriteString(`"`)
	default:
		p.fail("unexpected expression %T", e)
	}
}

func (p *printer) ident(s, what string) {
	if !isIdent(s) {
		p.fail("invalid %s %q", what, s)
	}
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && (unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Mc, r)) {
			continue
		}
		return false
	}
	return true
}

var quoteReplacer = strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\r", `\r`, "\t", `\t`)

// quote writes a single-quoted literal the way repr() does for plain text.
func quote(s string) string {
	return "'" + quoteReplacer.Replace(s) + "'"
}

var fstringReplacer = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "{", "{{", "}", "}}", "\n", `\n`)

func escapeFString(s string) string {
	return fstringReplacer.Replace(s)
}
