package parser

import (
	"fmt"
	"strings"
	"testing"

	"plainclass/internal/ast"
	"plainclass/internal/diag"
	"plainclass/internal/source"
	"plainclass/internal/token"
)

type parsed struct {
	b    *ast.Builder
	mod  *ast.Module
	bag  *diag.Bag
	file *source.File
	errs uint
}

func parseSource(t *testing.T, src string) parsed {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("test.py", []byte(src)))
	bag := diag.NewBag(100)
	b := ast.NewBuilder(ast.Hints{}, nil)
	res := ParseFile(file, b, Options{MaxErrors: 100, Reporter: diag.BagReporter{Bag: bag}})
	return parsed{b: b, mod: res.Module, bag: bag, file: file, errs: res.Errors}
}

func mustParse(t *testing.T, src string) parsed {
	t.Helper()
	p := parseSource(t, src)
	if p.errs != 0 || p.bag.HasErrors() {
		t.Fatalf("unexpected errors: %s", diagnosticsSummary(p.bag))
	}
	return p
}

func diagnosticsSummary(bag *diag.Bag) string {
	diags := bag.Items()
	if len(diags) == 0 {
		return "<none>"
	}
	lines := make([]string, len(diags))
	for i, d := range diags {
		lines[i] = fmt.Sprintf("[%s] %s", d.Code.ID(), d.Message)
	}
	return strings.Join(lines, "; ")
}

func (p parsed) kinds(body []ast.StmtID) []ast.StmtKind {
	out := make([]ast.StmtKind, len(body))
	for i, id := range body {
		out[i] = p.b.Stmts.Get(id).Kind
	}
	return out
}

func (p parsed) assignValue(t *testing.T, id ast.StmtID) ast.ExprID {
	t.Helper()
	a, ok := p.b.Stmts.Assign(id)
	if !ok {
		t.Fatalf("statement %d is %s, want Assign", id, p.b.Stmts.Get(id).Kind)
	}
	return a.Value
}

const dataclassModule = `from dataclasses import dataclass, field
import typing as t

@dataclass(frozen=True)
class Point(Base, metaclass=M):
    """doc"""
    x: int
    y: list[int] = field(default_factory=list)
    z: t.ClassVar[int] = 3

    def norm(self) -> float:
        return (self.x ** 2) ** 0.5
`

func TestParseDataclassModule(t *testing.T) {
	p := mustParse(t, dataclassModule)

	want := []ast.StmtKind{ast.StmtImportFrom, ast.StmtImport, ast.StmtClass}
	if got := p.kinds(p.mod.Body); fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("module body = %v, want %v", got, want)
	}

	from, _ := p.b.Stmts.ImportFrom(p.mod.Body[0])
	if from.Module != "dataclasses" || len(from.Names) != 2 || from.Names[1].Name != "field" {
		t.Fatalf("unexpected from-import: %+v", from)
	}
	imp, _ := p.b.Stmts.Import(p.mod.Body[1])
	if p.b.BoundName(imp.Names[0]) != "t" || imp.Names[0].Name != "typing" {
		t.Fatalf("unexpected import: %+v", imp.Names[0])
	}

	cls, ok := p.b.Stmts.Class(p.mod.Body[2])
	if !ok {
		t.Fatal("expected class payload")
	}
	if p.b.Text(cls.Name) != "Point" {
		t.Fatalf("class name = %q", p.b.Text(cls.Name))
	}
	if len(cls.Decorators) != 1 {
		t.Fatalf("decorators = %d, want 1", len(cls.Decorators))
	}
	if got := p.file.Slice(cls.Decorators[0].Span); got != "@dataclass(frozen=True)" {
		t.Fatalf("decorator span = %q", got)
	}
	call, ok := p.b.Exprs.Call(cls.Decorators[0].Expr)
	if !ok || len(call.Keywords) != 1 || p.b.Text(call.Keywords[0].Name) != "frozen" {
		t.Fatalf("unexpected decorator call: %+v", call)
	}
	if len(cls.Bases) != 1 || len(cls.Keywords) != 1 {
		t.Fatalf("bases=%d keywords=%d", len(cls.Bases), len(cls.Keywords))
	}

	wantBody := []ast.StmtKind{ast.StmtExpr, ast.StmtAnnAssign, ast.StmtAnnAssign, ast.StmtAnnAssign, ast.StmtFunc}
	if got := p.kinds(cls.Body.Stmts); fmt.Sprint(got) != fmt.Sprint(wantBody) {
		t.Fatalf("class body = %v, want %v", got, wantBody)
	}
	if cls.Body.Inline {
		t.Fatal("block suite reported as inline")
	}

	x := p.b.Stmts.Get(cls.Body.Stmts[1])
	if got := p.file.Slice(x.Span); got != "x: int" {
		t.Fatalf("field span = %q", got)
	}
	y, _ := p.b.Stmts.AnnAssign(cls.Body.Stmts[2])
	fieldCall, ok := p.b.Exprs.Call(y.Value)
	if !ok {
		t.Fatal("expected field(...) call")
	}
	if name, _ := p.b.DottedName(fieldCall.Callee); name != "field" {
		t.Fatalf("callee = %q", name)
	}
	if kw := fieldCall.Keywords[0]; p.b.Text(kw.Name) != "default_factory" || p.file.Slice(p.b.Exprs.Get(kw.Value).Span) != "list" {
		t.Fatalf("unexpected keyword %+v", kw)
	}
	z, _ := p.b.Stmts.AnnAssign(cls.Body.Stmts[3])
	if sub, ok := p.b.Exprs.Subscript(z.Annotation); !ok {
		t.Fatal("expected subscript annotation")
	} else if name, _ := p.b.DottedName(sub.Target); name != "t.ClassVar" {
		t.Fatalf("annotation target = %q", name)
	}

	classSpan := p.b.Stmts.Get(p.mod.Body[2]).Span
	if got := p.file.Slice(classSpan); !strings.HasPrefix(got, "class Point") || !strings.HasSuffix(got, "** 0.5") {
		t.Fatalf("class span = %q", got)
	}
}

func TestParseOpaqueFreeNames(t *testing.T) {
	p := mustParse(t, "x = a if b else lambda q: q + c\n")
	v := p.assignValue(t, p.mod.Body[0])
	o, ok := p.b.Exprs.Opaque(v)
	if !ok || o.What != ast.OpaqueIfExp {
		t.Fatalf("expected conditional expression, got %s", p.b.Exprs.Get(v).Kind)
	}
	if got := strings.Join(p.b.FreeNames(v), ","); got != "a,b,c" {
		t.Fatalf("free names = %q, want a,b,c", got)
	}
}

func TestParseLambdaDefaults(t *testing.T) {
	p := mustParse(t, "f = lambda x, y=d, *rest: x + y + e\n")
	v := p.assignValue(t, p.mod.Body[0])
	if got := strings.Join(p.b.FreeNames(v), ","); got != "d,e" {
		t.Fatalf("free names = %q, want d,e", got)
	}
}

func TestParseOperators(t *testing.T) {
	p := mustParse(t, "a = x not in y\nb = not x is not y\nc = 1 + 2 * 3\nd = -2 ** 2\n")

	bin, ok := p.b.Exprs.Binary(p.assignValue(t, p.mod.Body[0]))
	if !ok || bin.Op != "not in" {
		t.Fatalf("a: %+v", bin)
	}

	un, ok := p.b.Exprs.Unary(p.assignValue(t, p.mod.Body[1]))
	if !ok || un.Op != token.KwNot {
		t.Fatal("b: expected 'not' at the top")
	}
	if inner, ok := p.b.Exprs.Binary(un.X); !ok || inner.Op != "is not" {
		t.Fatalf("b: inner %+v", inner)
	}

	sum, ok := p.b.Exprs.Binary(p.assignValue(t, p.mod.Body[2]))
	if !ok || sum.Op != "+" {
		t.Fatalf("c: %+v", sum)
	}
	if mul, ok := p.b.Exprs.Binary(sum.Right); !ok || mul.Op != "*" {
		t.Fatal("c: '*' must bind tighter than '+'")
	}

	neg, ok := p.b.Exprs.Unary(p.assignValue(t, p.mod.Body[3]))
	if !ok || neg.Op != token.Minus {
		t.Fatal("d: unary minus must wrap the power")
	}
	if pow, ok := p.b.Exprs.Binary(neg.X); !ok || pow.Op != "**" {
		t.Fatal("d: expected '**' under the minus")
	}
}

func TestParseConstants(t *testing.T) {
	p := mustParse(t, "a = (1, -2, 's', None)\nb = f\"x{y}\"\nc = 'a' \"b\"\nd = b'raw'\ne = [1]\n")

	if !p.b.IsConstant(p.assignValue(t, p.mod.Body[0])) {
		t.Fatal("a: tuple of literals is constant")
	}
	if p.b.IsConstant(p.assignValue(t, p.mod.Body[1])) {
		t.Fatal("b: f-string is not constant")
	}
	c, _ := p.b.Exprs.Const(p.assignValue(t, p.mod.Body[2]))
	if c.Kind != ast.ConstString || c.Parts != 2 {
		t.Fatalf("c: %+v", c)
	}
	d, _ := p.b.Exprs.Const(p.assignValue(t, p.mod.Body[3]))
	if d.Kind != ast.ConstBytes {
		t.Fatalf("d: kind %d", d.Kind)
	}
	e := p.assignValue(t, p.mod.Body[4])
	if p.b.IsConstant(e) || !p.b.IsMutableDisplay(e) {
		t.Fatal("e: list display is mutable, not constant")
	}
}

func TestParseDisplays(t *testing.T) {
	p := mustParse(t, "a = {1: 2}\nb = {1, 2}\nc = {}\nd = [v for v in vs]\ne = {**m, 'k': 1}\n")
	cases := []struct {
		kind ast.ExprKind
		elts int
		comp bool
	}{
		{ast.ExprDict, 2, false},
		{ast.ExprSet, 2, false},
		{ast.ExprDict, 0, false},
		{ast.ExprList, 2, true},
		{ast.ExprDict, 3, false},
	}
	for i, tc := range cases {
		v := p.assignValue(t, p.mod.Body[i])
		if got := p.b.Exprs.Get(v).Kind; got != tc.kind {
			t.Fatalf("#%d: kind %s, want %s", i, got, tc.kind)
		}
		seq, _ := p.b.Exprs.Seq(v)
		if len(seq.Elts) != tc.elts || seq.Comprehension != tc.comp {
			t.Fatalf("#%d: %+v", i, seq)
		}
	}
}

func TestParseSubscriptSlices(t *testing.T) {
	p := mustParse(t, "v = a[1:2, ::3]\n")
	sub, ok := p.b.Exprs.Subscript(p.assignValue(t, p.mod.Body[0]))
	if !ok {
		t.Fatal("expected subscript")
	}
	tuple, ok := p.b.Exprs.Seq(sub.Index)
	if !ok || len(tuple.Elts) != 2 {
		t.Fatal("expected a tuple of two slices")
	}
	for _, e := range tuple.Elts {
		if o, ok := p.b.Exprs.Opaque(e); !ok || o.What != ast.OpaqueSlice {
			t.Fatalf("element %s is not a slice", p.b.Exprs.Get(e).Kind)
		}
	}
}

func TestParseCallArguments(t *testing.T) {
	p := mustParse(t, "f(a, *b, c=1, **d, e := 2)\ng(x for x in xs)\n")
	stmt, _ := p.b.Stmts.ExprStmt(p.mod.Body[0])
	call, ok := p.b.Exprs.Call(stmt.X)
	if !ok {
		t.Fatal("expected call")
	}
	if len(call.Args) != 3 || len(call.Keywords) != 2 {
		t.Fatalf("args=%d keywords=%d", len(call.Args), len(call.Keywords))
	}
	if call.Keywords[1].Name != source.NoStringID {
		t.Fatal("'**d' has no keyword name")
	}
	if o, ok := p.b.Exprs.Opaque(call.Args[2]); !ok || o.What != ast.OpaqueWalrus {
		t.Fatal("expected walrus argument")
	}
	if got := p.file.Slice(call.ArgsSpan); got != "(a, *b, c=1, **d, e := 2)" {
		t.Fatalf("args span = %q", got)
	}

	gen, _ := p.b.Stmts.ExprStmt(p.mod.Body[1])
	gcall, _ := p.b.Exprs.Call(gen.X)
	if o, ok := p.b.Exprs.Opaque(gcall.Args[0]); !ok || o.What != ast.OpaqueGenerator {
		t.Fatal("expected generator argument")
	}
}

func TestParseCompoundStatements(t *testing.T) {
	src := `if a:
    x = 1
elif b:
    x = 2
else:
    pass
try:
    pass
except ValueError as err:
    pass
finally:
    pass
for i in range(3): total += i
with open(p) as fh, lock:
    pass
`
	p := mustParse(t, src)
	if got := p.kinds(p.mod.Body); len(got) != 4 {
		t.Fatalf("want 4 compound statements, got %v", got)
	}
	ifs, _ := p.b.Stmts.Compound(p.mod.Body[0])
	if ifs.Keyword != token.KwIf || len(ifs.Suites) != 3 {
		t.Fatalf("if: %+v", ifs)
	}
	try, _ := p.b.Stmts.Compound(p.mod.Body[1])
	if try.Keyword != token.KwTry || len(try.Suites) != 3 {
		t.Fatalf("try: %+v", try)
	}
	loop, _ := p.b.Stmts.Compound(p.mod.Body[2])
	if !loop.Suites[0].Inline || len(loop.Suites[0].Stmts) != 1 {
		t.Fatalf("for: %+v", loop.Suites[0])
	}
}

func TestParseSoftKeywords(t *testing.T) {
	src := `match = 1
match command:
    case [x, y]:
        pass
    case _:
        pass
type Alias = int
match.group(1)
`
	p := mustParse(t, src)
	want := []ast.StmtKind{ast.StmtAssign, ast.StmtCompound, ast.StmtSimple, ast.StmtExpr}
	if got := p.kinds(p.mod.Body); fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("body = %v, want %v", got, want)
	}
	m, _ := p.b.Stmts.Compound(p.mod.Body[1])
	if got := p.kinds(m.Suites[0].Stmts); len(got) != 2 || got[0] != ast.StmtCompound {
		t.Fatalf("match body = %v", got)
	}
}

func TestParseImportForms(t *testing.T) {
	p := mustParse(t, "from ..pkg.mod import (a as b, c,)\nfrom . import x\nfrom m import *\nimport os.path, sys as system\n")

	rel, _ := p.b.Stmts.ImportFrom(p.mod.Body[0])
	if rel.Level != 2 || rel.Module != "pkg.mod" || !rel.Parens || len(rel.Names) != 2 {
		t.Fatalf("relative import: %+v", rel)
	}
	if p.b.BoundName(rel.Names[0]) != "b" || p.b.BoundName(rel.Names[1]) != "c" {
		t.Fatal("unexpected bound names")
	}
	dot, _ := p.b.Stmts.ImportFrom(p.mod.Body[1])
	if dot.Level != 1 || dot.Module != "" {
		t.Fatalf("dot import: %+v", dot)
	}
	star, _ := p.b.Stmts.ImportFrom(p.mod.Body[2])
	if !star.Star {
		t.Fatal("expected star import")
	}
	imp, _ := p.b.Stmts.Import(p.mod.Body[3])
	if len(imp.Names) != 2 || p.b.BoundName(imp.Names[0]) != "os" || p.b.BoundName(imp.Names[1]) != "system" {
		t.Fatalf("plain import: %+v", imp.Names)
	}
}

func TestParseSemicolonsAndInlineClass(t *testing.T) {
	p := mustParse(t, "a = 1; b = 2;\nclass E: pass\n")
	if got := len(p.mod.Body); got != 3 {
		t.Fatalf("body len = %d, want 3", got)
	}
	cls, _ := p.b.Stmts.Class(p.mod.Body[2])
	if !cls.Body.Inline || len(cls.Body.Stmts) != 1 {
		t.Fatalf("inline suite: %+v", cls.Body)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code diag.Code
	}{
		{"missing class name", "class :\n    pass\n", diag.SynExpectIdentifier},
		{"unclosed paren", "x = (1,\n", diag.SynUnclosedDelimiter},
		{"missing block", "def f():\nx = 1\n", diag.SynExpectIndent},
		{"dangling decorator", "@dataclass\nx = 1\n", diag.SynBadDecorator},
		{"missing expression", "x = \n", diag.SynExpectExpression},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := parseSource(t, tt.src)
			if p.errs == 0 {
				t.Fatal("expected a syntax error")
			}
			found := false
			for _, d := range p.bag.Items() {
				if d.Code == tt.code {
					found = true
				}
			}
			if !found {
				t.Fatalf("expected %s, got %s", tt.code.ID(), diagnosticsSummary(p.bag))
			}
		})
	}
}

func TestParseMaxErrors(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("bad.py", []byte(strings.Repeat("class :\n", 20))))
	bag := diag.NewBag(100)
	res := ParseFile(file, ast.NewBuilder(ast.Hints{}, nil), Options{MaxErrors: 3, Reporter: diag.BagReporter{Bag: bag}})
	if res.Errors < 3 {
		t.Fatalf("errors = %d, want at least 3", res.Errors)
	}
	if bag.Len() > 3 {
		t.Fatalf("reported %d diagnostics, cap is 3", bag.Len())
	}
}
