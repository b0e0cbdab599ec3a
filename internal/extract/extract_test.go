package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plainclass/internal/ast"
	"plainclass/internal/diag"
	"plainclass/internal/model"
	"plainclass/internal/parser"
	"plainclass/internal/scan"
	"plainclass/internal/source"
)

func extractSource(t *testing.T, src string) *model.Unit {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("unit.py", []byte(src)))
	b := ast.NewBuilder(ast.Hints{}, nil)
	parsed := parser.ParseFile(file, b, parser.Options{})
	require.Zero(t, parsed.Errors, "source must parse")
	sr := scan.Scan(b, parsed.Module)
	Extract(b, parsed.Module, sr)
	return sr.Unit
}

func lookup(t *testing.T, u *model.Unit, qual string) *model.ClassSpec {
	t.Helper()
	c, ok := u.Lookup(qual)
	require.True(t, ok, "class %s not found", qual)
	return c
}

func names(fields []model.FieldSpec) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Name
	}
	return out
}

func requireOK(t *testing.T, c *model.ClassSpec) {
	t.Helper()
	if c.Failed() {
		t.Fatalf("%s failed: %s", c.QualName, c.Failure.Error())
	}
}

const header = "from dataclasses import dataclass, field, KW_ONLY, InitVar\nfrom typing import ClassVar\n"

func TestInheritedFieldsComeFirst(t *testing.T) {
	u := extractSource(t, header+`
@dataclass
class Base:
    a: int

@dataclass
class Sub(Base):
    b: str = "x"
`)
	sub := lookup(t, u, "Sub")
	requireOK(t, sub)
	require.Equal(t, []string{"a", "b"}, names(sub.Fields()))

	a, b := sub.Fields()[0], sub.Fields()[1]
	assert.Equal(t, model.OriginInherited, a.Origin)
	assert.Equal(t, "Base", a.Owner.Name)
	assert.Equal(t, model.DefaultNone, a.Default)
	assert.Equal(t, model.OriginLocal, b.Origin)
	assert.Equal(t, model.DefaultLiteral, b.Default)
	assert.Equal(t, `"x"`, b.Value.Text)
	assert.True(t, b.Constant)
	assert.Same(t, lookup(t, u, "Base"), sub.Base())
}

func TestRedeclaredFieldKeepsPosition(t *testing.T) {
	u := extractSource(t, header+`
@dataclass
class Base:
    x: int
    y: int = 0

@dataclass
class Sub(Base):
    z: int = 1
    x: int = 5
`)
	sub := lookup(t, u, "Sub")
	requireOK(t, sub)
	require.Equal(t, []string{"x", "y", "z"}, names(sub.Fields()))
	x := sub.Fields()[0]
	assert.Equal(t, model.OriginLocal, x.Origin)
	assert.Equal(t, "5", x.Value.Text)
	assert.Equal(t, "Sub", x.Owner.Name)
}

func TestFieldCallArguments(t *testing.T) {
	u := extractSource(t, header+`
@dataclass
class P:
    items: list[int] = field(default_factory=list)
    tag: str = field(default="t", repr=False, hash=None, compare=False)
    key: int = field(default=0, hash=True, init=False)
    maker: dict = field(default_factory=lambda: {"a": 1})
    meta: int = field(default=1, metadata={"doc": "x"})
`)
	p := lookup(t, u, "P")
	requireOK(t, p)
	f := p.Fields()

	assert.Equal(t, model.DefaultFactory, f[0].Default)
	assert.Equal(t, "list", f[0].Value.Text)
	assert.True(t, f[0].Value.Atomic)
	assert.False(t, f[0].FieldCall.Empty())

	assert.Equal(t, model.DefaultLiteral, f[1].Default)
	assert.Equal(t, `"t"`, f[1].Value.Text)
	assert.False(t, f[1].Repr)
	assert.False(t, f[1].Compare)
	assert.Equal(t, model.Unset, f[1].Hash)
	assert.False(t, f[1].InHash())

	assert.False(t, f[2].Init)
	assert.Equal(t, model.True, f[2].Hash)

	assert.Equal(t, model.DefaultFactory, f[3].Default)
	assert.False(t, f[3].Value.Atomic, "a lambda must be parenthesised before the call")

	assert.Equal(t, "1", f[4].Value.Text)
}

func TestClassVarAndKwOnly(t *testing.T) {
	u := extractSource(t, header+`
@dataclass
class P:
    count: ClassVar[int] = 0
    a: int
    _: KW_ONLY
    b: int
    c: int = field(default=1, kw_only=False)

@dataclass(kw_only=True)
class Q:
    a: int
    b: int = field(kw_only=False)
`)
	p := lookup(t, u, "P")
	requireOK(t, p)
	require.Equal(t, []string{"a", "b", "c"}, names(p.Fields()))
	assert.False(t, p.Fields()[0].KwOnly)
	assert.True(t, p.Fields()[1].KwOnly)
	assert.False(t, p.Fields()[2].KwOnly)
	assert.True(t, p.KwOnly.IsValid())

	q := lookup(t, u, "Q")
	requireOK(t, q)
	assert.True(t, q.Fields()[0].KwOnly)
	assert.False(t, q.Fields()[1].KwOnly)
}

func TestInitVarAndPostInit(t *testing.T) {
	u := extractSource(t, header+`
@dataclass
class Base:
    a: int
    def __post_init__(self, scale):
        pass

@dataclass
class Sub(Base):
    scale: InitVar[int] = 1
`)
	sub := lookup(t, u, "Sub")
	requireOK(t, sub)
	require.Equal(t, []string{"a", "scale"}, names(sub.Fields()))
	assert.Equal(t, model.FieldInitVar, sub.Fields()[1].Kind)
	assert.False(t, sub.Fields()[1].Stored())
	assert.True(t, sub.PostInit, "__post_init__ is inherited")
}

func TestUnmarkedIntermediateCarriesFields(t *testing.T) {
	u := extractSource(t, header+`
@dataclass
class A:
    a: int

class M(A):
    ignored: int

@dataclass
class C(M):
    c: int = 0
`)
	c := lookup(t, u, "C")
	requireOK(t, c)
	assert.Equal(t, []string{"C", "M", "A"}, c.MRO)
	assert.Equal(t, []string{"a", "c"}, names(c.Fields()))
	assert.Equal(t, []string{"a"}, names(lookup(t, u, "M").Fields()))
}

func TestDiamondMRO(t *testing.T) {
	u := extractSource(t, header+`
@dataclass
class O:
    o: int = 0

@dataclass
class A(O):
    a: int = 1

@dataclass
class B(O):
    b: int = 2

@dataclass
class C(A, B):
    c: int = 3
`)
	c := lookup(t, u, "C")
	requireOK(t, c)
	assert.Equal(t, []string{"C", "A", "B", "O"}, c.MRO)
	assert.Equal(t, []string{"o", "b", "a", "c"}, names(c.Fields()))
}

func TestExtractErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code diag.Code
	}{
		{"mutable list", "    xs: list = []\n", diag.CfgMutableDefault},
		{"mutable dict via field", "    xs: dict = field(default={})\n", diag.CfgMutableDefault},
		{"default and factory", "    xs: list = field(default=None, default_factory=list)\n", diag.CfgDefaultAndFactory},
		{"unknown field argument", "    x: int = field(doc='x')\n", diag.OptFieldArgument},
		{"positional field argument", "    x: int = field(0)\n", diag.OptFieldArgument},
		{"non-boolean init", "    x: int = field(init=1)\n", diag.OptFieldArgument},
		{"no annotation", "    x = field(default=0)\n", diag.CfgFieldNoAnnotation},
		{"classvar with field", "    x: ClassVar[int] = field(default=0)\n", diag.CfgClassVarDefault},
		{"initvar factory", "    x: InitVar[list] = field(default_factory=list)\n", diag.CfgInitVarFactory},
		{"two kw_only markers", "    _: KW_ONLY\n    a: int\n    __: KW_ONLY\n", diag.CfgDuplicateKwOnly},
		{"nested annotation", "    if FLAG:\n        x: int = 0\n", diag.OptNestedField},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := extractSource(t, header+"@dataclass\nclass K:\n"+tt.body)
			k := lookup(t, u, "K")
			require.True(t, k.Failed())
			assert.Equal(t, tt.code, k.Failure.Code)
		})
	}
}

func TestFailedBasePropagates(t *testing.T) {
	u := extractSource(t, header+`
@dataclass(sorted=True)
class Base:
    a: int

class Mid(Base):
    pass

@dataclass
class Sub(Mid):
    b: int = 0
`)
	sub := lookup(t, u, "Sub")
	require.True(t, sub.Failed())
	assert.Equal(t, diag.OptUnknownKey, sub.Failure.Code)
	assert.Equal(t, diag.KindUnsupportedOption, sub.Failure.Code.Kind())
	assert.Equal(t, "Sub", sub.Failure.Class)
	assert.Contains(t, sub.Failure.Message, "Base")
}

func TestInconsistentMRO(t *testing.T) {
	u := extractSource(t, header+`
class O:
    pass

class A(O):
    pass

@dataclass
class Y(O, A):
    y: int
`)
	y := lookup(t, u, "Y")
	require.True(t, y.Failed())
	assert.Equal(t, diag.CfgInconsistentMRO, y.Failure.Code)
}

func TestBaseResolvedInEnclosingScopes(t *testing.T) {
	u := extractSource(t, header+`
def build():
    @dataclass
    class Base:
        a: int

    @dataclass
    class Sub(Base):
        b: int = 0
    return Sub
`)
	sub := lookup(t, u, "build.<locals>.Sub")
	requireOK(t, sub)
	assert.Equal(t, []string{"a", "b"}, names(sub.Fields()))
}

func TestUnknownBasesAreLeaves(t *testing.T) {
	u := extractSource(t, header+`
@dataclass
class P(Generic[T], mixins.Base):
    x: int
`)
	p := lookup(t, u, "P")
	requireOK(t, p)
	assert.Equal(t, []string{"P", "Generic[T]", "mixins.Base"}, p.MRO)
	assert.Nil(t, p.Base())
	assert.Equal(t, []string{"x"}, names(p.Fields()))
}

func TestLinearize(t *testing.T) {
	mro, ok := linearize("D", [][]string{{"B", "A"}, {"C", "A"}}, []string{"B", "C"})
	require.True(t, ok)
	assert.Equal(t, []string{"D", "B", "C", "A"}, mro)

	_, ok = linearize("X", [][]string{{"A"}, {"B", "A"}}, []string{"A", "B"})
	assert.False(t, ok)
}

func TestBareTupleDefaultIsParenthesised(t *testing.T) {
	u := extractSource(t, header+`
@dataclass
class P:
    pair: tuple = 1, 2
    other: tuple = (3, 4)
`)
	p := lookup(t, u, "P")
	requireOK(t, p)
	assert.Equal(t, "(1, 2)", p.Fields()[0].Value.Text)
	assert.Equal(t, "(3, 4)", p.Fields()[1].Value.Text)
	assert.True(t, p.Fields()[0].Constant)
}
