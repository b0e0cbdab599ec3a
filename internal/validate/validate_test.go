package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plainclass/internal/ast"
	"plainclass/internal/diag"
	"plainclass/internal/extract"
	"plainclass/internal/model"
	"plainclass/internal/parser"
	"plainclass/internal/scan"
	"plainclass/internal/source"
)

func validateSource(t *testing.T, src string) (*model.Unit, *scan.Result) {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("unit.py", []byte(src)))
	b := ast.NewBuilder(ast.Hints{}, nil)
	parsed := parser.ParseFile(file, b, parser.Options{})
	require.Zero(t, parsed.Errors, "source must parse")
	sr := scan.Scan(b, parsed.Module)
	extract.Extract(b, parsed.Module, sr)
	Validate(sr.Unit, sr.Sentinel)
	return sr.Unit, sr
}

func lookup(t *testing.T, u *model.Unit, qual string) *model.ClassSpec {
	t.Helper()
	c, ok := u.Lookup(qual)
	require.True(t, ok, "class %s not found", qual)
	return c
}

const header = "from dataclasses import dataclass, field, KW_ONLY\n"

func TestValidClassesPass(t *testing.T) {
	u, _ := validateSource(t, header+`
DEFAULTS = (1, 2)

@dataclass(order=True)
class Point:
    x: int
    y: int = 0

@dataclass
class Base:
    a: int
    d: tuple = DEFAULTS

@dataclass
class Sub(Base):
    b: str = "x"
    _: KW_ONLY
    c: int
    late: list = field(default_factory=list, init=False)
`)
	for _, name := range []string{"Point", "Base", "Sub"} {
		c := lookup(t, u, name)
		assert.False(t, c.Failed(), "%s: %v", name, c.Failure)
	}
}

func TestOrderingViolation(t *testing.T) {
	u, _ := validateSource(t, header+`
@dataclass
class P:
    a: int = 0
    b: int
`)
	p := lookup(t, u, "P")
	require.True(t, p.Failed())
	assert.Equal(t, diag.OrdNonDefaultAfterDefault, p.Failure.Code)
	assert.Equal(t, diag.KindOrdering, p.Failure.Code.Kind())
	assert.Equal(t, "non-default argument 'b' follows default argument 'a'", p.Failure.Message)
	require.Len(t, p.Failure.Notes, 1)
}

func TestOrderingAcrossInheritance(t *testing.T) {
	u, _ := validateSource(t, header+`
@dataclass
class Base:
    a: int = 0

@dataclass
class Sub(Base):
    b: int
`)
	sub := lookup(t, u, "Sub")
	require.True(t, sub.Failed())
	assert.Equal(t, diag.OrdNonDefaultAfterDefault, sub.Failure.Code)
	assert.Contains(t, sub.Failure.Message, "'b'")
	assert.Contains(t, sub.Failure.Message, "'a'")
	assert.False(t, lookup(t, u, "Base").Failed())
}

func TestOrderingExemptions(t *testing.T) {
	u, _ := validateSource(t, header+`
@dataclass
class K:
    a: int = 0
    b: int = field(kw_only=True)
    c: int = field(init=False)

@dataclass(kw_only=True)
class W:
    a: int = 0
    b: int

@dataclass(init=False)
class N:
    a: int = 0
    b: int
`)
	for _, name := range []string{"K", "W", "N"} {
		assert.False(t, lookup(t, u, name).Failed(), name)
	}
}

func TestReservedNames(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"self", "@dataclass\nclass R:\n    self: int\n"},
		{"object when frozen", "@dataclass(frozen=True)\nclass R:\n    object: int\n"},
		{"factory free name", "@dataclass\nclass R:\n    xs: list = field(default_factory=make)\n    make: int = 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, _ := validateSource(t, header+tt.src)
			r := lookup(t, u, "R")
			require.True(t, r.Failed())
			assert.Equal(t, diag.CfgReservedName, r.Failure.Code)
		})
	}
}

func TestSentinelAvoidsFieldNames(t *testing.T) {
	u, sr := validateSource(t, header+`
@dataclass
class R:
    _MISSING: int = 0
    xs: list = field(default_factory=list)
`)
	assert.NotEqual(t, "_MISSING", sr.Sentinel)
	assert.False(t, lookup(t, u, "R").Failed())
}

func TestObjectAllowedWhenNotFrozen(t *testing.T) {
	u, _ := validateSource(t, header+"@dataclass\nclass R:\n    object: int\n")
	assert.False(t, lookup(t, u, "R").Failed())
}

func TestConfigurationConflicts(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code diag.Code
	}{
		{"order without eq", "@dataclass(order=True, eq=False)\nclass C:\n    x: int\n", diag.CfgOrderWithoutEq},
		{"unsafe hash with explicit hash", "@dataclass(unsafe_hash=True)\nclass C:\n    x: int\n    def __hash__(self):\n        return 1\n", diag.CfgHashDefined},
		{"order with user __lt__", "@dataclass(order=True)\nclass C:\n    x: int\n    def __lt__(self, other):\n        return True\n", diag.CfgOrderDefined},
		{"frozen with __setattr__", "@dataclass(frozen=True)\nclass C:\n    x: int\n    def __setattr__(self, k, v):\n        pass\n", diag.CfgFrozenSetattr},
		{"frozen with __delattr__", "@dataclass(frozen=True)\nclass C:\n    x: int\n    def __delattr__(self, k):\n        pass\n", diag.CfgFrozenSetattr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, _ := validateSource(t, header+tt.src)
			c := lookup(t, u, "C")
			require.True(t, c.Failed())
			assert.Equal(t, tt.code, c.Failure.Code)
			assert.Equal(t, diag.KindConfigConflict, c.Failure.Code.Kind())
		})
	}
}

func TestExplicitHashIsAccepted(t *testing.T) {
	u, _ := validateSource(t, header+`
@dataclass(frozen=True)
class C:
    x: int
    def __hash__(self):
        return 7
`)
	c := lookup(t, u, "C")
	require.False(t, c.Failed())
	assert.Equal(t, model.HashKeep, c.HashAction())
}

func TestFrozenInheritance(t *testing.T) {
	u, _ := validateSource(t, header+`
@dataclass(frozen=True)
class F:
    a: int

class Mid(F):
    pass

@dataclass
class Thawed(Mid):
    b: int = 0

@dataclass
class Plain:
    a: int

@dataclass(frozen=True)
class Frozen(Plain):
    b: int = 0

@dataclass(frozen=True)
class Both(F):
    b: int = 0
`)
	thawed := lookup(t, u, "Thawed")
	require.True(t, thawed.Failed())
	assert.Equal(t, diag.CfgFrozenInheritance, thawed.Failure.Code)
	assert.Contains(t, thawed.Failure.Message, "from a frozen one")

	frozen := lookup(t, u, "Frozen")
	require.True(t, frozen.Failed())
	assert.Contains(t, frozen.Failure.Message, "from a non-frozen one")

	assert.False(t, lookup(t, u, "Both").Failed())
}

func TestFailureReachesSubclasses(t *testing.T) {
	u, _ := validateSource(t, header+`
@dataclass(order=True, eq=False)
class Base:
    a: int

@dataclass
class Sub(Base):
    b: int = 0
`)
	sub := lookup(t, u, "Sub")
	require.True(t, sub.Failed())
	assert.Equal(t, diag.CfgOrderWithoutEq, sub.Failure.Code)
	assert.Equal(t, "Sub", sub.Failure.Class)
}

func TestUnreachableInheritedDefault(t *testing.T) {
	u, _ := validateSource(t, header+`
class Outer:
    @dataclass
    class A:
        x: tuple = DEFAULTS

    @dataclass
    class B(A):
        y: int = 0

    @dataclass
    class C(A):
        x: tuple = ()
        y: int = 0
`)
	b := lookup(t, u, "Outer.B")
	require.True(t, b.Failed())
	assert.Equal(t, diag.CfgUnreachableDefault, b.Failure.Code)
	assert.False(t, lookup(t, u, "Outer.A").Failed())
	assert.False(t, lookup(t, u, "Outer.C").Failed(), "a redeclared field takes the local default")
}

func TestReachable(t *testing.T) {
	owner := model.NewClassSpec("A", "f.<locals>.A")
	owner.Home = "f.<locals>."
	owner.Path = "A"

	inside := model.NewClassSpec("B", "f.<locals>.B")
	inside.LookupScopes = []string{"f.<locals>.", ""}
	assert.True(t, Reachable(inside, owner))

	elsewhere := model.NewClassSpec("B", "g.<locals>.B")
	elsewhere.LookupScopes = []string{"g.<locals>.", ""}
	assert.False(t, Reachable(elsewhere, owner))

	nested := model.NewClassSpec("A", "Outer.A")
	nested.Path = "Outer.A"
	sibling := model.NewClassSpec("Other", "Other")
	sibling.LookupScopes = []string{""}
	assert.True(t, Reachable(sibling, nested))
}
