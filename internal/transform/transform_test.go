package transform

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plainclass/internal/diag"
)

func run(t *testing.T, src string, opts Options) *Result {
	t.Helper()
	res := Unit("unit.py", []byte(src), opts)
	require.NotNil(t, res)
	return res
}

func rewrite(t *testing.T, src string) string {
	t.Helper()
	res := run(t, src, Options{})
	require.Empty(t, res.Failures, "failures: %v", res.Failures)
	require.True(t, res.Changed)
	return string(res.Output)
}

func TestOrderedPoint(t *testing.T) {
	src := `from dataclasses import dataclass


@dataclass(order=True)
class Point:
    x: int
    y: int = 0
`
	want := `

class Point:
    x: int
    y: int = 0

    __match_args__ = ('x', 'y',)

    def __init__(self, x: int, y: int = 0) -> None:
        self.x = x
        self.y = y

    def __eq__(self, other):
        if other.__class__ is self.__class__:
            return (self.x, self.y,) == (other.x, other.y,)
        return NotImplemented

    def __lt__(self, other):
        if other.__class__ is self.__class__:
            return (self.x, self.y,) < (other.x, other.y,)
        return NotImplemented

    def __le__(self, other):
        if other.__class__ is self.__class__:
            return (self.x, self.y,) <= (other.x, other.y,)
        return NotImplemented

    def __gt__(self, other):
        if other.__class__ is self.__class__:
            return (self.x, self.y,) > (other.x, other.y,)
        return NotImplemented

    def __ge__(self, other):
        if other.__class__ is self.__class__:
            return (self.x, self.y,) >= (other.x, other.y,)
        return NotImplemented

    def __repr__(self):
        return self.__class__.__qualname__ + f"(x={self.x!r}, y={self.y!r})"

    __hash__ = None
`
	res := run(t, src, Options{})
	require.Empty(t, res.Failures)
	assert.Equal(t, want, string(res.Output))
	assert.Equal(t, []string{"Point"}, res.Classes)

	var phases []string
	for _, p := range res.Timings.Phases {
		phases = append(phases, p.Name)
	}
	assert.Equal(t, []string{"parse", "scan", "extract", "validate", "emit"}, phases)
}

func TestInheritedSignature(t *testing.T) {
	out := rewrite(t, `from dataclasses import dataclass


@dataclass
class Base:
    a: int


@dataclass
class Sub(Base):
    b: str = "x"
`)
	assert.Contains(t, out, `    def __init__(self, a: int) -> None:
        self.a = a
`)
	assert.Contains(t, out, `    def __init__(self, a: int, b: str = "x") -> None:
        self.a = a
        self.b = b
`)
	assert.Contains(t, out, "class Sub(Base):\n    b: str = \"x\"\n\n    __match_args__ = ('a', 'b',)\n")
	assert.NotContains(t, out, "@dataclass")
	assert.NotContains(t, out, "import")
}

func TestFrozenClass(t *testing.T) {
	out := rewrite(t, `from dataclasses import dataclass


@dataclass(frozen=True)
class C:
    v: int
`)
	assert.True(t, strings.HasPrefix(out, "from dataclasses import FrozenInstanceError\n\n\nclass C:\n"), out)
	assert.Contains(t, out, "        object.__setattr__(self, 'v', v)\n")
	assert.Contains(t, out, "    def __eq__(self, other):\n")
	assert.Contains(t, out, "    def __hash__(self):\n        return hash((self.v,))\n")
	assert.Contains(t, out, `    def __setattr__(self, name, value):
        if type(self) is __class__ or name in ('v',):
            raise FrozenInstanceError(f"cannot assign to field {name!r}")
        super(__class__, self).__setattr__(name, value)
`)
	assert.Contains(t, out, "    def __delattr__(self, name):\n")
}

func TestFrozenThroughModuleImport(t *testing.T) {
	out := rewrite(t, `import dataclasses


@dataclasses.dataclass(frozen=True)
class C:
    v: int
`)
	assert.True(t, strings.HasPrefix(out, "import dataclasses\n\n\nclass C:\n"), out)
	assert.Contains(t, out, "raise dataclasses.FrozenInstanceError(")
}

func TestFactoryDefaultUsesSentinel(t *testing.T) {
	out := rewrite(t, `from dataclasses import dataclass, field


@dataclass
class Bag:
    items: list = field(default_factory=list)
`)
	want := `_MISSING = object()


class Bag:
    items: list

    __match_args__ = ('items',)

    def __init__(self, items: list = _MISSING) -> None:
        self.items = list() if items is _MISSING else items
`
	assert.True(t, strings.HasPrefix(out, want), out)
}

func TestFieldDefaultIsUnwrapped(t *testing.T) {
	out := rewrite(t, `from dataclasses import dataclass, field


@dataclass
class P:
    x: int = field(default=3, repr=False)
`)
	assert.Contains(t, out, "class P:\n    x: int = 3\n")
	assert.Contains(t, out, "def __init__(self, x: int = 3) -> None:")
	assert.Contains(t, out, `return self.__class__.__qualname__ + '()'`)
	assert.NotContains(t, out, "field(")
}

func TestKeptImportNames(t *testing.T) {
	out := rewrite(t, `from dataclasses import dataclass, asdict


@dataclass
class P:
    x: int


def dump(p):
    return asdict(p)
`)
	assert.True(t, strings.HasPrefix(out, "from dataclasses import asdict\n"), out)
}

func TestMembersBeforeExistingMethods(t *testing.T) {
	out := rewrite(t, `from __future__ import annotations

from dataclasses import dataclass
from typing import Optional


@dataclass
class FormatSpec:
    """Represents the components of a format specification."""

    align: str = ""
    width: int = 0  # columns
    decimals: Optional[int] = None
    def render(self) -> str:
        return self.align
`)
	assert.True(t, strings.HasPrefix(out, "from __future__ import annotations\n\nfrom typing import Optional\n"), out)
	assert.Contains(t, out, "    width: int = 0  # columns\n")
	assert.Contains(t, out, `    def __init__(self, align: str = "", width: int = 0, decimals: Optional[int] = None) -> None:`)
	assert.Contains(t, out, "    __hash__ = None\n\n    def render(self) -> str:\n        return self.align\n")
}

func TestRewriteIsIdempotent(t *testing.T) {
	first := rewrite(t, `from dataclasses import dataclass, field


@dataclass(frozen=True, order=True)
class Item:
    name: str
    tags: list = field(default_factory=list)
`)
	again := run(t, first, Options{})
	require.Empty(t, again.Failures)
	assert.False(t, again.Changed)
	assert.Equal(t, first, string(again.Output))
}

func TestLineEndingsAreRestored(t *testing.T) {
	src := "\ufefffrom dataclasses import dataclass\r\n\r\n\r\n@dataclass\r\nclass P:\r\n    x: int\r\n"
	res := run(t, src, Options{})
	require.Empty(t, res.Failures)
	out := string(res.Output)
	assert.True(t, strings.HasPrefix(out, "\ufeff"))
	assert.Equal(t, strings.Count(out, "\n"), strings.Count(out, "\r\n"))
	assert.Contains(t, out, "class P:\r\n    x: int\r\n\r\n    __match_args__ = ('x',)\r\n")
}

func TestNoMatchArgs(t *testing.T) {
	src := `from dataclasses import dataclass


@dataclass
class P:
    x: int


@dataclass(match_args=True)
class Q:
    y: int
`
	res := run(t, src, Options{NoMatchArgs: true})
	require.Empty(t, res.Failures)
	out := string(res.Output)
	assert.Equal(t, 1, strings.Count(out, "__match_args__"))
	assert.Contains(t, out, "__match_args__ = ('y',)")
}

func TestUnmarkedUnitIsUntouched(t *testing.T) {
	src := "class P:\n    x: int\n"
	res := run(t, src, Options{})
	assert.False(t, res.Changed)
	assert.Empty(t, res.Failures)
	assert.Equal(t, src, string(res.Output))
	assert.Empty(t, res.Classes)
}

func TestParseFailureKeepsText(t *testing.T) {
	src := "from dataclasses import dataclass\nx = = 1\n"
	res := run(t, src, Options{})
	require.True(t, res.Failed())
	assert.False(t, res.Changed)
	assert.Equal(t, src, string(res.Output))
	assert.Equal(t, diag.KindParse, res.Failures[0].Kind)
	assert.Empty(t, res.Failures[0].Class)
	require.NotNil(t, res.Failures[0].Location)
	assert.Equal(t, uint32(2), res.Failures[0].Location.Line)
}

func TestFailingClassIsLeftAlone(t *testing.T) {
	src := `from dataclasses import dataclass


@dataclass
class Bad:
    x: int = 0
    y: int


@dataclass
class Good:
    z: int
`
	res := run(t, src, Options{})
	require.Len(t, res.Failures, 1)
	f := res.Failures[0]
	assert.Equal(t, diag.KindOrdering, f.Kind)
	assert.Equal(t, "Bad", f.Class)
	assert.Contains(t, f.Message, "non-default argument 'y' follows default argument 'x'")
	require.NotNil(t, f.Location)
	assert.Contains(t, f.String(), "unit.py:")
	assert.Contains(t, f.String(), "OrderingError in Bad")

	require.True(t, res.Changed)
	out := string(res.Output)
	assert.Equal(t, []string{"Good"}, res.Classes)
	assert.Contains(t, out, "@dataclass\nclass Bad:\n    x: int = 0\n    y: int\n")
	assert.Contains(t, out, "\nclass Good:\n    z: int\n\n    __match_args__ = ('z',)\n")
	assert.True(t, strings.HasPrefix(out, "from dataclasses import dataclass\n"))
	assert.Len(t, res.Bag().Items(), 1)
}

func TestFailureKinds(t *testing.T) {
	tests := []struct {
		name string
		body string
		kind diag.Kind
	}{
		{"slots", "@dataclass(slots=True)\nclass P:\n    x: int\n", diag.KindUnsupportedOption},
		{"order without eq", "@dataclass(order=True, eq=False)\nclass P:\n    x: int\n", diag.KindConfigConflict},
		{"defined ordering", "@dataclass(order=True)\nclass P:\n    x: int\n    def __lt__(self, other):\n        return True\n", diag.KindConfigConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "from dataclasses import dataclass\n\n\n" + tt.body
			res := run(t, src, Options{})
			require.Len(t, res.Failures, 1)
			assert.Equal(t, tt.kind, res.Failures[0].Kind)
			assert.Equal(t, "P", res.Failures[0].Class)
			assert.False(t, res.Changed)
			assert.Equal(t, src, string(res.Output))
		})
	}
}

func TestKwOnlyMarkerIsRemoved(t *testing.T) {
	out := rewrite(t, `from dataclasses import dataclass, KW_ONLY


@dataclass
class K:
    a: int
    _: KW_ONLY
    b: int = 0
`)
	assert.True(t, strings.HasPrefix(out, "\n\nclass K:\n    a: int\n    b: int = 0\n\n    __match_args__ = ('a',)\n"), out)
	assert.Contains(t, out, "    def __init__(self, a: int, *, b: int = 0) -> None:\n")
	assert.NotContains(t, out, "KW_ONLY")
}

func TestUnboundClassVarIsField(t *testing.T) {
	out := rewrite(t, `from dataclasses import dataclass


@dataclass
class C:
    s: 'ClassVar[int]' = 3
    t: int = 4
`)
	assert.Contains(t, out, "    def __init__(self, s: 'ClassVar[int]' = 3, t: int = 4) -> None:\n")
	assert.Contains(t, out, "    __match_args__ = ('s', 't')\n")
}

func TestKwOnlyAloneLeavesNoPass(t *testing.T) {
	out := rewrite(t, `from dataclasses import dataclass, KW_ONLY


@dataclass
class K:
    _: KW_ONLY
`)
	assert.True(t, strings.HasPrefix(out, "\n\nclass K:\n\n    __match_args__ = ()\n"), out)
	assert.NotContains(t, out, "    pass\n    ")
	assert.NotContains(t, out, "KW_ONLY")
}
