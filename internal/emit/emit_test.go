package emit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plainclass/internal/ast"
	"plainclass/internal/diag"
	"plainclass/internal/extract"
	"plainclass/internal/parser"
	"plainclass/internal/scan"
	"plainclass/internal/source"
	"plainclass/internal/validate"
)

func emitSource(t *testing.T, src string) (Result, *diag.Diagnostic) {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("unit.py", []byte(src)))
	b := ast.NewBuilder(ast.Hints{}, nil)
	parsed := parser.ParseFile(file, b, parser.Options{})
	require.Zero(t, parsed.Errors, "source must parse")
	sr := scan.Scan(b, parsed.Module)
	extract.Extract(b, parsed.Module, sr)
	validate.Validate(sr.Unit, sr.Sentinel)
	return Emit(b, parsed.Module, sr)
}

func TestUnmarkedUnitHasNoEdits(t *testing.T) {
	src := "class A:\n    x: int = 0\n"
	res, d := emitSource(t, src)
	require.Nil(t, d)
	assert.False(t, res.Changed)
	assert.Zero(t, res.Edits)
	assert.Equal(t, src, string(res.Output))
}

func TestModuleImportIsDropped(t *testing.T) {
	res, d := emitSource(t, "import dataclasses\n\n\n@dataclasses.dataclass\nclass P:\n    x: int\n")
	require.Nil(t, d)
	require.True(t, res.Changed)
	out := string(res.Output)
	assert.NotContains(t, out, "import dataclasses")
	assert.NotContains(t, out, "@dataclasses.dataclass")
	assert.Contains(t, out, "def __init__(self, x: int) -> None:")
	assert.Equal(t, []string{"P"}, res.Classes)
}

func TestFrozenKeepsModuleImport(t *testing.T) {
	res, d := emitSource(t, "import dataclasses\n\n\n@dataclasses.dataclass(frozen=True)\nclass P:\n    x: int\n")
	require.Nil(t, d)
	out := string(res.Output)
	assert.Contains(t, out, "import dataclasses\n")
	assert.Contains(t, out, "raise dataclasses.FrozenInstanceError(")
	assert.NotContains(t, out, "from dataclasses import")
}

func TestUsedNamesStayImported(t *testing.T) {
	src := "from dataclasses import dataclass, asdict\n\n\n@dataclass\nclass P:\n    x: int\n\n\nprint(asdict(P(1)))\n"
	res, d := emitSource(t, src)
	require.Nil(t, d)
	out := string(res.Output)
	assert.Contains(t, out, "from dataclasses import asdict\n")
	assert.Contains(t, out, "print(asdict(P(1)))\n")
}

func TestReparse(t *testing.T) {
	fs := source.NewFileSet()
	orig := fs.Get(fs.AddVirtual("unit.py", []byte("x = 1\n")))

	assert.Nil(t, reparse(orig, []byte("class A:\n    pass\n")))

	d := reparse(orig, []byte("x = = 1\n"))
	require.NotNil(t, d)
	assert.Equal(t, diag.EmtReparseFailed, d.Code)
	assert.Contains(t, d.Message, "output line 1")
}

func TestPlaceholderPassIsDropped(t *testing.T) {
	res, d := emitSource(t, "from dataclasses import dataclass\n\n\n@dataclass\nclass E:\n    pass\n")
	require.Nil(t, d)
	out := string(res.Output)
	assert.NotContains(t, out, "class E:\n    pass\n")
	assert.NotContains(t, out, "\n    pass\n")
	assert.Contains(t, out, "class E:\n    __match_args__ = ()\n\n    def __init__(self) -> None:\n        pass\n")
}

func TestPlaceholderPassAfterDocstring(t *testing.T) {
	src := "from dataclasses import dataclass\n\n\n@dataclass\nclass E:\n    \"\"\"Empty.\"\"\"\n    pass\nx = 1\n"
	res, d := emitSource(t, src)
	require.Nil(t, d)
	out := string(res.Output)
	assert.Contains(t, out, "    \"\"\"Empty.\"\"\"\n\n    __match_args__ = ()\n\n    def __init__(self) -> None:\n")
	assert.NotContains(t, out, "\n    pass\n")
	// одна пустая строка перед кодом, следующим за классом
	assert.NotContains(t, out, "\n\n\nx = 1\n")
	assert.Contains(t, out, "\n\nx = 1\n")
}

func TestPassWithFieldsIsDropped(t *testing.T) {
	res, d := emitSource(t, "from dataclasses import dataclass\n\n\n@dataclass\nclass P:\n    pass\n    x: int\n")
	require.Nil(t, d)
	out := string(res.Output)
	assert.Contains(t, out, "class P:\n    x: int\n")
	assert.NotContains(t, out, "\n    pass\n")
}

func TestCommentedPassIsKept(t *testing.T) {
	res, d := emitSource(t, "from dataclasses import dataclass\n\n\n@dataclass\nclass E:\n    pass  # later\n")
	require.Nil(t, d)
	assert.Contains(t, string(res.Output), "    pass  # later\n")
}
