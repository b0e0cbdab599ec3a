package emit

import (
	"fmt"

	"plainclass/internal/ast"
	"plainclass/internal/diag"
	"plainclass/internal/parser"
	"plainclass/internal/source"
)

// reparse checks that the rewritten text is still a valid unit.
func reparse(orig *source.File, out []byte) *diag.Diagnostic {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual(orig.Path, out))
	bag := diag.NewBag(1)
	b := ast.NewBuilder(ast.Hints{}, nil)
	res := parser.ParseFile(file, b, parser.Options{MaxErrors: 1, Reporter: diag.BagReporter{Bag: bag}})
	if res.Errors == 0 {
		return nil
	}
	msg := "unknown error"
	if first, ok := bag.First(); ok {
		pos := file.Position(first.Primary.Start)
		msg = fmt.Sprintf("%s at output line %d, column %d", first.Message, pos.Line, pos.Col)
	}
	return diag.Errorf(diag.EmtReparseFailed, source.Span{File: orig.ID}, "rewritten unit does not parse: %s", msg)
}
