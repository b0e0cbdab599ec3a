// Package transform runs the stages of the rewrite over one source unit:
// parse, scan, extract, validate, and emit. It performs no file I/O.
package transform

import (
	"fmt"

	"plainclass/internal/ast"
	"plainclass/internal/diag"
	"plainclass/internal/emit"
	"plainclass/internal/extract"
	"plainclass/internal/model"
	"plainclass/internal/observ"
	"plainclass/internal/parser"
	"plainclass/internal/scan"
	"plainclass/internal/source"
	"plainclass/internal/validate"
)

// Options tune a single run.
type Options struct {
	// MaxErrors caps the lexical and syntax diagnostics collected; 0 means 16.
	MaxErrors uint
	// NoMatchArgs skips __match_args__ for classes that do not ask for it explicitly.
	NoMatchArgs bool
	// FileSet receives the unit; a private one is used when nil.
	FileSet *source.FileSet
}

// Failure is one class or unit that could not be rewritten.
type Failure struct {
	Unit string
	Kind diag.Kind
	Code diag.Code
	// Class is empty for unit-level failures.
	Class    string
	Message  string
	Location *source.LineCol
}

func (f Failure) String() string {
	where := f.Unit
	if f.Location != nil {
		where = fmt.Sprintf("%s:%d:%d", f.Unit, f.Location.Line, f.Location.Col)
	}
	if f.Class != "" {
		return fmt.Sprintf("%s: %s in %s: %s", where, f.Kind, f.Class, f.Message)
	}
	return fmt.Sprintf("%s: %s: %s", where, f.Kind, f.Message)
}

// Result is the outcome for one unit. Output equals the input bytes when
// nothing changed or the unit failed as a whole.
type Result struct {
	Unit    string
	Output  []byte
	Changed bool
	// Classes are the qualnames of the rewritten classes.
	Classes     []string
	Failures    []Failure
	Diagnostics []diag.Diagnostic
	Timings     observ.Report
	// Model is the class model of the unit, nil when it did not parse.
	Model *model.Unit

	FileSet *source.FileSet
	File    *source.File
}

// Failed reports whether any class or the unit itself failed.
func (r *Result) Failed() bool {
	return len(r.Failures) > 0
}

// Unit rewrites the source text src of the unit named path.
func Unit(path string, src []byte, opts Options) *Result {
	fs := opts.FileSet
	if fs == nil {
		fs = source.NewFileSet()
	}
	file := fs.Get(fs.AddSource(path, src, source.FileVirtual))
	res := &Result{Unit: path, Output: src, FileSet: fs, File: file}
	timer := observ.NewTimer()
	defer func() { res.Timings = timer.Report() }()

	maxErrors := opts.MaxErrors
	if maxErrors == 0 {
		maxErrors = 16
	}
	bag := diag.NewBag(int(maxErrors)) //nolint:gosec // small positive limit
	b := ast.NewBuilder(ast.Hints{}, nil)

	idx := timer.Begin("parse")
	parsed := parser.ParseFile(file, b, parser.Options{MaxErrors: maxErrors, Reporter: diag.NewDedupReporter(diag.BagReporter{Bag: bag})})
	timer.End(idx, fmt.Sprintf("%d tokens", len(parsed.Module.Tokens)))
	if parsed.Errors > 0 {
		for _, d := range bag.Items() {
			res.unitFailure(d)
		}
		return res
	}

	idx = timer.Begin("scan")
	sr := scan.Scan(b, parsed.Module)
	res.Model = sr.Unit
	marked := sr.Unit.Marked()
	timer.End(idx, fmt.Sprintf("%d marked of %d classes", len(marked), len(sr.Unit.Classes)))
	if len(marked) == 0 {
		return res
	}
	if opts.NoMatchArgs {
		for _, c := range marked {
			if !c.Options.IsExplicit(model.KeyMatchArgs) {
				c.Options.MatchArgs = false
			}
		}
	}

	idx = timer.Begin("extract")
	extract.Extract(b, parsed.Module, sr)
	timer.End(idx, "")

	idx = timer.Begin("validate")
	validate.Validate(sr.Unit, sr.Sentinel)
	timer.End(idx, "")

	idx = timer.Begin("emit")
	out, unitErr := emit.Emit(b, parsed.Module, sr)
	timer.End(idx, fmt.Sprintf("%d edits", out.Edits))

	for _, c := range marked {
		if c.Failed() {
			res.classFailure(c.Failure)
		}
	}
	if unitErr != nil {
		res.unitFailure(*unitErr)
		res.Classes = nil
		return res
	}
	if out.Changed {
		res.Output = file.Restore(out.Output)
		res.Changed = true
		res.Classes = out.Classes
	}
	return res
}

func (r *Result) location(sp source.Span) *source.LineCol {
	if sp.File != r.File.ID {
		return nil
	}
	pos := r.File.Position(sp.Start)
	return &pos
}

func (r *Result) classFailure(d *diag.Diagnostic) {
	r.Diagnostics = append(r.Diagnostics, *d)
	r.Failures = append(r.Failures, Failure{
		Unit:     r.Unit,
		Kind:     d.Code.Kind(),
		Code:     d.Code,
		Class:    d.Class,
		Message:  d.Message,
		Location: r.location(d.Primary),
	})
}

func (r *Result) unitFailure(d diag.Diagnostic) {
	r.Diagnostics = append(r.Diagnostics, d)
	r.Failures = append(r.Failures, Failure{
		Unit:     r.Unit,
		Kind:     d.Code.Kind(),
		Code:     d.Code,
		Message:  d.Message,
		Location: r.location(d.Primary),
	})
}

// Bag collects the diagnostics for rendering.
func (r *Result) Bag() *diag.Bag {
	bag := diag.NewBag(max(len(r.Diagnostics), 1))
	for _, d := range r.Diagnostics {
		bag.Add(d)
	}
	bag.Sort()
	return bag
}
