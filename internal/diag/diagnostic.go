package diag

import (
	"fmt"

	"plainclass/internal/source"
)

type Note struct {
	Span source.Span
	Msg  string
}

// FixEdit replaces Span with NewText.
type FixEdit struct {
	Span    source.Span
	NewText string
}

// Fix is a suggested correction shown next to a diagnostic; it is never applied automatically.
type Fix struct {
	Title string
	Edits []FixEdit
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	// Class is the qualified name of the class the diagnostic belongs to, empty for unit-level ones.
	Class string
	Notes []Note
	Fixes []Fix
}

func New(sev Severity, code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
	}
}

func NewError(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}

func (d Diagnostic) WithFix(title string, edits ...FixEdit) Diagnostic {
	d.Fixes = append(d.Fixes, Fix{Title: title, Edits: edits})
	return d
}

func (d Diagnostic) WithClass(qualname string) Diagnostic {
	d.Class = qualname
	return d
}

// Errorf builds an error diagnostic that can travel as a Go error between stages.
func Errorf(code Code, primary source.Span, format string, args ...any) *Diagnostic {
	d := NewError(code, primary, fmt.Sprintf(format, args...))
	return &d
}

// Error implements error so a failing stage can return its diagnostic directly.
func (d *Diagnostic) Error() string {
	return d.Code.ID() + ": " + d.Message
}
