package diag

import (
	"testing"

	"plainclass/internal/source"
)

func TestCodeIDAndKind(t *testing.T) {
	tests := []struct {
		code Code
		id   string
		kind Kind
	}{
		{LexBadDedent, "LEX1004", KindParse},
		{SynUnexpectedToken, "SYN2001", KindParse},
		{OptUnknownKey, "OPT3001", KindUnsupportedOption},
		{OrdNonDefaultAfterDefault, "ORD4001", KindOrdering},
		{CfgOrderWithoutEq, "CFG5001", KindConfigConflict},
		{EmtReparseFailed, "EMT6002", KindEmit},
		{UnknownCode, "E0000", KindNone},
	}
	for _, tt := range tests {
		if got := tt.code.ID(); got != tt.id {
			t.Errorf("%d.ID() = %q, want %q", tt.code, got, tt.id)
		}
		if got := tt.code.Kind(); got != tt.kind {
			t.Errorf("%s.Kind() = %v, want %v", tt.id, got, tt.kind)
		}
	}
	if !EmtOverlappingEdits.Internal() || CfgMutableDefault.Internal() {
		t.Error("only EMT codes are internal")
	}
	if KindOrdering.String() != "OrderingError" {
		t.Errorf("KindOrdering.String() = %q", KindOrdering.String())
	}
}

func TestBagLimitSortDedup(t *testing.T) {
	b := NewBag(3)
	sp := func(s, e uint32) source.Span { return source.Span{Start: s, End: e} }

	b.Add(NewError(CfgMutableDefault, sp(10, 12), "b"))
	b.Add(New(SevWarning, OrdInfo, sp(0, 1), "a"))
	b.Add(NewError(CfgMutableDefault, sp(10, 12), "b again"))
	if b.Add(NewError(EmtBadAnchor, sp(0, 0), "dropped")) {
		t.Fatal("Add must refuse past the limit")
	}

	b.Sort()
	if b.Items()[0].Message != "a" {
		t.Errorf("first after Sort = %q", b.Items()[0].Message)
	}
	b.Dedup()
	if b.Len() != 2 {
		t.Errorf("Len after Dedup = %d, want 2", b.Len())
	}
	if !b.HasErrors() || !b.HasWarnings() {
		t.Error("bag should report both errors and warnings")
	}
	first, ok := b.First()
	if !ok || first.Code != CfgMutableDefault {
		t.Errorf("First() = %v, %v", first.Code, ok)
	}
}

func TestReportBuilderEmitsOnce(t *testing.T) {
	bag := NewBag(10)
	r := BagReporter{Bag: bag}
	rb := ReportError(r, OptUnknownKey, source.Span{}, "unsupported option 'slots'").
		WithNote(source.Span{Start: 1, End: 2}, "marker here")
	rb.Emit()
	rb.Emit()
	if bag.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", bag.Len())
	}
	if len(bag.Items()[0].Notes) != 1 {
		t.Error("note lost")
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(10)
	r := NewDedupReporter(BagReporter{Bag: bag})
	for range 3 {
		r.Report(SynUnexpectedToken, SevError, source.Span{Start: 4, End: 5}, "unexpected ')'", nil, nil)
	}
	r.Report(SynUnexpectedToken, SevError, source.Span{Start: 4, End: 5}, "other", nil, nil)
	if bag.Len() != 2 {
		t.Errorf("Len() = %d, want 2", bag.Len())
	}
	if r.Suppressed() != 2 {
		t.Errorf("Suppressed() = %d, want 2", r.Suppressed())
	}
}

func TestFormatShortDiagnostics(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("pkg/models.py", []byte("a\nb\n"))

	diags := []Diagnostic{
		{
			Severity: SevWarning,
			Code:     CfgInfo,
			Message:  "another",
			Primary:  source.Span{File: id, Start: 2, End: 3},
		},
		{
			Severity: SevError,
			Code:     OrdNonDefaultAfterDefault,
			Message:  "first line\nsecond",
			Primary:  source.Span{File: id, Start: 0, End: 1},
			Notes:    []Note{{Span: source.Span{File: id, Start: 2, End: 3}, Msg: "note line"}},
		},
	}

	expected := "error ORD4001 pkg/models.py:1:1 first line second\n" +
		"note ORD4001 pkg/models.py:2:1 note line\n" +
		"warning CFG5000 pkg/models.py:2:1 another"
	if got := FormatShortDiagnostics(diags, fs, true); got != expected {
		t.Fatalf("unexpected short diagnostics:\nwant:\n%s\n\ngot:\n%s", expected, got)
	}
}
