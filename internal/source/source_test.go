package source

import (
	"testing"
)

func TestAddSourceNormalizesAndRestores(t *testing.T) {
	fs := NewFileSet()
	raw := []byte("\xEF\xBB\xBFa = 1\r\nb = 2\r\n")
	id := fs.AddSource("m.py", raw, 0)
	f := fs.Get(id)

	if string(f.Content) != "a = 1\nb = 2\n" {
		t.Fatalf("content not normalized: %q", f.Content)
	}
	if f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 {
		t.Fatalf("flags = %b, want BOM and CRLF", f.Flags)
	}
	if got := string(f.Restore(append([]byte(nil), f.Content...))); got != string(raw) {
		t.Errorf("Restore() = %q, want %q", got, raw)
	}
}

func TestResolveLineCol(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("m.py", []byte("ab\ncd\n\nef"))
	f := fs.Get(id)

	tests := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{1, 1}},
		{2, LineCol{1, 3}}, // сам '\n' принадлежит первой строке
		{3, LineCol{2, 1}},
		{6, LineCol{3, 1}},
		{7, LineCol{4, 1}},
		{8, LineCol{4, 2}},
	}
	for _, tt := range tests {
		if got := f.Position(tt.off); got != tt.want {
			t.Errorf("Position(%d) = %+v, want %+v", tt.off, got, tt.want)
		}
	}
	start, end := fs.Resolve(Span{File: id, Start: 3, End: 8})
	if start != (LineCol{2, 1}) || end != (LineCol{4, 2}) {
		t.Errorf("Resolve() = %+v..%+v", start, end)
	}
}

func TestGetLineAndBounds(t *testing.T) {
	fs := NewFileSet()
	f := fs.Get(fs.AddVirtual("m.py", []byte("one\ntwo\nthree")))

	if got := f.GetLine(2); got != "two" {
		t.Errorf("GetLine(2) = %q", got)
	}
	if got := f.GetLine(3); got != "three" {
		t.Errorf("GetLine(3) = %q", got)
	}
	if got := f.GetLine(9); got != "" {
		t.Errorf("GetLine(9) = %q, want empty", got)
	}
	if got := f.LineStart(6); got != 4 {
		t.Errorf("LineStart(6) = %d, want 4", got)
	}
	if got := f.LineEnd(4); got != 8 {
		t.Errorf("LineEnd(4) = %d, want 8", got)
	}
	if got := f.LineEnd(9); got != f.Len() {
		t.Errorf("LineEnd on last line = %d, want %d", got, f.Len())
	}
}

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()
	id1 := fs.AddVirtual("pkg/m.py", []byte("x = 1"))
	id2 := fs.AddVirtual("pkg/./m.py", []byte("x = 2"))
	if id1 == id2 {
		t.Fatal("Add must always allocate a new FileID")
	}
	latest, ok := fs.GetLatest("pkg/m.py")
	if !ok || latest != id2 {
		t.Errorf("GetLatest() = %d,%v want %d", latest, ok, id2)
	}
	if string(fs.Get(id1).Content) != "x = 1" {
		t.Error("older version must stay reachable")
	}
}

func TestSpanOps(t *testing.T) {
	a := Span{File: 1, Start: 10, End: 20}
	b := Span{File: 1, Start: 15, End: 30}

	if got := a.Cover(b); got != (Span{File: 1, Start: 10, End: 30}) {
		t.Errorf("Cover() = %v", got)
	}
	if !a.Overlaps(b) || a.Overlaps(Span{File: 1, Start: 20, End: 25}) {
		t.Error("Overlaps is half-open")
	}
	if !a.Contains(Span{File: 1, Start: 12, End: 20}) {
		t.Error("Contains() should include the end boundary")
	}
	if got := a.Tail(); got != (Span{File: 1, Start: 20, End: 20}) || !got.Empty() {
		t.Errorf("Tail() = %v", got)
	}
	if a.Cover(Span{File: 2, Start: 0, End: 100}) != a {
		t.Error("Cover must ignore spans from other files")
	}
}

func TestInterner(t *testing.T) {
	in := NewInterner()
	a := in.Intern("field")
	b := in.Intern("field")
	if a != b || a == NoStringID {
		t.Fatalf("Intern() ids %d, %d", a, b)
	}
	if s := in.MustLookup(a); s != "field" {
		t.Errorf("MustLookup() = %q", s)
	}
	if _, ok := in.Lookup(StringID(99)); ok {
		t.Error("Lookup of unknown id must fail")
	}
	if in.Len() != 2 {
		t.Errorf("Len() = %d, want 2", in.Len())
	}
}
