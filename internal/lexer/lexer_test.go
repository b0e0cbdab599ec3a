package lexer_test

import (
	"strings"
	"testing"

	"plainclass/internal/diag"
	"plainclass/internal/lexer"
	"plainclass/internal/source"
	"plainclass/internal/token"
)

func lex(t *testing.T, src string) ([]token.Token, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	f := fs.Get(fs.AddVirtual("test.py", []byte(src)))
	bag := diag.NewBag(32)
	toks := lexer.Tokenize(f, lexer.Options{Reporter: diag.BagReporter{Bag: bag}})
	return toks, bag
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, tk := range toks {
		out[i] = tk.Kind
	}
	return out
}

func expectKinds(t *testing.T, src string, want ...token.Kind) []token.Token {
	t.Helper()
	toks, bag := lex(t, src)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("kinds = %v\nwant    %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("kind[%d] = %v, want %v\nall: %v", i, got[i], want[i], got)
		}
	}
	return toks
}

func TestIndentDedent(t *testing.T) {
	src := "class A:\n    x: int\n\n    def f(self):\n        pass\ny = 1\n"
	expectKinds(t, src,
		token.KwClass, token.Name, token.Colon, token.Newline,
		token.Indent, token.Name, token.Colon, token.Name, token.Newline,
		token.KwDef, token.Name, token.LParen, token.Name, token.RParen, token.Colon, token.Newline,
		token.Indent, token.KwPass, token.Newline,
		token.Dedent, token.Dedent, token.Name, token.Assign, token.Number, token.Newline,
		token.EOF,
	)
}

func TestEOFClosesBlocksWithoutTrailingNewline(t *testing.T) {
	expectKinds(t, "if x:\n    pass",
		token.KwIf, token.Name, token.Colon, token.Newline,
		token.Indent, token.KwPass, token.Newline, token.Dedent, token.EOF,
	)
}

func TestEmptyAndCommentOnly(t *testing.T) {
	expectKinds(t, "", token.EOF)
	toks := expectKinds(t, "# just a comment\n\n", token.EOF)
	if !toks[0].HasComment() {
		t.Error("comment must be kept as EOF leading trivia")
	}
}

func TestBracketsJoinLines(t *testing.T) {
	src := "x = (1,\n     2)\n"
	expectKinds(t, src,
		token.Name, token.Assign, token.LParen, token.Number, token.Comma,
		token.Number, token.RParen, token.Newline, token.EOF,
	)
}

func TestBackslashContinuation(t *testing.T) {
	toks := expectKinds(t, "x = 1 + \\\n    2\n",
		token.Name, token.Assign, token.Number, token.Plus, token.Number, token.Newline, token.EOF,
	)
	found := false
	for _, tr := range toks[4].Leading {
		if tr.Kind == token.TriviaContinuation {
			found = true
		}
	}
	if !found {
		t.Error("continuation trivia missing")
	}
}

func TestCommentLinesDoNotChangeIndent(t *testing.T) {
	src := "class A:\n# top-level comment\n    x: int\n"
	expectKinds(t, src,
		token.KwClass, token.Name, token.Colon, token.Newline,
		token.Indent, token.Name, token.Colon, token.Name, token.Newline,
		token.Dedent, token.EOF,
	)
}

func TestStrings(t *testing.T) {
	tests := []string{
		`"plain"`,
		`'single'`,
		`r"raw\d"`,
		`b'bytes'`,
		`"""triple
spanning"""`,
		`f"{x!r} and {y:>{width}}"`,
		`f"{d["key"]}"`,
		`f'{ {"a": 1}["a"] }'`,
		`f"{{literal}}"`,
		`rf"{x}\n"`,
		`f"\N{BULLET} {x}"`,
		`"esc \" quote"`,
	}
	for _, src := range tests {
		toks := expectKinds(t, src+"\n", token.String, token.Newline, token.EOF)
		if toks[0].Text != src {
			t.Errorf("Text = %q, want %q", toks[0].Text, src)
		}
	}
}

func TestUnterminatedString(t *testing.T) {
	_, bag := lex(t, "x = 'abc\n")
	if !bag.HasErrors() || bag.Items()[0].Code != diag.LexUnterminatedString {
		t.Fatalf("want unterminated string error, got %v", bag.Items())
	}
}

func TestNumbers(t *testing.T) {
	for _, src := range []string{"0", "1_000", "0x1F", "0o17", "0b1010", "1.5", "1.", ".5", "1e-3", "2.5E+10", "3j"} {
		toks := expectKinds(t, src+"\n", token.Number, token.Newline, token.EOF)
		if toks[0].Text != src {
			t.Errorf("Text = %q, want %q", toks[0].Text, src)
		}
	}
	_, bag := lex(t, "12abc\n")
	if !bag.HasErrors() {
		t.Error("12abc must be rejected")
	}
}

func TestOperators(t *testing.T) {
	expectKinds(t, "a **= b // c -> d := e ... != f @ g\n",
		token.Name, token.AugAssign, token.Name, token.DoubleSlash, token.Name,
		token.Arrow, token.Name, token.Walrus, token.Name, token.Ellipsis,
		token.NotEq, token.Name, token.At, token.Name, token.Newline, token.EOF,
	)
}

func TestBadDedent(t *testing.T) {
	_, bag := lex(t, "if x:\n        a\n    b\n")
	if !bag.HasErrors() || bag.Items()[0].Code != diag.LexBadDedent {
		t.Fatalf("want bad dedent, got %v", bag.Items())
	}
}

func TestTabsAdvanceToMultipleOfEight(t *testing.T) {
	expectKinds(t, "if x:\n\ty\n        z\n",
		token.KwIf, token.Name, token.Colon, token.Newline,
		token.Indent, token.Name, token.Newline, token.Name, token.Newline,
		token.Dedent, token.EOF,
	)
}

func TestUnicodeIdentifiers(t *testing.T) {
	toks := expectKinds(t, "ﬁeld = 1\n", token.Name, token.Assign, token.Number, token.Newline, token.EOF)
	if got := lexer.NormalizeIdent(toks[0].Text); got != "field" {
		t.Errorf("NormalizeIdent(%q) = %q, want field", toks[0].Text, got)
	}
}

func TestSpansMatchText(t *testing.T) {
	src := "@dataclass(order=True)\nclass P:\n    x: int = 0  # comment\n"
	toks, _ := lex(t, src)
	for _, tk := range toks {
		if tk.Span.Empty() {
			continue
		}
		if got := src[tk.Span.Start:tk.Span.End]; got != tk.Text {
			t.Errorf("span %v covers %q, token text %q", tk.Span, got, tk.Text)
		}
	}
	for _, tk := range toks {
		if tk.Kind == token.Newline && strings.Contains(src[:tk.Span.Start], "# comment") && !tk.HasComment() {
			t.Error("trailing comment must lead the Newline")
		}
	}
}
