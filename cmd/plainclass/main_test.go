package main

import (
	"bytes"
	"strings"
	"testing"

	"plainclass/internal/config"
	"plainclass/internal/driver"
	"plainclass/internal/transform"
)

func TestReadUIMode(t *testing.T) {
	cases := []struct {
		input string
		want  uiMode
	}{
		{"", uiModeAuto},
		{"auto", uiModeAuto},
		{" ON ", uiModeOn},
		{"off", uiModeOff},
	}
	for _, tc := range cases {
		got, err := readUIMode(tc.input)
		if err != nil {
			t.Fatalf("readUIMode(%q) error: %v", tc.input, err)
		}
		if got != tc.want {
			t.Fatalf("readUIMode(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
	if _, err := readUIMode("sometimes"); err == nil {
		t.Fatal("expected error for unknown ui mode")
	}
}

func TestShouldUseTUI(t *testing.T) {
	if !shouldUseTUI(uiModeOn, config.ModeStdout) {
		t.Fatal("--ui=on must force the progress view")
	}
	if shouldUseTUI(uiModeOff, config.ModeWrite) {
		t.Fatal("--ui=off must disable the progress view")
	}
	if shouldUseTUI(uiModeAuto, config.ModeStdout) {
		t.Fatal("auto must stay quiet when units go to stdout")
	}
}

func TestWriteOutputsStdout(t *testing.T) {
	report := &driver.Report{Units: []driver.UnitResult{
		{Input: driver.Input{Path: "a.py"}, Result: &transform.Result{Output: []byte("a = 1\n")}},
		{Input: driver.Input{Path: "b.py"}, Result: &transform.Result{Output: []byte("b = 2\n")}},
	}}
	var buf bytes.Buffer
	if err := writeOutputs(&buf, report, config.ModeStdout); err != nil {
		t.Fatalf("writeOutputs: %v", err)
	}
	want := "# ==> a.py <==\na = 1\n# ==> b.py <==\nb = 2\n"
	if buf.String() != want {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}

	buf.Reset()
	report.Units = report.Units[:1]
	if err := writeOutputs(&buf, report, config.ModeStdout); err != nil {
		t.Fatalf("writeOutputs: %v", err)
	}
	if buf.String() != "a = 1\n" {
		t.Fatalf("single unit must be printed bare, got %q", buf.String())
	}
}

func TestPrintSummary(t *testing.T) {
	report := &driver.Report{Units: []driver.UnitResult{
		{Input: driver.Input{Path: "a.py"}, Result: &transform.Result{Changed: true, Classes: []string{"A", "B"}}},
		{Input: driver.Input{Path: "b.py"}, Result: &transform.Result{}, Cached: true},
	}}
	var buf bytes.Buffer
	printSummary(&buf, report, config.ModeCheck)
	got := buf.String()
	if !strings.HasPrefix(got, "2 file(s), 1 would change, 2 class(es), 1 cached in ") {
		t.Fatalf("unexpected summary %q", got)
	}
}
