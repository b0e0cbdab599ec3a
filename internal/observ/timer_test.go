package observ

import (
	"bytes"
	"testing"
	"time"
)

func fakeClock(step time.Duration) func() time.Time {
	cur := time.Unix(0, 0)
	return func() time.Time {
		cur = cur.Add(step)
		return cur
	}
}

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	tm.now = fakeClock(2 * time.Millisecond)
	i := tm.Begin("parse")
	tm.End(i, "12 tokens")
	j := tm.Begin("emit")
	tm.End(j, "")
	tm.End(7, "ignored")

	r := tm.Report()
	if len(r.Phases) != 2 || r.Units != 1 {
		t.Fatalf("unexpected report %+v", r)
	}
	if r.Phases[0].Name != "parse" || r.Phases[0].DurationMS != 2 || r.Phases[0].Note != "12 tokens" {
		t.Fatalf("unexpected first phase %+v", r.Phases[0])
	}
	if r.TotalMS != 4 {
		t.Fatalf("total = %v, want 4", r.TotalMS)
	}
}

func TestReportAdd(t *testing.T) {
	var sum Report
	sum.Add(Report{TotalMS: 3, Units: 1, Phases: []PhaseReport{{Name: "parse", DurationMS: 1}, {Name: "emit", DurationMS: 2}}})
	sum.Add(Report{TotalMS: 5, Units: 1, Phases: []PhaseReport{{Name: "parse", DurationMS: 4}, {Name: "scan", DurationMS: 1}}})

	if sum.Units != 2 || sum.TotalMS != 8 {
		t.Fatalf("unexpected sum %+v", sum)
	}
	want := []PhaseReport{{Name: "parse", DurationMS: 5}, {Name: "emit", DurationMS: 2}, {Name: "scan", DurationMS: 1}}
	if len(sum.Phases) != len(want) {
		t.Fatalf("phases = %+v", sum.Phases)
	}
	for i := range want {
		if sum.Phases[i] != want[i] {
			t.Fatalf("phase %d = %+v, want %+v", i, sum.Phases[i], want[i])
		}
	}
}

func TestReportWrite(t *testing.T) {
	r := Report{TotalMS: 1.5, Units: 1, Phases: []PhaseReport{{Name: "parse", DurationMS: 1.5, Note: "3 tokens"}}}
	var buf bytes.Buffer
	if err := r.Write(&buf); err != nil {
		t.Fatal(err)
	}
	want := "timings:\n  parse             1.50 ms  // 3 tokens\n  total             1.50 ms\n"
	if buf.String() != want {
		t.Fatalf("got:\n%q\nwant:\n%q", buf.String(), want)
	}
}
