// Package observ measures the stages of a rewrite.
package observ

import (
	"fmt"
	"io"
	"time"
)

// Phase is one measured stage of a unit.
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Note  string
}

// Timer records the stages of one unit in the order they ran.
type Timer struct {
	phases []Phase
	now    func() time.Time
}

// NewTimer returns an empty Timer on the wall clock.
func NewTimer() *Timer { return &Timer{phases: make([]Phase, 0, 5), now: time.Now} }

// Begin opens a phase and returns its index for End.
func (t *Timer) Begin(name string) int {
	t.phases = append(t.phases, Phase{Name: name, Start: t.now()})
	return len(t.phases) - 1
}

// End closes the phase; unknown indexes are ignored.
func (t *Timer) End(idx int, note string) {
	if idx < 0 || idx >= len(t.phases) {
		return
	}
	p := &t.phases[idx]
	p.Dur = t.now().Sub(p.Start)
	p.Note = note
}

// PhaseReport - фаза в сериализуемом виде.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report is the timing of a unit, or the sum over a batch.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
	// Units is the number of unit reports summed in; 1 for a single unit.
	Units int `json:"units,omitempty"`
}

// Report snapshots the recorded phases.
func (t *Timer) Report() Report {
	if len(t.phases) == 0 {
		return Report{}
	}
	r := Report{Phases: make([]PhaseReport, len(t.phases)), Units: 1}
	var total time.Duration
	for i, p := range t.phases {
		total += p.Dur
		r.Phases[i] = PhaseReport{Name: p.Name, DurationMS: millis(p.Dur), Note: p.Note}
	}
	r.TotalMS = millis(total)
	return r
}

// Add sums other into r phase by phase, keeping first-seen order. Notes of a
// single unit do not survive summing.
func (r *Report) Add(other Report) {
	for _, p := range other.Phases {
		j := -1
		for i := range r.Phases {
			if r.Phases[i].Name == p.Name {
				j = i
				break
			}
		}
		if j < 0 {
			r.Phases = append(r.Phases, PhaseReport{Name: p.Name})
			j = len(r.Phases) - 1
		}
		r.Phases[j].DurationMS += p.DurationMS
	}
	r.TotalMS += other.TotalMS
	r.Units += other.Units
}

// Write prints the table shown by --timings.
func (r Report) Write(w io.Writer) error {
	head := "timings:"
	if r.Units > 1 {
		head = fmt.Sprintf("timings (%d units):", r.Units)
	}
	if _, err := fmt.Fprintln(w, head); err != nil {
		return err
	}
	for _, p := range r.Phases {
		line := fmt.Sprintf("  %-12s %9.2f ms", p.Name, p.DurationMS)
		if p.Note != "" && r.Units <= 1 {
			line += "  // " + p.Note
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "  %-12s %9.2f ms\n", "total", r.TotalMS)
	return err
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
