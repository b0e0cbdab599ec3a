package driver

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"plainclass/internal/config"
	"plainclass/internal/logger"
	"plainclass/internal/observ"
	"plainclass/internal/transform"
)

// Options configures a batch run.
type Options struct {
	Jobs      int
	Transform transform.Options
	// Mode is one of the config.Mode* destinations.
	Mode   string
	OutDir string
	Cache  *DiskCache
	Sink   ProgressSink
}

// UnitResult is the outcome for one collected unit.
type UnitResult struct {
	Input
	// Result is nil when the unit could not be read.
	Result *transform.Result
	// Original is the unit text as read.
	Original []byte
	Cached   bool
	// Dest is the file written, empty when nothing was written.
	Dest string
	// Diff is the unified diff in diff mode.
	Diff string
	Err  error
}

// Failed reports a unit that could not be read, written, or fully transformed.
func (r *UnitResult) Failed() bool {
	return r.Err != nil || (r.Result != nil && r.Result.Failed())
}

// Changed reports whether the rewrite differs from the input.
func (r *UnitResult) Changed() bool {
	return r.Result != nil && r.Result.Changed
}

// Report aggregates a batch.
type Report struct {
	Units   []UnitResult
	Elapsed time.Duration
}

// Failed counts units that failed.
func (r *Report) Failed() int {
	n := 0
	for i := range r.Units {
		if r.Units[i].Failed() {
			n++
		}
	}
	return n
}

// Changed counts units whose rewrite differs from the input.
func (r *Report) Changed() int {
	n := 0
	for i := range r.Units {
		if r.Units[i].Changed() {
			n++
		}
	}
	return n
}

// Run transforms the inputs on a bounded worker pool. A failing unit never
// stops the others; the returned error is reserved for cancellation.
func Run(ctx context.Context, inputs []Input, opts Options) (*Report, error) {
	start := time.Now()
	log := logger.FromContext(ctx)
	if opts.Mode == "" {
		opts.Mode = config.ModeWrite
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	report := &Report{Units: make([]UnitResult, len(inputs))}
	if len(inputs) == 0 {
		return report, nil
	}
	for _, in := range inputs {
		notify(opts.Sink, Event{File: in.Path, Stage: StageRead, Status: StatusQueued})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(inputs)))
	for i, in := range inputs {
		g.Go(func() error {
			// Проверка отмены
			if err := gctx.Err(); err != nil {
				return err
			}
			unitStart := time.Now()
			// индекс i уникален для горутины, мьютекс не нужен
			report.Units[i] = runUnit(gctx, in, opts)
			ur := &report.Units[i]
			ev := Event{File: in.Path, Stage: StageWrite, Status: StatusDone, Changed: ur.Changed(), Cached: ur.Cached, Err: ur.Err, Elapsed: time.Since(unitStart)}
			if ur.Failed() {
				ev.Status = StatusFailed
			}
			notify(opts.Sink, ev)
			logUnit(log, ur, ev.Elapsed)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}
	report.Elapsed = time.Since(start)
	return report, nil
}

func runUnit(ctx context.Context, in Input, opts Options) UnitResult {
	log := logger.FromContext(ctx).With("unit", in.Path)
	ur := UnitResult{Input: in}

	notify(opts.Sink, Event{File: in.Path, Stage: StageRead, Status: StatusWorking})
	// #nosec G304 -- path comes from the command line
	src, err := os.ReadFile(in.Path)
	if err != nil {
		ur.Err = fmt.Errorf("read %s: %w", in.Path, err)
		return ur
	}
	ur.Original = src

	notify(opts.Sink, Event{File: in.Path, Stage: StageTransform, Status: StatusWorking})
	key := Key(src, opts.Transform)
	if cached, ok, err := opts.Cache.Get(key); err != nil {
		log.Warn("cache read failed", "err", err)
	} else if ok {
		log.Debug("cache hit", "key", fmt.Sprintf("%x", key[:6]))
		ur.Result = cachedResult(in.Path, cached)
		ur.Cached = true
	}
	if ur.Result == nil {
		ur.Result = transform.Unit(in.Path, src, opts.Transform)
		if !ur.Result.Failed() {
			entry := &CachedUnit{Output: ur.Result.Output, Changed: ur.Result.Changed, Classes: ur.Result.Classes}
			if err := opts.Cache.Put(key, entry); err != nil {
				log.Warn("cache write failed", "err", err)
			}
		}
	}

	notify(opts.Sink, Event{File: in.Path, Stage: StageWrite, Status: StatusWorking})
	if err := deliver(&ur, opts); err != nil {
		ur.Err = err
	}
	return ur
}

// deliver applies the destination policy of the mode.
func deliver(ur *UnitResult, opts Options) error {
	res := ur.Result
	switch opts.Mode {
	case config.ModeWrite:
		if !res.Changed {
			return nil
		}
		if err := WriteAtomic(ur.Path, res.Output); err != nil {
			return err
		}
		ur.Dest = ur.Path
	case config.ModeOutDir:
		dest, err := outPath(opts.OutDir, ur.Rel)
		if err != nil {
			return err
		}
		if err := WriteAtomic(dest, res.Output); err != nil {
			return err
		}
		ur.Dest = dest
	case config.ModeDiff:
		if res.Changed {
			diff, err := UnifiedDiff(ur.Path, ur.Original, res.Output)
			if err != nil {
				return err
			}
			ur.Diff = diff
		}
	case config.ModeStdout, config.ModeCheck:
	default:
		return fmt.Errorf("unknown output mode %q", opts.Mode)
	}
	return nil
}

func logUnit(log logger.Logger, ur *UnitResult, elapsed time.Duration) {
	log = log.With("unit", ur.Path)
	switch {
	case ur.Err != nil:
		log.Error("unit failed", "err", ur.Err)
	case ur.Result.Failed():
		for _, f := range ur.Result.Failures {
			log.Debug("class left untouched", "class", f.Class, "kind", f.Kind.String(), "code", f.Code.ID())
		}
		log.Info("unit has failures", "failures", len(ur.Result.Failures), "rewritten", len(ur.Result.Classes))
	default:
		log.Debug("unit done", "changed", ur.Result.Changed, "classes", len(ur.Result.Classes), "cached", ur.Cached, "elapsed", elapsed)
	}
	if ur.Dest != "" {
		log.Debug("wrote", "dest", ur.Dest)
	}
}

// Timings sums the per-phase durations of the batch.
func (r *Report) Timings() observ.Report {
	var total observ.Report
	for i := range r.Units {
		if res := r.Units[i].Result; res != nil {
			total.Add(res.Timings)
		}
	}
	return total
}
