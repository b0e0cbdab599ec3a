package driver

import "time"

// Stage is the step a unit is in.
type Stage string

const (
	StageRead      Stage = "read"
	StageTransform Stage = "transform"
	StageWrite     Stage = "write"
)

// Status captures progress state within a stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	// StatusDone ends a unit that was rewritten or needed no change.
	StatusDone Status = "done"
	// StatusFailed ends a unit with at least one failure.
	StatusFailed Status = "failed"
)

// Event reports the progress of one unit; File is the collected path.
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Changed bool
	Cached  bool
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Events of different units arrive
// concurrently; OnEvent must be safe for that.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events to a channel.
type ChannelSink chan<- Event

func (s ChannelSink) OnEvent(ev Event) { s <- ev }

func notify(sink ProgressSink, ev Event) {
	if sink != nil {
		sink.OnEvent(ev)
	}
}
