package pipeline

import "time"

// Stage is one step of a run, in execution order.
type Stage int

const (
	StageProbe Stage = iota
	StageIngest
	StageExternalize
	StageCompile
	StageArchive
	StageEmit
)

// Stages lists every stage in execution order.
var Stages = []Stage{StageProbe, StageIngest, StageExternalize, StageCompile, StageArchive, StageEmit}

func (s Stage) String() string {
	switch s {
	case StageProbe:
		return "probe"
	case StageIngest:
		return "ingest"
	case StageExternalize:
		return "externalize"
	case StageCompile:
		return "compile"
	case StageArchive:
		return "archive"
	case StageEmit:
		return "emit"
	}
	return "unknown"
}

// State is the progress of a stage.
type State int

const (
	StateStarted State = iota
	StateFinished
	StateFailed
	StateSkipped
)

func (s State) String() string {
	switch s {
	case StateStarted:
		return "started"
	case StateFinished:
		return "finished"
	case StateFailed:
		return "failed"
	case StateSkipped:
		return "skipped"
	}
	return "unknown"
}

// Event reports a stage transition to an Observer.
type Event struct {
	Err     error
	Summary string
	Elapsed time.Duration
	Stage   Stage
	State   State
}

// Observer receives stage events synchronously from the running pipeline.
type Observer func(Event)
