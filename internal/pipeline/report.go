package pipeline

import (
	"time"

	"cathub/internal/media"
	"cathub/internal/metadata"
)

// Status is the result of handling one raw file.
type Status string

const (
	StatusOK      Status = "ok"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Outcome records what happened to one raw file during a Run.
type Outcome struct {
	Source     string
	Output     string
	Kind       media.Kind
	Action     Action
	Status     Status
	Registered bool
	Bytes      int64
	Elapsed    time.Duration
	Detail     string
	Error      string
	// ErrorCategory is the services marker label of a failure.
	ErrorCategory string
	// EncoderLog holds the encoder's combined output for failed encodes.
	EncoderLog string
}

// Report summarises a Run.
type Report struct {
	RunID        string
	StartedAt    time.Time
	FinishedAt   time.Time
	InputDir     string
	OutputDir    string
	MetadataPath string
	// InputCreated means the input folder was missing; the run created it and
	// stopped without touching metadata.
	InputCreated   bool
	MetadataStatus metadata.LoadStatus
	Outcomes       []Outcome
	Pruned         []string
	Dropped        []string
	Files          []string
	BytesWritten   int64
}

// Count returns how many outcomes carry the given action.
func (r Report) Count(action Action) int {
	n := 0
	for _, outcome := range r.Outcomes {
		if outcome.Action == action {
			n++
		}
	}
	return n
}

// Failed returns the outcomes whose handling failed.
func (r Report) Failed() []Outcome {
	var failed []Outcome
	for _, outcome := range r.Outcomes {
		if outcome.Status == StatusFailed {
			failed = append(failed, outcome)
		}
	}
	return failed
}

// Duration is the wall time of the run.
func (r Report) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Observer receives per-file progress callbacks during a Run.
type Observer interface {
	FileStarted(item Item, index, total int)
	FileFinished(outcome Outcome)
}

type nopObserver struct{}

func (nopObserver) FileStarted(Item, int, int) {}
func (nopObserver) FileFinished(Outcome)       {}
