package history

import "time"

// RunStatus summarises how a sync run ended.
type RunStatus string

const (
	RunSucceeded    RunStatus = "succeeded"
	RunFailed       RunStatus = "failed"
	RunInputCreated RunStatus = "input_created"
)

// Run is one recorded sync.
type Run struct {
	ID             string
	StartedAt      time.Time
	FinishedAt     time.Time
	Status         RunStatus
	ErrorMessage   string
	InputDir       string
	OutputDir      string
	MetadataPath   string
	MetadataStatus string
	Encoded        int
	Copied         int
	Reused         int
	Skipped        int
	Failed         int
	Files          int
	BytesWritten   int64
	Pruned         []string
	Dropped        []string
}

// Duration is the wall time of the run.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// FileResult is one recorded per-file outcome.
type FileResult struct {
	RunID         string
	Position      int
	Source        string
	Output        string
	Kind          string
	Action        string
	Status        string
	Registered    bool
	Bytes         int64
	Elapsed       time.Duration
	Detail        string
	ErrorMessage  string
	ErrorCategory string
}
