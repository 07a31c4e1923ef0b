package report

import "time"

// RunStatus is the outcome of one generation attempt.
type RunStatus string

const (
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// Run describes one generation attempt for the history log.
type Run struct {
	Template   string
	Format     ExportFormat
	Records    int
	Size       int
	ArchiveKey string
	Status     RunStatus
	Error      string
	ErrorKind  string
	Duration   time.Duration
}
