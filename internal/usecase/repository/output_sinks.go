package repository

import (
	"context"

	"report_api/internal/domain/report"
)

// OutputArchive keeps a copy of generated outputs (e.g. in S3).
type OutputArchive interface {
	Archive(ctx context.Context, templateName string, out *report.Output) (string, error)
}

// RunRecorder stores a history entry for every generation attempt.
type RunRecorder interface {
	RecordRun(ctx context.Context, run report.Run) error
}
