package worker

import (
	"context"
	"log/slog"

	"github.com/ossf/content-triage/internal/log"
	"github.com/ossf/content-triage/internal/triage"
)

/*
NOTE: These strings may be matched by log based metrics, and so should be
changed with care.
*/
const (
	triageCompleteLogMsg = "Triage completed successfully"
	triageErrorLogMsg    = "Triage error"
	gotRequestLogMsg     = "Got request"
)

// LocalSource is the Key source used for files read from the local filesystem.
const LocalSource = "local"

// LogRequest records that a request for triage was received by the worker.
func LogRequest(ctx context.Context, bucket, path, declaredType, bucketOverride string) {
	slog.InfoContext(ctx, gotRequestLogMsg,
		log.LabelAttr("bucket", bucket),
		log.LabelAttr("path", path),
		"declared_type", declaredType,
		"bucket_override", bucketOverride,
	)
}

// LogTriageResult records the outcome of analysing one object.
func LogTriageResult(ctx context.Context, path string, r *triage.Result, cached bool) {
	attrs := []any{
		log.LabelAttr("path", path),
		"sample_size", r.SampleSize,
		"file_size", r.FileSize,
		"cached", cached,
	}
	if r.Classification != nil {
		attrs = append(attrs,
			"detected_type", r.Classification.DetectedType,
			"is_binary", r.Classification.IsBinary,
			"confidence", string(r.Classification.Confidence))
	}
	slog.InfoContext(ctx, triageCompleteLogMsg, attrs...)
}

// LogTriageError indicates that an object could not be triaged.
func LogTriageError(ctx context.Context, path string, err error) {
	slog.WarnContext(ctx, triageErrorLogMsg,
		log.LabelAttr("path", path),
		"error", err)
}
