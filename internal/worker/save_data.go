package worker

import (
	"context"
	"fmt"

	"gocloud.dev/pubsub"

	"github.com/ossf/content-triage/internal/notification"
	"github.com/ossf/content-triage/internal/resultstore"
	"github.com/ossf/content-triage/internal/triage"
	notificationapi "github.com/ossf/content-triage/pkg/api/notification"
	api "github.com/ossf/content-triage/pkg/api/triage"
)

// SaveRecord saves rec to dest. If dest is nil, this is a no-op.
func SaveRecord(ctx context.Context, dest *resultstore.ResultStore, rec *api.Record) error {
	if dest == nil {
		// nothing to do
		return nil
	}
	k := api.Key{Source: rec.Source, Path: rec.Path}
	if err := dest.Save(ctx, k, rec); err != nil {
		return fmt.Errorf("failed to save triage record to %s: %w", dest, err)
	}
	return nil
}

// CompletionFor builds the completion notification for the triage of k.
func CompletionFor(k api.Key, r *triage.Result) notificationapi.TriageComplete {
	msg := notificationapi.TriageComplete{Key: k}
	if c := r.Classification; c != nil {
		msg.DetectedType = c.DetectedType
		msg.CompressionLikely = c.CompressionLikely
	} else if r.Signature != nil {
		msg.DetectedType = r.Signature.Label
	}
	return msg
}

// NotifyCompletion publishes the completion notification for k to topic. If
// topic is nil, this is a no-op.
func NotifyCompletion(ctx context.Context, topic *pubsub.Topic, k api.Key, r *triage.Result) error {
	if topic == nil {
		return nil
	}
	return notification.PublishTriageCompletion(ctx, topic, CompletionFor(k, r))
}
