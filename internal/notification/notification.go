package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"gocloud.dev/pubsub"

	"github.com/ossf/content-triage/pkg/api/notification"
)

// PublishTriageCompletion sends a TriageComplete message to notificationTopic.
func PublishTriageCompletion(ctx context.Context, notificationTopic *pubsub.Topic, msg notification.TriageComplete) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode completion notification: %w", err)
	}
	err = notificationTopic.Send(ctx, &pubsub.Message{
		Body: body,
		Metadata: map[string]string{
			"source": msg.Key.Source,
			"path":   msg.Key.Path,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send completion notification: %w", err)
	}
	return nil
}

// ParseJSON takes in a notification message and returns the TriageComplete
// struct it holds.
func ParseJSON(msg *pubsub.Message) (notification.TriageComplete, error) {
	n := notification.TriageComplete{}
	if err := json.Unmarshal(msg.Body, &n); err != nil {
		return n, fmt.Errorf("error unmarshalling json: %w", err)
	}
	return n, nil
}
