package notification

import (
	"context"
	"reflect"
	"testing"

	"gocloud.dev/pubsub"
	_ "gocloud.dev/pubsub/mempubsub"

	"github.com/ossf/content-triage/pkg/api/notification"
	"github.com/ossf/content-triage/pkg/api/triage"
)

func TestPublishTriageCompletion(t *testing.T) {
	ctx := context.Background()
	topic, err := pubsub.OpenTopic(ctx, "mem://notifications")
	if err != nil {
		t.Fatalf("OpenTopic() error = %v", err)
	}
	defer topic.Shutdown(ctx)

	sub, err := pubsub.OpenSubscription(ctx, "mem://notifications")
	if err != nil {
		t.Fatalf("OpenSubscription() error = %v", err)
	}
	defer sub.Shutdown(ctx)

	want := notification.TriageComplete{
		Key:               triage.Key{Source: "gs://objects", Path: "a/b.bin"},
		DetectedType:      "ZIP",
		CompressionLikely: true,
	}
	if err := PublishTriageCompletion(ctx, topic, want); err != nil {
		t.Fatalf("PublishTriageCompletion() error = %v", err)
	}

	msg, err := sub.Receive(ctx)
	if err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	msg.Ack()

	if msg.Metadata["path"] != "a/b.bin" || msg.Metadata["source"] != "gs://objects" {
		t.Errorf("Metadata = %v", msg.Metadata)
	}
	got, err := ParseJSON(msg)
	if err != nil {
		t.Fatalf("ParseJSON() error = %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseJSON() = %+v, want %+v", got, want)
	}
}

func TestParseJSONInvalid(t *testing.T) {
	if _, err := ParseJSON(&pubsub.Message{Body: []byte("{")}); err == nil {
		t.Errorf("ParseJSON() error = nil, want an error")
	}
}
