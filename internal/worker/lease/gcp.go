package lease

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	api "cloud.google.com/go/pubsub/apiv1"
	pb "cloud.google.com/go/pubsub/apiv1/pubsubpb"
	"gocloud.dev/pubsub"
	"gocloud.dev/pubsub/gcppubsub"
)

// Pub/Sub accepts acknowledgement deadlines between these bounds.
const (
	gcpMinDeadline = 10 * time.Second
	gcpMaxDeadline = 600 * time.Second
)

var subscriptionPathRE = regexp.MustCompile("^projects/.+/subscriptions/.+$")

type gcpRenewer struct {
	client *api.SubscriberClient
	path   string
}

// subscriptionPath accepts both gcppubsub://projects/P/subscriptions/S and
// the short form gcppubsub://P/S.
func subscriptionPath(u *url.URL) string {
	p := path.Join(u.Host, u.Path)
	if subscriptionPathRE.MatchString(p) {
		return p
	}
	return fmt.Sprintf("projects/%s/subscriptions/%s", u.Host, strings.TrimPrefix(u.Path, "/"))
}

func newGCPRenewer(u *url.URL, sub *pubsub.Subscription) (renewer, error) {
	if u.Scheme != gcppubsub.Scheme {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	var c *api.SubscriberClient
	if !sub.As(&c) {
		return nil, errors.New("not a GCP subscription")
	}
	return &gcpRenewer{client: c, path: subscriptionPath(u)}, nil
}

func clampDeadline(d time.Duration) time.Duration {
	return min(max(d, gcpMinDeadline), gcpMaxDeadline)
}

func (r *gcpRenewer) Renew(ctx context.Context, msg *pubsub.Message, deadline time.Duration) error {
	var rm *pb.ReceivedMessage
	if !msg.As(&rm) {
		return errors.New("not a GCP message")
	}

	err := r.client.ModifyAckDeadline(ctx, &pb.ModifyAckDeadlineRequest{
		Subscription:       r.path,
		AckIds:             []string{rm.AckId},
		AckDeadlineSeconds: int32(clampDeadline(deadline) / time.Second),
	})
	if err != nil {
		return fmt.Errorf("failed to extend message deadline: %w", err)
	}
	return nil
}

func (r *gcpRenewer) SubscriptionDeadline(ctx context.Context) (time.Duration, error) {
	s, err := r.client.GetSubscription(ctx, &pb.GetSubscriptionRequest{Subscription: r.path})
	if err != nil {
		return 0, err
	}
	return time.Duration(s.GetAckDeadlineSeconds()) * time.Second, nil
}
