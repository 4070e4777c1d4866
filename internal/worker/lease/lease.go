/*
Package lease keeps pubsub messages from being redelivered while they are
still being processed.

A Keeper renews the acknowledgement deadline of a held message shortly before
it expires, for as long as the Lease is held. Only GCP Pub/Sub subscriptions
support renewal; for any other driver (or when the LeaseExtender feature is
disabled) renewals are no-ops and the subscription's own deadline applies.
*/
package lease

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"gocloud.dev/pubsub"
	"gocloud.dev/pubsub/gcppubsub"

	"github.com/ossf/content-triage/internal/featureflags"
)

const (
	defaultGracePeriod = 60 * time.Second
	defaultDeadline    = 300 * time.Second
)

var ErrInvalidGracePeriod = errors.New("invalid grace period")

// renewer talks to the pubsub service on behalf of a Keeper.
type renewer interface {
	// Renew sets the acknowledgement deadline of msg to deadline from now.
	Renew(ctx context.Context, msg *pubsub.Message, deadline time.Duration) error

	// SubscriptionDeadline returns the acknowledgement deadline configured on
	// the subscription, or zero if it is not known.
	SubscriptionDeadline(ctx context.Context) (time.Duration, error)
}

// Keeper hands out leases on messages received from one subscription.
// Renewals happen every Deadline - GracePeriod.
type Keeper struct {
	renewer     renewer
	Deadline    time.Duration
	GracePeriod time.Duration
}

func renewerFor(u *url.URL, sub *pubsub.Subscription) (renewer, error) {
	if !featureflags.LeaseExtender.Enabled() {
		return noopRenewer{}, nil
	}
	if u.Scheme == gcppubsub.Scheme {
		return newGCPRenewer(u, sub)
	}
	return noopRenewer{}, nil
}

// New returns a Keeper for the subscription sub, which was opened from subURL.
func New(ctx context.Context, subURL string, sub *pubsub.Subscription) (*Keeper, error) {
	u, err := url.Parse(subURL)
	if err != nil {
		return nil, err
	}

	r, err := renewerFor(u, sub)
	if err != nil {
		return nil, err
	}

	deadline, err := r.SubscriptionDeadline(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription deadline: %w", err)
	}
	if deadline == 0 {
		deadline = defaultDeadline
	}

	return &Keeper{
		renewer:     r,
		Deadline:    deadline,
		GracePeriod: defaultGracePeriod,
	}, nil
}

// Lease is a hold on a single message. Call Release when processing of the
// message ends, whether or not it was acked.
type Lease struct {
	cancel   context.CancelFunc
	exited   chan struct{}
	err      error
	renewals atomic.Int64
	once     sync.Once
}

// Hold starts renewing the deadline of msg in the background. onRenew, if not
// nil, is called after every successful renewal.
//
// Renewal stops at the first error, which is reported by Release, or when ctx
// is done.
func (k *Keeper) Hold(ctx context.Context, msg *pubsub.Message, onRenew func()) (*Lease, error) {
	period := k.Deadline - k.GracePeriod
	if period <= 0 {
		return nil, fmt.Errorf("%w: deadline %v is not larger than grace period %v", ErrInvalidGracePeriod, k.Deadline, k.GracePeriod)
	}

	renewCtx, cancel := context.WithCancel(ctx)
	l := &Lease{
		cancel: cancel,
		exited: make(chan struct{}),
	}

	go func() {
		defer close(l.exited)
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for {
			select {
			case <-renewCtx.Done():
				return
			case <-ticker.C:
				if err := k.renewer.Renew(renewCtx, msg, k.Deadline); err != nil {
					if renewCtx.Err() == nil {
						l.err = err
					}
					return
				}
				l.renewals.Add(1)
				if onRenew != nil {
					onRenew()
				}
			}
		}
	}()
	return l, nil
}

// Run holds a lease on msg while fn runs, and returns the error of fn, or the
// renewal error if fn succeeded.
func (k *Keeper) Run(ctx context.Context, msg *pubsub.Message, fn func(context.Context) error) error {
	l, err := k.Hold(ctx, msg, nil)
	if err != nil {
		return err
	}
	fnErr := fn(ctx)
	releaseErr := l.Release()
	if fnErr != nil {
		return fnErr
	}
	return releaseErr
}

// Active reports whether the lease is still being renewed.
func (l *Lease) Active() bool {
	select {
	case <-l.exited:
		return false
	default:
		return true
	}
}

// Renewals returns the number of successful renewals so far.
func (l *Lease) Renewals() int {
	return int(l.renewals.Load())
}

// Release stops renewing and returns the error that stopped renewal early,
// if any. Only the first call reports the error; later calls return nil.
func (l *Lease) Release() error {
	var err error
	l.once.Do(func() {
		l.cancel()
		<-l.exited
		err = l.err
	})
	return err
}
