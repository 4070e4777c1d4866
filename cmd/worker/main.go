package main

import (
	"context"
	"errors"
	"fmt"
	golog "log"
	"log/slog"
	"net/http"
	_ "net/http/pprof"
	"os"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/s3blob"
	"gocloud.dev/gcerrors"
	"gocloud.dev/pubsub"
	_ "gocloud.dev/pubsub/gcppubsub"
	_ "gocloud.dev/pubsub/kafkapubsub"
	_ "gocloud.dev/pubsub/mempubsub"

	"github.com/ossf/content-triage/internal/featureflags"
	"github.com/ossf/content-triage/internal/log"
	"github.com/ossf/content-triage/internal/resultstore"
	"github.com/ossf/content-triage/internal/sample"
	"github.com/ossf/content-triage/internal/triage"
	"github.com/ossf/content-triage/internal/worker"
	"github.com/ossf/content-triage/internal/worker/lease"
	api "github.com/ossf/content-triage/pkg/api/triage"
)

type handler struct {
	triager *worker.Triager
	keeper  *lease.Keeper

	// objects is the default bucket, used when a message carries no bucket
	// override. It may be nil.
	objects    *blob.Bucket
	objectsURL string

	results           *resultstore.ResultStore
	notificationTopic *pubsub.Topic
}

// permanent reports whether err will not go away on redelivery.
func permanent(err error) bool {
	return errors.Is(err, sample.ErrEmptyPath) || gcerrors.Code(err) == gcerrors.NotFound
}

func (h *handler) bucketFor(ctx context.Context, override string) (*blob.Bucket, string, func(), error) {
	if override == "" || override == h.objectsURL {
		if h.objects == nil {
			return nil, "", nil, errors.New("objects bucket not set")
		}
		return h.objects, h.objectsURL, func() {}, nil
	}
	bkt, err := blob.OpenBucket(ctx, override)
	if err != nil {
		return nil, "", nil, err
	}
	return bkt, override, func() { bkt.Close() }, nil
}

func (h *handler) handleMessage(ctx context.Context, msg *pubsub.Message) error {
	objectPath := msg.Metadata["path"]
	if objectPath == "" {
		slog.WarnContext(ctx, "path is empty")
		msg.Ack()
		return nil
	}

	bucketOverride := msg.Metadata["bucket"]
	declaredType := msg.Metadata["declared_type"]

	ctx = log.ContextWithAttrs(ctx, slog.String("path", objectPath))
	worker.LogRequest(ctx, h.objectsURL, objectPath, declaredType, bucketOverride)

	bkt, source, closeBucket, err := h.bucketFor(ctx, bucketOverride)
	if err != nil {
		slog.WarnContext(ctx, "Unable to open bucket", "bucket", bucketOverride, "error", err)
		msg.Ack()
		return nil
	}
	defer closeBucket()

	var (
		rec    *api.Record
		result *triage.Result
	)
	err = h.keeper.Run(ctx, msg, func(ctx context.Context) error {
		var err error
		rec, result, err = h.triager.TriageBlob(ctx, bkt, source, objectPath, declaredType)
		return err
	})
	if err != nil {
		worker.LogTriageError(ctx, objectPath, err)
		if permanent(err) {
			msg.Ack()
			return nil
		}
		if msg.Nackable() {
			msg.Nack()
		}
		return err
	}

	if err := worker.SaveRecord(ctx, h.results, rec); err != nil {
		return err
	}

	k := api.Key{Source: rec.Source, Path: rec.Path}
	if err := worker.NotifyCompletion(ctx, h.notificationTopic, k, result); err != nil {
		return err
	}

	msg.Ack()
	return nil
}

func messageLoop(ctx context.Context, cfg *config) error {
	sub, err := pubsub.OpenSubscription(ctx, cfg.subURL)
	if err != nil {
		return err
	}
	defer sub.Shutdown(ctx)

	keeper, err := lease.New(ctx, cfg.subURL, sub)
	if err != nil {
		return err
	}

	h := &handler{
		triager:    worker.NewTriager(triage.Options{}, cfg.digest, cfg.sampleSize),
		keeper:     keeper,
		objectsURL: cfg.objectsBucket,
		results:    cfg.resultStore,
	}

	// the default value of the notificationTopic object is nil
	// if no environment variable for a notification topic is set,
	// we pass in a nil notificationTopic object to handleMessage
	// and continue with the triage with no notifications published
	if cfg.notificationTopicURL != "" {
		h.notificationTopic, err = pubsub.OpenTopic(ctx, cfg.notificationTopicURL)
		if err != nil {
			return err
		}
		defer h.notificationTopic.Shutdown(ctx)
	}

	if cfg.objectsBucket != "" {
		h.objects, err = blob.OpenBucket(ctx, cfg.objectsBucket)
		if err != nil {
			return err
		}
		defer h.objects.Close()
	}

	slog.InfoContext(ctx, "Listening for messages to process...")
	for {
		msg, err := sub.Receive(ctx)
		if err != nil {
			// All subsequent receive calls will return the same error, so we bail out.
			return fmt.Errorf("error receiving message: %w", err)
		}

		if err := h.handleMessage(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "Failed to process message", "error", err)
		}
	}
}

func startProfiler(ctx context.Context) {
	errorLog := log.NewWriter(ctx, slog.Default(), slog.LevelWarn)
	srv := &http.Server{
		Addr:     ":6060",
		ErrorLog: golog.New(errorLog, "", 0),
	}
	go func() {
		defer errorLog.Close()
		slog.InfoContext(ctx, "Starting profiler")
		if err := srv.ListenAndServe(); err != nil {
			slog.ErrorContext(ctx, "Profiler stopped", "error", err)
		}
	}()
}

func main() {
	ctx := context.Background()
	log.Initialize(os.Getenv("LOGGER_ENV"))

	cfg, err := configFromEnv()
	if err != nil {
		slog.ErrorContext(ctx, "Invalid configuration", "error", err)
		os.Exit(1)
	}

	if err := featureflags.Update(cfg.features); err != nil {
		slog.ErrorContext(ctx, "Failed to parse feature flags", "error", err)
		os.Exit(1)
	}

	// If configured, start a webserver so that Go's pprof can be accessed for
	// debugging and profiling.
	if cfg.enableProfiler {
		startProfiler(ctx)
	}

	// Log the configuration of the worker at startup so we can observe it.
	slog.InfoContext(ctx, "Starting worker", "config", cfg)

	if err := messageLoop(ctx, cfg); err != nil {
		slog.ErrorContext(ctx, "Error encountered", "error", err)
		os.Exit(1)
	}
}
