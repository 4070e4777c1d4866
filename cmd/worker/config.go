package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/ossf/content-triage/internal/digest"
	"github.com/ossf/content-triage/internal/resultstore"
	"github.com/ossf/content-triage/internal/sample"
)

type config struct {
	resultStore *resultstore.ResultStore

	subURL               string
	objectsBucket        string
	notificationTopicURL string

	sampleSize     int
	digest         digest.Algorithm
	features       string
	enableProfiler bool
}

func (c *config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("subscription", c.subURL),
		slog.String("objects_bucket", c.objectsBucket),
		slog.String("results_store", c.resultStore.String()),
		slog.String("topic_notification", c.notificationTopicURL),
		slog.Int("sample_size", c.sampleSize),
		slog.String("digest", c.digest.String()),
		slog.String("features", c.features),
		slog.Bool("profiler", c.enableProfiler),
	)
}

func resultStoreForEnv(key string) *resultstore.ResultStore {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	return resultstore.New(val, resultstore.ConstructPath())
}

func configFromEnv() (*config, error) {
	c := &config{
		resultStore:          resultStoreForEnv("OSSF_TRIAGE_RESULTS"),
		subURL:               os.Getenv("OSSF_TRIAGE_SUBSCRIPTION"),
		objectsBucket:        os.Getenv("OSSF_TRIAGE_OBJECTS_BUCKET"),
		notificationTopicURL: os.Getenv("OSSF_TRIAGE_NOTIFICATION_TOPIC"),
		sampleSize:           sample.DefaultSize,
		digest:               digest.SHA256,
		features:             os.Getenv("OSSF_TRIAGE_FEATURES"),
		enableProfiler:       os.Getenv("OSSF_TRIAGE_ENABLE_PROFILER") != "",
	}

	if v := os.Getenv("OSSF_TRIAGE_SAMPLE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid OSSF_TRIAGE_SAMPLE_SIZE %q", v)
		}
		c.sampleSize = n
	}

	if v := os.Getenv("OSSF_TRIAGE_DIGEST"); v != "" {
		alg, err := digest.ParseAlgorithm(v)
		if err != nil {
			return nil, fmt.Errorf("invalid OSSF_TRIAGE_DIGEST: %w", err)
		}
		c.digest = alg
	}

	if c.subURL == "" {
		return nil, fmt.Errorf("OSSF_TRIAGE_SUBSCRIPTION is not set")
	}
	return c, nil
}
