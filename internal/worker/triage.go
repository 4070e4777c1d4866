package worker

import (
	"context"
	"fmt"
	"mime"
	"path"
	"path/filepath"
	"strings"

	"gocloud.dev/blob"

	"github.com/ossf/content-triage/internal/digest"
	"github.com/ossf/content-triage/internal/featureflags"
	"github.com/ossf/content-triage/internal/reportcache"
	"github.com/ossf/content-triage/internal/sample"
	"github.com/ossf/content-triage/internal/triage"
	api "github.com/ossf/content-triage/pkg/api/triage"
)

// Triager runs the triage engine over samples with a fixed set of options,
// serving repeated samples from a cache.
type Triager struct {
	// Options is the template used for every sample. FileSize and
	// DeclaredType are filled in per call.
	Options triage.Options

	// Digest selects the hash used for whole-file digests.
	Digest digest.Algorithm

	// SampleSize is the number of leading bytes read from each file.
	SampleSize int

	cache *reportcache.Cache[*triage.Result]
}

// NewTriager returns a Triager whose task list has been filtered through
// the feature flags.
func NewTriager(opts triage.Options, alg digest.Algorithm, sampleSize int) *Triager {
	opts.Tasks = EnabledTasks(opts.Tasks)
	opts.DeclaredTypeHint = featureflags.DeclaredTypeHint.Enabled()
	if sampleSize <= 0 {
		sampleSize = sample.DefaultSize
	}
	if alg == "" {
		alg = digest.SHA256
	}
	return &Triager{
		Options:    opts,
		Digest:     alg,
		SampleSize: sampleSize,
		cache:      reportcache.New[*triage.Result](reportcache.DefaultMaxEntries),
	}
}

// EnabledTasks returns tasks, or all tasks if it is empty, with the optional
// tasks removed when their feature flag is off. Tasks that were listed
// explicitly are always kept.
func EnabledTasks(tasks []triage.Task) []triage.Task {
	if len(tasks) > 0 {
		return tasks
	}
	var enabled []triage.Task
	for _, t := range triage.AllTasks() {
		switch {
		case t == triage.Compressibility && !featureflags.CompressibilityProbe.Enabled():
			continue
		case t == triage.Profile && !featureflags.EntropyProfile.Enabled():
			continue
		}
		enabled = append(enabled, t)
	}
	return enabled
}

// DeclaredTypeFromName derives a declared type from the extension of name:
// the registered MIME type if there is one, else the bare extension.
func DeclaredTypeFromName(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return ""
	}
	if t := mime.TypeByExtension(ext); t != "" {
		mediaType, _, err := mime.ParseMediaType(t)
		if err == nil {
			return mediaType
		}
		return t
	}
	return strings.TrimPrefix(ext, ".")
}

// Analyze runs the engine over s. The second return value reports whether
// the result came from the cache. The returned Result is never shared with
// other calls.
func (t *Triager) Analyze(ctx context.Context, s sample.Sample, declared string) (*triage.Result, bool, error) {
	opts := t.Options
	opts.FileSize = s.FileSize
	opts.DeclaredType = declared

	scope := fmt.Sprintf("%+v", opts)
	r, cached, err := t.cache.GetOrCompute(scope, s.Data, func() (*triage.Result, error) {
		return triage.Analyze(ctx, s.Data, opts)
	})
	if err != nil {
		return nil, false, err
	}
	return r.Clone(), cached, nil
}

// CacheStats returns the hit and miss counts of the result cache.
func (t *Triager) CacheStats() (hits, misses int) {
	return t.cache.Stats()
}

// BuildRecord wraps the result for one file into a Record for key. d may be
// nil if no digest was computed.
func BuildRecord(k api.Key, filename string, r *triage.Result, d *digest.Digest) *api.Record {
	fr := r.ToAPI(filename)
	if d != nil {
		fr.Digest = d.ToAPI()
	}
	return api.CreateRecord(&api.Results{Files: []api.FileResult{fr}}, k)
}

// TriageFile samples, digests and analyses the local file at path.
func (t *Triager) TriageFile(ctx context.Context, filePath, declared string) (*api.Record, *triage.Result, error) {
	s, err := sample.File(filePath, t.SampleSize)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sample of %s: %w", filePath, err)
	}

	d, err := digest.File(t.Digest, filePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to digest %s: %w", filePath, err)
	}

	r, cached, err := t.Analyze(ctx, s, declared)
	if err != nil {
		return nil, nil, err
	}
	LogTriageResult(ctx, filePath, r, cached)

	k := api.Key{Source: LocalSource, Path: filePath}
	return BuildRecord(k, filepath.Base(filePath), r, &d), r, nil
}

// TriageBlob samples, digests and analyses the object key in bkt. The digest
// streams the whole object, so this may take a while for large objects.
func (t *Triager) TriageBlob(ctx context.Context, bkt *blob.Bucket, source, key, declared string) (*api.Record, *triage.Result, error) {
	s, err := sample.Blob(ctx, bkt, key, t.SampleSize)
	if err != nil {
		return nil, nil, err
	}

	d, err := digestBlob(ctx, t.Digest, bkt, key)
	if err != nil {
		return nil, nil, err
	}

	r, cached, err := t.Analyze(ctx, s, declared)
	if err != nil {
		return nil, nil, err
	}
	LogTriageResult(ctx, key, r, cached)

	k := api.Key{Source: source, Path: key}
	return BuildRecord(k, path.Base(key), r, &d), r, nil
}

func digestBlob(ctx context.Context, alg digest.Algorithm, bkt *blob.Bucket, key string) (digest.Digest, error) {
	r, err := bkt.NewReader(ctx, key, nil)
	if err != nil {
		return digest.Digest{}, fmt.Errorf("failed to open %s: %w", key, err)
	}
	defer r.Close()

	d, _, err := digest.Reader(alg, r)
	if err != nil {
		return digest.Digest{}, fmt.Errorf("failed to digest %s: %w", key, err)
	}
	return d, nil
}
