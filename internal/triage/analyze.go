// Package triage runs the statistical content analysis of a byte sample:
// byte histogram, entropy, n-grams, signature based type detection,
// classification, compressibility and an entropy profile.
package triage

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/exp/slices"

	"github.com/ossf/content-triage/internal/log"
	"github.com/ossf/content-triage/internal/triage/classify"
	"github.com/ossf/content-triage/internal/triage/compressibility"
	"github.com/ossf/content-triage/internal/triage/entropy"
	"github.com/ossf/content-triage/internal/triage/histogram"
	"github.com/ossf/content-triage/internal/triage/invalid"
	"github.com/ossf/content-triage/internal/triage/ngram"
	"github.com/ossf/content-triage/internal/triage/signature"
	"github.com/ossf/content-triage/internal/utils"
)

const (
	// DefaultProfileWindow is the entropy profile window used when
	// Options.ProfileWindow is zero.
	DefaultProfileWindow = 256
)

// DefaultNGramSizes are the n-gram widths indexed when Options.NGramSizes is empty.
var DefaultNGramSizes = []int{1, 2, 4}

// Options controls which tasks Analyze runs and how.
type Options struct {
	// Tasks lists the tasks to run. If empty, AllTasks() is used. Tasks
	// needed by a listed task are added automatically.
	Tasks []Task

	// NGramSizes lists the n-gram widths to index. Duplicates are removed and
	// non-positive sizes are ignored.
	NGramSizes []int

	// TopM is the number of n-grams kept per width; values <= 0 mean
	// ngram.DefaultTopM.
	TopM int

	// FileSize is the size of the whole file the sample was taken from.
	// Zero means the sample is the whole file.
	FileSize int64

	// DeclaredType is the type claimed for the file (a MIME type, or a type
	// derived from the file name), or empty if none is known.
	DeclaredType string

	// DeclaredTypeHint makes the signature task suggest the table label
	// closest to DeclaredType when it disagrees with the detected type.
	DeclaredTypeHint bool

	// ProfileWindow and ProfileStep size the windows of the entropy profile.
	// Zero selects DefaultProfileWindow and half the window, respectively.
	ProfileWindow int
	ProfileStep   int
}

// resolveTasks returns the set of tasks to run, including dependencies.
func resolveTasks(ctx context.Context, tasks []Task) (map[Task]bool, error) {
	if len(tasks) == 0 {
		tasks = AllTasks()
	}
	run := map[Task]bool{}
	for _, task := range tasks {
		if _, ok := TaskFromString(string(task)); !ok {
			return nil, invalid.Errorf("triage task not implemented: %q", task)
		}
		for _, dep := range dependencies[task] {
			if !run[dep] && !slices.Contains(tasks, dep) {
				slog.DebugContext(ctx, fmt.Sprintf("adding %s to task list (needed by %s)", dep, task))
			}
			run[dep] = true
		}
		run[task] = true
	}
	return run, nil
}

// ngramSizes returns the distinct positive sizes in ascending order.
func ngramSizes(sizes []int) []int {
	if len(sizes) == 0 {
		sizes = DefaultNGramSizes
	}
	var positive []int
	for _, n := range utils.RemoveDuplicates(sizes) {
		if n > 0 {
			positive = append(positive, n)
		}
	}
	slices.Sort(positive)
	return positive
}

func (o Options) validate(sampleLen int) error {
	if o.FileSize < 0 {
		return invalid.Errorf("negative file size %d", o.FileSize)
	}
	if o.FileSize > 0 && o.FileSize < int64(sampleLen) {
		return invalid.Errorf("file size %d is smaller than the sample (%d bytes)", o.FileSize, sampleLen)
	}
	if o.ProfileWindow < 0 || o.ProfileStep < 0 {
		return invalid.Errorf("negative entropy profile window %d or step %d", o.ProfileWindow, o.ProfileStep)
	}
	return nil
}

func (o Options) profileWindow() (int, int) {
	window := o.ProfileWindow
	if window == 0 {
		window = DefaultProfileWindow
	}
	step := o.ProfileStep
	if step == 0 {
		step = max(window/2, 1)
	}
	return window, step
}

/*
Analyze runs the tasks selected in opts over sample and returns the combined
result.

The histogram is computed first, since entropy and classification reuse it;
the remaining tasks are independent and run concurrently. A task that fails
is logged and its field left nil, without affecting the other tasks.

An error is returned only for invalid options (wrapping ErrInvalidInput) or
if ctx is done before the analysis starts or between its two phases. sample
is only read, and is not retained.
*/
func Analyze(ctx context.Context, sample []byte, opts Options) (*Result, error) {
	run, err := resolveTasks(ctx, opts.Tasks)
	if err != nil {
		return nil, err
	}
	if err := opts.validate(len(sample)); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r := &Result{
		SampleSize: int64(len(sample)),
		FileSize:   int64(len(sample)),
	}
	if opts.FileSize > 0 {
		r.FileSize = opts.FileSize
	}

	var h histogram.Histogram
	if run[Histogram] {
		h = histogram.Compute(sample)
		stored := h
		r.Histogram = &stored
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var wg sync.WaitGroup
	spawn := func(task Task, fn func()) {
		if !run[task] {
			return
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
		}()
	}

	spawn(Entropy, func() {
		e := entropy.Shannon(h, uint64(len(sample)))
		r.Entropy = &e
	})

	if run[NGrams] {
		sizes := ngramSizes(opts.NGramSizes)
		r.NGrams = make([]NGramResult, len(sizes))
		for i, n := range sizes {
			spawn(NGrams, func() {
				t := ngram.Index(sample, n)
				r.NGrams[i] = NGramResult{
					N:        n,
					Total:    t.Total(),
					Distinct: t.Len(),
					Top:      t.Top(opts.TopM),
				}
			})
		}
	}

	spawn(Signature, func() {
		r.Signature = identify(sample, opts)
	})

	spawn(Classify, func() {
		c := classify.Classify(sample,
			classify.DeclaredType(opts.DeclaredType),
			classify.FileSize(r.FileSize),
			classify.WithHistogram(h))
		r.Classification = &c
	})

	spawn(Compressibility, func() {
		est, err := compressibility.Probe(sample)
		if err != nil {
			slog.ErrorContext(ctx, "compressibility probe failed", "error", err, log.LabelAttr("task", string(Compressibility)))
			if est.Empty() {
				return
			}
		}
		r.Compressibility = &est
	})

	spawn(Profile, func() {
		window, step := opts.profileWindow()
		values, err := entropy.Profile(sample, window, step)
		if err != nil {
			slog.ErrorContext(ctx, "entropy profile failed", "error", err, log.LabelAttr("task", string(Profile)))
			return
		}
		r.Profile = &ProfileResult{Window: window, Step: step, Values: values}
	})

	wg.Wait()
	return r, nil
}

func identify(sample []byte, opts Options) *SignatureResult {
	header := sample[:min(len(sample), signature.HeaderSize)]
	s := &SignatureResult{Label: signature.Identify(header)}
	if e, ok := signature.Match(header); ok {
		s.Description = e.Description
	}

	if opts.DeclaredTypeHint && opts.DeclaredType != "" && !classify.MatchesDeclared(s.Label, opts.DeclaredType) {
		if label, dist := signature.Closest(opts.DeclaredType); dist >= 0 {
			s.DeclaredHint = label
			s.HintDistance = dist
		}
	}
	return s
}
