package triage

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/ossf/content-triage/internal/triage/classify"
	"github.com/ossf/content-triage/internal/triage/compressibility"
	"github.com/ossf/content-triage/internal/triage/histogram"
	"github.com/ossf/content-triage/internal/triage/ngram"
)

/*
Result holds everything computed for a single sample. A field is nil when its
task was not requested, or when the task failed (failures are logged, and never
abort the rest of the analysis).

Every call to Analyze returns a new Result; nothing in it is shared with other
calls or with the sample.
*/
type Result struct {
	SampleSize int64
	FileSize   int64

	Histogram *histogram.Histogram

	// Entropy is the Shannon entropy of the sample in bits per byte.
	Entropy *float64

	// NGrams holds one table per requested n-gram size, in ascending order of n.
	NGrams []NGramResult

	Signature       *SignatureResult
	Classification  *classify.Result
	Compressibility *compressibility.Estimate
	Profile         *ProfileResult
}

// Clone returns a deep copy of r.
func (r *Result) Clone() *Result {
	if r == nil {
		return nil
	}
	c := &Result{
		SampleSize: r.SampleSize,
		FileSize:   r.FileSize,
	}
	if r.Histogram != nil {
		h := *r.Histogram
		c.Histogram = &h
	}
	if r.Entropy != nil {
		e := *r.Entropy
		c.Entropy = &e
	}
	if r.NGrams != nil {
		c.NGrams = make([]NGramResult, len(r.NGrams))
		for i, t := range r.NGrams {
			t.Top = slices.Clone(t.Top)
			c.NGrams[i] = t
		}
	}
	if r.Signature != nil {
		s := *r.Signature
		c.Signature = &s
	}
	if r.Classification != nil {
		cl := *r.Classification
		c.Classification = &cl
	}
	if r.Compressibility != nil {
		est := *r.Compressibility
		est.Ratios = slices.Clone(est.Ratios)
		c.Compressibility = &est
	}
	if r.Profile != nil {
		p := *r.Profile
		p.Values = slices.Clone(p.Values)
		c.Profile = &p
	}
	return c
}

type NGramResult struct {
	N        int
	Total    int
	Distinct int
	Top      []ngram.Record
}

// SignatureResult is the detected type label, with the description of the
// matching table entry when a signature (rather than the text heuristic) was
// used. DeclaredHint is set when the declared type disagrees with the
// detected one and a table label resembles it.
type SignatureResult struct {
	Label        string
	Description  string
	DeclaredHint string
	HintDistance int
}

type ProfileResult struct {
	Window int
	Step   int
	Values []float64
}

func (r Result) String() string {
	parts := []string{fmt.Sprintf("sample %d bytes of %d", r.SampleSize, r.FileSize)}
	if r.Entropy != nil {
		parts = append(parts, fmt.Sprintf("entropy %.4f bits/byte", *r.Entropy))
	}
	if r.Signature != nil {
		s := "type " + r.Signature.Label
		if r.Signature.Description != "" {
			s += " (" + r.Signature.Description + ")"
		}
		parts = append(parts, s)
	}
	if c := r.Classification; c != nil {
		kind := "text"
		if c.IsBinary {
			kind = "binary (" + c.BinaryReason + ")"
		}
		parts = append(parts, fmt.Sprintf("%s, printable %.2f, confidence %s", kind, c.PrintableRatio, c.Confidence))
		if c.CompressionLikely {
			parts = append(parts, "likely compressed or encrypted")
		}
	}
	if e := r.Compressibility; e != nil && !e.Empty() {
		parts = append(parts, fmt.Sprintf("best ratio %.3f (%s)", e.Best, e.BestCodec))
	}
	for _, t := range r.NGrams {
		keys := make([]string, 0, len(t.Top))
		for i, rec := range t.Top {
			if i == 5 {
				break
			}
			keys = append(keys, fmt.Sprintf("%s:%d", rec.Key, rec.Count))
		}
		parts = append(parts, fmt.Sprintf("%d-grams [%s]", t.N, strings.Join(keys, " ")))
	}
	return strings.Join(parts, "; ")
}
