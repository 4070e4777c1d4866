// Package classify derives a coarse content classification for a byte sample:
// text or binary, whether the rest of the file is likely compressed or
// encrypted, and how well the detected type agrees with a declared one.
package classify

import (
	"strings"

	"github.com/ossf/content-triage/internal/triage/entropy"
	"github.com/ossf/content-triage/internal/triage/histogram"
	"github.com/ossf/content-triage/internal/triage/signature"
)

// Confidence describes how far the detected type can be trusted to describe
// the content, given the declared type.
type Confidence string

const (
	Low    Confidence = "low"
	Medium Confidence = "medium"
	High   Confidence = "high"
)

const (
	// ControlRatioThreshold is the fraction of non-whitespace control bytes
	// above which a sample is considered binary.
	ControlRatioThreshold = 0.10

	// CompressedEntropyThreshold is the entropy, in bits per byte, above
	// which a truncated sample suggests compressed or encrypted content.
	CompressedEntropyThreshold = 7.0
)

// Result holds the classification of a single sample.
type Result struct {
	SampleSize int64 `json:"sample_size"`

	// FileSize is the size of the whole file the sample was taken from.
	FileSize int64 `json:"file_size"`

	IsBinary bool `json:"is_binary"`

	// BinaryReason names the rule that classified the sample as binary,
	// and is empty for text.
	BinaryReason string `json:"binary_reason,omitempty"`

	Entropy float64 `json:"entropy"`

	PrintableRatio float64 `json:"printable_ratio"`

	NullByteCount int64 `json:"null_byte_count"`

	// ControlByteCount counts bytes 0-31 and 127, excluding tab, line feed
	// and carriage return. NUL bytes are included.
	ControlByteCount int64 `json:"control_byte_count"`

	ControlRatio float64 `json:"control_ratio"`

	CompressionLikely bool `json:"compression_likely"`

	DetectedType string `json:"detected_type"`

	DeclaredType string `json:"declared_type,omitempty"`

	MatchesDeclared bool `json:"matches_declared"`

	Confidence Confidence `json:"confidence"`
}

type config struct {
	declaredType string
	fileSize     int64
	haveFileSize bool
	hist         *histogram.Histogram
}

type (
	Option interface{ set(*config) }
	option func(*config) // option implements Option.
)

func (o option) set(c *config) { o(c) }

// DeclaredType sets the type claimed for the file, such as a MIME type or a
// type derived from the file extension. An empty string means no declared type.
func DeclaredType(t string) Option {
	return option(func(c *config) { c.declaredType = t })
}

// FileSize sets the size of the whole file the sample was taken from.
// Without it, the sample is assumed to be the whole file.
func FileSize(n int64) Option {
	return option(func(c *config) {
		c.fileSize = n
		c.haveFileSize = true
	})
}

// WithHistogram supplies a histogram already computed for the sample, so it
// is not computed again. It must have been computed from the same sample.
func WithHistogram(h histogram.Histogram) Option {
	return option(func(c *config) { c.hist = &h })
}

// binaryRule is one row of the binary decision table.
type binaryRule struct {
	name  string
	match func(r *Result) bool
}

// binaryRules are checked in order; the first match classifies the sample as
// binary.
var binaryRules = []binaryRule{
	{
		name:  "null-bytes",
		match: func(r *Result) bool { return r.NullByteCount > 0 },
	},
	{
		name:  "control-bytes",
		match: func(r *Result) bool { return r.ControlRatio > ControlRatioThreshold },
	},
}

/*
Classify computes the classification of sample. The rules are applied in
this order:

 1. PrintableRatio is the fraction of bytes that are printable ASCII or tab,
    line feed or carriage return. An empty sample has a ratio of 1.
 2. IsBinary is decided by binaryRules: any NUL byte, or more than 10% control
    bytes other than tab, line feed and carriage return.
 3. CompressionLikely is set when the entropy exceeds 7.0 bits per byte and the
    sample is strictly smaller than the whole file.
 4. DetectedType is the signature label of the first signature.HeaderSize bytes.
 5. MatchesDeclared is set when a declared type is given and either lowercased
    type contains the other.
 6. Confidence is low for an Unknown detected type, high when the declared
    type contains the detected type (ignoring case), and medium otherwise.

Classify never fails; every field is populated for any input, including an
empty sample.
*/
func Classify(sample []byte, opts ...Option) Result {
	cfg := config{}
	for _, o := range opts {
		o.set(&cfg)
	}

	var h histogram.Histogram
	if cfg.hist != nil {
		h = *cfg.hist
	} else {
		h = histogram.Compute(sample)
	}

	length := int64(len(sample))
	r := Result{
		SampleSize:   length,
		FileSize:     length,
		DeclaredType: cfg.declaredType,
	}
	if cfg.haveFileSize {
		r.FileSize = cfg.fileSize
	}

	// rule 1
	printable := h.CountRange(32, 126) + h['\t'] + h['\n'] + h['\r']
	r.NullByteCount = int64(h[0])
	r.ControlByteCount = int64(h.CountRange(0, 31)-h['\t']-h['\n']-h['\r']) + int64(h[127])
	if length == 0 {
		r.PrintableRatio = 1
	} else {
		r.PrintableRatio = float64(printable) / float64(length)
		r.ControlRatio = float64(r.ControlByteCount) / float64(length)
	}

	// rule 2
	for _, rule := range binaryRules {
		if rule.match(&r) {
			r.IsBinary = true
			r.BinaryReason = rule.name
			break
		}
	}

	// rule 3
	r.Entropy = entropy.Shannon(h, uint64(length))
	r.CompressionLikely = r.Entropy > CompressedEntropyThreshold && length < r.FileSize

	// rule 4
	header := sample
	if len(header) > signature.HeaderSize {
		header = header[:signature.HeaderSize]
	}
	r.DetectedType = signature.Identify(header)

	// rules 5 and 6
	r.MatchesDeclared = MatchesDeclared(r.DetectedType, cfg.declaredType)
	r.Confidence = ConfidenceFor(r.DetectedType, cfg.declaredType)

	return r
}

// MatchesDeclared reports whether the detected and declared types agree:
// the declared type is non-empty and, ignoring case, one contains the other.
func MatchesDeclared(detected, declared string) bool {
	if declared == "" {
		return false
	}
	det := strings.ToLower(detected)
	dec := strings.ToLower(declared)
	return strings.Contains(dec, det) || strings.Contains(det, dec)
}

// ConfidenceFor returns Low when the detected type is signature.Unknown, High
// when the declared type contains the detected type (ignoring case) and
// Medium otherwise.
func ConfidenceFor(detected, declared string) Confidence {
	switch {
	case detected == signature.Unknown:
		return Low
	case declared != "" && strings.Contains(strings.ToLower(declared), strings.ToLower(detected)):
		return High
	default:
		return Medium
	}
}
