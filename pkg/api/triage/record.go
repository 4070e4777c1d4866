package triage

import (
	"time"
)

// SchemaVersion identifies the triage results JSON schema version.
const SchemaVersion = "1.0"

// Key identifies the object that was triaged: the storage it was read from
// (a bucket URL, or "local" for files given on the command line) and its
// path within that storage.
type Key struct {
	Source string `json:"source"`
	Path   string `json:"path"`
}

func (k Key) String() string {
	if k.Source == "" {
		return k.Path
	}
	return k.Source + "/" + k.Path
}

// Record is the top-level struct which is serialised to produce triage
// JSON files. This struct should not change unless SchemaVersion is also incremented.
type Record struct {
	SchemaVersion string    `json:"schema_version"`
	Source        string    `json:"source"`
	Path          string    `json:"path"`
	Created       time.Time `json:"created"`
	Results       Results   `json:"results"`
}

// Results holds the triage output for one or more files.
type Results struct {
	Files []FileResult `json:"files"`
}

// CreateRecord associates a set of triage Results with an identifying Key,
// to produce a Record object that can be serialised.
func CreateRecord(r *Results, k Key) *Record {
	return &Record{
		SchemaVersion: SchemaVersion,
		Source:        k.Source,
		Path:          k.Path,
		Created:       time.Now().UTC(),
		Results:       *r,
	}
}

// FileResult holds triage data for a single file. Filename, Size and
// SampleSize are always set; the other fields depend on which analysis tasks
// were run.
type FileResult struct {
	Filename   string `json:"filename"`
	Size       int64  `json:"size"`
	SampleSize int64  `json:"sample_size"`

	Digest *Digest `json:"digest,omitempty"`

	// Histogram lists the non-zero byte value counts of the sample, in
	// ascending byte value order.
	Histogram []HistogramBin `json:"histogram,omitempty"`

	// Entropy is the Shannon entropy of the sample in bits per byte.
	Entropy *float64 `json:"entropy,omitempty"`

	NGrams          []NGramTable     `json:"ngrams,omitempty"`
	Signature       *Signature       `json:"signature,omitempty"`
	Classification  *Classification  `json:"classification,omitempty"`
	Compressibility *Compressibility `json:"compressibility,omitempty"`
	EntropyProfile  *EntropyProfile  `json:"entropy_profile,omitempty"`
}

// Digest is a hex encoded hash of the whole file, not just the sample.
type Digest struct {
	Algorithm string `json:"algorithm"`
	Value     string `json:"value"`
}

type HistogramBin struct {
	Value int    `json:"value"`
	Count uint64 `json:"count"`
}

// NGramTable holds the most frequent n-grams of width N. Total is the number
// of windows in the sample and Distinct the number of different n-grams.
type NGramTable struct {
	N        int     `json:"n"`
	Total    int     `json:"total"`
	Distinct int     `json:"distinct"`
	Top      []NGram `json:"top"`
}

// NGram is a single n-gram, keyed by the lowercase hex encoding of its bytes.
type NGram struct {
	Key         string `json:"key"`
	Count       int    `json:"count"`
	FirstOffset int    `json:"first_offset"`
}

// Signature describes the file type detected from the leading bytes.
// DeclaredHint is the signature label closest to the declared type, when the
// declared type does not agree with the detected one.
type Signature struct {
	Label        string `json:"label"`
	Description  string `json:"description,omitempty"`
	DeclaredHint string `json:"declared_hint,omitempty"`
	HintDistance int    `json:"hint_distance,omitempty"`
}

type Classification struct {
	IsBinary          bool    `json:"is_binary"`
	BinaryReason      string  `json:"binary_reason,omitempty"`
	PrintableRatio    float64 `json:"printable_ratio"`
	NullByteCount     int64   `json:"null_byte_count"`
	ControlByteCount  int64   `json:"control_byte_count"`
	ControlRatio      float64 `json:"control_ratio"`
	CompressionLikely bool    `json:"compression_likely"`
	DetectedType      string  `json:"detected_type"`
	DeclaredType      string  `json:"declared_type,omitempty"`
	MatchesDeclared   bool    `json:"matches_declared"`
	Confidence        string  `json:"confidence"`
}

// Compressibility holds the compressed size ratio of the sample for each codec.
type Compressibility struct {
	Ratios    []CompressionRatio `json:"ratios"`
	Best      float64            `json:"best"`
	BestCodec string             `json:"best_codec,omitempty"`
}

type CompressionRatio struct {
	Codec          string  `json:"codec"`
	CompressedSize int     `json:"compressed_size"`
	Ratio          float64 `json:"ratio"`
}

// EntropyProfile holds the entropy of consecutive windows of the sample.
// Values[i] is the entropy of the window starting at offset i*Step.
type EntropyProfile struct {
	Window int       `json:"window"`
	Step   int       `json:"step"`
	Values []float64 `json:"values"`
}
