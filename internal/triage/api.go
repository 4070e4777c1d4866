package triage

import (
	"golang.org/x/exp/slices"

	"github.com/ossf/content-triage/internal/triage/histogram"
	"github.com/ossf/content-triage/internal/triage/ngram"
	"github.com/ossf/content-triage/internal/utils"
	api "github.com/ossf/content-triage/pkg/api/triage"
)

// ToAPI converts the result into the serialisable form, for the file
// with the given name. The digest is added by the caller, since it is
// computed over the whole file rather than the sample.
func (r *Result) ToAPI(filename string) api.FileResult {
	fr := api.FileResult{
		Filename:   filename,
		Size:       r.FileSize,
		SampleSize: r.SampleSize,
	}
	if r.Entropy != nil {
		e := *r.Entropy
		fr.Entropy = &e
	}

	if r.Histogram != nil {
		fr.Histogram = utils.Transform(r.Histogram.Pairs(), func(p histogram.Pair) api.HistogramBin {
			return api.HistogramBin{Value: p.Value, Count: p.Count}
		})
	}

	for _, t := range r.NGrams {
		fr.NGrams = append(fr.NGrams, api.NGramTable{
			N:        t.N,
			Total:    t.Total,
			Distinct: t.Distinct,
			Top: utils.Transform(t.Top, func(rec ngram.Record) api.NGram {
				return api.NGram{Key: rec.Key, Count: rec.Count, FirstOffset: rec.FirstOffset}
			}),
		})
	}

	if s := r.Signature; s != nil {
		fr.Signature = &api.Signature{
			Label:        s.Label,
			Description:  s.Description,
			DeclaredHint: s.DeclaredHint,
			HintDistance: s.HintDistance,
		}
	}

	if c := r.Classification; c != nil {
		fr.Classification = &api.Classification{
			IsBinary:          c.IsBinary,
			BinaryReason:      c.BinaryReason,
			PrintableRatio:    c.PrintableRatio,
			NullByteCount:     c.NullByteCount,
			ControlByteCount:  c.ControlByteCount,
			ControlRatio:      c.ControlRatio,
			CompressionLikely: c.CompressionLikely,
			DetectedType:      c.DetectedType,
			DeclaredType:      c.DeclaredType,
			MatchesDeclared:   c.MatchesDeclared,
			Confidence:        string(c.Confidence),
		}
		if fr.Entropy == nil {
			e := c.Entropy
			fr.Entropy = &e
		}
	}

	if e := r.Compressibility; e != nil {
		fr.Compressibility = &api.Compressibility{
			Best:      e.Best,
			BestCodec: e.BestCodec,
			Ratios:    make([]api.CompressionRatio, len(e.Ratios)),
		}
		for i, ratio := range e.Ratios {
			fr.Compressibility.Ratios[i] = api.CompressionRatio(ratio)
		}
	}

	if p := r.Profile; p != nil {
		fr.EntropyProfile = &api.EntropyProfile{Window: p.Window, Step: p.Step, Values: slices.Clone(p.Values)}
	}

	return fr
}
