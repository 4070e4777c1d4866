// Package entropy computes Shannon entropy over byte histograms.
package entropy

import (
	"math"

	"github.com/ossf/content-triage/internal/triage/histogram"
	"github.com/ossf/content-triage/internal/triage/invalid"
)

// Max is the largest possible entropy of a byte sample, in bits per byte.
const Max = 8.0

/*
Shannon computes the entropy, in bits per byte, of a sample with the given
byte histogram and total length:

	H = - sum(b in 0..255, c(b) > 0) { p(b) * log2(p(b)) },  p(b) = c(b) / total

where c(b) counts the occurrences of byte value b. The result lies in [0, 8].
If total is zero, the entropy is defined to be 0.

No qualitative label is attached to the value; deciding what a high entropy
means is left to the caller.
*/
func Shannon(h histogram.Histogram, total uint64) float64 {
	if total == 0 {
		return 0
	}

	n := float64(total)
	entropy := 0.0
	for _, count := range h {
		if count == 0 {
			continue
		}
		p := float64(count) / n
		entropy -= p * math.Log2(p)
	}

	// rounding can leave a tiny negative value for single-symbol samples
	if entropy < 0 {
		return 0
	}
	return entropy
}

// Of computes the Shannon entropy of sample directly.
func Of(sample []byte) float64 {
	return Shannon(histogram.Compute(sample), uint64(len(sample)))
}

/*
Profile computes the entropy of each full window of the given size, moving the
window forward by step bytes each time. The i-th value covers
sample[i*step : i*step+window]. A sample shorter than window yields an empty
profile. Non-positive window or step values are rejected with an error
wrapping invalid.ErrInput.

The histogram is updated incrementally as the window slides, so the cost is
O(len(sample) + windows * 256).
*/
func Profile(sample []byte, window, step int) ([]float64, error) {
	if window <= 0 {
		return nil, invalid.Errorf("entropy window must be positive, got %d", window)
	}
	if step <= 0 {
		return nil, invalid.Errorf("entropy step must be positive, got %d", step)
	}
	if len(sample) < window {
		return []float64{}, nil
	}

	count := (len(sample)-window)/step + 1
	profile := make([]float64, 0, count)

	h := histogram.Compute(sample[:window])
	start := 0
	for {
		profile = append(profile, Shannon(h, uint64(window)))

		next := start + step
		if next+window > len(sample) {
			break
		}
		if step >= window {
			h = histogram.Compute(sample[next : next+window])
		} else {
			for _, b := range sample[start:next] {
				h[b]--
			}
			for _, b := range sample[start+window : next+window] {
				h[b]++
			}
		}
		start = next
	}

	return profile, nil
}
