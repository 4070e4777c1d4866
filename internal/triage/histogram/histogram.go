// Package histogram computes the 256-bin byte-value frequency distribution of
// a sample.
package histogram

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ossf/content-triage/internal/triage/invalid"
)

// Size is the number of bins in a Histogram, one per possible byte value.
const Size = 256

// Histogram stores the number of occurrences of each byte value in a sample.
// All 256 bins are always present; absent values have a count of zero.
//
// It is serialised to JSON as an array of (value, count) pairs, listing only
// the nonzero bins in ascending order of value.
type Histogram [Size]uint64

// Pair stores a single byte value and its occurrence count.
type Pair struct {
	Value int    `json:"value"`
	Count uint64 `json:"count"`
}

// Compute counts the occurrences of each byte value in sample.
// An empty sample produces an all-zero Histogram.
func Compute(sample []byte) Histogram {
	var h Histogram
	for _, b := range sample {
		h[b]++
	}
	return h
}

// Total returns the sum of all bin counts, which equals the length of the
// sample the histogram was computed from.
func (h Histogram) Total() uint64 {
	var total uint64
	for _, c := range h {
		total += c
	}
	return total
}

// Distinct returns the number of byte values with a nonzero count.
func (h Histogram) Distinct() int {
	n := 0
	for _, c := range h {
		if c > 0 {
			n++
		}
	}
	return n
}

// CountRange returns the sum of the counts for byte values lo through hi
// inclusive.
func (h Histogram) CountRange(lo, hi byte) uint64 {
	var total uint64
	for v := int(lo); v <= int(hi); v++ {
		total += h[v]
	}
	return total
}

// Pairs converts this Histogram into a list of (value, count) pairs for the
// nonzero bins. Values are in increasing order so that the output is
// deterministic. An all-zero histogram yields an empty, non-nil slice.
func (h Histogram) Pairs() []Pair {
	pairs := make([]Pair, 0, h.Distinct())
	for v, c := range h {
		if c > 0 {
			pairs = append(pairs, Pair{Value: v, Count: c})
		}
	}
	return pairs
}

// FromPairs converts a list of (value, count) pairs back into a Histogram.
// Values outside 0-255, and values occurring more than once, are rejected
// with an error wrapping invalid.ErrInput rather than being wrapped into range.
func FromPairs(pairs []Pair) (Histogram, error) {
	var h Histogram
	var seen [Size]bool
	for _, p := range pairs {
		if p.Value < 0 || p.Value >= Size {
			return Histogram{}, invalid.Errorf("byte value %d out of range", p.Value)
		}
		if seen[p.Value] {
			return Histogram{}, invalid.Errorf("byte value occurs multiple times: %d", p.Value)
		}
		seen[p.Value] = true
		h[p.Value] = p.Count
	}
	return h, nil
}

func (h Histogram) String() string {
	parts := make([]string, 0, h.Distinct())
	for _, p := range h.Pairs() {
		parts = append(parts, fmt.Sprintf("%02x: %d", p.Value, p.Count))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// MarshalJSON serialises this Histogram into a JSON array of {value, count}
// pairs.
func (h Histogram) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.Pairs())
}

// UnmarshalJSON decodes a Histogram serialised with MarshalJSON. Existing
// counts are discarded. If any error is encountered, h is not modified.
func (h *Histogram) UnmarshalJSON(data []byte) error {
	var pairs []Pair
	if err := json.Unmarshal(data, &pairs); err != nil {
		return err
	}

	decoded, err := FromPairs(pairs)
	if err != nil {
		return err
	}

	*h = decoded
	return nil
}
