// Package ngram extracts and ranks fixed-length overlapping byte sequences.
package ngram

import (
	"cmp"
	"encoding/hex"

	"golang.org/x/exp/slices"
)

// DefaultTopM is the number of records returned by Top when no positive
// limit is given.
const DefaultTopM = 50

// Record is a single n-gram and the number of times it occurs in a sample.
type Record struct {
	// Key is the canonical form of the n-gram: lowercase hexadecimal,
	// two digits per byte, no separators.
	Key string `json:"key"`

	Count int `json:"count"`

	// FirstOffset is the offset in the sample where the n-gram first occurs.
	// It is used to break ties between records with equal counts.
	FirstOffset int `json:"first_offset"`
}

// Key returns the canonical key for the byte sequence b.
func Key(b []byte) string {
	return hex.EncodeToString(b)
}

// Table is the full frequency table of the n-grams of one sample for a
// single n. Each distinct byte sequence has exactly one record.
type Table struct {
	n       int
	total   int
	index   map[string]int
	records []Record
}

/*
Index slides a window of width n across sample, from offset 0 up to and
including len(sample)-n, and counts the occurrences of each distinct window.

If n <= 0 or the sample is shorter than n, the table is empty; neither case
is an error.
*/
func Index(sample []byte, n int) *Table {
	t := &Table{n: n, index: map[string]int{}}
	if n <= 0 || len(sample) < n {
		return t
	}

	for offset := 0; offset+n <= len(sample); offset++ {
		window := sample[offset : offset+n]
		if i, ok := t.index[string(window)]; ok {
			t.records[i].Count++
		} else {
			t.index[string(window)] = len(t.records)
			t.records = append(t.records, Record{Key: Key(window), Count: 1, FirstOffset: offset})
		}
		t.total++
	}

	return t
}

// N returns the n-gram width of this table.
func (t *Table) N() int {
	return t.n
}

// Len returns the number of distinct n-grams.
func (t *Table) Len() int {
	return len(t.records)
}

// Total returns the sum of all counts, which is max(0, len(sample)-n+1).
func (t *Table) Total() int {
	return t.total
}

// Count returns the number of occurrences of the byte sequence b.
func (t *Table) Count(b []byte) int {
	if i, ok := t.index[string(b)]; ok {
		return t.records[i].Count
	}
	return 0
}

// Records returns a copy of every record, ordered by first occurrence.
func (t *Table) Records() []Record {
	out := make([]Record, len(t.records))
	copy(out, t.records)
	return out
}

/*
Top returns at most m records sorted by count in descending order.
Records with equal counts are ordered by FirstOffset, ascending, so the
result is fully determined by the sample. If m <= 0, DefaultTopM is used.
*/
func (t *Table) Top(m int) []Record {
	if m <= 0 {
		m = DefaultTopM
	}

	ranked := t.Records()
	slices.SortFunc(ranked, func(a, b Record) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.FirstOffset, b.FirstOffset)
	})

	if len(ranked) > m {
		ranked = ranked[:m]
	}
	return ranked
}

// Top indexes the n-grams of sample and returns the topM most frequent ones.
// See Index and Table.Top for the handling of edge cases.
func Top(sample []byte, n, topM int) []Record {
	return Index(sample, n).Top(topM)
}
