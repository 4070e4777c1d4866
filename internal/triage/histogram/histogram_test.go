package histogram

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"

	"github.com/ossf/content-triage/internal/triage/invalid"
	"github.com/ossf/content-triage/internal/utils"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name   string
		sample []byte
		want   []Pair
	}{
		{
			name:   "nil",
			sample: nil,
			want:   []Pair{},
		},
		{
			name:   "empty",
			sample: []byte{},
			want:   []Pair{},
		},
		{
			name:   "single byte",
			sample: []byte{0x41},
			want:   []Pair{{0x41, 1}},
		},
		{
			name:   "text",
			sample: []byte("hello"),
			want:   []Pair{{'e', 1}, {'h', 1}, {'l', 2}, {'o', 1}},
		},
		{
			name:   "extremes",
			sample: []byte{0xff, 0x00, 0xff},
			want:   []Pair{{0x00, 1}, {0xff, 2}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.sample)
			if pairs := got.Pairs(); !reflect.DeepEqual(pairs, tt.want) {
				t.Errorf("Compute().Pairs() = %v, want %v", pairs, tt.want)
			}
			if total := got.Total(); total != uint64(len(tt.sample)) {
				t.Errorf("Total() = %d, want %d", total, len(tt.sample))
			}
		})
	}
}

func TestComputeTotalMatchesLength(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, length := range []int{0, 1, 17, 255, 256, 4096} {
		sample := make([]byte, length)
		rng.Read(sample)

		h := Compute(sample)
		if h.Total() != uint64(length) {
			t.Errorf("length %d: Total() = %d", length, h.Total())
		}
	}
}

func TestDistinctAndCountRange(t *testing.T) {
	h := Compute([]byte("aab\x00\x01"))

	if got := h.Distinct(); got != 4 {
		t.Errorf("Distinct() = %d, want 4", got)
	}
	if got := h.CountRange('a', 'z'); got != 3 {
		t.Errorf("CountRange(a, z) = %d, want 3", got)
	}
	if got := h.CountRange(0, 31); got != 2 {
		t.Errorf("CountRange(0, 31) = %d, want 2", got)
	}
	if got := h.CountRange(0, 255); got != 5 {
		t.Errorf("CountRange(0, 255) = %d, want 5", got)
	}
}

func TestFromPairs(t *testing.T) {
	tests := []struct {
		name        string
		pairs       []Pair
		want        Histogram
		wantInvalid bool
	}{
		{
			name:  "nil",
			pairs: nil,
			want:  Histogram{},
		},
		{
			name:  "multiple items",
			pairs: []Pair{{0, 1}, {255, 7}},
			want:  func() Histogram { var h Histogram; h[0] = 1; h[255] = 7; return h }(),
		},
		{
			name:        "value too large",
			pairs:       []Pair{{256, 1}},
			wantInvalid: true,
		},
		{
			name:        "negative value",
			pairs:       []Pair{{-1, 1}},
			wantInvalid: true,
		},
		{
			name:        "repeated value",
			pairs:       []Pair{{3, 1}, {3, 2}},
			wantInvalid: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromPairs(tt.pairs)
			if tt.wantInvalid {
				if !errors.Is(err, invalid.ErrInput) {
					t.Fatalf("FromPairs() error = %v, want ErrInput", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("FromPairs() unexpected error = %v", err)
			}
			if got != tt.want {
				t.Errorf("FromPairs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHistogram_MarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		h    Histogram
		want string
	}{
		{
			name: "empty",
			h:    Histogram{},
			want: "[]",
		},
		{
			name: "some bins",
			h:    Compute([]byte{1, 2, 2}),
			want: `[{"value": 1, "count": 1}, {"value": 2, "count": 2}]`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotBytes, err := tt.h.MarshalJSON()
			if err != nil {
				t.Fatalf("MarshalJSON() error = %v", err)
			}
			if equal, err := utils.JSONEquals(gotBytes, []byte(tt.want)); err != nil {
				t.Errorf("MarshalJSON() error decoding JSON: %v", err)
			} else if !equal {
				t.Errorf("MarshalJSON() got %s, want %s", gotBytes, tt.want)
			}
		})
	}
}

func TestHistogram_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		want    Histogram
		wantErr bool
	}{
		{
			name: "null",
			json: "null",
			want: Histogram{},
		},
		{
			name: "pairs",
			json: `[{"value": 10, "count": 3}]`,
			want: func() Histogram { var h Histogram; h[10] = 3; return h }(),
		},
		{
			name:    "out of range",
			json:    `[{"value": 300, "count": 3}]`,
			want:    Compute([]byte{9}),
			wantErr: true,
		},
		{
			name:    "not an array",
			json:    `{"value": 1}`,
			want:    Compute([]byte{9}),
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// start from a non-empty histogram to check it is replaced (or
			// left alone on error)
			h := Compute([]byte{9})
			err := h.UnmarshalJSON([]byte(tt.json))
			if (err != nil) != tt.wantErr {
				t.Fatalf("UnmarshalJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
			if h != tt.want {
				t.Errorf("UnmarshalJSON() = %v, want %v", h, tt.want)
			}
		})
	}
}

func TestHistogram_String(t *testing.T) {
	if got, want := Compute([]byte{0x0a, 0x41, 0x41}).String(), "[0a: 1, 41: 2]"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
