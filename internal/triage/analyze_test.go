package triage

import (
	"bytes"
	"context"
	"errors"
	"math/rand"
	"reflect"
	"testing"

	"github.com/ossf/content-triage/internal/triage/classify"
	"github.com/ossf/content-triage/internal/triage/entropy"
	"github.com/ossf/content-triage/internal/triage/histogram"
	"github.com/ossf/content-triage/internal/triage/ngram"
	"github.com/ossf/content-triage/internal/utils"
)

func TestResolveTasks(t *testing.T) {
	tests := []struct {
		name    string
		tasks   []Task
		want    map[Task]bool
		wantErr bool
	}{
		{
			name:  "default is all tasks",
			tasks: nil,
			want: map[Task]bool{
				Histogram: true, Entropy: true, NGrams: true, Signature: true,
				Classify: true, Compressibility: true, Profile: true,
			},
		},
		{
			name:  "entropy adds histogram",
			tasks: []Task{Entropy},
			want:  map[Task]bool{Entropy: true, Histogram: true},
		},
		{
			name:  "classify adds histogram",
			tasks: []Task{Signature, Classify},
			want:  map[Task]bool{Signature: true, Classify: true, Histogram: true},
		},
		{
			name:  "independent task",
			tasks: []Task{NGrams},
			want:  map[Task]bool{NGrams: true},
		},
		{
			name:    "unknown task",
			tasks:   []Task{Entropy, "magic"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveTasks(context.Background(), tt.tasks)
			if (err != nil) != tt.wantErr {
				t.Fatalf("resolveTasks() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidInput) {
					t.Errorf("resolveTasks() error = %v, want ErrInvalidInput", err)
				}
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("resolveTasks() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNGramSizes(t *testing.T) {
	tests := []struct {
		in   []int
		want []int
	}{
		{nil, []int{1, 2, 4}},
		{[]int{3}, []int{3}},
		{[]int{4, 2, 4, 1, 2}, []int{1, 2, 4}},
		{[]int{0, -1, 2}, []int{2}},
		{[]int{0, -3}, nil},
	}
	for _, tt := range tests {
		if got := ngramSizes(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ngramSizes(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestAnalyzeHelloWorld(t *testing.T) {
	sample := []byte("hello world\n")
	r, err := Analyze(context.Background(), sample, Options{
		DeclaredType: "text/plain",
		NGramSizes:   []int{1},
		TopM:         2,
	})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if r.SampleSize != 12 || r.FileSize != 12 {
		t.Errorf("SampleSize, FileSize = %d, %d; want 12, 12", r.SampleSize, r.FileSize)
	}
	if r.Histogram == nil || r.Histogram.Total() != 12 {
		t.Errorf("Histogram = %v, want a histogram totalling 12", r.Histogram)
	}
	if r.Entropy == nil || !utils.FloatEquals(*r.Entropy, entropy.Of(sample), 1e-12) {
		t.Errorf("Entropy = %v, want %f", r.Entropy, entropy.Of(sample))
	}
	if r.Signature == nil || r.Signature.Label != "Text" || r.Signature.Description != "" {
		t.Errorf("Signature = %+v, want Text without description", r.Signature)
	}
	c := r.Classification
	if c == nil {
		t.Fatalf("Classification = nil")
	}
	if c.IsBinary || c.PrintableRatio != 1.0 || !c.MatchesDeclared || c.Confidence != classify.High {
		t.Errorf("Classification = %+v", *c)
	}

	wantNGrams := []NGramResult{{
		N:        1,
		Total:    12,
		Distinct: 9,
		Top: []ngram.Record{
			{Key: "6c", Count: 3, FirstOffset: 2},
			{Key: "6f", Count: 2, FirstOffset: 4},
		},
	}}
	if !reflect.DeepEqual(r.NGrams, wantNGrams) {
		t.Errorf("NGrams = %+v, want %+v", r.NGrams, wantNGrams)
	}

	// too short for the probe, and shorter than the default profile window
	if r.Compressibility == nil || !r.Compressibility.Empty() {
		t.Errorf("Compressibility = %+v, want empty estimate", r.Compressibility)
	}
	if r.Profile == nil || len(r.Profile.Values) != 0 {
		t.Errorf("Profile = %+v, want empty profile", r.Profile)
	}
}

func TestAnalyzeRandom(t *testing.T) {
	sample := make([]byte, 2048)
	rand.New(rand.NewSource(42)).Read(sample)
	sample[0] = 0xc3 // no signature starts with this byte

	r, err := Analyze(context.Background(), sample, Options{FileSize: 1 << 20})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if *r.Entropy <= 7.5 {
		t.Errorf("Entropy = %f, want > 7.5", *r.Entropy)
	}
	if !r.Classification.IsBinary {
		t.Errorf("IsBinary = false, want true")
	}
	if r.Signature.Label != "Unknown" {
		t.Errorf("Signature.Label = %q, want Unknown", r.Signature.Label)
	}
	if !r.Classification.CompressionLikely {
		t.Errorf("CompressionLikely = false, want true")
	}
	if r.Compressibility.Best < 0.95 {
		t.Errorf("Compressibility.Best = %f, want >= 0.95", r.Compressibility.Best)
	}
	// window 256, step 128
	if got, want := len(r.Profile.Values), (2048-256)/128+1; got != want {
		t.Errorf("len(Profile.Values) = %d, want %d", got, want)
	}
	if len(r.NGrams) != 3 {
		t.Errorf("len(NGrams) = %d, want 3", len(r.NGrams))
	}
	for _, table := range r.NGrams {
		if table.Total != len(sample)-table.N+1 {
			t.Errorf("%d-grams: Total = %d, want %d", table.N, table.Total, len(sample)-table.N+1)
		}
	}
}

func TestAnalyzeSelectedTasks(t *testing.T) {
	r, err := Analyze(context.Background(), []byte("abc"), Options{Tasks: []Task{Entropy}})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if r.Entropy == nil || r.Histogram == nil {
		t.Errorf("Entropy, Histogram = %v, %v; want both set", r.Entropy, r.Histogram)
	}
	if r.NGrams != nil || r.Signature != nil || r.Classification != nil || r.Compressibility != nil || r.Profile != nil {
		t.Errorf("Analyze() ran tasks that were not requested: %+v", r)
	}
}

func TestAnalyzeEmpty(t *testing.T) {
	r, err := Analyze(context.Background(), nil, Options{})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if *r.Entropy != 0 {
		t.Errorf("Entropy = %f, want 0", *r.Entropy)
	}
	if *r.Histogram != (histogram.Histogram{}) {
		t.Errorf("Histogram = %v, want all zero", r.Histogram)
	}
	if r.Signature.Label != "Text" || r.Classification.DetectedType != "Text" || r.Classification.PrintableRatio != 1 {
		t.Errorf("Signature, Classification = %+v, %+v", r.Signature, r.Classification)
	}
	for _, table := range r.NGrams {
		if table.Total != 0 || len(table.Top) != 0 {
			t.Errorf("%d-grams = %+v, want empty", table.N, table)
		}
	}
}

func TestAnalyzeInvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"negative file size", Options{FileSize: -1}},
		{"file smaller than sample", Options{FileSize: 2}},
		{"negative window", Options{ProfileWindow: -1}},
		{"negative step", Options{ProfileStep: -4}},
		{"unknown task", Options{Tasks: []Task{"bogus"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Analyze(context.Background(), []byte("abcd"), tt.opts)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Analyze() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestAnalyzeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Analyze(ctx, []byte("abcd"), Options{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Analyze() error = %v, want context.Canceled", err)
	}
}

func TestAnalyzeDeclaredTypeHint(t *testing.T) {
	jpeg := append([]byte{0xff, 0xd8, 0xff, 0xe0}, bytes.Repeat([]byte{0x10}, 60)...)
	tests := []struct {
		name     string
		sample   []byte
		declared string
		hint     bool
		wantHint string
	}{
		{"agreeing types give no hint", jpeg, "image/jpeg", true, ""},
		{"disabled", jpeg, "image/png", false, ""},
		{"disagreeing types", jpeg, "image/png", true, "PNG"},
		{"nothing declared", jpeg, "", true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Analyze(context.Background(), tt.sample, Options{
				Tasks:            []Task{Signature},
				DeclaredType:     tt.declared,
				DeclaredTypeHint: tt.hint,
			})
			if err != nil {
				t.Fatalf("Analyze() error = %v", err)
			}
			if r.Signature.Label != "JPEG" || r.Signature.Description != "JPEG image" {
				t.Errorf("Signature = %+v, want JPEG", r.Signature)
			}
			if r.Signature.DeclaredHint != tt.wantHint {
				t.Errorf("DeclaredHint = %q, want %q", r.Signature.DeclaredHint, tt.wantHint)
			}
		})
	}
}

func TestAnalyzeIsIndependentPerCall(t *testing.T) {
	sample := []byte("abcabcabc")
	first, err := Analyze(context.Background(), sample, Options{})
	if err != nil {
		t.Fatal(err)
	}
	first.Histogram['a'] = 1000
	first.NGrams[0].Top[0].Count = 1000

	second, err := Analyze(context.Background(), sample, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if second.Histogram['a'] != 3 || second.NGrams[0].Top[0].Count != 3 {
		t.Errorf("second Analyze() sees changes made to the first result")
	}
	if !bytes.Equal(sample, []byte("abcabcabc")) {
		t.Errorf("Analyze() modified the sample")
	}
}
