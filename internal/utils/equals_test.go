package utils

import (
	"math"
	"testing"
)

func TestFloatEquals(t *testing.T) {
	tests := []struct {
		name   string
		x1, x2 float64
		absTol float64
		want   bool
	}{
		{"identical", 8.0, 8.0, 0, true},
		{"difference equals tolerance", 1.0, 1.5, 0.5, false},
		{"within tolerance", 7.99, 8.0, 0.02, true},
		{"entropy rounding", 0.9182958340544896, 0.9182958340544894, 1e-12, true},
		{"both NaN", math.NaN(), math.NaN(), 0, true},
		{"one NaN", math.NaN(), 1, math.Inf(1), false},
		{"infinities", math.Inf(1), math.Inf(1), 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FloatEquals(tt.x1, tt.x2, tt.absTol); got != tt.want {
				t.Errorf("FloatEquals(%v, %v, %v) = %v, want %v", tt.x1, tt.x2, tt.absTol, got, tt.want)
			}
		})
	}
}

func TestJSONEquals(t *testing.T) {
	tests := []struct {
		name    string
		j1, j2  string
		want    bool
		wantErr bool
	}{
		{name: "empty objects", j1: `{}`, j2: `{}`, want: true},
		{name: "key order", j1: `{"count": 3, "key": "6c"}`, j2: `{"key":"6c","count":3}`, want: true},
		{name: "nested", j1: `{"files": [{"size": 12}]}`, j2: `{ "files" : [ { "size" : 12 } ] }`, want: true},
		{name: "array order matters", j1: `[1, 2]`, j2: `[2, 1]`, want: false},
		{name: "different value", j1: `{"size": 12}`, j2: `{"size": 13}`, want: false},
		{name: "invalid first", j1: `{`, j2: `{}`, wantErr: true},
		{name: "invalid second", j1: `{}`, j2: `nope`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := JSONEquals([]byte(tt.j1), []byte(tt.j2))
			if (err != nil) != tt.wantErr {
				t.Fatalf("JSONEquals() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("JSONEquals(%s, %s) = %v, want %v", tt.j1, tt.j2, got, tt.want)
			}
		})
	}
}
