package utils

import (
	"flag"
	"reflect"
	"strconv"
	"testing"
)

func TestRemoveDuplicates(t *testing.T) {
	tests := []struct {
		name  string
		items []int
		want  []int
	}{
		{"nil", nil, nil},
		{"no duplicates", []int{4, 2, 1}, []int{4, 2, 1}},
		{"first occurrence kept", []int{2, 1, 2, 4, 1}, []int{2, 1, 4}},
		{"all equal", []int{1, 1, 1}, []int{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RemoveDuplicates(tt.items); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("RemoveDuplicates(%v) = %v, want %v", tt.items, got, tt.want)
			}
		})
	}
}

func TestTransform(t *testing.T) {
	got := Transform([]int{1, 2, 3}, strconv.Itoa)
	if want := []string{"1", "2", "3"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Transform() = %v, want %v", got, want)
	}
	if got := Transform(nil, strconv.Itoa); len(got) != 0 {
		t.Errorf("Transform(nil) = %v, want empty", got)
	}
}

func TestCommaSeparatedFlags(t *testing.T) {
	csf := CommaSeparatedFlags("sizes", []string{"1", "2"}, "usage")
	if got := csf.String(); got != "1,2" {
		t.Errorf("String() = %q, want %q", got, "1,2")
	}

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.Var(&csf, csf.Name, csf.Info)
	if err := fs.Parse([]string{"-sizes", "3,5,8"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if want := []string{"3", "5", "8"}; !reflect.DeepEqual(csf.Values, want) {
		t.Errorf("Values = %v, want %v", csf.Values, want)
	}

	empty := CommaSeparatedFlags("x", nil, "")
	if got := empty.String(); got != "" {
		t.Errorf("String() = %q, want empty", got)
	}
}
