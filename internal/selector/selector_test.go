package selector

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	cases := []struct {
		name        string
		expr        string
		n           int
		wantIndices []int
		wantIgnored []string
	}{
		{name: "single", expr: "2", n: 3, wantIndices: []int{1}},
		{name: "list and range", expr: "1,3-5,8", n: 10, wantIndices: []int{0, 2, 3, 4, 7}},
		{name: "out of range token", expr: "1-2,5", n: 4, wantIndices: []int{0, 1}, wantIgnored: []string{"5"}},
		{name: "range clipped to list", expr: "3-6", n: 4, wantIndices: []int{2, 3}},
		{name: "reversed range", expr: "3-1", n: 4, wantIndices: []int{0, 1, 2}},
		{name: "duplicates collapse", expr: "2,2,1-2", n: 4, wantIndices: []int{0, 1}},
		{name: "whitespace separators", expr: " 1 , 3  4", n: 4, wantIndices: []int{0, 2, 3}},
		{name: "garbage tokens", expr: "a,1-x,-,0,2", n: 4, wantIndices: []int{1}, wantIgnored: []string{"a", "1-x", "-", "0"}},
		{name: "empty", expr: "", n: 4},
		{name: "empty list", expr: "1", n: 0, wantIgnored: []string{"1"}},
		{name: "huge range", expr: "1-3000000000", n: 3, wantIndices: []int{0, 1, 2}},
		{name: "range to max int", expr: "1-9223372036854775807", n: 3, wantIndices: []int{0, 1, 2}},
		{name: "zero range", expr: "0-0", n: 3, wantIgnored: []string{"0-0"}},
		{name: "range past end", expr: "7-9", n: 3, wantIgnored: []string{"7-9"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Parse(tc.expr, tc.n)
			if diff := cmp.Diff(tc.wantIndices, got.Indices); diff != "" {
				t.Fatalf("indices mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tc.wantIgnored, got.Ignored); diff != "" {
				t.Fatalf("ignored mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSelectionDescending(t *testing.T) {
	sel := Parse("1,3-4", 5)
	if diff := cmp.Diff([]int{3, 2, 0}, sel.Descending()); diff != "" {
		t.Fatalf("descending mismatch (-want +got):\n%s", diff)
	}
	if sel.Empty() {
		t.Fatal("expected non-empty selection")
	}
	if !Parse("9", 2).Empty() {
		t.Fatal("expected empty selection for out-of-range token")
	}
}
