package docstore

import (
	"testing"
	"time"
)

func TestCompareValues(t *testing.T) {
	t1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Format(time.RFC3339Nano)
	t2 := time.Date(2026, 1, 1, 0, 0, 0, 100, time.UTC).Format(time.RFC3339Nano)
	cases := []struct {
		name string
		a, b any
		want int
	}{
		{name: "nil_first", a: nil, b: "x", want: -1},
		{name: "numbers", a: float64(2), b: float64(10), want: -1},
		{name: "strings", a: "b", b: "a", want: 1},
		{name: "timestamps_not_lexical", a: t1, b: t2, want: -1},
		{name: "bools", a: false, b: true, want: -1},
		{name: "equal", a: "same", b: "same", want: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := compareValues(tc.a, tc.b); got != tc.want {
				t.Fatalf("compareValues(%v,%v)=%d, want %d", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestMergeUnionOnMissingOrScalarField(t *testing.T) {
	out, err := merge(map[string]any{"tags": "oops"}, map[string]any{
		"tags":  Union("a", "a", "b"),
		"other": Union(1),
	})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	tags, _ := out["tags"].([]any)
	if len(tags) != 2 || tags[0] != "a" || tags[1] != "b" {
		t.Fatalf("tags=%v", out["tags"])
	}
	other, _ := out["other"].([]any)
	if len(other) != 1 || other[0] != float64(1) {
		t.Fatalf("other=%v", out["other"])
	}
}

func TestMatchesNestedAndMissing(t *testing.T) {
	data := map[string]any{"user": map[string]any{"email": "a@b.c"}, "n": float64(1)}
	if !matches(data, []Filter{Where("user.email", "a@b.c"), Where("n", 1)}) {
		t.Fatalf("nested filter did not match")
	}
	if matches(data, []Filter{Where("missing", nil)}) {
		t.Fatalf("missing field matched nil filter")
	}
}
