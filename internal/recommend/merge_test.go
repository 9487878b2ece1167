package recommend

import (
	"math"
	"testing"
)

func ids(items []RankedItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestMergeDisjointUnion(t *testing.T) {
	graph := []string{"a", "b"}
	sim := []RankedItem{{ID: "c", Score: 0.9}, {ID: "d", Score: 0.4}}

	got := Merge(graph, sim, 0.7, 10)
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}
	seen := map[string]int{}
	for _, it := range got {
		seen[it.ID]++
	}
	for _, id := range []string{"a", "b", "c", "d"} {
		if seen[id] != 1 {
			t.Fatalf("id %q appears %d times, want 1", id, seen[id])
		}
	}
}

func TestMergeOverlapSumsContributions(t *testing.T) {
	// Graph rank 0 of 4 contributes 1.0*0.7; similarity 0.5 contributes
	// 0.5*0.3; total 0.85.
	graph := []string{"x", "b", "c", "d"}
	sim := []RankedItem{{ID: "x", Score: 0.5}}

	got := Merge(graph, sim, 0.7, 10)
	if got[0].ID != "x" {
		t.Fatalf("top = %q, want x", got[0].ID)
	}
	if math.Abs(got[0].Score-0.85) > 1e-9 {
		t.Fatalf("score = %v, want 0.85", got[0].Score)
	}
}

func TestMergeSortedDescendingAndBounded(t *testing.T) {
	graph := []string{"a", "b", "c"}
	sim := []RankedItem{{ID: "b", Score: 0.8}, {ID: "z", Score: 0.95}}
	w := 0.6

	got := Merge(graph, sim, w, 10)
	for i := 1; i < len(got); i++ {
		if got[i].Score > got[i-1].Score {
			t.Fatalf("not sorted at %d: %v > %v", i, got[i].Score, got[i-1].Score)
		}
	}
	bound := w + (1-w)*0.95
	for _, it := range got {
		if it.Score > bound+1e-9 {
			t.Fatalf("score %v exceeds bound %v", it.Score, bound)
		}
	}
}

func TestMergeTruncation(t *testing.T) {
	graph := []string{"a", "b", "c", "d", "e"}
	sim := []RankedItem{{ID: "f", Score: 0.5}}

	got := Merge(graph, sim, 0.7, 3)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}

	got = Merge(graph, sim, 0.7, 100)
	if len(got) != 6 {
		t.Fatalf("len = %d, want all 6 unique ids", len(got))
	}
}

func TestMergeEmptyInputs(t *testing.T) {
	got := Merge(nil, nil, 0.7, 10)
	if len(got) != 0 {
		t.Fatalf("len = %d, want 0", len(got))
	}
}

func TestMergeGraphOnlyKeepsOrderAndDecay(t *testing.T) {
	got := Merge([]string{"a", "b"}, nil, 1.0, 10)
	if !equalIDs(ids(got), []string{"a", "b"}) {
		t.Fatalf("ids = %v, want [a b]", ids(got))
	}
	if math.Abs(got[0].Score-1.0) > 1e-9 || math.Abs(got[1].Score-0.5) > 1e-9 {
		t.Fatalf("scores = %v %v, want 1.0 0.5", got[0].Score, got[1].Score)
	}
}

func TestMergeTieBreakInsertionOrderGraphFirst(t *testing.T) {
	// graphWeight 0 zeroes all graph contributions; graph entries still come
	// first among equal scores because they were inserted first.
	graph := []string{"g1", "g2"}
	sim := []RankedItem{{ID: "s1", Score: 0}, {ID: "s2", Score: 0}}

	got := Merge(graph, sim, 0, 10)
	if !equalIDs(ids(got), []string{"g1", "g2", "s1", "s2"}) {
		t.Fatalf("ids = %v, want [g1 g2 s1 s2]", ids(got))
	}
}

func TestMergeClampsWeight(t *testing.T) {
	// Above 1 clamps to 1: similarity contributions vanish.
	got := Merge([]string{"a"}, []RankedItem{{ID: "s", Score: 0.9}}, 1.5, 10)
	if got[0].ID != "a" || math.Abs(got[0].Score-1.0) > 1e-9 {
		t.Fatalf("top = %+v, want a/1.0", got[0])
	}
	for _, it := range got {
		if it.ID == "s" && it.Score != 0 {
			t.Fatalf("similarity contribution = %v, want 0", it.Score)
		}
	}

	// Below 0 clamps to 0: graph contributions vanish.
	got = Merge([]string{"a"}, []RankedItem{{ID: "s", Score: 0.9}}, -0.5, 10)
	if got[0].ID != "s" || math.Abs(got[0].Score-0.9) > 1e-9 {
		t.Fatalf("top = %+v, want s/0.9", got[0])
	}
}

func TestMergeZeroCount(t *testing.T) {
	got := Merge([]string{"a"}, []RankedItem{{ID: "b", Score: 0.5}}, 0.7, 0)
	if len(got) != 0 {
		t.Fatalf("len = %d, want 0", len(got))
	}
}
