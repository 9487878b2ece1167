package agents

import "testing"

func TestDedupeKeepMaxKeepsHighestScore(t *testing.T) {
	in := []Candidate{
		{ID: "a", Score: 0.5},
		{ID: "b", Score: 0.9},
		{ID: "a", Score: 0.8},
		{ID: "b", Score: 0.2},
	}
	got := DedupeKeepMax(in)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != "a" || got[0].Score != 0.8 {
		t.Fatalf("got[0] = %+v", got[0])
	}
	if got[1].ID != "b" || got[1].Score != 0.9 {
		t.Fatalf("got[1] = %+v", got[1])
	}
}

func TestDedupeKeepMaxPreservesFirstSeenOrder(t *testing.T) {
	in := []Candidate{
		{ID: "x", Score: 0.1},
		{ID: "y", Score: 0.2},
		{ID: "z", Score: 0.3},
		{ID: "x", Score: 0.9},
	}
	got := DedupeKeepMax(in)
	if got[0].ID != "x" || got[1].ID != "y" || got[2].ID != "z" {
		t.Fatalf("order = %s %s %s", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestDedupeKeepMaxKeepsFirstMetadataWins(t *testing.T) {
	in := []Candidate{
		{ID: "a", Kind: "video", Title: "first", Score: 0.3},
		{ID: "a", Kind: "report", Title: "second", Score: 0.7},
	}
	got := DedupeKeepMax(in)
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	// Only the score is merged; identity fields come from the first entry.
	if got[0].Title != "first" || got[0].Kind != "video" || got[0].Score != 0.7 {
		t.Fatalf("got = %+v", got[0])
	}
}

func TestDedupeKeepMaxEmpty(t *testing.T) {
	if got := DedupeKeepMax(nil); got != nil {
		t.Fatalf("got = %v, want nil", got)
	}
}
