// Package recommend blends the two recommendation sources: the ranked ID
// list from the interaction graph walk and the scored matches from vector
// similarity search.
package recommend

import "sort"

// RankedItem is one scored entry in a recommendation list.
type RankedItem struct {
	ID    string
	Score float64
}

// Merge combines a graph-ranked ID list with similarity-scored matches.
//
// Graph entries receive a synthetic score by linear position decay: the item
// at zero-based rank i of N contributes (N-i)/N * graphWeight, so earlier
// positions are worth more. Similarity entries contribute their reported
// score scaled by (1-graphWeight). Contributions are summed when an ID
// appears in both sources. The result is sorted by total score descending
// and truncated to count.
//
// Ties keep insertion order, graph entries first. graphWeight is clamped
// into [0,1]. count <= 0 or two empty inputs produce an empty list.
func Merge(graphRanked []string, similarityRanked []RankedItem, graphWeight float64, count int) []RankedItem {
	if count <= 0 {
		return []RankedItem{}
	}
	if graphWeight < 0 {
		graphWeight = 0
	} else if graphWeight > 1 {
		graphWeight = 1
	}
	simWeight := 1 - graphWeight

	type entry struct {
		id    string
		score float64
		order int
	}

	totals := make(map[string]*entry, len(graphRanked)+len(similarityRanked))
	ordered := make([]*entry, 0, len(graphRanked)+len(similarityRanked))

	add := func(id string, score float64) {
		if id == "" {
			return
		}
		if e, ok := totals[id]; ok {
			e.score += score
			return
		}
		e := &entry{id: id, score: score, order: len(ordered)}
		totals[id] = e
		ordered = append(ordered, e)
	}

	n := len(graphRanked)
	for i, id := range graphRanked {
		add(id, float64(n-i)/float64(n)*graphWeight)
	}
	for _, item := range similarityRanked {
		add(item.ID, item.Score*simWeight)
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].score > ordered[j].score
	})

	if len(ordered) > count {
		ordered = ordered[:count]
	}

	out := make([]RankedItem, 0, len(ordered))
	for _, e := range ordered {
		out = append(out, RankedItem{ID: e.id, Score: e.score})
	}
	return out
}
