package agents

// DedupeKeepMax collapses candidates sharing an ID down to one entry
// carrying the highest score seen for that ID. First-seen order is
// preserved so upstream ranking survives the merge.
func DedupeKeepMax(items []Candidate) []Candidate {
	if len(items) == 0 {
		return nil
	}
	index := make(map[string]int, len(items))
	out := make([]Candidate, 0, len(items))
	for _, item := range items {
		if i, ok := index[item.ID]; ok {
			if item.Score > out[i].Score {
				out[i].Score = item.Score
			}
			continue
		}
		index[item.ID] = len(out)
		out = append(out, item)
	}
	return out
}
