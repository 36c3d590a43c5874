package picker

import (
	"sort"

	"github.com/sahilm/fuzzy"
)

// Score reports how well query fuzzy-matches text. Matching is a
// case-insensitive subsequence test; higher scores are better. An empty
// query matches every text with score 0.
func Score(text, query string) (int, bool) {
	if query == "" {
		return 0, true
	}
	matches := fuzzy.FindNoSort(query, []string{text})
	if len(matches) == 0 {
		return 0, false
	}
	return matches[0].Score, true
}

// rankedEntry is one surviving candidate of a ranking pass.
type rankedEntry struct {
	score int
	index int // position in the candidate slice
}

// rank scores every display string against query and returns the matches
// ordered by descending score, then ascending index.
func rank(displays []string, query string) []rankedEntry {
	ranked := make([]rankedEntry, 0, len(displays))
	if query == "" {
		for i := range displays {
			ranked = append(ranked, rankedEntry{index: i})
		}
		return ranked
	}

	for _, m := range fuzzy.FindNoSort(query, displays) {
		ranked = append(ranked, rankedEntry{score: m.Score, index: m.Index})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].index < ranked[j].index
	})
	return ranked
}
