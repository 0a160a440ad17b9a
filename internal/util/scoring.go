package util

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

// ScoreCompletions returns up to n candidates ranked against input, best
// first. Exact prefix matches rank ahead of other fuzzy matches; n <= 0
// means no limit. An empty input returns the candidates sorted.
func ScoreCompletions(input string, candidates []string, n int) []string {
	var out []string
	if input == "" {
		out = append(out, candidates...)
		sort.Strings(out)
	} else {
		matches := fuzzy.Find(input, candidates)
		sort.SliceStable(matches, func(i, j int) bool {
			pi := strings.HasPrefix(matches[i].Str, input)
			pj := strings.HasPrefix(matches[j].Str, input)
			if pi != pj {
				return pi
			}
			return matches[i].Score > matches[j].Score
		})
		out = make([]string, 0, len(matches))
		for _, m := range matches {
			out = append(out, m.Str)
		}
	}
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
