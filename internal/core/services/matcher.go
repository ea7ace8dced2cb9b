package services

import "sort"

// Matcher finds approximate string matches.
// Mention resolution only depends on this interface so the similarity
// metric can be swapped without touching the resolver.
type Matcher interface {
	// BestMatch returns the candidate most similar to target whose
	// similarity is at least threshold.
	BestMatch(target string, candidates []string, threshold float64) (string, bool)

	// CloseMatches returns up to n candidates with similarity at least
	// threshold, best first.
	CloseMatches(target string, candidates []string, threshold float64, n int) []string
}

// Verify interface compliance
var _ Matcher = SequenceMatcher{}

// SequenceMatcher scores strings with the Ratcliff/Obershelp
// "gestalt pattern matching" ratio: 2*M/T where M is the number of
// characters in matching blocks and T the combined length.
type SequenceMatcher struct{}

// NewSequenceMatcher returns the default Matcher.
func NewSequenceMatcher() Matcher {
	return SequenceMatcher{}
}

// BestMatch returns the highest scoring candidate at or above threshold.
// Ties go to the lexically greatest candidate.
func (m SequenceMatcher) BestMatch(target string, candidates []string, threshold float64) (string, bool) {
	matches := m.CloseMatches(target, candidates, threshold, 1)
	if len(matches) == 0 {
		return "", false
	}
	return matches[0], true
}

// CloseMatches returns up to n candidates scoring at or above threshold,
// ordered by decreasing score.
func (SequenceMatcher) CloseMatches(target string, candidates []string, threshold float64, n int) []string {
	if n <= 0 {
		return nil
	}

	type scored struct {
		value string
		score float64
	}

	t := []rune(target)
	var hits []scored
	for _, c := range candidates {
		if score := Ratio(t, []rune(c)); score >= threshold {
			hits = append(hits, scored{value: c, score: score})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].value > hits[j].value
	})

	if len(hits) > n {
		hits = hits[:n]
	}
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.value
	}
	return out
}

// Ratio returns the similarity of a and b in [0, 1].
// Two empty inputs are identical.
func Ratio(a, b []rune) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 1
	}
	return 2 * float64(matchingCharacters(a, b)) / float64(total)
}

// matchingCharacters sums the lengths of the matching blocks found by
// recursively taking the longest common substring and repeating on the
// unmatched pieces to its left and right.
func matchingCharacters(a, b []rune) int {
	type span struct{ alo, ahi, blo, bhi int }

	total := 0
	queue := []span{{0, len(a), 0, len(b)}}
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		i, j, k := longestMatch(a, b, s.alo, s.ahi, s.blo, s.bhi)
		if k == 0 {
			continue
		}
		total += k
		if s.alo < i && s.blo < j {
			queue = append(queue, span{s.alo, i, s.blo, j})
		}
		if i+k < s.ahi && j+k < s.bhi {
			queue = append(queue, span{i + k, s.ahi, j + k, s.bhi})
		}
	}
	return total
}

// longestMatch finds the longest block a[i:i+k] == b[j:j+k] inside the
// given ranges, preferring the earliest start in a, then in b.
func longestMatch(a, b []rune, alo, ahi, blo, bhi int) (besti, bestj, bestk int) {
	besti, bestj = alo, blo

	// prev[j+1] is the length of the match ending at a[i-1], b[j]
	prev := make([]int, bhi-blo+1)
	cur := make([]int, bhi-blo+1)
	for i := alo; i < ahi; i++ {
		for j := blo; j < bhi; j++ {
			if a[i] != b[j] {
				cur[j-blo+1] = 0
				continue
			}
			k := prev[j-blo] + 1
			cur[j-blo+1] = k
			if k > bestk {
				besti, bestj, bestk = i-k+1, j-k+1, k
			}
		}
		prev, cur = cur, prev
	}
	return besti, bestj, bestk
}
