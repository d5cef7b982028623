package lookup

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// corrector suggests the closest known name for a misspelled one
type corrector struct {
	words    []string
	wordFreq map[string]int
}

func newCorrector(words map[string]int) *corrector {
	list := make([]string, 0, len(words))
	for w := range words {
		list = append(list, w)
	}
	// map order is random; keep ties stable
	sort.Strings(list)
	return &corrector{words: list, wordFreq: words}
}

// maxEdits allows one typo in short names and two in longer ones.
func maxEdits(n int) int {
	if n <= 5 {
		return 1
	}
	return 2
}

// SuggestCorrection returns the most likely correction for input. The
// preference is: exact match, fewest edits, most populous, alphabetical.
// Input may also be an unfinished name, so each candidate is compared both
// whole and cut to the input's length.
func (c *corrector) SuggestCorrection(input string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(input))
	n := utf8.RuneCountInString(lower)
	if n < 3 || c == nil {
		return input, false
	}
	if _, ok := c.wordFreq[lower]; ok {
		return lower, false
	}

	first, _ := utf8.DecodeRuneInString(lower)
	limit := maxEdits(n)
	best, bestDist, bestFreq := "", limit+1, -1
	for _, w := range c.words {
		if r, _ := utf8.DecodeRuneInString(w); r != first {
			continue
		}
		d := editDistance(lower, w)
		if cut := []rune(w); len(cut) > n {
			d = min(d, editDistance(lower, string(cut[:n])))
		}
		if d > limit {
			continue
		}
		freq := c.wordFreq[w]
		if d < bestDist || (d == bestDist && freq > bestFreq) {
			best, bestDist, bestFreq = w, d, freq
		}
	}
	if best == "" {
		return input, false
	}
	return best, true
}

// editDistance is the optimal string alignment distance between a and b:
// insertions, deletions, substitutions and adjacent swaps each cost one.
func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	d := make([][]int, len(ra)+1)
	for i := range d {
		d[i] = make([]int, len(rb)+1)
		d[i][0] = i
	}
	for j := range d[0] {
		d[0][j] = j
	}
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			d[i][j] = min(d[i-1][j]+1, d[i][j-1]+1, d[i-1][j-1]+cost)
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				d[i][j] = min(d[i][j], d[i-2][j-2]+1)
			}
		}
	}
	return d[len(ra)][len(rb)]
}
