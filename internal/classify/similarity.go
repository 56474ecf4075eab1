package classify

import "math"

// Ratio scores how similar a and b are on a 0-100 scale, where 100 means
// identical. It is the indel-normalised Levenshtein ratio: substitutions
// cost two, so the score is 2*matches / (len(a)+len(b)).
func Ratio(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 100
	}
	distance := indelDistance(ra, rb)
	return int(math.RoundToEven(100 * float64(total-distance) / float64(total)))
}

// indelDistance is the edit distance with insertions and deletions costing
// one and substitutions costing two
func indelDistance(s1, s2 []rune) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j <= len(s2); j++ {
			cost := 2
			if s1[i-1] == s2[j-1] {
				cost = 0
			}

			deletion := prev[j] + 1
			insertion := curr[j-1] + 1
			substitution := prev[j-1] + cost

			curr[j] = min(deletion, insertion, substitution)
		}
		prev, curr = curr, prev
	}

	return prev[len(s2)]
}
