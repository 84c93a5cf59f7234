package textutil

// Similarity scores two normalized strings in [0,1]: 1.0 for byte-equal
// inputs, 0.0 when either is empty, otherwise (maxLen - d) / maxLen where d
// is the Levenshtein edit distance.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0.0
	}
	if a == b {
		return 1.0
	}
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	return float64(maxLen-LevenshteinDistance(a, b)) / float64(maxLen)
}

// LevenshteinDistance computes the classic dynamic-programming edit distance
// with unit costs for insert, delete and substitute.
func LevenshteinDistance(a, b string) int {
	m := make([][]int, len(a)+1)
	for i := range m {
		m[i] = make([]int, len(b)+1)
		m[i][0] = i
	}
	for j := 0; j <= len(b); j++ {
		m[0][j] = j
	}
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			deletion := m[i-1][j] + 1
			insertion := m[i][j-1] + 1
			substitution := m[i-1][j-1] + cost
			best := deletion
			if insertion < best {
				best = insertion
			}
			if substitution < best {
				best = substitution
			}
			m[i][j] = best
		}
	}
	return m[len(a)][len(b)]
}

// Candidate is anything with a precomputed normalized key.
type Candidate interface {
	NormalizedKey() string
}

// BestMatch returns the candidate whose normalized key scores highest against
// the normalized target, or -1 when the best score is below threshold.
// Ties keep the first candidate encountered at the maximum score; callers
// rely on this being stable for a given candidate order. A perfect match
// short-circuits the scan.
func BestMatch[T Candidate](candidates []T, target string, threshold float64) int {
	normalized := Normalize(target)
	best := -1
	bestScore := 0.0
	for i, candidate := range candidates {
		score := Similarity(normalized, candidate.NormalizedKey())
		if score > bestScore {
			bestScore = score
			best = i
		}
		if score == 1.0 {
			break
		}
	}
	if bestScore < threshold {
		return -1
	}
	return best
}
