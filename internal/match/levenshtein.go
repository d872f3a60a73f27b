package match

// Levenshtein returns the edit distance between a and b counted in runes: the fewest
// single-rune insertions, deletions and substitutions turning one into the other.
func Levenshtein(a, b string) int {
	return distance([]rune(a), []rune(b))
}

func distance(a, b []rune) int {
	if len(a) > len(b) {
		a, b = b, a
	}

	if len(a) == 0 {
		return len(b)
	}

	// one row of the matrix, indexed by position in the shorter string
	row := make([]int, len(a)+1)
	for i := range row {
		row[i] = i
	}

	for j, rb := range b {
		diag := row[0]
		row[0] = j + 1

		for i, ra := range a {
			cost := 1
			if ra == rb {
				cost = 0
			}

			next := min(row[i+1]+1, row[i]+1, diag+cost)
			diag = row[i+1]
			row[i+1] = next
		}
	}

	return row[len(a)]
}

// Similarity scores a against b in [0, 1]: 1 - distance / longer length. Two empty
// strings are identical.
func Similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)

	longest := max(len(ra), len(rb))
	if longest == 0 {
		return 1
	}

	return 1 - float64(distance(ra, rb))/float64(longest)
}

// NameSimilarity compares two member names after normalization, keeping the better
// score of the plain and the suffix-stripped forms: "CustomerID" is close to "Customer".
func NameSimilarity(a, b string) float64 {
	return max(
		Similarity(NormalizeIdent(a), NormalizeIdent(b)),
		Similarity(trimIdentSuffix(a), trimIdentSuffix(b)),
	)
}
