package character

// DefaultMatchThreshold is the minimum normalized similarity for a fuzzy
// alias match. Normalized Levenshtein keeps single-character typos of the
// common first names ("Dwigt" vs "dwight" scores 0.83) while rejecting
// unrelated tokens. Tunable, not inferred from data.
const DefaultMatchThreshold = 0.80

// Resolution is the outcome of resolving one raw speaker token.
type Resolution struct {
	// Character is the canonical name; empty when the token is unresolved.
	Character string

	// Alias is the normalized alias that matched.
	Alias string

	// Score is the match similarity: 1.0 for exact matches, the normalized
	// Levenshtein similarity for fuzzy ones, 0 when unresolved.
	Score float64

	// Raw keeps the original token for offline review of unresolved names.
	Raw string
}

// Resolved reports whether a canonical character was found.
func (r Resolution) Resolved() bool { return r.Character != "" }

// Resolver maps raw speaker tokens to canonical characters. It is a pure
// function of the token and the table: no state accumulates across calls,
// so identical inputs always produce identical outputs within a run.
type Resolver struct {
	table     *Table
	threshold float64
}

// NewResolver creates a resolver over an immutable alias table. threshold
// <= 0 selects DefaultMatchThreshold.
func NewResolver(table *Table, threshold float64) *Resolver {
	if threshold <= 0 {
		threshold = DefaultMatchThreshold
	}
	return &Resolver{table: table, threshold: threshold}
}

// Resolve normalizes the token, tries an exact alias match, then falls back
// to fuzzy matching against every known alias. On a continued miss the
// Resolution is unresolved and carries the raw token.
func (r *Resolver) Resolve(raw string) Resolution {
	token := normalizeToken(raw)
	if token == "" {
		return Resolution{Raw: raw}
	}

	if name, ok := r.table.byAlias[token]; ok {
		return Resolution{Character: name, Alias: token, Score: 1.0, Raw: raw}
	}

	best := Resolution{Raw: raw}
	for name, aliases := range r.table.aliases {
		for _, alias := range aliases {
			score := similarity(token, alias)
			if score < r.threshold {
				continue
			}
			if r.better(score, name, best) {
				best = Resolution{Character: name, Alias: alias, Score: score, Raw: raw}
			}
		}
	}

	return best
}

// better applies the fuzzy tie-break: highest similarity wins; equal scores
// prefer the character with more aliases (the more common character), then
// the lexicographically smaller name for determinism.
func (r *Resolver) better(score float64, name string, best Resolution) bool {
	if !best.Resolved() || score > best.Score {
		return true
	}
	if score < best.Score {
		return false
	}
	a, b := r.table.AliasCount(name), r.table.AliasCount(best.Character)
	if a != b {
		return a > b
	}
	return name < best.Character
}

// similarity is 1 - dist/maxLen over the normalized tokens, in [0, 1].
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	la, lb := len([]rune(a)), len([]rune(b))
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 0
	}
	return 1.0 - float64(levenshtein(a, b))/float64(longest)
}

// levenshtein computes edit distance with a two-row matrix.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, min(cur[j-1]+1, prev[j-1]+cost))
		}
		prev, cur = cur, prev
	}

	return prev[len(rb)]
}
