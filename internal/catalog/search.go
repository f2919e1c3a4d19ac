package catalog

import (
	"context"
	"sort"
	"strings"
)

// Scoring constants: a name-token match at position 0 is worth the full
// bonus; positions 1..9 decay by 10 per position; further out scores nothing.
const (
	positionBonus = 100
	positionDecay = 10
	maxScoredPos  = 9
)

// Tokenize lowercases a query, splits it on whitespace and drops noise
// tokens of length <= 2.
func Tokenize(query string) []string {
	var tokens []string
	for _, tok := range strings.Fields(strings.ToLower(query)) {
		if len(tok) > 2 {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// scoreRelevance scores how well a component name matches the query tokens.
// Each query token is compared against every whitespace-split token of the
// name; matches accumulate independently, with no position de-duplication.
func scoreRelevance(tokens []string, name string) int {
	nameTokens := strings.Fields(strings.ToLower(name))

	score := 0
	for _, tok := range tokens {
		for pos, nameTok := range nameTokens {
			if tok != nameTok {
				continue
			}
			switch {
			case pos == 0:
				score += positionBonus
			case pos <= maxScoredPos:
				score += positionBonus - pos*positionDecay
			}
		}
	}
	return score
}

// Search returns catalog matches for a free-text query, most relevant first.
// The candidate set is the conjunctive (every token) substring filter; when
// that matches nothing it relaxes to the disjunctive (any token) filter. The
// two sets are never merged. Ties keep catalog order (stable sort).
func (s *Store) Search(ctx context.Context, query string, opts SearchOptions) ([]Match, error) {
	tokens := Tokenize(query)

	entries, err := s.filter(ctx, tokens, true, opts.Kind)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 && len(tokens) > 0 {
		entries, err = s.filter(ctx, tokens, false, opts.Kind)
		if err != nil {
			return nil, err
		}
	}

	matches := make([]Match, 0, len(entries))
	for _, e := range entries {
		matches = append(matches, Match{Entry: e, Score: scoreRelevance(tokens, e.Name)})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if opts.Limit > 0 && len(matches) > opts.Limit {
		matches = matches[:opts.Limit]
	}
	return matches, nil
}
