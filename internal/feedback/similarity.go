package feedback

import (
	"sort"
	"strings"
)

// similarityThreshold and maxSimilarResults are the fixed constants
// from spec.md §4.9: "Jaccard ... with a 0.3 threshold ... capped at
// three."
const (
	similarityThreshold = 0.3
	maxSimilarResults   = 3
)

// Match is one similar past query surfaced to the Prompt Builder.
type Match struct {
	Query      SuccessfulQuery
	Similarity float64
}

// Similar returns up to three past successful queries whose questions
// are similar to question, by Jaccard token overlap or substring
// containment, sorted by descending similarity.
func (s *Store) Similar(question string) []Match {
	queryTokens := tokenize(question)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []Match
	for _, sq := range s.queries {
		storedTokens := tokenize(sq.OriginalQuestion)
		sim := jaccard(queryTokens, storedTokens)
		if sim < similarityThreshold {
			if !containsAnyToken(sq.OriginalQuestion, queryTokens) {
				continue
			}
			sim = similarityThreshold
		}
		matches = append(matches, Match{Query: sq, Similarity: sim})
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Similarity > matches[j].Similarity })
	if len(matches) > maxSimilarResults {
		matches = matches[:maxSimilarResults]
	}
	return matches
}

func tokenize(s string) map[string]bool {
	tokens := make(map[string]bool)
	for _, word := range strings.Fields(strings.ToLower(s)) {
		tokens[word] = true
	}
	return tokens
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for token := range a {
		if b[token] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func containsAnyToken(stored string, tokens map[string]bool) bool {
	lowerStored := strings.ToLower(stored)
	for token := range tokens {
		if token != "" && strings.Contains(lowerStored, token) {
			return true
		}
	}
	return false
}
