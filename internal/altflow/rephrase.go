package altflow

import (
	"context"
	"regexp"
	"strings"
)

// degenerateRephrasePatterns flags an LLM rephrasing attempt that
// leaked code instead of producing a plain-language question, per
// spec.md §4.8 ("contains import or result =").
var degenerateRephrasePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bimport\b`),
	regexp.MustCompile(`result\s*=`),
}

// Rephraser asks an LLM to restate a question using only the
// available schema. The Analysis Engine supplies this from its
// Gateway so altflow stays independent of the concrete provider.
type Rephraser interface {
	Rephrase(ctx context.Context, question string, failedCode string, errMsg string, availableSchema string) (string, error)
}

// domainWordSubstitutions is the rule-based simplification's neutral
// vocabulary swap, applied before falling further back to the noun
// phrase or generic-summary degradation.
var domainWordSubstitutions = map[string]string{
	"revenue":  "amount",
	"customer": "record",
	"client":   "record",
	"vendor":   "record",
	"employee": "record",
}

// Recover produces a simplified question to retry with, preferring an
// LLM rephrasing and falling back to rule-based simplification when
// the LLM is unavailable or returns a degenerate result.
func Recover(ctx context.Context, rephraser Rephraser, question, failedCode, errMsg, availableSchema string) string {
	if rephraser != nil {
		if rephrased, err := rephraser.Rephrase(ctx, question, failedCode, errMsg, availableSchema); err == nil {
			candidate := strings.TrimSpace(rephrased)
			if candidate != "" && !isDegenerate(candidate) {
				return candidate
			}
		}
	}
	return Simplify(question)
}

func isDegenerate(text string) bool {
	for _, p := range degenerateRephrasePatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// wh words checked in priority order when extracting a trailing noun
// phrase from a failed question.
var whWords = []string{"what", "which", "how many", "how much", "who", "where", "when"}

// Simplify applies the rule-based fallback: substitute domain-specific
// words with neutral ones, extract the trailing noun phrase after a
// wh-word, and finally degrade to a generic summary request.
func Simplify(question string) string {
	lower := strings.ToLower(question)

	for domain, neutral := range domainWordSubstitutions {
		if strings.Contains(lower, domain) {
			return strings.ReplaceAll(lower, domain, neutral)
		}
	}

	for _, wh := range whWords {
		if idx := strings.Index(lower, wh); idx >= 0 {
			rest := strings.TrimSpace(lower[idx+len(wh):])
			rest = strings.TrimPrefix(rest, "is")
			rest = strings.TrimPrefix(rest, "are")
			rest = strings.TrimPrefix(rest, "does")
			rest = strings.TrimSpace(rest)
			if rest != "" {
				return "show " + rest
			}
		}
	}

	return "show a summary of the available data"
}
