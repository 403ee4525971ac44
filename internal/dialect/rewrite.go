package dialect

import (
	"regexp"
	"strings"
)

// rewriteRule is one textual substitution applied, in order, to
// generated SQL before execution.
type rewriteRule struct {
	pattern     *regexp.Regexp
	replacement string
}

var rewriteRules = []rewriteRule{
	// DATE_FORMAT(col, fmt) -> strftime(fmt, col); argument order swaps.
	{
		pattern:     regexp.MustCompile(`(?i)DATE_FORMAT\(\s*([^,()]+?)\s*,\s*([^()]+?)\s*\)`),
		replacement: "strftime($2, $1)",
	},
	{
		pattern:     regexp.MustCompile(`(?i)TO_DATE\(`),
		replacement: "DATE(",
	},
	{
		pattern:     regexp.MustCompile(`(?i)CONCAT\(\s*([^,()]+?)\s*,\s*([^()]+?)\s*\)`),
		replacement: "($1 || $2)",
	},
	{
		pattern:     regexp.MustCompile(`(?i)SUBSTRING\(`),
		replacement: "SUBSTR(",
	},
	{
		pattern:     regexp.MustCompile(`(?i)GROUP_CONCAT\(`),
		replacement: "STRING_AGG(",
	},
}

// Rewrite applies the spec's fixed dialect rewrite rules to generated
// SQL: DATE_FORMAT -> strftime, TO_DATE -> DATE, CONCAT -> ||,
// SUBSTRING -> SUBSTR, GROUP_CONCAT -> STRING_AGG.
func Rewrite(query string) string {
	out := query
	for _, rule := range rewriteRules {
		out = rule.pattern.ReplaceAllString(out, rule.replacement)
	}
	return out
}

var identifierAfterFromOrJoin = regexp.MustCompile(`(?i)\b(?:FROM|JOIN)\s+"?([a-zA-Z_][a-zA-Z0-9_]*)"?`)

// ReferencedTables extracts every identifier following FROM or JOIN in
// query, in first-seen order, de-duplicated.
func ReferencedTables(query string) []string {
	matches := identifierAfterFromOrJoin.FindAllStringSubmatch(query, -1)
	seen := make(map[string]bool, len(matches))
	var names []string
	for _, m := range matches {
		name := strings.ToLower(m[1])
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// Validate rewrites query and checks that every referenced table is
// registered, returning TableNotFound for the first one that is not.
func (e *Engine) Validate(query string) (string, error) {
	rewritten := Rewrite(query)
	for _, name := range ReferencedTables(rewritten) {
		if !e.HasTable(name) {
			return rewritten, &TableNotFound{Name: name, Available: e.TableNames()}
		}
	}
	return rewritten, nil
}
