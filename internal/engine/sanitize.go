package engine

import "regexp"

// unsafeQuestionPatterns matches the literal code-injection shapes
// spec.md §4.10 calls out as unsafe to carry forward into a prompt:
// "strip unsafe patterns: import os|sys|subprocess, open(...w),
// exec/eval/compile, getattr/setattr/globals/locals". A question is
// natural language, but nothing stops a caller from pasting code into
// it, and that text flows verbatim into the LLM prompt.
var unsafeQuestionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bimport\s+(os|sys|subprocess)\b`),
	regexp.MustCompile(`(?i)\bopen\s*\([^)]*["']w["']`),
	regexp.MustCompile(`(?i)\b(exec|eval|compile)\s*\(`),
	regexp.MustCompile(`(?i)\b(getattr|setattr|globals|locals)\s*\(`),
}

// Sanitize strips the unsafe patterns from a question before it
// reaches the Prompt Builder, leaving the rest of the text intact.
func Sanitize(question string) string {
	out := question
	for _, p := range unsafeQuestionPatterns {
		out = p.ReplaceAllString(out, "")
	}
	return out
}
