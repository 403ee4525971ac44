// Package prompt builds the one system message and one user message
// the LLM Gateway (C7) sends for code generation (C6). It is grounded
// on the teacher's Pipeline.buildPrompt: the database-type syntax
// notes become the fixed output-contract system message, and the
// teacher's Rich Context schema dump becomes the per-Dataset user
// sections, generalized from "one SQL database" to "a registry of
// loaded Datasets". The "worked examples" section replaces the
// teacher's static SQL Best Practices block with dataset-derived
// examples, and feedback-grounded examples are appended the way the
// teacher appends FormatJoinPathsForPrompt/FormatFieldSemanticsForPrompt.
// Token accounting (tokens.go) is grounded on the teacher's Pipeline,
// which tracks a cl100k_base tiktoken.Tiktoken over every prompt it
// sends; here the count also drives trimming under DefaultUserBudget.
package prompt

import (
	"fmt"
	"strings"

	"github.com/nlquery/corecube/internal/dataset"
)

// Example is a worked or feedback-grounded (question, code) pair
// appended to the user message as grounding for the LLM.
type Example struct {
	Question string
	Code     string
}

// System is the fixed system message: it never varies per question,
// only per dialect, matching the teacher's database-type section of
// buildPrompt.
func System() string {
	return `You are a data analyst generating Go code to answer questions about tabular data.

Output contract:
- Emit exactly one function: func Run(ctx map[string]any) map[string]any
- ctx["datasets"] is a map[string]any of loaded table names to their rows
- ctx["sql"] is a func(string) (any, error) that executes a SQL query against the loaded tables
- Call sql(...) for any query that needs to touch the data; do not reimplement SQL semantics in Go
- Return a map with "type" in {scalar, text, table, chart} and "value" holding the matching payload
- For chart responses, value must be {"format": "apex", "config": {...}} where config is a valid ApexCharts configuration
- Do not import anything outside math, math/rand, regexp, time, encoding/json, sort, strings, strconv, fmt, errors
- Never use os, exec, syscall, unsafe, reflect, net, or any filesystem/process/network primitive`
}

// User builds the user message for one question against the given
// Dataset registry, optionally grounded with feedback examples from
// C9. If the assembled message exceeds DefaultUserBudget tokens, the
// lowest-priority sections are dropped first — feedback examples,
// then worked examples — since the dataset schema itself is what the
// model needs to generate correct code at all.
func User(question string, datasets []*dataset.Dataset, feedback []Example) string {
	base := userCore(question, datasets)
	examples := WorkedExamples(datasets)

	full := base + workedExamplesSection(examples) + feedbackSection(feedback)
	if EstimateTokens(full) <= DefaultUserBudget {
		return full
	}

	withoutFeedback := base + workedExamplesSection(examples)
	if EstimateTokens(withoutFeedback) <= DefaultUserBudget {
		return withoutFeedback
	}

	return base
}

func userCore(question string, datasets []*dataset.Dataset) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Question: %s\n\n", question))
	sb.WriteString("Loaded datasets:\n\n")
	for _, d := range datasets {
		writeDatasetSection(&sb, d)
	}
	return sb.String()
}

func workedExamplesSection(examples []Example) string {
	if len(examples) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("Worked SQL examples:\n")
	for _, ex := range examples {
		sb.WriteString(fmt.Sprintf("- %s\n  %s\n", ex.Question, ex.Code))
	}
	sb.WriteString("\n")
	return sb.String()
}

func feedbackSection(feedback []Example) string {
	if len(feedback) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("Similar past questions that were answered successfully:\n")
	for _, ex := range feedback {
		sb.WriteString(fmt.Sprintf("- Q: %s\n  Code: %s\n", ex.Question, ex.Code))
	}
	sb.WriteString("\n")
	return sb.String()
}

func writeDatasetSection(sb *strings.Builder, d *dataset.Dataset) {
	sb.WriteString(fmt.Sprintf("## %s\n", d.Name))
	if d.Description != "" {
		sb.WriteString(d.Description + "\n")
	}
	sb.WriteString(fmt.Sprintf("rows=%d columns=%d\n", d.RowCount(), d.ColumnCount()))
	if d.PrimaryKey != "" {
		sb.WriteString(fmt.Sprintf("primary key: %s\n", d.PrimaryKey))
	}
	if len(d.PotentialForeignKeys) > 0 {
		sb.WriteString(fmt.Sprintf("foreign key candidates: %s\n", strings.Join(d.PotentialForeignKeys, ", ")))
	}
	for _, rel := range d.Relationships {
		sb.WriteString(fmt.Sprintf("relationship: %s.%s -> %s.%s (%s)\n",
			d.Name, rel.SourceColumn, rel.TargetDataset, rel.TargetColumn, rel.Kind))
	}

	sb.WriteString("columns:\n")
	for _, name := range d.ColumnOrder {
		col := d.Columns[name]
		if col == nil {
			continue
		}
		sb.WriteString(fmt.Sprintf("  - %s (%s)%s\n", name, col.Type, columnHint(col)))
	}
	sb.WriteString("\n")
}

func columnHint(col *dataset.Column) string {
	if col.Stats == nil {
		return ""
	}
	if len(col.Stats.TopValues) > 0 {
		var samples []string
		for i, v := range col.Stats.TopValues {
			if i >= 3 {
				break
			}
			samples = append(samples, v.Value)
		}
		return fmt.Sprintf(" sample=[%s]", strings.Join(samples, ", "))
	}
	if col.Stats.Range != nil {
		return fmt.Sprintf(" range=[%.2f, %.2f]", col.Stats.Range.Min, col.Stats.Range.Max)
	}
	return ""
}
