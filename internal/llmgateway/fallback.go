package llmgateway

import (
	"fmt"
	"strings"

	"github.com/nlquery/corecube/internal/dataset"
)

// visualizationKeywords mirrors the Alternative Flow's keyword-group
// approach: a small fixed vocabulary checked by substring match.
var visualizationKeywords = []string{
	"chart", "plot", "graph", "visualiz", "visualis", "bar chart", "trend",
}

// FallbackSkeleton builds the degraded-but-valid code the gateway
// emits on any provider exception, per spec.md §4.7: a
// sql("SELECT * FROM {first_dataset} LIMIT 25") whose rows come back as
// a Table response, or a minimal bar-chart apex spec over the first
// numeric column when the question mentions visualization. No Text
// summary accompanies the rows; Text is returned only when no dataset
// is loaded or the query fails.
func FallbackSkeleton(question string, datasets []*dataset.Dataset) string {
	if len(datasets) == 0 {
		return `func Run(ctx map[string]any) map[string]any {
	return map[string]any{"type": "text", "value": "no dataset is loaded"}
}`
	}

	first := datasets[0]
	if wantsVisualization(question) {
		if numeric := firstNumericColumn(first); numeric != "" {
			return fmt.Sprintf(`func Run(ctx map[string]any) map[string]any {
	rows, _ := ctx["sql"].(func(string) (any, error))("SELECT %s FROM %s LIMIT 20")
	return map[string]any{
		"type": "chart",
		"value": map[string]any{
			"format": "apex",
			"config": map[string]any{
				"chart": map[string]any{"type": "bar"},
				"series": []any{map[string]any{"name": %q, "data": rows}},
			},
		},
	}
}`, numeric, quoteIdent(first.Name), numeric)
		}
	}

	return fmt.Sprintf(`func Run(ctx map[string]any) map[string]any {
	sqlFn := ctx["sql"].(func(string) (any, error))
	rows, err := sqlFn("SELECT * FROM %s LIMIT 25")
	if err != nil {
		return map[string]any{"type": "text", "value": "unable to answer this question right now"}
	}
	return map[string]any{"type": "table", "value": rows}
}`, quoteIdent(first.Name))
}

func wantsVisualization(question string) bool {
	lower := strings.ToLower(question)
	for _, kw := range visualizationKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func firstNumericColumn(d *dataset.Dataset) string {
	for _, name := range d.ColumnOrder {
		col := d.Columns[name]
		if col == nil {
			continue
		}
		if col.Type == dataset.TypeInteger || col.Type == dataset.TypeFloat {
			return name
		}
	}
	return ""
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
