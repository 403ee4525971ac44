package altflow

import (
	"fmt"
	"strings"

	"github.com/nlquery/corecube/internal/dataset"
	"github.com/nlquery/corecube/internal/response"
)

// entityKeywordGroups maps a canonical entity name to the keywords
// (including localized equivalents) that suggest the question is
// about it, per spec.md §4.8's "products, employees, departments,
// categories, localized equivalents".
var entityKeywordGroups = map[string][]string{
	"products":    {"product", "products", "produto", "produtos"},
	"employees":   {"employee", "employees", "staff", "funcionario", "funcionarios"},
	"departments": {"department", "departments", "departamento", "departamentos"},
	"categories":  {"category", "categories", "categoria", "categorias"},
}

// PreCheck scans question for a mentioned entity keyword group that
// has no matching loaded Dataset, returning a Text response naming the
// available datasets and synthesized alternatives. ok is false when no
// entity mismatch was found and the pipeline should proceed normally.
func PreCheck(question string, datasets []*dataset.Dataset) (resp response.Response, ok bool) {
	lower := strings.ToLower(question)

	for entity, keywords := range entityKeywordGroups {
		if !containsAny(lower, keywords) {
			continue
		}
		if datasetMatches(entity, datasets) {
			continue
		}

		names := datasetNames(datasets)
		alternatives := preCheckAlternatives(datasets)
		msg := fmt.Sprintf(
			"I don't see a dataset about %q loaded. Available datasets: %s.\n\nYou could try asking:\n- %s",
			entity, strings.Join(names, ", "), strings.Join(alternatives, "\n- "),
		)
		return response.Text(msg), true
	}

	return response.Response{}, false
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

func datasetMatches(entity string, datasets []*dataset.Dataset) bool {
	keywords := entityKeywordGroups[entity]
	for _, d := range datasets {
		lowerName := strings.ToLower(d.Name)
		if strings.Contains(lowerName, entity) {
			return true
		}
		if containsAny(lowerName, keywords) {
			return true
		}
	}
	return false
}

func datasetNames(datasets []*dataset.Dataset) []string {
	names := make([]string, 0, len(datasets))
	for _, d := range datasets {
		names = append(names, d.Name)
	}
	return names
}
