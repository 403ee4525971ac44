package altflow

import (
	"fmt"

	"github.com/nlquery/corecube/internal/dataset"
)

// maxAlternatives is the bound from spec.md §4.8: "a bounded list of
// up to ten suggestions".
const maxAlternatives = 10

// preCheckAlternativeCount is the smaller bound used by PreCheck's
// inline suggestion list ("three synthesized alternative questions").
const preCheckAlternativeCount = 3

// Alternatives produces up to ten candidate questions from the loaded
// Datasets' inferred schema: summary questions, numeric aggregations,
// date time-bucket questions, and cross-Dataset questions along
// detected relationships.
func Alternatives(datasets []*dataset.Dataset) []string {
	var out []string

	for _, d := range datasets {
		if len(out) >= maxAlternatives {
			break
		}
		out = append(out, fmt.Sprintf("Show a summary of %s", d.Name))

		for _, name := range d.ColumnOrder {
			col := d.Columns[name]
			if col == nil || len(out) >= maxAlternatives {
				continue
			}
			switch col.Type {
			case dataset.TypeInteger, dataset.TypeFloat:
				out = append(out, fmt.Sprintf("What is the average %s in %s?", name, d.Name))
			case dataset.TypeDate, dataset.TypeDateTime:
				out = append(out, fmt.Sprintf("How does %s trend over time by %s?", d.Name, name))
			}
		}

		for _, rel := range d.Relationships {
			if len(out) >= maxAlternatives {
				break
			}
			out = append(out, fmt.Sprintf("How does %s relate to %s?", d.Name, rel.TargetDataset))
		}
	}

	if len(out) > maxAlternatives {
		out = out[:maxAlternatives]
	}
	return out
}

// preCheckAlternatives trims Alternatives to the three-item list
// PreCheck embeds in its response.
func preCheckAlternatives(datasets []*dataset.Dataset) []string {
	all := Alternatives(datasets)
	if len(all) > preCheckAlternativeCount {
		all = all[:preCheckAlternativeCount]
	}
	return all
}
