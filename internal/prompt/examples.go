package prompt

import (
	"fmt"

	"github.com/nlquery/corecube/internal/dataset"
)

// WorkedExamples synthesizes up to six SQL examples per spec.md
// §4.6 from the actual loaded columns: a simple projection, a filter
// when a categorical column exists, an aggregation when a numeric
// column exists, a time-series bucket when a date column exists, and
// a JOIN when a relationship exists. Only the projection is always
// present, so a Dataset with none of those columns or relationships
// contributes a single example. It walks every Dataset but caps the
// combined list at six to keep the prompt bounded.
func WorkedExamples(datasets []*dataset.Dataset) []Example {
	var examples []Example

	for _, d := range datasets {
		if len(examples) >= 6 {
			break
		}
		examples = append(examples, workedExamplesFor(d)...)
	}

	if len(examples) > 6 {
		examples = examples[:6]
	}
	return examples
}

func workedExamplesFor(d *dataset.Dataset) []Example {
	var out []Example
	if len(d.ColumnOrder) == 0 {
		return out
	}

	out = append(out, Example{
		Question: fmt.Sprintf("Show the first rows of %s", d.Name),
		Code:     fmt.Sprintf("SELECT * FROM %s LIMIT 10", d.Name),
	})

	if filterCol := firstColumnOfType(d, dataset.TypeCategorical); filterCol != "" {
		out = append(out, Example{
			Question: fmt.Sprintf("Filter %s by %s", d.Name, filterCol),
			Code:     fmt.Sprintf("SELECT * FROM %s WHERE %s = 'value'", d.Name, filterCol),
		})
	}

	if numericCol := firstColumnOfAnyType(d, dataset.TypeInteger, dataset.TypeFloat); numericCol != "" {
		out = append(out, Example{
			Question: fmt.Sprintf("What is the total %s in %s", numericCol, d.Name),
			Code:     fmt.Sprintf("SELECT SUM(%s) AS total FROM %s", numericCol, d.Name),
		})
	}

	if dateCol := firstColumnOfAnyType(d, dataset.TypeDate, dataset.TypeDateTime); dateCol != "" {
		out = append(out, Example{
			Question: fmt.Sprintf("How many %s rows per month", d.Name),
			Code:     fmt.Sprintf("SELECT DATE_FORMAT(%s, '%%Y-%%m') AS month, COUNT(*) AS total FROM %s GROUP BY month ORDER BY month", dateCol, d.Name),
		})
	}

	for _, rel := range d.Relationships {
		out = append(out, Example{
			Question: fmt.Sprintf("Join %s with %s", d.Name, rel.TargetDataset),
			Code: fmt.Sprintf("SELECT a.*, b.* FROM %s a JOIN %s b ON a.%s = b.%s",
				d.Name, rel.TargetDataset, rel.SourceColumn, rel.TargetColumn),
		})
		break
	}

	return out
}

func firstColumnOfType(d *dataset.Dataset, t dataset.SemanticType) string {
	return firstColumnOfAnyType(d, t)
}

func firstColumnOfAnyType(d *dataset.Dataset, types ...dataset.SemanticType) string {
	for _, name := range d.ColumnOrder {
		col := d.Columns[name]
		if col == nil {
			continue
		}
		for _, t := range types {
			if col.Type == t {
				return name
			}
		}
	}
	return ""
}
