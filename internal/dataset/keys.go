package dataset

import (
	"strings"
)

// Build computes a Dataset's columns, statistics, primary key, and
// foreign-key candidates from a set of loaded rows. Relationship
// detection across multiple Datasets happens separately in Registry,
// since it requires comparing more than one Dataset at a time.
func Build(name, description string, columnOrder []string, rows []map[string]any) *Dataset {
	d := &Dataset{
		Name:        name,
		Description: description,
		ColumnOrder: append([]string(nil), columnOrder...),
		Columns:     make(map[string]*Column, len(columnOrder)),
		Rows:        rows,
	}

	for _, name := range columnOrder {
		values := make([]any, len(rows))
		for i, row := range rows {
			values[i] = row[name]
		}
		d.Columns[name] = InferColumn(name, values)
	}

	d.PrimaryKey = choosePrimaryKey(d)
	d.PotentialForeignKeys = collectForeignKeyCandidates(d)
	d.QualityIssues = RunQualityChecks(d)

	return d
}

// choosePrimaryKey picks the single best primary-key candidate: the
// column flagged IsPrimaryKey with the highest uniqueness, preferring
// a column literally named "id" on ties.
func choosePrimaryKey(d *Dataset) string {
	var best string
	var bestUnique float64
	for _, colName := range d.ColumnOrder {
		col := d.Columns[colName]
		if !col.IsPrimaryKey {
			continue
		}
		unique := 0.0
		if col.Stats != nil && d.RowCount() > 0 {
			unique = float64(col.Stats.DistinctCount) / float64(d.RowCount())
		}
		if best == "" || unique > bestUnique || (unique == bestUnique && strings.EqualFold(colName, "id")) {
			best = colName
			bestUnique = unique
		}
	}
	return best
}

func collectForeignKeyCandidates(d *Dataset) []string {
	var candidates []string
	for _, colName := range d.ColumnOrder {
		col := d.Columns[colName]
		if colName == d.PrimaryKey {
			continue
		}
		if isForeignKeyCandidate(col) {
			candidates = append(candidates, colName)
		}
	}
	return candidates
}

// singularize strips the common English plural suffixes used to
// match a foreign-key name like "cliente_id" against a target
// Dataset name like "clientes".
func singularize(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, "ies"):
		return lower[:len(lower)-3] + "y"
	case strings.HasSuffix(lower, "s"):
		return lower[:len(lower)-1]
	default:
		return lower
	}
}

// foreignKeyTargetStem strips the known ID suffixes from a foreign-key
// column name to recover the referenced entity name, e.g.
// "cliente_id" -> "cliente".
func foreignKeyTargetStem(columnName string) string {
	lower := strings.ToLower(columnName)
	for _, suffix := range []string{"_id", "_fk", "_key", "_code"} {
		if strings.HasSuffix(lower, suffix) {
			return strings.TrimSuffix(lower, suffix)
		}
	}
	if strings.HasSuffix(lower, "id") && len(lower) > 2 {
		return strings.TrimSuffix(lower, "id")
	}
	return lower
}
