package dataset

import (
	"fmt"
	"strings"
)

// nullHeavyThreshold and whitespaceSampleFraction mirror the teacher's
// quality_checker.go thresholds for flagging a column as unreliable.
const (
	nullHeavyThreshold       = 50.0
	whitespaceSampleFraction = 0.05
)

// RunQualityChecks scans an already-built Dataset's columns directly,
// replacing the teacher's SQL-driven QualityChecker.RunAll (which ran
// against a live connected database) with in-memory slice scans —
// Dataset construction here happens before the embedded engine sees
// the data at all.
func RunQualityChecks(d *Dataset) []QualityIssue {
	var issues []QualityIssue
	for _, name := range d.ColumnOrder {
		col := d.Columns[name]
		issues = append(issues, checkNullHeavy(col)...)
		issues = append(issues, checkWhitespace(d, col)...)
		issues = append(issues, checkEmptyStrings(col)...)
	}
	issues = append(issues, checkOrphanForeignKeysPlaceholder(d)...)
	return issues
}

func checkNullHeavy(col *Column) []QualityIssue {
	if col.Stats == nil || col.Stats.NullPercent < nullHeavyThreshold {
		return nil
	}
	return []QualityIssue{{
		Column:      col.Name,
		Kind:        "null_heavy",
		Severity:    "warning",
		Description: fmt.Sprintf("%.1f%% of values in %q are null", col.Stats.NullPercent, col.Name),
		AffectedOps: []string{"aggregate", "group_by"},
	}}
}

func checkWhitespace(d *Dataset, col *Column) []QualityIssue {
	if col.Type != TypeString && col.Type != TypeCategorical {
		return nil
	}
	affected := 0
	for _, row := range d.Rows {
		if s, ok := row[col.Name].(string); ok && s != strings.TrimSpace(s) {
			affected++
		}
	}
	if affected == 0 || d.RowCount() == 0 {
		return nil
	}
	if float64(affected)/float64(d.RowCount()) < whitespaceSampleFraction {
		return nil
	}
	return []QualityIssue{{
		Column:      col.Name,
		Kind:        "whitespace",
		Severity:    "info",
		Description: fmt.Sprintf("%d values in %q carry leading or trailing whitespace", affected, col.Name),
		SQLFix:      fmt.Sprintf("TRIM(%s)", col.Name),
		AffectedOps: []string{"filter", "group_by"},
	}}
}

func checkEmptyStrings(col *Column) []QualityIssue {
	if col.Stats == nil || col.Stats.EmptyCount == 0 {
		return nil
	}
	return []QualityIssue{{
		Column:      col.Name,
		Kind:        "empty_string",
		Severity:    "info",
		Description: fmt.Sprintf("%d empty-string values in %q", col.Stats.EmptyCount, col.Name),
		AffectedOps: []string{"filter"},
	}}
}

// checkOrphanForeignKeysPlaceholder exists because orphan-record
// detection needs the target Dataset, which is only available once a
// Registry links this Dataset to its siblings; Registry.detectRelationships
// calls CheckOrphans once relationships are known.
func checkOrphanForeignKeysPlaceholder(d *Dataset) []QualityIssue { return nil }

// CheckOrphans reports foreign-key values in source that never match
// target's primary key, grounded on quality_checker.go's orphan-record
// detection but run after Registry has confirmed the relationship.
func CheckOrphans(source *Dataset, rel Relationship, target *Dataset) *QualityIssue {
	if rel.Kind != RelationshipInferred {
		return nil
	}
	pkValues := make(map[string]bool, target.RowCount())
	for _, row := range target.Rows {
		pkValues[toStringKey(row[rel.TargetColumn])] = true
	}
	orphans := 0
	for _, row := range source.Rows {
		v := row[rel.SourceColumn]
		if isNull(v) {
			continue
		}
		if !pkValues[toStringKey(v)] {
			orphans++
		}
	}
	if orphans == 0 {
		return nil
	}
	return &QualityIssue{
		Column:      rel.SourceColumn,
		Kind:        "orphan",
		Severity:    "warning",
		Description: fmt.Sprintf("%d values in %q have no matching %s.%s", orphans, rel.SourceColumn, rel.TargetDataset, rel.TargetColumn),
		AffectedOps: []string{"join"},
	}
}
