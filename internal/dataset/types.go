// Package dataset implements the in-memory relation and inferred
// metadata (C2): type inference, primary/foreign-key candidate
// detection, relationship detection, per-column statistics, and
// deterministic data-quality checks. It is grounded on the teacher's
// internal/context package: schema_parser.go's regex-driven PK/FK
// extraction and join_analyzer.go's foreign-key graph are generalized
// from "parse a CREATE TABLE statement" to "infer structure from
// loaded rows", and quality_checker.go's per-column issue detection is
// ported from SQL-driven checks to direct in-memory column scans.
package dataset

import "time"

// SemanticType is the inferred meaning of a column, used both for SQL
// generation hints and for choosing which transformations apply.
type SemanticType string

const (
	TypeString      SemanticType = "string"
	TypeInteger     SemanticType = "integer"
	TypeFloat       SemanticType = "float"
	TypeBoolean     SemanticType = "boolean"
	TypeDate        SemanticType = "date"
	TypeDateTime    SemanticType = "datetime"
	TypeCategorical SemanticType = "categorical"
	TypeID          SemanticType = "id"
)

// ValueFrequency is one entry of a categorical column's top-k values.
type ValueFrequency struct {
	Value   string
	Count   int
	Percent float64
}

// NumericRange summarizes a numeric column; date columns use DateRange.
type NumericRange struct {
	Min float64
	Max float64
	Mean float64
}

// ColumnStats holds per-column statistics computed at load time.
type ColumnStats struct {
	DistinctCount int
	NullCount     int
	NullPercent   float64
	EmptyCount    int
	TopValues     []ValueFrequency
	Range         *NumericRange
	DateRange     *DateRange
}

// DateRange summarizes a date/datetime column.
type DateRange struct {
	Min time.Time
	Max time.Time
}

// Column describes one column's inferred schema and statistics.
type Column struct {
	Name         string
	Type         SemanticType
	Nullable     bool
	IsPrimaryKey bool
	Stats        *ColumnStats
}

// QualityIssue is a deterministic, non-LLM-generated data quality
// finding surfaced to the Prompt Builder, grounded on the teacher's
// QualityIssue shape (internal/context/shared_context.go).
type QualityIssue struct {
	Column      string
	Kind        string // whitespace | type_mismatch | orphan | null_heavy | empty_string
	Severity    string // critical | warning | info
	Description string
	SQLFix      string
	AffectedOps []string
}

// RelationshipKind distinguishes a name-based declared match from a
// value-overlap inference, per invariant I3.
type RelationshipKind string

const (
	RelationshipDeclared RelationshipKind = "declared"
	RelationshipInferred RelationshipKind = "inferred"
)

// Relationship is a detected cross-Dataset reference.
type Relationship struct {
	Kind             RelationshipKind
	SourceColumn     string
	TargetDataset    string
	TargetColumn     string
	OverlapConfidence float64 // set when Kind == RelationshipInferred
}

// Dataset is a named in-memory relation with inferred metadata. Once
// loaded, a Dataset is immutable — the connector pipeline mutates it
// only during the load phase, never during a query (invariant I2/I4).
type Dataset struct {
	Name        string
	Description string

	ColumnOrder []string
	Columns     map[string]*Column
	Rows        []map[string]any

	PrimaryKey            string
	PotentialForeignKeys  []string
	Relationships         []Relationship
	QualityIssues         []QualityIssue

	LoadedAt time.Time
}

// RowCount returns the number of loaded rows.
func (d *Dataset) RowCount() int { return len(d.Rows) }

// ColumnCount returns the number of inferred columns.
func (d *Dataset) ColumnCount() int { return len(d.ColumnOrder) }
