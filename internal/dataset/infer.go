package dataset

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// dateLayouts is the fixed set of format patterns tried for datetime
// inference, covering the common serializations produced by CSV/Excel/
// JSON exporters.
var dateLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"02-01-2006",
	time.RFC3339,
}

// knownIDNames are column names that are treated as primary-key
// candidates regardless of statistical profile.
var knownIDNames = map[string]bool{
	"id": true, "key": true, "code": true, "uuid": true, "pk": true,
}

// foreignKeySuffixes mark a column name as a foreign-key candidate.
var foreignKeySuffixes = []string{"_id", "_fk", "_key", "_code", "id"}

// InferColumn profiles one column's values in priority order: id,
// integer, float, boolean, datetime, categorical, else string.
func InferColumn(name string, values []any) *Column {
	col := &Column{Name: name}

	nonNull := make([]any, 0, len(values))
	nullCount := 0
	for _, v := range values {
		if isNull(v) {
			nullCount++
			continue
		}
		nonNull = append(nonNull, v)
	}
	col.Nullable = nullCount > 0

	distinct := distinctStrings(nonNull)
	stats := &ColumnStats{
		DistinctCount: len(distinct),
		NullCount:     nullCount,
	}
	if len(values) > 0 {
		stats.NullPercent = float64(nullCount) / float64(len(values)) * 100
	}
	for _, v := range nonNull {
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			stats.EmptyCount++
		}
	}

	col.Type = inferSemanticType(name, nonNull, distinct)

	switch col.Type {
	case TypeInteger, TypeFloat:
		stats.Range = numericRange(nonNull)
	case TypeDate, TypeDateTime:
		stats.DateRange = dateRangeOf(nonNull)
	case TypeCategorical:
		stats.TopValues = topValues(nonNull, len(values))
	}

	nonNullRatio := 1.0
	if len(values) > 0 {
		nonNullRatio = float64(len(values)-nullCount) / float64(len(values))
	}
	uniqueRatio := 0.0
	if len(nonNull) > 0 {
		uniqueRatio = float64(len(distinct)) / float64(len(nonNull))
	}
	if (nonNullRatio == 1.0 && uniqueRatio > 0.99) || knownIDNames[strings.ToLower(name)] {
		col.IsPrimaryKey = true
	}

	col.Stats = stats
	return col
}

// inferSemanticType performs the trial-conversion cascade in priority order.
func inferSemanticType(name string, nonNull []any, distinct map[string]bool) SemanticType {
	if len(nonNull) == 0 {
		return TypeString
	}

	if isIDLike(name, nonNull, distinct) {
		return TypeID
	}
	if allConvert(nonNull, isInteger) {
		return TypeInteger
	}
	if allConvert(nonNull, isFloat) {
		return TypeFloat
	}
	if allConvert(nonNull, isBoolean) {
		return TypeBoolean
	}
	if layout, ok := commonDateLayout(nonNull); ok {
		if strings.Contains(layout, "15:04") {
			return TypeDateTime
		}
		return TypeDate
	}

	uniqueRatio := float64(len(distinct)) / float64(len(nonNull))
	if uniqueRatio < 0.10 && len(distinct) < 20 {
		return TypeCategorical
	}
	return TypeString
}

func isIDLike(name string, nonNull []any, distinct map[string]bool) bool {
	lower := strings.ToLower(name)
	if !knownIDNames[lower] && !strings.HasSuffix(lower, "_id") && lower != "id" {
		return false
	}
	if len(nonNull) == 0 {
		return false
	}
	return len(distinct) == len(nonNull) && allConvert(nonNull, isInteger)
}

func allConvert(values []any, pred func(any) bool) bool {
	for _, v := range values {
		if !pred(v) {
			return false
		}
	}
	return true
}

func isInteger(v any) bool {
	switch n := v.(type) {
	case int, int32, int64:
		return true
	case float64:
		return n == math.Trunc(n)
	case string:
		_, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		return err == nil
	default:
		return false
	}
}

func isFloat(v any) bool {
	switch n := v.(type) {
	case float32, float64:
		return true
	case string:
		_, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return err == nil
	default:
		return false
	}
}

func isBoolean(v any) bool {
	switch b := v.(type) {
	case bool:
		return true
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "false", "t", "f", "yes", "no", "0", "1":
			return true
		}
	}
	return false
}

func commonDateLayout(values []any) (string, bool) {
	for _, layout := range dateLayouts {
		ok := true
		for _, v := range values {
			s, isStr := v.(string)
			if !isStr {
				ok = false
				break
			}
			if _, err := time.Parse(layout, strings.TrimSpace(s)); err != nil {
				ok = false
				break
			}
		}
		if ok {
			return layout, true
		}
	}
	return "", false
}

// isNull reports a missing value. An empty string is a present but
// empty value, tracked separately via ColumnStats.EmptyCount.
func isNull(v any) bool {
	return v == nil
}

func distinctStrings(values []any) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[toStringKey(v)] = true
	}
	return set
}

func toStringKey(v any) string {
	switch x := v.(type) {
	case string:
		return x
	default:
		return strconv.FormatFloat(toFloat(v), 'f', -1, 64)
	}
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f
	default:
		return 0
	}
}

func numericRange(values []any) *NumericRange {
	if len(values) == 0 {
		return nil
	}
	r := &NumericRange{Min: math.Inf(1), Max: math.Inf(-1)}
	var sum float64
	for _, v := range values {
		f := toFloat(v)
		if f < r.Min {
			r.Min = f
		}
		if f > r.Max {
			r.Max = f
		}
		sum += f
	}
	r.Mean = sum / float64(len(values))
	return r
}

func dateRangeOf(values []any) *DateRange {
	layout, ok := commonDateLayout(values)
	if !ok {
		return nil
	}
	r := &DateRange{}
	first := true
	for _, v := range values {
		s, _ := v.(string)
		t, err := time.Parse(layout, strings.TrimSpace(s))
		if err != nil {
			continue
		}
		if first {
			r.Min, r.Max = t, t
			first = false
			continue
		}
		if t.Before(r.Min) {
			r.Min = t
		}
		if t.After(r.Max) {
			r.Max = t
		}
	}
	if first {
		return nil
	}
	return r
}

func topValues(values []any, total int) []ValueFrequency {
	counts := make(map[string]int)
	for _, v := range values {
		counts[toStringKey(v)]++
	}
	freqs := make([]ValueFrequency, 0, len(counts))
	for val, count := range counts {
		freqs = append(freqs, ValueFrequency{
			Value:   val,
			Count:   count,
			Percent: float64(count) / float64(total) * 100,
		})
	}
	sort.Slice(freqs, func(i, j int) bool { return freqs[i].Count > freqs[j].Count })
	if len(freqs) > 10 {
		freqs = freqs[:10]
	}
	return freqs
}

// isForeignKeyCandidate reports whether a column name ends in one of
// the fixed foreign-key suffixes and its type is compatible.
func isForeignKeyCandidate(col *Column) bool {
	lower := strings.ToLower(col.Name)
	matched := false
	for _, suffix := range foreignKeySuffixes {
		if strings.HasSuffix(lower, suffix) {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}
	switch col.Type {
	case TypeID, TypeInteger, TypeString:
		return true
	default:
		return false
	}
}
