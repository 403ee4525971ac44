package dataset

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// RuleKind is the closed set of semantic transformations a connector
// pipeline may apply to a Dataset before it is registered with the
// embedded engine. ApplyRules dispatches on this type through one
// switch in apply; the Go compiler does not check that switch for
// exhaustiveness, and a kind outside the set is passed through
// unchanged with a Warning at run time.
type RuleKind string

const (
	RuleRename             RuleKind = "RENAME"
	RuleFillNA             RuleKind = "FILL_NA"
	RuleDropNA             RuleKind = "DROP_NA"
	RuleConvertType        RuleKind = "CONVERT_TYPE"
	RuleMapValues          RuleKind = "MAP_VALUES"
	RuleClip               RuleKind = "CLIP"
	RuleNormalize          RuleKind = "NORMALIZE"
	RuleStandardize        RuleKind = "STANDARDIZE"
	RuleEncodeCategorical  RuleKind = "ENCODE_CATEGORICAL"
	RuleExtractDate        RuleKind = "EXTRACT_DATE"
	RuleRound              RuleKind = "ROUND"
	RuleUppercase          RuleKind = "UPPERCASE"
	RuleReplace            RuleKind = "REPLACE"
)

// Rule is one semantic transformation step. Params is interpreted
// according to Kind; see apply for the field each kind reads.
type Rule struct {
	Kind   RuleKind
	Column string
	Params map[string]any
}

// Warning is a non-fatal note produced while applying a Rule, e.g. an
// unknown rule kind that was skipped rather than rejected.
type Warning struct {
	Rule    Rule
	Message string
}

// ApplyRules runs each Rule against rows in order, returning the
// transformed rows, the set of columns present afterward (in order),
// and any warnings. Rows are never mutated in place; callers get a
// fresh slice of maps.
func ApplyRules(columnOrder []string, rows []map[string]any, rules []Rule) ([]string, []map[string]any, []Warning) {
	cols := append([]string(nil), columnOrder...)
	out := cloneRows(rows)
	var warnings []Warning

	for _, rule := range rules {
		var warn *Warning
		cols, out, warn = apply(cols, out, rule)
		if warn != nil {
			warnings = append(warnings, *warn)
		}
	}
	return cols, out, warnings
}

func cloneRows(rows []map[string]any) []map[string]any {
	out := make([]map[string]any, len(rows))
	for i, row := range rows {
		clone := make(map[string]any, len(row))
		for k, v := range row {
			clone[k] = v
		}
		out[i] = clone
	}
	return out
}

func apply(cols []string, rows []map[string]any, rule Rule) ([]string, []map[string]any, *Warning) {
	switch rule.Kind {
	case RuleRename:
		return applyRename(cols, rows, rule)
	case RuleFillNA:
		return cols, applyFillNA(rows, rule), nil
	case RuleDropNA:
		return cols, applyDropNA(rows, rule), nil
	case RuleConvertType:
		return cols, applyConvertType(rows, rule), nil
	case RuleMapValues:
		return cols, applyMapValues(rows, rule), nil
	case RuleClip:
		return cols, applyClip(rows, rule), nil
	case RuleNormalize:
		return cols, applyNormalize(rows, rule), nil
	case RuleStandardize:
		return cols, applyStandardize(rows, rule), nil
	case RuleEncodeCategorical:
		return applyEncodeCategorical(cols, rows, rule)
	case RuleExtractDate:
		return applyExtractDate(cols, rows, rule)
	case RuleRound:
		return cols, applyRound(rows, rule), nil
	case RuleUppercase:
		return cols, applyUppercase(rows, rule), nil
	case RuleReplace:
		return cols, applyReplace(rows, rule), nil
	default:
		return cols, rows, &Warning{Rule: rule, Message: fmt.Sprintf("unknown transformation rule %q, passed through unchanged", rule.Kind)}
	}
}

func applyRename(cols []string, rows []map[string]any, rule Rule) ([]string, []map[string]any, *Warning) {
	to, _ := rule.Params["to"].(string)
	if to == "" {
		return cols, rows, &Warning{Rule: rule, Message: "RENAME requires a non-empty \"to\" param"}
	}
	newCols := make([]string, len(cols))
	for i, c := range cols {
		if c == rule.Column {
			newCols[i] = to
		} else {
			newCols[i] = c
		}
	}
	for _, row := range rows {
		if v, ok := row[rule.Column]; ok {
			row[to] = v
			delete(row, rule.Column)
		}
	}
	return newCols, rows, nil
}

func applyFillNA(rows []map[string]any, rule Rule) []map[string]any {
	fill := rule.Params["value"]
	for _, row := range rows {
		if isNull(row[rule.Column]) {
			row[rule.Column] = fill
		}
	}
	return rows
}

func applyDropNA(rows []map[string]any, rule Rule) []map[string]any {
	out := rows[:0:0]
	for _, row := range rows {
		if !isNull(row[rule.Column]) {
			out = append(out, row)
		}
	}
	return out
}

func applyConvertType(rows []map[string]any, rule Rule) []map[string]any {
	target, _ := rule.Params["type"].(string)
	for _, row := range rows {
		v, ok := row[rule.Column]
		if !ok || isNull(v) {
			continue
		}
		switch SemanticType(strings.ToLower(target)) {
		case TypeInteger:
			row[rule.Column] = int64(math.Round(toFloat(v)))
		case TypeFloat:
			row[rule.Column] = toFloat(v)
		case TypeString:
			row[rule.Column] = fmt.Sprint(v)
		case TypeBoolean:
			row[rule.Column] = parseBoolLoose(v)
		}
	}
	return rows
}

func parseBoolLoose(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "t", "yes", "1":
			return true
		}
		return false
	default:
		return toFloat(v) != 0
	}
}

func applyMapValues(rows []map[string]any, rule Rule) []map[string]any {
	mapping, _ := rule.Params["mapping"].(map[string]any)
	for _, row := range rows {
		key := toStringKey(row[rule.Column])
		if mapped, ok := mapping[key]; ok {
			row[rule.Column] = mapped
		}
	}
	return rows
}

func applyClip(rows []map[string]any, rule Rule) []map[string]any {
	min, hasMin := rule.Params["min"]
	max, hasMax := rule.Params["max"]
	for _, row := range rows {
		v, ok := row[rule.Column]
		if !ok || isNull(v) {
			continue
		}
		f := toFloat(v)
		if hasMin && f < toFloat(min) {
			f = toFloat(min)
		}
		if hasMax && f > toFloat(max) {
			f = toFloat(max)
		}
		row[rule.Column] = f
	}
	return rows
}

// applyNormalize scales a column to [0, 1] by range, guarding a
// zero-width range by leaving values unchanged instead of dividing by
// zero.
func applyNormalize(rows []map[string]any, rule Rule) []map[string]any {
	values := columnFloats(rows, rule.Column)
	if len(values) == 0 {
		return rows
	}
	min, max := minMax(values)
	span := max - min
	if span == 0 {
		return rows
	}
	for _, row := range rows {
		v, ok := row[rule.Column]
		if !ok || isNull(v) {
			continue
		}
		row[rule.Column] = (toFloat(v) - min) / span
	}
	return rows
}

// applyStandardize rescales a column to zero mean and unit variance,
// guarding a zero standard deviation by leaving values unchanged.
func applyStandardize(rows []map[string]any, rule Rule) []map[string]any {
	values := columnFloats(rows, rule.Column)
	if len(values) == 0 {
		return rows
	}
	mean := meanOf(values)
	stddev := stddevOf(values, mean)
	if stddev == 0 {
		return rows
	}
	for _, row := range rows {
		v, ok := row[rule.Column]
		if !ok || isNull(v) {
			continue
		}
		row[rule.Column] = (toFloat(v) - mean) / stddev
	}
	return rows
}

// applyEncodeCategorical appends one boolean column per distinct
// value, retaining the original column rather than replacing it.
func applyEncodeCategorical(cols []string, rows []map[string]any, rule Rule) ([]string, []map[string]any, *Warning) {
	distinct := make(map[string]bool)
	for _, row := range rows {
		if v := row[rule.Column]; !isNull(v) {
			distinct[toStringKey(v)] = true
		}
	}
	values := make([]string, 0, len(distinct))
	for v := range distinct {
		values = append(values, v)
	}
	sort.Strings(values)

	newCols := append([]string(nil), cols...)
	for _, v := range values {
		newCols = append(newCols, fmt.Sprintf("%s_%s", rule.Column, v))
	}
	for _, row := range rows {
		current := toStringKey(row[rule.Column])
		for _, v := range values {
			row[fmt.Sprintf("%s_%s", rule.Column, v)] = current == v
		}
	}
	return newCols, rows, nil
}

// applyExtractDate creates "{col}_{component}" sibling columns for
// each requested date part, leaving the source column untouched.
func applyExtractDate(cols []string, rows []map[string]any, rule Rule) ([]string, []map[string]any, *Warning) {
	parts, _ := rule.Params["parts"].([]string)
	if len(parts) == 0 {
		parts = []string{"year", "month", "day"}
	}
	layout, _ := rule.Params["layout"].(string)
	newCols := append([]string(nil), cols...)
	for _, part := range parts {
		newCols = append(newCols, fmt.Sprintf("%s_%s", rule.Column, part))
	}

	for _, row := range rows {
		t, ok := parseRuleDate(row[rule.Column], layout)
		for _, part := range parts {
			colName := fmt.Sprintf("%s_%s", rule.Column, part)
			if !ok {
				row[colName] = nil
				continue
			}
			switch part {
			case "year":
				row[colName] = t.Year()
			case "month":
				row[colName] = int(t.Month())
			case "day":
				row[colName] = t.Day()
			case "weekday":
				row[colName] = t.Weekday().String()
			case "hour":
				row[colName] = t.Hour()
			default:
				row[colName] = nil
			}
		}
	}
	return newCols, rows, nil
}

func parseRuleDate(v any, layout string) (time.Time, bool) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	if layout != "" {
		t, err := time.Parse(layout, s)
		return t, err == nil
	}
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func applyRound(rows []map[string]any, rule Rule) []map[string]any {
	decimals := 0
	if d, ok := rule.Params["decimals"]; ok {
		decimals = int(toFloat(d))
	}
	factor := math.Pow(10, float64(decimals))
	for _, row := range rows {
		v, ok := row[rule.Column]
		if !ok || isNull(v) {
			continue
		}
		row[rule.Column] = math.Round(toFloat(v)*factor) / factor
	}
	return rows
}

func applyUppercase(rows []map[string]any, rule Rule) []map[string]any {
	for _, row := range rows {
		if s, ok := row[rule.Column].(string); ok {
			row[rule.Column] = strings.ToUpper(s)
		}
	}
	return rows
}

func applyReplace(rows []map[string]any, rule Rule) []map[string]any {
	from, _ := rule.Params["from"].(string)
	to, _ := rule.Params["to"].(string)
	for _, row := range rows {
		if s, ok := row[rule.Column].(string); ok {
			row[rule.Column] = strings.ReplaceAll(s, from, to)
		}
	}
	return rows
}

func columnFloats(rows []map[string]any, column string) []float64 {
	var values []float64
	for _, row := range rows {
		v, ok := row[column]
		if !ok || isNull(v) {
			continue
		}
		values = append(values, toFloat(v))
	}
	return values
}

func minMax(values []float64) (float64, float64) {
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

func meanOf(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddevOf(values []float64, mean float64) float64 {
	var sumSq float64
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}

// ParseRuleKind validates a string against the closed RuleKind set,
// used when rules arrive as JSON from the feedback store or the LLM.
func ParseRuleKind(s string) (RuleKind, error) {
	switch RuleKind(strings.ToUpper(s)) {
	case RuleRename, RuleFillNA, RuleDropNA, RuleConvertType, RuleMapValues,
		RuleClip, RuleNormalize, RuleStandardize, RuleEncodeCategorical,
		RuleExtractDate, RuleRound, RuleUppercase, RuleReplace:
		return RuleKind(strings.ToUpper(s)), nil
	default:
		return "", fmt.Errorf("transform: unknown rule kind %q", s)
	}
}
