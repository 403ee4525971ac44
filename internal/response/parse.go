package response

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidOutputValueMismatch is returned when a raw {tag, value} shape
// does not match the structure its tag requires.
var ErrInvalidOutputValueMismatch = errors.New("invalid output: value does not match tag")

var imagePathPattern = regexp.MustCompile(`(?i)\.(png|jpe?g|gif|svg|webp)$`)

func isImagePathOrDataURI(s string) bool {
	if s == "" {
		return false
	}
	if strings.HasPrefix(s, "data:image/") && strings.Contains(s, ";base64,") {
		return true
	}
	return imagePathPattern.MatchString(s)
}

// Parse accepts a raw {"type": ..., "value": ...} shape — the captured
// output of the sandboxed code executor — and returns the typed
// Response variant it describes. The legacy tag "plot" is accepted as a
// synonym for an image-format Chart.
func Parse(raw map[string]any) (Response, error) {
	rawTag, _ := raw["type"].(string)
	tag := Tag(strings.ToLower(strings.TrimSpace(rawTag)))
	value := raw["value"]

	switch tag {
	case TagScalar:
		n, ok := asNumber(value)
		if !ok {
			return Response{}, fmt.Errorf("%w: scalar value %v is not numeric", ErrInvalidOutputValueMismatch, value)
		}
		return Scalar(n), nil

	case TagText:
		s, ok := value.(string)
		if !ok {
			return Response{}, fmt.Errorf("%w: text value %v is not a string", ErrInvalidOutputValueMismatch, value)
		}
		return Text(s), nil

	case TagTable:
		tv, err := parseTableValue(value)
		if err != nil {
			return Response{}, err
		}
		return Table(tv), nil

	case TagChart, tagPlot:
		cv, err := parseChartValue(value, tag == tagPlot)
		if err != nil {
			return Response{}, err
		}
		return Chart(cv), nil

	case TagError:
		ev, err := parseErrorValue(value)
		if err != nil {
			return Response{}, err
		}
		return Response{Tag: TagError, Err: ev}, nil

	default:
		return Response{}, fmt.Errorf("%w: unknown tag %q", ErrInvalidOutputValueMismatch, rawTag)
	}
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func parseTableValue(value any) (*TableValue, error) {
	rows, ok := value.([]map[string]any)
	if !ok {
		if generic, genericOK := value.([]any); genericOK {
			rows = make([]map[string]any, 0, len(generic))
			for _, item := range generic {
				m, ok := item.(map[string]any)
				if !ok {
					return nil, fmt.Errorf("%w: table row %v is not an object", ErrInvalidOutputValueMismatch, item)
				}
				rows = append(rows, m)
			}
		} else {
			return nil, fmt.Errorf("%w: table value is not a row list", ErrInvalidOutputValueMismatch)
		}
	}

	columns := collectColumns(rows)
	return &TableValue{
		Columns:      columns,
		Rows:         rows,
		TotalRecords: len(rows),
	}, nil
}

func collectColumns(rows []map[string]any) []string {
	seen := make(map[string]bool)
	var columns []string
	for _, row := range rows {
		for col := range row {
			if !seen[col] {
				seen[col] = true
				columns = append(columns, col)
			}
		}
	}
	return columns
}

func parseChartValue(value any, legacyPlot bool) (*ChartValue, error) {
	m, ok := value.(map[string]any)
	if !ok {
		s, isString := value.(string)
		if !legacyPlot || !isString {
			return nil, fmt.Errorf("%w: chart value is not an object", ErrInvalidOutputValueMismatch)
		}
		m = map[string]any{"path": s}
	}

	var format ChartFormat
	if f, ok := m["format"].(string); ok {
		format = ChartFormat(strings.ToLower(f))
	}
	if format == "" && legacyPlot {
		format = ChartFormatImage
	}

	cv := &ChartValue{Format: format}
	if chartType, ok := m["chart_type"].(string); ok {
		cv.ChartType = chartType
	}

	switch format {
	case ChartFormatApex:
		config, ok := m["config"].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: apex chart requires a config map", ErrInvalidOutputValueMismatch)
		}
		cv.Config = config
	case ChartFormatImage:
		path, _ := m["path"].(string)
		if path == "" {
			// legacy "plot" tag carries the path directly in value when value itself is a string.
			if s, ok := value.(string); ok {
				path = s
			}
		}
		if !isImagePathOrDataURI(path) {
			return nil, fmt.Errorf("%w: image chart requires a path or base64 data URI", ErrInvalidOutputValueMismatch)
		}
		cv.Path = path
	default:
		return nil, fmt.Errorf("%w: unknown chart format %q", ErrInvalidOutputValueMismatch, format)
	}

	return cv, nil
}

func parseErrorValue(value any) (*ErrorValue, error) {
	m, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: error value is not an object", ErrInvalidOutputValueMismatch)
	}
	kind, _ := m["kind"].(string)
	message, _ := m["message"].(string)
	lastCode, _ := m["last_code"].(string)
	return &ErrorValue{Kind: ErrorKind(kind), Message: message, LastCode: lastCode}, nil
}

// Serialize converts a Response back into the raw {"type","value"} shape,
// the inverse of Parse, used for the round-trip property (R1) and for
// transport to the HTTP layer.
func Serialize(r Response) map[string]any {
	switch r.Tag {
	case TagScalar:
		return map[string]any{"type": string(TagScalar), "value": r.Number}
	case TagText:
		return map[string]any{"type": string(TagText), "value": r.Message}
	case TagTable:
		return map[string]any{"type": string(TagTable), "value": r.Table.Rows}
	case TagChart:
		value := map[string]any{"format": string(r.Chart.Format), "chart_type": r.Chart.ChartType}
		if r.Chart.Format == ChartFormatApex {
			value["config"] = r.Chart.Config
		} else {
			value["path"] = r.Chart.Path
		}
		return map[string]any{"type": string(TagChart), "value": value}
	case TagError:
		return map[string]any{"type": string(TagError), "value": map[string]any{
			"kind": string(r.Err.Kind), "message": r.Err.Message, "last_code": r.Err.LastCode,
		}}
	default:
		return map[string]any{"type": "", "value": nil}
	}
}
