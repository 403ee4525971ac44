package connector

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// CSVConfig configures delimiter and header presence for a CSV or TSV
// source; the file is read as UTF-8, with no encoding option. There is
// no CSV library anywhere in the retrieval pack (see DESIGN.md), so
// this connector is built directly on encoding/csv.
type CSVConfig struct {
	Path      string
	Delimiter rune // defaults to ','
	HasHeader bool // false names the columns column_1, column_2, ...
}

// CSVConnector loads a single delimited file.
type CSVConnector struct {
	cfg       CSVConfig
	connected bool
}

// NewCSVConnector returns a connector for cfg, defaulting Delimiter to
// ',' when unset. HasHeader is used as given.
func NewCSVConnector(cfg CSVConfig) *CSVConnector {
	if cfg.Delimiter == 0 {
		cfg.Delimiter = ','
	}
	return &CSVConnector{cfg: cfg}
}

// NewTSVConnector returns a CSVConnector pre-configured with a tab delimiter.
func NewTSVConnector(path string) *CSVConnector {
	return NewCSVConnector(CSVConfig{Path: path, Delimiter: '\t', HasHeader: true})
}

func (c *CSVConnector) Connect(ctx context.Context) error {
	if _, err := os.Stat(c.cfg.Path); err != nil {
		return fmt.Errorf("connector: csv: %w", err)
	}
	c.connected = true
	return nil
}

func (c *CSVConnector) Close() error {
	c.connected = false
	return nil
}

func (c *CSVConnector) IsConnected() bool { return c.connected }

func (c *CSVConnector) Load(ctx context.Context) (*LoadResult, error) {
	f, err := os.Open(c.cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("connector: csv: open: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = c.cfg.Delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var header []string
	var rows []map[string]any
	rowIndex := 0

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("connector: csv: read: %w", err)
		}

		if rowIndex == 0 {
			if c.cfg.HasHeader {
				header = append([]string(nil), record...)
				rowIndex++
				continue
			}
			header = make([]string, len(record))
			for i := range record {
				header[i] = fmt.Sprintf("column_%d", i+1)
			}
		}

		row := make(map[string]any, len(header))
		for i, value := range header {
			if i < len(record) {
				row[value] = strings.TrimSpace(record[i])
			} else {
				row[value] = nil
			}
		}
		rows = append(rows, row)
		rowIndex++
	}

	return &LoadResult{
		TableName:   tableNameFromPath(c.cfg.Path),
		ColumnOrder: header,
		Rows:        rows,
	}, nil
}
