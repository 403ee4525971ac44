package connector

import (
	"context"
	"fmt"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"
)

// ParquetConnector loads a .parquet file schemalessly, grounded on the
// pack's xitongsys/parquet-go usage (named in the steveyegge-beads
// manifest) and the DuckDB-adjacent `go-duckdb` example that confirms
// columnar file formats are a first-class source in this corpus.
type ParquetConnector struct {
	path      string
	connected bool
}

// NewParquetConnector returns a connector for path.
func NewParquetConnector(path string) *ParquetConnector {
	return &ParquetConnector{path: path}
}

func (c *ParquetConnector) Connect(ctx context.Context) error {
	fr, err := local.NewLocalFileReader(c.path)
	if err != nil {
		return fmt.Errorf("connector: parquet: open: %w", err)
	}
	fr.Close()
	c.connected = true
	return nil
}

func (c *ParquetConnector) Close() error {
	c.connected = false
	return nil
}

func (c *ParquetConnector) IsConnected() bool { return c.connected }

func (c *ParquetConnector) Load(ctx context.Context) (*LoadResult, error) {
	fr, err := local.NewLocalFileReader(c.path)
	if err != nil {
		return nil, fmt.Errorf("connector: parquet: open: %w", err)
	}
	defer fr.Close()

	// A nil schema object makes parquet-go derive the row shape from the
	// file's own embedded schema, returning each row as map[string]interface{}.
	pr, err := reader.NewParquetReader(fr, nil, 4)
	if err != nil {
		return nil, fmt.Errorf("connector: parquet: new reader: %w", err)
	}
	defer pr.ReadStop()

	numRows := int(pr.GetNumRows())
	records, err := pr.ReadByNumber(numRows)
	if err != nil {
		return nil, fmt.Errorf("connector: parquet: read rows: %w", err)
	}

	rows := make([]map[string]any, 0, len(records))
	var header []string
	seen := make(map[string]bool)
	for _, rec := range records {
		row, ok := rec.(map[string]any)
		if !ok {
			continue
		}
		for k := range row {
			if !seen[k] {
				seen[k] = true
				header = append(header, k)
			}
		}
		rows = append(rows, row)
	}

	return &LoadResult{
		TableName:   tableNameFromPath(c.path),
		ColumnOrder: header,
		Rows:        rows,
	}, nil
}
