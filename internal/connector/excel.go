package connector

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ExcelConnector loads one sheet of an .xlsx/.xls workbook, grounded
// on the pack's excelize/v2 usage (named directly in the
// jbeck018-howlerops, kadirpekel-hector, teradata-labs-loom, and
// bbiangul-go-reason manifests).
type ExcelConnector struct {
	path      string
	sheet     string // empty uses the workbook's active sheet
	connected bool
	file      *excelize.File
}

// NewExcelConnector returns a connector for path. An empty sheet name
// uses the workbook's active sheet.
func NewExcelConnector(path, sheet string) *ExcelConnector {
	return &ExcelConnector{path: path, sheet: sheet}
}

func (c *ExcelConnector) Connect(ctx context.Context) error {
	f, err := excelize.OpenFile(c.path)
	if err != nil {
		return fmt.Errorf("connector: excel: open: %w", err)
	}
	c.file = f
	c.connected = true
	return nil
}

func (c *ExcelConnector) Close() error {
	c.connected = false
	if c.file == nil {
		return nil
	}
	return c.file.Close()
}

func (c *ExcelConnector) IsConnected() bool { return c.connected }

func (c *ExcelConnector) Load(ctx context.Context) (*LoadResult, error) {
	sheet := c.sheet
	if sheet == "" {
		sheet = c.file.GetSheetName(c.file.GetActiveSheetIndex())
	}

	raw, err := c.file.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("connector: excel: read sheet %q: %w", sheet, err)
	}
	if len(raw) == 0 {
		return &LoadResult{TableName: tableNameFromPath(c.path)}, nil
	}

	header := raw[0]
	rows := make([]map[string]any, 0, len(raw)-1)
	for _, record := range raw[1:] {
		row := make(map[string]any, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			} else {
				row[col] = nil
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
