package dialect

import (
	"context"
	"fmt"
	"strings"
)

// RegisterTable creates name as a DuckDB table from the given columns
// and rows, replacing any existing table of the same name. Values are
// inserted via a single parameterized multi-row INSERT, since the
// dataset sizes this service targets do not need DuckDB's Appender API.
func (e *Engine) RegisterTable(ctx context.Context, name string, columns []string, rows []map[string]any) error {
	quoted := quoteIdent(name)

	var cols strings.Builder
	for i, c := range columns {
		if i > 0 {
			cols.WriteString(", ")
		}
		cols.WriteString(quoteIdent(c))
		cols.WriteString(" ANY")
	}

	ddl := fmt.Sprintf(`DROP TABLE IF EXISTS %s; CREATE TABLE %s (%s)`, quoted, quoted, cols.String())
	if _, err := e.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("dialect: create table %s: %w", name, err)
	}

	if len(rows) > 0 {
		if err := e.insertRows(ctx, quoted, columns, rows); err != nil {
			return err
		}
	}

	e.tables[strings.ToLower(name)] = true
	return nil
}

const insertBatchSize = 500

func (e *Engine) insertRows(ctx context.Context, quotedTable string, columns []string, rows []map[string]any) error {
	for start := 0; start < len(rows); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := e.insertBatch(ctx, quotedTable, columns, rows[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) insertBatch(ctx context.Context, quotedTable string, columns []string, batch []map[string]any) error {
	var sqlBuilder strings.Builder
	fmt.Fprintf(&sqlBuilder, "INSERT INTO %s (", quotedTable)
	for i, c := range columns {
		if i > 0 {
			sqlBuilder.WriteString(", ")
		}
		sqlBuilder.WriteString(quoteIdent(c))
	}
	sqlBuilder.WriteString(") VALUES ")

	args := make([]any, 0, len(batch)*len(columns))
	placeholder := 1
	for rowIdx, row := range batch {
		if rowIdx > 0 {
			sqlBuilder.WriteString(", ")
		}
		sqlBuilder.WriteString("(")
		for colIdx, c := range columns {
			if colIdx > 0 {
				sqlBuilder.WriteString(", ")
			}
			fmt.Fprintf(&sqlBuilder, "$%d", placeholder)
			placeholder++
			args = append(args, row[c])
		}
		sqlBuilder.WriteString(")")
	}

	if _, err := e.db.ExecContext(ctx, sqlBuilder.String(), args...); err != nil {
		return fmt.Errorf("dialect: insert rows: %w", err)
	}
	return nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
