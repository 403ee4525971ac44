// Package dialect implements the SQL Dialect Adapter (C4): the
// embedded DuckDB engine wrapper, the generated-SQL rewrite rules that
// target it, and the compatibility macros registered inside it. The
// QueryResult scan loop and DryRunSQL-via-EXPLAIN pattern are
// generalized from the teacher's three near-duplicate
// adapter.DBAdapter implementations (SQLite/MySQL/PostgreSQL) down to
// the one DuckDB adapter this system needs.
package dialect

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/marcboeker/go-duckdb"
)

// QueryResult is the unified shape every executed query returns,
// carried over from the teacher's adapter.QueryResult.
type QueryResult struct {
	Columns       []string
	Rows          []map[string]any
	RowCount      int
	ExecutionTime time.Duration
}

// Engine wraps one embedded DuckDB database and tracks which tables
// have been registered into it, so FROM/JOIN validation never needs a
// round trip to the database itself.
type Engine struct {
	db     *sql.DB
	tables map[string]bool
}

// NewEngine opens an in-memory (path == "") or file-backed DuckDB
// database and registers the compatibility macros.
func NewEngine(ctx context.Context, path string) (*Engine, error) {
	if path == "" {
		path = ":memory:"
	}
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("dialect: open duckdb: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("dialect: ping duckdb: %w", err)
	}
	e := &Engine{db: db, tables: make(map[string]bool)}
	if err := e.registerMacros(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return e, nil
}

// Close releases the underlying connection.
func (e *Engine) Close() error {
	if e.db == nil {
		return nil
	}
	return e.db.Close()
}

// HasTable reports whether name was registered via RegisterTable.
func (e *Engine) HasTable(name string) bool { return e.tables[strings.ToLower(name)] }

// TableNames returns every registered table name.
func (e *Engine) TableNames() []string {
	names := make([]string, 0, len(e.tables))
	for name := range e.tables {
		names = append(names, name)
	}
	return names
}

// ExecuteQuery runs sql against the engine and scans every row into a
// map keyed by column name, mirroring the teacher's
// SQLiteAdapter.ExecuteQuery row-scan loop.
func (e *Engine) ExecuteQuery(ctx context.Context, query string) (*QueryResult, error) {
	start := time.Now()

	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("dialect: execute query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var result []map[string]any
	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(columns))
		for i, col := range columns {
			v := values[i]
			if b, ok := v.([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = v
			}
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &QueryResult{
		Columns:       columns,
		Rows:          result,
		RowCount:      len(result),
		ExecutionTime: time.Since(start),
	}, nil
}

// DryRunSQL validates query syntax without materializing results,
// grounded on the teacher's per-adapter DryRunSQL-via-EXPLAIN methods.
func (e *Engine) DryRunSQL(ctx context.Context, query string) error {
	_, err := e.db.ExecContext(ctx, "EXPLAIN "+query)
	return err
}

// registerMacros installs the spec's fixed compatibility macro set:
// GROUP_CONCAT, a simplified DATE_FORMAT, TO_DATE, CONCAT, CONCAT_WS,
// and YEAR/MONTH/DAY as EXTRACT wrappers. DuckDB ships STRING_AGG,
// strftime, DATE, and || natively, so these macros exist purely so
// that ungenerated/unrewritten legacy-dialect SQL still runs.
func (e *Engine) registerMacros(ctx context.Context) error {
	macros := []string{
		`CREATE OR REPLACE MACRO GROUP_CONCAT(col) AS STRING_AGG(col, ',')`,
		`CREATE OR REPLACE MACRO GROUP_CONCAT(col, sep) AS STRING_AGG(col, sep)`,
		`CREATE OR REPLACE MACRO DATE_FORMAT(col, fmt) AS
			CASE fmt
				WHEN '%Y-%m-%d' THEN strftime(col, '%Y-%m-%d')
				WHEN '%Y-%m' THEN strftime(col, '%Y-%m')
				WHEN '%Y' THEN strftime(col, '%Y')
				ELSE strftime(col, fmt)
			END`,
		`CREATE OR REPLACE MACRO TO_DATE(x) AS CAST(x AS DATE)`,
		`CREATE OR REPLACE MACRO CONCAT(a, b) AS (a || b)`,
		`CREATE OR REPLACE MACRO CONCAT_WS(sep, a, b) AS (a || sep || b)`,
		`CREATE OR REPLACE MACRO YEAR(col) AS EXTRACT(YEAR FROM col)`,
		`CREATE OR REPLACE MACRO MONTH(col) AS EXTRACT(MONTH FROM col)`,
		`CREATE OR REPLACE MACRO DAY(col) AS EXTRACT(DAY FROM col)`,
	}
	for _, m := range macros {
		if _, err := e.db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("dialect: register macro: %w", err)
		}
	}
	return nil
}
