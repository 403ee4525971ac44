package connector

import (
	"context"
	"fmt"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
)

// DirectoryConnector loads every file matching Pattern under Dir,
// dispatching each to the connector for its extension. It generalizes
// the teacher's one-adapter-per-database-type factory
// (adapter.NewAdapter) to one-connector-per-file-extension, and
// mirrors the spec's requirement to keep every per-file table plus an
// optional combined view of schema-compatible files.
type DirectoryConnector struct {
	Dir        string
	Pattern    string // defaults to "*.csv"
	CombineAs  string // non-empty registers a UNION ALL view under this name
	ExcelSheet string // applied to every .xlsx/.xls match

	connected bool
}

func (d *DirectoryConnector) Connect(ctx context.Context) error {
	if d.Pattern == "" {
		d.Pattern = "*.csv"
	}
	matches, err := filepath.Glob(filepath.Join(d.Dir, d.Pattern))
	if err != nil {
		return fmt.Errorf("connector: directory: glob: %w", err)
	}
	if len(matches) == 0 {
		return fmt.Errorf("connector: directory: no files match %q under %q", d.Pattern, d.Dir)
	}
	d.connected = true
	return nil
}

func (d *DirectoryConnector) Close() error {
	d.connected = false
	return nil
}

func (d *DirectoryConnector) IsConnected() bool { return d.connected }

// Load is not meaningful for a DirectoryConnector, which loads many
// tables at once; callers use LoadAll instead.
func (d *DirectoryConnector) Load(ctx context.Context) (*LoadResult, error) {
	return nil, fmt.Errorf("connector: directory: use LoadAll, a directory is not a single table")
}

// DirectoryLoadResult bundles every per-file LoadResult plus, when a
// combined view was requested and at least two files share a schema,
// the SQL text for a UNION ALL view over them. Executing that SQL is
// the caller's responsibility — connector never touches the dialect
// engine directly, keeping this package testable without a database.
type DirectoryLoadResult struct {
	Files           []*LoadResult
	CombinedView    string // view name, empty if no combination was possible
	CombinedViewSQL string
}

// LoadAll loads every matched file into its own LoadResult and, if
// CombineAs is set, builds the UNION ALL view SQL across files that
// share an identical column set.
func (d *DirectoryConnector) LoadAll(ctx context.Context) (*DirectoryLoadResult, error) {
	matches, err := filepath.Glob(filepath.Join(d.Dir, d.Pattern))
	if err != nil {
		return nil, fmt.Errorf("connector: directory: glob: %w", err)
	}
	sort.Strings(matches)

	out := &DirectoryLoadResult{}
	for _, path := range matches {
		conn, err := d.connectorFor(path)
		if err != nil {
			return nil, err
		}
		if err := conn.Connect(ctx); err != nil {
			return nil, err
		}
		result, err := conn.Load(ctx)
		conn.Close()
		if err != nil {
			return nil, fmt.Errorf("connector: directory: load %q: %w", path, err)
		}
		out.Files = append(out.Files, result)
	}

	if d.CombineAs != "" {
		view, sql := buildCombinedView(d.CombineAs, out.Files)
		out.CombinedView = view
		out.CombinedViewSQL = sql
	}

	return out, nil
}

func (d *DirectoryConnector) connectorFor(path string) (Connector, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if d.ExcelSheet != "" && (ext == ".xlsx" || ext == ".xls") {
		return NewExcelConnector(path, d.ExcelSheet), nil
	}
	return ForPath(path)
}

// buildCombinedView returns the view name and `CREATE VIEW ... AS
// SELECT ... UNION ALL ...` text for every file whose column set
// exactly matches the first file's, skipping the rest. The combined
// view is named after the source id (CombineAs), per spec.
func buildCombinedView(name string, files []*LoadResult) (string, string) {
	if len(files) == 0 {
		return "", ""
	}
	base := files[0].ColumnOrder
	var compatible []*LoadResult
	for _, f := range files {
		if reflect.DeepEqual(sortedCopy(f.ColumnOrder), sortedCopy(base)) {
			compatible = append(compatible, f)
		}
	}
	if len(compatible) < 2 {
		return "", ""
	}

	var selects []string
	for _, f := range compatible {
		selects = append(selects, fmt.Sprintf("SELECT * FROM %s", quoteIdentLocal(f.TableName)))
	}
	sql := fmt.Sprintf("CREATE OR REPLACE VIEW %s AS %s", quoteIdentLocal(name), strings.Join(selects, " UNION ALL "))
	return name, sql
}

func sortedCopy(s []string) []string {
	out := append([]string(nil), s...)
	sort.Strings(out)
	return out
}

func quoteIdentLocal(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
