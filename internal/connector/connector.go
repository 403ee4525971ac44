// Package connector implements the Connector Layer (C3): loading
// CSV/TSV, JSON, Excel, and Parquet sources (single file or directory)
// into the uniform in-memory relation internal/dataset builds on. It
// generalizes the teacher's one-adapter-per-database-type factory
// (internal/adapter.NewAdapter, switching on "mysql"/"postgresql"/
// "sqlite") into one connector per file format, since this system's
// sources are always files, never live database connections.
package connector

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Connector is the capability every file-format loader implements:
// connect to the source, load it whole, close it, and report
// connectivity — mirroring the teacher's adapter.DBAdapter shape,
// narrowed to what a file-backed source can actually do. It has no SQL
// read of its own; SQL runs against the embedded engine after Load.
type Connector interface {
	Connect(ctx context.Context) error
	Close() error
	IsConnected() bool

	// Load reads the entire source into a column-ordered set of rows,
	// ready for dataset.Build. File connectors are not themselves SQL
	// engines, so the loaded rows are registered into the embedded
	// DuckDB engine on demand rather than being queried in place.
	Load(ctx context.Context) (*LoadResult, error)
}

// LoadResult is one connector's output: the table name it should be
// registered under, its column order, and its rows.
type LoadResult struct {
	TableName   string
	ColumnOrder []string
	Rows        []map[string]any
}

// UnsupportedFileType is returned when a directory load encounters an
// extension with no matching connector.
type UnsupportedFileType struct {
	Extension string
}

func (e *UnsupportedFileType) Error() string {
	return fmt.Sprintf("connector: unsupported file type %q", e.Extension)
}

// ForPath picks the Connector for a single file's extension, the same
// dispatch DirectoryConnector.connectorFor uses per matched file,
// exported so the upload/load handlers can dispatch a single uploaded
// file without going through a directory glob.
func ForPath(path string) (Connector, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return NewCSVConnector(CSVConfig{Path: path, Delimiter: ',', HasHeader: true}), nil
	case ".tsv":
		return NewTSVConnector(path), nil
	case ".json":
		return NewJSONConnector(path), nil
	case ".xlsx", ".xls":
		return NewExcelConnector(path, ""), nil
	case ".parquet":
		return NewParquetConnector(path), nil
	default:
		return nil, &UnsupportedFileType{Extension: filepath.Ext(path)}
	}
}

// tableNameFromPath derives a SQL-safe table name from a file path's
// base name, stripping its extension.
func tableNameFromPath(path string) string {
	base := path
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' || path[i] == '\\' {
			base = path[i+1:]
			break
		}
	}
	for i := len(base) - 1; i >= 0; i-- {
		if base[i] == '.' {
			base = base[:i]
			break
		}
	}
	return sanitizeIdent(base)
}

func sanitizeIdent(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	if len(out) == 0 {
		return "t"
	}
	if out[0] >= '0' && out[0] <= '9' {
		out = append([]rune{'_'}, out...)
	}
	return string(out)
}
