package connector

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCSVConnectorLoad(t *testing.T) {
	path := writeTempFile(t, "vendas.csv", "cliente,total\nAna,100\nBo,50\n")
	conn := NewCSVConnector(CSVConfig{Path: path, HasHeader: true})

	require.NoError(t, conn.Connect(context.Background()))
	defer conn.Close()
	assert.True(t, conn.IsConnected())

	result, err := conn.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "vendas", result.TableName)
	assert.Equal(t, []string{"cliente", "total"}, result.ColumnOrder)
	require.Len(t, result.Rows, 2)
	assert.Equal(t, "Ana", result.Rows[0]["cliente"])
	assert.Equal(t, "100", result.Rows[0]["total"])
}

func TestCSVConnectorNoHeader(t *testing.T) {
	path := writeTempFile(t, "raw.csv", "1,2\n3,4\n")
	conn := NewCSVConnector(CSVConfig{Path: path, HasHeader: false})

	require.NoError(t, conn.Connect(context.Background()))
	result, err := conn.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"column_1", "column_2"}, result.ColumnOrder)
	require.Len(t, result.Rows, 2)
}

func TestCSVConnectorMissingFile(t *testing.T) {
	conn := NewCSVConnector(CSVConfig{Path: "/nonexistent/path.csv"})
	assert.Error(t, conn.Connect(context.Background()))
}

func TestTableNameFromPath(t *testing.T) {
	assert.Equal(t, "vendas", tableNameFromPath("/tmp/vendas.csv"))
	assert.Equal(t, "order_items", tableNameFromPath("order items.json"))
}
