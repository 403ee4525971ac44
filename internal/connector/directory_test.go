package connector

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectoryConnectorLoadsEachFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "norte.csv"), []byte("cliente,total\nAna,10\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sul.csv"), []byte("cliente,total\nBo,20\n"), 0o644))

	dc := &DirectoryConnector{Dir: dir, Pattern: "*.csv", CombineAs: "vendas_combined"}
	require.NoError(t, dc.Connect(context.Background()))

	result, err := dc.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Files, 2)
	assert.Equal(t, "vendas_combined", result.CombinedView)
	assert.Contains(t, result.CombinedViewSQL, "UNION ALL")
}

func TestDirectoryConnectorSkipsCombineOnSchemaMismatch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.csv"), []byte("x,y\n1,2\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.csv"), []byte("p,q,r\n1,2,3\n"), 0o644))

	dc := &DirectoryConnector{Dir: dir, Pattern: "*.csv", CombineAs: "combined"}
	require.NoError(t, dc.Connect(context.Background()))

	result, err := dc.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result.CombinedView)
}

func TestDirectoryConnectorErrorsOnNoMatches(t *testing.T) {
	dc := &DirectoryConnector{Dir: t.TempDir(), Pattern: "*.csv"}
	assert.Error(t, dc.Connect(context.Background()))
}
