package httpapi

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlquery/corecube/internal/config"
	"github.com/nlquery/corecube/internal/feedback"
	"github.com/nlquery/corecube/internal/session"
)

const sampleCSV = "id,region,amount\n1,west,10\n2,east,20\n3,west,30\n"

func newTestHandlers(t *testing.T) *Handlers {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("LLM_API_KEY", "")

	files, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	return NewHandlers(config.Load(), feedback.NewStore(t.TempDir()), files, session.NewRegistry())
}

func TestUploadCreatesSessionReadyToQuery(t *testing.T) {
	h := newTestHandlers(t)

	resp, err := h.Upload(context.Background(), "sales.csv", "monthly sales", strings.NewReader(sampleCSV))
	require.NoError(t, err)
	assert.Equal(t, "sales.csv", resp.Filename)
	assert.Equal(t, "uploaded", resp.Status)

	sess, err := h.Sessions.Get(resp.FileID)
	require.NoError(t, err)
	assert.True(t, sess.Ready())
	assert.Len(t, sess.Datasets(), 1)

	_, err = h.engineFor(resp.FileID)
	assert.NoError(t, err)
}

func TestQueryAgainstMockGatewayReturnsDataframe(t *testing.T) {
	h := newTestHandlers(t)

	up, err := h.Upload(context.Background(), "sales.csv", "", strings.NewReader(sampleCSV))
	require.NoError(t, err)

	qr, err := h.Query(context.Background(), QueryRequest{FileID: up.FileID, Query: "show me the sales data"})
	require.NoError(t, err)
	assert.Equal(t, "dataframe", qr.Type)
	rows, ok := qr.Data.([]map[string]any)
	require.True(t, ok)
	assert.Len(t, rows, 3)
}

func TestVisualizationAgainstMockGatewayReturnsChart(t *testing.T) {
	h := newTestHandlers(t)

	up, err := h.Upload(context.Background(), "sales.csv", "", strings.NewReader(sampleCSV))
	require.NoError(t, err)

	vr, err := h.Visualization(context.Background(), VisualizationRequest{FileID: up.FileID, ChartType: "bar", YColumn: "amount"})
	require.NoError(t, err)
	assert.Equal(t, "chart", vr.Type)
	assert.NotNil(t, vr.Chart)
}

func TestQueryUnknownSessionErrors(t *testing.T) {
	h := newTestHandlers(t)
	_, err := h.Query(context.Background(), QueryRequest{FileID: "does-not-exist", Query: "anything"})
	assert.Error(t, err)
}

func TestListFilesAndFileDetail(t *testing.T) {
	h := newTestHandlers(t)

	up, err := h.Upload(context.Background(), "sales.csv", "desc", strings.NewReader(sampleCSV))
	require.NoError(t, err)

	list, err := h.ListFiles(context.Background())
	require.NoError(t, err)
	assert.Len(t, list.Files, 1)

	detail, err := h.FileDetail(context.Background(), up.FileID)
	require.NoError(t, err)
	assert.Equal(t, "sales.csv", detail.Filename)
	assert.True(t, detail.EngineLoaded)
}

func TestCloseSessionOptionallyDeletesFile(t *testing.T) {
	h := newTestHandlers(t)

	up, err := h.Upload(context.Background(), "sales.csv", "", strings.NewReader(sampleCSV))
	require.NoError(t, err)

	_, err = h.CloseSession(context.Background(), up.FileID, true)
	require.NoError(t, err)

	_, err = h.Sessions.Get(up.FileID)
	assert.Error(t, err)

	_, err = h.Files.Get(up.FileID)
	assert.Error(t, err)

	_, err = h.engineFor(up.FileID)
	assert.Error(t, err)
}
