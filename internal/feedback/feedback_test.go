package feedback

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSuccessPersistsAndReloads(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	require.NoError(t, store.RecordSuccess("How many sales?", "SELECT COUNT(*) FROM sales"))

	reloaded := NewStore(dir)
	require.NoError(t, reloaded.Load())

	matches := reloaded.Similar("how many sales")
	require.Len(t, matches, 1)
	assert.Equal(t, "SELECT COUNT(*) FROM sales", matches[0].Query.Code)
}

func TestRecordUserFeedbackAppendsAndPersists(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	require.NoError(t, store.RecordUserFeedback("q1", "looks wrong"))
	require.NoError(t, store.RecordUserFeedback("q2", "great"))

	assert.FileExists(t, filepath.Join(dir, "user_feedback", "user_feedback.json"))

	reloaded := NewStore(dir)
	require.NoError(t, reloaded.Load())
	assert.Len(t, reloaded.feedback, 2)
}

func TestSimilarCapsAtThreeAndSortsBySimilarity(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	require.NoError(t, store.RecordSuccess("total sales by region", "SELECT region, SUM(amount) FROM sales GROUP BY region"))
	require.NoError(t, store.RecordSuccess("total sales by region and month", "SELECT region, month, SUM(amount) FROM sales GROUP BY region, month"))
	require.NoError(t, store.RecordSuccess("total sales", "SELECT SUM(amount) FROM sales"))
	require.NoError(t, store.RecordSuccess("customer churn rate", "SELECT churn FROM customers"))

	matches := store.Similar("total sales by region")
	assert.LessOrEqual(t, len(matches), maxSimilarResults)
	require.NotEmpty(t, matches)
	assert.Equal(t, "total sales by region", matches[0].Query.OriginalQuestion)
}

func TestCleanupDropsOldRecords(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	require.NoError(t, store.RecordSuccess("old question", "SELECT 1"))

	store.mu.Lock()
	entry := store.queries["old question"]
	entry.Timestamp = time.Now().Add(-48 * time.Hour)
	store.queries["old question"] = entry
	store.mu.Unlock()

	require.NoError(t, store.Cleanup(24*time.Hour))

	matches := store.Similar("old question")
	assert.Empty(t, matches)
}
