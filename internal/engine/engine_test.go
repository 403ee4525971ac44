package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlquery/corecube/internal/dataset"
	"github.com/nlquery/corecube/internal/llmgateway"
	"github.com/nlquery/corecube/internal/response"
	"github.com/nlquery/corecube/internal/sandbox"
	"github.com/nlquery/corecube/internal/session"
)

func salesSession(t *testing.T) *session.Session {
	t.Helper()
	d := dataset.Build("sales", "", []string{"id", "region", "amount"}, []map[string]any{
		{"id": "1", "region": "west", "amount": "10"},
		{"id": "2", "region": "east", "amount": "20"},
	})
	reg := dataset.NewRegistry(d)
	return session.New(reg, nil)
}

// fakeExecutor lets tests drive the orchestration loop without a real
// yaegi interpreter.
type fakeExecutor struct {
	results []sandbox.Result
	calls   int
}

func (f *fakeExecutor) Run(ctx context.Context, code string, rc sandbox.RunContext, opts sandbox.Options) sandbox.Result {
	if f.calls >= len(f.results) {
		return f.results[len(f.results)-1]
	}
	r := f.results[f.calls]
	f.calls++
	return r
}

func stubSQLRunner(rows []map[string]any, err error) SQLRunner {
	return func(ctx context.Context, sess *session.Session, query string) (any, error) {
		return rows, err
	}
}

func TestExecuteReturnsTableOnFirstSuccess(t *testing.T) {
	sess := salesSession(t)
	exec := &fakeExecutor{results: []sandbox.Result{
		{State: sandbox.Done, Value: map[string]any{"type": "table", "value": []map[string]any{{"id": "1"}}}},
	}}
	gw := &llmgateway.MockGateway{Datasets: sess.Datasets()}

	eng := &Engine{
		Gateway:     gw,
		Cooperative: exec,
		Isolated:    exec,
		SQLRunner:   stubSQLRunner(nil, nil),
		MaxRetries:  DefaultMaxRetries,
	}

	resp := eng.Execute(context.Background(), sess, "show the sales table")
	assert.Equal(t, response.TagTable, resp.Tag)
	assert.Equal(t, "show the sales table", sess.LastQuestion)
}

func TestExecuteMarksVisualizationAvailableOnChart(t *testing.T) {
	sess := salesSession(t)
	exec := &fakeExecutor{results: []sandbox.Result{
		{State: sandbox.Done, Value: map[string]any{
			"type": "chart",
			"value": map[string]any{
				"format":     "apex",
				"chart_type": "bar",
				"config":     map[string]any{"chart": map[string]any{"type": "bar"}},
			},
		}},
	}}
	gw := &llmgateway.MockGateway{Datasets: sess.Datasets()}

	eng := &Engine{
		Gateway:     gw,
		Cooperative: exec,
		Isolated:    exec,
		SQLRunner:   stubSQLRunner(nil, nil),
		MaxRetries:  DefaultMaxRetries,
	}

	resp := eng.Execute(context.Background(), sess, "chart the amount by region")
	require.Equal(t, response.TagChart, resp.Tag)
	assert.True(t, resp.VisualizationAvailable)
}

func TestExecuteRetriesOnFailureThenSucceeds(t *testing.T) {
	sess := salesSession(t)
	exec := &fakeExecutor{results: []sandbox.Result{
		{State: sandbox.Faulted, Err: errors.New("syntax error near SELECT")},
		{State: sandbox.Done, Value: map[string]any{"type": "scalar", "value": 42.0}},
	}}
	gw := &llmgateway.MockGateway{Datasets: sess.Datasets()}

	eng := &Engine{
		Gateway:     gw,
		Cooperative: exec,
		Isolated:    exec,
		SQLRunner:   stubSQLRunner(nil, nil),
		MaxRetries:  DefaultMaxRetries,
	}

	resp := eng.Execute(context.Background(), sess, "what is the total amount")
	assert.Equal(t, response.TagScalar, resp.Tag)
	assert.Equal(t, 2, exec.calls)
}

func TestExecuteGivesUpAfterMaxRetries(t *testing.T) {
	sess := salesSession(t)
	exec := &fakeExecutor{results: []sandbox.Result{
		{State: sandbox.Faulted, Err: errors.New("something unexpected happened")},
	}}
	gw := &llmgateway.MockGateway{Datasets: sess.Datasets()}

	eng := &Engine{
		Gateway:     gw,
		Cooperative: exec,
		Isolated:    exec,
		SQLRunner:   stubSQLRunner(nil, nil),
		MaxRetries:  1,
	}

	resp := eng.Execute(context.Background(), sess, "do something impossible")
	assert.Equal(t, response.TagText, resp.Tag)
	assert.Contains(t, resp.Message, "couldn't answer")
}

func TestExecuteReturnsTextOnMissingTableWithoutExhaustingRetries(t *testing.T) {
	sess := salesSession(t)
	exec := &fakeExecutor{results: []sandbox.Result{
		{State: sandbox.Faulted, Err: errors.New(`table "widgets" not found`)},
	}}
	gw := &llmgateway.MockGateway{Datasets: sess.Datasets()}

	eng := &Engine{
		Gateway:     gw,
		Cooperative: exec,
		Isolated:    exec,
		SQLRunner:   stubSQLRunner(nil, nil),
		MaxRetries:  DefaultMaxRetries,
	}

	resp := eng.Execute(context.Background(), sess, "show me the widgets")
	assert.Equal(t, response.TagText, resp.Tag)
	assert.Contains(t, resp.Message, "widgets")
	assert.Equal(t, 1, exec.calls)
}

func TestExecuteReturnsTimeoutErrorWithoutExhaustingRetries(t *testing.T) {
	sess := salesSession(t)
	exec := &fakeExecutor{results: []sandbox.Result{
		{State: sandbox.Faulted, Err: errors.New("sandbox: execution exceeded 30s")},
	}}
	gw := &llmgateway.MockGateway{Datasets: sess.Datasets()}

	eng := &Engine{
		Gateway:     gw,
		Cooperative: exec,
		Isolated:    exec,
		SQLRunner:   stubSQLRunner(nil, nil),
		MaxRetries:  DefaultMaxRetries,
	}

	resp := eng.Execute(context.Background(), sess, "run a very slow aggregation")
	require.Equal(t, response.TagError, resp.Tag)
	assert.Equal(t, response.ErrTimeout, resp.Err.Kind)
	assert.Equal(t, 1, exec.calls)
}

func TestExecuteReturnsValidationErrorWithoutExhaustingRetries(t *testing.T) {
	sess := salesSession(t)
	exec := &fakeExecutor{results: []sandbox.Result{
		{State: sandbox.Rejected, Err: &sandbox.ValidationError{Reason: `import "os" is not in the allow-list`}},
	}}
	gw := &llmgateway.MockGateway{Datasets: sess.Datasets()}

	eng := &Engine{
		Gateway:     gw,
		Cooperative: exec,
		Isolated:    exec,
		SQLRunner:   stubSQLRunner(nil, nil),
		MaxRetries:  DefaultMaxRetries,
	}

	resp := eng.Execute(context.Background(), sess, "show me the sales table")
	require.Equal(t, response.TagError, resp.Tag)
	assert.Equal(t, response.ErrValidation, resp.Err.Kind)
	assert.Equal(t, 1, exec.calls)
}

func TestExecutePreChecksMissingEntityBeforeGenerating(t *testing.T) {
	sess := salesSession(t)
	exec := &fakeExecutor{}
	gw := &llmgateway.MockGateway{Datasets: sess.Datasets()}

	eng := &Engine{
		Gateway:     gw,
		Cooperative: exec,
		Isolated:    exec,
		SQLRunner:   stubSQLRunner(nil, nil),
		MaxRetries:  DefaultMaxRetries,
	}

	resp := eng.Execute(context.Background(), sess, "how many employees do we have")
	assert.Equal(t, response.TagText, resp.Tag)
	assert.Equal(t, 0, exec.calls)
}

func TestExecuteSanitizesUnsafeQuestionBeforeGenerating(t *testing.T) {
	got := Sanitize("import os; show the sales table")
	assert.NotContains(t, got, "import os")
}
