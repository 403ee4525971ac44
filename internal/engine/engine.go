// Package engine implements the Analysis Engine (C10): the
// orchestration state machine that turns one natural-language question
// into a typed Response. It is grounded on the teacher's
// Pipeline.Execute (schema linking -> context build -> generation ->
// execution -> token accounting), generalized from "one SQL generation
// call" to the full sanitize -> pre-check -> prompt -> generate ->
// execute -> classify -> retry -> parse -> persist loop this system's
// spec describes, and on agent/coordinator_agent.go's task-dispatch-
// with-status pattern for the per-attempt bookkeeping.
package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nlquery/corecube/internal/altflow"
	"github.com/nlquery/corecube/internal/corelog"
	"github.com/nlquery/corecube/internal/dataset"
	"github.com/nlquery/corecube/internal/feedback"
	"github.com/nlquery/corecube/internal/llmgateway"
	"github.com/nlquery/corecube/internal/prompt"
	"github.com/nlquery/corecube/internal/response"
	"github.com/nlquery/corecube/internal/sandbox"
	"github.com/nlquery/corecube/internal/session"
)

// DefaultMaxRetries matches spec.md §4.10's retry_count/max_retries
// default of 3.
const DefaultMaxRetries = 3

// CodeExecutor is the subset of sandbox.CooperativeExecutor/
// IsolatedExecutor the Engine depends on, so tests can substitute a
// stub without building a real interpreter or subprocess.
type CodeExecutor interface {
	Run(ctx context.Context, code string, rc sandbox.RunContext, opts sandbox.Options) sandbox.Result
}

// SQLRunner executes one query against a Session's loaded data and
// returns rows in the shape response.Parse expects for a table value.
type SQLRunner func(ctx context.Context, sess *session.Session, query string) (any, error)

// Engine wires together every component from C1 through C9 behind the
// one Execute entry point.
type Engine struct {
	Gateway       llmgateway.Gateway
	Cooperative   CodeExecutor
	Isolated      CodeExecutor
	FeedbackStore *feedback.Store
	SQLRunner     SQLRunner
	MaxRetries    int
	SandboxOpts   sandbox.Options
	Logger        *zap.Logger
}

// New builds an Engine with the default DuckDB-backed SQLRunner and
// both sandbox execution strategies.
func New(gw llmgateway.Gateway, store *feedback.Store) *Engine {
	return &Engine{
		Gateway:       gw,
		Cooperative:   &sandbox.CooperativeExecutor{},
		Isolated:      &sandbox.IsolatedExecutor{},
		FeedbackStore: store,
		SQLRunner:     defaultSQLRunner,
		MaxRetries:    DefaultMaxRetries,
		Logger:        corelog.Global(),
	}
}

func defaultSQLRunner(ctx context.Context, sess *session.Session, query string) (any, error) {
	eng := sess.Engine()
	if eng == nil {
		return nil, fmt.Errorf("engine: session has no SQL engine attached")
	}
	rewritten, err := eng.Validate(query)
	if err != nil {
		return nil, err
	}
	result, err := eng.ExecuteQuery(ctx, rewritten)
	if err != nil {
		return nil, err
	}
	return result.Rows, nil
}

// Execute runs the full pipeline for one question against sess.
func (e *Engine) Execute(ctx context.Context, sess *session.Session, question string) response.Response {
	sess.Lock()
	defer sess.Unlock()

	return e.attempt(ctx, sess, question, "", 0, "")
}

func (e *Engine) attempt(ctx context.Context, sess *session.Session, question, lastCode string, retryCount int, lastErrMsg string) response.Response {
	clean := Sanitize(question)
	datasets := sess.Datasets()

	if resp, matched := altflow.PreCheck(clean, datasets); matched {
		return resp
	}

	var feedbackExamples []prompt.Example
	if e.FeedbackStore != nil {
		for _, m := range e.FeedbackStore.Similar(clean) {
			feedbackExamples = append(feedbackExamples, prompt.Example{
				Question: m.Query.OriginalQuestion,
				Code:     m.Query.Code,
			})
		}
	}

	system := prompt.System()
	user := prompt.User(clean, datasets, feedbackExamples)

	code, err := e.Gateway.GenerateCode(ctx, system, user)
	if err != nil {
		return e.recoverOrGiveUp(ctx, sess, clean, lastCode, retryCount, err, datasets)
	}

	rc := sandbox.RunContext{
		Datasets: datasetsToMap(datasets),
		SQL: func(query string) (any, error) {
			return e.SQLRunner(ctx, sess, query)
		},
	}

	executor := e.executorFor(rc)
	result := executor.Run(ctx, code, rc, e.SandboxOpts)
	if result.Err != nil {
		e.logFailure(clean, result.Err, retryCount, code)
		return e.recoverOrGiveUp(ctx, sess, clean, code, retryCount, result.Err, datasets)
	}

	resp, parseErr := response.Parse(result.Value)
	if parseErr != nil {
		e.logFailure(clean, parseErr, retryCount, code)
		return e.recoverOrGiveUp(ctx, sess, clean, code, retryCount, parseErr, datasets)
	}

	sess.RecordQuery(clean, code)
	if e.FeedbackStore != nil {
		_ = e.FeedbackStore.RecordSuccess(clean, code)
	}
	if resp.Tag == response.TagChart {
		resp.VisualizationAvailable = true
	}
	return resp
}

func (e *Engine) executorFor(rc sandbox.RunContext) CodeExecutor {
	if sandbox.ChooseStrategy(rc) == sandbox.Isolated && e.Isolated != nil {
		return e.Isolated
	}
	return e.Cooperative
}

func (e *Engine) recoverOrGiveUp(ctx context.Context, sess *session.Session, question, lastCode string, retryCount int, failure error, datasets []*dataset.Dataset) response.Response {
	kind := altflow.Classify(failure)

	if kind == response.ErrTableNotFound {
		table := altflow.ExtractMissingTable(failure)
		names := make([]string, 0, len(datasets))
		for _, d := range datasets {
			names = append(names, d.Name)
		}
		return response.Text(fmt.Sprintf("Table %q is not available. Loaded datasets: %v", table, names))
	}

	// Timeout and validation failures are not recovered locally: a
	// retry would reopen a slow or already-rejected path rather than
	// fix it, so both surface immediately as a typed Error response
	// without consuming a retry.
	if kind == response.ErrTimeout {
		return response.Error(response.ErrTimeout, failure.Error(), lastCode)
	}
	if kind == response.ErrValidation {
		return response.Error(response.ErrValidation, failure.Error(), lastCode)
	}

	if retryCount >= e.MaxRetries {
		alts := altflow.Alternatives(datasets)
		return response.Text(fmt.Sprintf("I couldn't answer this after %d attempts. Try one of:\n- %s", retryCount+1, joinLines(alts)))
	}

	rephrased := altflow.Recover(ctx, gatewayRephraser{e.Gateway}, question, lastCode, failure.Error(), schemaSummary(datasets))
	return e.attempt(ctx, sess, rephrased, lastCode, retryCount+1, failure.Error())
}

// gatewayRephraser adapts llmgateway.Gateway to altflow.Rephraser so
// altflow never imports a concrete LLM client.
type gatewayRephraser struct {
	gw llmgateway.Gateway
}

func (r gatewayRephraser) Rephrase(ctx context.Context, question, failedCode, errMsg, availableSchema string) (string, error) {
	if r.gw == nil {
		return "", fmt.Errorf("engine: no gateway configured for rephrasing")
	}
	system := "Restate the user's question in plain language using only the columns named in the schema below. Reply with the question alone, no code."
	user := fmt.Sprintf("Original question: %s\nFailed code:\n%s\nError: %s\nAvailable schema: %s", question, failedCode, errMsg, availableSchema)
	return r.gw.GenerateCode(ctx, system, user)
}

func (e *Engine) logFailure(question string, err error, retryCount int, code string) {
	if e.Logger == nil {
		return
	}
	e.Logger.Error("query failed", corelog.QueryFields(question, string(altflow.Classify(err)), retryCount, code)...)
}

func datasetsToMap(datasets []*dataset.Dataset) map[string]any {
	out := make(map[string]any, len(datasets))
	for _, d := range datasets {
		out[d.Name] = d.Rows
	}
	return out
}

func schemaSummary(datasets []*dataset.Dataset) string {
	var names []string
	for _, d := range datasets {
		names = append(names, d.Name)
	}
	return joinLines(names)
}

func joinLines(items []string) string {
	out := ""
	for i, item := range items {
		if i > 0 {
			out += "\n- "
		}
		out += item
	}
	return out
}
