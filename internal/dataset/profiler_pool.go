package dataset

import (
	"context"
	"fmt"
	"sync"
)

// TaskStatus mirrors the teacher's coordinator/worker task registry
// (internal/agent, internal/context/shared_context.go), generalized
// from "LLM worker analyzing one table" to "goroutine profiling one
// column". The LLM-driven ReAct exploration the teacher used to decide
// what to analyze is gone: a column profile is a pure function of its
// values, so there is nothing left for an agent to decide.
type TaskStatus int

const (
	TaskRegistered TaskStatus = iota
	TaskRunning
	TaskCompleted
	TaskFailed
)

func (s TaskStatus) String() string {
	switch s {
	case TaskRegistered:
		return "registered"
	case TaskRunning:
		return "running"
	case TaskCompleted:
		return "completed"
	case TaskFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// TaskInfo tracks one column's profiling task.
type TaskInfo struct {
	Column string
	Status TaskStatus
	Err    error
}

// ProfilerPool profiles every column of a table concurrently, one
// goroutine per column, bounded by Workers. It replaces the teacher's
// CoordinatorAgent/WorkerAgent pair — which discovered tables and
// dispatched a langchaingo ReAct agent per table — with a fixed,
// deterministic worker count, since there is no discovery step: the
// caller already knows the column list from the connector.
type ProfilerPool struct {
	Workers int

	mu    sync.Mutex
	tasks map[string]*TaskInfo
}

// NewProfilerPool returns a pool bounded to workers goroutines,
// defaulting to 4 when workers <= 0.
func NewProfilerPool(workers int) *ProfilerPool {
	if workers <= 0 {
		workers = 4
	}
	return &ProfilerPool{Workers: workers, tasks: make(map[string]*TaskInfo)}
}

// ProfileColumns concurrently infers every named column's Column
// metadata from the provided rows, returning a name-keyed map once
// every column is done or ctx is cancelled.
func (p *ProfilerPool) ProfileColumns(ctx context.Context, columnOrder []string, rows []map[string]any) (map[string]*Column, error) {
	for _, name := range columnOrder {
		p.registerTask(name)
	}

	type result struct {
		name string
		col  *Column
		err  error
	}

	jobs := make(chan string)
	results := make(chan result)

	var wg sync.WaitGroup
	for i := 0; i < p.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range jobs {
				select {
				case <-ctx.Done():
					results <- result{name: name, err: ctx.Err()}
					continue
				default:
				}
				p.setStatus(name, TaskRunning, nil)
				col, err := p.profileOne(name, rows)
				if err != nil {
					p.setStatus(name, TaskFailed, err)
				} else {
					p.setStatus(name, TaskCompleted, nil)
				}
				results <- result{name: name, col: col, err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, name := range columnOrder {
			select {
			case jobs <- name:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	out := make(map[string]*Column, len(columnOrder))
	var firstErr error
	for r := range results {
		if r.err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("profiling column %q: %w", r.name, r.err)
			}
			continue
		}
		out[r.name] = r.col
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

func (p *ProfilerPool) profileOne(name string, rows []map[string]any) (*Column, error) {
	values := make([]any, len(rows))
	for i, row := range rows {
		values[i] = row[name]
	}
	return InferColumn(name, values), nil
}

func (p *ProfilerPool) registerTask(column string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tasks[column] = &TaskInfo{Column: column, Status: TaskRegistered}
}

func (p *ProfilerPool) setStatus(column string, status TaskStatus, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if t, ok := p.tasks[column]; ok {
		t.Status = status
		t.Err = err
	}
}

// Snapshot returns a copy of every task's current status.
func (p *ProfilerPool) Snapshot() []TaskInfo {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]TaskInfo, 0, len(p.tasks))
	for _, t := range p.tasks {
		out = append(out, *t)
	}
	return out
}
