// Package batch provides a bounded-concurrency runner for driving many
// independent logos.Query cursors against one frozen logos.Engine. This
// exploits the one concurrency allowance the engine design makes: queries
// are synchronous and single-threaded individually, but concurrent queries
// against a rule base that is not being Loaded into need no internal
// locking, since each query owns its private bindings, goal stack, and
// choice-point stack.
package batch

import (
	"context"
	"fmt"
	"sync"

	"github.com/gitrdm/logos/pkg/logos"
)

// ErrPoolShutdown is returned by Submit once Shutdown has been called.
var ErrPoolShutdown = fmt.Errorf("batch: pool has been shut down")

// ErrLoadInFlight is the Err of a QueryResult whose query was about to
// start after the Engine's rule base changed (its Generation moved) since
// the Runner was created; the query is not run.
var ErrLoadInFlight = fmt.Errorf("batch: engine rule base changed since the runner was created")

// QueryResult is one query_text's outcome: every Result event emitted
// before Done, or the error that stopped it short (a parse error from
// Engine.NewQuery, or a ResourceError/ProtocolError from polling).
type QueryResult struct {
	QueryText string
	Results   []logos.Result
	Err       error
}

// task is the unit of work the pool's goroutines pull from taskChan.
type task struct {
	queryText string
	out       chan<- QueryResult
}

// Runner is a bounded pool of worker goroutines, each pulling query text
// off a channel, opening a cursor against a shared frozen Engine, and
// draining it to Done. Grounded on the teacher's StaticWorkerPool shape
// (fixed worker count, buffered task channel, WaitGroup drain on
// Shutdown); the scaling monitor, rate limiter, backpressure controller,
// and deadlock detector the teacher's pool also offers have no role here,
// since a query either runs to Done/a fatal error or it doesn't - there is
// no steady-state load to shed.
type Runner struct {
	engine     *logos.Engine
	generation uint64

	taskChan     chan task
	shutdownChan chan struct{}
	wg           sync.WaitGroup
	once         sync.Once
}

// NewRunner starts workers worker goroutines bound to engine's current
// rule base. Engine must not be Load-ed into again while the Runner is
// live; Submit and Run detect a generation change and fail closed rather
// than run a query against a rule base that moved out from under it.
func NewRunner(engine *logos.Engine, workers int) *Runner {
	if workers <= 0 {
		workers = 1
	}
	r := &Runner{
		engine:       engine,
		generation:   engine.Generation(),
		taskChan:     make(chan task, workers*4),
		shutdownChan: make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		r.wg.Add(1)
		go r.worker()
	}
	return r
}

func (r *Runner) worker() {
	defer r.wg.Done()
	for {
		select {
		case t, ok := <-r.taskChan:
			if !ok {
				return
			}
			t.out <- r.runOne(t.queryText)
		case <-r.shutdownChan:
			return
		}
	}
}

func (r *Runner) runOne(queryText string) QueryResult {
	if r.engine.Generation() != r.generation {
		return QueryResult{QueryText: queryText, Err: ErrLoadInFlight}
	}
	q, err := r.engine.NewQuery(queryText)
	if err != nil {
		return QueryResult{QueryText: queryText, Err: err}
	}
	var out QueryResult
	out.QueryText = queryText
	for {
		ev, err := q.Poll()
		if err != nil {
			out.Err = err
			return out
		}
		switch e := ev.(type) {
		case logos.Result:
			out.Results = append(out.Results, e)
		case logos.Done:
			return out
		case logos.ExternalCall:
			// A batch query has no host bridge of its own; there is
			// nothing to answer an ExternalCall with, so the query is
			// reported as needing one and stopped short rather than
			// hung forever waiting for a supply that will never come.
			out.Err = fmt.Errorf("batch: query %q issued an external call with no host bridge attached", queryText)
			return out
		case logos.MakeExternal:
			// Fire-and-forget: nothing to do, keep draining.
		}
	}
}

// Submit queues queryText for execution and returns a channel that
// receives exactly one QueryResult. It blocks if every worker is busy and
// the task buffer is full.
func (r *Runner) Submit(ctx context.Context, queryText string) (<-chan QueryResult, error) {
	select {
	case <-r.shutdownChan:
		return nil, ErrPoolShutdown
	default:
	}

	out := make(chan QueryResult, 1)
	select {
	case r.taskChan <- task{queryText: queryText, out: out}:
		return out, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-r.shutdownChan:
		return nil, ErrPoolShutdown
	}
}

// Shutdown stops accepting new work and waits for in-flight queries to
// finish draining.
func (r *Runner) Shutdown() {
	r.once.Do(func() {
		close(r.shutdownChan)
		close(r.taskChan)
		r.wg.Wait()
	})
}

// Run submits every query in queryTexts and blocks until all have
// completed, preserving input order in the returned slice. It is the
// common case the Submit/Shutdown pair exists to support.
func Run(ctx context.Context, engine *logos.Engine, queryTexts []string, workers int) ([]QueryResult, error) {
	r := NewRunner(engine, workers)
	defer r.Shutdown()

	outs := make([]<-chan QueryResult, len(queryTexts))
	for i, qt := range queryTexts {
		ch, err := r.Submit(ctx, qt)
		if err != nil {
			return nil, err
		}
		outs[i] = ch
	}

	results := make([]QueryResult, len(queryTexts))
	for i, ch := range outs {
		select {
		case res := <-ch:
			results[i] = res
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return results, nil
}
