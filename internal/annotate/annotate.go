// Package annotate defines the annotation sink contract and a bounded,
// order-preserving batch runner over it.
package annotate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// Context is the unit context handed to an Annotator with each piece.
type Context struct {
	EnclosingName string
	UnitName      string
	Language      string
}

// Annotator produces an explanation for one piece.
type Annotator interface {
	Annotate(ctx context.Context, c Context, piece string) (string, error)
}

// AnnotatorFunc adapts a function to the Annotator interface.
type AnnotatorFunc func(ctx context.Context, c Context, piece string) (string, error)

// Annotate calls f.
func (f AnnotatorFunc) Annotate(ctx context.Context, c Context, piece string) (string, error) {
	return f(ctx, c, piece)
}

// Error records an annotation failure for the piece at Index.
type Error struct {
	Index int
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("failed to annotate piece %d; %v", e.Index, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// FailureText is the explanation recorded in place of a failed annotation.
func FailureText(err error) string {
	return fmt.Sprintf("[explanation failed: %v]", err)
}

// Target is one piece to annotate.
type Target struct {
	Context Context
	Text    string
}

// Result is the outcome for the Target at the same index.
type Result struct {
	Explanation string
	Failed      bool
	Err         error
}

// Runner annotates batches of pieces with bounded parallelism.
type Runner struct {
	annotator Annotator
	workers   int
	timeout   time.Duration
	logger    *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithWorkers sets the number of concurrent annotation calls. Values
// below 1 mean 1.
func WithWorkers(n int) RunnerOption {
	return func(r *Runner) {
		r.workers = n
	}
}

// WithTimeout bounds each annotation call. Zero disables the bound.
func WithTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.timeout = d
	}
}

// WithLogger sets the runner logger.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a Runner over annotator.
func NewRunner(annotator Annotator, opts ...RunnerOption) *Runner {
	r := &Runner{
		annotator: annotator,
		workers:   1,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.workers < 1 {
		r.workers = 1
	}
	return r
}

// Workers returns the concurrency bound.
func (r *Runner) Workers() int {
	return r.workers
}

// Run annotates every target and returns results in input order. A failed
// piece gets FailureText as its explanation; the batch never aborts.
func (r *Runner) Run(ctx context.Context, targets []Target) []Result {
	results := make([]Result, len(targets))
	if len(targets) == 0 {
		return results
	}

	var g errgroup.Group
	g.SetLimit(r.workers)

	for i, t := range targets {
		i, t := i, t
		g.Go(func() error {
			results[i] = r.annotateOne(ctx, i, t)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (r *Runner) annotateOne(ctx context.Context, index int, t Target) Result {
	if err := ctx.Err(); err != nil {
		return r.failure(index, t, err)
	}

	callCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := r.annotator.Annotate(callCtx, t.Context, t.Text)
	if err != nil {
		return r.failure(index, t, err)
	}

	r.logger.Debug("annotated piece",
		"index", index,
		"unit", t.Context.UnitName,
		"duration", time.Since(start))

	return Result{Explanation: text}
}

func (r *Runner) failure(index int, t Target, err error) Result {
	r.logger.Warn("annotation failed",
		"index", index,
		"enclosing", t.Context.EnclosingName,
		"unit", t.Context.UnitName,
		"error", err)

	return Result{
		Explanation: FailureText(err),
		Failed:      true,
		Err:         &Error{Index: index, Err: err},
	}
}
