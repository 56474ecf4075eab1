package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bookloader/bookloader/internal/models"
	"github.com/bookloader/bookloader/internal/sources"
)

// AdapterError is a source that produced no usable data
type AdapterError struct {
	Source models.SourceID
	Err    error
}

// Error implements the error interface
func (e *AdapterError) Error() string {
	return fmt.Sprintf("source %s: %v", e.Source, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *AdapterError) Unwrap() error {
	return e.Err
}

// Outcome is the typed result of one adapter call. Exactly one of Partial
// and Err is set.
type Outcome struct {
	Source   models.SourceID
	Partial  models.Partial
	Err      *AdapterError
	Duration time.Duration
}

// Orchestrator fans a lookup out to every adapter and joins the results
type Orchestrator struct {
	adapters []sources.Adapter
	fields   []models.Field
	timeout  time.Duration
}

// New returns an Orchestrator collecting fields from adapters. A zero
// timeout waits for the slowest adapter.
func New(adapters []sources.Adapter, fields []models.Field, timeout time.Duration) *Orchestrator {
	return &Orchestrator{
		adapters: adapters,
		fields:   fields,
		timeout:  timeout,
	}
}

// Collect runs every adapter concurrently and waits for all of them.
// Adapter failures are recorded in the result and never returned.
func (o *Orchestrator) Collect(ctx context.Context, isbn string) *Result {
	outcomes := make([]Outcome, len(o.adapters))

	g, gctx := errgroup.WithContext(ctx)
	for i, adapter := range o.adapters {
		g.Go(func() error {
			outcomes[i] = o.run(gctx, adapter, isbn)
			return nil
		})
	}
	_ = g.Wait()

	result := &Result{ISBN: isbn, Outcomes: outcomes, fields: o.fields}

	slog.Debug("Collected source results",
		"isbn", isbn,
		"sources", len(outcomes),
		"failed", len(result.Failures()))

	return result
}

func (o *Orchestrator) run(ctx context.Context, adapter sources.Adapter, isbn string) (out Outcome) {
	out.Source = adapter.ID()
	start := time.Now()

	defer func() {
		if p := recover(); p != nil {
			out.Partial = nil
			out.Err = &AdapterError{Source: out.Source, Err: fmt.Errorf("panic: %v", p)}
		}
		out.Duration = time.Since(start)
		if out.Err != nil {
			slog.Info("Source returned no data",
				"failure", "adapter",
				"source", out.Source,
				"isbn", isbn,
				"duration", out.Duration,
				"error", out.Err.Err)
		}
	}()

	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	partial, err := fetchWithContext(ctx, adapter, isbn)
	if err != nil {
		out.Err = &AdapterError{Source: out.Source, Err: err}
		return out
	}
	out.Partial = o.requested(partial)
	return out
}

// fetchWithContext stops waiting for an adapter that ignores cancellation
func fetchWithContext(ctx context.Context, adapter sources.Adapter, isbn string) (models.Partial, error) {
	type reply struct {
		partial models.Partial
		err     error
		panic   any
	}
	done := make(chan reply, 1)

	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- reply{panic: p}
			}
		}()
		partial, err := adapter.Fetch(ctx, isbn)
		done <- reply{partial: partial, err: err}
	}()

	select {
	case r := <-done:
		if r.panic != nil {
			panic(r.panic)
		}
		if r.err == nil && len(r.partial) == 0 {
			return nil, sources.ErrNotFound
		}
		return r.partial, r.err
	case <-ctx.Done():
		return nil, fmt.Errorf("gave up waiting: %w", ctx.Err())
	}
}

func (o *Orchestrator) requested(p models.Partial) models.Partial {
	out := make(models.Partial, len(o.fields))
	for _, f := range o.fields {
		if values, ok := p[f]; ok {
			out[f] = values
		}
	}
	return out
}
