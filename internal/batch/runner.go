package batch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bookloader/bookloader/internal/models"
)

// Looker resolves one identifier into a record
type Looker interface {
	Lookup(ctx context.Context, isbn string) (*models.Record, error)
}

// Result is the outcome of one identifier in a batch
type Result struct {
	ISBN   string
	Record *models.Record
	Err    error
}

// Summary counts the outcomes of a batch
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
}

// Run looks up every identifier with at most concurrency lookups in flight.
// Results keep the input order.
func Run(ctx context.Context, looker Looker, ids []string, concurrency int) []Result {
	if concurrency < 1 {
		concurrency = 1
	}

	slog.Info("Processing identifiers", "count", len(ids), "concurrency", concurrency)

	results := make([]Result, len(ids))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, concurrency)

	for i, id := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			semaphore <- struct{}{}        // Acquire
			defer func() { <-semaphore }() // Release

			if err := ctx.Err(); err != nil {
				results[i] = Result{ISBN: id, Err: err}
				return
			}

			slog.Debug("Processing item", "isbn", id, "progress", fmt.Sprintf("%d/%d", i+1, len(ids)))

			record, err := looker.Lookup(ctx, id)
			if err != nil {
				slog.Warn("Lookup failed", "isbn", id, "error", err)
			}
			results[i] = Result{ISBN: id, Record: record, Err: err}
		}()
	}

	wg.Wait()
	return results
}

// Summarize counts successes and failures
func Summarize(results []Result) Summary {
	summary := Summary{Total: len(results)}
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
			continue
		}
		summary.Succeeded++
	}
	return summary
}

// Records returns the records of the successful results in order
func Records(results []Result) []*models.Record {
	records := make([]*models.Record, 0, len(results))
	for _, r := range results {
		if r.Err == nil && r.Record != nil {
			records = append(records, r.Record)
		}
	}
	return records
}
