package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"PriceSim/internal/domain/models"
	domrepo "PriceSim/internal/domain/repository"
	domsvc "PriceSim/internal/domain/service"
)

var (
	// ErrEmptyBatch is returned when a batch has no rows.
	ErrEmptyBatch = errors.New("recompute: no rows")
	// ErrBatchTooLarge is returned when a batch exceeds the row limit.
	ErrBatchTooLarge = errors.New("recompute: too many rows")
)

// Recomputer projects next week's price for every row of a table using one
// shared template. Rows are independent; a failing row never aborts the batch.
type Recomputer struct {
	proj    domsvc.Projector
	metrics domrepo.Metrics
	workers int
	maxRows int
}

// NewRecomputer creates a Recomputer. workers <= 1 processes rows sequentially;
// maxRows <= 0 disables the row limit.
func NewRecomputer(proj domsvc.Projector, metrics domrepo.Metrics, workers, maxRows int) *Recomputer {
	if workers < 1 {
		workers = 1
	}
	return &Recomputer{proj: proj, metrics: metrics, workers: workers, maxRows: maxRows}
}

// MaxRows returns the row limit; 0 means unlimited.
func (r *Recomputer) MaxRows() int { return r.maxRows }

// Recompute returns one result per row, in input order.
func (r *Recomputer) Recompute(ctx context.Context, tpl models.Template, rows []models.BatchRow) (*models.BatchResult, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyBatch
	}
	if r.maxRows > 0 && len(rows) > r.maxRows {
		return nil, fmt.Errorf("%w: %d rows exceeds limit %d", ErrBatchTooLarge, len(rows), r.maxRows)
	}

	start := time.Now()
	results := make([]models.RowResult, len(rows))

	if r.workers == 1 || len(rows) == 1 {
		for i := range rows {
			results[i] = r.row(ctx, tpl, i, rows[i])
		}
	} else {
		idx := make(chan int)
		var wg sync.WaitGroup
		for w := 0; w < r.workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range idx {
					results[i] = r.row(ctx, tpl, i, rows[i])
				}
			}()
		}
		for i := range rows {
			idx <- i
		}
		close(idx)
		wg.Wait()
	}

	res := &models.BatchResult{Rows: rows, Results: results, Summary: BuildSummary(tpl)}
	for _, rr := range results {
		if !rr.OK() {
			res.Failed++
		}
	}
	r.metrics.RecordBatchRows("ok", len(rows)-res.Failed)
	r.metrics.RecordBatchRows("failed", res.Failed)
	r.metrics.RecordLatency("recompute", time.Since(start).Seconds())
	return res, nil
}

func (r *Recomputer) row(ctx context.Context, tpl models.Template, i int, row models.BatchRow) models.RowResult {
	out := models.RowResult{Index: i}
	if err := ctx.Err(); err != nil {
		out.Err = err.Error()
		return out
	}
	if row.Invalid != "" {
		out.Err = row.Invalid
		return out
	}

	series, err := r.proj.Project(tpl.Params(row.CurrentPrice, 1, row.Signals))
	if err != nil {
		r.metrics.RecordError("batch_projection")
		out.Err = err.Error()
		return out
	}
	next := series.Final()
	if math.IsNaN(next) || math.IsInf(next, 0) {
		out.Err = "projected price is not finite"
		return out
	}
	r.metrics.RecordProjection("batch")

	out.Raw = next
	out.NextPrice = RoundHalfEven(next)
	out.Delta = RoundHalfEven(next - row.CurrentPrice)
	return out
}
