package domain

import (
	"context"
	"errors"
	"time"
)

// BatchOptions bounds a resumable batch operation.
type BatchOptions struct {
	Cursor    int           // Zero-based position to resume from
	ChunkSize int           // Items processed between flushes (<= 0 = default)
	Budget    time.Duration // Wall-clock budget (<= 0 = unbounded)
}

// ItemError records a per-item failure in a batch.
type ItemError struct {
	Err error
	ID  string
	Row int // Sheet row number (0 = not row-addressed)
}

func (e ItemError) Error() string {
	if e.ID == "" {
		return e.Err.Error()
	}
	return e.ID + ": " + e.Err.Error()
}

func (e ItemError) Unwrap() error { return e.Err }

// BatchReport summarizes one invocation of a batch operation.
// When Complete is false the caller resumes with NextCursor.
type BatchReport struct {
	Errors     []ItemError
	NextCursor int
	Processed  int
	Changed    int
	Complete   bool
}

// BatchStep processes position i. A returned error is recorded and
// processing continues. changed reports whether a write was queued.
type BatchStep func(ctx context.Context, i int) (changed bool, err error)

// BatchFlush persists the writes queued since the previous flush.
type BatchFlush func(ctx context.Context) error

// RunBatch walks positions [opts.Cursor, total) calling step, flushing every
// ChunkSize items. It stops early when the budget elapses or ctx is done and
// reports where to resume. A flush failure aborts the run because the queued
// writes are lost.
func RunBatch(ctx context.Context, clock Clock, total int, opts BatchOptions, step BatchStep, flush BatchFlush) (BatchReport, error) {
	chunk := opts.ChunkSize
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}
	start := clock.Now()
	report := BatchReport{NextCursor: max(opts.Cursor, 0)}

	pending := 0
	doFlush := func() error {
		if pending == 0 || flush == nil {
			pending = 0
			return nil
		}
		pending = 0
		return flush(ctx)
	}

	i := report.NextCursor
	for ; i < total; i++ {
		if ctx.Err() != nil || (opts.Budget > 0 && clock.Now().Sub(start) >= opts.Budget) {
			break
		}
		changed, err := step(ctx, i)
		report.Processed++
		if err != nil {
			var ie ItemError
			if !errors.As(err, &ie) {
				ie = ItemError{Err: err}
			}
			report.Errors = append(report.Errors, ie)
		}
		if changed {
			report.Changed++
			pending++
		}
		if report.Processed%chunk == 0 {
			if err := doFlush(); err != nil {
				return report, err
			}
			report.NextCursor = i + 1
		}
	}
	if err := doFlush(); err != nil {
		return report, err
	}
	report.NextCursor = i
	report.Complete = i >= total
	return report, nil
}
