// Package plan precomputes decks for a range of dates and records them in the
// selection history, so a week or a term of study can be reviewed up front.
package plan

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/japaniel/dailywords/pkg/db"
	"github.com/japaniel/dailywords/pkg/deck"
)

// WorkerPoolInterface abstracts the worker pool so tests can inject failing implementations.
type WorkerPoolInterface interface {
	Start(ctx context.Context)
	Submit(Job) error
	// SubmitCtx attempts to enqueue a job but returns promptly if ctx is canceled.
	SubmitCtx(ctx context.Context, job Job) error
	Close()
}

// Planner draws decks concurrently and persists them in date order.
type Planner struct {
	DB         *sql.DB
	Builder    *deck.Builder
	WordListID int64
	Count      int
	BatchSize  int
	Workers    int

	// Logger is used for informational messages (e.g. resume status). nil means no logging.
	Logger *log.Logger
	// OnProgress is called with the number of decks handed to the writer and the total.
	OnProgress func(current, total int)
	// PoolFactory allows tests to inject custom worker pool implementations.
	PoolFactory func(workers, queue int) WorkerPoolInterface
}

// NewPlanner creates a Planner with default batching and concurrency.
func NewPlanner(conn *sql.DB, b *deck.Builder, wordListID int64, count int) *Planner {
	return &Planner{
		DB:         conn,
		Builder:    b,
		WordListID: wordListID,
		Count:      count,
		BatchSize:  20,
		Workers:    4,
	}
}

// planned is one computed deck waiting to be written.
type planned struct {
	index int
	sel   db.Selection
	err   error
}

// Dates returns days consecutive dates starting at from (YYYY-MM-DD).
func Dates(from string, days int) ([]string, error) {
	start, err := time.Parse(deck.DateLayout, from)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", from, err)
	}
	if days < 0 {
		return nil, fmt.Errorf("days must not be negative, got %d", days)
	}
	out := make([]string, days)
	for i := range out {
		out[i] = start.AddDate(0, 0, i).Format(deck.DateLayout)
	}
	return out, nil
}

// Plan records the deck for every date not already in the history and
// returns how many decks were written. Dates recorded by an earlier run are
// skipped, so an interrupted plan can simply be run again.
func (p *Planner) Plan(ctx context.Context, dates []string) (int, error) {
	done, err := db.PlannedDates(p.DB, p.WordListID, p.Count)
	if err != nil {
		return 0, fmt.Errorf("load planned dates: %w", err)
	}
	var todo []string
	for _, d := range dates {
		if !done[d] {
			todo = append(todo, d)
		}
	}
	if p.Logger != nil && len(todo) < len(dates) {
		p.Logger.Printf("Skipping %d already planned dates", len(dates)-len(todo))
	}
	if len(todo) == 0 {
		return 0, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workers := max(p.Workers, 1)
	var wp WorkerPoolInterface
	if p.PoolFactory != nil {
		wp = p.PoolFactory(workers, workers*2)
	} else {
		wp = NewWorkerPool(workers, workers*2)
	}
	results := make(chan planned, workers*2)

	var written int64
	bw := NewBatchWriter(p.DB, p.BatchSize, 100*time.Millisecond)
	bw.OnCommit = func(n int) { atomic.AddInt64(&written, int64(n)) }
	var bwErrOnce sync.Once
	bw.OnError = func(error) { bwErrOnce.Do(cancel) }

	consumerErr := make(chan error, 1)
	go func() {
		consumerErr <- p.consume(ctx, cancel, results, bw, len(todo))
	}()

	wp.Start(ctx)
	var submitErr error
Loop:
	for i, date := range todo {
		job := func(ctx context.Context) error {
			res := p.compute(i, date)
			select {
			case results <- res:
			case <-ctx.Done():
			}
			return res.err
		}
		if err := wp.SubmitCtx(ctx, job); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, ErrPoolClosed) {
				break Loop
			}
			submitErr = err
			cancel()
			break Loop
		}
	}

	// Workers are gone once Close returns, so nothing sends on results afterwards.
	wp.Close()
	close(results)

	firstErr := <-consumerErr
	if err := bw.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if submitErr != nil {
		firstErr = submitErr
	}
	if firstErr == nil && ctx.Err() != nil && int(atomic.LoadInt64(&written)) < len(todo) {
		firstErr = ctx.Err()
	}
	return int(atomic.LoadInt64(&written)), firstErr
}

// compute draws the deck for one date. Builder is safe for concurrent use.
func (p *Planner) compute(index int, date string) planned {
	d := p.Builder.Build(date, p.Count)
	words, err := json.Marshal(d.Cards)
	if err != nil {
		return planned{index: index, err: fmt.Errorf("encode deck %s: %w", date, err)}
	}
	return planned{index: index, sel: db.Selection{
		WordListID: p.WordListID,
		Date:       d.Date,
		Seed:       d.Seed,
		Requested:  d.Requested,
		WordCount:  len(d.Cards),
		Words:      words,
	}}
}

// consume reorders results by index and submits them to the writer so the
// history is written in date order. It drains results until the channel is
// closed even after a failure.
func (p *Planner) consume(ctx context.Context, cancel context.CancelFunc, results <-chan planned, bw *BatchWriter, total int) error {
	buffer := make(map[int]planned)
	next := 0
	var firstErr error

	for res := range results {
		if firstErr != nil {
			continue
		}
		if res.err != nil {
			firstErr = res.err
			cancel()
			continue
		}
		buffer[res.index] = res

		for {
			item, ok := buffer[next]
			if !ok {
				break
			}
			delete(buffer, next)

			sel := item.sel
			err := bw.Submit(func(ctx context.Context, tx *sql.Tx) error {
				_, err := db.SaveSelection(tx, sel)
				if err != nil {
					return fmt.Errorf("failed to save deck %s: %w", sel.Date, err)
				}
				return nil
			})
			if err != nil {
				firstErr = err
				cancel()
				break
			}
			next++
			if p.OnProgress != nil && (next%max(p.BatchSize, 1) == 0 || next == total) {
				p.OnProgress(next, total)
			}
		}
	}
	if firstErr == nil && next < total && ctx.Err() != nil {
		firstErr = ctx.Err()
	}
	return firstErr
}
