package plan

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

func openTestTable(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	conn.SetMaxOpenConns(1)
	if _, err := conn.Exec("CREATE TABLE test (id INTEGER PRIMARY KEY, val TEXT NOT NULL)"); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func insert(val string) WriteFunc {
	return func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "INSERT INTO test (val) VALUES (?)", val)
		return err
	}
}

func countRows(t *testing.T, conn *sql.DB) int {
	t.Helper()
	var n int
	if err := conn.QueryRow("SELECT COUNT(*) FROM test").Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func closeWithTimeout(t *testing.T, bw *BatchWriter) error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- bw.Close() }()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for batch writer to close")
		return nil
	}
}

func TestBatchWriterTransactions(t *testing.T) {
	conn := openTestTable(t)
	bw := NewBatchWriter(conn, 2, 0)

	var commits []int
	var mu sync.Mutex
	bw.OnCommit = func(n int) {
		mu.Lock()
		commits = append(commits, n)
		mu.Unlock()
	}

	for _, v := range []string{"A", "B", "C"} {
		if err := bw.Submit(insert(v)); err != nil {
			t.Fatalf("submit %s: %v", v, err)
		}
	}
	if err := closeWithTimeout(t, bw); err != nil {
		t.Fatalf("close: %v", err)
	}

	if got := countRows(t, conn); got != 3 {
		t.Fatalf("expected 3 rows, got %d", got)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(commits) != 2 || commits[0] != 2 || commits[1] != 1 {
		t.Fatalf("expected batches [2 1], got %v", commits)
	}
}

func TestBatchWriterRollsBackFailedBatch(t *testing.T) {
	conn := openTestTable(t)
	bw := NewBatchWriter(conn, 2, 0)

	var failures int32
	bw.OnError = func(error) { atomic.AddInt32(&failures, 1) }

	boom := errors.New("boom")
	_ = bw.Submit(insert("kept-back"))
	_ = bw.Submit(func(ctx context.Context, tx *sql.Tx) error { return boom })
	_ = bw.Submit(insert("D"))

	err := closeWithTimeout(t, bw)
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom from Close, got %v", err)
	}
	if got := atomic.LoadInt32(&failures); got != 1 {
		t.Fatalf("expected 1 failed batch, got %d", got)
	}
	// The first batch rolled back as a whole; the second committed.
	if got := countRows(t, conn); got != 1 {
		t.Fatalf("expected 1 row, got %d", got)
	}
}

func TestBatchWriterFlushInterval(t *testing.T) {
	conn := openTestTable(t)
	bw := NewBatchWriter(conn, 100, 10*time.Millisecond)

	committed := make(chan int, 1)
	bw.OnCommit = func(n int) { committed <- n }

	if err := bw.Submit(insert("A")); err != nil {
		t.Fatalf("submit: %v", err)
	}
	select {
	case n := <-committed:
		if n != 1 {
			t.Fatalf("expected batch of 1, got %d", n)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("ticker never flushed the pending write")
	}
	if err := closeWithTimeout(t, bw); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestBatchWriterSubmitAfterClose(t *testing.T) {
	bw := NewBatchWriter(nil, 4, 0)
	if err := closeWithTimeout(t, bw); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := bw.Submit(func(context.Context, *sql.Tx) error { return nil }); !errors.Is(err, ErrBatchWriterClosed) {
		t.Fatalf("expected ErrBatchWriterClosed, got %v", err)
	}
	if err := bw.Close(); !errors.Is(err, ErrBatchWriterClosed) {
		t.Fatalf("expected second Close to report closed, got %v", err)
	}
}

func TestBatchWriterConcurrentSubmit(t *testing.T) {
	bw := NewBatchWriter(nil, 7, time.Millisecond)
	var ran int64
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				_ = bw.Submit(func(context.Context, *sql.Tx) error {
					atomic.AddInt64(&ran, 1)
					return nil
				})
			}
		}()
	}
	wg.Wait()
	if err := closeWithTimeout(t, bw); err != nil {
		t.Fatalf("close: %v", err)
	}
	if got := atomic.LoadInt64(&ran); got != 400 {
		t.Fatalf("expected 400 writes, got %d", got)
	}
}
