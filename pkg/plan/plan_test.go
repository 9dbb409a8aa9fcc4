package plan

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/japaniel/dailywords/pkg/db"
	"github.com/japaniel/dailywords/pkg/deck"
	"github.com/japaniel/dailywords/pkg/wordlist"
	_ "github.com/mattn/go-sqlite3"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	conn.SetMaxOpenConns(1)
	if err := db.InitDB(conn); err != nil {
		t.Fatalf("failed to init db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func testBuilder(t *testing.T, words int) *deck.Builder {
	t.Helper()
	var sb strings.Builder
	for i := 1; i <= words; i++ {
		fmt.Fprintf(&sb, "%d,word%d,词%d\n", i, i, i)
	}
	parse, err := wordlist.Parser(wordlist.FormatIELTS)
	if err != nil {
		t.Fatal(err)
	}
	return deck.NewBuilder(wordlist.SplitLines(sb.String()), parse)
}

func TestDates(t *testing.T) {
	got, err := Dates("2024-02-27", 4)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"2024-02-27", "2024-02-28", "2024-02-29", "2024-03-01"}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Fatalf("got %v want %v", got, want)
	}
	if _, err := Dates("tomorrow", 2); err == nil {
		t.Fatal("expected error for bad start date")
	}
	if _, err := Dates("2024-01-01", -1); err == nil {
		t.Fatal("expected error for negative days")
	}
}

func TestPlanPersistsDecksInOrder(t *testing.T) {
	conn := setupDB(t)
	listID, err := db.CreateOrGetWordList(conn, "test", "ielts", "mem://words")
	if err != nil {
		t.Fatal(err)
	}
	b := testBuilder(t, 30)
	p := NewPlanner(conn, b, listID, 5)
	p.BatchSize = 3

	var mu sync.Mutex
	var progress []int
	p.OnProgress = func(cur, total int) {
		mu.Lock()
		progress = append(progress, cur)
		mu.Unlock()
		if total != 10 {
			t.Errorf("expected total 10, got %d", total)
		}
	}

	dates, _ := Dates("2024-01-01", 10)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	n, err := p.Plan(ctx, dates)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if n != 10 {
		t.Fatalf("expected 10 decks written, got %d", n)
	}

	for _, date := range dates {
		sel, err := db.GetSelection(conn, listID, date, 5)
		if err != nil {
			t.Fatalf("get %s: %v", date, err)
		}
		want := b.Build(date, 5)
		var cards []deck.Card
		if err := json.Unmarshal(sel.Words, &cards); err != nil {
			t.Fatalf("decode %s: %v", date, err)
		}
		if sel.Seed != want.Seed || len(cards) != 5 {
			t.Fatalf("%s: seed %d cards %d", date, sel.Seed, len(cards))
		}
		for i := range cards {
			if cards[i] != want.Cards[i] {
				t.Fatalf("%s card %d: got %+v want %+v", date, i, cards[i], want.Cards[i])
			}
		}
	}

	// One row per date.
	all, err := db.ListSelections(conn, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 10 {
		t.Fatalf("expected 10 rows, got %d", len(all))
	}

	mu.Lock()
	defer mu.Unlock()
	if len(progress) == 0 || progress[len(progress)-1] != 10 {
		t.Fatalf("expected final progress 10, got %v", progress)
	}
}

func TestPlanResumeSkipsPlannedDates(t *testing.T) {
	conn := setupDB(t)
	listID, err := db.CreateOrGetWordList(conn, "test", "ielts", "mem://resume")
	if err != nil {
		t.Fatal(err)
	}
	p := NewPlanner(conn, testBuilder(t, 12), listID, 3)

	first, _ := Dates("2024-05-01", 3)
	if n, err := p.Plan(context.Background(), first); err != nil || n != 3 {
		t.Fatalf("first run: n=%d err=%v", n, err)
	}

	week, _ := Dates("2024-05-01", 7)
	n, err := p.Plan(context.Background(), week)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if n != 4 {
		t.Fatalf("expected 4 new decks, got %d", n)
	}

	n, err = p.Plan(context.Background(), week)
	if err != nil || n != 0 {
		t.Fatalf("third run should be a no-op: n=%d err=%v", n, err)
	}
}

// failingPool always returns an error on Submit to simulate producer error.
type failingPool struct{}

func (f *failingPool) Start(ctx context.Context) {}
func (f *failingPool) Submit(job Job) error      { return errors.New("submit failed") }
func (f *failingPool) SubmitCtx(ctx context.Context, job Job) error {
	return errors.New("submit failed")
}
func (f *failingPool) Close() {}

func TestPlanReturnsSubmitError(t *testing.T) {
	conn := setupDB(t)
	listID, err := db.CreateOrGetWordList(conn, "test", "ielts", "mem://fail")
	if err != nil {
		t.Fatal(err)
	}
	p := NewPlanner(conn, testBuilder(t, 5), listID, 2)
	p.PoolFactory = func(workers, queue int) WorkerPoolInterface { return &failingPool{} }

	dates, _ := Dates("2024-01-01", 5)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	n, err := p.Plan(ctx, dates)
	if err == nil || !strings.Contains(err.Error(), "submit failed") {
		t.Fatalf("expected submit error, got %v", err)
	}
	if n != 0 {
		t.Fatalf("expected nothing written, got %d", n)
	}
}

func TestPlanCanceledContext(t *testing.T) {
	conn := setupDB(t)
	listID, err := db.CreateOrGetWordList(conn, "test", "ielts", "mem://cancel")
	if err != nil {
		t.Fatal(err)
	}
	p := NewPlanner(conn, testBuilder(t, 5), listID, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	dates, _ := Dates("2024-01-01", 20)
	if _, err := p.Plan(ctx, dates); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
