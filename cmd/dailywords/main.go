package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	_ "github.com/mattn/go-sqlite3"

	"github.com/japaniel/dailywords/pkg/config"
	"github.com/japaniel/dailywords/pkg/db"
	"github.com/japaniel/dailywords/pkg/deck"
	"github.com/japaniel/dailywords/pkg/plan"
	"github.com/japaniel/dailywords/pkg/prefs"
	"github.com/japaniel/dailywords/pkg/reading"
	"github.com/japaniel/dailywords/pkg/server"
	"github.com/japaniel/dailywords/pkg/wordlist"
)

func main() {
	config.LoadEnv()
	cfg, err := config.ParseFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Setup context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	conn, err := sql.Open("sqlite3", db.DSN(cfg.DBPath))
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer conn.Close()
	if err := db.InitDB(conn); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	store, err := prefs.Open(cfg.Prefs)
	if err != nil {
		log.Fatalf("Failed to open settings: %v", err)
	}
	defer store.Close()
	settings, err := store.Load()
	if err != nil {
		log.Printf("Warning: failed to read settings, using defaults: %v", err)
	}

	src := deck.Source{
		Location: cfg.Words,
		Format:   wordlist.Format(cfg.Format),
		Options:  wordlist.LoadOptions{Encoding: cfg.Encoding},
	}
	format := src.ResolvedFormat()
	if format == wordlist.FormatJLPT {
		analyzer, err := reading.NewAnalyzer()
		if err != nil {
			log.Printf("Warning: failed to create analyzer, readings will be empty: %v", err)
		} else {
			src.Analyzer = analyzer
		}
	}

	fmt.Printf("Loading %s word list from %s...\n", format, cfg.Words)
	builder, err := deck.Open(ctx, src)
	if err != nil {
		log.Fatalf("Failed to load word list: %v", err)
	}
	builder.Logger = log.Default()
	if builder.PoolSize() == 0 {
		log.Fatalf("No valid word data found in %s", cfg.Words)
	}
	fmt.Printf("Loaded %s words (%s lines skipped)\n",
		humanize.Comma(int64(builder.PoolSize())), humanize.Comma(int64(builder.Skipped())))

	listID, err := db.CreateOrGetWordList(conn, filepath.Base(cfg.Words), string(format), cfg.Words)
	if err != nil {
		log.Fatalf("Failed to persist word list: %v", err)
	}

	date := cfg.Date
	if date == "" {
		date = deck.Today()
	}

	switch {
	case cfg.Serve:
		serve(ctx, cfg, conn, store, builder, listID, format)
	case cfg.PlanDays > 0:
		planDays(ctx, cfg, conn, builder, listID, date)
	case cfg.Copy > 0:
		copyWord(builder, date, cfg)
	default:
		mode := settings.DisplayMode
		if cfg.Mode != "" {
			mode = prefs.DisplayMode(cfg.Mode)
		}
		printDeck(conn, builder, listID, date, cfg.Count, mode)
	}
}

func printDeck(conn *sql.DB, b *deck.Builder, listID int64, date string, count int, mode prefs.DisplayMode) {
	d := b.Build(date, count)
	fmt.Printf("Deck for %s (seed %d): %d of %d words\n", d.Date, d.Seed, len(d.Cards), d.Requested)
	fmt.Println("---------------------------------------------------")
	for _, c := range d.Cards {
		word, gloss := c.Face(mode)
		switch {
		case word != "" && gloss != "":
			fmt.Printf("%3d. %s  %s\n", c.Index+1, word, gloss)
		case word != "":
			fmt.Printf("%3d. %s\n", c.Index+1, word)
		default:
			fmt.Printf("%3d. %s\n", c.Index+1, gloss)
		}
	}

	words, err := json.Marshal(d.Cards)
	if err != nil {
		log.Fatalf("Failed to encode deck: %v", err)
	}
	id, err := db.SaveSelection(conn, db.Selection{
		WordListID: listID,
		Date:       d.Date,
		Seed:       d.Seed,
		Requested:  d.Requested,
		WordCount:  len(d.Cards),
		Words:      words,
	})
	if err != nil {
		log.Fatalf("Failed to record deck: %v", err)
	}
	fmt.Printf("Deck recorded with ID: %s\n", id)
}

// copyWord prints the word on card cfg.Copy, counted from 1 as printDeck lists
// them, so it can be piped to a clipboard tool.
func copyWord(b *deck.Builder, date string, cfg config.Config) {
	var session deck.Session
	session.Show(session.Begin(), b.Build(date, cfg.Count))
	card, err := session.Open(cfg.Copy - 1)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(card.Word)
}

func planDays(ctx context.Context, cfg config.Config, conn *sql.DB, b *deck.Builder, listID int64, from string) {
	from, ok := deck.NormalizeDate(from)
	if !ok {
		log.Fatalf("Invalid start date %q", from)
	}
	dates, err := plan.Dates(from, cfg.PlanDays)
	if err != nil {
		log.Fatalf("Invalid plan range: %v", err)
	}

	p := plan.NewPlanner(conn, b, listID, cfg.Count)
	p.Logger = log.Default()
	p.OnProgress = func(current, total int) {
		fmt.Printf("Planned %s/%s decks\n", humanize.Comma(int64(current)), humanize.Comma(int64(total)))
	}

	start := time.Now()
	n, err := p.Plan(ctx, dates)
	if err != nil {
		log.Fatalf("Planning failed: %v", err)
	}
	fmt.Printf("Planning complete. Recorded %s new decks in %v.\n", humanize.Comma(int64(n)), time.Since(start).Round(time.Millisecond))
}

func serve(ctx context.Context, cfg config.Config, conn *sql.DB, store *prefs.Store, b *deck.Builder, listID int64, format wordlist.Format) {
	srv := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Port),
		Handler: server.New(server.Config{
			DB:          conn,
			Builder:     b,
			WordListID:  listID,
			Format:      format,
			Count:       cfg.Count,
			Prefs:       store,
			UnsplashKey: cfg.UnsplashKey,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Printf("Serving on %s\n", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
		fmt.Println("Server stopped")
	}
}
