// Package config reads command line flags with environment fallbacks.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/japaniel/dailywords/pkg/deck"
	"github.com/japaniel/dailywords/pkg/prefs"
	"github.com/japaniel/dailywords/pkg/wordlist"
)

// Config holds everything cmd/dailywords needs to run.
type Config struct {
	Words    string // path or URL of the word list
	Format   string // ielts, hsk or jlpt; empty means detect from Words
	Encoding string // source text encoding, e.g. gbk
	DBPath   string
	Prefs    string
	Count    int
	Port     int

	UnsplashKey string

	// Mode flags.
	Date     string
	Copy     int // 1-based card number; 0 means off
	Serve    bool
	PlanDays int
	Mode     string // display mode override
}

// LoadEnv reads KEY=value pairs from .env files into the environment.
// Missing files are ignored and variables already set win.
func LoadEnv(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		_ = godotenv.Load(p)
	}
}

// ParseFlags parses args, falling back to environment variables for
// anything not given on the command line.
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("dailywords", flag.ContinueOnError)

	fs.StringVar(&cfg.Words, "words", "", "Word list file or URL (env DAILYWORDS_WORDS)")
	fs.StringVar(&cfg.Format, "format", "", "Word list format: ielts, hsk or jlpt (env DAILYWORDS_FORMAT)")
	fs.StringVar(&cfg.Encoding, "encoding", "", "Word list text encoding, e.g. gbk (env DAILYWORDS_ENCODING)")
	fs.StringVar(&cfg.DBPath, "db", "", "SQLite history database (env DAILYWORDS_DB)")
	fs.StringVar(&cfg.Prefs, "prefs", "", "Settings file (env DAILYWORDS_PREFS)")
	fs.IntVar(&cfg.Count, "count", 0, "Words per deck (env DAILYWORDS_COUNT)")
	fs.IntVar(&cfg.Port, "p", 0, "Server port (env PORT)")

	fs.StringVar(&cfg.Date, "date", "", "Deck date, default today")
	fs.IntVar(&cfg.Copy, "copy", 0, "Print the word on card N (1-based, as listed) and exit")
	fs.BoolVar(&cfg.Serve, "serve", false, "Run the HTTP API")
	fs.IntVar(&cfg.PlanDays, "plan", 0, "Record decks for N days starting at -date")
	fs.StringVar(&cfg.Mode, "mode", "", "Display mode: english, chinese or both")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if cfg.Words == "" && fs.NArg() > 0 {
		cfg.Words = fs.Arg(0)
	}

	if cfg.Words == "" {
		cfg.Words = os.Getenv("DAILYWORDS_WORDS")
	}
	if cfg.Words == "" {
		return Config{}, errors.New("word list required (use -words or DAILYWORDS_WORDS env)")
	}
	if cfg.Format == "" {
		cfg.Format = os.Getenv("DAILYWORDS_FORMAT")
	}
	if cfg.Format != "" {
		if _, err := wordlist.Parser(wordlist.Format(cfg.Format)); err != nil {
			return Config{}, err
		}
	}
	if cfg.Encoding == "" {
		cfg.Encoding = os.Getenv("DAILYWORDS_ENCODING")
	}
	if cfg.DBPath == "" {
		cfg.DBPath = os.Getenv("DAILYWORDS_DB")
		if cfg.DBPath == "" {
			cfg.DBPath = "dailywords.db"
		}
	}
	if cfg.Prefs == "" {
		cfg.Prefs = os.Getenv("DAILYWORDS_PREFS")
		if cfg.Prefs == "" {
			cfg.Prefs = "dailywords-settings.db"
		}
	}

	if cfg.Count == 0 {
		n, err := intEnv("DAILYWORDS_COUNT", deck.DefaultCount)
		if err != nil {
			return Config{}, err
		}
		cfg.Count = n
	}
	if cfg.Count < 0 {
		return Config{}, fmt.Errorf("count must be positive, got %d", cfg.Count)
	}
	if cfg.Port == 0 {
		n, err := intEnv("PORT", 8080)
		if err != nil {
			return Config{}, err
		}
		cfg.Port = n
	}
	switch prefs.DisplayMode(cfg.Mode) {
	case "", prefs.ShowWord, prefs.ShowGloss, prefs.ShowBoth:
	default:
		return Config{}, fmt.Errorf("unknown display mode %q", cfg.Mode)
	}
	if cfg.Copy < 0 {
		return Config{}, fmt.Errorf("copy takes a card number from 1, got %d", cfg.Copy)
	}
	if cfg.PlanDays < 0 {
		return Config{}, fmt.Errorf("plan days must not be negative, got %d", cfg.PlanDays)
	}

	cfg.UnsplashKey = os.Getenv("UNSPLASH_ACCESS_KEY")
	return cfg, nil
}

func intEnv(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable: %q", key, s)
	}
	return n, nil
}
