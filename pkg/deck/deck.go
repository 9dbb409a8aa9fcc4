// Package deck turns a word list and a date into the day's flashcards.
package deck

import (
	"log"
	"time"
	"unicode"

	"github.com/araddon/dateparse"

	"github.com/japaniel/dailywords/pkg/prefs"
	"github.com/japaniel/dailywords/pkg/selection"
	"github.com/japaniel/dailywords/pkg/wordlist"
)

// DefaultCount is how many words a deck holds unless asked otherwise.
const DefaultCount = 100

// DateLayout is the canonical date format decks are seeded with.
const DateLayout = "2006-01-02"

// Card is one selected word as shown to the learner.
type Card struct {
	Index int    `json:"index"`
	Word  string `json:"word"`
	Gloss string `json:"gloss"`
	Label string `json:"label,omitempty"`
}

// Face returns the word and gloss visible in the given display mode. Hidden
// sides are returned empty.
func (c Card) Face(mode prefs.DisplayMode) (word, gloss string) {
	switch mode {
	case prefs.ShowGloss:
		return "", c.Gloss
	case prefs.ShowBoth:
		return c.Word, c.Gloss
	default:
		return c.Word, ""
	}
}

// Deck is the result of one selection request.
type Deck struct {
	Date      string `json:"date"`
	Seed      uint32 `json:"seed"`
	Requested int    `json:"requested"`
	Cards     []Card `json:"cards"`
	// Short is set when the pool held fewer distinct words than requested.
	Short bool `json:"short,omitempty"`
}

// Builder draws decks from a fixed candidate pool. The pool is never
// modified, so one Builder may serve concurrent Build calls.
type Builder struct {
	pool    []wordlist.Record
	skipped int

	// Logger receives warnings about short decks. nil means no logging.
	Logger *log.Logger
}

// NewBuilder parses lines into the candidate pool.
func NewBuilder(lines []string, parse wordlist.ParseFunc[wordlist.Record]) *Builder {
	pool, skipped := wordlist.Pool(lines, parse)
	return &Builder{pool: pool, skipped: skipped}
}

// PoolSize reports the number of valid candidates.
func (b *Builder) PoolSize() int { return len(b.pool) }

// Skipped reports the number of non-blank lines that failed to parse.
func (b *Builder) Skipped() int { return b.skipped }

// Build selects the deck for date. The seed is derived from date exactly as
// given, so "2024-01-01" and "2024/1/1" draw different decks. A non-positive
// count selects nothing.
func (b *Builder) Build(date string, count int) Deck {
	seed := selection.DeriveSeed(date)
	picked := selection.Sample(b.pool, count, seed, wordlist.Record.Key)

	d := Deck{
		Date:      date,
		Seed:      seed,
		Requested: count,
		Cards:     make([]Card, len(picked)),
	}
	for i, rec := range picked {
		d.Cards[i] = Card{Index: i, Word: rec.Key(), Gloss: rec.Gloss(), Label: rec.Label()}
	}
	if len(picked) < count {
		d.Short = true
		if b.Logger != nil && len(picked) > 0 {
			b.Logger.Printf("Warning: only found %d valid words, fewer than the %d requested", len(picked), count)
		}
	}
	return d
}

// NormalizeDate rewrites a full calendar date such as "2024/1/1" or
// "Oct 7, 2024" into YYYY-MM-DD. Dates without a zone are read as UTC, so the
// result never depends on the host. Bare numbers ("2024", "20240101",
// Unix timestamps) and partial dates ("2024-01") are rejected: s is returned
// unchanged with ok set to false.
func NormalizeDate(s string) (string, bool) {
	if _, err := time.Parse(DateLayout, s); err == nil {
		return s, true
	}
	if !looksLikeCalendarDate(s) {
		return s, false
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return s, false
	}
	return t.Format(DateLayout), true
}

// looksLikeCalendarDate requires year, month and day to be spelled out: three
// separate digit runs, or two next to a month name.
func looksLikeCalendarDate(s string) bool {
	runs, letters := 0, false
	inDigits := false
	for _, r := range s {
		isDigit := r >= '0' && r <= '9'
		if isDigit && !inDigits {
			runs++
		}
		inDigits = isDigit
		if unicode.IsLetter(r) {
			letters = true
		}
	}
	return runs >= 3 || (runs == 2 && letters)
}

// Today returns the local date in DateLayout.
func Today() string {
	return time.Now().Format(DateLayout)
}
