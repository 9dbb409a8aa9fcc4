package deck

import (
	"context"
	"fmt"

	"github.com/japaniel/dailywords/pkg/reading"
	"github.com/japaniel/dailywords/pkg/wordlist"
)

// ParserFor returns the line parser for format. Japanese lists get readings
// only when an analyzer is supplied.
func ParserFor(format wordlist.Format, analyzer *reading.Analyzer) (wordlist.ParseFunc[wordlist.Record], error) {
	if format == wordlist.FormatJLPT && analyzer != nil {
		return wordlist.Erase(analyzer.ParseJLPTLine), nil
	}
	return wordlist.Parser(format)
}

// Source describes where a word list lives and how to read it.
type Source struct {
	Location string
	// Format may be empty to detect it from the location's file name.
	Format  wordlist.Format
	Options wordlist.LoadOptions
	// Analyzer derives readings for Japanese lists. Optional.
	Analyzer *reading.Analyzer
}

// ResolvedFormat returns the explicit format or the detected one.
func (s Source) ResolvedFormat() wordlist.Format {
	if s.Format != "" {
		return s.Format
	}
	return wordlist.DetectFormat(s.Location)
}

// Open loads the list and builds its candidate pool.
func Open(ctx context.Context, src Source) (*Builder, error) {
	format := src.ResolvedFormat()
	parse, err := ParserFor(format, src.Analyzer)
	if err != nil {
		return nil, err
	}
	opts := src.Options
	if opts.CellSeparator == "" && format != wordlist.FormatHSK {
		opts.CellSeparator = ","
	}
	lines, err := wordlist.Load(ctx, src.Location, opts)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", src.Location, err)
	}
	return NewBuilder(lines, parse), nil
}
