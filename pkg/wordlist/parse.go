package wordlist

import (
	"fmt"
	"strings"
)

// ParseFunc turns one line into a record. ok is false for blank, short or
// otherwise invalid lines.
type ParseFunc[T any] func(line string) (rec T, ok bool)

// Format names a corpus line shape.
type Format string

const (
	FormatIELTS Format = "ielts"
	FormatHSK   Format = "hsk"
	FormatJLPT  Format = "jlpt"
)

// ParseIELTSLine parses "id,word,translation". Commas after the second one
// belong to the translation. Word and translation are required; the id is not.
func ParseIELTSLine(line string) (IELTSWord, bool) {
	parts, ok := splitFields(line, ",", 3)
	if !ok {
		return IELTSWord{}, false
	}
	w := IELTSWord{ID: parts[0], Word: parts[1], Translation: parts[2]}
	if w.Word == "" || w.Translation == "" {
		return IELTSWord{}, false
	}
	return w, true
}

// ParseHSKLine parses "word<TAB>pinyin<TAB>frequency", falling back to
// whitespace runs when the line has fewer than three tab-separated fields.
// Fields beyond the third are ignored.
func ParseHSKLine(line string) (HSKWord, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return HSKWord{}, false
	}
	parts := strings.Split(trimmed, "\t")
	if len(parts) < 3 {
		parts = strings.Fields(trimmed)
	}
	if len(parts) < 3 {
		return HSKWord{}, false
	}
	w := HSKWord{
		Word:      strings.TrimSpace(parts[0]),
		Pinyin:    strings.TrimSpace(parts[1]),
		Frequency: strings.TrimSpace(parts[2]),
	}
	if w.Word == "" || w.Pinyin == "" || w.Frequency == "" {
		return HSKWord{}, false
	}
	return w, true
}

// ParseJLPTFields parses "word,meaning" without deriving a reading.
func ParseJLPTFields(line string) (JLPTWord, bool) {
	parts, ok := splitFields(line, ",", 2)
	if !ok {
		return JLPTWord{}, false
	}
	w := JLPTWord{Word: parts[0], Meaning: parts[1]}
	if w.Word == "" || w.Meaning == "" {
		return JLPTWord{}, false
	}
	return w, true
}

// splitFields splits a trimmed line into exactly k trimmed fields. The last
// field keeps any further separators verbatim.
func splitFields(line, sep string, k int) ([]string, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil, false
	}
	parts := strings.SplitN(trimmed, sep, k)
	if len(parts) < k {
		return nil, false
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts, true
}

// Pool parses every line and returns the valid records in input order along
// with the number of non-blank lines that were rejected.
func Pool[T any](lines []string, parse ParseFunc[T]) (pool []T, skipped int) {
	pool = make([]T, 0, len(lines))
	for _, line := range lines {
		rec, ok := parse(line)
		if !ok {
			if strings.TrimSpace(line) != "" {
				skipped++
			}
			continue
		}
		pool = append(pool, rec)
	}
	return pool, skipped
}

// Erase adapts a typed parser to one producing Records, so callers can pick a
// format at runtime.
func Erase[T Record](parse ParseFunc[T]) ParseFunc[Record] {
	return func(line string) (Record, bool) {
		rec, ok := parse(line)
		if !ok {
			return nil, false
		}
		return rec, true
	}
}

// Parser returns the record parser for a built-in format. FormatJLPT yields
// records without readings; use reading.Analyzer for annotated ones.
func Parser(f Format) (ParseFunc[Record], error) {
	switch f {
	case FormatIELTS:
		return Erase(ParseIELTSLine), nil
	case FormatHSK:
		return Erase(ParseHSKLine), nil
	case FormatJLPT:
		return Erase(ParseJLPTFields), nil
	default:
		return nil, fmt.Errorf("unknown word list format %q", f)
	}
}

// DetectFormat guesses a format from a file name: ".csv" lists are IELTS
// style, everything else is treated as the tabular HSK style.
func DetectFormat(name string) Format {
	name = strings.TrimSuffix(strings.ToLower(name), ".gz")
	if strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".xlsx") {
		return FormatIELTS
	}
	return FormatHSK
}

// SplitLines splits text on newlines, dropping a leading byte order mark and
// trailing carriage returns.
func SplitLines(text string) []string {
	text = strings.TrimPrefix(text, "\ufeff")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
