// Package reading derives kana readings for Japanese vocabulary.
package reading

import (
	"strings"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"

	"github.com/japaniel/dailywords/pkg/wordlist"
)

// Token represents a single analyzed unit of text.
type Token struct {
	Surface  string // The text as it appears (e.g. "行っ")
	BaseForm string // The dictionary form (e.g. "行く")
	Reading  string // The pronunciation (katakana, e.g. "イッ")
}

// Analyzer wraps a kagome tokenizer loaded with the IPA dictionary.
type Analyzer struct {
	t *tokenizer.Tokenizer
}

// NewAnalyzer creates a new tokenizer instance.
func NewAnalyzer() (*Analyzer, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, err
	}
	return &Analyzer{t: t}, nil
}

// Analyze breaks text into tokens with readings and base forms.
func (a *Analyzer) Analyze(text string) []Token {
	var result []Token
	for _, token := range a.t.Tokenize(text) {
		if token.Class == tokenizer.DUMMY || strings.TrimSpace(token.Surface) == "" {
			continue
		}

		// IPA features: 6 is the base form, 7 the reading.
		features := token.Features()
		base := token.Surface
		if len(features) > 6 && features[6] != "*" {
			base = features[6]
		}
		reading := ""
		if len(features) > 7 && features[7] != "*" {
			reading = features[7]
		}

		result = append(result, Token{
			Surface:  token.Surface,
			BaseForm: base,
			Reading:  reading,
		})
	}
	return result
}

// Reading returns the hiragana reading of word, or "" when any part of it
// cannot be read.
func (a *Analyzer) Reading(word string) string {
	tokens := a.Analyze(word)
	if len(tokens) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, t := range tokens {
		switch {
		case t.Reading != "":
			sb.WriteString(t.Reading)
		case isKana(t.Surface):
			sb.WriteString(t.Surface)
		default:
			return ""
		}
	}
	return ToHiragana(sb.String())
}

// ParseJLPTLine parses "word,meaning" and fills in the reading.
func (a *Analyzer) ParseJLPTLine(line string) (wordlist.JLPTWord, bool) {
	w, ok := wordlist.ParseJLPTFields(line)
	if !ok {
		return w, false
	}
	w.Reading = a.Reading(w.Word)
	return w, true
}

// ToHiragana converts Katakana to Hiragana.
func ToHiragana(s string) string {
	runes := []rune(s)
	for i, r := range runes {
		if r >= 0x30A1 && r <= 0x30F6 {
			runes[i] = r - 0x60
		}
	}
	return string(runes)
}

func isKana(s string) bool {
	for _, r := range s {
		switch {
		case r >= 0x3041 && r <= 0x309F: // hiragana
		case r >= 0x30A0 && r <= 0x30FF: // katakana, including ー
		default:
			return false
		}
	}
	return s != ""
}
