package wordlist

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"

	"github.com/go-shiori/go-readability"
)

var (
	// (?s) allows dot to match newlines
	// (?i) makes it case-insensitive
	reRT = regexp.MustCompile(`(?si)<rt\b[^>]*>.*?</rt>`)
	reRP = regexp.MustCompile(`(?si)<rp\b[^>]*>.*?</rp>`)
)

// SanitizeRuby removes ruby text (<rt>...</rt>) and ruby parentheses (<rp>...</rp>)
// from HTML content, so a word list published with furigana does not yield
// "漢字かんじ" as the word.
func SanitizeRuby(content []byte) []byte {
	cleaned := reRT.ReplaceAll(content, []byte{})
	cleaned = reRP.ReplaceAll(cleaned, []byte{})
	return cleaned
}

// ExtractText pulls the main text out of an HTML page holding a word list.
func ExtractText(page []byte, pageURL *url.URL) (string, error) {
	article, err := readability.FromReader(bytes.NewReader(SanitizeRuby(page)), pageURL)
	if err != nil {
		return "", fmt.Errorf("extract word list from html: %w", err)
	}
	return article.TextContent, nil
}
