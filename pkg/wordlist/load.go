package wordlist

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"golang.org/x/text/encoding/htmlindex"
)

// DefaultMaxBytes caps how much of a corpus is read, compressed or not.
const DefaultMaxBytes = 10 * 1024 * 1024

// LoadOptions controls how a corpus is fetched and decoded.
type LoadOptions struct {
	// Encoding names the text encoding of the corpus ("gbk", "big5",
	// "shift_jis", ...). Empty means UTF-8.
	Encoding string
	// CellSeparator joins spreadsheet cells into one line. Defaults to a tab.
	CellSeparator string
	// MaxBytes overrides DefaultMaxBytes when positive.
	MaxBytes int64
	// Client is used for http(s) locations. nil means a client with a 30s timeout.
	Client *http.Client
}

func (o LoadOptions) maxBytes() int64 {
	if o.MaxBytes > 0 {
		return o.MaxBytes
	}
	return DefaultMaxBytes
}

// Load reads the corpus at location (a file path or an http(s) URL) and
// returns its lines. Gzip-compressed files (".gz"), spreadsheets (".xlsx") and
// HTML pages are unpacked to plain lines first.
func Load(ctx context.Context, location string, opts LoadOptions) ([]string, error) {
	body, contentType, err := fetch(ctx, location, opts)
	if err != nil {
		return nil, err
	}

	name := strings.ToLower(locationName(location))
	if strings.HasSuffix(name, ".gz") {
		body, err = gunzip(body, opts.maxBytes())
		if err != nil {
			return nil, fmt.Errorf("decompress %s: %w", location, err)
		}
		name = strings.TrimSuffix(name, ".gz")
	}

	if strings.HasSuffix(name, ".xlsx") {
		sep := opts.CellSeparator
		if sep == "" {
			sep = "\t"
		}
		return SpreadsheetLines(bytes.NewReader(body), sep)
	}

	if opts.Encoding != "" && !strings.EqualFold(opts.Encoding, "utf-8") {
		enc, err := htmlindex.Get(opts.Encoding)
		if err != nil {
			return nil, fmt.Errorf("unknown encoding %q: %w", opts.Encoding, err)
		}
		body, err = enc.NewDecoder().Bytes(body)
		if err != nil {
			return nil, fmt.Errorf("decode %s as %s: %w", location, opts.Encoding, err)
		}
	}

	if isHTML(name, contentType) {
		pageURL, _ := url.Parse(location)
		text, err := ExtractText(body, pageURL)
		if err != nil {
			return nil, err
		}
		return SplitLines(text), nil
	}

	return SplitLines(string(body)), nil
}

func fetch(ctx context.Context, location string, opts LoadOptions) ([]byte, string, error) {
	limit := opts.maxBytes()
	if !isRemote(location) {
		f, err := os.Open(location)
		if err != nil {
			return nil, "", fmt.Errorf("open word list: %w", err)
		}
		defer f.Close()
		body, err := readLimited(f, limit)
		return body, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "dailywords-cli")
	req.Header.Set("Accept", "text/plain,text/csv,text/html;q=0.9,*/*;q=0.8")

	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch word list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetch word list: got status %s", resp.Status)
	}
	if resp.ContentLength > limit {
		return nil, "", fmt.Errorf("content-length %d exceeds limit of %d bytes", resp.ContentLength, limit)
	}
	body, err := readLimited(resp.Body, limit)
	return body, resp.Header.Get("Content-Type"), err
}

// readLimited reads at most limit bytes and fails if r holds more.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read word list: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("word list exceeds maximum size of %d bytes", limit)
	}
	return body, nil
}

func gunzip(body []byte, limit int64) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return readLimited(zr, limit)
}

func isRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// locationName returns the last path element of a file path or URL.
func locationName(location string) string {
	if isRemote(location) {
		if u, err := url.Parse(location); err == nil {
			return path.Base(u.Path)
		}
	}
	return path.Base(strings.ReplaceAll(location, `\`, "/"))
}

func isHTML(name, contentType string) bool {
	if strings.HasSuffix(name, ".html") || strings.HasSuffix(name, ".htm") {
		return true
	}
	return strings.HasPrefix(strings.ToLower(contentType), "text/html")
}
