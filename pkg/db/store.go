package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// DBExecutor is an interface that allows methods to accept either *sql.DB or *sql.Tx
type DBExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// isUniqueConstraintErr returns true when the error indicates a unique/constraint violation
func isUniqueConstraintErr(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "unique") || strings.Contains(s, "constraint failed")
}

// CreateOrGetWordList returns the id of the list stored for location and
// format, inserting it first if needed.
func CreateOrGetWordList(db DBExecutor, name, format, location string) (int64, error) {
	trimmedLocation := strings.TrimSpace(location)
	if trimmedLocation == "" {
		return 0, fmt.Errorf("location must be non-empty")
	}
	if strings.TrimSpace(format) == "" {
		return 0, fmt.Errorf("format must be non-empty")
	}

	const maxRetries = 3

	var id int64
	for attempt := 0; attempt < maxRetries; attempt++ {
		err := db.QueryRow(
			`SELECT id FROM word_lists WHERE location = ? AND format = ?`,
			trimmedLocation, format,
		).Scan(&id)
		if err == nil {
			return id, nil
		}
		if err != sql.ErrNoRows {
			return 0, err
		}

		res, err := db.Exec(
			`INSERT INTO word_lists (name, format, location, added_at) VALUES (?, ?, ?, ?)`,
			name, format, trimmedLocation, time.Now(),
		)
		if err != nil {
			// If another concurrent transaction inserted the same list, retry the SELECT.
			if isUniqueConstraintErr(err) {
				continue
			}
			return 0, err
		}
		return res.LastInsertId()
	}

	return 0, fmt.Errorf("could not create or get word list after %d retries", maxRetries)
}

// GetWordList loads a list by id.
func GetWordList(db DBExecutor, id int64) (*WordList, error) {
	var wl WordList
	err := db.QueryRow(`SELECT id, name, format, location, added_at FROM word_lists WHERE id = ?`, id).
		Scan(&wl.ID, &wl.Name, &wl.Format, &wl.Location, &wl.AddedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &wl, nil
}

// SaveSelection records a deck. Selections are unique per list, date and
// requested count; saving the same deck again keeps the original id and
// replaces the word snapshot. The stored id is returned.
func SaveSelection(db DBExecutor, s Selection) (string, error) {
	if s.WordListID <= 0 {
		return "", fmt.Errorf("wordListID must be positive")
	}
	if strings.TrimSpace(s.Date) == "" {
		return "", fmt.Errorf("date must be non-empty")
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	words := string(s.Words)
	if words == "" {
		words = "[]"
	}

	var id string
	err := db.QueryRow(`INSERT INTO selections (id, word_list_id, date, seed, requested, word_count, words, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(word_list_id, date, requested) DO UPDATE SET
	  seed = excluded.seed,
	  word_count = excluded.word_count,
	  words = excluded.words
	RETURNING id`, s.ID, s.WordListID, s.Date, int64(s.Seed), s.Requested, s.WordCount, words, s.CreatedAt).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("upsert selection: %w", err)
	}
	return id, nil
}

const selectionColumns = `id, word_list_id, date, seed, requested, word_count, words, created_at`

func scanSelection(row interface{ Scan(...interface{}) error }) (Selection, error) {
	var s Selection
	var seed int64
	var words string
	if err := row.Scan(&s.ID, &s.WordListID, &s.Date, &seed, &s.Requested, &s.WordCount, &words, &s.CreatedAt); err != nil {
		return Selection{}, err
	}
	s.Seed = uint32(seed)
	s.Words = []byte(words)
	return s, nil
}

// GetSelection returns the deck recorded for a list, date and requested count.
func GetSelection(db DBExecutor, wordListID int64, date string, requested int) (*Selection, error) {
	row := db.QueryRow(`SELECT `+selectionColumns+` FROM selections WHERE word_list_id = ? AND date = ? AND requested = ?`,
		wordListID, date, requested)
	s, err := scanSelection(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListSelections returns recorded decks ordered by date. An empty date lists
// every deck.
func ListSelections(db DBExecutor, date string) ([]Selection, error) {
	query := `SELECT ` + selectionColumns + ` FROM selections`
	var args []interface{}
	if date != "" {
		query += ` WHERE date = ?`
		args = append(args, date)
	}
	query += ` ORDER BY date, word_list_id, requested`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Selection
	for rows.Next() {
		s, err := scanSelection(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// PlannedDates returns the dates already recorded for a list and count.
func PlannedDates(db DBExecutor, wordListID int64, requested int) (map[string]bool, error) {
	rows, err := db.Query(`SELECT date FROM selections WHERE word_list_id = ? AND requested = ?`, wordListID, requested)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]bool)
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		out[d] = true
	}
	return out, rows.Err()
}
