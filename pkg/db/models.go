package db

import (
	"encoding/json"
	"time"
)

// WordList is a corpus the user has drawn decks from.
type WordList struct {
	ID       int64
	Name     string
	Format   string
	Location string
	AddedAt  time.Time
}

// Selection is one recorded deck: the words picked from a list for a date.
type Selection struct {
	ID         string          `json:"id"`
	WordListID int64           `json:"word_list_id"`
	Date       string          `json:"date"`
	Seed       uint32          `json:"seed"`
	Requested  int             `json:"requested"`
	WordCount  int             `json:"word_count"`
	Words      json.RawMessage `json:"words"`
	CreatedAt  time.Time       `json:"created_at"`
}
