// Package prefs persists the handful of UI preferences a learner sets.
//
// Settings are stored as one JSON document under a fixed key.
package prefs

import (
	"encoding/json"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

// SettingsKey is the key the settings document is stored under.
const SettingsKey = "ielts-word-settings"

var settingsBucket = []byte("settings")

// DisplayMode selects which side of a card is shown.
type DisplayMode string

const (
	ShowWord  DisplayMode = "english"
	ShowGloss DisplayMode = "chinese"
	ShowBoth  DisplayMode = "both"
)

// Settings are the user's preferences.
type Settings struct {
	EnableImages   bool        `json:"enableImages"`
	UnsplashToken  string      `json:"unsplashToken"`
	DisplayMode    DisplayMode `json:"displayMode,omitempty"`
	TranslateAPI   string      `json:"translateApi,omitempty"`
	TargetLanguage string      `json:"targetLanguage,omitempty"`
}

// Defaults returns the settings used before anything is saved.
func Defaults() Settings {
	return Settings{
		DisplayMode:    ShowWord,
		TranslateAPI:   "bing",
		TargetLanguage: "cn",
	}
}

// Validate rejects settings the rest of the program cannot act on.
func (s Settings) Validate() error {
	switch s.DisplayMode {
	case ShowWord, ShowGloss, ShowBoth:
	default:
		return fmt.Errorf("unknown display mode %q", s.DisplayMode)
	}
	switch s.TranslateAPI {
	case "bing", "google":
	default:
		return fmt.Errorf("unknown translate api %q", s.TranslateAPI)
	}
	return nil
}

// Store keeps settings in a bbolt file.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if needed) the preference file at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open preferences: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(settingsBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create settings bucket: %w", err)
	}
	return &Store{db: db}, nil
}

// Load returns the saved settings merged over the defaults. A missing or
// unreadable document yields the defaults, as on a first run.
func (s *Store) Load() (Settings, error) {
	settings := Defaults()
	raw, err := s.Raw()
	if err != nil {
		return settings, err
	}
	if raw == "" {
		return settings, nil
	}
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return Defaults(), nil
	}
	if settings.Validate() != nil {
		return Defaults(), nil
	}
	return settings, nil
}

// Save validates and stores settings.
func (s *Store) Save(settings Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(settingsBucket).Put([]byte(SettingsKey), data)
	})
}

// Raw returns the stored JSON document, or "" when nothing is saved.
func (s *Store) Raw() (string, error) {
	var raw string
	err := s.db.View(func(tx *bolt.Tx) error {
		// The value is only valid during the transaction; string() copies it.
		raw = string(tx.Bucket(settingsBucket).Get([]byte(SettingsKey)))
		return nil
	})
	return raw, err
}

// Close closes the underlying file.
func (s *Store) Close() error {
	return s.db.Close()
}
