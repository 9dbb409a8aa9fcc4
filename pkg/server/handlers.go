package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/japaniel/dailywords/pkg/db"
	"github.com/japaniel/dailywords/pkg/deck"
	"github.com/japaniel/dailywords/pkg/lookup"
	"github.com/japaniel/dailywords/pkg/prefs"
)

type deckResponse struct {
	ID string `json:"id,omitempty"`
	deck.Deck
}

type cardResponse struct {
	deck.Card
	Date        string        `json:"date"`
	Translation string        `json:"translation_url"`
	Speech      lookup.Speech `json:"speech"`
}

// count reads the count query parameter, falling back to the configured one.
func (s *Server) count(r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("count")
	if raw == "" {
		return s.cfg.Count, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 || n > maxCount {
		return 0, false
	}
	return n, true
}

// handleGetDeck handles GET /api/deck. It only reads; nothing is recorded.
func (s *Server) handleGetDeck(w http.ResponseWriter, r *http.Request) {
	s.serveDeck(w, r, false)
}

// handleRecordDeck handles POST /api/deck: the same deck, also saved in the
// history. Recording the same date and count again keeps the first row's id.
func (s *Server) handleRecordDeck(w http.ResponseWriter, r *http.Request) {
	s.serveDeck(w, r, true)
}

func (s *Server) serveDeck(w http.ResponseWriter, r *http.Request, record bool) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = deck.Today()
	}
	count, ok := s.count(r)
	if !ok {
		errorResponse(w, http.StatusBadRequest, "count must be between 1 and 1000")
		return
	}
	if s.cfg.Builder.PoolSize() == 0 {
		errorResponse(w, http.StatusUnprocessableEntity, "no valid word data")
		return
	}

	d := s.cfg.Builder.Build(date, count)
	resp := deckResponse{Deck: d}

	if record && s.cfg.DB != nil {
		words, err := json.Marshal(d.Cards)
		if err != nil {
			slog.Error("failed to encode deck", "error", err)
			errorResponse(w, http.StatusInternalServerError, "Failed to record deck")
			return
		}
		id, err := db.SaveSelection(s.cfg.DB, db.Selection{
			WordListID: s.cfg.WordListID,
			Date:       d.Date,
			Seed:       d.Seed,
			Requested:  d.Requested,
			WordCount:  len(d.Cards),
			Words:      words,
		})
		if err != nil {
			slog.Error("failed to record deck", "date", d.Date, "error", err)
			errorResponse(w, http.StatusInternalServerError, "Failed to record deck")
			return
		}
		resp.ID = id
	}

	if d.Short {
		slog.Warn("short deck", "date", d.Date, "requested", count, "found", len(d.Cards))
	}
	jsonResponse(w, http.StatusOK, resp)
}

// handleCard handles GET /api/deck/{date}/cards/{index}.
func (s *Server) handleCard(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "index must be a number")
		return
	}
	count, ok := s.count(r)
	if !ok {
		errorResponse(w, http.StatusBadRequest, "count must be between 1 and 1000")
		return
	}

	d := s.cfg.Builder.Build(date, count)
	if index < 0 || index >= len(d.Cards) {
		errorResponse(w, http.StatusNotFound, "Card not found")
		return
	}
	card := d.Cards[index]

	settings := s.settings()
	link, err := s.translateURL(card.Word, settings.TranslateAPI, settings.TargetLanguage)
	if err != nil {
		slog.Error("failed to build translation link", "word", card.Word, "error", err)
		errorResponse(w, http.StatusInternalServerError, "Failed to build translation link")
		return
	}
	jsonResponse(w, http.StatusOK, cardResponse{
		Card:        card,
		Date:        d.Date,
		Translation: link,
		Speech:      lookup.SpeechFor(card.Word, sourceLanguage(s.cfg.Format)),
	})
}

func (s *Server) translateURL(word, api, lang string) (string, error) {
	from := sourceLanguage(s.cfg.Format)
	return lookup.TranslateURL(lookup.Provider(api), from, targetLanguage(s.cfg.Format, lang), word)
}

// handleTranslate handles GET /api/translate. It redirects to the provider
// page, or returns the link as JSON when format=json.
func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	word := q.Get("word")
	if word == "" {
		errorResponse(w, http.StatusBadRequest, "word is required")
		return
	}
	settings := s.settings()
	api := q.Get("api")
	if api == "" {
		api = settings.TranslateAPI
	}
	lang := q.Get("lang")
	if lang == "" {
		lang = settings.TargetLanguage
	}

	link, err := s.translateURL(word, api, lang)
	if err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if q.Get("format") == "json" {
		jsonResponse(w, http.StatusOK, map[string]string{"word": word, "url": link})
		return
	}
	http.Redirect(w, r, link, http.StatusFound)
}

// handleImage handles GET /api/image.
func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	word := r.URL.Query().Get("word")
	if word == "" {
		errorResponse(w, http.StatusBadRequest, "word is required")
		return
	}
	settings := s.settings()
	if !settings.EnableImages {
		errorResponse(w, http.StatusConflict, "Images are disabled")
		return
	}

	key := settings.UnsplashToken
	if key == "" {
		key = s.cfg.UnsplashKey
	}
	client := lookup.NewUnsplash(key)
	client.Client = s.cfg.HTTPClient
	if s.cfg.UnsplashBaseURL != "" {
		client.BaseURL = s.cfg.UnsplashBaseURL
	}

	img, err := client.Search(r.Context(), word)
	switch {
	case err == nil:
	case errors.Is(err, lookup.ErrNoImage):
		errorResponse(w, http.StatusNotFound, "No image found")
		return
	case errors.Is(err, lookup.ErrNoAccessKey):
		errorResponse(w, http.StatusConflict, "Unsplash access key not configured")
		return
	case errors.Is(err, lookup.ErrUnauthorized):
		errorResponse(w, http.StatusBadGateway, "Unsplash rejected the access key")
		return
	case errors.Is(err, lookup.ErrRateLimited):
		errorResponse(w, http.StatusTooManyRequests, "Unsplash rate limit reached")
		return
	default:
		slog.Error("image search failed", "word", word, "error", err)
		errorResponse(w, http.StatusBadGateway, "Image search failed")
		return
	}

	if err := client.TrackDownload(r.Context(), img); err != nil {
		slog.Warn("failed to track image download", "word", word, "error", err)
	}
	jsonResponse(w, http.StatusOK, img)
}

// handleGetSettings handles GET /api/settings.
func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, s.settings())
}

// handlePutSettings handles PUT /api/settings. Omitted fields keep their
// current values.
func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Prefs == nil {
		errorResponse(w, http.StatusServiceUnavailable, "Settings storage not configured")
		return
	}
	settings := s.settings()
	if err := parseJSONBody(w, r, &settings); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := settings.Validate(); err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := s.translateURL("", settings.TranslateAPI, settings.TargetLanguage); err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.cfg.Prefs.Save(settings); err != nil {
		slog.Error("failed to save settings", "error", err)
		errorResponse(w, http.StatusInternalServerError, "Failed to save settings")
		return
	}
	slog.Info("settings saved", "display_mode", settings.DisplayMode, "translate_api", settings.TranslateAPI)
	jsonResponse(w, http.StatusOK, settings)
}

// handleHistory handles GET /api/history.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.cfg.DB == nil {
		jsonResponse(w, http.StatusOK, []db.Selection{})
		return
	}
	// Decks are keyed by the date string they were drawn for, so the filter
	// matches it verbatim.
	rows, err := db.ListSelections(s.cfg.DB, r.URL.Query().Get("date"))
	if err != nil {
		slog.Error("failed to list history", "error", err)
		errorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if rows == nil {
		rows = []db.Selection{}
	}
	jsonResponse(w, http.StatusOK, rows)
}

// settings returns the saved settings, or the defaults when none can be read.
func (s *Server) settings() prefs.Settings {
	if s.cfg.Prefs == nil {
		return prefs.Defaults()
	}
	settings, err := s.cfg.Prefs.Load()
	if err != nil {
		slog.Error("failed to load settings", "error", err)
		return prefs.Defaults()
	}
	return settings
}
