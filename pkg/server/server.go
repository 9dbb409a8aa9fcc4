// Package server exposes decks, lookups, settings and history over HTTP.
package server

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/japaniel/dailywords/pkg/deck"
	"github.com/japaniel/dailywords/pkg/lookup"
	"github.com/japaniel/dailywords/pkg/prefs"
	"github.com/japaniel/dailywords/pkg/wordlist"
)

// maxCount caps the count query parameter.
const maxCount = 1000

// Config holds the dependencies of a Server.
type Config struct {
	DB         *sql.DB
	Builder    *deck.Builder
	WordListID int64
	Format     wordlist.Format
	Count      int
	Prefs      *prefs.Store

	// UnsplashKey is used when the saved settings carry no token.
	UnsplashKey string
	// UnsplashBaseURL overrides the API endpoint (tests).
	UnsplashBaseURL string
	HTTPClient      *http.Client
}

// Server is the HTTP front end of dailywords.
type Server struct {
	cfg    Config
	router *chi.Mux
}

// New wires the routes for cfg.
func New(cfg Config) *Server {
	if cfg.Count <= 0 {
		cfg.Count = deck.DefaultCount
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	s := &Server{cfg: cfg, router: chi.NewRouter()}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(withLogging)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/deck", s.handleGetDeck)
		r.Post("/deck", s.handleRecordDeck)
		r.Get("/deck/{date}/cards/{index}", s.handleCard)
		r.Get("/translate", s.handleTranslate)
		r.Get("/image", s.handleImage)
		r.Get("/settings", s.handleGetSettings)
		r.Put("/settings", s.handlePutSettings)
		r.Get("/history", s.handleHistory)
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		slog.Info("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", middleware.GetReqID(r.Context()),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// sourceLanguage is the language the words of a format are written in.
func sourceLanguage(f wordlist.Format) string {
	switch f {
	case wordlist.FormatHSK:
		return lookup.SimplifiedChinese
	case wordlist.FormatJLPT:
		return lookup.Japanese
	default:
		return lookup.English
	}
}

// targetLanguage resolves the translation target. Chinese lists translate
// to English unless Cantonese is asked for.
func targetLanguage(f wordlist.Format, want string) string {
	if want == "" {
		want = lookup.SimplifiedChinese
	}
	if want == sourceLanguage(f) {
		return lookup.English
	}
	return want
}
