package deck

import (
	"fmt"
	"sync"
)

// Session is the rendering layer's view state: the deck on screen and the
// card the learner opened last. Action handlers (copy, speak, translate) read
// the current card from here rather than from shared globals.
//
// Loading a deck is asynchronous (the word list may be fetched), so a learner
// can pick another date before the previous load finishes. Each load takes a
// ticket from Begin, and only the newest ticket may replace the deck.
type Session struct {
	mu      sync.Mutex
	latest  uint64
	deck    Deck
	current int
	loaded  bool
}

// Begin starts a load and returns its ticket.
func (s *Session) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest++
	return s.latest
}

// Show replaces the deck on display if ticket belongs to the newest load.
// It reports whether the deck was accepted; stale decks are dropped.
func (s *Session) Show(ticket uint64, d Deck) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ticket != s.latest {
		return false
	}
	s.deck = d
	s.current = -1
	s.loaded = true
	return true
}

// Deck returns the deck on display.
func (s *Session) Deck() (Deck, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deck, s.loaded
}

// Open marks card i as current and returns it.
func (s *Session) Open(i int) (Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded || i < 0 || i >= len(s.deck.Cards) {
		return Card{}, fmt.Errorf("no card %d in current deck", i)
	}
	s.current = i
	return s.deck.Cards[i], nil
}

// Current returns the card opened last, if any.
func (s *Session) Current() (Card, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded || s.current < 0 {
		return Card{}, false
	}
	return s.deck.Cards[s.current], true
}

// Close forgets the current card but keeps the deck.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = -1
}
