// Package session holds per-user interaction state: the authenticated
// identity and the extraction items accumulated since login or the last
// explicit clear. Items (including image bytes) live only in memory and are
// discarded with the session.
package session

import (
	"sync"

	"github.com/google/uuid"

	"github.com/hyperjump/yomitori/internal/models"
)

// Session is one authenticated interaction context.
type Session struct {
	Token    string
	UserID   string
	Username string
	Items    []models.ExtractionItem
}

// Store maps bearer tokens to sessions.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Create starts a session for a user and returns its bearer token.
func (s *Store) Create(userID, username string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := &Session{
		Token:    uuid.New().String(),
		UserID:   userID,
		Username: username,
	}
	s.sessions[sess.Token] = sess
	return sess
}

// Get returns the session for a token, or nil.
func (s *Store) Get(token string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[token]
}

// Delete ends a session (logout). All accumulated items are discarded.
func (s *Store) Delete(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

// AppendItems adds extraction results to a session.
func (s *Store) AppendItems(token string, items []models.ExtractionItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess := s.sessions[token]; sess != nil {
		sess.Items = append(sess.Items, items...)
	}
}

// ReplaceItems swaps the session's accumulated items wholesale.
func (s *Store) ReplaceItems(token string, items []models.ExtractionItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess := s.sessions[token]; sess != nil {
		sess.Items = items
	}
}

// Items returns a copy of the session's accumulated items in order.
func (s *Store) Items(token string) []models.ExtractionItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.sessions[token]
	if sess == nil {
		return nil
	}
	out := make([]models.ExtractionItem, len(sess.Items))
	copy(out, sess.Items)
	return out
}

// UpdateItemText edits the text of one accumulated item. Returns false when
// the index is out of range or the session is unknown.
func (s *Store) UpdateItemText(token string, index int, text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.sessions[token]
	if sess == nil || index < 0 || index >= len(sess.Items) {
		return false
	}
	sess.Items[index].Text = text
	return true
}

// Clear drops the session's accumulated items but keeps the session alive.
func (s *Store) Clear(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess := s.sessions[token]; sess != nil {
		sess.Items = nil
	}
}
