// Package memory keeps short per-session conversation history so
// follow-up questions can resolve references to earlier turns.
package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/vkotliar/gavel/internal/model"
)

// Store holds bounded conversation windows keyed by session ID. Idle
// sessions expire after the configured TTL; an expired session simply
// starts over with empty history.
type Store struct {
	cfg      model.MemoryConfig
	sessions *gocache.Cache

	// mu serializes session creation so two concurrent appends to a
	// new session cannot race on the cache entry.
	mu sync.Mutex
}

type session struct {
	mu    sync.Mutex
	turns []model.ConversationTurn
}

// NewStore creates a conversation store.
func NewStore(cfg model.MemoryConfig) *Store {
	ttl := time.Duration(cfg.SessionTTL) * time.Minute
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Store{
		cfg:      cfg,
		sessions: gocache.New(ttl, 10*time.Minute),
	}
}

// NewSessionID returns a fresh session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// Append records a completed turn. When the window is full the oldest
// turn is evicted first. Appending also refreshes the session TTL.
func (s *Store) Append(sessionID, query, response string) {
	sess := s.getOrCreate(sessionID)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.turns = append(sess.turns, model.ConversationTurn{
		Query:    query,
		Response: response,
		At:       time.Now(),
	})
	if len(sess.turns) > s.cfg.Window {
		// Shift rather than re-slice so the evicted head is freed.
		copy(sess.turns, sess.turns[1:])
		sess.turns = sess.turns[:s.cfg.Window]
	}

	s.sessions.SetDefault(sessionID, sess)
}

// Turns returns a copy of the session's history, oldest first. Unknown
// or expired sessions return nil.
func (s *Store) Turns(sessionID string) []model.ConversationTurn {
	v, found := s.sessions.Get(sessionID)
	if !found {
		return nil
	}
	sess := v.(*session)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	out := make([]model.ConversationTurn, len(sess.turns))
	copy(out, sess.turns)
	return out
}

// Clear drops a session's history.
func (s *Store) Clear(sessionID string) {
	s.sessions.Delete(sessionID)
}

func (s *Store) getOrCreate(sessionID string) *session {
	if v, found := s.sessions.Get(sessionID); found {
		return v.(*session)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if v, found := s.sessions.Get(sessionID); found {
		return v.(*session)
	}
	sess := &session{}
	s.sessions.SetDefault(sessionID, sess)
	return sess
}
