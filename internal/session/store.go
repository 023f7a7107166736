package session

import (
	"errors"
	"sync"
	"time"

	"buildcare/internal/chatbot"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/oklog/ulid/v2"
)

// ErrNotFound is returned when a session id is unknown or has expired.
var ErrNotFound = errors.New("session: not found")

// Session is one open chat widget. Each session owns its DialogueState;
// nothing is shared between sessions.
type Session struct {
	ID        string
	State     chatbot.State
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store keeps chat sessions in an expirable LRU so abandoned widgets age
// out without a reaper. All methods are safe for concurrent use: the live
// session is only touched under the store mutex, and every method returns a
// value snapshot rather than the shared pointer, so callers can read state
// freely while other turns land.
type Store struct {
	mu       sync.Mutex
	sessions *expirable.LRU[string, *Session]
	engine   *chatbot.Engine
}

// NewStore creates a session store backed by the given engine. maxSessions
// caps memory; ttl evicts idle sessions.
func NewStore(engine *chatbot.Engine, maxSessions int, ttl time.Duration) *Store {
	return &Store{
		sessions: expirable.NewLRU[string, *Session](maxSessions, nil, ttl),
		engine:   engine,
	}
}

// Open creates a new session pre-seeded with the greeting and main menu.
func (s *Store) Open() Session {
	now := time.Now()
	sess := &Session{
		ID:        ulid.Make().String(),
		State:     s.engine.NewSession(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.mu.Lock()
	s.sessions.Add(sess.ID, sess)
	s.mu.Unlock()
	return *sess
}

// Get returns a snapshot of a session by id. The snapshot's transcript is
// never written again: the engine builds a fresh transcript slice per turn.
func (s *Store) Get(id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions.Get(id)
	if !ok {
		return Session{}, ErrNotFound
	}
	return *sess, nil
}

// Resolve runs one turn against a session and stores the new state.
func (s *Store) Resolve(id string, turn chatbot.Turn) (Session, chatbot.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions.Get(id)
	if !ok {
		return Session{}, chatbot.Result{}, ErrNotFound
	}

	result, err := s.engine.Resolve(turn, sess.State)
	if err != nil {
		return Session{}, chatbot.Result{}, err
	}

	sess.State = result.State
	sess.UpdatedAt = time.Now()
	return *sess, result, nil
}

// Reset restores a session to its initial state, keeping the id.
func (s *Store) Reset(id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions.Get(id)
	if !ok {
		return Session{}, ErrNotFound
	}
	sess.State = s.engine.NewSession()
	sess.UpdatedAt = time.Now()
	return *sess, nil
}

// MenuOptions exposes the engine's options for a named menu, for rendering
// a session's active menu without touching its state.
func (s *Store) MenuOptions(name chatbot.MenuID) []chatbot.Option {
	return s.engine.Menu(name)
}

// Drop removes a session entirely.
func (s *Store) Drop(id string) {
	s.mu.Lock()
	s.sessions.Remove(id)
	s.mu.Unlock()
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions.Len()
}
