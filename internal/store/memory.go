// internal/store/memory.go
//
// In-memory implementation of the game.Store interface.
// This is a lightweight persistence layer for tests and embedded use where
// durability is not required.
//
// Characteristics:
//   - Sessions, guesses, words and active-session pointers live in maps/slices.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - AppendGuess checks and writes under the write lock, which makes the
//     attempt-number compare-and-swap atomic.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/robalobadob/cryptix/internal/game"
)

var _ game.Store = (*Memory)(nil)

// Memory is an in-memory map-based game.Store.
type Memory struct {
	mu       sync.RWMutex              // guards everything below
	words    []game.Word               // ordered by ID
	sessions map[string]*memorySession // keyed by Session.ID
	active   map[string]string         // playerID → sessionID
	nextWord int64
}

type memorySession struct {
	s       game.Session
	guesses []game.Guess
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *Memory {
	return &Memory{
		sessions: make(map[string]*memorySession),
		active:   make(map[string]string),
	}
}

// ------------------------------- words ---------------------------------------

// InsertWord adds value as an active word. It reports false if it already exists.
func (m *Memory) InsertWord(ctx context.Context, value string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range m.words {
		if w.Value == value {
			return false, nil
		}
	}
	m.nextWord++
	m.words = append(m.words, game.Word{ID: m.nextWord, Value: value, Active: true})
	return true, nil
}

// SetWordActive toggles a word's eligibility.
func (m *Memory) SetWordActive(ctx context.Context, value string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.words {
		if m.words[i].Value == value {
			m.words[i].Active = active
			return nil
		}
	}
	return ErrWordNotFound
}

// DeleteUnusedWords removes every word no session references.
func (m *Memory) DeleteUnusedWords(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	used := make(map[int64]bool)
	for _, ms := range m.sessions {
		used[ms.s.WordID] = true
	}
	kept := m.words[:0]
	removed := 0
	for _, w := range m.words {
		if used[w.ID] {
			kept = append(kept, w)
			continue
		}
		removed++
	}
	m.words = kept
	return removed, nil
}

// ListActiveWords returns the active words ordered by ID.
func (m *Memory) ListActiveWords(ctx context.Context) ([]game.Word, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]game.Word, 0, len(m.words))
	for _, w := range m.words {
		if w.Active {
			out = append(out, w)
		}
	}
	return out, nil
}

// ------------------------------ sessions -------------------------------------

// CreateSession stores a new session with zero guesses.
func (m *Memory) CreateSession(ctx context.Context, s game.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.ID]; ok {
		return ErrDuplicateSession
	}
	s.Guesses = 0
	s.CompletedAt = nil
	s.Outcome = game.OutcomeUnset
	for _, w := range m.words {
		if w.ID == s.WordID {
			s.Target = w.Value
		}
	}
	m.sessions[s.ID] = &memorySession{s: s}
	return nil
}

// LoadSession returns a copy of the session.
func (m *Memory) LoadSession(ctx context.Context, id string) (game.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ms, ok := m.sessions[id]
	if !ok {
		return game.Session{}, game.ErrSessionNotFound
	}
	return copySession(ms.s), nil
}

// AppendGuess records the guess and any completion in one critical section.
func (m *Memory) AppendGuess(ctx context.Context, w game.GuessWrite) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ms, ok := m.sessions[w.Guess.SessionID]
	if !ok {
		return game.ErrSessionNotFound
	}
	if ms.s.CompletedAt != nil {
		return game.ErrGameAlreadyFinished
	}
	if len(ms.guesses) != w.Guess.AttemptNumber-1 {
		return game.ErrConcurrentGuess
	}
	ms.guesses = append(ms.guesses, w.Guess)
	ms.s.Guesses = len(ms.guesses)
	if w.CompletedAt != nil {
		t := *w.CompletedAt
		ms.s.CompletedAt = &t
		ms.s.Outcome = w.Outcome
	}
	return nil
}

// CountGuesses returns the number of recorded attempts.
func (m *Memory) CountGuesses(ctx context.Context, sessionID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ms, ok := m.sessions[sessionID]
	if !ok {
		return 0, game.ErrSessionNotFound
	}
	return len(ms.guesses), nil
}

// ListGuesses returns a copy of the session's guesses in attempt order.
func (m *Memory) ListGuesses(ctx context.Context, sessionID string) ([]game.Guess, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ms, ok := m.sessions[sessionID]
	if !ok {
		return nil, game.ErrSessionNotFound
	}
	return append([]game.Guess(nil), ms.guesses...), nil
}

// CountSessionsStartedBetween counts sessions of playerID started in [from, to).
func (m *Memory) CountSessionsStartedBetween(ctx context.Context, playerID string, from, to time.Time) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, ms := range m.sessions {
		st := ms.s.StartedAt
		if ms.s.PlayerID == playerID && !st.Before(from) && st.Before(to) {
			n++
		}
	}
	return n, nil
}

// RecentSessions returns up to limit sessions of playerID, newest first.
func (m *Memory) RecentSessions(ctx context.Context, playerID string, limit int) ([]game.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []game.Session
	for _, ms := range m.sessions {
		if ms.s.PlayerID == playerID {
			out = append(out, copySession(ms.s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// DeleteSession removes a session together with its guesses and any pointer to it.
func (m *Memory) DeleteSession(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return game.ErrSessionNotFound
	}
	delete(m.sessions, id)
	for p, sid := range m.active {
		if sid == id {
			delete(m.active, p)
		}
	}
	return nil
}

// --------------------------- active pointers ---------------------------------

// SetActiveSession points playerID at sessionID.
func (m *Memory) SetActiveSession(ctx context.Context, playerID, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[sessionID]; !ok {
		return game.ErrSessionNotFound
	}
	m.active[playerID] = sessionID
	return nil
}

// ActiveSession returns the player's active session id.
func (m *Memory) ActiveSession(ctx context.Context, playerID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.active[playerID]
	if !ok {
		return "", game.ErrNoActiveSession
	}
	return id, nil
}

// ClearActiveSession drops the player's pointer.
func (m *Memory) ClearActiveSession(ctx context.Context, playerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.active, playerID)
	return nil
}

func copySession(s game.Session) game.Session {
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		s.CompletedAt = &t
	}
	return s
}
