package game

import (
	"context"
	"time"
)

// Store is the persistence collaborator the engine reads and writes through.
// Implementations live in internal/store; each call is atomic on its own.
type Store interface {
	WordLister
	SessionCounter

	// CreateSession persists a new in-progress session with zero guesses.
	CreateSession(ctx context.Context, s Session) error

	// LoadSession returns the session with Target populated, or ErrSessionNotFound.
	LoadSession(ctx context.Context, id string) (Session, error)

	// AppendGuess records one attempt and, when w.CompletedAt is set, the
	// session's completion in the same atomic unit. It must fail with
	// ErrSessionNotFound, ErrGameAlreadyFinished (session already completed) or
	// ErrConcurrentGuess (the stored guess count is not AttemptNumber-1), in
	// which case nothing is written.
	AppendGuess(ctx context.Context, w GuessWrite) error

	// CountGuesses returns the number of attempts recorded for the session.
	CountGuesses(ctx context.Context, sessionID string) (int, error)

	// ListGuesses returns the session's guesses ordered by attempt number.
	ListGuesses(ctx context.Context, sessionID string) ([]Guess, error)

	// SetActiveSession points playerID at sessionID, replacing any previous pointer.
	SetActiveSession(ctx context.Context, playerID, sessionID string) error

	// ActiveSession returns the player's current session id or ErrNoActiveSession.
	ActiveSession(ctx context.Context, playerID string) (string, error)

	// ClearActiveSession removes the pointer; clearing an unset pointer is not an error.
	ClearActiveSession(ctx context.Context, playerID string) error

	// RecentSessions returns up to limit sessions of the player, newest first.
	RecentSessions(ctx context.Context, playerID string, limit int) ([]Session, error)
}

// WordLister lists the words eligible for selection.
type WordLister interface {
	ListActiveWords(ctx context.Context) ([]Word, error)
}

// SessionCounter counts sessions a player started in [from, to).
type SessionCounter interface {
	CountSessionsStartedBetween(ctx context.Context, playerID string, from, to time.Time) (int, error)
}

// GuessWrite is the unit AppendGuess commits.
type GuessWrite struct {
	Guess       Guess
	CompletedAt *time.Time // Set when this guess ends the session.
	Outcome     Outcome    // Won or Lost when CompletedAt is set.
}
