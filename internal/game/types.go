// internal/game/types.go
//
// Core type definitions for the game session engine.
// Defines:
//   - Status: per-letter result of a guess (correct/present/absent, plus empty padding).
//   - Outcome and State: how a session ended, and where it is in its lifecycle.
//   - Word, Session, Guess: the records the engine reads and writes through Store.
//   - BoardView and GuessResult: read models handed back to callers.
//   - Rules: the externally configurable limits.

package game

import "time"

// Status represents the evaluation result for a single letter in a guess.
//   - "correct": letter is in the target at the same position.
//   - "present": letter is in the target at another position (and not already claimed).
//   - "absent":  letter is not in the target, or every occurrence is already claimed.
//   - "empty":   placeholder cell on a board row that has no guess yet.
type Status string

const (
	StatusCorrect Status = "correct"
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusEmpty   Status = "empty"
)

// Outcome is the terminal result recorded on a session.
type Outcome string

const (
	OutcomeUnset Outcome = ""
	OutcomeWon   Outcome = "won"
	OutcomeLost  Outcome = "lost"
)

// State is the lifecycle position of a session.
type State string

const (
	StateNotStarted State = "not_started"
	StateInProgress State = "in_progress"
	StateWon        State = "won"
	StateLost       State = "lost"
)

// Terminal reports whether no further guesses are accepted in this state.
func (s State) Terminal() bool { return s == StateWon || s == StateLost }

// Word is an entry of the word corpus.
type Word struct {
	ID     int64  // Store-assigned identifier.
	Value  string // Exactly WordLength uppercase letters, unique.
	Active bool   // Eligible for selection as a new secret.
}

// Session holds one play-through of a single secret word.
type Session struct {
	ID          string     // Random UUID.
	PlayerID    string     // Owner, as supplied by the identity provider.
	WordID      int64      // The secret; never changes after creation.
	Target      string     // Value of WordID, loaded alongside the session.
	StartedAt   time.Time  // Quota day-bucketing key.
	CompletedAt *time.Time // Nil while in progress.
	Outcome     Outcome    // Unset until terminal.
	Guesses     int        // Number of attempts recorded so far.
}

// Finished reports whether the session has reached a terminal state.
func (s Session) Finished() bool { return s.CompletedAt != nil }

// State derives the lifecycle state from the persisted fields.
func (s Session) State() State {
	switch {
	case s.ID == "":
		return StateNotStarted
	case s.CompletedAt == nil:
		return StateInProgress
	case s.Outcome == OutcomeWon:
		return StateWon
	default:
		return StateLost
	}
}

// Guess is one accepted attempt of a session.
type Guess struct {
	SessionID     string
	AttemptNumber int // 1-based, contiguous per session.
	Value         string
	CreatedAt     time.Time
	IsCorrect     bool
}

// Cell is one letter tile of a board row.
type Cell struct {
	Letter string `json:"letter"`
	Status Status `json:"status"`
}

// Row is one line of the board: a past guess or an empty placeholder.
type Row []Cell

// BoardView is the read model of a session returned by GetBoard.
// Target is only populated once the session is terminal.
type BoardView struct {
	SessionID   string    `json:"gameId"`
	PlayerID    string    `json:"-"`
	Rows        []Row     `json:"rows"`
	Attempts    int       `json:"attempts"`
	MaxAttempts int       `json:"maxAttempts"`
	State       State     `json:"state"`
	GameOver    bool      `json:"gameOver"`
	Target      string    `json:"target,omitempty"`
	StartedAt   time.Time `json:"startedAt"`
}

// GuessResult is returned by SubmitGuess.
type GuessResult struct {
	Guess    string    `json:"guess"`
	Attempt  int       `json:"attempt"`
	Feedback []Status  `json:"feedback"`
	Board    BoardView `json:"board"`
}

// Rules are the configurable limits of the game.
type Rules struct {
	MaxAttempts    int // Guesses per session (default 5).
	MaxGamesPerDay int // Sessions a player may start per calendar day (default 3).
	WordLength     int // Letters per word (fixed at 5).
}

const (
	defaultMaxAttempts    = 5
	defaultMaxGamesPerDay = 3
	defaultWordLength     = 5
)

// DefaultRules returns the stock limits.
func DefaultRules() Rules {
	return Rules{
		MaxAttempts:    defaultMaxAttempts,
		MaxGamesPerDay: defaultMaxGamesPerDay,
		WordLength:     defaultWordLength,
	}
}

// withDefaults fills any non-positive field from DefaultRules.
func (r Rules) withDefaults() Rules {
	d := DefaultRules()
	if r.MaxAttempts <= 0 {
		r.MaxAttempts = d.MaxAttempts
	}
	if r.MaxGamesPerDay <= 0 {
		r.MaxGamesPerDay = d.MaxGamesPerDay
	}
	if r.WordLength <= 0 {
		r.WordLength = d.WordLength
	}
	return r
}
