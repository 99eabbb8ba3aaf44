// internal/game/engine.go
//
// Game session engine: owns a session's lifecycle from start to win/loss.
// Responsibilities:
//   - Start sessions behind the daily quota with a randomly selected word.
//   - Validate guesses, evaluate them and record them atomically with any
//     completion they cause.
//   - Track state transitions: in_progress → won/lost (terminal, one-way).
//   - Serve the board read model and the per-player active-session pointer.
//
// Notes:
//   - The engine holds no per-session state; everything goes through Store.
//   - Attempt numbering and the terminal check are enforced by Store.AppendGuess
//     as a compare-and-swap, so duplicate submissions cannot both succeed.

package game

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Engine is the game state machine. It is safe for concurrent use.
type Engine struct {
	store    Store
	rules    Rules
	quota    *Quota
	selector *Selector

	now   func() time.Time
	newID func() string
	intn  RandIntn
	loc   *time.Location
}

// Option customises an Engine.
type Option func(*Engine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

// WithRand replaces the word selector's random source.
func WithRand(intn RandIntn) Option { return func(e *Engine) { e.intn = intn } }

// WithLocation sets the zone whose calendar days bound the quota.
func WithLocation(loc *time.Location) Option { return func(e *Engine) { e.loc = loc } }

// WithIDGenerator replaces the session id generator.
func WithIDGenerator(f func() string) Option { return func(e *Engine) { e.newID = f } }

// NewEngine constructs an engine over st. Non-positive rule fields take their defaults.
func NewEngine(st Store, rules Rules, opts ...Option) *Engine {
	e := &Engine{
		store: st,
		rules: rules.withDefaults(),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, o := range opts {
		o(e)
	}
	e.quota = NewQuota(st, e.rules.MaxGamesPerDay, e.loc)
	e.selector = NewSelector(st, e.intn)
	return e
}

// Rules returns the effective limits.
func (e *Engine) Rules() Rules { return e.rules }

// Quota exposes the quota manager (dashboard "remaining games").
func (e *Engine) Quota() *Quota { return e.quota }

// StartGame creates a new in-progress session for playerID and makes it the
// player's active session.
//
// Errors: ErrQuotaExceeded, ErrNoWordsAvailable, *StoreError.
func (e *Engine) StartGame(ctx context.Context, playerID string) (Session, error) {
	now := e.now()
	ok, err := e.quota.CanStart(ctx, playerID, now)
	if err != nil {
		return Session{}, storeErr("count sessions", err)
	}
	if !ok {
		log.Debug().Str("player", playerID).Msg("quota exceeded")
		return Session{}, ErrQuotaExceeded
	}

	w, err := e.selector.Choose(ctx)
	if err != nil {
		return Session{}, storeErr("list words", err)
	}

	s := Session{
		ID:        e.newID(),
		PlayerID:  playerID,
		WordID:    w.ID,
		Target:    w.Value,
		StartedAt: now,
	}
	if err := e.store.CreateSession(ctx, s); err != nil {
		return Session{}, storeErr("create session", err)
	}
	if err := e.store.SetActiveSession(ctx, playerID, s.ID); err != nil {
		return Session{}, storeErr("set active session", err)
	}
	log.Info().Str("session", s.ID).Str("player", playerID).Msg("game started")
	return s, nil
}

// SubmitGuess validates and applies one guess to the session.
//
// Validation order:
//   - Session must exist (ErrSessionNotFound).
//   - Session must not be finished (ErrGameAlreadyFinished); no attempt is used.
//   - Guess must be WordLength ASCII letters after trim/uppercase
//     (ErrInvalidGuessFormat); no attempt is used.
//
// State transitions:
//   - Correct guess → won.
//   - Else the MaxAttempts-th guess → lost.
//   - Else still in progress.
func (e *Engine) SubmitGuess(ctx context.Context, sessionID, raw string) (GuessResult, error) {
	s, err := e.store.LoadSession(ctx, sessionID)
	if err != nil {
		return GuessResult{}, storeErr("load session", err)
	}
	if s.Finished() {
		return GuessResult{}, ErrGameAlreadyFinished
	}

	value, err := NormalizeGuess(raw, e.rules.WordLength)
	if err != nil {
		return GuessResult{}, err
	}

	count, err := e.store.CountGuesses(ctx, sessionID)
	if err != nil {
		return GuessResult{}, storeErr("count guesses", err)
	}
	attempt := count + 1
	if attempt > e.rules.MaxAttempts {
		// Unreachable while AppendGuess closes the session on the last attempt.
		return GuessResult{}, ErrGameAlreadyFinished
	}

	feedback := Evaluate(value, s.Target)
	now := e.now()
	w := GuessWrite{Guess: Guess{
		SessionID:     sessionID,
		AttemptNumber: attempt,
		Value:         value,
		CreatedAt:     now,
		IsCorrect:     value == s.Target,
	}}
	switch {
	case w.Guess.IsCorrect:
		w.Outcome, w.CompletedAt = OutcomeWon, &now
	case attempt >= e.rules.MaxAttempts:
		w.Outcome, w.CompletedAt = OutcomeLost, &now
	}

	if err := e.store.AppendGuess(ctx, w); err != nil {
		if errors.Is(err, ErrConcurrentGuess) || errors.Is(err, ErrGameAlreadyFinished) {
			log.Warn().Err(err).Str("session", sessionID).Int("attempt", attempt).Msg("guess rejected by store")
		}
		return GuessResult{}, storeErr("append guess", err)
	}

	if w.CompletedAt != nil {
		log.Info().Str("session", sessionID).Int("attempt", attempt).Str("outcome", string(w.Outcome)).Msg("game over")
	} else {
		log.Debug().Str("session", sessionID).Int("attempt", attempt).Msg("guess accepted")
	}

	board, err := e.GetBoard(ctx, sessionID)
	if err != nil {
		return GuessResult{}, err
	}
	return GuessResult{Guess: value, Attempt: attempt, Feedback: feedback, Board: board}, nil
}

// GetBoard returns the ordered guesses with feedback, padded with empty rows up
// to MaxAttempts. It never mutates state.
func (e *Engine) GetBoard(ctx context.Context, sessionID string) (BoardView, error) {
	s, err := e.store.LoadSession(ctx, sessionID)
	if err != nil {
		return BoardView{}, storeErr("load session", err)
	}
	guesses, err := e.store.ListGuesses(ctx, sessionID)
	if err != nil {
		return BoardView{}, storeErr("list guesses", err)
	}

	rows := make([]Row, 0, e.rules.MaxAttempts)
	for _, g := range guesses {
		statuses := Evaluate(g.Value, s.Target)
		row := make(Row, len(g.Value))
		for i := range row {
			row[i] = Cell{Letter: g.Value[i : i+1], Status: statuses[i]}
		}
		rows = append(rows, row)
	}
	for len(rows) < e.rules.MaxAttempts {
		row := make(Row, e.rules.WordLength)
		for i := range row {
			row[i] = Cell{Status: StatusEmpty}
		}
		rows = append(rows, row)
	}

	v := BoardView{
		SessionID:   s.ID,
		PlayerID:    s.PlayerID,
		Rows:        rows,
		Attempts:    len(guesses),
		MaxAttempts: e.rules.MaxAttempts,
		State:       s.State(),
		GameOver:    s.Finished(),
		StartedAt:   s.StartedAt,
	}
	if v.GameOver {
		v.Target = s.Target
	}
	return v, nil
}

// FinishGame clears the player's active-session pointer. The session itself is
// left exactly as it is; an abandoned in-progress session stays in progress.
func (e *Engine) FinishGame(ctx context.Context, playerID string) error {
	if err := e.store.ClearActiveSession(ctx, playerID); err != nil {
		return storeErr("clear active session", err)
	}
	log.Debug().Str("player", playerID).Msg("active session cleared")
	return nil
}

// ActiveBoard returns the board of the player's active session, or ErrNoActiveSession.
func (e *Engine) ActiveBoard(ctx context.Context, playerID string) (BoardView, error) {
	id, err := e.store.ActiveSession(ctx, playerID)
	if err != nil {
		return BoardView{}, storeErr("active session", err)
	}
	return e.GetBoard(ctx, id)
}

// ActiveSessionID returns the player's active session id, or ErrNoActiveSession.
func (e *Engine) ActiveSessionID(ctx context.Context, playerID string) (string, error) {
	id, err := e.store.ActiveSession(ctx, playerID)
	return id, storeErr("active session", err)
}

// Session loads a session. Transport uses it for ownership checks and must not
// render Target while the session is in progress.
func (e *Engine) Session(ctx context.Context, id string) (Session, error) {
	s, err := e.store.LoadSession(ctx, id)
	return s, storeErr("load session", err)
}

// Recent returns the player's latest sessions, newest first.
func (e *Engine) Recent(ctx context.Context, playerID string, limit int) ([]Session, error) {
	ss, err := e.store.RecentSessions(ctx, playerID, limit)
	return ss, storeErr("recent sessions", err)
}

// RemainingToday returns how many sessions the player may still start today.
func (e *Engine) RemainingToday(ctx context.Context, playerID string) (int, error) {
	n, err := e.quota.Remaining(ctx, playerID, e.now())
	return n, storeErr("count sessions", err)
}
