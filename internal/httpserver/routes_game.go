package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/cryptix/internal/auth"
	"github.com/robalobadob/cryptix/internal/game"
)

// recentLimit is how many past games the dashboard lists.
const recentLimit = 5

type guessReq struct {
	GameID string `json:"gameId" validate:"omitempty,uuid"`
	Guess  string `json:"guess" validate:"max=32"`
}

type startRes struct {
	GameID string         `json:"gameId"`
	Board  game.BoardView `json:"board"`
}

// sessionSummary is a past game as its player sees it. Word is only set once
// the game is over.
type sessionSummary struct {
	ID          string     `json:"id"`
	State       game.State `json:"state"`
	Attempts    int        `json:"attempts"`
	StartedAt   time.Time  `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Word        string     `json:"word,omitempty"`
}

type dashboardRes struct {
	Username       string           `json:"username"`
	RemainingToday int              `json:"remainingToday"`
	MaxGamesPerDay int              `json:"maxGamesPerDay"`
	MaxAttempts    int              `json:"maxAttempts"`
	ActiveGameID   string           `json:"activeGameId,omitempty"`
	Recent         []sessionSummary `json:"recent"`
}

// mountGameRoutes registers the player routes. Admin accounts cannot play.
func (s *Server) mountGameRoutes() {
	s.r.Group(func(r chi.Router) {
		r.Use(s.requireRole(auth.Role.CanPlay))
		r.Get("/dashboard", s.handleDashboard)
		r.Post("/game/start", s.handleStart)
		r.Get("/game/play", s.handlePlay)
		r.Get("/game/{id}/board", s.handleBoard)
		r.Post("/game/guess", s.handleGuess)
		r.Post("/game/finish", s.handleFinish)
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	me := currentUser(r)
	ctx := r.Context()

	remaining, err := s.engine.RemainingToday(ctx, me.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	recent, err := s.engine.Recent(ctx, me.ID, recentLimit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	active, err := s.engine.ActiveSessionID(ctx, me.ID)
	if err != nil && !errors.Is(err, game.ErrNoActiveSession) {
		writeError(w, r, err)
		return
	}

	rules := s.engine.Rules()
	res := dashboardRes{
		Username:       me.Username,
		RemainingToday: remaining,
		MaxGamesPerDay: rules.MaxGamesPerDay,
		MaxAttempts:    rules.MaxAttempts,
		ActiveGameID:   active,
		Recent:         make([]sessionSummary, 0, len(recent)),
	}
	for _, sess := range recent {
		sum := sessionSummary{
			ID:          sess.ID,
			State:       sess.State(),
			Attempts:    sess.Guesses,
			StartedAt:   sess.StartedAt,
			CompletedAt: sess.CompletedAt,
		}
		if sess.Finished() {
			sum.Word = sess.Target
		}
		res.Recent = append(res.Recent, sum)
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	me := currentUser(r)
	sess, err := s.engine.StartGame(r.Context(), me.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	board, err := s.engine.GetBoard(r.Context(), sess.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, startRes{GameID: sess.ID, Board: board})
}

// handlePlay returns the board of the caller's active game.
func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	board, err := s.engine.ActiveBoard(r.Context(), currentUser(r).ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.checkOwner(r, id); err != nil {
		writeError(w, r, err)
		return
	}
	board, err := s.engine.GetBoard(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

// handleGuess submits to gameId, or to the active game when gameId is empty.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var body guessReq
	if !decodeJSON(w, r, &body) {
		return
	}
	me := currentUser(r)
	id := body.GameID
	if id == "" {
		var err error
		if id, err = s.engine.ActiveSessionID(r.Context(), me.ID); err != nil {
			writeError(w, r, err)
			return
		}
	}
	if err := s.checkOwner(r, id); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.engine.SubmitGuess(r.Context(), id, body.Guess)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleFinish clears the active-game pointer; the game itself is untouched.
func (s *Server) handleFinish(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.FinishGame(r.Context(), currentUser(r).ID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// checkOwner reports another player's session as not found.
func (s *Server) checkOwner(r *http.Request, sessionID string) error {
	sess, err := s.engine.Session(r.Context(), sessionID)
	if err != nil {
		return err
	}
	if sess.PlayerID != currentUser(r).ID {
		return game.ErrSessionNotFound
	}
	return nil
}
