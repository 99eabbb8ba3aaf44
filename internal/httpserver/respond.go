package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/cryptix/internal/auth"
	"github.com/robalobadob/cryptix/internal/game"
)

// errorBody is the shape of every error response.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorCode(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorBody{Error: code, Message: msg})
}

// errorMapping maps domain errors to status codes and stable error codes.
var errorMapping = []struct {
	err    error
	status int
	code   string
}{
	{game.ErrQuotaExceeded, http.StatusTooManyRequests, "quota_exceeded"},
	{game.ErrNoWordsAvailable, http.StatusServiceUnavailable, "no_words_available"},
	{game.ErrSessionNotFound, http.StatusNotFound, "session_not_found"},
	{game.ErrNoActiveSession, http.StatusNotFound, "no_active_session"},
	{game.ErrInvalidGuessFormat, http.StatusUnprocessableEntity, "invalid_guess_format"},
	{game.ErrGameAlreadyFinished, http.StatusConflict, "game_already_finished"},
	{game.ErrConcurrentGuess, http.StatusConflict, "concurrent_guess"},
	{auth.ErrUsernameTaken, http.StatusConflict, "username_taken"},
	{auth.ErrInvalidUsername, http.StatusBadRequest, "invalid_username"},
	{auth.ErrInvalidPassword, http.StatusBadRequest, "invalid_password"},
	{auth.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{auth.ErrUserNotFound, http.StatusNotFound, "user_not_found"},
}

// writeError maps err onto a response. Anything unmapped is a 500 and is logged.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range errorMapping {
		if errors.Is(err, m.err) {
			writeErrorCode(w, m.status, m.code, m.err.Error())
			return
		}
	}
	hlog.FromRequest(r).Error().Err(err).Msg("request failed")
	var se *game.StoreError
	if errors.As(err, &se) {
		writeErrorCode(w, http.StatusInternalServerError, "store_error", "")
		return
	}
	writeErrorCode(w, http.StatusInternalServerError, "internal_error", "")
}

// decodeJSON reads the body into v and validates it. It writes the error
// response itself and reports false on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "invalid_json", "request body must be a JSON object")
		return false
	}
	if err := validate.Struct(v); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "validation_error", validationMessage(err))
		return false
	}
	return true
}
