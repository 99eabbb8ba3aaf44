package game

import (
	"errors"
	"fmt"
)

// Domain errors returned by the engine. Callers match them with errors.Is.
var (
	ErrQuotaExceeded       = errors.New("daily game limit reached")
	ErrNoWordsAvailable    = errors.New("no words available")
	ErrSessionNotFound     = errors.New("session not found")
	ErrInvalidGuessFormat  = errors.New("invalid guess format")
	ErrGameAlreadyFinished = errors.New("game already finished")
	ErrNoActiveSession     = errors.New("no active session")
	ErrConcurrentGuess     = errors.New("guess raced with another submission")
)

var domainErrors = []error{
	ErrQuotaExceeded,
	ErrNoWordsAvailable,
	ErrSessionNotFound,
	ErrInvalidGuessFormat,
	ErrGameAlreadyFinished,
	ErrNoActiveSession,
	ErrConcurrentGuess,
}

// StoreError wraps an infrastructure failure reported by the Store.
// It is never one of the domain errors above.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("store %s: %v", e.Op, e.Err) }

func (e *StoreError) Unwrap() error { return e.Err }

// storeErr passes domain errors through untouched and wraps everything else.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, d := range domainErrors {
		if errors.Is(err, d) {
			return err
		}
	}
	return &StoreError{Op: op, Err: err}
}
