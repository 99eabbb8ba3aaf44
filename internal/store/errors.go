package store

import "errors"

// Store-level errors that are not part of the game domain.
var (
	ErrWordNotFound     = errors.New("word not found")
	ErrDuplicateSession = errors.New("session id already exists")
)
