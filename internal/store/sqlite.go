// internal/store/sqlite.go
//
// SQLite implementation of game.Store (plus users and admin reports, see
// users.go and reports.go).
//
// Characteristics:
//   - Opens the database with busy timeout, WAL journaling, foreign keys and
//     BEGIN IMMEDIATE transactions so writers serialise instead of failing.
//   - Applies the embedded migrations on open.
//   - AppendGuess is a compare-and-swap on sessions.guess_count; the guess row
//     and any completion are written in the same transaction.
//   - Timestamps are stored as fixed-width UTC text so they sort and compare
//     lexicographically.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/cryptix/assets"
	"github.com/robalobadob/cryptix/internal/game"
)

var _ game.Store = (*SQLite)(nil)

// tsLayout is RFC 3339 with a fixed nine-digit fraction.
const tsLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTS(t time.Time) string { return t.UTC().Format(tsLayout) }

func parseTS(s string) (time.Time, error) { return time.Parse(time.RFC3339Nano, s) }

// SQLite is a database/sql backed store.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if missing) the database at path and migrates it.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	dsn := path + "?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=1&_txlock=immediate"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", path, err)
	}
	if err := Migrate(ctx, db, assets.Migrations()); err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Info().Str("path", path).Msg("sqlite store ready")
	return &SQLite{db: db}, nil
}

// Close releases the underlying pool.
func (s *SQLite) Close() error { return s.db.Close() }

// DB exposes the handle for tooling.
func (s *SQLite) DB() *sql.DB { return s.db }

func constraintErr(err error, codes ...sqlite3.ErrNoExtended) bool {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	for _, c := range codes {
		if se.ExtendedCode == c {
			return true
		}
	}
	return false
}

// ------------------------------- words ---------------------------------------

// InsertWord adds value as an active word. It reports false if it already exists.
func (s *SQLite) InsertWord(ctx context.Context, value string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO words(value, active, created_at) VALUES (?, 1, ?)`,
		value, formatTS(time.Now()))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// SetWordActive toggles a word's eligibility.
func (s *SQLite) SetWordActive(ctx context.Context, value string, active bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE words SET active=? WHERE value=?`, active, value)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrWordNotFound
	}
	return nil
}

// DeleteUnusedWords removes every word no session references.
func (s *SQLite) DeleteUnusedWords(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM words WHERE id NOT IN (SELECT DISTINCT word_id FROM sessions)`)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// ListActiveWords returns the active words ordered by ID.
func (s *SQLite) ListActiveWords(ctx context.Context) ([]game.Word, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, value, active FROM words WHERE active=1 ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []game.Word
	for rows.Next() {
		var w game.Word
		if err := rows.Scan(&w.ID, &w.Value, &w.Active); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// ------------------------------ sessions -------------------------------------

const sessionColumns = `s.id, s.player_id, s.word_id, w.value, s.started_at, s.completed_at, s.outcome, s.guess_count`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(r rowScanner) (game.Session, error) {
	var (
		sess      game.Session
		started   string
		completed sql.NullString
		outcome   string
	)
	if err := r.Scan(&sess.ID, &sess.PlayerID, &sess.WordID, &sess.Target, &started, &completed, &outcome, &sess.Guesses); err != nil {
		return game.Session{}, err
	}
	t, err := parseTS(started)
	if err != nil {
		return game.Session{}, fmt.Errorf("session %s started_at: %w", sess.ID, err)
	}
	sess.StartedAt = t
	if completed.Valid {
		c, err := parseTS(completed.String)
		if err != nil {
			return game.Session{}, fmt.Errorf("session %s completed_at: %w", sess.ID, err)
		}
		sess.CompletedAt = &c
	}
	sess.Outcome = game.Outcome(outcome)
	return sess, nil
}

// CreateSession stores a new session with zero guesses.
func (s *SQLite) CreateSession(ctx context.Context, sess game.Session) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO sessions (id, player_id, word_id, started_at, completed_at, outcome, guess_count)
        VALUES (?, ?, ?, ?, NULL, '', 0)`,
		sess.ID, sess.PlayerID, sess.WordID, formatTS(sess.StartedAt))
	if constraintErr(err, sqlite3.ErrConstraintPrimaryKey, sqlite3.ErrConstraintUnique) {
		return ErrDuplicateSession
	}
	return err
}

// LoadSession returns the session joined with its target word.
func (s *SQLite) LoadSession(ctx context.Context, id string) (game.Session, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT `+sessionColumns+`
        FROM sessions s JOIN words w ON w.id = s.word_id
        WHERE s.id=?`, id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return game.Session{}, game.ErrSessionNotFound
	}
	return sess, err
}

// AppendGuess bumps guess_count from AttemptNumber-1 and inserts the guess in
// one transaction. When the update matches nothing the cause is diagnosed and
// the transaction rolled back.
func (s *SQLite) AppendGuess(ctx context.Context, w game.GuessWrite) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var completedAt any
	if w.CompletedAt != nil {
		completedAt = formatTS(*w.CompletedAt)
	}
	res, err := tx.ExecContext(ctx, `
        UPDATE sessions
        SET guess_count = guess_count + 1, completed_at = ?, outcome = ?
        WHERE id = ? AND guess_count = ? AND completed_at IS NULL`,
		completedAt, string(w.Outcome), w.Guess.SessionID, w.Guess.AttemptNumber-1)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return diagnoseAppend(ctx, tx, w.Guess.SessionID)
	}

	if _, err := tx.ExecContext(ctx, `
        INSERT INTO guesses (session_id, attempt_number, value, created_at, is_correct)
        VALUES (?, ?, ?, ?, ?)`,
		w.Guess.SessionID, w.Guess.AttemptNumber, w.Guess.Value, formatTS(w.Guess.CreatedAt), w.Guess.IsCorrect); err != nil {
		if constraintErr(err, sqlite3.ErrConstraintPrimaryKey, sqlite3.ErrConstraintUnique) {
			return game.ErrConcurrentGuess
		}
		return err
	}
	return tx.Commit()
}

func diagnoseAppend(ctx context.Context, tx *sql.Tx, sessionID string) error {
	var finished bool
	err := tx.QueryRowContext(ctx,
		`SELECT completed_at IS NOT NULL FROM sessions WHERE id=?`, sessionID).Scan(&finished)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return game.ErrSessionNotFound
	case err != nil:
		return err
	case finished:
		return game.ErrGameAlreadyFinished
	default:
		return game.ErrConcurrentGuess
	}
}

// CountGuesses returns the number of recorded attempts.
func (s *SQLite) CountGuesses(ctx context.Context, sessionID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT guess_count FROM sessions WHERE id=?`, sessionID).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, game.ErrSessionNotFound
	}
	return n, err
}

// ListGuesses returns the session's guesses in attempt order.
func (s *SQLite) ListGuesses(ctx context.Context, sessionID string) ([]game.Guess, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT session_id, attempt_number, value, created_at, is_correct
        FROM guesses WHERE session_id=? ORDER BY attempt_number`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []game.Guess
	for rows.Next() {
		var (
			g       game.Guess
			created string
		)
		if err := rows.Scan(&g.SessionID, &g.AttemptNumber, &g.Value, &created, &g.IsCorrect); err != nil {
			return nil, err
		}
		if g.CreatedAt, err = parseTS(created); err != nil {
			return nil, fmt.Errorf("guess %s/%d created_at: %w", g.SessionID, g.AttemptNumber, err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		if _, err := s.CountGuesses(ctx, sessionID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// CountSessionsStartedBetween counts sessions of playerID started in [from, to).
func (s *SQLite) CountSessionsStartedBetween(ctx context.Context, playerID string, from, to time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
        SELECT COUNT(1) FROM sessions
        WHERE player_id=? AND started_at >= ? AND started_at < ?`,
		playerID, formatTS(from), formatTS(to)).Scan(&n)
	return n, err
}

// RecentSessions returns up to limit sessions of playerID, newest first.
func (s *SQLite) RecentSessions(ctx context.Context, playerID string, limit int) ([]game.Session, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT `+sessionColumns+`
        FROM sessions s JOIN words w ON w.id = s.word_id
        WHERE s.player_id=?
        ORDER BY s.started_at DESC
        LIMIT ?`, playerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []game.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

// DeleteSession removes a session together with its guesses and any pointer to it.
func (s *SQLite) DeleteSession(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM guesses WHERE session_id=?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM active_sessions WHERE session_id=?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return game.ErrSessionNotFound
	}
	return tx.Commit()
}

// --------------------------- active pointers ---------------------------------

// SetActiveSession points playerID at sessionID.
func (s *SQLite) SetActiveSession(ctx context.Context, playerID, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO active_sessions (player_id, session_id) VALUES (?, ?)
        ON CONFLICT(player_id) DO UPDATE SET session_id = excluded.session_id`,
		playerID, sessionID)
	if constraintErr(err, sqlite3.ErrConstraintForeignKey) {
		return game.ErrSessionNotFound
	}
	return err
}

// ActiveSession returns the player's active session id.
func (s *SQLite) ActiveSession(ctx context.Context, playerID string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT session_id FROM active_sessions WHERE player_id=?`, playerID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", game.ErrNoActiveSession
	}
	return id, err
}

// ClearActiveSession drops the player's pointer.
func (s *SQLite) ClearActiveSession(ctx context.Context, playerID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM active_sessions WHERE player_id=?`, playerID)
	return err
}
