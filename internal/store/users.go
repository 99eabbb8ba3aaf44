package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/robalobadob/cryptix/internal/auth"
)

var _ auth.UserStore = (*SQLite)(nil)

// CreateUser inserts u. A clashing username is auth.ErrUsernameTaken.
func (s *SQLite) CreateUser(ctx context.Context, u auth.User) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO users (id, username, password_hash, role, created_at)
        VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.PasswordHash, string(u.Role), formatTS(u.CreatedAt))
	if constraintErr(err, sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey) {
		return auth.ErrUsernameTaken
	}
	return err
}

// FindUserByUsername is an exact, case-sensitive lookup.
func (s *SQLite) FindUserByUsername(ctx context.Context, username string) (auth.User, error) {
	return s.findUser(ctx, `username=?`, username)
}

// FindUserByID looks a user up by id.
func (s *SQLite) FindUserByID(ctx context.Context, id string) (auth.User, error) {
	return s.findUser(ctx, `id=?`, id)
}

func (s *SQLite) findUser(ctx context.Context, where string, arg any) (auth.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, role, created_at FROM users WHERE `+where, arg)
	var (
		u       auth.User
		role    string
		created string
	)
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &role, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.User{}, auth.ErrUserNotFound
	}
	if err != nil {
		return auth.User{}, err
	}
	if u.Role, err = auth.ParseRole(role); err != nil {
		return auth.User{}, fmt.Errorf("user %s: %w", u.ID, err)
	}
	if u.CreatedAt, err = parseTS(created); err != nil {
		return auth.User{}, fmt.Errorf("user %s created_at: %w", u.ID, err)
	}
	return u, nil
}

// PlayerSummary is one row of the admin player list.
type PlayerSummary struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
	Games     int       `json:"games"`
	Wins      int       `json:"wins"`
}

// ListPlayers returns every player account with lifetime game counts, by username.
func (s *SQLite) ListPlayers(ctx context.Context) ([]PlayerSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT u.id, u.username, u.created_at,
               COUNT(s.id),
               COALESCE(SUM(CASE WHEN s.outcome = 'won' THEN 1 ELSE 0 END), 0)
        FROM users u LEFT JOIN sessions s ON s.player_id = u.id
        WHERE u.role = 'player'
        GROUP BY u.id
        ORDER BY u.username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PlayerSummary
	for rows.Next() {
		var (
			p       PlayerSummary
			created string
		)
		if err := rows.Scan(&p.ID, &p.Username, &created, &p.Games, &p.Wins); err != nil {
			return nil, err
		}
		if p.CreatedAt, err = parseTS(created); err != nil {
			return nil, fmt.Errorf("user %s created_at: %w", p.ID, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
