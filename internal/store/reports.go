package store

import (
	"context"
	"time"

	"github.com/robalobadob/cryptix/internal/game"
)

// Counts backs the admin dashboard.
type Counts struct {
	Players     int `json:"players"`
	Admins      int `json:"admins"`
	Words       int `json:"words"`
	ActiveWords int `json:"activeWords"`
	Sessions    int `json:"sessions"`
}

// Counts returns the admin dashboard totals.
func (s *SQLite) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	err := s.db.QueryRowContext(ctx, `
        SELECT
            (SELECT COUNT(1) FROM users WHERE role = 'player'),
            (SELECT COUNT(1) FROM users WHERE role = 'admin'),
            (SELECT COUNT(1) FROM words),
            (SELECT COUNT(1) FROM words WHERE active = 1),
            (SELECT COUNT(1) FROM sessions)`).
		Scan(&c.Players, &c.Admins, &c.Words, &c.ActiveWords, &c.Sessions)
	return c, err
}

// DailyReport summarises the sessions started on one local calendar day.
type DailyReport struct {
	Date          string `json:"date"`
	PlayersPlayed int    `json:"playersPlayed"`
	Games         int    `json:"games"`
	Wins          int    `json:"wins"`
	Losses        int    `json:"losses"`
}

// DailyReport covers the day containing day in loc.
func (s *SQLite) DailyReport(ctx context.Context, day time.Time, loc *time.Location) (DailyReport, error) {
	from, to := game.DayBounds(day, loc)
	r := DailyReport{Date: game.DayKey(day, loc)}
	err := s.db.QueryRowContext(ctx, `
        SELECT COUNT(DISTINCT player_id),
               COUNT(1),
               COALESCE(SUM(CASE WHEN outcome = 'won' THEN 1 ELSE 0 END), 0),
               COALESCE(SUM(CASE WHEN outcome = 'lost' THEN 1 ELSE 0 END), 0)
        FROM sessions
        WHERE started_at >= ? AND started_at < ?`,
		formatTS(from), formatTS(to)).
		Scan(&r.PlayersPlayed, &r.Games, &r.Wins, &r.Losses)
	return r, err
}

// UserDay is one local day of a player's history.
type UserDay struct {
	Date         string `json:"date"`
	Games        int    `json:"games"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
	InProgress   int    `json:"inProgress"`
	TotalGuesses int    `json:"totalGuesses"`
}

// GameDetail is a single session as admins see it, target included.
type GameDetail struct {
	ID          string     `json:"id"`
	Word        string     `json:"word"`
	StartedAt   time.Time  `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	State       game.State `json:"state"`
	Guesses     []string   `json:"guesses"`
}

// UserReport is a player's per-day summary plus every game, newest first.
type UserReport struct {
	PlayerID string       `json:"playerId"`
	Username string       `json:"username"`
	Days     []UserDay    `json:"days"`
	Games    []GameDetail `json:"games"`
}

// UserReport builds the report for playerID, grouping days in loc.
// An unknown player yields auth.ErrUserNotFound.
func (s *SQLite) UserReport(ctx context.Context, playerID string, loc *time.Location) (UserReport, error) {
	u, err := s.FindUserByID(ctx, playerID)
	if err != nil {
		return UserReport{}, err
	}
	sessions, err := s.RecentSessions(ctx, playerID, 0)
	if err != nil {
		return UserReport{}, err
	}
	guesses, err := s.guessesByPlayer(ctx, playerID)
	if err != nil {
		return UserReport{}, err
	}

	r := UserReport{PlayerID: u.ID, Username: u.Username, Days: []UserDay{}, Games: make([]GameDetail, 0, len(sessions))}
	index := map[string]int{}
	for _, sess := range sessions {
		key := game.DayKey(sess.StartedAt, loc)
		i, ok := index[key]
		if !ok {
			i = len(r.Days)
			index[key] = i
			r.Days = append(r.Days, UserDay{Date: key})
		}
		d := &r.Days[i]
		d.Games++
		d.TotalGuesses += sess.Guesses
		switch sess.State() {
		case game.StateWon:
			d.Wins++
		case game.StateLost:
			d.Losses++
		default:
			d.InProgress++
		}

		g := guesses[sess.ID]
		if g == nil {
			g = []string{}
		}
		r.Games = append(r.Games, GameDetail{
			ID:          sess.ID,
			Word:        sess.Target,
			StartedAt:   sess.StartedAt,
			CompletedAt: sess.CompletedAt,
			State:       sess.State(),
			Guesses:     g,
		})
	}
	return r, nil
}

func (s *SQLite) guessesByPlayer(ctx context.Context, playerID string) (map[string][]string, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT g.session_id, g.value
        FROM guesses g JOIN sessions s ON s.id = g.session_id
        WHERE s.player_id = ?
        ORDER BY g.session_id, g.attempt_number`, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string][]string{}
	for rows.Next() {
		var id, v string
		if err := rows.Scan(&id, &v); err != nil {
			return nil, err
		}
		out[id] = append(out[id], v)
	}
	return out, rows.Err()
}

// PurgeSessionsBefore deletes sessions started before cutoff, with their
// guesses and pointers, and reports how many went.
func (s *SQLite) PurgeSessionsBefore(ctx context.Context, cutoff time.Time) (int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM sessions WHERE started_at < ?`, formatTS(cutoff))
	if err != nil {
		return 0, err
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, id := range ids {
		if err := s.DeleteSession(ctx, id); err != nil {
			return 0, err
		}
	}
	return len(ids), nil
}
