package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/cryptix/assets"
	"github.com/robalobadob/cryptix/internal/auth"
	"github.com/robalobadob/cryptix/internal/game"
)

func openTestDB(t *testing.T) *SQLite {
	t.Helper()
	st, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "data", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

// seedSession inserts word (if needed) and a session for player started at.
func seedSession(t *testing.T, st *SQLite, id, player, word string, at time.Time) game.Session {
	t.Helper()
	ctx := context.Background()
	_, err := st.InsertWord(ctx, word)
	require.NoError(t, err)
	ws, err := st.ListActiveWords(ctx)
	require.NoError(t, err)
	var wid int64
	for _, w := range ws {
		if w.Value == word {
			wid = w.ID
		}
	}
	require.NotZero(t, wid)
	s := game.Session{ID: id, PlayerID: player, WordID: wid, StartedAt: at}
	require.NoError(t, st.CreateSession(ctx, s))
	return s
}

func guessWrite(id string, attempt int, value string, done *time.Time, outcome game.Outcome) game.GuessWrite {
	return game.GuessWrite{
		Guess:       game.Guess{SessionID: id, AttemptNumber: attempt, Value: value, CreatedAt: time.Now()},
		CompletedAt: done,
		Outcome:     outcome,
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	st := openTestDB(t)
	var n int
	require.NoError(t, st.DB().QueryRow(`SELECT COUNT(1) FROM _migrations`).Scan(&n))
	assert.Equal(t, 1, n)

	require.NoError(t, Migrate(context.Background(), st.DB(), assets.Migrations()))
	require.NoError(t, st.DB().QueryRow(`SELECT COUNT(1) FROM _migrations`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestWords(t *testing.T) {
	ctx := context.Background()
	st := openTestDB(t)

	ok, err := st.InsertWord(ctx, "CRANE")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = st.InsertWord(ctx, "CRANE")
	require.NoError(t, err)
	assert.False(t, ok)
	_, err = st.InsertWord(ctx, "APPLE")
	require.NoError(t, err)

	require.NoError(t, st.SetWordActive(ctx, "APPLE", false))
	assert.ErrorIs(t, st.SetWordActive(ctx, "ZEBRA", false), ErrWordNotFound)

	ws, err := st.ListActiveWords(ctx)
	require.NoError(t, err)
	require.Len(t, ws, 1)
	assert.Equal(t, "CRANE", ws[0].Value)
	assert.True(t, ws[0].Active)

	seedSession(t, st, "s1", "p1", "CRANE", time.Now())
	n, err := st.DeleteUnusedWords(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "APPLE is unused, CRANE is referenced")
}

func TestSessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := openTestDB(t)
	at := time.Date(2026, 5, 1, 10, 0, 0, 123, time.UTC)
	seedSession(t, st, "s1", "p1", "CRANE", at)

	s, err := st.LoadSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "CRANE", s.Target)
	assert.True(t, at.Equal(s.StartedAt))
	assert.Nil(t, s.CompletedAt)
	assert.Equal(t, game.StateInProgress, s.State())

	_, err = st.LoadSession(ctx, "nope")
	assert.ErrorIs(t, err, game.ErrSessionNotFound)

	assert.ErrorIs(t, st.CreateSession(ctx, game.Session{ID: "s1", PlayerID: "p1", WordID: s.WordID, StartedAt: at}), ErrDuplicateSession)
}

func TestAppendGuessCAS(t *testing.T) {
	ctx := context.Background()
	st := openTestDB(t)
	seedSession(t, st, "s1", "p1", "CRANE", time.Now())

	require.NoError(t, st.AppendGuess(ctx, guessWrite("s1", 1, "TRACE", nil, "")))
	assert.ErrorIs(t, st.AppendGuess(ctx, guessWrite("s1", 1, "BUMPY", nil, "")), game.ErrConcurrentGuess)
	assert.ErrorIs(t, st.AppendGuess(ctx, guessWrite("s1", 3, "BUMPY", nil, "")), game.ErrConcurrentGuess)

	done := time.Now()
	require.NoError(t, st.AppendGuess(ctx, guessWrite("s1", 2, "CRANE", &done, game.OutcomeWon)))
	assert.ErrorIs(t, st.AppendGuess(ctx, guessWrite("s1", 3, "CRANE", nil, "")), game.ErrGameAlreadyFinished)
	assert.ErrorIs(t, st.AppendGuess(ctx, guessWrite("nope", 1, "CRANE", nil, "")), game.ErrSessionNotFound)

	n, err := st.CountGuesses(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	gs, err := st.ListGuesses(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, gs, 2)
	assert.Equal(t, "TRACE", gs[0].Value)
	assert.Equal(t, "CRANE", gs[1].Value)

	s, err := st.LoadSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, game.StateWon, s.State())
	assert.Equal(t, 2, s.Guesses)

	_, err = st.ListGuesses(ctx, "nope")
	assert.ErrorIs(t, err, game.ErrSessionNotFound)
}

func TestAppendGuessConcurrent(t *testing.T) {
	ctx := context.Background()
	st := openTestDB(t)
	seedSession(t, st, "s1", "p1", "CRANE", time.Now())

	const workers = 8
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- st.AppendGuess(ctx, guessWrite("s1", 1, "BUMPY", nil, ""))
		}()
	}
	wg.Wait()
	close(results)

	ok := 0
	for err := range results {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, game.ErrConcurrentGuess)
	}
	assert.Equal(t, 1, ok)

	gs, err := st.ListGuesses(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, gs, 1)
}

func TestCountSessionsStartedBetween(t *testing.T) {
	ctx := context.Background()
	st := openTestDB(t)
	day := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	seedSession(t, st, "a", "p1", "CRANE", day.Add(-time.Nanosecond))
	seedSession(t, st, "b", "p1", "CRANE", day)
	seedSession(t, st, "c", "p1", "CRANE", day.Add(23*time.Hour))
	seedSession(t, st, "d", "p2", "CRANE", day.Add(time.Hour))
	seedSession(t, st, "e", "p1", "CRANE", day.AddDate(0, 0, 1))

	from, to := game.DayBounds(day.Add(5*time.Hour), time.UTC)
	n, err := st.CountSessionsStartedBetween(ctx, "p1", from, to)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestActivePointer(t *testing.T) {
	ctx := context.Background()
	st := openTestDB(t)
	seedSession(t, st, "s1", "p1", "CRANE", time.Now())
	seedSession(t, st, "s2", "p1", "CRANE", time.Now())

	_, err := st.ActiveSession(ctx, "p1")
	assert.ErrorIs(t, err, game.ErrNoActiveSession)

	require.NoError(t, st.SetActiveSession(ctx, "p1", "s1"))
	require.NoError(t, st.SetActiveSession(ctx, "p1", "s2"))
	id, err := st.ActiveSession(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "s2", id)

	assert.ErrorIs(t, st.SetActiveSession(ctx, "p1", "missing"), game.ErrSessionNotFound)

	require.NoError(t, st.ClearActiveSession(ctx, "p1"))
	require.NoError(t, st.ClearActiveSession(ctx, "p1"))
	_, err = st.ActiveSession(ctx, "p1")
	assert.ErrorIs(t, err, game.ErrNoActiveSession)
}

func TestDeleteSession(t *testing.T) {
	ctx := context.Background()
	st := openTestDB(t)
	seedSession(t, st, "s1", "p1", "CRANE", time.Now())
	require.NoError(t, st.AppendGuess(ctx, guessWrite("s1", 1, "TRACE", nil, "")))
	require.NoError(t, st.SetActiveSession(ctx, "p1", "s1"))

	require.NoError(t, st.DeleteSession(ctx, "s1"))
	_, err := st.LoadSession(ctx, "s1")
	assert.ErrorIs(t, err, game.ErrSessionNotFound)
	_, err = st.ActiveSession(ctx, "p1")
	assert.ErrorIs(t, err, game.ErrNoActiveSession)

	var n int
	require.NoError(t, st.DB().QueryRow(`SELECT COUNT(1) FROM guesses WHERE session_id='s1'`).Scan(&n))
	assert.Zero(t, n)

	assert.ErrorIs(t, st.DeleteSession(ctx, "s1"), game.ErrSessionNotFound)
}

func TestRecentSessions(t *testing.T) {
	ctx := context.Background()
	st := openTestDB(t)
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"s1", "s2", "s3"} {
		seedSession(t, st, id, "p1", "CRANE", base.Add(time.Duration(i)*time.Hour))
	}
	seedSession(t, st, "other", "p2", "CRANE", base.Add(10*time.Hour))

	ss, err := st.RecentSessions(ctx, "p1", 2)
	require.NoError(t, err)
	require.Len(t, ss, 2)
	assert.Equal(t, "s3", ss[0].ID)
	assert.Equal(t, "s2", ss[1].ID)

	ss, err = st.RecentSessions(ctx, "p1", 0)
	require.NoError(t, err)
	assert.Len(t, ss, 3)
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	st := openTestDB(t)
	u := auth.User{ID: "u1", Username: "Alice1", PasswordHash: "x", Role: auth.RolePlayer, CreatedAt: time.Now()}
	require.NoError(t, st.CreateUser(ctx, u))

	dup := u
	dup.ID = "u2"
	assert.ErrorIs(t, st.CreateUser(ctx, dup), auth.ErrUsernameTaken)

	got, err := st.FindUserByUsername(ctx, "Alice1")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)
	assert.Equal(t, auth.RolePlayer, got.Role)

	_, err = st.FindUserByUsername(ctx, "alice1")
	assert.ErrorIs(t, err, auth.ErrUserNotFound)
	_, err = st.FindUserByID(ctx, "nope")
	assert.ErrorIs(t, err, auth.ErrUserNotFound)
}
