package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/cryptix/internal/auth"
	"github.com/robalobadob/cryptix/internal/game"
)

func TestReports(t *testing.T) {
	ctx := context.Background()
	st := openTestDB(t)
	day := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	for _, u := range []auth.User{
		{ID: "p1", Username: "Alice1", Role: auth.RolePlayer},
		{ID: "p2", Username: "Bobby2", Role: auth.RolePlayer},
		{ID: "a1", Username: "Admin1", Role: auth.RoleAdmin},
	} {
		u.PasswordHash = "x"
		u.CreatedAt = day
		require.NoError(t, st.CreateUser(ctx, u))
	}

	won := day.Add(2 * time.Hour)
	lost := day.Add(3 * time.Hour)

	seedSession(t, st, "w", "p1", "CRANE", day.Add(time.Hour))
	require.NoError(t, st.AppendGuess(ctx, guessWrite("w", 1, "TRACE", nil, "")))
	require.NoError(t, st.AppendGuess(ctx, guessWrite("w", 2, "CRANE", &won, game.OutcomeWon)))

	seedSession(t, st, "l", "p2", "APPLE", day.Add(2*time.Hour))
	require.NoError(t, st.AppendGuess(ctx, guessWrite("l", 1, "BUMPY", &lost, game.OutcomeLost)))

	seedSession(t, st, "open", "p1", "APPLE", day.Add(5*time.Hour))
	seedSession(t, st, "yesterday", "p1", "CRANE", day.Add(-time.Hour))

	t.Run("counts", func(t *testing.T) {
		c, err := st.Counts(ctx)
		require.NoError(t, err)
		assert.Equal(t, Counts{Players: 2, Admins: 1, Words: 2, ActiveWords: 2, Sessions: 4}, c)
	})

	t.Run("daily", func(t *testing.T) {
		r, err := st.DailyReport(ctx, day.Add(12*time.Hour), time.UTC)
		require.NoError(t, err)
		assert.Equal(t, DailyReport{Date: "2026-05-01", PlayersPlayed: 2, Games: 3, Wins: 1, Losses: 1}, r)

		r, err = st.DailyReport(ctx, day.AddDate(0, 0, 5), time.UTC)
		require.NoError(t, err)
		assert.Zero(t, r.Games)
	})

	t.Run("user", func(t *testing.T) {
		r, err := st.UserReport(ctx, "p1", time.UTC)
		require.NoError(t, err)
		assert.Equal(t, "Alice1", r.Username)
		require.Len(t, r.Days, 2)
		assert.Equal(t, UserDay{Date: "2026-05-01", Games: 2, Wins: 1, InProgress: 1, TotalGuesses: 2}, r.Days[0])
		assert.Equal(t, UserDay{Date: "2026-04-30", Games: 1, InProgress: 1}, r.Days[1])

		require.Len(t, r.Games, 3)
		assert.Equal(t, "open", r.Games[0].ID)
		assert.Empty(t, r.Games[0].Guesses)
		assert.Equal(t, []string{"TRACE", "CRANE"}, r.Games[1].Guesses)
		assert.Equal(t, game.StateWon, r.Games[1].State)

		_, err = st.UserReport(ctx, "ghost", time.UTC)
		assert.ErrorIs(t, err, auth.ErrUserNotFound)
	})

	t.Run("players", func(t *testing.T) {
		ps, err := st.ListPlayers(ctx)
		require.NoError(t, err)
		require.Len(t, ps, 2)
		assert.Equal(t, "Alice1", ps[0].Username)
		assert.Equal(t, 3, ps[0].Games)
		assert.Equal(t, 1, ps[0].Wins)
		assert.Equal(t, "Bobby2", ps[1].Username)
		assert.Equal(t, 1, ps[1].Games)
	})

	t.Run("purge", func(t *testing.T) {
		n, err := st.PurgeSessionsBefore(ctx, day)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		_, err = st.LoadSession(ctx, "yesterday")
		assert.ErrorIs(t, err, game.ErrSessionNotFound)
		_, err = st.LoadSession(ctx, "w")
		assert.NoError(t, err)
	})
}
