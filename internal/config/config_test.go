package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5175", c.Port)
	assert.Equal(t, ":5175", c.Addr())
	assert.Equal(t, "cryptix_token", c.CookieName)
	assert.Equal(t, 14*24*time.Hour, c.TokenTTL())
	assert.False(t, c.Production())

	r := c.Rules()
	assert.Equal(t, 5, r.MaxAttempts)
	assert.Equal(t, 3, r.MaxGamesPerDay)
	assert.Equal(t, 5, r.WordLength)

	loc, err := c.QuotaLocation()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MAX_ATTEMPTS", "6")
	t.Setenv("MAX_GAMES_PER_DAY", "10")
	t.Setenv("QUOTA_TZ", "UTC")
	t.Setenv("SEED_WORDS", "false")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 6, c.Rules().MaxAttempts)
	assert.Equal(t, 10, c.Rules().MaxGamesPerDay)
	assert.False(t, c.SeedWords)

	loc, err := c.QuotaLocation()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{name: "not an int", env: map[string]string{"MAX_ATTEMPTS": "five"}, wantErr: "parse env:"},
		{name: "zero attempts", env: map[string]string{"MAX_ATTEMPTS": "0"}, wantErr: "MAX_ATTEMPTS"},
		{name: "zero games", env: map[string]string{"MAX_GAMES_PER_DAY": "0"}, wantErr: "MAX_GAMES_PER_DAY"},
		{name: "bad zone", env: map[string]string{"QUOTA_TZ": "Not/AZone"}, wantErr: "QUOTA_TZ"},
		{name: "default secret in production", env: map[string]string{"NODE_ENV": "production"}, wantErr: "JWT_SECRET"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
