package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	C = StatusCorrect
	P = StatusPresent
	A = StatusAbsent
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name   string
		guess  string
		target string
		want   []Status
	}{
		{name: "all correct", guess: "CRANE", target: "CRANE", want: []Status{C, C, C, C, C}},
		{name: "all absent", guess: "BUMPY", target: "CRANE", want: []Status{A, A, A, A, A}},
		{name: "trace against crane", guess: "TRACE", target: "CRANE", want: []Status{A, C, C, P, C}},
		{name: "extra duplicate in guess", guess: "LOLLY", target: "ALLOY", want: []Status{P, P, C, A, C}},
		{name: "duplicate E both present", guess: "SPEED", target: "ERASE", want: []Status{P, A, P, P, A}},
		{name: "exact match claims before present", guess: "EERIE", target: "THEME", want: []Status{P, A, A, A, C}},
		{name: "anagram", guess: "LEMON", target: "MELON", want: []Status{P, C, P, C, C}},
		{name: "length mismatch", guess: "ABCDE", target: "ABC", want: []Status{A, A, A, A, A}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.guess, tt.target))
		})
	}
}

// countCredited returns how many positions holding letter are correct or present.
func countCredited(guess string, res []Status, letter byte) int {
	n := 0
	for i := range res {
		if guess[i] == letter && res[i] != StatusAbsent {
			n++
		}
	}
	return n
}

func TestEvaluateNeverOverCredits(t *testing.T) {
	pairs := [][2]string{
		{"LOLLY", "ALLOY"},
		{"SPEED", "ERASE"},
		{"EEEEE", "THEME"},
		{"AAAAA", "BANAL"},
		{"ROBOT", "FLOOR"},
	}
	for _, p := range pairs {
		guess, target := p[0], p[1]
		res := Evaluate(guess, target)
		for c := byte('A'); c <= 'Z'; c++ {
			inTarget := 0
			for i := 0; i < len(target); i++ {
				if target[i] == c {
					inTarget++
				}
			}
			assert.LessOrEqual(t, countCredited(guess, res, c), inTarget, "%s/%s letter %c", guess, target, c)
		}
	}
	assert.Equal(t, 2, countCredited("LOLLY", Evaluate("LOLLY", "ALLOY"), 'L'))
}

func TestEvaluateDeterministic(t *testing.T) {
	first := Evaluate("SPEED", "ERASE")
	for i := 0; i < 50; i++ {
		require.Equal(t, first, Evaluate("SPEED", "ERASE"))
	}
}

func TestAllCorrectIffEqual(t *testing.T) {
	words := []string{"CRANE", "TRACE", "REACT", "ALLOY", "LOLLY", "EERIE"}
	for _, g := range words {
		for _, w := range words {
			assert.Equal(t, g == w, AllCorrect(Evaluate(g, w)), "%s vs %s", g, w)
		}
	}
	assert.False(t, AllCorrect(nil))
}

func TestNormalizeGuess(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "lowercase", raw: "crane", want: "CRANE"},
		{name: "surrounding space", raw: "  Trace\n", want: "TRACE"},
		{name: "symbols", raw: "ab1!", wantErr: true},
		{name: "too long", raw: "TOOLONG", wantErr: true},
		{name: "too short", raw: "AB", wantErr: true},
		{name: "digit", raw: "CR4NE", wantErr: true},
		{name: "non ascii", raw: "CRÄNE", wantErr: true},
		{name: "inner space", raw: "CR NE", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeGuess(tt.raw, 5)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidGuessFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
