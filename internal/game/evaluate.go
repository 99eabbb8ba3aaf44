// internal/game/evaluate.go
//
// Guess evaluation: normalisation/validation of raw input and the
// duplicate-aware two-pass feedback algorithm.

package game

import "strings"

// Evaluate compares guess against target and returns one Status per letter.
//
// Pass 1:
//   - Mark exact matches as correct.
//   - Every target letter seeds a remaining-count; exact matches consume theirs.
//
// Pass 2:
//   - For each non-correct guess letter: if a remaining count for that letter is left,
//     mark present and decrement it; otherwise mark absent.
//
// A target letter is therefore never credited more times than it occurs.
// Both inputs are expected to be normalised (uppercase A–Z, equal length).
func Evaluate(guess, target string) []Status {
	n := len(guess)
	res := make([]Status, n)
	if len(target) != n {
		for i := range res {
			res[i] = StatusAbsent
		}
		return res
	}

	var counts [26]int
	for i := 0; i < n; i++ {
		if j := idx(target[i]); j >= 0 {
			counts[j]++
		}
	}

	for i := 0; i < n; i++ {
		if guess[i] == target[i] {
			res[i] = StatusCorrect
			if j := idx(guess[i]); j >= 0 {
				counts[j]--
			}
		}
	}

	for i := 0; i < n; i++ {
		if res[i] == StatusCorrect {
			continue
		}
		if j := idx(guess[i]); j >= 0 && counts[j] > 0 {
			res[i] = StatusPresent
			counts[j]--
		} else {
			res[i] = StatusAbsent
		}
	}
	return res
}

// NormalizeGuess trims and uppercases raw input, then checks it is exactly
// length ASCII letters. Anything else is ErrInvalidGuessFormat.
func NormalizeGuess(raw string, length int) (string, error) {
	g := strings.ToUpper(strings.TrimSpace(raw))
	if len(g) != length || !isAlpha(g) {
		return "", ErrInvalidGuessFormat
	}
	return g, nil
}

// AllCorrect reports whether every status is StatusCorrect.
func AllCorrect(s []Status) bool {
	if len(s) == 0 {
		return false
	}
	for _, x := range s {
		if x != StatusCorrect {
			return false
		}
	}
	return true
}

// idx maps an uppercase ASCII letter to 0..25, or -1.
func idx(b byte) int {
	if b < 'A' || b > 'Z' {
		return -1
	}
	return int(b - 'A')
}

// isAlpha checks that a string consists only of uppercase A–Z.
func isAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}
