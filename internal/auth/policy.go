package auth

import (
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const (
	minUsernameLen = 5
	minPasswordLen = 5
)

// passwordSpecials are the symbols a password must contain at least one of.
const passwordSpecials = "$%*@"

// ValidUsername: at least 5 characters, starts with a letter, letters and
// digits only, with both upper and lower case present.
func ValidUsername(u string) bool {
	rs := []rune(u)
	if len(rs) < minUsernameLen || !unicode.IsLetter(rs[0]) {
		return false
	}
	var upper, lower bool
	for _, r := range rs {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
		default:
			return false
		}
	}
	return upper && lower
}

// ValidPassword: at least 5 characters with a letter, a digit and one of $ % * @.
func ValidPassword(p string) bool {
	if len([]rune(p)) < minPasswordLen {
		return false
	}
	var alpha, digit, special bool
	for _, r := range p {
		switch {
		case unicode.IsLetter(r):
			alpha = true
		case unicode.IsDigit(r):
			digit = true
		}
		for _, s := range passwordSpecials {
			if r == s {
				special = true
			}
		}
	}
	return alpha && digit && special
}

// HashPassword returns a bcrypt hash at the default cost (10).
func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

// CheckPassword is a bcrypt verifier.
func CheckPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}
