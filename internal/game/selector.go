package game

import (
	"context"
	"crypto/rand"
	"math/big"
)

// RandIntn returns a uniform integer in [0, n). n is always > 0.
type RandIntn func(n int) int

// CryptoIntn is the default RandIntn, backed by crypto/rand.
func CryptoIntn(n int) int {
	nBig, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(nBig.Int64())
}

// Selector picks the secret word for a new session.
type Selector struct {
	words WordLister
	intn  RandIntn
}

// NewSelector builds a Selector. A nil intn means CryptoIntn.
func NewSelector(words WordLister, intn RandIntn) *Selector {
	if intn == nil {
		intn = CryptoIntn
	}
	return &Selector{words: words, intn: intn}
}

// Choose returns a uniformly random active word, or ErrNoWordsAvailable.
func (s *Selector) Choose(ctx context.Context) (Word, error) {
	ws, err := s.words.ListActiveWords(ctx)
	if err != nil {
		return Word{}, err
	}
	if len(ws) == 0 {
		return Word{}, ErrNoWordsAvailable
	}
	return ws[s.intn(len(ws))], nil
}
