// internal/words/words.go
//
// Word corpus loading and seeding.
//
// Responsibilities:
//   - Load the corpus from WORDS_FILE or fall back to the embedded default list.
//   - Normalise entries: trimmed, uppercased, exactly WordLength ASCII letters,
//     de-duplicated in first-seen order.
//   - Seed a store's words table, optionally pruning words no session uses.
//
// File format: one word per line; blank lines and lines starting with '#' are
// ignored. Invalid entries are skipped and counted, never fatal.

package words

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/cryptix/assets"
)

// ErrEmptyCorpus is returned when loading yields no usable word.
var ErrEmptyCorpus = errors.New("words: corpus is empty")

// Load returns the normalised corpus from path, or the embedded list when path is empty.
func Load(path string, length int) ([]string, error) {
	var (
		raw []string
		err error
	)
	if path == "" {
		raw, err = assets.WordList()
	} else {
		raw, err = readWordFile(path)
	}
	if err != nil {
		return nil, err
	}

	list, skipped := Normalize(raw, length)
	if skipped > 0 {
		log.Warn().Int("skipped", skipped).Str("file", path).Msg("ignored invalid corpus entries")
	}
	if len(list) == 0 {
		return nil, ErrEmptyCorpus
	}
	return list, nil
}

func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open words file: %w", err)
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, s)
	}
	return out, sc.Err()
}

// Normalize uppercases and validates raw entries. It returns the kept words
// in first-seen order and how many entries were rejected (duplicates excluded).
func Normalize(raw []string, length int) ([]string, int) {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	skipped := 0
	for _, r := range raw {
		w := strings.ToUpper(strings.TrimSpace(r))
		if len(w) != length || !isAlpha(w) {
			skipped++
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out, skipped
}

// isAlpha reports whether s is all uppercase ASCII letters.
func isAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}

// Seeder is the slice of a store that seeding needs.
type Seeder interface {
	InsertWord(ctx context.Context, value string) (bool, error)
	DeleteUnusedWords(ctx context.Context) (int, error)
}

// SeedResult reports what Seed changed.
type SeedResult struct {
	Inserted int
	Existing int
	Removed  int
}

// Seed inserts every word of list into s. With force, words that no session
// references are deleted first, so the table converges on list while history
// stays intact.
func Seed(ctx context.Context, s Seeder, list []string, force bool) (SeedResult, error) {
	var res SeedResult
	if force {
		n, err := s.DeleteUnusedWords(ctx)
		if err != nil {
			return res, fmt.Errorf("delete unused words: %w", err)
		}
		res.Removed = n
	}
	for _, w := range list {
		ok, err := s.InsertWord(ctx, w)
		if err != nil {
			return res, fmt.Errorf("insert %s: %w", w, err)
		}
		if ok {
			res.Inserted++
		} else {
			res.Existing++
		}
	}
	log.Info().Int("inserted", res.Inserted).Int("existing", res.Existing).Int("removed", res.Removed).Msg("words seeded")
	return res, nil
}
