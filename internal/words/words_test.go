package words

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	got, skipped := Normalize([]string{"crane", " Apple ", "CRANE", "toolong", "ab1de", "", "brave"}, 5)
	assert.Equal(t, []string{"CRANE", "APPLE", "BRAVE"}, got)
	assert.Equal(t, 3, skipped)
}

func TestLoadEmbedded(t *testing.T) {
	list, err := Load("", 5)
	require.NoError(t, err)
	assert.Len(t, list, 20)
	assert.Contains(t, list, "CRANE")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte("# custom\nhouse\n\nmouse\nbad!!\n"), 0o644))

	list, err := Load(path, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"HOUSE", "MOUSE"}, list)

	empty := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(empty, []byte("# nothing\nxx\n"), 0o644))
	_, err = Load(empty, 5)
	assert.ErrorIs(t, err, ErrEmptyCorpus)

	_, err = Load(filepath.Join(t.TempDir(), "missing.txt"), 5)
	assert.Error(t, err)
}

// fakeSeeder records inserts and reports a fixed number of pruned words.
type fakeSeeder struct {
	have   map[string]bool
	pruned int
	calls  []string
}

func (f *fakeSeeder) InsertWord(_ context.Context, v string) (bool, error) {
	f.calls = append(f.calls, "insert "+v)
	if f.have[v] {
		return false, nil
	}
	f.have[v] = true
	return true, nil
}

func (f *fakeSeeder) DeleteUnusedWords(context.Context) (int, error) {
	f.calls = append(f.calls, "prune")
	return f.pruned, nil
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	f := &fakeSeeder{have: map[string]bool{"CRANE": true}, pruned: 4}

	res, err := Seed(ctx, f, []string{"CRANE", "APPLE"}, false)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Inserted: 1, Existing: 1}, res)
	assert.NotContains(t, f.calls, "prune")

	f.calls = nil
	res, err = Seed(ctx, f, []string{"BRAVE"}, true)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Inserted: 1, Removed: 4}, res)
	assert.Equal(t, []string{"prune", "insert BRAVE"}, f.calls)
}
