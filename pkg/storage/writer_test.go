package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colortrawl/pkg/colors"
)

func TestSaveCreatesParentsAndWritesCompactJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dist", "nested", "colors.json")
	w := NewWriter(path)

	records := []colors.Record{
		colors.NewRecord("2", "#FF5733", 3, 7),
		colors.NewRecord("1", "#000000", 0, 1),
	}
	require.NoError(t, w.Save(records))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		`[{"id":"2","color":"#FF5733","retweets":3,"favourites":7,"interactions":10},{"id":"1","color":"#000000","retweets":0,"favourites":1,"interactions":1}]`,
		string(data))
	assert.False(t, strings.Contains(string(data), "\n"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())
}

func TestSaveOverwritesPreviousRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "colors.json")
	w := NewWriter(path)

	require.NoError(t, w.Save([]colors.Record{
		colors.NewRecord("old-1", "#111111", 1, 1),
		colors.NewRecord("old-2", "#222222", 2, 2),
	}))
	require.NoError(t, w.Save([]colors.Record{
		colors.NewRecord("new", "#333333", 0, 0),
	}))

	loaded, err := w.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "new", loaded[0].ID)
}

func TestSaveNilWritesEmptyArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "colors.json")
	require.NoError(t, NewWriter(path).Save(nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, NewWriter(filepath.Join(dir, "colors.json")).Save(nil))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "colors.json", entries[0].Name())
}

func TestSaveFailsWhenParentIsAFile(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "dist")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	err := NewWriter(filepath.Join(blocker, "colors.json")).Save(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create output directory")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := NewWriter(filepath.Join(t.TempDir(), "missing.json")).Load()
	assert.Error(t, err)
}
