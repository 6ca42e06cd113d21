package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	assert.True(t, DirExists(dir))
	assert.False(t, DirExists(file))
	assert.False(t, DirExists(filepath.Join(dir, "missing")))
	assert.False(t, DirExists(filepath.Join(file, "below")))
}

func TestFilesIn(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), nil, 0o644))

	files, err := FilesIn(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.txt"}, files)

	_, err = FilesIn(filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
