package mmap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, contents []byte) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "data.db")
	require.NoError(t, os.WriteFile(path, contents, 0o644))
	return path
}

func TestOpen_SmallFileReadsWholesale(t *testing.T) {
	path := writeTempFile(t, []byte("hello world"))
	f, err := Open(path, DefaultThreshold)
	require.NoError(t, err)
	defer f.Close()

	assert.False(t, f.Mapped())
	assert.Equal(t, []byte("hello world"), f.Bytes())
}

func TestOpen_AboveThresholdMaps(t *testing.T) {
	path := writeTempFile(t, []byte("hello world"))
	f, err := Open(path, 4) // threshold smaller than file size forces mmap
	require.NoError(t, err)
	defer f.Close()

	assert.True(t, f.Mapped())
	assert.Equal(t, []byte("hello world"), f.Bytes())
}

func TestOpen_EmptyFile(t *testing.T) {
	path := writeTempFile(t, nil)
	f, err := Open(path, DefaultThreshold)
	require.NoError(t, err)
	defer f.Close()

	assert.False(t, f.Mapped())
	assert.Empty(t, f.Bytes())
}
