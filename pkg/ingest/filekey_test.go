package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeFileKey(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.csv")
	require.NoError(t, os.WriteFile(path, []byte("region,revenue\nnorth,100\n"), 0o644))

	key1, err := ComputeFileKey(path)
	require.NoError(t, err)
	assert.Len(t, key1, 24)

	// Same content elsewhere yields the same key.
	other := filepath.Join(dir, "copy.csv")
	require.NoError(t, os.WriteFile(other, []byte("region,revenue\nnorth,100\n"), 0o644))
	key2, err := ComputeFileKey(other)
	require.NoError(t, err)
	assert.Equal(t, key1, key2)

	// Different content yields a different key.
	require.NoError(t, os.WriteFile(other, []byte("changed"), 0o644))
	key3, err := ComputeFileKey(other)
	require.NoError(t, err)
	assert.NotEqual(t, key1, key3)
}

func TestComputeFileKey_MissingFile(t *testing.T) {
	_, err := ComputeFileKey(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestNormalizePath(t *testing.T) {
	got := NormalizePath("Reports/Q1.PDF")
	assert.True(t, filepath.IsAbs(filepath.FromSlash(got)))
	assert.Contains(t, got, "reports/q1.pdf")
}
