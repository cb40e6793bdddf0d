package filex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureSubDir(t *testing.T) {
	tmp := t.TempDir()

	t.Run("absolute path", func(t *testing.T) {
		want := filepath.Join(tmp, "staging")
		got, err := EnsureSubDir(want)
		require.NoError(t, err)
		assert.Equal(t, want, got)

		info, err := os.Stat(got)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("relative path resolves under cwd", func(t *testing.T) {
		orig, err := os.Getwd()
		require.NoError(t, err)
		require.NoError(t, os.Chdir(tmp))
		t.Cleanup(func() { _ = os.Chdir(orig) })

		got, err := EnsureSubDir("downloads")
		require.NoError(t, err)
		assert.DirExists(t, got)
	})
}

func TestUniquePath(t *testing.T) {
	dir := t.TempDir()

	first := UniquePath(dir, "report.pdf")
	assert.Equal(t, filepath.Join(dir, "report.pdf"), first)

	require.NoError(t, os.WriteFile(first, []byte("x"), 0o600))
	second := UniquePath(dir, "report.pdf")
	assert.Equal(t, filepath.Join(dir, "report (1).pdf"), second)

	require.NoError(t, os.WriteFile(second, []byte("x"), 0o600))
	third := UniquePath(dir, "report.pdf")
	assert.Equal(t, filepath.Join(dir, "report (2).pdf"), third)
}

func TestUniquePath_StripsDirectories(t *testing.T) {
	dir := t.TempDir()
	got := UniquePath(dir, "/etc/../somewhere/report.pdf")
	assert.Equal(t, filepath.Join(dir, "report.pdf"), got)
}
