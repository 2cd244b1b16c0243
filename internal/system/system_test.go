package system

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindPDFs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.pdf", "a.PDF", "notes.txt", "c.pdf"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.pdf"), 0o755))

	paths, err := FindPDFs(dir)
	require.NoError(t, err)

	want := []string{
		filepath.Join(dir, "a.PDF"),
		filepath.Join(dir, "b.pdf"),
		filepath.Join(dir, "c.pdf"),
	}
	assert.Equal(t, want, paths)
}

func TestFindPDFsEmpty(t *testing.T) {
	_, err := FindPDFs(t.TempDir())
	assert.Error(t, err)

	_, err = FindPDFs(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestWorkers(t *testing.T) {
	workers := Workers()
	assert.GreaterOrEqual(t, workers, 1)
}
