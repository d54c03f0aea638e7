package files_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcontreras/payables/internal/files"
)

func TestNewName(t *testing.T) {
	name := files.NewName("Recibo Marzo.PDF")
	assert.True(t, strings.HasSuffix(name, ".pdf"))
	assert.NotEqual(t, files.NewName("Recibo Marzo.PDF"), name)

	// no extension is fine too
	assert.NotEmpty(t, files.NewName("receipt"))
}

func TestDisk(t *testing.T) {
	dir := t.TempDir()
	disk, err := files.NewDisk(filepath.Join(dir, "receipts"))
	require.NoError(t, err)

	write := func(name string) {
		t.Helper()
		path := filepath.Join(dir, "receipts", name)
		require.NoError(t, os.WriteFile(path, []byte("data"), 0o644))
	}

	t.Run("exists and delete", func(t *testing.T) {
		write("a.png")
		assert.True(t, disk.Exists("a.png"))

		require.NoError(t, disk.Delete("a.png"))
		assert.False(t, disk.Exists("a.png"))
	})

	t.Run("deleting a missing file is not an error", func(t *testing.T) {
		assert.NoError(t, disk.Delete("gone.png"))
	})

	t.Run("rejects path traversal", func(t *testing.T) {
		assert.Error(t, disk.Delete("../escape.png"))
		assert.Error(t, disk.Delete("nested/name.png"))
		assert.Error(t, disk.Delete(""))
		assert.False(t, disk.Exists("../escape.png"))
	})
}
