package security

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFilePath(t *testing.T) {
	t.Run("rejects empty", func(t *testing.T) {
		_, err := ValidateFilePath("")
		assert.Error(t, err)
	})

	t.Run("rejects shell metacharacters", func(t *testing.T) {
		for _, p := range []string{"a;rm -rf", "x|y", "$(HOME)/x", "a`b`"} {
			_, err := ValidateFilePath(p)
			assert.Error(t, err, p)
		}
	})

	t.Run("cleans and absolutizes a missing file", func(t *testing.T) {
		dir := t.TempDir()
		got, err := ValidateFilePath(filepath.Join(dir, "sub", "..", "departments.yaml"))
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(got))
		assert.Equal(t, "departments.yaml", filepath.Base(got))
	})
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "departments.yaml")
	require.NoError(t, os.WriteFile(path, []byte("departments: []\n"), 0o600))

	data, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "departments: []\n", string(data))

	_, err = ReadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
