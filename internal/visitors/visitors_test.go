// internal/visitors/visitors_test.go
package visitors

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileStartsAtZero(t *testing.T) {
	c := Load(filepath.Join(t.TempDir(), "visitors.json"))
	assert.Equal(t, 0, c.Count())
}

func TestIncrementPersistsAcrossLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "visitors.json")

	c := Load(path)
	for i := 1; i <= 3; i++ {
		n, err := c.Increment()
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}

	reloaded := Load(path)
	assert.Equal(t, 3, reloaded.Count())
}

func TestLoadCorruptFileStartsAtZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "visitors.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	c := Load(path)
	assert.Equal(t, 0, c.Count())

	n, err := c.Increment()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
