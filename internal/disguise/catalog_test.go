package disguise

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	cat := DefaultCatalog()

	assert.Contains(t, cat.Constructors, "URL")
	assert.Contains(t, cat.Functions, "fetch")
	assert.NotEmpty(t, cat.StackPatterns)
	assert.Equal(t, "Crypto", cat.Tags["crypto"])
	assert.Equal(t, "__njscore__", cat.InternalBinding)
	assert.Equal(t, "__njscore_priv__", cat.InternalAlias)
}

func TestHiddenSet(t *testing.T) {
	cat := DefaultCatalog()
	cat.HiddenProps = []string{"__debug_hook__"}

	hidden := cat.hiddenSet()
	assert.True(t, hidden["__debug_hook__"])
	assert.True(t, hidden["__njscore__"])
	assert.True(t, hidden["__njscore_priv__"])
	assert.Len(t, hidden, 3)
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	data := `
internal_binding: __host__
internal_alias: __host_priv__
hidden:
  - __trace__
functions:
  - fetch
  - btoa
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cat, err := LoadCatalog(path)
	require.NoError(t, err)

	// Overridden sections take effect.
	assert.Equal(t, "__host__", cat.InternalBinding)
	assert.Equal(t, "__host_priv__", cat.InternalAlias)
	assert.Equal(t, []string{"fetch", "btoa"}, cat.Functions)
	assert.Contains(t, cat.HiddenProps, "__trace__")

	// Untouched sections keep their defaults.
	assert.Contains(t, cat.Constructors, "URL")
	assert.NotEmpty(t, cat.StackPatterns)
}

func TestLoadCatalogMissingFile(t *testing.T) {
	_, err := LoadCatalog(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadCatalogInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("functions: {not: [a list"), 0o644))

	_, err := LoadCatalog(path)
	assert.Error(t, err)
}
