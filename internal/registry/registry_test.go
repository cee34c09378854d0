package registry

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestRegistry opens a registry in a temp dir and closes it on cleanup.
func openTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := Open(filepath.Join(t.TempDir(), "registry.db"))
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestLookupUnknownUser(t *testing.T) {
	r := openTestRegistry(t)

	_, err := r.Lookup(42)
	assert.ErrorIs(t, err, ErrNoDocument)
}

func TestSaveAndLookup(t *testing.T) {
	r := openTestRegistry(t)

	require.NoError(t, r.Save(42, "sheet-abc"))

	got, err := r.Lookup(42)
	require.NoError(t, err)
	assert.Equal(t, "sheet-abc", got)
}

func TestSaveReplacesExisting(t *testing.T) {
	r := openTestRegistry(t)

	require.NoError(t, r.Save(42, "sheet-old"))
	require.NoError(t, r.Save(42, "sheet-new"))

	got, err := r.Lookup(42)
	require.NoError(t, err)
	assert.Equal(t, "sheet-new", got)
}

func TestDelete(t *testing.T) {
	r := openTestRegistry(t)

	require.NoError(t, r.Save(42, "sheet-abc"))
	require.NoError(t, r.Delete(42))

	_, err := r.Lookup(42)
	assert.ErrorIs(t, err, ErrNoDocument)

	// Deleting again is a no-op.
	assert.NoError(t, r.Delete(42))
}

func TestCloseIsIdempotent(t *testing.T) {
	r, err := Open(filepath.Join(t.TempDir(), "registry.db"))
	require.NoError(t, err)

	assert.NoError(t, r.Close())
	assert.NoError(t, r.Close())
}
