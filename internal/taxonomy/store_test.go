package taxonomy

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errSourceDown = errors.New("source down")

// flakySource serves the builtin taxonomy until failing is set
type flakySource struct {
	failing bool
	loads   int
}

func (f *flakySource) Load() (*Taxonomy, error) {
	f.loads++
	if f.failing {
		return nil, errSourceDown
	}

	return NewLoader("").Load()
}

func TestStore_ReloadSwapsSnapshot(t *testing.T) {
	src := &flakySource{}

	store, err := NewStore(src)
	require.NoError(t, err)

	first := store.Current()
	require.NotNil(t, first)

	require.NoError(t, store.Reload())

	second := store.Current()
	assert.NotSame(t, first, second)
	assert.Equal(t, 2, src.loads)

	// the old snapshot keeps working after the swap
	assert.True(t, first.Has(SetPlatforms))
}

func TestStore_FailedReloadKeepsPrevious(t *testing.T) {
	src := &flakySource{}

	store, err := NewStore(src)
	require.NoError(t, err)

	before := store.Current()
	src.failing = true

	err = store.Reload()
	require.ErrorIs(t, err, errSourceDown)
	assert.Same(t, before, store.Current())
}

func TestNewStore_InitialLoadFails(t *testing.T) {
	_, err := NewStore(&flakySource{failing: true})
	require.ErrorIs(t, err, errSourceDown)
}

func TestNewWatcher_RequiresDir(t *testing.T) {
	_, err := NewWatcher(nil, "")
	require.ErrorIs(t, err, ErrNoUserDir)
}

func TestWatcher_HotReload(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(NewLoader(dir))
	require.NoError(t, err)
	require.False(t, store.Current().Has("custom.hot"))

	w, err := NewWatcher(store, dir, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, w.Start())

	t.Cleanup(func() { _ = w.Stop() })

	data := `
version: "2025.10"
rulesets:
  - name: custom.hot
    rules:
      - id: a
        literals: ["hot"]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hot.yaml"), []byte(data), 0o600))

	assert.Eventually(t, func() bool {
		return store.Current().Has("custom.hot")
	}, 5*time.Second, 20*time.Millisecond)
}
