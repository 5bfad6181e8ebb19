package filelock

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data.txt")

	require.NoError(t, WriteAtomic(path, []byte("one")))
	require.NoError(t, WriteAtomic(path, []byte("two")))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(content))
	assert.False(t, Exists(path+".tmp"), "temp file must be renamed away")
	assert.True(t, Exists(path))
}

func TestWith_SerializesExclusiveHolders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.txt")

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		holders int
		maxSeen int
	)
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := With(path, Exclusive, func() error {
				mu.Lock()
				holders++
				maxSeen = max(maxSeen, holders)
				mu.Unlock()

				mu.Lock()
				holders--
				mu.Unlock()
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.True(t, Exists(LockPath(path)))
}

func TestWith_PropagatesError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.txt")

	err := With(path, Shared, func() error { return os.ErrInvalid })

	assert.ErrorIs(t, err, os.ErrInvalid)
}
