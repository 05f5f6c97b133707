package lockfile

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-stdlog/stdlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heyvito/walcursor/errors"
)

func makePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "lock")
}

func TestLockfile(t *testing.T) {
	t.Run("Acquire, Release", func(t *testing.T) {
		path := makePath(t)
		l, err := Acquire(path, stdlog.Discard)
		require.NoError(t, err)

		pid, err := readPID(path)
		require.NoError(t, err)
		assert.Equal(t, os.Getpid(), pid)

		require.NoError(t, l.Release())
		assert.NoFileExists(t, path)
	})

	t.Run("Concurrent lock", func(t *testing.T) {
		path := makePath(t)
		l, err := Acquire(path, stdlog.Discard)
		require.NoError(t, err)

		_, err = Acquire(path, stdlog.Discard)
		var lockErr errors.CannotAcquireLogLockError
		require.True(t, stderrors.As(err, &lockErr))
		assert.Equal(t, os.Getpid(), lockErr.PID)

		require.NoError(t, l.Release())

		l, err = Acquire(path, stdlog.Discard)
		require.NoError(t, err)
		require.NoError(t, l.Release())
	})

	t.Run("Stale lock", func(t *testing.T) {
		path := makePath(t)
		// Larger than any pid_max Linux accepts.
		require.NoError(t, writePID(path, 1<<23))

		l, err := Acquire(path, stdlog.Discard)
		require.NoError(t, err)
		pid, err := readPID(path)
		require.NoError(t, err)
		assert.Equal(t, os.Getpid(), pid)
		require.NoError(t, l.Release())
	})
}

func TestOwnerAlive(t *testing.T) {
	alive, err := ownerAlive(1 << 23)
	require.NoError(t, err)
	assert.False(t, alive)
}

func TestHolderPID(t *testing.T) {
	path := makePath(t)
	assert.Equal(t, 0, holderPID(path, stdlog.Discard))

	require.NoError(t, os.WriteFile(path, []byte{1, 2}, 0644))
	assert.Equal(t, 0, holderPID(path, stdlog.Discard))

	require.NoError(t, writePID(path, 4242))
	assert.Equal(t, 4242, holderPID(path, stdlog.Discard))
}
