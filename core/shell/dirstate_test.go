package shell

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDirState(t *testing.T) (*DirState, string) {
	t.Helper()

	root := t.TempDir()
	dirs, err := NewDirStateAt(root)
	require.NoError(t, err)
	return dirs, root
}

func TestChdirAbsolute(t *testing.T) {
	dirs, root := newTestDirState(t)

	sub := filepath.Join(root, "sub")
	require.NoError(t, os.Mkdir(sub, 0755))

	require.NoError(t, dirs.Chdir(sub))
	assert.Equal(t, sub, dirs.Getwd())
}

func TestChdirRelative(t *testing.T) {
	dirs, root := newTestDirState(t)

	require.NoError(t, os.MkdirAll(filepath.Join(root, "a", "b"), 0755))

	require.NoError(t, dirs.Chdir("a"))
	require.NoError(t, dirs.Chdir("b"))
	assert.Equal(t, filepath.Join(root, "a", "b"), dirs.Getwd())

	require.NoError(t, dirs.Chdir(".."))
	assert.Equal(t, filepath.Join(root, "a"), dirs.Getwd())
}

func TestChdirMissingLeavesStateUnchanged(t *testing.T) {
	dirs, root := newTestDirState(t)

	err := dirs.Chdir(filepath.Join(root, "does-not-exist"))
	assert.Error(t, err)
	assert.Equal(t, root, dirs.Getwd())

	_, ok := dirs.Previous()
	assert.False(t, ok)
}

func TestChdirNotADirectory(t *testing.T) {
	dirs, root := newTestDirState(t)

	file := filepath.Join(root, "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	assert.Error(t, dirs.Chdir(file))
	assert.Equal(t, root, dirs.Getwd())
}

func TestChdirPrevious(t *testing.T) {
	dirs, root := newTestDirState(t)

	a := filepath.Join(root, "a")
	b := filepath.Join(root, "b")
	require.NoError(t, os.Mkdir(a, 0755))
	require.NoError(t, os.Mkdir(b, 0755))

	require.NoError(t, dirs.Chdir(a))
	require.NoError(t, dirs.Chdir(b))

	// One slot of history: toggles to the immediately preceding directory,
	// not a full stack.
	require.NoError(t, dirs.Chdir(PreviousDirToken))
	assert.Equal(t, a, dirs.Getwd())

	require.NoError(t, dirs.Chdir(PreviousDirToken))
	assert.Equal(t, b, dirs.Getwd())
}

func TestChdirPreviousUnset(t *testing.T) {
	dirs, root := newTestDirState(t)

	assert.ErrorIs(t, dirs.Chdir(PreviousDirToken), ErrNoPreviousDirectory)
	assert.Equal(t, root, dirs.Getwd())
}

func TestFailedChdirDoesNotClobberPrevious(t *testing.T) {
	dirs, root := newTestDirState(t)

	a := filepath.Join(root, "a")
	require.NoError(t, os.Mkdir(a, 0755))
	require.NoError(t, dirs.Chdir(a))

	assert.Error(t, dirs.Chdir("nope"))

	prev, ok := dirs.Previous()
	assert.True(t, ok)
	assert.Equal(t, root, prev)
}
