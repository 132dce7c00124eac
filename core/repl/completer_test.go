package repl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aish-sh/aish/core/shell"
)

func newTestCompleter(t *testing.T) (*completer, string) {
	t.Helper()

	bin := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(bin, "greetx"), []byte("#!/bin/sh\n"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(bin, "notes.txt"), []byte("plain file"), 0o644))

	cwd := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(cwd, "alpha.txt"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(cwd, "beta.txt"), nil, 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(cwd, "docs"), 0o755))

	sh, err := shell.New(
		shell.WithStartDir(cwd),
		shell.WithEnviron([]string{"PATH=" + bin}),
	)
	require.NoError(t, err)

	return newCompleter(sh), cwd
}

func complete(c *completer, text string) []string {
	runes := []rune(text)
	completions, _ := c.Do(runes, len(runes))

	var got []string
	for _, comp := range completions {
		got = append(got, string(comp))
	}
	return got
}

func TestCompleterPathCommands(t *testing.T) {
	c, _ := newTestCompleter(t)

	assert.Equal(t, []string{"tx"}, complete(c, "gree"))
}

func TestCompleterSkipsNonExecutables(t *testing.T) {
	c, _ := newTestCompleter(t)

	assert.Empty(t, complete(c, "notes"))
}

func TestCompleterBuiltins(t *testing.T) {
	c, _ := newTestCompleter(t)

	got := complete(c, "ex")
	assert.Contains(t, got, "it")
	assert.Contains(t, got, "port")
}

func TestCompleterFiles(t *testing.T) {
	c, _ := newTestCompleter(t)

	assert.Equal(t, []string{"pha.txt"}, complete(c, "cat al"))
}

func TestCompleterDirectoriesGetSlash(t *testing.T) {
	c, _ := newTestCompleter(t)

	assert.Equal(t, []string{"cs/"}, complete(c, "cat do"))
}

func TestCompleterFilesInSubdirectory(t *testing.T) {
	c, cwd := newTestCompleter(t)
	require.NoError(t, os.WriteFile(filepath.Join(cwd, "docs", "readme.md"), nil, 0o644))

	assert.Equal(t, []string{"adme.md"}, complete(c, "cat docs/re"))
}

func TestCompleterNoMatches(t *testing.T) {
	c, _ := newTestCompleter(t)

	assert.Empty(t, complete(c, "cat zzz"))
}
