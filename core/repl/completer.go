package repl

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/aish-sh/aish/core/shell"
)

// completer implements readline.AutoCompleter. The first word of a line
// completes against builtins and executables on PATH; later words complete
// against the filesystem relative to the shell's working directory.
type completer struct {
	sh *shell.Shell

	mu   sync.Mutex
	cmds []string
}

func newCompleter(sh *shell.Shell) *completer {
	return &completer{sh: sh}
}

func (c *completer) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])
	start := strings.LastIndexAny(text, " \t") + 1
	word := text[start:]

	var candidates []string
	if start == 0 && !strings.Contains(word, "/") {
		candidates = c.commands()
	} else {
		candidates = c.files(word)
	}

	var completions [][]rune
	for _, cand := range candidates {
		if strings.HasPrefix(cand, word) {
			completions = append(completions, []rune(cand[len(word):]))
		}
	}
	return completions, len([]rune(word))
}

// commands lists builtins plus every executable on PATH. The scan is done
// once per session; PATH edits take effect on the next session.
func (c *completer) commands() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cmds != nil {
		return c.cmds
	}

	seen := make(map[string]bool)
	for name := range AllBuiltins {
		seen[name] = true
	}

	path, _ := c.sh.Getenv(shell.EnvPath)
	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			dir = "."
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			info, err := entry.Info()
			if err != nil || info.Mode()&0111 == 0 {
				continue
			}
			seen[entry.Name()] = true
		}
	}

	cmds := make([]string, 0, len(seen))
	for name := range seen {
		cmds = append(cmds, name)
	}
	sort.Strings(cmds)
	c.cmds = cmds
	return cmds
}

func (c *completer) files(word string) []string {
	dir, base := filepath.Split(word)

	searchDir := dir
	if searchDir == "" {
		searchDir = "."
	}
	if !filepath.IsAbs(searchDir) {
		searchDir = filepath.Join(c.sh.Getwd(), searchDir)
	}

	entries, err := os.ReadDir(searchDir)
	if err != nil {
		return nil
	}

	var out []string
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, base) {
			continue
		}
		candidate := dir + name
		if entry.IsDir() {
			candidate += "/"
		}
		out = append(out, candidate)
	}
	sort.Strings(out)
	return out
}
