package assist

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
)

func renderOutput(t *testing.T, fn func(r *Renderer)) []byte {
	t.Helper()

	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	var buf bytes.Buffer
	fn(NewRenderer(&buf))
	return buf.Bytes()
}

func TestRendererGolden(t *testing.T) {
	g := goldie.New(t)

	g.Assert(t, "command", renderOutput(t, func(r *Renderer) {
		r.Command("find . -type f -size +100M")
	}))

	g.Assert(t, "explanation", renderOutput(t, func(r *Renderer) {
		r.Explanation("Lists every file.\nIncludes hidden ones.")
	}))

	g.Assert(t, "detailed", renderOutput(t, func(r *Renderer) {
		r.DetailedExplanation("**Overview**\n" +
			"Lists files in long form.\n" +
			"\n" +
			"* Purpose: show directory contents\n" +
			"* Notes: includes permissions and sizes\n")
	}))

	g.Assert(t, "fix", renderOutput(t, func(r *Renderer) {
		r.Fix("Problem: the file does not exist.\n" +
			"- check the path for typos\n" +
			"- create the file first")
	}))
}

func TestFixSingleLine(t *testing.T) {
	out := renderOutput(t, func(r *Renderer) {
		r.Fix("Just one line of advice.")
	})
	assert.Equal(t, "Just one line of advice.\n", string(out))
}

func TestWrap(t *testing.T) {
	lines := wrap("aa bb cc dd", 5)
	assert.Equal(t, []string{"aa bb", "cc dd"}, lines)

	// Words wider than the limit land on their own line rather than being
	// split.
	lines = wrap("short reallyquitelongword end", 10)
	assert.Equal(t, []string{"short", "reallyquitelongword", "end"}, lines)

	assert.Equal(t, []string{""}, wrap("", 10))
}

func TestDetailedExplanationNestedBullets(t *testing.T) {
	out := renderOutput(t, func(r *Renderer) {
		r.DetailedExplanation("- top level\n    - nested item")
	})

	assert.Contains(t, string(out), "  • top level\n")
	assert.Contains(t, string(out), "◦ nested item\n")
	assert.True(t, strings.HasPrefix(string(out), "Detailed Explanation:\n"))
}
