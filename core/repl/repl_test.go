package repl

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aish-sh/aish/core/assist"
	"github.com/aish-sh/aish/core/config"
	"github.com/aish-sh/aish/core/shell"
)

func newTestREPL(t *testing.T) (*REPL, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	var out, errw bytes.Buffer
	sh, err := shell.New(
		shell.WithStartDir(t.TempDir()),
		shell.WithStdio(shell.Stdio{In: strings.NewReader(""), Out: &out, Err: &errw}),
	)
	require.NoError(t, err)

	r := &REPL{
		Shell:  sh,
		Config: &config.Configuration{Model: "test", Prompt: DefaultPrompt},
		out:    &out,
		errw:   &errw,
	}
	return r, &out, &errw
}

func disableColor(t *testing.T) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })
}

type fakeClient struct {
	resp    *assist.CommandResponse
	fix     string
	queries []string
	errors  []string
	hit     bool
}

func (f *fakeClient) GenerateCommand(ctx context.Context, query string) (*assist.CommandResponse, error) {
	f.queries = append(f.queries, query)
	return f.resp, nil
}

func (f *fakeClient) ExplainError(ctx context.Context, errorMessage string) (string, error) {
	f.errors = append(f.errors, errorMessage)
	return f.fix, nil
}

func (f *fakeClient) CacheHit() bool {
	return f.hit
}

func TestSplitPipeline(t *testing.T) {
	cases := map[string]struct {
		tokens  []string
		want    [][]string
		wantErr bool
	}{
		"single": {
			tokens: []string{"echo", "hi"},
			want:   [][]string{{"echo", "hi"}},
		},
		"two stages": {
			tokens: []string{"echo", "hi", "|", "tr", "a-z", "A-Z"},
			want:   [][]string{{"echo", "hi"}, {"tr", "a-z", "A-Z"}},
		},
		"three stages": {
			tokens: []string{"a", "|", "b", "|", "c"},
			want:   [][]string{{"a"}, {"b"}, {"c"}},
		},
		"leading pipe":  {tokens: []string{"|", "cat"}, wantErr: true},
		"trailing pipe": {tokens: []string{"cat", "|"}, wantErr: true},
		"double pipe":   {tokens: []string{"a", "|", "|", "b"}, wantErr: true},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := splitPipeline(tc.tokens)
			if tc.wantErr {
				assert.ErrorIs(t, err, errPipeSyntax)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestHandleLineRunsCommand(t *testing.T) {
	r, out, _ := newTestREPL(t)

	r.handleLine(context.Background(), "echo hello")

	assert.Equal(t, "hello\n", out.String())
	assert.Equal(t, 0, r.Shell.LastExitCode())
}

func TestHandleLineRunsPipeline(t *testing.T) {
	r, out, _ := newTestREPL(t)

	r.handleLine(context.Background(), "echo hello | tr a-z A-Z")

	assert.Equal(t, "HELLO\n", out.String())
}

func TestHandleLineExpandsEnvironment(t *testing.T) {
	r, out, _ := newTestREPL(t)
	require.True(t, r.Shell.Setenv("GREETING", "hi there").Ok())

	r.handleLine(context.Background(), `echo "$GREETING"`)

	assert.Equal(t, "hi there\n", out.String())
}

func TestHandleLineCommandNotFound(t *testing.T) {
	r, _, errw := newTestREPL(t)

	r.handleLine(context.Background(), "definitely-not-a-command-xyz")

	assert.Contains(t, errw.String(), "command not found")
	assert.Equal(t, 127, r.Shell.LastExitCode())
}

func TestHandleLinePipeSyntaxError(t *testing.T) {
	r, _, errw := newTestREPL(t)

	r.handleLine(context.Background(), "echo hi |")

	assert.Contains(t, errw.String(), "syntax error")
}

func TestHandleLineUnterminatedQuote(t *testing.T) {
	r, _, errw := newTestREPL(t)

	r.handleLine(context.Background(), `echo "unterminated`)

	assert.Contains(t, errw.String(), "syntax error")
}

func TestHandleLineDispatchesBuiltin(t *testing.T) {
	r, out, _ := newTestREPL(t)

	r.handleLine(context.Background(), "pwd")

	assert.Equal(t, r.Shell.Getwd()+"\n", out.String())
}

func TestHandleLineQueryWithoutAssistant(t *testing.T) {
	r, _, errw := newTestREPL(t)

	r.handleLine(context.Background(), "# list all files")

	assert.Contains(t, errw.String(), "not configured")
}

func TestHandleLineQuery(t *testing.T) {
	disableColor(t)
	r, out, _ := newTestREPL(t)

	fake := &fakeClient{resp: &assist.CommandResponse{
		Command:     "ls -la",
		Explanation: "Lists all files in long form.",
	}}
	r.Assist = fake

	r.handleLine(context.Background(), "# list all files")

	assert.Equal(t, []string{"list all files"}, fake.queries)
	assert.Contains(t, out.String(), "ls -la")
	assert.NotContains(t, out.String(), "Explanation:")
}

func TestHandleLineQueryVerbose(t *testing.T) {
	disableColor(t)
	r, out, _ := newTestREPL(t)

	fake := &fakeClient{resp: &assist.CommandResponse{
		Command:     "ls -la",
		Explanation: "Lists all files in long form.",
	}}
	r.Assist = fake

	r.handleLine(context.Background(), "# -v list all files")

	assert.Equal(t, []string{"list all files"}, fake.queries)
	assert.Contains(t, out.String(), "Explanation:")
	assert.Contains(t, out.String(), "Lists all files in long form.")
}

func TestHandleLineQueryDetailed(t *testing.T) {
	disableColor(t)
	r, out, _ := newTestREPL(t)

	fake := &fakeClient{resp: &assist.CommandResponse{
		Command:             "ls -la",
		DetailedExplanation: "**Overview**\nLists files.\n\n* -l: long form\n* -a: hidden files\n",
	}}
	r.Assist = fake

	r.handleLine(context.Background(), "# list all files -vv")

	assert.Contains(t, out.String(), "Detailed Explanation:")
	assert.Contains(t, out.String(), "• -l: long form")
}

func TestHandleLineQueryEmpty(t *testing.T) {
	r, _, errw := newTestREPL(t)
	r.Assist = &fakeClient{}

	r.handleLine(context.Background(), "# -v")

	assert.Contains(t, errw.String(), "usage:")
}

func TestHandleLineExplainsFailure(t *testing.T) {
	disableColor(t)
	r, out, _ := newTestREPL(t)
	r.Config.ExplainErrors = true

	fake := &fakeClient{fix: "Problem: boom.\n- check the boom\n"}
	r.Assist = fake

	r.handleLine(context.Background(), "sh -c 'echo boom >&2; exit 3'")

	require.Len(t, fake.errors, 1)
	assert.Contains(t, fake.errors[0], "boom")
	assert.Contains(t, out.String(), "How to fix:")
}

func TestHandleLineNoExplainOnSuccess(t *testing.T) {
	r, _, _ := newTestREPL(t)
	r.Config.ExplainErrors = true

	fake := &fakeClient{}
	r.Assist = fake

	r.handleLine(context.Background(), "true")

	assert.Empty(t, fake.errors)
}

func TestPrompt(t *testing.T) {
	r, _, _ := newTestREPL(t)
	require.True(t, r.Shell.Setenv(EnvUser, "alice").Ok())
	require.True(t, r.Shell.Setenv(EnvHostname, "box").Ok())
	require.True(t, r.Shell.Setenv(shell.EnvHome, r.Shell.Getwd()).Ok())

	prompt := r.Prompt()

	assert.True(t, strings.HasPrefix(prompt, "alice@box:~"), "got prompt %q", prompt)
}

func TestPromptOutsideHome(t *testing.T) {
	r, _, _ := newTestREPL(t)
	require.True(t, r.Shell.Setenv(EnvUser, "alice").Ok())
	require.True(t, r.Shell.Setenv(EnvHostname, "box").Ok())
	require.True(t, r.Shell.Setenv(shell.EnvHome, "/nonexistent/home").Ok())

	prompt := r.Prompt()

	assert.Contains(t, prompt, r.Shell.Getwd())
	assert.NotContains(t, prompt, "~")
}
