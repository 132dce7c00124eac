// Package repl implements the interactive read-eval-print loop: line
// editing and history via readline, tokenization, environment expansion,
// builtin dispatch, pipeline splitting and the natural-language assistant
// hook. All process execution is delegated to the shell facade.
package repl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/abiosoft/readline"
	shlex "github.com/anmitsu/go-shlex"

	"github.com/aish-sh/aish/core/assist"
	"github.com/aish-sh/aish/core/config"
	"github.com/aish-sh/aish/core/logger"
	"github.com/aish-sh/aish/core/shell"
)

const (
	EnvUser     = "USER"
	EnvHostname = "HOSTNAME"

	DefaultPrompt = `\u@\h:\w\$ `

	// queryPrefix marks a line as a natural-language query for the
	// assistant rather than a command to execute.
	queryPrefix = "#"
)

var errPipeSyntax = errors.New("syntax error near unexpected token `|'")

// REPL drives one interactive session over a shell facade.
type REPL struct {
	Shell    *shell.Shell
	Config   *config.Configuration
	Assist   assist.Client
	Log      *logger.SessionLogger
	Readline *readline.Instance

	out      io.Writer
	errw     io.Writer
	history  []string
	quit     bool
	exitCode int
}

// New builds a REPL over the given shell. The assistant client and session
// logger may be nil; the loop degrades to plain command execution.
func New(sh *shell.Shell, cfg *config.Configuration, client assist.Client, session *logger.SessionLogger) (*REPL, error) {
	r := &REPL{
		Shell:  sh,
		Config: cfg,
		Assist: client,
		Log:    session,
		errw:   os.Stderr,
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          r.Prompt(),
		HistoryFile:     cfg.HistoryPath(),
		AutoComplete:    newCompleter(sh),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}
	r.Readline = rl
	r.out = rl
	return r, nil
}

// Prompt renders the configured prompt template. The escapes \u, \h, \w
// and \$ expand to the user, host, working directory and privilege marker.
func (r *REPL) Prompt() string {
	prompt := DefaultPrompt
	if r.Config != nil && r.Config.Prompt != "" {
		prompt = r.Config.Prompt
	}

	user, _ := r.Shell.Getenv(EnvUser)
	host, _ := r.Shell.Getenv(EnvHostname)
	if host == "" {
		host, _ = os.Hostname()
	}

	pwd := r.Shell.Getwd()
	if home, ok := r.Shell.Getenv(shell.EnvHome); ok && home != "" && strings.HasPrefix(pwd, home) {
		pwd = "~" + strings.TrimPrefix(pwd, home)
	}

	prompt = strings.ReplaceAll(prompt, `\u`, user)
	prompt = strings.ReplaceAll(prompt, `\h`, host)
	prompt = strings.ReplaceAll(prompt, `\w`, pwd)

	if os.Geteuid() == 0 {
		prompt = strings.ReplaceAll(prompt, `\$`, "#")
	} else {
		prompt = strings.ReplaceAll(prompt, `\$`, "$")
	}

	return prompt
}

// Run reads and executes lines until exit or end of input. The returned
// error reflects the line editor, not command failures; use ExitCode for
// the status of the session.
func (r *REPL) Run() error {
	defer r.Readline.Close()

	if r.Log != nil {
		user, _ := r.Shell.Getenv(EnvUser)
		host, _ := os.Hostname()
		_ = r.Log.LogSessionStart(user, host)
		defer r.Log.LogSessionEnd()
	}

	ctx := context.Background()
	for !r.quit {
		r.Readline.SetPrompt(r.Prompt())
		line, err := r.Readline.Readline()

		switch {
		case err == io.EOF:
			return nil // Input closed, quit.

		case err == readline.ErrInterrupt:
			continue

		case err != nil:
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		r.history = append(r.history, line)
		r.handleLine(ctx, line)
	}
	return nil
}

// ExitCode reports the status requested by the exit builtin, or the last
// command's status when the session ended with end of input.
func (r *REPL) ExitCode() int {
	if r.quit {
		return r.exitCode
	}
	return r.Shell.LastExitCode()
}

func (r *REPL) handleLine(ctx context.Context, line string) {
	if strings.HasPrefix(line, queryPrefix) {
		r.handleQuery(ctx, strings.TrimSpace(strings.TrimPrefix(line, queryPrefix)))
		return
	}

	tokens, err := shlex.Split(line, true)
	if err != nil {
		fmt.Fprintln(r.errw, "aish: syntax error: unexpected end of file")
		return
	}
	if len(tokens) == 0 {
		return
	}
	for i, tok := range tokens {
		tokens[i] = r.Shell.Expand(tok)
	}

	stages, err := splitPipeline(tokens)
	if err != nil {
		fmt.Fprintf(r.errw, "aish: %v\n", err)
		return
	}

	// Builtins run in the shell's own process and only make sense alone;
	// inside a pipeline every stage is an external command.
	if len(stages) == 1 {
		if builtin, ok := AllBuiltins[stages[0][0]]; ok {
			code := builtin.Main(r, stages[0])
			r.logCommand(stages, code)
			return
		}
	}

	var res shell.Result
	if len(stages) == 1 {
		res, err = r.Shell.Execute(stages[0])
	} else {
		res, err = r.Shell.ExecutePipeline(stages)
	}
	if err != nil {
		fmt.Fprintf(r.errw, "aish: %v\n", err)
		return
	}

	if res.ErrorText != "" {
		fmt.Fprintf(r.errw, "aish: %s\n", res.ErrorText)
	}
	r.logCommand(stages, res.ExitCode)

	if !res.Ok() {
		r.explainFailure(ctx, stages, res)
	}
}

// splitPipeline splits a token stream on "|" into pipeline stages. A bare
// pipe with a missing command on either side is a syntax error.
func splitPipeline(tokens []string) ([][]string, error) {
	var stages [][]string
	var current []string
	for _, tok := range tokens {
		if tok != "|" {
			current = append(current, tok)
			continue
		}
		if len(current) == 0 {
			return nil, errPipeSyntax
		}
		stages = append(stages, current)
		current = nil
	}
	if len(current) == 0 {
		return nil, errPipeSyntax
	}
	return append(stages, current), nil
}

func (r *REPL) handleQuery(ctx context.Context, text string) {
	verbosity := 0
	var words []string
	for _, word := range strings.Fields(text) {
		switch word {
		case "-v":
			if verbosity < 1 {
				verbosity = 1
			}
		case "-vv":
			verbosity = 2
		default:
			words = append(words, word)
		}
	}

	query := strings.Join(words, " ")
	if query == "" {
		fmt.Fprintln(r.errw, "usage: # [-v|-vv] QUERY")
		return
	}
	if r.Assist == nil {
		fmt.Fprintf(r.errw, "aish: %v\n", assist.ErrNotConfigured)
		return
	}

	resp, err := r.Assist.GenerateCommand(ctx, query)
	if err != nil {
		fmt.Fprintf(r.errw, "aish: %v\n", err)
		return
	}

	render := assist.NewRenderer(r.out)
	render.Command(resp.Command)
	switch verbosity {
	case 1:
		render.Explanation(resp.Explanation)
	case 2:
		render.DetailedExplanation(resp.DetailedExplanation)
	}

	r.logQuery(query)
}

// explainFailure asks the assistant to explain a failed command. When the
// failure produced no diagnostic through the facade, the command is re-run
// with stderr captured to recover the message.
func (r *REPL) explainFailure(ctx context.Context, stages [][]string, res shell.Result) {
	if r.Config == nil || !r.Config.ExplainErrors || r.Assist == nil {
		return
	}

	text := res.ErrorText
	if text == "" {
		var buf bytes.Buffer
		stdio := shell.Stdio{In: strings.NewReader(""), Out: io.Discard, Err: &buf}
		if len(stages) == 1 {
			_, _ = r.Shell.ExecuteWith(stages[0], stdio)
		} else {
			_, _ = r.Shell.ExecutePipelineWith(stages, stdio)
		}
		text = strings.TrimSpace(buf.String())
	}
	if text == "" {
		return
	}

	fix, err := r.Assist.ExplainError(ctx, text)
	if err != nil {
		return
	}
	assist.NewRenderer(r.out).Fix(fix)
}

func (r *REPL) logCommand(stages [][]string, exitCode int) {
	if r.Log == nil {
		return
	}
	_ = r.Log.LogCommand(stages, exitCode)
}

func (r *REPL) logQuery(query string) {
	if r.Log == nil {
		return
	}
	hit := false
	if h, ok := r.Assist.(interface{ CacheHit() bool }); ok {
		hit = h.CacheHit()
	}
	_ = r.Log.LogQuery(query, hit)
}
