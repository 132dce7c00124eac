package repl

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pborman/getopt/v2"

	"github.com/aish-sh/aish/core/shell"
)

// AllBuiltins holds a list of all registered shell builtins.
var AllBuiltins = make(map[string]ShellBuiltin)

type ShellBuiltin interface {
	Main(r *REPL, args []string) int
}

type ShellBuiltinFunc func(r *REPL, args []string) int

func (f ShellBuiltinFunc) Main(r *REPL, args []string) int {
	return f(r, args)
}

var _ ShellBuiltin = (ShellBuiltinFunc)(nil)

// Cd is the cd shell builtin. Without an argument it changes to HOME; "-"
// toggles to the previous directory.
func Cd(r *REPL, args []string) int {
	switch len(args) {
	case 1:
		home, _ := r.Shell.Getenv(shell.EnvHome)
		if home == "" {
			fmt.Fprintln(r.errw, "cd: HOME not set")
			return 1
		}
		args = append(args, home)
		fallthrough
	case 2:
		if res := r.Shell.Cd(args[1]); !res.Ok() {
			fmt.Fprintln(r.errw, res.ErrorText)
			return res.ExitCode
		}
	default:
		fmt.Fprintf(r.errw, "%s: too many arguments\n", args[0])
		return 1
	}
	return 0
}

// Pwd prints the working directory.
func Pwd(r *REPL, args []string) int {
	fmt.Fprintln(r.out, r.Shell.Getwd())
	return 0
}

// Export sets environment variables. NAME=VALUE assigns; a bare NAME
// re-exports its current value. Without arguments the table is listed.
func Export(r *REPL, args []string) int {
	if len(args) == 1 {
		for _, kv := range r.Shell.Environ() {
			fmt.Fprintf(r.out, "declare -x %s\n", kv)
		}
		return 0
	}

	code := 0
	for _, arg := range args[1:] {
		name, value, assigned := strings.Cut(arg, "=")
		if !assigned {
			value, _ = r.Shell.Getenv(name)
		}
		if res := r.Shell.Setenv(name, value); !res.Ok() {
			fmt.Fprintf(r.errw, "export: `%s': not a valid identifier\n", arg)
			code = 1
		}
	}
	return code
}

func Unset(r *REPL, args []string) int {
	opts := getopt.New()
	helpOpt := opts.BoolLong("help", 'h', "show help and exit")

	if err := opts.Getopt(args, nil); err != nil || *helpOpt {
		w := r.errw
		if err != nil {
			fmt.Fprintln(w, err)
		}
		fmt.Fprintln(w, "usage: unset [NAME...]")
		fmt.Fprintln(w, "Unset environment variables.")
		if err != nil {
			return 1
		}
		return 0
	}

	code := 0
	for _, name := range opts.Args() {
		if res := r.Shell.Unsetenv(name); !res.Ok() {
			fmt.Fprintf(r.errw, "unset: `%s': not a valid identifier\n", name)
			code = 1
		}
	}
	return code
}

func History(r *REPL, args []string) int {
	opts := getopt.New()
	clear := opts.Bool('c', "clear the history by deleting all entries")
	helpOpt := opts.BoolLong("help", 'h', "show help and exit")

	if err := opts.Getopt(args, nil); err != nil || *helpOpt {
		w := r.errw
		if err != nil {
			fmt.Fprintln(w, err)
		}
		fmt.Fprintln(w, "Display or manipulate the history list.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Options:")
		opts.PrintOptions(w)
		if err != nil {
			return 1
		}
		return 0
	}

	if *clear {
		if r.Readline != nil {
			r.Readline.Operation.ResetHistory()
		}
		r.history = nil
		return 0
	}

	for i, line := range r.history {
		fmt.Fprintf(r.out, "% 5d  %s\n", i+1, line)
	}
	return 0
}

func Help(r *REPL, args []string) int {
	w := r.out
	fmt.Fprintln(w, "aish, an assisted shell")
	fmt.Fprintln(w, "Type a command to run it, or start a line with '#' to ask in plain language.")
	fmt.Fprintln(w, "Use '# -v QUERY' for a short explanation and '# -vv QUERY' for a detailed one.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Builtins:")
	fmt.Fprintln(w)

	var builtins []string
	for k := range AllBuiltins {
		builtins = append(builtins, k)
	}
	sort.Strings(builtins)

	fmt.Fprintln(w, strings.Join(builtins, "\n"))

	return 0
}

// Exit quits the shell, defaulting to the last command's status.
func Exit(r *REPL, args []string) int {
	code := r.Shell.LastExitCode()
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			fmt.Fprintf(r.errw, "exit: %s: numeric argument required\n", args[1])
			n = 2
		}
		code = n
	}
	r.quit = true
	r.exitCode = code
	return code
}

func init() {
	AllBuiltins["cd"] = ShellBuiltinFunc(Cd)
	AllBuiltins["pwd"] = ShellBuiltinFunc(Pwd)
	AllBuiltins["export"] = ShellBuiltinFunc(Export)
	AllBuiltins["unset"] = ShellBuiltinFunc(Unset)
	AllBuiltins["history"] = ShellBuiltinFunc(History)
	AllBuiltins["help"] = ShellBuiltinFunc(Help)
	AllBuiltins["exit"] = ShellBuiltinFunc(Exit)
}
