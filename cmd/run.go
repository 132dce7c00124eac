package cmd

import (
	"context"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/aish-sh/aish/core/assist"
	"github.com/aish-sh/aish/core/config"
	"github.com/aish-sh/aish/core/logger"
	"github.com/aish-sh/aish/core/repl"
	"github.com/aish-sh/aish/core/shell"
)

// Environment variables consulted for the assistant API key, in order.
var apiKeyEnvVars = []string{"GOOGLE_API_KEY", "GEMINI_API_KEY"}

// runShell starts an interactive session. It is the root command's action.
func runShell(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	configuration, err := loadConfig()
	if err != nil {
		return err
	}

	sh, err := shell.New()
	if err != nil {
		return err
	}

	sessionLog := logger.NewNopLogger()
	if fd, err := configuration.OpenSessionLog(); err == nil {
		defer fd.Close()
		sessionLog = logger.NewJsonLinesLogRecorder(fd)
	}

	client := newAssistClient(cmd.Context(), configuration)

	session, err := repl.New(sh, configuration, client, sessionLog.NewSession())
	if err != nil {
		return err
	}
	if err := session.Run(); err != nil {
		return err
	}

	if code := session.ExitCode(); code != 0 {
		os.Exit(code)
	}
	return nil
}

// newAssistClient builds the Gemini client, or returns nil when no API key
// is configured. The session degrades to plain command execution.
func newAssistClient(ctx context.Context, configuration *config.Configuration) assist.Client {
	var apiKey string
	for _, name := range apiKeyEnvVars {
		if apiKey = os.Getenv(name); apiKey != "" {
			break
		}
	}

	cache := assist.NewCache(afero.NewOsFs(), configuration.CachePath())
	client, err := assist.NewGemini(ctx, apiKey, configuration, cache)
	if err != nil {
		return nil
	}
	return client
}
