package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aish-sh/aish/core/logger"
)

var logsCmd = &cobra.Command{
	Use:     "logs",
	Aliases: []string{"log"},
	Short:   "Print the session log.",
	Args:    cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		configuration, err := loadConfig()
		if err != nil {
			return err
		}

		fd, err := configuration.ReadSessionLog()
		if err != nil {
			return err
		}
		defer fd.Close()

		w := cmd.OutOrStdout()
		return logger.ReadJSONLinesLog(fd, func(le *logger.LogEntry) {
			ts := time.UnixMicro(le.TimestampMicros).UTC().Format(time.RFC3339)
			switch {
			case le.SessionStart != nil:
				fmt.Fprintf(w, "%s [%s] session start %s@%s\n", ts, le.SessionID, le.SessionStart.User, le.SessionStart.Host)
			case le.SessionEnd != nil:
				fmt.Fprintf(w, "%s [%s] session end\n", ts, le.SessionID)
			case le.Command != nil:
				var stages []string
				for _, argv := range le.Command.Stages {
					stages = append(stages, strings.Join(argv, " "))
				}
				fmt.Fprintf(w, "%s [%s] command (exit %d): %s\n", ts, le.SessionID, le.Command.ExitCode, strings.Join(stages, " | "))
			case le.Query != nil:
				fmt.Fprintf(w, "%s [%s] query: %s\n", ts, le.SessionID, le.Query.Text)
			}
		})
	},
}

func init() {
	rootCmd.AddCommand(logsCmd)
}
