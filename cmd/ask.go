package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/aish-sh/aish/core/assist"
)

var (
	askExplain  bool
	askDetailed bool
)

// askCmd answers a one-shot natural-language query without starting an
// interactive session.
var askCmd = &cobra.Command{
	Use:   "ask QUERY...",
	Short: "Ask for a shell command in plain language.",
	Long:  `Translate a natural-language request into a shell command and print it.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		configuration, err := loadConfig()
		if err != nil {
			return err
		}

		client := newAssistClient(cmd.Context(), configuration)
		if client == nil {
			return assist.ErrNotConfigured
		}

		response, err := client.GenerateCommand(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}

		render := assist.NewRenderer(cmd.OutOrStdout())
		render.Command(response.Command)
		switch {
		case askDetailed:
			render.DetailedExplanation(response.DetailedExplanation)
		case askExplain:
			render.Explanation(response.Explanation)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().BoolVarP(&askExplain, "explain", "v", false, "print a short explanation of the command")
	askCmd.Flags().BoolVarP(&askDetailed, "detailed", "d", false, "print a detailed explanation of the command")
}
