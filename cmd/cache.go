package cmd

import (
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/aish-sh/aish/core/assist"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the assistant's answer cache.",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all cached assistant answers.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		configuration, err := loadConfig()
		if err != nil {
			return err
		}

		assist.NewCache(afero.NewOsFs(), configuration.CachePath()).Clear()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}
