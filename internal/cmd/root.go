package cmd

import (
	"github.com/spf13/cobra"
)

var (
	logEnabled bool
	workingDir string
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "git-utils",
	Short: "interactive helpers for git",
	Long: `git-utils - interactive helpers for git
  - git-utils switch     pick a branch with a fuzzy filter and switch to it
  - git-utils install    alias the helpers as git subcommands`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&logEnabled, "log", false, "Write a debug log to the state directory")
	rootCmd.PersistentFlags().StringVarP(&workingDir, "working-dir", "C", "", "Run git in this directory")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/git-utils/config.yaml)")

	rootCmd.AddCommand(switchCmd)
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(uninstallCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
