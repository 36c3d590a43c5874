package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runger/git-utils/internal/git"
	"github.com/runger/git-utils/internal/logging"
)

var uninstallScope string

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the git aliases written by install",
	Args:  cobra.NoArgs,
	RunE:  runUninstall,
}

func init() {
	uninstallCmd.Flags().StringVar(&uninstallScope, "scope", string(git.ScopeUser), "Git config scope (user, system, local)")
}

func runUninstall(cmd *cobra.Command, args []string) (err error) {
	scope, err := git.ParseScope(uninstallScope)
	if err != nil {
		return err
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()
	defer func() { logging.LogOutcome(s.logger, "uninstall", err) }()

	out := cmd.OutOrStdout()
	for _, alias := range git.Aliases {
		removed, err := s.repo.RemoveAlias(cmd.Context(), scope, alias.Name)
		if err != nil {
			return fmt.Errorf("failed to remove alias %s: %w", alias.Name, err)
		}
		if removed {
			fmt.Fprintf(out, "Removed %s\n", keyStyle.Render("`git "+alias.Name+"`"))
		} else {
			fmt.Fprintf(out, "%s %s\n", keyStyle.Render("`git "+alias.Name+"`"), dimStyle.Render("was not installed"))
		}
	}
	return nil
}
