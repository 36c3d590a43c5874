package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/runger/git-utils/internal/git"
	"github.com/runger/git-utils/internal/logging"
)

var installScope string

// executable resolves the binary the aliases point at.
var executable = os.Executable

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Alias git-utils commands as git subcommands",
	Long: `Install git aliases that run git-utils commands, so that
"git iswitch" runs "git-utils switch".

The aliases point at the absolute path of this binary. Run install again
after moving it.

Examples:
  git-utils install                 # Write to the user config (~/.gitconfig)
  git-utils install --scope=local   # Write to the current repository only
  git-utils install --scope=system  # Write to the system config`,
	Args: cobra.NoArgs,
	RunE: runInstall,
}

func init() {
	installCmd.Flags().StringVar(&installScope, "scope", string(git.ScopeUser), "Git config scope (user, system, local)")
}

func runInstall(cmd *cobra.Command, args []string) (err error) {
	scope, err := git.ParseScope(installScope)
	if err != nil {
		return err
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()
	defer func() { logging.LogOutcome(s.logger, "install", err) }()

	exe, err := executable()
	if err != nil {
		return fmt.Errorf("cannot locate the git-utils binary: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	for _, alias := range git.Aliases {
		name := keyStyle.Render("`git " + alias.Name + "`")
		target := keyStyle.Render("`git-utils " + alias.Command + "`")

		current, ok, err := s.repo.AliasValue(ctx, scope, alias.Name)
		if err != nil {
			return fmt.Errorf("failed to read alias %s: %w", alias.Name, err)
		}
		if ok && current == alias.Value(exe) {
			fmt.Fprintf(out, "%s already runs %s\n", name, target)
			continue
		}
		if ok {
			fmt.Fprintf(out, "%s Replacing %s, was %s\n", warnStyle.Render("Warning:"), name, dimStyle.Render(current))
		}

		if err := s.repo.InstallAlias(ctx, scope, exe, alias); err != nil {
			return fmt.Errorf("failed to install alias %s: %w", alias.Name, err)
		}
		fmt.Fprintf(out, "Aliasing %s to %s\n", name, target)
	}
	return nil
}
