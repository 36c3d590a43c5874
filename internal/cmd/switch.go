package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/runger/git-utils/internal/git"
	"github.com/runger/git-utils/internal/logging"
	"github.com/runger/git-utils/internal/picker"
)

var switchRemote bool

var errNoBranches = errors.New("no branches to switch to")

var switchCmd = &cobra.Command{
	Use:   "switch [branch]",
	Short: "Pick a branch and switch to it",
	Long: `Pick a branch with a fuzzy filter and switch to it.

Recently checked out branches are listed first. Type to filter, use the
arrow keys to move the selection, Enter to switch and Escape or Ctrl-C to
give up.

With --remote, remote-tracking branches are listed instead. Picking
origin/foo switches to the local branch foo, creating it to track
origin/foo when it does not exist yet.

Naming a branch skips the picker.

Examples:
  git-utils switch               # Pick a local branch
  git-utils switch --remote      # Pick a remote-tracking branch
  git-utils switch develop       # Switch without the picker`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSwitch,
}

func init() {
	switchCmd.Flags().BoolVarP(&switchRemote, "remote", "r", false, "List remote-tracking branches")
}

func runSwitch(cmd *cobra.Command, args []string) (err error) {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()
	defer func() { logging.LogOutcome(s.logger, "switch", err) }()

	ctx := cmd.Context()

	clean, err := s.repo.IsClean(ctx)
	if err != nil {
		return err
	}
	if !clean {
		return git.ErrDirtyWorktree
	}

	branches, err := listBranches(ctx, s.repo, switchRemote, s.cfg.Picker.RecentFirst)
	if err != nil {
		return err
	}
	if len(branches) == 0 {
		return errNoBranches
	}

	var selected string
	if len(args) == 1 {
		selected, err = matchBranch(args[0], branches)
	} else {
		selected, err = s.pickBranch(ctx, branches)
	}
	if err != nil {
		return err
	}
	s.logger.Info("branch selected", "branch", selected, "remote", switchRemote)

	var msg string
	if switchRemote {
		msg, err = switchToRemote(ctx, s.repo, selected)
	} else {
		msg, err = switchToLocal(ctx, s.repo, selected)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), msg)
	return nil
}

func listBranches(ctx context.Context, repo *git.Repo, remote, recentFirst bool) ([]string, error) {
	branches, err := repo.Branches(ctx, remote)
	if err != nil {
		return nil, err
	}
	if !recentFirst {
		return branches, nil
	}
	recent, err := repo.RecentBranches(ctx, remote)
	if err != nil {
		return nil, err
	}
	return git.OrderRecentFirst(branches, recent), nil
}

func matchBranch(name string, branches []string) (string, error) {
	if slices.Contains(branches, name) {
		return name, nil
	}
	if hint := git.ClosestBranch(name, branches); hint != "" {
		return "", fmt.Errorf("unknown branch %q, did you mean %q?", name, hint)
	}
	return "", fmt.Errorf("unknown branch %q", name)
}

// pickBranch shows the picker on the controlling terminal, or hands the
// list to fzf when that backend is configured and installed.
func (s *session) pickBranch(ctx context.Context, branches []string) (string, error) {
	list := picker.NewList[string](s.cfg.Picker.Prompt)
	for _, b := range branches {
		list.Insert(b, b)
	}
	opts := picker.Options{
		MaxRows: s.cfg.Picker.MaxRows,
		Logger:  s.logger,
	}

	if err := s.paths.EnsureDirectories(); err != nil {
		return "", fmt.Errorf("cannot create git-utils directories: %w", err)
	}
	unlock, err := acquireLock(s.paths.LockFile())
	if err != nil {
		return "", err
	}
	defer unlock()

	if s.cfg.Picker.Backend == "fzf" {
		if path := picker.FzfPath(); path != "" {
			return list.RunFzf(ctx, path, opts)
		}
		s.logger.Warn("fzf not found on PATH, using the builtin picker")
	}

	if err := checkTERM(); err != nil {
		return "", err
	}
	tty, err := picker.OpenTTY()
	if err != nil {
		return "", fmt.Errorf("the branch picker needs a terminal: %w", err)
	}
	defer tty.Close()

	opts.Profile = pickerProfile()
	return list.Run(tty, opts)
}

func switchToLocal(ctx context.Context, repo *git.Repo, branch string) (string, error) {
	current, ok, err := repo.CurrentBranch(ctx)
	if err != nil {
		return "", err
	}
	if ok && current == branch {
		return dimStyle.Render("Already on ") + branchStyle.Render(branch), nil
	}
	if err := repo.Switch(ctx, branch); err != nil {
		return "", err
	}
	return successStyle.Render("Switched to branch ") + branchStyle.Render(branch), nil
}

// switchToRemote switches to the local counterpart of a remote-tracking
// branch. An existing local branch must already track it.
func switchToRemote(ctx context.Context, repo *git.Repo, selected string) (string, error) {
	_, local, err := git.SplitRemoteBranch(selected)
	if err != nil {
		return "", err
	}

	exists, err := repo.RefExists(ctx, "refs/heads/"+local)
	if err != nil {
		return "", err
	}
	if !exists {
		if err := repo.SwitchTrack(ctx, selected, local); err != nil {
			return "", err
		}
		return successStyle.Render("Switched to new branch ") + branchStyle.Render(local) +
			dimStyle.Render(", tracking ") + branchStyle.Render(selected), nil
	}

	upstream, ok, err := repo.Upstream(ctx, local)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("branch %q already exists but does not track %q", local, selected)
	}
	if upstream != selected {
		return "", fmt.Errorf("branch %q already exists but tracks %q, not %q", local, upstream, selected)
	}

	if err := repo.Switch(ctx, local); err != nil {
		return "", err
	}
	return successStyle.Render("Switched to branch ") + branchStyle.Render(local) +
		dimStyle.Render(", tracking ") + branchStyle.Render(selected), nil
}

func checkTERM() error {
	if os.Getenv("TERM") == "dumb" {
		return errors.New("TERM=dumb is not supported by the branch picker")
	}
	return nil
}
