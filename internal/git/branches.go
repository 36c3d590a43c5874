package git

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
)

const (
	headsPrefix   = "refs/heads/"
	remotesPrefix = "refs/remotes/"

	// pointerMarker replaces " -> " in reflog decorations so that symbolic
	// entries such as "HEAD -> main" can be recognised and skipped.
	pointerMarker = ">>>"

	recentReflogEntries = 100
)

// ErrDirtyWorktree means tracked files have uncommitted changes.
var ErrDirtyWorktree = errors.New("there are changes in the index or worktree which must be committed, reverted, or stashed before switching branches")

// IsClean reports whether the index and worktree have no changes to
// tracked files.
func (r *Repo) IsClean(ctx context.Context) (bool, error) {
	changes, err := r.QueryList(ctx, "status", "--porcelain=1", "--untracked-files=no", "--ignored=no")
	if err != nil {
		return false, err
	}
	return len(changes) == 0, nil
}

// Branches lists local branch names, or remote-tracking names such as
// "origin/main" when remote is set. Symbolic "*/HEAD" refs are dropped.
func (r *Repo) Branches(ctx context.Context, remote bool) ([]string, error) {
	refs, err := r.QueryList(ctx, "for-each-ref", "--format", "%(refname:lstrip=2)", refNamespace(remote))
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(refs, func(b string) bool {
		return b == "HEAD" || strings.HasSuffix(b, "/HEAD")
	}), nil
}

// RecentBranches returns branches in the order they were last checked out,
// most recent first, from the last hundred HEAD reflog entries.
func (r *Repo) RecentBranches(ctx context.Context, remote bool) ([]string, error) {
	format := "--format=format:%(decorate:prefix=,suffix=,pointer=" + pointerMarker + ",separator=%x2c)"
	entries, err := r.QueryList(ctx, "log", "--walk-reflogs", "--decorate=full", fmt.Sprintf("-n%d", recentReflogEntries), format)
	if err != nil {
		var gerr *Error
		// A repository without commits has no reflog yet.
		if errors.As(err, &gerr) && strings.Contains(gerr.Stderr, "does not have any commits") {
			return nil, nil
		}
		return nil, err
	}
	return parseRecentBranches(entries, refNamespace(remote)+"/"), nil
}

func parseRecentBranches(entries []string, prefix string) []string {
	var branches []string
	for _, entry := range entries {
		if strings.TrimSpace(entry) == "" || strings.Contains(entry, pointerMarker) {
			continue
		}
		for _, ref := range strings.Split(entry, ",") {
			name, ok := strings.CutPrefix(strings.TrimSpace(ref), prefix)
			if !ok || slices.Contains(branches, name) {
				continue
			}
			branches = append(branches, name)
		}
	}
	return branches
}

// OrderRecentFirst puts the recent branches that still exist first, in
// recency order, followed by the remaining branches in their original order.
func OrderRecentFirst(branches, recent []string) []string {
	ordered := make([]string, 0, len(branches))
	rest := slices.Clone(branches)
	for _, b := range recent {
		if i := slices.Index(rest, b); i >= 0 {
			ordered = append(ordered, b)
			rest = slices.Delete(rest, i, i+1)
		}
	}
	return append(ordered, rest...)
}

// RefExists reports whether a fully qualified ref exists.
func (r *Repo) RefExists(ctx context.Context, ref string) (bool, error) {
	return r.QuerySuccess(ctx, "show-ref", "--verify", "--quiet", ref)
}

// Upstream returns the short name of the branch's upstream, or ok=false
// when it has none.
func (r *Repo) Upstream(ctx context.Context, branch string) (string, bool, error) {
	out, err := r.Query(ctx, "for-each-ref", "--format", "%(upstream:short)", headsPrefix+branch)
	if err != nil {
		return "", false, err
	}
	if out == "" {
		return "", false, nil
	}
	return out, true, nil
}

// CurrentBranch returns the checked-out branch, or ok=false on a detached
// HEAD.
func (r *Repo) CurrentBranch(ctx context.Context) (string, bool, error) {
	out, ok, err := r.TryQuery(ctx, "symbolic-ref", "--quiet", "--short", "HEAD")
	if err != nil || !ok {
		return "", false, err
	}
	return out, true, nil
}

// Switch checks out an existing local branch.
func (r *Repo) Switch(ctx context.Context, branch string) error {
	return r.Run(ctx, "switch", branch)
}

// SwitchTrack creates local and checks it out, tracking upstream.
func (r *Repo) SwitchTrack(ctx context.Context, upstream, local string) error {
	return r.Run(ctx, "switch", "--track", upstream, "--create", local)
}

// SplitRemoteBranch splits "origin/feature/x" into "origin" and "feature/x".
func SplitRemoteBranch(name string) (remote, branch string, err error) {
	remote, branch, ok := strings.Cut(name, "/")
	if !ok || remote == "" || branch == "" {
		return "", "", fmt.Errorf("unexpected remote branch name %q", name)
	}
	return remote, branch, nil
}

func refNamespace(remote bool) string {
	if remote {
		return strings.TrimSuffix(remotesPrefix, "/")
	}
	return strings.TrimSuffix(headsPrefix, "/")
}
