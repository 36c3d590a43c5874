package git

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// skipIfNoGit skips when git is unavailable or a surrounding hook has
// exported GIT_DIR, which would redirect every command.
func skipIfNoGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	if os.Getenv("GIT_DIR") != "" || os.Getenv("GIT_INDEX_FILE") != "" {
		t.Skip("skipping: running inside a git hook")
	}
}

// isolatedEnv keeps git away from the user's and the system's config.
func isolatedEnv(dir string) []string {
	return []string{
		"GIT_CONFIG_NOSYSTEM=1",
		"GIT_CONFIG_GLOBAL=" + filepath.Join(dir, ".gitconfig"),
		"HOME=" + dir,
		"GIT_CEILING_DIRECTORIES=" + filepath.Dir(dir),
		"GIT_AUTHOR_NAME=Test User",
		"GIT_AUTHOR_EMAIL=test@test.com",
		"GIT_COMMITTER_NAME=Test User",
		"GIT_COMMITTER_EMAIL=test@test.com",
	}
}

// createTestRepo creates an isolated repository with one commit on main.
func createTestRepo(t *testing.T) *Repo {
	t.Helper()
	skipIfNoGit(t)

	dir := t.TempDir()
	repo := New(dir, WithEnv(isolatedEnv(dir)...))

	mustGit(t, repo, "init", "-q")
	mustGit(t, repo, "symbolic-ref", "HEAD", "refs/heads/main")
	writeFile(t, dir, "test.txt", "test content")
	mustGit(t, repo, "add", ".")
	mustGit(t, repo, "commit", "-q", "-m", "initial")
	return repo
}

func mustGit(t *testing.T, repo *Repo, args ...string) string {
	t.Helper()
	out, err := repo.Query(context.Background(), args...)
	if err != nil && strings.Contains(err.Error(), "index.lock") {
		t.Skipf("skipping: git lock held: %v", err)
	}
	require.NoError(t, err, "git %v", args)
	return out
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func commitOn(t *testing.T, repo *Repo, branch, file string) {
	t.Helper()
	mustGit(t, repo, "switch", "-q", branch)
	writeFile(t, repo.Dir(), file, branch)
	mustGit(t, repo, "add", file)
	mustGit(t, repo, "commit", "-q", "-m", "on "+branch)
}

// addRemote configures origin and fakes remote-tracking refs for branches.
func addRemote(t *testing.T, repo *Repo, branches ...string) {
	t.Helper()
	mustGit(t, repo, "remote", "add", "origin", t.TempDir())
	for _, b := range branches {
		mustGit(t, repo, "update-ref", "refs/remotes/origin/"+b, "HEAD")
	}
	mustGit(t, repo, "symbolic-ref", "refs/remotes/origin/HEAD", "refs/remotes/origin/"+branches[0])
}

// --- Runner ---

func TestQuery_ReturnsTrimmedStdout(t *testing.T) {
	repo := createTestRepo(t)
	out, err := repo.Query(context.Background(), "rev-parse", "--abbrev-ref", "HEAD")
	require.NoError(t, err)
	assert.Equal(t, "main", out)
}

func TestQuery_FailureCarriesStderr(t *testing.T) {
	repo := createTestRepo(t)
	_, err := repo.Query(context.Background(), "rev-parse", "--verify", "no-such-ref")

	var gerr *Error
	require.True(t, errors.As(err, &gerr), "want *Error, got %T", err)
	assert.Equal(t, 128, gerr.ExitCode)
	assert.NotEmpty(t, gerr.Stderr)
	assert.Contains(t, gerr.Error(), "git rev-parse --verify no-such-ref")
}

func TestTryQuery_StatusOneIsAbsent(t *testing.T) {
	repo := createTestRepo(t)
	out, ok, err := repo.TryQuery(context.Background(), "config", "--get", "alias.none")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, out)

	_, _, err = repo.TryQuery(context.Background(), "rev-parse", "--verify", "no-such-ref")
	assert.Error(t, err)
}

func TestQueryList_Empty(t *testing.T) {
	repo := createTestRepo(t)
	lines, err := repo.QueryList(context.Background(), "for-each-ref", "refs/tags")
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestRun_MissingProgram(t *testing.T) {
	repo := New(t.TempDir(), WithCommand([]string{"/nonexistent/git"}))
	err := repo.Run(context.Background(), "status")
	require.Error(t, err)
	var gerr *Error
	assert.False(t, errors.As(err, &gerr))
}

func TestWithCommand_LeadingArgs(t *testing.T) {
	repo := createTestRepo(t)
	withAbbrev := New(repo.Dir(),
		WithEnv(isolatedEnv(repo.Dir())...),
		WithCommand([]string{"git", "-c", "core.abbrev=12"}),
	)
	out, err := withAbbrev.Query(context.Background(), "rev-parse", "--short", "HEAD")
	require.NoError(t, err)
	assert.Len(t, out, 12)
}

// --- Worktree ---

func TestIsClean(t *testing.T) {
	repo := createTestRepo(t)
	ctx := context.Background()

	clean, err := repo.IsClean(ctx)
	require.NoError(t, err)
	assert.True(t, clean)

	writeFile(t, repo.Dir(), "untracked.txt", "x")
	clean, err = repo.IsClean(ctx)
	require.NoError(t, err)
	assert.True(t, clean, "untracked files do not count")

	writeFile(t, repo.Dir(), "test.txt", "changed")
	clean, err = repo.IsClean(ctx)
	require.NoError(t, err)
	assert.False(t, clean)
}

// --- Branches ---

func TestBranches_Local(t *testing.T) {
	repo := createTestRepo(t)
	mustGit(t, repo, "branch", "feature/login")
	mustGit(t, repo, "branch", "develop")

	branches, err := repo.Branches(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, []string{"develop", "feature/login", "main"}, branches)
}

func TestBranches_RemoteDropsHEAD(t *testing.T) {
	repo := createTestRepo(t)
	addRemote(t, repo, "main", "feature")

	branches, err := repo.Branches(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, []string{"origin/feature", "origin/main"}, branches)
}

func TestRecentBranches(t *testing.T) {
	repo := createTestRepo(t)
	mustGit(t, repo, "branch", "a")
	mustGit(t, repo, "branch", "b")
	mustGit(t, repo, "branch", "untouched")
	commitOn(t, repo, "a", "a.txt")
	commitOn(t, repo, "b", "b.txt")
	mustGit(t, repo, "switch", "-q", "main")

	recent, err := repo.RecentBranches(context.Background(), false)
	require.NoError(t, err)
	if len(recent) == 0 {
		t.Skip("git does not support the %(decorate) log format")
	}
	assert.Equal(t, []string{"b", "a"}, recent)
}

func TestParseRecentBranches(t *testing.T) {
	entries := []string{
		"HEAD>>>refs/heads/main,refs/remotes/origin/main",
		"",
		"refs/heads/b",
		"tag: refs/tags/v1,refs/heads/a,refs/remotes/origin/a",
		"refs/heads/b",
		"refs/heads/feature/x",
	}
	assert.Equal(t, []string{"b", "a", "feature/x"}, parseRecentBranches(entries, "refs/heads/"))
	assert.Equal(t, []string{"origin/a"}, parseRecentBranches(entries, "refs/remotes/"))
}

func TestOrderRecentFirst(t *testing.T) {
	branches := []string{"a", "b", "c", "d"}
	recent := []string{"c", "gone", "a"}
	assert.Equal(t, []string{"c", "a", "b", "d"}, OrderRecentFirst(branches, recent))
	assert.Equal(t, []string{"a", "b", "c", "d"}, branches, "input is not modified")
	assert.Equal(t, branches, OrderRecentFirst(branches, nil))
}

func TestRefExists(t *testing.T) {
	repo := createTestRepo(t)
	ctx := context.Background()

	ok, err := repo.RefExists(ctx, "refs/heads/main")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.RefExists(ctx, "refs/heads/nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpstreamAndSwitchTrack(t *testing.T) {
	repo := createTestRepo(t)
	ctx := context.Background()
	addRemote(t, repo, "main", "feature")

	_, ok, err := repo.Upstream(ctx, "main")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.SwitchTrack(ctx, "origin/feature", "feature"))

	upstream, ok, err := repo.Upstream(ctx, "feature")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "origin/feature", upstream)

	current, ok, err := repo.CurrentBranch(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "feature", current)
}

func TestSwitch(t *testing.T) {
	repo := createTestRepo(t)
	ctx := context.Background()
	mustGit(t, repo, "branch", "develop")

	require.NoError(t, repo.Switch(ctx, "develop"))
	current, _, err := repo.CurrentBranch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "develop", current)

	err = repo.Switch(ctx, "missing")
	assert.Error(t, err)
}

func TestCurrentBranch_Detached(t *testing.T) {
	repo := createTestRepo(t)
	mustGit(t, repo, "switch", "-q", "--detach", "HEAD")

	_, ok, err := repo.CurrentBranch(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSplitRemoteBranch(t *testing.T) {
	remote, branch, err := SplitRemoteBranch("origin/feature/x")
	require.NoError(t, err)
	assert.Equal(t, "origin", remote)
	assert.Equal(t, "feature/x", branch)

	for _, bad := range []string{"main", "/main", "origin/"} {
		_, _, err := SplitRemoteBranch(bad)
		assert.Error(t, err, bad)
	}
}

// --- Aliases ---

func TestInstallAlias(t *testing.T) {
	repo := createTestRepo(t)
	ctx := context.Background()

	for _, scope := range []Scope{ScopeLocal, ScopeUser} {
		require.NoError(t, repo.InstallAlias(ctx, scope, "/opt/bin/git-utils", Aliases[0]))
	}

	for _, scope := range []Scope{ScopeLocal, ScopeUser} {
		value, ok, err := repo.AliasValue(ctx, scope, "iswitch")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "!/opt/bin/git-utils switch", value)
	}

	global, err := os.ReadFile(filepath.Join(repo.Dir(), ".gitconfig"))
	require.NoError(t, err)
	assert.Contains(t, string(global), "iswitch")
}

func TestParseScope(t *testing.T) {
	for _, s := range []string{"user", "system", "local"} {
		scope, err := ParseScope(s)
		require.NoError(t, err)
		assert.Equal(t, Scope(s), scope)
	}
	_, err := ParseScope("global")
	assert.Error(t, err)

	assert.Equal(t, "--global", ScopeUser.flag())
	assert.Equal(t, "--system", ScopeSystem.flag())
	assert.Equal(t, "--local", ScopeLocal.flag())
}

// --- Suggestions ---

func TestClosestBranch(t *testing.T) {
	branches := []string{"main", "develop", "feature/login", "release/1.0"}

	assert.Equal(t, "main", ClosestBranch("mian", branches))
	assert.Equal(t, "develop", ClosestBranch("devlop", branches))
	assert.Equal(t, "feature/login", ClosestBranch("feature/logn", branches))
	assert.Equal(t, "main", ClosestBranch("MAIN", branches))
	assert.Empty(t, ClosestBranch("completely-different", branches))
	assert.Empty(t, ClosestBranch("main", nil))
}

func TestRemoveAlias(t *testing.T) {
	repo := createTestRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.InstallAlias(ctx, ScopeLocal, "git-utils", Aliases[0]))

	removed, err := repo.RemoveAlias(ctx, ScopeLocal, "iswitch")
	require.NoError(t, err)
	assert.True(t, removed)

	_, ok, err := repo.AliasValue(ctx, ScopeLocal, "iswitch")
	require.NoError(t, err)
	assert.False(t, ok)

	removed, err = repo.RemoveAlias(ctx, ScopeLocal, "iswitch")
	require.NoError(t, err)
	assert.False(t, removed)
}
