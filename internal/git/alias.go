package git

import (
	"context"
	"fmt"
	"path/filepath"
)

// git config exits with 5 when asked to unset a key that is not set.
const configKeyNotSet = 5

// Scope selects which git config file an alias is written to.
type Scope string

const (
	ScopeUser   Scope = "user"
	ScopeSystem Scope = "system"
	ScopeLocal  Scope = "local"
)

// ParseScope validates a scope name.
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case ScopeUser, ScopeSystem, ScopeLocal:
		return Scope(s), nil
	}
	return "", fmt.Errorf("invalid scope %q (must be user, system, or local)", s)
}

func (s Scope) flag() string {
	switch s {
	case ScopeSystem:
		return "--system"
	case ScopeLocal:
		return "--local"
	default:
		return "--global"
	}
}

// Alias maps "git <Name>" to "<program> <Command>".
type Alias struct {
	Name    string
	Command string
}

// Aliases are the git aliases installed by git-utils.
var Aliases = []Alias{
	{Name: "iswitch", Command: "switch"},
}

// Value is the git config value running alias through exe. Git wants
// forward slashes in shell aliases, also on Windows.
func (a Alias) Value(exe string) string {
	return fmt.Sprintf("!%s %s", filepath.ToSlash(exe), a.Command)
}

// InstallAlias makes "git <alias.Name>" run "<exe> <alias.Command>".
func (r *Repo) InstallAlias(ctx context.Context, scope Scope, exe string, alias Alias) error {
	return r.Run(ctx, "config", scope.flag(), "alias."+alias.Name, alias.Value(exe))
}

// AliasValue returns the value of a git alias in scope, if it is set there.
func (r *Repo) AliasValue(ctx context.Context, scope Scope, name string) (string, bool, error) {
	return r.TryQuery(ctx, "config", scope.flag(), "--get", "alias."+name)
}

// RemoveAlias deletes a git alias from scope. It reports false when the
// alias was not set there.
func (r *Repo) RemoveAlias(ctx context.Context, scope Scope, name string) (bool, error) {
	args := []string{"config", scope.flag(), "--unset", "alias." + name}
	out, err := r.run(ctx, args...)
	if err != nil {
		return false, err
	}
	switch out.exitCode {
	case 0:
		return true, nil
	case configKeyNotSet:
		return false, nil
	}
	return false, &Error{Args: args, ExitCode: out.exitCode, Stderr: out.stderr}
}
