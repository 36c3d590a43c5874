// Package git runs git commands for git-utils.
package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
)

// Error is a git command that exited unsuccessfully.
type Error struct {
	Args     []string
	ExitCode int
	Stderr   string
}

func (e *Error) Error() string {
	msg := e.Stderr
	if msg == "" {
		msg = fmt.Sprintf("exit status %d", e.ExitCode)
	}
	return fmt.Sprintf("git %s: %s", strings.Join(e.Args, " "), msg)
}

// Repo runs git in a working directory.
type Repo struct {
	argv   []string
	dir    string
	env    []string
	logger *slog.Logger
}

// Option configures a Repo.
type Option func(*Repo)

// WithCommand replaces the git program and its leading arguments.
func WithCommand(argv []string) Option {
	return func(r *Repo) {
		if len(argv) > 0 {
			r.argv = argv
		}
	}
}

// WithEnv appends environment variables for every git invocation.
func WithEnv(env ...string) Option {
	return func(r *Repo) {
		r.env = append(r.env, env...)
	}
}

// WithLogger sets the logger that records each command.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Repo) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New returns a Repo that runs git in dir. An empty dir means the current
// working directory.
func New(dir string, opts ...Option) *Repo {
	r := &Repo{
		argv:   []string{"git"},
		dir:    dir,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Dir returns the working directory git runs in.
func (r *Repo) Dir() string {
	return r.dir
}

type output struct {
	exitCode int
	stdout   string
	stderr   string
}

// run executes git and reports its exit code. Only failures to start the
// process are returned as errors.
func (r *Repo) run(ctx context.Context, args ...string) (output, error) {
	r.logger.Debug("git command", "args", args, "dir", r.dir)

	full := append(append([]string{}, r.argv[1:]...), args...)
	cmd := exec.CommandContext(ctx, r.argv[0], full...) //nolint:gosec // args are built by this package
	cmd.Dir = r.dir
	if len(r.env) > 0 {
		cmd.Env = append(cmd.Environ(), r.env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := output{
		stdout: strings.TrimSpace(stdout.String()),
		stderr: strings.TrimSpace(stderr.String()),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return out, fmt.Errorf("run git: %w", err)
		}
		out.exitCode = exitErr.ExitCode()
	}

	r.logger.Debug("git finished", "args", args, "exit_code", out.exitCode)
	return out, nil
}

// Query runs git and returns its trimmed stdout. A non-zero exit is an
// *Error carrying stderr.
func (r *Repo) Query(ctx context.Context, args ...string) (string, error) {
	out, err := r.run(ctx, args...)
	if err != nil {
		return "", err
	}
	if out.exitCode != 0 {
		r.logger.Error("git failed", "args", args, "stderr", out.stderr)
		return "", &Error{Args: args, ExitCode: out.exitCode, Stderr: out.stderr}
	}
	return out.stdout, nil
}

// TryQuery is Query for commands that signal "absent" with exit status 1.
// It reports ok=false for status 1 and an error for any other failure.
func (r *Repo) TryQuery(ctx context.Context, args ...string) (string, bool, error) {
	out, err := r.run(ctx, args...)
	if err != nil {
		return "", false, err
	}
	switch out.exitCode {
	case 0:
		return out.stdout, true, nil
	case 1:
		return "", false, nil
	default:
		return "", false, &Error{Args: args, ExitCode: out.exitCode, Stderr: out.stderr}
	}
}

// QueryList runs git and splits stdout into lines.
func (r *Repo) QueryList(ctx context.Context, args ...string) ([]string, error) {
	out, err := r.Query(ctx, args...)
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

// QuerySuccess reports whether git exits with status 0, treating status 1
// as false.
func (r *Repo) QuerySuccess(ctx context.Context, args ...string) (bool, error) {
	_, ok, err := r.TryQuery(ctx, args...)
	return ok, err
}

// Run runs git for its side effects.
func (r *Repo) Run(ctx context.Context, args ...string) error {
	_, err := r.Query(ctx, args...)
	return err
}
