//go:build !windows

// Package expect provides terminal session testing utilities using go-expect.
//
// It runs a command on a pseudo terminal that becomes the command's
// controlling terminal, so programs that open /dev/tty can be driven with
// keystrokes and checked against what they draw.
package expect

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sync"
	"syscall"
	"testing"
	"time"

	expect "github.com/Netflix/go-expect"
	"github.com/creack/pty"
)

// Key constants for special keys (ANSI escape sequences)
const (
	KeyRight    = "\x1b[C"
	KeyLeft     = "\x1b[D"
	KeyUp       = "\x1b[A"
	KeyDown     = "\x1b[B"
	KeyPageDown = "\x1b[6~"
	KeyEscape   = "\x1b"
	KeyEnter    = "\r"
	KeyCtrlC    = "\x03"
	KeyCtrlH    = "\x08"
)

// Session is a command running on a pseudo terminal.
type Session struct {
	Console *expect.Console
	Timeout time.Duration
	cmd     *exec.Cmd
	done    chan struct{}
	waitErr error
}

// SessionOption configures a Session.
type SessionOption func(*sessionConfig)

type sessionConfig struct {
	timeout    time.Duration
	env        []string
	dir        string
	rows, cols uint16
	showOutput bool
}

// WithTimeout sets the default timeout for expect operations.
func WithTimeout(d time.Duration) SessionOption {
	return func(c *sessionConfig) {
		c.timeout = d
	}
}

// WithEnv adds environment variables to the session.
func WithEnv(env ...string) SessionOption {
	return func(c *sessionConfig) {
		c.env = append(c.env, env...)
	}
}

// WithDir sets the working directory of the command.
func WithDir(dir string) SessionOption {
	return func(c *sessionConfig) {
		c.dir = dir
	}
}

// WithSize sets the terminal size.
func WithSize(rows, cols uint16) SessionOption {
	return func(c *sessionConfig) {
		c.rows, c.cols = rows, cols
	}
}

// WithOutput enables output to stdout for debugging.
func WithOutput(show bool) SessionOption {
	return func(c *sessionConfig) {
		c.showOutput = show
	}
}

// Start runs name with args on a fresh pseudo terminal.
func Start(name string, args []string, opts ...SessionOption) (*Session, error) {
	cfg := &sessionConfig{
		timeout: 5 * time.Second,
		rows:    24,
		cols:    80,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	var consoleOpts []expect.ConsoleOpt
	consoleOpts = append(consoleOpts, expect.WithDefaultTimeout(cfg.timeout))
	if cfg.showOutput {
		consoleOpts = append(consoleOpts, expect.WithStdout(os.Stdout))
	}

	console, err := expect.NewConsole(consoleOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create console: %w", err)
	}
	if err := pty.Setsize(console.Tty(), &pty.Winsize{Rows: cfg.rows, Cols: cfg.cols}); err != nil {
		console.Close()
		return nil, fmt.Errorf("failed to size console: %w", err)
	}

	cmd := exec.Command(name, args...) //nolint:gosec // G204: name is from test code
	cmd.Stdin = console.Tty()
	cmd.Stdout = console.Tty()
	cmd.Stderr = console.Tty()
	cmd.Dir = cfg.dir
	// A new session with the pty as controlling terminal makes /dev/tty
	// resolve to it.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true, Setctty: true}
	cmd.Env = append(os.Environ(), cfg.env...)
	cmd.Env = append(cmd.Env, "TERM=xterm-256color")

	if err := cmd.Start(); err != nil {
		console.Close()
		return nil, fmt.Errorf("failed to start %s: %w", name, err)
	}

	s := &Session{
		Console: console,
		Timeout: cfg.timeout,
		cmd:     cmd,
		done:    make(chan struct{}),
	}
	go func() {
		s.waitErr = cmd.Wait()
		close(s.done)
	}()
	return s, nil
}

// Send sends text without a newline.
func (s *Session) Send(text string) error {
	_, err := s.Console.Send(text)
	return err
}

// SendKey sends a special key (use Key* constants).
func (s *Session) SendKey(key string) error {
	_, err := s.Console.Send(key)
	return err
}

// Expect waits for an exact string match in the output.
func (s *Session) Expect(str string) (string, error) {
	return s.Console.ExpectString(str)
}

// ExpectTimeout waits for an exact string match with a specific timeout.
func (s *Session) ExpectTimeout(str string, timeout time.Duration) (string, error) {
	return s.Console.Expect(expect.String(str), expect.WithTimeout(timeout))
}

// ExpectRegex waits for a regex pattern match in the output.
func (s *Session) ExpectRegex(pattern string) (string, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return "", fmt.Errorf("invalid regex: %w", err)
	}
	return s.Console.Expect(expect.Regexp(re))
}

// Wait waits for the command to exit and returns its exit code.
func (s *Session) Wait() (int, error) {
	select {
	case <-s.done:
	case <-time.After(s.Timeout):
		return -1, fmt.Errorf("command did not exit within %s", s.Timeout)
	}
	var exitErr *exec.ExitError
	if errors.As(s.waitErr, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	if s.waitErr != nil {
		return -1, s.waitErr
	}
	return 0, nil
}

// Close kills the command if it is still running and closes the console.
func (s *Session) Close() error {
	select {
	case <-s.done:
	default:
		_ = s.cmd.Process.Kill()
		<-s.done
	}
	return s.Console.Close()
}

var (
	buildOnce sync.Once
	buildPath string
	buildErr  error
)

// BuildGitUtils compiles cmd/git-utils once per test binary and returns its
// path.
func BuildGitUtils(t *testing.T) string {
	t.Helper()
	buildOnce.Do(func() {
		dir, err := os.MkdirTemp("", "git-utils-e2e")
		if err != nil {
			buildErr = err
			return
		}
		buildPath = filepath.Join(dir, "git-utils")
		cmd := exec.Command("go", "build", "-o", buildPath, "./cmd/git-utils")
		cmd.Dir = moduleRoot()
		cmd.Env = append(os.Environ(), "CGO_ENABLED=0")
		if out, err := cmd.CombinedOutput(); err != nil {
			buildErr = fmt.Errorf("go build failed: %w\n%s", err, out)
		}
	})
	if buildErr != nil {
		t.Fatal(buildErr)
	}
	return buildPath
}

// moduleRoot walks up from the working directory to the go.mod.
func moduleRoot() string {
	dir, _ := os.Getwd()
	for i := 0; i < 5; i++ {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		dir = filepath.Dir(dir)
	}
	return "."
}

// SkipIfMissing skips the test if a program is not on PATH.
func SkipIfMissing(t interface{ Skip(args ...interface{}) }, program string) {
	if _, err := exec.LookPath(program); err != nil {
		t.Skip(fmt.Sprintf("%s not available, skipping", program))
	}
}

// SkipIfShort skips the test if running in short mode.
func SkipIfShort(t testing.TB, reason string) {
	if testing.Short() {
		t.Skip("skipping in short mode: " + reason)
	}
}
