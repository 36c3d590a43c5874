package picker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// fzf exit statuses.
const (
	fzfExitNoMatch     = 1
	fzfExitInterrupted = 130
)

// FzfPath returns the fzf executable on PATH, or "" when there is none.
func FzfPath() string {
	path, err := exec.LookPath("fzf")
	if err != nil {
		return ""
	}
	return path
}

// RunFzf lets an external fzf process pick a candidate. Lines are fed as
// "index<TAB>display" and only the display column is shown, so candidates
// with identical labels stay distinct. The result follows the same contract
// as Run.
func (l *List[T]) RunFzf(ctx context.Context, fzfPath string, opts Options) (T, error) {
	var zero T
	if l.Len() == 0 {
		return zero, ErrNoCandidates
	}

	args := []string{
		"--prompt", l.prompt,
		"--delimiter", "\t",
		"--with-nth", "2..",
		"--tiebreak", "index",
		"--layout", "reverse",
	}
	rows := l.Len() + 1
	if opts.MaxRows > 0 {
		rows = min(rows, opts.MaxRows)
	}
	// fzf's border and info lines need two extra rows.
	args = append(args, "--height", strconv.Itoa(rows+2))

	var in strings.Builder
	for i, d := range l.displays {
		fmt.Fprintf(&in, "%d\t%s\n", i, d)
	}

	cmd := exec.CommandContext(ctx, fzfPath, args...)
	cmd.Stdin = strings.NewReader(in.String())
	cmd.Stderr = os.Stderr // fzf draws on the tty through stderr

	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			switch exitErr.ExitCode() {
			case fzfExitInterrupted:
				return zero, ErrCancelled
			case fzfExitNoMatch:
				return zero, ErrNoSelection
			}
		}
		return zero, fmt.Errorf("run fzf: %w", err)
	}

	line := strings.TrimRight(string(out), "\r\n")
	field, _, _ := strings.Cut(line, "\t")
	idx, err := strconv.Atoi(field)
	if err != nil || idx < 0 || idx >= l.Len() {
		return zero, fmt.Errorf("unexpected fzf output %q", line)
	}

	l.ranked = []rankedEntry{{index: idx}}
	l.selected = 0
	c, err := l.finalize()
	if err != nil {
		return zero, err
	}
	if opts.Logger != nil {
		opts.Logger.Debug("fzf resolved", "display", c.Display)
	}
	return c.Value, nil
}
