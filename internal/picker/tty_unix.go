//go:build !windows

package picker

import (
	"fmt"
	"io"
	"os"
	"os/signal"

	"golang.org/x/sys/unix"
)

// OpenTTY opens the controlling terminal, independent of how stdin and
// stdout are redirected.
func OpenTTY() (*TTY, error) {
	f, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open /dev/tty: %w", err)
	}
	t, err := NewTTY(f, f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	t.closers = []io.Closer{f}
	return t, nil
}

func notifyResize(ch chan os.Signal) func() {
	signal.Notify(ch, unix.SIGWINCH)
	return func() { signal.Stop(ch) }
}
