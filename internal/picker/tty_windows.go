//go:build windows

package picker

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/windows"
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// OpenTTY opens the console input and output handles and turns on VT
// processing for the output so escape sequences are interpreted.
func OpenTTY() (*TTY, error) {
	in, err := os.OpenFile("CONIN$", os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open console input: %w", err)
	}
	out, err := os.OpenFile("CONOUT$", os.O_RDWR, 0)
	if err != nil {
		_ = in.Close()
		return nil, fmt.Errorf("open console output: %w", err)
	}
	restoreVT, err := enableVirtualTerminal(windows.Handle(out.Fd()))
	if err != nil {
		_ = in.Close()
		_ = out.Close()
		return nil, err
	}
	t, err := NewTTY(in, out)
	if err != nil {
		_ = restoreVT()
		_ = in.Close()
		_ = out.Close()
		return nil, err
	}
	t.closers = []io.Closer{closerFunc(restoreVT), in, out}
	return t, nil
}

// enableVirtualTerminal sets ENABLE_VIRTUAL_TERMINAL_PROCESSING on a console
// output handle and returns a function putting the old mode back.
func enableVirtualTerminal(h windows.Handle) (func() error, error) {
	var mode uint32
	if err := windows.GetConsoleMode(h, &mode); err != nil {
		return nil, fmt.Errorf("get console mode: %w", err)
	}
	if mode&windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING != 0 {
		return func() error { return nil }, nil
	}
	if err := windows.SetConsoleMode(h, mode|windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING); err != nil {
		return nil, fmt.Errorf("enable virtual terminal processing: %w", err)
	}
	return func() error { return windows.SetConsoleMode(h, mode) }, nil
}

// The console has no resize signal.
func notifyResize(chan os.Signal) func() {
	return func() {}
}
