package picker

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/muesli/cancelreader"
	"golang.org/x/term"
)

// Terminal is what the picker needs from a terminal: somewhere to write,
// its size, raw mode, and a blocking stream of input events.
type Terminal interface {
	io.Writer
	Size() (width, height int, err error)
	MakeRaw() (restore func() error, err error)
	ReadEvent() (Event, error)
}

type readResult struct {
	data []byte
	err  error
}

// TTY is a Terminal backed by real terminal file descriptors. Input is read
// on a background goroutine so that key presses and window size changes can
// be waited on together.
type TTY struct {
	in  *os.File
	out *os.File

	reader     cancelreader.CancelReader
	decoder    uv.EventDecoder
	input      chan readResult
	resize     chan os.Signal
	stopResize func()
	pending    []Event

	startOnce sync.Once
	closeOnce sync.Once
	done      chan struct{}
	closers   []io.Closer
}

// NewTTY wraps terminal input and output files.
func NewTTY(in, out *os.File) (*TTY, error) {
	if !term.IsTerminal(int(in.Fd())) {
		return nil, errors.New("input is not a terminal")
	}
	reader, err := cancelreader.NewReader(in)
	if err != nil {
		return nil, fmt.Errorf("create input reader: %w", err)
	}
	t := &TTY{
		in:     in,
		out:    out,
		reader: reader,
		input:  make(chan readResult),
		resize: make(chan os.Signal, 1),
		done:   make(chan struct{}),
	}
	t.stopResize = notifyResize(t.resize)
	return t, nil
}

// Write implements io.Writer.
func (t *TTY) Write(p []byte) (int, error) {
	return t.out.Write(p)
}

// Size returns the terminal width and height in cells.
func (t *TTY) Size() (int, int, error) {
	w, h, err := term.GetSize(int(t.out.Fd()))
	if err != nil {
		return 0, 0, err
	}
	return w, h, nil
}

// MakeRaw puts the input into raw mode and returns a function restoring
// the previous mode.
func (t *TTY) MakeRaw() (func() error, error) {
	fd := int(t.in.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	return func() error { return term.Restore(fd, state) }, nil
}

// ReadEvent blocks until a key press or a window size change arrives.
func (t *TTY) ReadEvent() (Event, error) {
	t.startOnce.Do(func() { go t.readLoop() })

	for len(t.pending) == 0 {
		select {
		case r, ok := <-t.input:
			if !ok {
				return Event{}, fmt.Errorf("read terminal input: %w", io.ErrUnexpectedEOF)
			}
			if r.err != nil {
				return Event{}, fmt.Errorf("read terminal input: %w", r.err)
			}
			t.pending = append(t.pending, decodeInput(&t.decoder, r.data)...)
		case <-t.resize:
			w, h, err := t.Size()
			if err != nil {
				return Event{}, fmt.Errorf("query terminal size: %w", err)
			}
			return ResizeEvent(w, h), nil
		}
	}

	ev := t.pending[0]
	t.pending = t.pending[1:]
	return ev, nil
}

func (t *TTY) readLoop() {
	defer close(t.input)
	buf := make([]byte, 256)
	for {
		n, err := t.reader.Read(buf)
		if n > 0 {
			select {
			case t.input <- readResult{data: bytes.Clone(buf[:n])}:
			case <-t.done:
				return
			}
		}
		if err != nil {
			if errors.Is(err, cancelreader.ErrCanceled) {
				return
			}
			select {
			case t.input <- readResult{err: err}:
			case <-t.done:
			}
			return
		}
	}
}

// Close stops the input reader and resize notifications and closes any
// files opened by OpenTTY.
func (t *TTY) Close() error {
	var errs []error
	t.closeOnce.Do(func() {
		t.stopResize()
		close(t.done)
		t.reader.Cancel()
		errs = append(errs, t.reader.Close())
		for _, c := range t.closers {
			errs = append(errs, c.Close())
		}
	})
	return errors.Join(errs...)
}
