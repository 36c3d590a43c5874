package picker

import (
	"io"
	"log/slog"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"
)

const selectedMarker = "> "

// Options tunes a picker run.
type Options struct {
	// MaxRows caps the number of terminal rows the picker reserves,
	// including the query line. Zero means no cap.
	MaxRows int
	// Profile is the color profile used for the selection highlight. The
	// zero value is termenv.TrueColor.
	Profile termenv.Profile
	Logger  *slog.Logger
}

type outcome int

const (
	editing outcome = iota
	resolved
	cancelled
)

// Run shows the picker on term until the user picks a candidate or gives
// up. The picked candidate is removed from the list and its value returned.
// Cancellation returns ErrCancelled and leaves the list unchanged.
// The terminal is restored before Run returns, whatever the outcome.
func (l *List[T]) Run(term Terminal, opts Options) (T, error) {
	var zero T
	if l.Len() == 0 {
		return zero, ErrNoCandidates
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	desired := l.Len() + 1
	if opts.MaxRows > 0 {
		desired = min(desired, opts.MaxRows)
	}
	vp, err := StartViewport(term, desired, opts.Profile)
	if err != nil {
		return zero, err
	}
	defer vp.Close()

	l.resetState()
	state, err := l.loop(vp, term, logger)
	if cerr := vp.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return zero, err
	}
	if state == cancelled {
		logger.Debug("picker cancelled")
		return zero, ErrCancelled
	}

	c, err := l.finalize()
	if err != nil {
		return zero, err
	}
	logger.Debug("picker resolved", "display", c.Display)
	return c.Value, nil
}

func (l *List[T]) loop(vp *Viewport, term Terminal, logger *slog.Logger) (outcome, error) {
	for {
		visibleRows := max(1, vp.UsableHeight()-1)
		if l.stale {
			l.recompute(l.query)
			logger.Debug("ranked candidates", "query", l.query, "matches", len(l.ranked))
		}
		l.reclamp(visibleRows)

		if err := vp.Draw(func(f *Frame) { l.render(f, visibleRows) }); err != nil {
			return editing, err
		}

		ev, err := readEvent(term)
		if err != nil {
			return editing, err
		}
		if ev.Kind == EventResize {
			vp.Resize(ev.Width, ev.Height)
			continue
		}
		if state := l.handleKey(ev, visibleRows); state != editing {
			return state, nil
		}
	}
}

// readEvent blocks until a key or resize event arrives.
func readEvent(term Terminal) (Event, error) {
	for {
		ev, err := term.ReadEvent()
		if err != nil {
			return Event{}, err
		}
		if ev.Kind == EventKey || ev.Kind == EventResize {
			return ev, nil
		}
	}
}

// handleKey applies one key press. Right, Down, PageDown and Ctrl-PageDown
// may leave the caret or selection out of range; reclamp fixes them before
// the next frame.
func (l *List[T]) handleKey(ev Event, visibleRows int) outcome {
	switch ev.Key {
	case KeyEnter:
		if len(l.ranked) > 0 {
			return resolved
		}
	case KeyEscape:
		return cancelled
	case KeyBackspace:
		if ev.Ctrl {
			l.clearQuery()
		} else if l.caret > 0 {
			l.query = l.query[:l.caret-1] + l.query[l.caret:]
			l.caret--
			l.stale = true
		}
	case KeyDelete:
		if l.caret < len(l.query) {
			l.query = l.query[:l.caret] + l.query[l.caret+1:]
			l.stale = true
		}
	case KeyHome:
		l.caret = 0
	case KeyEnd:
		l.caret = len(l.query)
	case KeyLeft:
		l.caret = max(0, l.caret-1)
	case KeyRight:
		l.caret++
	case KeyUp:
		l.selected = max(0, l.selected-1)
	case KeyDown:
		l.selected++
	case KeyPageUp:
		if ev.Ctrl {
			l.selected = 0
		} else {
			l.selected = max(0, l.selected-visibleRows)
		}
	case KeyPageDown:
		if ev.Ctrl {
			l.selected = len(l.ranked)
		} else {
			l.selected += visibleRows
		}
	case KeyRune:
		switch {
		case ev.Ctrl && ev.Rune == 'c':
			return cancelled
		case ev.Ctrl && ev.Rune == 'h':
			l.clearQuery()
		case !ev.Ctrl && ev.Rune >= 0x20 && ev.Rune <= 0x7e:
			l.query = l.query[:l.caret] + string(ev.Rune) + l.query[l.caret:]
			l.caret++
			l.stale = true
		}
	}
	return editing
}

func (l *List[T]) clearQuery() {
	l.query = ""
	l.caret = 0
	l.stale = true
}

// render draws the query line followed by the visible slice of the ranking.
func (l *List[T]) render(f *Frame, visibleRows int) {
	width := f.Width()
	f.PrintAt(0, 0, clipWidth(l.prompt+l.query, width))

	for i, e := range l.visible(visibleRows) {
		row := i + 1
		text := l.displays[e.index]
		if l.offset+i == l.selected {
			f.MoveCursor(row, 0)
			f.Highlight()
			f.Print(clipWidth(selectedMarker+text, width))
			f.ResetColors()
		} else {
			f.PrintAt(row, 0, clipWidth("  "+text, width))
		}
	}

	f.MoveCursor(0, min(runewidth.StringWidth(l.prompt)+l.caret, max(0, width-1)))
}
