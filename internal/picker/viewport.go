package picker

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
)

// Viewport owns a block of terminal rows directly below the cursor and the
// terminal's raw input mode. All drawing is relative to the top-left cell of
// that block (the origin). The cursor row is tracked relative to the origin,
// so the viewport never has to ask the terminal where the cursor is.
type Viewport struct {
	term    Terminal
	w       *bufio.Writer
	profile termenv.Profile

	desired int
	width   int
	height  int

	row int // cursor row relative to the origin

	restore   func() error
	closeOnce sync.Once
	closeErr  error
}

// StartViewport reserves min(terminal rows, desiredRows) rows below the
// cursor, turns off line wrapping and switches the input to raw mode. The
// returned Viewport must be closed; Close is safe to call more than once.
func StartViewport(term Terminal, desiredRows int, profile termenv.Profile) (*Viewport, error) {
	width, height, err := term.Size()
	if err != nil {
		return nil, fmt.Errorf("query terminal size: %w", err)
	}
	v := &Viewport{
		term:    term,
		w:       bufio.NewWriter(term),
		profile: profile,
		desired: max(1, desiredRows),
		width:   width,
		height:  height,
		restore: func() error { return nil },
	}

	rows := v.UsableHeight()
	if rows > 1 {
		// Newlines scroll the screen when the cursor is near the bottom.
		v.w.WriteString(strings.Repeat("\n", rows-1))
		v.w.WriteString(ansi.CursorUp(rows - 1))
	}
	v.w.WriteString("\r")
	v.w.WriteString(ansi.ResetModeAutoWrap)
	if err := v.w.Flush(); err != nil {
		return nil, fmt.Errorf("reserve terminal rows: %w", err)
	}

	restore, err := term.MakeRaw()
	if err != nil {
		_ = v.Close()
		return nil, fmt.Errorf("enable raw mode: %w", err)
	}
	v.restore = restore
	return v, nil
}

// UsableHeight is the number of rows available for drawing: the live
// terminal height clamped to the requested row count.
func (v *Viewport) UsableHeight() int {
	return max(1, min(v.height, v.desired))
}

// Width is the last known terminal width.
func (v *Viewport) Width() int {
	return v.width
}

// Resize records new terminal dimensions. It does not redraw.
func (v *Viewport) Resize(width, height int) {
	if width > 0 {
		v.width = width
	}
	if height > 0 {
		v.height = height
	}
}

// Draw paints one frame. The region is cleared, render is called with a
// Frame anchored at the origin, and the whole frame is flushed as a single
// synchronized update.
func (v *Viewport) Draw(render func(f *Frame)) error {
	v.w.WriteString(ansi.SetModeSynchronizedOutput)
	v.clear()
	render(&Frame{v: v})
	v.w.WriteString(ansi.ResetStyle)
	v.w.WriteString(ansi.ResetModeSynchronizedOutput)
	if err := v.w.Flush(); err != nil {
		return fmt.Errorf("draw frame: %w", err)
	}
	return nil
}

// Close erases the region, resets colors, turns line wrapping back on and
// restores the terminal mode. The cursor is left at the origin. Only the
// first call has any effect; later calls return the first call's error.
func (v *Viewport) Close() error {
	v.closeOnce.Do(func() {
		v.clear()
		v.w.WriteString(ansi.ResetStyle)
		v.w.WriteString(ansi.SetModeAutoWrap)
		werr := v.w.Flush()
		if werr != nil {
			werr = fmt.Errorf("restore terminal output: %w", werr)
		}
		rerr := v.restore()
		if rerr != nil {
			rerr = fmt.Errorf("restore terminal mode: %w", rerr)
		}
		v.closeErr = errors.Join(werr, rerr)
	})
	return v.closeErr
}

// clear moves to the origin and erases everything below it.
func (v *Viewport) clear() {
	v.moveTo(0, 0)
	v.w.WriteString(ansi.EraseScreenBelow)
}

// moveTo positions the cursor relative to the origin. Downward moves use
// line feeds so that rows beyond the bottom of the screen scroll into view.
func (v *Viewport) moveTo(row, col int) {
	switch {
	case row < v.row:
		v.w.WriteString(ansi.CursorUp(v.row - row))
	case row > v.row:
		v.w.WriteString(strings.Repeat("\n", row-v.row))
	}
	v.w.WriteString("\r")
	if col > 0 {
		v.w.WriteString(ansi.CursorHorizontalAbsolute(col + 1))
	}
	v.row = row
}

// Frame is the drawing surface handed to a render function. Rows and
// columns are relative to the viewport origin; rows outside the usable
// height are dropped.
type Frame struct {
	v *Viewport
}

// Rows is the number of rows the frame may draw on.
func (f *Frame) Rows() int {
	return f.v.UsableHeight()
}

// Width is the terminal width in cells.
func (f *Frame) Width() int {
	return f.v.width
}

// Print writes text at the current cursor position.
func (f *Frame) Print(text string) {
	f.v.w.WriteString(text)
}

// PrintAt writes text starting at (row, col).
func (f *Frame) PrintAt(row, col int, text string) {
	if row < 0 || row >= f.Rows() {
		return
	}
	f.v.moveTo(row, col)
	f.Print(text)
}

// SetForeground sets the text color for subsequent prints.
func (f *Frame) SetForeground(c termenv.Color) {
	f.setColor(c, false)
}

// SetBackground sets the background color for subsequent prints.
func (f *Frame) SetBackground(c termenv.Color) {
	f.setColor(c, true)
}

func (f *Frame) setColor(c termenv.Color, bg bool) {
	seq := f.v.profile.Convert(c).Sequence(bg)
	if seq == "" {
		return
	}
	f.v.w.WriteString(termenv.CSI + seq + "m")
}

// Highlight marks subsequent prints as selected: black on white, or
// reverse video when the profile has no colors.
func (f *Frame) Highlight() {
	if f.v.profile == termenv.Ascii {
		f.v.w.WriteString(ansi.Style{}.Reverse(true).String())
		return
	}
	f.SetForeground(termenv.ANSIBlack)
	f.SetBackground(termenv.ANSIWhite)
}

// ResetColors returns to the terminal's default colors.
func (f *Frame) ResetColors() {
	f.v.w.WriteString(ansi.ResetStyle)
}

// MoveCursor places the visible terminal cursor at (row, col).
func (f *Frame) MoveCursor(row, col int) {
	if row < 0 || row >= f.Rows() {
		return
	}
	f.v.moveTo(row, col)
}
