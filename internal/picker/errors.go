package picker

import "errors"

var (
	// ErrCancelled is returned when the user aborts the picker with
	// Escape or Ctrl-C.
	ErrCancelled = errors.New("picker cancelled")

	// ErrNoSelection is returned when a selection is requested while no
	// candidate matches the query.
	ErrNoSelection = errors.New("no selection")

	// ErrNoCandidates is returned when the picker is run on an empty list.
	ErrNoCandidates = errors.New("no candidates to pick from")
)
