package picker

// Candidate is a display label paired with the value it stands for.
type Candidate[T any] struct {
	Display string
	Value   T
}

// List is a fuzzy-filterable, single-selection list of candidates.
//
// Candidates are added with Insert before Run. A List must not be used
// from several goroutines, and Run must not be called concurrently.
type List[T any] struct {
	prompt     string
	candidates []Candidate[T]
	displays   []string // sanitized labels, parallel to candidates

	ranked []rankedEntry
	stale  bool

	query    string
	caret    int
	selected int
	offset   int
}

// NewList creates an empty list that shows prompt in front of the query.
func NewList[T any](prompt string) *List[T] {
	return &List[T]{prompt: SanitizeDisplay(prompt), stale: true}
}

// Insert appends a candidate.
func (l *List[T]) Insert(display string, value T) {
	l.candidates = append(l.candidates, Candidate[T]{Display: display, Value: value})
	l.displays = append(l.displays, SanitizeDisplay(display))
	l.stale = true
}

// Len returns the number of candidates.
func (l *List[T]) Len() int {
	return len(l.candidates)
}

// recompute ranks every candidate against query and replaces the ranking.
func (l *List[T]) recompute(query string) {
	l.ranked = rank(l.displays, query)
	l.stale = false
}

// reclamp restores the caret, selection and scroll invariants after edits
// and navigation that are allowed to leave them out of range.
func (l *List[T]) reclamp(visibleRows int) {
	l.caret = min(l.caret, len(l.query))
	if len(l.ranked) > 0 {
		l.selected = min(l.selected, len(l.ranked)-1)
	}
	l.offset = min(l.offset, max(0, len(l.ranked)-visibleRows))
	if l.selected >= l.offset+visibleRows {
		l.offset = l.selected - visibleRows + 1
	} else if l.selected < l.offset {
		l.offset = l.selected
	}
}

// visible returns the ranked entries inside the scroll window.
func (l *List[T]) visible(visibleRows int) []rankedEntry {
	start := min(l.offset, len(l.ranked))
	end := min(start+visibleRows, len(l.ranked))
	return l.ranked[start:end]
}

// finalize removes the selected candidate and returns it. It fails without
// touching the list when nothing matches the query.
func (l *List[T]) finalize() (Candidate[T], error) {
	if len(l.ranked) == 0 {
		return Candidate[T]{}, ErrNoSelection
	}
	idx := l.ranked[l.selected].index
	c := l.candidates[idx]
	l.candidates = append(l.candidates[:idx], l.candidates[idx+1:]...)
	l.displays = append(l.displays[:idx], l.displays[idx+1:]...)
	l.ranked = nil
	l.stale = true
	return c, nil
}

// resetState clears the query and selection at the start of a run.
func (l *List[T]) resetState() {
	l.query = ""
	l.caret = 0
	l.selected = 0
	l.offset = 0
	l.stale = true
}
