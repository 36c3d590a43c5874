package picker

// EventKind classifies terminal events.
type EventKind int

const (
	EventKey EventKind = iota
	EventResize
	EventOther // delivered by the terminal but ignored by the runner
)

// Key identifies a decoded key press.
type Key int

const (
	KeyRune Key = iota // printable character in Event.Rune
	KeyEnter
	KeyEscape
	KeyBackspace
	KeyDelete
	KeyHome
	KeyEnd
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyPageUp
	KeyPageDown
)

// Event is one terminal input event.
type Event struct {
	Kind EventKind
	Key  Key
	Rune rune
	Ctrl bool

	// Width and Height are set for EventResize.
	Width  int
	Height int
}

func keyEvent(k Key) Event {
	return Event{Kind: EventKey, Key: k}
}

func ctrlKeyEvent(k Key) Event {
	return Event{Kind: EventKey, Key: k, Ctrl: true}
}

func runeEvent(r rune) Event {
	return Event{Kind: EventKey, Key: KeyRune, Rune: r}
}

func ctrlRuneEvent(r rune) Event {
	return Event{Kind: EventKey, Key: KeyRune, Rune: r, Ctrl: true}
}

// ResizeEvent reports new terminal dimensions.
func ResizeEvent(width, height int) Event {
	return Event{Kind: EventResize, Width: width, Height: height}
}
