package picker

import (
	uv "github.com/charmbracelet/ultraviolet"
)

// Modifiers that do not change what a printable key means.
const textMods = uv.ModShift | uv.ModCapsLock | uv.ModNumLock | uv.ModScrollLock

// decodeInput turns one read's worth of raw terminal input into events.
// The decoder carries legacy key encoding flags between reads.
func decodeInput(dec *uv.EventDecoder, b []byte) []Event {
	var events []Event
	for len(b) > 0 {
		n, ev := dec.Decode(b)
		if n == 0 {
			break
		}
		b = b[n:]
		if ev == nil {
			continue
		}
		events = append(events, fromUV(ev)...)
	}
	return events
}

// fromUV maps a decoded terminal event onto picker events. Anything that
// is not a key press the picker understands comes back as EventOther.
func fromUV(ev uv.Event) []Event {
	kp, ok := ev.(uv.KeyPressEvent)
	if !ok {
		return []Event{{Kind: EventOther}}
	}
	key := uv.Key(kp)
	ctrl := key.Mod.Contains(uv.ModCtrl)

	if k, ok := specialKey(key.Code); ok {
		if k == KeyEnter || k == KeyEscape {
			return []Event{keyEvent(k)}
		}
		return []Event{{Kind: EventKey, Key: k, Ctrl: ctrl}}
	}

	if ctrl && key.Mod&^(uv.ModCtrl|textMods) == 0 {
		switch key.Code {
		case 'c', 'h':
			return []Event{ctrlRuneEvent(key.Code)}
		case 'j', 'm':
			return []Event{keyEvent(KeyEnter)}
		}
		return []Event{{Kind: EventOther}}
	}

	if key.Text == "" || key.Mod&^textMods != 0 {
		return []Event{{Kind: EventOther}}
	}
	events := make([]Event, 0, len(key.Text))
	for _, r := range key.Text {
		events = append(events, runeEvent(r))
	}
	return events
}

func specialKey(code rune) (Key, bool) {
	switch code {
	case uv.KeyEnter, uv.KeyKpEnter:
		return KeyEnter, true
	case uv.KeyEscape:
		return KeyEscape, true
	case uv.KeyBackspace:
		return KeyBackspace, true
	case uv.KeyDelete:
		return KeyDelete, true
	case uv.KeyHome:
		return KeyHome, true
	case uv.KeyEnd:
		return KeyEnd, true
	case uv.KeyLeft:
		return KeyLeft, true
	case uv.KeyRight:
		return KeyRight, true
	case uv.KeyUp:
		return KeyUp, true
	case uv.KeyDown:
		return KeyDown, true
	case uv.KeyPgUp:
		return KeyPageUp, true
	case uv.KeyPgDown:
		return KeyPageDown, true
	}
	return 0, false
}
