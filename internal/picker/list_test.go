package picker

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestList(n int) *List[string] {
	l := NewList[string]("Branch: ")
	for i := 0; i < n; i++ {
		s := fmt.Sprintf("branch-%02d", i)
		l.Insert(s, s)
	}
	l.recompute("")
	return l
}

// --- Reclamp ---

func TestReclamp_ClampsCaret(t *testing.T) {
	l := newTestList(3)
	l.query = "ab"
	l.caret = 5
	l.reclamp(3)
	assert.Equal(t, 2, l.caret)
}

func TestReclamp_ClampsSelection(t *testing.T) {
	l := newTestList(4)
	l.selected = 10
	l.reclamp(3)
	assert.Equal(t, 3, l.selected)
	assert.Equal(t, 1, l.offset)
}

func TestReclamp_EmptyRankingLeavesSelection(t *testing.T) {
	l := newTestList(4)
	l.recompute("zzz")
	require.Empty(t, l.ranked)
	l.selected = 2
	l.offset = 2
	l.reclamp(3)
	assert.Equal(t, 2, l.selected)
	assert.Equal(t, 0, l.offset)
}

func TestReclamp_ScrollsUpToSelection(t *testing.T) {
	l := newTestList(10)
	l.offset = 5
	l.selected = 2
	l.reclamp(3)
	assert.Equal(t, 2, l.offset)
}

func TestReclamp_ShrinkingRankingPullsOffsetBack(t *testing.T) {
	l := newTestList(10)
	l.selected = 9
	l.offset = 7
	l.recompute("branch-0")
	l.reclamp(3)
	assert.Equal(t, 9, l.selected)
	assert.Equal(t, 7, l.offset)

	l.recompute("branch-01")
	l.reclamp(3)
	assert.Equal(t, 0, l.selected)
	assert.Equal(t, 0, l.offset)
}

func TestReclamp_Idempotent(t *testing.T) {
	for n := 0; n <= 12; n += 3 {
		for rows := 1; rows <= 5; rows++ {
			for sel := 0; sel <= 14; sel++ {
				for off := 0; off <= 14; off += 2 {
					l := newTestList(n)
					l.selected, l.offset = sel, off
					l.reclamp(rows)
					s1, o1 := l.selected, l.offset
					l.reclamp(rows)
					assert.Equal(t, s1, l.selected, "n=%d rows=%d sel=%d off=%d", n, rows, sel, off)
					assert.Equal(t, o1, l.offset, "n=%d rows=%d sel=%d off=%d", n, rows, sel, off)
				}
			}
		}
	}
}

func TestReclamp_InvariantsHold(t *testing.T) {
	for n := 1; n <= 12; n++ {
		for rows := 1; rows <= 5; rows++ {
			for sel := 0; sel <= 14; sel++ {
				l := newTestList(n)
				l.selected = sel
				l.offset = 14 - sel
				l.reclamp(rows)
				assert.GreaterOrEqual(t, l.selected, 0)
				assert.Less(t, l.selected, n)
				assert.LessOrEqual(t, l.offset, l.selected)
				assert.Less(t, l.selected, l.offset+rows)
				assert.LessOrEqual(t, l.offset, max(0, n-rows))
			}
		}
	}
}

func TestReclamp_DownNineTimes(t *testing.T) {
	l := newTestList(10)
	const rows = 3
	l.reclamp(rows)
	for i := 0; i < 9; i++ {
		l.handleKey(keyEvent(KeyDown), rows)
		l.reclamp(rows)
	}
	assert.Equal(t, 9, l.selected)
	assert.Equal(t, 7, l.offset)
}

// --- Finalize ---

func TestFinalize_EmptyRankingFails(t *testing.T) {
	l := newTestList(3)
	l.recompute("nomatch")
	before := append([]Candidate[string](nil), l.candidates...)

	_, err := l.finalize()
	require.ErrorIs(t, err, ErrNoSelection)
	assert.Equal(t, before, l.candidates)
	assert.Equal(t, 3, l.Len())
}

func TestFinalize_RemovesSelected(t *testing.T) {
	l := newTestList(5)
	l.recompute("3")
	require.Len(t, l.ranked, 1)

	c, err := l.finalize()
	require.NoError(t, err)
	assert.Equal(t, "branch-03", c.Value)
	assert.Equal(t, 4, l.Len())
	for _, rest := range l.candidates {
		assert.NotEqual(t, "branch-03", rest.Value)
	}
}

func TestInsert_MarksStale(t *testing.T) {
	l := newTestList(2)
	assert.False(t, l.stale)
	l.Insert("x", "x")
	assert.True(t, l.stale)
}

func TestInsert_SanitizesDisplayOnly(t *testing.T) {
	l := NewList[string]("> ")
	l.Insert("\x1b[32mmain\x1b[0m", "raw")
	assert.Equal(t, "main", l.displays[0])
	assert.Equal(t, "\x1b[32mmain\x1b[0m", l.candidates[0].Display)
}

// --- Key handling ---

func typeQuery(l *List[string], s string) {
	for _, r := range s {
		l.handleKey(runeEvent(r), 3)
	}
}

func TestHandleKey_Editing(t *testing.T) {
	l := newTestList(3)
	typeQuery(l, "mian")
	assert.Equal(t, "mian", l.query)
	assert.Equal(t, 4, l.caret)

	l.handleKey(keyEvent(KeyLeft), 3)
	l.handleKey(keyEvent(KeyLeft), 3)
	l.handleKey(keyEvent(KeyBackspace), 3)
	assert.Equal(t, "man", l.query)
	assert.Equal(t, 1, l.caret)

	l.handleKey(runeEvent('a'), 3)
	assert.Equal(t, "maan", l.query)
	assert.Equal(t, 2, l.caret)
	l.handleKey(keyEvent(KeyDelete), 3)
	assert.Equal(t, "man", l.query)
	l.handleKey(keyEvent(KeyLeft), 3)
	l.handleKey(runeEvent('i'), 3)
	assert.Equal(t, "mian", l.query)

	l.handleKey(keyEvent(KeyHome), 3)
	assert.Equal(t, 0, l.caret)
	l.handleKey(keyEvent(KeyLeft), 3)
	assert.Equal(t, 0, l.caret)
	l.handleKey(keyEvent(KeyBackspace), 3)
	assert.Equal(t, "mian", l.query)
	l.handleKey(keyEvent(KeyEnd), 3)
	assert.Equal(t, 4, l.caret)
	l.handleKey(keyEvent(KeyDelete), 3)
	assert.Equal(t, "mian", l.query)
}

func TestHandleKey_RightMayOvershootUntilReclamp(t *testing.T) {
	l := newTestList(3)
	typeQuery(l, "ab")
	l.handleKey(keyEvent(KeyRight), 3)
	assert.Equal(t, 3, l.caret)
	l.reclamp(3)
	assert.Equal(t, 2, l.caret)
}

func TestHandleKey_RepeatedBackspaceEmptiesQuery(t *testing.T) {
	for _, q := range []string{"a", "feature", "x y z"} {
		l := newTestList(3)
		typeQuery(l, q)
		l.handleKey(keyEvent(KeyLeft), 3)
		for i := 0; i < 2*len(q)+2; i++ {
			l.handleKey(keyEvent(KeyBackspace), 3)
			l.handleKey(keyEvent(KeyEnd), 3)
			l.reclamp(3)
		}
		assert.Equal(t, "", l.query, q)
		assert.Equal(t, 0, l.caret, q)
	}
}

func TestHandleKey_ClearQueryInOneStep(t *testing.T) {
	clears := []Event{ctrlRuneEvent('h'), ctrlKeyEvent(KeyBackspace)}
	for _, ev := range clears {
		l := newTestList(3)
		typeQuery(l, "feature")
		l.handleKey(keyEvent(KeyLeft), 3)
		l.stale = false
		assert.Equal(t, editing, l.handleKey(ev, 3))
		assert.Equal(t, "", l.query)
		assert.Equal(t, 0, l.caret)
		assert.True(t, l.stale)
	}
}

func TestHandleKey_Navigation(t *testing.T) {
	l := newTestList(20)
	const rows = 5

	l.handleKey(keyEvent(KeyUp), rows)
	assert.Equal(t, 0, l.selected)

	l.handleKey(keyEvent(KeyPageDown), rows)
	assert.Equal(t, 5, l.selected)
	l.handleKey(keyEvent(KeyPageUp), rows)
	assert.Equal(t, 0, l.selected)
	l.handleKey(keyEvent(KeyPageUp), rows)
	assert.Equal(t, 0, l.selected)

	l.handleKey(ctrlKeyEvent(KeyPageDown), rows)
	assert.Equal(t, 20, l.selected)
	l.reclamp(rows)
	assert.Equal(t, 19, l.selected)
	assert.Equal(t, 15, l.offset)

	l.handleKey(ctrlKeyEvent(KeyPageUp), rows)
	assert.Equal(t, 0, l.selected)
}

func TestHandleKey_NavigationDoesNotDirty(t *testing.T) {
	l := newTestList(5)
	for _, k := range []Key{KeyUp, KeyDown, KeyHome, KeyEnd, KeyLeft, KeyRight, KeyPageUp, KeyPageDown} {
		l.handleKey(keyEvent(k), 3)
		assert.False(t, l.stale, "key %d", k)
	}
}

func TestHandleKey_Outcomes(t *testing.T) {
	l := newTestList(2)
	assert.Equal(t, resolved, l.handleKey(keyEvent(KeyEnter), 3))
	assert.Equal(t, cancelled, l.handleKey(keyEvent(KeyEscape), 3))
	assert.Equal(t, cancelled, l.handleKey(ctrlRuneEvent('c'), 3))

	l.recompute("nothing matches")
	assert.Equal(t, editing, l.handleKey(keyEvent(KeyEnter), 3))
}

func TestHandleKey_IgnoresNonASCII(t *testing.T) {
	l := newTestList(2)
	l.handleKey(runeEvent('é'), 3)
	l.handleKey(runeEvent(0x01), 3)
	l.handleKey(ctrlRuneEvent('x'), 3)
	assert.Equal(t, "", l.query)
	assert.False(t, l.stale)
}
