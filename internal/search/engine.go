// Package search implements incremental, direction-aware search over a
// buffer. The engine marks the current match in the owning line's tags and
// puts the previous tags back before every new step, so at most one line
// carries a match highlight at a time.
package search

import (
	"log"
	"slices"

	"scpedit/internal/buffer"
	"scpedit/internal/cursor"
	"scpedit/internal/syntax"
)

// Key is the prompt key that triggered a search step.
type Key int

const (
	KeyOther Key = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyEnter
	KeyEscape
)

// Direction of a step relative to the anchor.
type Direction int

const (
	DirNone Direction = iota
	DirForward
	DirBackward
)

func (d Direction) String() string {
	switch d {
	case DirForward:
		return "forward"
	case DirBackward:
		return "backward"
	default:
		return "none"
	}
}

// Match is a hit at render index Index of line Row.
type Match struct {
	Row   int
	Index int
}

type savedTags struct {
	row  int
	tags []syntax.Tag
}

// Engine is the search state of one session. The zero value is idle.
type Engine struct {
	anchorX, anchorY int
	xDir, yDir       Direction
	restore          *savedTags
	active           bool
}

// New returns an idle engine.
func New() *Engine { return &Engine{} }

// Active reports whether a search is in progress.
func (e *Engine) Active() bool { return e.active }

// Anchor returns the last match position (row, render index).
func (e *Engine) Anchor() (row, index int) { return e.anchorY, e.anchorX }

// Directions returns the directions set by the last navigation key.
func (e *Engine) Directions() (x, y Direction) { return e.xDir, e.yDir }

// Reset returns to idle. Any pending highlight must already be restored.
func (e *Engine) Reset() {
	e.anchorX, e.anchorY = 0, 0
	e.xDir, e.yDir = DirNone, DirNone
	e.restore = nil
	e.active = false
}

// Restore puts back the tags saved for the last match. A saved row that no
// longer exists, or whose render length changed, is dropped.
func (e *Engine) Restore(buf *buffer.Buffer) {
	saved := e.restore
	e.restore = nil
	if saved == nil || saved.row >= buf.Len() {
		return
	}
	l, err := buf.Line(saved.row)
	if err != nil {
		return
	}
	if err := l.SetTags(saved.tags); err != nil {
		log.Printf("[search] dropping stale highlight for line %d: %v", saved.row, err)
	}
}

// Step handles one prompt update: the current query and the key that
// produced it. Enter and Escape end the search; arrow keys step from the
// anchor; any other key starts a fresh scan from the first line. On a hit
// the match is highlighted, the cursor is moved onto it and the viewport is
// forced to re-scroll. It returns false when nothing was found, in which
// case cursor and anchor are unchanged.
func (e *Engine) Step(buf *buffer.Buffer, cur *cursor.Controller, query string, key Key) (Match, bool) {
	e.Restore(buf)

	switch key {
	case KeyEnter, KeyEscape:
		e.Reset()
		return Match{}, false
	}

	e.active = true
	e.xDir, e.yDir = DirNone, DirNone
	switch key {
	case KeyDown:
		e.yDir = DirForward
	case KeyUp:
		e.yDir = DirBackward
	case KeyLeft:
		e.xDir = DirBackward
	case KeyRight:
		e.xDir = DirForward
	}

	needle := []rune(query)
	if len(needle) == 0 {
		return Match{}, false
	}

	n := buf.Len()
	for i := 0; i < n; i++ {
		var row int
		switch e.yDir {
		case DirForward:
			row = e.anchorY + i + 1
		case DirBackward:
			row = e.anchorY - i - 1
		default:
			row = i
			if e.xDir != DirNone {
				row = e.anchorY
			}
		}
		if row < 0 || row >= n {
			break
		}
		l, err := buf.Line(row)
		if err != nil {
			break
		}
		idx := e.find(l.RenderRunes(), needle)
		if idx < 0 {
			if e.xDir != DirNone {
				// A sideways step only looks at the anchor line.
				break
			}
			continue
		}
		e.mark(l, row, idx, len(needle))
		cur.Y = row
		cur.X = l.RenderToContentIndex(idx)
		cur.ForceRescroll(buf)
		return Match{Row: row, Index: idx}, true
	}
	return Match{}, false
}

func (e *Engine) mark(l *buffer.Line, row, idx, length int) {
	e.restore = &savedTags{row: row, tags: l.CloneTags()}
	if err := l.Mark(idx, idx+length, syntax.TagSearchMatch); err != nil {
		log.Printf("[search] mark line %d: %v", row, err)
	}
	e.anchorY, e.anchorX = row, idx
}

func (e *Engine) find(hay, needle []rune) int {
	switch e.xDir {
	case DirForward:
		start := min(e.anchorX+1, len(hay))
		if i := indexRunes(hay[start:], needle); i >= 0 {
			return start + i
		}
		return -1
	case DirBackward:
		end := min(max(e.anchorX, 0), len(hay))
		return lastIndexRunes(hay[:end], needle)
	default:
		return indexRunes(hay, needle)
	}
}

func indexRunes(hay, needle []rune) int {
	for i := 0; i+len(needle) <= len(hay); i++ {
		if slices.Equal(hay[i:i+len(needle)], needle) {
			return i
		}
	}
	return -1
}

func lastIndexRunes(hay, needle []rune) int {
	for i := len(hay) - len(needle); i >= 0; i-- {
		if slices.Equal(hay[i:i+len(needle)], needle) {
			return i
		}
	}
	return -1
}
