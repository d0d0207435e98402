// Package buffer holds the in-memory document: an ordered list of lines,
// each carrying its logical content, its tab-expanded render and the
// highlight tags aligned with that render.
//
// Buffer never runs a highlighter on its own and never touches storage.
// Callers re-highlight the lines an operation reports as changed and move
// text in and out through FromText and Text.
package buffer

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"scpedit/internal/syntax"
)

// ErrOutOfBounds is returned when an index violates an operation's
// documented range. It always indicates a caller bug.
var ErrOutOfBounds = errors.New("index out of bounds")

// Buffer is an ordered collection of lines plus the path it is bound to
// and a count of unsaved modifications.
type Buffer struct {
	lines []*Line
	path  string
	dirty uint64
}

// New returns an empty buffer bound to path ("" for a new, unnamed file).
func New(path string) *Buffer {
	return &Buffer{path: path}
}

// FromText splits raw on newlines into a buffer. CRLF and lone CR line
// endings are normalised first. A single trailing newline does not produce
// an extra empty line, and the empty string yields an empty buffer.
func FromText(path, raw string) *Buffer {
	b := New(path)
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")
	raw = strings.TrimSuffix(raw, "\n")
	if raw == "" {
		return b
	}
	for _, s := range strings.Split(raw, "\n") {
		b.lines = append(b.lines, NewLine(s))
	}
	return b
}

// Text joins the content of every line with "\n".
func (b *Buffer) Text() string {
	var sb strings.Builder
	for i, l := range b.lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(l.Content())
	}
	return sb.String()
}

// Path returns the storage path, "" when unnamed.
func (b *Buffer) Path() string { return b.path }

// SetPath binds the buffer to a storage path.
func (b *Buffer) SetPath(path string) { b.path = path }

// Dirty returns the number of modifications since load or the last save.
func (b *Buffer) Dirty() uint64 { return b.dirty }

// MarkSaved resets the modification counter after a successful save.
func (b *Buffer) MarkSaved() { b.dirty = 0 }

// Len returns the number of lines.
func (b *Buffer) Len() int { return len(b.lines) }

// Line returns line y.
func (b *Buffer) Line(y int) (*Line, error) {
	if y < 0 || y >= len(b.lines) {
		return nil, fmt.Errorf("line %d of %d: %w", y, len(b.lines), ErrOutOfBounds)
	}
	return b.lines[y], nil
}

// LineLen returns the content length of line y, or 0 when y is not a line
// (including the past-the-end position).
func (b *Buffer) LineLen(y int) int {
	if y < 0 || y >= len(b.lines) {
		return 0
	}
	return b.lines[y].Len()
}

// RenderX converts content index x on line y to a render column. It returns
// 0 when y is not a line.
func (b *Buffer) RenderX(y, x int) int {
	if y < 0 || y >= len(b.lines) {
		return 0
	}
	return b.lines[y].ContentToRenderIndex(x)
}

// InsertLine inserts a new line at index at (0 <= at <= Len()), shifting
// later lines down. at == Len() appends.
func (b *Buffer) InsertLine(at int, content string) error {
	if at < 0 || at > len(b.lines) {
		return fmt.Errorf("insert line at %d of %d: %w", at, len(b.lines), ErrOutOfBounds)
	}
	b.lines = append(b.lines, nil)
	copy(b.lines[at+1:], b.lines[at:])
	b.lines[at] = NewLine(content)
	b.dirty++
	return nil
}

// InsertChar inserts ch at content index x of line y.
func (b *Buffer) InsertChar(y, x int, ch rune) error {
	l, err := b.Line(y)
	if err != nil {
		return err
	}
	if err := l.InsertChar(x, ch); err != nil {
		return fmt.Errorf("line %d: %w", y, err)
	}
	b.dirty++
	return nil
}

// SplitLine cuts line y at content index x and inserts the remainder as a
// new line at y+1. Both lines need re-highlighting afterwards.
func (b *Buffer) SplitLine(y, x int) error {
	l, err := b.Line(y)
	if err != nil {
		return err
	}
	rest, err := l.Truncate(x)
	if err != nil {
		return fmt.Errorf("line %d: %w", y, err)
	}
	return b.InsertLine(y+1, rest)
}

// JoinLine appends line y onto line y-1 and removes line y. It requires
// y >= 1. The merged line at y-1 needs re-highlighting afterwards.
func (b *Buffer) JoinLine(y int) error {
	if y < 1 || y >= len(b.lines) {
		return fmt.Errorf("join line %d of %d: %w", y, len(b.lines), ErrOutOfBounds)
	}
	cur := b.lines[y]
	b.lines = slices.Delete(b.lines, y, y+1)
	b.lines[y-1].Append(cur.Content())
	b.dirty++
	return nil
}

// DeleteChar performs a backspace at (y, x): with x > 0 it removes the
// character before x, with x == 0 and y > 0 it joins line y onto y-1, and
// at the start of the document it does nothing.
func (b *Buffer) DeleteChar(y, x int) error {
	switch {
	case x > 0:
		l, err := b.Line(y)
		if err != nil {
			return err
		}
		if err := l.DeleteChar(x - 1); err != nil {
			return fmt.Errorf("line %d: %w", y, err)
		}
		b.dirty++
		return nil
	case x == 0 && y > 0:
		return b.JoinLine(y)
	case x == 0 && y == 0:
		return nil
	default:
		return fmt.Errorf("delete at (%d,%d): %w", y, x, ErrOutOfBounds)
	}
}

// Highlight re-runs h over line y.
func (b *Buffer) Highlight(y int, h syntax.Highlighter) error {
	l, err := b.Line(y)
	if err != nil {
		return err
	}
	l.Rehighlight(h)
	return nil
}

// HighlightAll re-runs h over every line.
func (b *Buffer) HighlightAll(h syntax.Highlighter) {
	for _, l := range b.lines {
		l.Rehighlight(h)
	}
}
