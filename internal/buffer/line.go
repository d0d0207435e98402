package buffer

import (
	"fmt"

	"scpedit/internal/syntax"
)

// TabStop is the render column multiple every tab expands to.
const TabStop = 8

// Line is one logical line of a document. content is what the user edits;
// render is content with tabs expanded; tags has one entry per render rune.
type Line struct {
	content []rune
	render  []rune
	tags    []syntax.Tag
}

// NewLine returns a rendered line. Its tags are all TagNormal until the
// caller runs a Highlighter over it.
func NewLine(content string) *Line {
	l := &Line{}
	l.SetContent(content)
	return l
}

// SetContent replaces the content and re-renders it. Tags are reset to
// TagNormal; the caller is responsible for re-highlighting.
func (l *Line) SetContent(content string) {
	l.setRunes([]rune(content))
}

func (l *Line) setRunes(content []rune) {
	l.content = content
	l.render = expandTabs(content)
	l.tags = make([]syntax.Tag, len(l.render))
}

func expandTabs(content []rune) []rune {
	width := 0
	for _, c := range content {
		if c == '\t' {
			width += TabStop
		} else {
			width++
		}
	}
	out := make([]rune, 0, width)
	for _, c := range content {
		if c != '\t' {
			out = append(out, c)
			continue
		}
		out = append(out, ' ')
		for len(out)%TabStop != 0 {
			out = append(out, ' ')
		}
	}
	return out
}

// Content returns the logical text of the line.
func (l *Line) Content() string { return string(l.content) }

// Render returns the tab-expanded text of the line.
func (l *Line) Render() string { return string(l.render) }

// RenderRunes returns the tab-expanded runes. The slice must not be modified.
func (l *Line) RenderRunes() []rune { return l.render }

// Len is the number of characters of content.
func (l *Line) Len() int { return len(l.content) }

// RenderLen is the number of render columns.
func (l *Line) RenderLen() int { return len(l.render) }

// InsertChar inserts ch before content index at (0 <= at <= Len()).
func (l *Line) InsertChar(at int, ch rune) error {
	if at < 0 || at > len(l.content) {
		return fmt.Errorf("insert at %d in line of length %d: %w", at, len(l.content), ErrOutOfBounds)
	}
	next := make([]rune, 0, len(l.content)+1)
	next = append(next, l.content[:at]...)
	next = append(next, ch)
	next = append(next, l.content[at:]...)
	l.setRunes(next)
	return nil
}

// DeleteChar removes the character at content index at (0 <= at < Len()).
func (l *Line) DeleteChar(at int) error {
	if at < 0 || at >= len(l.content) {
		return fmt.Errorf("delete at %d in line of length %d: %w", at, len(l.content), ErrOutOfBounds)
	}
	next := make([]rune, 0, len(l.content)-1)
	next = append(next, l.content[:at]...)
	next = append(next, l.content[at+1:]...)
	l.setRunes(next)
	return nil
}

// Truncate cuts the content at index at and returns what was removed.
func (l *Line) Truncate(at int) (string, error) {
	if at < 0 || at > len(l.content) {
		return "", fmt.Errorf("truncate at %d in line of length %d: %w", at, len(l.content), ErrOutOfBounds)
	}
	rest := string(l.content[at:])
	l.setRunes(append([]rune(nil), l.content[:at]...))
	return rest, nil
}

// Append adds s to the end of the content.
func (l *Line) Append(s string) {
	next := make([]rune, 0, len(l.content)+len(s))
	next = append(next, l.content...)
	next = append(next, []rune(s)...)
	l.setRunes(next)
}

// ContentToRenderIndex returns the render column of content index x.
// x past the end is treated as the end of the line.
func (l *Line) ContentToRenderIndex(x int) int {
	if x > len(l.content) {
		x = len(l.content)
	}
	rx := 0
	for _, c := range l.content[:x] {
		if c == '\t' {
			rx += (TabStop - 1) - (rx % TabStop)
		}
		rx++
	}
	return rx
}

// RenderToContentIndex returns the content index whose rendered span covers
// render column rx. It returns 0 for an empty line and when rx lies past the
// end of the render.
func (l *Line) RenderToContentIndex(rx int) int {
	cur := 0
	for x, c := range l.content {
		if c == '\t' {
			cur += (TabStop - 1) - (cur % TabStop)
		}
		cur++
		if cur > rx {
			return x
		}
	}
	return 0
}

// Tags returns the highlight tags, one per render rune.
func (l *Line) Tags() []syntax.Tag { return l.tags }

// SetTags replaces the tags. The length must match the render length.
func (l *Line) SetTags(tags []syntax.Tag) error {
	if len(tags) != len(l.render) {
		return fmt.Errorf("%d tags for render of length %d: %w", len(tags), len(l.render), ErrOutOfBounds)
	}
	l.tags = tags
	return nil
}

// CloneTags returns a copy of the current tags.
func (l *Line) CloneTags() []syntax.Tag {
	return append([]syntax.Tag(nil), l.tags...)
}

// Mark sets tags[from:to] to tag.
func (l *Line) Mark(from, to int, tag syntax.Tag) error {
	if from < 0 || to > len(l.tags) || from > to {
		return fmt.Errorf("mark [%d,%d) in render of length %d: %w", from, to, len(l.tags), ErrOutOfBounds)
	}
	for i := from; i < to; i++ {
		l.tags[i] = tag
	}
	return nil
}

// Rehighlight recomputes every tag of the line with h.
func (l *Line) Rehighlight(h syntax.Highlighter) {
	tags := h.Classify(l.render)
	if len(tags) != len(l.render) {
		panic(fmt.Sprintf("syntax %q returned %d tags for %d runes", h.Name(), len(tags), len(l.render)))
	}
	l.tags = tags
}
