// Package render turns the document, cursor and highlight state into a
// frame of display cells, and paints frames as styled terminal text.
package render

import (
	"scpedit/internal/buffer"
	"scpedit/internal/cursor"
	"scpedit/internal/syntax"
)

// Cell is one screen position: a character and the tag that selects its
// colour.
type Cell struct {
	Ch  rune
	Tag syntax.Tag
}

// Frame is the visible text window. CursorRow and CursorCol are relative to
// the window.
type Frame struct {
	Rows      [][]Cell
	CursorRow int
	CursorCol int
}

// Source is the read side of a document.
type Source interface {
	Len() int
	Line(y int) (*buffer.Line, error)
}

// Compose builds the frame for the current viewport. The controller must
// have been scrolled for this frame already. welcome is shown centred one
// third down an empty document; pass "" to disable it.
func Compose(src Source, cur *cursor.Controller, welcome string) Frame {
	cols, rows := cur.Size()
	rowOff, colOff := cur.Offsets()
	cr, cc := cur.ScreenPos()
	f := Frame{
		Rows:      make([][]Cell, rows),
		CursorRow: cr,
		CursorCol: cc,
	}
	n := src.Len()
	for i := 0; i < rows; i++ {
		y := i + rowOff
		if y >= n {
			if n == 0 && welcome != "" && i == rows/3 {
				f.Rows[i] = banner(welcome, cols)
			} else {
				f.Rows[i] = plain("~")
			}
			continue
		}
		l, err := src.Line(y)
		if err != nil {
			f.Rows[i] = nil
			continue
		}
		f.Rows[i] = visible(l, colOff, cols)
	}
	return f
}

func visible(l *buffer.Line, colOff, cols int) []Cell {
	r := l.RenderRunes()
	tags := l.Tags()
	if colOff >= len(r) {
		return nil
	}
	end := min(len(r), colOff+cols)
	out := make([]Cell, 0, end-colOff)
	for x := colOff; x < end; x++ {
		out = append(out, Cell{Ch: r[x], Tag: tags[x]})
	}
	return out
}

func banner(msg string, cols int) []Cell {
	r := []rune(msg)
	if len(r) > cols {
		r = r[:cols]
	}
	pad := (cols - len(r)) / 2
	out := make([]Cell, 0, cols)
	if pad != 0 {
		out = append(out, Cell{Ch: '~'})
		pad--
	}
	for i := 0; i < pad; i++ {
		out = append(out, Cell{Ch: ' '})
	}
	for _, c := range r {
		out = append(out, Cell{Ch: c})
	}
	return out
}

func plain(s string) []Cell {
	out := make([]Cell, 0, len(s))
	for _, c := range s {
		out = append(out, Cell{Ch: c})
	}
	return out
}

// Text returns row i of the frame as a plain string.
func (f Frame) Text(i int) string {
	if i < 0 || i >= len(f.Rows) {
		return ""
	}
	r := make([]rune, len(f.Rows[i]))
	for j, c := range f.Rows[i] {
		r[j] = c.Ch
	}
	return string(r)
}
