package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"scpedit/internal/syntax"
)

// Painter converts frames to styled text. Runs of cells that share a tag
// are emitted as one styled segment.
type Painter struct {
	renderer *lipgloss.Renderer
	hl       syntax.Highlighter
	cursor   lipgloss.Style
	styles   map[syntax.Tag]lipgloss.Style
}

// NewPainter returns a painter that colours cells with hl. A nil renderer
// uses lipgloss's default renderer.
func NewPainter(r *lipgloss.Renderer, hl syntax.Highlighter) *Painter {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	return &Painter{
		renderer: r,
		hl:       hl,
		cursor:   r.NewStyle().Reverse(true),
		styles:   make(map[syntax.Tag]lipgloss.Style),
	}
}

// SetHighlighter switches the colour source. Cached styles are dropped when
// the variant changes; a nil hl is ignored.
func (p *Painter) SetHighlighter(hl syntax.Highlighter) {
	if hl == nil || (p.hl != nil && p.hl.Name() == hl.Name()) {
		return
	}
	p.hl = hl
	clear(p.styles)
}

func (p *Painter) style(tag syntax.Tag) lipgloss.Style {
	if s, ok := p.styles[tag]; ok {
		return s
	}
	s := p.renderer.NewStyle().Foreground(p.hl.ColorFor(tag))
	p.styles[tag] = s
	return s
}

// Paint renders every row of f, one per line. When showCursor is set the
// cursor cell is drawn in reverse video, past the end of its row if needed.
func (p *Painter) Paint(f Frame, showCursor bool) string {
	var sb strings.Builder
	for i, row := range f.Rows {
		if i > 0 {
			sb.WriteByte('\n')
		}
		cursorCol := -1
		if showCursor && i == f.CursorRow {
			cursorCol = f.CursorCol
		}
		p.paintRow(&sb, row, cursorCol)
	}
	return sb.String()
}

func (p *Painter) paintRow(sb *strings.Builder, row []Cell, cursorCol int) {
	start := 0
	flush := func(end int) {
		if end > start {
			seg := make([]rune, 0, end-start)
			for _, c := range row[start:end] {
				seg = append(seg, c.Ch)
			}
			sb.WriteString(p.style(row[start].Tag).Render(string(seg)))
		}
		start = end
	}
	for x := range row {
		switch {
		case x == cursorCol:
			flush(x)
			sb.WriteString(p.cursor.Render(string(row[x].Ch)))
			start = x + 1
		case row[x].Tag != row[start].Tag:
			flush(x)
		}
	}
	flush(len(row))
	if cursorCol >= len(row) {
		sb.WriteString(strings.Repeat(" ", cursorCol-len(row)))
		sb.WriteString(p.cursor.Render(" "))
	}
}
