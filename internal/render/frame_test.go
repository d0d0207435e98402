package render

import (
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scpedit/internal/buffer"
	"scpedit/internal/cursor"
	"scpedit/internal/syntax"
)

func compose(t *testing.T, text string, cols, rows int, welcome string) (Frame, *cursor.Controller) {
	t.Helper()
	buf := buffer.FromText("", text)
	buf.HighlightAll(syntax.Number{})
	cur := cursor.New(cols, rows)
	cur.Scroll(buf)
	return Compose(buf, cur, welcome), cur
}

func TestComposeTildeRows(t *testing.T) {
	f, _ := compose(t, "one\ntwo", 20, 4, "")
	require.Len(t, f.Rows, 4)
	assert.Equal(t, "one", f.Text(0))
	assert.Equal(t, "two", f.Text(1))
	assert.Equal(t, "~", f.Text(2))
	assert.Equal(t, "~", f.Text(3))
}

func TestComposeWelcomeOnlyWhenEmpty(t *testing.T) {
	f, _ := compose(t, "", 20, 9, "hi there")
	assert.Equal(t, "~"+strings.Repeat(" ", 5)+"hi there", f.Text(3))
	assert.Equal(t, "~", f.Text(0))
	assert.Equal(t, "~", f.Text(4))

	f, _ = compose(t, "x", 20, 9, "hi there")
	assert.Equal(t, "~", f.Text(3))
}

func TestComposeWelcomeTruncated(t *testing.T) {
	f, _ := compose(t, "", 4, 3, "abcdefgh")
	assert.Equal(t, "abcd", f.Text(1))
}

func TestComposeHorizontalWindow(t *testing.T) {
	buf := buffer.FromText("", "0123456789abc")
	buf.HighlightAll(syntax.Number{})
	cur := cursor.New(5, 2)
	cur.X = 12
	cur.Scroll(buf)
	f := Compose(buf, cur, "")
	assert.Equal(t, "89abc", f.Text(0))
	assert.Equal(t, 4, f.CursorCol)
	assert.Equal(t, 0, f.CursorRow)
	assert.Equal(t, syntax.TagNumber, f.Rows[0][0].Tag)
	assert.Equal(t, syntax.TagNormal, f.Rows[0][2].Tag)
}

func TestComposeShortLineBeforeOffset(t *testing.T) {
	buf := buffer.FromText("", "ab\n0123456789")
	cur := cursor.New(4, 3)
	cur.Y, cur.X = 1, 9
	cur.Scroll(buf)
	f := Compose(buf, cur, "")
	assert.Empty(t, f.Rows[0])
	assert.Equal(t, "6789", f.Text(1))
}

func TestComposeTabsExpanded(t *testing.T) {
	f, _ := compose(t, "\tx", 20, 1, "")
	assert.Equal(t, "        x", f.Text(0))
}

func TestFrameTextOutOfRange(t *testing.T) {
	assert.Equal(t, "", Frame{}.Text(3))
}

func TestPaintPlainProfile(t *testing.T) {
	f, _ := compose(t, "a 1\nb", 10, 3, "")
	p := NewPainter(lipgloss.NewRenderer(io.Discard), syntax.Number{})
	out := p.Paint(f, false)
	assert.Equal(t, "a 1\nb\n~", out)
}

func TestPaintCursorPastLineEnd(t *testing.T) {
	f := Frame{
		Rows:      [][]Cell{{{Ch: 'a'}}},
		CursorRow: 0,
		CursorCol: 3,
	}
	p := NewPainter(lipgloss.NewRenderer(io.Discard), syntax.Plain{})
	out := p.Paint(f, true)
	assert.Equal(t, "a   ", out)
	assert.Equal(t, 1, strings.Count(out, "\n")+1)
}

func TestPainterSwitchesHighlighter(t *testing.T) {
	p := NewPainter(lipgloss.NewRenderer(io.Discard), syntax.Number{})
	p.style(syntax.TagNumber)
	require.Len(t, p.styles, 1)

	p.SetHighlighter(syntax.Number{})
	assert.Len(t, p.styles, 1, "same variant keeps cached styles")

	p.SetHighlighter(syntax.Plain{})
	assert.Empty(t, p.styles)
	assert.Equal(t, "none", p.hl.Name())
}
