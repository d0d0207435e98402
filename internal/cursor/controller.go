// Package cursor tracks the logical cursor, its render column and the
// scroll offsets of the visible window.
package cursor

// Document is the read-only view of a buffer the controller needs.
type Document interface {
	// Len is the number of lines.
	Len() int
	// LineLen is the content length of line y, 0 for y == Len().
	LineLen(y int) int
	// RenderX converts content index x of line y to a render column.
	RenderX(y, x int) int
}

// Movement is a cursor navigation command.
type Movement int

const (
	MoveLeft Movement = iota
	MoveRight
	MoveUp
	MoveDown
	MoveHome
	MoveEnd
	MovePageUp
	MovePageDown
)

func (m Movement) String() string {
	switch m {
	case MoveLeft:
		return "left"
	case MoveRight:
		return "right"
	case MoveUp:
		return "up"
	case MoveDown:
		return "down"
	case MoveHome:
		return "home"
	case MoveEnd:
		return "end"
	case MovePageUp:
		return "pgup"
	case MovePageDown:
		return "pgdown"
	default:
		return "unknown"
	}
}

// Controller owns the cursor and viewport state of one session.
//
// X and Y are logical: X indexes the content of line Y, and Y may equal the
// document length to mean "after the last line". RX is derived from X by
// Scroll.
type Controller struct {
	X, Y int
	RX   int

	rowOffset int
	colOffset int
	rows      int
	cols      int
}

// New returns a controller at the document start for a cols x rows window.
func New(cols, rows int) *Controller {
	c := &Controller{}
	c.Resize(cols, rows)
	return c
}

// Resize sets the visible window size. Sizes below one are raised to one.
func (c *Controller) Resize(cols, rows int) {
	c.cols = max(cols, 1)
	c.rows = max(rows, 1)
}

// Size returns the visible window size.
func (c *Controller) Size() (cols, rows int) { return c.cols, c.rows }

// Offsets returns the first visible line and render column.
func (c *Controller) Offsets() (row, col int) { return c.rowOffset, c.colOffset }

// ScreenPos returns the cursor position relative to the visible window.
// It is only meaningful after Scroll.
func (c *Controller) ScreenPos() (row, col int) {
	return c.Y - c.rowOffset, c.RX - c.colOffset
}

// Move applies one navigation command and clamps X to the new line.
func (c *Controller) Move(doc Document, m Movement) {
	switch m {
	case MovePageUp, MovePageDown:
		c.page(doc, m)
		return
	}
	c.step(doc, m)
	c.Clamp(doc)
}

func (c *Controller) step(doc Document, m Movement) {
	n := doc.Len()
	switch m {
	case MoveLeft:
		if c.X > 0 {
			c.X--
		} else if c.Y > 0 {
			c.Y--
			c.X = doc.LineLen(c.Y)
		}
	case MoveRight:
		if c.Y >= n {
			return
		}
		if c.X < doc.LineLen(c.Y) {
			c.X++
		} else if c.Y+1 < n {
			c.Y++
			c.X = 0
		}
	case MoveUp:
		if c.Y > 0 {
			c.Y--
		}
	case MoveDown:
		if c.Y < n {
			c.Y++
		}
	case MoveHome:
		c.X = 0
	case MoveEnd:
		c.X = doc.LineLen(c.Y)
	}
}

// page jumps to the top or bottom edge of the window and then replays a
// window's worth of single-line moves, so the usual clamping applies.
func (c *Controller) page(doc Document, m Movement) {
	dir := MoveUp
	if m == MovePageUp {
		c.Y = c.rowOffset
	} else {
		dir = MoveDown
		c.Y = min(c.rowOffset+c.rows-1, doc.Len())
	}
	for i := 0; i < c.rows; i++ {
		c.step(doc, dir)
	}
	c.Clamp(doc)
}

// Clamp keeps Y within [0, doc.Len()] and X within the line at Y.
func (c *Controller) Clamp(doc Document) {
	c.Y = min(max(c.Y, 0), doc.Len())
	c.X = min(max(c.X, 0), doc.LineLen(c.Y))
}

// Scroll recomputes RX and adjusts the offsets so the cursor is inside the
// window. It is called once per frame before composing.
func (c *Controller) Scroll(doc Document) {
	c.RX = 0
	if c.Y < doc.Len() {
		c.RX = doc.RenderX(c.Y, c.X)
	}
	c.rowOffset = min(c.rowOffset, c.Y)
	if c.Y >= c.rowOffset+c.rows {
		c.rowOffset = c.Y - c.rows + 1
	}
	c.colOffset = min(c.colOffset, c.RX)
	if c.RX >= c.colOffset+c.cols {
		c.colOffset = c.RX - c.cols + 1
	}
}

// ForceRescroll pushes the row offset past the end of the document so the
// next Scroll brings the cursor line to the top of the window.
func (c *Controller) ForceRescroll(doc Document) {
	c.rowOffset = doc.Len()
}

// Snapshot is a saved cursor and viewport state.
type Snapshot struct {
	x, y, rowOffset, colOffset int
}

// Save captures the current cursor and viewport.
func (c *Controller) Save() Snapshot {
	return Snapshot{x: c.X, y: c.Y, rowOffset: c.rowOffset, colOffset: c.colOffset}
}

// Restore returns to a state captured by Save.
func (c *Controller) Restore(s Snapshot) {
	c.X, c.Y = s.x, s.y
	c.rowOffset, c.colOffset = s.rowOffset, s.colOffset
}
