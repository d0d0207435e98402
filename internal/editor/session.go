// Package editor binds a buffer, cursor controller, highlighter and search
// engine into one editing session. It is the single entry point the UI
// layer drives: every method runs to completion on the caller's goroutine.
package editor

import (
	"log"

	"scpedit/internal/buffer"
	"scpedit/internal/cursor"
	"scpedit/internal/render"
	"scpedit/internal/search"
	"scpedit/internal/syntax"
)

// Session is the editing state of one open document.
type Session struct {
	buf     *buffer.Buffer
	hl      syntax.Highlighter
	cur     *cursor.Controller
	search  *search.Engine
	saved   cursor.Snapshot
	welcome string
}

// New wraps buf in a session with a cols x rows text window and highlights
// every line with hl.
func New(buf *buffer.Buffer, hl syntax.Highlighter, cols, rows int) *Session {
	if hl == nil {
		hl = syntax.Default()
	}
	buf.HighlightAll(hl)
	return &Session{
		buf:    buf,
		hl:     hl,
		cur:    cursor.New(cols, rows),
		search: search.New(),
	}
}

// Buffer returns the document.
func (s *Session) Buffer() *buffer.Buffer { return s.buf }

// Cursor returns the cursor controller.
func (s *Session) Cursor() *cursor.Controller { return s.cur }

// Highlighter returns the active highlighter.
func (s *Session) Highlighter() syntax.Highlighter { return s.hl }

// Text returns the document as newline-joined text.
func (s *Session) Text() string { return s.buf.Text() }

// SetWelcome sets the banner shown while the document is empty.
func (s *Session) SetWelcome(msg string) { s.welcome = msg }

// SetHighlighter switches the syntax variant and re-highlights everything.
func (s *Session) SetHighlighter(hl syntax.Highlighter) {
	s.hl = hl
	s.buf.HighlightAll(hl)
}

// Resize sets the text window size.
func (s *Session) Resize(cols, rows int) { s.cur.Resize(cols, rows) }

// Move applies a navigation command.
func (s *Session) Move(m cursor.Movement) { s.cur.Move(s.buf, m) }

// InsertChar inserts r at the cursor. On the line past the end a new empty
// line is appended first.
func (s *Session) InsertChar(r rune) {
	c := s.cur
	if c.Y == s.buf.Len() {
		if err := s.buf.InsertLine(s.buf.Len(), ""); err != nil {
			log.Printf("[editor] append line: %v", err)
			return
		}
	}
	if err := s.buf.InsertChar(c.Y, c.X, r); err != nil {
		log.Printf("[editor] insert char: %v", err)
		return
	}
	s.rehighlight(c.Y)
	c.X++
}

// InsertNewline breaks the line at the cursor. At column zero an empty line
// is inserted above instead.
func (s *Session) InsertNewline() {
	c := s.cur
	if c.X == 0 {
		if err := s.buf.InsertLine(c.Y, ""); err != nil {
			log.Printf("[editor] insert line: %v", err)
			return
		}
		s.rehighlight(c.Y)
	} else {
		if err := s.buf.SplitLine(c.Y, c.X); err != nil {
			log.Printf("[editor] split line: %v", err)
			return
		}
		s.rehighlight(c.Y)
		s.rehighlight(c.Y + 1)
	}
	c.Y++
	c.X = 0
}

// DeleteChar is backspace. It does nothing at the start of the document or
// on the line past the end; at column zero it joins with the line above.
func (s *Session) DeleteChar() {
	c := s.cur
	if c.Y == s.buf.Len() || (c.X == 0 && c.Y == 0) {
		return
	}
	if c.X > 0 {
		if err := s.buf.DeleteChar(c.Y, c.X); err != nil {
			log.Printf("[editor] delete char: %v", err)
			return
		}
		s.rehighlight(c.Y)
		c.X--
		return
	}
	prevLen := s.buf.LineLen(c.Y - 1)
	if err := s.buf.JoinLine(c.Y); err != nil {
		log.Printf("[editor] join line: %v", err)
		return
	}
	c.Y--
	c.X = prevLen
	s.rehighlight(c.Y)
}

// DeleteForward removes the character under the cursor by stepping right
// and deleting backwards. Nothing happens when the cursor cannot step right,
// which is the case at the end of the document.
func (s *Session) DeleteForward() {
	x, y := s.cur.X, s.cur.Y
	s.Move(cursor.MoveRight)
	if s.cur.X == x && s.cur.Y == y {
		return
	}
	s.DeleteChar()
}

func (s *Session) rehighlight(y int) {
	if err := s.buf.Highlight(y, s.hl); err != nil {
		log.Printf("[editor] highlight line %d: %v", y, err)
	}
}

// StartSearch remembers the cursor and viewport so a cancelled search can
// put them back.
func (s *Session) StartSearch() {
	s.saved = s.cur.Save()
	s.search.Reset()
}

// Searching reports whether a search is in progress.
func (s *Session) Searching() bool { return s.search.Active() }

// Search runs one incremental step for the current query and the key that
// produced it.
func (s *Session) Search(query string, key search.Key) (search.Match, bool) {
	return s.search.Step(s.buf, s.cur, query, key)
}

// EndSearch clears any match highlight and leaves search mode. A cancelled
// search returns the cursor and viewport to where StartSearch found them.
func (s *Session) EndSearch(cancelled bool) {
	key := search.KeyEnter
	if cancelled {
		key = search.KeyEscape
	}
	s.search.Step(s.buf, s.cur, "", key)
	if cancelled {
		s.cur.Restore(s.saved)
	}
}

// Frame scrolls the viewport onto the cursor and composes the visible text.
func (s *Session) Frame() render.Frame {
	s.cur.Scroll(s.buf)
	return render.Compose(s.buf, s.cur, s.welcome)
}
